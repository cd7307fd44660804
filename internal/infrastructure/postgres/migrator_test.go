package postgres

import (
	"context"
	"strings"
	"testing"
)

func TestMigrationsAreContiguous(t *testing.T) {
	if len(migrations) == 0 {
		t.Fatalf("expected at least one schema step")
	}

	for i, step := range migrations {
		want := i + 1
		if step.Version != want {
			t.Fatalf("step %d has version %d, want %d", i, step.Version, want)
		}
		if step.Name == "" {
			t.Fatalf("step %d has no name", step.Version)
		}
		if len(step.Ops) == 0 {
			t.Fatalf("step %d has no ops", step.Version)
		}
	}

	if last := migrations[len(migrations)-1].Version; last != CurrentVersion {
		t.Fatalf("CurrentVersion is %d but last step is %d", CurrentVersion, last)
	}
}

func TestPendingSteps(t *testing.T) {
	tests := []struct {
		name    string
		current int
		want    int
	}{
		{"fresh database", 0, len(migrations)},
		{"one behind", CurrentVersion - 1, 1},
		{"up to date", CurrentVersion, 0},
		{"ahead of build", CurrentVersion + 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pendingSteps(migrations, tt.current)
			if len(got) != tt.want {
				t.Fatalf("expected %d pending steps, got %d", tt.want, len(got))
			}
			for i := 1; i < len(got); i++ {
				if got[i].Version <= got[i-1].Version {
					t.Fatalf("pending steps out of order: %d after %d", got[i].Version, got[i-1].Version)
				}
			}
		})
	}
}

type fakeTag int64

func (f fakeTag) RowsAffected() int64 { return int64(f) }

type fakeExecer struct {
	stmts []string
	err   error
}

func (f *fakeExecer) Exec(ctx context.Context, sql string, args ...any) (commandTag, error) {
	f.stmts = append(f.stmts, sql)
	return fakeTag(0), f.err
}

func TestAddColumnOpSQL(t *testing.T) {
	execer := &fakeExecer{}

	op := AddColumn("accounts", "bio", "TEXT NOT NULL DEFAULT ''")
	if err := op.apply(context.Background(), execer); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(execer.stmts) != 1 {
		t.Fatalf("expected one statement, got %d", len(execer.stmts))
	}

	stmt := execer.stmts[0]
	if !strings.Contains(stmt, "ALTER TABLE accounts") ||
		!strings.Contains(stmt, "ADD COLUMN IF NOT EXISTS bio") {
		t.Fatalf("unexpected statement: %s", stmt)
	}
}

func TestExecOpPassesSQLThrough(t *testing.T) {
	execer := &fakeExecer{}

	op := Exec("CREATE TABLE t (id TEXT)")
	if err := op.apply(context.Background(), execer); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(execer.stmts) != 1 || execer.stmts[0] != "CREATE TABLE t (id TEXT)" {
		t.Fatalf("unexpected statements: %v", execer.stmts)
	}
}

func TestProfileColumnsAddedIfMissing(t *testing.T) {
	var step *Step
	for i := range migrations {
		if migrations[i].Version == 4 {
			step = &migrations[i]
		}
	}
	if step == nil {
		t.Fatalf("expected a version 4 step")
	}

	for _, op := range step.Ops {
		if _, ok := op.(addColumnOp); !ok {
			t.Fatalf("expected only column additions in step 4, got %T", op)
		}
	}
}
