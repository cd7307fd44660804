package postgres

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func TestDecimalNumericRoundTrip(t *testing.T) {
	values := []string{"0", "100.50", "-42.125", "0.00000001", "123456789.987654321"}

	for _, v := range values {
		d, err := decimal.NewFromString(v)
		if err != nil {
			t.Fatalf("bad test value %q: %v", v, err)
		}

		got := numericToDecimal(decimalToNumeric(d))
		if !got.Equal(d) {
			t.Errorf("round trip of %s produced %s", d, got)
		}
	}
}

func TestNumericToDecimalInvalid(t *testing.T) {
	got := numericToDecimal(pgtype.Numeric{})
	if !got.IsZero() {
		t.Fatalf("expected zero for invalid numeric, got %s", got)
	}
}

func TestTextOrNull(t *testing.T) {
	if textOrNull("").Valid {
		t.Fatalf("expected empty string to map to NULL")
	}

	v := textOrNull("bitcoin")
	if !v.Valid || v.String != "bitcoin" {
		t.Fatalf("unexpected text value: %+v", v)
	}

	if got := textFromPg(pgtype.Text{}); got != "" {
		t.Fatalf("expected empty string for NULL, got %q", got)
	}
	if got := textFromPg(v); got != "bitcoin" {
		t.Fatalf("expected bitcoin, got %q", got)
	}
}
