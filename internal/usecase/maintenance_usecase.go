package usecase

import (
	"context"
)

// MaintenanceUseCase carries the administrative wipe. It is wired only
// to operator surfaces, never to the user-facing API.
type MaintenanceUseCase struct {
	maintRepo MaintenanceRepository
	session   *Session
}

// NewMaintenanceUseCase creates a new MaintenanceUseCase.
func NewMaintenanceUseCase(maintRepo MaintenanceRepository, session *Session) *MaintenanceUseCase {
	return &MaintenanceUseCase{
		maintRepo: maintRepo,
		session:   session,
	}
}

// ClearAllData wipes every table and ends the active session. This is
// the only operation allowed to remove ledger entries.
func (uc *MaintenanceUseCase) ClearAllData(ctx context.Context) error {
	if err := uc.maintRepo.ClearAllData(ctx); err != nil {
		return err
	}

	if uc.session != nil {
		uc.session.Logout()
	}

	return nil
}
