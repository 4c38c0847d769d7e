package cycle

import (
	"context"
	"strings"
	"time"

	"apas/internal/domain/audit"
)

type Service struct {
	store StoreAPI
	audit audit.API
}

func NewService(store StoreAPI, recorder audit.API) *Service {
	return &Service{store: store, audit: recorder}
}

// Create inserts a new cycle in the inactive state. HR activates it as a
// separate step.
func (s *Service) Create(ctx context.Context, actorID int64, name string, start, end time.Time) (int64, error) {
	if strings.TrimSpace(name) == "" || start.IsZero() || end.IsZero() {
		return 0, ErrMissingFields
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	id, err := s.store.InsertCycleTx(ctx, tx, name, start, end)
	if err != nil {
		return 0, err
	}

	created := Cycle{CycleID: id, CycleName: name, StartDate: start, EndDate: end, Status: StatusInactive}
	if err := s.audit.RecordTx(ctx, tx, actorID, "cycle.create", "appraisal_cycle", id, nil, created); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return id, nil
}

// SetStatus moves a cycle between inactive, active and closed. Activating a
// cycle deactivates every other active cycle in the same transaction, so the
// single-active invariant holds at every commit point.
func (s *Service) SetStatus(ctx context.Context, actorID, cycleID int64, newStatus string) error {
	if !ValidStatus(newStatus) {
		return ErrInvalidStatus
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if newStatus == StatusActive {
		if _, err := s.store.DeactivateActiveTx(ctx, tx); err != nil {
			return err
		}
	}

	found, err := s.store.SetStatusTx(ctx, tx, cycleID, newStatus)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}

	change := map[string]string{"status": newStatus}
	if err := s.audit.RecordTx(ctx, tx, actorID, "cycle.set_status", "appraisal_cycle", cycleID, nil, change); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Service) ActiveCycleID(ctx context.Context) (int64, error) {
	return s.store.ActiveCycleID(ctx)
}

func (s *Service) List(ctx context.Context) ([]Cycle, error) {
	return s.store.List(ctx)
}
