package goals

import (
	"context"
	"strings"

	"apas/internal/domain/audit"
)

// CycleResolver supplies the active cycle every goal operation runs against.
type CycleResolver interface {
	ActiveCycleID(ctx context.Context) (int64, error)
}

type Service struct {
	store  StoreAPI
	cycles CycleResolver
	audit  audit.API
}

func NewService(store StoreAPI, cycles CycleResolver, recorder audit.API) *Service {
	return &Service{store: store, cycles: cycles, audit: recorder}
}

// CurrentWeightage sums the employee's non-deleted goals in the active cycle.
func (s *Service) CurrentWeightage(ctx context.Context, employeeID int64) (float64, error) {
	cycleID, err := s.cycles.ActiveCycleID(ctx)
	if err != nil {
		return 0, err
	}
	return s.store.CurrentWeightage(ctx, employeeID, cycleID)
}

// Create inserts a pending-approval goal. The budget re-read and the insert
// share one serializable transaction, so two concurrent submissions cannot
// both observe the same total and jointly exceed 100%.
func (s *Service) Create(ctx context.Context, employeeID int64, title, description string, weightage float64) (int64, error) {
	if strings.TrimSpace(title) == "" {
		return 0, ErrMissingFields
	}
	if !ValidWeightage(weightage) {
		return 0, ErrInvalidWeightage
	}

	cycleID, err := s.cycles.ActiveCycleID(ctx)
	if err != nil {
		return 0, err
	}

	tx, err := s.store.BeginSerializable(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	total, err := s.store.CurrentWeightageTx(ctx, tx, employeeID, cycleID, 0)
	if err != nil {
		return 0, err
	}
	if total+weightage > MaxTotalWeightage {
		return 0, WeightageExceededError{Remaining: MaxTotalWeightage - total}
	}

	id, err := s.store.InsertGoalTx(ctx, tx, employeeID, cycleID, title, description, weightage)
	if err != nil {
		return 0, err
	}

	created := GoalRecord{GoalID: id, EmployeeID: employeeID, CycleID: cycleID, Title: title, Description: description, Weightage: weightage, Status: StatusPendingApproval}
	if err := s.audit.RecordTx(ctx, tx, employeeID, "goal.create", "goal", id, nil, created); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return id, nil
}

// Update edits a goal that is still pending approval and owned by the caller.
// The weightage budget is recomputed with this goal carved out.
func (s *Service) Update(ctx context.Context, goalID, employeeID int64, title, description string, weightage float64) error {
	if strings.TrimSpace(title) == "" {
		return ErrMissingFields
	}
	if !ValidWeightage(weightage) {
		return ErrInvalidWeightage
	}

	tx, err := s.store.BeginSerializable(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	rec, err := s.store.GoalForUpdateTx(ctx, tx, goalID)
	if err != nil {
		return guardErr(err)
	}
	if rec.EmployeeID != employeeID || !Mutable(rec.Status) {
		return ErrForbiddenTransition
	}

	totalExcluding, err := s.store.CurrentWeightageTx(ctx, tx, employeeID, rec.CycleID, goalID)
	if err != nil {
		return err
	}
	remaining := MaxTotalWeightage - totalExcluding
	if weightage > remaining {
		return WeightageExceededError{Remaining: remaining}
	}

	if err := s.store.UpdateGoalTx(ctx, tx, goalID, title, description, weightage); err != nil {
		return err
	}

	updated := rec
	updated.Title = title
	updated.Description = description
	updated.Weightage = weightage
	if err := s.audit.RecordTx(ctx, tx, employeeID, "goal.update", "goal", goalID, rec, updated); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Delete hard-deletes a goal that is still pending approval and owned by the
// caller.
func (s *Service) Delete(ctx context.Context, goalID, employeeID int64) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	rec, err := s.store.GoalForUpdateTx(ctx, tx, goalID)
	if err != nil {
		return guardErr(err)
	}
	if rec.EmployeeID != employeeID || !Mutable(rec.Status) {
		return ErrForbiddenTransition
	}

	if err := s.store.DeleteGoalTx(ctx, tx, goalID); err != nil {
		return err
	}

	if err := s.audit.RecordTx(ctx, tx, employeeID, "goal.delete", "goal", goalID, rec, nil); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Service) List(ctx context.Context, employeeID int64) ([]GoalSummary, error) {
	cycleID, err := s.cycles.ActiveCycleID(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListGoals(ctx, employeeID, cycleID)
}

// guardErr reports a missing goal the same way as an ownership mismatch, so
// callers cannot probe which goal ids exist.
func guardErr(err error) error {
	if err == ErrNotFound {
		return ErrForbiddenTransition
	}
	return err
}
