package ratings

import (
	"context"

	"apas/internal/domain/audit"
)

type CycleResolver interface {
	ActiveCycleID(ctx context.Context) (int64, error)
}

type Service struct {
	store  StoreAPI
	cycles CycleResolver
	scorer Scorer
	audit  audit.API
}

func NewService(store StoreAPI, cycles CycleResolver, scorer Scorer, recorder audit.API) *Service {
	return &Service{store: store, cycles: cycles, scorer: scorer, audit: recorder}
}

// Calculate runs the scoring strategy over a cycle. The whole calculation is
// one transaction; a failure leaves any previous results untouched, and
// re-running is an idempotent overwrite.
func (s *Service) Calculate(ctx context.Context, hrID, cycleID int64) (int64, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	count, err := s.scorer.ScoreCycle(ctx, tx, cycleID)
	if err != nil {
		return 0, err
	}

	if err := s.audit.RecordTx(ctx, tx, hrID, "ratings.calculate", "appraisal_cycle", cycleID, nil, map[string]any{"ratedEmployees": count}); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Service) ListFinal(ctx context.Context, cycleID int64) ([]FinalRating, error) {
	return s.store.ListFinal(ctx, cycleID)
}

// UpdateFinal lets HR adjust a published rank and attach closing comments.
func (s *Service) UpdateFinal(ctx context.Context, hrID, ratingID int64, rank int, comments string) error {
	if rank < 1 {
		return ErrMissingFields
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	before, err := s.store.FinalForUpdateTx(ctx, tx, ratingID)
	if err != nil {
		return err
	}

	if err := s.store.UpdateFinalTx(ctx, tx, ratingID, rank, comments); err != nil {
		return err
	}

	after := before
	after.Rank = rank
	after.Comments = &comments
	if err := s.audit.RecordTx(ctx, tx, hrID, "ratings.update_final", "final_rating", ratingID, before, after); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// EmployeeReport assembles the four report sections. It requires a published
// final rating; before finalization there is no report.
func (s *Service) EmployeeReport(ctx context.Context, employeeID, cycleID int64) (Report, error) {
	summary, err := s.store.ReportSummary(ctx, employeeID, cycleID)
	if err != nil {
		return Report{}, err
	}
	goals, err := s.store.ReportGoals(ctx, employeeID, cycleID)
	if err != nil {
		return Report{}, err
	}
	selfAppraisals, err := s.store.ReportSelfAppraisals(ctx, employeeID, cycleID)
	if err != nil {
		return Report{}, err
	}
	feedback, err := s.store.ReportFeedback(ctx, employeeID, cycleID)
	if err != nil {
		return Report{}, err
	}
	return Report{Summary: summary, Goals: goals, SelfAppraisals: selfAppraisals, Feedback: feedback}, nil
}

// EmployeeProgress reports which of the six appraisal stages the employee is
// in for the active cycle.
func (s *Service) EmployeeProgress(ctx context.Context, employeeID int64) (Progress, error) {
	cycleID, err := s.cycles.ActiveCycleID(ctx)
	if err != nil {
		return Progress{}, err
	}
	counts, err := s.store.ProgressCounts(ctx, employeeID, cycleID)
	if err != nil {
		return Progress{}, err
	}
	return Progress{CycleID: cycleID, Stage: StageLabel(counts)}, nil
}
