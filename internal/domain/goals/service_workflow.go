package goals

import (
	"context"
	"strings"
)

// Approve moves a pending-approval goal to approved. Only the direct manager
// of the goal's owner may approve, and feedback text is mandatory.
func (s *Service) Approve(ctx context.Context, goalID, managerID int64, feedback string) error {
	if strings.TrimSpace(feedback) == "" {
		return ErrFeedbackRequired
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	rec, err := s.store.GoalForUpdateTx(ctx, tx, goalID)
	if err != nil {
		return guardErr(err)
	}

	owns, err := s.store.IsManagerOfEmployee(ctx, rec.EmployeeID, managerID)
	if err != nil {
		return err
	}
	if !owns {
		return ErrForbiddenTransition
	}

	next, err := NextStatus(rec.Status, EventApprove)
	if err != nil {
		return err
	}

	if err := s.store.InsertApprovalTx(ctx, tx, goalID, managerID, feedback); err != nil {
		return err
	}
	if err := s.store.SetStatusTx(ctx, tx, goalID, next); err != nil {
		return err
	}

	after := rec
	after.Status = next
	if err := s.audit.RecordTx(ctx, tx, managerID, "goal.approve", "goal", goalID, rec, after); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// SubmitSelfAppraisal records the owner's self-assessment against an approved
// goal and moves it to in_progress. A goal accepts exactly one self-appraisal;
// re-submitting fails the status transition.
func (s *Service) SubmitSelfAppraisal(ctx context.Context, goalID, employeeID int64, comments string, documentLink *string) error {
	if strings.TrimSpace(comments) == "" {
		return ErrCommentsRequired
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	rec, err := s.store.GoalForUpdateTx(ctx, tx, goalID)
	if err != nil {
		return guardErr(err)
	}
	if rec.EmployeeID != employeeID {
		return ErrForbiddenTransition
	}

	next, err := NextStatus(rec.Status, EventSubmitSelfAppraisal)
	if err != nil {
		return err
	}

	if err := s.store.InsertSelfAppraisalTx(ctx, tx, goalID, employeeID, comments, documentLink); err != nil {
		return err
	}
	if err := s.store.SetStatusTx(ctx, tx, goalID, next); err != nil {
		return err
	}

	after := rec
	after.Status = next
	if err := s.audit.RecordTx(ctx, tx, employeeID, "goal.self_appraisal", "goal", goalID, rec, after); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// SubmitReview records the manager's rating for an in-progress goal and marks
// it completed. Re-reviewing an already completed goal is rejected by the
// status transition, so the upsert only ever amends within the same submit.
func (s *Service) SubmitReview(ctx context.Context, goalID, managerID int64, rating int, comments string) error {
	if !ValidRating(rating) {
		return ErrInvalidRating
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	rec, err := s.store.GoalForUpdateTx(ctx, tx, goalID)
	if err != nil {
		return guardErr(err)
	}

	owns, err := s.store.IsManagerOfEmployee(ctx, rec.EmployeeID, managerID)
	if err != nil {
		return err
	}
	if !owns {
		return ErrForbiddenTransition
	}

	next, err := NextStatus(rec.Status, EventSubmitReview)
	if err != nil {
		return err
	}

	if err := s.store.UpsertManagerReviewTx(ctx, tx, goalID, managerID, rating, comments); err != nil {
		return err
	}
	if err := s.store.SetStatusTx(ctx, tx, goalID, next); err != nil {
		return err
	}

	after := rec
	after.Status = next
	if err := s.audit.RecordTx(ctx, tx, managerID, "goal.review", "goal", goalID, rec, after); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Service) Team(ctx context.Context, managerID int64) ([]TeamMember, error) {
	return s.store.ListTeam(ctx, managerID)
}

func (s *Service) PendingApprovals(ctx context.Context, managerID int64) ([]PendingGoal, error) {
	cycleID, err := s.cycles.ActiveCycleID(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListPendingApprovals(ctx, managerID, cycleID)
}

func (s *Service) GoalsForReview(ctx context.Context, managerID int64) ([]ReviewGoal, error) {
	cycleID, err := s.cycles.ActiveCycleID(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListGoalsForReview(ctx, managerID, cycleID)
}
