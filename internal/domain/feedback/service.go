package feedback

import (
	"context"
	"strings"

	"apas/internal/domain/audit"
)

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

// Submit records anonymous-to-the-recipient peer feedback in the active
// cycle. The self-review check runs before anything touches the database.
func (s *Service) Submit(ctx context.Context, reviewerID, employeeID int64, rating int, comments string) (int64, error) {
	if employeeID == reviewerID {
		return 0, ErrSelfReview
	}
	if employeeID <= 0 || strings.TrimSpace(comments) == "" {
		return 0, ErrMissingFields
	}
	if rating < 1 || rating > 5 {
		return 0, ErrInvalidRating
	}

	cycleID, err := s.cycles.ActiveCycleID(ctx)
	if err != nil {
		return 0, err
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	id, err := s.store.InsertFeedbackTx(ctx, tx, employeeID, reviewerID, cycleID, rating, comments)
	if err != nil {
		return 0, err
	}

	entry := Feedback{FeedbackID: id, EmployeeID: employeeID, ReviewerID: reviewerID, CycleID: cycleID, Rating: rating, Comments: comments}
	if err := s.audit.RecordTx(ctx, tx, reviewerID, "feedback.submit", "feedback_360", id, nil, entry); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return id, nil
}

// ListFor returns an employee's received feedback in the active cycle,
// newest first.
func (s *Service) ListFor(ctx context.Context, employeeID int64) ([]Feedback, error) {
	cycleID, err := s.cycles.ActiveCycleID(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListFor(ctx, employeeID, cycleID)
}
