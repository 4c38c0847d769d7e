package goals

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
)

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeAudit struct {
	actions []string
	actors  []int64
}

func (a *fakeAudit) RecordTx(ctx context.Context, tx pgx.Tx, actorID int64, action, entityType string, entityID int64, before, after any) error {
	a.actions = append(a.actions, action)
	a.actors = append(a.actors, actorID)
	return nil
}

type fakeCycles struct {
	id  int64
	err error
}

func (c *fakeCycles) ActiveCycleID(ctx context.Context) (int64, error) {
	return c.id, c.err
}

type fakeStore struct {
	tx             *fakeTx
	goals          map[int64]GoalRecord
	managerOf      map[int64]int64
	selfAppraisals map[int64]int
	reviews        map[int64]int
	approvals      map[int64]string
	nextID         int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		goals:          map[int64]GoalRecord{},
		managerOf:      map[int64]int64{},
		selfAppraisals: map[int64]int{},
		reviews:        map[int64]int{},
		approvals:      map[int64]string{},
		nextID:         1,
	}
}

func (s *fakeStore) addGoal(employeeID, cycleID int64, weightage float64, status string) int64 {
	id := s.nextID
	s.nextID++
	s.goals[id] = GoalRecord{GoalID: id, EmployeeID: employeeID, CycleID: cycleID, Title: "goal", Weightage: weightage, Status: status}
	return id
}

func (s *fakeStore) Begin(ctx context.Context) (pgx.Tx, error) {
	s.tx = &fakeTx{}
	return s.tx, nil
}

func (s *fakeStore) BeginSerializable(ctx context.Context) (pgx.Tx, error) {
	return s.Begin(ctx)
}

func (s *fakeStore) total(employeeID, cycleID, excludeGoalID int64) float64 {
	var total float64
	for _, g := range s.goals {
		if g.EmployeeID == employeeID && g.CycleID == cycleID && g.GoalID != excludeGoalID {
			total += g.Weightage
		}
	}
	return total
}

func (s *fakeStore) CurrentWeightage(ctx context.Context, employeeID, cycleID int64) (float64, error) {
	return s.total(employeeID, cycleID, 0), nil
}

func (s *fakeStore) CurrentWeightageTx(ctx context.Context, tx pgx.Tx, employeeID, cycleID, excludeGoalID int64) (float64, error) {
	return s.total(employeeID, cycleID, excludeGoalID), nil
}

func (s *fakeStore) GoalForUpdateTx(ctx context.Context, tx pgx.Tx, goalID int64) (GoalRecord, error) {
	g, ok := s.goals[goalID]
	if !ok {
		return GoalRecord{}, ErrNotFound
	}
	return g, nil
}

func (s *fakeStore) InsertGoalTx(ctx context.Context, tx pgx.Tx, employeeID, cycleID int64, title, description string, weightage float64) (int64, error) {
	id := s.nextID
	s.nextID++
	s.goals[id] = GoalRecord{GoalID: id, EmployeeID: employeeID, CycleID: cycleID, Title: title, Description: description, Weightage: weightage, Status: StatusPendingApproval}
	return id, nil
}

func (s *fakeStore) UpdateGoalTx(ctx context.Context, tx pgx.Tx, goalID int64, title, description string, weightage float64) error {
	g := s.goals[goalID]
	g.Title = title
	g.Description = description
	g.Weightage = weightage
	s.goals[goalID] = g
	return nil
}

func (s *fakeStore) DeleteGoalTx(ctx context.Context, tx pgx.Tx, goalID int64) error {
	delete(s.goals, goalID)
	return nil
}

func (s *fakeStore) SetStatusTx(ctx context.Context, tx pgx.Tx, goalID int64, status string) error {
	g := s.goals[goalID]
	g.Status = status
	s.goals[goalID] = g
	return nil
}

func (s *fakeStore) InsertApprovalTx(ctx context.Context, tx pgx.Tx, goalID, managerID int64, feedback string) error {
	s.approvals[goalID] = feedback
	return nil
}

func (s *fakeStore) InsertSelfAppraisalTx(ctx context.Context, tx pgx.Tx, goalID, employeeID int64, comments string, documentLink *string) error {
	s.selfAppraisals[goalID]++
	return nil
}

func (s *fakeStore) UpsertManagerReviewTx(ctx context.Context, tx pgx.Tx, goalID, managerID int64, rating int, feedback string) error {
	s.reviews[goalID] = rating
	return nil
}

func (s *fakeStore) IsManagerOfEmployee(ctx context.Context, employeeID, managerID int64) (bool, error) {
	return s.managerOf[employeeID] == managerID, nil
}

func (s *fakeStore) ListGoals(ctx context.Context, employeeID, cycleID int64) ([]GoalSummary, error) {
	return nil, nil
}

func (s *fakeStore) ListTeam(ctx context.Context, managerID int64) ([]TeamMember, error) {
	return nil, nil
}

func (s *fakeStore) ListPendingApprovals(ctx context.Context, managerID, cycleID int64) ([]PendingGoal, error) {
	return nil, nil
}

func (s *fakeStore) ListGoalsForReview(ctx context.Context, managerID, cycleID int64) ([]ReviewGoal, error) {
	return nil, nil
}

func newService(store *fakeStore) (*Service, *fakeAudit) {
	recorder := &fakeAudit{}
	return NewService(store, &fakeCycles{id: 1}, recorder), recorder
}

func TestCreateRejectsOverBudget(t *testing.T) {
	store := newFakeStore()
	store.addGoal(5, 1, 40, StatusApproved)
	store.addGoal(5, 1, 30, StatusPendingApproval)
	svc, _ := newService(store)

	_, err := svc.Create(context.Background(), 5, "stretch goal", "", 40)
	var exceeded WeightageExceededError
	if !errors.As(err, &exceeded) {
		t.Fatalf("expected WeightageExceededError, got %v", err)
	}
	if exceeded.Remaining != 30 {
		t.Fatalf("expected remaining budget 30, got %v", exceeded.Remaining)
	}
	if store.tx.committed {
		t.Fatal("transaction must not commit on a rejected goal")
	}
}

func TestCreateFillsBudgetExactly(t *testing.T) {
	store := newFakeStore()
	store.addGoal(5, 1, 40, StatusApproved)
	store.addGoal(5, 1, 30, StatusPendingApproval)
	svc, recorder := newService(store)

	id, err := svc.Create(context.Background(), 5, "stretch goal", "ship it", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g := store.goals[id]; g.Status != StatusPendingApproval {
		t.Fatalf("new goal must start pending_approval, got %q", g.Status)
	}
	if total := store.total(5, 1, 0); total != 100 {
		t.Fatalf("expected total weightage 100, got %v", total)
	}
	if !store.tx.committed {
		t.Fatal("transaction was not committed")
	}
	if len(recorder.actions) != 1 || recorder.actions[0] != "goal.create" {
		t.Fatalf("expected a goal.create audit event, got %v", recorder.actions)
	}
	if recorder.actors[0] != 5 {
		t.Fatalf("audit actor should be the employee, got %d", recorder.actors[0])
	}
}

func TestCreateValidation(t *testing.T) {
	store := newFakeStore()
	svc, _ := newService(store)

	if _, err := svc.Create(context.Background(), 5, "  ", "", 10); err != ErrMissingFields {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
	if _, err := svc.Create(context.Background(), 5, "goal", "", 0); err != ErrInvalidWeightage {
		t.Fatalf("expected ErrInvalidWeightage, got %v", err)
	}
	if _, err := svc.Create(context.Background(), 5, "goal", "", 101); err != ErrInvalidWeightage {
		t.Fatalf("expected ErrInvalidWeightage, got %v", err)
	}
}

func TestUpdateExcludesOwnWeightFromBudget(t *testing.T) {
	store := newFakeStore()
	id := store.addGoal(5, 1, 40, StatusPendingApproval)
	store.addGoal(5, 1, 50, StatusApproved)
	svc, _ := newService(store)

	// 50% is held by the other goal, so this goal may grow to 50%.
	if err := svc.Update(context.Background(), id, 5, "goal", "", 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := svc.Update(context.Background(), id, 5, "goal", "", 51)
	var exceeded WeightageExceededError
	if !errors.As(err, &exceeded) {
		t.Fatalf("expected WeightageExceededError, got %v", err)
	}
	if exceeded.Remaining != 50 {
		t.Fatalf("expected remaining budget 50, got %v", exceeded.Remaining)
	}
}

func TestUpdateGuards(t *testing.T) {
	store := newFakeStore()
	mine := store.addGoal(5, 1, 40, StatusApproved)
	theirs := store.addGoal(6, 1, 40, StatusPendingApproval)
	svc, _ := newService(store)

	if err := svc.Update(context.Background(), mine, 5, "goal", "", 40); err != ErrForbiddenTransition {
		t.Fatalf("approved goal edit: expected ErrForbiddenTransition, got %v", err)
	}
	if err := svc.Update(context.Background(), theirs, 5, "goal", "", 40); err != ErrForbiddenTransition {
		t.Fatalf("foreign goal edit: expected ErrForbiddenTransition, got %v", err)
	}
	if err := svc.Update(context.Background(), 999, 5, "goal", "", 40); err != ErrForbiddenTransition {
		t.Fatalf("missing goal edit: expected ErrForbiddenTransition, got %v", err)
	}
}

func TestDeleteGuards(t *testing.T) {
	store := newFakeStore()
	pending := store.addGoal(5, 1, 40, StatusPendingApproval)
	approved := store.addGoal(5, 1, 30, StatusApproved)
	svc, recorder := newService(store)

	if err := svc.Delete(context.Background(), approved, 5); err != ErrForbiddenTransition {
		t.Fatalf("approved goal delete: expected ErrForbiddenTransition, got %v", err)
	}
	if err := svc.Delete(context.Background(), pending, 6); err != ErrForbiddenTransition {
		t.Fatalf("foreign goal delete: expected ErrForbiddenTransition, got %v", err)
	}

	if err := svc.Delete(context.Background(), pending, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.goals[pending]; ok {
		t.Fatal("goal was not deleted")
	}
	if len(recorder.actions) != 1 || recorder.actions[0] != "goal.delete" {
		t.Fatalf("expected a goal.delete audit event, got %v", recorder.actions)
	}
}

func TestApprove(t *testing.T) {
	store := newFakeStore()
	store.managerOf[5] = 9
	id := store.addGoal(5, 1, 40, StatusPendingApproval)
	svc, recorder := newService(store)

	if err := svc.Approve(context.Background(), id, 9, ""); err != ErrFeedbackRequired {
		t.Fatalf("expected ErrFeedbackRequired, got %v", err)
	}
	if err := svc.Approve(context.Background(), id, 7, "fine"); err != ErrForbiddenTransition {
		t.Fatalf("non-manager approve: expected ErrForbiddenTransition, got %v", err)
	}

	if err := svc.Approve(context.Background(), id, 9, "well scoped"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g := store.goals[id]; g.Status != StatusApproved {
		t.Fatalf("expected status approved, got %q", g.Status)
	}
	if store.approvals[id] != "well scoped" {
		t.Fatal("approval feedback was not recorded")
	}
	if recorder.actors[len(recorder.actors)-1] != 9 {
		t.Fatal("audit actor should be the approving manager")
	}

	// A second approve finds the goal already approved.
	if err := svc.Approve(context.Background(), id, 9, "again"); err != ErrForbiddenTransition {
		t.Fatalf("double approve: expected ErrForbiddenTransition, got %v", err)
	}
}

func TestSelfAppraisalFlow(t *testing.T) {
	store := newFakeStore()
	id := store.addGoal(5, 1, 40, StatusApproved)
	svc, _ := newService(store)

	if err := svc.SubmitSelfAppraisal(context.Background(), id, 6, "done", nil); err != ErrForbiddenTransition {
		t.Fatalf("foreign self-appraisal: expected ErrForbiddenTransition, got %v", err)
	}
	if err := svc.SubmitSelfAppraisal(context.Background(), id, 5, " ", nil); err != ErrCommentsRequired {
		t.Fatalf("expected ErrCommentsRequired, got %v", err)
	}

	if err := svc.SubmitSelfAppraisal(context.Background(), id, 5, "delivered on time", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g := store.goals[id]; g.Status != StatusInProgress {
		t.Fatalf("expected status in_progress, got %q", g.Status)
	}

	// The goal is now in_progress, so a second submission is rejected.
	if err := svc.SubmitSelfAppraisal(context.Background(), id, 5, "delivered again", nil); err != ErrForbiddenTransition {
		t.Fatalf("second self-appraisal: expected ErrForbiddenTransition, got %v", err)
	}
	if store.selfAppraisals[id] != 1 {
		t.Fatalf("expected exactly one stored self-appraisal, got %d", store.selfAppraisals[id])
	}
}

func TestSubmitReview(t *testing.T) {
	store := newFakeStore()
	store.managerOf[5] = 9
	pending := store.addGoal(5, 1, 40, StatusPendingApproval)
	inProgress := store.addGoal(5, 1, 30, StatusInProgress)
	svc, _ := newService(store)

	if err := svc.SubmitReview(context.Background(), inProgress, 9, 0, "ok"); err != ErrInvalidRating {
		t.Fatalf("expected ErrInvalidRating, got %v", err)
	}
	if err := svc.SubmitReview(context.Background(), inProgress, 7, 4, "ok"); err != ErrForbiddenTransition {
		t.Fatalf("non-manager review: expected ErrForbiddenTransition, got %v", err)
	}
	// A goal cannot jump from pending_approval straight to completed.
	if err := svc.SubmitReview(context.Background(), pending, 9, 4, "ok"); err != ErrForbiddenTransition {
		t.Fatalf("pending goal review: expected ErrForbiddenTransition, got %v", err)
	}

	if err := svc.SubmitReview(context.Background(), inProgress, 9, 4, "solid delivery"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g := store.goals[inProgress]; g.Status != StatusCompleted {
		t.Fatalf("expected status completed, got %q", g.Status)
	}
	if store.reviews[inProgress] != 4 {
		t.Fatal("rating was not recorded")
	}
}

func TestCreateRequiresActiveCycle(t *testing.T) {
	store := newFakeStore()
	wantErr := errors.New("no active appraisal cycle")
	svc := NewService(store, &fakeCycles{err: wantErr}, &fakeAudit{})

	if _, err := svc.Create(context.Background(), 5, "goal", "", 10); err != wantErr {
		t.Fatalf("expected cycle resolution error, got %v", err)
	}
}
