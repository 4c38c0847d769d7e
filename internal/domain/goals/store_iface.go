package goals

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type StoreAPI interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	// BeginSerializable opens the transaction used for the weightage
	// check-then-insert path.
	BeginSerializable(ctx context.Context) (pgx.Tx, error)

	CurrentWeightage(ctx context.Context, employeeID, cycleID int64) (float64, error)
	CurrentWeightageTx(ctx context.Context, tx pgx.Tx, employeeID, cycleID, excludeGoalID int64) (float64, error)

	GoalForUpdateTx(ctx context.Context, tx pgx.Tx, goalID int64) (GoalRecord, error)
	InsertGoalTx(ctx context.Context, tx pgx.Tx, employeeID, cycleID int64, title, description string, weightage float64) (int64, error)
	UpdateGoalTx(ctx context.Context, tx pgx.Tx, goalID int64, title, description string, weightage float64) error
	DeleteGoalTx(ctx context.Context, tx pgx.Tx, goalID int64) error
	SetStatusTx(ctx context.Context, tx pgx.Tx, goalID int64, status string) error

	InsertApprovalTx(ctx context.Context, tx pgx.Tx, goalID, managerID int64, feedback string) error
	InsertSelfAppraisalTx(ctx context.Context, tx pgx.Tx, goalID, employeeID int64, comments string, documentLink *string) error
	UpsertManagerReviewTx(ctx context.Context, tx pgx.Tx, goalID, managerID int64, rating int, feedback string) error

	IsManagerOfEmployee(ctx context.Context, employeeID, managerID int64) (bool, error)

	ListGoals(ctx context.Context, employeeID, cycleID int64) ([]GoalSummary, error)
	ListTeam(ctx context.Context, managerID int64) ([]TeamMember, error)
	ListPendingApprovals(ctx context.Context, managerID, cycleID int64) ([]PendingGoal, error)
	ListGoalsForReview(ctx context.Context, managerID, cycleID int64) ([]ReviewGoal, error)
}
