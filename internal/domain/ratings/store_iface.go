package ratings

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type StoreAPI interface {
	Begin(ctx context.Context) (pgx.Tx, error)

	ListFinal(ctx context.Context, cycleID int64) ([]FinalRating, error)
	FinalForUpdateTx(ctx context.Context, tx pgx.Tx, ratingID int64) (FinalRating, error)
	UpdateFinalTx(ctx context.Context, tx pgx.Tx, ratingID int64, rank int, comments string) error

	ReportSummary(ctx context.Context, employeeID, cycleID int64) (ReportSummary, error)
	ReportGoals(ctx context.Context, employeeID, cycleID int64) ([]ReportGoal, error)
	ReportSelfAppraisals(ctx context.Context, employeeID, cycleID int64) ([]ReportSelfAppraisal, error)
	ReportFeedback(ctx context.Context, employeeID, cycleID int64) ([]ReportFeedback, error)

	ProgressCounts(ctx context.Context, employeeID, cycleID int64) (ProgressCounts, error)
}
