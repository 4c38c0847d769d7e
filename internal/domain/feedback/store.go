package feedback

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StoreAPI interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	InsertFeedbackTx(ctx context.Context, tx pgx.Tx, employeeID, reviewerID, cycleID int64, rating int, comments string) (int64, error)
	ListFor(ctx context.Context, employeeID, cycleID int64) ([]Feedback, error)
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Begin(ctx context.Context) (pgx.Tx, error) {
	return s.DB.Begin(ctx)
}

// InsertFeedbackTx relies on the unique (employee_id, reviewer_id, cycle_id)
// index to catch repeat submissions.
func (s *Store) InsertFeedbackTx(ctx context.Context, tx pgx.Tx, employeeID, reviewerID, cycleID int64, rating int, comments string) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
    INSERT INTO feedback_360 (employee_id, reviewer_id, cycle_id, rating, comments, submitted_at)
    VALUES ($1, $2, $3, $4, $5, now())
    RETURNING feedback_id
  `, employeeID, reviewerID, cycleID, rating, comments).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	return id, nil
}

func (s *Store) ListFor(ctx context.Context, employeeID, cycleID int64) ([]Feedback, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT f.feedback_id, f.employee_id, f.reviewer_id, r.employee_name, f.cycle_id,
           f.rating, f.comments, f.submitted_at
    FROM feedback_360 f
    JOIN employees r ON r.employee_id = f.reviewer_id
    WHERE f.employee_id = $1 AND f.cycle_id = $2
    ORDER BY f.submitted_at DESC
  `, employeeID, cycleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Feedback
	for rows.Next() {
		var f Feedback
		if err := rows.Scan(&f.FeedbackID, &f.EmployeeID, &f.ReviewerID, &f.ReviewerName, &f.CycleID, &f.Rating, &f.Comments, &f.SubmittedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
