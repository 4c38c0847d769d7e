package ratings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Begin(ctx context.Context) (pgx.Tx, error) {
	return s.DB.Begin(ctx)
}

func (s *Store) ListFinal(ctx context.Context, cycleID int64) ([]FinalRating, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT fr.rating_id, fr.employee_id, e.employee_name, fr.cycle_id,
           fr.weighted_score, fr.rank, fr.comments, fr.calculated_at
    FROM final_ratings fr
    JOIN employees e ON e.employee_id = fr.employee_id
    WHERE fr.cycle_id = $1
    ORDER BY fr.weighted_score DESC, e.employee_name ASC
  `, cycleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FinalRating
	for rows.Next() {
		var fr FinalRating
		if err := rows.Scan(&fr.RatingID, &fr.EmployeeID, &fr.EmployeeName, &fr.CycleID, &fr.WeightedScore, &fr.Rank, &fr.Comments, &fr.CalculatedAt); err != nil {
			return nil, err
		}
		out = append(out, fr)
	}
	return out, rows.Err()
}

func (s *Store) FinalForUpdateTx(ctx context.Context, tx pgx.Tx, ratingID int64) (FinalRating, error) {
	var fr FinalRating
	err := tx.QueryRow(ctx, `
    SELECT fr.rating_id, fr.employee_id, e.employee_name, fr.cycle_id,
           fr.weighted_score, fr.rank, fr.comments, fr.calculated_at
    FROM final_ratings fr
    JOIN employees e ON e.employee_id = fr.employee_id
    WHERE fr.rating_id = $1
    FOR UPDATE OF fr
  `, ratingID).Scan(&fr.RatingID, &fr.EmployeeID, &fr.EmployeeName, &fr.CycleID, &fr.WeightedScore, &fr.Rank, &fr.Comments, &fr.CalculatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return FinalRating{}, ErrNotFound
	}
	if err != nil {
		return FinalRating{}, err
	}
	return fr, nil
}

func (s *Store) UpdateFinalTx(ctx context.Context, tx pgx.Tx, ratingID int64, rank int, comments string) error {
	_, err := tx.Exec(ctx, `
    UPDATE final_ratings SET rank = $2, comments = $3 WHERE rating_id = $1
  `, ratingID, rank, comments)
	return err
}

func (s *Store) ReportSummary(ctx context.Context, employeeID, cycleID int64) (ReportSummary, error) {
	var sum ReportSummary
	err := s.DB.QueryRow(ctx, `
    SELECT e.employee_id, e.employee_name, d.department_name, m.employee_name,
           c.cycle_name, fr.weighted_score, fr.rank
    FROM final_ratings fr
    JOIN employees e ON e.employee_id = fr.employee_id
    LEFT JOIN departments d ON d.department_id = e.department_id
    LEFT JOIN employees m ON m.employee_id = e.manager_id
    JOIN appraisal_cycles c ON c.cycle_id = fr.cycle_id
    WHERE fr.employee_id = $1 AND fr.cycle_id = $2
  `, employeeID, cycleID).Scan(&sum.EmployeeID, &sum.EmployeeName, &sum.DepartmentName, &sum.ManagerName, &sum.CycleName, &sum.WeightedScore, &sum.Rank)
	if errors.Is(err, pgx.ErrNoRows) {
		return ReportSummary{}, ErrReportNotFound
	}
	if err != nil {
		return ReportSummary{}, err
	}
	return sum, nil
}

func (s *Store) ReportGoals(ctx context.Context, employeeID, cycleID int64) ([]ReportGoal, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT g.goal_title, g.goal_weightage, g.goal_status, mr.rating, mr.feedback
    FROM goals g
    LEFT JOIN manager_reviews mr ON mr.goal_id = g.goal_id
    WHERE g.employee_id = $1 AND g.cycle_id = $2
    ORDER BY g.goal_id ASC
  `, employeeID, cycleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReportGoal
	for rows.Next() {
		var g ReportGoal
		if err := rows.Scan(&g.Title, &g.Weightage, &g.Status, &g.Rating, &g.ManagerFeedback); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *Store) ReportSelfAppraisals(ctx context.Context, employeeID, cycleID int64) ([]ReportSelfAppraisal, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT g.goal_title, sa.comments, sa.submission_date
    FROM self_appraisals sa
    JOIN goals g ON g.goal_id = sa.goal_id
    WHERE sa.employee_id = $1 AND g.cycle_id = $2
    ORDER BY sa.submission_date ASC
  `, employeeID, cycleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReportSelfAppraisal
	for rows.Next() {
		var sa ReportSelfAppraisal
		if err := rows.Scan(&sa.GoalTitle, &sa.Comments, &sa.SubmittedAt); err != nil {
			return nil, err
		}
		out = append(out, sa)
	}
	return out, rows.Err()
}

func (s *Store) ReportFeedback(ctx context.Context, employeeID, cycleID int64) ([]ReportFeedback, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT r.employee_name, f.rating, f.comments, f.submitted_at
    FROM feedback_360 f
    JOIN employees r ON r.employee_id = f.reviewer_id
    WHERE f.employee_id = $1 AND f.cycle_id = $2
    ORDER BY f.submitted_at DESC
  `, employeeID, cycleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReportFeedback
	for rows.Next() {
		var f ReportFeedback
		if err := rows.Scan(&f.ReviewerName, &f.Rating, &f.Comments, &f.SubmittedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *Store) ProgressCounts(ctx context.Context, employeeID, cycleID int64) (ProgressCounts, error) {
	var c ProgressCounts
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(*),
           COUNT(*) FILTER (WHERE g.goal_status = 'pending_approval'),
           COUNT(*) FILTER (WHERE g.goal_status = 'approved'),
           COUNT(*) FILTER (WHERE g.goal_status = 'in_progress'),
           COUNT(*) FILTER (WHERE g.goal_status = 'completed'),
           EXISTS (
             SELECT 1 FROM final_ratings fr
             WHERE fr.employee_id = $1 AND fr.cycle_id = $2
           )
    FROM goals g
    WHERE g.employee_id = $1 AND g.cycle_id = $2
  `, employeeID, cycleID).Scan(&c.TotalGoals, &c.PendingGoals, &c.ApprovedGoals, &c.InProgressGoals, &c.CompletedGoals, &c.HasFinalRating)
	if err != nil {
		return ProgressCounts{}, err
	}
	return c, nil
}
