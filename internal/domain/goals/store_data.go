package goals

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

func (s *Store) BeginSerializable(ctx context.Context) (pgx.Tx, error) {
	return s.DB.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
}

func (s *Store) CurrentWeightage(ctx context.Context, employeeID, cycleID int64) (float64, error) {
	var total float64
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(SUM(goal_weightage), 0)
    FROM goals
    WHERE employee_id = $1 AND cycle_id = $2
  `, employeeID, cycleID).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

// CurrentWeightageTx re-reads the sum on the mutation's own transaction.
// excludeGoalID carves the goal being updated out of its own budget; 0
// excludes nothing.
func (s *Store) CurrentWeightageTx(ctx context.Context, tx pgx.Tx, employeeID, cycleID, excludeGoalID int64) (float64, error) {
	var total float64
	err := tx.QueryRow(ctx, `
    SELECT COALESCE(SUM(goal_weightage), 0)
    FROM goals
    WHERE employee_id = $1 AND cycle_id = $2 AND goal_id <> $3
  `, employeeID, cycleID, excludeGoalID).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) GoalForUpdateTx(ctx context.Context, tx pgx.Tx, goalID int64) (GoalRecord, error) {
	var rec GoalRecord
	err := tx.QueryRow(ctx, `
    SELECT goal_id, employee_id, cycle_id, goal_title, goal_description, goal_weightage, goal_status
    FROM goals
    WHERE goal_id = $1
    FOR UPDATE
  `, goalID).Scan(&rec.GoalID, &rec.EmployeeID, &rec.CycleID, &rec.Title, &rec.Description, &rec.Weightage, &rec.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return GoalRecord{}, ErrNotFound
	}
	if err != nil {
		return GoalRecord{}, err
	}
	return rec, nil
}

func (s *Store) InsertGoalTx(ctx context.Context, tx pgx.Tx, employeeID, cycleID int64, title, description string, weightage float64) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
    INSERT INTO goals (employee_id, cycle_id, goal_title, goal_description, goal_weightage, goal_status)
    VALUES ($1, $2, $3, $4, $5, $6)
    RETURNING goal_id
  `, employeeID, cycleID, title, description, weightage, StatusPendingApproval).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) UpdateGoalTx(ctx context.Context, tx pgx.Tx, goalID int64, title, description string, weightage float64) error {
	_, err := tx.Exec(ctx, `
    UPDATE goals
    SET goal_title = $1, goal_description = $2, goal_weightage = $3, updated_at = now()
    WHERE goal_id = $4
  `, title, description, weightage, goalID)
	return err
}

func (s *Store) DeleteGoalTx(ctx context.Context, tx pgx.Tx, goalID int64) error {
	_, err := tx.Exec(ctx, "DELETE FROM goals WHERE goal_id = $1", goalID)
	return err
}

func (s *Store) SetStatusTx(ctx context.Context, tx pgx.Tx, goalID int64, status string) error {
	_, err := tx.Exec(ctx, "UPDATE goals SET goal_status = $1, updated_at = now() WHERE goal_id = $2", status, goalID)
	return err
}

func (s *Store) InsertApprovalTx(ctx context.Context, tx pgx.Tx, goalID, managerID int64, feedback string) error {
	_, err := tx.Exec(ctx, `
    INSERT INTO goal_approvals (goal_id, manager_id, feedback, approved_at)
    VALUES ($1, $2, $3, now())
  `, goalID, managerID, feedback)
	return err
}

func (s *Store) InsertSelfAppraisalTx(ctx context.Context, tx pgx.Tx, goalID, employeeID int64, comments string, documentLink *string) error {
	_, err := tx.Exec(ctx, `
    INSERT INTO self_appraisals (goal_id, employee_id, comments, document_link, submission_date)
    VALUES ($1, $2, $3, $4, now())
  `, goalID, employeeID, comments, documentLink)
	return err
}

func (s *Store) UpsertManagerReviewTx(ctx context.Context, tx pgx.Tx, goalID, managerID int64, rating int, feedback string) error {
	_, err := tx.Exec(ctx, `
    INSERT INTO manager_reviews (goal_id, manager_id, rating, feedback, review_date)
    VALUES ($1, $2, $3, $4, now())
    ON CONFLICT (goal_id) DO UPDATE
    SET manager_id = EXCLUDED.manager_id,
        rating = EXCLUDED.rating,
        feedback = EXCLUDED.feedback,
        review_date = now()
  `, goalID, managerID, rating, feedback)
	return err
}

func (s *Store) IsManagerOfEmployee(ctx context.Context, employeeID, managerID int64) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM employees
    WHERE employee_id = $1 AND manager_id = $2
  `, employeeID, managerID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) ListGoals(ctx context.Context, employeeID, cycleID int64) ([]GoalSummary, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT goal_id, goal_title, goal_weightage, goal_status
    FROM goals
    WHERE employee_id = $1 AND cycle_id = $2
    ORDER BY goal_id ASC
  `, employeeID, cycleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GoalSummary
	for rows.Next() {
		var g GoalSummary
		if err := rows.Scan(&g.GoalID, &g.Title, &g.Weightage, &g.Status); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *Store) ListTeam(ctx context.Context, managerID int64) ([]TeamMember, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT e.employee_id, e.employee_name, d.department_name
    FROM employees e
    LEFT JOIN departments d ON e.department_id = d.department_id
    WHERE e.manager_id = $1
    ORDER BY e.employee_name
  `, managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TeamMember
	for rows.Next() {
		var m TeamMember
		if err := rows.Scan(&m.EmployeeID, &m.EmployeeName, &m.DepartmentName); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) ListPendingApprovals(ctx context.Context, managerID, cycleID int64) ([]PendingGoal, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT g.goal_id, g.goal_title, e.employee_name, g.goal_weightage
    FROM goals g
    JOIN employees e ON g.employee_id = e.employee_id
    WHERE e.manager_id = $1 AND g.goal_status = $2 AND g.cycle_id = $3
    ORDER BY g.goal_id
  `, managerID, StatusPendingApproval, cycleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PendingGoal
	for rows.Next() {
		var g PendingGoal
		if err := rows.Scan(&g.GoalID, &g.Title, &g.EmployeeName, &g.Weightage); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *Store) ListGoalsForReview(ctx context.Context, managerID, cycleID int64) ([]ReviewGoal, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT g.goal_id, g.goal_title, g.goal_weightage, e.employee_id, e.employee_name
    FROM goals g
    JOIN employees e ON g.employee_id = e.employee_id
    WHERE e.manager_id = $1 AND g.goal_status = $2 AND g.cycle_id = $3
    ORDER BY e.employee_name, g.goal_id
  `, managerID, StatusInProgress, cycleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReviewGoal
	for rows.Next() {
		var g ReviewGoal
		if err := rows.Scan(&g.GoalID, &g.Title, &g.Weightage, &g.EmployeeID, &g.EmployeeName); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
