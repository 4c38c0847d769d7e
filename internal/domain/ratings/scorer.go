package ratings

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Scorer computes and persists every final rating for a cycle inside the
// caller's transaction. Swapping the implementation changes the scoring
// formula without touching the finalization flow around it.
type Scorer interface {
	ScoreCycle(ctx context.Context, tx pgx.Tx, cycleID int64) (int64, error)
}

// SQLScorer is the default scoring strategy. Each employee's score is the
// weightage-weighted average of their completed-goal ratings, and rank is
// dense over descending score. Recalculating a cycle replaces its previous
// results wholesale.
type SQLScorer struct{}

func (SQLScorer) ScoreCycle(ctx context.Context, tx pgx.Tx, cycleID int64) (int64, error) {
	if _, err := tx.Exec(ctx, `
    DELETE FROM final_ratings WHERE cycle_id = $1
  `, cycleID); err != nil {
		return 0, err
	}

	tag, err := tx.Exec(ctx, `
    INSERT INTO final_ratings (employee_id, cycle_id, weighted_score, rank, calculated_at)
    SELECT scored.employee_id,
           $1,
           scored.weighted_score,
           RANK() OVER (ORDER BY scored.weighted_score DESC),
           now()
    FROM (
      SELECT g.employee_id,
             SUM(mr.rating * g.goal_weightage) / 100.0 AS weighted_score
      FROM goals g
      JOIN manager_reviews mr ON mr.goal_id = g.goal_id
      WHERE g.cycle_id = $1 AND g.goal_status = 'completed'
      GROUP BY g.employee_id
    ) scored
  `, cycleID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
