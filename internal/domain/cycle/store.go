package cycle

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StoreAPI interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	InsertCycleTx(ctx context.Context, tx pgx.Tx, name string, start, end time.Time) (int64, error)
	DeactivateActiveTx(ctx context.Context, tx pgx.Tx) (int64, error)
	SetStatusTx(ctx context.Context, tx pgx.Tx, cycleID int64, status string) (bool, error)
	ActiveCycleID(ctx context.Context) (int64, error)
	List(ctx context.Context) ([]Cycle, error)
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

func (s *Store) InsertCycleTx(ctx context.Context, tx pgx.Tx, name string, start, end time.Time) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
    INSERT INTO appraisal_cycles (cycle_name, start_date, end_date, status)
    VALUES ($1, $2, $3, $4)
    RETURNING cycle_id
  `, name, start, end, StatusInactive).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) DeactivateActiveTx(ctx context.Context, tx pgx.Tx) (int64, error) {
	tag, err := tx.Exec(ctx, "UPDATE appraisal_cycles SET status = $1 WHERE status = $2", StatusInactive, StatusActive)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Store) SetStatusTx(ctx context.Context, tx pgx.Tx, cycleID int64, status string) (bool, error) {
	tag, err := tx.Exec(ctx, "UPDATE appraisal_cycles SET status = $1 WHERE cycle_id = $2", status, cycleID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) ActiveCycleID(ctx context.Context) (int64, error) {
	var id int64
	err := s.DB.QueryRow(ctx, "SELECT cycle_id FROM appraisal_cycles WHERE status = $1 LIMIT 1", StatusActive).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNoActiveCycle
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) List(ctx context.Context) ([]Cycle, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT cycle_id, cycle_name, start_date, end_date, status
    FROM appraisal_cycles
    ORDER BY start_date DESC
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cycles []Cycle
	for rows.Next() {
		var c Cycle
		if err := rows.Scan(&c.CycleID, &c.CycleName, &c.StartDate, &c.EndDate, &c.Status); err != nil {
			return nil, err
		}
		cycles = append(cycles, c)
	}
	return cycles, rows.Err()
}
