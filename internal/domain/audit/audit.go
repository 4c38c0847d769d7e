package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"apas/internal/platform/requestctx"
)

// API is the slice of the recorder that mutating services depend on. The
// actor id is always an explicit parameter, never ambient connection state.
type API interface {
	RecordTx(ctx context.Context, tx pgx.Tx, actorID int64, action, entityType string, entityID int64, before, after any) error
}

type Event struct {
	ID         int64           `json:"id"`
	ActorID    int64           `json:"actorId"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   int64           `json:"entityId"`
	RequestID  string          `json:"requestId"`
	CreatedAt  time.Time       `json:"createdAt"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
}

type Recorder struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Recorder {
	return &Recorder{DB: db}
}

// RecordTx writes the event on the caller's transaction so the audit row
// commits or rolls back together with the mutation it describes.
func (r *Recorder) RecordTx(ctx context.Context, tx pgx.Tx, actorID int64, action, entityType string, entityID int64, before, after any) error {
	beforeJSON, afterJSON, err := marshalChange(before, after)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
    INSERT INTO audit_events (actor_id, action, entity_type, entity_id, before_json, after_json, request_id)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
  `, actorID, action, entityType, entityID, beforeJSON, afterJSON, requestctx.GetRequestID(ctx))
	return err
}

func (r *Recorder) List(ctx context.Context, limit, offset int) ([]Event, error) {
	rows, err := r.DB.Query(ctx, `
    SELECT id, actor_id, action, entity_type, entity_id, request_id, created_at, before_json, after_json
    FROM audit_events
    ORDER BY created_at DESC
    LIMIT $1 OFFSET $2
  `, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var evt Event
		if err := rows.Scan(&evt.ID, &evt.ActorID, &evt.Action, &evt.EntityType, &evt.EntityID, &evt.RequestID, &evt.CreatedAt, &evt.Before, &evt.After); err != nil {
			return nil, err
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}

func marshalChange(before, after any) ([]byte, []byte, error) {
	var beforeJSON, afterJSON []byte
	if before != nil {
		payload, err := json.Marshal(before)
		if err != nil {
			return nil, nil, err
		}
		beforeJSON = payload
	}
	if after != nil {
		payload, err := json.Marshal(after)
		if err != nil {
			return nil, nil, err
		}
		afterJSON = payload
	}
	return beforeJSON, afterJSON, nil
}
