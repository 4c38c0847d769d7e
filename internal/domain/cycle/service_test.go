package cycle

import (
	"context"
	"errors"
	"testing"
	"time"

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
}

func (a *fakeAudit) RecordTx(ctx context.Context, tx pgx.Tx, actorID int64, action, entityType string, entityID int64, before, after any) error {
	a.actions = append(a.actions, action)
	return nil
}

type fakeStore struct {
	tx       *fakeTx
	statuses map[int64]string
	nextID   int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{statuses: map[int64]string{}, nextID: 1}
}

func (s *fakeStore) Begin(ctx context.Context) (pgx.Tx, error) {
	s.tx = &fakeTx{}
	return s.tx, nil
}

func (s *fakeStore) InsertCycleTx(ctx context.Context, tx pgx.Tx, name string, start, end time.Time) (int64, error) {
	id := s.nextID
	s.nextID++
	s.statuses[id] = StatusInactive
	return id, nil
}

func (s *fakeStore) DeactivateActiveTx(ctx context.Context, tx pgx.Tx) (int64, error) {
	var n int64
	for id, status := range s.statuses {
		if status == StatusActive {
			s.statuses[id] = StatusInactive
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) SetStatusTx(ctx context.Context, tx pgx.Tx, cycleID int64, status string) (bool, error) {
	if _, ok := s.statuses[cycleID]; !ok {
		return false, nil
	}
	s.statuses[cycleID] = status
	return true, nil
}

func (s *fakeStore) ActiveCycleID(ctx context.Context) (int64, error) {
	for id, status := range s.statuses {
		if status == StatusActive {
			return id, nil
		}
	}
	return 0, ErrNoActiveCycle
}

func (s *fakeStore) List(ctx context.Context) ([]Cycle, error) {
	return nil, nil
}

func TestCreateRequiresAllFields(t *testing.T) {
	svc := NewService(newFakeStore(), &fakeAudit{})
	_, err := svc.Create(context.Background(), 1, "  ", time.Now(), time.Now())
	if !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
}

func TestCreateStartsInactive(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeAudit{})

	id, err := svc.Create(context.Background(), 1, "FY26 H1", time.Now(), time.Now().AddDate(0, 6, 0))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if store.statuses[id] != StatusInactive {
		t.Fatalf("expected new cycle inactive, got %s", store.statuses[id])
	}
	if !store.tx.committed {
		t.Fatal("expected transaction commit")
	}
}

func TestSetStatusRejectsUnknownValue(t *testing.T) {
	svc := NewService(newFakeStore(), &fakeAudit{})
	if err := svc.SetStatus(context.Background(), 1, 1, "archived"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestSetStatusNotFoundRollsBack(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeAudit{})

	err := svc.SetStatus(context.Background(), 1, 99, StatusActive)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !store.tx.rolledBack {
		t.Fatal("expected rollback on missing cycle")
	}
}

func TestActivatingDeactivatesOtherActiveCycle(t *testing.T) {
	store := newFakeStore()
	store.statuses[3] = StatusActive
	store.statuses[4] = StatusInactive
	recorder := &fakeAudit{}
	svc := NewService(store, recorder)

	if err := svc.SetStatus(context.Background(), 1, 4, StatusActive); err != nil {
		t.Fatalf("activate failed: %v", err)
	}

	if store.statuses[3] != StatusInactive {
		t.Fatalf("cycle 3 should be inactive, got %s", store.statuses[3])
	}
	if store.statuses[4] != StatusActive {
		t.Fatalf("cycle 4 should be active, got %s", store.statuses[4])
	}

	active, err := svc.ActiveCycleID(context.Background())
	if err != nil {
		t.Fatalf("active cycle lookup failed: %v", err)
	}
	if active != 4 {
		t.Fatalf("expected active cycle 4, got %d", active)
	}

	var count int
	for _, status := range store.statuses {
		if status == StatusActive {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one active cycle, got %d", count)
	}

	if len(recorder.actions) == 0 || recorder.actions[len(recorder.actions)-1] != "cycle.set_status" {
		t.Fatalf("expected audit record, got %v", recorder.actions)
	}
}

func TestActiveCycleIDWithoutActiveCycle(t *testing.T) {
	svc := NewService(newFakeStore(), &fakeAudit{})
	if _, err := svc.ActiveCycleID(context.Background()); !errors.Is(err, ErrNoActiveCycle) {
		t.Fatalf("expected ErrNoActiveCycle, got %v", err)
	}
}
