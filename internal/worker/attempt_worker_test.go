package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizgen/quizgen-backend/internal/model"
)

type fakeWriter struct {
	bulkErr   error
	failFor   map[uuid.UUID]bool
	bulkCalls int
	singles   []model.Attempt
}

func (f *fakeWriter) BulkInsert(_ context.Context, _ []model.Attempt) error {
	f.bulkCalls++
	return f.bulkErr
}

func (f *fakeWriter) InsertSingle(_ context.Context, a model.Attempt) error {
	if f.failFor[a.SessionID] {
		return errors.New("insert failed")
	}
	f.singles = append(f.singles, a)
	return nil
}

type fakeRequeue struct {
	items []model.Attempt
}

func (f *fakeRequeue) Enqueue(_ context.Context, a model.Attempt) error {
	f.items = append(f.items, a)
	return nil
}

func TestFlushSafe_BulkSuccess(t *testing.T) {
	store := &fakeWriter{}
	rq := &fakeRequeue{}
	w := NewAttemptWorker(nil, store, rq, zerolog.Nop())

	w.flushSafe(context.Background(), []model.Attempt{{SessionID: uuid.New()}, {SessionID: uuid.New()}})

	if store.bulkCalls != 1 {
		t.Errorf("bulkCalls = %d, want 1", store.bulkCalls)
	}
	if len(store.singles) != 0 || len(rq.items) != 0 {
		t.Error("fallback must not run when bulk insert succeeds")
	}
}

func TestFlushSafe_FallbackAndRequeue(t *testing.T) {
	ok, bad := uuid.New(), uuid.New()
	store := &fakeWriter{
		bulkErr: errors.New("bulk failed"),
		failFor: map[uuid.UUID]bool{bad: true},
	}
	rq := &fakeRequeue{}
	w := NewAttemptWorker(nil, store, rq, zerolog.Nop())

	w.flushSafe(context.Background(), []model.Attempt{{SessionID: ok}, {SessionID: bad}})

	if len(store.singles) != 1 || store.singles[0].SessionID != ok {
		t.Errorf("singles = %+v", store.singles)
	}
	if len(rq.items) != 1 || rq.items[0].SessionID != bad {
		t.Errorf("requeued = %+v", rq.items)
	}
}

func TestFlushSafe_EmptyBatch(t *testing.T) {
	store := &fakeWriter{}
	w := NewAttemptWorker(nil, store, &fakeRequeue{}, zerolog.Nop())
	w.flushSafe(context.Background(), nil)
	if store.bulkCalls != 0 {
		t.Error("empty batch must not hit the store")
	}
}

func TestDecode(t *testing.T) {
	w := NewAttemptWorker(nil, &fakeWriter{}, &fakeRequeue{}, zerolog.Nop())

	a, ok := w.decode(`{"client_id":"c1","correct":3,"total":5}`)
	if !ok {
		t.Fatal("decode failed")
	}
	if a.ClientID != "c1" || a.Correct != 3 || a.FinishedAt.IsZero() {
		t.Errorf("decoded %+v", a)
	}

	if _, ok := w.decode("{not json"); ok {
		t.Error("expected invalid JSON to be rejected")
	}
}
