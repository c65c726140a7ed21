package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizgen/quizgen-backend/internal/generator"
	"github.com/quizgen/quizgen-backend/internal/model"
	"github.com/quizgen/quizgen-backend/internal/quiz"
)

type generateFunc func(ctx context.Context, call int, kind quiz.Kind, req generator.Request) ([]quiz.Question, error)

type fakeGenerator struct {
	mu    sync.Mutex
	calls int
	kinds []quiz.Kind
	fn    generateFunc
}

func (g *fakeGenerator) Generate(ctx context.Context, kind quiz.Kind, req generator.Request) ([]quiz.Question, error) {
	g.mu.Lock()
	g.calls++
	call := g.calls
	g.kinds = append(g.kinds, kind)
	g.mu.Unlock()
	return g.fn(ctx, call, kind, req)
}

func (g *fakeGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func blockUntilCancelled(ctx context.Context, _ int, _ quiz.Kind, _ generator.Request) ([]quiz.Question, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func choiceQuestions(n int) []quiz.Question {
	qs := make([]quiz.Question, n)
	for i := range qs {
		qs[i] = quiz.Question{Prompt: "q", Payload: &quiz.Choice{Options: []string{"a", "b"}, CorrectOptionIndex: 0}}
	}
	return qs
}

type fakeKeyStore struct {
	mu   sync.Mutex
	keys map[string]string
}

func newFakeKeyStore() *fakeKeyStore { return &fakeKeyStore{keys: make(map[string]string)} }

func (f *fakeKeyStore) Get(_ context.Context, clientID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.keys[clientID], nil
}

func (f *fakeKeyStore) Set(_ context.Context, clientID, apiKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys[clientID] = apiKey
	return nil
}

func (f *fakeKeyStore) Clear(_ context.Context, clientID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.keys, clientID)
	return nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	dialogs []model.Dialog
}

func (f *fakeNotifier) Notify(_ context.Context, _ uuid.UUID, d model.Dialog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dialogs = append(f.dialogs, d)
	return nil
}

func (f *fakeNotifier) Dialogs() []model.Dialog {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Dialog(nil), f.dialogs...)
}

type fakeAttempts struct {
	mu    sync.Mutex
	items []model.Attempt
}

func (f *fakeAttempts) Enqueue(_ context.Context, a model.Attempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, a)
	return nil
}

func (f *fakeAttempts) ListByClient(_ context.Context, clientID string, limit, offset int) ([]model.Attempt, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Attempt
	for _, a := range f.items {
		if a.ClientID == clientID {
			out = append(out, a)
		}
	}
	total := len(out)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return out[offset:end], total, nil
}

type harness struct {
	svc      *SessionService
	gen      *fakeGenerator
	keys     *fakeKeyStore
	dialogs  *fakeNotifier
	attempts *fakeAttempts
}

func newHarness(t *testing.T, timeout time.Duration, fn generateFunc) *harness {
	t.Helper()
	h := &harness{
		gen:      &fakeGenerator{fn: fn},
		keys:     newFakeKeyStore(),
		dialogs:  &fakeNotifier{},
		attempts: &fakeAttempts{},
	}
	log := zerolog.Nop()
	h.svc = NewSessionService(
		h.gen,
		NewAPIKeyService(h.keys, log),
		h.dialogs,
		NewAttemptService(h.attempts, h.attempts, log),
		timeout,
		time.Hour,
		log,
	)
	return h
}

func sampleAttempt(clientID string, n int) model.Attempt {
	return model.Attempt{
		ClientID:   clientID,
		SessionID:  uuid.New(),
		Topic:      "topic",
		Correct:    n,
		Total:      12,
		Percentage: n * 100 / 12,
	}
}
