package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/quizgen/quizgen-backend/internal/generator"
	"github.com/quizgen/quizgen-backend/internal/quiz"
)

func TestGenerate_MissingInput(t *testing.T) {
	h := newHarness(t, time.Second, func(context.Context, int, quiz.Kind, generator.Request) ([]quiz.Question, error) {
		return choiceQuestions(1), nil
	})
	id := h.svc.Create("client-1").ID

	tests := []GenerateInput{
		{Topic: "", APIKey: "k"},
		{Topic: "rivers", APIKey: "  "},
		{Topic: " \t", APIKey: ""},
	}
	for _, in := range tests {
		if _, err := h.svc.Generate(context.Background(), id, in); !errors.Is(err, ErrMissingInput) {
			t.Errorf("Generate(%+v) error = %v, want ErrMissingInput", in, err)
		}
	}
	if h.gen.Calls() != 0 {
		t.Errorf("expected no generator calls, got %d", h.gen.Calls())
	}
	if len(h.dialogs.Dialogs()) != 0 {
		t.Error("missing input must not reach the dialog")
	}
}

func TestGenerate_UnknownSession(t *testing.T) {
	h := newHarness(t, time.Second, blockUntilCancelled)
	if _, err := h.svc.Generate(context.Background(), uuid.New(), GenerateInput{Topic: "t", APIKey: "k"}); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestGenerate_ReplaceThenAppend(t *testing.T) {
	sizes := []int{4, 3, 6}
	h := newHarness(t, time.Second, func(_ context.Context, call int, _ quiz.Kind, req generator.Request) ([]quiz.Question, error) {
		return choiceQuestions(sizes[call-1]), nil
	})
	id := h.svc.Create("client-1").ID
	ctx := context.Background()

	if _, err := h.svc.Generate(ctx, id, GenerateInput{Topic: "rivers", APIKey: "k", Kind: quiz.KindTrueFalse}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	h.svc.SelectOption(id, 1, 0)

	var snap quiz.Snapshot
	var err error
	for range sizes[1:] {
		snap, err = h.svc.Generate(ctx, id, GenerateInput{Topic: "rivers", APIKey: "k", Kind: quiz.KindMatching, Append: true})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	if len(snap.Questions) != 13 {
		t.Fatalf("expected 13 questions, got %d", len(snap.Questions))
	}
	for i, q := range snap.Questions {
		if q.ID != i+1 {
			t.Fatalf("question %d has id %d", i, q.ID)
		}
	}
	if snap.Answers[1] == nil {
		t.Error("append must keep existing answers")
	}
	for i, k := range h.gen.kinds {
		if k != quiz.KindTrueFalse {
			t.Errorf("call %d used kind %s, want the session kind %s", i+1, k, quiz.KindTrueFalse)
		}
	}
	if snap.Page != 1 {
		t.Errorf("expected jump to page 1 after last append, got %d", snap.Page)
	}
}

func TestGenerate_PassesPreviousPrompts(t *testing.T) {
	var seen []int
	h := newHarness(t, time.Second, func(_ context.Context, _ int, _ quiz.Kind, req generator.Request) ([]quiz.Question, error) {
		seen = append(seen, len(req.Previous))
		return choiceQuestions(2), nil
	})
	id := h.svc.Create("").ID

	h.svc.Generate(context.Background(), id, GenerateInput{Topic: "t", APIKey: "k"})
	h.svc.Generate(context.Background(), id, GenerateInput{Topic: "t", APIKey: "k", Append: true})

	if len(seen) != 2 || seen[0] != 0 || seen[1] != 2 {
		t.Errorf("previous question counts = %v, want [0 2]", seen)
	}
}

func TestGenerate_InvalidKeyIsTerminalAndKeySaved(t *testing.T) {
	var forwarded string
	h := newHarness(t, time.Second, func(_ context.Context, _ int, _ quiz.Kind, req generator.Request) ([]quiz.Question, error) {
		forwarded = req.APIKey
		return nil, generator.ErrUnauthorized
	})
	id := h.svc.Create("client-7").ID

	_, err := h.svc.Generate(context.Background(), id, GenerateInput{Topic: "t", APIKey: " secret "})
	if !errors.Is(err, ErrInvalidAPIKey) {
		t.Fatalf("expected ErrInvalidAPIKey, got %v", err)
	}
	if h.gen.Calls() != 1 {
		t.Errorf("invalid key must not be retried, got %d calls", h.gen.Calls())
	}
	if forwarded != " secret " {
		t.Errorf("key must be forwarded verbatim, got %q", forwarded)
	}
	if got := h.keys.keys["client-7"]; got != " secret " {
		t.Errorf("expected key cached verbatim despite failure, got %q", got)
	}

	d := h.dialogs.Dialogs()
	if len(d) != 1 || d[0].Code != "INVALID_API_KEY" || d[0].Retryable {
		t.Errorf("unexpected dialogs %+v", d)
	}
}

func TestGenerate_ErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		genErr    error
		want      error
		code      string
		retryable bool
		message   string
	}{
		{"rate limited", generator.ErrRateLimited, ErrRateLimited, "RATE_LIMITED", false, ""},
		{"status with message", &generator.StatusError{StatusCode: 500, Message: "model overloaded"}, ErrGenerationFailed, "GENERATION_FAILED", true, "model overloaded"},
		{"status without message", &generator.StatusError{StatusCode: 502}, ErrGenerationFailed, "GENERATION_FAILED", true, "Request failed with status 502"},
		{"malformed", generator.ErrMalformed, ErrGenerationFailed, "GENERATION_FAILED", true, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, time.Second, func(context.Context, int, quiz.Kind, generator.Request) ([]quiz.Question, error) {
				return nil, tc.genErr
			})
			id := h.svc.Create("c").ID

			_, err := h.svc.Generate(context.Background(), id, GenerateInput{Topic: "t", APIKey: "k"})
			if !errors.Is(err, tc.want) {
				t.Fatalf("error = %v, want %v", err, tc.want)
			}
			d := h.dialogs.Dialogs()
			if len(d) != 1 || d[0].Code != tc.code || d[0].Retryable != tc.retryable {
				t.Fatalf("unexpected dialogs %+v", d)
			}
			if tc.message != "" && d[0].Message != tc.message {
				t.Errorf("dialog message = %q, want %q", d[0].Message, tc.message)
			}
			if h.gen.Calls() != 1 {
				t.Errorf("expected a single call, got %d", h.gen.Calls())
			}
		})
	}
}

func TestGenerate_TimeoutRetriesOnceThenUnresponsive(t *testing.T) {
	var h *harness
	var id uuid.UUID
	var retryDuringSecondCall atomic.Int32
	retryDuringSecondCall.Store(-1)

	h = newHarness(t, 50*time.Millisecond, func(ctx context.Context, call int, kind quiz.Kind, req generator.Request) ([]quiz.Question, error) {
		if call == 2 {
			info, _ := h.svc.Get(id)
			retryDuringSecondCall.Store(int32(info.State.RetryAttempt))
		}
		return blockUntilCancelled(ctx, call, kind, req)
	})
	id = h.svc.Create("c").ID

	_, err := h.svc.Generate(context.Background(), id, GenerateInput{Topic: "t", APIKey: "k"})
	if !errors.Is(err, ErrServerUnresponsive) {
		t.Fatalf("expected ErrServerUnresponsive, got %v", err)
	}
	if h.gen.Calls() != 2 {
		t.Errorf("expected exactly one retry, got %d calls", h.gen.Calls())
	}
	if got := retryDuringSecondCall.Load(); got != 1 {
		t.Errorf("expected retry counter 1 during the retry, got %d", got)
	}

	d := h.dialogs.Dialogs()
	if len(d) != 1 || d[0].Code != "SERVER_UNRESPONSIVE" || !d[0].Retryable {
		t.Errorf("expected one retryable SERVER_UNRESPONSIVE dialog, got %+v", d)
	}

	info, _ := h.svc.Get(id)
	if info.State.RetryAttempt != 0 {
		t.Errorf("expected retry counter reset, got %d", info.State.RetryAttempt)
	}
}

func TestGenerate_TimeoutThenSuccess(t *testing.T) {
	h := newHarness(t, 20*time.Millisecond, func(ctx context.Context, call int, kind quiz.Kind, req generator.Request) ([]quiz.Question, error) {
		if call == 1 {
			return blockUntilCancelled(ctx, call, kind, req)
		}
		return choiceQuestions(3), nil
	})
	id := h.svc.Create("c").ID

	snap, err := h.svc.Generate(context.Background(), id, GenerateInput{Topic: "t", APIKey: "k"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(snap.Questions) != 3 || snap.RetryAttempt != 0 {
		t.Errorf("unexpected snapshot: %d questions, retry %d", len(snap.Questions), snap.RetryAttempt)
	}
	if len(h.dialogs.Dialogs()) != 0 {
		t.Error("silent retry must not reach the dialog")
	}
}

func TestGenerate_CallerCancelDuringRetryIsAborted(t *testing.T) {
	retrying := make(chan struct{})
	h := newHarness(t, 100*time.Millisecond, func(ctx context.Context, call int, kind quiz.Kind, req generator.Request) ([]quiz.Question, error) {
		if call == 2 {
			close(retrying)
		}
		return blockUntilCancelled(ctx, call, kind, req)
	})
	id := h.svc.Create("c").ID

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-retrying
		cancel()
	}()
	_, err := h.svc.Generate(ctx, id, GenerateInput{Topic: "t", APIKey: "k"})
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if h.gen.Calls() != 2 {
		t.Errorf("expected the retry to be in flight when the caller gave up, got %d calls", h.gen.Calls())
	}

	info, _ := h.svc.Get(id)
	if info.State.RetryAttempt != 0 {
		t.Errorf("expected retry counter reset, got %d", info.State.RetryAttempt)
	}
	if len(h.dialogs.Dialogs()) != 0 {
		t.Error("caller abort must not reach the dialog")
	}
}

func TestGenerate_CallerDeadlineIsAborted(t *testing.T) {
	h := newHarness(t, time.Second, func(ctx context.Context, call int, kind quiz.Kind, req generator.Request) ([]quiz.Question, error) {
		<-ctx.Done()
		return nil, fmt.Errorf("post: %w", ctx.Err())
	})
	id := h.svc.Create("c").ID

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := h.svc.Generate(ctx, id, GenerateInput{Topic: "t", APIKey: "k"})
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if len(h.dialogs.Dialogs()) != 0 {
		t.Errorf("caller deadline must not reach the dialog, got %+v", h.dialogs.Dialogs())
	}
}

func TestGenerate_SupersededCallIsAborted(t *testing.T) {
	started := make(chan struct{})
	h := newHarness(t, time.Second, func(ctx context.Context, call int, kind quiz.Kind, req generator.Request) ([]quiz.Question, error) {
		if call == 1 {
			close(started)
			return blockUntilCancelled(ctx, call, kind, req)
		}
		return choiceQuestions(2), nil
	})
	id := h.svc.Create("c").ID

	firstErr := make(chan error, 1)
	go func() {
		_, err := h.svc.Generate(context.Background(), id, GenerateInput{Topic: "first", APIKey: "k"})
		firstErr <- err
	}()
	<-started

	snap, err := h.svc.Generate(context.Background(), id, GenerateInput{Topic: "second", APIKey: "k"})
	if err != nil {
		t.Fatalf("second Generate: %v", err)
	}

	select {
	case err := <-firstErr:
		if !errors.Is(err, ErrAborted) {
			t.Errorf("expected ErrAborted for superseded call, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("superseded call did not return")
	}

	if len(snap.Questions) != 2 {
		t.Errorf("expected state from the newest call, got %d questions", len(snap.Questions))
	}
	if len(h.dialogs.Dialogs()) != 0 {
		t.Error("aborted generation must not reach the dialog")
	}
	info, _ := h.svc.Get(id)
	if info.Topic != "second" {
		t.Errorf("topic = %q, want second", info.Topic)
	}
}

func TestReset_AbortsInFlightGeneration(t *testing.T) {
	started := make(chan struct{})
	h := newHarness(t, time.Second, func(ctx context.Context, call int, kind quiz.Kind, req generator.Request) ([]quiz.Question, error) {
		close(started)
		return blockUntilCancelled(ctx, call, kind, req)
	})
	id := h.svc.Create("c").ID

	done := make(chan error, 1)
	go func() {
		_, err := h.svc.Generate(context.Background(), id, GenerateInput{Topic: "t", APIKey: "k"})
		done <- err
	}()
	<-started

	if _, err := h.svc.Reset(id); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if err := <-done; !errors.Is(err, ErrAborted) {
		t.Errorf("expected ErrAborted, got %v", err)
	}
}

func TestMutations_ThroughService(t *testing.T) {
	h := newHarness(t, time.Second, func(context.Context, int, quiz.Kind, generator.Request) ([]quiz.Question, error) {
		return choiceQuestions(2), nil
	})
	id := h.svc.Create("c").ID
	h.svc.Generate(context.Background(), id, GenerateInput{Topic: "t", APIKey: "k"})

	if _, err := h.svc.SelectOption(id, 9, 0); !errors.Is(err, quiz.ErrQuestionNotFound) {
		t.Errorf("expected ErrQuestionNotFound, got %v", err)
	}
	if _, err := h.svc.EnterReview(context.Background(), id); !errors.Is(err, quiz.ErrIncomplete) {
		t.Errorf("expected ErrIncomplete, got %v", err)
	}

	h.svc.SelectOption(id, 1, 0)
	h.svc.SelectOption(id, 2, 1)

	snap, err := h.svc.EnterReview(context.Background(), id)
	if err != nil {
		t.Fatalf("EnterReview: %v", err)
	}
	if snap.Mode != quiz.ModeReview {
		t.Errorf("mode = %s", snap.Mode)
	}
	h.svc.EnterReview(context.Background(), id)

	if n := len(h.attempts.items); n != 1 {
		t.Fatalf("expected one recorded attempt, got %d", n)
	}
	if a := h.attempts.items[0]; a.Correct != 1 || a.Total != 2 || a.Percentage != 50 || a.Topic != "t" {
		t.Errorf("unexpected attempt %+v", a)
	}

	_, applied, _ := h.svc.ResetAllAnswers(id, true)
	if applied {
		t.Error("reset must be ignored in review mode")
	}
	h.svc.ExitReview(id)
	_, applied, _ = h.svc.ResetAllAnswers(id, true)
	if !applied {
		t.Error("expected reset in practice mode")
	}

	res, _ := h.svc.Score(id)
	if res != (quiz.Result{Correct: 0, Total: 2, Percentage: 0}) {
		t.Errorf("Score after reset = %+v", res)
	}
}

func TestPage_RendersCurrentPage(t *testing.T) {
	h := newHarness(t, time.Second, func(context.Context, int, quiz.Kind, generator.Request) ([]quiz.Question, error) {
		return choiceQuestions(7), nil
	})
	id := h.svc.Create("c").ID
	h.svc.Generate(context.Background(), id, GenerateInput{Topic: "t", APIKey: "k"})

	h.svc.NextPage(id)
	h.svc.NextPage(id)
	v, err := h.svc.Page(id)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if v.Page != 1 || v.PageCount != 2 || len(v.Questions) != 2 || v.Questions[0].Number != 6 {
		t.Errorf("unexpected page view %+v", v)
	}

	h.svc.PrevPage(id)
	h.svc.GoToPage(id, -4)
	v, _ = h.svc.Page(id)
	if v.Page != 0 {
		t.Errorf("expected clamp to 0, got %d", v.Page)
	}
}

func TestEvict(t *testing.T) {
	h := newHarness(t, time.Second, blockUntilCancelled)
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	now := base
	h.svc.now = func() time.Time { return now }

	stale := h.svc.Create("a").ID
	now = base.Add(50 * time.Minute)
	fresh := h.svc.Create("b").ID

	if n := h.svc.Evict(base.Add(90 * time.Minute)); n != 1 {
		t.Fatalf("expected 1 eviction, got %d", n)
	}
	if _, err := h.svc.Get(stale); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("stale session should be gone, got %v", err)
	}
	if _, err := h.svc.Get(fresh); err != nil {
		t.Errorf("fresh session evicted: %v", err)
	}
	if h.svc.Count() != 1 {
		t.Errorf("Count = %d", h.svc.Count())
	}
}

func TestWithTimeout(t *testing.T) {
	v, err := withTimeout(context.Background(), time.Second, func(context.Context) (int, error) { return 7, nil })
	if err != nil || v != 7 {
		t.Errorf("fast call: got %d, %v", v, err)
	}

	loserCancelled := make(chan struct{})
	_, err = withTimeout(context.Background(), 10*time.Millisecond, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		close(loserCancelled)
		return 0, ctx.Err()
	})
	if !errors.Is(err, errTimedOut) {
		t.Errorf("expected errTimedOut, got %v", err)
	}
	select {
	case <-loserCancelled:
	case <-time.After(time.Second):
		t.Error("losing call was not cancelled")
	}
}
