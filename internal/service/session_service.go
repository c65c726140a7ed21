package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizgen/quizgen-backend/internal/generator"
	"github.com/quizgen/quizgen-backend/internal/model"
	"github.com/quizgen/quizgen-backend/internal/quiz"
)

// DialogNotifier receives terminal generation errors for a session.
type DialogNotifier interface {
	Notify(ctx context.Context, sessionID uuid.UUID, d model.Dialog) error
}

const (
	DefaultKind  = quiz.KindSingleChoice
	DefaultLevel = generator.LevelMedium
)

// GenerateInput is one generation request for a session. Empty Kind and
// Level keep the session's current values.
type GenerateInput struct {
	Topic  string
	APIKey string
	Kind   quiz.Kind
	Level  generator.Level
	Append bool
}

// entry is one live session. Every field below mu is guarded by it.
type entry struct {
	id        uuid.UUID
	clientID  string
	createdAt time.Time

	mu       sync.Mutex
	session  *quiz.Session
	topic    string
	kind     quiz.Kind
	level    generator.Level
	lastSeen time.Time
	// seq identifies the newest generation call; results of older calls are dropped.
	seq    uint64
	cancel context.CancelFunc
}

func (e *entry) info() model.SessionInfo {
	return model.SessionInfo{
		ID:        e.id,
		ClientID:  e.clientID,
		Topic:     e.topic,
		Kind:      e.kind,
		Level:     string(e.level),
		CreatedAt: e.createdAt,
		State:     e.session.Snapshot(),
	}
}

// SessionService owns live quiz sessions and the generation protocol.
type SessionService struct {
	gen      generator.Client
	keys     *APIKeyService
	dialogs  DialogNotifier
	attempts *AttemptService
	timeout  time.Duration
	idleTTL  time.Duration
	log      zerolog.Logger
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[uuid.UUID]*entry
}

// NewSessionService creates a new SessionService. attempts may be nil.
func NewSessionService(
	gen generator.Client,
	keys *APIKeyService,
	dialogs DialogNotifier,
	attempts *AttemptService,
	timeout, idleTTL time.Duration,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		gen:      gen,
		keys:     keys,
		dialogs:  dialogs,
		attempts: attempts,
		timeout:  timeout,
		idleTTL:  idleTTL,
		log:      log.With().Str("component", "session_service").Logger(),
		now:      time.Now,
		sessions: make(map[uuid.UUID]*entry),
	}
}

// Create opens an empty session.
func (s *SessionService) Create(clientID string) model.SessionInfo {
	now := s.now()
	e := &entry{
		id:        uuid.New(),
		clientID:  strings.TrimSpace(clientID),
		createdAt: now,
		session:   quiz.NewSession(),
		kind:      DefaultKind,
		level:     DefaultLevel,
		lastSeen:  now,
	}

	s.mu.Lock()
	s.sessions[e.id] = e
	s.mu.Unlock()

	s.log.Info().Str("session_id", e.id.String()).Msg("Session created")
	return e.info()
}

func (s *SessionService) get(id uuid.UUID) (*entry, error) {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e, nil
}

// Get returns the session description and snapshot.
func (s *SessionService) Get(id uuid.UUID) (model.SessionInfo, error) {
	e, err := s.get(id)
	if err != nil {
		return model.SessionInfo{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSeen = s.now()
	return e.info(), nil
}

// Exists reports whether a live session has the given id.
func (s *SessionService) Exists(id uuid.UUID) bool {
	_, err := s.get(id)
	return err == nil
}

// ClientID returns the browser client owning the session.
func (s *SessionService) ClientID(id uuid.UUID) (string, error) {
	e, err := s.get(id)
	if err != nil {
		return "", err
	}
	return e.clientID, nil
}

// Reset cancels any in-flight generation and clears the session.
func (s *SessionService) Reset(id uuid.UUID) (model.SessionInfo, error) {
	e, err := s.get(id)
	if err != nil {
		return model.SessionInfo{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.supersede()
	e.session.Clear()
	e.topic = ""
	e.lastSeen = s.now()
	return e.info(), nil
}

// supersede invalidates the in-flight generation, if any. Caller holds e.mu.
func (e *entry) supersede() {
	e.seq++
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

// ----------------------------------------------------------------
// Generation
// ----------------------------------------------------------------

// Generate fetches a batch of questions and replaces or extends the session.
// A newer call for the same session makes this one return ErrAborted
// without touching state.
func (s *SessionService) Generate(ctx context.Context, id uuid.UUID, in GenerateInput) (quiz.Snapshot, error) {
	e, err := s.get(id)
	if err != nil {
		return quiz.Snapshot{}, err
	}

	topic := strings.TrimSpace(in.Topic)
	apiKey := in.APIKey
	if topic == "" || strings.TrimSpace(apiKey) == "" {
		return quiz.Snapshot{}, ErrMissingInput
	}

	if err := s.keys.Save(ctx, s.keyOwner(e), apiKey); err != nil {
		s.log.Warn().Err(err).Str("session_id", id.String()).Msg("Failed to cache API key")
	}

	e.mu.Lock()
	appending := in.Append && e.session.Len() > 0
	kind := e.kind
	if !appending && in.Kind != "" {
		kind = in.Kind
	}
	level := e.level
	if in.Level != "" {
		level = in.Level
	}
	e.supersede()
	seq := e.seq
	genCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	req := generator.Request{Topic: topic, Level: level, APIKey: apiKey, Previous: e.session.Questions()}
	e.lastSeen = s.now()
	e.mu.Unlock()
	defer cancel()

	log := s.log.With().
		Str("session_id", id.String()).
		Str("kind", string(kind)).
		Bool("append", appending).
		Logger()

	questions, genErr := s.generateWithRetry(genCtx, e, seq, kind, req, log)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.seq != seq {
		log.Debug().Msg("Generation superseded")
		return quiz.Snapshot{}, ErrAborted
	}
	e.cancel = nil
	e.lastSeen = s.now()

	if genErr != nil {
		if ctx.Err() != nil || errors.Is(genErr, ErrAborted) || errors.Is(genErr, context.Canceled) {
			e.session.ResetRetry()
			log.Debug().Err(genErr).Msg("Generation aborted by caller")
			return quiz.Snapshot{}, ErrAborted
		}
		e.session.ResetRetry()
		log.Warn().Err(genErr).Msg("Generation failed")
		s.notify(ctx, id, genErr, log)
		return quiz.Snapshot{}, genErr
	}

	if appending {
		e.session.Append(questions)
	} else {
		e.session.Replace(questions)
		e.kind = kind
	}
	e.topic = topic
	e.level = level
	e.session.ResetRetry()

	log.Info().Int("received", len(questions)).Int("total", e.session.Len()).Msg("Questions generated")
	return e.session.Snapshot(), nil
}

// keyOwner scopes the cached API key; sessions without a client fall back
// to their own id.
func (s *SessionService) keyOwner(e *entry) string {
	if e.clientID != "" {
		return e.clientID
	}
	return e.id.String()
}

// generateWithRetry races each attempt against the timeout. The first
// timeout is retried once without surfacing anything; the second becomes
// ErrServerUnresponsive.
func (s *SessionService) generateWithRetry(
	ctx context.Context,
	e *entry,
	seq uint64,
	kind quiz.Kind,
	req generator.Request,
	log zerolog.Logger,
) ([]quiz.Question, error) {
	for attempt := 0; ; attempt++ {
		questions, err := withTimeout(ctx, s.timeout, func(ctx context.Context) ([]quiz.Question, error) {
			return s.gen.Generate(ctx, kind, req)
		})
		if !errors.Is(err, errTimedOut) {
			return questions, mapGeneratorError(err)
		}

		if attempt > 0 {
			return nil, ErrServerUnresponsive
		}

		e.mu.Lock()
		if e.seq != seq {
			e.mu.Unlock()
			return nil, ErrAborted
		}
		e.session.MarkRetry()
		e.mu.Unlock()
		log.Info().Dur("timeout", s.timeout).Msg("Generation timed out, retrying once")
	}
}

func mapGeneratorError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	switch {
	case errors.Is(err, generator.ErrUnauthorized):
		return fmt.Errorf("%w: %v", ErrInvalidAPIKey, err)
	case errors.Is(err, generator.ErrRateLimited):
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	var se *generator.StatusError
	if errors.As(err, &se) {
		msg := se.Message
		if msg == "" {
			msg = fmt.Sprintf("Request failed with status %d", se.StatusCode)
		}
		return &GenerationError{Message: msg}
	}
	if errors.Is(err, generator.ErrMalformed) {
		return &GenerationError{Message: "Invalid response format from the quiz generator."}
	}
	return &GenerationError{Message: err.Error()}
}

func (s *SessionService) notify(ctx context.Context, id uuid.UUID, err error, log zerolog.Logger) {
	d, ok := dialogFor(err)
	if !ok || s.dialogs == nil {
		return
	}
	if nerr := s.dialogs.Notify(context.WithoutCancel(ctx), id, d); nerr != nil {
		log.Error().Err(nerr).Str("dialog", d.Code).Msg("Failed to publish dialog")
	}
}

// ----------------------------------------------------------------
// Answer mutations
// ----------------------------------------------------------------

// mutate runs fn on the session under its lock and returns the new snapshot.
func (s *SessionService) mutate(id uuid.UUID, fn func(*quiz.Session) error) (quiz.Snapshot, error) {
	e, err := s.get(id)
	if err != nil {
		return quiz.Snapshot{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSeen = s.now()
	if err := fn(e.session); err != nil {
		return quiz.Snapshot{}, err
	}
	return e.session.Snapshot(), nil
}

func (s *SessionService) SelectOption(id uuid.UUID, qid, index int) (quiz.Snapshot, error) {
	return s.mutate(id, func(q *quiz.Session) error { return q.SelectOption(qid, index) })
}

func (s *SessionService) SetFillBlankText(id uuid.UUID, qid int, text string) (quiz.Snapshot, error) {
	return s.mutate(id, func(q *quiz.Session) error { return q.SetFillBlankText(qid, text) })
}

func (s *SessionService) CheckFillBlank(id uuid.UUID, qid int) (quiz.Snapshot, error) {
	return s.mutate(id, func(q *quiz.Session) error { return q.CheckFillBlank(qid) })
}

func (s *SessionService) Reorder(id uuid.UUID, qid, from, to int) (quiz.Snapshot, error) {
	return s.mutate(id, func(q *quiz.Session) error { return q.Reorder(qid, from, to) })
}

func (s *SessionService) SetMatch(id uuid.UUID, qid, left, right int) (quiz.Snapshot, error) {
	return s.mutate(id, func(q *quiz.Session) error { return q.SetMatch(qid, left, right) })
}

func (s *SessionService) ClearMatch(id uuid.UUID, qid, left int) (quiz.Snapshot, error) {
	return s.mutate(id, func(q *quiz.Session) error { return q.ClearMatch(qid, left) })
}

func (s *SessionService) SubmitMatching(id uuid.UUID, qid int) (quiz.Snapshot, error) {
	return s.mutate(id, func(q *quiz.Session) error { return q.SubmitMatching(qid) })
}

func (s *SessionService) ResetMatching(id uuid.UUID, qid int) (quiz.Snapshot, error) {
	return s.mutate(id, func(q *quiz.Session) error { return q.ResetMatching(qid) })
}

// ResetAllAnswers clears every answer when confirmed. The flag reports
// whether anything was reset.
func (s *SessionService) ResetAllAnswers(id uuid.UUID, confirmed bool) (quiz.Snapshot, bool, error) {
	var applied bool
	snap, err := s.mutate(id, func(q *quiz.Session) error {
		applied = q.ResetAllAnswers(confirmed)
		return nil
	})
	return snap, applied, err
}

// ----------------------------------------------------------------
// Review and paging
// ----------------------------------------------------------------

// EnterReview switches to review mode and records the attempt.
func (s *SessionService) EnterReview(ctx context.Context, id uuid.UUID) (quiz.Snapshot, error) {
	e, err := s.get(id)
	if err != nil {
		return quiz.Snapshot{}, err
	}

	e.mu.Lock()
	wasReview := e.session.Mode() == quiz.ModeReview
	if err := e.session.EnterReview(); err != nil {
		e.mu.Unlock()
		return quiz.Snapshot{}, err
	}
	e.lastSeen = s.now()
	snap := e.session.Snapshot()
	var attempt *model.Attempt
	if !wasReview {
		attempt = e.attempt(s.now())
	}
	e.mu.Unlock()

	if attempt != nil && s.attempts != nil {
		if err := s.attempts.Record(ctx, *attempt); err != nil {
			s.log.Warn().Err(err).Str("session_id", id.String()).Msg("Failed to record attempt")
		}
	}
	return snap, nil
}

// attempt summarises the session for history. Caller holds e.mu.
func (e *entry) attempt(at time.Time) *model.Attempt {
	res := quiz.Score(e.session)
	questions, _ := json.Marshal(e.session.Questions())
	return &model.Attempt{
		ClientID:   e.clientID,
		SessionID:  e.id,
		Topic:      e.topic,
		Kind:       string(e.kind),
		Level:      string(e.level),
		Correct:    res.Correct,
		Total:      res.Total,
		Percentage: res.Percentage,
		Questions:  questions,
		FinishedAt: at,
	}
}

func (s *SessionService) ExitReview(id uuid.UUID) (quiz.Snapshot, error) {
	return s.mutate(id, func(q *quiz.Session) error {
		q.ExitReview()
		return nil
	})
}

func (s *SessionService) GoToPage(id uuid.UUID, page int) (quiz.Snapshot, error) {
	return s.mutate(id, func(q *quiz.Session) error {
		q.GoToPage(page)
		return nil
	})
}

func (s *SessionService) NextPage(id uuid.UUID) (quiz.Snapshot, error) {
	return s.mutate(id, func(q *quiz.Session) error {
		q.NextPage()
		return nil
	})
}

func (s *SessionService) PrevPage(id uuid.UUID) (quiz.Snapshot, error) {
	return s.mutate(id, func(q *quiz.Session) error {
		q.PrevPage()
		return nil
	})
}

// ----------------------------------------------------------------
// Read side
// ----------------------------------------------------------------

func (s *SessionService) read(id uuid.UUID, fn func(*quiz.Session)) error {
	e, err := s.get(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSeen = s.now()
	fn(e.session)
	return nil
}

// Page renders the current page.
func (s *SessionService) Page(id uuid.UUID) (model.PageView, error) {
	var v model.PageView
	err := s.read(id, func(q *quiz.Session) {
		v = model.PageView{
			Page:      q.Page(),
			PageCount: q.PageCount(),
			Mode:      q.Mode(),
			Questions: q.RenderPage(),
		}
	})
	return v, err
}

func (s *SessionService) Score(id uuid.UUID) (quiz.Result, error) {
	var res quiz.Result
	err := s.read(id, func(q *quiz.Session) { res = quiz.Score(q) })
	return res, err
}

func (s *SessionService) Insights(id uuid.UUID) (quiz.InsightStats, error) {
	var st quiz.InsightStats
	err := s.read(id, func(q *quiz.Session) { st = quiz.Insights(q) })
	return st, err
}

// Questions returns the finalised question list with canonical answers and
// the topic it was generated for.
func (s *SessionService) Questions(id uuid.UUID) ([]quiz.Question, string, error) {
	e, err := s.get(id)
	if err != nil {
		return nil, "", err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSeen = s.now()
	return e.session.Questions(), e.topic, nil
}

// ----------------------------------------------------------------
// Eviction
// ----------------------------------------------------------------

// Evict drops sessions idle since before now-idleTTL and returns how many
// were removed. In-flight generations of evicted sessions are cancelled.
func (s *SessionService) Evict(now time.Time) int {
	cutoff := now.Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		e.mu.Lock()
		idle := e.lastSeen.Before(cutoff)
		if idle {
			e.supersede()
		}
		e.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// StartJanitor evicts idle sessions every interval until ctx is done.
func (s *SessionService) StartJanitor(ctx context.Context, interval time.Duration) {
	s.log.Info().Dur("idle_ttl", s.idleTTL).Msg("Session janitor started")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Evict(s.now()); n > 0 {
				s.log.Info().Int("evicted", n).Msg("Idle sessions evicted")
			}
		}
	}
}

// Count returns the number of live sessions.
func (s *SessionService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
