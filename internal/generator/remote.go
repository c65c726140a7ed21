package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/quizgen/quizgen-backend/internal/quiz"
	"github.com/rs/zerolog"
)

// Endpoints maps each kind to its path on the generation host.
var Endpoints = map[quiz.Kind]string{
	quiz.KindSingleChoice: "/create_quiz/",
	quiz.KindTrueFalse:    "/create_tf_quiz/",
	quiz.KindFillBlank:    "/create_fib_quiz/",
	quiz.KindOrdering:     "/create_ordering_quiz/",
	quiz.KindMatching:     "/create_matching_quiz/",
}

const maxErrorMessage = 300

// RemoteClient talks to the hosted quiz generation API.
type RemoteClient struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewRemoteClient builds a client for baseURL. A nil httpClient gets a
// default one without its own timeout; callers bound each call with ctx.
func NewRemoteClient(baseURL string, httpClient *http.Client, log zerolog.Logger) *RemoteClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &RemoteClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		log:        log.With().Str("component", "generator").Logger(),
	}
}

type requestBody struct {
	Text        string `json:"text"`
	Level       Level  `json:"level"`
	PastQuizQns any    `json:"past_quiz_qns"`
	APIKey      string `json:"api_key"`
}

type pastPair struct {
	LeftContents  []string `json:"left_contents"`
	RightContents []string `json:"right_contents"`
}

// PromptText is the text sent for a topic.
func PromptText(topic string) string {
	return "Generate a quiz about: " + strings.TrimSpace(topic)
}

func pastQuestions(kind quiz.Kind, previous []quiz.Question) any {
	if kind == quiz.KindMatching {
		pairs := make([]pastPair, 0, len(previous))
		for _, q := range previous {
			if m, ok := q.Payload.(*quiz.Matching); ok {
				pairs = append(pairs, pastPair{LeftContents: m.Left, RightContents: m.Right})
			}
		}
		return pairs
	}
	prompts := make([]string, 0, len(previous))
	for _, q := range previous {
		prompts = append(prompts, q.Prompt)
	}
	return prompts
}

// Generate issues one POST for kind and normalises the response.
func (c *RemoteClient) Generate(ctx context.Context, kind quiz.Kind, req Request) ([]quiz.Question, error) {
	path, ok := Endpoints[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}

	payload, err := json.Marshal(requestBody{
		Text:        PromptText(req.Topic),
		Level:       req.Level,
		PastQuizQns: pastQuestions(kind, req.Previous),
		APIKey:      req.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("generation request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.log.Debug().
		Str("kind", string(kind)).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Int("bytes", len(body)).
		Msg("Generation response received")

	if err := classify(resp.StatusCode, body); err != nil {
		return nil, err
	}

	questions, err := Parse(kind, body)
	if err != nil {
		c.log.Warn().Err(err).Str("kind", string(kind)).Msg("Generation response rejected")
		return nil, err
	}
	return questions, nil
}

// classify maps a status code and body to the error taxonomy. It returns nil
// for a 2xx response that does not claim to be unauthorized.
func classify(status int, body []byte) error {
	msg := errorMessage(body)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, msg)
	case mentionsUnauthorized(msg):
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	case status < 200 || status > 299:
		return &StatusError{StatusCode: status, Message: msg}
	}
	return nil
}

func mentionsUnauthorized(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "unauthorized") || strings.Contains(m, "invalid api key")
}

// errorMessage pulls a human message out of a response body. JSON bodies
// are searched for detail, error and message; anything else is returned
// trimmed and truncated.
func errorMessage(body []byte) string {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err == nil {
		for _, key := range []string{"detail", "error", "message"} {
			raw, ok := envelope[key]
			if !ok {
				continue
			}
			var s string
			if json.Unmarshal(raw, &s) == nil && s != "" {
				return truncate(s)
			}
			if len(raw) > 0 && string(raw) != "null" {
				return truncate(string(raw))
			}
		}
		return ""
	}
	return truncate(strings.TrimSpace(string(body)))
}

func truncate(s string) string {
	if len(s) > maxErrorMessage {
		return s[:maxErrorMessage] + "..."
	}
	return s
}
