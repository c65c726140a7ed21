package generator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/quizgen/quizgen-backend/internal/quiz"
	"github.com/rs/zerolog"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *RemoteClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewRemoteClient(srv.URL, srv.Client(), zerolog.Nop())
}

func TestRemoteClient_RequestShape(t *testing.T) {
	var gotPath string
	var got map[string]any

	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Write([]byte(`{"quiz_out":[{"question":"Q?","answer":true}]}`))
	})

	previous := []quiz.Question{{ID: 1, Prompt: "Earlier?", Payload: &quiz.Choice{Options: []string{"True", "False"}, TrueFalse: true}}}
	qs, err := c.Generate(context.Background(), quiz.KindTrueFalse, Request{
		Topic: " volcanoes ", Level: LevelHard, APIKey: "k-123", Previous: previous,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if gotPath != "/create_tf_quiz/" {
		t.Errorf("path = %q", gotPath)
	}
	if got["text"] != "Generate a quiz about: volcanoes" || got["level"] != "hard" || got["api_key"] != "k-123" {
		t.Errorf("unexpected body %v", got)
	}
	past, _ := got["past_quiz_qns"].([]any)
	if len(past) != 1 || past[0] != "Earlier?" {
		t.Errorf("past_quiz_qns = %v", got["past_quiz_qns"])
	}

	if len(qs) != 1 {
		t.Fatalf("expected 1 question, got %d", len(qs))
	}
	c0 := qs[0].Payload.(*quiz.Choice)
	if !c0.TrueFalse || c0.CorrectOptionIndex != 0 || c0.Options[1] != "False" {
		t.Errorf("unexpected true/false payload %+v", c0)
	}
}

func TestRemoteClient_MatchingPastPairs(t *testing.T) {
	var got struct {
		Past []pastPair `json:"past_quiz_qns"`
	}
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"quiz":[{"left_contents":["a","b"],"right_contents":["x","y"],"answer_index_list":[1,0]}]}`))
	})

	previous := []quiz.Question{{ID: 1, Prompt: "m", Payload: &quiz.Matching{Left: []string{"l"}, Right: []string{"r"}, CorrectMapping: []int{0}}}}
	qs, err := c.Generate(context.Background(), quiz.KindMatching, Request{Topic: "t", Level: LevelEasy, APIKey: "k", Previous: previous})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got.Past) != 1 || got.Past[0].LeftContents[0] != "l" {
		t.Errorf("unexpected past pairs %+v", got.Past)
	}
	if qs[0].Prompt != defaultMatchingPrompt {
		t.Errorf("expected default matching prompt, got %q", qs[0].Prompt)
	}
}

func TestRemoteClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{"401", http.StatusUnauthorized, `{"detail":"bad key"}`, ErrUnauthorized, ""},
		{"403", http.StatusForbidden, ``, ErrUnauthorized, ""},
		{"unauthorized body", http.StatusBadRequest, `{"error":"Unauthorized request"}`, ErrUnauthorized, ""},
		{"429", http.StatusTooManyRequests, `slow down`, ErrRateLimited, ""},
		{"500 with message", http.StatusInternalServerError, `{"detail":"model overloaded"}`, nil, "model overloaded"},
		{"502 plain text", http.StatusBadGateway, `upstream down`, nil, "upstream down"},
		{"200 without quiz", http.StatusOK, `{"status":"ok"}`, ErrMalformed, ""},
		{"200 not json", http.StatusOK, `<html>`, ErrMalformed, ""},
		{"200 invalid item", http.StatusOK, `{"quiz_out":[{"question":"q","options":["a"],"answer_index":3}]}`, ErrMalformed, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})

			_, err := c.Generate(context.Background(), quiz.KindSingleChoice, Request{Topic: "t", Level: LevelEasy, APIKey: "k"})
			if err == nil {
				t.Fatal("expected error")
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Errorf("error = %v, want %v", err, tc.wantErr)
			}
			if tc.wantMsg != "" {
				var se *StatusError
				if !errors.As(err, &se) {
					t.Fatalf("expected *StatusError, got %T: %v", err, err)
				}
				if se.Message != tc.wantMsg || se.StatusCode != tc.status {
					t.Errorf("StatusError = %+v", se)
				}
			}
		})
	}
}

func TestRemoteClient_ContextCancel(t *testing.T) {
	release := make(chan struct{})
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Generate(ctx, quiz.KindSingleChoice, Request{Topic: "t", Level: LevelEasy, APIKey: "k"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRemoteClient_UnsupportedKind(t *testing.T) {
	c := NewRemoteClient("http://unused.invalid", nil, zerolog.Nop())
	if _, err := c.Generate(context.Background(), quiz.Kind("essay"), Request{}); !errors.Is(err, ErrUnsupportedKind) {
		t.Errorf("expected ErrUnsupportedKind, got %v", err)
	}
}
