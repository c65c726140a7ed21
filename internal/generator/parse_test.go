package generator

import (
	"context"
	"testing"

	"github.com/quizgen/quizgen-backend/internal/quiz"
)

func TestParse_PerKind(t *testing.T) {
	tests := []struct {
		kind quiz.Kind
		body string
		want quiz.Kind
	}{
		{quiz.KindSingleChoice, `{"quiz_out":[{"question":"q","options":["a","b"],"answer_index":1}]}`, quiz.KindSingleChoice},
		{quiz.KindTrueFalse, `{"quiz_out":[{"question":"q","answer":false}]}`, quiz.KindTrueFalse},
		{quiz.KindFillBlank, `{"quiz_out":[{"question":"q","answers_list":[" Go ",""]}]}`, quiz.KindFillBlank},
		{quiz.KindOrdering, `{"quiz_out":[{"question":"","contents":["b","a"],"answer_index_list":[1,0]}]}`, quiz.KindOrdering},
		{quiz.KindMatching, `{"quiz":[{"left_contents":["a"],"right_contents":["x","y"],"answer_index_list":[1]}]}`, quiz.KindMatching},
	}

	for _, tc := range tests {
		t.Run(string(tc.kind), func(t *testing.T) {
			qs, err := Parse(tc.kind, []byte(tc.body))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if len(qs) != 1 || qs[0].Kind() != tc.want {
				t.Fatalf("unexpected questions %+v", qs)
			}
			if qs[0].Prompt == "" {
				t.Error("prompt must not be empty")
			}
		})
	}
}

func TestParse_TrueFalseMapping(t *testing.T) {
	qs, err := Parse(quiz.KindTrueFalse, []byte(`{"quiz_out":[{"question":"a","answer":true},{"question":"b","answer":false}]}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := qs[0].Payload.(*quiz.Choice).CorrectOptionIndex; got != 0 {
		t.Errorf("true should map to index 0, got %d", got)
	}
	if got := qs[1].Payload.(*quiz.Choice).CorrectOptionIndex; got != 1 {
		t.Errorf("false should map to index 1, got %d", got)
	}
}

func TestParse_FillBlankTrimsAnswers(t *testing.T) {
	qs, err := Parse(quiz.KindFillBlank, []byte(`{"quiz_out":[{"question":"q","answers_list":[" Go ","","golang"]}]}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := qs[0].Payload.(*quiz.FillBlank).AcceptableAnswers
	if len(got) != 2 || got[0] != "Go" || got[1] != "golang" {
		t.Errorf("AcceptableAnswers = %q", got)
	}
}

func TestParse_RejectsBadPermutation(t *testing.T) {
	_, err := Parse(quiz.KindOrdering, []byte(`{"quiz_out":[{"question":"q","contents":["a","b"],"answer_index_list":[0,0]}]}`))
	if err == nil {
		t.Fatal("expected error for repeated permutation index")
	}
}

func TestMockClient_AllKinds(t *testing.T) {
	m := NewMockClient()
	for _, kind := range quiz.Kinds {
		qs, err := m.Generate(context.Background(), kind, Request{Topic: "rivers", Level: LevelMedium, APIKey: "k"})
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		if len(qs) != MockBatchSize {
			t.Errorf("%s: expected %d questions, got %d", kind, MockBatchSize, len(qs))
		}
		for _, q := range qs {
			if q.Kind() != kind {
				t.Errorf("%s: got question of kind %s", kind, q.Kind())
			}
		}
	}
}
