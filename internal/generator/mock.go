package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/quizgen/quizgen-backend/internal/quiz"
)

// MockBatchSize is the number of questions the mock returns per call.
const MockBatchSize = 5

// MockClient produces deterministic questions offline. Output goes through
// Parse so it follows the same normalisation as remote responses.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Generate(ctx context.Context, kind quiz.Kind, req Request) ([]quiz.Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, ok := Endpoints[kind]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}

	body, err := json.Marshal(responseBody{QuizOut: buildMockItems(kind, req.Topic, len(req.Previous))})
	if err != nil {
		return nil, err
	}
	return Parse(kind, body)
}

func buildMockItems(kind quiz.Kind, topic string, offset int) []rawItem {
	topic = strings.TrimSpace(topic)
	items := make([]rawItem, MockBatchSize)
	for i := range items {
		n := offset + i + 1
		answer := i % 4
		truth := i%2 == 0
		switch kind {
		case quiz.KindSingleChoice:
			items[i] = rawItem{
				Question:    fmt.Sprintf("Question %d about %s?", n, topic),
				Options:     []string{"Option A", "Option B", "Option C", "Option D"},
				AnswerIndex: &answer,
			}
		case quiz.KindTrueFalse:
			items[i] = rawItem{
				Question: fmt.Sprintf("Statement %d about %s is true.", n, topic),
				Answer:   &truth,
			}
		case quiz.KindFillBlank:
			items[i] = rawItem{
				Question:    fmt.Sprintf("Fill in the blank %d about %s: ____.", n, topic),
				AnswersList: []string{fmt.Sprintf("answer%d", n), fmt.Sprintf("alt%d", n)},
			}
		case quiz.KindOrdering:
			items[i] = rawItem{
				Question:        fmt.Sprintf("Put step %d of %s in order.", n, topic),
				Contents:        []string{"Second", "First", "Third"},
				AnswerIndexList: []int{1, 0, 2},
			}
		case quiz.KindMatching:
			items[i] = rawItem{
				LeftContents:    []string{fmt.Sprintf("Term %d", n), "Concept", "Idea"},
				RightContents:   []string{"Meaning of concept", "Meaning of idea", fmt.Sprintf("Meaning of term %d", n)},
				AnswerIndexList: []int{2, 0, 1},
			}
		}
	}
	return items
}
