package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/quizgen/quizgen-backend/internal/quiz"
)

const (
	defaultOrderingPrompt = "Arrange the following in the correct order."
	defaultMatchingPrompt = "Match the items on the left with the correct answers on the right."
)

type responseBody struct {
	QuizOut []rawItem `json:"quiz_out"`
	Quiz    []rawItem `json:"quiz"`
}

// rawItem is the union of every per-kind element shape.
type rawItem struct {
	Question        string   `json:"question"`
	Options         []string `json:"options"`
	AnswerIndex     *int     `json:"answer_index"`
	Answer          *bool    `json:"answer"`
	AnswersList     []string `json:"answers_list"`
	Contents        []string `json:"contents"`
	AnswerIndexList []int    `json:"answer_index_list"`
	LeftContents    []string `json:"left_contents"`
	RightContents   []string `json:"right_contents"`
}

// Parse normalises a generation response of the given kind. Every returned
// question passes quiz.Question.Validate; a single bad element fails the
// whole batch.
func Parse(kind quiz.Kind, body []byte) ([]quiz.Question, error) {
	var resp responseBody
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	items := resp.QuizOut
	if len(items) == 0 {
		items = resp.Quiz
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no quiz_out array", ErrMalformed)
	}

	questions := make([]quiz.Question, 0, len(items))
	for i, item := range items {
		q, err := normalize(kind, item)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrMalformed, i, err)
		}
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrMalformed, i, err)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func normalize(kind quiz.Kind, item rawItem) (quiz.Question, error) {
	prompt := strings.TrimSpace(item.Question)

	switch kind {
	case quiz.KindSingleChoice:
		if item.AnswerIndex == nil {
			return quiz.Question{}, fmt.Errorf("missing answer_index")
		}
		return quiz.Question{Prompt: prompt, Payload: &quiz.Choice{
			Options:            item.Options,
			CorrectOptionIndex: *item.AnswerIndex,
		}}, nil

	case quiz.KindTrueFalse:
		if item.Answer == nil {
			return quiz.Question{}, fmt.Errorf("missing answer")
		}
		correct := 1
		if *item.Answer {
			correct = 0
		}
		return quiz.Question{Prompt: prompt, Payload: &quiz.Choice{
			Options:            []string{"True", "False"},
			CorrectOptionIndex: correct,
			TrueFalse:          true,
		}}, nil

	case quiz.KindFillBlank:
		answers := make([]string, 0, len(item.AnswersList))
		for _, a := range item.AnswersList {
			if a = strings.TrimSpace(a); a != "" {
				answers = append(answers, a)
			}
		}
		return quiz.Question{Prompt: prompt, Payload: &quiz.FillBlank{AcceptableAnswers: answers}}, nil

	case quiz.KindOrdering:
		if prompt == "" {
			prompt = defaultOrderingPrompt
		}
		return quiz.Question{Prompt: prompt, Payload: &quiz.Ordering{
			Items:              item.Contents,
			CorrectPermutation: item.AnswerIndexList,
		}}, nil

	case quiz.KindMatching:
		if prompt == "" {
			prompt = defaultMatchingPrompt
		}
		return quiz.Question{Prompt: prompt, Payload: &quiz.Matching{
			Left:           item.LeftContents,
			Right:          item.RightContents,
			CorrectMapping: item.AnswerIndexList,
		}}, nil
	}
	return quiz.Question{}, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
}
