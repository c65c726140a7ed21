// Package export turns a finalised question list into downloadable documents.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/quizgen/quizgen-backend/internal/quiz"
)

// Brand is printed in document footers and metadata.
const Brand = "QuizGen AI"

// Document is the input of every exporter.
type Document struct {
	Title       string
	Questions   []quiz.Question
	GeneratedAt time.Time
}

func (d Document) title() string {
	if t := strings.TrimSpace(d.Title); t != "" {
		return "Quiz: " + t
	}
	return "Quiz"
}

func (d Document) footer() string {
	return fmt.Sprintf("%s - %s", Brand, d.GeneratedAt.Format("January 2, 2006"))
}

// Letter returns the option label for index i: A, B, ... Z, AA, AB ...
func Letter(i int) string {
	s := ""
	for i >= 0 {
		s = string(rune('A'+i%26)) + s
		i = i/26 - 1
	}
	return s
}

// kindLabel is the human name of a question kind.
func kindLabel(k quiz.Kind) string {
	switch k {
	case quiz.KindSingleChoice:
		return "Multiple Choice"
	case quiz.KindTrueFalse:
		return "True / False"
	case quiz.KindFillBlank:
		return "Fill in the Blank"
	case quiz.KindOrdering:
		return "Ordering"
	case quiz.KindMatching:
		return "Matching"
	}
	return string(k)
}

// bodyLines lists what a reader sees under the prompt: lettered options,
// items to order, or the two matching columns.
func bodyLines(q quiz.Question) []string {
	switch p := q.Payload.(type) {
	case *quiz.Choice:
		lines := make([]string, len(p.Options))
		for i, opt := range p.Options {
			lines[i] = fmt.Sprintf("%s. %s", Letter(i), opt)
		}
		return lines
	case *quiz.FillBlank:
		return []string{"Answer: ____________________"}
	case *quiz.Ordering:
		lines := make([]string, len(p.Items))
		for i, item := range p.Items {
			lines[i] = fmt.Sprintf("%d) %s", i+1, item)
		}
		return lines
	case *quiz.Matching:
		lines := make([]string, 0, len(p.Left)+len(p.Right))
		for i, left := range p.Left {
			lines = append(lines, fmt.Sprintf("%d) %s", i+1, left))
		}
		for i, right := range p.Right {
			lines = append(lines, fmt.Sprintf("%s. %s", Letter(i), right))
		}
		return lines
	}
	return nil
}

// answerText is the canonical answer in key form.
func answerText(q quiz.Question) string {
	switch p := q.Payload.(type) {
	case *quiz.Choice:
		return fmt.Sprintf("%s. %s", Letter(p.CorrectOptionIndex), p.Options[p.CorrectOptionIndex])
	case *quiz.FillBlank:
		return strings.Join(p.AcceptableAnswers, " / ")
	case *quiz.Ordering:
		items := make([]string, len(p.CorrectPermutation))
		for i, idx := range p.CorrectPermutation {
			items[i] = p.Items[idx]
		}
		return strings.Join(items, " -> ")
	case *quiz.Matching:
		pairs := make([]string, len(p.CorrectMapping))
		for i, idx := range p.CorrectMapping {
			pairs[i] = fmt.Sprintf("%d-%s (%s -> %s)", i+1, Letter(idx), p.Left[i], p.Right[idx])
		}
		return strings.Join(pairs, "; ")
	}
	return ""
}
