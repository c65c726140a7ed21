package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind is the discriminant of a quiz item.
type Kind string

const (
	KindSingleChoice Kind = "single-choice"
	KindTrueFalse    Kind = "true-false"
	KindFillBlank    Kind = "fill-blank"
	KindOrdering     Kind = "ordering"
	KindMatching     Kind = "matching"
)

// Kinds lists every supported kind in display order.
var Kinds = []Kind{KindSingleChoice, KindTrueFalse, KindFillBlank, KindOrdering, KindMatching}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// ErrInvalidQuestion is wrapped by every Question.Validate failure.
var ErrInvalidQuestion = errors.New("invalid question")

// Payload is the variant-specific part of a Question. It is implemented only by
// *Choice, *FillBlank, *Ordering and *Matching.
type Payload interface {
	Kind() Kind
	validate() error
}

// Question is a single generated quiz item.
type Question struct {
	ID      int
	Prompt  string
	Payload Payload
}

// Kind returns the discriminant of the question payload.
func (q Question) Kind() Kind {
	if q.Payload == nil {
		return ""
	}
	return q.Payload.Kind()
}

// Validate checks the canonical answer encoded in the payload.
func (q Question) Validate() error {
	if q.Payload == nil {
		return fmt.Errorf("%w: question %d has no payload", ErrInvalidQuestion, q.ID)
	}
	if err := q.Payload.validate(); err != nil {
		return fmt.Errorf("%w: question %d (%s): %v", ErrInvalidQuestion, q.ID, q.Kind(), err)
	}
	return nil
}

// Choice backs single-choice and true/false questions.
type Choice struct {
	Options            []string
	CorrectOptionIndex int
	TrueFalse          bool
}

func (c *Choice) Kind() Kind {
	if c.TrueFalse {
		return KindTrueFalse
	}
	return KindSingleChoice
}

func (c *Choice) validate() error {
	if len(c.Options) == 0 {
		return errors.New("no options")
	}
	if c.CorrectOptionIndex < 0 || c.CorrectOptionIndex >= len(c.Options) {
		return fmt.Errorf("correct option %d out of range [0, %d)", c.CorrectOptionIndex, len(c.Options))
	}
	return nil
}

// FillBlank accepts any of AcceptableAnswers, compared case-insensitively.
type FillBlank struct {
	AcceptableAnswers []string
}

func (f *FillBlank) Kind() Kind { return KindFillBlank }

func (f *FillBlank) validate() error {
	if len(f.AcceptableAnswers) == 0 {
		return errors.New("no acceptable answers")
	}
	return nil
}

// Ordering shows Items in display order; CorrectPermutation lists item indices
// in the expected order.
type Ordering struct {
	Items              []string
	CorrectPermutation []int
}

func (o *Ordering) Kind() Kind { return KindOrdering }

func (o *Ordering) validate() error {
	if len(o.Items) == 0 {
		return errors.New("no items")
	}
	if len(o.CorrectPermutation) != len(o.Items) {
		return fmt.Errorf("permutation length %d, want %d", len(o.CorrectPermutation), len(o.Items))
	}
	seen := make([]bool, len(o.Items))
	for _, idx := range o.CorrectPermutation {
		if idx < 0 || idx >= len(o.Items) {
			return fmt.Errorf("permutation index %d out of range", idx)
		}
		if seen[idx] {
			return fmt.Errorf("permutation repeats index %d", idx)
		}
		seen[idx] = true
	}
	return nil
}

// Matching pairs Left[i] with Right[CorrectMapping[i]].
type Matching struct {
	Left           []string
	Right          []string
	CorrectMapping []int
}

func (m *Matching) Kind() Kind { return KindMatching }

func (m *Matching) validate() error {
	if len(m.Left) == 0 || len(m.Right) == 0 {
		return errors.New("empty side")
	}
	if len(m.CorrectMapping) != len(m.Left) {
		return fmt.Errorf("mapping length %d, want %d", len(m.CorrectMapping), len(m.Left))
	}
	for _, idx := range m.CorrectMapping {
		if idx < 0 || idx >= len(m.Right) {
			return fmt.Errorf("mapping index %d out of range", idx)
		}
	}
	return nil
}

// questionJSON is the flattened wire form of a Question.
type questionJSON struct {
	ID                 int      `json:"id"`
	Prompt             string   `json:"prompt"`
	Kind               Kind     `json:"kind"`
	Options            []string `json:"options,omitempty"`
	CorrectOptionIndex *int     `json:"correct_option_index,omitempty"`
	AcceptableAnswers  []string `json:"acceptable_answers,omitempty"`
	Items              []string `json:"items,omitempty"`
	CorrectPermutation []int    `json:"correct_permutation,omitempty"`
	Left               []string `json:"left,omitempty"`
	Right              []string `json:"right,omitempty"`
	CorrectMapping     []int    `json:"correct_mapping,omitempty"`
}

func (q Question) MarshalJSON() ([]byte, error) {
	out := questionJSON{ID: q.ID, Prompt: q.Prompt, Kind: q.Kind()}
	switch p := q.Payload.(type) {
	case *Choice:
		idx := p.CorrectOptionIndex
		out.Options = p.Options
		out.CorrectOptionIndex = &idx
	case *FillBlank:
		out.AcceptableAnswers = p.AcceptableAnswers
	case *Ordering:
		out.Items = p.Items
		out.CorrectPermutation = p.CorrectPermutation
	case *Matching:
		out.Left = p.Left
		out.Right = p.Right
		out.CorrectMapping = p.CorrectMapping
	}
	return json.Marshal(out)
}

func (q *Question) UnmarshalJSON(data []byte) error {
	var in questionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	q.ID = in.ID
	q.Prompt = in.Prompt
	switch in.Kind {
	case KindSingleChoice, KindTrueFalse:
		c := &Choice{Options: in.Options, TrueFalse: in.Kind == KindTrueFalse}
		if in.CorrectOptionIndex != nil {
			c.CorrectOptionIndex = *in.CorrectOptionIndex
		}
		q.Payload = c
	case KindFillBlank:
		q.Payload = &FillBlank{AcceptableAnswers: in.AcceptableAnswers}
	case KindOrdering:
		q.Payload = &Ordering{Items: in.Items, CorrectPermutation: in.CorrectPermutation}
	case KindMatching:
		q.Payload = &Matching{Left: in.Left, Right: in.Right, CorrectMapping: in.CorrectMapping}
	default:
		return fmt.Errorf("unknown question kind %q", in.Kind)
	}
	return nil
}
