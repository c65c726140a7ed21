package quiz

import "encoding/json"

// Unset marks a matching slot that has not been paired yet.
const Unset = -1

// Answer is the per-question answer record. Implemented by ChoiceAnswer,
// *FillBlankAnswer, *OrderingAnswer and *MatchingAnswer.
type Answer interface {
	answerKind() Kind
}

// ChoiceAnswer is recorded once per choice question. Its presence in the
// answer map is the lock: a later selection for the same id is ignored.
type ChoiceAnswer struct {
	Index int `json:"index"`
}

func (ChoiceAnswer) answerKind() Kind { return KindSingleChoice }

// FillBlankAnswer holds free text plus whether the user asked for feedback.
type FillBlankAnswer struct {
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

func (*FillBlankAnswer) answerKind() Kind { return KindFillBlank }

// OrderingAnswer is the user's current permutation of item indices.
type OrderingAnswer struct {
	Order []int `json:"order"`
}

func (*OrderingAnswer) answerKind() Kind { return KindOrdering }

// MatchingAnswer maps each left slot to a right index or Unset.
type MatchingAnswer struct {
	Slots     []int `json:"-"`
	Submitted bool  `json:"submitted"`
}

func (*MatchingAnswer) answerKind() Kind { return KindMatching }

// MarshalJSON renders Unset slots as null.
func (m *MatchingAnswer) MarshalJSON() ([]byte, error) {
	slots := make([]*int, len(m.Slots))
	for i, v := range m.Slots {
		if v != Unset {
			v := v
			slots[i] = &v
		}
	}
	return json.Marshal(struct {
		Slots     []*int `json:"slots"`
		Submitted bool   `json:"submitted"`
	}{slots, m.Submitted})
}

func newMatchingAnswer(n int) *MatchingAnswer {
	slots := make([]int, n)
	for i := range slots {
		slots[i] = Unset
	}
	return &MatchingAnswer{Slots: slots}
}

func identity(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

func cloneInts(in []int) []int {
	if in == nil {
		return nil
	}
	out := make([]int, len(in))
	copy(out, in)
	return out
}

// cloneAnswer returns a deep copy so snapshots never alias live state.
func cloneAnswer(a Answer) Answer {
	switch v := a.(type) {
	case ChoiceAnswer:
		return v
	case *FillBlankAnswer:
		c := *v
		return &c
	case *OrderingAnswer:
		return &OrderingAnswer{Order: cloneInts(v.Order)}
	case *MatchingAnswer:
		return &MatchingAnswer{Slots: cloneInts(v.Slots), Submitted: v.Submitted}
	}
	return a
}
