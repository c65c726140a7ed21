package quiz

import "strings"

// IsCorrect compares a recorded answer with the canonical answer of q.
// A nil answer is never correct.
func IsCorrect(q Question, a Answer) bool {
	if a == nil {
		return false
	}
	switch p := q.Payload.(type) {
	case *Choice:
		ans, ok := a.(ChoiceAnswer)
		return ok && ans.Index == p.CorrectOptionIndex
	case *FillBlank:
		ans, ok := a.(*FillBlankAnswer)
		return ok && matchesAny(ans.Text, p.AcceptableAnswers)
	case *Ordering:
		ans, ok := a.(*OrderingAnswer)
		return ok && equalInts(ans.Order, p.CorrectPermutation)
	case *Matching:
		ans, ok := a.(*MatchingAnswer)
		return ok && equalInts(ans.Slots, p.CorrectMapping)
	}
	return false
}

// IsComplete reports whether a counts as finished for q.
//
// Ordering is complete only once the permutation is correct; matching is
// complete once every slot is set. Choice and fill-blank only need a value.
func IsComplete(q Question, a Answer) bool {
	if a == nil {
		return false
	}
	switch p := q.Payload.(type) {
	case *Choice:
		_, ok := a.(ChoiceAnswer)
		return ok
	case *FillBlank:
		ans, ok := a.(*FillBlankAnswer)
		return ok && strings.TrimSpace(ans.Text) != ""
	case *Ordering:
		ans, ok := a.(*OrderingAnswer)
		return ok && len(ans.Order) == len(p.Items) && equalInts(ans.Order, p.CorrectPermutation)
	case *Matching:
		ans, ok := a.(*MatchingAnswer)
		if !ok || len(ans.Slots) != len(p.Left) {
			return false
		}
		for _, v := range ans.Slots {
			if v == Unset {
				return false
			}
		}
		return true
	}
	return false
}

func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func matchesAny(text string, accepted []string) bool {
	got := normalizeText(text)
	if got == "" {
		return false
	}
	for _, a := range accepted {
		if normalizeText(a) == got {
			return true
		}
	}
	return false
}

// equalInts is element-wise equality; Unset never equals a valid index
// because canonical arrays hold only valid indices.
func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
