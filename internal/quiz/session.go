package quiz

import (
	"errors"
	"fmt"
	"strings"
)

// PageSize is the number of questions shown per page.
const PageSize = 5

// Mode is the session mode.
type Mode string

const (
	ModePractice Mode = "practice"
	ModeReview   Mode = "review"
)

var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrKindMismatch     = errors.New("operation does not apply to this question kind")
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrIncomplete       = errors.New("not every question has a complete answer")
)

// Session is the state of one quiz run. It is not safe for concurrent use;
// callers serialise access.
//
// questions is an append-only log: only Clear and Replace truncate it.
type Session struct {
	questions    []Question
	answers      map[int]Answer
	mode         Mode
	page         int
	retryAttempt int
}

// NewSession returns an empty session in practice mode.
func NewSession() *Session {
	return &Session{answers: make(map[int]Answer), mode: ModePractice}
}

// Len returns the number of questions.
func (s *Session) Len() int { return len(s.questions) }

// Mode returns the current mode.
func (s *Session) Mode() Mode { return s.mode }

// Page returns the zero-based page cursor.
func (s *Session) Page() int { return s.page }

// RetryAttempt returns the generation retry counter.
func (s *Session) RetryAttempt() int { return s.retryAttempt }

// MarkRetry records the silent retry that follows a first timeout.
func (s *Session) MarkRetry() { s.retryAttempt = 1 }

// ResetRetry zeroes the retry counter.
func (s *Session) ResetRetry() { s.retryAttempt = 0 }

// Questions returns a copy of the question list.
func (s *Session) Questions() []Question {
	out := make([]Question, len(s.questions))
	copy(out, s.questions)
	return out
}

// Prompts returns the prompt of every question, in order.
func (s *Session) Prompts() []string {
	out := make([]string, len(s.questions))
	for i, q := range s.questions {
		out[i] = q.Prompt
	}
	return out
}

// Answer returns the recorded answer for id, or nil.
func (s *Session) Answer(id int) Answer {
	return s.answers[id]
}

// Replace swaps the question list for batch, numbering it from 1, and
// clears answers, mode and page.
func (s *Session) Replace(batch []Question) {
	s.questions = nil
	s.answers = make(map[int]Answer)
	s.mode = ModePractice
	s.page = 0
	s.appendNumbered(batch)
}

// Append adds batch after the existing questions, continuing the id sequence.
// Answers are kept; the page cursor moves to the first page with new questions.
func (s *Session) Append(batch []Question) {
	prev := len(s.questions)
	s.appendNumbered(batch)
	if prev > 0 && len(batch) > 0 {
		if p := prev / PageSize; p < s.PageCount() {
			s.page = p
		}
	}
}

func (s *Session) appendNumbered(batch []Question) {
	next := len(s.questions) + 1
	for _, q := range batch {
		q.ID = next
		next++
		s.questions = append(s.questions, q)
	}
}

// Clear returns the session to its initial empty state.
func (s *Session) Clear() {
	s.questions = nil
	s.answers = make(map[int]Answer)
	s.mode = ModePractice
	s.page = 0
	s.retryAttempt = 0
}

func (s *Session) find(id int) (Question, error) {
	if id < 1 || id > len(s.questions) {
		return Question{}, fmt.Errorf("%w: %d", ErrQuestionNotFound, id)
	}
	return s.questions[id-1], nil
}

func (s *Session) readOnly() bool { return s.mode == ModeReview }

// SelectOption records a choice answer. It is ignored in review mode and
// once the question already has an answer.
func (s *Session) SelectOption(id, index int) error {
	q, err := s.find(id)
	if err != nil {
		return err
	}
	c, ok := q.Payload.(*Choice)
	if !ok {
		return ErrKindMismatch
	}
	if index < 0 || index >= len(c.Options) {
		return fmt.Errorf("%w: option %d", ErrIndexOutOfRange, index)
	}
	if s.readOnly() {
		return nil
	}
	if _, locked := s.answers[id]; locked {
		return nil
	}
	s.answers[id] = ChoiceAnswer{Index: index}
	return nil
}

// SetFillBlankText overwrites the free text of a fill-blank answer until it
// has been checked.
func (s *Session) SetFillBlankText(id int, text string) error {
	q, err := s.find(id)
	if err != nil {
		return err
	}
	if _, ok := q.Payload.(*FillBlank); !ok {
		return ErrKindMismatch
	}
	if s.readOnly() {
		return nil
	}
	ans, _ := s.answers[id].(*FillBlankAnswer)
	if ans == nil {
		s.answers[id] = &FillBlankAnswer{Text: text}
		return nil
	}
	if ans.Checked {
		return nil
	}
	ans.Text = text
	return nil
}

// CheckFillBlank marks a fill-blank answer as checked. Blank text is ignored.
func (s *Session) CheckFillBlank(id int) error {
	q, err := s.find(id)
	if err != nil {
		return err
	}
	if _, ok := q.Payload.(*FillBlank); !ok {
		return ErrKindMismatch
	}
	if s.readOnly() {
		return nil
	}
	ans, _ := s.answers[id].(*FillBlankAnswer)
	if ans == nil || strings.TrimSpace(ans.Text) == "" {
		return nil
	}
	ans.Checked = true
	return nil
}

// CurrentOrder returns the user's permutation for an ordering question,
// defaulting to display order.
func (s *Session) CurrentOrder(id int) ([]int, error) {
	q, err := s.find(id)
	if err != nil {
		return nil, err
	}
	o, ok := q.Payload.(*Ordering)
	if !ok {
		return nil, ErrKindMismatch
	}
	if ans, _ := s.answers[id].(*OrderingAnswer); ans != nil {
		return cloneInts(ans.Order), nil
	}
	return identity(len(o.Items)), nil
}

// Reorder moves the item at from to position to.
func (s *Session) Reorder(id, from, to int) error {
	q, err := s.find(id)
	if err != nil {
		return err
	}
	o, ok := q.Payload.(*Ordering)
	if !ok {
		return ErrKindMismatch
	}
	n := len(o.Items)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move %d -> %d", ErrIndexOutOfRange, from, to)
	}
	if s.readOnly() || from == to {
		return nil
	}
	ans, _ := s.answers[id].(*OrderingAnswer)
	if ans == nil {
		ans = &OrderingAnswer{Order: identity(n)}
		s.answers[id] = ans
	}
	item := ans.Order[from]
	rest := append(ans.Order[:from:from], ans.Order[from+1:]...)
	order := make([]int, 0, n)
	order = append(order, rest[:to]...)
	order = append(order, item)
	order = append(order, rest[to:]...)
	ans.Order = order
	return nil
}

func (s *Session) matching(id int) (*Matching, error) {
	q, err := s.find(id)
	if err != nil {
		return nil, err
	}
	m, ok := q.Payload.(*Matching)
	if !ok {
		return nil, ErrKindMismatch
	}
	return m, nil
}

func (s *Session) matchingAnswer(id int, m *Matching) *MatchingAnswer {
	ans, _ := s.answers[id].(*MatchingAnswer)
	if ans == nil {
		ans = newMatchingAnswer(len(m.Left))
		s.answers[id] = ans
	}
	return ans
}

// SetMatch pairs left slot with right index, releasing any slot that held it.
func (s *Session) SetMatch(id, left, right int) error {
	m, err := s.matching(id)
	if err != nil {
		return err
	}
	if left < 0 || left >= len(m.Left) || right < 0 || right >= len(m.Right) {
		return fmt.Errorf("%w: match %d -> %d", ErrIndexOutOfRange, left, right)
	}
	if s.readOnly() {
		return nil
	}
	ans := s.matchingAnswer(id, m)
	for i, v := range ans.Slots {
		if v == right {
			ans.Slots[i] = Unset
		}
	}
	ans.Slots[left] = right
	return nil
}

// ClearMatch unsets a left slot.
func (s *Session) ClearMatch(id, left int) error {
	m, err := s.matching(id)
	if err != nil {
		return err
	}
	if left < 0 || left >= len(m.Left) {
		return fmt.Errorf("%w: slot %d", ErrIndexOutOfRange, left)
	}
	if s.readOnly() {
		return nil
	}
	ans, _ := s.answers[id].(*MatchingAnswer)
	if ans == nil {
		return nil
	}
	ans.Slots[left] = Unset
	return nil
}

// SubmitMatching turns on instant feedback for a matching question. It is a
// no-op until every left slot is paired.
func (s *Session) SubmitMatching(id int) error {
	q, err := s.find(id)
	if err != nil {
		return err
	}
	if _, ok := q.Payload.(*Matching); !ok {
		return ErrKindMismatch
	}
	if s.readOnly() {
		return nil
	}
	ans, _ := s.answers[id].(*MatchingAnswer)
	if ans == nil || !IsComplete(q, ans) {
		return nil
	}
	ans.Submitted = true
	return nil
}

// ResetMatching clears every slot of a matching question that has not been
// submitted yet.
func (s *Session) ResetMatching(id int) error {
	m, err := s.matching(id)
	if err != nil {
		return err
	}
	if s.readOnly() {
		return nil
	}
	if ans, _ := s.answers[id].(*MatchingAnswer); ans != nil && !ans.Submitted {
		s.answers[id] = newMatchingAnswer(len(m.Left))
	}
	return nil
}

// ResetAllAnswers drops every answer and flag and rewinds to the first page.
// Nothing happens without confirmation or in review mode.
func (s *Session) ResetAllAnswers(confirmed bool) bool {
	if !confirmed || s.readOnly() {
		return false
	}
	s.answers = make(map[int]Answer)
	s.page = 0
	return true
}

// AllComplete reports whether every question has a complete answer.
func (s *Session) AllComplete() bool {
	if len(s.questions) == 0 {
		return false
	}
	for _, q := range s.questions {
		if !IsComplete(q, s.answers[q.ID]) {
			return false
		}
	}
	return true
}

// EnterReview switches to read-only review once every answer is complete.
func (s *Session) EnterReview() error {
	if s.mode == ModeReview {
		return nil
	}
	if !s.AllComplete() {
		return ErrIncomplete
	}
	s.mode = ModeReview
	return nil
}

// ExitReview returns to practice mode.
func (s *Session) ExitReview() {
	s.mode = ModePractice
}

// PageCount returns the number of pages, zero for an empty session.
func (s *Session) PageCount() int {
	return (len(s.questions) + PageSize - 1) / PageSize
}

// GoToPage moves the cursor, clamping to the valid range.
func (s *Session) GoToPage(p int) {
	last := s.PageCount() - 1
	if p > last {
		p = last
	}
	if p < 0 {
		p = 0
	}
	s.page = p
}

// NextPage advances one page if possible.
func (s *Session) NextPage() bool {
	if s.page >= s.PageCount()-1 {
		return false
	}
	s.page++
	return true
}

// PrevPage goes back one page if possible.
func (s *Session) PrevPage() bool {
	if s.page == 0 {
		return false
	}
	s.page--
	return true
}

// PageQuestions returns the questions on the current page.
func (s *Session) PageQuestions() []Question {
	start := s.page * PageSize
	if start >= len(s.questions) {
		return nil
	}
	end := start + PageSize
	if end > len(s.questions) {
		end = len(s.questions)
	}
	out := make([]Question, end-start)
	copy(out, s.questions[start:end])
	return out
}

// PageAnsweredCount counts complete answers on the current page.
func (s *Session) PageAnsweredCount() int {
	n := 0
	for _, q := range s.PageQuestions() {
		if IsComplete(q, s.answers[q.ID]) {
			n++
		}
	}
	return n
}

// PageComplete reports whether the current page is non-empty and fully answered.
func (s *Session) PageComplete() bool {
	qs := s.PageQuestions()
	return len(qs) > 0 && s.PageAnsweredCount() == len(qs)
}
