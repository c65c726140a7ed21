package quiz

// Status is render-only correctness feedback.
type Status string

const (
	StatusNone      Status = ""
	StatusCorrect   Status = "correct"
	StatusIncorrect Status = "incorrect"
)

func statusOf(ok bool) Status {
	if ok {
		return StatusCorrect
	}
	return StatusIncorrect
}

// OptionView is one selectable option of a choice question.
type OptionView struct {
	Text     string `json:"text"`
	Selected bool   `json:"selected"`
	Status   Status `json:"status,omitempty"`
}

// ItemView is one row of an ordering question, in the user's current order.
type ItemView struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// SlotView is one left-hand row of a matching question.
type SlotView struct {
	Left   string `json:"left"`
	Right  *int   `json:"right"`
	Status Status `json:"status,omitempty"`
}

// QuestionView is what the browser draws for one question. Only the fields of
// the question's kind are populated.
type QuestionView struct {
	ID       int    `json:"id"`
	Number   int    `json:"number"`
	Kind     Kind   `json:"kind"`
	Prompt   string `json:"prompt"`
	Editable bool   `json:"editable"`
	Complete bool   `json:"complete"`
	Status   Status `json:"status,omitempty"`

	Options []OptionView `json:"options,omitempty"`
	Locked  bool         `json:"locked,omitempty"`

	Text    string `json:"text,omitempty"`
	Checked bool   `json:"checked,omitempty"`
	// Expected is the first acceptable answer, revealed with feedback.
	Expected string `json:"expected,omitempty"`

	Items []ItemView `json:"items,omitempty"`

	Slots     []SlotView `json:"slots,omitempty"`
	Right     []string   `json:"right,omitempty"`
	Submitted bool       `json:"submitted,omitempty"`
}

// Render builds the view of q given its recorded answer (possibly nil).
// Feedback appears in review mode, or after a fill-blank check or matching submit.
func Render(q Question, a Answer, mode Mode) QuestionView {
	review := mode == ModeReview
	v := QuestionView{
		ID:       q.ID,
		Number:   q.ID,
		Kind:     q.Kind(),
		Prompt:   q.Prompt,
		Editable: !review,
		Complete: IsComplete(q, a),
	}
	switch p := q.Payload.(type) {
	case *Choice:
		renderChoice(&v, p, a, review)
	case *FillBlank:
		renderFillBlank(&v, q, p, a, review)
	case *Ordering:
		renderOrdering(&v, q, p, a, review)
	case *Matching:
		renderMatching(&v, q, p, a, review)
	}
	return v
}

func renderChoice(v *QuestionView, p *Choice, a Answer, review bool) {
	ans, answered := a.(ChoiceAnswer)
	v.Locked = answered
	if answered {
		v.Editable = false
	}
	v.Options = make([]OptionView, len(p.Options))
	for i, text := range p.Options {
		opt := OptionView{Text: text, Selected: answered && ans.Index == i}
		if review {
			switch {
			case i == p.CorrectOptionIndex:
				opt.Status = StatusCorrect
			case opt.Selected:
				opt.Status = StatusIncorrect
			}
		}
		v.Options[i] = opt
	}
	if review {
		v.Status = statusOf(answered && ans.Index == p.CorrectOptionIndex)
	}
}

func renderFillBlank(v *QuestionView, q Question, p *FillBlank, a Answer, review bool) {
	if ans, ok := a.(*FillBlankAnswer); ok {
		v.Text = ans.Text
		v.Checked = ans.Checked
	}
	if v.Checked {
		v.Editable = false
	}
	if review || v.Checked {
		v.Status = statusOf(IsCorrect(q, a))
		v.Expected = p.AcceptableAnswers[0]
	}
}

func renderOrdering(v *QuestionView, q Question, p *Ordering, a Answer, review bool) {
	order := identity(len(p.Items))
	if ans, ok := a.(*OrderingAnswer); ok && len(ans.Order) == len(p.Items) {
		order = ans.Order
	}
	v.Items = make([]ItemView, len(order))
	for i, idx := range order {
		v.Items[i] = ItemView{Index: idx, Text: p.Items[idx]}
	}
	if review {
		v.Status = statusOf(IsCorrect(q, a))
	}
}

func renderMatching(v *QuestionView, q Question, p *Matching, a Answer, review bool) {
	ans, _ := a.(*MatchingAnswer)
	if ans != nil {
		v.Submitted = ans.Submitted
	}
	feedback := review || v.Submitted
	v.Right = p.Right
	v.Slots = make([]SlotView, len(p.Left))
	for i, left := range p.Left {
		slot := SlotView{Left: left}
		if ans != nil && i < len(ans.Slots) && ans.Slots[i] != Unset {
			r := ans.Slots[i]
			slot.Right = &r
		}
		if feedback {
			slot.Status = statusOf(slot.Right != nil && *slot.Right == p.CorrectMapping[i])
		}
		v.Slots[i] = slot
	}
	if feedback {
		v.Status = statusOf(IsCorrect(q, a))
	}
}

// RenderPage renders the questions on the current page.
func (s *Session) RenderPage() []QuestionView {
	qs := s.PageQuestions()
	views := make([]QuestionView, len(qs))
	for i, q := range qs {
		views[i] = Render(q, s.answers[q.ID], s.mode)
	}
	return views
}

// Snapshot is a read-only copy of session state for transport.
type Snapshot struct {
	Questions    []Question     `json:"questions"`
	Answers      map[int]Answer `json:"answers"`
	Mode         Mode           `json:"mode"`
	Page         int            `json:"page"`
	PageCount    int            `json:"page_count"`
	PageSize     int            `json:"page_size"`
	PageAnswered int            `json:"page_answered"`
	PageComplete bool           `json:"page_complete"`
	AllComplete  bool           `json:"all_complete"`
	RetryAttempt int            `json:"retry_attempt"`
}

// Snapshot copies the current state; later mutations do not affect it.
func (s *Session) Snapshot() Snapshot {
	answers := make(map[int]Answer, len(s.answers))
	for id, a := range s.answers {
		answers[id] = cloneAnswer(a)
	}
	return Snapshot{
		Questions:    s.Questions(),
		Answers:      answers,
		Mode:         s.mode,
		Page:         s.page,
		PageCount:    s.PageCount(),
		PageSize:     PageSize,
		PageAnswered: s.PageAnsweredCount(),
		PageComplete: s.PageComplete(),
		AllComplete:  s.AllComplete(),
		RetryAttempt: s.retryAttempt,
	}
}
