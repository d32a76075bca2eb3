// Package choice holds the selection and scoring engine of a media choice question.
package choice

import "media-choice-service/internal/domain"

// Mode is resolved once at construction.
type Mode int

const (
	SingleAnswer Mode = iota
	MultiAnswer
)

func (m Mode) String() string {
	if m == SingleAnswer {
		return domain.QuestionTypeSingle
	}
	return domain.QuestionTypeMultiple
}

// Phase tracks the reveal/reset state machine.
type Phase int

const (
	Answering Phase = iota
	Graded
	SolutionsShown
)

func (p Phase) String() string {
	switch p {
	case Graded:
		return "graded"
	case SolutionsShown:
		return "solutions"
	}
	return "answering"
}

// ResolveMode picks radio or checkbox semantics from the question type and the answer key.
func ResolveMode(questionType string, numCorrect int) Mode {
	switch questionType {
	case domain.QuestionTypeAuto, "":
		if numCorrect == 1 {
			return SingleAnswer
		}
		return MultiAnswer
	case domain.QuestionTypeSingle:
		return SingleAnswer
	}
	return MultiAnswer
}

// Result is the outcome of grading an attempt.
type Result struct {
	Score    int   `json:"score"`
	MaxScore int   `json:"maxScore"`
	Passed   bool  `json:"passed"`
	Answers  []int `json:"answers"`
}

// EngineOption configures optional engine callbacks.
type EngineOption func(*engineConfig)

type engineConfig struct {
	onInteracted func(index int)
}

// WithInteracted registers the callback fired once per toggle that changed the selection.
func WithInteracted(fn func(index int)) EngineOption {
	return func(c *engineConfig) {
		if fn != nil {
			c.onInteracted = fn
		}
	}
}

// Engine owns the options of one widget instance. It is not safe for concurrent use.
type Engine struct {
	options      []*Option
	mode         Mode
	grading      Grading
	numCorrect   int
	last         *Option
	phase        Phase
	onInteracted func(index int)
}

// New builds an engine from the answer key in authoring order.
func New(correct []bool, behaviour domain.Behaviour, opts ...EngineOption) *Engine {
	cfg := engineConfig{onInteracted: func(int) {}}
	for _, o := range opts {
		o(&cfg)
	}

	e := &Engine{
		options: make([]*Option, len(correct)),
		grading: Grading{
			SinglePoint:    behaviour.SinglePoint,
			PassPercentage: behaviour.Pass(),
		},
		onInteracted: cfg.onInteracted,
	}
	for i, c := range correct {
		e.options[i] = &Option{index: i, correct: c}
		if c {
			e.numCorrect++
		}
	}
	e.mode = ResolveMode(behaviour.Type(), e.numCorrect)
	return e
}

func (e *Engine) Mode() Mode       { return e.mode }
func (e *Engine) Phase() Phase     { return e.phase }
func (e *Engine) Grading() Grading { return e.grading }
func (e *Engine) Len() int         { return len(e.options) }
func (e *Engine) NumCorrect() int  { return e.numCorrect }

func (e *Engine) option(index int) *Option {
	if index < 0 || index >= len(e.options) {
		return nil
	}
	return e.options[index]
}

// Toggle applies a learner selection and reports whether anything changed.
// Disabled and out-of-range indexes are ignored.
func (e *Engine) Toggle(index int) bool {
	if !e.toggle(index) {
		return false
	}
	e.onInteracted(index)
	return true
}

func (e *Engine) toggle(index int) bool {
	opt := e.option(index)
	if opt == nil || opt.disabled {
		return false
	}
	if e.mode == MultiAnswer {
		return opt.setSelected(!opt.selected)
	}

	// Radio semantics: re-selecting the current choice does nothing.
	if opt.selected {
		return false
	}
	if e.last != nil {
		e.last.selected = false
	}
	opt.selected = true
	e.last = opt
	return true
}

func (e *Engine) tally() Tally {
	t := Tally{Mode: e.mode, NumCorrect: e.numCorrect}
	for _, opt := range e.options {
		if !opt.selected {
			continue
		}
		t.Selected++
		if opt.correct {
			t.SelectedCorrect++
		} else {
			t.SelectedWrong++
		}
	}
	if e.last != nil && e.last.selected {
		t.ExclusiveCorrect = e.last.correct
	}
	return t
}

func (e *Engine) Score() int {
	return Grade(e.tally(), e.grading)
}

func (e *Engine) MaxScore() int {
	return MaxScore(e.tally(), e.grading)
}

func (e *Engine) Passed() bool {
	t := e.tally()
	return Passed(Grade(t, e.grading), MaxScore(t, e.grading), e.grading)
}

func (e *Engine) AnyAnswerSelected() bool {
	for _, opt := range e.options {
		if opt.selected {
			return true
		}
	}
	return false
}

// SelectedIndexes lists the selected options in authoring order.
func (e *Engine) SelectedIndexes() []int {
	out := make([]int, 0, len(e.options))
	for _, opt := range e.options {
		if opt.selected {
			out = append(out, opt.index)
		}
	}
	return out
}

func (e *Engine) DisableAll() {
	for _, opt := range e.options {
		opt.disabled = true
	}
}

func (e *Engine) EnableAll() {
	for _, opt := range e.options {
		opt.disabled = false
	}
}

// Check grades the attempt: options are locked and selected ones marked.
// Repeated calls return the same result without further changes.
func (e *Engine) Check() Result {
	if e.phase == Answering {
		e.DisableAll()
		for _, opt := range e.options {
			switch {
			case opt.selected && opt.correct:
				opt.mark = MarkCorrect
			case opt.selected:
				opt.mark = MarkWrong
			}
		}
		e.phase = Graded
	}
	return e.Result()
}

// Result reports the current score without changing state.
func (e *Engine) Result() Result {
	t := e.tally()
	score, maxScore := Grade(t, e.grading), MaxScore(t, e.grading)
	return Result{
		Score:    score,
		MaxScore: maxScore,
		Passed:   Passed(score, maxScore, e.grading),
		Answers:  e.SelectedIndexes(),
	}
}

// ShowSolutions marks every unselected option that belongs to the answer key.
// An ungraded attempt is checked first.
func (e *Engine) ShowSolutions() {
	if e.phase == Answering {
		e.Check()
	}
	for _, opt := range e.options {
		if !opt.selected && opt.correct {
			opt.mark = MarkSolution
		}
	}
	e.phase = SolutionsShown
}

// HideSolutions drops every decoration; selection and locking stay as they are.
func (e *Engine) HideSolutions() {
	for _, opt := range e.options {
		opt.mark = Unmarked
	}
	if e.phase == SolutionsShown {
		e.phase = Graded
	}
}

// Reset returns the engine to a fresh, answerable state.
func (e *Engine) Reset() {
	for _, opt := range e.options {
		opt.selected = false
		opt.disabled = false
		opt.mark = Unmarked
	}
	e.last = nil
	e.phase = Answering
}

// Options returns a copy of every option's state.
func (e *Engine) Options() []OptionView {
	out := make([]OptionView, len(e.options))
	for i, opt := range e.options {
		out[i] = OptionView{
			Index:    opt.index,
			Selected: opt.selected,
			Disabled: opt.disabled,
			Mark:     opt.mark,
		}
	}
	return out
}
