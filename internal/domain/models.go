package domain

import "time"

// Question types accepted in Behaviour.QuestionType.
const (
	QuestionTypeAuto     = "auto"
	QuestionTypeSingle   = "single"
	QuestionTypeMultiple = "multiple"
)

// DefaultPassPercentage applies when the authored behaviour leaves passPercentage unset.
const DefaultPassPercentage = 100

// Behaviour is the grading and button configuration authored with a question.
type Behaviour struct {
	QuestionType          string   `json:"questionType"`
	SinglePoint           bool     `json:"singlePoint"`
	PassPercentage        *float64 `json:"passPercentage,omitempty"`
	EnableRetry           bool     `json:"enableRetry"`
	EnableSolutionsButton bool     `json:"enableSolutionsButton"`
}

// Pass returns the pass threshold clamped to [0, 100], falling back to DefaultPassPercentage.
func (b Behaviour) Pass() float64 {
	if b.PassPercentage == nil {
		return DefaultPassPercentage
	}
	p := *b.PassPercentage
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// Type returns the question type, treating an empty value as auto.
func (b Behaviour) Type() string {
	if b.QuestionType == "" {
		return QuestionTypeAuto
	}
	return b.QuestionType
}

// AuthoredOption is one selectable choice as written by the content author.
type AuthoredOption struct {
	Correct bool  `json:"correct"`
	Media   Media `json:"-"`
}

// Question is the authored content of a media choice quiz.
type Question struct {
	ID        string           `json:"id"`
	Prompt    string           `json:"question"`
	Options   []AuthoredOption `json:"options"`
	Behaviour Behaviour        `json:"behaviour"`
}

// CorrectFlags projects the answer key in authoring order.
func (q Question) CorrectFlags() []bool {
	flags := make([]bool, len(q.Options))
	for i, opt := range q.Options {
		flags[i] = opt.Correct
	}
	return flags
}

// State is the serializable answer snapshot used for save/resume.
type State struct {
	Answers []int `json:"answers"`
}

// OptionView is what a client may see of one option.
type OptionView struct {
	Index    int    `json:"index"`
	Selected bool   `json:"selected"`
	Disabled bool   `json:"disabled"`
	Mark     string `json:"mark,omitempty"`
}

// ScoreView is attached to a WidgetView once the attempt has been graded.
type ScoreView struct {
	Score    int  `json:"score"`
	MaxScore int  `json:"maxScore"`
	Passed   bool `json:"passed"`
}

// WidgetView is a snapshot of one learner's widget, pushed to subscribers after every change.
type WidgetView struct {
	WidgetID   string       `json:"widgetId"`
	QuestionID string       `json:"questionId"`
	LearnerID  string       `json:"learnerId"`
	Mode       string       `json:"mode"`
	Phase      string       `json:"phase"`
	Options    []OptionView `json:"options"`
	Answers    []int        `json:"answers"`
	Result     *ScoreView   `json:"result,omitempty"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}
