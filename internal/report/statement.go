// Package report builds the interaction statements a host forwards to analytics consumers.
package report

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"media-choice-service/internal/choice"
	"media-choice-service/internal/domain"
)

const (
	VerbInteracted = "interacted"
	VerbAnswered   = "answered"

	interactionChoice = "choice"
	defaultLanguage   = "en-US"
)

// Choice is one entry of the interaction definition.
type Choice struct {
	ID          string            `json:"id"`
	Description map[string]string `json:"description"`
}

// Definition describes the question to report consumers.
type Definition struct {
	InteractionType         string            `json:"interactionType"`
	Description             map[string]string `json:"description,omitempty"`
	Choices                 []Choice          `json:"choices"`
	CorrectResponsesPattern []string          `json:"correctResponsesPattern"`
}

// Result is the graded outcome carried by an answered statement.
type Result struct {
	Response   string `json:"response"`
	Score      int    `json:"score"`
	MaxScore   int    `json:"maxScore"`
	Success    bool   `json:"success"`
	Completion bool   `json:"completion"`
}

// Statement is one reporting event.
type Statement struct {
	ID         string     `json:"id"`
	Verb       string     `json:"verb"`
	QuestionID string     `json:"questionId"`
	LearnerID  string     `json:"learnerId"`
	Timestamp  time.Time  `json:"timestamp"`
	Definition Definition `json:"definition"`
	Result     *Result    `json:"result,omitempty"`
}

// NewDefinition derives the choice interaction definition from authored content.
func NewDefinition(q domain.Question) Definition {
	choices := make([]Choice, len(q.Options))
	correct := make([]int, 0, len(q.Options))
	for i, opt := range q.Options {
		desc := ""
		if opt.Media != nil {
			desc = opt.Media.Describe()
		}
		choices[i] = Choice{
			ID:          strconv.Itoa(i),
			Description: map[string]string{defaultLanguage: desc},
		}
		if opt.Correct {
			correct = append(correct, i)
		}
	}

	def := Definition{
		InteractionType:         interactionChoice,
		Choices:                 choices,
		CorrectResponsesPattern: []string{choice.FormatIndexes(correct)},
	}
	if q.Prompt != "" {
		def.Description = map[string]string{defaultLanguage: q.Prompt}
	}
	return def
}

// Interacted reports that the learner changed a selection.
func Interacted(q domain.Question, learnerID string, now time.Time) Statement {
	return Statement{
		ID:         uuid.New().String(),
		Verb:       VerbInteracted,
		QuestionID: q.ID,
		LearnerID:  learnerID,
		Timestamp:  now,
		Definition: NewDefinition(q),
	}
}

// Answered reports a graded attempt.
func Answered(q domain.Question, learnerID string, res choice.Result, now time.Time) Statement {
	return Statement{
		ID:         uuid.New().String(),
		Verb:       VerbAnswered,
		QuestionID: q.ID,
		LearnerID:  learnerID,
		Timestamp:  now,
		Definition: NewDefinition(q),
		Result: &Result{
			Response:   choice.FormatIndexes(res.Answers),
			Score:      res.Score,
			MaxScore:   res.MaxScore,
			Success:    res.Passed,
			Completion: true,
		},
	}
}
