package domain

import "errors"

var (
	// ErrQuestionNotFound indicates the question content could not be loaded.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrWidgetNotFound is returned when a learner acts on a widget that was never attached.
	ErrWidgetNotFound = errors.New("widget not attached")
	// ErrSolutionsDisabled is returned when the question does not allow revealing solutions.
	ErrSolutionsDisabled = errors.New("solutions are disabled for this question")
	// ErrRetryDisabled is returned when the question does not allow another attempt.
	ErrRetryDisabled = errors.New("retry is disabled for this question")
	// ErrNoAnswer is returned when solutions are requested before anything was selected.
	ErrNoAnswer = errors.New("answer before viewing solution")
	// ErrInvalidState indicates a saved answer state could not be decoded.
	ErrInvalidState = errors.New("invalid answer state")
)
