package app

import (
	"context"
	"log/slog"
	"time"

	"media-choice-service/internal/choice"
	"media-choice-service/internal/domain"
	"media-choice-service/internal/report"
)

// WidgetRepository abstracts where live widgets are kept (in-memory, Redis-marked, etc).
type WidgetRepository interface {
	GetOrCreate(widgetID string, build func() *Widget) *Widget
	Get(widgetID string) (*Widget, bool)
	Delete(widgetID string)
}

// QuestionRepository loads question content (from cache/backing store).
type QuestionRepository interface {
	GetQuestion(ctx context.Context, questionID string) (domain.Question, error)
}

// StateStore persists answer snapshots so a learner can resume.
type StateStore interface {
	SaveState(ctx context.Context, questionID, learnerID string, state domain.State) error
	LoadState(ctx context.Context, questionID, learnerID string) (domain.State, bool, error)
	DeleteState(ctx context.Context, questionID, learnerID string) error
}

// Reporter forwards statements to analytics consumers.
type Reporter interface {
	Publish(ctx context.Context, st report.Statement) error
}

// WidgetService wires host lifecycle calls to widgets, persistence and reporting.
type WidgetService struct {
	widgets   WidgetRepository
	questions QuestionRepository
	states    StateStore
	reporter  Reporter
	logger    *slog.Logger
	now       func() time.Time
}

func NewWidgetService(widgets WidgetRepository, questions QuestionRepository, states StateStore, reporter Reporter, logger *slog.Logger) *WidgetService {
	return &WidgetService{
		widgets:   widgets,
		questions: questions,
		states:    states,
		reporter:  reporter,
		logger:    logger,
		now:       time.Now,
	}
}

// Attach creates or reuses the learner's widget, resuming any saved answers.
func (s *WidgetService) Attach(ctx context.Context, questionID, learnerID string) (domain.WidgetView, error) {
	question, err := s.questions.GetQuestion(ctx, questionID)
	if err != nil {
		return domain.WidgetView{}, err
	}

	id := WidgetID(questionID, learnerID)
	if w, ok := s.widgets.Get(id); ok {
		return w.View(), nil
	}

	prior, found, err := s.states.LoadState(ctx, questionID, learnerID)
	if err != nil {
		// A broken snapshot must not block the learner; start blank.
		s.logger.WarnContext(ctx, "load saved state failed",
			"question_id", questionID, "learner_id", learnerID, "error", err)
		prior = domain.State{}
	}

	w := s.widgets.GetOrCreate(id, func() *Widget {
		return NewWidgetWithClock(question, learnerID, prior, s.now)
	})
	s.logger.InfoContext(ctx, "widget attached",
		"widget_id", id, "resumed", found, "answers", len(prior.Answers))
	return w.View(), nil
}

// Toggle applies one learner selection.
func (s *WidgetService) Toggle(ctx context.Context, questionID, learnerID string, index int) (domain.WidgetView, error) {
	w, err := s.widget(questionID, learnerID)
	if err != nil {
		return domain.WidgetView{}, err
	}

	view, interactions := w.toggle(index)
	if len(interactions) == 0 {
		return view, nil
	}
	s.persist(ctx, w)
	for range interactions {
		s.publish(ctx, report.Interacted(w.Question(), learnerID, s.now()))
	}
	return view, nil
}

// Check grades the attempt and reports it.
func (s *WidgetService) Check(ctx context.Context, questionID, learnerID string) (domain.WidgetView, report.Statement, error) {
	w, err := s.widget(questionID, learnerID)
	if err != nil {
		return domain.WidgetView{}, report.Statement{}, err
	}

	view, res := w.check()
	s.persist(ctx, w)
	st := report.Answered(w.Question(), learnerID, res, s.now())
	s.publish(ctx, st)
	s.logger.InfoContext(ctx, "attempt graded",
		"widget_id", w.ID(), "score", res.Score, "max_score", res.MaxScore, "passed", res.Passed)
	return view, st, nil
}

// ShowSolutions reveals the answer key on unselected options.
func (s *WidgetService) ShowSolutions(ctx context.Context, questionID, learnerID string) (domain.WidgetView, error) {
	w, err := s.widget(questionID, learnerID)
	if err != nil {
		return domain.WidgetView{}, err
	}
	if !w.Question().Behaviour.EnableSolutionsButton {
		return w.View(), domain.ErrSolutionsDisabled
	}
	return w.showSolutions()
}

func (s *WidgetService) HideSolutions(_ context.Context, questionID, learnerID string) (domain.WidgetView, error) {
	w, err := s.widget(questionID, learnerID)
	if err != nil {
		return domain.WidgetView{}, err
	}
	return w.hideSolutions(), nil
}

// Retry is the learner-facing reset, allowed only when the question enables it.
func (s *WidgetService) Retry(ctx context.Context, questionID, learnerID string) (domain.WidgetView, error) {
	w, err := s.widget(questionID, learnerID)
	if err != nil {
		return domain.WidgetView{}, err
	}
	if !w.Question().Behaviour.EnableRetry {
		return w.View(), domain.ErrRetryDisabled
	}
	return s.resetWidget(ctx, w), nil
}

// Reset is the host resetTask call and is always allowed.
func (s *WidgetService) Reset(ctx context.Context, questionID, learnerID string) (domain.WidgetView, error) {
	w, err := s.widget(questionID, learnerID)
	if err != nil {
		return domain.WidgetView{}, err
	}
	return s.resetWidget(ctx, w), nil
}

func (s *WidgetService) resetWidget(ctx context.Context, w *Widget) domain.WidgetView {
	view := w.reset()
	if err := s.states.DeleteState(ctx, w.Question().ID, w.LearnerID()); err != nil {
		s.logger.WarnContext(ctx, "delete saved state failed", "widget_id", w.ID(), "error", err)
	}
	return view
}

// Subscribe returns a channel of widget snapshots.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *WidgetService) Subscribe(_ context.Context, questionID, learnerID string) (<-chan domain.WidgetView, func(), error) {
	w, err := s.widget(questionID, learnerID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := w.subscribe()
	return ch, cancel, nil
}

// Detach saves the widget and drops it once nobody is watching.
func (s *WidgetService) Detach(ctx context.Context, questionID, learnerID string) {
	w, ok := s.widgets.Get(WidgetID(questionID, learnerID))
	if !ok {
		return
	}
	s.persist(ctx, w)
	if w.subscriberCount() == 0 {
		s.widgets.Delete(w.ID())
	}
}

// State returns the live answers, or the saved ones when the widget is not attached.
func (s *WidgetService) State(ctx context.Context, questionID, learnerID string) (domain.State, error) {
	if w, ok := s.widgets.Get(WidgetID(questionID, learnerID)); ok {
		return w.CurrentState(), nil
	}
	state, found, err := s.states.LoadState(ctx, questionID, learnerID)
	if err != nil {
		return domain.State{}, err
	}
	if !found {
		return domain.State{Answers: []int{}}, nil
	}
	return state, nil
}

// SaveState stores host-supplied answers and applies them to a live widget.
func (s *WidgetService) SaveState(ctx context.Context, questionID, learnerID string, state domain.State) error {
	if _, err := s.questions.GetQuestion(ctx, questionID); err != nil {
		return err
	}
	if w, ok := s.widgets.Get(WidgetID(questionID, learnerID)); ok {
		w.restore(state)
		// Persist what the engine kept, e.g. only the last index in single-answer mode.
		state = w.CurrentState()
	}
	return s.states.SaveState(ctx, questionID, learnerID, state)
}

// Report builds the answered statement for the widget's current selection.
func (s *WidgetService) Report(_ context.Context, questionID, learnerID string) (report.Statement, error) {
	w, err := s.widget(questionID, learnerID)
	if err != nil {
		return report.Statement{}, err
	}
	return report.Answered(w.Question(), learnerID, w.Result(), s.now()), nil
}

func (s *WidgetService) widget(questionID, learnerID string) (*Widget, error) {
	w, ok := s.widgets.Get(WidgetID(questionID, learnerID))
	if !ok {
		return nil, domain.ErrWidgetNotFound
	}
	return w, nil
}

func (s *WidgetService) persist(ctx context.Context, w *Widget) {
	if err := s.states.SaveState(ctx, w.Question().ID, w.LearnerID(), w.CurrentState()); err != nil {
		s.logger.WarnContext(ctx, "save state failed", "widget_id", w.ID(), "error", err)
	}
}

func (s *WidgetService) publish(ctx context.Context, st report.Statement) {
	if s.reporter == nil {
		return
	}
	if err := s.reporter.Publish(ctx, st); err != nil {
		s.logger.WarnContext(ctx, "publish statement failed",
			"statement_id", st.ID, "verb", st.Verb, "error", err)
	}
}

// Result exposes the grading outcome for hosts that poll instead of subscribing.
func (s *WidgetService) Result(_ context.Context, questionID, learnerID string) (choice.Result, error) {
	w, err := s.widget(questionID, learnerID)
	if err != nil {
		return choice.Result{}, err
	}
	return w.Result(), nil
}
