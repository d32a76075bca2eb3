package app

import (
	"sync"
	"time"

	"media-choice-service/internal/choice"
	"media-choice-service/internal/domain"
)

// Task is the capability surface a host runtime drives on a question widget.
type Task interface {
	Score() int
	MaxScore() int
	Passed() bool
	CurrentState() domain.State
	ResetTask()
}

var _ Task = (*Widget)(nil)

// WidgetID keys one learner's instance of a question.
func WidgetID(questionID, learnerID string) string {
	return questionID + ":" + learnerID
}

// Widget is one learner's live instance of a question. All engine access goes through mu.
type Widget struct {
	id        string
	question  domain.Question
	learnerID string
	now       func() time.Time

	mu          sync.Mutex
	engine      *choice.Engine
	pending     []int
	subscribers map[chan domain.WidgetView]struct{}
}

// NewWidget builds a widget and replays prior answers without emitting interactions.
func NewWidget(question domain.Question, learnerID string, prior domain.State) *Widget {
	return NewWidgetWithClock(question, learnerID, prior, time.Now)
}

// NewWidgetWithClock allows deterministic timestamps in tests.
func NewWidgetWithClock(question domain.Question, learnerID string, prior domain.State, now func() time.Time) *Widget {
	w := &Widget{
		id:          WidgetID(question.ID, learnerID),
		question:    question,
		learnerID:   learnerID,
		now:         now,
		subscribers: make(map[chan domain.WidgetView]struct{}),
	}
	w.engine = choice.New(question.CorrectFlags(), question.Behaviour, choice.WithInteracted(func(index int) {
		w.pending = append(w.pending, index)
	}))
	w.engine.RestoreState(prior.Answers)
	return w
}

func (w *Widget) ID() string                { return w.id }
func (w *Widget) Question() domain.Question { return w.question }
func (w *Widget) LearnerID() string         { return w.learnerID }

func (w *Widget) Score() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.engine.Score()
}

func (w *Widget) MaxScore() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.engine.MaxScore()
}

func (w *Widget) Passed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.engine.Passed()
}

func (w *Widget) CurrentState() domain.State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.engine.CurrentState()
}

func (w *Widget) ResetTask() {
	w.reset()
}

func (w *Widget) View() domain.WidgetView {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

// Result reports the current grading outcome without changing state.
func (w *Widget) Result() choice.Result {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.engine.Result()
}

// toggle returns the indexes the engine reported as interactions.
func (w *Widget) toggle(index int) (domain.WidgetView, []int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.engine.Toggle(index)
	interactions := w.pending
	w.pending = nil
	if len(interactions) == 0 {
		return w.snapshotLocked(), nil
	}
	return w.broadcastLocked(), interactions
}

func (w *Widget) check() (domain.WidgetView, choice.Result) {
	w.mu.Lock()
	defer w.mu.Unlock()
	res := w.engine.Check()
	return w.broadcastLocked(), res
}

func (w *Widget) showSolutions() (domain.WidgetView, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.engine.AnyAnswerSelected() && w.engine.NumCorrect() > 0 {
		return w.snapshotLocked(), domain.ErrNoAnswer
	}
	w.engine.ShowSolutions()
	return w.broadcastLocked(), nil
}

func (w *Widget) hideSolutions() domain.WidgetView {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.engine.HideSolutions()
	return w.broadcastLocked()
}

func (w *Widget) reset() domain.WidgetView {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.engine.Reset()
	w.pending = nil
	return w.broadcastLocked()
}

func (w *Widget) subscriberCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.subscribers)
}

func (w *Widget) subscribe() (<-chan domain.WidgetView, func()) {
	ch := make(chan domain.WidgetView, 8)

	w.mu.Lock()
	w.subscribers[ch] = struct{}{}
	initial := w.snapshotLocked()
	w.mu.Unlock()

	ch <- initial

	cancel := func() {
		w.mu.Lock()
		if _, ok := w.subscribers[ch]; ok {
			delete(w.subscribers, ch)
			close(ch)
		}
		w.mu.Unlock()
	}
	return ch, cancel
}

func (w *Widget) broadcastLocked() domain.WidgetView {
	view := w.snapshotLocked()
	for ch := range w.subscribers {
		select {
		case ch <- view:
		default:
			// Slow subscriber: replace its oldest queued view with the newest.
			select {
			case <-ch:
			default:
			}
			ch <- view
		}
	}
	return view
}

func (w *Widget) snapshotLocked() domain.WidgetView {
	opts := w.engine.Options()
	views := make([]domain.OptionView, len(opts))
	for i, o := range opts {
		views[i] = domain.OptionView{
			Index:    o.Index,
			Selected: o.Selected,
			Disabled: o.Disabled,
			Mark:     o.Mark.String(),
		}
	}

	view := domain.WidgetView{
		WidgetID:   w.id,
		QuestionID: w.question.ID,
		LearnerID:  w.learnerID,
		Mode:       w.engine.Mode().String(),
		Phase:      w.engine.Phase().String(),
		Options:    views,
		Answers:    w.engine.SelectedIndexes(),
		UpdatedAt:  w.now(),
	}
	if w.engine.Phase() != choice.Answering {
		res := w.engine.Result()
		view.Result = &domain.ScoreView{Score: res.Score, MaxScore: res.MaxScore, Passed: res.Passed}
	}
	return view
}

// restore replaces the selection with a saved state, as a resume would.
func (w *Widget) restore(state domain.State) domain.WidgetView {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.engine.Reset()
	w.engine.RestoreState(state.Answers)
	return w.broadcastLocked()
}
