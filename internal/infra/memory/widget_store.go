package memory

import (
	"sync"

	"media-choice-service/internal/app"
)

// WidgetStore is an in-memory implementation of app.WidgetRepository.
type WidgetStore struct {
	mu      sync.RWMutex
	widgets map[string]*app.Widget
}

func NewWidgetStore() *WidgetStore {
	return &WidgetStore{
		widgets: make(map[string]*app.Widget),
	}
}

func (s *WidgetStore) GetOrCreate(widgetID string, build func() *app.Widget) *app.Widget {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.widgets[widgetID]; ok {
		return w
	}
	w := build()
	s.widgets[widgetID] = w
	return w
}

func (s *WidgetStore) Get(widgetID string) (*app.Widget, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.widgets[widgetID]
	return w, ok
}

func (s *WidgetStore) Delete(widgetID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.widgets, widgetID)
}

// Len reports how many widgets are live.
func (s *WidgetStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.widgets)
}
