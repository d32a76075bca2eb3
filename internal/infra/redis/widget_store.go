package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"media-choice-service/internal/app"
)

// WidgetStore is a Redis-aware implementation of app.WidgetRepository.
// Notes:
//   - Widgets stay in a local map so the in-process broadcast logic keeps working.
//   - Redis only marks which widgets are live on some instance; answers themselves
//     are persisted through the StateStore.
type WidgetStore struct {
	client  *redis.Client
	ttl     time.Duration
	mu      sync.RWMutex
	widgets map[string]*app.Widget
}

func NewWidgetStore(client *redis.Client, ttl time.Duration) *WidgetStore {
	return &WidgetStore{
		client:  client,
		ttl:     ttl,
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
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(widgetID), "1", s.ttl).Err()
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
	if _, ok := s.widgets[widgetID]; !ok {
		return
	}
	delete(s.widgets, widgetID)
	_ = s.client.Del(context.Background(), s.key(widgetID)).Err()
}

func (s *WidgetStore) key(widgetID string) string {
	return "quiz:widget:" + widgetID
}
