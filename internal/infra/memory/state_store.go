package memory

import (
	"context"
	"sync"

	"media-choice-service/internal/domain"
)

// StateStore keeps saved answers in process memory.
type StateStore struct {
	mu     sync.RWMutex
	states map[string][]int
}

func NewStateStore() *StateStore {
	return &StateStore{states: make(map[string][]int)}
}

func stateKey(questionID, learnerID string) string {
	return questionID + "\x00" + learnerID
}

func (s *StateStore) SaveState(_ context.Context, questionID, learnerID string, state domain.State) error {
	answers := append([]int(nil), state.Answers...)
	s.mu.Lock()
	s.states[stateKey(questionID, learnerID)] = answers
	s.mu.Unlock()
	return nil
}

func (s *StateStore) LoadState(_ context.Context, questionID, learnerID string) (domain.State, bool, error) {
	s.mu.RLock()
	answers, ok := s.states[stateKey(questionID, learnerID)]
	s.mu.RUnlock()
	if !ok {
		return domain.State{}, false, nil
	}
	return domain.State{Answers: append([]int{}, answers...)}, true, nil
}

func (s *StateStore) DeleteState(_ context.Context, questionID, learnerID string) error {
	s.mu.Lock()
	delete(s.states, stateKey(questionID, learnerID))
	s.mu.Unlock()
	return nil
}
