package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"media-choice-service/internal/choice"
	"media-choice-service/internal/domain"
)

// StateStore keeps saved answers in one hash per question:
// HSET quiz:state:{questionID} {learnerID} "1[,]3"
type StateStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStateStore(client *redis.Client, ttl time.Duration) *StateStore {
	return &StateStore{client: client, ttl: ttl}
}

func (s *StateStore) SaveState(ctx context.Context, questionID, learnerID string, state domain.State) error {
	key := s.key(questionID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, learnerID, choice.FormatIndexes(state.Answers))
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func (s *StateStore) LoadState(ctx context.Context, questionID, learnerID string) (domain.State, bool, error) {
	raw, err := s.client.HGet(ctx, s.key(questionID), learnerID).Result()
	if errors.Is(err, redis.Nil) {
		return domain.State{}, false, nil
	}
	if err != nil {
		return domain.State{}, false, fmt.Errorf("load state: %w", err)
	}
	answers, err := choice.ParseIndexes(raw)
	if err != nil {
		return domain.State{}, false, err
	}
	return domain.State{Answers: answers}, true, nil
}

func (s *StateStore) DeleteState(ctx context.Context, questionID, learnerID string) error {
	if err := s.client.HDel(ctx, s.key(questionID), learnerID).Err(); err != nil {
		return fmt.Errorf("delete state: %w", err)
	}
	return nil
}

func (s *StateStore) key(questionID string) string {
	return "quiz:state:" + questionID
}
