package redis

import (
	"context"
	"reflect"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"media-choice-service/internal/app"
	"media-choice-service/internal/domain"
	"media-choice-service/internal/infra/memory"
)

func TestQuestionRepositoryCachesInRedis(t *testing.T) {
	mr, client := startRedis(t)

	loader := &countingLoader{
		QuestionLoader: memory.NewStaticQuestionLoader(map[string]domain.Question{
			"q1": sampleQuestion(),
		}),
	}
	repo := NewQuestionRepository(client, loader, time.Minute)

	q, err := repo.GetQuestion(context.Background(), "q1")
	if err != nil {
		t.Fatalf("get question: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("quiz:question:q1") {
		t.Fatalf("expected question cached in redis")
	}

	// Second call should hit cache, loader not incremented.
	cached, err := repo.GetQuestion(context.Background(), "q1")
	if err != nil {
		t.Fatalf("get cached question: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if !reflect.DeepEqual(cached.CorrectFlags(), q.CorrectFlags()) {
		t.Fatalf("cached answer key differs: %v vs %v", cached.CorrectFlags(), q.CorrectFlags())
	}
	if _, ok := cached.Options[1].Media.(domain.Image); !ok {
		t.Fatalf("expected media variant to survive the cache, got %T", cached.Options[1].Media)
	}
}

func TestQuestionRepositoryReloadsCorruptEntry(t *testing.T) {
	mr, client := startRedis(t)
	if err := mr.Set("quiz:question:q1", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	loader := &countingLoader{
		QuestionLoader: memory.NewStaticQuestionLoader(map[string]domain.Question{"q1": sampleQuestion()}),
	}
	repo := NewQuestionRepository(client, loader, time.Minute)

	if _, err := repo.GetQuestion(context.Background(), "q1"); err != nil {
		t.Fatalf("get question: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader fallback, got %d calls", loader.calls)
	}
}

func TestStateStoreUsesIndexSeparator(t *testing.T) {
	mr, client := startRedis(t)
	store := NewStateStore(client, time.Hour)
	ctx := context.Background()

	if err := store.SaveState(ctx, "q1", "u1", domain.State{Answers: []int{1, 3}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := mr.HGet("quiz:state:q1", "u1"); got != "1[,]3" {
		t.Fatalf("expected wire format 1[,]3, got %q", got)
	}

	state, found, err := store.LoadState(ctx, "q1", "u1")
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if !reflect.DeepEqual(state.Answers, []int{1, 3}) {
		t.Fatalf("expected [1 3], got %v", state.Answers)
	}

	if err := store.DeleteState(ctx, "q1", "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found, _ := store.LoadState(ctx, "q1", "u1"); found {
		t.Fatalf("expected state removed")
	}
}

func TestStateStoreRejectsCorruptState(t *testing.T) {
	mr, client := startRedis(t)
	mr.HSet("quiz:state:q1", "u1", "one,two")
	store := NewStateStore(client, 0)

	if _, _, err := store.LoadState(context.Background(), "q1", "u1"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestWidgetStoreSetsAndClearsKeys(t *testing.T) {
	mr, client := startRedis(t)
	store := NewWidgetStore(client, time.Minute)

	_ = store.GetOrCreate("q1:u1", func() *app.Widget {
		return app.NewWidget(sampleQuestion(), "u1", domain.State{})
	})
	if !mr.Exists("quiz:widget:q1:u1") {
		t.Fatalf("expected redis key to be set")
	}

	store.Delete("q1:u1")
	if mr.Exists("quiz:widget:q1:u1") {
		t.Fatalf("expected redis key to be removed")
	}
}

type countingLoader struct {
	memory.QuestionLoader
	calls int
}

func (l *countingLoader) LoadQuestion(ctx context.Context, questionID string) (domain.Question, error) {
	l.calls++
	return l.QuestionLoader.LoadQuestion(ctx, questionID)
}

func sampleQuestion() domain.Question {
	return domain.Question{
		ID:     "q1",
		Prompt: "Which one is a cat?",
		Options: []domain.AuthoredOption{
			{Correct: false, Media: domain.Image{Path: "dog.png"}},
			{Correct: true, Media: domain.Image{Path: "cat.png"}},
		},
	}
}

func startRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}
