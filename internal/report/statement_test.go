package report

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-choice-service/internal/choice"
	"media-choice-service/internal/domain"
)

func sampleQuestion() domain.Question {
	return domain.Question{
		ID:     "q1",
		Prompt: "Pick the mammals",
		Options: []domain.AuthoredOption{
			{Correct: true, Media: domain.Image{Path: "cat.png", Alt: "Cat"}},
			{Correct: false, Media: domain.Image{Path: "gecko.png"}},
			{Correct: false, Media: domain.Audio{Sources: []string{"parrot.mp3"}, Title: "Parrot"}},
			{Correct: true, Media: domain.Video{Sources: []string{"whale.mp4"}}},
		},
	}
}

func TestAnsweredStatementShape(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	st := Answered(sampleQuestion(), "learner-1", choice.Result{
		Score:    2,
		MaxScore: 2,
		Passed:   true,
		Answers:  []int{1, 3},
	}, now)

	require.NotEmpty(t, st.ID)
	assert.Equal(t, VerbAnswered, st.Verb)
	assert.Equal(t, "choice", st.Definition.InteractionType)
	assert.Equal(t, []string{"0[,]3"}, st.Definition.CorrectResponsesPattern)
	require.Len(t, st.Definition.Choices, 4)
	assert.Equal(t, "0", st.Definition.Choices[0].ID)
	assert.Equal(t, "Cat", st.Definition.Choices[0].Description["en-US"])
	assert.Equal(t, "gecko.png", st.Definition.Choices[1].Description["en-US"])
	assert.Equal(t, "Parrot", st.Definition.Choices[2].Description["en-US"])

	require.NotNil(t, st.Result)
	assert.Equal(t, "1[,]3", st.Result.Response)
	assert.Equal(t, 2, st.Result.Score)
	assert.Equal(t, 2, st.Result.MaxScore)
	assert.True(t, st.Result.Success)

	data, err := json.Marshal(st)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"response":"1[,]3"`)
	assert.Contains(t, string(data), `"interactionType":"choice"`)
}

func TestInteractedStatementHasNoResult(t *testing.T) {
	st := Interacted(sampleQuestion(), "learner-1", time.Now())
	assert.Equal(t, VerbInteracted, st.Verb)
	assert.Nil(t, st.Result)
}

func TestPublisherRoundTripOverChannel(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pubsub := NewChannelPubSub(logger)
	defer pubsub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := pubsub.Subscribe(ctx, DefaultTopic)
	require.NoError(t, err)

	pub := NewPublisher(pubsub, "", logger)
	st := Answered(sampleQuestion(), "learner-1", choice.Result{Score: 1, MaxScore: 2, Answers: []int{0}}, time.Now())
	require.NoError(t, pub.Publish(ctx, st))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, st.ID, msg.UUID)
		assert.Equal(t, VerbAnswered, msg.Metadata.Get("verb"))
		assert.Equal(t, "learner-1", msg.Metadata.Get("learner_id"))

		var got Statement
		require.NoError(t, json.Unmarshal(msg.Payload, &got))
		assert.Equal(t, "0", got.Result.Response)
	case <-ctx.Done():
		t.Fatal("timed out waiting for statement")
	}
}
