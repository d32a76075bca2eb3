package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// DefaultTopic is used when the config leaves the reporting topic empty.
const DefaultTopic = "choice.statements"

// Publisher sends statements to a watermill topic.
type Publisher struct {
	publisher message.Publisher
	topic     string
	logger    *slog.Logger
}

func NewPublisher(publisher message.Publisher, topic string, logger *slog.Logger) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Publisher{publisher: publisher, topic: topic, logger: logger}
}

// Publish marshals the statement and publishes it with routing metadata.
func (p *Publisher) Publish(ctx context.Context, st Statement) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal statement: %w", err)
	}

	msg := message.NewMessage(st.ID, payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("verb", st.Verb)
	msg.Metadata.Set("question_id", st.QuestionID)
	msg.Metadata.Set("learner_id", st.LearnerID)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("publish statement: %w", err)
	}
	p.logger.DebugContext(ctx, "statement published",
		"statement_id", st.ID,
		"verb", st.Verb,
		"topic", p.topic)
	return nil
}

func (p *Publisher) Topic() string {
	return p.topic
}

func (p *Publisher) Close() error {
	return p.publisher.Close()
}

// NewChannelPubSub returns the in-process pub/sub used when no broker is configured.
func NewChannelPubSub(logger *slog.Logger) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, watermill.NewSlogLogger(logger))
}

// NewKafkaPublisher publishes statements to Kafka brokers.
func NewKafkaPublisher(brokers []string, logger *slog.Logger) (message.Publisher, error) {
	pub, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   brokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("create kafka publisher: %w", err)
	}
	return pub, nil
}

// Drain logs every statement arriving on topic until ctx is done.
func Drain(ctx context.Context, sub message.Subscriber, topic string, logger *slog.Logger) error {
	messages, err := sub.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	for msg := range messages {
		var st Statement
		if err := json.Unmarshal(msg.Payload, &st); err != nil {
			logger.Warn("dropping malformed statement", "message_id", msg.UUID, "error", err)
			msg.Ack()
			continue
		}
		attrs := []any{
			"statement_id", st.ID,
			"verb", st.Verb,
			"question_id", st.QuestionID,
			"learner_id", st.LearnerID,
		}
		if st.Result != nil {
			attrs = append(attrs,
				"response", st.Result.Response,
				"score", st.Result.Score,
				"max_score", st.Result.MaxScore,
				"success", st.Result.Success)
		}
		logger.Info("statement", attrs...)
		msg.Ack()
	}
	return nil
}
