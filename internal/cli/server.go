package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"media-choice-service/internal/app"
	"media-choice-service/internal/config"
	"media-choice-service/internal/domain"
	"media-choice-service/internal/infra/memory"
	"media-choice-service/internal/infra/postgres"
	redisstore "media-choice-service/internal/infra/redis"
	"media-choice-service/internal/logging"
	"media-choice-service/internal/report"
	transport "media-choice-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the widget server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	loader, err := questionLoader(cfg, pool)
	if err != nil {
		return err
	}

	questionTTL := config.TTLDuration(cfg.Question.TTL, 10*time.Minute)
	var questions app.QuestionRepository
	var widgets app.WidgetRepository
	if redisClient != nil {
		questions = redisstore.NewQuestionRepository(redisClient, loader, questionTTL)
		widgets = redisstore.NewWidgetStore(redisClient, redisTTL)
	} else {
		questions = memory.NewQuestionRepository(loader, questionTTL)
		widgets = memory.NewWidgetStore()
	}

	var states app.StateStore
	switch {
	case cfg.Postgres.URL != "":
		db := postgres.OpenBun(cfg.Postgres.URL)
		defer db.Close()
		states = postgres.NewStateStore(db)
	case redisClient != nil:
		states = redisstore.NewStateStore(redisClient, redisTTL)
	default:
		states = memory.NewStateStore()
	}

	publisher, err := statementPublisher(ctx, cfg, logger)
	if err != nil {
		return err
	}
	reporter := report.NewPublisher(publisher, cfg.Reporting.Topic, logger)
	defer reporter.Close()

	service := app.NewWidgetService(widgets, questions, states, reporter, logger)
	router := transport.NewRouter(service, transport.RouterConfig{
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      logger,
	})

	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting media choice service", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// questionLoader picks the content source: a question file, then Postgres, then the built-in sample.
func questionLoader(cfg config.Config, pool *pgxpool.Pool) (memory.QuestionLoader, error) {
	switch {
	case cfg.Question.File != "":
		return memory.NewFileQuestionLoader(cfg.Question.File)
	case pool != nil:
		return postgres.NewQuestionLoader(pool), nil
	}
	return memory.NewStaticQuestionLoader(sampleQuestions()), nil
}

// statementPublisher uses Kafka when brokers are configured. Otherwise statements go
// through an in-process channel and are logged.
func statementPublisher(ctx context.Context, cfg config.Config, logger *slog.Logger) (message.Publisher, error) {
	if len(cfg.Reporting.Brokers) > 0 {
		return report.NewKafkaPublisher(cfg.Reporting.Brokers, logger)
	}
	pubSub := report.NewChannelPubSub(logger)
	topic := cfg.Reporting.Topic
	if topic == "" {
		topic = report.DefaultTopic
	}
	go func() {
		if err := report.Drain(ctx, pubSub, topic, logger.With("component", "statements")); err != nil {
			logger.Error("statement drain stopped", "error", err)
		}
	}()
	return pubSub, nil
}

// sampleQuestions serves a demo question when no content source is configured.
func sampleQuestions() map[string]domain.Question {
	return map[string]domain.Question{
		"sample-animals": {
			ID:     "sample-animals",
			Prompt: "Which of these animals can fly?",
			Options: []domain.AuthoredOption{
				{Correct: true, Media: domain.Image{Path: "media/owl.jpg", Alt: "Owl", Width: 640, Height: 480}},
				{Correct: false, Media: domain.Image{Path: "media/cat.jpg", Alt: "Cat", Width: 640, Height: 480}},
				{Correct: true, Media: domain.Video{Title: "Bat at dusk", Sources: []string{"media/bat.mp4"}}},
				{Correct: false, Media: domain.Audio{Title: "Cow", Sources: []string{"media/cow.mp3"}}},
			},
			Behaviour: domain.Behaviour{
				QuestionType:          domain.QuestionTypeAuto,
				EnableRetry:           true,
				EnableSolutionsButton: true,
			},
		},
	}
}
