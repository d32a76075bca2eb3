package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun/migrate"

	"media-choice-service/internal/config"
	"media-choice-service/internal/infra/memory"
	"media-choice-service/internal/infra/postgres"
	pgmigrations "media-choice-service/internal/infra/postgres/migrations"
	"media-choice-service/internal/logging"
)

// NewMigrateCmd applies database migrations and optionally seeds questions.
func NewMigrateCmd(configPath *string) *cobra.Command {
	var seedPath string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logger := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err := runMigrationsWithConfig(cmd.Context(), cfg, logger); err != nil {
				return err
			}
			if seedPath == "" {
				return nil
			}
			return seedQuestions(cmd.Context(), cfg, seedPath, logger)
		},
	}
	cmd.Flags().StringVar(&seedPath, "seed", "", "question file to upsert after migrating")
	return cmd
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	db := postgres.OpenBun(cfg.Postgres.URL)
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return err
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}
	if group.IsZero() {
		logger.Info("no new migrations")
		return nil
	}
	logger.Info("migrations applied", "group", group.String())
	return nil
}

func seedQuestions(ctx context.Context, cfg config.Config, path string, logger *slog.Logger) error {
	questions, err := memory.LoadQuestionFile(path)
	if err != nil {
		return err
	}

	db := postgres.OpenBun(cfg.Postgres.URL)
	defer db.Close()

	for _, q := range questions {
		if err := postgres.UpsertQuestion(ctx, db, q); err != nil {
			return err
		}
	}
	logger.Info("questions seeded", "file", path, "count", len(questions))
	return nil
}
