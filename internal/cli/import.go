package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"live-trivia-service/internal/config"
	infrafile "live-trivia-service/internal/infra/file"
)

// NewImportCmd seeds the database with question-set files, validating them
// the same way the file loader does.
func NewImportCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>...",
		Short: "Import question-set files into Postgres",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logger, err := zap.NewProduction()
			if err != nil {
				return err
			}
			defer logger.Sync()
			return importSets(cmd.Context(), cfg, logger, args)
		},
	}
}

func importSets(ctx context.Context, cfg config.Config, logger *zap.Logger, paths []string) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
		return err
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	loader := infrafile.NewSetLoader(cfg.MaxFileSizeBytes())
	for _, path := range paths {
		set, err := loader.LoadSet(ctx, path)
		if err != nil {
			return err
		}
		data, err := json.Marshal(set.Questions)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		// The file base name without extension becomes the stored set name.
		name := set.Theme
		_, err = pool.Exec(ctx,
			`INSERT INTO question_sets (name, theme, data) VALUES ($1, $2, $3)
			 ON CONFLICT (name) DO UPDATE SET theme = EXCLUDED.theme, data = EXCLUDED.data`,
			name, set.Theme, data)
		if err != nil {
			return fmt.Errorf("store %s: %w", path, err)
		}
		logger.Info("question set imported",
			zap.String("name", name),
			zap.Int("questions", len(set.Questions)))
	}
	return nil
}
