package cli

import (
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"live-trivia-service/internal/config"
	infrafile "live-trivia-service/internal/infra/file"
	infraredis "live-trivia-service/internal/infra/redis"
	"live-trivia-service/internal/score"
)

// NewResetCmd clears the persisted leaderboard.
func NewResetCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset all scores and delete the persisted leaderboard",
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

			var store score.Store
			if cfg.Redis.Addr != "" {
				client := goredis.NewClient(&goredis.Options{
					Addr:     cfg.Redis.Addr,
					Password: cfg.Redis.Password,
					DB:       cfg.Redis.DB,
				})
				defer client.Close()
				store = infraredis.NewScoreStore(client, cfg.ScoreExpiration())
			} else {
				store = infrafile.NewScoreStore(cfg.Scores.File, cfg.ScoreExpiration(), logger)
			}

			if err := store.Clear(); err != nil {
				return err
			}
			logger.Info("scores reset")
			return nil
		},
	}
}
