package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"live-trivia-service/internal/config"
	infrafile "live-trivia-service/internal/infra/file"
	"live-trivia-service/internal/infra/memory"
	infrapg "live-trivia-service/internal/infra/postgres"
	infraredis "live-trivia-service/internal/infra/redis"
	"live-trivia-service/internal/quiz"
	"live-trivia-service/internal/runner"
	"live-trivia-service/internal/score"
	"live-trivia-service/internal/transport/ws"
)

// NewRunCmd builds the subcommand that runs the quiz against a live stream.
func NewRunCmd(configPath *string) *cobra.Command {
	var startQuestion int
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the quiz against the live comment stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuiz(cmd.Context(), *configPath, startQuestion)
		},
	}
	cmd.Flags().IntVar(&startQuestion, "start-question", 0,
		"resume the first questionnaire at this question")
	return cmd
}

func runQuiz(ctx context.Context, configPath string, startQuestion int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Stream.SourceURL == "" {
		return fmt.Errorf("stream.source_url not configured; use the demo command to run without a stream")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var redisClient *goredis.Client
	if cfg.Redis.Addr != "" {
		redisClient = goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	var store score.Store
	if redisClient != nil {
		store = infraredis.NewScoreStore(redisClient, cfg.ScoreExpiration())
	} else {
		store = infrafile.NewScoreStore(cfg.Scores.File, cfg.ScoreExpiration(), logger)
	}
	ledger := score.NewLedger(store, logger)

	var (
		loader memory.SetLoader
		names  runner.NameSource
	)
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		pgLoader := infrapg.NewSetLoader(pool)
		setNames, err := pgLoader.ListSets(ctx)
		if err != nil {
			return err
		}
		loader = pgLoader
		names = newRotation(setNames)
	} else {
		loader = infrafile.NewSetLoader(cfg.MaxFileSizeBytes())
		names = infrafile.NewCatalog(cfg.Questionnaires.Dir, logger)
	}

	var sets runner.SetRepository
	if redisClient != nil {
		sets = infraredis.NewSetRepository(redisClient, loader, cfg.CacheTTL())
	} else {
		sets = memory.NewSetRepository(loader, cfg.CacheTTL())
	}

	quizRunner := runner.New(sets, names, ledger, runner.Config{
		StartDelay:      cfg.StartDelay(),
		SolvedDelay:     cfg.SolvedDelay(),
		QuestionDelay:   cfg.QuestionDelay(),
		LeaderboardSize: cfg.Quiz.LeaderboardSize,
		StartQuestion:   startQuestion,
		Defaults:        defaults(cfg),
	}, logger)

	client := ws.NewClient(cfg.Stream.SourceURL, quizRunner, logger)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error { return client.Run(ctx) })
	group.Go(func() error { return quizRunner.Run(ctx) })
	group.Go(func() error {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(stop)
		select {
		case <-stop:
			logger.Info("shutting down")
			cancel()
			return nil
		case <-ctx.Done():
			return nil
		}
	})

	if err := group.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func defaults(cfg config.Config) quiz.Defaults {
	return quiz.Defaults{
		Points:          cfg.Quiz.DefaultPoints,
		TimeLimit:       time.Duration(cfg.Quiz.DefaultTimeLimit) * time.Second,
		MaxAnswerLength: cfg.Quiz.MaxAnswerLength,
	}
}

// rotation cycles through a fixed list of set names.
type rotation struct {
	names []string
	pos   int
}

func newRotation(names []string) *rotation {
	return &rotation{names: names, pos: -1}
}

func (r *rotation) Next() (string, string, error) {
	if len(r.names) == 0 {
		return "", "", fmt.Errorf("no question sets in database")
	}
	r.pos = (r.pos + 1) % len(r.names)
	return r.names[r.pos], r.names[r.pos], nil
}
