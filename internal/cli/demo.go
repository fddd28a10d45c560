package cli

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"live-trivia-service/internal/config"
	infrafile "live-trivia-service/internal/infra/file"
	"live-trivia-service/internal/quiz"
	"live-trivia-service/internal/score"
)

// NewDemoCmd plays one questionnaire with simulated participants, no live
// stream required. Handy for checking questionnaires and pacing before going
// on air.
func NewDemoCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Simulate a quiz round with fake participants",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			defer logger.Sync()
			return runDemo(cmd.Context(), cfg, logger)
		},
	}
}

type demoUser struct {
	id   string
	name string
}

func runDemo(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	store := infrafile.NewScoreStore(cfg.Scores.File, cfg.ScoreExpiration(), logger)
	ledger := score.NewLedger(store, logger)

	catalog := infrafile.NewCatalog(cfg.Questionnaires.Dir, logger)
	path, theme, err := catalog.Next()
	if err != nil {
		return err
	}
	set, err := infrafile.NewSetLoader(cfg.MaxFileSizeBytes()).LoadSet(ctx, path)
	if err != nil {
		return err
	}

	session, err := quiz.NewSession(set, ledger, defaults(cfg), logger)
	if err != nil {
		return err
	}
	logger.Info("demo starting", zap.String("theme", theme), zap.Int("questions", session.Len()))

	users := make([]demoUser, 0, 5)
	for _, name := range []string{"Sophie", "Thomas", "Julie", "Lucas", "Emma"} {
		users = append(users, demoUser{id: uuid.NewString(), name: name})
	}
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	for q := session.Advance(); q != nil; q = session.Advance() {
		logger.Info("question",
			zap.Int("number", session.CurrentIndex()+1),
			zap.String("text", q.Text),
			zap.String("masked", q.MaskedAnswer()))

		if err := sleepCtx(ctx, time.Duration(1+rnd.Intn(3))*time.Second); err != nil {
			return err
		}

		if rnd.Float64() > 0.5 {
			user := users[rnd.Intn(len(users))]
			result := session.SubmitAnswer(user.id, user.name, q.Answer)
			if result.Correct {
				logger.Info("simulated correct answer",
					zap.String("user", user.name), zap.Int("points", result.Awarded))
			}
		} else {
			for i := 0; i < 1+rnd.Intn(3); i++ {
				user := users[rnd.Intn(len(users))]
				session.SubmitAnswer(user.id, user.name, q.Answer+"xx")
				logger.Info("simulated wrong answer", zap.String("user", user.name))
			}
			logger.Info("time is up", zap.String("answer", q.Answer))
		}

		lb := ledger.Leaderboard(cfg.Quiz.LeaderboardSize)
		for i, entry := range lb.Entries {
			logger.Info(fmt.Sprintf("leaderboard #%d", i+1),
				zap.String("name", entry.DisplayName), zap.Int("score", entry.Score))
		}
		if err := sleepCtx(ctx, time.Second); err != nil {
			return err
		}
	}

	logger.Info("demo finished", zap.Int("participants", ledger.Len()))
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
