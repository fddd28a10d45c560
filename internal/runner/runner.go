// Package runner drives the quiz against the live comment stream: it decides
// when to advance, narrates questions and leaderboards to the log, and
// rotates to the next themed questionnaire when one is exhausted.
package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"live-trivia-service/internal/domain"
	"live-trivia-service/internal/quiz"
	"live-trivia-service/internal/score"
)

// pollInterval is how often the loop checks for a solve or an expiry while a
// question is live.
const pollInterval = 100 * time.Millisecond

// SetRepository resolves question sets by name, usually through a cache.
type SetRepository interface {
	GetSet(ctx context.Context, name string) (domain.QuestionSet, error)
}

// NameSource yields the next question-set name and theme in rotation.
type NameSource interface {
	Next() (name string, theme string, err error)
}

// Config carries the runner's pacing and presentation settings.
type Config struct {
	StartDelay      time.Duration
	SolvedDelay     time.Duration
	QuestionDelay   time.Duration
	LeaderboardSize int
	// StartQuestion repositions the first set before play; negative means
	// start from the beginning.
	StartQuestion int
	Defaults      quiz.Defaults
}

// Runner owns the session lifecycle. One ledger survives across every set it
// plays.
type Runner struct {
	sets   SetRepository
	names  NameSource
	ledger *score.Ledger
	cfg    Config
	logger *zap.Logger

	mu        sync.RWMutex
	session   *quiz.Session
	startOnce sync.Once
	started   chan struct{}
}

func New(sets SetRepository, names NameSource, ledger *score.Ledger, cfg Config, logger *zap.Logger) *Runner {
	if cfg.StartQuestion <= 0 {
		cfg.StartQuestion = -1
	}
	return &Runner{
		sets:    sets,
		names:   names,
		ledger:  ledger,
		cfg:     cfg,
		logger:  logger,
		started: make(chan struct{}),
	}
}

// OnConnect releases the quiz loop. Reconnections after the first are only
// logged; the running quiz keeps its state.
func (r *Runner) OnConnect(streamer string) {
	r.logger.Info("connected to live stream", zap.String("streamer", streamer))
	r.startOnce.Do(func() { close(r.started) })
}

// OnComment feeds one audience message into the current session.
func (r *Runner) OnComment(c domain.Comment) {
	r.mu.RLock()
	session := r.session
	r.mu.RUnlock()
	if session == nil {
		return
	}
	result := session.SubmitAnswer(c.ParticipantID, c.DisplayName, c.Text)
	if result.Correct {
		r.logger.Info("question solved",
			zap.String("winner", c.DisplayName),
			zap.Int("points", result.Awarded))
	}
}

// OnDisconnect is informational; the relay client handles reconnection.
func (r *Runner) OnDisconnect() {
	r.logger.Warn("live stream disconnected")
}

// Run blocks until the stream connects, then plays question sets forever.
// Question-set loading failures abort the run: a quiz must not silently play
// an empty or broken set.
func (r *Runner) Run(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-r.started:
	}
	if err := sleepCtx(ctx, r.cfg.StartDelay); err != nil {
		return err
	}

	first := true
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		name, theme, err := r.names.Next()
		if err != nil {
			return fmt.Errorf("select questionnaire: %w", err)
		}
		set, err := r.sets.GetSet(ctx, name)
		if err != nil {
			return fmt.Errorf("load questionnaire %s: %w", name, err)
		}

		session, err := quiz.NewSession(set, r.ledger, r.cfg.Defaults, r.logger)
		if err != nil {
			return fmt.Errorf("start questionnaire %s: %w", name, err)
		}

		r.mu.Lock()
		r.session = session
		r.mu.Unlock()

		r.logger.Info("questionnaire starting",
			zap.String("theme", theme),
			zap.Int("questions", session.Len()))

		startAt := -1
		if first {
			startAt = r.cfg.StartQuestion
			first = false
		}
		if err := r.play(ctx, session, startAt); err != nil {
			return err
		}

		r.announceLeaderboard("final leaderboard")
		if err := sleepCtx(ctx, r.cfg.QuestionDelay); err != nil {
			return err
		}
	}
}

// play serves every question of one session.
func (r *Runner) play(ctx context.Context, session *quiz.Session, startAt int) error {
	var q *quiz.Question
	if startAt >= 0 {
		jumped, err := session.JumpTo(startAt)
		if err != nil {
			r.logger.Warn("start question out of range, starting from the top",
				zap.Int("question", startAt), zap.Error(err))
			jumped = session.Advance()
		}
		q = jumped
	} else {
		q = session.Advance()
	}

	for q != nil {
		r.logger.Info("question",
			zap.Int("number", session.CurrentIndex()+1),
			zap.Int("of", session.Len()),
			zap.String("text", q.Text),
			zap.String("masked", q.MaskedAnswer()),
			zap.Duration("timeLimit", q.TimeLimit))

		solved, err := r.waitForOutcome(ctx, session)
		if err != nil {
			return err
		}
		if solved {
			if err := sleepCtx(ctx, r.cfg.SolvedDelay); err != nil {
				return err
			}
		} else {
			r.logger.Info("time is up", zap.String("answer", q.Answer))
		}

		r.announceLeaderboard("leaderboard")
		if err := sleepCtx(ctx, r.cfg.QuestionDelay); err != nil {
			return err
		}
		q = session.Advance()
	}
	return nil
}

// waitForOutcome polls until the current question is solved or expires.
func (r *Runner) waitForOutcome(ctx context.Context, session *quiz.Session) (bool, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-ticker.C:
			if session.Solved() {
				return true, nil
			}
			if session.Expired() {
				return false, nil
			}
		}
	}
}

func (r *Runner) announceLeaderboard(title string) {
	lb := r.ledger.Leaderboard(r.cfg.LeaderboardSize)
	if len(lb.Entries) == 0 {
		r.logger.Info(title, zap.String("status", "no scores yet"))
		return
	}
	fields := make([]zap.Field, 0, len(lb.Entries))
	for i, entry := range lb.Entries {
		fields = append(fields, zap.String(
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%s: %d points", entry.DisplayName, entry.Score)))
	}
	r.logger.Info(title, fields...)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
