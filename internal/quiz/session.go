package quiz

import (
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"live-trivia-service/internal/domain"
	"live-trivia-service/internal/score"
)

// Session drives an ordered list of questions against the score ledger.
// All state transitions are serialized behind one mutex so a timer-driven
// expiry and a concurrent correct answer cannot both win; the loser observes
// an inactive or already-solved question and becomes a no-op.
type Session struct {
	mu           sync.Mutex
	questions    []*Question
	currentIndex int
	answered     map[string]struct{}
	solved       bool
	ledger       *score.Ledger
	logger       *zap.Logger
	clock        func() time.Time
}

// Option customizes session construction.
type Option func(*options)

type options struct {
	rnd   *rand.Rand
	clock func() time.Time
}

// WithRand supplies the randomness source used for reveal-index selection.
func WithRand(rnd *rand.Rand) Option {
	return func(o *options) { o.rnd = rnd }
}

// WithClock supplies the time source used for activation and expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

// NewSession builds a session over set. The question list is fixed for the
// session's lifetime. An empty set is a construction error: a quiz must not
// silently run with zero questions.
func NewSession(set domain.QuestionSet, ledger *score.Ledger, def Defaults, logger *zap.Logger, opts ...Option) (*Session, error) {
	if len(set.Questions) == 0 {
		return nil, domain.ErrNoQuestions
	}

	o := options{
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	questions := make([]*Question, 0, len(set.Questions))
	for _, rec := range set.Questions {
		q := NewQuestion(rec, def, o.rnd)
		q.now = o.clock
		questions = append(questions, q)
	}

	return &Session{
		questions:    questions,
		currentIndex: -1,
		answered:     make(map[string]struct{}),
		ledger:       ledger,
		logger:       logger,
		clock:        o.clock,
	}, nil
}

// Advance deactivates the current question, moves to the next one and
// activates it. When the set is exhausted it persists the ledger and returns
// nil: the session is finished.
func (s *Session) Advance() *Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advanceLocked()
}

func (s *Session) advanceLocked() *Question {
	if q := s.currentLocked(); q != nil {
		q.Deactivate()
	}
	s.currentIndex++
	s.answered = make(map[string]struct{})
	s.solved = false

	if s.currentIndex < len(s.questions) {
		q := s.questions[s.currentIndex]
		q.Activate()
		return q
	}
	s.ledger.Persist()
	return nil
}

// JumpTo repositions the session so the next question served is questionNumber
// (counting the way Advance counts), persists the ledger, and advances once.
func (s *Session) JumpTo(questionNumber int) (*Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if questionNumber < 0 || questionNumber >= len(s.questions) {
		return nil, domain.ErrQuestionOutOfRange
	}
	if q := s.currentLocked(); q != nil {
		q.Deactivate()
	}
	s.currentIndex = questionNumber - 1
	s.answered = make(map[string]struct{})
	s.solved = false
	s.ledger.Persist()
	return s.advanceLocked(), nil
}

// SubmitAnswer processes one audience guess. It is a no-op unless a question
// is active, unsolved, unexpired, the participant has not attempted it yet,
// and the text passes the pre-filter. A filtered submission does not consume
// the participant's attempt. Each participant gets exactly one scored attempt
// per question. Anything unexpected while scoring is logged and treated as a
// non-match; a single bad answer must never take the session down.
func (s *Session) SubmitAnswer(participantID, displayName, text string) (result domain.SubmissionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("answer processing failed",
				zap.Any("panic", r),
				zap.String("participant", participantID))
			result = domain.SubmissionResult{}
		}
	}()

	q := s.currentLocked()
	if q == nil || !q.Active() || s.solved {
		return domain.SubmissionResult{}
	}
	if _, attempted := s.answered[participantID]; attempted {
		return domain.SubmissionResult{}
	}
	if q.IsExpired() {
		return domain.SubmissionResult{}
	}
	if !ValidSubmission(text) {
		return domain.SubmissionResult{}
	}

	s.answered[participantID] = struct{}{}

	if !q.CheckAnswer(text) {
		return domain.SubmissionResult{}
	}

	s.solved = true
	s.ledger.Credit(participantID, displayName, q.Points)
	s.ledger.Persist()
	s.logger.Info("correct answer",
		zap.String("participant", displayName),
		zap.Int("points", q.Points),
		zap.String("answer", q.Answer))
	return domain.SubmissionResult{Correct: true, Awarded: q.Points}
}

// Current returns the question in play, or nil before the first Advance and
// after the set is exhausted.
func (s *Session) Current() *Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked()
}

func (s *Session) currentLocked() *Question {
	if s.currentIndex < 0 || s.currentIndex >= len(s.questions) {
		return nil
	}
	return s.questions[s.currentIndex]
}

// Solved reports whether the current question has been answered correctly.
func (s *Session) Solved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.solved
}

// Expired reports whether the current question's time limit has elapsed.
func (s *Session) Expired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.currentLocked()
	return q != nil && q.IsExpired()
}

// Finished reports whether every question has been served.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentIndex >= len(s.questions)
}

// CurrentIndex returns the zero-based index of the question in play, -1
// before the quiz starts.
func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentIndex
}

// Len returns the number of questions in the set.
func (s *Session) Len() int {
	return len(s.questions)
}

// Ledger exposes the session's score ledger.
func (s *Session) Ledger() *score.Ledger {
	return s.ledger
}
