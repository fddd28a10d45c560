package quiz

import (
	"math"
	"math/rand"
	"strings"
	"time"

	"live-trivia-service/internal/domain"
)

// Defaults carries the configured fallbacks applied when a question record
// leaves points or time limit unset.
type Defaults struct {
	Points          int
	TimeLimit       time.Duration
	MaxAnswerLength int
}

// Question is a single quiz question with a partially revealed answer.
// It is not safe for concurrent use on its own; Session serializes access.
type Question struct {
	Text      string
	Answer    string
	Points    int
	TimeLimit time.Duration

	revealed        map[int]struct{}
	maxAnswerLength int

	active      bool
	activatedAt time.Time
	now         func() time.Time
}

// NewQuestion builds a Question from a record, filling defaults and choosing
// revealed indices with rnd when the record does not supply them. Indices
// outside the answer are dropped so the revealed set always stays in bounds.
func NewQuestion(rec domain.QuestionRecord, def Defaults, rnd *rand.Rand) *Question {
	q := &Question{
		Text:            rec.Text,
		Answer:          rec.Answer,
		Points:          rec.Points,
		TimeLimit:       time.Duration(rec.TimeLimit) * time.Second,
		maxAnswerLength: def.MaxAnswerLength,
		now:             time.Now,
	}
	if q.Points == 0 {
		q.Points = def.Points
	}
	if q.TimeLimit == 0 {
		q.TimeLimit = def.TimeLimit
	}

	length := len([]rune(rec.Answer))
	q.revealed = make(map[int]struct{})
	if rec.RevealedIndices != nil {
		for _, idx := range rec.RevealedIndices {
			if idx >= 0 && idx < length {
				q.revealed[idx] = struct{}{}
			}
		}
	} else {
		for _, idx := range defaultRevealedIndices(length, rnd) {
			q.revealed[idx] = struct{}{}
		}
	}
	return q
}

// defaultRevealedIndices picks which answer positions are pre-disclosed:
// nothing for 1-2 characters, one letter for 3-4, otherwise about a quarter
// of the answer, at least one.
func defaultRevealedIndices(length int, rnd *rand.Rand) []int {
	if length <= 2 {
		return nil
	}
	if length <= 4 {
		return []int{rnd.Intn(length)}
	}
	n := int(math.Round(float64(length) * 0.25))
	if n < 1 {
		n = 1
	}
	return rnd.Perm(length)[:n]
}

// MaskedAnswer renders the answer with unrevealed letters replaced by
// underscores, spaced out for display legibility. Spaces are always shown.
func (q *Question) MaskedAnswer() string {
	runes := []rune(q.Answer)
	parts := make([]string, len(runes))
	for i, r := range runes {
		if _, ok := q.revealed[i]; ok || r == ' ' {
			parts[i] = string(r)
		} else {
			parts[i] = "_"
		}
	}
	return strings.Join(parts, " ")
}

// RevealedIndices returns a copy of the revealed position set.
func (q *Question) RevealedIndices() []int {
	out := make([]int, 0, len(q.revealed))
	for idx := range q.revealed {
		out = append(out, idx)
	}
	return out
}

// Activate marks the question live and starts its clock.
func (q *Question) Activate() {
	q.active = true
	q.activatedAt = q.now()
}

// Deactivate marks the question no longer live. Idempotent.
func (q *Question) Deactivate() {
	q.active = false
}

// Active reports whether the question is currently live.
func (q *Question) Active() bool {
	return q.active
}

// IsExpired reports whether the time limit has elapsed. Inactive questions
// never expire.
func (q *Question) IsExpired() bool {
	if !q.active {
		return false
	}
	return q.now().Sub(q.activatedAt) > q.TimeLimit
}

// Remaining returns the time left to answer, zero or less once expired.
func (q *Question) Remaining() time.Duration {
	if !q.active {
		return 0
	}
	return q.TimeLimit - q.now().Sub(q.activatedAt)
}

// CheckAnswer reports whether text matches the canonical answer, after
// dropping non-printable characters and truncating to the configured length.
func (q *Question) CheckAnswer(text string) bool {
	return Matches(Sanitize(text, q.maxAnswerLength), q.Answer)
}
