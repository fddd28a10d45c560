package quiz

import (
	"math/rand"
	"testing"
	"time"

	"go.uber.org/zap"

	"live-trivia-service/internal/domain"
	"live-trivia-service/internal/score"
)

func newTestSession(t *testing.T, recs []domain.QuestionRecord, clock func() time.Time) *Session {
	t.Helper()
	ledger := score.NewLedger(nil, zap.NewNop())
	s, err := NewSession(
		domain.QuestionSet{Name: "test", Questions: recs},
		ledger,
		testDefaults(),
		zap.NewNop(),
		WithRand(rand.New(rand.NewSource(7))),
		WithClock(clock),
	)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func threeQuestions() []domain.QuestionRecord {
	return []domain.QuestionRecord{
		{Text: "Capitale de la France?", Answer: "Paris"},
		{Text: "Fleuve de Paris?", Answer: "La Seine"},
		{Text: "Premier homme sur la Lune?", Answer: "Neil Armstrong"},
	}
}

func TestNewSessionEmptySet(t *testing.T) {
	ledger := score.NewLedger(nil, zap.NewNop())
	_, err := NewSession(domain.QuestionSet{Name: "empty"}, ledger, testDefaults(), zap.NewNop())
	if err != domain.ErrNoQuestions {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}

func TestAdvanceWalksTheSet(t *testing.T) {
	s := newTestSession(t, threeQuestions(), time.Now)

	if s.Current() != nil || s.CurrentIndex() != -1 {
		t.Fatalf("fresh session should have no current question")
	}

	q := s.Advance()
	if q == nil || q.Answer != "Paris" || !q.Active() {
		t.Fatalf("expected first question active, got %+v", q)
	}
	if s.CurrentIndex() != 0 {
		t.Fatalf("expected index 0, got %d", s.CurrentIndex())
	}

	s.Advance()
	s.Advance()
	if s.Finished() {
		t.Fatalf("session not finished while a question is in play")
	}
	if q := s.Advance(); q != nil {
		t.Fatalf("expected nil past the last question, got %+v", q)
	}
	if !s.Finished() {
		t.Fatalf("expected finished after the set is exhausted")
	}
}

func TestSubmitAnswerScoring(t *testing.T) {
	s := newTestSession(t, threeQuestions(), time.Now)
	s.Advance()

	res := s.SubmitAnswer("u1", "Alice", "paris")
	if !res.Correct || res.Awarded != 10 {
		t.Fatalf("expected correct for 10 points, got %+v", res)
	}
	if !s.Solved() {
		t.Fatalf("expected question marked solved")
	}
	if got, _ := s.Ledger().Score("u1"); got != 10 {
		t.Fatalf("expected 10 on the ledger, got %d", got)
	}

	// Solved question ignores further submissions, even correct ones.
	if res := s.SubmitAnswer("u2", "Bob", "paris"); res.Correct {
		t.Fatalf("solved question must not award again")
	}
}

func TestSubmitAnswerOneAttemptPerParticipant(t *testing.T) {
	s := newTestSession(t, threeQuestions(), time.Now)
	s.Advance()

	if res := s.SubmitAnswer("u1", "Alice", "londres"); res.Correct {
		t.Fatalf("wrong answer should not score")
	}
	// The wrong answer consumed the attempt.
	if res := s.SubmitAnswer("u1", "Alice", "paris"); res.Correct {
		t.Fatalf("second attempt must be ignored")
	}
	if res := s.SubmitAnswer("u2", "Bob", "paris"); !res.Correct {
		t.Fatalf("another participant should still be able to answer")
	}
}

func TestSubmitAnswerFilteredDoesNotConsumeAttempt(t *testing.T) {
	s := newTestSession(t, threeQuestions(), time.Now)
	s.Advance()

	// Filler word: rejected by the pre-filter, attempt not consumed.
	if res := s.SubmitAnswer("u1", "Alice", "test"); res.Correct {
		t.Fatalf("filler word should not score")
	}
	if res := s.SubmitAnswer("u1", "Alice", "c'est paris non?"); res.Correct {
		t.Fatalf("disallowed character should not score")
	}
	if res := s.SubmitAnswer("u1", "Alice", "paris"); !res.Correct {
		t.Fatalf("attempt should survive filtered submissions, got %+v", res)
	}
}

func TestSubmitAnswerBeforeStartAndAfterEnd(t *testing.T) {
	s := newTestSession(t, threeQuestions(), time.Now)
	if res := s.SubmitAnswer("u1", "Alice", "paris"); res.Correct {
		t.Fatalf("no question in play yet")
	}
	for s.Advance() != nil {
	}
	if res := s.SubmitAnswer("u1", "Alice", "paris"); res.Correct {
		t.Fatalf("finished session must ignore submissions")
	}
}

func TestSubmitAnswerExpired(t *testing.T) {
	current := time.Unix(1700000000, 0)
	s := newTestSession(t, threeQuestions(), func() time.Time { return current })
	s.Advance()

	current = current.Add(41 * time.Second)
	if !s.Expired() {
		t.Fatalf("expected question expired after the 40s default")
	}
	if res := s.SubmitAnswer("u1", "Alice", "paris"); res.Correct {
		t.Fatalf("expired question must not award points")
	}
	if s.Ledger().Len() != 0 {
		t.Fatalf("ledger must stay empty after an expired submission")
	}
}

func TestAdvanceResetsAttempts(t *testing.T) {
	s := newTestSession(t, threeQuestions(), time.Now)
	s.Advance()
	s.SubmitAnswer("u1", "Alice", "paris")

	s.Advance()
	if s.Solved() {
		t.Fatalf("solved flag must reset on advance")
	}
	if res := s.SubmitAnswer("u1", "Alice", "la seine"); !res.Correct {
		t.Fatalf("attempts must reset on advance, got %+v", res)
	}
	if got, _ := s.Ledger().Score("u1"); got != 20 {
		t.Fatalf("expected 20 total, got %d", got)
	}
}

func TestJumpTo(t *testing.T) {
	s := newTestSession(t, threeQuestions(), time.Now)
	s.Advance()

	q, err := s.JumpTo(2)
	if err != nil {
		t.Fatalf("JumpTo: %v", err)
	}
	if q == nil || q.Answer != "Neil Armstrong" || !q.Active() {
		t.Fatalf("expected third question active, got %+v", q)
	}
	if s.CurrentIndex() != 2 {
		t.Fatalf("expected index 2, got %d", s.CurrentIndex())
	}
	if s.questions[0].Active() {
		t.Fatalf("previous question must be deactivated")
	}

	if _, err := s.JumpTo(3); err != domain.ErrQuestionOutOfRange {
		t.Fatalf("expected ErrQuestionOutOfRange, got %v", err)
	}
	if _, err := s.JumpTo(-1); err != domain.ErrQuestionOutOfRange {
		t.Fatalf("expected ErrQuestionOutOfRange for negative, got %v", err)
	}
}

func TestSubmitAnswerRecoversFromPanic(t *testing.T) {
	s := newTestSession(t, threeQuestions(), time.Now)
	s.Advance()
	s.ledger = nil // Credit on a nil ledger panics; the session must not.

	res := s.SubmitAnswer("u1", "Alice", "paris")
	if res.Correct || res.Awarded != 0 {
		t.Fatalf("expected zero result after recovery, got %+v", res)
	}

	// The session is still usable once the fault is gone.
	s.ledger = score.NewLedger(nil, zap.NewNop())
	s.Advance()
	if res := s.SubmitAnswer("u2", "Bob", "la seine"); !res.Correct {
		t.Fatalf("session must stay usable after a recovered panic, got %+v", res)
	}
}
