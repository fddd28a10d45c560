package quiz

import (
	"math/rand"
	"sort"
	"strings"
	"testing"
	"time"

	"live-trivia-service/internal/domain"
)

func testDefaults() Defaults {
	return Defaults{Points: 10, TimeLimit: 40 * time.Second, MaxAnswerLength: 100}
}

func TestNewQuestionDefaults(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	q := NewQuestion(domain.QuestionRecord{Text: "Capitale?", Answer: "Paris"}, testDefaults(), rnd)
	if q.Points != 10 {
		t.Fatalf("expected default points 10, got %d", q.Points)
	}
	if q.TimeLimit != 40*time.Second {
		t.Fatalf("expected default time limit 40s, got %v", q.TimeLimit)
	}

	q = NewQuestion(domain.QuestionRecord{Text: "q", Answer: "a", Points: 25, TimeLimit: 15}, testDefaults(), rnd)
	if q.Points != 25 || q.TimeLimit != 15*time.Second {
		t.Fatalf("expected supplied points and limit preserved, got %d %v", q.Points, q.TimeLimit)
	}
}

func TestRevealedCountByLength(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	cases := []struct {
		answer string
		want   int
	}{
		{"a", 0},
		{"ab", 0},
		{"abc", 1},
		{"abcd", 1},
		{"abcde", 1},   // round(5*0.25) = 1
		{"abcdef", 2},  // round(6*0.25) = 2
		{"abcdefgh", 2},
		{"abcdefghijkl", 3},
	}
	for _, c := range cases {
		q := NewQuestion(domain.QuestionRecord{Text: "q", Answer: c.answer}, testDefaults(), rnd)
		if got := len(q.RevealedIndices()); got != c.want {
			t.Fatalf("answer %q: expected %d revealed indices, got %d", c.answer, c.want, got)
		}
		for _, idx := range q.RevealedIndices() {
			if idx < 0 || idx >= len([]rune(c.answer)) {
				t.Fatalf("answer %q: index %d out of range", c.answer, idx)
			}
		}
	}
}

func TestSuppliedRevealedIndices(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	q := NewQuestion(domain.QuestionRecord{
		Text: "q", Answer: "Paris", RevealedIndices: []int{0, 4, 9, -1},
	}, testDefaults(), rnd)
	got := q.RevealedIndices()
	sort.Ints(got)
	if len(got) != 2 || got[0] != 0 || got[1] != 4 {
		t.Fatalf("expected out-of-range indices dropped, got %v", got)
	}
}

func TestMaskedAnswer(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	q := NewQuestion(domain.QuestionRecord{
		Text: "q", Answer: "La Seine", RevealedIndices: []int{0, 3},
	}, testDefaults(), rnd)
	want := "L _   S _ _ _ _"
	if got := q.MaskedAnswer(); got != want {
		t.Fatalf("masked answer = %q, want %q", got, want)
	}
	if strings.Count(q.MaskedAnswer(), "_") != 5 {
		t.Fatalf("expected 5 hidden letters")
	}
}

func TestActivateExpire(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	q := NewQuestion(domain.QuestionRecord{Text: "q", Answer: "Paris", TimeLimit: 30}, testDefaults(), rnd)

	current := time.Unix(1700000000, 0)
	q.now = func() time.Time { return current }

	if q.Active() || q.IsExpired() {
		t.Fatalf("fresh question should be inactive and not expired")
	}
	q.Activate()
	if !q.Active() {
		t.Fatalf("expected active after Activate")
	}
	current = current.Add(29 * time.Second)
	if q.IsExpired() {
		t.Fatalf("should not be expired before the limit")
	}
	if q.Remaining() != time.Second {
		t.Fatalf("expected 1s remaining, got %v", q.Remaining())
	}
	current = current.Add(2 * time.Second)
	if !q.IsExpired() {
		t.Fatalf("expected expired past the limit")
	}

	q.Deactivate()
	q.Deactivate()
	if q.Active() || q.IsExpired() {
		t.Fatalf("deactivated question should not report expired")
	}
}

func TestCheckAnswerSanitizes(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	q := NewQuestion(domain.QuestionRecord{Text: "q", Answer: "Paris"}, testDefaults(), rnd)
	if !q.CheckAnswer("paris\x00") {
		t.Fatalf("expected control characters not to break a correct answer")
	}
	if q.CheckAnswer("londres") {
		t.Fatalf("expected wrong answer to fail")
	}
}
