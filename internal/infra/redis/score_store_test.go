package redis

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"live-trivia-service/internal/domain"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestScoreStoreRoundTrip(t *testing.T) {
	_, client := newTestClient(t)
	store := NewScoreStore(client, 24*time.Hour)

	want := []domain.ScoreEntry{
		{ParticipantID: "u2", DisplayName: "Bob", Score: 15},
		{ParticipantID: "u1", DisplayName: "Alice", Score: 15},
		{ParticipantID: "u3", DisplayName: "Carol", Score: 5},
	}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestScoreStoreEmpty(t *testing.T) {
	_, client := newTestClient(t)
	store := NewScoreStore(client, 24*time.Hour)

	got, err := store.Load()
	if err != nil || got != nil {
		t.Fatalf("empty store should load empty, got %v, %v", got, err)
	}
}

func TestScoreStoreExpiry(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewScoreStore(client, 24*time.Hour)

	if err := store.Save([]domain.ScoreEntry{{ParticipantID: "u1", DisplayName: "Alice", Score: 10}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if ttl := mr.TTL(scoresKey); ttl != 24*time.Hour {
		t.Fatalf("expected 24h TTL on the hash, got %v", ttl)
	}
	if ttl := mr.TTL(orderKey); ttl != 24*time.Hour {
		t.Fatalf("expected 24h TTL on the order list, got %v", ttl)
	}

	mr.FastForward(25 * time.Hour)
	got, err := store.Load()
	if err != nil || got != nil {
		t.Fatalf("expired keys should load empty, got %v, %v", got, err)
	}
}

func TestScoreStoreSaveReplaces(t *testing.T) {
	_, client := newTestClient(t)
	store := NewScoreStore(client, 0)

	if err := store.Save([]domain.ScoreEntry{
		{ParticipantID: "u1", DisplayName: "Alice", Score: 10},
		{ParticipantID: "u2", DisplayName: "Bob", Score: 5},
	}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save([]domain.ScoreEntry{{ParticipantID: "u2", DisplayName: "Bob", Score: 5}}); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 1 || got[0].ParticipantID != "u2" {
		t.Fatalf("save must replace the snapshot, got %+v", got)
	}
}

func TestScoreStoreClear(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewScoreStore(client, 24*time.Hour)

	if err := store.Save([]domain.ScoreEntry{{ParticipantID: "u1", Score: 1}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if mr.Exists(scoresKey) || mr.Exists(orderKey) {
		t.Fatalf("expected keys removed")
	}
}
