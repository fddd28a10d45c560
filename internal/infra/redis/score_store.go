package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"live-trivia-service/internal/domain"
)

const (
	scoresKey = "quiz:scores"
	orderKey  = "quiz:scores:order"
)

// ScoreStore persists the ledger in Redis: a hash of participant records
// plus a list preserving insertion order. Both keys carry a TTL equal to the
// score validity window, so expiry is enforced by Redis itself and an expired
// snapshot simply loads as empty.
type ScoreStore struct {
	client *redis.Client
	window time.Duration
}

func NewScoreStore(client *redis.Client, window time.Duration) *ScoreStore {
	return &ScoreStore{client: client, window: window}
}

type scoreRecord struct {
	Score int    `json:"score"`
	Name  string `json:"name"`
}

func (s *ScoreStore) Load() ([]domain.ScoreEntry, error) {
	ctx := context.Background()

	ids, err := s.client.LRange(ctx, orderKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	records, err := s.client.HGetAll(ctx, scoresKey).Result()
	if err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}

	entries := make([]domain.ScoreEntry, 0, len(ids))
	for _, id := range ids {
		raw, ok := records[id]
		if !ok {
			continue
		}
		var rec scoreRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("load scores: %w", err)
		}
		entries = append(entries, domain.ScoreEntry{
			ParticipantID: id,
			DisplayName:   rec.Name,
			Score:         rec.Score,
		})
	}
	return entries, nil
}

func (s *ScoreStore) Save(entries []domain.ScoreEntry) error {
	ctx := context.Background()

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, scoresKey, orderKey)
	for _, entry := range entries {
		data, err := json.Marshal(scoreRecord{Score: entry.Score, Name: entry.DisplayName})
		if err != nil {
			return fmt.Errorf("save scores: %w", err)
		}
		pipe.HSet(ctx, scoresKey, entry.ParticipantID, data)
		pipe.RPush(ctx, orderKey, entry.ParticipantID)
	}
	if s.window > 0 {
		pipe.Expire(ctx, scoresKey, s.window)
		pipe.Expire(ctx, orderKey, s.window)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save scores: %w", err)
	}
	return nil
}

func (s *ScoreStore) Clear() error {
	if err := s.client.Del(context.Background(), scoresKey, orderKey).Err(); err != nil {
		return fmt.Errorf("clear scores: %w", err)
	}
	return nil
}
