// Package file holds the filesystem-backed stores: the persisted score
// snapshot and the question-set files with their catalog.
package file

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"live-trivia-service/internal/domain"
)

// ScoreStore persists the ledger as a JSON snapshot:
// {"timestamp": <unix seconds>, "scores": {id: {"score": n, "name": s}}}.
// A snapshot older than the validity window is discarded entirely on load,
// never merged.
type ScoreStore struct {
	path   string
	window time.Duration
	logger *zap.Logger
	now    func() time.Time
}

func NewScoreStore(path string, window time.Duration, logger *zap.Logger) *ScoreStore {
	return &ScoreStore{path: path, window: window, logger: logger, now: time.Now}
}

type scoreRecord struct {
	Score int    `json:"score"`
	Name  string `json:"name"`
}

// Load reads the snapshot. A missing file yields an empty ledger; an expired
// file is deleted and yields an empty ledger; a parse failure is an error the
// caller is expected to log and ignore.
func (s *ScoreStore) Load() ([]domain.ScoreEntry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read scores: %w", err)
	}

	var snapshot struct {
		Timestamp float64         `json:"timestamp"`
		Scores    json.RawMessage `json:"scores"`
	}
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parse scores: %w", err)
	}

	savedAt := time.Unix(0, int64(snapshot.Timestamp*float64(time.Second)))
	age := s.now().Sub(savedAt)
	if age > s.window {
		s.logger.Info("saved scores expired, discarding",
			zap.Duration("age", age))
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("removing expired score file failed", zap.Error(err))
		}
		return nil, nil
	}

	entries, err := decodeOrderedScores(snapshot.Scores)
	if err != nil {
		return nil, fmt.Errorf("parse scores: %w", err)
	}
	return entries, nil
}

// Save writes the snapshot atomically: the bytes land in a temp file in the
// same directory which is then renamed over the target, so a reader never
// sees a half-written file.
func (s *ScoreStore) Save(entries []domain.ScoreEntry) error {
	payload, err := encodeSnapshot(float64(s.now().UnixNano())/float64(time.Second), entries)
	if err != nil {
		return fmt.Errorf("encode scores: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".scores-*")
	if err != nil {
		return fmt.Errorf("write scores: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write scores: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write scores: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write scores: %w", err)
	}
	return nil
}

// Clear deletes the snapshot if present.
func (s *ScoreStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove scores: %w", err)
	}
	return nil
}

// encodeSnapshot writes the scores object with keys in entry order.
// encoding/json would sort map keys alphabetically, which loses the insertion
// order the leaderboard's tie-breaking relies on across restarts.
func encodeSnapshot(timestamp float64, entries []domain.ScoreEntry) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf(`{"timestamp": %f, "scores": {`, timestamp))
	for i, entry := range entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.ParticipantID)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(scoreRecord{Score: entry.Score, Name: entry.DisplayName})
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(value)
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

// decodeOrderedScores walks the scores object token by token so the original
// key order survives the round trip.
func decodeOrderedScores(raw json.RawMessage) ([]domain.ScoreEntry, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("scores is not an object")
	}

	var entries []domain.ScoreEntry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token in scores object")
		}
		var rec scoreRecord
		if err := dec.Decode(&rec); err != nil {
			return nil, err
		}
		entries = append(entries, domain.ScoreEntry{
			ParticipantID: key,
			DisplayName:   rec.Name,
			Score:         rec.Score,
		})
	}
	return entries, nil
}
