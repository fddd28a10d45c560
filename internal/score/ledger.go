// Package score keeps the participant score ledger and its persistence.
package score

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"live-trivia-service/internal/domain"
)

// Store abstracts where the ledger is persisted (JSON file, Redis, ...).
// Load returns entries in the order they should be considered inserted.
type Store interface {
	Load() ([]domain.ScoreEntry, error)
	Save(entries []domain.ScoreEntry) error
	Clear() error
}

// Ledger is the durable participant → score mapping. Scores only grow within
// a process lifetime; display names are last-write-wins. A corrupt or expired
// backing store never prevents construction: the ledger starts empty instead.
type Ledger struct {
	mu      sync.Mutex
	entries map[string]*domain.ScoreEntry
	order   []string
	store   Store
	logger  *zap.Logger
	now     func() time.Time
}

// NewLedger builds a ledger preloaded from store. Load failures are logged
// and treated as an empty ledger.
func NewLedger(store Store, logger *zap.Logger) *Ledger {
	l := &Ledger{
		entries: make(map[string]*domain.ScoreEntry),
		store:   store,
		logger:  logger,
		now:     time.Now,
	}
	if store == nil {
		return l
	}
	loaded, err := store.Load()
	if err != nil {
		logger.Warn("loading saved scores failed, starting fresh", zap.Error(err))
		return l
	}
	for _, entry := range loaded {
		e := entry
		l.entries[e.ParticipantID] = &e
		l.order = append(l.order, e.ParticipantID)
	}
	if len(loaded) > 0 {
		logger.Info("scores restored", zap.Int("participants", len(loaded)))
	}
	return l
}

// Credit adds points to a participant, creating the entry on first sight and
// refreshing the display name.
func (l *Ledger) Credit(participantID, displayName string, points int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[participantID]
	if !ok {
		entry = &domain.ScoreEntry{ParticipantID: participantID}
		l.entries[participantID] = entry
		l.order = append(l.order, participantID)
	}
	entry.DisplayName = displayName
	entry.Score += points
}

// Leaderboard returns up to limit entries sorted by score descending.
// Ties keep insertion order.
func (l *Ledger) Leaderboard(limit int) domain.Leaderboard {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]domain.ScoreEntry, 0, len(l.order))
	for _, id := range l.order {
		entries = append(entries, *l.entries[id])
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return domain.Leaderboard{Entries: entries, UpdatedAt: l.now()}
}

// Score returns a participant's current total.
func (l *Ledger) Score(participantID string) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.entries[participantID]
	if !ok {
		return 0, false
	}
	return entry.Score, true
}

// Len returns the number of participants on the ledger.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Persist writes the current entries to the store. A failed write is logged;
// the in-memory state stays authoritative.
func (l *Ledger) Persist() {
	if l.store == nil {
		return
	}
	l.mu.Lock()
	entries := make([]domain.ScoreEntry, 0, len(l.order))
	for _, id := range l.order {
		entries = append(entries, *l.entries[id])
	}
	l.mu.Unlock()

	if err := l.store.Save(entries); err != nil {
		l.logger.Error("saving scores failed", zap.Error(err))
	}
}

// Reset clears all entries and removes any persisted snapshot.
func (l *Ledger) Reset() error {
	l.mu.Lock()
	l.entries = make(map[string]*domain.ScoreEntry)
	l.order = nil
	l.mu.Unlock()

	if l.store == nil {
		return nil
	}
	return l.store.Clear()
}
