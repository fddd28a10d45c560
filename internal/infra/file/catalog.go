package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"live-trivia-service/internal/domain"
)

// CatalogEntry describes one themed question set listed in index.json.
type CatalogEntry struct {
	ID    int    `json:"id"`
	Theme string `json:"theme"`
	File  string `json:"file"`
}

// Catalog rotates through the question sets of a questionnaires directory.
// The on-disk index is re-read on every rotation so sets can be added while
// the stream is live; when the index is missing or stale, the directory scan
// is the fallback.
type Catalog struct {
	dir    string
	logger *zap.Logger

	mu      sync.Mutex
	entries []CatalogEntry
	pos     int
}

func NewCatalog(dir string, logger *zap.Logger) *Catalog {
	return &Catalog{dir: dir, logger: logger, pos: -1}
}

func (c *Catalog) indexPath() string {
	return filepath.Join(c.dir, "index.json")
}

// Next returns the path and theme of the next questionnaire in rotation.
func (c *Catalog) Next() (string, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reloadIndex()

	if len(c.entries) > 0 {
		c.pos = (c.pos + 1) % len(c.entries)
		entry := c.entries[c.pos]
		path := filepath.Join(c.dir, entry.File)
		if _, err := os.Stat(path); err == nil {
			return path, entry.Theme, nil
		}
		c.logger.Warn("indexed questionnaire missing, scanning directory",
			zap.String("file", entry.File))
	}

	if path := c.scanFallback(); path != "" {
		return path, themeFromPath(path), nil
	}
	return "", "", domain.ErrNoQuestionnaires
}

// reloadIndex refreshes entries from index.json, creating a default index
// from the directory contents when none exists.
func (c *Catalog) reloadIndex() {
	data, err := os.ReadFile(c.indexPath())
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("reading questionnaire index failed", zap.Error(err))
		}
		c.createDefaultIndex()
		return
	}
	var entries []CatalogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		c.logger.Warn("questionnaire index corrupt, rebuilding", zap.Error(err))
		c.createDefaultIndex()
		return
	}
	c.entries = entries
}

// createDefaultIndex builds an index from questionnaire_*.json files found in
// the directory and writes it back for the next run.
func (c *Catalog) createDefaultIndex() {
	names, err := os.ReadDir(c.dir)
	if err != nil {
		c.entries = nil
		return
	}
	var entries []CatalogEntry
	for _, de := range names {
		name := de.Name()
		if !strings.HasPrefix(name, "questionnaire_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		entries = append(entries, CatalogEntry{
			ID:    len(entries) + 1,
			Theme: fmt.Sprintf("Questionnaire %d", len(entries)+1),
			File:  name,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].File < entries[j].File })
	for i := range entries {
		entries[i].ID = i + 1
	}
	c.entries = entries
	if len(entries) == 0 {
		return
	}

	data, err := json.MarshalIndent(entries, "", "    ")
	if err == nil {
		if err := os.WriteFile(c.indexPath(), data, 0o644); err != nil {
			c.logger.Warn("writing questionnaire index failed", zap.Error(err))
		}
	}
}

// scanFallback picks the first questionnaire*.json in the directory.
func (c *Catalog) scanFallback() string {
	names, err := os.ReadDir(c.dir)
	if err != nil {
		return ""
	}
	var candidates []string
	for _, de := range names {
		name := de.Name()
		if strings.HasPrefix(name, "questionnaire") && strings.HasSuffix(name, ".json") &&
			!strings.Contains(name, "index") {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	sort.Strings(candidates)
	return filepath.Join(c.dir, candidates[0])
}
