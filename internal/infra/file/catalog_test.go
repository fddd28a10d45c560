package file

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"live-trivia-service/internal/domain"
)

func TestCatalogRotation(t *testing.T) {
	dir := t.TempDir()
	writeQuestionFile(t, dir, "questionnaire_1.json", `[]`)
	writeQuestionFile(t, dir, "questionnaire_2.json", `[]`)
	index := []CatalogEntry{
		{ID: 1, Theme: "Culture générale", File: "questionnaire_1.json"},
		{ID: 2, Theme: "Géographie", File: "questionnaire_2.json"},
	}
	data, _ := json.Marshal(index)
	if err := os.WriteFile(filepath.Join(dir, "index.json"), data, 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}

	c := NewCatalog(dir, zap.NewNop())
	for i, want := range []string{"Culture générale", "Géographie", "Culture générale"} {
		path, theme, err := c.Next()
		if err != nil {
			t.Fatalf("Next %d: %v", i, err)
		}
		if theme != want {
			t.Fatalf("Next %d: theme = %q, want %q", i, theme, want)
		}
		if filepath.Dir(path) != dir {
			t.Fatalf("Next %d: path %q outside the catalog dir", i, path)
		}
	}
}

func TestCatalogCreatesDefaultIndex(t *testing.T) {
	dir := t.TempDir()
	writeQuestionFile(t, dir, "questionnaire_1.json", `[]`)
	writeQuestionFile(t, dir, "questionnaire_2.json", `[]`)

	c := NewCatalog(dir, zap.NewNop())
	path, _, err := c.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if filepath.Base(path) != "questionnaire_1.json" {
		t.Fatalf("expected rotation to start at the first file, got %q", path)
	}
	if _, err := os.Stat(filepath.Join(dir, "index.json")); err != nil {
		t.Fatalf("expected default index written: %v", err)
	}
}

func TestCatalogFallsBackWhenIndexedFileMissing(t *testing.T) {
	dir := t.TempDir()
	writeQuestionFile(t, dir, "questionnaire_2.json", `[]`)
	index := []CatalogEntry{{ID: 1, Theme: "Ghost", File: "questionnaire_1.json"}}
	data, _ := json.Marshal(index)
	if err := os.WriteFile(filepath.Join(dir, "index.json"), data, 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}

	c := NewCatalog(dir, zap.NewNop())
	path, theme, err := c.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if filepath.Base(path) != "questionnaire_2.json" || theme != "questionnaire_2" {
		t.Fatalf("expected fallback scan, got %q %q", path, theme)
	}
}

func TestCatalogEmptyDir(t *testing.T) {
	c := NewCatalog(t.TempDir(), zap.NewNop())
	if _, _, err := c.Next(); !errors.Is(err, domain.ErrNoQuestionnaires) {
		t.Fatalf("expected ErrNoQuestionnaires, got %v", err)
	}
}

func TestCatalogCorruptIndexRebuilt(t *testing.T) {
	dir := t.TempDir()
	writeQuestionFile(t, dir, "questionnaire_1.json", `[]`)
	if err := os.WriteFile(filepath.Join(dir, "index.json"), []byte("not json"), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}

	c := NewCatalog(dir, zap.NewNop())
	path, _, err := c.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if filepath.Base(path) != "questionnaire_1.json" {
		t.Fatalf("expected rebuilt index to serve the questionnaire, got %q", path)
	}
}
