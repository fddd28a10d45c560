package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"live-trivia-service/internal/domain"
)

// SetLoader reads and validates question-set files. The whole file is
// rejected on the first invalid element so a quiz never starts on a
// partially loaded set.
type SetLoader struct {
	maxBytes int64
}

func NewSetLoader(maxBytes int64) *SetLoader {
	return &SetLoader{maxBytes: maxBytes}
}

// LoadSet loads the JSON array of questions at path (the set's name is the
// path). Validation errors name the offending element's 1-based position.
func (l *SetLoader) LoadSet(_ context.Context, path string) (domain.QuestionSet, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.QuestionSet{}, fmt.Errorf("%s: %w", path, domain.ErrQuestionSetNotFound)
		}
		return domain.QuestionSet{}, fmt.Errorf("stat question file: %w", err)
	}
	if l.maxBytes > 0 && info.Size() > l.maxBytes {
		return domain.QuestionSet{}, fmt.Errorf("%s is %d bytes, limit %d: %w",
			path, info.Size(), l.maxBytes, domain.ErrFileTooLarge)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.QuestionSet{}, fmt.Errorf("read question file: %w", err)
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return domain.QuestionSet{}, fmt.Errorf("question file %s must be a JSON array: %w", path, err)
	}

	questions := make([]domain.QuestionRecord, 0, len(elements))
	for i, element := range elements {
		rec, err := parseQuestion(element)
		if err != nil {
			return domain.QuestionSet{}, fmt.Errorf("question %d invalid: %w", i+1, err)
		}
		questions = append(questions, rec)
	}

	return domain.QuestionSet{
		Name:      path,
		Theme:     themeFromPath(path),
		Questions: questions,
	}, nil
}

func parseQuestion(raw json.RawMessage) (domain.QuestionRecord, error) {
	var rec domain.QuestionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return rec, err
	}
	if rec.Text == "" {
		return rec, fmt.Errorf("missing required field %q", "text")
	}
	if rec.Answer == "" {
		return rec, fmt.Errorf("missing required field %q", "answer")
	}
	if rec.Points < 0 {
		return rec, fmt.Errorf("points must not be negative")
	}
	if rec.TimeLimit < 0 {
		return rec, fmt.Errorf("time_limit must not be negative")
	}
	length := len([]rune(rec.Answer))
	for _, idx := range rec.RevealedIndices {
		if idx < 0 || idx >= length {
			return rec, fmt.Errorf("revealed index %d out of range for answer of length %d", idx, length)
		}
	}
	return rec, nil
}

func themeFromPath(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
