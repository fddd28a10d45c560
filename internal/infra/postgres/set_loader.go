// Package postgres loads question sets from a jsonb column, for setups where
// questionnaires are curated centrally instead of shipped as files.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"live-trivia-service/internal/domain"
)

// SetLoader reads question sets from the question_sets table.
type SetLoader struct {
	pool *pgxpool.Pool
}

func NewSetLoader(pool *pgxpool.Pool) *SetLoader {
	return &SetLoader{pool: pool}
}

func (l *SetLoader) LoadSet(ctx context.Context, name string) (domain.QuestionSet, error) {
	var (
		theme string
		raw   []byte
	)
	err := l.pool.QueryRow(ctx,
		`SELECT theme, data FROM question_sets WHERE name=$1`, name).Scan(&theme, &raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.QuestionSet{}, fmt.Errorf("%s: %w", name, domain.ErrQuestionSetNotFound)
		}
		return domain.QuestionSet{}, fmt.Errorf("load question set: %w", err)
	}

	var questions []domain.QuestionRecord
	if err := json.Unmarshal(raw, &questions); err != nil {
		return domain.QuestionSet{}, fmt.Errorf("unmarshal question set: %w", err)
	}
	for i, rec := range questions {
		if rec.Text == "" || rec.Answer == "" {
			return domain.QuestionSet{}, fmt.Errorf("question %d invalid: missing text or answer", i+1)
		}
	}
	return domain.QuestionSet{Name: name, Theme: theme, Questions: questions}, nil
}

// ListSets returns the names of all stored question sets in name order.
func (l *SetLoader) ListSets(ctx context.Context) ([]string, error) {
	rows, err := l.pool.Query(ctx, `SELECT name FROM question_sets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list question sets: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list question sets: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
