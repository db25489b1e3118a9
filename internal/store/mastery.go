package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type masteryRepo struct {
	db *sql.DB
}

func (r *masteryRepo) Get(ctx context.Context, userID, mood, tense, lemma string) (*MasteryRow, error) {
	row := MasteryRow{UserID: userID, Mood: mood, Tense: tense, Lemma: lemma}
	var updated int64
	err := r.db.QueryRowContext(ctx,
		`SELECT score, attempts, updated_at FROM mastery
		 WHERE user_id = ? AND mood = ? AND tense = ? AND lemma = ?`,
		userID, mood, tense, lemma,
	).Scan(&row.Score, &row.Attempts, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query mastery: %w", err)
	}
	row.UpdatedAt = fromMillis(updated)
	return &row, nil
}

func (r *masteryRepo) Upsert(ctx context.Context, row MasteryRow) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO mastery (user_id, mood, tense, lemma, score, attempts, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, mood, tense, lemma) DO UPDATE SET
		   score = excluded.score,
		   attempts = excluded.attempts,
		   updated_at = excluded.updated_at`,
		row.UserID, row.Mood, row.Tense, row.Lemma, row.Score, row.Attempts, toMillis(row.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert mastery: %w", err)
	}
	return nil
}

func (r *masteryRepo) List(ctx context.Context, userID string) ([]MasteryRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT mood, tense, lemma, score, attempts, updated_at FROM mastery
		 WHERE user_id = ? ORDER BY mood, tense, lemma`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list mastery: %w", err)
	}
	defer rows.Close()

	var out []MasteryRow
	for rows.Next() {
		row := MasteryRow{UserID: userID}
		var updated int64
		if err := rows.Scan(&row.Mood, &row.Tense, &row.Lemma, &row.Score, &row.Attempts, &updated); err != nil {
			return nil, fmt.Errorf("scan mastery: %w", err)
		}
		row.UpdatedAt = fromMillis(updated)
		out = append(out, row)
	}
	return out, rows.Err()
}
