package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type reviewRepo struct {
	db *sql.DB
}

const reviewColumns = `mood, tense, person, stage, consecutive_hits, graduated, next_review, last_review`

func scanReview(sc interface{ Scan(...any) error }, userID string) (ReviewRow, error) {
	row := ReviewRow{UserID: userID}
	var graduated int
	var next, last int64
	err := sc.Scan(&row.Mood, &row.Tense, &row.Person, &row.Stage, &row.ConsecutiveHits, &graduated, &next, &last)
	if err != nil {
		return row, err
	}
	row.Graduated = graduated != 0
	row.NextReview = fromMillis(next)
	row.LastReview = fromMillis(last)
	return row, nil
}

func (r *reviewRepo) Get(ctx context.Context, userID, mood, tense, person string) (*ReviewRow, error) {
	row, err := scanReview(r.db.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM review_states
		 WHERE user_id = ? AND mood = ? AND tense = ? AND person = ?`,
		userID, mood, tense, person,
	), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query review state: %w", err)
	}
	return &row, nil
}

func (r *reviewRepo) Upsert(ctx context.Context, row ReviewRow) error {
	graduated := 0
	if row.Graduated {
		graduated = 1
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO review_states (user_id, `+reviewColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, mood, tense, person) DO UPDATE SET
		   stage = excluded.stage,
		   consecutive_hits = excluded.consecutive_hits,
		   graduated = excluded.graduated,
		   next_review = excluded.next_review,
		   last_review = excluded.last_review`,
		row.UserID, row.Mood, row.Tense, row.Person, row.Stage, row.ConsecutiveHits, graduated,
		toMillis(row.NextReview), toMillis(row.LastReview),
	)
	if err != nil {
		return fmt.Errorf("upsert review state: %w", err)
	}
	return nil
}

func (r *reviewRepo) List(ctx context.Context, userID string) ([]ReviewRow, error) {
	return r.query(ctx, userID,
		`SELECT `+reviewColumns+` FROM review_states WHERE user_id = ?
		 ORDER BY next_review, mood, tense, person`,
		userID)
}

func (r *reviewRepo) Due(ctx context.Context, userID string, now time.Time) ([]ReviewRow, error) {
	return r.query(ctx, userID,
		`SELECT `+reviewColumns+` FROM review_states WHERE user_id = ? AND next_review <= ?
		 ORDER BY next_review, mood, tense, person`,
		userID, toMillis(now))
}

func (r *reviewRepo) query(ctx context.Context, userID, q string, args ...any) ([]ReviewRow, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query review states: %w", err)
	}
	defer rows.Close()

	var out []ReviewRow
	for rows.Next() {
		row, err := scanReview(rows, userID)
		if err != nil {
			return nil, fmt.Errorf("scan review state: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
