package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"
)

// sequenceCounter manages the global monotonic sequence number assigned to
// every event. The mutex serializes within the process; the RETURNING clause
// makes the increment atomic at the database level.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

// newSequenceCounter creates a counter and ensures the tracking table exists.
func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{db: db}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := sc.db.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *eventRepo) AppendAttempt(ctx context.Context, ev AttemptEvent) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	correct := 0
	if ev.Correct {
		correct = 1
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO attempt_events
		 (sequence, user_id, session_id, lemma, mood, tense, person, correct, latency_ms, method, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seqNum, ev.UserID, ev.SessionID, ev.Lemma, ev.Mood, ev.Tense, ev.Person,
		correct, ev.LatencyMs, ev.Method, toMillis(ev.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("save attempt event: %w", err)
	}
	return nil
}

func (r *eventRepo) Attempts(ctx context.Context, userID string, opts QueryOpts) ([]AttemptEvent, error) {
	var q strings.Builder
	q.WriteString(`SELECT sequence, session_id, lemma, mood, tense, person, correct, latency_ms, method, created_at
		FROM attempt_events WHERE user_id = ? AND sequence > ? ORDER BY sequence`)
	args := []any{userID, opts.After}
	if opts.Limit > 0 {
		q.WriteString(" LIMIT ?")
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query attempt events: %w", err)
	}
	defer rows.Close()

	var out []AttemptEvent
	for rows.Next() {
		ev := AttemptEvent{UserID: userID}
		var correct int
		var created int64
		if err := rows.Scan(&ev.Sequence, &ev.SessionID, &ev.Lemma, &ev.Mood, &ev.Tense, &ev.Person,
			&correct, &ev.LatencyMs, &ev.Method, &created); err != nil {
			return nil, fmt.Errorf("scan attempt event: %w", err)
		}
		ev.Correct = correct != 0
		ev.Timestamp = fromMillis(created)
		out = append(out, ev)
	}
	return out, rows.Err()
}
