package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type snapshotRepo struct {
	db *sql.DB
}

func (r *snapshotRepo) Save(ctx context.Context, snap *CacheSnapshot) error {
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO cache_snapshots (pool, version, data, created_at) VALUES (?, ?, ?, ?)`,
		snap.Pool, snap.Version, snap.Data, toMillis(snap.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	snap.ID = id
	return nil
}

func (r *snapshotRepo) Latest(ctx context.Context, pool string) (*CacheSnapshot, error) {
	snap := &CacheSnapshot{Pool: pool}
	var created int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, version, data, created_at FROM cache_snapshots
		 WHERE pool = ? ORDER BY id DESC LIMIT 1`,
		pool,
	).Scan(&snap.ID, &snap.Version, &snap.Data, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}
	snap.CreatedAt = fromMillis(created)
	return snap, nil
}

func (r *snapshotRepo) Prune(ctx context.Context, keep int) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM cache_snapshots WHERE id NOT IN (
			SELECT id FROM cache_snapshots ORDER BY id DESC LIMIT ?
		)`, keep)
	if err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}
