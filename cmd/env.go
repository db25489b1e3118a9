package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/abhisek/conjuga/internal/content"
	"github.com/abhisek/conjuga/internal/curriculum"
	"github.com/abhisek/conjuga/internal/eligibility"
	"github.com/abhisek/conjuga/internal/logger"
	"github.com/abhisek/conjuga/internal/mastery"
	"github.com/abhisek/conjuga/internal/resilient"
	"github.com/abhisek/conjuga/internal/scheduler"
	"github.com/abhisek/conjuga/internal/settings"
	"github.com/abhisek/conjuga/internal/spacedrep"
	"github.com/abhisek/conjuga/internal/store"
)

// snapshotsKept bounds stored eligibility snapshots across all pools.
const snapshotsKept = 8

// env is the wired application for one command invocation.
type env struct {
	log      *logger.Logger
	settings settings.Settings
	source   *content.Source
	graph    *curriculum.Graph
	store    *store.Store
	reviews  *spacedrep.Scheduler
	mastery  *mastery.Service
	sched    *scheduler.Scheduler
	rng      *rand.Rand
	now      func() time.Time
}

type envOptions struct {
	// dbPath overrides the configured database, e.g. ":memory:".
	dbPath string
	// now overrides the clock.
	now func() time.Time
	// noSnapshot skips loading and saving the eligibility cache.
	noSnapshot bool
}

func openEnv(ctx context.Context, opts envOptions) (*env, error) {
	log, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	st, err := cfg.Settings()
	if err != nil {
		return nil, err
	}
	source, err := loadSource(log)
	if err != nil {
		return nil, err
	}

	dbPath := opts.dbPath
	if dbPath == "" {
		if dbPath, err = resolveDBPath(); err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	now := opts.now
	if now == nil {
		now = time.Now
	}
	rng := newRand(cfg.Seed)
	graph := curriculum.Default()

	e := &env{
		log:      log,
		settings: st,
		source:   source,
		graph:    graph,
		store:    db,
		reviews:  spacedrep.NewScheduler(db.ReviewRepo(), log),
		mastery:  mastery.NewService(mastery.DefaultConfig(), db.MasteryRepo(), db.EventRepo(), log),
		rng:      rng,
		now:      now,
	}

	deps := scheduler.Deps{
		Graph:    graph,
		Catalog:  source.Catalog(),
		Content:  source,
		Due:      e.reviews,
		Adaptive: curriculum.NewRecommender(graph, rand.New(rand.NewPCG(rng.Uint64(), rng.Uint64()))),
		Mastery:  e.mastery,
		Logger:   log,
		Rand:     rand.New(rand.NewPCG(rng.Uint64(), rng.Uint64())),
		Now:      now,
	}
	if cfg.Resilience.Enabled {
		rc := resilient.DefaultConfig()
		rc.CallTimeout = cfg.Resilience.CallTimeout
		if cfg.Resilience.MaxAttempts > 0 {
			rc.MaxAttempts = cfg.Resilience.MaxAttempts
		}
		rc.Logger = log
		deps.Due = resilient.WrapDue(deps.Due, rc)
		deps.Adaptive = resilient.WrapAdaptive(deps.Adaptive, rc)
		deps.Mastery = resilient.WrapMastery(deps.Mastery, rc)
	}

	sched, err := scheduler.New(scheduler.DefaultConfig(), deps)
	if err != nil {
		db.Close()
		return nil, err
	}
	e.sched = sched

	if !opts.noSnapshot {
		e.loadSnapshot(ctx)
	}
	return e, nil
}

// Close persists the eligibility cache and releases the store.
func (e *env) Close(ctx context.Context, saveSnapshot bool) {
	if saveSnapshot {
		if err := e.saveSnapshot(ctx); err != nil {
			e.log.Warn("eligibility snapshot not saved", "error", err)
		}
	}
	if err := e.store.Close(); err != nil {
		e.log.Warn("close store", "error", err)
	}
	e.log.Sync()
}

func (e *env) loadSnapshot(ctx context.Context) {
	pool, err := e.source.Pool(ctx, e.settings.Region)
	if err != nil {
		return
	}
	row, err := e.store.SnapshotRepo().Latest(ctx, pool.Fingerprint())
	if err != nil || row == nil {
		return
	}
	snap, err := eligibility.UnmarshalSnapshot(row.Data)
	if err == nil {
		err = e.sched.Filter().Import(pool, snap)
	}
	if err != nil {
		e.log.Warn("eligibility snapshot dropped", "id", row.ID, "error", err)
		return
	}
	e.log.Debug("eligibility snapshot loaded", "id", row.ID, "entries", len(snap.Entries))
}

func (e *env) saveSnapshot(ctx context.Context) error {
	pool, err := e.source.Pool(ctx, e.settings.Region)
	if err != nil {
		return err
	}
	snap := e.sched.Filter().Export()
	if len(snap.Entries) == 0 {
		return nil
	}
	data, err := eligibility.MarshalSnapshot(snap)
	if err != nil {
		return err
	}
	repo := e.store.SnapshotRepo()
	if err := repo.Save(ctx, &store.CacheSnapshot{
		Pool:    pool.Fingerprint(),
		Version: snap.Version,
		Data:    data,
	}); err != nil {
		return err
	}
	return repo.Prune(ctx, snapshotsKept)
}

// loadSource reads the configured packs ahead of the embedded ones so
// user content shadows the sample pack.
func loadSource(log *logger.Logger) (*content.Source, error) {
	var packs []*content.Pack
	for _, path := range cfg.Packs {
		loaded, err := loadPackPath(path)
		if err != nil {
			return nil, err
		}
		packs = append(packs, loaded...)
	}
	embedded, err := content.Embedded()
	if err != nil {
		return nil, fmt.Errorf("embedded packs: %w", err)
	}
	packs = append(packs, embedded...)
	return content.NewSource(log, packs...)
}

func loadPackPath(path string) ([]*content.Pack, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", path, err)
	}
	if info.IsDir() {
		packs, err := content.LoadFS(os.DirFS(path))
		if err != nil {
			return nil, fmt.Errorf("packs in %s: %w", path, err)
		}
		if len(packs) == 0 {
			return nil, errors.New("no packs found in " + path)
		}
		return packs, nil
	}
	p, err := content.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return []*content.Pack{p}, nil
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
