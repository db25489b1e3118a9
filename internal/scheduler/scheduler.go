// Package scheduler picks the next practice item.
//
// A call runs the tiers in order (double pairing when enabled, due items,
// adaptive recommendation, variety ranking) and falls back through a
// cascade of relaxations. It always produces a result: when everything
// fails the result is a clearly marked sentinel item.
package scheduler

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/abhisek/conjuga/internal/curriculum"
	"github.com/abhisek/conjuga/internal/double"
	"github.com/abhisek/conjuga/internal/eligibility"
	"github.com/abhisek/conjuga/internal/logger"
	"github.com/abhisek/conjuga/internal/materialize"
	"github.com/abhisek/conjuga/internal/settings"
	"github.com/abhisek/conjuga/internal/variety"
	"github.com/abhisek/conjuga/internal/verb"
)

// Config groups the tuning of every component.
type Config struct {
	Filter  eligibility.Config
	Variety variety.Config
	Double  double.Config
	// ScanLimit caps the forms collected by a direct content scan.
	ScanLimit int
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Filter:    eligibility.DefaultConfig(),
		Variety:   variety.DefaultConfig(),
		Double:    double.DefaultConfig(),
		ScanLimit: 500,
	}
}

// Deps are the read-only structures and collaborators the scheduler uses.
// Only Graph is required.
type Deps struct {
	Graph    *curriculum.Graph
	Catalog  *verb.Catalog
	Content  ContentSource
	Due      DueSource
	Adaptive AdaptiveSource
	Mastery  MasterySource
	Logger   *logger.Logger
	// Rand seeds every random draw; nil uses a random seed.
	Rand *rand.Rand
	// Now is the clock; nil uses time.Now.
	Now func() time.Time
}

// Request is one selection call.
type Request struct {
	UserID   string
	Settings settings.Settings
	// Pool overrides the content source pool when set.
	Pool *verb.Pool
	// Previous is the result presented before this call, if any.
	Previous *Result
	// Now overrides the clock for due-item lookups.
	Now time.Time
}

// Scheduler owns the session state: memory, filter cache and the in-flight
// guard. Use one Scheduler per session.
type Scheduler struct {
	cfg      Config
	graph    *curriculum.Graph
	catalog  *verb.Catalog
	content  ContentSource
	due      DueSource
	adaptive AdaptiveSource
	mastery  MasterySource
	log      *logger.Logger
	now      func() time.Time

	filter       *eligibility.Filter
	memory       *variety.Memory
	engine       *variety.Engine
	pairer       *double.Pairer
	materializer *materialize.Materializer
	busy         *semaphore.Weighted
}

// New builds a scheduler.
func New(cfg Config, deps Deps) (*Scheduler, error) {
	if deps.Graph == nil {
		return nil, errors.New("scheduler: curriculum graph is required")
	}
	if cfg.ScanLimit <= 0 {
		cfg.ScanLimit = DefaultConfig().ScanLimit
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	rng := deps.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	log := logger.OrNop(deps.Logger)

	memory := variety.NewMemory(cfg.Variety)
	return &Scheduler{
		cfg:          cfg,
		graph:        deps.Graph,
		catalog:      deps.Catalog,
		content:      deps.Content,
		due:          deps.Due,
		adaptive:     deps.Adaptive,
		mastery:      deps.Mastery,
		log:          log,
		now:          now,
		filter:       eligibility.New(deps.Graph, deps.Catalog, cfg.Filter, log),
		memory:       memory,
		engine:       variety.NewEngine(cfg.Variety, memory, deps.Graph, deps.Catalog, rand.New(rand.NewPCG(rng.Uint64(), rng.Uint64())), now),
		pairer:       double.New(cfg.Double, deps.Graph, deps.Catalog, rand.New(rand.NewPCG(rng.Uint64(), rng.Uint64()))),
		materializer: materialize.New(deps.Catalog),
		busy:         semaphore.NewWeighted(1),
	}, nil
}

// Filter exposes the eligibility filter for cache persistence.
func (s *Scheduler) Filter() *eligibility.Filter {
	return s.filter
}

// Memory exposes the session memory for diagnostics.
func (s *Scheduler) Memory() *variety.Memory {
	return s.memory
}

// call carries per-request state through the tiers.
type call struct {
	req      Request
	settings settings.Settings
	now      time.Time
	log      *logger.Logger

	pool       *verb.Pool
	eligible   []verb.Form
	candidates []verb.Form
	previous   []verb.Form

	records []curriculum.MasteryRecord
	mastery *curriculum.MasteryIndex
	plan    *curriculum.Plan
}

func (c *call) prev() *verb.Form {
	if len(c.previous) == 0 {
		return nil
	}
	return &c.previous[0]
}

// Next selects the next item. The result is never nil. A call that overlaps
// one in flight gets a busy sentinel together with ErrBusy, and an invalid
// configuration a rejected sentinel together with the validation error.
// Every other outcome carries a nil error.
//
// Next does not record the result; call Commit once it is presented.
func (s *Scheduler) Next(ctx context.Context, req Request) (*Result, error) {
	if !s.busy.TryAcquire(1) {
		return s.busyResult(req.Settings), ErrBusy
	}
	defer s.busy.Release(1)

	if err := req.Settings.Validate(); err != nil {
		s.log.Warn("settings rejected", "user", req.UserID, "error", err)
		return s.rejected(req.Settings, err), err
	}

	c := &call{
		req:      req,
		settings: req.Settings.Normalized(),
		now:      req.Now,
		previous: req.Previous.Forms(),
	}
	if c.now.IsZero() {
		c.now = s.now()
	}
	c.log = s.log.With("user", req.UserID, "mode", c.settings.Mode(), "level", c.settings.Level)

	c.pool = s.loadPool(ctx, c)
	c.eligible = s.filter.Eligible(c.pool, c.settings)
	c.candidates = eligibility.ExcludePrevious(c.eligible, c.prev())
	s.loadMastery(ctx, c)

	if c.settings.Double {
		if res := s.tryDouble(c); res != nil {
			return res, nil
		}
	}

	if len(c.candidates) == 0 {
		c.log.Info("entering fallback cascade", "error", ErrNoEligibleForms)
		return s.fallback(ctx, c), nil
	}

	if res := s.tryDue(ctx, c); res != nil {
		return res, nil
	}
	if res := s.tryAdaptive(ctx, c); res != nil {
		return res, nil
	}
	if res := s.tryVariety(c); res != nil {
		return res, nil
	}
	return s.fallback(ctx, c), nil
}

// Commit records a presented result in the session memory. Results that
// were discarded by the caller must not be committed.
func (s *Scheduler) Commit(res *Result) {
	for _, f := range res.Forms() {
		s.engine.Record(f)
	}
}

// ResetSession clears the session memory and the filter cache.
func (s *Scheduler) ResetSession() {
	s.memory.Reset()
	s.filter.Reset()
}

func (s *Scheduler) loadPool(ctx context.Context, c *call) *verb.Pool {
	if c.req.Pool != nil {
		if c.req.Pool.Len() == 0 {
			c.log.Warn("request pool empty", "error", ErrDataUnavailable)
		}
		return c.req.Pool
	}
	if s.content == nil {
		c.log.Warn("no pool and no content source", "error", ErrDataUnavailable)
		return verb.NewPool(nil)
	}
	pool, err := s.content.Pool(ctx, c.settings.Region)
	if err != nil || pool == nil {
		c.log.Warn("content pool unavailable", "error", errors.Join(ErrDataUnavailable, err))
		return verb.NewPool(nil)
	}
	return pool
}

func (s *Scheduler) loadMastery(ctx context.Context, c *call) {
	if s.mastery != nil && ctx.Err() == nil {
		records, err := s.mastery.Mastery(ctx, c.req.UserID)
		if err != nil {
			c.log.Warn("mastery unavailable", "error", err)
		} else {
			c.records = records
		}
	}
	c.mastery = curriculum.NewMasteryIndex(c.records)
	c.plan = s.graph.BuildPlan(c.settings.Level, c.records)
}

// result materializes a selection.
func (s *Scheduler) result(c *call, chosen verb.Form, method Method, reason string) *Result {
	res := &Result{
		Chosen:     chosen,
		Method:     method,
		IsFallback: method.IsFallback(),
		Item:       s.materializer.Materialize(c.pool, chosen, c.settings),
		Reason:     reason,
	}
	c.log.Debug("selected", "method", method, "form", chosen.ID(), "reason", reason)
	return res
}

func (s *Scheduler) sentinel(c *call, reason string) *Result {
	c.log.Error("returning sentinel item", "error", ErrExhaustedFallbacks, "reason", reason)
	return &Result{
		Method:     MethodSentinel,
		IsFallback: true,
		IsSentinel: true,
		Item:       materialize.Sentinel(reason, c.settings),
		Reason:     reason,
	}
}

func (s *Scheduler) busyResult(st settings.Settings) *Result {
	return &Result{
		Method:     MethodBusy,
		IsSentinel: true,
		Item:       materialize.Sentinel(ErrBusy.Error(), st),
		Reason:     ErrBusy.Error(),
	}
}

func (s *Scheduler) rejected(st settings.Settings, err error) *Result {
	return &Result{
		Method:     MethodRejected,
		IsSentinel: true,
		Rejected:   true,
		Item:       materialize.Sentinel(err.Error(), st),
		Reason:     err.Error(),
	}
}
