// Package variety tracks what a session has recently practiced and ranks
// candidates so the stream stays varied.
package variety

import (
	"sync"
	"time"

	"github.com/abhisek/conjuga/internal/curriculum"
	"github.com/abhisek/conjuga/internal/verb"
)

// Config holds the variety tuning constants.
type Config struct {
	VerbWindow  time.Duration
	ComboWindow time.Duration
	// TypeWindow is the number of recent picks used for the irregular ratio.
	TypeWindow int
	// CountDecayCap halves a counter map once its total exceeds the cap.
	CountDecayCap int

	IrregularTarget    float64
	IrregularTolerance float64
	// TopFraction is the share of ranked candidates the final draw uses.
	TopFraction float64
}

// DefaultConfig returns the production tuning.
func DefaultConfig() Config {
	return Config{
		VerbWindow:         2 * time.Minute,
		ComboWindow:        3 * time.Minute,
		TypeWindow:         40,
		CountDecayCap:      24,
		IrregularTarget:    0.65,
		IrregularTolerance: 0.08,
		TopFraction:        0.4,
	}
}

const (
	maxVerbPenalty     = 0.9
	familyStep         = 0.15
	maxFamilyPenalty   = 0.6
	personStep         = 0.05
	maxPersonPenalty   = 0.2
	comboPenalty       = 0.95
	semanticStep       = 0.1
	maxSemanticPenalty = 0.3
)

// Meta is what the engine knows about a form beyond its fields.
type Meta struct {
	Type     verb.Type
	Family   curriculum.Family
	Category string
}

// Penalties breaks the total penalty into its parts.
type Penalties struct {
	Verb     float64
	Family   float64
	Person   float64
	Combo    float64
	Semantic float64
	Total    float64
}

// Memory is the session-scoped recency state. It is safe for concurrent use
// but is meant to have a single owner.
type Memory struct {
	cfg Config

	mu         sync.Mutex
	verbs      map[string]time.Time
	combos     map[string]time.Time
	families   map[curriculum.Family]int
	persons    map[verb.Person]int
	categories map[string]int
	types      []verb.Type
	picks      int
}

// NewMemory creates an empty session memory.
func NewMemory(cfg Config) *Memory {
	m := &Memory{cfg: cfg}
	m.reset()
	return m
}

// Reset clears the memory for a new session.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
}

func (m *Memory) reset() {
	m.verbs = make(map[string]time.Time)
	m.combos = make(map[string]time.Time)
	m.families = make(map[curriculum.Family]int)
	m.persons = make(map[verb.Person]int)
	m.categories = make(map[string]int)
	m.types = m.types[:0]
	m.picks = 0
}

// Record notes a presented form.
func (m *Memory) Record(f verb.Form, meta Meta, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.verbs[f.Lemma] = now
	m.combos[f.Combo()] = now
	if meta.Family != "" {
		m.families[meta.Family]++
		decay(m.families, m.cfg.CountDecayCap)
	}
	m.persons[f.Person]++
	decay(m.persons, m.cfg.CountDecayCap)
	if meta.Category != "" {
		m.categories[meta.Category]++
		decay(m.categories, m.cfg.CountDecayCap)
	}

	if meta.Type != "" {
		m.types = append(m.types, meta.Type)
		if over := len(m.types) - m.cfg.TypeWindow; over > 0 {
			m.types = append(m.types[:0], m.types[over:]...)
		}
	}
	m.picks++

	m.prune(now)
}

// prune forgets timestamps that no longer carry a penalty.
func (m *Memory) prune(now time.Time) {
	for k, at := range m.verbs {
		if now.Sub(at) >= m.cfg.VerbWindow {
			delete(m.verbs, k)
		}
	}
	for k, at := range m.combos {
		if now.Sub(at) >= m.cfg.ComboWindow {
			delete(m.combos, k)
		}
	}
}

// decay halves every counter once the total passes the cap.
func decay[K comparable](counts map[K]int, limit int) {
	if limit <= 0 {
		return
	}
	total := 0
	for _, c := range counts {
		total += c
	}
	if total <= limit {
		return
	}
	for k, c := range counts {
		if c/2 == 0 {
			delete(counts, k)
			continue
		}
		counts[k] = c / 2
	}
}

// Penalty returns the clamped total penalty for a candidate.
func (m *Memory) Penalty(f verb.Form, meta Meta, now time.Time) float64 {
	return m.Breakdown(f, meta, now).Total
}

// Breakdown returns every penalty component for a candidate.
func (m *Memory) Breakdown(f verb.Form, meta Meta, now time.Time) Penalties {
	m.mu.Lock()
	defer m.mu.Unlock()

	var p Penalties
	if at, ok := m.verbs[f.Lemma]; ok {
		if age := now.Sub(at); age < m.cfg.VerbWindow {
			p.Verb = maxVerbPenalty * (1 - float64(max(age, 0))/float64(m.cfg.VerbWindow))
		}
	}
	if meta.Family != "" {
		p.Family = min(maxFamilyPenalty, familyStep*float64(m.families[meta.Family]))
	}
	p.Person = min(maxPersonPenalty, personStep*float64(m.persons[f.Person]))
	if at, ok := m.combos[f.Combo()]; ok && now.Sub(at) < m.cfg.ComboWindow {
		p.Combo = comboPenalty
	}
	if meta.Category != "" {
		p.Semantic = min(maxSemanticPenalty, semanticStep*float64(m.categories[meta.Category]))
	}
	p.Total = clamp01(p.Verb + p.Family + p.Person + p.Combo + p.Semantic)
	return p
}

// IrregularFraction returns the irregular share of the recent type window
// and whether any picks were recorded.
func (m *Memory) IrregularFraction() (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.types) == 0 {
		return 0, false
	}
	n := 0
	for _, t := range m.types {
		if t == verb.Irregular {
			n++
		}
	}
	return float64(n) / float64(len(m.types)), true
}

// PersonCount returns how often a person was recently used.
func (m *Memory) PersonCount(p verb.Person) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.persons[p]
}

// FamilyShare returns the family's share of recent family counts.
func (m *Memory) FamilyShare(f curriculum.Family) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, c := range m.families {
		total += c
	}
	if total == 0 {
		return 0
	}
	return float64(m.families[f]) / float64(total)
}

// Picks returns the number of recorded picks this session.
func (m *Memory) Picks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.picks
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
