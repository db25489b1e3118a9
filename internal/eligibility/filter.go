// Package eligibility reduces a form pool to the forms legal under a
// settings snapshot.
//
// Filtering runs four gates in order: level, dialect/person, per-tense verb
// type and practice mode. Results are cached per (pool, settings) so repeated
// calls with unchanged settings are cheap; call-specific exclusion of the
// previous item happens after the cache.
package eligibility

import (
	"sort"
	"sync"

	"github.com/golang/groupcache/lru"

	"github.com/abhisek/conjuga/internal/curriculum"
	"github.com/abhisek/conjuga/internal/logger"
	"github.com/abhisek/conjuga/internal/settings"
	"github.com/abhisek/conjuga/internal/verb"
)

// Config controls the filter cache.
type Config struct {
	// CacheSize bounds the number of cached (pool, settings) results.
	CacheSize int
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{CacheSize: 64}
}

// Relax lists constraints the fallback cascade may drop.
type Relax struct {
	VerbType bool
	Person   bool
}

// Stats reports cache activity.
type Stats struct {
	Entries int
	Hits    int
	Misses  int
}

// Filter applies the eligibility gates. Safe for concurrent use.
type Filter struct {
	graph   *curriculum.Graph
	catalog *verb.Catalog
	log     *logger.Logger

	mu     sync.Mutex
	cache  *lru.Cache
	live   map[string][]verb.Form
	hits   int
	misses int
}

// New creates a filter over the curriculum and verb catalog.
func New(g *curriculum.Graph, catalog *verb.Catalog, cfg Config, log *logger.Logger) *Filter {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultConfig().CacheSize
	}
	f := &Filter{
		graph:   g,
		catalog: catalog,
		log:     logger.OrNop(log),
		live:    make(map[string][]verb.Form),
	}
	f.cache = lru.New(cfg.CacheSize)
	f.cache.OnEvicted = func(key lru.Key, _ interface{}) {
		delete(f.live, key.(string))
	}
	return f
}

func cacheKey(pool *verb.Pool, s settings.Settings) string {
	return pool.Fingerprint() + "#" + s.CacheKey()
}

// Eligible returns the forms legal under s. The returned slice is shared
// with the cache and must not be modified.
func (f *Filter) Eligible(pool *verb.Pool, s settings.Settings) []verb.Form {
	key := cacheKey(pool, s)

	f.mu.Lock()
	if v, ok := f.cache.Get(key); ok {
		f.hits++
		f.mu.Unlock()
		return v.([]verb.Form)
	}
	f.misses++
	f.mu.Unlock()

	forms := f.apply(pool, s, Relax{})
	f.log.Debug("eligibility computed", "key", key, "pool", pool.Len(), "eligible", len(forms))

	f.mu.Lock()
	f.cache.Add(key, forms)
	f.live[key] = forms
	f.mu.Unlock()
	return forms
}

// Relaxed runs the gates with some constraints dropped. Results are not cached.
func (f *Filter) Relaxed(pool *verb.Pool, s settings.Settings, r Relax) []verb.Form {
	return f.apply(pool, s, r)
}

// Reset drops every cached result.
func (f *Filter) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cache.Clear()
	f.live = make(map[string][]verb.Form)
}

// Stats returns a snapshot of cache counters.
func (f *Filter) Stats() Stats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Stats{Entries: f.cache.Len(), Hits: f.hits, Misses: f.misses}
}

func (f *Filter) apply(pool *verb.Pool, s settings.Settings, r Relax) []verb.Form {
	var out []verb.Form
	for _, form := range pool.Forms() {
		if f.passes(form, s, r) {
			out = append(out, form)
		}
	}
	return out
}

func (f *Filter) passes(form verb.Form, s settings.Settings, r Relax) bool {
	k := form.Key()

	if !f.graph.Allowed(s.Level, k) {
		return false
	}

	if r.Person {
		if !form.Person.Valid() {
			return false
		}
	} else if !s.Dialect().Allows(form.Person) {
		return false
	}

	if !r.VerbType {
		switch s.EffectiveVerbType() {
		case settings.VerbTypeRegular:
			if f.catalog.IsIrregular(form.Lemma, form.Tense) {
				return false
			}
		case settings.VerbTypeIrregular:
			if !f.catalog.IsIrregular(form.Lemma, form.Tense) {
				return false
			}
		}
	}

	return f.matchesPractice(k, s)
}

func (f *Filter) matchesPractice(k verb.Key, s settings.Settings) bool {
	switch p := s.Practice.(type) {
	case settings.Specific:
		return MatchesTarget(p.Target, k)
	case settings.Review:
		if p.Mood == "" {
			return true
		}
		return p.Filter().Matches(k)
	case settings.Mixed:
		if p.Family == "" {
			return true
		}
		return f.graph.FamilyOf(k) == curriculum.Family(p.Family)
	default:
		return true
	}
}

// MatchesTarget reports whether the concrete slot k is covered by a specific
// practice target, expanding meta-tenses.
func MatchesTarget(target, k verb.Key) bool {
	for _, t := range verb.ExpandTopic(target) {
		if t.Matches(k) {
			return true
		}
	}
	return false
}

// ExcludePrevious removes the immediately previous item from candidates.
// Candidates sharing the previous (lemma, person) are dropped when anything
// else remains; failing that only the exact previous form is dropped, and
// only if something else remains. The input slice is never modified.
func ExcludePrevious(forms []verb.Form, prev *verb.Form) []verb.Form {
	if prev == nil || len(forms) == 0 {
		return forms
	}
	combo := prev.Combo()
	var differentCombo []verb.Form
	for _, f := range forms {
		if f.Combo() != combo {
			differentCombo = append(differentCombo, f)
		}
	}
	if len(differentCombo) > 0 {
		return differentCombo
	}

	id := prev.ID()
	var differentForm []verb.Form
	for _, f := range forms {
		if f.ID() != id {
			differentForm = append(differentForm, f)
		}
	}
	if len(differentForm) > 0 {
		return differentForm
	}
	return forms
}

// Keys returns the distinct paradigm slots present in forms, sorted.
func Keys(forms []verb.Form) []verb.Key {
	seen := make(map[verb.Key]bool)
	var out []verb.Key
	for _, f := range forms {
		k := f.Key()
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
