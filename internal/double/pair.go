// Package double pairs two different paradigm slots of one verb into a
// combined practice item.
package double

import (
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/abhisek/conjuga/internal/curriculum"
	"github.com/abhisek/conjuga/internal/settings"
	"github.com/abhisek/conjuga/internal/verb"
)

// Config bounds the pairing loop.
type Config struct {
	VerbAttempts int
	ValueRetries int
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{VerbAttempts: 3, ValueRetries: 6}
}

// Pair is a double-mode result: same lemma, different (mood, tense).
type Pair struct {
	First  verb.Form
	Second verb.Form
}

// Valid reports whether the pair satisfies the double-mode contract.
func (p Pair) Valid() bool {
	return p.First.Lemma == p.Second.Lemma && p.First.Key() != p.Second.Key()
}

// Input is one pairing request.
type Input struct {
	Candidates []verb.Form
	Level      settings.Level
	Plan       *curriculum.Plan
	// Previous holds the forms of the last presented item, if any.
	Previous []verb.Form
}

// Pairer builds pairs. Safe for concurrent use.
type Pairer struct {
	cfg     Config
	graph   *curriculum.Graph
	catalog *verb.Catalog

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a pairer. A nil rng gets a random seed.
func New(cfg Config, g *curriculum.Graph, catalog *verb.Catalog, rng *rand.Rand) *Pairer {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if cfg.VerbAttempts <= 0 {
		cfg.VerbAttempts = DefaultConfig().VerbAttempts
	}
	if cfg.ValueRetries <= 0 {
		cfg.ValueRetries = DefaultConfig().ValueRetries
	}
	return &Pairer{cfg: cfg, graph: g, catalog: catalog, rng: rng}
}

type verbSlots struct {
	lemma  string
	keys   []verb.Key
	forms  map[verb.Key][]verb.Form
	weight float64
}

// Pair returns a valid pair, or false when none can be built.
func (p *Pairer) Pair(in Input) (Pair, bool) {
	verbs := p.group(in)
	if len(verbs) == 0 {
		return Pair{}, false
	}

	prevLemma := ""
	prevKeys := make(map[verb.Key]bool)
	for _, f := range in.Previous {
		prevLemma = f.Lemma
		prevKeys[f.Key()] = true
	}
	if prevLemma != "" {
		var others []*verbSlots
		for _, v := range verbs {
			if v.lemma != prevLemma {
				others = append(others, v)
			}
		}
		if len(others) > 0 {
			verbs = others
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for attempt := 0; attempt < p.cfg.VerbAttempts && len(verbs) > 0; attempt++ {
		i := p.drawVerb(verbs)
		v := verbs[i]
		verbs = append(verbs[:i:i], verbs[i+1:]...)

		keys := append([]verb.Key(nil), v.keys...)
		p.rng.Shuffle(len(keys), func(a, b int) { keys[a], keys[b] = keys[b], keys[a] })
		if v.lemma == prevLemma {
			var fresh []verb.Key
			for _, k := range keys {
				if !prevKeys[k] {
					fresh = append(fresh, k)
				}
			}
			if len(fresh) >= 2 {
				keys = fresh
			}
		}

		if pair, ok := p.pickForms(v, keys[0], keys[1]); ok {
			return pair, true
		}
	}
	return Pair{}, false
}

// group applies the level gate and keeps verbs with at least two slots.
// The result is sorted by lemma for reproducible draws.
func (p *Pairer) group(in Input) []*verbSlots {
	byLemma := make(map[string]*verbSlots)
	for _, f := range in.Candidates {
		k := f.Key()
		if !p.graph.Allowed(in.Level, k) {
			continue
		}
		v := byLemma[f.Lemma]
		if v == nil {
			v = &verbSlots{lemma: f.Lemma, forms: make(map[verb.Key][]verb.Form)}
			byLemma[f.Lemma] = v
		}
		if len(v.forms[k]) == 0 {
			v.keys = append(v.keys, k)
		}
		v.forms[k] = append(v.forms[k], f)
	}

	var out []*verbSlots
	for _, v := range byLemma {
		if len(v.keys) < 2 {
			continue
		}
		sort.Slice(v.keys, func(i, j int) bool { return v.keys[i].String() < v.keys[j].String() })
		best := 0.0
		for _, k := range v.keys {
			best = max(best, in.Plan.Priority(k))
		}
		v.weight = 0.1 + best/0.3 + 0.5*p.catalog.PriorityOf(v.lemma)
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].lemma < out[j].lemma })
	return out
}

// drawVerb picks an index with probability proportional to verb weight.
// Callers hold p.mu.
func (p *Pairer) drawVerb(verbs []*verbSlots) int {
	var total float64
	for _, v := range verbs {
		total += v.weight
	}
	draw := p.rng.Float64() * total
	for i, v := range verbs {
		draw -= v.weight
		if draw < 0 {
			return i
		}
	}
	return len(verbs) - 1
}

// pickForms draws one form per slot, retrying against identical surface
// values. Callers hold p.mu.
func (p *Pairer) pickForms(v *verbSlots, a, b verb.Key) (Pair, bool) {
	fa, fb := v.forms[a], v.forms[b]
	for retry := 0; retry < p.cfg.ValueRetries; retry++ {
		pair := Pair{
			First:  fa[p.rng.IntN(len(fa))],
			Second: fb[p.rng.IntN(len(fb))],
		}
		if verb.SurfaceEqual(pair.First, pair.Second) {
			continue
		}
		if pair.Valid() {
			return pair, true
		}
	}
	return Pair{}, false
}
