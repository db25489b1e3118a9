package variety

import (
	"math"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/abhisek/conjuga/internal/curriculum"
	"github.com/abhisek/conjuga/internal/settings"
	"github.com/abhisek/conjuga/internal/verb"
)

const (
	varietyWeight       = 0.6
	maxPersonBonus      = 0.2
	irregularBoost      = 0.35
	irregularPenalty    = -0.35
	regularBoost        = 0.15
	inBandGain          = 1.5
	unknownAccuracy     = 0.5
	weightFloor         = 0.01
	progressHorizon     = 50
	difficultyBaseline  = 0.3
	difficultyProgress  = 0.5
	earlierLevelFitness = 0.7
	laterLevelFitness   = 0.4
)

// Input is one ranking request.
type Input struct {
	Candidates []verb.Form
	Settings   settings.Settings
	// Plan supplies the curriculum bonus; optional.
	Plan *curriculum.Plan
	// Mastery supplies accuracy history; optional.
	Mastery *curriculum.MasteryIndex
}

// Scored is a ranked candidate with its score parts.
type Scored struct {
	Form      verb.Form
	Meta      Meta
	Score     float64
	Accuracy  float64
	Penalties Penalties
	Rebalance float64
	Bonus     float64
}

// Engine ranks and picks candidates against a session memory.
type Engine struct {
	cfg     Config
	memory  *Memory
	graph   *curriculum.Graph
	catalog *verb.Catalog
	now     func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewEngine builds an engine. A nil rng gets a random seed and a nil clock
// uses time.Now.
func NewEngine(cfg Config, memory *Memory, g *curriculum.Graph, catalog *verb.Catalog, rng *rand.Rand, now func() time.Time) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{
		cfg:     cfg,
		memory:  memory,
		graph:   g,
		catalog: catalog,
		rng:     rng,
		now:     now,
	}
}

// Memory returns the session memory the engine reads.
func (e *Engine) Memory() *Memory {
	return e.memory
}

// Meta derives the per-tense type, family and semantic category of a form.
func (e *Engine) Meta(f verb.Form) Meta {
	return Meta{
		Type:     e.catalog.TypeOf(f),
		Family:   e.graph.FamilyOf(f.Key()),
		Category: e.catalog.Category(f.Lemma),
	}
}

// Record stores a presented form in the session memory.
func (e *Engine) Record(f verb.Form) {
	e.memory.Record(f, e.Meta(f), e.now())
}

// Rank scores every candidate. Order is by score descending with form ID as
// tie-break, so identical inputs and memory give identical rankings.
func (e *Engine) Rank(in Input) []Scored {
	now := e.now()
	mixed := mixedTypeKeys(in.Candidates, e.catalog)
	frac, hasHistory := e.memory.IrregularFraction()

	out := make([]Scored, 0, len(in.Candidates))
	for _, f := range in.Candidates {
		meta := e.Meta(f)
		s := Scored{
			Form:      f,
			Meta:      meta,
			Accuracy:  accuracyWeight(in.Mastery, f),
			Penalties: e.memory.Breakdown(f, meta, now),
			Bonus:     in.Plan.Priority(f.Key()),
		}
		if mixed[f.Key()] {
			s.Rebalance = e.rebalance(meta.Type, frac, hasHistory)
		}
		personBonus := maxPersonBonus / float64(1+e.memory.PersonCount(f.Person))
		s.Score = clamp01(s.Accuracy) + varietyWeight*(1-s.Penalties.Total) + personBonus + s.Rebalance + s.Bonus
		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Form.ID() < out[j].Form.ID()
	})
	return out
}

// Top returns the head of a ranking used for the final draw.
func (e *Engine) Top(ranked []Scored) []Scored {
	if len(ranked) == 0 {
		return nil
	}
	n := int(math.Ceil(float64(len(ranked)) * e.cfg.TopFraction))
	n = max(1, min(n, len(ranked)))
	return ranked[:n]
}

// Pick ranks the candidates and draws one from the top set. Unrestricted
// mixed practice uses the multi-factor weighted draw; everything else draws
// uniformly.
func (e *Engine) Pick(in Input) (Scored, bool) {
	top := e.Top(e.Rank(in))
	if len(top) == 0 {
		return Scored{}, false
	}
	if in.Settings.IsFullMixed() {
		return e.weightedPick(top, in), true
	}
	e.mu.Lock()
	i := e.rng.IntN(len(top))
	e.mu.Unlock()
	return top[i], true
}

// rebalance steers the stream toward the irregular target.
func (e *Engine) rebalance(t verb.Type, frac float64, hasHistory bool) float64 {
	if !hasHistory {
		frac = 0
	}
	lo := e.cfg.IrregularTarget - e.cfg.IrregularTolerance
	hi := e.cfg.IrregularTarget + e.cfg.IrregularTolerance
	switch {
	case frac < lo:
		if t == verb.Irregular {
			return irregularBoost
		}
	case frac > hi:
		if t == verb.Irregular {
			return irregularPenalty
		}
		return regularBoost
	default:
		if t == verb.Irregular {
			return inBandGain * (e.cfg.IrregularTarget - frac)
		}
	}
	return 0
}

// mixedTypeKeys returns the slots whose candidates include both types.
func mixedTypeKeys(forms []verb.Form, catalog *verb.Catalog) map[verb.Key]bool {
	seen := make(map[verb.Key][2]bool)
	for _, f := range forms {
		k := f.Key()
		v := seen[k]
		if catalog.TypeOf(f) == verb.Irregular {
			v[1] = true
		} else {
			v[0] = true
		}
		seen[k] = v
	}
	out := make(map[verb.Key]bool, len(seen))
	for k, v := range seen {
		if v[0] && v[1] {
			out[k] = true
		}
	}
	return out
}

// accuracyWeight favors forms the learner gets wrong.
func accuracyWeight(idx *curriculum.MasteryIndex, f verb.Form) float64 {
	m, ok := idx.OfVerb(f.Key(), f.Lemma)
	if !ok {
		return unknownAccuracy
	}
	return 1 - m/100
}
