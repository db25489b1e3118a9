package curriculum

import (
	"sort"

	"github.com/abhisek/conjuga/internal/settings"
	"github.com/abhisek/conjuga/internal/verb"
)

// Category classifies a key within a plan.
type Category string

const (
	CategoryCore          Category = "core"
	CategoryReview        Category = "review"
	CategoryExploration   Category = "exploration"
	CategoryConsolidation Category = "consolidation"
)

const (
	reviewThreshold      = 80.0
	gapThreshold         = 70.0
	explorationReadiness = 0.4
	explorationLimit     = 3
	explorationDiscount  = 0.7
	unknownReadiness     = 0.5
	maxPriorityBonus     = 0.3
)

// WeightedKey is a key with its rank weight inside one plan bucket.
type WeightedKey struct {
	Key       verb.Key
	Weight    float64
	Readiness float64
	// Mastery is the mean recorded score, or -1 when nothing was recorded.
	Mastery float64
	// Prerequisite marks review entries that gate a current-level entry.
	Prerequisite bool
}

// Weights are the category fractions a learner's practice should follow.
type Weights struct {
	Core          float64
	Review        float64
	Exploration   float64
	Consolidation float64
}

// Of returns the weight of a category.
func (w Weights) Of(c Category) float64 {
	switch c {
	case CategoryCore:
		return w.Core
	case CategoryReview:
		return w.Review
	case CategoryExploration:
		return w.Exploration
	case CategoryConsolidation:
		return w.Consolidation
	}
	return 0
}

// Plan is the per-level breakdown of the curriculum for one learner.
type Plan struct {
	Level        settings.Level
	Core         []WeightedKey
	Review       []WeightedKey
	Exploration  []WeightedKey
	PrereqGaps   []WeightedKey
	FamilyGroups map[Family][]verb.Key
	Progression  []verb.Key
	Weights      Weights

	priority map[verb.Key]float64
}

// Priority returns the curriculum bonus for a key in [0, 0.3]. Keys outside
// every bucket score 0.
func (p *Plan) Priority(k verb.Key) float64 {
	if p == nil {
		return 0
	}
	return p.priority[k]
}

// Bucket returns the ranked keys of a category. Consolidation draws from the
// prerequisite gaps, then from review.
func (p *Plan) Bucket(c Category) []WeightedKey {
	if p == nil {
		return nil
	}
	switch c {
	case CategoryCore:
		return p.Core
	case CategoryReview:
		return p.Review
	case CategoryExploration:
		return p.Exploration
	case CategoryConsolidation:
		if len(p.PrereqGaps) > 0 {
			return p.PrereqGaps
		}
		return p.Review
	}
	return nil
}

// BuildPlan derives the plan for a level from mastery records. It is a pure
// function of its inputs.
func (g *Graph) BuildPlan(level settings.Level, records []MasteryRecord) *Plan {
	idx := NewMasteryIndex(records)
	plan := &Plan{
		Level:        level,
		FamilyGroups: make(map[Family][]verb.Key),
		priority:     make(map[verb.Key]float64),
	}

	current := g.currentEntries(level)
	plan.Core = g.coreKeys(current, idx)
	plan.Review = g.reviewKeys(level, current, idx)
	plan.Exploration = g.explorationKeys(level, idx)
	plan.PrereqGaps = g.prereqGaps(current, idx)

	for _, e := range g.ProgressionPath(level) {
		plan.Progression = append(plan.Progression, e.Key)
		plan.FamilyGroups[e.Family] = append(plan.FamilyGroups[e.Family], e.Key)
	}
	plan.Weights = g.weights(level, idx)

	// Later buckets only raise a key's bonus.
	assign := func(keys []WeightedKey, scale float64) {
		for _, wk := range keys {
			v := clamp(wk.Weight, 0, 1) * scale
			if v > plan.priority[wk.Key] {
				plan.priority[wk.Key] = v
			}
		}
	}
	assign(plan.Exploration, maxPriorityBonus*0.5)
	assign(plan.Review, maxPriorityBonus*0.7)
	assign(plan.PrereqGaps, maxPriorityBonus*0.85)
	assign(plan.Core, maxPriorityBonus)
	return plan
}

// currentEntries returns the entries treated as "this level". ALL treats the
// highest populated level as current.
func (g *Graph) currentEntries(level settings.Level) []Entry {
	if level != settings.LevelAll {
		return g.ByLevel(level)
	}
	levels := settings.Levels()
	for i := len(levels) - 1; i >= 0; i-- {
		if entries := g.ByLevel(levels[i]); len(entries) > 0 {
			return entries
		}
	}
	return nil
}

// readiness is the mean prerequisite mastery on a 0..1 scale.
func (g *Graph) readiness(k verb.Key, idx *MasteryIndex) float64 {
	e, ok := g.byKey[k]
	if !ok || len(e.Prerequisites) == 0 {
		return 1
	}
	var sum float64
	for _, p := range e.Prerequisites {
		if m, ok := idx.Of(p); ok {
			sum += m / 100
		} else {
			sum += unknownReadiness
		}
	}
	return sum / float64(len(e.Prerequisites))
}

// familyPartial reports whether any member of the family is partly mastered.
func (g *Graph) familyPartial(f Family, idx *MasteryIndex) bool {
	for _, e := range g.byFamily[f] {
		if m, ok := idx.Of(e.Key); ok && m > 0 && m < reviewThreshold {
			return true
		}
	}
	return false
}

func masteryOrUnknown(idx *MasteryIndex, k verb.Key) float64 {
	if m, ok := idx.Of(k); ok {
		return m
	}
	return -1
}

func (g *Graph) coreKeys(current []Entry, idx *MasteryIndex) []WeightedKey {
	out := make([]WeightedKey, 0, len(current))
	for _, e := range current {
		r := g.readiness(e.Key, idx)
		urgency := 0.5
		if e.Critical {
			urgency += 0.3
		}
		if g.familyPartial(e.Family, idx) {
			urgency += 0.2
		}
		urgency = clamp(urgency, 0, 1)

		simplicity := 1 - float64(e.Complexity)/float64(g.maxComplexity)
		out = append(out, WeightedKey{
			Key:       e.Key,
			Weight:    0.3*simplicity + 0.4*r + 0.3*urgency,
			Readiness: r,
			Mastery:   masteryOrUnknown(idx, e.Key),
		})
	}
	g.sortWeighted(out)
	return out
}

func (g *Graph) reviewKeys(level settings.Level, current []Entry, idx *MasteryIndex) []WeightedKey {
	gating := make(map[verb.Key]bool)
	for _, e := range current {
		for _, p := range e.Prerequisites {
			gating[p] = true
		}
	}

	var out []WeightedKey
	for _, e := range g.entries {
		if !isEarlier(e.Level, level) {
			continue
		}
		m, _ := idx.Of(e.Key)
		if m >= reviewThreshold {
			continue
		}
		gap := (reviewThreshold - m) / reviewThreshold
		wk := WeightedKey{
			Key:          e.Key,
			Weight:       0.8 * gap,
			Readiness:    g.readiness(e.Key, idx),
			Mastery:      masteryOrUnknown(idx, e.Key),
			Prerequisite: gating[e.Key],
		}
		if wk.Prerequisite {
			wk.Weight = 1
		}
		out = append(out, wk)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Prerequisite != out[j].Prerequisite {
			return out[i].Prerequisite
		}
		mi, mj := max(out[i].Mastery, 0), max(out[j].Mastery, 0)
		if mi != mj {
			return mi < mj
		}
		return g.topoIndex[out[i].Key] < g.topoIndex[out[j].Key]
	})
	return out
}

// isEarlier reports whether introduced comes strictly before level. Under ALL
// everything below the current top level counts as earlier.
func isEarlier(introduced, level settings.Level) bool {
	r := level.Rank()
	if level == settings.LevelAll {
		r = len(settings.Levels())
	}
	return introduced.Rank() < r
}

func (g *Graph) explorationKeys(level settings.Level, idx *MasteryIndex) []WeightedKey {
	if level == settings.LevelAll {
		return nil
	}
	var out []WeightedKey
	discount := 1.0
	next := level.Next()
	for step := 0; step < 2 && next != ""; step++ {
		for _, e := range g.byLevel[next] {
			r := g.readiness(e.Key, idx) * discount
			if r < explorationReadiness {
				continue
			}
			out = append(out, WeightedKey{
				Key:       e.Key,
				Weight:    r,
				Readiness: r,
				Mastery:   masteryOrUnknown(idx, e.Key),
			})
		}
		discount *= explorationDiscount
		next = next.Next()
	}
	g.sortWeighted(out)
	if len(out) > explorationLimit {
		out = out[:explorationLimit]
	}
	return out
}

func (g *Graph) prereqGaps(current []Entry, idx *MasteryIndex) []WeightedKey {
	seen := make(map[verb.Key]bool)
	var out []WeightedKey
	for _, e := range current {
		for _, p := range e.Prerequisites {
			if seen[p] {
				continue
			}
			seen[p] = true
			m, ok := idx.Of(p)
			if !ok || m >= gapThreshold {
				continue
			}
			out = append(out, WeightedKey{
				Key:       p,
				Weight:    (100 - m) / 100,
				Readiness: g.readiness(p, idx),
				Mastery:   m,
			})
		}
	}
	g.sortWeighted(out)
	return out
}

// weights shift toward review and consolidation as mastery rises.
func (g *Graph) weights(level settings.Level, idx *MasteryIndex) Weights {
	var sum float64
	var n int
	for _, e := range g.ProgressionPath(level) {
		if v, ok := idx.Of(e.Key); ok {
			sum += v
			n++
		}
	}
	m := 0.0
	if n > 0 {
		m = sum / float64(n) / 100
	}
	return Weights{
		Core:          0.6 - 0.3*m,
		Review:        0.2 + 0.15*m,
		Exploration:   0.1,
		Consolidation: 0.1 + 0.15*m,
	}
}

// sortWeighted orders by weight descending, then topological position.
func (g *Graph) sortWeighted(keys []WeightedKey) {
	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].Weight != keys[j].Weight {
			return keys[i].Weight > keys[j].Weight
		}
		return g.topoIndex[keys[i].Key] < g.topoIndex[keys[j].Key]
	})
}
