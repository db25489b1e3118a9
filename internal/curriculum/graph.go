package curriculum

import (
	"fmt"
	"slices"
	"sort"

	"github.com/abhisek/conjuga/internal/settings"
	"github.com/abhisek/conjuga/internal/verb"
)

// Graph holds the curriculum DAG with precomputed indices. It is read-only
// after construction and safe to share.
type Graph struct {
	entries       []Entry
	byKey         map[verb.Key]*Entry
	byLevel       map[settings.Level][]Entry
	byFamily      map[Family][]Entry
	dependents    map[verb.Key][]verb.Key
	topoOrder     []Entry
	topoIndex     map[verb.Key]int
	maxComplexity int
}

// New validates the entries and builds the graph.
func New(entries []Entry) (*Graph, error) {
	if err := validateEntries(entries); err != nil {
		return nil, err
	}
	return buildGraph(entries), nil
}

// Default returns the graph built from the built-in tense table.
// It panics if the table is invalid, which tests rule out.
func Default() *Graph {
	g, err := New(seedEntries())
	if err != nil {
		panic(err)
	}
	return g
}

// buildGraph constructs all indices including topological order (Kahn's algorithm).
func buildGraph(entries []Entry) *Graph {
	g := &Graph{
		entries:    make([]Entry, len(entries)),
		byKey:      make(map[verb.Key]*Entry, len(entries)),
		byLevel:    make(map[settings.Level][]Entry),
		byFamily:   make(map[Family][]Entry),
		dependents: make(map[verb.Key][]verb.Key),
		topoIndex:  make(map[verb.Key]int, len(entries)),
	}
	for i, e := range entries {
		e.Prerequisites = slices.Clone(e.Prerequisites)
		g.entries[i] = e
	}
	for i := range g.entries {
		e := &g.entries[i]
		g.byKey[e.Key] = e
		if e.Complexity > g.maxComplexity {
			g.maxComplexity = e.Complexity
		}
		for _, p := range e.Prerequisites {
			g.dependents[p] = append(g.dependents[p], e.Key)
		}
	}

	inDegree := make(map[verb.Key]int, len(g.entries))
	var queue []verb.Key
	for _, e := range g.entries {
		inDegree[e.Key] = len(e.Prerequisites)
		if len(e.Prerequisites) == 0 {
			queue = append(queue, e.Key)
		}
	}
	// Lowest complexity first keeps the order deterministic and pedagogical.
	byComplexity := func(keys []verb.Key) {
		sort.Slice(keys, func(i, j int) bool {
			return g.byKey[keys[i]].Complexity < g.byKey[keys[j]].Complexity
		})
	}
	byComplexity(queue)

	for len(queue) > 0 {
		k := queue[0]
		queue = queue[1:]
		g.topoOrder = append(g.topoOrder, *g.byKey[k])

		var ready []verb.Key
		for _, d := range g.dependents[k] {
			inDegree[d]--
			if inDegree[d] == 0 {
				ready = append(ready, d)
			}
		}
		byComplexity(ready)
		queue = append(queue, ready...)
	}
	for i, e := range g.topoOrder {
		g.topoIndex[e.Key] = i
	}

	for _, e := range g.entries {
		g.byLevel[e.Level] = append(g.byLevel[e.Level], e)
		g.byFamily[e.Family] = append(g.byFamily[e.Family], e)
	}
	for _, group := range g.byLevel {
		g.sortByComplexity(group)
	}
	for _, group := range g.byFamily {
		g.sortByComplexity(group)
	}
	return g
}

func (g *Graph) sortByComplexity(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Complexity < entries[j].Complexity
	})
}

// Entry returns the entry for a key, or an error if the key is not in the graph.
func (g *Graph) Entry(k verb.Key) (Entry, error) {
	e, ok := g.byKey[k]
	if !ok {
		return Entry{}, fmt.Errorf("curriculum entry not found: %q", k)
	}
	return *e, nil
}

// Has reports whether the key is part of the curriculum.
func (g *Graph) Has(k verb.Key) bool {
	_, ok := g.byKey[k]
	return ok
}

// Entries returns all entries in declaration order.
func (g *Graph) Entries() []Entry {
	return slices.Clone(g.entries)
}

// ByLevel returns the entries introduced at a level, by ascending complexity.
func (g *Graph) ByLevel(level settings.Level) []Entry {
	return slices.Clone(g.byLevel[level])
}

// Prerequisites returns the direct prerequisite entries of a key.
func (g *Graph) Prerequisites(k verb.Key) []Entry {
	e, ok := g.byKey[k]
	if !ok {
		return nil
	}
	out := make([]Entry, 0, len(e.Prerequisites))
	for _, p := range e.Prerequisites {
		if pe, ok := g.byKey[p]; ok {
			out = append(out, *pe)
		}
	}
	return out
}

// Dependents returns entries that directly depend on the key.
func (g *Graph) Dependents(k verb.Key) []Entry {
	deps := g.dependents[k]
	out := make([]Entry, 0, len(deps))
	for _, d := range deps {
		if e, ok := g.byKey[d]; ok {
			out = append(out, *e)
		}
	}
	return out
}

// TopologicalOrder returns all entries in a valid prerequisite order.
func (g *Graph) TopologicalOrder() []Entry {
	return slices.Clone(g.topoOrder)
}

// Allowed reports whether a key is open at the level. Levels are cumulative;
// ALL opens everything and unknown levels open nothing.
func (g *Graph) Allowed(level settings.Level, k verb.Key) bool {
	e, ok := g.byKey[k]
	if !ok {
		return false
	}
	return allowedAt(level, e.Level)
}

func allowedAt(level, introduced settings.Level) bool {
	r := level.Rank()
	return r > 0 && introduced.Rank() <= r
}

// AllowedKeys returns the keys open at the level, by ascending complexity.
func (g *Graph) AllowedKeys(level settings.Level) []verb.Key {
	var out []verb.Key
	for _, e := range g.ProgressionPath(level) {
		out = append(out, e.Key)
	}
	return out
}

// ProgressionPath returns the entries open at the level ordered by complexity,
// which is the monotonic learning sequence.
func (g *Graph) ProgressionPath(level settings.Level) []Entry {
	var out []Entry
	for _, e := range g.entries {
		if allowedAt(level, e.Level) {
			out = append(out, e)
		}
	}
	g.sortByComplexity(out)
	return out
}

// FamilyOf returns the family of a key, or "" when the key is unknown.
func (g *Graph) FamilyOf(k verb.Key) Family {
	if e, ok := g.byKey[k]; ok {
		return e.Family
	}
	return ""
}

// FamilyKeys returns the keys of a family by ascending complexity.
func (g *Graph) FamilyKeys(f Family) []verb.Key {
	entries := g.byFamily[f]
	out := make([]verb.Key, len(entries))
	for i, e := range entries {
		out[i] = e.Key
	}
	return out
}

// ComplexityOf returns the complexity normalized to (0,1]; unknown keys get 1.
func (g *Graph) ComplexityOf(k verb.Key) float64 {
	e, ok := g.byKey[k]
	if !ok || g.maxComplexity == 0 {
		return 1
	}
	return float64(e.Complexity) / float64(g.maxComplexity)
}

// Validate re-checks the graph structure.
func (g *Graph) Validate() error {
	return validateEntries(g.entries)
}
