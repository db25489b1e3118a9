package curriculum

import (
	"fmt"
	"strings"

	"github.com/abhisek/conjuga/internal/settings"
	"github.com/abhisek/conjuga/internal/verb"
)

// validateEntries performs all structural checks on the given entries.
// Returns a combined error describing all problems found, or nil if valid.
func validateEntries(entries []Entry) error {
	var errs []string

	keySet := make(map[verb.Key]bool, len(entries))
	complexitySeen := make(map[int]verb.Key, len(entries))

	for _, e := range entries {
		if keySet[e.Key] {
			errs = append(errs, fmt.Sprintf("duplicate entry: %q", e.Key))
		}
		keySet[e.Key] = true

		if !verb.ValidTopic(e.Key) || e.Key.Tense == "" || verb.IsMixedTopic(e.Key) {
			errs = append(errs, fmt.Sprintf("entry %q is not a concrete mood/tense", e.Key))
		}
		if !e.Level.Valid() || e.Level == settings.LevelAll {
			errs = append(errs, fmt.Sprintf("entry %q: unknown level %q", e.Key, e.Level))
		}
		if e.Complexity <= 0 {
			errs = append(errs, fmt.Sprintf("entry %q: complexity must be > 0, got %d", e.Key, e.Complexity))
		} else if other, dup := complexitySeen[e.Complexity]; dup {
			errs = append(errs, fmt.Sprintf("entry %q: complexity %d already used by %q", e.Key, e.Complexity, other))
		} else {
			complexitySeen[e.Complexity] = e.Key
		}
		if e.Family == "" {
			errs = append(errs, fmt.Sprintf("entry %q has no family", e.Key))
		}
	}

	for _, e := range entries {
		for _, p := range e.Prerequisites {
			if !keySet[p] {
				errs = append(errs, fmt.Sprintf("entry %q references nonexistent prerequisite %q", e.Key, p))
			}
		}
	}

	// Check for cycles using Kahn's algorithm
	inDegree := make(map[verb.Key]int, len(entries))
	adj := make(map[verb.Key][]verb.Key)
	for _, e := range entries {
		inDegree[e.Key] = 0
		for _, p := range e.Prerequisites {
			if !keySet[p] {
				continue
			}
			inDegree[e.Key]++
			adj[p] = append(adj[p], e.Key)
		}
	}
	var queue []verb.Key
	for k, d := range inDegree {
		if d == 0 {
			queue = append(queue, k)
		}
	}
	visited := 0
	for len(queue) > 0 {
		k := queue[0]
		queue = queue[1:]
		visited++
		for _, d := range adj[k] {
			inDegree[d]--
			if inDegree[d] == 0 {
				queue = append(queue, d)
			}
		}
	}
	if visited < len(inDegree) {
		var cycle []string
		for _, e := range entries {
			if inDegree[e.Key] > 0 && keySet[e.Key] {
				keySet[e.Key] = false
				cycle = append(cycle, e.Key.String())
			}
		}
		errs = append(errs, fmt.Sprintf("cycle detected involving entries: %s", strings.Join(cycle, ", ")))
	}

	if len(entries) > 0 && !hasRoot(entries) {
		errs = append(errs, "no root entries found (at least one entry must have no prerequisites)")
	}

	if len(errs) > 0 {
		return fmt.Errorf("curriculum validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func hasRoot(entries []Entry) bool {
	for _, e := range entries {
		if len(e.Prerequisites) == 0 {
			return true
		}
	}
	return false
}
