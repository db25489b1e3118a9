package scheduler

import (
	"context"

	"github.com/abhisek/conjuga/internal/curriculum"
	"github.com/abhisek/conjuga/internal/eligibility"
	"github.com/abhisek/conjuga/internal/settings"
	"github.com/abhisek/conjuga/internal/verb"
)

// fallback runs the relaxation cascade and ends in a sentinel.
func (s *Scheduler) fallback(ctx context.Context, c *call) *Result {
	relaxations := []struct {
		relax  eligibility.Relax
		method Method
	}{
		{eligibility.Relax{VerbType: true}, MethodRelaxVerbType},
		{eligibility.Relax{VerbType: true, Person: true}, MethodRelaxPerson},
	}
	for _, r := range relaxations {
		forms := eligibility.ExcludePrevious(s.filter.Relaxed(c.pool, c.settings, r.relax), c.prev())
		if res := s.pickFrom(c, forms, r.method); res != nil {
			return res
		}
	}

	requested := s.requestedKeys(c.settings)
	if forms := s.scan(ctx, c, requested); len(forms) > 0 {
		if res := s.pickFrom(c, forms, MethodDirectScan); res != nil {
			return res
		}
	}

	if forms := s.scan(ctx, c, defaultTenseKeys(requested)); len(forms) > 0 {
		if res := s.pickFrom(c, forms, MethodDefaultTense); res != nil {
			return res
		}
	}

	return s.sentinel(c, ErrExhaustedFallbacks.Error())
}

func (s *Scheduler) pickFrom(c *call, forms []verb.Form, method Method) *Result {
	if len(forms) == 0 {
		return nil
	}
	picked, ok := s.engine.Pick(s.input(c, forms))
	if !ok {
		return nil
	}
	c.log.Info("fallback served", "method", method, "candidates", len(forms))
	return s.result(c, picked.Form, method, "")
}

// requestedKeys returns the key patterns the settings ask for. An empty
// tense matches a whole mood.
func (s *Scheduler) requestedKeys(st settings.Settings) []verb.Key {
	switch p := st.Practice.(type) {
	case settings.Specific:
		return verb.ExpandTopic(p.Target)
	case settings.Review:
		if p.Mood != "" {
			return []verb.Key{p.Filter()}
		}
	case settings.Mixed:
		if p.Family != "" {
			var keys []verb.Key
			for _, k := range s.graph.FamilyKeys(curriculum.Family(p.Family)) {
				if s.graph.Allowed(st.Level, k) {
					keys = append(keys, k)
				}
			}
			if len(keys) > 0 {
				return keys
			}
		}
	}
	return s.graph.AllowedKeys(st.Level)
}

// defaultTenseKeys maps each requested mood to its default tense.
func defaultTenseKeys(requested []verb.Key) []verb.Key {
	seen := make(map[verb.Mood]bool)
	var out []verb.Key
	for _, k := range requested {
		if seen[k.Mood] {
			continue
		}
		seen[k.Mood] = true
		out = append(out, verb.K(k.Mood, verb.DefaultTense(k.Mood)))
	}
	if len(out) == 0 {
		out = append(out, verb.K(verb.MoodIndicative, verb.TensePresent))
	}
	return out
}

// scan collects forms matching any pattern from the content source, or from
// the request pool when there is no content source. The content source is
// skipped once ctx is done. Dialect is honored when possible.
func (s *Scheduler) scan(ctx context.Context, c *call, patterns []verb.Key) []verb.Form {
	matches := func(f verb.Form) bool {
		for _, p := range patterns {
			if p.Matches(f.Key()) {
				return f.Value != ""
			}
		}
		return false
	}

	var found []verb.Form
	if s.content != nil && ctx.Err() == nil {
		err := s.content.Scan(ctx, func(f verb.Form) bool {
			if matches(f) {
				found = append(found, f)
			}
			return len(found) < s.cfg.ScanLimit
		})
		if err != nil {
			c.log.Warn("direct scan failed", "error", err)
		}
	} else {
		for _, f := range c.pool.Forms() {
			if matches(f) {
				found = append(found, f)
			}
		}
	}

	d := c.settings.Dialect()
	var legal []verb.Form
	for _, f := range found {
		if d.Allows(f.Person) {
			legal = append(legal, f)
		}
	}
	if len(legal) > 0 {
		found = legal
	}
	return eligibility.ExcludePrevious(found, c.prev())
}
