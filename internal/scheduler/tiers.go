package scheduler

import (
	"context"
	"math"
	"sort"

	"github.com/abhisek/conjuga/internal/curriculum"
	"github.com/abhisek/conjuga/internal/double"
	"github.com/abhisek/conjuga/internal/eligibility"
	"github.com/abhisek/conjuga/internal/settings"
	"github.com/abhisek/conjuga/internal/variety"
	"github.com/abhisek/conjuga/internal/verb"
)

func (s *Scheduler) tryDouble(c *call) *Result {
	pair, ok := s.pairer.Pair(double.Input{
		Candidates: c.eligible,
		Level:      c.settings.Level,
		Plan:       c.plan,
		Previous:   c.previous,
	})
	if !ok {
		c.log.Info("double pairing failed, continuing single")
		return nil
	}
	res := s.result(c, pair.First, MethodDouble, "")
	second := pair.Second
	secondItem := s.materializer.Materialize(c.pool, second, c.settings)
	res.Second = &second
	res.SecondItem = &secondItem
	return res
}

// tryDue serves the most overdue item that matches the eligible pool.
// Specific practice keeps mood and tense but lets the person float.
func (s *Scheduler) tryDue(ctx context.Context, c *call) *Result {
	if s.due == nil || ctx.Err() != nil {
		return nil
	}
	items, err := s.due.DueItems(ctx, c.req.UserID, c.now)
	if err != nil {
		c.log.Warn("due tier failed", "error", err)
		return nil
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].NextDue.Before(items[j].NextDue)
	})

	floatPerson := c.settings.Mode() == settings.ModeSpecific
	for _, item := range items {
		var matches []verb.Form
		for _, f := range c.candidates {
			if f.Key() != item.Key() {
				continue
			}
			if !floatPerson && f.Person != item.Person {
				continue
			}
			matches = append(matches, f)
		}
		if len(matches) == 0 {
			continue
		}
		picked, ok := s.engine.Pick(s.input(c, matches))
		if !ok {
			continue
		}
		return s.result(c, picked.Form, MethodDue, item.ItemID)
	}
	c.log.Debug("no due item matched", "due", len(items))
	return nil
}

const (
	// adaptiveFamilyCap is the recent family share above which a
	// recommendation for that family is passed over.
	adaptiveFamilyCap = 0.6
	adaptiveWarmup    = 5
)

// tryAdaptive serves a curriculum recommendation when it intersects the
// eligible pool. Narrowing to one slot takes the regular/irregular choice
// away from the variety ranking, so the tier steers the type itself.
func (s *Scheduler) tryAdaptive(ctx context.Context, c *call) *Result {
	if s.adaptive == nil || ctx.Err() != nil {
		return nil
	}
	rec, err := s.adaptive.Recommend(ctx, curriculum.RecommendRequest{
		UserID:  c.req.UserID,
		Level:   c.settings.Level,
		Mastery: c.records,
	})
	if err != nil {
		c.log.Warn("adaptive tier failed", "error", err)
		return nil
	}
	if rec == nil {
		return nil
	}
	if target, ok := c.settings.Target(); ok && !eligibility.MatchesTarget(target, rec.Key()) {
		c.log.Debug("recommendation outside specific target", "recommended", rec.Key(), "target", target)
		return nil
	}

	family := s.graph.FamilyOf(rec.Key())
	if s.memory.Picks() >= adaptiveWarmup && s.memory.FamilyShare(family) > adaptiveFamilyCap && s.spansFamilies(c.candidates) {
		c.log.Debug("recommendation family overused", "recommended", rec.Key(), "family", family)
		return nil
	}

	var matches []verb.Form
	for _, f := range c.candidates {
		if f.Key() == rec.Key() {
			matches = append(matches, f)
		}
	}
	if len(matches) == 0 {
		c.log.Debug("recommendation not in eligible pool", "recommended", rec.Key())
		return nil
	}
	matches, ok := s.steerType(c.candidates, matches)
	if !ok {
		c.log.Debug("recommendation would push irregular ratio out of band", "recommended", rec.Key())
		return nil
	}
	if rec.VerbID != "" {
		var byVerb []verb.Form
		for _, f := range matches {
			if f.Lemma == rec.VerbID {
				byVerb = append(byVerb, f)
			}
		}
		if len(byVerb) > 0 {
			matches = byVerb
		}
	}

	picked, ok := s.engine.Pick(s.input(c, matches))
	if !ok {
		return nil
	}
	return s.result(c, picked.Form, MethodAdaptive, rec.Reason)
}

// steerType keeps the matches whose type moves the irregular share toward
// the target. It reports false when the share is out of band and the
// matches only hold the type that would push it further out. Pools with a
// single type are left alone.
func (s *Scheduler) steerType(pool, matches []verb.Form) ([]verb.Form, bool) {
	frac, ok := s.memory.IrregularFraction()
	if !ok || !s.mixedTypes(pool) {
		return matches, true
	}
	cfg := s.cfg.Variety
	want := verb.Regular
	if frac < cfg.IrregularTarget {
		want = verb.Irregular
	}
	var kept []verb.Form
	for _, f := range matches {
		if s.catalog.TypeOf(f) == want {
			kept = append(kept, f)
		}
	}
	if len(kept) > 0 {
		return kept, true
	}
	return matches, math.Abs(frac-cfg.IrregularTarget) <= cfg.IrregularTolerance
}

func (s *Scheduler) mixedTypes(forms []verb.Form) bool {
	var regular, irregular bool
	for _, f := range forms {
		if s.catalog.TypeOf(f) == verb.Irregular {
			irregular = true
		} else {
			regular = true
		}
		if regular && irregular {
			return true
		}
	}
	return false
}

func (s *Scheduler) spansFamilies(forms []verb.Form) bool {
	var first curriculum.Family
	for _, f := range forms {
		fam := s.graph.FamilyOf(f.Key())
		if first == "" {
			first = fam
			continue
		}
		if fam != first {
			return true
		}
	}
	return false
}

func (s *Scheduler) tryVariety(c *call) *Result {
	picked, ok := s.engine.Pick(s.input(c, c.candidates))
	if !ok {
		return nil
	}
	return s.result(c, picked.Form, MethodVariety, "")
}

func (s *Scheduler) input(c *call, forms []verb.Form) variety.Input {
	return variety.Input{
		Candidates: forms,
		Settings:   c.settings,
		Plan:       c.plan,
		Mastery:    c.mastery,
	}
}
