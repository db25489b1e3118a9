package curriculum

import (
	"context"
	"math"
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/abhisek/conjuga/internal/settings"
	"github.com/abhisek/conjuga/internal/verb"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestBuildPlan_NoRecords(t *testing.T) {
	g := Default()
	plan := g.BuildPlan(settings.LevelB1, nil)

	if len(plan.Core) != 5 {
		t.Fatalf("core: got %d, want 5", len(plan.Core))
	}
	// Future is critical and simpler than the subjunctive.
	if plan.Core[0].Key != kFut {
		t.Errorf("core[0] = %s, want %s", plan.Core[0].Key, kFut)
	}
	if plan.Core[1].Key != kSubjPres {
		t.Errorf("core[1] = %s, want %s", plan.Core[1].Key, kSubjPres)
	}

	if len(plan.Review) != 7 {
		t.Fatalf("review: got %d, want 7", len(plan.Review))
	}
	gating := map[verb.Key]bool{kPres: true, kImpAff: true, kImpf: true, kPart: true}
	for i, wk := range plan.Review {
		if i < 4 && !gating[wk.Key] {
			t.Errorf("review[%d] = %s, want a prerequisite of a B1 entry", i, wk.Key)
		}
		if (i < 4) != wk.Prerequisite {
			t.Errorf("review[%d] prerequisite flag = %v", i, wk.Prerequisite)
		}
	}

	if len(plan.Exploration) != 3 {
		t.Fatalf("exploration: got %d, want 3", len(plan.Exploration))
	}
	for _, wk := range plan.Exploration {
		e, _ := g.Entry(wk.Key)
		if e.Level != settings.LevelB2 {
			t.Errorf("exploration %s from %s, want B2", wk.Key, e.Level)
		}
		if wk.Readiness < explorationReadiness {
			t.Errorf("exploration %s readiness %.2f below threshold", wk.Key, wk.Readiness)
		}
	}

	if len(plan.PrereqGaps) != 0 {
		t.Errorf("gaps without records: got %d", len(plan.PrereqGaps))
	}

	want := Weights{Core: 0.6, Review: 0.2, Exploration: 0.1, Consolidation: 0.1}
	if !approx(plan.Weights.Core, want.Core) || !approx(plan.Weights.Review, want.Review) ||
		!approx(plan.Weights.Consolidation, want.Consolidation) {
		t.Errorf("weights = %+v, want %+v", plan.Weights, want)
	}
	if len(plan.Progression) != 12 {
		t.Errorf("progression: got %d, want 12", len(plan.Progression))
	}
}

func TestBuildPlan_WithMastery(t *testing.T) {
	g := Default()
	records := []MasteryRecord{
		{Mood: verb.MoodIndicative, Tense: verb.TensePresent, Score: 90},
		{Mood: verb.MoodIndicative, Tense: verb.TenseImperfect, Score: 50},
	}
	plan := g.BuildPlan(settings.LevelB1, records)

	if len(plan.PrereqGaps) != 1 || plan.PrereqGaps[0].Key != kImpf {
		t.Fatalf("gaps = %+v, want only %s", plan.PrereqGaps, kImpf)
	}
	if !approx(plan.PrereqGaps[0].Weight, 0.5) {
		t.Errorf("gap weight = %v, want 0.5", plan.PrereqGaps[0].Weight)
	}
	for _, wk := range plan.Review {
		if wk.Key == kPres {
			t.Error("mastered present should not be reviewed")
		}
	}

	// m = 0.7
	if !approx(plan.Weights.Core, 0.39) {
		t.Errorf("core weight = %v, want 0.39", plan.Weights.Core)
	}
	total := plan.Weights.Core + plan.Weights.Review + plan.Weights.Exploration + plan.Weights.Consolidation
	if !approx(total, 1) {
		t.Errorf("weights sum to %v", total)
	}

	// Readiness of the future tense follows present mastery.
	for _, wk := range plan.Core {
		if wk.Key == kFut && !approx(wk.Readiness, 0.9) {
			t.Errorf("future readiness = %v, want 0.9", wk.Readiness)
		}
	}
}

func TestBuildPlan_LowReadinessBlocksExploration(t *testing.T) {
	g := Default()
	records := []MasteryRecord{
		{Mood: verb.MoodIndicative, Tense: verb.TensePresent, Score: 10},
	}
	plan := g.BuildPlan(settings.LevelA1, records)
	// Only the present perfect, gated by the unknown participle, stays ready.
	if len(plan.Exploration) != 1 || plan.Exploration[0].Key != kPretPerf {
		t.Errorf("exploration with weak present: %+v", plan.Exploration)
	}
}

func TestBuildPlan_Deterministic(t *testing.T) {
	g := Default()
	records := []MasteryRecord{
		{Mood: verb.MoodIndicative, Tense: verb.TensePreterite, Score: 40},
		{Mood: verb.MoodSubjunctive, Tense: verb.TenseSubjPresent, VerbID: "ser", Score: 30},
	}
	a := g.BuildPlan(settings.LevelB2, records)
	b := g.BuildPlan(settings.LevelB2, records)
	if !reflect.DeepEqual(a, b) {
		t.Error("BuildPlan is not deterministic")
	}
}

func TestBuildPlan_All(t *testing.T) {
	g := Default()
	plan := g.BuildPlan(settings.LevelAll, nil)
	if len(plan.Exploration) != 0 {
		t.Errorf("ALL should have no exploration, got %d", len(plan.Exploration))
	}
	if len(plan.Core) != 1 || plan.Core[0].Key != kSubjPlusc {
		t.Errorf("ALL core = %+v", plan.Core)
	}
}

func TestPlan_Priority(t *testing.T) {
	g := Default()
	plan := g.BuildPlan(settings.LevelB1, nil)
	for _, k := range g.AllowedKeys(settings.LevelB1) {
		p := plan.Priority(k)
		if p < 0 || p > maxPriorityBonus {
			t.Errorf("priority(%s) = %v out of range", k, p)
		}
	}
	if p := plan.Priority(kSubjPlusc); p != 0 {
		t.Errorf("priority of C1 key at B1 = %v, want 0", p)
	}
	if got, want := plan.Priority(plan.Core[0].Key), plan.Core[0].Weight*maxPriorityBonus; !approx(got, want) {
		t.Errorf("priority of top core entry = %v, want %v", got, want)
	}
	if plan.Priority(kGer) <= 0 {
		t.Error("review entries should carry a bonus")
	}

	var nilPlan *Plan
	if nilPlan.Priority(kPres) != 0 {
		t.Error("nil plan priority should be 0")
	}
}

func TestRecommender(t *testing.T) {
	g := Default()
	r := NewRecommender(g, rand.New(rand.NewPCG(1, 2)))

	valid := map[string]bool{"core": true, "review": true, "exploration": true, "consolidation": true}
	for i := 0; i < 50; i++ {
		rec, err := r.Recommend(context.Background(), RecommendRequest{Level: settings.LevelB1})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec == nil {
			t.Fatal("expected a recommendation")
		}
		if !valid[rec.Reason] {
			t.Errorf("unexpected reason %q", rec.Reason)
		}
		if !g.Has(rec.Key()) {
			t.Errorf("recommended unknown key %s", rec.Key())
		}
	}
}

func TestRecommender_DrawsAcrossBucket(t *testing.T) {
	r := NewRecommender(Default(), rand.New(rand.NewPCG(3, 4)))

	core := map[verb.Key]int{}
	n := 0
	for i := 0; i < 400; i++ {
		rec, err := r.Recommend(context.Background(), RecommendRequest{Level: settings.LevelB1})
		if err != nil || rec == nil {
			t.Fatalf("got (%v, %v)", rec, err)
		}
		if rec.Reason == string(CategoryCore) {
			core[rec.Key()]++
			n++
		}
	}
	if len(core) < 2 {
		t.Fatalf("core recommendations pinned to %v", core)
	}
	for k, c := range core {
		if share := float64(c) / float64(n); share > 0.6 {
			t.Errorf("%s took %.2f of core recommendations", k, share)
		}
	}
}

func TestRecommender_DrawKeyFollowsWeight(t *testing.T) {
	r := NewRecommender(Default(), rand.New(rand.NewPCG(5, 6)))
	bucket := []WeightedKey{
		{Key: kFut, Weight: 0.75},
		{Key: kSubjPres, Weight: 0.25},
		{Key: kPres, Weight: 0},
	}

	counts := map[verb.Key]int{}
	const draws = 4000
	for i := 0; i < draws; i++ {
		counts[r.drawKey(bucket).Key]++
	}
	if share := float64(counts[kFut]) / draws; share < 0.70 || share > 0.79 {
		t.Errorf("heavy key share = %.3f, want about 0.75", share)
	}
	if share := float64(counts[kSubjPres]) / draws; share < 0.20 || share > 0.29 {
		t.Errorf("light key share = %.3f, want about 0.25", share)
	}
	if counts[kPres] > draws/20 {
		t.Errorf("zero-weight key drawn %d times", counts[kPres])
	}
}

func TestRecommender_CanceledContext(t *testing.T) {
	r := NewRecommender(Default(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Recommend(ctx, RecommendRequest{Level: settings.LevelA1}); err == nil {
		t.Error("expected context error")
	}
}

func TestRecommender_EmptyLevel(t *testing.T) {
	r := NewRecommender(Default(), nil)
	rec, err := r.Recommend(context.Background(), RecommendRequest{Level: "Z9"})
	if err != nil || rec != nil {
		t.Errorf("got (%v, %v), want (nil, nil)", rec, err)
	}
}

func TestWeakestVerb(t *testing.T) {
	tests := []struct {
		name   string
		scores map[string]float64
		want   string
	}{
		{"none", nil, ""},
		{"all strong", map[string]float64{"ser": 90}, ""},
		{"lowest", map[string]float64{"ser": 60, "ir": 20, "ver": 80}, "ir"},
		{"tie by name", map[string]float64{"ser": 20, "ir": 20}, "ir"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := weakestVerb(tt.scores); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMasteryIndex(t *testing.T) {
	idx := NewMasteryIndex([]MasteryRecord{
		{Mood: verb.MoodIndicative, Tense: verb.TensePresent, Score: 40},
		{Mood: verb.MoodIndicative, Tense: verb.TensePresent, VerbID: "ser", Score: 120},
	})
	m, ok := idx.Of(kPres)
	if !ok || !approx(m, 70) {
		t.Errorf("Of(pres) = %v, %v; want 70, true", m, ok)
	}
	v, ok := idx.OfVerb(kPres, "ser")
	if !ok || v != 100 {
		t.Errorf("OfVerb(ser) = %v, want clamped 100", v)
	}
	v, _ = idx.OfVerb(kPres, "ir")
	if !approx(v, 70) {
		t.Errorf("OfVerb(ir) fallback = %v, want 70", v)
	}
	if _, ok := idx.Of(kFut); ok {
		t.Error("unexpected record for future")
	}
}
