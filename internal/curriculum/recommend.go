package curriculum

import (
	"context"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/abhisek/conjuga/internal/settings"
	"github.com/abhisek/conjuga/internal/verb"
)

// RecommendRequest asks for the next curriculum target.
type RecommendRequest struct {
	UserID  string
	Level   settings.Level
	Mastery []MasteryRecord
}

// Recommendation is a curriculum-driven target. VerbID is set when a specific
// weak verb should be drilled.
type Recommendation struct {
	Mood   verb.Mood
	Tense  verb.Tense
	VerbID string
	Reason string
}

// Key returns the recommended slot.
func (r Recommendation) Key() verb.Key {
	return verb.Key{Mood: r.Mood, Tense: r.Tense}
}

const (
	// weakVerbThreshold is the per-verb score below which a verb is singled out.
	weakVerbThreshold = 70.0
	minKeyWeight      = 0.01
)

// Recommender turns plans into single recommendations. It draws the category
// by plan weights, then a key inside that bucket by the keys' rank weights.
type Recommender struct {
	graph *Graph

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRecommender creates a recommender over the graph. A nil rng uses a
// randomly seeded source.
func NewRecommender(g *Graph, rng *rand.Rand) *Recommender {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Recommender{graph: g, rng: rng}
}

// Recommend returns a target, or nil when the plan has nothing to offer.
func (r *Recommender) Recommend(ctx context.Context, req RecommendRequest) (*Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	plan := r.graph.BuildPlan(req.Level, req.Mastery)

	categories := []Category{CategoryCore, CategoryReview, CategoryExploration, CategoryConsolidation}
	var total float64
	var live []Category
	for _, c := range categories {
		if len(plan.Bucket(c)) > 0 && plan.Weights.Of(c) > 0 {
			live = append(live, c)
			total += plan.Weights.Of(c)
		}
	}
	if len(live) == 0 {
		return nil, nil
	}

	r.mu.Lock()
	draw := r.rng.Float64() * total
	r.mu.Unlock()

	chosen := live[len(live)-1]
	for _, c := range live {
		draw -= plan.Weights.Of(c)
		if draw < 0 {
			chosen = c
			break
		}
	}

	picked := r.drawKey(plan.Bucket(chosen))
	rec := &Recommendation{
		Mood:   picked.Key.Mood,
		Tense:  picked.Key.Tense,
		Reason: string(chosen),
	}
	rec.VerbID = weakestVerb(NewMasteryIndex(req.Mastery).Verbs(picked.Key))
	return rec, nil
}

// drawKey picks a bucket entry with probability proportional to its weight.
// Zero-weight entries keep a small floor so every ranked key stays reachable.
func (r *Recommender) drawKey(bucket []WeightedKey) WeightedKey {
	var total float64
	for _, wk := range bucket {
		total += max(wk.Weight, minKeyWeight)
	}

	r.mu.Lock()
	draw := r.rng.Float64() * total
	r.mu.Unlock()

	for _, wk := range bucket {
		draw -= max(wk.Weight, minKeyWeight)
		if draw < 0 {
			return wk
		}
	}
	return bucket[len(bucket)-1]
}

// weakestVerb returns the lowest-scoring verb under the threshold, or "".
func weakestVerb(scores map[string]float64) string {
	lemmas := make([]string, 0, len(scores))
	for l, s := range scores {
		if s < weakVerbThreshold {
			lemmas = append(lemmas, l)
		}
	}
	if len(lemmas) == 0 {
		return ""
	}
	sort.Slice(lemmas, func(i, j int) bool {
		if scores[lemmas[i]] != scores[lemmas[j]] {
			return scores[lemmas[i]] < scores[lemmas[j]]
		}
		return lemmas[i] < lemmas[j]
	})
	return lemmas[0]
}
