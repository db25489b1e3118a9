package variety

import (
	"math"

	"github.com/abhisek/conjuga/internal/settings"
)

// Profile weights the factors of the mixed-practice draw.
type Profile struct {
	Accuracy     float64
	LevelFit     float64
	Difficulty   float64
	Variety      float64
	VerbPriority float64
	Family       float64
	Semantic     float64
}

// Beginners lean on frequent verbs and level fit; advanced learners on
// variety and semantic spread.
var (
	beginnerProfile     = Profile{Accuracy: 0.15, LevelFit: 0.25, Difficulty: 0.10, Variety: 0.15, VerbPriority: 0.25, Family: 0.05, Semantic: 0.05}
	intermediateProfile = Profile{Accuracy: 0.20, LevelFit: 0.15, Difficulty: 0.15, Variety: 0.20, VerbPriority: 0.10, Family: 0.10, Semantic: 0.10}
	advancedProfile     = Profile{Accuracy: 0.15, LevelFit: 0.10, Difficulty: 0.15, Variety: 0.25, VerbPriority: 0.05, Family: 0.10, Semantic: 0.20}
)

// ProfileFor returns the weight profile of a level.
func ProfileFor(l settings.Level) Profile {
	switch l {
	case settings.LevelA1, settings.LevelA2:
		return beginnerProfile
	case settings.LevelB1, settings.LevelB2:
		return intermediateProfile
	default:
		return advancedProfile
	}
}

// Factors are the normalized 0..1 inputs of the weighted draw.
type Factors struct {
	Accuracy     float64
	LevelFit     float64
	Difficulty   float64
	Variety      float64
	VerbPriority float64
	Family       float64
	Semantic     float64
}

// Blend combines factors with a profile.
func (p Profile) Blend(f Factors) float64 {
	return p.Accuracy*f.Accuracy +
		p.LevelFit*f.LevelFit +
		p.Difficulty*f.Difficulty +
		p.Variety*f.Variety +
		p.VerbPriority*f.VerbPriority +
		p.Family*f.Family +
		p.Semantic*f.Semantic
}

// factors computes the blend inputs for one top-set candidate.
func (e *Engine) factors(s Scored, in Input) Factors {
	k := s.Form.Key()
	f := Factors{
		Accuracy:     clamp01(s.Accuracy),
		LevelFit:     1,
		Variety:      1 - s.Penalties.Total,
		VerbPriority: e.catalog.PriorityOf(s.Form.Lemma),
		Family:       1 - e.memory.FamilyShare(s.Meta.Family),
		Semantic:     1 - s.Penalties.Semantic/maxSemanticPenalty,
	}

	if entry, err := e.graph.Entry(k); err == nil && in.Settings.Level != settings.LevelAll {
		switch {
		case entry.Level == in.Settings.Level:
			f.LevelFit = 1
		case entry.Level.Rank() < in.Settings.Level.Rank():
			f.LevelFit = earlierLevelFitness
		default:
			f.LevelFit = laterLevelFitness
		}
	}

	progress := math.Min(1, float64(e.memory.Picks())/progressHorizon)
	target := difficultyBaseline + difficultyProgress*progress
	f.Difficulty = 1 - math.Abs(e.graph.ComplexityOf(k)-target)
	return f
}

// weightedPick draws from the top set with probability proportional to the
// blended factors plus the rebalance adjustment, floored.
func (e *Engine) weightedPick(top []Scored, in Input) Scored {
	profile := ProfileFor(in.Settings.Level)
	weights := make([]float64, len(top))
	var total float64
	for i, s := range top {
		w := profile.Blend(e.factors(s, in)) + s.Rebalance
		weights[i] = math.Max(weightFloor, w)
		total += weights[i]
	}

	e.mu.Lock()
	draw := e.rng.Float64() * total
	e.mu.Unlock()

	for i, w := range weights {
		draw -= w
		if draw < 0 {
			return top[i]
		}
	}
	return top[len(top)-1]
}
