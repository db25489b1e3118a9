package curriculum

import (
	"github.com/abhisek/conjuga/internal/verb"
)

// MasteryRecord is one externally computed mastery score. VerbID is empty for
// tense-wide records. Score is on a 0..100 scale.
type MasteryRecord struct {
	Mood   verb.Mood
	Tense  verb.Tense
	VerbID string
	Score  float64
}

// Key returns the paradigm slot the record scores.
func (r MasteryRecord) Key() verb.Key {
	return verb.Key{Mood: r.Mood, Tense: r.Tense}
}

// MasteryIndex aggregates records for lookup by key and by (key, verb).
type MasteryIndex struct {
	byKey  map[verb.Key]float64
	byVerb map[verb.Key]map[string]float64
}

// NewMasteryIndex averages records per key. Verb-specific records also count
// toward their key average. Scores are clamped to 0..100.
func NewMasteryIndex(records []MasteryRecord) *MasteryIndex {
	idx := &MasteryIndex{
		byKey:  make(map[verb.Key]float64),
		byVerb: make(map[verb.Key]map[string]float64),
	}
	sums := make(map[verb.Key]float64)
	counts := make(map[verb.Key]int)
	for _, r := range records {
		score := clamp(r.Score, 0, 100)
		k := r.Key()
		sums[k] += score
		counts[k]++
		if r.VerbID != "" {
			if idx.byVerb[k] == nil {
				idx.byVerb[k] = make(map[string]float64)
			}
			idx.byVerb[k][r.VerbID] = score
		}
	}
	for k, sum := range sums {
		idx.byKey[k] = sum / float64(counts[k])
	}
	return idx
}

// Of returns the mean mastery of a key and whether any record exists.
func (m *MasteryIndex) Of(k verb.Key) (float64, bool) {
	if m == nil {
		return 0, false
	}
	v, ok := m.byKey[k]
	return v, ok
}

// OfVerb returns the mastery of one verb in a key, falling back to the key mean.
func (m *MasteryIndex) OfVerb(k verb.Key, lemma string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	if v, ok := m.byVerb[k][lemma]; ok {
		return v, true
	}
	return m.Of(k)
}

// Verbs returns the per-verb scores recorded for a key.
func (m *MasteryIndex) Verbs(k verb.Key) map[string]float64 {
	if m == nil {
		return nil
	}
	return m.byVerb[k]
}

// Len returns the number of keys with at least one record.
func (m *MasteryIndex) Len() int {
	if m == nil {
		return 0
	}
	return len(m.byKey)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
