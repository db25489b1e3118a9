package verb

import (
	"fmt"
	"strings"
)

// Mood is a grammatical mood.
type Mood string

const (
	MoodIndicative  Mood = "indicative"
	MoodConditional Mood = "conditional"
	MoodSubjunctive Mood = "subjunctive"
	MoodImperative  Mood = "imperative"
	MoodNonfinite   Mood = "nonfinite"
)

// AllMoods returns all moods in display order.
func AllMoods() []Mood {
	return []Mood{
		MoodIndicative,
		MoodConditional,
		MoodSubjunctive,
		MoodImperative,
		MoodNonfinite,
	}
}

// Tense is a tense within a mood.
type Tense string

const (
	TensePresent        Tense = "pres"
	TensePreterite      Tense = "pretIndef"
	TenseImperfect      Tense = "impf"
	TenseFuture         Tense = "fut"
	TensePresentPerfect Tense = "pretPerf"
	TensePluperfect     Tense = "plusc"
	TenseFuturePerfect  Tense = "futPerf"

	TenseConditional        Tense = "cond"
	TenseConditionalPerfect Tense = "condPerf"

	TenseSubjPresent    Tense = "subjPres"
	TenseSubjImperfect  Tense = "subjImpf"
	TenseSubjPerfect    Tense = "subjPerf"
	TenseSubjPluperfect Tense = "subjPlusc"

	TenseImperativeAff Tense = "impAff"
	TenseImperativeNeg Tense = "impNeg"

	TenseGerund     Tense = "ger"
	TenseParticiple Tense = "part"

	// Meta-tenses only valid as a specific practice target.
	TenseImperativeMixed Tense = "impMixed"
	TenseNonfiniteMixed  Tense = "nonfiniteMixed"
)

// compoundTenses are built with haber + participle.
var compoundTenses = map[Tense]bool{
	TensePresentPerfect:     true,
	TensePluperfect:         true,
	TenseFuturePerfect:      true,
	TenseConditionalPerfect: true,
	TenseSubjPerfect:        true,
	TenseSubjPluperfect:     true,
}

// IsCompound reports whether t is formed with an auxiliary and the participle.
func (t Tense) IsCompound() bool {
	return compoundTenses[t]
}

// Key identifies a paradigm slot: a (mood, tense) pair.
type Key struct {
	Mood  Mood
	Tense Tense
}

// K is shorthand for building a Key.
func K(m Mood, t Tense) Key {
	return Key{Mood: m, Tense: t}
}

func (k Key) String() string {
	return string(k.Mood) + "|" + string(k.Tense)
}

// IsZero reports whether k has no mood.
func (k Key) IsZero() bool {
	return k.Mood == ""
}

// ParseKey parses the "mood|tense" form produced by Key.String.
func ParseKey(s string) (Key, error) {
	mood, tense, ok := strings.Cut(s, "|")
	if !ok || mood == "" {
		return Key{}, fmt.Errorf("invalid key %q: want mood|tense", s)
	}
	return Key{Mood: Mood(mood), Tense: Tense(tense)}, nil
}

// mixedTopics maps a meta-tense to the two real slots it unions.
var mixedTopics = map[Key][2]Key{
	K(MoodImperative, TenseImperativeMixed): {K(MoodImperative, TenseImperativeAff), K(MoodImperative, TenseImperativeNeg)},
	K(MoodNonfinite, TenseNonfiniteMixed):   {K(MoodNonfinite, TenseGerund), K(MoodNonfinite, TenseParticiple)},
}

// IsMixedTopic reports whether k is a meta-tense bucket.
func IsMixedTopic(k Key) bool {
	_, ok := mixedTopics[k]
	return ok
}

// ExpandTopic resolves a practice target into the concrete slots it covers.
// A meta-tense expands to its two underlying slots. A target with an empty
// tense matches every tense of its mood and is returned as-is; use
// Key.Matches to test membership.
func ExpandTopic(target Key) []Key {
	if pair, ok := mixedTopics[target]; ok {
		return []Key{pair[0], pair[1]}
	}
	return []Key{target}
}

// Matches reports whether the concrete slot k is covered by the target pattern p.
// An empty tense in p matches any tense of the same mood.
func (p Key) Matches(k Key) bool {
	if p.Mood != k.Mood {
		return false
	}
	return p.Tense == "" || p.Tense == k.Tense
}

// DefaultTense returns the tense used when a request must fall back to the
// "present" of a mood.
func DefaultTense(m Mood) Tense {
	switch m {
	case MoodConditional:
		return TenseConditional
	case MoodSubjunctive:
		return TenseSubjPresent
	case MoodImperative:
		return TenseImperativeAff
	case MoodNonfinite:
		return TenseGerund
	default:
		return TensePresent
	}
}

var tensesByMood = map[Mood][]Tense{
	MoodIndicative:  {TensePresent, TensePreterite, TenseImperfect, TenseFuture, TensePresentPerfect, TensePluperfect, TenseFuturePerfect},
	MoodConditional: {TenseConditional, TenseConditionalPerfect},
	MoodSubjunctive: {TenseSubjPresent, TenseSubjImperfect, TenseSubjPerfect, TenseSubjPluperfect},
	MoodImperative:  {TenseImperativeAff, TenseImperativeNeg},
	MoodNonfinite:   {TenseGerund, TenseParticiple},
}

// TensesOf returns the concrete tenses of a mood.
func TensesOf(m Mood) []Tense {
	return append([]Tense(nil), tensesByMood[m]...)
}

// ValidTopic reports whether k names a concrete slot, a meta-tense, or a
// whole mood (empty tense).
func ValidTopic(k Key) bool {
	tenses, ok := tensesByMood[k.Mood]
	if !ok {
		return false
	}
	if k.Tense == "" || IsMixedTopic(k) {
		return true
	}
	for _, t := range tenses {
		if t == k.Tense {
			return true
		}
	}
	return false
}
