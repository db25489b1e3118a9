package curriculum

import (
	"github.com/abhisek/conjuga/internal/settings"
	"github.com/abhisek/conjuga/internal/verb"
)

var (
	kPres      = verb.K(verb.MoodIndicative, verb.TensePresent)
	kPret      = verb.K(verb.MoodIndicative, verb.TensePreterite)
	kImpf      = verb.K(verb.MoodIndicative, verb.TenseImperfect)
	kFut       = verb.K(verb.MoodIndicative, verb.TenseFuture)
	kPretPerf  = verb.K(verb.MoodIndicative, verb.TensePresentPerfect)
	kPlusc     = verb.K(verb.MoodIndicative, verb.TensePluperfect)
	kFutPerf   = verb.K(verb.MoodIndicative, verb.TenseFuturePerfect)
	kCond      = verb.K(verb.MoodConditional, verb.TenseConditional)
	kCondPerf  = verb.K(verb.MoodConditional, verb.TenseConditionalPerfect)
	kSubjPres  = verb.K(verb.MoodSubjunctive, verb.TenseSubjPresent)
	kSubjImpf  = verb.K(verb.MoodSubjunctive, verb.TenseSubjImperfect)
	kSubjPerf  = verb.K(verb.MoodSubjunctive, verb.TenseSubjPerfect)
	kSubjPlusc = verb.K(verb.MoodSubjunctive, verb.TenseSubjPluperfect)
	kImpAff    = verb.K(verb.MoodImperative, verb.TenseImperativeAff)
	kImpNeg    = verb.K(verb.MoodImperative, verb.TenseImperativeNeg)
	kGer       = verb.K(verb.MoodNonfinite, verb.TenseGerund)
	kPart      = verb.K(verb.MoodNonfinite, verb.TenseParticiple)
)

// seedEntries is the static tense-introduction table.
func seedEntries() []Entry {
	return []Entry{
		// A1
		{Key: kPres, Level: settings.LevelA1, Complexity: 1, Family: FamilyPresent, Critical: true},

		// A2
		{Key: kPret, Level: settings.LevelA2, Complexity: 2, Family: FamilyPast, Prerequisites: []verb.Key{kPres}, Critical: true},
		{Key: kImpf, Level: settings.LevelA2, Complexity: 3, Family: FamilyPast, Prerequisites: []verb.Key{kPres}},
		{Key: kGer, Level: settings.LevelA2, Complexity: 4, Family: FamilyNonfinite, Prerequisites: []verb.Key{kPres}},
		{Key: kPart, Level: settings.LevelA2, Complexity: 5, Family: FamilyNonfinite, Prerequisites: []verb.Key{kPres}},
		{Key: kPretPerf, Level: settings.LevelA2, Complexity: 6, Family: FamilyPerfect, Prerequisites: []verb.Key{kPart}},
		{Key: kImpAff, Level: settings.LevelA2, Complexity: 7, Family: FamilyCommands, Prerequisites: []verb.Key{kPres}},

		// B1
		{Key: kFut, Level: settings.LevelB1, Complexity: 8, Family: FamilyFuture, Prerequisites: []verb.Key{kPres}, Critical: true},
		{Key: kCond, Level: settings.LevelB1, Complexity: 9, Family: FamilyFuture, Prerequisites: []verb.Key{kFut}},
		{Key: kSubjPres, Level: settings.LevelB1, Complexity: 10, Family: FamilySubjunctive, Prerequisites: []verb.Key{kPres}, Critical: true},
		{Key: kImpNeg, Level: settings.LevelB1, Complexity: 11, Family: FamilyCommands, Prerequisites: []verb.Key{kImpAff, kSubjPres}},
		{Key: kPlusc, Level: settings.LevelB1, Complexity: 12, Family: FamilyPerfect, Prerequisites: []verb.Key{kImpf, kPart}},

		// B2
		{Key: kSubjImpf, Level: settings.LevelB2, Complexity: 13, Family: FamilySubjunctive, Prerequisites: []verb.Key{kPret, kSubjPres}, Critical: true},
		{Key: kSubjPerf, Level: settings.LevelB2, Complexity: 14, Family: FamilyPerfect, Prerequisites: []verb.Key{kSubjPres, kPart}},
		{Key: kFutPerf, Level: settings.LevelB2, Complexity: 15, Family: FamilyPerfect, Prerequisites: []verb.Key{kFut, kPart}},
		{Key: kCondPerf, Level: settings.LevelB2, Complexity: 16, Family: FamilyPerfect, Prerequisites: []verb.Key{kCond, kPart}},

		// C1
		{Key: kSubjPlusc, Level: settings.LevelC1, Complexity: 17, Family: FamilySubjunctive, Prerequisites: []verb.Key{kSubjImpf, kPart}, Critical: true},
	}
}
