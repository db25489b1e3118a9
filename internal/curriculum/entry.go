// Package curriculum encodes the pedagogical ordering of paradigm slots and
// derives per-level practice plans from it.
package curriculum

import (
	"github.com/abhisek/conjuga/internal/settings"
	"github.com/abhisek/conjuga/internal/verb"
)

// Family groups related tenses for balancing ("past", "perfect", ...).
type Family string

const (
	FamilyPresent     Family = "present"
	FamilyPast        Family = "past"
	FamilyNonfinite   Family = "nonfinite"
	FamilyPerfect     Family = "perfect"
	FamilyCommands    Family = "commands"
	FamilyFuture      Family = "future"
	FamilySubjunctive Family = "subjunctive"
)

// AllFamilies returns all families in display order.
func AllFamilies() []Family {
	return []Family{
		FamilyPresent,
		FamilyPast,
		FamilyNonfinite,
		FamilyPerfect,
		FamilyCommands,
		FamilyFuture,
		FamilySubjunctive,
	}
}

// FamilyDisplayName returns a human-readable name for a family.
func FamilyDisplayName(f Family) string {
	switch f {
	case FamilyPresent:
		return "Present"
	case FamilyPast:
		return "Simple Past"
	case FamilyNonfinite:
		return "Gerund & Participle"
	case FamilyPerfect:
		return "Compound Tenses"
	case FamilyCommands:
		return "Commands"
	case FamilyFuture:
		return "Future & Conditional"
	case FamilySubjunctive:
		return "Subjunctive"
	default:
		return string(f)
	}
}

// Entry is one node of the curriculum graph.
type Entry struct {
	Key verb.Key
	// Level is the tier at which the slot is first introduced.
	Level settings.Level
	// Complexity orders slots into a monotonic progression; unique and positive.
	Complexity    int
	Family        Family
	Prerequisites []verb.Key
	// Critical marks slots a learner must own before leaving the level.
	Critical bool
}
