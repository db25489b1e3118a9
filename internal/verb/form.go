package verb

import (
	"maps"
	"slices"
	"strings"
)

// Person is a grammatical person/number slot, including the regional
// second-person variants.
type Person string

const (
	FirstSingular   Person = "1s"
	SecondTu        Person = "2s_tu"
	SecondVos       Person = "2s_vos"
	ThirdSingular   Person = "3s"
	FirstPlural     Person = "1p"
	SecondVosotros  Person = "2p_vosotros"
	ThirdPlural     Person = "3p"
	PersonNonfinite Person = "nf" // sentinel for gerund/participle
)

// AllPersons returns the personal slots in paradigm order (no sentinel).
func AllPersons() []Person {
	return []Person{
		FirstSingular,
		SecondTu,
		SecondVos,
		ThirdSingular,
		FirstPlural,
		SecondVosotros,
		ThirdPlural,
	}
}

// Valid reports whether p belongs to the closed person enumeration.
func (p Person) Valid() bool {
	return p == PersonNonfinite || slices.Contains(AllPersons(), p)
}

// Type classifies a verb within one tense.
type Type string

const (
	Regular   Type = "regular"
	Irregular Type = "irregular"
)

// Form is a single conjugated practice unit. Forms are owned by the content
// source and treated as read-only.
type Form struct {
	Lemma            string
	Mood             Mood
	Tense            Tense
	Person           Person
	Value            string
	Alternates       []string
	AcceptedVariants map[string]string
}

// Key returns the paradigm slot of the form.
func (f Form) Key() Key {
	return Key{Mood: f.Mood, Tense: f.Tense}
}

// ID uniquely identifies the form within its pool.
func (f Form) ID() string {
	return f.Lemma + "|" + string(f.Mood) + "|" + string(f.Tense) + "|" + string(f.Person)
}

// Combo identifies the (verb, person) pair used for anti-duplication.
func (f Form) Combo() string {
	return f.Lemma + "|" + string(f.Person)
}

// Clone returns a deep copy so callers can never alias pool-owned slices.
func (f Form) Clone() Form {
	out := f
	out.Alternates = slices.Clone(f.Alternates)
	if f.AcceptedVariants != nil {
		out.AcceptedVariants = maps.Clone(f.AcceptedVariants)
	}
	return out
}

// SurfaceEqual reports whether two forms render the same answer text.
func SurfaceEqual(a, b Form) bool {
	return strings.EqualFold(strings.TrimSpace(a.Value), strings.TrimSpace(b.Value))
}
