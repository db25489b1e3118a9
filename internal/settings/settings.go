// Package settings defines the per-call practice configuration.
//
// Settings are a closed record: the practice mode is a tagged union so that
// mode-specific fields (a specific target, review filters) only exist where
// they are meaningful. Settings are validated at the boundary with Validate.
package settings

import (
	"fmt"
	"strings"

	"github.com/abhisek/conjuga/internal/verb"
)

// Level is a proficiency tier.
type Level string

const (
	LevelA1  Level = "A1"
	LevelA2  Level = "A2"
	LevelB1  Level = "B1"
	LevelB2  Level = "B2"
	LevelC1  Level = "C1"
	LevelC2  Level = "C2"
	LevelAll Level = "ALL"
)

// Levels returns the six ordered tiers (without ALL).
func Levels() []Level {
	return []Level{LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2}
}

// Rank returns the 1-based position of the level; ALL ranks above C2.
// Unknown levels rank 0.
func (l Level) Rank() int {
	switch l {
	case LevelA1:
		return 1
	case LevelA2:
		return 2
	case LevelB1:
		return 3
	case LevelB2:
		return 4
	case LevelC1:
		return 5
	case LevelC2:
		return 6
	case LevelAll:
		return 7
	default:
		return 0
	}
}

// Valid reports whether l is a known level.
func (l Level) Valid() bool {
	return l.Rank() > 0
}

// Next returns the following tier, or "" past C2.
func (l Level) Next() Level {
	levels := Levels()
	r := l.Rank()
	if r <= 0 || r >= len(levels) {
		return ""
	}
	return levels[r]
}

// ParseLevel parses a level case-insensitively.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToUpper(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("unknown level %q", s)
	}
	return l, nil
}

// Region selects the regional variant, which decides the legal second persons.
type Region string

const (
	RegionLatAm       Region = "la_general"
	RegionRioplatense Region = "rioplatense"
	RegionPeninsular  Region = "peninsular"
	RegionGlobal      Region = "global"
)

// Dialect is the set of second-person variants enabled for a region.
type Dialect struct {
	Tu       bool
	Vos      bool
	Vosotros bool
}

// Dialect returns the second-person variants legal in the region. Voseo and
// vosotros are mutually exclusive everywhere except the global region.
func (r Region) Dialect() Dialect {
	switch r {
	case RegionRioplatense:
		return Dialect{Vos: true}
	case RegionPeninsular:
		return Dialect{Tu: true, Vosotros: true}
	case RegionGlobal:
		return Dialect{Tu: true, Vos: true, Vosotros: true}
	default:
		return Dialect{Tu: true}
	}
}

// Valid reports whether r is a known region.
func (r Region) Valid() bool {
	switch r {
	case RegionLatAm, RegionRioplatense, RegionPeninsular, RegionGlobal:
		return true
	}
	return false
}

// Allows reports whether a person is legal under the dialect.
// The nonfinite sentinel is always legal.
func (d Dialect) Allows(p verb.Person) bool {
	switch p {
	case verb.SecondTu:
		return d.Tu
	case verb.SecondVos:
		return d.Vos
	case verb.SecondVosotros:
		return d.Vosotros
	default:
		return p.Valid()
	}
}

// Flags renders the dialect compactly for cache keys and logs.
func (d Dialect) Flags() string {
	b := []byte("---")
	if d.Tu {
		b[0] = 't'
	}
	if d.Vos {
		b[1] = 'v'
	}
	if d.Vosotros {
		b[2] = 'p'
	}
	return string(b)
}

// VerbType restricts candidates by per-tense regularity.
type VerbType string

const (
	VerbTypeAll       VerbType = "all"
	VerbTypeRegular   VerbType = "regular"
	VerbTypeIrregular VerbType = "irregular"
)

// Mode names the practice variant.
type Mode string

const (
	ModeMixed    Mode = "mixed"
	ModeSpecific Mode = "specific"
	ModeReview   Mode = "review"
)

// Practice is the mode-specific part of the settings. It is implemented only
// by Mixed, Specific and Review.
type Practice interface {
	Mode() Mode
	key() string
}

// Mixed practices everything the level allows, optionally limited to one
// tense family.
type Mixed struct {
	Family string
}

func (Mixed) Mode() Mode    { return ModeMixed }
func (m Mixed) key() string { return "mixed:" + m.Family }

// Specific drills one (mood, tense) target. An empty tense covers the whole
// mood; meta-tenses such as impMixed cover two slots.
type Specific struct {
	Target verb.Key
}

func (Specific) Mode() Mode    { return ModeSpecific }
func (s Specific) key() string { return "specific:" + s.Target.String() }

// Review replays items from the review queue, optionally filtered.
type Review struct {
	Mood  verb.Mood
	Tense verb.Tense
}

func (Review) Mode() Mode { return ModeReview }
func (r Review) key() string {
	return "review:" + string(r.Mood) + "|" + string(r.Tense)
}

// Filter returns the review filter as a key pattern; zero when unfiltered.
func (r Review) Filter() verb.Key {
	return verb.Key{Mood: r.Mood, Tense: r.Tense}
}

// Settings is a configuration snapshot supplied with every call.
type Settings struct {
	Level    Level
	Region   Region
	VerbType VerbType
	Double   bool
	Practice Practice
}

// Default returns a mixed B1 configuration for Latin American Spanish.
func Default() Settings {
	return Settings{
		Level:    LevelB1,
		Region:   RegionLatAm,
		VerbType: VerbTypeAll,
		Practice: Mixed{},
	}
}

// Mode returns the practice mode; a nil Practice reads as mixed.
func (s Settings) Mode() Mode {
	if s.Practice == nil {
		return ModeMixed
	}
	return s.Practice.Mode()
}

// Dialect returns the second-person variants enabled by the region.
func (s Settings) Dialect() Dialect {
	return s.Region.Dialect()
}

// Target returns the specific-practice target, if any.
func (s Settings) Target() (verb.Key, bool) {
	sp, ok := s.Practice.(Specific)
	if !ok {
		return verb.Key{}, false
	}
	return sp.Target, true
}

// Family returns the mixed-practice family restriction, if any.
func (s Settings) Family() string {
	if m, ok := s.Practice.(Mixed); ok {
		return m.Family
	}
	return ""
}

// IsFullMixed reports whether the settings ask for unrestricted mixed practice.
func (s Settings) IsFullMixed() bool {
	return s.Mode() == ModeMixed && s.Family() == ""
}

// CacheKey is a composite of every field that affects eligibility.
func (s Settings) CacheKey() string {
	practice := "mixed:"
	if s.Practice != nil {
		practice = s.Practice.key()
	}
	return strings.Join([]string{
		string(s.Level),
		s.Dialect().Flags(),
		practice,
		string(s.verbType()),
	}, "/")
}

func (s Settings) verbType() VerbType {
	if s.VerbType == "" {
		return VerbTypeAll
	}
	return s.VerbType
}

// EffectiveVerbType treats an unset verb type as "all".
func (s Settings) EffectiveVerbType() VerbType {
	return s.verbType()
}
