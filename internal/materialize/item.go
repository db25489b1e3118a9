// Package materialize turns a selected form into the outward practice item.
package materialize

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/abhisek/conjuga/internal/settings"
	"github.com/abhisek/conjuga/internal/verb"
)

// Irregularity describes how a verb deviates from its regular pattern.
type Irregularity struct {
	Irregular       bool         `json:"irregular"`
	IrregularTenses []verb.Tense `json:"irregular_tenses,omitempty"`
	Category        string       `json:"category,omitempty"`
}

// Answer is the gradable surface of an item.
type Answer struct {
	Value            string            `json:"value"`
	Alternates       []string          `json:"alternates,omitempty"`
	AcceptedVariants map[string]string `json:"accepted_variants,omitempty"`
}

// Effective is the settings view the grader should apply to an item.
type Effective struct {
	Level    settings.Level  `json:"level"`
	Region   settings.Region `json:"region"`
	Tu       bool            `json:"tu"`
	Vos      bool            `json:"vos"`
	Vosotros bool            `json:"vosotros"`
	Mode     settings.Mode   `json:"mode"`
}

// Item is a fully structured practice item.
type Item struct {
	ID           string       `json:"id"`
	Lemma        string       `json:"lemma"`
	Mood         verb.Mood    `json:"mood"`
	Tense        verb.Tense   `json:"tense"`
	Person       verb.Person  `json:"person"`
	Type         verb.Type    `json:"type"`
	Irregularity Irregularity `json:"irregularity"`
	Form         Answer       `json:"form"`
	Settings     Effective    `json:"settings"`
	// Sentinel marks the synthetic item returned when nothing could be selected.
	Sentinel bool   `json:"sentinel,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Materializer resolves canonical records and assembles items.
type Materializer struct {
	catalog *verb.Catalog
}

// New creates a materializer backed by the verb catalog.
func New(catalog *verb.Catalog) *Materializer {
	return &Materializer{catalog: catalog}
}

// Materialize builds the item for f. The canonical record is taken from the
// pool when present so a denormalized copy never leaks out. The input form
// and the pool are never mutated.
func (m *Materializer) Materialize(pool *verb.Pool, f verb.Form, s settings.Settings) Item {
	canonical := f
	if c, ok := pool.Get(f.ID()); ok {
		canonical = c
	}
	canonical = canonical.Clone()

	info, _ := m.catalog.Lookup(canonical.Lemma)
	irregular := m.catalog.IsIrregular(canonical.Lemma, canonical.Tense)
	typ := verb.Regular
	if irregular {
		typ = verb.Irregular
	}

	return Item{
		ID:     canonical.ID(),
		Lemma:  canonical.Lemma,
		Mood:   canonical.Mood,
		Tense:  canonical.Tense,
		Person: canonical.Person,
		Type:   typ,
		Irregularity: Irregularity{
			Irregular:       irregular,
			IrregularTenses: info.IrregularTenses,
			Category:        info.Category,
		},
		Form: Answer{
			Value:            canonical.Value,
			Alternates:       canonical.Alternates,
			AcceptedVariants: canonical.AcceptedVariants,
		},
		Settings: effective(s, canonical.Person),
	}
}

// effective copies the settings and turns on the dialect flag the chosen
// person implies.
func effective(s settings.Settings, p verb.Person) Effective {
	d := s.Dialect()
	region := s.Region
	if region == "" {
		region = settings.RegionLatAm
	}
	e := Effective{
		Level:    s.Level,
		Region:   region,
		Tu:       d.Tu,
		Vos:      d.Vos,
		Vosotros: d.Vosotros,
		Mode:     s.Mode(),
	}
	switch p {
	case verb.SecondTu:
		e.Tu = true
	case verb.SecondVos:
		e.Vos = true
	case verb.SecondVosotros:
		e.Vosotros = true
	}
	return e
}

// Sentinel builds the clearly marked item returned when every selection
// path failed or the request was rejected.
func Sentinel(reason string, s settings.Settings) Item {
	return Item{
		ID:       "sentinel-" + uuid.NewString(),
		Sentinel: true,
		Reason:   reason,
		Settings: effective(s, ""),
	}
}

// ErrMalformedForm is returned by Normalize for unusable raw records.
var ErrMalformedForm = errors.New("malformed form")

// RawForm is a form as it arrives from content files. Older files carry the
// surface text in "form" instead of "value".
type RawForm struct {
	Lemma            string            `json:"lemma" yaml:"lemma"`
	Mood             string            `json:"mood" yaml:"mood"`
	Tense            string            `json:"tense" yaml:"tense"`
	Person           string            `json:"person" yaml:"person"`
	Value            string            `json:"value,omitempty" yaml:"value,omitempty"`
	Form             string            `json:"form,omitempty" yaml:"form,omitempty"`
	Alternates       []string          `json:"alternates,omitempty" yaml:"alternates,omitempty"`
	AcceptedVariants map[string]string `json:"accepted_variants,omitempty" yaml:"accepted_variants,omitempty"`
}

// Normalize folds the legacy field into Value and checks the record.
func Normalize(r RawForm) (verb.Form, error) {
	value := strings.TrimSpace(r.Value)
	if value == "" {
		value = strings.TrimSpace(r.Form)
	}
	f := verb.Form{
		Lemma:            strings.TrimSpace(r.Lemma),
		Mood:             verb.Mood(r.Mood),
		Tense:            verb.Tense(r.Tense),
		Person:           verb.Person(r.Person),
		Value:            value,
		Alternates:       slices.Clone(r.Alternates),
		AcceptedVariants: maps.Clone(r.AcceptedVariants),
	}

	var problems []string
	if f.Lemma == "" {
		problems = append(problems, "missing lemma")
	}
	if f.Value == "" {
		problems = append(problems, "missing value")
	}
	if !f.Person.Valid() {
		problems = append(problems, fmt.Sprintf("unknown person %q", r.Person))
	}
	if !verb.ValidTopic(f.Key()) || f.Tense == "" || verb.IsMixedTopic(f.Key()) {
		problems = append(problems, fmt.Sprintf("unknown slot %q", f.Key()))
	}
	if len(problems) > 0 {
		return verb.Form{}, fmt.Errorf("%w: %s", ErrMalformedForm, strings.Join(problems, "; "))
	}
	return f, nil
}
