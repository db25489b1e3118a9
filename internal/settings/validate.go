package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/conjuga/internal/verb"
)

// ErrInvalidConfiguration is the root of every settings validation failure.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// ValidationError lists every problem found in a settings snapshot.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration:\n  %s", strings.Join(e.Problems, "\n  "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidConfiguration }

// Validate checks the settings and reports all problems at once.
// An empty region is accepted and read as la_general.
func (s Settings) Validate() error {
	var errs []string

	if !s.Level.Valid() {
		errs = append(errs, fmt.Sprintf("level %q is not one of A1..C2 or ALL", s.Level))
	}
	if s.Region != "" && !s.Region.Valid() {
		errs = append(errs, fmt.Sprintf("unknown region %q", s.Region))
	}
	switch s.verbType() {
	case VerbTypeAll, VerbTypeRegular, VerbTypeIrregular:
	default:
		errs = append(errs, fmt.Sprintf("unknown verb type %q", s.VerbType))
	}

	switch p := s.Practice.(type) {
	case nil, Mixed:
	case Specific:
		if p.Target.IsZero() {
			errs = append(errs, "specific practice requires a target mood")
		} else if !verb.ValidTopic(p.Target) {
			errs = append(errs, fmt.Sprintf("unknown specific target %q", p.Target))
		}
	case Review:
		if p.Tense != "" && p.Mood == "" {
			errs = append(errs, "review tense filter requires a mood")
		} else if p.Mood != "" && !verb.ValidTopic(p.Filter()) {
			errs = append(errs, fmt.Sprintf("unknown review filter %q", p.Filter()))
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Problems: errs}
	}
	return nil
}

// Normalized fills defaults for optional fields without changing meaning.
func (s Settings) Normalized() Settings {
	if s.Region == "" {
		s.Region = RegionLatAm
	}
	if s.VerbType == "" {
		s.VerbType = VerbTypeAll
	}
	if s.Practice == nil {
		s.Practice = Mixed{}
	}
	return s
}
