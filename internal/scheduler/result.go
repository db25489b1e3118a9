package scheduler

import (
	"errors"

	"github.com/abhisek/conjuga/internal/materialize"
	"github.com/abhisek/conjuga/internal/verb"
)

// Method records which tier produced a result.
type Method string

const (
	MethodDouble        Method = "double"
	MethodDue           Method = "due"
	MethodAdaptive      Method = "adaptive"
	MethodVariety       Method = "variety"
	MethodRelaxVerbType Method = "fallback_relax_verb_type"
	MethodRelaxPerson   Method = "fallback_relax_person"
	MethodDirectScan    Method = "fallback_direct_scan"
	MethodDefaultTense  Method = "fallback_default_tense"
	MethodSentinel      Method = "sentinel"
	MethodRejected      Method = "rejected"
	MethodBusy          Method = "busy"
)

// IsFallback reports whether the method belongs to the fallback cascade.
func (m Method) IsFallback() bool {
	switch m {
	case MethodRelaxVerbType, MethodRelaxPerson, MethodDirectScan, MethodDefaultTense, MethodSentinel:
		return true
	}
	return false
}

var (
	// ErrBusy is returned when a call overlaps one already in flight.
	ErrBusy = errors.New("scheduler busy: a selection is already in progress")
	// ErrDataUnavailable means the pool was empty or could not be loaded.
	ErrDataUnavailable = errors.New("form pool unavailable")
	// ErrNoEligibleForms means the filters removed every form.
	ErrNoEligibleForms = errors.New("no eligible forms")
	// ErrExhaustedFallbacks means every fallback failed; the result is a sentinel.
	ErrExhaustedFallbacks = errors.New("all fallbacks exhausted")
)

// Result is the outcome of one selection. Next never returns a nil Result.
type Result struct {
	Chosen verb.Form
	// Second is set for double-mode results.
	Second *verb.Form
	Method Method
	// IsFallback is set when the cascade produced the result.
	IsFallback bool
	// IsSentinel marks a synthetic item; Chosen is zero.
	IsSentinel bool
	// Rejected marks a configuration rejected by validation.
	Rejected   bool
	Item       materialize.Item
	SecondItem *materialize.Item
	// Reason carries tier context: the due item ID, the recommendation
	// reason or the sentinel cause.
	Reason string
}

// Forms returns the real forms of the result.
func (r *Result) Forms() []verb.Form {
	if r == nil || r.IsSentinel {
		return nil
	}
	out := []verb.Form{r.Chosen}
	if r.Second != nil {
		out = append(out, *r.Second)
	}
	return out
}
