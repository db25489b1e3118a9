package verb

import (
	"hash/fnv"
	"strconv"
)

// Pool is an immutable, indexed set of candidate forms.
type Pool struct {
	forms       []Form
	byID        map[string]int
	fingerprint string
}

// NewPool indexes forms. Duplicate IDs keep the first occurrence so the
// pool stays unique per (lemma, mood, tense, person).
func NewPool(forms []Form) *Pool {
	p := &Pool{
		forms: make([]Form, 0, len(forms)),
		byID:  make(map[string]int, len(forms)),
	}
	h := fnv.New64a()
	for _, f := range forms {
		if f.Value == "" {
			continue
		}
		id := f.ID()
		if _, dup := p.byID[id]; dup {
			continue
		}
		p.byID[id] = len(p.forms)
		p.forms = append(p.forms, f)
		h.Write([]byte(id))
		h.Write([]byte{0})
	}
	p.fingerprint = strconv.FormatUint(h.Sum64(), 16) + ":" + strconv.Itoa(len(p.forms))
	return p
}

// Forms returns the pool contents. The slice must not be modified.
func (p *Pool) Forms() []Form {
	if p == nil {
		return nil
	}
	return p.forms
}

// Len returns the number of forms.
func (p *Pool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.forms)
}

// Get returns the form with the given ID.
func (p *Pool) Get(id string) (Form, bool) {
	if p == nil {
		return Form{}, false
	}
	i, ok := p.byID[id]
	if !ok {
		return Form{}, false
	}
	return p.forms[i], true
}

// Contains reports whether a form with the same ID is in the pool.
func (p *Pool) Contains(f Form) bool {
	_, ok := p.Get(f.ID())
	return ok
}

// Fingerprint summarizes pool identity for cache keys.
func (p *Pool) Fingerprint() string {
	if p == nil {
		return "empty"
	}
	return p.fingerprint
}
