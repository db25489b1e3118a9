package verb

import (
	"slices"
	"sort"
)

// Info holds per-verb metadata used by the scheduler.
type Info struct {
	Lemma string
	// IrregularTenses lists the tenses in which the verb is irregular.
	// Compound tenses follow the participle.
	IrregularTenses []Tense
	// Category is a coarse semantic bucket ("motion", "communication", ...).
	Category string
	// Frequency is a 1-based frequency rank; lower is more common. Zero means unknown.
	Frequency int
}

// Catalog is a read-only lookup of verb metadata, built once and shared.
type Catalog struct {
	byLemma  map[string]*Info
	irreg    map[string]map[Tense]bool
	maxFreq  int
	category map[string]string
}

// NewCatalog builds a catalog from verb metadata. Later entries for the same
// lemma replace earlier ones.
func NewCatalog(infos []Info) *Catalog {
	c := &Catalog{
		byLemma:  make(map[string]*Info, len(infos)),
		irreg:    make(map[string]map[Tense]bool, len(infos)),
		category: make(map[string]string, len(infos)),
	}
	for i := range infos {
		info := infos[i]
		info.IrregularTenses = slices.Clone(info.IrregularTenses)
		c.byLemma[info.Lemma] = &info

		set := make(map[Tense]bool, len(info.IrregularTenses))
		for _, t := range info.IrregularTenses {
			set[t] = true
		}
		c.irreg[info.Lemma] = set
		c.category[info.Lemma] = info.Category
		if info.Frequency > c.maxFreq {
			c.maxFreq = info.Frequency
		}
	}
	return c
}

// Lookup returns the metadata for a lemma.
func (c *Catalog) Lookup(lemma string) (Info, bool) {
	if c == nil {
		return Info{}, false
	}
	info, ok := c.byLemma[lemma]
	if !ok {
		return Info{}, false
	}
	out := *info
	out.IrregularTenses = slices.Clone(info.IrregularTenses)
	return out, true
}

// Lemmas returns all known lemmas, sorted.
func (c *Catalog) Lemmas() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.byLemma))
	for l := range c.byLemma {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// IsIrregular reports whether the verb is irregular in the given tense.
// Compound tenses inherit the participle's irregularity. Unknown verbs are regular.
func (c *Catalog) IsIrregular(lemma string, t Tense) bool {
	if c == nil {
		return false
	}
	set := c.irreg[lemma]
	if set == nil {
		return false
	}
	if t.IsCompound() {
		return set[TenseParticiple]
	}
	return set[t]
}

// TypeOf returns the per-tense classification of a form.
func (c *Catalog) TypeOf(f Form) Type {
	if c.IsIrregular(f.Lemma, f.Tense) {
		return Irregular
	}
	return Regular
}

// Category returns the semantic category of a verb, or "" when unknown.
func (c *Catalog) Category(lemma string) string {
	if c == nil {
		return ""
	}
	return c.category[lemma]
}

// PriorityOf maps the frequency rank to [0,1]; the most common verb scores 1.
// Unknown verbs get a neutral 0.5.
func (c *Catalog) PriorityOf(lemma string) float64 {
	if c == nil {
		return 0.5
	}
	info, ok := c.byLemma[lemma]
	if !ok || info.Frequency <= 0 || c.maxFreq <= 1 {
		return 0.5
	}
	return 1 - float64(info.Frequency-1)/float64(c.maxFreq)
}
