// Package content loads conjugation packs and serves them as the form pool.
//
// A pack is a YAML document with a semver format version, verb metadata and
// conjugation paradigms. Packs are checked against a JSON schema before they
// are decoded, then every form is normalized and validated.
package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/conjuga/internal/materialize"
	"github.com/abhisek/conjuga/internal/verb"
)

// FormatMajor is the pack format major version this build reads.
const FormatMajor = "v1"

var (
	// ErrUnsupportedVersion means the pack format major version is not FormatMajor.
	ErrUnsupportedVersion = errors.New("unsupported pack version")
	// ErrInvalidPack wraps schema and content problems.
	ErrInvalidPack = errors.New("invalid pack")
)

// Paradigm is one (mood, tense) block of a verb, keyed by person.
type Paradigm struct {
	Mood       string              `yaml:"mood"`
	Tense      string              `yaml:"tense"`
	Forms      map[string]string   `yaml:"forms"`
	Alternates map[string][]string `yaml:"alternates,omitempty"`
	// Accepted maps person to a map of accepted variant label to text.
	Accepted map[string]map[string]string `yaml:"accepted,omitempty"`
}

// VerbSpec is a verb entry of a pack.
type VerbSpec struct {
	Lemma     string     `yaml:"lemma"`
	Category  string     `yaml:"category,omitempty"`
	Frequency int        `yaml:"frequency,omitempty"`
	Irregular []string   `yaml:"irregular,omitempty"`
	Paradigms []Paradigm `yaml:"paradigms,omitempty"`
}

// Pack is a decoded content pack.
type Pack struct {
	Version     string     `yaml:"version"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Verbs       []VerbSpec `yaml:"verbs"`
	// Forms holds loose per-form records, including the legacy "form" field.
	Forms []materialize.RawForm `yaml:"forms,omitempty"`

	forms []verb.Form
	infos []verb.Info
}

// Parse decodes and validates a pack.
func Parse(data []byte) (*Pack, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse yaml: %w", ErrInvalidPack, err)
	}
	if err := validateSchema(doc); err != nil {
		return nil, err
	}

	var p Pack
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrInvalidPack, err)
	}
	if err := checkVersion(p.Version); err != nil {
		return nil, err
	}
	if err := p.build(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Load reads a pack from r.
func Load(r io.Reader) (*Pack, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pack: %w", err)
	}
	return Parse(data)
}

// LoadFile reads a pack from disk.
func LoadFile(name string) (*Pack, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read pack: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return p, nil
}

// LoadFS reads every *.yaml and *.yml file at the root of fsys, in name order.
func LoadFS(fsys fs.FS) ([]*Pack, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("list packs: %w", err)
	}
	var names []string
	for _, e := range entries {
		ext := path.Ext(e.Name())
		if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var packs []*Pack
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read pack %s: %w", name, err)
		}
		p, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		packs = append(packs, p)
	}
	return packs, nil
}

func checkVersion(v string) error {
	sv := "v" + strings.TrimPrefix(v, "v")
	if !semver.IsValid(sv) {
		return fmt.Errorf("%w: %q is not a semantic version", ErrUnsupportedVersion, v)
	}
	if semver.Major(sv) != FormatMajor {
		return fmt.Errorf("%w: %s, want %s.x", ErrUnsupportedVersion, v, FormatMajor)
	}
	return nil
}

// build normalizes forms and verb metadata, collecting every problem.
func (p *Pack) build() error {
	var errs []string
	seen := make(map[string]bool)

	for _, v := range p.Verbs {
		lemma := strings.TrimSpace(v.Lemma)
		if seen[lemma] {
			errs = append(errs, fmt.Sprintf("duplicate verb %q", lemma))
			continue
		}
		seen[lemma] = true

		info := verb.Info{Lemma: lemma, Category: v.Category, Frequency: v.Frequency}
		for _, t := range v.Irregular {
			tense := verb.Tense(t)
			if !knownTense(tense) {
				errs = append(errs, fmt.Sprintf("%s: unknown irregular tense %q", lemma, t))
				continue
			}
			info.IrregularTenses = append(info.IrregularTenses, tense)
		}
		p.infos = append(p.infos, info)

		for _, pd := range v.Paradigms {
			for _, person := range sortedKeys(pd.Forms) {
				f, err := materialize.Normalize(materialize.RawForm{
					Lemma:            lemma,
					Mood:             pd.Mood,
					Tense:            pd.Tense,
					Person:           person,
					Value:            pd.Forms[person],
					Alternates:       pd.Alternates[person],
					AcceptedVariants: pd.Accepted[person],
				})
				if err != nil {
					errs = append(errs, fmt.Sprintf("%s %s|%s %s: %v", lemma, pd.Mood, pd.Tense, person, err))
					continue
				}
				p.forms = append(p.forms, f)
			}
		}
	}

	for i, raw := range p.Forms {
		f, err := materialize.Normalize(raw)
		if err != nil {
			errs = append(errs, fmt.Sprintf("forms[%d]: %v", i, err))
			continue
		}
		if !seen[f.Lemma] {
			seen[f.Lemma] = true
			p.infos = append(p.infos, verb.Info{Lemma: f.Lemma})
		}
		p.forms = append(p.forms, f)
	}

	ids := make(map[string]bool, len(p.forms))
	for _, f := range p.forms {
		if ids[f.ID()] {
			errs = append(errs, fmt.Sprintf("duplicate form %s", f.ID()))
		}
		ids[f.ID()] = true
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: pack %q validation failed:\n  %s", ErrInvalidPack, p.Name, strings.Join(errs, "\n  "))
	}
	return nil
}

// FormsList returns the normalized forms of the pack.
func (p *Pack) FormsList() []verb.Form {
	return p.forms
}

// Infos returns the verb metadata of the pack.
func (p *Pack) Infos() []verb.Info {
	return p.infos
}

func knownTense(t verb.Tense) bool {
	for _, m := range verb.AllMoods() {
		for _, mt := range verb.TensesOf(m) {
			if mt == t {
				return true
			}
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// toJSONValue converts a YAML document into the value shapes the schema
// validator expects.
func toJSONValue(doc any) (any, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out any
	dec := json.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
