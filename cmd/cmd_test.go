package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/abhisek/conjuga/internal/spacedrep"
	"github.com/abhisek/conjuga/internal/verb"
)

func TestParseCell(t *testing.T) {
	tests := []struct {
		in      string
		want    spacedrep.Cell
		wantErr bool
	}{
		{in: "indicative|pres|1s", want: spacedrep.Cell{Mood: verb.MoodIndicative, Tense: verb.TensePresent, Person: verb.FirstSingular}},
		{in: "nonfinite|ger|nf", want: spacedrep.Cell{Mood: verb.MoodNonfinite, Tense: verb.TenseGerund, Person: verb.PersonNonfinite}},
		{in: "indicative|pres", wantErr: true},
		{in: "indicative||1s", wantErr: true},
		{in: "imperative|impMixed|3s", wantErr: true},
		{in: "indicative|pres|4s", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseCell(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseCell(%q) = %+v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseCell(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("parseCell(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoadPackPath(t *testing.T) {
	dir := t.TempDir()
	pack := []byte(`version: 1.0.0
name: extra
forms:
  - lemma: cantar
    mood: indicative
    tense: pres
    person: 1s
    value: canto
`)
	if err := os.WriteFile(filepath.Join(dir, "extra.yaml"), pack, 0o644); err != nil {
		t.Fatal(err)
	}

	packs, err := loadPackPath(dir)
	if err != nil {
		t.Fatalf("load dir: %v", err)
	}
	if len(packs) != 1 || packs[0].Name != "extra" {
		t.Fatalf("packs = %+v", packs)
	}

	if _, err := loadPackPath(filepath.Join(dir, "extra.yaml")); err != nil {
		t.Errorf("load file: %v", err)
	}
	if _, err := loadPackPath(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("missing pack loaded")
	}
	if _, err := loadPackPath(t.TempDir()); err == nil {
		t.Error("empty directory loaded")
	}
}

func TestNewRand_Seeded(t *testing.T) {
	a, b := newRand(42), newRand(42)
	for i := 0; i < 5; i++ {
		if a.Uint64() != b.Uint64() {
			t.Fatal("same seed produced different sequences")
		}
	}
}
