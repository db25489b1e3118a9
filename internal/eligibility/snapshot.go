package eligibility

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/abhisek/conjuga/internal/verb"
)

// SnapshotVersion is the format version written by Export.
const SnapshotVersion = "v1.0.0"

var (
	// ErrIncompatibleSnapshot means the stored format cannot be read.
	ErrIncompatibleSnapshot = errors.New("incompatible eligibility snapshot")
	// ErrCorruptSnapshot means the snapshot references forms the pool lacks.
	ErrCorruptSnapshot = errors.New("corrupt eligibility snapshot")
)

// Snapshot is the persisted form of the filter cache.
type Snapshot struct {
	Version string          `json:"version"`
	Entries []SnapshotEntry `json:"entries"`
}

// SnapshotEntry is one cached result, stored as form IDs.
type SnapshotEntry struct {
	Key     string   `json:"key"`
	FormIDs []string `json:"form_ids"`
}

// Export captures the current cache contents.
func (f *Filter) Export() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	keys := make([]string, 0, len(f.live))
	for k := range f.live {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	snap := Snapshot{Version: SnapshotVersion}
	for _, k := range keys {
		forms := f.live[k]
		ids := make([]string, len(forms))
		for i, form := range forms {
			ids[i] = form.ID()
		}
		snap.Entries = append(snap.Entries, SnapshotEntry{Key: k, FormIDs: ids})
	}
	return snap
}

// Import loads a snapshot for the given pool. Entries for other pools are
// ignored. A snapshot with an incompatible version, or any entry referencing
// a form missing from the pool, is rejected as a whole and the cache is left
// untouched.
func (f *Filter) Import(pool *verb.Pool, snap Snapshot) error {
	if !semver.IsValid(snap.Version) || semver.Major(snap.Version) != semver.Major(SnapshotVersion) {
		return fmt.Errorf("%w: version %q", ErrIncompatibleSnapshot, snap.Version)
	}

	prefix := pool.Fingerprint() + "#"
	loaded := make(map[string][]verb.Form)
	for _, e := range snap.Entries {
		if !strings.HasPrefix(e.Key, prefix) {
			continue
		}
		forms := make([]verb.Form, 0, len(e.FormIDs))
		for _, id := range e.FormIDs {
			form, ok := pool.Get(id)
			if !ok {
				return fmt.Errorf("%w: unknown form %q", ErrCorruptSnapshot, id)
			}
			forms = append(forms, form)
		}
		loaded[e.Key] = forms
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for k, forms := range loaded {
		f.cache.Add(k, forms)
		f.live[k] = forms
	}
	f.log.Debug("eligibility snapshot imported", "entries", len(loaded))
	return nil
}

// MarshalSnapshot encodes a snapshot for storage.
func MarshalSnapshot(s Snapshot) ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalSnapshot decodes stored bytes. Malformed data is reported as an
// incompatible snapshot so callers can drop it.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrIncompatibleSnapshot, err)
	}
	return s, nil
}
