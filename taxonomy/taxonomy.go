// Package taxonomy holds the catalog of job and service categories, their
// keywords, keyword synonyms and the known locations used for suggestions.
//
// The default catalog is compiled into the binary and decoded once on first
// use. A Taxonomy is immutable after it is built; accessors hand out copies.
package taxonomy

import (
	"bytes"
	_ "embed"
	"io"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
)

// Priority bounds. 1 marks the most specific categories, 3 the catch-all.
const (
	MinPriority = 1
	MaxPriority = 3
)

//go:embed taxonomy.toml
var embedded []byte

// Entry is a single category of the catalog.
type Entry struct {
	Name     string   `json:"name" toml:"name"`
	Icon     string   `json:"icon" toml:"icon"`
	Priority int      `json:"priority" toml:"priority"`
	Keywords []string `json:"keywords" toml:"keywords"`
}

// file mirrors the TOML layout.
type file struct {
	Locations  []string            `toml:"locations"`
	Synonyms   map[string][]string `toml:"synonyms"`
	Categories []Entry             `toml:"category"`
}

// Taxonomy is a read-only category catalog.
type Taxonomy struct {
	entries   []Entry
	byName    map[string]int
	synonyms  map[string][]string
	locations []string
}

var loadDefault = sync.OnceValues(func() (*Taxonomy, error) {
	return Load(bytes.NewReader(embedded))
})

// Default returns the compiled-in catalog. It panics if the embedded data
// is malformed, which is a build defect rather than a runtime condition.
func Default() *Taxonomy {
	t, err := loadDefault()
	if err != nil {
		panic(errors.Wrap(err, "taxonomy: embedded catalog"))
	}
	return t
}

// LoadFile reads a catalog from a TOML file on disk.
func LoadFile(path string) (*Taxonomy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open taxonomy file %s", path)
	}
	defer f.Close()

	t, err := Load(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load taxonomy file %s", path)
	}
	return t, nil
}

// Load decodes and validates a TOML catalog. Keywords, synonyms and
// synonym keys are trimmed and lowercased; duplicate keywords within a
// category are dropped.
func Load(r io.Reader) (*Taxonomy, error) {
	var raw file
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "failed to decode taxonomy")
	}
	if len(raw.Categories) == 0 {
		return nil, errors.New("taxonomy has no categories")
	}

	t := &Taxonomy{
		entries:  make([]Entry, 0, len(raw.Categories)),
		byName:   make(map[string]int, len(raw.Categories)),
		synonyms: make(map[string][]string, len(raw.Synonyms)),
	}

	for i, e := range raw.Categories {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, errors.Newf("category %d has no name", i)
		}
		if _, dup := t.byName[name]; dup {
			return nil, errors.Newf("duplicate category %q", name)
		}
		if e.Priority < MinPriority || e.Priority > MaxPriority {
			return nil, errors.Newf("category %q has priority %d outside [%d, %d]",
				name, e.Priority, MinPriority, MaxPriority)
		}

		keywords := normalizeTerms(e.Keywords)
		if len(keywords) == 0 {
			return nil, errors.Newf("category %q has no keywords", name)
		}

		t.byName[name] = len(t.entries)
		t.entries = append(t.entries, Entry{
			Name:     name,
			Icon:     e.Icon,
			Priority: e.Priority,
			Keywords: keywords,
		})
	}

	for key, variants := range raw.Synonyms {
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			return nil, errors.New("synonym table has an empty key")
		}
		t.synonyms[key] = normalizeTerms(variants)
	}

	for _, loc := range raw.Locations {
		if loc = strings.TrimSpace(loc); loc != "" {
			t.locations = append(t.locations, loc)
		}
	}

	return t, nil
}

func normalizeTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	seen := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		out = append(out, term)
	}
	return out
}

// Entries returns every category in catalog order.
func (t *Taxonomy) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	for i, e := range t.entries {
		e.Keywords = slices.Clone(e.Keywords)
		out[i] = e
	}
	return out
}

// Lookup returns the category with the given display name.
func (t *Taxonomy) Lookup(name string) (Entry, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Entry{}, false
	}
	e := t.entries[i]
	e.Keywords = slices.Clone(e.Keywords)
	return e, true
}

// Names returns the category display names in catalog order.
func (t *Taxonomy) Names() []string {
	names := make([]string, len(t.entries))
	for i, e := range t.entries {
		names[i] = e.Name
	}
	return names
}

// Synonyms returns the alternate spellings recorded for keyword. The
// lookup is an exact match on the lowercase keyword.
func (t *Taxonomy) Synonyms(keyword string) []string {
	return slices.Clone(t.synonyms[keyword])
}

// SynonymTable returns a copy of the full synonym table.
func (t *Taxonomy) SynonymTable() map[string][]string {
	out := make(map[string][]string, len(t.synonyms))
	for k, v := range t.synonyms {
		out[k] = slices.Clone(v)
	}
	return out
}

// Locations returns the known location names in catalog order.
func (t *Taxonomy) Locations() []string {
	return slices.Clone(t.locations)
}
