package referer

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

// Build errors. They are returned wrapped in a *RecordError.
var (
	// ErrMissingDomains is returned for a record with an empty domain list.
	ErrMissingDomains = errors.New("no domains found for referer")

	// ErrMissingParameters is returned for a search record without parameters.
	ErrMissingParameters = errors.New("no parameters found for search referer")

	// ErrUnexpectedParameters is returned for a non-search record whose
	// parameter list is present, even when it is empty.
	ErrUnexpectedParameters = errors.New("parameters not supported for non-search referer")

	// ErrUnknownMedium is returned for a medium name outside StoredMedia.
	ErrUnknownMedium = errors.New("unknown medium")
)

// Record is one source definition as read from a dataset: every domain in
// Domains maps to the same medium, source and parameters. A nil Parameters
// means the definition has no parameter list at all.
type Record struct {
	Medium     Medium
	Source     string
	Domains    []string
	Parameters []string
}

// Entry is the table row a domain key resolves to.
// Parameters is non-empty for search entries and empty for all others.
type Entry struct {
	Medium     Medium
	Source     string
	Parameters []string
}

// RecordError reports the record that made Build fail.
type RecordError struct {
	// Index is the position of the record in the input slice.
	Index  int
	Medium Medium
	Source string
	Err    error
}

// Error implements the error interface.
func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d (%s/%s): %v", e.Index, e.Medium, e.Source, e.Err)
}

// Unwrap returns the underlying sentinel error.
func (e *RecordError) Unwrap() error {
	return e.Err
}

// Table maps domain keys (e.g. "www.google.com" or "google.com/search") to
// entries. It is immutable once built and safe for concurrent reads.
type Table struct {
	entries map[string]Entry
}

// Build validates records and produces a Table.
//
// Records are applied in order; a domain defined by several records keeps
// the last definition. The first invalid record aborts the build and no
// table is returned.
func Build(records []Record) (*Table, error) {
	entries := make(map[string]Entry)

	for i, rec := range records {
		medium, err := validateRecord(rec)
		if err != nil {
			return nil, &RecordError{Index: i, Medium: rec.Medium, Source: rec.Source, Err: err}
		}

		entry := Entry{
			Medium: medium,
			Source: rec.Source,
		}
		if medium.IsSearch() {
			entry.Parameters = slices.Clone(rec.Parameters)
		}

		for _, domain := range rec.Domains {
			entries[domain] = entry
		}
	}

	return &Table{entries: entries}, nil
}

// validateRecord checks the Entry invariants and returns the normalized
// medium.
func validateRecord(rec Record) (Medium, error) {
	medium, err := ParseMedium(string(rec.Medium))
	if err != nil {
		return "", err
	}
	if len(rec.Domains) == 0 {
		return "", ErrMissingDomains
	}
	if medium.IsSearch() {
		if len(rec.Parameters) == 0 {
			return "", ErrMissingParameters
		}
	} else if rec.Parameters != nil {
		return "", ErrUnexpectedParameters
	}
	return medium, nil
}

// Get returns the entry registered for key.
// The returned entry is a copy; modifying it does not affect the table.
func (t *Table) Get(key string) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	e, ok := t.entries[key]
	if !ok {
		return Entry{}, false
	}
	e.Parameters = slices.Clone(e.Parameters)
	return e, true
}

// lookup is Get without the defensive copy, for the matcher's hot path.
func (t *Table) lookup(key string) (Entry, bool) {
	e, ok := t.entries[key]
	return e, ok
}

// Len returns the number of domain keys.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Domains returns all domain keys in sorted order.
func (t *Table) Domains() []string {
	if t == nil {
		return nil
	}
	domains := make([]string, 0, len(t.entries))
	for d := range t.entries {
		domains = append(domains, d)
	}
	sort.Strings(domains)
	return domains
}

// SourceInfo summarizes one named source as it ended up in the table,
// after later definitions overwrote earlier ones.
type SourceInfo struct {
	Medium     Medium   `json:"medium"`
	Source     string   `json:"source"`
	Domains    []string `json:"domains"`
	Parameters []string `json:"parameters,omitempty"`
}

// Sources groups the table's domains by medium and source, sorted by
// medium then source name. Domains within a source are sorted.
func (t *Table) Sources() []SourceInfo {
	if t == nil {
		return nil
	}

	type key struct {
		medium Medium
		source string
	}
	index := make(map[key]int)
	var out []SourceInfo

	for _, domain := range t.Domains() {
		e := t.entries[domain]
		k := key{e.Medium, e.Source}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, SourceInfo{
				Medium:     e.Medium,
				Source:     e.Source,
				Parameters: slices.Clone(e.Parameters),
			})
		}
		out[i].Domains = append(out[i].Domains, domain)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Medium != out[j].Medium {
			return mediumOrder(out[i].Medium) < mediumOrder(out[j].Medium)
		}
		return out[i].Source < out[j].Source
	})
	return out
}

func mediumOrder(m Medium) int {
	for i, s := range StoredMedia {
		if s == m {
			return i
		}
	}
	return len(StoredMedia)
}
