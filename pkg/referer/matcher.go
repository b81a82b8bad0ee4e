package referer

import (
	"net/url"
	"strings"
)

// Classification is the result of classifying one referer.
// Source and Term are empty when absent.
type Classification struct {
	Medium Medium `json:"medium"`
	Source string `json:"source,omitempty"`
	Term   string `json:"term,omitempty"`
}

// Unknown is the classification of an unattributed referer.
var Unknown = Classification{Medium: MediumUnknown}

// Known reports whether the referer matched a table entry.
func (c Classification) Known() bool {
	return c.Medium != MediumUnknown && c.Medium != ""
}

// Equal reports whether two classifications are identical.
func (c Classification) Equal(other Classification) bool {
	return c == other
}

// Classifier classifies decomposed referer URLs.
//
// Implementations must be safe for concurrent use.
type Classifier interface {
	// Classify returns the classification of the referer with the given
	// host, path and raw (still encoded) query string. It never fails.
	Classify(host, path, query string) Classification
}

// Matcher classifies referers against an immutable Table.
type Matcher struct {
	table *Table
}

// Ensure Matcher implements Classifier.
var _ Classifier = (*Matcher)(nil)

// NewMatcher creates a matcher over table. A nil table matches nothing.
func NewMatcher(table *Table) *Matcher {
	return &Matcher{table: table}
}

// Table returns the table the matcher reads from.
func (m *Matcher) Table() *Table {
	return m.table
}

// Classify implements Classifier.
func (m *Matcher) Classify(host, path, query string) Classification {
	if m == nil || m.table == nil {
		return Unknown
	}

	// Path-qualified keys (google.com/search) must win over the bare domain,
	// so the path-aware pass runs over every host suffix first.
	entry, found := m.lookup(host, path, true)
	if !found {
		entry, found = m.lookup(host, path, false)
	}
	if !found {
		return Unknown
	}

	c := Classification{Medium: entry.Medium, Source: entry.Source}
	if entry.Medium.IsSearch() && query != "" {
		c.Term = extractTerm(query, entry.Parameters)
	}
	return c
}

// lookup tries host and then each parent domain of host, stopping at the
// first hit. With includePath it tries host+path and host+"/"+first segment
// at every level, otherwise just the host.
func (m *Matcher) lookup(host, path string, includePath bool) (Entry, bool) {
	var firstSegment string
	hasSegment := false
	if includePath {
		// "" splits into one element, "/a/b" into ["", "a", "b"].
		if elems := strings.Split(path, "/"); len(elems) > 1 {
			firstSegment = elems[1]
			hasSegment = true
		}
	}

	for {
		if includePath {
			if e, ok := m.table.lookup(host + path); ok {
				return e, true
			}
			if hasSegment {
				if e, ok := m.table.lookup(host + "/" + firstSegment); ok {
					return e, true
				}
			}
		} else if e, ok := m.table.lookup(host); ok {
			return e, true
		}

		idx := strings.IndexByte(host, '.')
		if idx == -1 {
			return Entry{}, false
		}
		host = host[idx+1:]
	}
}

// extractTerm returns the first value of the first parameter in params that
// is present in query, even when that value is empty. Parameter order, not
// query order, decides precedence.
func extractTerm(query string, params []string) string {
	// ParseQuery keeps every well-formed pair even when it reports an
	// error for a malformed one.
	values, _ := url.ParseQuery(query)
	for _, p := range params {
		if vs, ok := values[p]; ok && len(vs) > 0 {
			return vs[0]
		}
	}
	return ""
}
