package referer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMatcher(t *testing.T, records ...Record) *Matcher {
	t.Helper()
	table, err := Build(records)
	require.NoError(t, err)
	return NewMatcher(table)
}

func TestMatcher_UnknownHost(t *testing.T) {
	m := newTestMatcher(t,
		Record{Medium: MediumSearch, Source: "Google", Domains: []string{"google.com"}, Parameters: []string{"q"}},
	)

	tests := []struct {
		name  string
		host  string
		path  string
		query string
	}{
		{"unregistered", "www.behance.net", "/gallery/x", ""},
		{"single label host", "localhost", "/", "q=x"},
		{"empty host", "", "", ""},
		{"registered suffix but different domain", "notgoogle.com", "/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Classify(tt.host, tt.path, tt.query)
			assert.Equal(t, Unknown, got)
			assert.False(t, got.Known())
		})
	}
}

func TestMatcher_HostStripping(t *testing.T) {
	// Given: only the apex domain is registered
	m := newTestMatcher(t,
		Record{Medium: MediumSearch, Source: "Google", Domains: []string{"google.com"}, Parameters: []string{"q"}},
	)

	// Then: every depth of subdomain resolves to the apex entry
	want := m.Classify("google.com", "/", "")
	for _, host := range []string{"xxx.google.com", "a.b.c.google.com", "www.google.com"} {
		assert.Equal(t, want, m.Classify(host, "/", ""), host)
	}
	assert.Equal(t, Classification{Medium: MediumSearch, Source: "Google"}, want)
}

func TestMatcher_IntermediateEntryWinsOverApex(t *testing.T) {
	m := newTestMatcher(t,
		Record{Medium: MediumSearch, Source: "Google", Domains: []string{"google.com"}, Parameters: []string{"q"}},
		Record{Medium: MediumEmail, Source: "Gmail", Domains: []string{"mail.google.com"}},
	)

	assert.Equal(t, "Gmail", m.Classify("x.mail.google.com", "/mail/u/0", "").Source)
	assert.Equal(t, "Google", m.Classify("x.google.com", "/", "").Source)
}

func TestMatcher_PathQualifiedEntryWins(t *testing.T) {
	m := newTestMatcher(t,
		Record{Medium: MediumSearch, Source: "Google", Domains: []string{"google.com"}, Parameters: []string{"q"}},
		Record{Medium: MediumSearch, Source: "Google Images", Domains: []string{"google.com/imgres"}, Parameters: []string{"q"}},
	)

	tests := []struct {
		name string
		host string
		path string
		want string
	}{
		{"exact path key", "google.com", "/imgres", "Google Images"},
		{"first segment key", "google.com", "/imgres/more/segments", "Google Images"},
		{"path key after stripping", "www.google.com", "/imgres", "Google Images"},
		{"other path falls back to domain", "google.com", "/search", "Google"},
		{"empty path uses domain", "www.google.com", "", "Google"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Classify(tt.host, tt.path, "").Source)
		})
	}
}

func TestMatcher_FullPathKey(t *testing.T) {
	// Given: a key with the full path, not just the first segment
	m := newTestMatcher(t,
		Record{Medium: MediumSocial, Source: "Short Links", Domains: []string{"example.com/go/x"}},
	)

	assert.Equal(t, "Short Links", m.Classify("example.com", "/go/x", "").Source)
	assert.Equal(t, Unknown, m.Classify("example.com", "/go/y", ""))
}

func TestMatcher_DeepPathMatchBeatsShallowDomainMatch(t *testing.T) {
	// Given: a path-qualified entry at the apex and a domain-only entry on
	// the exact host
	m := newTestMatcher(t,
		Record{Medium: MediumSearch, Source: "Path Engine", Domains: []string{"example.com/find"}, Parameters: []string{"q"}},
		Record{Medium: MediumSocial, Source: "Sub Site", Domains: []string{"sub.example.com"}},
	)

	// When: the URL matches both
	got := m.Classify("sub.example.com", "/find", "q=term")

	// Then: the path-aware pass, which runs over all host levels first, wins
	assert.Equal(t, Classification{Medium: MediumSearch, Source: "Path Engine", Term: "term"}, got)

	// And: without the path the domain-only entry applies
	assert.Equal(t, "Sub Site", m.Classify("sub.example.com", "/other", "").Source)
}

func TestMatcher_SearchTermExtraction(t *testing.T) {
	m := newTestMatcher(t,
		Record{Medium: MediumSearch, Source: "Engine", Domains: []string{"engine.com"}, Parameters: []string{"q", "query", "p"}},
	)

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"plus decodes to space", "q=gateway+oracle+cards&hl=en", "gateway oracle cards"},
		{"percent decoding", "q=Gothic%20Tarot%20Cards", "Gothic Tarot Cards"},
		{"second parameter", "hl=en&query=pendulums", "pendulums"},
		{"parameter order beats query order", "p=later&query=first", "first"},
		{"first value of repeated parameter", "q=one&q=two", "one"},
		{"no recognized parameter", "hl=en&client=safari", ""},
		{"present empty value stops the search", "q=&query=fallback", ""},
		{"absent parameter falls through", "hl=en&query=fallback", "fallback"},
		{"only empty value", "q=", ""},
		{"url as value", "q=http://example.com/&sa=D", "http://example.com/"},
		{"malformed pair ignored", "x=%zz&q=still+works", "still works"},
		{"empty query", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Classify("www.engine.com", "/search", tt.query)
			assert.Equal(t, MediumSearch, got.Medium)
			assert.Equal(t, "Engine", got.Source)
			assert.Equal(t, tt.want, got.Term)
		})
	}
}

func TestMatcher_NonSearchNeverHasTerm(t *testing.T) {
	m := newTestMatcher(t,
		Record{Medium: MediumSocial, Source: "Facebook", Domains: []string{"facebook.com"}},
		Record{Medium: MediumEmail, Source: "Outlook.com", Domains: []string{"mail.live.com"}},
		Record{Medium: MediumInternal, Domains: []string{"example.com"}},
	)

	for _, host := range []string{"www.facebook.com", "co1.mail.live.com", "www.example.com"} {
		got := m.Classify(host, "/l.php", "q=search+words&u=http%3A%2F%2Fx")
		assert.Empty(t, got.Term, host)
		assert.True(t, got.Known(), host)
	}
}

func TestMatcher_NilTable(t *testing.T) {
	assert.Equal(t, Unknown, NewMatcher(nil).Classify("www.google.com", "/", ""))

	var m *Matcher
	assert.Equal(t, Unknown, m.Classify("www.google.com", "/", ""))
}

func TestMatcher_ConcurrentClassify(t *testing.T) {
	m := newTestMatcher(t,
		Record{Medium: MediumSearch, Source: "Google", Domains: []string{"google.com"}, Parameters: []string{"q"}},
	)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				got := m.Classify("www.google.com", "/search", "q=concurrent")
				assert.Equal(t, "concurrent", got.Term)
			}
		}()
	}
	wg.Wait()
}
