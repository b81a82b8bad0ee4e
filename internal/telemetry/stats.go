// Package telemetry aggregates referer traffic statistics in memory: counts
// per medium, the busiest sources, the most frequent search terms and the
// most recent hosts no source matched. Nothing is reported externally.
package telemetry

import (
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Aman-CERP/referer-parser/pkg/referer"
)

// Config bounds the memory used by Stats.
type Config struct {
	TopCapacity     int // sources and terms tracked (default: 100)
	UnknownCapacity int // recent unknown hosts kept (default: 50)
}

// DefaultConfig returns the default bounds.
func DefaultConfig() Config {
	return Config{TopCapacity: 100, UnknownCapacity: 50}
}

// SourceCount is a source and how many referers it matched.
type SourceCount struct {
	Medium referer.Medium `json:"medium"`
	Source string         `json:"source"`
	Count  int64          `json:"count"`
}

// TermCount is a search term and its frequency.
type TermCount struct {
	Term  string `json:"term"`
	Count int64  `json:"count"`
}

// Snapshot is a point-in-time copy of the statistics.
type Snapshot struct {
	Total         int64                    `json:"total"`
	Unparsed      int64                    `json:"unparsed"`
	Media         map[referer.Medium]int64 `json:"media"`
	TopSources    []SourceCount            `json:"top_sources"`
	TopTerms      []TermCount              `json:"top_terms"`
	RecentUnknown []string                 `json:"recent_unknown_hosts"`
	Since         time.Time                `json:"since"`
}

// KnownPercentage returns the share of parsed referers that matched a source.
func (s *Snapshot) KnownPercentage() float64 {
	parsed := s.Total - s.Unparsed
	if parsed <= 0 {
		return 0
	}
	return float64(parsed-s.Media[referer.MediumUnknown]) / float64(parsed) * 100
}

type sourceKey struct {
	medium referer.Medium
	source string
}

// Stats collects referer statistics. Safe for concurrent use.
type Stats struct {
	mu sync.Mutex

	media    map[referer.Medium]int64
	sources  *lru.Cache[sourceKey, int64]
	terms    *lru.Cache[string, int64]
	unknown  *CircularBuffer[string]
	total    int64
	unparsed int64
	since    time.Time
}

// New creates a collector with the default configuration.
func New() *Stats {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a collector with custom bounds. Once a bound is
// reached the least recently seen source or term is forgotten.
func NewWithConfig(cfg Config) *Stats {
	if cfg.TopCapacity <= 0 {
		cfg.TopCapacity = 100
	}
	if cfg.UnknownCapacity <= 0 {
		cfg.UnknownCapacity = 50
	}

	sources, _ := lru.New[sourceKey, int64](cfg.TopCapacity)
	terms, _ := lru.New[string, int64](cfg.TopCapacity)

	return &Stats{
		media:   make(map[referer.Medium]int64),
		sources: sources,
		terms:   terms,
		unknown: NewCircularBuffer[string](cfg.UnknownCapacity),
		since:   time.Now(),
	}
}

// Record counts one classified referer. err is the parse error for raw, if
// any; unparsed referers are counted separately from media.
func (s *Stats) Record(raw string, c referer.Classification, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total++
	if err != nil {
		s.unparsed++
		return
	}

	s.media[c.Medium]++

	if !c.Known() {
		if host, _, _, err := referer.SplitURL(raw); err == nil {
			s.unknown.Add(host)
		}
		return
	}

	if c.Source != "" {
		k := sourceKey{c.Medium, c.Source}
		n, _ := s.sources.Get(k)
		s.sources.Add(k, n+1)
	}

	if term := normalizeTerm(c.Term); term != "" {
		n, _ := s.terms.Get(term)
		s.terms.Add(term, n+1)
	}
}

// normalizeTerm lowercases term and collapses whitespace.
func normalizeTerm(term string) string {
	return strings.Join(strings.Fields(strings.ToLower(term)), " ")
}

// Snapshot returns the current statistics. Sources and terms are sorted by
// count descending, then by name.
func (s *Stats) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	media := make(map[referer.Medium]int64, len(s.media))
	for k, v := range s.media {
		media[k] = v
	}

	sources := make([]SourceCount, 0, s.sources.Len())
	for _, k := range s.sources.Keys() {
		if n, ok := s.sources.Peek(k); ok {
			sources = append(sources, SourceCount{Medium: k.medium, Source: k.source, Count: n})
		}
	}
	sort.Slice(sources, func(i, j int) bool {
		if sources[i].Count != sources[j].Count {
			return sources[i].Count > sources[j].Count
		}
		return sources[i].Source < sources[j].Source
	})

	terms := make([]TermCount, 0, s.terms.Len())
	for _, k := range s.terms.Keys() {
		if n, ok := s.terms.Peek(k); ok {
			terms = append(terms, TermCount{Term: k, Count: n})
		}
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Count != terms[j].Count {
			return terms[i].Count > terms[j].Count
		}
		return terms[i].Term < terms[j].Term
	})

	return &Snapshot{
		Total:         s.total,
		Unparsed:      s.unparsed,
		Media:         media,
		TopSources:    sources,
		TopTerms:      terms,
		RecentUnknown: s.unknown.Items(),
		Since:         s.since,
	}
}

// Reset clears all statistics.
func (s *Stats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.media)
	s.sources.Purge()
	s.terms.Purge()
	s.unknown.Clear()
	s.total = 0
	s.unparsed = 0
	s.since = time.Now()
}
