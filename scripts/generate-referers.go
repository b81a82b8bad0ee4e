//go:build ignore

// Package main generates a synthetic referer URL corpus for benchmarking.
// Usage: go run scripts/generate-referers.go -n 100000 -output testdata/referers.txt
//
// URLs are drawn from the embedded dataset's domains, with search terms on
// search sources, and mixed with unknown hosts and unparseable lines.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/Aman-CERP/referer-parser/internal/dataset"
	"github.com/Aman-CERP/referer-parser/pkg/referer"
)

var (
	count       = flag.Int("n", 100000, "Number of URLs to generate")
	outputPath  = flag.String("output", "-", "Output file (- for stdout)")
	seed        = flag.Int64("seed", 42, "Random seed for reproducibility")
	unknownRate = flag.Float64("unknown", 0.2, "Share of URLs on unregistered hosts")
	invalidRate = flag.Float64("invalid", 0.01, "Share of unparseable lines")
)

var words = []string{
	"tarot", "cards", "oracle", "weather", "london", "recipe", "pasta", "cheap",
	"flights", "golang", "tutorial", "news", "football", "score", "hotel", "paris",
	"review", "camera", "best", "2026", "how", "to", "fix", "bike",
}

var unknownHosts = []string{
	"www.behance.net", "blog.example.org", "news.ycombinator.com", "finance.yahoo.com",
	"intranet.corp.local", "docs.github.io",
}

var subdomains = []string{"", "", "www.", "m.", "uk.", "images."}

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(*seed))

	table, err := dataset.Default()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading dataset: %v\n", err)
		os.Exit(1)
	}
	domains := table.Domains()

	out := os.Stdout
	if *outputPath != "-" {
		if err := os.MkdirAll(filepath.Dir(*outputPath), 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
			os.Exit(1)
		}
		f, err := os.Create(*outputPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	w := bufio.NewWriter(out)
	defer w.Flush()

	for i := 0; i < *count; i++ {
		p := rng.Float64()
		switch {
		case p < *invalidRate:
			fmt.Fprintln(w, "not a url "+randomWord(rng))
		case p < *invalidRate+*unknownRate:
			fmt.Fprintln(w, "https://"+unknownHosts[rng.Intn(len(unknownHosts))]+"/"+randomWord(rng))
		default:
			key := domains[rng.Intn(len(domains))]
			entry, _ := table.Get(key)
			fmt.Fprintln(w, refererURL(rng, key, entry))
		}
	}

	if *outputPath != "-" {
		fmt.Fprintf(os.Stderr, "Generated %d URLs from %d domains in %s\n", *count, len(domains), *outputPath)
	}
}

// refererURL builds a URL that classifies to entry. Path-qualified keys
// keep their path; other hosts get a random subdomain.
func refererURL(rng *rand.Rand, key string, entry referer.Entry) string {
	host, path, _ := strings.Cut(key, "/")
	if path == "" {
		host = subdomains[rng.Intn(len(subdomains))] + host
		path = randomWord(rng)
	}

	u := url.URL{Scheme: "https", Host: host, Path: "/" + path}
	if entry.Medium.IsSearch() {
		q := url.Values{}
		q.Set(entry.Parameters[0], searchTerm(rng))
		q.Set("hl", "en")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func searchTerm(rng *rand.Rand) string {
	n := 1 + rng.Intn(4)
	terms := make([]string, n)
	for i := range terms {
		terms[i] = randomWord(rng)
	}
	return strings.Join(terms, " ")
}

func randomWord(rng *rand.Rand) string {
	return words[rng.Intn(len(words))]
}
