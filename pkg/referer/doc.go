// Package referer classifies HTTP referers into a traffic medium, a named
// source and, for search engines, the search term the visitor typed.
//
// The package is pure: it never reads files or touches the network. A
// [Table] is built once from [Record] values supplied by a loader (see
// internal/dataset for the YAML/JSON loader used by the CLI) and is read-only
// afterwards, so a single [Matcher] can be shared by any number of goroutines.
//
// # Matching
//
// Classification walks the table twice:
//
//  1. Path-aware pass: host+path, then host+"/"+first path segment. On a
//     miss the leftmost host label is stripped and the lookup repeats until
//     the host has no dot left.
//  2. Domain-only pass: the same host stripping with the bare host as key.
//
// A path-aware hit always wins, even if it was found at a shallower host
// than a domain-only hit would have been. Stripping means any subdomain of a
// registered domain is attributed to that domain, which produces some known
// false positives (xxx.google.com is "Google" search traffic).
//
// # Usage
//
//	table, err := referer.Build(records)
//	if err != nil {
//	    return err
//	}
//	m := referer.NewMatcher(table)
//	c := m.Classify("www.google.com", "/search", "q=golang+referer")
//	// c.Medium == referer.MediumSearch, c.Source == "Google", c.Term == "golang referer"
package referer
