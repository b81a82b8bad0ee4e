package referer

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNoHost is returned by ClassifyURL for URLs without a host.
var ErrNoHost = errors.New("referer URL has no host")

// ClassifyURL parses raw as an absolute URL and classifies it with c.
//
// The hostname is lowercased and any port is dropped. The decoded path and
// the raw query are passed to c unchanged. An error is returned only when
// raw cannot be parsed or carries no host.
func ClassifyURL(c Classifier, raw string) (Classification, error) {
	host, path, query, err := SplitURL(raw)
	if err != nil {
		return Unknown, err
	}
	return c.Classify(host, path, query), nil
}

// SplitURL decomposes raw into the host, path and query that Classify
// expects.
func SplitURL(raw string) (host, path, query string, err error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", "", "", fmt.Errorf("parse referer URL: %w", err)
	}
	host = strings.ToLower(u.Hostname())
	if host == "" {
		return "", "", "", fmt.Errorf("%w: %q", ErrNoHost, raw)
	}
	return host, u.Path, u.RawQuery, nil
}
