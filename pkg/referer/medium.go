package referer

import (
	"fmt"
	"strings"
)

// Medium is the top-level traffic category of a referer.
type Medium string

const (
	MediumSearch   Medium = "search"
	MediumSocial   Medium = "social"
	MediumEmail    Medium = "email"
	MediumInternal Medium = "internal"

	// MediumUnknown is the result for unattributed referers. It is never
	// stored in a Table.
	MediumUnknown Medium = "unknown"
)

// StoredMedia lists the media a Table entry may carry, in dataset order.
var StoredMedia = []Medium{MediumSearch, MediumSocial, MediumEmail, MediumInternal}

// String returns the medium name.
func (m Medium) String() string {
	return string(m)
}

// IsSearch reports whether m is the search medium.
func (m Medium) IsSearch() bool {
	return m == MediumSearch
}

// ParseMedium converts a dataset medium name into a Medium.
// Only the storable media are accepted; "unknown" is a result, not a
// category that can be configured.
func ParseMedium(s string) (Medium, error) {
	switch Medium(strings.ToLower(strings.TrimSpace(s))) {
	case MediumSearch:
		return MediumSearch, nil
	case MediumSocial:
		return MediumSocial, nil
	case MediumEmail:
		return MediumEmail, nil
	case MediumInternal:
		return MediumInternal, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMedium, s)
}
