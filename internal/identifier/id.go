package identifier

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed is returned when a string cannot be parsed under a scheme.
var ErrMalformed = errors.New("malformed identifier")

// Scheme names the textual encoding an ID was minted or parsed under.
type Scheme string

const (
	SchemeUUID   Scheme = "uuid"
	SchemeHandle Scheme = "handle"
)

// ID identifies a media package. The zero value is unset.
type ID struct {
	scheme Scheme
	value  string
}

// IsZero reports whether the identifier is unset.
func (id ID) IsZero() bool {
	return id.value == ""
}

// Scheme returns the scheme the identifier belongs to.
func (id ID) Scheme() Scheme {
	return id.scheme
}

// String returns the canonical string form.
func (id ID) String() string {
	return id.value
}

// Equal compares two identifiers by canonical form.
func (id ID) Equal(other ID) bool {
	return id.value == other.value
}

// Builder mints new identifiers and parses existing ones.
type Builder interface {
	New() (ID, error)
	Parse(value string) (ID, error)
}

// ParseWithFallback parses value with the primary builder and, on failure,
// retries with the legacy builder.
func ParseWithFallback(value string, primary, legacy Builder) (ID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return ID{}, fmt.Errorf("%w: empty value", ErrMalformed)
	}
	id, primaryErr := primary.Parse(value)
	if primaryErr == nil {
		return id, nil
	}
	if legacy == nil {
		return ID{}, primaryErr
	}
	id, legacyErr := legacy.Parse(value)
	if legacyErr != nil {
		return ID{}, fmt.Errorf("%w: %q is neither %s nor %s", ErrMalformed, value, primaryErr, legacyErr)
	}
	return id, nil
}
