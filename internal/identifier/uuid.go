package identifier

import (
	"fmt"

	"github.com/google/uuid"
)

// UUIDBuilder mints random UUID identifiers.
type UUIDBuilder struct{}

// New returns a fresh random identifier.
func (UUIDBuilder) New() (ID, error) {
	value, err := uuid.NewRandom()
	if err != nil {
		return ID{}, fmt.Errorf("generate uuid: %w", err)
	}
	return ID{scheme: SchemeUUID, value: value.String()}, nil
}

// Parse accepts any UUID form understood by google/uuid and normalises it to
// the canonical lower-case hyphenated string.
func (UUIDBuilder) Parse(value string) (ID, error) {
	parsed, err := uuid.Parse(value)
	if err != nil {
		return ID{}, fmt.Errorf("%w: uuid: %v", ErrMalformed, err)
	}
	return ID{scheme: SchemeUUID, value: parsed.String()}, nil
}
