package identifier

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	handleProtocol         = "hdl://"
	handlePrefix           = "10."
	DefaultHandleAuthority = "10.0000"
)

var handlePattern = regexp.MustCompile(`^(?:` + regexp.QuoteMeta(handleProtocol) + `)?(10\.\d{4})/(.+)$`)

// HandleBuilder parses and mints legacy handle identifiers of the form
// "10.NNNN/local-name".
type HandleBuilder struct {
	// Authority is the naming authority used for minted handles.
	Authority string
}

// NewHandleBuilder returns a builder using the given naming authority,
// prefixing "10." when missing.
func NewHandleBuilder(authority string) HandleBuilder {
	authority = strings.TrimSpace(authority)
	if authority == "" {
		authority = DefaultHandleAuthority
	}
	if !strings.HasPrefix(authority, handlePrefix) {
		authority = handlePrefix + authority
	}
	return HandleBuilder{Authority: authority}
}

// New mints a handle whose local name is a random UUID.
func (b HandleBuilder) New() (ID, error) {
	authority := b.Authority
	if authority == "" {
		authority = DefaultHandleAuthority
	}
	if !handlePattern.MatchString(authority + "/x") {
		return ID{}, fmt.Errorf("%w: handle authority %q", ErrMalformed, authority)
	}
	return ID{scheme: SchemeHandle, value: authority + "/" + uuid.NewString()}, nil
}

// Parse accepts "10.NNNN/local" with an optional "hdl://" prefix. The
// canonical form drops the protocol prefix.
func (HandleBuilder) Parse(value string) (ID, error) {
	m := handlePattern.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return ID{}, fmt.Errorf("%w: handle %q", ErrMalformed, value)
	}
	return ID{scheme: SchemeHandle, value: m[1] + "/" + m[2]}, nil
}
