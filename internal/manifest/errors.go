package manifest

import "errors"

var (
	ErrNilElement          = errors.New("media package element must not be nil")
	ErrMissingIdentifier   = errors.New("element has no identifier and cannot accept one")
	ErrDuplicateIdentifier = errors.New("duplicate element identifier")
	ErrMissingElementFile  = errors.New("element file is missing")
	ErrMalformedManifest   = errors.New("malformed manifest")
	ErrElementParse        = errors.New("unable to parse element")
	// ErrUnresolvableReference is never returned by lookups, which report
	// absence with a boolean. Collaborators may use it to surface one.
	ErrUnresolvableReference = errors.New("unresolvable reference")
)
