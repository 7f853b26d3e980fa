package idgen

import "github.com/google/uuid"

// NewFunc produces the identifiers handed out for sessions and graph runs.
// It is a package-level variable so tests can swap in a deterministic
// generator.
var NewFunc = func() string {
	return uuid.New().String()
}

// New returns a fresh opaque identifier.
func New() string {
	return NewFunc()
}
