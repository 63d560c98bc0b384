package artifact

import "errors"

// Error definitions for the artifact package.
var (
	ErrNotFound = errors.New("artifact not found in registry")
	ErrNoServer = errors.New("bootstrap url needs a server address but none was resolved")
)
