package installer

import "errors"

// Error definitions for the installer package.
var (
	ErrNotFound          = errors.New("installer not found in registry")
	ErrAlreadyRegistered = errors.New("installer is already registered in the registry")
)
