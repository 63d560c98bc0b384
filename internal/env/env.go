package env

import (
	"os"
	"strings"

	"github.com/ekisa-team/arniepye/internal/envvar"
)

// Environment is the runtime environment the tool runs in.
type Environment string

const (
	// Development enables colored, verbose console output.
	Development Environment = "development"

	// Production is the default environment.
	Production Environment = "production"
)

// FromEnv reads the environment from ARNIE_ENV, defaulting to Production.
func FromEnv() Environment {
	return Parse(os.Getenv(envvar.ArnieEnv))
}

// Parse converts a string to an Environment, defaulting to Production.
func Parse(s string) Environment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dev", "development":
		return Development
	default:
		return Production
	}
}

// IsDevelopment reports whether e is the development environment.
func (e Environment) IsDevelopment() bool {
	return e == Development
}
