package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ArtifactKind represents how a downloaded artifact is executed.
type ArtifactKind string

const (
	// ArtifactKindMSI represents a Windows Installer package run through msiexec.
	ArtifactKindMSI ArtifactKind = "msi"

	// ArtifactKindEXE represents a self-contained installer executable.
	ArtifactKindEXE ArtifactKind = "exe"

	// ArtifactKindScript represents a script run by an interpreter.
	ArtifactKindScript ArtifactKind = "script"
)

// ServerPlaceholder is replaced with the server address in the bootstrap URL.
const ServerPlaceholder = "{server}"

// Config holds the main configuration for the bootstrap sequence.
type Config struct {
	Version          string              `json:"version"                     yaml:"version"`
	Server           string              `json:"server,omitempty"            yaml:"server,omitempty"`
	ServerCandidates []string            `json:"server_candidates,omitempty" yaml:"server_candidates,omitempty"`
	DownloadDir      string              `json:"download_dir,omitempty"      yaml:"download_dir,omitempty"`
	Interpreters     []InterpreterConfig `json:"interpreters"                yaml:"interpreters"`
	Bootstrap        BootstrapConfig     `json:"bootstrap"                   yaml:"bootstrap"`
	Transfer         TransferConfig      `json:"transfer"                    yaml:"transfer"`
	Install          InstallConfig       `json:"install"                     yaml:"install"`
	PauseOnFailure   bool                `json:"pause_on_failure"            yaml:"pause_on_failure"`
}

// InterpreterConfig describes one interpreter and the installers that provide it.
// Interpreters are installed in the order they are listed.
type InterpreterConfig struct {
	Name       string         `json:"name"       yaml:"name"`
	Executable string         `json:"executable" yaml:"executable"`
	Installer  ArtifactConfig `json:"installer"  yaml:"installer"`
	Extension  ArtifactConfig `json:"extension"  yaml:"extension"`
}

// ArtifactConfig holds the source location of a downloadable installer.
type ArtifactConfig struct {
	BaseURL  string       `json:"base_url"       yaml:"base_url"`
	Filename string       `json:"filename"       yaml:"filename"`
	Kind     ArtifactKind `json:"kind"           yaml:"kind"`
	Args     []string     `json:"args,omitempty" yaml:"args,omitempty"`
}

// BootstrapConfig holds the bootstrap script location and invocation options.
type BootstrapConfig struct {
	URL       string `json:"url"        yaml:"url"`
	Filename  string `json:"filename"   yaml:"filename"`
	ClearFlag string `json:"clear_flag" yaml:"clear_flag"`
}

// TransferConfig holds download retry settings.
type TransferConfig struct {
	MaxRetries int           `json:"max_retries" yaml:"max_retries"`
	RetryDelay time.Duration `json:"retry_delay" yaml:"retry_delay"`
	Timeout    time.Duration `json:"timeout"     yaml:"timeout"`
}

// InstallConfig holds settings for running installers and the bootstrap script.
type InstallConfig struct {
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
	MSIExec string        `json:"msiexec" yaml:"msiexec"`
}

// BootstrapURL returns the bootstrap script URL with the server placeholder filled in.
func (c *Config) BootstrapURL(server string) string {
	return strings.ReplaceAll(c.Bootstrap.URL, ServerPlaceholder, server)
}

// NeedsServer reports whether the bootstrap URL refers to a server address.
func (c *Config) NeedsServer() bool {
	return strings.Contains(c.Bootstrap.URL, ServerPlaceholder)
}

// Validate checks the semantic rules the schema cannot express.
func (c *Config) Validate() error {
	if len(c.Interpreters) < 2 {
		return fmt.Errorf("at least two interpreters are required, got %d", len(c.Interpreters))
	}

	seen := make(map[string]bool, len(c.Interpreters))
	for i, interp := range c.Interpreters {
		if interp.Name == "" {
			return fmt.Errorf("interpreter %d: name is required", i)
		}
		if seen[interp.Name] {
			return fmt.Errorf("interpreter %q: duplicate name", interp.Name)
		}
		seen[interp.Name] = true

		if interp.Executable == "" {
			return fmt.Errorf("interpreter %q: executable is required", interp.Name)
		}
		if err := interp.Installer.validate(); err != nil {
			return fmt.Errorf("interpreter %q: installer: %w", interp.Name, err)
		}
		if err := interp.Extension.validate(); err != nil {
			return fmt.Errorf("interpreter %q: extension: %w", interp.Name, err)
		}
	}

	if c.Bootstrap.URL == "" {
		return errors.New("bootstrap: url is required")
	}
	if c.Bootstrap.Filename == "" {
		return errors.New("bootstrap: filename is required")
	}
	if c.Bootstrap.ClearFlag == "" {
		return errors.New("bootstrap: clear_flag is required")
	}
	if c.Transfer.MaxRetries < 1 {
		return fmt.Errorf("transfer: max_retries must be positive, got %d", c.Transfer.MaxRetries)
	}

	return nil
}

func (a ArtifactConfig) validate() error {
	if a.Filename == "" {
		return errors.New("filename is required")
	}

	switch a.Kind {
	case ArtifactKindMSI, ArtifactKindEXE:
		return nil
	default:
		return fmt.Errorf("unsupported installer kind %q", a.Kind)
	}
}
