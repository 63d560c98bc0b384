package artifact

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/ekisa-team/arniepye/internal/config"
)

// Status is the current state of an artifact within a run.
type Status string

const (
	// StatusPending indicates that the artifact has not been processed yet.
	StatusPending Status = "pending"

	// StatusSkipped indicates that the artifact was already present and was not downloaded.
	StatusSkipped Status = "skipped"

	// StatusFetched indicates that the artifact was downloaded during this run.
	StatusFetched Status = "fetched"

	// StatusInstalled indicates that the artifact's installer exited successfully.
	StatusInstalled Status = "installed"

	// StatusFailed indicates that fetching or installing the artifact failed.
	StatusFailed Status = "failed"
)

// Descriptor describes a downloadable artifact and where it is staged.
type Descriptor struct {
	UpdatedAt   *time.Time          `json:"updated_at,omitempty"  yaml:"updated_at,omitempty"`
	Name        string              `json:"name"                  yaml:"name"`
	Interpreter string              `json:"interpreter,omitempty" yaml:"interpreter,omitempty"`
	Kind        config.ArtifactKind `json:"kind"                  yaml:"kind"`
	URL         string              `json:"url"                   yaml:"url"`
	Dest        string              `json:"dest"                  yaml:"dest"`
	Args        []string            `json:"args,omitempty"        yaml:"args,omitempty"`
	Status      Status              `json:"status"                yaml:"status"`
	Error       string              `json:"error,omitempty"       yaml:"error,omitempty"`
}

// NewDescriptor creates a pending descriptor staged under dir.
func NewDescriptor(name string, kind config.ArtifactKind, url, dir, filename string) *Descriptor {
	return &Descriptor{
		Name:   name,
		Kind:   kind,
		URL:    url,
		Dest:   filepath.Join(dir, filename),
		Status: StatusPending,
	}
}

// SetStatus sets the status of the artifact.
func (d *Descriptor) SetStatus(status Status) {
	d.Status = status
	now := time.Now()
	d.UpdatedAt = &now
}

// SetError marks the artifact as failed with err.
func (d *Descriptor) SetError(err error) {
	d.SetStatus(StatusFailed)
	d.Error = err.Error()
}

// ResolveURL joins a base location and a filename with exactly one slash.
// Reachability is not checked.
func ResolveURL(base, filename string) string {
	if base == "" {
		return filename
	}

	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(filename, "/")
}
