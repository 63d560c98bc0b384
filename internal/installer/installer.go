package installer

import (
	"context"
	"fmt"
	"strings"

	"github.com/ekisa-team/arniepye/internal/config"
	"github.com/ekisa-team/arniepye/internal/runner"
)

// Installer runs a downloaded installer synchronously.
type Installer interface {
	// Kind returns the artifact kind this installer handles.
	Kind() config.ArtifactKind

	// Install runs the installer at path and blocks until it exits.
	Install(ctx context.Context, path string, args []string) error
}

// MSIInstaller installs Windows Installer packages through msiexec.
type MSIInstaller struct {
	executor *runner.Executor
	msiexec  string
}

// NewMSIInstaller creates an MSI installer.
func NewMSIInstaller(msiexec string, executor *runner.Executor) *MSIInstaller {
	if msiexec == "" {
		msiexec = "msiexec"
	}

	return &MSIInstaller{
		executor: executor,
		msiexec:  msiexec,
	}
}

// Kind returns the MSI artifact kind.
func (i *MSIInstaller) Kind() config.ArtifactKind {
	return config.ArtifactKindMSI
}

// Install runs `msiexec /i <path> <args...>`.
func (i *MSIInstaller) Install(ctx context.Context, path string, args []string) error {
	cmdArgs := append([]string{"/i", path}, args...)

	_, stderr, err := i.executor.Execute(ctx, i.msiexec, cmdArgs, nil)
	if err != nil {
		return execError(i.msiexec, err, stderr)
	}

	return nil
}

// EXEInstaller runs self-contained installer executables.
type EXEInstaller struct {
	executor *runner.Executor
}

// NewEXEInstaller creates an executable installer.
func NewEXEInstaller(executor *runner.Executor) *EXEInstaller {
	return &EXEInstaller{executor: executor}
}

// Kind returns the EXE artifact kind.
func (i *EXEInstaller) Kind() config.ArtifactKind {
	return config.ArtifactKindEXE
}

// Install runs the executable at path with args.
func (i *EXEInstaller) Install(ctx context.Context, path string, args []string) error {
	_, stderr, err := i.executor.Execute(ctx, path, args, nil)
	if err != nil {
		return execError(path, err, stderr)
	}

	return nil
}

// NewDefaultRegistry returns a registry with the MSI and EXE installers
// sharing executor.
func NewDefaultRegistry(cfg config.InstallConfig, executor *runner.Executor) *Registry {
	r := NewRegistry()
	_ = r.Register(NewMSIInstaller(cfg.MSIExec, executor))
	_ = r.Register(NewEXEInstaller(executor))
	return r
}

func execError(name string, err error, stderr []byte) error {
	if s := strings.TrimSpace(string(stderr)); s != "" {
		return fmt.Errorf("%s failed: %w\nstderr: %s", name, err, s)
	}

	return fmt.Errorf("%s failed: %w", name, err)
}
