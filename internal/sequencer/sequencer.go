package sequencer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ekisa-team/arniepye/internal/artifact"
	"github.com/ekisa-team/arniepye/internal/config"
	"github.com/ekisa-team/arniepye/internal/runner"
	"github.com/ekisa-team/arniepye/internal/xfs"
)

// Transferer downloads a URL to a destination path.
type Transferer interface {
	Fetch(ctx context.Context, rawURL, dest string) error
}

// Installers runs the installer for an artifact kind and blocks until it exits.
type Installers interface {
	Install(ctx context.Context, kind config.ArtifactKind, path string, args []string) error
}

// ScriptRunner runs the bootstrap script under an interpreter.
type ScriptRunner interface {
	Execute(ctx context.Context, name string, args []string, stdin io.Reader) (stdout, stderr []byte, err error)
}

// Sequencer brings a machine from bare to bootstrapped by fetching,
// installing and running the bootstrap script, strictly in order.
// A Sequencer runs one sequence at a time; it starts no goroutines itself.
type Sequencer struct {
	plan       *artifact.Plan
	transfer   Transferer
	installers Installers
	scripts    ScriptRunner
	exists     func(path string) bool
	now        func() time.Time

	mu    sync.Mutex
	state State
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithExists overrides how artifact presence is detected.
func WithExists(exists func(path string) bool) Option {
	return func(s *Sequencer) {
		s.exists = exists
	}
}

// New creates a sequencer for plan.
func New(plan *artifact.Plan, transfer Transferer, installers Installers, scripts ScriptRunner, opts ...Option) *Sequencer {
	s := &Sequencer{
		plan:       plan,
		transfer:   transfer,
		installers: installers,
		scripts:    scripts,
		exists:     xfs.Exists,
		now:        time.Now,
		state:      StateStart,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// State returns the current state of the sequence.
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Run executes the sequence once. The returned error is the *StepError that
// moved the run into StateFailed, or nil when the run reached StateDone.
// A Sequencer cannot be run twice.
func (s *Sequencer) Run(ctx context.Context) (*Result, error) {
	result := &Result{
		StartedAt: s.now(),
		State:     StateStart,
	}

	phases := []struct {
		state State
		run   func(context.Context, *Result) *StepError
	}{
		{StateFetching, s.fetchAll},
		{StateInstalling, s.installAll},
		{StateBootstrapping, s.bootstrapAll},
	}

	for _, phase := range phases {
		if err := s.enter(phase.state, result); err != nil {
			return nil, err
		}

		slog.Info("Entering phase", "phase", phase.state)
		if stepErr := phase.run(ctx, result); stepErr != nil {
			return s.fail(result, stepErr)
		}
	}

	if err := s.enter(StateDone, result); err != nil {
		return nil, err
	}
	result.FinishedAt = s.now()

	slog.Info("Bootstrap sequence completed",
		"steps", len(result.Steps),
		"installed", s.plan.Registry.Count(artifact.StatusInstalled),
		"duration", result.FinishedAt.Sub(result.StartedAt))
	return result, nil
}

// fetchAll downloads every artifact that is not already present.
func (s *Sequencer) fetchAll(ctx context.Context, result *Result) *StepError {
	for _, d := range s.plan.Fetch {
		if err := ctx.Err(); err != nil {
			return s.record(result, StateFetching, d.Name, 0, err)
		}

		if s.exists(d.Dest) {
			slog.Info("Artifact already present, skipping download", "artifact", d.Name, "path", d.Dest)
			_ = s.plan.Registry.SetStatus(d.Name, artifact.StatusSkipped)
			result.Steps = append(result.Steps, StepResult{Phase: StateFetching, Name: d.Name, Status: StepSkipped})
			continue
		}

		started := s.now()
		err := s.transfer.Fetch(ctx, d.URL, d.Dest)
		if err != nil {
			_ = s.plan.Registry.SetError(d.Name, err)
			return s.record(result, StateFetching, d.Name, s.now().Sub(started), fmt.Errorf("fetch %s: %w", d.URL, err))
		}

		_ = s.plan.Registry.SetStatus(d.Name, artifact.StatusFetched)
		s.record(result, StateFetching, d.Name, s.now().Sub(started), nil)
	}

	slog.Info("Artifacts ready",
		"fetched", s.plan.Registry.Count(artifact.StatusFetched),
		"skipped", s.plan.Registry.Count(artifact.StatusSkipped))
	return nil
}

// installAll runs each installer in order, blocking on each.
func (s *Sequencer) installAll(ctx context.Context, result *Result) *StepError {
	for _, d := range s.plan.Install {
		if err := ctx.Err(); err != nil {
			return s.record(result, StateInstalling, d.Name, 0, err)
		}

		slog.Info("Running installer", "artifact", d.Name, "kind", d.Kind, "path", d.Dest)

		started := s.now()
		if err := s.installers.Install(ctx, d.Kind, d.Dest, d.Args); err != nil {
			_ = s.plan.Registry.SetError(d.Name, err)
			return s.record(result, StateInstalling, d.Name, s.now().Sub(started), err)
		}

		_ = s.plan.Registry.SetStatus(d.Name, artifact.StatusInstalled)
		s.record(result, StateInstalling, d.Name, s.now().Sub(started), nil)
	}

	return nil
}

// bootstrapAll runs the bootstrap script once per planned interpreter.
func (s *Sequencer) bootstrapAll(ctx context.Context, result *Result) *StepError {
	for _, run := range s.plan.Runs {
		name := fmt.Sprintf("%s %s", artifact.BootstrapName, run.Interpreter)
		if err := ctx.Err(); err != nil {
			return s.record(result, StateBootstrapping, name, 0, err)
		}

		slog.Info("Running bootstrap script", "interpreter", run.Interpreter, "executable", run.Executable, "clear", run.Clear)

		started := s.now()
		_, stderr, err := s.scripts.Execute(ctx, run.Executable, run.Args, nil)
		if err != nil {
			if len(stderr) > 0 {
				err = fmt.Errorf("%w\nstderr: %s", err, stderr)
			}
			return s.record(result, StateBootstrapping, name, s.now().Sub(started), err)
		}

		s.record(result, StateBootstrapping, name, s.now().Sub(started), nil)
	}

	return nil
}

// record appends a step result and returns a *StepError when err is non-nil.
func (s *Sequencer) record(result *Result, phase State, name string, d time.Duration, err error) *StepError {
	step := StepResult{
		Phase:    phase,
		Name:     name,
		Status:   StepOK,
		Duration: d,
	}

	if err == nil {
		result.Steps = append(result.Steps, step)
		return nil
	}

	code := runner.ExitCode(err)
	step.Status = StepFailed
	step.ExitCode = code
	step.Error = err.Error()
	result.Steps = append(result.Steps, step)

	return &StepError{Err: err, Phase: phase, Step: name, Code: code}
}

func (s *Sequencer) enter(to State, result *Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := transition(&s.state, to); err != nil {
		return err
	}

	result.State = to
	return nil
}

func (s *Sequencer) fail(result *Result, stepErr *StepError) (*Result, error) {
	if err := s.enter(StateFailed, result); err != nil {
		return nil, errors.Join(stepErr, err)
	}

	result.Err = stepErr
	result.FinishedAt = s.now()

	slog.Error("Bootstrap sequence failed",
		"phase", stepErr.Phase,
		"step", stepErr.Step,
		"exit_code", stepErr.Code,
		"error", stepErr.Err)

	return result, stepErr
}
