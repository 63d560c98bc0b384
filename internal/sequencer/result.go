package sequencer

import (
	"fmt"
	"time"
)

// StepStatus is the outcome of a single step.
type StepStatus string

const (
	// StepOK means the step ran and succeeded.
	StepOK StepStatus = "ok"

	// StepSkipped means the artifact was already present.
	StepSkipped StepStatus = "skipped"

	// StepFailed means the step failed and aborted the run.
	StepFailed StepStatus = "failed"
)

// StepResult records a single fetch, install or bootstrap step.
type StepResult struct {
	Phase    State         `json:"phase"           yaml:"phase"`
	Name     string        `json:"name"            yaml:"name"`
	Status   StepStatus    `json:"status"          yaml:"status"`
	ExitCode int           `json:"exit_code"       yaml:"exit_code"`
	Duration time.Duration `json:"duration"        yaml:"duration"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// StepError is the failure that moved a run into StateFailed.
type StepError struct {
	Err   error
	Phase State
	Step  string
	Code  int
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s %s failed (exit status %d): %v", e.Phase, e.Step, e.Code, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// ExitCode returns the status the process should exit with.
func (e *StepError) ExitCode() int { return e.Code }

// Result is the outcome of a run.
type Result struct {
	StartedAt  time.Time    `json:"started_at"  yaml:"started_at"`
	FinishedAt time.Time    `json:"finished_at" yaml:"finished_at"`
	State      State        `json:"state"       yaml:"state"`
	Steps      []StepResult `json:"steps"       yaml:"steps"`
	Err        *StepError   `json:"-"           yaml:"-"`
}

// ExitCode returns 0 on success and the failing step's status otherwise.
func (r *Result) ExitCode() int {
	if r.Err == nil {
		return 0
	}

	return r.Err.Code
}

// StepsIn returns the steps recorded for phase.
func (r *Result) StepsIn(phase State) []StepResult {
	var steps []StepResult
	for _, s := range r.Steps {
		if s.Phase == phase {
			steps = append(steps, s)
		}
	}

	return steps
}
