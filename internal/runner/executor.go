package runner

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"time"
)

const waitDelay = 5 * time.Second

// CommandRunner is the interface for running commands.
type CommandRunner interface {
	Run(ctx context.Context, name string, args []string, stdin io.Reader) (stdout, stderr []byte, err error)
}

// ExecCommandRunner uses os/exec. Output lines are mirrored to the debug log
// as they are produced, since installers can run for minutes.
type ExecCommandRunner struct{}

// Run runs a command and blocks until it exits.
func (ExecCommandRunner) Run(ctx context.Context, name string, args []string, stdin io.Reader) (stdout, stderr []byte, err error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	// Installers may leave children holding the output pipes after a kill.
	cmd.WaitDelay = waitDelay

	var outBuf, errBuf bytes.Buffer
	outLog := newLineLogger(name, "stdout")
	errLog := newLineLogger(name, "stderr")
	cmd.Stdout = io.MultiWriter(&outBuf, outLog)
	cmd.Stderr = io.MultiWriter(&errBuf, errLog)

	err = cmd.Run()
	outLog.Close()
	errLog.Close()

	return outBuf.Bytes(), errBuf.Bytes(), err
}

// Executor runs commands with a timeout.
type Executor struct {
	runner  CommandRunner
	timeout time.Duration
}

// NewExecutor creates an executor backed by os/exec.
func NewExecutor(timeout time.Duration) *Executor {
	return NewExecutorWithRunner(timeout, ExecCommandRunner{})
}

// NewExecutorWithRunner creates an executor with a custom runner.
func NewExecutorWithRunner(timeout time.Duration, runner CommandRunner) *Executor {
	return &Executor{
		runner:  runner,
		timeout: timeout,
	}
}

// Execute runs name with args and returns its output. A zero timeout means no limit.
func (e *Executor) Execute(ctx context.Context, name string, args []string, stdin io.Reader) (stdout, stderr []byte, err error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	started := time.Now()
	slog.Debug("Running command", "command", name, "args", args)

	stdout, stderr, err = e.runner.Run(ctx, name, args, stdin)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			err = fmt.Errorf("%w (timed out after %v)", err, e.timeout)
		}
		return stdout, stderr, err
	}

	slog.Debug("Command finished", "command", name, "duration", time.Since(started))
	return stdout, stderr, nil
}

// ExitCode returns the process status carried by err: 0 for nil, the exit
// code for process exit errors and 1 for anything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		if code := coder.ExitCode(); code > 0 {
			return code
		}
	}

	return 1
}

// ExitError is a process failure with an explicit exit status.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// ExitCode returns the exit status.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// lineLogger forwards complete output lines to the debug log.
type lineLogger struct {
	pw   *io.PipeWriter
	done chan struct{}
	once sync.Once
}

func newLineLogger(command, stream string) *lineLogger {
	pr, pw := io.Pipe()
	l := &lineLogger{pw: pw, done: make(chan struct{})}

	go func() {
		defer close(l.done)

		scanner := bufio.NewScanner(pr)
		for scanner.Scan() {
			slog.Debug(scanner.Text(), "command", command, "stream", stream)
		}
		// Drain so writers never block if the scanner gave up on a long line.
		_, _ = io.Copy(io.Discard, pr)
	}()

	return l
}

func (l *lineLogger) Write(p []byte) (int, error) {
	return l.pw.Write(p)
}

// Close flushes the last partial line and waits for the logger goroutine.
func (l *lineLogger) Close() {
	l.once.Do(func() {
		l.pw.Close()
		<-l.done
	})
}
