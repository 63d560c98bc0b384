package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the bootstrap sequence once (default)",
		Long: `Run downloads any missing installers and the bootstrap script, runs the
installers in order, then runs bootstrap.py under each interpreter.

Exits 0 on success. On failure it waits for Enter (unless --no-pause)
and exits with the failing step's status.`,
		Args: cobra.NoArgs,
		RunE: runSequence,
	}
}

func runSequence(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	err := func() error {
		seq, plan, err := app.newSequencer(ctx, cfg)
		if err != nil {
			return err
		}

		slog.Info("Starting bootstrap sequence", "server", plan.Server, "download_dir", cfg.DownloadDir, "artifacts", len(plan.Fetch))

		_, err = seq.Run(ctx)
		return err
	}()
	if err == nil {
		return nil
	}

	if cfg.PauseOnFailure {
		pause(ctx, cmd.InOrStdin(), cmd.ErrOrStderr(), err)
	}

	return err
}

// pause shows the failure and blocks until the operator presses Enter or
// interrupts.
func pause(ctx context.Context, in io.Reader, out io.Writer, err error) {
	fmt.Fprintf(out, "\nBootstrap failed: %v\n", err)
	fmt.Fprint(out, "Press Enter to continue . . . ")

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = bufio.NewReader(in).ReadString('\n')
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
	fmt.Fprintln(out)
}
