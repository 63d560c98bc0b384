package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/ekisa-team/arniepye/internal/config"
	"github.com/ekisa-team/arniepye/internal/env"
	"github.com/ekisa-team/arniepye/internal/envvar"
	"github.com/ekisa-team/arniepye/internal/logger"
	"github.com/ekisa-team/arniepye/internal/sequencer"
	"github.com/ekisa-team/arniepye/internal/xfs"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

var (
	cfgFile     string
	verbosity   int
	logFile     string
	server      string
	downloadDir string
	noPause     bool

	// configPath is the config file actually loaded, or empty for defaults.
	configPath string

	// cfg is populated by PersistentPreRunE and shared with all subcommands.
	cfg *config.Config

	// app holds all wired dependencies; populated by PersistentPreRunE.
	app *AppContext
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "arnie-bootstrap",
		Short: "Install Python interpreters and bootstrap ArniePye",
		Long: `arnie-bootstrap downloads two Python interpreter installers and their
extension-module installers, installs them in order, then runs the
package server's bootstrap.py under each interpreter.

Downloads already present in the download directory are reused. The first
failing step aborts the sequence; the process pauses so the failure can be
read and then exits with that step's status.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runSequence,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "path to config file (YAML)")
	pf.CountVarP(&verbosity, "verbose", "v", "enable verbose logging (repeat for more)")
	pf.StringVar(&logFile, "log-file", "", "also write JSON logs to this file")
	pf.StringVar(&server, "server", "", "package server address for the bootstrap URL (host[:port])")
	pf.StringVar(&downloadDir, "download-dir", "", "directory to stage downloads in")
	pf.BoolVar(&noPause, "no-pause", false, "exit immediately on failure instead of waiting for Enter")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		initLogger()

		configPath = resolveConfigPath(cfgFile)

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		applyFlags(cfg)

		app = buildAppContext()
		return nil
	}

	cmd.AddCommand(newRunCmd(), newPlanCmd(), newWatchCmd())

	return cmd
}

// resolveConfigPath returns flagPath when set, otherwise config.yaml in the
// default config directory if it exists. An empty result means defaults only.
func resolveConfigPath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}

	path := filepath.Join(config.DefaultConfigPath(), "config.yaml")
	if xfs.Exists(path) {
		slog.Debug("Using config from default location", "config", path)
		return path
	}

	return ""
}

// applyFlags overlays command-line flags onto c. Flags take precedence over
// the environment and the config file.
func applyFlags(c *config.Config) {
	if server != "" {
		c.Server = server
	}
	if downloadDir != "" {
		c.DownloadDir = xfs.ExpandTilde(downloadDir)
	}
	if noPause {
		c.PauseOnFailure = false
	}
}

// Execute runs the root command and returns the process exit status.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var stepErr *sequencer.StepError
	if errors.As(err, &stepErr) {
		return stepErr.ExitCode()
	}

	fmt.Fprintln(os.Stderr, "Error:", err)
	return 1
}

func initLogger() {
	path := logFile
	if path == "" {
		path = os.Getenv(envvar.ArnieLogFile)
	}

	opts := []logger.Option{logger.WithVerbosity(verbosity)}
	if path != "" {
		if path == "default" {
			path = filepath.Join(config.DefaultLogPath(), "arnie-bootstrap.log")
		}
		opts = append(opts, logger.WithLogToFile(true), logger.WithLogFile(path))
	}

	slog.SetDefault(logger.New(env.FromEnv(), opts...))
}
