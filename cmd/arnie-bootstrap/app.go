package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ekisa-team/arniepye/internal/artifact"
	"github.com/ekisa-team/arniepye/internal/config"
	"github.com/ekisa-team/arniepye/internal/installer"
	"github.com/ekisa-team/arniepye/internal/probe"
	"github.com/ekisa-team/arniepye/internal/runner"
	"github.com/ekisa-team/arniepye/internal/sequencer"
	"github.com/ekisa-team/arniepye/internal/transfer"
	"github.com/ekisa-team/arniepye/internal/xfs"
)

// AppContext holds dependencies shared across runs. The prober lives here so
// its circuit breakers persist across re-runs in watch mode.
type AppContext struct {
	prober *probe.Prober
}

func buildAppContext() *AppContext {
	return &AppContext{
		prober: probe.NewProber(0),
	}
}

// resolveServer returns the configured server or probes the candidates when
// the bootstrap URL needs one and none is configured.
func (a *AppContext) resolveServer(ctx context.Context, c *config.Config) (string, error) {
	if c.Server != "" || !c.NeedsServer() {
		return c.Server, nil
	}

	slog.Info("No package server configured, probing candidates", "candidates", c.ServerCandidates)
	return a.prober.Resolve(ctx, c.ServerCandidates)
}

// newSequencer wires a sequencer for one run of c.
func (a *AppContext) newSequencer(ctx context.Context, c *config.Config) (*sequencer.Sequencer, *artifact.Plan, error) {
	srv, err := a.resolveServer(ctx, c)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving package server: %w", err)
	}

	plan, err := artifact.NewPlan(c, srv)
	if err != nil {
		return nil, nil, fmt.Errorf("building plan: %w", err)
	}

	dir := xfs.ExpandTilde(c.DownloadDir)
	if err := xfs.EnsureDir(dir); err != nil {
		return nil, nil, fmt.Errorf("failed to prepare download directory %s: %w", dir, err)
	}

	transfers := transfer.NewDefaultRegistry(transfer.Options{
		MaxRetries: c.Transfer.MaxRetries,
		RetryDelay: c.Transfer.RetryDelay,
		Timeout:    c.Transfer.Timeout,
	})
	executor := runner.NewExecutor(c.Install.Timeout)
	installers := installer.NewDefaultRegistry(c.Install, executor)

	return sequencer.New(plan, transfers, installers, executor), plan, nil
}
