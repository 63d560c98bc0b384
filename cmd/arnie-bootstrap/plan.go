package main

import (
	"fmt"

	"github.com/ekisa-team/arniepye/internal/artifact"
	"github.com/ekisa-team/arniepye/internal/config"
	"github.com/ekisa-team/arniepye/internal/xfs"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

type planArtifact struct {
	Name    string              `yaml:"name"`
	Kind    config.ArtifactKind `yaml:"kind"`
	URL     string              `yaml:"url"`
	Dest    string              `yaml:"dest"`
	Present bool                `yaml:"present"`
}

type planOutput struct {
	Server    string                  `yaml:"server"`
	Artifacts []planArtifact          `yaml:"artifacts"`
	Runs      []artifact.BootstrapRun `yaml:"bootstrap_runs"`
}

func newPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Print the resolved artifacts and bootstrap runs without changing anything",
		Long: `Plan prints, as YAML, every artifact with its download URL, destination
and whether it is already present, followed by the bootstrap runs.

The package server is not probed; when none is configured the bootstrap
URL keeps its {server} placeholder.`,
		Args: cobra.NoArgs,
		RunE: runPlan,
	}
}

func runPlan(cmd *cobra.Command, args []string) error {
	srv := cfg.Server
	if srv == "" {
		srv = config.ServerPlaceholder
	}

	plan, err := artifact.NewPlan(cfg, srv)
	if err != nil {
		return fmt.Errorf("building plan: %w", err)
	}

	out := planOutput{
		Server: srv,
		Runs:   plan.Runs,
	}
	for _, d := range plan.Fetch {
		out.Artifacts = append(out.Artifacts, planArtifact{
			Name:    d.Name,
			Kind:    d.Kind,
			URL:     d.URL,
			Dest:    d.Dest,
			Present: xfs.Exists(d.Dest),
		})
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}

	return enc.Close()
}
