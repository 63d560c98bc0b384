package artifact

import (
	"fmt"

	"github.com/ekisa-team/arniepye/internal/config"
	"github.com/ekisa-team/arniepye/internal/xfs"
)

// BootstrapName is the registry name of the bootstrap script artifact.
const BootstrapName = "bootstrap"

// BootstrapRun is a single invocation of the bootstrap script.
type BootstrapRun struct {
	Interpreter string   `json:"interpreter" yaml:"interpreter"`
	Executable  string   `json:"executable"  yaml:"executable"`
	Args        []string `json:"args"        yaml:"args"`
	Clear       bool     `json:"clear"       yaml:"clear"`
}

// Plan is the fixed sequence derived from a configuration.
type Plan struct {
	Registry  *Registry      `json:"-"         yaml:"-"`
	Fetch     []*Descriptor  `json:"fetch"     yaml:"fetch"`
	Install   []*Descriptor  `json:"install"   yaml:"install"`
	Bootstrap *Descriptor    `json:"bootstrap" yaml:"bootstrap"`
	Runs      []BootstrapRun `json:"runs"      yaml:"runs"`
	Server    string         `json:"server"    yaml:"server"`
}

// NewPlan builds the fetch, install and bootstrap order for cfg.
//
// Fetch order is each interpreter's installer then its extension, in
// configuration order, followed by the bootstrap script. Install order is
// the fetch order without the script. Bootstrap runs go through the
// interpreters in reverse and pass the clear flag on the first run only.
func NewPlan(cfg *config.Config, server string) (*Plan, error) {
	if cfg.NeedsServer() && server == "" {
		return nil, ErrNoServer
	}

	dir := xfs.ExpandTilde(cfg.DownloadDir)
	plan := &Plan{
		Registry: NewRegistry(),
		Server:   server,
	}

	for _, interp := range cfg.Interpreters {
		for _, part := range []struct {
			suffix string
			src    config.ArtifactConfig
		}{
			{"installer", interp.Installer},
			{"extension", interp.Extension},
		} {
			d := NewDescriptor(
				fmt.Sprintf("%s-%s", interp.Name, part.suffix),
				part.src.Kind,
				ResolveURL(part.src.BaseURL, part.src.Filename),
				dir,
				part.src.Filename,
			)
			d.Interpreter = interp.Name
			d.Args = part.src.Args

			if err := plan.Registry.Add(d); err != nil {
				return nil, err
			}
			plan.Fetch = append(plan.Fetch, d)
			plan.Install = append(plan.Install, d)
		}
	}

	plan.Bootstrap = NewDescriptor(BootstrapName, config.ArtifactKindScript, cfg.BootstrapURL(server), dir, cfg.Bootstrap.Filename)
	if err := plan.Registry.Add(plan.Bootstrap); err != nil {
		return nil, err
	}
	plan.Fetch = append(plan.Fetch, plan.Bootstrap)

	for i := len(cfg.Interpreters) - 1; i >= 0; i-- {
		interp := cfg.Interpreters[i]
		reset := i == len(cfg.Interpreters)-1

		args := []string{plan.Bootstrap.Dest}
		if reset {
			args = append(args, cfg.Bootstrap.ClearFlag)
		}

		plan.Runs = append(plan.Runs, BootstrapRun{
			Interpreter: interp.Name,
			Executable:  interp.Executable,
			Args:        args,
			Clear:       reset,
		})
	}

	return plan, nil
}
