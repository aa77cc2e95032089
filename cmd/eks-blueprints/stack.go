package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lex00/eks-blueprints-go/construct"
	"github.com/lex00/eks-blueprints-go/internal/infra"
)

// addConfigFlag registers --config on cmd.
func addConfigFlag(cmd *cobra.Command, path *string) {
	cmd.Flags().StringVar(path, "config", "", "YAML file overriding the default stack settings")
}

// loadConfig layers the environment and then the optional file over the defaults.
func loadConfig(path string) (infra.Config, error) {
	cfg := infra.FromEnv(infra.DefaultConfig())
	if path == "" {
		return cfg, nil
	}
	return infra.LoadFile(path, cfg)
}

// buildStack declares the stack into a new app rooted at outdir.
func buildStack(configPath, outdir string) (*construct.App, *construct.Stack, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}

	app := construct.NewApp(outdir)
	stack, err := infra.Synth(cfg, app)
	if err != nil {
		return nil, nil, fmt.Errorf("building stack %s: %w", cfg.Name, err)
	}
	return app, stack, nil
}

// parseFormat validates a template format flag.
func parseFormat(s string) (construct.Format, error) {
	switch f := construct.Format(s); f {
	case construct.FormatJSON, construct.FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format: %s", s)
	}
}
