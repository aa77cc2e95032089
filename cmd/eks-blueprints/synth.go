package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/lex00/eks-blueprints-go/construct"
	"github.com/lex00/eks-blueprints-go/internal/template"
)

type synthOptions struct {
	configPath string
	outdir     string
	format     string
	watch      bool
	debounce   time.Duration
}

func newSynthCmd() *cobra.Command {
	var opts synthOptions

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Synthesize the stack into a cloud assembly",
		Long: `Synth builds the blueprint and writes the cloud assembly.

The assembly holds <stack>.template.json (or .yaml), <stack>.manifests.yaml
when teams contribute Kubernetes manifests, and manifest.json.

Examples:
    eks-blueprints synth
    eks-blueprints synth -o build -f yaml
    eks-blueprints synth -o -                  # template to stdout
    eks-blueprints synth --watch --config stack.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.watch {
				return runWatch(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
			}
			return runSynth(cmd.OutOrStdout(), opts)
		},
	}

	addConfigFlag(cmd, &opts.configPath)
	cmd.Flags().StringVarP(&opts.outdir, "output", "o", construct.DefaultOutdir, "Assembly directory, or - for stdout")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "json", "Template format: json or yaml")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Re-synthesize when the config or team manifests change")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", 500*time.Millisecond, "Debounce duration for rapid changes")

	return cmd
}

func runSynth(out io.Writer, opts synthOptions) error {
	format, err := parseFormat(opts.format)
	if err != nil {
		return err
	}

	toStdout := opts.outdir == "-"
	outdir := opts.outdir
	if toStdout {
		outdir = ""
	}

	app, stack, err := buildStack(opts.configPath, outdir)
	if err != nil {
		return err
	}

	if toStdout {
		tmpl, err := stack.Synth()
		if err != nil {
			return err
		}
		var data []byte
		if format == construct.FormatYAML {
			data, err = template.ToYAML(tmpl)
		} else {
			data, err = template.ToJSON(tmpl)
		}
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	manifest, err := app.Synth(format)
	if err != nil {
		return err
	}

	tmpl, err := stack.Synth()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Synthesized %s: %d resources, %d manifests -> %s (%s)\n",
		stack.ID(), len(tmpl.Resources), len(stack.Manifests()), app.Outdir,
		manifest.Artifacts[stack.ID()].Environment)
	return nil
}
