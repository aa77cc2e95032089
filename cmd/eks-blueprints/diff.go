package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	eksblueprints "github.com/lex00/eks-blueprints-go"
	"github.com/lex00/eks-blueprints-go/internal/differ"
)

func newDiffCmd() *cobra.Command {
	var (
		configPath   string
		outputFormat string
		ignoreOrder  bool
	)

	cmd := &cobra.Command{
		Use:   "diff <template>",
		Short: "Compare a previous template with the current stack",
		Long: `Diff synthesizes the stack and reports resources added, removed or
modified relative to a previously synthesized template.

Examples:
    eks-blueprints diff cdk.out/eks-blueprints-cdk.template.json
    eks-blueprints diff old.yaml --ignore-order -f json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			previous, err := differ.LoadTemplate(args[0])
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", args[0], err)
			}

			_, stack, err := buildStack(configPath, "")
			if err != nil {
				return err
			}
			current, err := stack.Synth()
			if err != nil {
				return err
			}

			// Round-trip so typed values compare like the decoded file.
			data, err := json.Marshal(current)
			if err != nil {
				return err
			}
			current, err = differ.ParseTemplate(data)
			if err != nil {
				return err
			}

			result, err := differ.Compare(previous, current, differ.Options{IgnoreOrder: ignoreOrder})
			if err != nil {
				return err
			}
			return outputDiffResult(cmd.OutOrStdout(), result, outputFormat)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&ignoreOrder, "ignore-order", false, "Ignore array element order")

	return cmd
}

func outputDiffResult(out io.Writer, result *differ.Result, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(eksblueprints.DiffResult{
			Success: true,
			Diff:    result.Diff,
			Summary: result.Summary,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))

	case "text":
		if result.Summary.Total == 0 && len(result.Outputs) == 0 {
			fmt.Fprintln(out, "No changes.")
			return nil
		}
		for _, e := range result.Diff.Added {
			fmt.Fprintf(out, "+ %s (%s)\n", e.Resource, e.Type)
		}
		for _, e := range result.Diff.Removed {
			fmt.Fprintf(out, "- %s (%s)\n", e.Resource, e.Type)
		}
		for _, e := range result.Diff.Modified {
			fmt.Fprintf(out, "~ %s (%s)\n", e.Resource, e.Type)
			for _, c := range e.Changes {
				fmt.Fprintf(out, "    %s\n", c)
			}
		}
		for _, o := range result.Outputs {
			fmt.Fprintf(out, "  Output %s\n", o)
		}
		fmt.Fprintf(out, "\n%d added, %d removed, %d modified\n",
			result.Summary.Added, result.Summary.Removed, result.Summary.Modified)

	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	return nil
}
