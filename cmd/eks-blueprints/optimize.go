package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	eksblueprints "github.com/lex00/eks-blueprints-go"
	"github.com/lex00/eks-blueprints-go/internal/optimizer"
)

func newOptimizeCmd() *cobra.Command {
	var (
		configPath   string
		outputFormat string
		category     string
	)

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Suggest security, cost and reliability improvements",
		Long: `Optimize synthesizes the stack and reports improvements to the cluster,
node groups, add-ons and network.

Examples:
    eks-blueprints optimize
    eks-blueprints optimize --category reliability -f json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, stack, err := buildStack(configPath, "")
			if err != nil {
				return err
			}
			tmpl, err := stack.Synth()
			if err != nil {
				return err
			}

			// Suggestions read decoded property values.
			data, err := json.Marshal(tmpl)
			if err != nil {
				return err
			}
			var decoded eksblueprints.Template
			if err := json.Unmarshal(data, &decoded); err != nil {
				return err
			}

			result, err := optimizer.Optimize(&decoded, optimizer.Options{Category: category})
			if err != nil {
				return err
			}
			return outputOptimizeResult(cmd.OutOrStdout(), eksblueprints.OptimizeResult{
				Suggestions: result.Suggestions,
				Summary:     result.Summary,
			}, outputFormat)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().StringVar(&category, "category", optimizer.CategoryAll, "Category: all, security, cost, performance or reliability")

	return cmd
}

func outputOptimizeResult(out io.Writer, result eksblueprints.OptimizeResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))

	case "text":
		if len(result.Suggestions) == 0 {
			fmt.Fprintln(out, "No suggestions.")
			return nil
		}
		for _, s := range result.Suggestions {
			fmt.Fprintf(out, "[%s] %s %s: %s\n", s.Severity, s.Rule, s.Resource, s.Title)
			fmt.Fprintf(out, "    %s\n", s.Suggestion)
		}
		fmt.Fprintf(out, "\n%d suggestions (%d security, %d cost, %d performance, %d reliability)\n",
			result.Summary.Total, result.Summary.Security, result.Summary.Cost,
			result.Summary.Performance, result.Summary.Reliability)

	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	return nil
}
