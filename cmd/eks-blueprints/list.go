package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	eksblueprints "github.com/lex00/eks-blueprints-go"
	"github.com/lex00/eks-blueprints-go/construct"
)

func newListCmd() *cobra.Command {
	var (
		configPath   string
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stack resources in dependency order",
		Long: `List synthesizes the stack and prints every resource in the order
CloudFormation will create it.

Examples:
    eks-blueprints list
    eks-blueprints list --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, stack, err := buildStack(configPath, "")
			if err != nil {
				return err
			}
			result, err := listResources(stack)
			if err != nil {
				return err
			}
			return outputListResult(cmd.OutOrStdout(), result, outputFormat)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")

	return cmd
}

func listResources(stack *construct.Stack) (eksblueprints.ListResult, error) {
	tmpl, err := stack.Synth()
	if err != nil {
		return eksblueprints.ListResult{}, err
	}
	order, err := stack.Order()
	if err != nil {
		return eksblueprints.ListResult{}, err
	}

	result := eksblueprints.ListResult{
		Resources: make([]eksblueprints.ListResource, 0, len(order)),
	}
	for _, name := range order {
		def := tmpl.Resources[name]
		result.Resources = append(result.Resources, eksblueprints.ListResource{
			Name:      name,
			Type:      def.Type,
			DependsOn: def.DependsOn,
		})
	}
	return result, nil
}

func outputListResult(out io.Writer, result eksblueprints.ListResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))

	case "text":
		if len(result.Resources) == 0 {
			fmt.Fprintln(out, "No resources found.")
			return nil
		}

		fmt.Fprintf(out, "Resources (%d):\n\n", len(result.Resources))
		for _, res := range result.Resources {
			fmt.Fprintf(out, "  %s: %s\n", res.Name, res.Type)
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	return nil
}
