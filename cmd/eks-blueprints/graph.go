package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lex00/eks-blueprints-go/internal/graph"
)

func newGraphCmd() *cobra.Command {
	var (
		configPath    string
		outputFormat  string
		clusterByType bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Generate a graph of resource dependencies",
		Long: `Generate a DOT or Mermaid graph of the synthesized stack.

The output can be rendered with Graphviz:
    eks-blueprints graph | dot -Tpng -o deps.png

Or used in GitHub markdown (Mermaid format):
    eks-blueprints graph -f mermaid

Examples:
    eks-blueprints graph -c              # cluster by service`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var graphFormat graph.Format
			switch outputFormat {
			case "dot":
				graphFormat = graph.FormatDOT
			case "mermaid":
				graphFormat = graph.FormatMermaid
			default:
				return fmt.Errorf("unknown format: %s (use 'dot' or 'mermaid')", outputFormat)
			}

			_, stack, err := buildStack(configPath, "")
			if err != nil {
				return err
			}
			tmpl, err := stack.Synth()
			if err != nil {
				return err
			}

			gen := &graph.Generator{
				Format:        graphFormat,
				ClusterByType: clusterByType,
			}
			return gen.Generate(tmpl, cmd.OutOrStdout())
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "dot", "Output format: dot or mermaid")
	cmd.Flags().BoolVarP(&clusterByType, "cluster", "c", false, "Cluster resources by AWS service")

	return cmd
}
