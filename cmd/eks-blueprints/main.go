// Command eks-blueprints synthesizes the EKS blueprint stack into a
// CloudFormation cloud assembly.
//
// Usage:
//
//	eks-blueprints synth               Write cdk.out/
//	eks-blueprints synth -o -          Print the template
//	eks-blueprints list                List resources in dependency order
//	eks-blueprints graph -f mermaid    Render the dependency graph
//	eks-blueprints validate            Lint the template with cfn-lint
//	eks-blueprints version             Show version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lex00/eks-blueprints-go/internal/logging"
)

const name = "eks-blueprints"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:   name,
		Short: "Synthesize an EKS blueprint into CloudFormation",
		Long: `eks-blueprints declares a VPC, an EKS cluster, core add-ons and teams
and synthesizes them into a CloudFormation cloud assembly.

The target environment comes from CDK_DEFAULT_ACCOUNT and CDK_DEFAULT_REGION.
Leave them unset for an environment-agnostic template.

    eks-blueprints synth
    eks-blueprints synth --config stack.yaml -f yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetDefaultStructuredLoggerWithLevel(name, getVersion(), logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", os.Getenv(logging.EnvLogLevel), "Log level: debug, info, warn or error")

	rootCmd.AddCommand(
		newSynthCmd(),
		newListCmd(),
		newGraphCmd(),
		newDiffCmd(),
		newValidateCmd(),
		newOptimizeCmd(),
		newPublishCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", name, getVersion())
		},
	}
}
