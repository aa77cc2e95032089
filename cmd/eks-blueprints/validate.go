package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	eksblueprints "github.com/lex00/eks-blueprints-go"
	"github.com/lex00/eks-blueprints-go/internal/schema"
	"github.com/lex00/eks-blueprints-go/internal/validation"
)

// newValidateCmd creates the "validate" subcommand, which lints the synthesized template.
func newValidateCmd() *cobra.Command {
	var (
		configPath   string
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Synthesize the stack and lint it with cfn-lint",
		Long: `Validate synthesizes the template, checks every resource against its
CloudFormation schema and runs cfn-lint-go over it. Warnings are reported
but only errors fail the command.

Examples:
    eks-blueprints validate
    eks-blueprints validate --format json`,
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

			result, err := validateTemplate(tmpl)
			if err != nil {
				return err
			}
			return outputValidateResult(cmd.OutOrStdout(), result, outputFormat)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")

	return cmd
}

// validateTemplate runs the offline schema check and then cfn-lint.
func validateTemplate(tmpl *eksblueprints.Template) (eksblueprints.ValidateResult, error) {
	schemaResult, err := schema.ValidateTemplate(tmpl, schema.Options{})
	if err != nil {
		return eksblueprints.ValidateResult{}, err
	}

	lintResult, err := validation.ValidateTemplate(tmpl)
	if err != nil {
		return eksblueprints.ValidateResult{}, err
	}

	result := lintResult.Result(len(tmpl.Resources))
	for _, e := range schemaResult.Errors {
		result.Errors = append(result.Errors, e.String())
	}
	for _, w := range schemaResult.Warnings {
		result.Warnings = append(result.Warnings, w.String())
	}
	result.Success = result.Success && schemaResult.Valid
	return result, nil
}

func outputValidateResult(out io.Writer, result eksblueprints.ValidateResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))

	case "text":
		for _, w := range result.Warnings {
			fmt.Fprintf(out, "  warning: %s\n", w)
		}
		if result.Success {
			fmt.Fprintf(out, "Validation passed: %d resources OK\n", result.Resources)
			return nil
		}

		fmt.Fprintln(out, "Validation FAILED:")
		for _, errMsg := range result.Errors {
			fmt.Fprintf(out, "  - %s\n", errMsg)
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if !result.Success {
		return fmt.Errorf("validation failed with %d errors", len(result.Errors))
	}
	return nil
}
