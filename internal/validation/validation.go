// Package validation runs cfn-lint-go over synthesized templates.
package validation

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lex00/cfn-lint-go/pkg/lint"

	eksblueprints "github.com/lex00/eks-blueprints-go"
)

// CfnLintResult contains the result of running cfn-lint.
type CfnLintResult struct {
	Passed        bool     `json:"passed"`
	Errors        []string `json:"errors"`
	Warnings      []string `json:"warnings"`
	Informational []string `json:"informational"`
}

// TotalIssues returns the total number of issues found.
func (r CfnLintResult) TotalIssues() int {
	return len(r.Errors) + len(r.Warnings) + len(r.Informational)
}

// RunCfnLint runs cfn-lint-go on the given template file.
func RunCfnLint(templatePath string) (*CfnLintResult, error) {
	if _, err := os.Stat(templatePath); err != nil {
		return &CfnLintResult{
			Passed: false,
			Errors: []string{fmt.Sprintf("Template file not found: %s", templatePath)},
		}, nil
	}

	linter := lint.New(lint.Options{})
	matches, err := linter.LintFile(templatePath)
	if err != nil {
		return &CfnLintResult{
			Passed: false,
			Errors: []string{fmt.Sprintf("Linter error: %v", err)},
		}, nil
	}

	result := &CfnLintResult{
		Errors:        []string{},
		Warnings:      []string{},
		Informational: []string{},
	}

	for _, match := range matches {
		formatted := formatMatch(match)

		switch match.Level {
		case "Error":
			result.Errors = append(result.Errors, formatted)
		case "Warning":
			result.Warnings = append(result.Warnings, formatted)
		default:
			result.Informational = append(result.Informational, formatted)
		}
	}

	// Warnings are acceptable.
	result.Passed = len(result.Errors) == 0
	slog.Debug("cfn-lint finished", "template", templatePath, "errors", len(result.Errors), "warnings", len(result.Warnings))

	return result, nil
}

// ValidateTemplate writes t to a scratch file and lints it.
func ValidateTemplate(t *eksblueprints.Template) (*CfnLintResult, error) {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling template: %w", err)
	}

	dir, err := os.MkdirTemp("", "eks-blueprints-validate-")
	if err != nil {
		return nil, fmt.Errorf("creating scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "template.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("writing template: %w", err)
	}

	return RunCfnLint(path)
}

// Result converts a lint result into the validate command output.
func (r CfnLintResult) Result(resources int) eksblueprints.ValidateResult {
	return eksblueprints.ValidateResult{
		Success:   r.Passed,
		Resources: resources,
		Errors:    r.Errors,
		Warnings:  r.Warnings,
	}
}

// formatMatch formats a cfn-lint-go match for display.
func formatMatch(match lint.Match) string {
	pathStr := ""
	if len(match.Location.Path) > 0 {
		parts := make([]string, len(match.Location.Path))
		for i, p := range match.Location.Path {
			parts[i] = fmt.Sprintf("%v", p)
		}
		pathStr = strings.Join(parts, "/")
	}

	if pathStr != "" {
		return fmt.Sprintf("%s: %s (at %s)", match.Rule.ID, match.Message, pathStr)
	}
	return fmt.Sprintf("%s: %s", match.Rule.ID, match.Message)
}
