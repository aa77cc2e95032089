// Package optimizer suggests security, cost, performance and reliability
// improvements for a synthesized blueprint template.
package optimizer

import (
	"sort"

	eksblueprints "github.com/lex00/eks-blueprints-go"
)

// Categories accepted by Options.Category.
const (
	CategoryAll         = "all"
	CategorySecurity    = "security"
	CategoryCost        = "cost"
	CategoryPerformance = "performance"
	CategoryReliability = "reliability"
)

// Options configures the optimizer.
type Options struct {
	// Category filters suggestions. Empty means all.
	Category string
}

// Result contains optimization suggestions.
type Result struct {
	Suggestions []eksblueprints.OptimizeSuggestion
	Summary     eksblueprints.OptimizeSummary
}

// Rule is a check applied to every resource of one CloudFormation type.
type Rule struct {
	ID       string
	Category string
	Check    func(name string, res eksblueprints.ResourceDef) *eksblueprints.OptimizeSuggestion
}

// TemplateRule is a check that needs the whole template.
type TemplateRule struct {
	ID       string
	Category string
	Check    func(t *eksblueprints.Template) []eksblueprints.OptimizeSuggestion
}

// Optimize analyzes the template and returns suggestions ordered by
// resource name and rule.
func Optimize(t *eksblueprints.Template, opts Options) (*Result, error) {
	result := &Result{}
	category := opts.Category
	if category == "" {
		category = CategoryAll
	}

	names := make([]string, 0, len(t.Resources))
	for name := range t.Resources {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		res := t.Resources[name]
		for _, rule := range resourceRules[res.Type] {
			if category != CategoryAll && rule.Category != category {
				continue
			}
			if s := rule.Check(name, res); s != nil {
				s.Rule = rule.ID
				s.Category = rule.Category
				result.Suggestions = append(result.Suggestions, *s)
			}
		}
	}

	for _, rule := range templateRules {
		if category != CategoryAll && rule.Category != category {
			continue
		}
		for _, s := range rule.Check(t) {
			s.Rule = rule.ID
			s.Category = rule.Category
			result.Suggestions = append(result.Suggestions, s)
		}
	}

	result.Summary = calculateSummary(result.Suggestions)
	return result, nil
}

// calculateSummary tallies suggestions by category.
func calculateSummary(suggestions []eksblueprints.OptimizeSuggestion) eksblueprints.OptimizeSummary {
	summary := eksblueprints.OptimizeSummary{}
	for _, s := range suggestions {
		switch s.Category {
		case CategorySecurity:
			summary.Security++
		case CategoryCost:
			summary.Cost++
		case CategoryPerformance:
			summary.Performance++
		case CategoryReliability:
			summary.Reliability++
		}
		summary.Total++
	}
	return summary
}
