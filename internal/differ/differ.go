// Package differ provides semantic comparison of synthesized templates.
package differ

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"

	eksblueprints "github.com/lex00/eks-blueprints-go"
)

// Options configures the differ.
type Options struct {
	// IgnoreOrder ignores array element order in comparisons
	IgnoreOrder bool
}

// Result contains the difference between two templates.
type Result struct {
	Diff    eksblueprints.TemplateDiff
	Summary eksblueprints.DiffSummary
	// Outputs lists output keys that were added, removed or changed.
	Outputs []string
}

// Compare compares two templates and returns differences.
func Compare(before, after *eksblueprints.Template, opts Options) (*Result, error) {
	result := &Result{}

	res1 := before.Resources
	res2 := after.Resources

	for name, def := range res2 {
		if _, exists := res1[name]; !exists {
			result.Diff.Added = append(result.Diff.Added, eksblueprints.DiffEntry{
				Resource: name,
				Type:     def.Type,
			})
		}
	}

	for name, def := range res1 {
		if _, exists := res2[name]; !exists {
			result.Diff.Removed = append(result.Diff.Removed, eksblueprints.DiffEntry{
				Resource: name,
				Type:     def.Type,
			})
		}
	}

	for name, def1 := range res1 {
		if def2, exists := res2[name]; exists {
			changes := compareResources(def1, def2, opts)
			if len(changes) > 0 {
				result.Diff.Modified = append(result.Diff.Modified, eksblueprints.DiffEntry{
					Resource: name,
					Type:     def1.Type,
					Changes:  changes,
				})
			}
		}
	}

	sortEntries(result.Diff.Added)
	sortEntries(result.Diff.Removed)
	sortEntries(result.Diff.Modified)

	result.Outputs = compareOutputs(before.Outputs, after.Outputs, opts)

	result.Summary = eksblueprints.DiffSummary{
		Added:    len(result.Diff.Added),
		Removed:  len(result.Diff.Removed),
		Modified: len(result.Diff.Modified),
	}
	result.Summary.Total = result.Summary.Added + result.Summary.Removed + result.Summary.Modified

	return result, nil
}

// CompareFiles compares two template files.
func CompareFiles(file1, file2 string, opts Options) (*Result, error) {
	t1, err := LoadTemplate(file1)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", file1, err)
	}

	t2, err := LoadTemplate(file2)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", file2, err)
	}

	return Compare(t1, t2, opts)
}

// LoadTemplate loads a template from a JSON or YAML file.
func LoadTemplate(path string) (*eksblueprints.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseTemplate(data)
}

// ParseTemplate decodes template bytes, trying JSON before YAML.
// Values are normalized through JSON so both formats compare equal.
func ParseTemplate(data []byte) (*eksblueprints.Template, error) {
	var template eksblueprints.Template
	if err := json.Unmarshal(data, &template); err == nil {
		return &template, nil
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse as JSON or YAML: %w", err)
	}
	normalized, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("normalizing template: %w", err)
	}
	if err := json.Unmarshal(normalized, &template); err != nil {
		return nil, fmt.Errorf("decoding template: %w", err)
	}
	return &template, nil
}

// compareResources compares two resource definitions and returns changes.
func compareResources(def1, def2 eksblueprints.ResourceDef, opts Options) []string {
	var changes []string

	if def1.Type != def2.Type {
		changes = append(changes, fmt.Sprintf("Type changed: %s → %s", def1.Type, def2.Type))
	}

	changes = append(changes, compareProperties("", def1.Properties, def2.Properties, opts)...)

	if !equalStringSlices(def1.DependsOn, def2.DependsOn) {
		changes = append(changes, "DependsOn changed")
	}

	return changes
}

// compareProperties compares property maps key by key.
func compareProperties(prefix string, props1, props2 map[string]any, opts Options) []string {
	var changes []string

	for key, val2 := range props2 {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		if val1, exists := props1[key]; exists {
			if !deepEqual(val1, val2, opts) {
				changes = append(changes, fmt.Sprintf("%s modified", path))
			}
		} else {
			changes = append(changes, fmt.Sprintf("%s added", path))
		}
	}

	for key := range props1 {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		if _, exists := props2[key]; !exists {
			changes = append(changes, fmt.Sprintf("%s removed", path))
		}
	}

	sort.Strings(changes)
	return changes
}

// compareOutputs reports output keys whose presence or value differs.
func compareOutputs(out1, out2 map[string]eksblueprints.Output, opts Options) []string {
	var changes []string
	for key, o2 := range out2 {
		o1, exists := out1[key]
		switch {
		case !exists:
			changes = append(changes, key+" added")
		case !deepEqual(toPlain(o1.Value), toPlain(o2.Value), opts):
			changes = append(changes, key+" modified")
		}
	}
	for key := range out1 {
		if _, exists := out2[key]; !exists {
			changes = append(changes, key+" removed")
		}
	}
	sort.Strings(changes)
	return changes
}

// toPlain round-trips a value through JSON so typed intrinsics compare
// equal to their decoded map form.
func toPlain(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

// deepEqual compares two values deeply, optionally ignoring order.
func deepEqual(a, b any, opts Options) bool {
	if opts.IgnoreOrder {
		a = normalizeValue(a)
		b = normalizeValue(b)
	}
	return reflect.DeepEqual(a, b)
}

// normalizeValue sorts slices by their JSON encoding, recursively.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case []any:
		result := make([]any, len(val))
		keys := make([]string, len(val))
		for i, elem := range val {
			result[i] = normalizeValue(elem)
		}
		order := make([]int, len(val))
		for i := range order {
			order[i] = i
			data, _ := json.Marshal(result[i])
			keys[i] = string(data)
		}
		sort.SliceStable(order, func(i, j int) bool {
			return keys[order[i]] < keys[order[j]]
		})
		sorted := make([]any, len(val))
		for i, idx := range order {
			sorted[i] = result[idx]
		}
		return sorted
	case map[string]any:
		result := make(map[string]any)
		for k, v := range val {
			result[k] = normalizeValue(v)
		}
		return result
	default:
		return v
	}
}

// equalStringSlices compares two string slices for equality.
func equalStringSlices(a, b []string) bool {
	return slices.Equal(a, b)
}

// sortEntries sorts diff entries by resource name.
func sortEntries(entries []eksblueprints.DiffEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Resource < entries[j].Resource
	})
}
