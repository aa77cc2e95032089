// Package template assembles CloudFormation templates from typed resources.
package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	eksblueprints "github.com/lex00/eks-blueprints-go"
	"github.com/lex00/eks-blueprints-go/internal/serialize"
)

// ErrDuplicateResource is returned when a logical ID is added twice.
var ErrDuplicateResource = errors.New("duplicate logical id")

type entry struct {
	resource  eksblueprints.Resource
	props     map[string]any
	dependsOn []string
}

// Builder constructs a CloudFormation template from typed resources.
type Builder struct {
	description string
	resources   map[string]*entry
	outputs     map[string]eksblueprints.Output
}

// NewBuilder creates an empty template builder.
func NewBuilder() *Builder {
	return &Builder{
		resources: make(map[string]*entry),
		outputs:   make(map[string]eksblueprints.Output),
	}
}

// SetDescription sets the template description.
func (b *Builder) SetDescription(desc string) {
	b.description = desc
}

// AddResource registers a resource under a logical ID. Explicit dependencies
// become the resource's DependsOn attribute.
func (b *Builder) AddResource(name string, res eksblueprints.Resource, dependsOn ...string) error {
	if _, exists := b.resources[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateResource, name)
	}
	b.resources[name] = &entry{resource: res, dependsOn: dependsOn}
	return nil
}

// AddOutput registers a template output.
func (b *Builder) AddOutput(name string, out eksblueprints.Output) {
	b.outputs[name] = out
}

// Len returns the number of registered resources.
func (b *Builder) Len() int {
	return len(b.resources)
}

// Build serializes every resource and constructs the template.
// Resources referencing an unknown logical ID or forming a cycle are errors.
func (b *Builder) Build() (*eksblueprints.Template, error) {
	for name, e := range b.resources {
		props, err := serialize.Properties(e.resource)
		if err != nil {
			return nil, fmt.Errorf("serializing %s: %w", name, err)
		}
		e.props = props
	}

	for name, e := range b.resources {
		for _, dep := range b.dependencies(e) {
			if _, ok := b.resources[dep]; !ok {
				return nil, fmt.Errorf("%s references unknown resource %q", name, dep)
			}
		}
	}

	if _, err := b.Order(); err != nil {
		return nil, err
	}

	template := &eksblueprints.Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Description:              b.description,
		Resources:                make(map[string]eksblueprints.ResourceDef, len(b.resources)),
	}

	for name, e := range b.resources {
		var dependsOn []string
		if len(e.dependsOn) > 0 {
			dependsOn = append(dependsOn, e.dependsOn...)
			sort.Strings(dependsOn)
		}
		template.Resources[name] = eksblueprints.ResourceDef{
			Type:       e.resource.ResourceType(),
			Properties: e.props,
			DependsOn:  dependsOn,
		}
	}

	if len(b.outputs) > 0 {
		template.Outputs = make(map[string]eksblueprints.Output, len(b.outputs))
		for name, out := range b.outputs {
			template.Outputs[name] = out
		}
	}

	return template, nil
}

// dependencies merges explicit DependsOn with Ref/GetAtt targets.
func (b *Builder) dependencies(e *entry) []string {
	seen := make(map[string]bool)
	var deps []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			deps = append(deps, name)
		}
	}
	for _, d := range e.dependsOn {
		add(d)
	}
	for _, d := range References(e.props) {
		add(d)
	}
	return deps
}

// Order returns logical IDs in dependency order.
// Build must have been called so references are known.
func (b *Builder) Order() ([]string, error) {
	graph := make(map[string][]string)
	inDegree := make(map[string]int)

	for name := range b.resources {
		graph[name] = nil
		inDegree[name] = 0
	}

	for name, e := range b.resources {
		for _, dep := range b.dependencies(e) {
			if _, exists := b.resources[dep]; exists {
				graph[dep] = append(graph[dep], name)
				inDegree[name]++
			}
		}
	}

	// Kahn's algorithm
	var queue []string
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	var result []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, neighbor := range graph[node] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
				sort.Strings(queue)
			}
		}
	}

	if len(result) != len(b.resources) {
		return nil, b.detectCycle()
	}

	return result, nil
}

// detectCycle finds and reports a cycle in the dependency graph.
func (b *Builder) detectCycle() error {
	visited := make(map[string]bool)
	path := make(map[string]bool)

	var cycle []string
	var findCycle func(node string) bool
	findCycle = func(node string) bool {
		visited[node] = true
		path[node] = true

		for _, dep := range b.dependencies(b.resources[node]) {
			if _, exists := b.resources[dep]; !exists {
				continue
			}
			if !visited[dep] {
				if findCycle(dep) {
					cycle = append([]string{node}, cycle...)
					return true
				}
			} else if path[dep] {
				cycle = append([]string{dep, node}, cycle...)
				return true
			}
		}

		path[node] = false
		return false
	}

	names := make([]string, 0, len(b.resources))
	for name := range b.resources {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !visited[name] && findCycle(name) {
			break
		}
	}

	if len(cycle) > 0 {
		return fmt.Errorf("circular dependency detected: %s", strings.Join(cycle, " → "))
	}
	return errors.New("circular dependency detected")
}

// References returns the logical IDs targeted by Ref and Fn::GetAtt inside
// a serialized property tree. Pseudo parameters (AWS::*) are skipped.
func References(value any) []string {
	seen := make(map[string]bool)
	var refs []string
	var walk func(v any)
	walk = func(v any) {
		switch t := v.(type) {
		case map[string]any:
			if ref, ok := t["Ref"].(string); ok && !strings.HasPrefix(ref, "AWS::") {
				if !seen[ref] {
					seen[ref] = true
					refs = append(refs, ref)
				}
			}
			if att, ok := t["Fn::GetAtt"].([]any); ok && len(att) > 0 {
				if name, ok := att[0].(string); ok && !seen[name] {
					seen[name] = true
					refs = append(refs, name)
				}
			}
			keys := make([]string, 0, len(t))
			for k := range t {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				walk(t[k])
			}
		case []any:
			for _, elem := range t {
				walk(elem)
			}
		}
	}
	walk(value)
	return refs
}

// ToJSON serializes the template to JSON.
func ToJSON(t *eksblueprints.Template) ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// ToYAML serializes the template to YAML.
func ToYAML(t *eksblueprints.Template) ([]byte, error) {
	return yaml.Marshal(t)
}
