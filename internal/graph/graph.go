// Package graph renders the resource dependency graph of a synthesized
// template in DOT or Mermaid format.
package graph

import (
	"io"
	"sort"
	"strings"

	"github.com/emicklei/dot"

	eksblueprints "github.com/lex00/eks-blueprints-go"
	"github.com/lex00/eks-blueprints-go/internal/template"
)

// Format specifies the output format for the graph.
type Format string

const (
	// FormatDOT outputs Graphviz DOT format.
	FormatDOT Format = "dot"
	// FormatMermaid outputs Mermaid format for GitHub/markdown rendering.
	FormatMermaid Format = "mermaid"
)

// Generator creates dependency graphs from templates.
type Generator struct {
	// Format specifies the output format (dot or mermaid). Defaults to dot.
	Format Format

	// ClusterByType groups resources by AWS service (EC2, EKS, IAM).
	ClusterByType bool
}

// Generate creates a dependency graph and writes it to w.
func (g *Generator) Generate(t *eksblueprints.Template, w io.Writer) error {
	graph := g.buildGraph(t)

	format := g.Format
	if format == "" {
		format = FormatDOT
	}

	var output string
	if format == FormatMermaid {
		output = dot.MermaidGraph(graph, dot.MermaidTopToBottom)
	} else {
		output = graph.String()
	}

	_, err := w.Write([]byte(output))
	return err
}

// GenerateString is a convenience method that returns the graph as a string.
func (g *Generator) GenerateString(t *eksblueprints.Template) (string, error) {
	var sb strings.Builder
	if err := g.Generate(t, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// buildGraph creates the dot.Graph structure from template resources.
func (g *Generator) buildGraph(t *eksblueprints.Template) *dot.Graph {
	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "TB")

	graph.NodeInitializer(func(n dot.Node) {
		n.Attr("shape", "box")
		n.Attr("fontname", "Arial")
	})

	graph.EdgeInitializer(func(e dot.Edge) {
		e.Attr("fontname", "Arial")
		e.Attr("fontsize", "10")
	})

	names := make([]string, 0, len(t.Resources))
	for name := range t.Resources {
		names = append(names, name)
	}
	sort.Strings(names)

	var nodes map[string]dot.Node
	if g.ClusterByType {
		nodes = addClusteredNodes(graph, t, names)
	} else {
		nodes = make(map[string]dot.Node, len(names))
		for _, name := range names {
			nodes[name] = addNode(graph, name, t.Resources[name].Type)
		}
	}

	for _, name := range names {
		res := t.Resources[name]
		getAtts := getAttTargets(res.Properties)

		for _, dep := range template.References(res.Properties) {
			target, ok := nodes[dep]
			if !ok {
				continue
			}
			e := graph.Edge(nodes[name], target)
			if getAtts[dep] {
				e.Attr("color", "blue")
			}
		}

		for _, dep := range res.DependsOn {
			target, ok := nodes[dep]
			if !ok {
				continue
			}
			graph.Edge(nodes[name], target).Attr("style", "dashed")
		}
	}

	return graph
}

// addNode creates a resource node labelled with its logical ID and type.
func addNode(g *dot.Graph, name, cfType string) dot.Node {
	return g.Node(name).Label(name + "\\n[" + cfType + "]")
}

// addClusteredNodes adds resource nodes grouped by AWS service. Services
// with a single resource stay at the top level.
func addClusteredNodes(graph *dot.Graph, t *eksblueprints.Template, names []string) map[string]dot.Node {
	serviceResources := make(map[string][]string)
	var services []string

	for _, name := range names {
		service := extractService(t.Resources[name].Type)
		if _, seen := serviceResources[service]; !seen {
			services = append(services, service)
		}
		serviceResources[service] = append(serviceResources[service], name)
	}
	sort.Strings(services)

	nodes := make(map[string]dot.Node, len(names))
	for _, service := range services {
		resNames := serviceResources[service]
		parent := graph
		if len(resNames) > 1 {
			parent = graph.Subgraph(service, dot.ClusterOption{})
			parent.Attr("label", service)
			parent.Attr("style", "rounded")
			parent.Attr("bgcolor", "lightyellow")
		}
		for _, name := range resNames {
			nodes[name] = addNode(parent, name, t.Resources[name].Type)
		}
	}
	return nodes
}

// getAttTargets returns the logical IDs referenced through Fn::GetAtt.
func getAttTargets(value any) map[string]bool {
	targets := make(map[string]bool)
	var walk func(v any)
	walk = func(v any) {
		switch val := v.(type) {
		case map[string]any:
			if att, ok := val["Fn::GetAtt"].([]any); ok && len(att) > 0 {
				if name, ok := att[0].(string); ok {
					targets[name] = true
				}
			}
			for _, child := range val {
				walk(child)
			}
		case []any:
			for _, child := range val {
				walk(child)
			}
		}
	}
	walk(value)
	return targets
}

// extractService extracts the AWS service from a CloudFormation type.
// e.g., "AWS::EKS::Nodegroup" -> "EKS"
func extractService(cfType string) string {
	parts := strings.Split(cfType, "::")
	if len(parts) == 3 {
		return parts[1]
	}
	return "Other"
}
