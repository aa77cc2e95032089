package construct

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/yaml"

	eksblueprints "github.com/lex00/eks-blueprints-go"
	"github.com/lex00/eks-blueprints-go/internal/serialize"
	"github.com/lex00/eks-blueprints-go/internal/template"
)

// ErrDuplicateID is returned when a construct id is registered twice in a stack.
var ErrDuplicateID = errors.New("duplicate construct id")

// Stack is a deployable unit: one CloudFormation template plus the
// Kubernetes manifests applied to the cluster it creates.
type Stack struct {
	app     *App
	id      string
	account string
	region  string

	ids       map[string]string
	builder   *template.Builder
	manifests []runtime.Object

	synthesized *eksblueprints.Template
}

// NewStack creates a stack and adds it to the app.
// Empty account or region leave the stack environment-agnostic.
func NewStack(app *App, id, account, region string) (*Stack, error) {
	for _, s := range app.stacks {
		if s.id == id {
			return nil, fmt.Errorf("%w: stack %s", ErrDuplicateID, id)
		}
	}
	s := &Stack{
		app:     app,
		id:      id,
		account: account,
		region:  region,
		ids:     make(map[string]string),
		builder: template.NewBuilder(),
	}
	app.stacks = append(app.stacks, s)
	return s, nil
}

// ID returns the stack name.
func (s *Stack) ID() string { return s.id }

// Account returns the target account, empty when unknown.
func (s *Stack) Account() string { return s.account }

// Region returns the target region, empty when unknown.
func (s *Stack) Region() string { return s.region }

// SetDescription sets the template description.
func (s *Stack) SetDescription(desc string) {
	s.builder.SetDescription(desc)
}

// LogicalID returns the logical ID a construct path maps to.
func LogicalID(path string) string {
	return serialize.LogicalID(strings.Split(path, "/")...)
}

// Reserve claims a construct path without emitting a resource, as imported
// resources do. It returns the logical ID for the path.
func (s *Stack) Reserve(path string) (string, error) {
	logicalID := LogicalID(path)
	if logicalID == "" {
		return "", fmt.Errorf("construct id %q has no alphanumeric characters", path)
	}
	if owner, exists := s.ids[logicalID]; exists {
		return "", fmt.Errorf("%w: %s (already used by %s)", ErrDuplicateID, path, owner)
	}
	s.ids[logicalID] = path
	return logicalID, nil
}

// AddResource registers a resource under a construct path and returns its
// logical ID. Explicit dependencies become DependsOn; Ref and Fn::GetAtt
// dependencies are discovered from the properties at synthesis.
func (s *Stack) AddResource(path string, res eksblueprints.Resource, dependsOn ...string) (string, error) {
	logicalID, err := s.Reserve(path)
	if err != nil {
		return "", err
	}
	if err := s.builder.AddResource(logicalID, res, dependsOn...); err != nil {
		return "", err
	}
	s.synthesized = nil

	slog.Debug("registered resource",
		"stack", s.id,
		"logical_id", logicalID,
		"type", res.ResourceType(),
	)
	return logicalID, nil
}

// AddOutput registers a stack output.
func (s *Stack) AddOutput(name string, out eksblueprints.Output) {
	s.builder.AddOutput(name, out)
	s.synthesized = nil
}

// AddManifest queues a Kubernetes object for the stack's manifest bundle.
func (s *Stack) AddManifest(obj runtime.Object) {
	s.manifests = append(s.manifests, obj)
}

// Manifests returns the queued Kubernetes objects in registration order.
func (s *Stack) Manifests() []runtime.Object {
	return s.manifests
}

// Synth builds the stack's CloudFormation template. The result is cached
// until another resource or output is added.
func (s *Stack) Synth() (*eksblueprints.Template, error) {
	if s.synthesized != nil {
		return s.synthesized, nil
	}
	t, err := s.builder.Build()
	if err != nil {
		return nil, fmt.Errorf("synthesizing stack %s: %w", s.id, err)
	}
	s.synthesized = t
	return t, nil
}

// Order returns logical IDs in dependency order.
func (s *Stack) Order() ([]string, error) {
	if _, err := s.Synth(); err != nil {
		return nil, err
	}
	return s.builder.Order()
}

// ManifestsYAML renders the queued Kubernetes objects as a multi-document
// YAML stream. It returns nil when no manifests were queued.
func (s *Stack) ManifestsYAML() ([]byte, error) {
	if len(s.manifests) == 0 {
		return nil, nil
	}
	var buf bytes.Buffer
	for i, obj := range s.manifests {
		data, err := yaml.Marshal(obj)
		if err != nil {
			return nil, fmt.Errorf("rendering manifest %d: %w", i, err)
		}
		if i > 0 {
			buf.WriteString("---\n")
		}
		buf.Write(data)
	}
	return buf.Bytes(), nil
}
