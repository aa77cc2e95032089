package teams

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/lex00/eks-blueprints-go/blueprint"
	"github.com/lex00/eks-blueprints-go/resources/eks"
)

// ManagedByLabel marks namespaces created by a team.
const ManagedByLabel = "app.kubernetes.io/managed-by"

// ApplicationTeamProps configures an ApplicationTeam.
type ApplicationTeamProps struct {
	Name string

	// UserRoleArn is the IAM role the team assumes.
	UserRoleArn blueprint.Resolver[any]

	// TeamManifestDir holds manifests applied into the team namespace.
	// Optional.
	TeamManifestDir string
}

// ApplicationTeam owns a namespace named after the team.
type ApplicationTeam struct {
	props ApplicationTeamProps
}

// NewApplicationTeam returns an application team.
func NewApplicationTeam(props ApplicationTeamProps) *ApplicationTeam {
	return &ApplicationTeam{props: props}
}

// Name returns the team name.
func (t *ApplicationTeam) Name() string { return t.props.Name }

// Props returns the team configuration.
func (t *ApplicationTeam) Props() ApplicationTeamProps { return t.props }

// Setup creates the team namespace, grants edit and view access in it and
// queues the manifests from TeamManifestDir.
func (t *ApplicationTeam) Setup(cluster *blueprint.ClusterInfo) error {
	name := t.props.Name
	arn, err := resolveRole(cluster, name, t.props.UserRoleArn)
	if err != nil {
		return err
	}

	var objects []*unstructured.Unstructured
	if t.props.TeamManifestDir != "" {
		objects, err = ReadManifests(t.props.TeamManifestDir)
		if err != nil {
			return fmt.Errorf("team %s: %w", name, err)
		}
	}

	cluster.AddManifest(&corev1.Namespace{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "Namespace"},
		ObjectMeta: metav1.ObjectMeta{
			Name: name,
			Labels: map[string]string{
				ManagedByLabel: "eks-blueprints",
				"team":         name,
			},
		},
	})

	if err := cluster.GrantAccess(name, arn,
		eks.NamespaceScoped(eks.EditPolicy, name),
		eks.NamespaceScoped(eks.ViewPolicy, name),
	); err != nil {
		return err
	}

	for _, obj := range objects {
		if obj.GetNamespace() == "" && namespaced(obj) {
			obj.SetNamespace(name)
		}
		cluster.AddManifest(obj)
	}
	return nil
}

// clusterScopedKinds are never placed in the team namespace.
var clusterScopedKinds = map[string]bool{
	"Namespace":                true,
	"ClusterRole":              true,
	"ClusterRoleBinding":       true,
	"CustomResourceDefinition": true,
	"StorageClass":             true,
	"PersistentVolume":         true,
	"PriorityClass":            true,
}

func namespaced(obj *unstructured.Unstructured) bool {
	return !clusterScopedKinds[obj.GetKind()]
}

// ReadManifests loads every *.yaml, *.yml and *.json file in dir, in
// lexical order. Multi-document YAML files yield one object per document;
// empty documents are skipped.
func ReadManifests(dir string) ([]*unstructured.Unstructured, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading manifest dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml", ".json":
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	var objects []*unstructured.Unstructured
	for _, f := range files {
		path := filepath.Join(dir, f)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading manifest: %w", err)
		}
		objs, err := decodeManifests(data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		objects = append(objects, objs...)
	}
	return objects, nil
}

func decodeManifests(data []byte) ([]*unstructured.Unstructured, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var objects []*unstructured.Unstructured
	for i := 1; ; i++ {
		var doc map[string]any
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return objects, nil
			}
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		if len(doc) == 0 {
			continue
		}

		raw, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		obj := &unstructured.Unstructured{}
		if err := obj.UnmarshalJSON(raw); err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		objects = append(objects, obj)
	}
}
