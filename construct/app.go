package construct

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	eksblueprints "github.com/lex00/eks-blueprints-go"
	"github.com/lex00/eks-blueprints-go/internal/template"
)

// DefaultOutdir is the cloud assembly directory used when none is set.
const DefaultOutdir = "cdk.out"

// AssemblyVersion is the schema version written to manifest.json.
const AssemblyVersion = "36.0.0"

// Format selects the template encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// App is the root of a cloud assembly.
type App struct {
	Outdir string

	stacks []*Stack
}

// NewApp creates an app writing to outdir (DefaultOutdir when empty).
func NewApp(outdir string) *App {
	if outdir == "" {
		outdir = DefaultOutdir
	}
	return &App{Outdir: outdir}
}

// Stacks returns the app's stacks in creation order.
func (a *App) Stacks() []*Stack {
	return a.stacks
}

// Synth synthesizes every stack and writes the cloud assembly to Outdir.
func (a *App) Synth(format Format) (*eksblueprints.AssemblyManifest, error) {
	if format == "" {
		format = FormatJSON
	}
	if format != FormatJSON && format != FormatYAML {
		return nil, fmt.Errorf("unsupported format: %s", format)
	}

	if err := os.MkdirAll(a.Outdir, 0o755); err != nil {
		return nil, fmt.Errorf("creating assembly directory: %w", err)
	}

	manifest := &eksblueprints.AssemblyManifest{
		Version:   AssemblyVersion,
		Artifacts: make(map[string]eksblueprints.Artifact, len(a.stacks)),
	}

	for _, s := range a.stacks {
		t, err := s.Synth()
		if err != nil {
			return nil, err
		}

		var data []byte
		if format == FormatYAML {
			data, err = template.ToYAML(t)
		} else {
			data, err = template.ToJSON(t)
		}
		if err != nil {
			return nil, fmt.Errorf("encoding stack %s: %w", s.id, err)
		}

		props := eksblueprints.ArtifactProperties{
			TemplateFile: s.id + ".template." + string(format),
		}
		if err := a.write(props.TemplateFile, data); err != nil {
			return nil, err
		}

		bundle, err := s.ManifestsYAML()
		if err != nil {
			return nil, fmt.Errorf("stack %s: %w", s.id, err)
		}
		if bundle != nil {
			props.ManifestFile = s.id + ".manifests.yaml"
			if err := a.write(props.ManifestFile, bundle); err != nil {
				return nil, err
			}
		}

		manifest.Artifacts[s.id] = eksblueprints.Artifact{
			Type:        "aws:cloudformation:stack",
			Environment: eksblueprints.Environment(s.account, s.region),
			Properties:  props,
		}

		slog.Debug("synthesized stack",
			"stack", s.id,
			"resources", len(t.Resources),
			"manifests", len(s.manifests),
		)
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding assembly manifest: %w", err)
	}
	if err := a.write("manifest.json", data); err != nil {
		return nil, err
	}

	return manifest, nil
}

func (a *App) write(name string, data []byte) error {
	path := filepath.Join(a.Outdir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
