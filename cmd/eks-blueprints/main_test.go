package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eksblueprints "github.com/lex00/eks-blueprints-go"
	"github.com/lex00/eks-blueprints-go/internal/infra"
	"github.com/lex00/eks-blueprints-go/internal/publish"
	"github.com/lex00/eks-blueprints-go/internal/schema"
)

// writeConfig points the application team at the repository manifests.
func writeConfig(t *testing.T) string {
	t.Helper()
	t.Setenv(infra.EnvAccount, "")
	t.Setenv(infra.EnvRegion, "")

	manifestDir, err := filepath.Abs("../../manifest/team-application")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "stack.yaml")
	require.NoError(t, os.WriteFile(path, []byte("application_team:\n  manifest_dir: "+manifestDir+"\n"), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestGetVersion(t *testing.T) {
	v := getVersion()
	assert.NotEmpty(t, v)
	if v != "dev" {
		assert.True(t, strings.HasPrefix(v, "v"), "getVersion() = %q, want 'dev' or 'vX.Y.Z'", v)
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"synth", "list", "graph", "diff", "validate", "optimize", "publish", "version"} {
		assert.Contains(t, names, want)
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("log-level"))
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "eks-blueprints "))
}

func TestSynthCmd_Flags(t *testing.T) {
	cmd := newSynthCmd()
	for _, flag := range []string{"output", "format", "config", "watch", "debounce"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "missing --%s", flag)
	}
	assert.Equal(t, "500ms", cmd.Flags().Lookup("debounce").DefValue)
	assert.Equal(t, "cdk.out", cmd.Flags().Lookup("output").DefValue)
}

func TestRunSynth_Stdout(t *testing.T) {
	cfg := writeConfig(t)

	var out bytes.Buffer
	require.NoError(t, runSynth(&out, synthOptions{configPath: cfg, outdir: "-", format: "json"}))

	var tmpl eksblueprints.Template
	require.NoError(t, json.Unmarshal(out.Bytes(), &tmpl))
	assert.Equal(t, "2010-09-09", tmpl.AWSTemplateFormatVersion)

	types := make(map[string]int)
	for _, def := range tmpl.Resources {
		types[def.Type]++
	}
	assert.Equal(t, 1, types["AWS::EKS::Cluster"])
	assert.Equal(t, 4, types["AWS::EKS::Addon"])
	assert.Equal(t, 6, types["AWS::EC2::Subnet"])

	out.Reset()
	require.NoError(t, runSynth(&out, synthOptions{configPath: cfg, outdir: "-", format: "yaml"}))
	assert.Contains(t, out.String(), "AWSTemplateFormatVersion:")
}

func TestRunSynth_Assembly(t *testing.T) {
	cfg := writeConfig(t)
	outdir := t.TempDir()

	var out bytes.Buffer
	require.NoError(t, runSynth(&out, synthOptions{configPath: cfg, outdir: outdir, format: "json"}))
	assert.Contains(t, out.String(), "Synthesized eks-blueprints-cdk")
	assert.Contains(t, out.String(), "aws://unknown-account/unknown-region")

	for _, name := range []string{
		"eks-blueprints-cdk.template.json",
		"eks-blueprints-cdk.manifests.yaml",
		"manifest.json",
	} {
		assert.FileExists(t, filepath.Join(outdir, name))
	}
}

func TestRunSynth_Errors(t *testing.T) {
	cfg := writeConfig(t)

	err := runSynth(&bytes.Buffer{}, synthOptions{configPath: cfg, outdir: "-", format: "toml"})
	assert.ErrorContains(t, err, "unknown format")

	err = runSynth(&bytes.Buffer{}, synthOptions{configPath: filepath.Join(t.TempDir(), "missing.yaml"), outdir: "-", format: "json"})
	assert.Error(t, err)
}

func TestListCmd(t *testing.T) {
	cfg := writeConfig(t)

	out, err := execute(t, "list", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Resources (")
	assert.Contains(t, out, "AWS::EKS::Nodegroup")

	out, err = execute(t, "list", "--config", cfg, "-f", "json")
	require.NoError(t, err)

	var result eksblueprints.ListResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.NotEmpty(t, result.Resources)

	// Dependencies always precede their dependents.
	position := make(map[string]int)
	for i, r := range result.Resources {
		position[r.Name] = i
	}
	for _, r := range result.Resources {
		for _, dep := range r.DependsOn {
			assert.Less(t, position[dep], position[r.Name], "%s listed before %s", r.Name, dep)
		}
	}

	_, err = execute(t, "list", "--config", cfg, "-f", "xml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestGraphCmd(t *testing.T) {
	cfg := writeConfig(t)

	out, err := execute(t, "graph", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "digraph")

	out, err = execute(t, "graph", "--config", cfg, "-f", "mermaid", "-c")
	require.NoError(t, err)
	assert.NotContains(t, out, "digraph")

	_, err = execute(t, "graph", "--config", cfg, "-f", "svg")
	assert.ErrorContains(t, err, "unknown format")
}

func TestDiffCmd(t *testing.T) {
	cfg := writeConfig(t)

	var tmplOut bytes.Buffer
	require.NoError(t, runSynth(&tmplOut, synthOptions{configPath: cfg, outdir: "-", format: "json"}))

	previous := filepath.Join(t.TempDir(), "previous.template.json")
	require.NoError(t, os.WriteFile(previous, tmplOut.Bytes(), 0o644))

	out, err := execute(t, "diff", previous, "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "No changes.")

	var raw map[string]any
	require.NoError(t, json.Unmarshal(tmplOut.Bytes(), &raw))
	resources := raw["Resources"].(map[string]any)
	names := make([]string, 0, len(resources))
	for name := range resources {
		names = append(names, name)
	}
	sort.Strings(names)
	delete(resources, names[0])
	data, err := json.Marshal(raw)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(previous, data, 0o644))

	out, err = execute(t, "diff", previous, "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "+ "+names[0])

	out, err = execute(t, "diff", previous, "--config", cfg, "-f", "json")
	require.NoError(t, err)
	var result eksblueprints.DiffResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 1, result.Summary.Added)

	_, err = execute(t, "diff", filepath.Join(t.TempDir(), "missing.json"), "--config", cfg)
	assert.Error(t, err)
}

func TestValidateCmd_Flags(t *testing.T) {
	cmd := newValidateCmd()
	assert.NotNil(t, cmd.Flags().Lookup("format"))
	assert.NotNil(t, cmd.Flags().Lookup("config"))
}

func TestOutputValidateResult(t *testing.T) {
	var out bytes.Buffer
	err := outputValidateResult(&out, eksblueprints.ValidateResult{Success: true, Resources: 40, Warnings: []string{"W1"}}, "text")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Validation passed: 40 resources OK")
	assert.Contains(t, out.String(), "warning: W1")

	out.Reset()
	err = outputValidateResult(&out, eksblueprints.ValidateResult{Errors: []string{"E3012: bad"}}, "text")
	require.Error(t, err)
	assert.Contains(t, out.String(), "E3012: bad")

	out.Reset()
	err = outputValidateResult(&out, eksblueprints.ValidateResult{Errors: []string{"E1"}}, "json")
	require.Error(t, err)
	assert.Contains(t, out.String(), `"success": false`)
}

func TestRunPublish_NoBucket(t *testing.T) {
	cfg := writeConfig(t)

	err := runPublish(context.Background(), &bytes.Buffer{}, publishOptions{configPath: cfg, format: "json"})
	assert.ErrorIs(t, err, publish.ErrNoBucket)
}

func TestWatchFilter_IsWatched(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "stack.yaml")
	manifests := filepath.Join(t.TempDir(), "team-application")

	filter, err := newWatchFilter(synthOptions{configPath: config, outdir: dir})
	require.NoError(t, err)

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"config write", fsnotify.Event{Name: config, Op: fsnotify.Write}, true},
		{"manifest create", fsnotify.Event{Name: filepath.Join(manifests, "nginx.YML"), Op: fsnotify.Create}, true},
		{"manifest remove", fsnotify.Event{Name: filepath.Join(manifests, "svc.json"), Op: fsnotify.Remove}, true},
		{"chmod", fsnotify.Event{Name: config, Op: fsnotify.Chmod}, false},
		{"other extension", fsnotify.Event{Name: filepath.Join(manifests, "notes.txt"), Op: fsnotify.Write}, false},
		{"assembly manifest", fsnotify.Event{Name: filepath.Join(dir, "manifest.json"), Op: fsnotify.Write}, false},
		{"assembly template", fsnotify.Event{Name: filepath.Join(dir, "eks-blueprints-cdk.template.json"), Op: fsnotify.Create}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, filter.isWatched(tt.event))
		})
	}
}

func TestWatchFilter_StdoutWatchesEverything(t *testing.T) {
	filter, err := newWatchFilter(synthOptions{outdir: "-"})
	require.NoError(t, err)
	assert.Empty(t, filter.outdir)
	assert.True(t, filter.isWatched(fsnotify.Event{Name: "manifest.json", Op: fsnotify.Write}))
}

func TestWatchDirs(t *testing.T) {
	cfg := writeConfig(t)

	dirs, err := watchDirs(cfg)
	require.NoError(t, err)
	require.Len(t, dirs, 2)
	assert.Equal(t, filepath.Dir(cfg), dirs[0])
	assert.True(t, strings.HasSuffix(dirs[1], filepath.Join("manifest", "team-application")))
}

func startWatchLoop(t *testing.T, dir string, filter watchFilter) (<-chan struct{}, context.CancelFunc, <-chan struct{}) {
	t.Helper()
	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	t.Cleanup(func() { _ = watcher.Close() })
	require.NoError(t, watcher.Add(dir))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	rebuilt := make(chan struct{}, 10)
	done := make(chan struct{})
	go func() {
		watchLoop(ctx, watcher, filter, 50*time.Millisecond, &bytes.Buffer{}, func() { rebuilt <- struct{}{} })
		close(done)
	}()
	return rebuilt, cancel, done
}

func TestWatchLoop_Debounces(t *testing.T) {
	dir := t.TempDir()
	rebuilt, cancel, done := startWatchLoop(t, dir, watchFilter{})

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "stack.yaml"), []byte("name: demo\n"), 0o644))
	}

	select {
	case <-rebuilt:
	case <-time.After(5 * time.Second):
		t.Fatal("expected a rebuild after file change")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("watch loop did not stop on cancel")
	}
}

func TestWatchLoop_IgnoresAssemblyOutput(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "stack.yaml")
	filter, err := newWatchFilter(synthOptions{configPath: config, outdir: dir})
	require.NoError(t, err)

	rebuilt, _, _ := startWatchLoop(t, dir, filter)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "eks-blueprints-cdk.template.json"), []byte("{}"), 0o644))

	select {
	case <-rebuilt:
		t.Fatal("assembly output must not trigger a rebuild")
	case <-time.After(300 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(config, []byte("name: demo\n"), 0o644))
	select {
	case <-rebuilt:
	case <-time.After(5 * time.Second):
		t.Fatal("expected a rebuild after config change")
	}
}

func TestValidateTemplate_SchemaErrors(t *testing.T) {
	tmpl := &eksblueprints.Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Resources: map[string]eksblueprints.ResourceDef{
			"Addon": {Type: "AWS::EKS::Addon", Properties: map[string]any{"AddonName": "coredns"}},
		},
	}

	result, err := validateTemplate(tmpl)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Errors, "Addon.ClusterName: missing required property: ClusterName")
}

func TestValidateTemplate_SynthesizedStackPassesSchema(t *testing.T) {
	cfg := writeConfig(t)
	_, stack, err := buildStack(cfg, "")
	require.NoError(t, err)
	tmpl, err := stack.Synth()
	require.NoError(t, err)

	data, err := json.Marshal(tmpl)
	require.NoError(t, err)
	var decoded eksblueprints.Template
	require.NoError(t, json.Unmarshal(data, &decoded))

	result, err := schema.ValidateTemplate(&decoded, schema.Options{Strict: true})
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestOptimizeCmd(t *testing.T) {
	cfg := writeConfig(t)

	out, err := execute(t, "optimize", "--config", cfg, "-f", "json")
	require.NoError(t, err)

	var result eksblueprints.OptimizeResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))

	var rules []string
	for _, s := range result.Suggestions {
		rules = append(rules, s.Rule)
	}
	// One NAT gateway for three private subnets, and a single-type Spot node group.
	assert.Contains(t, rules, "OPT-VPC-001")
	assert.Contains(t, rules, "OPT-EKS-003")

	out, err = execute(t, "optimize", "--config", cfg, "--category", "cost")
	require.NoError(t, err)
	assert.NotContains(t, out, "OPT-VPC-001")
}
