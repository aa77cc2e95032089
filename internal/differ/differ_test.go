package differ

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eksblueprints "github.com/lex00/eks-blueprints-go"
)

func nodegroup(instanceType string, deps ...string) eksblueprints.ResourceDef {
	return eksblueprints.ResourceDef{
		Type: "AWS::EKS::Nodegroup",
		Properties: map[string]any{
			"ClusterName":   map[string]any{"Ref": "Cluster"},
			"InstanceTypes": []any{instanceType},
		},
		DependsOn: deps,
	}
}

func TestCompare(t *testing.T) {
	before := &eksblueprints.Template{
		Resources: map[string]eksblueprints.ResourceDef{
			"NodegroupA": nodegroup("t3.medium"),
			"NodegroupB": nodegroup("t3.medium"),
		},
	}
	after := &eksblueprints.Template{
		Resources: map[string]eksblueprints.ResourceDef{
			"NodegroupA": nodegroup("m5.large"),
			"NodegroupC": nodegroup("t3.medium"),
		},
	}

	result, err := Compare(before, after, Options{})
	require.NoError(t, err)

	require.Len(t, result.Diff.Removed, 1)
	assert.Equal(t, "NodegroupB", result.Diff.Removed[0].Resource)

	require.Len(t, result.Diff.Added, 1)
	assert.Equal(t, "NodegroupC", result.Diff.Added[0].Resource)
	assert.Equal(t, "AWS::EKS::Nodegroup", result.Diff.Added[0].Type)

	require.Len(t, result.Diff.Modified, 1)
	assert.Equal(t, "NodegroupA", result.Diff.Modified[0].Resource)
	assert.Equal(t, []string{"InstanceTypes modified"}, result.Diff.Modified[0].Changes)

	assert.Equal(t, eksblueprints.DiffSummary{Added: 1, Removed: 1, Modified: 1, Total: 3}, result.Summary)
}

func TestCompareIdentical(t *testing.T) {
	tmpl := &eksblueprints.Template{
		Resources: map[string]eksblueprints.ResourceDef{
			"Nodegroup": nodegroup("t3.medium"),
		},
	}

	result, err := Compare(tmpl, tmpl, Options{})
	require.NoError(t, err)
	assert.Zero(t, result.Summary.Total)
	assert.Empty(t, result.Outputs)
}

func TestCompareEmpty(t *testing.T) {
	empty := &eksblueprints.Template{Resources: map[string]eksblueprints.ResourceDef{}}

	result, err := Compare(empty, empty, Options{})
	require.NoError(t, err)
	assert.Zero(t, result.Summary.Total)
}

func TestCompareTypeAndDependsOn(t *testing.T) {
	before := &eksblueprints.Template{
		Resources: map[string]eksblueprints.ResourceDef{
			"Addon": {Type: "AWS::EKS::Addon"},
			"Dns":   nodegroup("t3.medium", "Nodegroup"),
		},
	}
	after := &eksblueprints.Template{
		Resources: map[string]eksblueprints.ResourceDef{
			"Addon": {Type: "AWS::EKS::Cluster"},
			"Dns":   nodegroup("t3.medium"),
		},
	}

	result, err := Compare(before, after, Options{})
	require.NoError(t, err)
	require.Len(t, result.Diff.Modified, 2)
	assert.Contains(t, result.Diff.Modified[0].Changes[0], "Type changed")
	assert.Equal(t, []string{"DependsOn changed"}, result.Diff.Modified[1].Changes)
}

func TestCompareProperties(t *testing.T) {
	props1 := map[string]any{"A": "1", "B": "2"}
	props2 := map[string]any{"A": "x", "C": "3"}

	changes := compareProperties("", props1, props2, Options{})
	assert.Equal(t, []string{"A modified", "B removed", "C added"}, changes)

	nested := compareProperties("Scaling", map[string]any{"Min": 1}, map[string]any{}, Options{})
	assert.Equal(t, []string{"Scaling.Min removed"}, nested)
}

func TestCompareIgnoreOrder(t *testing.T) {
	before := &eksblueprints.Template{
		Resources: map[string]eksblueprints.ResourceDef{
			"Cluster": {
				Type:       "AWS::EKS::Cluster",
				Properties: map[string]any{"SubnetIds": []any{"a", "b", "c"}},
			},
		},
	}
	after := &eksblueprints.Template{
		Resources: map[string]eksblueprints.ResourceDef{
			"Cluster": {
				Type:       "AWS::EKS::Cluster",
				Properties: map[string]any{"SubnetIds": []any{"c", "a", "b"}},
			},
		},
	}

	strict, err := Compare(before, after, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, strict.Summary.Modified)

	loose, err := Compare(before, after, Options{IgnoreOrder: true})
	require.NoError(t, err)
	assert.Zero(t, loose.Summary.Total)
}

func TestCompareOutputs(t *testing.T) {
	before := &eksblueprints.Template{
		Outputs: map[string]eksblueprints.Output{
			"ClusterName": {Value: map[string]any{"Ref": "Cluster"}},
			"VpcId":       {Value: map[string]any{"Ref": "Vpc"}},
		},
	}
	after := &eksblueprints.Template{
		Outputs: map[string]eksblueprints.Output{
			"ClusterName": {Value: map[string]string{"Ref": "Cluster"}},
			"VpcId":       {Value: map[string]any{"Ref": "OtherVpc"}},
			"Endpoint":    {Value: "x"},
		},
	}

	result, err := Compare(before, after, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Endpoint added", "VpcId modified"}, result.Outputs)
}

func TestCompareFiles_JSONAndYAML(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "a.template.json")
	yamlPath := filepath.Join(dir, "b.template.yaml")

	require.NoError(t, os.WriteFile(jsonPath, []byte(`{
  "AWSTemplateFormatVersion": "2010-09-09",
  "Resources": {
    "Vpc": {"Type": "AWS::EC2::VPC", "Properties": {"CidrBlock": "10.1.0.0/16", "MaxAzs": 3}}
  }
}`), 0644))
	require.NoError(t, os.WriteFile(yamlPath, []byte(`AWSTemplateFormatVersion: "2010-09-09"
Resources:
  Vpc:
    Type: AWS::EC2::VPC
    Properties:
      CidrBlock: 10.1.0.0/16
      MaxAzs: 3
`), 0644))

	result, err := CompareFiles(jsonPath, yamlPath, Options{})
	require.NoError(t, err)
	assert.Zero(t, result.Summary.Total)
}

func TestCompareFiles_Missing(t *testing.T) {
	_, err := CompareFiles("/nonexistent/a.json", "/nonexistent/b.json", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load")
}

func TestParseTemplate_Invalid(t *testing.T) {
	_, err := ParseTemplate([]byte("[unclosed"))
	require.Error(t, err)
}

func TestEqualStringSlices(t *testing.T) {
	tests := []struct {
		a, b     []string
		expected bool
	}{
		{nil, nil, true},
		{[]string{"a"}, []string{"a"}, true},
		{[]string{"a", "b"}, []string{"b", "a"}, false},
		{[]string{"a"}, nil, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, equalStringSlices(tt.a, tt.b))
	}
}
