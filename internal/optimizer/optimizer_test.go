package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eksblueprints "github.com/lex00/eks-blueprints-go"
)

func subnet(subnetType string) eksblueprints.ResourceDef {
	return eksblueprints.ResourceDef{
		Type: "AWS::EC2::Subnet",
		Properties: map[string]any{
			"Tags": []any{map[string]any{"Key": "aws-cdk:subnet-type", "Value": subnetType}},
		},
	}
}

func demoTemplate() *eksblueprints.Template {
	return &eksblueprints.Template{
		Resources: map[string]eksblueprints.ResourceDef{
			"Cluster": {
				Type: "AWS::EKS::Cluster",
				Properties: map[string]any{
					"ResourcesVpcConfig": map[string]any{"EndpointPublicAccess": true},
					"AccessConfig":       map[string]any{"AuthenticationMode": "API_AND_CONFIG_MAP"},
				},
			},
			"Nodegroup": {
				Type: "AWS::EKS::Nodegroup",
				Properties: map[string]any{
					"CapacityType":  "SPOT",
					"InstanceTypes": []any{"t3.medium"},
					"ScalingConfig": map[string]any{"MinSize": int64(1)},
				},
			},
			"CoreDns": {
				Type:       "AWS::EKS::Addon",
				Properties: map[string]any{"AddonName": "coredns", "AddonVersion": "v1.9.3-eksbuild.2"},
			},
			"VpcCni": {
				Type:       "AWS::EKS::Addon",
				Properties: map[string]any{"AddonName": "vpc-cni"},
			},
			"Vpc":      {Type: "AWS::EC2::VPC"},
			"Nat":      {Type: "AWS::EC2::NatGateway"},
			"Public1":  subnet("Public"),
			"Private1": subnet("Private"),
			"Private2": subnet("Private"),
			"Private3": subnet("Private"),
		},
	}
}

func rules(result *Result) []string {
	var ids []string
	for _, s := range result.Suggestions {
		ids = append(ids, s.Rule)
	}
	return ids
}

func TestOptimize(t *testing.T) {
	result, err := Optimize(demoTemplate(), Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"OPT-EKS-001", "OPT-EKS-002",
		"OPT-EKS-003", "OPT-EKS-004",
		"OPT-EKS-006",
		"OPT-VPC-001",
	}, rules(result))

	assert.Equal(t, eksblueprints.OptimizeSummary{
		Security:    2,
		Performance: 1,
		Reliability: 3,
		Total:       6,
	}, result.Summary)

	last := result.Suggestions[len(result.Suggestions)-1]
	assert.Equal(t, "Vpc", last.Resource)
	assert.Equal(t, "1 NAT gateways serve 3 private subnets", last.Title)
	assert.Equal(t, "VpcCni", result.Suggestions[4].Resource)
}

func TestOptimizeWithCategoryFilter(t *testing.T) {
	tests := []struct {
		category string
		expected []string
	}{
		{CategorySecurity, []string{"OPT-EKS-001", "OPT-EKS-002"}},
		{CategoryCost, nil},
		{CategoryPerformance, []string{"OPT-EKS-006"}},
		{CategoryReliability, []string{"OPT-EKS-003", "OPT-EKS-004", "OPT-VPC-001"}},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			result, err := Optimize(demoTemplate(), Options{Category: tt.category})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, rules(result))
		})
	}
}

func TestOptimize_HardenedTemplate(t *testing.T) {
	tmpl := &eksblueprints.Template{
		Resources: map[string]eksblueprints.ResourceDef{
			"Cluster": {
				Type: "AWS::EKS::Cluster",
				Properties: map[string]any{
					"ResourcesVpcConfig": map[string]any{"EndpointPublicAccess": false},
					"AccessConfig":       map[string]any{"AuthenticationMode": "API"},
				},
			},
			"Nodegroup": {
				Type: "AWS::EKS::Nodegroup",
				Properties: map[string]any{
					"CapacityType":  "SPOT",
					"InstanceTypes": []any{"m5.large", "m5a.large"},
					"ScalingConfig": map[string]any{"MinSize": float64(2)},
				},
			},
			"Nat1":     {Type: "AWS::EC2::NatGateway"},
			"Nat2":     {Type: "AWS::EC2::NatGateway"},
			"Private1": subnet("Private"),
			"Private2": subnet("Private"),
		},
	}

	result, err := Optimize(tmpl, Options{Category: CategoryAll})
	require.NoError(t, err)
	assert.Empty(t, result.Suggestions)
	assert.Zero(t, result.Summary.Total)
}

func TestOptimize_OnDemandAndAdminRole(t *testing.T) {
	tmpl := &eksblueprints.Template{
		Resources: map[string]eksblueprints.ResourceDef{
			"Nodegroup": {
				Type: "AWS::EKS::Nodegroup",
				Properties: map[string]any{
					"CapacityType":  "ON_DEMAND",
					"ScalingConfig": map[string]any{"MinSize": int64(3)},
				},
			},
			"NodeRole": {
				Type: "AWS::IAM::Role",
				Properties: map[string]any{
					"ManagedPolicyArns": []any{
						map[string]any{"Fn::Sub": "arn:${AWS::Partition}:iam::aws:policy/AdministratorAccess"},
					},
				},
			},
		},
	}

	result, err := Optimize(tmpl, Options{})
	require.NoError(t, err)
	// NodeRole sorts before Nodegroup.
	assert.Equal(t, []string{"OPT-IAM-001", "OPT-EKS-005"}, rules(result))
	assert.Equal(t, "high", result.Suggestions[0].Severity)
}

func TestToInt(t *testing.T) {
	for _, v := range []any{2, int64(2), float64(2)} {
		n, ok := toInt(v)
		assert.True(t, ok)
		assert.Equal(t, 2, n)
	}
	_, ok := toInt("2")
	assert.False(t, ok)
}
