package blueprint

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eksblueprints "github.com/lex00/eks-blueprints-go"
	"github.com/lex00/eks-blueprints-go/construct"
	"github.com/lex00/eks-blueprints-go/intrinsics"
	"github.com/lex00/eks-blueprints-go/network"
	"github.com/lex00/eks-blueprints-go/resources/eks"
)

type recordingAddOn struct {
	name  string
	calls *[]string
	err   error
}

func (a recordingAddOn) Name() string { return a.name }

func (a recordingAddOn) Deploy(*ClusterInfo) error {
	*a.calls = append(*a.calls, "addon:"+a.name)
	return a.err
}

type recordingTeam struct {
	name  string
	calls *[]string
}

func (t recordingTeam) Name() string { return t.name }

func (t recordingTeam) Setup(*ClusterInfo) error {
	*t.calls = append(*t.calls, "team:"+t.name)
	return nil
}

func demoProvider() *GenericClusterProvider {
	return NewGenericClusterProvider(ClusterProps{
		Version: V1_26,
		MastersRole: GetResource(func(ctx *ResourceContext) (*ImportedRole, error) {
			return RoleFromName(ctx.Scope, "ClusterAdminRole", "Admin")
		}),
		ManagedNodeGroups: []ManagedNodeGroup{
			{ID: "eks-managed", AmiType: eks.AmiTypeAL2X8664, InstanceTypes: []string{"t3.medium"}, CapacityType: eks.CapacityTypeSpot},
		},
		FargateProfiles: map[string]FargateProfile{
			"fargate": {FargateProfileName: "karpenter", Selectors: []FargateSelector{{Namespace: "karpenter"}}},
		},
		Tags: map[string]string{"Name": "demo"},
	})
}

func synth(t *testing.T, stack *construct.Stack) *eksblueprints.Template {
	t.Helper()
	tmpl, err := stack.Synth()
	require.NoError(t, err)
	return tmpl
}

func TestBuilder_Build_NoClusterProvider(t *testing.T) {
	_, err := NewBuilder().Build(construct.NewApp(t.TempDir()), "demo")
	assert.ErrorIs(t, err, ErrNoClusterProvider)
}

func TestBuilder_Build_Order(t *testing.T) {
	var calls []string
	builder := NewBuilder().
		ClusterProvider(demoProvider()).
		AddOns(recordingAddOn{name: "a", calls: &calls}, recordingAddOn{name: "b", calls: &calls}).
		Teams(recordingTeam{name: "platform", calls: &calls}).
		Teams(recordingTeam{name: "application", calls: &calls})

	assert.True(t, builder.HasClusterProvider())
	assert.Len(t, builder.AddOnList(), 2)
	assert.Len(t, builder.TeamList(), 2)

	_, err := builder.Build(construct.NewApp(t.TempDir()), "demo")
	require.NoError(t, err)
	assert.Equal(t, []string{"addon:a", "addon:b", "team:platform", "team:application"}, calls)
}

func TestBuilder_Build_AddOnError(t *testing.T) {
	var calls []string
	_, err := NewBuilder().
		ClusterProvider(demoProvider()).
		AddOns(recordingAddOn{name: "broken", calls: &calls, err: errors.New("boom")}).
		Build(construct.NewApp(t.TempDir()), "demo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deploying add-on broken")
}

func TestBuilder_Build_DefaultVpc(t *testing.T) {
	stack, err := NewBuilder().
		ClusterProvider(demoProvider()).
		Build(construct.NewApp(t.TempDir()), "demo")
	require.NoError(t, err)

	tmpl := synth(t, stack)
	vpc := tmpl.Resources["DemoVpc"]
	assert.Equal(t, "AWS::EC2::VPC", vpc.Type)
	assert.Equal(t, "10.0.0.0/16", vpc.Properties["CidrBlock"])
}

func TestBuilder_Build_ResourceProvider(t *testing.T) {
	provider := &VpcProvider{ID: "custom-vpc", Props: network.VpcProps{
		Cidr:                "10.9.0.0/16",
		MaxAzs:              2,
		NatGateways:         1,
		SubnetConfiguration: DefaultSubnetConfiguration(),
	}}

	builder := WithResourceProvider(NewBuilder(), GlobalVpc, ResourceProvider[*network.Vpc](provider)).
		ClusterProvider(demoProvider())
	assert.Equal(t, []string{"vpc"}, builder.ProviderNames())

	stack, err := builder.Build(construct.NewApp(t.TempDir()), "demo")
	require.NoError(t, err)

	tmpl := synth(t, stack)
	assert.Contains(t, tmpl.Resources, "CustomVpc")
	assert.NotContains(t, tmpl.Resources, "DemoVpc")
	assert.Equal(t, intrinsics.RefTo("CustomVpc"), tmpl.Outputs["VpcId"].Value)
}

func TestBuilder_Build_Cluster(t *testing.T) {
	stack, err := NewBuilder().
		Account("111122223333").
		Region("us-west-2").
		ClusterProvider(demoProvider()).
		Build(construct.NewApp(t.TempDir()), "demo")
	require.NoError(t, err)

	tmpl := synth(t, stack)

	cluster := tmpl.Resources["DemoCluster"]
	assert.Equal(t, "AWS::EKS::Cluster", cluster.Type)
	assert.Equal(t, "1.26", cluster.Properties["Version"])
	assert.Equal(t, "demo", cluster.Properties["Name"])
	assert.Equal(t, map[string]any{
		"AuthenticationMode":                      "API_AND_CONFIG_MAP",
		"BootstrapClusterCreatorAdminPermissions": false,
	}, cluster.Properties["AccessConfig"])

	ng := tmpl.Resources["DemoNodegroupEksManaged"]
	assert.Equal(t, "AWS::EKS::Nodegroup", ng.Type)
	assert.Equal(t, "SPOT", ng.Properties["CapacityType"])
	assert.Equal(t, []any{"t3.medium"}, ng.Properties["InstanceTypes"])
	assert.Equal(t, map[string]any{"MinSize": int64(1), "DesiredSize": int64(1), "MaxSize": int64(3)}, ng.Properties["ScalingConfig"])
	assert.Len(t, ng.Properties["Subnets"], 3)

	profile := tmpl.Resources["DemoFargateProfileFargate"]
	assert.Equal(t, "karpenter", profile.Properties["FargateProfileName"])
	assert.Equal(t, []any{map[string]any{"Namespace": "karpenter"}}, profile.Properties["Selectors"])

	masters := tmpl.Resources["DemoClusterAccessEntryMasters"]
	assert.Equal(t, "AWS::EKS::AccessEntry", masters.Type)
	assert.Equal(t, map[string]any{"Fn::Sub": "arn:${AWS::Partition}:iam::111122223333:role/Admin"}, masters.Properties["PrincipalArn"])

	for _, name := range []string{"ClusterName", "ClusterArn", "ClusterEndpoint", "VpcId"} {
		assert.Contains(t, tmpl.Outputs, name)
	}
}

func TestGenericClusterProvider_CreatorBootstrapWithoutMasters(t *testing.T) {
	stack, err := NewBuilder().
		ClusterProvider(NewGenericClusterProvider(ClusterProps{Version: V1_26})).
		Build(construct.NewApp(t.TempDir()), "demo")
	require.NoError(t, err)

	tmpl := synth(t, stack)
	assert.Equal(t, map[string]any{
		"AuthenticationMode":                      "API_AND_CONFIG_MAP",
		"BootstrapClusterCreatorAdminPermissions": true,
	}, tmpl.Resources["DemoCluster"].Properties["AccessConfig"])
	assert.NotContains(t, tmpl.Resources, "DemoClusterAccessEntryMasters")
}

func TestGenericClusterProvider_Errors(t *testing.T) {
	tests := []struct {
		name  string
		props ClusterProps
	}{
		{"missing version", ClusterProps{}},
		{"bad version", ClusterProps{Version: "one"}},
		{"node group without id", ClusterProps{Version: V1_26, ManagedNodeGroups: []ManagedNodeGroup{{}}}},
		{"bad scaling", ClusterProps{Version: V1_26, ManagedNodeGroups: []ManagedNodeGroup{{ID: "ng", MinSize: 4}}}},
		{"fargate without selectors", ClusterProps{Version: V1_26, FargateProfiles: map[string]FargateProfile{"f": {}}}},
		{"masters role lookup fails", ClusterProps{Version: V1_26, MastersRole: ResolverFunc[*ImportedRole](
			func(*ResourceContext) (*ImportedRole, error) { return nil, errors.New("no such role") },
		)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBuilder().
				ClusterProvider(NewGenericClusterProvider(tt.props)).
				Build(construct.NewApp(t.TempDir()), "demo")
			assert.Error(t, err)
		})
	}
}

func TestGenericClusterProvider_FargateProfilesChained(t *testing.T) {
	stack, err := NewBuilder().
		ClusterProvider(NewGenericClusterProvider(ClusterProps{
			Version: V1_26,
			FargateProfiles: map[string]FargateProfile{
				"b": {Selectors: []FargateSelector{{Namespace: "b"}}},
				"a": {Selectors: []FargateSelector{{Namespace: "a", Labels: map[string]string{"team": "a"}}}},
			},
		})).
		Build(construct.NewApp(t.TempDir()), "demo")
	require.NoError(t, err)

	tmpl := synth(t, stack)
	assert.Empty(t, tmpl.Resources["DemoFargateProfileA"].DependsOn)
	assert.Equal(t, []string{"DemoFargateProfileA"}, tmpl.Resources["DemoFargateProfileB"].DependsOn)
	assert.Equal(t, "b", tmpl.Resources["DemoFargateProfileB"].Properties["FargateProfileName"])
}

func TestClusterInfo_GrantAccess_MergesSamePrincipal(t *testing.T) {
	role := GetResource(func(ctx *ResourceContext) (*ImportedRole, error) {
		return RoleFromName(ctx.Scope, "ClusterAdminRole", "Admin")
	})
	var cluster *ClusterInfo
	team := teamFunc{name: "platform", setup: func(c *ClusterInfo) error {
		cluster = c
		samePrincipal, err := RoleFromName(c.Stack(), "PlatformTeamRole", "Admin")
		if err != nil {
			return err
		}
		return c.GrantAccess("platform", samePrincipal.RoleArn(),
			eks.ClusterScoped(eks.ClusterAdminPolicy),
			eks.NamespaceScoped(eks.ViewPolicy, "platform"),
		)
	}}

	stack, err := NewBuilder().
		ClusterProvider(NewGenericClusterProvider(ClusterProps{Version: V1_26, MastersRole: role})).
		Teams(team).
		Build(construct.NewApp(t.TempDir()), "demo")
	require.NoError(t, err)

	assert.Equal(t, []string{"DemoClusterAccessEntryMasters"}, cluster.AccessEntries())

	tmpl := synth(t, stack)
	assert.NotContains(t, tmpl.Resources, "DemoClusterAccessEntryPlatform")
	policies := tmpl.Resources["DemoClusterAccessEntryMasters"].Properties["AccessPolicies"].([]any)
	assert.Len(t, policies, 2)
}

func TestClusterInfo_AddNodeRolePolicy(t *testing.T) {
	var nodeRoleErr error
	noNodes := teamFunc{name: "t", setup: func(c *ClusterInfo) error {
		nodeRoleErr = c.AddNodeRolePolicy("arn")
		return nil
	}}
	_, err := NewBuilder().
		ClusterProvider(NewGenericClusterProvider(ClusterProps{Version: V1_26})).
		Teams(noNodes).
		Build(construct.NewApp(t.TempDir()), "demo")
	require.NoError(t, err)
	assert.Error(t, nodeRoleErr)
}

type teamFunc struct {
	name  string
	setup func(*ClusterInfo) error
}

func (t teamFunc) Name() string               { return t.name }
func (t teamFunc) Setup(c *ClusterInfo) error { return t.setup(c) }
