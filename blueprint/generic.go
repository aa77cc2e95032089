package blueprint

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/lex00/eks-blueprints-go/intrinsics"
	"github.com/lex00/eks-blueprints-go/network"
	"github.com/lex00/eks-blueprints-go/resources/eks"
	"github.com/lex00/eks-blueprints-go/resources/iam"
)

// Node group defaults.
const (
	DefaultMinSize      = 1
	DefaultDesiredSize  = 1
	DefaultMaxSize      = 3
	DefaultInstanceType = "m5.large"
)

// ClusterProps configures a GenericClusterProvider.
type ClusterProps struct {
	// ClusterName defaults to the stack id.
	ClusterName string
	Version     KubernetesVersion

	// MastersRole is granted cluster admin. Optional.
	MastersRole Resolver[*ImportedRole]

	ManagedNodeGroups []ManagedNodeGroup

	// FargateProfiles maps a construct id to a profile.
	FargateProfiles map[string]FargateProfile

	Tags map[string]string
}

// ManagedNodeGroup describes an EKS managed node group.
type ManagedNodeGroup struct {
	ID            string
	NodegroupName string
	AmiType       string
	InstanceTypes []string
	CapacityType  string
	DiskSize      int
	MinSize       int
	DesiredSize   int
	MaxSize       int
	Labels        map[string]string
}

// FargateProfile describes an EKS Fargate profile.
type FargateProfile struct {
	FargateProfileName string
	Selectors          []FargateSelector
}

// FargateSelector matches pods by namespace and, optionally, labels.
type FargateSelector struct {
	Namespace string
	Labels    map[string]string
}

// GenericClusterProvider creates a cluster with managed node groups and
// Fargate profiles.
type GenericClusterProvider struct {
	props ClusterProps
}

// NewGenericClusterProvider returns a provider for props.
func NewGenericClusterProvider(props ClusterProps) *GenericClusterProvider {
	return &GenericClusterProvider{props: props}
}

// Props returns the provider configuration.
func (p *GenericClusterProvider) Props() ClusterProps {
	return p.props
}

// CreateCluster registers the cluster, its roles, node groups and Fargate profiles.
func (p *GenericClusterProvider) CreateCluster(ctx *ResourceContext, vpc *network.Vpc) (*ClusterInfo, error) {
	stack := ctx.Scope
	id := stack.ID()

	if p.props.Version == "" {
		return nil, fmt.Errorf("cluster %s: kubernetes version is required", id)
	}
	if _, err := p.props.Version.Semver(); err != nil {
		return nil, fmt.Errorf("cluster %s: %w", id, err)
	}

	name := p.props.ClusterName
	if name == "" {
		name = id
	}
	tags := p.props.Tags

	clusterRoleID, err := stack.AddResource(id+"/ClusterRole", &iam.Role{
		AssumeRolePolicyDocument: iam.AssumeRoleFor("eks.amazonaws.com"),
		ManagedPolicyArns:        []any{iam.ManagedPolicyArn("AmazonEKSClusterPolicy")},
		Tags:                     intrinsics.Tags(tags),
	})
	if err != nil {
		return nil, err
	}

	clusterID, err := stack.AddResource(id+"/Cluster", &eks.Cluster{
		Name:    name,
		Version: string(p.props.Version),
		RoleArn: intrinsics.Arn(clusterRoleID),
		ResourcesVpcConfig: eks.ResourcesVpcConfig{
			SubnetIds:             vpc.SubnetRefs(),
			EndpointPublicAccess:  boolPtr(true),
			EndpointPrivateAccess: boolPtr(true),
		},
		// The masters access entry replaces the creator bootstrap entry. Both
		// for the same principal fail with ResourceInUse.
		AccessConfig: &eks.AccessConfig{
			AuthenticationMode:                      eks.AuthenticationModeAPIAndConfigMap,
			BootstrapClusterCreatorAdminPermissions: boolPtr(p.props.MastersRole == nil),
		},
		Tags: intrinsics.Tags(tags),
	})
	if err != nil {
		return nil, err
	}

	cluster := NewClusterInfo(ctx, clusterID, p.props.Version, vpc)

	if p.props.MastersRole != nil {
		role, err := p.props.MastersRole.Resolve(ctx)
		if err != nil {
			return nil, fmt.Errorf("cluster %s: resolving masters role: %w", id, err)
		}
		if err := cluster.GrantAccess("masters", role.RoleArn(), eks.ClusterScoped(eks.ClusterAdminPolicy)); err != nil {
			return nil, err
		}
	}

	if len(p.props.ManagedNodeGroups) > 0 {
		if err := p.addNodeGroups(cluster, tags); err != nil {
			return nil, err
		}
	}

	if len(p.props.FargateProfiles) > 0 {
		if err := p.addFargateProfiles(cluster, tags); err != nil {
			return nil, err
		}
	}

	slog.Debug("created cluster",
		"cluster", clusterID,
		"version", string(p.props.Version),
		"node_groups", len(cluster.NodeGroups),
		"fargate_profiles", len(cluster.FargateProfiles),
	)

	return cluster, nil
}

func (p *GenericClusterProvider) addNodeGroups(cluster *ClusterInfo, tags map[string]string) error {
	stack := cluster.Stack()
	id := stack.ID()

	cluster.NodeRole = &iam.Role{
		AssumeRolePolicyDocument: iam.AssumeRoleFor("ec2.amazonaws.com"),
		ManagedPolicyArns: []any{
			iam.ManagedPolicyArn("AmazonEKSWorkerNodePolicy"),
			iam.ManagedPolicyArn("AmazonEKS_CNI_Policy"),
			iam.ManagedPolicyArn("AmazonEC2ContainerRegistryReadOnly"),
			iam.ManagedPolicyArn("AmazonSSMManagedInstanceCore"),
		},
		Tags: intrinsics.Tags(tags),
	}
	nodeRoleID, err := stack.AddResource(id+"/NodeRole", cluster.NodeRole)
	if err != nil {
		return err
	}
	cluster.NodeRoleID = nodeRoleID

	for _, ng := range p.props.ManagedNodeGroups {
		if ng.ID == "" {
			return fmt.Errorf("cluster %s: managed node group has no id", id)
		}

		amiType := ng.AmiType
		if amiType == "" {
			amiType = eks.AmiTypeAL2X8664
		}
		instanceTypes := ng.InstanceTypes
		if len(instanceTypes) == 0 {
			instanceTypes = []string{DefaultInstanceType}
		}
		capacityType := ng.CapacityType
		if capacityType == "" {
			capacityType = eks.CapacityTypeOnDemand
		}
		nodegroupName := ng.NodegroupName
		if nodegroupName == "" {
			nodegroupName = ng.ID
		}

		scaling := &eks.ScalingConfig{
			MinSize:     orDefault(ng.MinSize, DefaultMinSize),
			DesiredSize: orDefault(ng.DesiredSize, DefaultDesiredSize),
			MaxSize:     orDefault(ng.MaxSize, DefaultMaxSize),
		}
		if scaling.MinSize > scaling.DesiredSize || scaling.DesiredSize > scaling.MaxSize {
			return fmt.Errorf("cluster %s: node group %s: scaling requires min <= desired <= max, got %d/%d/%d",
				id, ng.ID, scaling.MinSize, scaling.DesiredSize, scaling.MaxSize)
		}

		ngID, err := stack.AddResource(id+"/Nodegroup/"+ng.ID, &eks.Nodegroup{
			ClusterName:   cluster.ClusterRef(),
			NodegroupName: nodegroupName,
			NodeRole:      intrinsics.Arn(nodeRoleID),
			Subnets:       nodeSubnets(cluster.Vpc),
			AmiType:       amiType,
			InstanceTypes: instanceTypes,
			CapacityType:  capacityType,
			DiskSize:      ng.DiskSize,
			ScalingConfig: scaling,
			Labels:        ng.Labels,
			Tags:          tags,
		})
		if err != nil {
			return err
		}
		cluster.NodeGroups = append(cluster.NodeGroups, ngID)
	}
	return nil
}

func (p *GenericClusterProvider) addFargateProfiles(cluster *ClusterInfo, tags map[string]string) error {
	stack := cluster.Stack()
	id := stack.ID()

	podRoleID, err := stack.AddResource(id+"/FargatePodExecutionRole", &iam.Role{
		AssumeRolePolicyDocument: iam.AssumeRoleFor("eks-fargate-pods.amazonaws.com"),
		ManagedPolicyArns:        []any{iam.ManagedPolicyArn("AmazonEKSFargatePodExecutionRolePolicy")},
		Tags:                     intrinsics.Tags(tags),
	})
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(p.props.FargateProfiles))
	for k := range p.props.FargateProfiles {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// EKS rejects concurrent Fargate profile operations on one cluster.
	var previous []string
	for _, key := range keys {
		profile := p.props.FargateProfiles[key]
		if len(profile.Selectors) == 0 {
			return fmt.Errorf("cluster %s: fargate profile %s has no selectors", id, key)
		}

		selectors := make([]eks.Selector, 0, len(profile.Selectors))
		for _, s := range profile.Selectors {
			selectors = append(selectors, eks.Selector{Namespace: s.Namespace, Labels: labels(s.Labels)})
		}

		profileName := profile.FargateProfileName
		if profileName == "" {
			profileName = key
		}

		profileID, err := stack.AddResource(id+"/FargateProfile/"+key, &eks.FargateProfile{
			ClusterName:         cluster.ClusterRef(),
			FargateProfileName:  profileName,
			PodExecutionRoleArn: intrinsics.Arn(podRoleID),
			Selectors:           selectors,
			Subnets:             nodeSubnets(cluster.Vpc),
			Tags:                intrinsics.Tags(tags),
		}, previous...)
		if err != nil {
			return err
		}
		cluster.FargateProfiles = append(cluster.FargateProfiles, profileID)
		previous = []string{profileID}
	}
	return nil
}

func labels(kv map[string]string) []eks.Label {
	if len(kv) == 0 {
		return nil
	}
	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]eks.Label, 0, len(keys))
	for _, k := range keys {
		out = append(out, eks.Label{Key: k, Value: kv[k]})
	}
	return out
}

// nodeSubnets prefers private subnets and falls back to every subnet.
func nodeSubnets(vpc *network.Vpc) []any {
	if refs := vpc.SubnetRefs(network.SubnetTypePrivateWithEgress, network.SubnetTypePrivateIsolated); len(refs) > 0 {
		return refs
	}
	return vpc.SubnetRefs()
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func boolPtr(b bool) *bool {
	return &b
}
