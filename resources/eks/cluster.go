package eks

// Cluster is an AWS::EKS::Cluster resource.
type Cluster struct {
	// Name is the unique name of the cluster.
	Name any

	// Version is the Kubernetes version (e.g. "1.26").
	Version string

	// RoleArn is the cluster service role.
	RoleArn any

	ResourcesVpcConfig ResourcesVpcConfig

	AccessConfig *AccessConfig

	Tags []any
}

// ResourceType returns the CloudFormation type.
func (Cluster) ResourceType() string { return "AWS::EKS::Cluster" }

// ResourcesVpcConfig places the control plane network interfaces.
type ResourcesVpcConfig struct {
	SubnetIds             []any
	SecurityGroupIds      []any
	EndpointPublicAccess  *bool
	EndpointPrivateAccess *bool
}

// AccessConfig selects how IAM principals authenticate to the cluster.
type AccessConfig struct {
	AuthenticationMode                      string
	BootstrapClusterCreatorAdminPermissions *bool
}

// Nodegroup is an AWS::EKS::Nodegroup resource.
type Nodegroup struct {
	ClusterName   any
	NodegroupName string
	NodeRole      any
	Subnets       []any
	AmiType       string
	InstanceTypes []string
	CapacityType  string
	DiskSize      int
	ScalingConfig *ScalingConfig
	Labels        map[string]string

	// Tags is a key/value map for node groups, not a tag list.
	Tags map[string]string
}

// ResourceType returns the CloudFormation type.
func (Nodegroup) ResourceType() string { return "AWS::EKS::Nodegroup" }

// ScalingConfig bounds the Auto Scaling group behind a node group.
type ScalingConfig struct {
	MinSize     int
	DesiredSize int
	MaxSize     int
}

// FargateProfile is an AWS::EKS::FargateProfile resource.
type FargateProfile struct {
	ClusterName         any
	FargateProfileName  string
	PodExecutionRoleArn any
	Selectors           []Selector
	Subnets             []any
	Tags                []any
}

// ResourceType returns the CloudFormation type.
func (FargateProfile) ResourceType() string { return "AWS::EKS::FargateProfile" }

// Selector routes matching pods to Fargate.
type Selector struct {
	Namespace string
	Labels    []Label
}

// Label is a single pod label match.
type Label struct {
	Key   string
	Value string
}
