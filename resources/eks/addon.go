package eks

// Addon is an AWS::EKS::Addon resource.
type Addon struct {
	// AddonName is the EKS add-on name (e.g. "vpc-cni", "coredns").
	AddonName string

	ClusterName any

	// AddonVersion pins the add-on version. Empty selects the EKS default
	// for the cluster version.
	AddonVersion string

	ResolveConflicts      string
	ServiceAccountRoleArn any
	ConfigurationValues   string
	Tags                  []any
}

// ResourceType returns the CloudFormation type.
func (Addon) ResourceType() string { return "AWS::EKS::Addon" }
