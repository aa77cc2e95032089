// Package eks contains the AWS::EKS resource types emitted by the cluster
// provider, the add-ons and the teams.
package eks

// Node group capacity types.
const (
	CapacityTypeOnDemand = "ON_DEMAND"
	CapacityTypeSpot     = "SPOT"
)

// Node group AMI types.
const (
	AmiTypeAL2X8664       = "AL2_x86_64"
	AmiTypeAL2X8664GPU    = "AL2_x86_64_GPU"
	AmiTypeAL2Arm64       = "AL2_ARM_64"
	AmiTypeAL2023X8664Std = "AL2023_x86_64_STANDARD"
	AmiTypeBottlerocket   = "BOTTLEROCKET_x86_64"
)

// Cluster authentication modes.
const (
	AuthenticationModeAPI             = "API"
	AuthenticationModeAPIAndConfigMap = "API_AND_CONFIG_MAP"
)

// Add-on conflict resolution modes.
const (
	ResolveConflictsNone      = "NONE"
	ResolveConflictsOverwrite = "OVERWRITE"
	ResolveConflictsPreserve  = "PRESERVE"
)

// Access entry scope types.
const (
	AccessScopeCluster   = "cluster"
	AccessScopeNamespace = "namespace"
)
