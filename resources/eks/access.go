package eks

import "github.com/lex00/eks-blueprints-go/intrinsics"

// EKS access policies granted to teams.
const (
	ClusterAdminPolicy = "AmazonEKSClusterAdminPolicy"
	AdminPolicy        = "AmazonEKSAdminPolicy"
	EditPolicy         = "AmazonEKSEditPolicy"
	ViewPolicy         = "AmazonEKSViewPolicy"
)

// AccessEntry is an AWS::EKS::AccessEntry resource. It binds one IAM
// principal to the cluster.
type AccessEntry struct {
	ClusterName      any
	PrincipalArn     any
	Type             string
	Username         string
	KubernetesGroups []string
	AccessPolicies   []AccessPolicy
	Tags             []any
}

// ResourceType returns the CloudFormation type.
func (AccessEntry) ResourceType() string { return "AWS::EKS::AccessEntry" }

// AccessPolicy associates an EKS access policy with an access entry.
type AccessPolicy struct {
	PolicyArn   any
	AccessScope AccessScope
}

// AccessScope limits an access policy to the cluster or to namespaces.
type AccessScope struct {
	Type       string
	Namespaces []string
}

// AccessPolicyArn returns the partition-aware ARN of an EKS access policy.
func AccessPolicyArn(name string) intrinsics.Sub {
	return intrinsics.Sub{String: "arn:${AWS::Partition}:eks::aws:cluster-access-policy/" + name}
}

// ClusterScoped grants the named policy across the whole cluster.
func ClusterScoped(policy string) AccessPolicy {
	return AccessPolicy{
		PolicyArn:   AccessPolicyArn(policy),
		AccessScope: AccessScope{Type: AccessScopeCluster},
	}
}

// NamespaceScoped grants the named policy in the given namespaces only.
func NamespaceScoped(policy string, namespaces ...string) AccessPolicy {
	return AccessPolicy{
		PolicyArn:   AccessPolicyArn(policy),
		AccessScope: AccessScope{Type: AccessScopeNamespace, Namespaces: namespaces},
	}
}
