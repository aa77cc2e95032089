package blueprint

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"k8s.io/apimachinery/pkg/runtime"

	"github.com/lex00/eks-blueprints-go/construct"
	"github.com/lex00/eks-blueprints-go/intrinsics"
	"github.com/lex00/eks-blueprints-go/network"
	"github.com/lex00/eks-blueprints-go/resources/eks"
	"github.com/lex00/eks-blueprints-go/resources/iam"
)

// ClusterProvider creates the cluster and its compute.
type ClusterProvider interface {
	CreateCluster(ctx *ResourceContext, vpc *network.Vpc) (*ClusterInfo, error)
}

// ClusterAddOn installs a component into the cluster.
type ClusterAddOn interface {
	Name() string
	Deploy(cluster *ClusterInfo) error
}

// Team grants a group of users access to the cluster.
type Team interface {
	Name() string
	Setup(cluster *ClusterInfo) error
}

// ClusterInfo is the handle add-ons and teams use to extend the cluster.
type ClusterInfo struct {
	Context *ResourceContext

	// ClusterID is the logical ID of the AWS::EKS::Cluster.
	ClusterID string
	Version   KubernetesVersion
	Vpc       *network.Vpc

	// NodeRole is shared by every managed node group. It is serialized at
	// synthesis, so policies added by add-ons are included.
	NodeRole   *iam.Role
	NodeRoleID string

	NodeGroups      []string
	FargateProfiles []string

	access      map[string]*eks.AccessEntry
	accessOrder []string
}

// NewClusterInfo creates the handle for a registered cluster.
func NewClusterInfo(ctx *ResourceContext, clusterID string, version KubernetesVersion, vpc *network.Vpc) *ClusterInfo {
	return &ClusterInfo{
		Context:   ctx,
		ClusterID: clusterID,
		Version:   version,
		Vpc:       vpc,
		access:    make(map[string]*eks.AccessEntry),
	}
}

// Stack returns the stack the cluster belongs to.
func (c *ClusterInfo) Stack() *construct.Stack {
	return c.Context.Scope
}

// ClusterRef returns a Ref to the cluster, which resolves to its name.
func (c *ClusterInfo) ClusterRef() intrinsics.Ref {
	return intrinsics.RefTo(c.ClusterID)
}

// GrantAccess gives a principal the listed access policies. A principal
// gets one access entry; later grants for the same principal extend it.
func (c *ClusterInfo) GrantAccess(id string, principalArn any, policies ...eks.AccessPolicy) error {
	key, err := json.Marshal(principalArn)
	if err != nil {
		return fmt.Errorf("granting access to %s: %w", id, err)
	}

	if entry, ok := c.access[string(key)]; ok {
		for _, p := range policies {
			entry.AccessPolicies = appendPolicy(entry.AccessPolicies, p)
		}
		slog.Debug("extended access entry", "id", id, "policies", len(entry.AccessPolicies))
		return nil
	}

	entry := &eks.AccessEntry{
		ClusterName:  c.ClusterRef(),
		PrincipalArn: principalArn,
		Type:         "STANDARD",
	}
	for _, p := range policies {
		entry.AccessPolicies = appendPolicy(entry.AccessPolicies, p)
	}

	logicalID, err := c.Stack().AddResource(c.ClusterID+"/AccessEntry/"+id, entry)
	if err != nil {
		return fmt.Errorf("granting access to %s: %w", id, err)
	}
	c.access[string(key)] = entry
	c.accessOrder = append(c.accessOrder, logicalID)
	return nil
}

// AccessEntries returns the logical IDs of the access entries in creation order.
func (c *ClusterInfo) AccessEntries() []string {
	return c.accessOrder
}

func appendPolicy(policies []eks.AccessPolicy, p eks.AccessPolicy) []eks.AccessPolicy {
	want, _ := json.Marshal(p)
	for _, existing := range policies {
		got, _ := json.Marshal(existing)
		if string(got) == string(want) {
			return policies
		}
	}
	return append(policies, p)
}

// AddNodeRolePolicy attaches a managed policy ARN to the node role.
func (c *ClusterInfo) AddNodeRolePolicy(arn any) error {
	if c.NodeRole == nil {
		return fmt.Errorf("cluster %s has no node role", c.ClusterID)
	}
	c.NodeRole.AddManagedPolicy(arn)
	return nil
}

// AddManifest queues a Kubernetes object to apply to the cluster.
func (c *ClusterInfo) AddManifest(obj runtime.Object) {
	c.Stack().AddManifest(obj)
}
