package addons

import (
	"fmt"

	"github.com/lex00/eks-blueprints-go/blueprint"
	"github.com/lex00/eks-blueprints-go/resources/iam"
)

// EbsCsiDriverPolicy is attached to the node role so the controller can
// manage volumes.
const EbsCsiDriverPolicy = "service-role/AmazonEBSCSIDriverPolicy"

// EbsCsiDriverAddOn installs the Amazon EBS CSI driver.
type EbsCsiDriverAddOn struct {
	CoreAddOn
}

// NewEbsCsiDriverAddOn returns the EBS CSI driver add-on at the EKS default version.
func NewEbsCsiDriverAddOn() *EbsCsiDriverAddOn {
	return &EbsCsiDriverAddOn{CoreAddOn{AddOnName: "aws-ebs-csi-driver", WaitForNodes: true}}
}

// Deploy grants the node role EBS permissions and registers the add-on.
func (a *EbsCsiDriverAddOn) Deploy(cluster *blueprint.ClusterInfo) error {
	if err := cluster.AddNodeRolePolicy(iam.ManagedPolicyArn(EbsCsiDriverPolicy)); err != nil {
		return fmt.Errorf("add-on %s: %w", a.AddOnName, err)
	}
	return a.CoreAddOn.Deploy(cluster)
}
