package addons

// VpcCniAddOn installs the Amazon VPC CNI plugin.
type VpcCniAddOn struct {
	CoreAddOn
}

// NewVpcCniAddOn returns the VPC CNI add-on at the EKS default version.
func NewVpcCniAddOn() *VpcCniAddOn {
	return &VpcCniAddOn{CoreAddOn{AddOnName: "vpc-cni"}}
}
