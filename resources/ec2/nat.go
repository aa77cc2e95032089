package ec2

// EIP is an AWS::EC2::EIP resource.
type EIP struct {
	// Domain is "vpc" for addresses used by NAT gateways.
	Domain string

	Tags []any
}

// ResourceType returns the CloudFormation type.
func (EIP) ResourceType() string { return "AWS::EC2::EIP" }

// NatGateway is an AWS::EC2::NatGateway resource.
type NatGateway struct {
	AllocationId any
	SubnetId     any
	Tags         []any
}

// ResourceType returns the CloudFormation type.
func (NatGateway) ResourceType() string { return "AWS::EC2::NatGateway" }
