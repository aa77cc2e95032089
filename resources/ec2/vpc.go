package ec2

// VPC is an AWS::EC2::VPC resource.
type VPC struct {
	// CidrBlock is the primary IPv4 address block of the VPC.
	CidrBlock any

	// EnableDnsHostnames indicates whether instances get public DNS hostnames.
	EnableDnsHostnames bool

	// EnableDnsSupport indicates whether DNS resolution is supported.
	EnableDnsSupport bool

	// InstanceTenancy is the allowed tenancy of instances launched into the VPC.
	InstanceTenancy string

	Tags []any
}

// ResourceType returns the CloudFormation type.
func (VPC) ResourceType() string { return "AWS::EC2::VPC" }

// InternetGateway is an AWS::EC2::InternetGateway resource.
type InternetGateway struct {
	Tags []any
}

// ResourceType returns the CloudFormation type.
func (InternetGateway) ResourceType() string { return "AWS::EC2::InternetGateway" }

// VPCGatewayAttachment attaches an internet gateway to a VPC.
type VPCGatewayAttachment struct {
	InternetGatewayId any
	VpcId             any
}

// ResourceType returns the CloudFormation type.
func (VPCGatewayAttachment) ResourceType() string { return "AWS::EC2::VPCGatewayAttachment" }
