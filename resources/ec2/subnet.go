package ec2

// Subnet is an AWS::EC2::Subnet resource.
type Subnet struct {
	VpcId            any
	CidrBlock        any
	AvailabilityZone any

	// MapPublicIpOnLaunch assigns public IPv4 addresses to instances in the subnet.
	MapPublicIpOnLaunch bool

	Tags []any
}

// ResourceType returns the CloudFormation type.
func (Subnet) ResourceType() string { return "AWS::EC2::Subnet" }

// RouteTable is an AWS::EC2::RouteTable resource.
type RouteTable struct {
	VpcId any
	Tags  []any
}

// ResourceType returns the CloudFormation type.
func (RouteTable) ResourceType() string { return "AWS::EC2::RouteTable" }

// SubnetRouteTableAssociation associates a subnet with a route table.
type SubnetRouteTableAssociation struct {
	RouteTableId any
	SubnetId     any
}

// ResourceType returns the CloudFormation type.
func (SubnetRouteTableAssociation) ResourceType() string {
	return "AWS::EC2::SubnetRouteTableAssociation"
}

// Route is an AWS::EC2::Route resource. Exactly one target is set.
type Route struct {
	RouteTableId         any
	DestinationCidrBlock string
	GatewayId            any
	NatGatewayId         any
}

// ResourceType returns the CloudFormation type.
func (Route) ResourceType() string { return "AWS::EC2::Route" }
