// Package network builds a VPC with public and private subnet tiers spread
// across availability zones.
package network

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/lex00/eks-blueprints-go/construct"
	"github.com/lex00/eks-blueprints-go/intrinsics"
	"github.com/lex00/eks-blueprints-go/resources/ec2"
)

var (
	// ErrNatRequired is returned when a private-with-egress tier has no NAT gateway to route through.
	ErrNatRequired = errors.New("private subnets with egress require at least one NAT gateway")

	// ErrPublicSubnetRequired is returned when NAT gateways are requested without a public tier.
	ErrPublicSubnetRequired = errors.New("NAT gateways require a public subnet tier")
)

// DefaultMaxAzs is the AZ count used when VpcProps.MaxAzs is zero.
const DefaultMaxAzs = 3

// SubnetType is the routing class of a subnet tier.
type SubnetType string

const (
	// SubnetTypePublic routes to an internet gateway.
	SubnetTypePublic SubnetType = "Public"
	// SubnetTypePrivateWithEgress routes outbound traffic through a NAT gateway.
	SubnetTypePrivateWithEgress SubnetType = "Private"
	// SubnetTypePrivateIsolated has no route outside the VPC.
	SubnetTypePrivateIsolated SubnetType = "Isolated"
)

// SubnetConfig describes one tier. A tier gets one subnet per AZ.
type SubnetConfig struct {
	CidrMask   int
	Name       string
	SubnetType SubnetType
}

// VpcProps configures NewVpc.
type VpcProps struct {
	VpcName             string
	Cidr                string
	MaxAzs              int
	NatGateways         int
	SubnetConfiguration []SubnetConfig
}

// Subnet is a planned subnet and the logical IDs emitted for it.
type Subnet struct {
	LogicalID    string
	RouteTableID string
	Tier         string
	Type         SubnetType
	CIDR         *net.IPNet
	AZIndex      int
}

// Ref returns a Ref to the subnet.
func (s Subnet) Ref() intrinsics.Ref {
	return intrinsics.RefTo(s.LogicalID)
}

// Vpc is the handle to a synthesized VPC.
type Vpc struct {
	LogicalID         string
	Name              string
	CIDR              *net.IPNet
	AZs               int
	InternetGatewayID string
	NatGateways       []string

	PublicSubnets   []Subnet
	PrivateSubnets  []Subnet
	IsolatedSubnets []Subnet
}

// Ref returns a Ref to the VPC, which resolves to the VPC id.
func (v *Vpc) Ref() intrinsics.Ref {
	return intrinsics.RefTo(v.LogicalID)
}

// Subnets returns every subnet in tier order.
func (v *Vpc) Subnets() []Subnet {
	all := make([]Subnet, 0, len(v.PublicSubnets)+len(v.PrivateSubnets)+len(v.IsolatedSubnets))
	all = append(all, v.PublicSubnets...)
	all = append(all, v.PrivateSubnets...)
	return append(all, v.IsolatedSubnets...)
}

// SubnetRefs returns Refs to the subnets of the given types, or to every
// subnet when no type is given.
func (v *Vpc) SubnetRefs(types ...SubnetType) []any {
	var refs []any
	for _, s := range v.Subnets() {
		if len(types) == 0 || containsType(types, s.Type) {
			refs = append(refs, s.Ref())
		}
	}
	return refs
}

func containsType(types []SubnetType, t SubnetType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

// NewVpc plans the subnets of a VPC and registers its resources in scope.
func NewVpc(scope *construct.Stack, id string, props VpcProps) (*Vpc, error) {
	_, block, err := net.ParseCIDR(props.Cidr)
	if err != nil {
		return nil, fmt.Errorf("vpc %s: invalid cidr: %w", id, err)
	}

	azs := props.MaxAzs
	if azs <= 0 {
		azs = DefaultMaxAzs
	}
	if props.NatGateways < 0 {
		return nil, fmt.Errorf("vpc %s: negative NAT gateway count %d", id, props.NatGateways)
	}

	var hasPublic, hasEgress bool
	masks := make([]int, 0, len(props.SubnetConfiguration)*azs)
	for _, tier := range props.SubnetConfiguration {
		if tier.Name == "" {
			return nil, fmt.Errorf("vpc %s: subnet tier has no name", id)
		}
		switch tier.SubnetType {
		case SubnetTypePublic:
			hasPublic = true
		case SubnetTypePrivateWithEgress:
			hasEgress = true
		case SubnetTypePrivateIsolated:
		default:
			return nil, fmt.Errorf("vpc %s: tier %s: unknown subnet type %q", id, tier.Name, tier.SubnetType)
		}
		for az := 0; az < azs; az++ {
			masks = append(masks, tier.CidrMask)
		}
	}

	natCount := min(props.NatGateways, azs)
	if !hasPublic {
		natCount = 0
		if props.NatGateways > 0 {
			return nil, fmt.Errorf("vpc %s: %w", id, ErrPublicSubnetRequired)
		}
	}
	if hasEgress && natCount == 0 {
		return nil, fmt.Errorf("vpc %s: %w", id, ErrNatRequired)
	}

	planned, err := planSubnets(block, masks)
	if err != nil {
		return nil, fmt.Errorf("vpc %s: %w", id, err)
	}

	name := props.VpcName
	if name == "" {
		name = id
	}

	vpcID, err := scope.AddResource(id, &ec2.VPC{
		CidrBlock:          block.String(),
		EnableDnsHostnames: true,
		EnableDnsSupport:   true,
		InstanceTenancy:    "default",
		Tags:               intrinsics.Tags(map[string]string{"Name": name}),
	})
	if err != nil {
		return nil, err
	}

	vpc := &Vpc{
		LogicalID: vpcID,
		Name:      name,
		CIDR:      block,
		AZs:       azs,
	}

	var attachmentID string
	if hasPublic {
		vpc.InternetGatewayID, err = scope.AddResource(id+"/IGW", &ec2.InternetGateway{
			Tags: intrinsics.Tags(map[string]string{"Name": name}),
		})
		if err != nil {
			return nil, err
		}
		attachmentID, err = scope.AddResource(id+"/VPCGW", &ec2.VPCGatewayAttachment{
			VpcId:             vpc.Ref(),
			InternetGatewayId: intrinsics.RefTo(vpc.InternetGatewayID),
		})
		if err != nil {
			return nil, err
		}
	}

	next := 0
	for _, tier := range props.SubnetConfiguration {
		for az := 0; az < azs; az++ {
			subnet, err := addSubnet(scope, id, name, vpc, tier, az, planned[next])
			if err != nil {
				return nil, err
			}
			next++

			switch tier.SubnetType {
			case SubnetTypePublic:
				if _, err := scope.AddResource(subnetPath(id, tier, az)+"/DefaultRoute", &ec2.Route{
					RouteTableId:         intrinsics.RefTo(subnet.RouteTableID),
					DestinationCidrBlock: "0.0.0.0/0",
					GatewayId:            intrinsics.RefTo(vpc.InternetGatewayID),
				}, attachmentID); err != nil {
					return nil, err
				}
				vpc.PublicSubnets = append(vpc.PublicSubnets, subnet)
			case SubnetTypePrivateWithEgress:
				vpc.PrivateSubnets = append(vpc.PrivateSubnets, subnet)
			case SubnetTypePrivateIsolated:
				vpc.IsolatedSubnets = append(vpc.IsolatedSubnets, subnet)
			}
		}
	}

	for i := 0; i < natCount; i++ {
		public := vpc.PublicSubnets[i]
		path := subnetPathFor(id, public)
		eipID, err := scope.AddResource(path+"/EIP", &ec2.EIP{
			Domain: "vpc",
			Tags:   intrinsics.Tags(map[string]string{"Name": name + "/" + subnetName(public.Tier, public.AZIndex)}),
		})
		if err != nil {
			return nil, err
		}
		natID, err := scope.AddResource(path+"/NATGateway", &ec2.NatGateway{
			AllocationId: intrinsics.GetAtt{LogicalName: eipID, Attribute: "AllocationId"},
			SubnetId:     public.Ref(),
			Tags:         intrinsics.Tags(map[string]string{"Name": name + "/" + subnetName(public.Tier, public.AZIndex)}),
		}, attachmentID)
		if err != nil {
			return nil, err
		}
		vpc.NatGateways = append(vpc.NatGateways, natID)
	}

	for i, private := range vpc.PrivateSubnets {
		if _, err := scope.AddResource(subnetPathFor(id, private)+"/DefaultRoute", &ec2.Route{
			RouteTableId:         intrinsics.RefTo(private.RouteTableID),
			DestinationCidrBlock: "0.0.0.0/0",
			NatGatewayId:         intrinsics.RefTo(vpc.NatGateways[i%len(vpc.NatGateways)]),
		}); err != nil {
			return nil, err
		}
	}

	slog.Debug("planned vpc",
		"vpc", vpcID,
		"cidr", block.String(),
		"azs", azs,
		"subnets", len(planned),
		"nat_gateways", len(vpc.NatGateways),
	)

	return vpc, nil
}

func addSubnet(scope *construct.Stack, id, vpcName string, vpc *Vpc, tier SubnetConfig, az int, block *net.IPNet) (Subnet, error) {
	path := subnetPath(id, tier, az)

	tags := map[string]string{
		"Name":                vpcName + "/" + subnetName(tier.Name, az),
		"aws-cdk:subnet-name": tier.Name,
		"aws-cdk:subnet-type": string(tier.SubnetType),
	}
	switch tier.SubnetType {
	case SubnetTypePublic:
		tags["kubernetes.io/role/elb"] = "1"
	case SubnetTypePrivateWithEgress:
		tags["kubernetes.io/role/internal-elb"] = "1"
	}

	subnetID, err := scope.AddResource(path+"/Subnet", &ec2.Subnet{
		VpcId:               vpc.Ref(),
		CidrBlock:           block.String(),
		AvailabilityZone:    intrinsics.AZ(az),
		MapPublicIpOnLaunch: tier.SubnetType == SubnetTypePublic,
		Tags:                intrinsics.Tags(tags),
	})
	if err != nil {
		return Subnet{}, err
	}

	tableID, err := scope.AddResource(path+"/RouteTable", &ec2.RouteTable{
		VpcId: vpc.Ref(),
		Tags:  intrinsics.Tags(map[string]string{"Name": tags["Name"]}),
	})
	if err != nil {
		return Subnet{}, err
	}

	if _, err := scope.AddResource(path+"/RouteTableAssociation", &ec2.SubnetRouteTableAssociation{
		RouteTableId: intrinsics.RefTo(tableID),
		SubnetId:     intrinsics.RefTo(subnetID),
	}); err != nil {
		return Subnet{}, err
	}

	return Subnet{
		LogicalID:    subnetID,
		RouteTableID: tableID,
		Tier:         tier.Name,
		Type:         tier.SubnetType,
		CIDR:         block,
		AZIndex:      az,
	}, nil
}

// subnetName is the per-AZ construct name, e.g. "publicSubnet1".
func subnetName(tier string, az int) string {
	return fmt.Sprintf("%sSubnet%d", strings.ToLower(tier[:1])+tier[1:], az+1)
}

func subnetPath(id string, tier SubnetConfig, az int) string {
	return id + "/" + subnetName(tier.Name, az)
}

func subnetPathFor(id string, s Subnet) string {
	return id + "/" + subnetName(s.Tier, s.AZIndex)
}
