// Package infra declares the eks-blueprints stack: its network, cluster,
// add-ons and teams.
package infra

import (
	"github.com/lex00/eks-blueprints-go/blueprint"
	"github.com/lex00/eks-blueprints-go/network"
)

// VpcProps describes the stack VPC.
type VpcProps struct {
	VpcName     string
	VpcCidr     string
	MaxAzs      int
	NatGateways int
}

// VpcResourceProvider creates the stack VPC with a public /24 tier and a
// private-with-egress /20 tier in every AZ.
type VpcResourceProvider struct {
	VpcName     string
	VpcCidr     string
	MaxAzs      int
	NatGateways int
}

// NewVpcResourceProvider copies props into a provider.
func NewVpcResourceProvider(props VpcProps) *VpcResourceProvider {
	return &VpcResourceProvider{
		VpcName:     props.VpcName,
		VpcCidr:     props.VpcCidr,
		MaxAzs:      props.MaxAzs,
		NatGateways: props.NatGateways,
	}
}

// Provide creates the VPC in the context's stack.
func (p *VpcResourceProvider) Provide(ctx *blueprint.ResourceContext) (*network.Vpc, error) {
	return network.NewVpc(ctx.Scope, p.VpcName, network.VpcProps{
		VpcName:     p.VpcName,
		Cidr:        p.VpcCidr,
		MaxAzs:      p.MaxAzs,
		NatGateways: p.NatGateways,
		SubnetConfiguration: []network.SubnetConfig{
			{CidrMask: 24, Name: "public", SubnetType: network.SubnetTypePublic},
			{CidrMask: 20, Name: "private", SubnetType: network.SubnetTypePrivateWithEgress},
		},
	})
}
