package blueprint

import (
	"errors"
	"fmt"
	"log/slog"

	eksblueprints "github.com/lex00/eks-blueprints-go"
	"github.com/lex00/eks-blueprints-go/construct"
	"github.com/lex00/eks-blueprints-go/intrinsics"
	"github.com/lex00/eks-blueprints-go/network"
)

// ErrNoClusterProvider is returned by Build when no cluster provider is set.
var ErrNoClusterProvider = errors.New("cluster provider is required")

type registeredProvider struct {
	name    string
	provide func(ctx *ResourceContext) error
}

// Builder declares an EKS blueprint stack.
type Builder struct {
	account         string
	region          string
	providers       []registeredProvider
	clusterProvider ClusterProvider
	addOns          []ClusterAddOn
	teams           []Team
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Account sets the target account. Empty leaves the stack environment-agnostic.
func (b *Builder) Account(account string) *Builder {
	b.account = account
	return b
}

// Region sets the target region. Empty leaves the stack environment-agnostic.
func (b *Builder) Region(region string) *Builder {
	b.region = region
	return b
}

// ClusterProvider sets the provider that creates the cluster.
func (b *Builder) ClusterProvider(p ClusterProvider) *Builder {
	b.clusterProvider = p
	return b
}

// AddOns appends add-ons. They deploy in the order added.
func (b *Builder) AddOns(addOns ...ClusterAddOn) *Builder {
	b.addOns = append(b.addOns, addOns...)
	return b
}

// Teams appends teams. They are set up in the order added, after every add-on.
func (b *Builder) Teams(teams ...Team) *Builder {
	b.teams = append(b.teams, teams...)
	return b
}

// WithResourceProvider registers the provider of a global resource.
// Providers run in registration order before the cluster is created.
func WithResourceProvider[T any](b *Builder, key GlobalResource[T], p ResourceProvider[T]) *Builder {
	b.providers = append(b.providers, registeredProvider{
		name: key.Name,
		provide: func(ctx *ResourceContext) error {
			v, err := p.Provide(ctx)
			if err != nil {
				return err
			}
			Add(ctx, key, v)
			return nil
		},
	})
	return b
}

// AccountID returns the configured account.
func (b *Builder) AccountID() string { return b.account }

// RegionName returns the configured region.
func (b *Builder) RegionName() string { return b.region }

// HasClusterProvider reports whether a cluster provider is set.
func (b *Builder) HasClusterProvider() bool { return b.clusterProvider != nil }

// GetClusterProvider returns the configured cluster provider.
func (b *Builder) GetClusterProvider() ClusterProvider { return b.clusterProvider }

// AddOnList returns the add-ons in deploy order.
func (b *Builder) AddOnList() []ClusterAddOn { return b.addOns }

// TeamList returns the teams in setup order.
func (b *Builder) TeamList() []Team { return b.teams }

// ProviderNames returns the global resource names with a registered provider.
func (b *Builder) ProviderNames() []string {
	names := make([]string, len(b.providers))
	for i, p := range b.providers {
		names[i] = p.name
	}
	return names
}

// Build creates the stack in app and registers every resource.
func (b *Builder) Build(app *construct.App, id string) (*construct.Stack, error) {
	if b.clusterProvider == nil {
		return nil, fmt.Errorf("building %s: %w", id, ErrNoClusterProvider)
	}

	stack, err := construct.NewStack(app, id, b.account, b.region)
	if err != nil {
		return nil, err
	}
	stack.SetDescription("EKS blueprint " + id)

	ctx := NewResourceContext(stack)

	for _, p := range b.providers {
		slog.Debug("providing resource", "stack", id, "resource", p.name)
		if err := p.provide(ctx); err != nil {
			return nil, fmt.Errorf("providing %s: %w", p.name, err)
		}
	}

	vpc, ok := Lookup(ctx, GlobalVpc)
	if !ok || vpc == nil {
		vpc, err = DefaultVpcProvider(id + "-vpc").Provide(ctx)
		if err != nil {
			return nil, fmt.Errorf("providing default vpc: %w", err)
		}
		Add(ctx, GlobalVpc, vpc)
	}

	cluster, err := b.clusterProvider.CreateCluster(ctx, vpc)
	if err != nil {
		return nil, err
	}

	for _, addOn := range b.addOns {
		slog.Debug("deploying add-on", "stack", id, "addon", addOn.Name())
		if err := addOn.Deploy(cluster); err != nil {
			return nil, fmt.Errorf("deploying add-on %s: %w", addOn.Name(), err)
		}
	}

	for _, team := range b.teams {
		slog.Debug("setting up team", "stack", id, "team", team.Name())
		if err := team.Setup(cluster); err != nil {
			return nil, fmt.Errorf("setting up team %s: %w", team.Name(), err)
		}
	}

	stack.AddOutput("ClusterName", eksblueprints.Output{
		Description: "EKS cluster name",
		Value:       cluster.ClusterRef(),
	})
	stack.AddOutput("ClusterArn", eksblueprints.Output{
		Description: "EKS cluster ARN",
		Value:       intrinsics.Arn(cluster.ClusterID),
	})
	stack.AddOutput("ClusterEndpoint", eksblueprints.Output{
		Description: "EKS API server endpoint",
		Value:       intrinsics.GetAtt{LogicalName: cluster.ClusterID, Attribute: "Endpoint"},
	})
	stack.AddOutput("VpcId", eksblueprints.Output{
		Description: "VPC id",
		Value:       vpc.Ref(),
	})

	return stack, nil
}

// VpcProvider creates a VPC from fixed properties.
type VpcProvider struct {
	ID    string
	Props network.VpcProps
}

// DefaultSubnetConfiguration is used by DefaultVpcProvider.
func DefaultSubnetConfiguration() []network.SubnetConfig {
	return []network.SubnetConfig{
		{CidrMask: 19, Name: "public", SubnetType: network.SubnetTypePublic},
		{CidrMask: 19, Name: "private", SubnetType: network.SubnetTypePrivateWithEgress},
	}
}

// DefaultVpcProvider is used when no VPC provider is registered:
// 10.0.0.0/16 across three AZs with one NAT gateway.
func DefaultVpcProvider(id string) *VpcProvider {
	return &VpcProvider{
		ID: id,
		Props: network.VpcProps{
			VpcName:             id,
			Cidr:                "10.0.0.0/16",
			MaxAzs:              network.DefaultMaxAzs,
			NatGateways:         1,
			SubnetConfiguration: DefaultSubnetConfiguration(),
		},
	}
}

// Provide creates the VPC.
func (p *VpcProvider) Provide(ctx *ResourceContext) (*network.Vpc, error) {
	return network.NewVpc(ctx.Scope, p.ID, p.Props)
}
