package infra

import (
	"github.com/lex00/eks-blueprints-go/blueprint"
	"github.com/lex00/eks-blueprints-go/blueprint/addons"
	"github.com/lex00/eks-blueprints-go/construct"
	"github.com/lex00/eks-blueprints-go/network"
)

// roleLookup declares an imported role and yields its ARN.
func roleLookup(id, roleName string) blueprint.Resolver[any] {
	role := blueprint.GetResource(func(ctx *blueprint.ResourceContext) (*blueprint.ImportedRole, error) {
		return blueprint.RoleFromName(ctx.Scope, id, roleName)
	})
	return blueprint.Map[*blueprint.ImportedRole, any](role, (*blueprint.ImportedRole).RoleArn)
}

// Assemble declares the stack described by cfg.
func Assemble(cfg Config) *blueprint.Builder {
	vpcProvider := NewVpcResourceProvider(VpcProps{
		VpcName:     cfg.Name + "-vpc",
		VpcCidr:     cfg.Vpc.Cidr,
		MaxAzs:      cfg.Vpc.MaxAzs,
		NatGateways: cfg.Vpc.NatGateways,
	})

	mastersRoleName := cfg.Cluster.MastersRoleName
	clusterProvider := blueprint.NewGenericClusterProvider(blueprint.ClusterProps{
		Version: blueprint.KubernetesVersion(cfg.Cluster.Version),
		MastersRole: blueprint.GetResource(func(ctx *blueprint.ResourceContext) (*blueprint.ImportedRole, error) {
			return blueprint.RoleFromName(ctx.Scope, "ClusterAdminRole", mastersRoleName)
		}),
		ManagedNodeGroups: []blueprint.ManagedNodeGroup{
			{
				ID:            cfg.Cluster.NodeGroup.ID,
				AmiType:       cfg.Cluster.NodeGroup.AmiType,
				InstanceTypes: []string{cfg.Cluster.NodeGroup.InstanceType},
				CapacityType:  cfg.Cluster.NodeGroup.CapacityType,
			},
		},
		FargateProfiles: map[string]blueprint.FargateProfile{
			cfg.Cluster.Fargate.ID: {
				FargateProfileName: cfg.Cluster.Fargate.ProfileName,
				Selectors:          []blueprint.FargateSelector{{Namespace: cfg.Cluster.Fargate.Namespace}},
			},
		},
		Tags: map[string]string{
			"Name": cfg.Name,
		},
	})

	addOns := []blueprint.ClusterAddOn{
		addons.NewVpcCniAddOn(),
		addons.NewEbsCsiDriverAddOn(),
		addons.NewKubeProxyAddOn(cfg.AddOns.KubeProxyVersion),
		addons.NewCoreDnsAddOn(cfg.AddOns.CoreDnsVersion),
	}

	teamPlatform := NewTeamPlatform(cfg.PlatformTeam.Name,
		roleLookup("PlatformTeamRole", cfg.PlatformTeam.RoleName))
	teamApplication := NewTeamApplication(cfg.ApplicationTeam.Name,
		roleLookup("ApplicationTeamRole", cfg.ApplicationTeam.RoleName),
		cfg.ApplicationTeam.ManifestDir)

	builder := blueprint.NewBuilder().
		Account(cfg.Account).
		Region(cfg.Region)
	return blueprint.WithResourceProvider[*network.Vpc](builder, blueprint.GlobalVpc, vpcProvider).
		ClusterProvider(clusterProvider).
		AddOns(addOns...).
		Teams(teamPlatform).
		Teams(teamApplication)
}

// Synth assembles the stack into app. Framework errors are returned unchanged.
func Synth(cfg Config, app *construct.App) (*construct.Stack, error) {
	return Assemble(cfg).Build(app, cfg.Name)
}
