// Package blueprint composes an EKS cluster stack from a VPC provider, a
// cluster provider, cluster add-ons and teams.
//
// Building happens in two phases. Declaration: values that need the stack
// (imported roles, the VPC) are described as Resolvers. Resolution: Build
// creates the stack, wraps it in a ResourceContext and resolves every
// Resolver against it.
//
//	adminRole := blueprint.GetResource(func(ctx *blueprint.ResourceContext) (*blueprint.ImportedRole, error) {
//	    return blueprint.RoleFromName(ctx.Scope, "ClusterAdminRole", "Admin")
//	})
//
//	stack, err := blueprint.NewBuilder().
//	    Account(account).
//	    Region(region).
//	    ClusterProvider(blueprint.NewGenericClusterProvider(blueprint.ClusterProps{
//	        Version:     blueprint.V1_26,
//	        MastersRole: adminRole,
//	    })).
//	    Build(app, "eks-blueprints")
package blueprint
