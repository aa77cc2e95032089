// Package teams grants platform and application teams access to a
// blueprint cluster.
package teams

import (
	"fmt"

	"github.com/lex00/eks-blueprints-go/blueprint"
	"github.com/lex00/eks-blueprints-go/resources/eks"
)

// PlatformTeamProps configures a PlatformTeam.
type PlatformTeamProps struct {
	Name string

	// UserRoleArn is the IAM role the team assumes.
	UserRoleArn blueprint.Resolver[any]
}

// PlatformTeam administers the whole cluster.
type PlatformTeam struct {
	props PlatformTeamProps
}

// NewPlatformTeam returns a platform team.
func NewPlatformTeam(props PlatformTeamProps) *PlatformTeam {
	return &PlatformTeam{props: props}
}

// Name returns the team name.
func (t *PlatformTeam) Name() string { return t.props.Name }

// Props returns the team configuration.
func (t *PlatformTeam) Props() PlatformTeamProps { return t.props }

// Setup grants the team role cluster admin.
func (t *PlatformTeam) Setup(cluster *blueprint.ClusterInfo) error {
	arn, err := resolveRole(cluster, t.props.Name, t.props.UserRoleArn)
	if err != nil {
		return err
	}
	return cluster.GrantAccess(t.props.Name, arn, eks.ClusterScoped(eks.ClusterAdminPolicy))
}

func resolveRole(cluster *blueprint.ClusterInfo, team string, r blueprint.Resolver[any]) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("team %s: user role arn is required", team)
	}
	arn, err := r.Resolve(cluster.Context)
	if err != nil {
		return nil, fmt.Errorf("team %s: resolving user role: %w", team, err)
	}
	if arn == nil || arn == "" {
		return nil, fmt.Errorf("team %s: user role arn is empty", team)
	}
	return arn, nil
}
