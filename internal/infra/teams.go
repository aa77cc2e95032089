package infra

import (
	"github.com/lex00/eks-blueprints-go/blueprint"
	"github.com/lex00/eks-blueprints-go/blueprint/teams"
)

// NewTeamPlatform returns the platform team for roleArn.
func NewTeamPlatform(teamName string, teamRoleArn blueprint.Resolver[any]) *teams.PlatformTeam {
	return teams.NewPlatformTeam(teams.PlatformTeamProps{
		Name:        teamName,
		UserRoleArn: teamRoleArn,
	})
}

// NewTeamApplication returns the application team for roleArn, applying
// the manifests in teamManifestDir.
func NewTeamApplication(teamName string, teamRoleArn blueprint.Resolver[any], teamManifestDir string) *teams.ApplicationTeam {
	return teams.NewApplicationTeam(teams.ApplicationTeamProps{
		Name:            teamName,
		UserRoleArn:     teamRoleArn,
		TeamManifestDir: teamManifestDir,
	})
}
