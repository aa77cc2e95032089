// Package addons provides the EKS managed add-ons a blueprint can install.
package addons

import (
	"fmt"
	"log/slog"

	"github.com/blang/semver/v4"

	"github.com/lex00/eks-blueprints-go/blueprint"
	"github.com/lex00/eks-blueprints-go/resources/eks"
)

// CoreAddOn is an EKS managed add-on. It is embedded by the concrete add-ons.
type CoreAddOn struct {
	// AddOnName is the EKS add-on name, e.g. "vpc-cni".
	AddOnName string

	// Version pins the add-on version. Empty selects the EKS default for
	// the cluster version.
	Version string

	// ConfigurationValues is a JSON document of add-on settings.
	ConfigurationValues string

	// WaitForNodes makes the add-on depend on every managed node group.
	// Add-ons that schedule Deployments need nodes to become ACTIVE.
	WaitForNodes bool
}

// Name returns the EKS add-on name.
func (a *CoreAddOn) Name() string {
	return a.AddOnName
}

// ParsedVersion parses Version. ok is false when no version is pinned.
func (a *CoreAddOn) ParsedVersion() (v semver.Version, ok bool, err error) {
	if a.Version == "" {
		return semver.Version{}, false, nil
	}
	v, err = semver.ParseTolerant(a.Version)
	if err != nil {
		return semver.Version{}, false, fmt.Errorf("add-on %s: invalid version %q: %w", a.AddOnName, a.Version, err)
	}
	return v, true, nil
}

// Deploy registers the AWS::EKS::Addon resource.
func (a *CoreAddOn) Deploy(cluster *blueprint.ClusterInfo) error {
	if _, _, err := a.ParsedVersion(); err != nil {
		return err
	}

	var dependsOn []string
	if a.WaitForNodes {
		dependsOn = append(dependsOn, cluster.NodeGroups...)
	}

	id, err := cluster.Stack().AddResource(cluster.ClusterID+"/Addon/"+a.AddOnName, &eks.Addon{
		AddonName:           a.AddOnName,
		ClusterName:         cluster.ClusterRef(),
		AddonVersion:        a.Version,
		ResolveConflicts:    eks.ResolveConflictsOverwrite,
		ConfigurationValues: a.ConfigurationValues,
	}, dependsOn...)
	if err != nil {
		return err
	}

	slog.Debug("registered add-on", "addon", a.AddOnName, "logical_id", id, "version", a.Version)
	return nil
}
