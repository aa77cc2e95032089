package addons

import (
	"log/slog"

	"github.com/lex00/eks-blueprints-go/blueprint"
)

// KubeProxyAddOn installs kube-proxy.
type KubeProxyAddOn struct {
	CoreAddOn
}

// NewKubeProxyAddOn returns the kube-proxy add-on pinned to version
// (e.g. "v1.26.2-eksbuild.1"). Empty selects the EKS default.
func NewKubeProxyAddOn(version string) *KubeProxyAddOn {
	return &KubeProxyAddOn{CoreAddOn{AddOnName: "kube-proxy", Version: version}}
}

// Deploy registers the add-on. kube-proxy should match the control plane
// minor version; a mismatch is logged, not rejected.
func (a *KubeProxyAddOn) Deploy(cluster *blueprint.ClusterInfo) error {
	v, pinned, err := a.ParsedVersion()
	if err != nil {
		return err
	}
	if pinned {
		if cv, err := cluster.Version.Semver(); err == nil && (cv.Major != v.Major || cv.Minor != v.Minor) {
			slog.Warn("kube-proxy version does not match cluster version",
				"addon_version", a.Version,
				"cluster_version", string(cluster.Version),
			)
		}
	}
	return a.CoreAddOn.Deploy(cluster)
}
