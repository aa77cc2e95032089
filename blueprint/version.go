package blueprint

import (
	"fmt"

	"github.com/blang/semver/v4"
)

// KubernetesVersion is an EKS control plane version.
type KubernetesVersion string

const (
	V1_24 KubernetesVersion = "1.24"
	V1_25 KubernetesVersion = "1.25"
	V1_26 KubernetesVersion = "1.26"
	V1_27 KubernetesVersion = "1.27"
	V1_28 KubernetesVersion = "1.28"
	V1_29 KubernetesVersion = "1.29"
)

// Semver parses the version.
func (v KubernetesVersion) Semver() (semver.Version, error) {
	parsed, err := semver.ParseTolerant(string(v))
	if err != nil {
		return semver.Version{}, fmt.Errorf("invalid kubernetes version %q: %w", v, err)
	}
	return parsed, nil
}
