package infra

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Environment variables supplying the target environment.
const (
	EnvAccount = "CDK_DEFAULT_ACCOUNT"
	EnvRegion  = "CDK_DEFAULT_REGION"
)

// Config holds every literal the stack is assembled from.
type Config struct {
	Name    string `mapstructure:"name" yaml:"name"`
	Account string `mapstructure:"account" yaml:"account"`
	Region  string `mapstructure:"region" yaml:"region"`

	Vpc     VpcConfig     `mapstructure:"vpc" yaml:"vpc"`
	Cluster ClusterConfig `mapstructure:"cluster" yaml:"cluster"`
	AddOns  AddOnsConfig  `mapstructure:"addons" yaml:"addons"`

	PlatformTeam    TeamConfig `mapstructure:"platform_team" yaml:"platform_team"`
	ApplicationTeam TeamConfig `mapstructure:"application_team" yaml:"application_team"`
}

// VpcConfig configures the network descriptor.
type VpcConfig struct {
	Cidr        string `mapstructure:"cidr" yaml:"cidr"`
	MaxAzs      int    `mapstructure:"max_azs" yaml:"max_azs"`
	NatGateways int    `mapstructure:"nat_gateways" yaml:"nat_gateways"`
}

// ClusterConfig configures the cluster provider.
type ClusterConfig struct {
	Version         string          `mapstructure:"version" yaml:"version"`
	MastersRoleName string          `mapstructure:"masters_role_name" yaml:"masters_role_name"`
	NodeGroup       NodeGroupConfig `mapstructure:"node_group" yaml:"node_group"`
	Fargate         FargateConfig   `mapstructure:"fargate" yaml:"fargate"`
}

// NodeGroupConfig configures the managed node group.
type NodeGroupConfig struct {
	ID           string `mapstructure:"id" yaml:"id"`
	AmiType      string `mapstructure:"ami_type" yaml:"ami_type"`
	InstanceType string `mapstructure:"instance_type" yaml:"instance_type"`
	CapacityType string `mapstructure:"capacity_type" yaml:"capacity_type"`
}

// FargateConfig configures the Fargate profile.
type FargateConfig struct {
	ID          string `mapstructure:"id" yaml:"id"`
	ProfileName string `mapstructure:"profile_name" yaml:"profile_name"`
	Namespace   string `mapstructure:"namespace" yaml:"namespace"`
}

// AddOnsConfig pins add-on versions.
type AddOnsConfig struct {
	KubeProxyVersion string `mapstructure:"kube_proxy_version" yaml:"kube_proxy_version"`
	CoreDnsVersion   string `mapstructure:"coredns_version" yaml:"coredns_version"`
}

// TeamConfig configures a team descriptor.
type TeamConfig struct {
	Name        string `mapstructure:"name" yaml:"name"`
	RoleName    string `mapstructure:"role_name" yaml:"role_name"`
	ManifestDir string `mapstructure:"manifest_dir" yaml:"manifest_dir"`
}

// DefaultConfig returns the demo stack: eks-blueprints-cdk in 10.1.0.0/16.
func DefaultConfig() Config {
	return Config{
		Name: "eks-blueprints-cdk",
		Vpc: VpcConfig{
			Cidr:        "10.1.0.0/16",
			MaxAzs:      3,
			NatGateways: 1,
		},
		Cluster: ClusterConfig{
			Version:         "1.26",
			MastersRoleName: "AWSReservedSSO_AWSAdministratorAccess_7e5d8ea1712c4547",
			NodeGroup: NodeGroupConfig{
				ID:           "eks-managed",
				AmiType:      "AL2_x86_64",
				InstanceType: "t3.medium",
				CapacityType: "SPOT",
			},
			Fargate: FargateConfig{
				ID:          "fargate",
				ProfileName: "karpenter",
				Namespace:   "karpenter",
			},
		},
		AddOns: AddOnsConfig{
			KubeProxyVersion: "v1.26.2-eksbuild.1",
			CoreDnsVersion:   "v1.9.3-eksbuild.2",
		},
		PlatformTeam: TeamConfig{
			Name:     "platform",
			RoleName: "AWSReservedSSO_AWSAdministratorAccess_7e5d8ea1712c4547",
		},
		ApplicationTeam: TeamConfig{
			Name:        "application",
			RoleName:    "AWSReservedSSO_AWSDeveloperAccess_908d308ffbc9dd79",
			ManifestDir: "./manifest/team-application/",
		},
	}
}

// FromEnv copies the target account and region from the environment.
// Unset variables leave the stack environment-agnostic.
func FromEnv(cfg Config) Config {
	cfg.Account = os.Getenv(EnvAccount)
	cfg.Region = os.Getenv(EnvRegion)
	return cfg
}

// LoadFile overlays the YAML file at path onto cfg. Keys missing from the
// file keep their value in cfg.
func LoadFile(path string, cfg Config) (Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	var rawConfig map[string]interface{}
	if err := yaml.Unmarshal(data, &rawConfig); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	if err := mapstructure.Decode(rawConfig, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
