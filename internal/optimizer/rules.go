package optimizer

import (
	"fmt"
	"strings"

	eksblueprints "github.com/lex00/eks-blueprints-go"
)

var resourceRules = map[string][]Rule{
	"AWS::EKS::Cluster":   clusterRules,
	"AWS::EKS::Nodegroup": nodegroupRules,
	"AWS::EKS::Addon":     addonRules,
	"AWS::IAM::Role":      roleRules,
}

var templateRules = []TemplateRule{
	{
		ID:       "OPT-VPC-001",
		Category: CategoryReliability,
		Check:    checkNatPerAz,
	},
}

var clusterRules = []Rule{
	{
		ID:       "OPT-EKS-001",
		Category: CategorySecurity,
		Check: func(name string, res eksblueprints.ResourceDef) *eksblueprints.OptimizeSuggestion {
			vpcConfig, _ := res.Properties["ResourcesVpcConfig"].(map[string]any)
			public, set := vpcConfig["EndpointPublicAccess"].(bool)
			if set && !public {
				return nil
			}
			return &eksblueprints.OptimizeSuggestion{
				Resource:    name,
				Severity:    "high",
				Title:       "Cluster API endpoint is publicly reachable",
				Description: "The Kubernetes API server accepts connections from the internet.",
				Suggestion:  "Disable EndpointPublicAccess or restrict PublicAccessCidrs to known networks.",
			}
		},
	},
	{
		ID:       "OPT-EKS-002",
		Category: CategorySecurity,
		Check: func(name string, res eksblueprints.ResourceDef) *eksblueprints.OptimizeSuggestion {
			access, _ := res.Properties["AccessConfig"].(map[string]any)
			if mode, _ := access["AuthenticationMode"].(string); mode == "API" {
				return nil
			}
			return &eksblueprints.OptimizeSuggestion{
				Resource:    name,
				Severity:    "low",
				Title:       "Cluster still honours the aws-auth ConfigMap",
				Description: "Access can be granted outside of access entries while the ConfigMap is active.",
				Suggestion:  "Switch AuthenticationMode to API once every principal has an access entry.",
			}
		},
	},
}

var nodegroupRules = []Rule{
	{
		ID:       "OPT-EKS-003",
		Category: CategoryReliability,
		Check: func(name string, res eksblueprints.ResourceDef) *eksblueprints.OptimizeSuggestion {
			if capacity, _ := res.Properties["CapacityType"].(string); capacity != "SPOT" {
				return nil
			}
			types, _ := res.Properties["InstanceTypes"].([]any)
			if len(types) > 1 {
				return nil
			}
			return &eksblueprints.OptimizeSuggestion{
				Resource:    name,
				Severity:    "medium",
				Title:       "Spot node group uses a single instance type",
				Description: "A single Spot pool can be reclaimed all at once.",
				Suggestion:  "List several instance types of similar size in InstanceTypes.",
			}
		},
	},
	{
		ID:       "OPT-EKS-004",
		Category: CategoryReliability,
		Check: func(name string, res eksblueprints.ResourceDef) *eksblueprints.OptimizeSuggestion {
			scaling, _ := res.Properties["ScalingConfig"].(map[string]any)
			minSize, ok := toInt(scaling["MinSize"])
			if ok && minSize >= 2 {
				return nil
			}
			return &eksblueprints.OptimizeSuggestion{
				Resource:    name,
				Severity:    "medium",
				Title:       "Node group can scale down to a single node",
				Description: "System pods lose redundancy when only one node is running.",
				Suggestion:  "Set ScalingConfig.MinSize to at least 2.",
			}
		},
	},
	{
		ID:       "OPT-EKS-005",
		Category: CategoryCost,
		Check: func(name string, res eksblueprints.ResourceDef) *eksblueprints.OptimizeSuggestion {
			if capacity, _ := res.Properties["CapacityType"].(string); capacity == "SPOT" {
				return nil
			}
			return &eksblueprints.OptimizeSuggestion{
				Resource:    name,
				Severity:    "low",
				Title:       "Node group runs on-demand capacity",
				Description: "Interruptible workloads can run on Spot capacity at a discount.",
				Suggestion:  "Set CapacityType to SPOT for node groups hosting fault-tolerant workloads.",
			}
		},
	},
}

var addonRules = []Rule{
	{
		ID:       "OPT-EKS-006",
		Category: CategoryPerformance,
		Check: func(name string, res eksblueprints.ResourceDef) *eksblueprints.OptimizeSuggestion {
			if version, _ := res.Properties["AddonVersion"].(string); version != "" {
				return nil
			}
			addon, _ := res.Properties["AddonName"].(string)
			return &eksblueprints.OptimizeSuggestion{
				Resource:    name,
				Severity:    "low",
				Title:       fmt.Sprintf("Add-on %s is not pinned", addon),
				Description: "EKS installs its default version, which changes between cluster upgrades.",
				Suggestion:  "Pin AddonVersion to a version tested with the cluster.",
			}
		},
	},
}

var roleRules = []Rule{
	{
		ID:       "OPT-IAM-001",
		Category: CategorySecurity,
		Check: func(name string, res eksblueprints.ResourceDef) *eksblueprints.OptimizeSuggestion {
			policies, _ := res.Properties["ManagedPolicyArns"].([]any)
			for _, p := range policies {
				if strings.HasSuffix(policyString(p), "/AdministratorAccess") {
					return &eksblueprints.OptimizeSuggestion{
						Resource:    name,
						Severity:    "high",
						Title:       "Role has AdministratorAccess",
						Description: "Workload and node roles rarely need full account access.",
						Suggestion:  "Replace AdministratorAccess with scoped managed or inline policies.",
					}
				}
			}
			return nil
		},
	},
}

// checkNatPerAz flags VPCs whose private subnets share fewer NAT gateways
// than there are private subnets.
func checkNatPerAz(t *eksblueprints.Template) []eksblueprints.OptimizeSuggestion {
	nats := 0
	private := 0
	vpc := ""
	for name, res := range t.Resources {
		switch res.Type {
		case "AWS::EC2::NatGateway":
			nats++
		case "AWS::EC2::Subnet":
			if tagValue(res.Properties, "aws-cdk:subnet-type") == "Private" {
				private++
			}
		case "AWS::EC2::VPC":
			if vpc == "" || name < vpc {
				vpc = name
			}
		}
	}
	if nats == 0 || nats >= private {
		return nil
	}
	return []eksblueprints.OptimizeSuggestion{{
		Resource:    vpc,
		Severity:    "medium",
		Title:       fmt.Sprintf("%d NAT gateways serve %d private subnets", nats, private),
		Description: "Private subnets lose egress when the availability zone holding their NAT gateway fails.",
		Suggestion:  "Set NatGateways to the number of availability zones.",
	}}
}

// toInt reads a serialized number.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

// tagValue returns the value of a tag in a CloudFormation tag list.
func tagValue(props map[string]any, key string) string {
	tags, _ := props["Tags"].([]any)
	for _, tag := range tags {
		m, _ := tag.(map[string]any)
		if k, _ := m["Key"].(string); k == key {
			v, _ := m["Value"].(string)
			return v
		}
	}
	return ""
}

// policyString extracts the ARN text from a literal or Fn::Sub policy.
func policyString(p any) string {
	switch v := p.(type) {
	case string:
		return v
	case map[string]any:
		s, _ := v["Fn::Sub"].(string)
		return s
	}
	return ""
}
