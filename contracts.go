// Package eksblueprints provides the shared contracts for synthesizing an
// EKS blueprint stack into a CloudFormation template.
//
// A stack is declared with the blueprint builder:
//
//	builder := blueprint.NewBuilder().
//	    Account(account).
//	    Region(region).
//	    ClusterProvider(clusterProvider).
//	    AddOns(addons.NewVpcCniAddOn(), addons.NewCoreDnsAddOn("v1.9.3-eksbuild.2")).
//	    Teams(platformTeam)
//
//	stack, err := builder.Build(app, "eks-blueprints")
//
// The eks-blueprints CLI synthesizes the stack into a cloud assembly
// containing the template, the Kubernetes manifests and an assembly manifest.
package eksblueprints

// Resource represents a CloudFormation resource.
// All resource types (ec2.VPC, eks.Cluster, iam.Role, etc.) implement this interface.
type Resource interface {
	// ResourceType returns the CloudFormation type (e.g., "AWS::EC2::VPC")
	ResourceType() string
}

// Template represents a CloudFormation template.
type Template struct {
	AWSTemplateFormatVersion string                 `json:"AWSTemplateFormatVersion" yaml:"AWSTemplateFormatVersion"`
	Description              string                 `json:"Description,omitempty" yaml:"Description,omitempty"`
	Resources                map[string]ResourceDef `json:"Resources" yaml:"Resources"`
	Outputs                  map[string]Output      `json:"Outputs,omitempty" yaml:"Outputs,omitempty"`
}

// ResourceDef is a single resource in the CloudFormation template.
type ResourceDef struct {
	Type       string         `json:"Type" yaml:"Type"`
	Properties map[string]any `json:"Properties,omitempty" yaml:"Properties,omitempty"`
	DependsOn  []string       `json:"DependsOn,omitempty" yaml:"DependsOn,omitempty"`
}

// Output is a CloudFormation template output.
type Output struct {
	Description string        `json:"Description,omitempty" yaml:"Description,omitempty"`
	Value       any           `json:"Value" yaml:"Value"`
	Export      *OutputExport `json:"Export,omitempty" yaml:"Export,omitempty"`
}

// OutputExport names a cross-stack export.
type OutputExport struct {
	Name any `json:"Name" yaml:"Name"`
}

// AssemblyManifest describes the artifacts written by a synthesis run.
type AssemblyManifest struct {
	Version   string              `json:"version"`
	Artifacts map[string]Artifact `json:"artifacts"`
}

// Artifact is a single stack in the cloud assembly.
type Artifact struct {
	Type        string             `json:"type"`
	Environment string             `json:"environment"`
	Properties  ArtifactProperties `json:"properties"`
}

// ArtifactProperties points at the files that make up a stack artifact.
type ArtifactProperties struct {
	TemplateFile string `json:"templateFile"`
	ManifestFile string `json:"manifestFile,omitempty"`
}

// ListResult is the JSON output from `eks-blueprints list`.
type ListResult struct {
	Resources []ListResource `json:"resources"`
}

// ListResource is a single resource in the list output.
type ListResource struct {
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	DependsOn []string `json:"depends_on,omitempty"`
}

// TemplateDiff groups resource changes between two templates.
type TemplateDiff struct {
	Added    []DiffEntry `json:"added,omitempty"`
	Removed  []DiffEntry `json:"removed,omitempty"`
	Modified []DiffEntry `json:"modified,omitempty"`
}

// DiffEntry is a single changed resource.
type DiffEntry struct {
	Resource string   `json:"resource"`
	Type     string   `json:"type"`
	Changes  []string `json:"changes,omitempty"`
}

// DiffSummary counts the changes in a TemplateDiff.
type DiffSummary struct {
	Added    int `json:"added"`
	Removed  int `json:"removed"`
	Modified int `json:"modified"`
	Total    int `json:"total"`
}

// DiffResult is the JSON output from `eks-blueprints diff`.
type DiffResult struct {
	Success bool         `json:"success"`
	Diff    TemplateDiff `json:"diff"`
	Summary DiffSummary  `json:"summary"`
}

// ValidateResult is the JSON output from `eks-blueprints validate`.
type ValidateResult struct {
	Success   bool     `json:"success"`
	Resources int      `json:"resources"`
	Errors    []string `json:"errors,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// OptimizeSuggestion is a single improvement found by `eks-blueprints optimize`.
type OptimizeSuggestion struct {
	Rule        string `json:"rule"`
	Resource    string `json:"resource"`
	Category    string `json:"category"`
	Severity    string `json:"severity"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Suggestion  string `json:"suggestion"`
}

// OptimizeSummary counts suggestions per category.
type OptimizeSummary struct {
	Security    int `json:"security"`
	Cost        int `json:"cost"`
	Performance int `json:"performance"`
	Reliability int `json:"reliability"`
	Total       int `json:"total"`
}

// OptimizeResult is the JSON output from `eks-blueprints optimize`.
type OptimizeResult struct {
	Suggestions []OptimizeSuggestion `json:"suggestions"`
	Summary     OptimizeSummary      `json:"summary"`
}

// Environment renders the aws://ACCOUNT/REGION form used in the assembly
// manifest. Unset values become unknown-account and unknown-region.
func Environment(account, region string) string {
	if account == "" {
		account = "unknown-account"
	}
	if region == "" {
		region = "unknown-region"
	}
	return "aws://" + account + "/" + region
}
