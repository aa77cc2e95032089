package schema

var tags = PropertySchema{Type: "List", Items: "Map"}

// resourceSchemas covers every resource type a blueprint synthesizes.
var resourceSchemas = map[string]ResourceSchema{
	"AWS::EC2::VPC": {
		Properties: map[string]PropertySchema{
			"CidrBlock":          {Type: "String"},
			"EnableDnsHostnames": {Type: "Boolean"},
			"EnableDnsSupport":   {Type: "Boolean"},
			"InstanceTenancy":    {Type: "String", AllowedValues: []string{"default", "dedicated", "host"}},
			"Tags":               tags,
		},
	},
	"AWS::EC2::InternetGateway": {
		Properties: map[string]PropertySchema{"Tags": tags},
	},
	"AWS::EC2::VPCGatewayAttachment": {
		Required: []string{"VpcId"},
		Properties: map[string]PropertySchema{
			"InternetGatewayId": {Type: "String"},
			"VpcId":             {Type: "String"},
		},
	},
	"AWS::EC2::Subnet": {
		Required: []string{"VpcId"},
		Properties: map[string]PropertySchema{
			"VpcId":               {Type: "String"},
			"CidrBlock":           {Type: "String"},
			"AvailabilityZone":    {Type: "String"},
			"MapPublicIpOnLaunch": {Type: "Boolean"},
			"Tags":                tags,
		},
	},
	"AWS::EC2::RouteTable": {
		Required: []string{"VpcId"},
		Properties: map[string]PropertySchema{
			"VpcId": {Type: "String"},
			"Tags":  tags,
		},
	},
	"AWS::EC2::SubnetRouteTableAssociation": {
		Required: []string{"RouteTableId", "SubnetId"},
		Properties: map[string]PropertySchema{
			"RouteTableId": {Type: "String"},
			"SubnetId":     {Type: "String"},
		},
	},
	"AWS::EC2::Route": {
		Required: []string{"RouteTableId"},
		Properties: map[string]PropertySchema{
			"RouteTableId":         {Type: "String"},
			"DestinationCidrBlock": {Type: "String"},
			"GatewayId":            {Type: "String"},
			"NatGatewayId":         {Type: "String"},
		},
	},
	"AWS::EC2::EIP": {
		Properties: map[string]PropertySchema{
			"Domain": {Type: "String", AllowedValues: []string{"vpc", "standard"}},
			"Tags":   tags,
		},
	},
	"AWS::EC2::NatGateway": {
		Required: []string{"SubnetId"},
		Properties: map[string]PropertySchema{
			"AllocationId": {Type: "String"},
			"SubnetId":     {Type: "String"},
			"Tags":         tags,
		},
	},
	"AWS::IAM::Role": {
		Required: []string{"AssumeRolePolicyDocument"},
		Properties: map[string]PropertySchema{
			"AssumeRolePolicyDocument": {Type: "Json"},
			"ManagedPolicyArns":        {Type: "List", Items: "String"},
			"Path":                     {Type: "String"},
			"RoleName":                 {Type: "String"},
			"Tags":                     tags,
		},
	},
	"AWS::EKS::Cluster": {
		Required: []string{"ResourcesVpcConfig", "RoleArn"},
		Properties: map[string]PropertySchema{
			"Name":               {Type: "String"},
			"Version":            {Type: "String"},
			"RoleArn":            {Type: "String"},
			"ResourcesVpcConfig": {Type: "Map"},
			"AccessConfig":       {Type: "Map"},
			"Tags":               tags,
		},
	},
	"AWS::EKS::Nodegroup": {
		Required: []string{"ClusterName", "NodeRole", "Subnets"},
		Properties: map[string]PropertySchema{
			"ClusterName":   {Type: "String"},
			"NodegroupName": {Type: "String"},
			"NodeRole":      {Type: "String"},
			"Subnets":       {Type: "List", Items: "String"},
			"AmiType": {Type: "String", AllowedValues: []string{
				"AL2_x86_64", "AL2_x86_64_GPU", "AL2_ARM_64",
				"AL2023_x86_64_STANDARD", "AL2023_ARM_64_STANDARD",
				"BOTTLEROCKET_x86_64", "BOTTLEROCKET_ARM_64", "CUSTOM",
			}},
			"InstanceTypes": {Type: "List", Items: "String"},
			"CapacityType":  {Type: "String", AllowedValues: []string{"ON_DEMAND", "SPOT", "CAPACITY_BLOCK"}},
			"DiskSize":      {Type: "Integer"},
			"ScalingConfig": {Type: "Map"},
			"Labels":        {Type: "Map"},
			"Tags":          {Type: "Map"},
		},
	},
	"AWS::EKS::FargateProfile": {
		Required: []string{"ClusterName", "PodExecutionRoleArn", "Selectors"},
		Properties: map[string]PropertySchema{
			"ClusterName":         {Type: "String"},
			"FargateProfileName":  {Type: "String"},
			"PodExecutionRoleArn": {Type: "String"},
			"Selectors":           {Type: "List", Items: "Map"},
			"Subnets":             {Type: "List", Items: "String"},
			"Tags":                tags,
		},
	},
	"AWS::EKS::Addon": {
		Required: []string{"AddonName", "ClusterName"},
		Properties: map[string]PropertySchema{
			"AddonName":             {Type: "String"},
			"AddonVersion":          {Type: "String"},
			"ClusterName":           {Type: "String"},
			"ConfigurationValues":   {Type: "String"},
			"ResolveConflicts":      {Type: "String", AllowedValues: []string{"NONE", "OVERWRITE", "PRESERVE"}},
			"ServiceAccountRoleArn": {Type: "String"},
			"Tags":                  tags,
		},
	},
	"AWS::EKS::AccessEntry": {
		Required: []string{"ClusterName", "PrincipalArn"},
		Properties: map[string]PropertySchema{
			"ClusterName":      {Type: "String"},
			"PrincipalArn":     {Type: "String"},
			"Type":             {Type: "String", AllowedValues: []string{"STANDARD", "FARGATE_LINUX", "EC2_LINUX", "EC2_WINDOWS"}},
			"Username":         {Type: "String"},
			"KubernetesGroups": {Type: "List", Items: "String"},
			"AccessPolicies":   {Type: "List", Items: "Map"},
			"Tags":             tags,
		},
	},
}
