// Package construct provides the scope that blueprint components register
// CloudFormation resources and Kubernetes manifests into.
//
// An App owns one or more stacks and writes them as a cloud assembly:
//
//	app := construct.NewApp("cdk.out")
//	stack, _ := construct.NewStack(app, "eks-blueprints", account, region)
//	id, _ := stack.AddResource("eks-blueprints-vpc", &ec2.VPC{CidrBlock: "10.1.0.0/16"})
//	manifest, _ := app.Synth(construct.FormatJSON)
//
// Construct ids are slash-separated paths. Each path maps to a PascalCase
// logical ID: "eks-blueprints-vpc/PublicSubnet1" becomes
// "EksBlueprintsVpcPublicSubnet1".
package construct
