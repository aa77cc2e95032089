// Package intrinsics provides the CloudFormation intrinsic functions used by
// the blueprint constructs.
//
// The core types are re-exported from cloudformation-schema-go:
//
//	Ref{LogicalName: "Cluster"}            → {"Ref": "Cluster"}
//	GetAtt{LogicalName: "Cluster", Attribute: "Arn"}
//	                                       → {"Fn::GetAtt": ["Cluster", "Arn"]}
//	Sub{String: "${AWS::StackName}-vpc"}   → {"Fn::Sub": "${AWS::StackName}-vpc"}
//	Select{Index: 0, List: GetAZs{}}       → {"Fn::Select": [0, {"Fn::GetAZs": ""}]}
package intrinsics

import (
	"sort"

	"github.com/lex00/cloudformation-schema-go/intrinsics"
)

type (
	// Ref represents a CloudFormation Ref intrinsic function.
	Ref = intrinsics.Ref

	// GetAtt represents a CloudFormation Fn::GetAtt intrinsic function.
	GetAtt = intrinsics.GetAtt

	// Sub represents a CloudFormation Fn::Sub intrinsic function.
	Sub = intrinsics.Sub

	// Select represents a CloudFormation Fn::Select intrinsic function.
	Select = intrinsics.Select

	// GetAZs represents a CloudFormation Fn::GetAZs intrinsic function.
	GetAZs = intrinsics.GetAZs

	// Tag represents a CloudFormation resource tag.
	Tag = intrinsics.Tag
)

// RefTo returns a Ref to the given logical ID.
func RefTo(logicalID string) Ref {
	return Ref{LogicalName: logicalID}
}

// Arn returns the Fn::GetAtt reference to a resource's Arn attribute.
func Arn(logicalID string) GetAtt {
	return GetAtt{LogicalName: logicalID, Attribute: "Arn"}
}

// AZ selects the availability zone at index from the stack region.
func AZ(index int) Select {
	return Select{Index: index, List: GetAZs{}}
}

// Tags converts a key/value map into a CloudFormation tag list sorted by key.
func Tags(kv map[string]string) []any {
	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tags := make([]any, 0, len(keys))
	for _, k := range keys {
		tags = append(tags, Tag{Key: k, Value: kv[k]})
	}
	return tags
}
