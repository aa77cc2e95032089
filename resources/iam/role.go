// Package iam contains the AWS::IAM resource types and policy document
// helpers used by the cluster constructs.
package iam

import (
	"encoding/json"

	"github.com/lex00/eks-blueprints-go/intrinsics"
)

// Role is an AWS::IAM::Role resource.
type Role struct {
	RoleName                 any
	AssumeRolePolicyDocument PolicyDocument
	ManagedPolicyArns        []any
	Path                     string
	Tags                     []any
}

// ResourceType returns the CloudFormation type.
func (Role) ResourceType() string { return "AWS::IAM::Role" }

// AddManagedPolicy appends a managed policy ARN unless it is already attached.
func (r *Role) AddManagedPolicy(arn any) {
	want, _ := json.Marshal(arn)
	for _, existing := range r.ManagedPolicyArns {
		got, _ := json.Marshal(existing)
		if string(got) == string(want) {
			return
		}
	}
	r.ManagedPolicyArns = append(r.ManagedPolicyArns, arn)
}

// ManagedPolicyArn returns the partition-aware ARN of an AWS managed policy.
func ManagedPolicyArn(name string) intrinsics.Sub {
	return intrinsics.Sub{String: "arn:${AWS::Partition}:iam::aws:policy/" + name}
}

// PolicyDocument represents an IAM policy document.
type PolicyDocument struct {
	Version   string `json:"Version,omitempty"`
	Statement []any  `json:"Statement"`
}

// PolicyStatement represents an IAM policy statement.
type PolicyStatement struct {
	Sid       string         `json:"Sid,omitempty"`
	Effect    string         `json:"Effect"`
	Principal any            `json:"Principal,omitempty"`
	Action    any            `json:"Action,omitempty"`
	Resource  any            `json:"Resource,omitempty"`
	Condition map[string]any `json:"Condition,omitempty"`
}

// ServicePrincipal represents a service principal (e.g., eks.amazonaws.com).
// Serializes to {"Service": ...} format.
type ServicePrincipal []any

// MarshalJSON serializes to {"Service": ...} format.
func (p ServicePrincipal) MarshalJSON() ([]byte, error) {
	if len(p) == 1 {
		return json.Marshal(map[string]any{"Service": p[0]})
	}
	return json.Marshal(map[string]any{"Service": []any(p)})
}

// AssumeRoleFor builds a trust policy allowing the given services to assume the role.
func AssumeRoleFor(services ...string) PolicyDocument {
	principal := make(ServicePrincipal, len(services))
	for i, s := range services {
		principal[i] = s
	}
	return PolicyDocument{
		Version: "2012-10-17",
		Statement: []any{
			PolicyStatement{
				Effect:    "Allow",
				Principal: principal,
				Action:    "sts:AssumeRole",
			},
		},
	}
}
