package blueprint

import (
	"fmt"

	"github.com/lex00/eks-blueprints-go/construct"
	"github.com/lex00/eks-blueprints-go/intrinsics"
)

// ImportedRole is an existing IAM role referenced by name.
type ImportedRole struct {
	LogicalID string
	Name      string
	Arn       intrinsics.Sub
}

// RoleArn returns the role ARN for use in resource properties.
func (r *ImportedRole) RoleArn() any {
	return r.Arn
}

// RoleFromName imports an existing role. No resource is emitted; the
// construct id is reserved so it cannot collide with another construct.
// The ARN uses the stack account when known and ${AWS::AccountId} otherwise.
func RoleFromName(scope *construct.Stack, id, name string) (*ImportedRole, error) {
	if name == "" {
		return nil, fmt.Errorf("importing role %s: empty role name", id)
	}
	logicalID, err := scope.Reserve(id)
	if err != nil {
		return nil, fmt.Errorf("importing role %s: %w", name, err)
	}

	account := scope.Account()
	if account == "" {
		account = "${AWS::AccountId}"
	}
	return &ImportedRole{
		LogicalID: logicalID,
		Name:      name,
		Arn:       intrinsics.Sub{String: "arn:${AWS::Partition}:iam::" + account + ":role/" + name},
	}, nil
}
