package blueprint

import (
	"github.com/lex00/eks-blueprints-go/construct"
	"github.com/lex00/eks-blueprints-go/network"
)

// ResourceContext is the resolution-phase view of the stack being built.
type ResourceContext struct {
	Scope *construct.Stack

	resources map[string]any
}

// NewResourceContext wraps a stack for resolution.
func NewResourceContext(scope *construct.Stack) *ResourceContext {
	return &ResourceContext{
		Scope:     scope,
		resources: make(map[string]any),
	}
}

// Account returns the target account, empty when unknown.
func (c *ResourceContext) Account() string { return c.Scope.Account() }

// Region returns the target region, empty when unknown.
func (c *ResourceContext) Region() string { return c.Scope.Region() }

// GlobalResource is a typed key for a resource shared across providers.
type GlobalResource[T any] struct {
	Name string
}

// GlobalVpc is the key of the VPC the cluster is placed in.
var GlobalVpc = GlobalResource[*network.Vpc]{Name: "vpc"}

// Add stores a provided resource.
func Add[T any](ctx *ResourceContext, key GlobalResource[T], v T) {
	ctx.resources[key.Name] = v
}

// Lookup returns a provided resource.
func Lookup[T any](ctx *ResourceContext, key GlobalResource[T]) (T, bool) {
	v, ok := ctx.resources[key.Name].(T)
	return v, ok
}

// ResourceProvider creates a global resource during Build.
type ResourceProvider[T any] interface {
	Provide(ctx *ResourceContext) (T, error)
}
