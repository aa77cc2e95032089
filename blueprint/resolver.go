package blueprint

import (
	"sync"
)

// Resolver produces a value once a ResourceContext exists.
type Resolver[T any] interface {
	Resolve(ctx *ResourceContext) (T, error)
}

// ResolverFunc adapts a function to a Resolver.
type ResolverFunc[T any] func(ctx *ResourceContext) (T, error)

// Resolve calls f(ctx).
func (f ResolverFunc[T]) Resolve(ctx *ResourceContext) (T, error) {
	return f(ctx)
}

// Lazy is a declared but unresolved resource. It resolves at most once per
// context, so a lookup shared by several consumers registers its
// constructs a single time.
type Lazy[T any] struct {
	fn ResolverFunc[T]

	mu       sync.Mutex
	resolved map[*ResourceContext]T
}

// GetResource declares a resource that is looked up during Build.
func GetResource[T any](fn func(ctx *ResourceContext) (T, error)) *Lazy[T] {
	return &Lazy[T]{fn: fn, resolved: make(map[*ResourceContext]T)}
}

// Resolve runs the lookup for ctx, or returns the memoized result.
// Failed lookups are not memoized.
func (l *Lazy[T]) Resolve(ctx *ResourceContext) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if v, ok := l.resolved[ctx]; ok {
		return v, nil
	}
	v, err := l.fn(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	l.resolved[ctx] = v
	return v, nil
}

// Map derives a resolver from another one, e.g. an imported role's ARN
// from the role lookup.
func Map[T, U any](r Resolver[T], fn func(T) U) Resolver[U] {
	return ResolverFunc[U](func(ctx *ResourceContext) (U, error) {
		v, err := r.Resolve(ctx)
		if err != nil {
			var zero U
			return zero, err
		}
		return fn(v), nil
	})
}

// Value returns a resolver that always yields v.
func Value[T any](v T) Resolver[T] {
	return ResolverFunc[T](func(*ResourceContext) (T, error) {
		return v, nil
	})
}

// StringValue wraps a literal ARN or name for fields that accept either a
// literal or an intrinsic.
func StringValue(s string) Resolver[any] {
	return Value[any](s)
}
