// Package related resolves which resources of a kind are related to a
// caller-supplied selector or name set.
package related

import (
	"context"
	"fmt"
	"sort"

	"github.com/aonescu/kubelens/internal/filter"
	"github.com/aonescu/kubelens/internal/kube"
)

// ResolveError means the relation could not be determined. It is distinct from
// a nil Value, which means nothing is related.
type ResolveError struct {
	Resource  string
	Namespace string
	Err       error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve %s in %s: %v", e.Resource, e.Namespace, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

// Resolve fetches k's collection in namespace, keeps the items matching cr
// and returns their names. It returns (nil, nil) when nothing matches.
func Resolve[L any, T filter.Item](ctx context.Context, c kube.Client, k Kind[L, T], namespace string, cr Criteria) (Value, error) {
	items, err := k.List(ctx, c, namespace)
	if err != nil {
		return nil, &ResolveError{Resource: k.Resource(), Namespace: namespace, Err: err}
	}

	matched, ok := match(cr, items)
	if !ok {
		return nil, nil
	}
	return project(matched), nil
}

// Resolver is the kind-erased form of Resolve.
type Resolver interface {
	Resource() string
	Related(ctx context.Context, namespace string, cr Criteria) (Value, error)
}

type kindResolver[L any, T filter.Item] struct {
	client kube.Client
	kind   Kind[L, T]
}

// For binds k to c.
func For[L any, T filter.Item](c kube.Client, k Kind[L, T]) Resolver {
	return kindResolver[L, T]{client: c, kind: k}
}

func (r kindResolver[L, T]) Resource() string { return r.kind.Resource() }

func (r kindResolver[L, T]) Related(ctx context.Context, namespace string, cr Criteria) (Value, error) {
	return Resolve(ctx, r.client, r.kind, namespace, cr)
}

// Registry maps a lookup name to the resolver for that kind.
type Registry map[string]Resolver

// NewRegistry registers the built-in kinds against c. "service-selectors"
// matches against Service spec.selector instead of Service labels.
func NewRegistry(c kube.Client) Registry {
	return Registry{
		"pods":              For(c, Pods),
		"services":          For(c, Services),
		"service-selectors": For(c, ServiceSelectors),
		"configmaps":        For(c, ConfigMaps),
		"deployments":       For(c, Deployments),
	}
}

func (r Registry) Lookup(name string) (Resolver, bool) {
	res, ok := r[name]
	return res, ok
}

// Names returns the registered lookup names, sorted.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
