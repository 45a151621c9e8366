package related

import (
	"context"

	"github.com/aonescu/kubelens/internal/filter"
	"github.com/aonescu/kubelens/internal/kube"
)

// PathFunc returns the collection path of a kind inside namespace.
type PathFunc func(namespace string) string

// Kind binds a list type L and its item view T to the API path the list is
// served from. Any resource whose items satisfy filter.Item can be resolved
// through a Kind; no per-kind resolver code is needed.
type Kind[L any, T filter.Item] struct {
	resource string
	path     PathFunc
	items    func(*L) []T
}

func NewKind[L any, T filter.Item](resource string, path PathFunc, items func(*L) []T) Kind[L, T] {
	return Kind[L, T]{resource: resource, path: path, items: items}
}

// Resource is the plural resource name, e.g. "pods".
func (k Kind[L, T]) Resource() string { return k.resource }

func (k Kind[L, T]) Path(namespace string) string { return k.path(namespace) }

// List fetches the kind's collection in namespace.
func (k Kind[L, T]) List(ctx context.Context, c kube.Client, namespace string) ([]T, error) {
	list, err := kube.Fetch[L](ctx, c, k.path(namespace))
	if err != nil {
		return nil, err
	}
	return k.items(list), nil
}

func corePath(resource string) PathFunc {
	return func(namespace string) string { return kube.CorePath(namespace, resource) }
}

func groupPath(group, version, resource string) PathFunc {
	return func(namespace string) string {
		return kube.NamespacedPath(group, version, namespace, resource)
	}
}

func pointers[T any](items []T) []*T {
	out := make([]*T, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out
}
