// Package filter narrows resource lists by label selector or by name.
//
// Both filters follow the same convention: a result with zero items is
// reported as (nil, false), never as an empty slice, and an empty selector or
// name set matches nothing. Inputs are never modified.
package filter

import (
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/util/sets"
)

// Item is the view of a resource the filters need. Every metav1.Object
// satisfies it.
type Item interface {
	GetName() string
	GetLabels() map[string]string
}

// BySelector keeps the items whose labels contain every key/value pair of
// selector. Items may carry extra labels; items without labels never match.
func BySelector[T Item](items []T, selector map[string]string) ([]T, bool) {
	if len(selector) == 0 {
		return nil, false
	}
	sel := labels.SelectorFromSet(selector)

	return keep(items, func(item T) bool {
		lbls := item.GetLabels()
		if lbls == nil {
			return false
		}
		return sel.Matches(labels.Set(lbls))
	})
}

// ByNames keeps the items whose name is one of names.
func ByNames[T Item](items []T, names []string) ([]T, bool) {
	if len(names) == 0 {
		return nil, false
	}
	wanted := sets.New(names...)

	return keep(items, func(item T) bool {
		return wanted.Has(item.GetName())
	})
}

func keep[T any](items []T, match func(T) bool) ([]T, bool) {
	var out []T
	for _, item := range items {
		if match(item) {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}
