package related

import (
	"fmt"
	"maps"
	"sort"
	"strings"

	"k8s.io/apimachinery/pkg/labels"

	"github.com/aonescu/kubelens/internal/filter"
)

// Criteria selects related items either by label selector or by name.
type Criteria struct {
	selector map[string]string
	names    []string
	byNames  bool
}

// MatchSelector matches items whose labels contain every pair of selector.
func MatchSelector(selector map[string]string) Criteria {
	return Criteria{selector: maps.Clone(selector)}
}

// MatchNames matches items whose name is one of names.
func MatchNames(names ...string) Criteria {
	return Criteria{names: append([]string(nil), names...), byNames: true}
}

// ParseSelector parses "k=v,k2=v2" into a selector map.
func ParseSelector(s string) (map[string]string, error) {
	set, err := labels.ConvertSelectorToLabelsMap(s)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", s, err)
	}
	return set, nil
}

// ByNames reports whether c matches by name.
func (c Criteria) ByNames() bool { return c.byNames }

func (c Criteria) String() string {
	if c.byNames {
		return "names=" + strings.Join(c.names, ",")
	}
	keys := make([]string, 0, len(c.selector))
	for k := range c.selector {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+c.selector[k])
	}
	return "selector=" + strings.Join(pairs, ",")
}

func match[T filter.Item](c Criteria, items []T) ([]T, bool) {
	if c.byNames {
		return filter.ByNames(items, c.names)
	}
	return filter.BySelector(items, c.selector)
}
