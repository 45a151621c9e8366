package related

import (
	"sigs.k8s.io/yaml"

	"github.com/aonescu/kubelens/internal/filter"
)

// Value is the display form of a resolution: resource names in list order.
// A nil Value means nothing is related; resolvers never return an empty,
// non-nil Value.
type Value []string

// YAML renders v as a YAML sequence. A nil Value renders as "".
func (v Value) YAML() (string, error) {
	if v == nil {
		return "", nil
	}
	out, err := yaml.Marshal([]string(v))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func project[T filter.Item](items []T) Value {
	var v Value
	for _, item := range items {
		if name := item.GetName(); name != "" {
			v = append(v, name)
		}
	}
	return v
}
