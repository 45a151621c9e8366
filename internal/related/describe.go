package related

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/yaml"

	"github.com/aonescu/kubelens/internal/filter"
	"github.com/aonescu/kubelens/internal/kube"
)

// Description is the network view of one object: what it is and which
// resources relate to it, keyed by plural resource name.
type Description struct {
	Kind      string           `json:"kind"`
	Name      string           `json:"name"`
	Namespace string           `json:"namespace"`
	Related   map[string]Value `json:"relatedResources,omitempty"`
}

// YAML renders the relatedResources section of d. Kinds with nothing related
// are omitted.
func (d *Description) YAML() (string, error) {
	if len(d.Related) == 0 {
		return "", nil
	}
	out, err := yaml.Marshal(map[string]any{"relatedResources": d.Related})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (d *Description) add(resource string, v Value) {
	if v == nil {
		return
	}
	if d.Related == nil {
		d.Related = make(map[string]Value)
	}
	d.Related[resource] = v
}

// DescribeService reports the Pods selected by the Service's spec.selector.
// A Service without a selector has no related Pods.
func DescribeService(ctx context.Context, c kube.Client, namespace, name string) (*Description, error) {
	svc, err := kube.Fetch[corev1.Service](ctx, c, kube.ObjectPath(Services.Path(namespace), name))
	if err != nil {
		return nil, &ResolveError{Resource: "services", Namespace: namespace, Err: err}
	}

	d := &Description{Kind: "Service", Name: svc.Name, Namespace: namespace}
	if len(svc.Spec.Selector) == 0 {
		return d, nil
	}

	pods, err := Resolve(ctx, c, Pods, namespace, MatchSelector(svc.Spec.Selector))
	if err != nil {
		return nil, err
	}
	d.add("pods", pods)
	return d, nil
}

// DescribePod reports the Services whose spec.selector selects the Pod.
func DescribePod(ctx context.Context, c kube.Client, namespace, name string) (*Description, error) {
	pod, err := kube.Fetch[corev1.Pod](ctx, c, kube.ObjectPath(Pods.Path(namespace), name))
	if err != nil {
		return nil, &ResolveError{Resource: "pods", Namespace: namespace, Err: err}
	}

	d := &Description{Kind: "Pod", Name: pod.Name, Namespace: namespace}

	services, err := Services.List(ctx, c, namespace)
	if err != nil {
		return nil, &ResolveError{Resource: "services", Namespace: namespace, Err: err}
	}

	target := []*corev1.Pod{pod}
	var selecting []*corev1.Service
	for _, svc := range services {
		if _, ok := filter.BySelector(target, svc.Spec.Selector); ok {
			selecting = append(selecting, svc)
		}
	}
	d.add("services", project(selecting))
	return d, nil
}
