package related

import (
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
)

var (
	Pods = NewKind("pods", corePath("pods"), func(l *corev1.PodList) []*corev1.Pod {
		return pointers(l.Items)
	})

	Services = NewKind("services", corePath("services"), func(l *corev1.ServiceList) []*corev1.Service {
		return pointers(l.Items)
	})

	ConfigMaps = NewKind("configmaps", corePath("configmaps"), func(l *corev1.ConfigMapList) []*corev1.ConfigMap {
		return pointers(l.Items)
	})

	Deployments = NewKind("deployments", groupPath("apps", "v1", "deployments"), func(l *appsv1.DeploymentList) []*appsv1.Deployment {
		return pointers(l.Items)
	})

	// ServiceSelectors lists Services but matches selectors against each
	// Service's spec.selector rather than its own labels.
	ServiceSelectors = NewKind("services", corePath("services"), func(l *corev1.ServiceList) []SelectorView {
		out := make([]SelectorView, len(l.Items))
		for i := range l.Items {
			out[i] = SelectorView{Service: &l.Items[i]}
		}
		return out
	})
)

// SelectorView presents a Service's spec.selector as its labels.
type SelectorView struct {
	*corev1.Service
}

func (v SelectorView) GetLabels() map[string]string {
	return v.Spec.Selector
}
