package kube

import "fmt"

// NamespacedPath builds the collection path of a namespaced resource. The core
// group (group == "") lives under api/, every other group under apis/.
func NamespacedPath(group, version, namespace, resource string) string {
	if group == "" {
		return fmt.Sprintf("api/%s/namespaces/%s/%s", version, namespace, resource)
	}
	return fmt.Sprintf("apis/%s/%s/namespaces/%s/%s", group, version, namespace, resource)
}

// CorePath is NamespacedPath for core/v1 resources.
func CorePath(namespace, resource string) string {
	return NamespacedPath("", "v1", namespace, resource)
}

// ObjectPath addresses a single named object inside a collection path.
func ObjectPath(collection, name string) string {
	return collection + "/" + name
}
