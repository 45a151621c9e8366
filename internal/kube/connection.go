package kube

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-logr/logr"
	"github.com/u2takey/go-utils/filesystem/homedir"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/klog/v2"
)

// DefaultKubeconfig resolves the kubeconfig path: explicit wins, then
// $KUBECONFIG, then ~/.kube/config. An empty result means in-cluster.
func DefaultKubeconfig(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv("KUBECONFIG"); env != "" {
		return env
	}
	if home := homedir.HomeDir(); home != "" {
		path := filepath.Join(home, ".kube", "config")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// RESTConfig loads the rest.Config for kubeconfig (see DefaultKubeconfig),
// falling back to the in-cluster service account.
func RESTConfig(kubeconfig string, timeout time.Duration) (*rest.Config, error) {
	path := DefaultKubeconfig(kubeconfig)

	var cfg *rest.Config
	var err error
	if path != "" {
		cfg, err = clientcmd.BuildConfigFromFlags("", path)
		if err != nil {
			return nil, fmt.Errorf("unable to load kubeconfig from %s: %w", path, err)
		}
	} else {
		cfg, err = rest.InClusterConfig()
		if err != nil {
			return nil, fmt.Errorf("unable to load in-cluster config: %w", err)
		}
	}
	cfg.Timeout = timeout
	return cfg, nil
}

// Connect builds a RESTClient for the cluster described by kubeconfig.
func Connect(kubeconfig string, timeout time.Duration) (*RESTClient, error) {
	// client-go logs through klog straight to stderr, which garbles terminal output.
	klog.SetLogger(logr.Discard())

	cfg, err := RESTConfig(kubeconfig, timeout)
	if err != nil {
		return nil, err
	}

	clientset, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create a client: %w", err)
	}
	return NewRESTClient(clientset.CoreV1().RESTClient()), nil
}
