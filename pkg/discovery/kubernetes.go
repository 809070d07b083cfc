// Package discovery resolves router backends from a Kubernetes Service.
// Resolution happens once at startup; the resulting list is fixed for the process lifetime.
package discovery

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strconv"

	"modelserve/pkg/config"

	discoveryv1 "k8s.io/api/discovery/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// NewClient creates a clientset from an explicit kubeconfig, the in-cluster config,
// or the default loading rules, in that order
func NewClient(kubeconfig string) (kubernetes.Interface, error) {
	var cfg *rest.Config
	var err error

	if kubeconfig == "" {
		cfg, err = rest.InClusterConfig()
	}
	if kubeconfig != "" || err != nil {
		loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
		loadingRules.ExplicitPath = kubeconfig
		kubeConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, &clientcmd.ConfigOverrides{})
		cfg, err = kubeConfig.ClientConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to get kubernetes config: %v", err)
		}
	}

	client, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %v", err)
	}
	return client, nil
}

// Resolver lists the ready endpoints behind a Service
type Resolver struct {
	client kubernetes.Interface
	cfg    config.DiscoveryConfig
}

func NewResolver(client kubernetes.Interface, cfg config.DiscoveryConfig) *Resolver {
	if cfg.Scheme == "" {
		cfg.Scheme = "http"
	}
	return &Resolver{client: client, cfg: cfg}
}

// Resolve returns sorted base URLs of every ready endpoint address
func (r *Resolver) Resolve(ctx context.Context) ([]string, error) {
	if r.cfg.Service == "" {
		return nil, fmt.Errorf("discovery service name not configured")
	}

	slices, err := r.client.DiscoveryV1().EndpointSlices(r.cfg.Namespace).List(ctx, metav1.ListOptions{
		LabelSelector: discoveryv1.LabelServiceName + "=" + r.cfg.Service,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list endpoint slices for %s/%s: %w", r.cfg.Namespace, r.cfg.Service, err)
	}

	seen := make(map[string]struct{})
	var urls []string
	for _, slice := range slices.Items {
		port, ok := r.selectPort(slice.Ports)
		if !ok {
			continue
		}
		for _, ep := range slice.Endpoints {
			if ep.Conditions.Ready != nil && !*ep.Conditions.Ready {
				continue
			}
			for _, addr := range ep.Addresses {
				u := fmt.Sprintf("%s://%s", r.cfg.Scheme, net.JoinHostPort(addr, strconv.Itoa(int(port))))
				if _, dup := seen[u]; dup {
					continue
				}
				seen[u] = struct{}{}
				urls = append(urls, u)
			}
		}
	}

	if len(urls) == 0 {
		return nil, fmt.Errorf("no ready endpoints for service %s/%s", r.cfg.Namespace, r.cfg.Service)
	}
	sort.Strings(urls)
	return urls, nil
}

func (r *Resolver) selectPort(ports []discoveryv1.EndpointPort) (int32, bool) {
	for _, p := range ports {
		if p.Port == nil {
			continue
		}
		if r.cfg.PortName == "" || (p.Name != nil && *p.Name == r.cfg.PortName) {
			return *p.Port, true
		}
	}
	return 0, false
}
