package main

import (
	"testing"

	"modelserve/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	discoveryv1 "k8s.io/api/discovery/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/fake"
)

func newTestApp(cfg *config.Config, client kubernetes.Interface) *Application {
	app := NewApplication()
	app.config = cfg
	app.newKubeClient = func(string) (kubernetes.Interface, error) {
		return client, nil
	}
	return app
}

func TestInitBackends_StaticKeepsDuplicates(t *testing.T) {
	cfg := config.Default()
	cfg.Router.Backends = []string{"http://flask-backend-service:5001", "http://flask-backend-service:5001"}

	app := newTestApp(cfg, nil)
	require.NoError(t, app.initBackends())
	assert.Equal(t, 2, app.balancer.Len())

	idx, _ := app.balancer.Next()
	assert.Equal(t, 0, idx)
	idx, _ = app.balancer.Next()
	assert.Equal(t, 1, idx)
}

func TestInitBackends_NoneConfigured(t *testing.T) {
	app := newTestApp(config.Default(), nil)
	err := app.initBackends()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BACKEND_SERVERS")
}

func TestInitBackends_Discovery(t *testing.T) {
	port := int32(5001)
	ready := true
	client := fake.NewSimpleClientset(&discoveryv1.EndpointSlice{
		ObjectMeta: metav1.ObjectMeta{
			Name:      "backend-abc",
			Namespace: "default",
			Labels:    map[string]string{discoveryv1.LabelServiceName: "flask-backend-service"},
		},
		AddressType: discoveryv1.AddressTypeIPv4,
		Ports:       []discoveryv1.EndpointPort{{Port: &port}},
		Endpoints: []discoveryv1.Endpoint{
			{Addresses: []string{"10.0.0.2"}, Conditions: discoveryv1.EndpointConditions{Ready: &ready}},
			{Addresses: []string{"10.0.0.1"}, Conditions: discoveryv1.EndpointConditions{Ready: &ready}},
		},
	})

	cfg := config.Default()
	cfg.Router.Backends = []string{"http://static:5001"}
	cfg.Router.Discovery.Enabled = true
	cfg.Router.Discovery.Service = "flask-backend-service"

	app := newTestApp(cfg, client)
	require.NoError(t, app.initBackends())
	assert.Equal(t, []string{
		"http://static:5001",
		"http://10.0.0.1:5001",
		"http://10.0.0.2:5001",
	}, app.backends)
}
