package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"modelserve/app/handler"
	"modelserve/app/router"
	"modelserve/internal/lifecycle"
	"modelserve/internal/service"
	"modelserve/pkg/balancer"
	"modelserve/pkg/config"
	"modelserve/pkg/discovery"
	"modelserve/pkg/logger"

	"github.com/gin-gonic/gin"
	"k8s.io/client-go/kubernetes"
)

const discoveryTimeout = 30 * time.Second

// Application manages the lifecycle of the request router
type Application struct {
	*lifecycle.Application

	config *config.Config

	// newKubeClient builds the discovery client; replaced in tests
	newKubeClient func(kubeconfig string) (kubernetes.Interface, error)

	backends       []string
	balancer       *balancer.RoundRobin
	forwardService *service.ForwardService
	gatewayHandler *handler.GatewayHandler
	ginEngine      *gin.Engine
}

// NewApplication creates a new Application instance
func NewApplication() *Application {
	return &Application{
		Application:   lifecycle.New(),
		newKubeClient: discovery.NewClient,
	}
}

// Initialize initializes all application components
func (app *Application) Initialize() error {
	return app.Application.Initialize([]lifecycle.Step{
		{Name: "Configuration", Fn: app.initConfig},
		{Name: "Logging", Fn: app.initLogger},
		{Name: "Backends", Fn: app.initBackends},
		{Name: "Service Layer", Fn: app.initServices},
		{Name: "Handler Layer", Fn: app.initHandlers},
		{Name: "HTTP Server", Fn: app.initHTTPServer},
	})
}

// initConfig initializes configuration
func (app *Application) initConfig() error {
	if err := config.Init(); err != nil {
		return err
	}
	app.config = config.GlobalConfig
	return nil
}

// initLogger initializes logging
func (app *Application) initLogger() error {
	if err := logger.Init(); err != nil {
		return err
	}
	app.RegisterCleanup(func() {
		_ = logger.Sync()
	})
	return nil
}

// initBackends builds the fixed rotation: configured backends first, then any
// endpoints discovered behind the configured Service
func (app *Application) initBackends() error {
	backends := append([]string(nil), app.config.Router.Backends...)

	if app.config.Router.Discovery.Enabled {
		client, err := app.newKubeClient(app.config.Router.Discovery.Kubeconfig)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(app.Context(), discoveryTimeout)
		defer cancel()
		discovered, err := discovery.NewResolver(client, app.config.Router.Discovery).Resolve(ctx)
		if err != nil {
			return err
		}
		logger.InfoCtx(app.Context(), "discovered %d backends behind %s/%s",
			len(discovered), app.config.Router.Discovery.Namespace, app.config.Router.Discovery.Service)
		backends = append(backends, discovered...)
	}

	b, err := balancer.NewRoundRobin(backends)
	if err != nil {
		return fmt.Errorf("%w: set router.backends or BACKEND_SERVERS", err)
	}

	app.backends = backends
	app.balancer = b
	for i, ep := range b.Endpoints() {
		logger.InfoCtx(app.Context(), "backend #%d: %s", i, ep.BaseURL)
	}
	return nil
}

// initServices initializes service layer
func (app *Application) initServices() error {
	app.forwardService = service.NewForwardService(app.balancer, app.config.Router.ForwardTimeout)
	return nil
}

// initHandlers initializes handler layer
func (app *Application) initHandlers() error {
	app.gatewayHandler = handler.NewGatewayHandler(app.forwardService)
	return nil
}

// initHTTPServer initializes HTTP server
func (app *Application) initHTTPServer() error {
	r := router.NewGatewayRouter(app.gatewayHandler, router.Options{
		MetricsEnabled: app.config.Metrics.Enabled,
		MetricsPath:    app.config.Metrics.Path,
	})

	// Set Gin mode
	gin.SetMode(app.config.Server.Mode)

	app.ginEngine = gin.New()
	r.Setup(app.ginEngine)

	app.SetHTTPServer(&http.Server{
		Addr:    fmt.Sprintf(":%d", app.config.Router.Port),
		Handler: app.ginEngine,
	})
	return nil
}
