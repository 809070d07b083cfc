package router

import (
	"net/http"

	"modelserve/app/handler"
	"modelserve/app/middleware"
	"modelserve/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Options toggles routes shared by the server and the router
type Options struct {
	MetricsEnabled bool
	MetricsPath    string
}

// Router Router
type Router struct {
	modelHandler   *handler.ModelHandler
	gatewayHandler *handler.GatewayHandler
	opts           Options
}

// NewServerRouter creates the routes of a prediction server
func NewServerRouter(modelHandler *handler.ModelHandler, opts Options) *Router {
	return &Router{modelHandler: modelHandler, opts: opts}
}

// NewGatewayRouter creates the routes of the request router
func NewGatewayRouter(gatewayHandler *handler.GatewayHandler, opts Options) *Router {
	return &Router{gatewayHandler: gatewayHandler, opts: opts}
}

// Setup sets up routes
func (r *Router) Setup(engine *gin.Engine) {
	engine.Use(middleware.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger())

	engine.HandleMethodNotAllowed = true
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
	})
	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method Not Allowed"})
	})

	switch {
	case r.modelHandler != nil:
		engine.GET("/model-info", r.modelHandler.ModelInfo)
		engine.POST("/predict", r.modelHandler.Predict)
	case r.gatewayHandler != nil:
		engine.GET("/model-info", r.gatewayHandler.ModelInfo)
		engine.POST("/predict", r.gatewayHandler.Predict)
	}

	if r.opts.MetricsEnabled {
		path := r.opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		engine.GET(path, gin.WrapH(metrics.Handler()))
	}

	// Health check
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
