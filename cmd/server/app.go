package main

import (
	"os"

	"modelserve/app/handler"
	"modelserve/internal/lifecycle"
	"modelserve/internal/service"
	"modelserve/pkg/artifact"
	"modelserve/pkg/config"
	"modelserve/pkg/registry"
	mysqlstore "modelserve/pkg/store/mysql"
	redisstore "modelserve/pkg/store/redis"

	"github.com/gin-gonic/gin"
)

// Application manages the lifecycle of a prediction server
type Application struct {
	*lifecycle.Application

	// Infrastructure components
	config      *config.Config
	mysqlRepo   *mysqlstore.Repository
	redisClient *redisstore.RedisClient

	// Model state
	host     string
	registry *registry.Registry
	reader   *artifact.Reader

	// Service layer
	predictionService *service.PredictionService
	reloadService     *service.ReloadService

	// Handler layer
	modelHandler *handler.ModelHandler

	ginEngine *gin.Engine
}

// NewApplication creates a new Application instance
func NewApplication() *Application {
	return &Application{
		Application: lifecycle.New(),
		registry:    registry.New(),
	}
}

// Initialize initializes all application components
func (app *Application) Initialize() error {
	return app.Application.Initialize([]lifecycle.Step{
		{Name: "Configuration", Fn: app.initConfig},
		{Name: "Logging", Fn: app.initLogger},
		{Name: "Host Identity", Fn: app.initHost},
		{Name: "Redis", Fn: app.initRedis},
		{Name: "MySQL", Fn: app.initMySQL},
		{Name: "Model Store", Fn: app.initModelStore},
		{Name: "Service Layer", Fn: app.initServices},
		{Name: "Background Tasks", Fn: app.initJobs},
		{Name: "Handler Layer", Fn: app.initHandlers},
		{Name: "HTTP Server", Fn: app.initHTTPServer},
	})
}

// LastTrainingTime is the training time of the active model, or "None"
func (app *Application) LastTrainingTime() string {
	if a := app.registry.Active(); a != nil {
		return a.TrainingTime
	}
	return "None"
}

func resolveHost(configured string) string {
	if configured != "" {
		return configured
	}
	if name, err := os.Hostname(); err == nil && name != "" {
		return name
	}
	return "unknown"
}
