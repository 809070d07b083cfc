package main

import (
	"fmt"
	"net/http"
	"strings"

	"modelserve/app/handler"
	"modelserve/app/router"
	"modelserve/internal/service"
	"modelserve/pkg/artifact"
	"modelserve/pkg/config"
	"modelserve/pkg/logger"
	mysqlstore "modelserve/pkg/store/mysql"
	redisstore "modelserve/pkg/store/redis"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

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

func (app *Application) initHost() error {
	app.host = resolveHost(app.config.Server.HostName)
	logger.InfoCtx(app.Context(), "serving as host %s", app.host)
	return nil
}

// initRedis connects to Redis when the model is published there
func (app *Application) initRedis() error {
	if !strings.HasPrefix(app.config.Model.Location, "redis://") {
		logger.InfoCtx(app.Context(), "model location is not in redis, skipping redis connection")
		return nil
	}

	client, err := redisstore.NewRedisClient(app.config.Redis)
	if err != nil {
		return err
	}

	app.redisClient = client
	app.RegisterCleanup(func() {
		client.Close()
		logger.InfoCtx(app.Context(), "Redis connection has been closed")
	})
	return nil
}

// initMySQL connects the optional model reload audit store
func (app *Application) initMySQL() error {
	if !app.config.MySQL.Enabled {
		logger.InfoCtx(app.Context(), "mysql disabled, model swaps will not be recorded")
		return nil
	}

	repo, err := mysqlstore.NewRepository(app.config.MySQL.DSN())
	if err != nil {
		return err
	}

	app.mysqlRepo = repo
	app.RegisterCleanup(func() {
		repo.Close()
		logger.InfoCtx(app.Context(), "MySQL connection has been closed")
	})
	return nil
}

// initModelStore resolves the artifact location
func (app *Application) initModelStore() error {
	var client *redis.Client
	if app.redisClient != nil {
		client = app.redisClient.GetClient()
	}

	source, err := artifact.NewSource(app.config.Model.Location, client)
	if err != nil {
		return err
	}
	app.reader = artifact.NewReader(source, app.config.Model.LoadTimeout)
	logger.InfoCtx(app.Context(), "model location %s, reload every %v", source.Location(), app.config.Model.ReloadInterval)
	return nil
}

// initServices initializes service layer
func (app *Application) initServices() error {
	var recorder service.SwapRecorder
	if app.mysqlRepo != nil {
		recorder = app.mysqlRepo.ReloadEvent
	}

	app.predictionService = service.NewPredictionService(app.registry)
	app.reloadService = service.NewReloadService(app.reader, app.registry, recorder, app.host)
	return nil
}

// initHandlers initializes handler layer
func (app *Application) initHandlers() error {
	app.modelHandler = handler.NewModelHandler(app.predictionService, app.registry, app.host)
	return nil
}

// initHTTPServer initializes HTTP server
func (app *Application) initHTTPServer() error {
	r := router.NewServerRouter(app.modelHandler, router.Options{
		MetricsEnabled: app.config.Metrics.Enabled,
		MetricsPath:    app.config.Metrics.Path,
	})

	// Set Gin mode
	gin.SetMode(app.config.Server.Mode)

	app.ginEngine = gin.New()
	r.Setup(app.ginEngine)

	app.SetHTTPServer(&http.Server{
		Addr:    fmt.Sprintf(":%d", app.config.Server.Port),
		Handler: app.ginEngine,
	})
	return nil
}
