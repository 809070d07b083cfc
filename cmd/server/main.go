package main

import (
	"os"
	"os/signal"
	"syscall"

	"modelserve/pkg/logger"
)

func main() {
	// Create application instance
	app := NewApplication()

	// Initialize all components
	if err := app.Initialize(); err != nil {
		logger.FatalCtx(nil, "Application initialization failed: %v", err)
	}

	// Start all components
	if err := app.Start(); err != nil {
		logger.FatalCtx(app.Context(), "Application startup failed: %v", err)
	}

	// Wait for exit signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	if sig == syscall.SIGTERM {
		logger.InfoCtx(app.Context(), "SIGTERM received. Host being terminated: %s. Last model training time: %s",
			app.host, app.LastTrainingTime())
	} else {
		logger.InfoCtx(app.Context(), "Received exit signal: %v", sig)
	}

	if err := app.Shutdown(app.config.Server.ShutdownTimeout); err != nil {
		logger.ErrorCtx(app.Context(), "Application shutdown failed: %v", err)
		os.Exit(1)
	}

	logger.InfoCtx(app.Context(), "Application safely exited")
}
