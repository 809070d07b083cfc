// Package lifecycle runs the ordered startup and graceful shutdown shared by the binaries.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"modelserve/internal/jobs"
	"modelserve/pkg/logger"
)

// Step is one named initialization stage
type Step struct {
	Name string
	Fn   func() error
}

// Application manages background jobs, the HTTP server and cleanup of one process
type Application struct {
	httpServer *http.Server
	listener   net.Listener

	jobsManager *jobs.Manager

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	cleanupFuncs []func()
}

// New creates a new Application instance
func New() *Application {
	ctx, cancel := context.WithCancel(context.Background())
	return &Application{
		ctx:          ctx,
		cancel:       cancel,
		cleanupFuncs: make([]func(), 0),
	}
}

// Context is cancelled when shutdown begins
func (app *Application) Context() context.Context {
	return app.ctx
}

// Initialize runs steps in order, stopping at the first failure
func (app *Application) Initialize(steps []Step) error {
	for _, step := range steps {
		logger.InfoCtx(app.ctx, "Initializing %s...", step.Name)
		if err := step.Fn(); err != nil {
			return fmt.Errorf("failed to initialize %s: %w", step.Name, err)
		}
		logger.InfoCtx(app.ctx, "%s initialized successfully", step.Name)
	}

	logger.InfoCtx(app.ctx, "Application initialization completed")
	return nil
}

// SetJobs installs the background job manager started by Start
func (app *Application) SetJobs(manager *jobs.Manager) {
	app.jobsManager = manager
}

// SetHTTPServer installs the server started by Start
func (app *Application) SetHTTPServer(server *http.Server) {
	app.httpServer = server
}

// Addr returns the bound listener address, empty before Start
func (app *Application) Addr() string {
	if app.listener == nil {
		return ""
	}
	return app.listener.Addr().String()
}

// Start launches background jobs and serves HTTP. The listener is bound before
// returning, so a port conflict is reported as an error here.
func (app *Application) Start() error {
	logger.InfoCtx(app.ctx, "Starting application components...")

	if app.httpServer == nil {
		return errors.New("http server not configured")
	}

	// 1. Bind the listening port
	listener, err := net.Listen("tcp", app.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", app.httpServer.Addr, err)
	}
	app.listener = listener

	// 2. Start background tasks
	if app.jobsManager != nil {
		logger.InfoCtx(app.ctx, "Starting background task manager")
		app.jobsManager.Start()
		app.wg.Add(1)
		go func() {
			defer app.wg.Done()
			app.jobsManager.Wait()
		}()
	}

	// 3. Start HTTP server
	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		logger.InfoCtx(app.ctx, "HTTP server listening on: %s", listener.Addr())
		if err := app.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorCtx(app.ctx, "HTTP server error: %v", err)
		}
	}()

	logger.InfoCtx(app.ctx, "All components started successfully")
	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown(timeout time.Duration) error {
	logger.InfoCtx(app.ctx, "Starting graceful shutdown (timeout: %v)...", timeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// 1. Cancel all background tasks
	logger.InfoCtx(app.ctx, "Canceling background tasks...")
	app.cancel()
	if app.jobsManager != nil {
		app.jobsManager.Stop()
	}

	// 2. Stop HTTP server (stop accepting new requests)
	var shutdownErr error
	if app.httpServer != nil && app.listener != nil {
		logger.InfoCtx(app.ctx, "Shutting down HTTP server...")
		if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
			logger.ErrorCtx(app.ctx, "HTTP server shutdown error: %v", err)
			shutdownErr = err
		}
	}

	// 3. Wait for all background tasks to complete
	logger.InfoCtx(app.ctx, "Waiting for background tasks to complete...")
	done := make(chan struct{})
	go func() {
		app.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.InfoCtx(app.ctx, "All background tasks completed")
	case <-shutdownCtx.Done():
		logger.WarnCtx(app.ctx, "Shutdown timeout, some tasks may not have completed")
	}

	// 4. Execute all cleanup functions (in reverse registration order)
	logger.InfoCtx(app.ctx, "Executing cleanup functions...")
	for i := len(app.cleanupFuncs) - 1; i >= 0; i-- {
		app.cleanupFuncs[i]()
	}

	logger.InfoCtx(app.ctx, "Graceful shutdown completed")
	_ = logger.Sync()
	return shutdownErr
}

// RegisterCleanup registers cleanup function
func (app *Application) RegisterCleanup(cleanup func()) {
	app.cleanupFuncs = append(app.cleanupFuncs, cleanup)
}
