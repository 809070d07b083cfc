package main

import (
	"context"
	"time"

	"modelserve/internal/jobs"
	"modelserve/internal/service"
	"modelserve/pkg/artifact"
	"modelserve/pkg/logger"
)

func (app *Application) initJobs() error {
	manager := jobs.NewManager(app.Context())
	manager.Register(newModelReloadJob(app.config.Model.ReloadInterval, app.reloadService))
	app.SetJobs(manager)
	return nil
}

// modelReloadJob polls the shared model location and swaps in newer artifacts.
type modelReloadJob struct {
	interval      time.Duration
	reloadService *service.ReloadService
}

func newModelReloadJob(interval time.Duration, svc *service.ReloadService) jobs.Job {
	return &modelReloadJob{
		interval:      interval,
		reloadService: svc,
	}
}

func (j *modelReloadJob) Name() string {
	return "model-reload"
}

func (j *modelReloadJob) Interval() time.Duration {
	return j.interval
}

// Run absorbs artifact load failures, which the reload service has already logged.
// Anything else is returned to the job manager.
func (j *modelReloadJob) Run(ctx context.Context) error {
	outcome, err := j.reloadService.Tick(ctx)
	if err != nil && artifact.KindOf(err) != "" {
		return nil
	}
	if err == nil {
		logger.DebugCtx(ctx, "model reload tick: %s", outcome)
	}
	return err
}
