package service

import (
	"context"
	"sync"

	"modelserve/pkg/artifact"
	"modelserve/pkg/logger"
	"modelserve/pkg/metrics"
	"modelserve/pkg/registry"
)

// ArtifactLoader loads the artifact currently published at a location
type ArtifactLoader interface {
	Load(ctx context.Context) (*artifact.Artifact, error)
	Location() string
}

// SwapRecorder persists model swaps; optional
type SwapRecorder interface {
	RecordSwap(ctx context.Context, host, location string, previous, current *artifact.Artifact) error
}

// ReloadOutcome is the result of one reload tick
type ReloadOutcome string

const (
	ReloadSwapped   ReloadOutcome = "swapped"
	ReloadUnchanged ReloadOutcome = "unchanged"
	ReloadNotFound  ReloadOutcome = "not_found"
	ReloadCorrupt   ReloadOutcome = "corrupt"
	ReloadIOError   ReloadOutcome = "io_error"
)

// ReloadService polls the artifact location and installs strictly newer artifacts
type ReloadService struct {
	loader   ArtifactLoader
	registry *registry.Registry
	recorder SwapRecorder
	host     string

	// last failure outcome, so repeated failures are logged once
	mu          sync.Mutex
	lastFailure ReloadOutcome
}

// NewReloadService creates reload service; recorder may be nil
func NewReloadService(loader ArtifactLoader, reg *registry.Registry, recorder SwapRecorder, host string) *ReloadService {
	return &ReloadService{
		loader:   loader,
		registry: reg,
		recorder: recorder,
		host:     host,
	}
}

// Tick runs one reload cycle. Load failures leave the active model untouched and are
// returned for the caller to classify; they never disturb serving.
func (s *ReloadService) Tick(ctx context.Context) (ReloadOutcome, error) {
	a, err := s.loader.Load(ctx)
	if err != nil {
		outcome := failureOutcome(err)
		metrics.ModelReloadsTotal.WithLabelValues(string(outcome)).Inc()
		s.logFailure(ctx, outcome, err)
		return outcome, err
	}
	s.clearFailure(ctx)

	previous, swapped := s.registry.SwapIfNewer(a)
	if !swapped {
		metrics.ModelReloadsTotal.WithLabelValues(string(ReloadUnchanged)).Inc()
		logger.DebugCtx(ctx, "model at %s unchanged, active training time %s", s.loader.Location(), trainingTimeOf(previous))
		return ReloadUnchanged, nil
	}

	metrics.ModelReloadsTotal.WithLabelValues(string(ReloadSwapped)).Inc()
	metrics.ActiveModelTrainedTimestamp.Set(float64(a.TrainedAt.UnixNano()) / 1e9)
	logger.InfoCtx(ctx, "new model loaded from %s: %s trained at %s (previous %s)",
		s.loader.Location(), a.Kind(), a.TrainingTime, trainingTimeOf(previous))

	if s.recorder != nil {
		if err := s.recorder.RecordSwap(ctx, s.host, s.loader.Location(), previous, a); err != nil {
			logger.WarnCtx(ctx, "failed to record model swap: %v", err)
		}
	}
	return ReloadSwapped, nil
}

func (s *ReloadService) logFailure(ctx context.Context, outcome ReloadOutcome, err error) {
	s.mu.Lock()
	repeated := s.lastFailure == outcome
	s.lastFailure = outcome
	s.mu.Unlock()

	if repeated {
		logger.DebugCtx(ctx, "model reload still failing: %v", err)
		return
	}
	if outcome == ReloadNotFound && s.registry.Active() == nil {
		logger.InfoCtx(ctx, "no model published at %s yet", s.loader.Location())
		return
	}
	logger.WarnCtx(ctx, "model reload failed, keeping active model %s: %v", trainingTimeOf(s.registry.Active()), err)
}

func (s *ReloadService) clearFailure(ctx context.Context) {
	s.mu.Lock()
	recovered := s.lastFailure != ""
	s.lastFailure = ""
	s.mu.Unlock()

	if recovered {
		logger.InfoCtx(ctx, "model location %s readable again", s.loader.Location())
	}
}

func failureOutcome(err error) ReloadOutcome {
	switch artifact.KindOf(err) {
	case artifact.LoadNotFound:
		return ReloadNotFound
	case artifact.LoadCorrupt:
		return ReloadCorrupt
	default:
		return ReloadIOError
	}
}

func trainingTimeOf(a *artifact.Artifact) string {
	if a == nil {
		return "none"
	}
	return a.TrainingTime
}
