package mysql

import (
	"context"
	"fmt"

	"modelserve/pkg/artifact"
	"modelserve/pkg/store/mysql/model"

	"github.com/google/uuid"
)

// ReloadEventRepository records model swaps for auditing. Request data is never stored.
type ReloadEventRepository struct {
	ds *Datastore
}

// NewReloadEventRepository creates a new reload event repository
func NewReloadEventRepository(ds *Datastore) *ReloadEventRepository {
	return &ReloadEventRepository{ds: ds}
}

// Create persists a reload event
func (r *ReloadEventRepository) Create(ctx context.Context, event *ReloadEvent) error {
	if err := r.ds.DB(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create reload event: %w", err)
	}
	return nil
}

// RecordSwap stores the swap of the active model on host
func (r *ReloadEventRepository) RecordSwap(ctx context.Context, host, location string, previous, current *artifact.Artifact) error {
	return r.Create(ctx, NewReloadEvent(host, location, previous, current))
}

// ListRecent retrieves the most recent reload events, optionally for one host
func (r *ReloadEventRepository) ListRecent(ctx context.Context, host string, limit int) ([]*ReloadEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	query := r.ds.DB(ctx).Model(&ReloadEvent{}).Order("loaded_at DESC").Limit(limit)
	if host != "" {
		query = query.Where("host = ?", host)
	}

	var events []*ReloadEvent
	if err := query.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list reload events: %w", err)
	}
	return events, nil
}

// NewReloadEvent builds the audit row for a swap
func NewReloadEvent(host, location string, previous, current *artifact.Artifact) *ReloadEvent {
	event := &model.ReloadEvent{
		EventID:      uuid.New().String(),
		Host:         host,
		Location:     location,
		ModelKind:    current.Kind(),
		TrainingTime: current.TrainingTime,
		TrainedAt:    current.TrainedAt,
		FeatureNames: model.JSONStringArray(current.FeatureNames),
		Checksum:     current.Checksum,
	}
	if previous != nil {
		event.PreviousTrainingTime = previous.TrainingTime
	}
	return event
}
