package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"modelserve/internal/service"
	"modelserve/pkg/artifact"
	"modelserve/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveHost(t *testing.T) {
	assert.Equal(t, "backend-7", resolveHost("backend-7"))
	assert.NotEmpty(t, resolveHost(""))
}

func TestModelReloadJob_AbsorbsLoadErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.json")

	reg := registry.New()
	reader := artifact.NewReader(artifact.NewFileSource(path), time.Second)
	job := newModelReloadJob(time.Second, service.NewReloadService(reader, reg, nil, "h"))

	// nothing published yet
	require.NoError(t, job.Run(context.Background()))
	assert.Nil(t, reg.Active())

	data, err := artifact.Encode(json.RawMessage(`{"kind":"LinearRegression","coefficients":[1],"intercept":0}`),
		[]string{"a"}, "2026-10-19T08:00:00")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	require.NoError(t, job.Run(context.Background()))
	require.NotNil(t, reg.Active())
	assert.Equal(t, "2026-10-19T08:00:00", reg.Active().TrainingTime)

	// a torn write keeps the active model
	require.NoError(t, os.WriteFile(path, data[:len(data)/2], 0644))
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, "2026-10-19T08:00:00", reg.Active().TrainingTime)
}

func TestLastTrainingTime(t *testing.T) {
	app := NewApplication()
	assert.Equal(t, "None", app.LastTrainingTime())

	app.registry.Swap(&artifact.Artifact{TrainingTime: "2026-10-19T08:00:00", TrainedAt: time.Now()})
	assert.Equal(t, "2026-10-19T08:00:00", app.LastTrainingTime())
}
