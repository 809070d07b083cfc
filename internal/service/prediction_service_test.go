package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"modelserve/internal/model"
	"modelserve/pkg/artifact"
	"modelserve/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

func predictErr(t *testing.T, err error) *PredictError {
	t.Helper()
	var pe *PredictError
	require.True(t, errors.As(err, &pe), "expected *PredictError, got %v", err)
	return pe
}

func TestPredict_NoModel(t *testing.T) {
	svc := NewPredictionService(registry.New())

	_, err := svc.Predict(context.Background(), model.FeatureVector{"a": 1.0})
	assert.Equal(t, PredictModelUnavailable, predictErr(t, err).Kind)
}

func TestPredict_Success(t *testing.T) {
	a := newTestArtifact(t0, "a", "b")
	svc := NewPredictionService(staticModels{a: a})

	got, err := svc.Predict(context.Background(), model.FeatureVector{
		"b":     json.Number("2"),
		"a":     1.5,
		"extra": "ignored",
	})
	require.NoError(t, err)
	assert.InDelta(t, 5.5, got.Score, 1e-9)
	assert.Equal(t, a.TrainingTime, got.TrainingTime)
	assert.Equal(t, "LinearRegression", got.ModelKind)
}

func TestPredict_MissingFeatures(t *testing.T) {
	svc := NewPredictionService(staticModels{a: newTestArtifact(t0, "a", "b", "c")})

	_, err := svc.Predict(context.Background(), model.FeatureVector{"b": 1.0, "z": 2.0})
	pe := predictErr(t, err)
	assert.Equal(t, PredictMissingFeatures, pe.Kind)
	assert.Equal(t, []string{"a", "c"}, pe.Missing)
	assert.Equal(t, []string{"a", "b", "c"}, pe.Required)
}

func TestPredict_MissingFeaturesSkipsInference(t *testing.T) {
	calls := 0
	a := &artifact.Artifact{
		Predictor: funcPredictor(func([]float64) (float64, error) {
			calls++
			return 1, nil
		}),
		FeatureNames: []string{"a", "b"},
		TrainedAt:    t0,
		TrainingTime: "t0",
	}
	svc := NewPredictionService(staticModels{a: a})

	_, err := svc.Predict(context.Background(), model.FeatureVector{"a": 1.0})
	assert.Equal(t, PredictMissingFeatures, predictErr(t, err).Kind)
	assert.Zero(t, calls)
}

func TestPredict_InvalidInput(t *testing.T) {
	svc := NewPredictionService(staticModels{a: newTestArtifact(t0, "a", "b")})

	tests := []struct {
		name  string
		value interface{}
	}{
		{"string", "fast"},
		{"null", nil},
		{"bool", true},
		{"object", map[string]interface{}{"x": 1}},
		{"bad number", json.Number("1e999")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Predict(context.Background(), model.FeatureVector{"a": 1.0, "b": tt.value})
			pe := predictErr(t, err)
			assert.Equal(t, PredictInvalidInput, pe.Kind)
			assert.Contains(t, pe.Detail, `"b"`)
		})
	}
}

func TestPredict_InferenceFailure(t *testing.T) {
	tests := []struct {
		name string
		fn   funcPredictor
	}{
		{"error", func([]float64) (float64, error) { return 0, errors.New("boom") }},
		{"panic", func([]float64) (float64, error) { panic("index out of range") }},
		{"nan", func([]float64) (float64, error) { return math.NaN(), nil }},
		{"inf", func([]float64) (float64, error) { return math.Inf(1), nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &artifact.Artifact{Predictor: tt.fn, FeatureNames: []string{"a"}, TrainedAt: t0, TrainingTime: "t0"}
			svc := NewPredictionService(staticModels{a: a})

			_, err := svc.Predict(context.Background(), model.FeatureVector{"a": 1.0})
			pe := predictErr(t, err)
			assert.Equal(t, PredictInferenceFailure, pe.Kind)
			assert.NotEmpty(t, pe.Detail)
		})
	}
}

// Every successful prediction during concurrent swaps must be scored by exactly one
// artifact: its training time identifies which, and the score must match that model.
func TestPredict_ConsistentDuringSwaps(t *testing.T) {
	reg := registry.New()
	older := newTestArtifact(t0, "a", "b")
	newer := &artifact.Artifact{
		Predictor:    sumPredictor{kind: "LinearRegression", weights: []float64{100, 100}},
		FeatureNames: []string{"a", "b"},
		TrainedAt:    t0.Add(time.Hour),
		TrainingTime: "newer",
	}
	reg.Swap(older)
	svc := NewPredictionService(reg)

	expected := make(map[string]float64)
	expected[older.TrainingTime] = 3
	expected[newer.TrainingTime] = 200

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			if i%2 == 0 {
				reg.Swap(newer)
			} else {
				reg.Swap(older)
			}
		}
	}()

	for i := 0; i < 2000; i++ {
		got, err := svc.Predict(context.Background(), model.FeatureVector{"a": 1.0, "b": 1.0})
		require.NoError(t, err)
		require.InDelta(t, expected[got.TrainingTime], got.Score, 1e-9)
	}
	close(stop)
	wg.Wait()
}

func TestBuildRow_Order(t *testing.T) {
	row, err := BuildRow([]string{"c", "a", "b"}, model.FeatureVector{"a": 1.0, "b": 2.0, "c": 3.0})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 2}, row)
}

func TestPredictError_Message(t *testing.T) {
	assert.Equal(t, "ModelUnavailable", (&PredictError{Kind: PredictModelUnavailable}).Error())
	assert.Contains(t, (&PredictError{Kind: PredictMissingFeatures, Missing: []string{"x"}}).Error(), "x")

	inner := errors.New("inner")
	assert.ErrorIs(t, &PredictError{Kind: PredictInferenceFailure, Err: inner}, inner)
}
