package service

import (
	"fmt"
	"time"

	"modelserve/pkg/artifact"
)

// sumPredictor scores a row as the weighted sum of its values
type sumPredictor struct {
	kind    string
	weights []float64
}

func (p sumPredictor) Kind() string {
	return p.kind
}

func (p sumPredictor) Predict(row []float64) (float64, error) {
	if len(row) != len(p.weights) {
		return 0, fmt.Errorf("expected %d features, got %d", len(p.weights), len(row))
	}
	var s float64
	for i, v := range row {
		s += v * p.weights[i]
	}
	return s, nil
}

// funcPredictor delegates to fn
type funcPredictor func(row []float64) (float64, error)

func (f funcPredictor) Kind() string {
	return "Func"
}

func (f funcPredictor) Predict(row []float64) (float64, error) {
	return f(row)
}

func newTestArtifact(trainedAt time.Time, names ...string) *artifact.Artifact {
	weights := make([]float64, len(names))
	for i := range weights {
		weights[i] = float64(i + 1)
	}
	return &artifact.Artifact{
		Predictor:    sumPredictor{kind: "LinearRegression", weights: weights},
		FeatureNames: names,
		TrainedAt:    trainedAt,
		TrainingTime: trainedAt.Format("2006-01-02T15:04:05.000000"),
	}
}

// staticModels always returns the same artifact
type staticModels struct {
	a *artifact.Artifact
}

func (s staticModels) Active() *artifact.Artifact {
	return s.a
}
