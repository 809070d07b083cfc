package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"modelserve/internal/model"
	"modelserve/pkg/artifact"
	"modelserve/pkg/logger"
	"modelserve/pkg/metrics"
)

// PredictErrorKind tags prediction failures for the HTTP boundary
type PredictErrorKind string

const (
	PredictModelUnavailable PredictErrorKind = "ModelUnavailable"
	PredictMissingFeatures  PredictErrorKind = "MissingFeatures"
	PredictInvalidInput     PredictErrorKind = "InvalidInput"
	PredictInferenceFailure PredictErrorKind = "InferenceFailure"
)

// PredictError is the only error type returned by PredictionService.Predict
type PredictError struct {
	Kind PredictErrorKind
	// Missing lists required-but-absent features, in model order
	Missing []string
	// Required is the full feature list of the artifact the call was checked against
	Required []string
	Detail   string
	Err      error
}

func (e *PredictError) Error() string {
	switch e.Kind {
	case PredictMissingFeatures:
		return fmt.Sprintf("%s: %v", e.Kind, e.Missing)
	case PredictModelUnavailable:
		return string(e.Kind)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
}

func (e *PredictError) Unwrap() error {
	return e.Err
}

// ActiveModelSource is the read side of the model registry
type ActiveModelSource interface {
	Active() *artifact.Artifact
}

// Prediction is a successful inference against one artifact snapshot
type Prediction struct {
	Score        float64
	TrainingTime string
	ModelKind    string
}

// PredictionService validates feature vectors and runs inference on the active model
type PredictionService struct {
	models ActiveModelSource
}

// NewPredictionService creates prediction service
func NewPredictionService(models ActiveModelSource) *PredictionService {
	return &PredictionService{models: models}
}

// Predict scores features against the artifact active at call entry. The registry is
// read exactly once, so a concurrent swap cannot mix feature names and model handles.
func (s *PredictionService) Predict(ctx context.Context, features model.FeatureVector) (*Prediction, error) {
	a := s.models.Active()
	if a == nil {
		metrics.PredictionsTotal.WithLabelValues("unavailable").Inc()
		return nil, &PredictError{Kind: PredictModelUnavailable}
	}

	row, err := BuildRow(a.FeatureNames, features)
	if err != nil {
		var pe *PredictError
		if errors.As(err, &pe) {
			metrics.PredictionsTotal.WithLabelValues(outcomeLabel(pe.Kind)).Inc()
		}
		return nil, err
	}

	score, err := infer(a, row)
	if err != nil {
		logger.WarnCtx(ctx, "inference failed on model trained at %s: %v", a.TrainingTime, err)
		metrics.PredictionsTotal.WithLabelValues(outcomeLabel(PredictInferenceFailure)).Inc()
		return nil, &PredictError{Kind: PredictInferenceFailure, Detail: err.Error(), Err: err}
	}

	metrics.PredictionsTotal.WithLabelValues("success").Inc()
	return &Prediction{
		Score:        score,
		TrainingTime: a.TrainingTime,
		ModelKind:    a.Kind(),
	}, nil
}

// BuildRow orders features to match names exactly. Absent names fail with
// MissingFeatures before any value is inspected; extra keys are ignored.
func BuildRow(names []string, features model.FeatureVector) ([]float64, error) {
	var missing []string
	for _, name := range names {
		if _, ok := features[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		required := make([]string, len(names))
		copy(required, names)
		return nil, &PredictError{Kind: PredictMissingFeatures, Missing: missing, Required: required}
	}

	row := make([]float64, len(names))
	for i, name := range names {
		v, err := toFloat(features[name])
		if err != nil {
			return nil, &PredictError{
				Kind:   PredictInvalidInput,
				Detail: fmt.Sprintf("feature %q: %v", name, err),
				Err:    err,
			}
		}
		row[i] = v
	}
	return row, nil
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case json.Number:
		return n.Float64()
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case nil:
		return 0, fmt.Errorf("value is null")
	default:
		return 0, fmt.Errorf("value %v is not a number", v)
	}
}

// infer runs the model handle, converting panics and non-finite scores into errors
func infer(a *artifact.Artifact, row []float64) (score float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("model panicked: %v", r)
		}
	}()

	score, err = a.Predictor.Predict(row)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, fmt.Errorf("model returned non-finite score %v", score)
	}
	return score, nil
}

func outcomeLabel(kind PredictErrorKind) string {
	switch kind {
	case PredictModelUnavailable:
		return "unavailable"
	case PredictMissingFeatures:
		return "missing_features"
	case PredictInvalidInput:
		return "invalid_input"
	default:
		return "inference_failure"
	}
}
