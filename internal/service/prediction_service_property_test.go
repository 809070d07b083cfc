// Package service provides property-based tests for prediction validation.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"

	"modelserve/internal/model"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func featureNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("f%d", i)
	}
	return names
}

// TestProperty_MissingFeatures tests missing-feature reporting
//
// Property: For any model feature list and any subset of it present in the request,
// prediction fails with MissingFeatures exactly when the subset is incomplete, and the
// reported names are exactly the absent ones in model order.
func TestProperty_MissingFeatures(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("missing names are exactly the absent features", prop.ForAll(
		func(n int, mask uint32, extra bool) bool {
			names := featureNames(n)
			svc := NewPredictionService(staticModels{a: newTestArtifact(t0, names...)})

			features := model.FeatureVector{}
			var absent []string
			for i, name := range names {
				if mask&(1<<uint(i)) != 0 {
					features[name] = float64(i)
				} else {
					absent = append(absent, name)
				}
			}
			if extra {
				features["unrelated"] = 42.0
			}

			_, err := svc.Predict(context.Background(), features)
			if len(absent) == 0 {
				return err == nil
			}
			var pe *PredictError
			if !errors.As(err, &pe) || pe.Kind != PredictMissingFeatures {
				return false
			}
			return reflect.DeepEqual(pe.Missing, absent) && reflect.DeepEqual(pe.Required, names)
		},
		gen.IntRange(1, 12),
		gen.UInt32(),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// TestProperty_FiniteScores tests score finiteness
//
// Property: For any complete feature vector, a successful prediction is always a
// finite number; overflowing models fail with InferenceFailure instead.
func TestProperty_FiniteScores(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("scores are finite or inference fails", prop.ForAll(
		func(a, b float64) bool {
			svc := NewPredictionService(staticModels{a: newTestArtifact(t0, "a", "b")})

			got, err := svc.Predict(context.Background(), model.FeatureVector{"a": a, "b": b})
			if err != nil {
				var pe *PredictError
				return errors.As(err, &pe) && pe.Kind == PredictInferenceFailure
			}
			return !math.IsNaN(got.Score) && !math.IsInf(got.Score, 0)
		},
		gen.Float64(),
		gen.Float64(),
	))

	properties.TestingRun(t)
}
