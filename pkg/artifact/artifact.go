// Package artifact loads versioned model artifacts published by the training pipeline.
package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"modelserve/pkg/predictor"
)

// Artifact is an immutable, fully validated model snapshot. Never mutate after Decode.
type Artifact struct {
	Predictor    predictor.Predictor
	FeatureNames []string
	TrainedAt    time.Time
	// TrainingTime is the timestamp exactly as published, echoed back to clients
	TrainingTime string
	Checksum     string
}

// Kind reports the model kind, e.g. "RandomForestRegressor"
func (a *Artifact) Kind() string {
	return a.Predictor.Kind()
}

// NewerThan reports whether a was trained strictly after other. Any artifact is newer than nil.
func (a *Artifact) NewerThan(other *Artifact) bool {
	if other == nil {
		return true
	}
	return a.TrainedAt.After(other.TrainedAt)
}

// bundle is the wire form written by the training pipeline
type bundle struct {
	Model        json.RawMessage `json:"model"`
	FeatureNames []string        `json:"feature_names"`
	TrainingTime string          `json:"training_time"`
	Checksum     string          `json:"checksum,omitempty"`
}

// trainingTimeLayouts covers RFC3339 and the zone-less ISO-8601 form of Python's isoformat()
var trainingTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseTrainingTime parses a published training timestamp. Zone-less values are read as UTC.
func ParseTrainingTime(s string) (time.Time, error) {
	for _, layout := range trainingTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized training_time %q", s)
}

// Decode validates data as a complete artifact. A truncated or partially written
// bundle fails here, never later.
func Decode(data []byte) (*Artifact, error) {
	var b bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("invalid artifact json: %w", err)
	}
	if len(b.Model) == 0 || string(b.Model) == "null" {
		return nil, fmt.Errorf("model missing")
	}
	if len(b.FeatureNames) == 0 {
		return nil, fmt.Errorf("feature_names missing")
	}
	seen := make(map[string]struct{}, len(b.FeatureNames))
	for _, name := range b.FeatureNames {
		if name == "" {
			return nil, fmt.Errorf("empty feature name")
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate feature name %q", name)
		}
		seen[name] = struct{}{}
	}
	if b.TrainingTime == "" {
		return nil, fmt.Errorf("training_time missing")
	}
	trainedAt, err := ParseTrainingTime(b.TrainingTime)
	if err != nil {
		return nil, err
	}

	compact, err := compactJSON(b.Model)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(compact)
	checksum := hex.EncodeToString(sum[:])
	if b.Checksum != "" && !strings.EqualFold(b.Checksum, checksum) {
		return nil, fmt.Errorf("checksum mismatch: published %s, computed %s", b.Checksum, checksum)
	}

	p, err := predictor.Decode(b.Model, len(b.FeatureNames))
	if err != nil {
		return nil, err
	}

	names := make([]string, len(b.FeatureNames))
	copy(names, b.FeatureNames)

	return &Artifact{
		Predictor:    p,
		FeatureNames: names,
		TrainedAt:    trainedAt,
		TrainingTime: b.TrainingTime,
		Checksum:     checksum,
	}, nil
}

// Encode produces the wire form of a bundle. The checksum covers the compacted model JSON.
func Encode(model json.RawMessage, featureNames []string, trainingTime string) ([]byte, error) {
	compact, err := compactJSON(model)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(compact)
	return json.Marshal(bundle{
		Model:        compact,
		FeatureNames: featureNames,
		TrainingTime: trainingTime,
		Checksum:     hex.EncodeToString(sum[:]),
	})
}
