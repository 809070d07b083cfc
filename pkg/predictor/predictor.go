// Package predictor decodes the model blob of an artifact into an executable predictor.
package predictor

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Predictor scores one feature row. Rows are ordered exactly as the artifact's feature names.
type Predictor interface {
	Kind() string
	Predict(row []float64) (float64, error)
}

// DecodeFunc builds a predictor for a model trained on numFeatures inputs
type DecodeFunc func(raw json.RawMessage, numFeatures int) (Predictor, error)

var (
	mu       sync.RWMutex
	decoders = map[string]DecodeFunc{}
)

func init() {
	Register(KindLinear, decodeLinear)
	Register(KindForest, decodeForest)
	Register(KindTree, decodeForest)
}

// Register adds a decoder for a model kind, replacing any existing one
func Register(kind string, fn DecodeFunc) {
	mu.Lock()
	defer mu.Unlock()
	decoders[kind] = fn
}

// Kinds lists the registered model kinds
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	kinds := make([]string, 0, len(decoders))
	for k := range decoders {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Decode reads the "kind" discriminator of raw and dispatches to its decoder
func Decode(raw json.RawMessage, numFeatures int) (Predictor, error) {
	var head struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("invalid model blob: %w", err)
	}
	if head.Kind == "" {
		return nil, fmt.Errorf("model kind missing")
	}

	mu.RLock()
	fn, ok := decoders[head.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported model kind %q", head.Kind)
	}

	p, err := fn(raw, numFeatures)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", head.Kind, err)
	}
	return p, nil
}

func checkRow(row []float64, want int) error {
	if len(row) != want {
		return fmt.Errorf("feature row has %d values, model expects %d", len(row), want)
	}
	return nil
}
