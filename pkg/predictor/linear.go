package predictor

import (
	"encoding/json"
	"fmt"
)

const KindLinear = "LinearRegression"

type linearModel struct {
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

func decodeLinear(raw json.RawMessage, numFeatures int) (Predictor, error) {
	var m linearModel
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	if len(m.Coefficients) != numFeatures {
		return nil, fmt.Errorf("%d coefficients for %d features", len(m.Coefficients), numFeatures)
	}
	return &m, nil
}

func (m *linearModel) Kind() string { return KindLinear }

func (m *linearModel) Predict(row []float64) (float64, error) {
	if err := checkRow(row, len(m.Coefficients)); err != nil {
		return 0, err
	}
	score := m.Intercept
	for i, c := range m.Coefficients {
		score += c * row[i]
	}
	return score, nil
}
