package predictor

import (
	"encoding/json"
	"fmt"
)

const (
	KindForest = "RandomForestRegressor"
	KindTree   = "DecisionTreeRegressor"
)

// treeNode is one node of a regression tree in flat-array form.
// Leaves have Feature < 0; internal nodes go left when row[Feature] <= Threshold.
type treeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

type tree struct {
	Nodes []treeNode `json:"nodes"`
}

type forestModel struct {
	kind        string
	numFeatures int
	Trees       []tree `json:"trees"`
}

func decodeForest(raw json.RawMessage, numFeatures int) (Predictor, error) {
	var m struct {
		Kind  string `json:"kind"`
		Trees []tree `json:"trees"`
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	if len(m.Trees) == 0 {
		return nil, fmt.Errorf("no trees")
	}
	for i, t := range m.Trees {
		if err := t.validate(numFeatures); err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return &forestModel{kind: m.Kind, numFeatures: numFeatures, Trees: m.Trees}, nil
}

// validate guarantees traversal terminates: children always point forward in the array.
func (t tree) validate(numFeatures int) error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("empty tree")
	}
	for i, n := range t.Nodes {
		if n.Feature < 0 {
			continue
		}
		if n.Feature >= numFeatures {
			return fmt.Errorf("node %d splits on feature %d of %d", i, n.Feature, numFeatures)
		}
		if n.Left <= i || n.Left >= len(t.Nodes) || n.Right <= i || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d has invalid children %d/%d", i, n.Left, n.Right)
		}
	}
	return nil
}

func (t tree) predict(row []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Feature < 0 {
			return n.Value
		}
		if row[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

func (m *forestModel) Kind() string { return m.kind }

func (m *forestModel) Predict(row []float64) (float64, error) {
	if err := checkRow(row, m.numFeatures); err != nil {
		return 0, err
	}
	var sum float64
	for _, t := range m.Trees {
		sum += t.predict(row)
	}
	return sum / float64(len(m.Trees)), nil
}
