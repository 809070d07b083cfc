package artifact

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const linearAB = `{"kind":"LinearRegression","coefficients":[1,10],"intercept":0.5}`

func mustEncode(t *testing.T, model string, names []string, trainingTime string) []byte {
	t.Helper()
	data, err := Encode(json.RawMessage(model), names, trainingTime)
	require.NoError(t, err)
	return data
}

func TestDecode_Valid(t *testing.T) {
	data := mustEncode(t, linearAB, []string{"a", "b"}, "2026-10-19T08:15:30.123456")

	a, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, a.FeatureNames)
	assert.Equal(t, "LinearRegression", a.Kind())
	assert.Equal(t, "2026-10-19T08:15:30.123456", a.TrainingTime)
	assert.Equal(t, time.Date(2026, 10, 19, 8, 15, 30, 123456000, time.UTC), a.TrainedAt)
	assert.NotEmpty(t, a.Checksum)

	score, err := a.Predictor.Predict([]float64{1, 2})
	require.NoError(t, err)
	assert.InDelta(t, 21.5, score, 1e-9)
}

func TestDecode_WithoutChecksum(t *testing.T) {
	data := []byte(`{"model":` + linearAB + `,"feature_names":["a","b"],"training_time":"2026-10-19T08:15:30Z"}`)
	a, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 2026, a.TrainedAt.Year())
}

func TestDecode_PrettyModelMatchesChecksum(t *testing.T) {
	data := mustEncode(t, linearAB, []string{"a", "b"}, "2026-10-19T08:15:30")

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	pretty, err := json.MarshalIndent(raw, "", "  ")
	require.NoError(t, err)

	_, err = Decode(pretty)
	assert.NoError(t, err)
}

func TestDecode_Corrupt(t *testing.T) {
	valid := mustEncode(t, linearAB, []string{"a", "b"}, "2026-10-19T08:15:30")

	tests := []struct {
		name string
		data string
	}{
		{"truncated", string(valid[:len(valid)/2])},
		{"empty", ""},
		{"model missing", `{"feature_names":["a"],"training_time":"2026-10-19T08:15:30"}`},
		{"model null", `{"model":null,"feature_names":["a"],"training_time":"2026-10-19T08:15:30"}`},
		{"no features", `{"model":` + linearAB + `,"feature_names":[],"training_time":"2026-10-19T08:15:30"}`},
		{"duplicate feature", `{"model":` + linearAB + `,"feature_names":["a","a"],"training_time":"2026-10-19T08:15:30"}`},
		{"empty feature", `{"model":` + linearAB + `,"feature_names":["a",""],"training_time":"2026-10-19T08:15:30"}`},
		{"no training time", `{"model":` + linearAB + `,"feature_names":["a","b"]}`},
		{"bad training time", `{"model":` + linearAB + `,"feature_names":["a","b"],"training_time":"yesterday"}`},
		{"checksum mismatch", `{"model":` + linearAB + `,"feature_names":["a","b"],"training_time":"2026-10-19T08:15:30","checksum":"deadbeef"}`},
		{"model does not fit features", `{"model":` + linearAB + `,"feature_names":["a"],"training_time":"2026-10-19T08:15:30"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestParseTrainingTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2026-10-19T08:15:30Z", time.Date(2026, 10, 19, 8, 15, 30, 0, time.UTC)},
		{"2026-10-19T08:15:30.5+02:00", time.Date(2026, 10, 19, 6, 15, 30, 500000000, time.UTC)},
		{"2026-10-19T08:15:30", time.Date(2026, 10, 19, 8, 15, 30, 0, time.UTC)},
		{"2026-10-19T08:15:30.123456", time.Date(2026, 10, 19, 8, 15, 30, 123456000, time.UTC)},
		{"2026-10-19 08:15:30", time.Date(2026, 10, 19, 8, 15, 30, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTrainingTime(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}

	_, err := ParseTrainingTime("19/10/2026")
	assert.Error(t, err)
}

func TestArtifact_NewerThan(t *testing.T) {
	older := &Artifact{TrainedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	newer := &Artifact{TrainedAt: older.TrainedAt.Add(time.Second)}
	same := &Artifact{TrainedAt: older.TrainedAt}

	assert.True(t, older.NewerThan(nil))
	assert.True(t, newer.NewerThan(older))
	assert.False(t, older.NewerThan(newer))
	assert.False(t, same.NewerThan(older))
}
