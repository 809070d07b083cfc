package model

const (
	StatusActive = "active"

	// NoModelLoaded is both the /model-info status and the /predict error when the registry is empty
	NoModelLoaded      = "No model loaded"
	ErrMissingFeatures = "Missing features"
	ErrInvalidBackend  = "Invalid JSON from backend"
	ErrUnreachable     = "Backend unreachable"
)

// FeatureVector is a decoded /predict body. Numbers are kept as json.Number so the
// echo in features_used matches what the client sent.
type FeatureVector map[string]interface{}

// ModelInfoResponse is the body of GET /model-info
type ModelInfoResponse struct {
	Status           string   `json:"status"`
	LastTrainingTime string   `json:"last_training_time,omitempty"`
	Features         []string `json:"features,omitempty"`
	ModelType        string   `json:"model_type,omitempty"`
	Host             string   `json:"host,omitempty"`
}

// PredictResponse is the success body of POST /predict
type PredictResponse struct {
	EngagementScore   float64       `json:"engagement_score"`
	FeaturesUsed      FeatureVector `json:"features_used"`
	ModelTrainingTime string        `json:"model_training_time"`
	Host              string        `json:"host"`
}

// ErrorResponse is the failure body of POST /predict
type ErrorResponse struct {
	Error            string   `json:"error"`
	RequiredFeatures []string `json:"required_features,omitempty"`
	MissingFeatures  []string `json:"missing_features,omitempty"`
}

// GatewayErrorResponse is the 502 body the router synthesizes
type GatewayErrorResponse struct {
	Error         string  `json:"error"`
	Backend       string  `json:"backend,omitempty"`
	Detail        string  `json:"detail,omitempty"`
	Raw           *string `json:"raw,omitempty"`
	BackendStatus int     `json:"backend_status,omitempty"`
}
