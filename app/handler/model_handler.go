package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"modelserve/internal/model"
	"modelserve/internal/service"
	"modelserve/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ModelHandler serves model metadata and predictions of this host
type ModelHandler struct {
	predictionService *service.PredictionService
	models            service.ActiveModelSource
	host              string
}

// NewModelHandler creates model handler
func NewModelHandler(predictionService *service.PredictionService, models service.ActiveModelSource, host string) *ModelHandler {
	return &ModelHandler{
		predictionService: predictionService,
		models:            models,
		host:              host,
	}
}

// ModelInfo reports the active model
// @Summary Active model info
// @Tags Model
// @Produce json
// @Success 200 {object} model.ModelInfoResponse
// @Failure 503 {object} model.ModelInfoResponse
// @Router /model-info [get]
func (h *ModelHandler) ModelInfo(c *gin.Context) {
	a := h.models.Active()
	if a == nil {
		c.JSON(http.StatusServiceUnavailable, model.ModelInfoResponse{Status: model.NoModelLoaded})
		return
	}

	c.JSON(http.StatusOK, model.ModelInfoResponse{
		Status:           model.StatusActive,
		LastTrainingTime: a.TrainingTime,
		Features:         a.FeatureNames,
		ModelType:        a.Kind(),
		Host:             h.host,
	})
}

// Predict scores a feature vector with the active model
// @Summary Predict engagement score
// @Tags Model
// @Accept json
// @Produce json
// @Param request body model.FeatureVector true "Feature name to numeric value"
// @Success 200 {object} model.PredictResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 503 {object} model.ErrorResponse
// @Router /predict [post]
func (h *ModelHandler) Predict(c *gin.Context) {
	features, err := decodeFeatures(c.Request.Body)
	if err != nil {
		logger.InfoCtx(c.Request.Context(), "rejecting predict request: %v", err)
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}

	prediction, err := h.predictionService.Predict(c.Request.Context(), features)
	if err != nil {
		writePredictError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.PredictResponse{
		EngagementScore:   prediction.Score,
		FeaturesUsed:      features,
		ModelTrainingTime: prediction.TrainingTime,
		Host:              h.host,
	})
}

// decodeFeatures reads a JSON object body, keeping numbers as json.Number
func decodeFeatures(body io.Reader) (model.FeatureVector, error) {
	if body == nil {
		return nil, errors.New("request body must be a JSON object")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, errors.New("request body must be a JSON object")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var features model.FeatureVector
	if err := dec.Decode(&features); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return nil, errors.New("invalid JSON body: trailing data")
	}
	return features, nil
}

// writePredictError maps prediction failures to status codes and bodies
func writePredictError(c *gin.Context, err error) {
	var pe *service.PredictError
	if !errors.As(err, &pe) {
		logger.ErrorCtx(c.Request.Context(), "unexpected predict error: %v", err)
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}

	switch pe.Kind {
	case service.PredictModelUnavailable:
		c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{Error: model.NoModelLoaded})
	case service.PredictMissingFeatures:
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:            model.ErrMissingFeatures,
			RequiredFeatures: pe.Required,
			MissingFeatures:  pe.Missing,
		})
	default:
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: pe.Detail})
	}
}
