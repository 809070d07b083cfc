package handler

import (
	"errors"
	"net/http"

	"modelserve/internal/model"
	"modelserve/internal/service"
	"modelserve/pkg/logger"

	"github.com/gin-gonic/gin"
)

const jsonContentType = "application/json; charset=utf-8"

// GatewayHandler forwards model routes to the backend pool
type GatewayHandler struct {
	forwardService *service.ForwardService
}

// NewGatewayHandler creates gateway handler
func NewGatewayHandler(forwardService *service.ForwardService) *GatewayHandler {
	return &GatewayHandler{forwardService: forwardService}
}

// ModelInfo forwards GET /model-info to the next backend
func (h *GatewayHandler) ModelInfo(c *gin.Context) {
	h.forward(c, service.RouteModelInfo, nil)
}

// Predict forwards the POST /predict body unchanged to the next backend
func (h *GatewayHandler) Predict(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "failed to read request body"})
		return
	}
	h.forward(c, service.RoutePredict, payload)
}

func (h *GatewayHandler) forward(c *gin.Context, kind service.RouteKind, payload []byte) {
	result, err := h.forwardService.Route(c.Request.Context(), kind, payload)
	if err != nil {
		writeRouteError(c, err)
		return
	}
	c.Data(result.StatusCode, jsonContentType, result.Body)
}

// writeRouteError maps router failures to 502 bodies
func writeRouteError(c *gin.Context, err error) {
	var re *service.RouteError
	if !errors.As(err, &re) {
		logger.ErrorCtx(c.Request.Context(), "unexpected route error: %v", err)
		c.JSON(http.StatusBadGateway, model.GatewayErrorResponse{Error: model.ErrUnreachable, Detail: err.Error()})
		return
	}

	logger.WarnCtx(c.Request.Context(), "route via %s failed: %v", re.Backend, err)
	switch re.Kind {
	case service.RouteMalformedBackendResponse:
		raw := re.Raw
		c.JSON(http.StatusBadGateway, model.GatewayErrorResponse{
			Error:         model.ErrInvalidBackend,
			Backend:       re.Backend,
			Raw:           &raw,
			BackendStatus: re.Status,
		})
	default:
		detail := ""
		if re.Err != nil {
			detail = re.Err.Error()
		}
		c.JSON(http.StatusBadGateway, model.GatewayErrorResponse{
			Error:   model.ErrUnreachable,
			Backend: re.Backend,
			Detail:  detail,
		})
	}
}
