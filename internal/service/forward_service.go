package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"modelserve/pkg/balancer"
	"modelserve/pkg/logger"
	"modelserve/pkg/metrics"
)

// RouteKind identifies a routable backend operation
type RouteKind string

const (
	RouteModelInfo RouteKind = "model-info"
	RoutePredict   RouteKind = "predict"
)

// Method and path of the backend operation
func (k RouteKind) target() (string, string, error) {
	switch k {
	case RouteModelInfo:
		return http.MethodGet, "/model-info", nil
	case RoutePredict:
		return http.MethodPost, "/predict", nil
	default:
		return "", "", fmt.Errorf("unknown route %q", string(k))
	}
}

// RouteErrorKind tags router failures
type RouteErrorKind string

const (
	RouteBackendUnreachable       RouteErrorKind = "BackendUnreachable"
	RouteMalformedBackendResponse RouteErrorKind = "MalformedBackendResponse"
)

// RouteError is returned when a backend response cannot be passed through
type RouteError struct {
	Kind    RouteErrorKind
	Backend string
	// Status is the backend status code for malformed responses
	Status int
	// Raw is the backend body for malformed responses
	Raw string
	Err error
}

func (e *RouteError) Error() string {
	if e.Kind == RouteMalformedBackendResponse {
		return fmt.Sprintf("%s from %s (status %d)", e.Kind, e.Backend, e.Status)
	}
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Backend, e.Err)
}

func (e *RouteError) Unwrap() error {
	return e.Err
}

// ForwardResult is a backend response passed through unchanged
type ForwardResult struct {
	StatusCode int
	Body       []byte
	Backend    string
}

// Balancer picks the backend for the next request
type Balancer interface {
	Next() (int, balancer.Endpoint)
}

// ForwardService forwards requests to prediction backends in round-robin order.
// Exactly one backend is tried per request.
type ForwardService struct {
	balancer Balancer
	client   *http.Client
}

// NewForwardService creates forward service; timeout bounds each backend round trip
func NewForwardService(b Balancer, timeout time.Duration) *ForwardService {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          200,
		MaxIdleConnsPerHost:   50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &ForwardService{
		balancer: b,
		client:   &http.Client{Transport: transport, Timeout: timeout},
	}
}

// Route sends payload to the next backend. A JSON response is returned as is,
// whatever its status; anything else is a *RouteError.
func (s *ForwardService) Route(ctx context.Context, kind RouteKind, payload []byte) (*ForwardResult, error) {
	method, path, err := kind.target()
	if err != nil {
		return nil, err
	}

	idx, endpoint := s.balancer.Next()
	backend := endpoint.BaseURL

	var body io.Reader
	if method == http.MethodPost {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, backend+path, body)
	if err != nil {
		return nil, s.unreachable(kind, backend, err)
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if traceID := logger.TraceID(ctx); traceID != "0" {
		req.Header.Set("X-Request-ID", traceID)
	}

	logger.DebugCtx(ctx, "forwarding %s to backend #%d %s", kind, idx, backend)

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		metrics.ForwardDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
		return nil, s.unreachable(kind, backend, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	metrics.ForwardDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, s.unreachable(kind, backend, fmt.Errorf("read response: %w", err))
	}

	if !json.Valid(data) {
		metrics.ForwardsTotal.WithLabelValues(backend, string(kind), "502").Inc()
		logger.WarnCtx(ctx, "backend %s returned non-JSON body for %s (status %d)", backend, kind, resp.StatusCode)
		return nil, &RouteError{
			Kind:    RouteMalformedBackendResponse,
			Backend: backend,
			Status:  resp.StatusCode,
			Raw:     string(data),
		}
	}

	metrics.ForwardsTotal.WithLabelValues(backend, string(kind), strconv.Itoa(resp.StatusCode)).Inc()
	return &ForwardResult{
		StatusCode: resp.StatusCode,
		Body:       data,
		Backend:    backend,
	}, nil
}

func (s *ForwardService) unreachable(kind RouteKind, backend string, err error) error {
	metrics.ForwardsTotal.WithLabelValues(backend, string(kind), "502").Inc()
	return &RouteError{Kind: RouteBackendUnreachable, Backend: backend, Err: err}
}
