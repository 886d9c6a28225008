package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/cinewave/cinewave/internal/store"
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	components := map[string]ComponentHealth{
		"store":  s.checkStore(ctx),
		"search": s.checkSearchIndex(),
		"sse":    s.checkSSEManager(),
	}

	overall := statusHealthy
	for _, c := range components {
		switch c.Status {
		case statusUnhealthy:
			overall = statusUnhealthy
		case statusDegraded:
			if overall == statusHealthy {
				overall = statusDegraded
			}
		}
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:     overall,
			Components: components,
		},
	}, nil
}

// checkStore reads the theme slot to verify the KV backend answers.
func (s *Server) checkStore(ctx context.Context) ComponentHealth {
	if s.health.Store == nil {
		return ComponentHealth{Status: statusDegraded, Message: "not configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	if _, _, err := s.health.Store.Get(ctx, store.KeyTheme); err != nil {
		return ComponentHealth{
			Status:  statusUnhealthy,
			Latency: time.Since(start).String(),
			Message: err.Error(),
		}
	}
	return ComponentHealth{Status: statusHealthy, Latency: time.Since(start).String()}
}

// checkSearchIndex verifies the favorites index is queryable.
func (s *Server) checkSearchIndex() ComponentHealth {
	if s.health.Index == nil {
		return ComponentHealth{Status: statusDegraded, Message: "not configured, using substring matching"}
	}
	count, err := s.health.Index.DocumentCount()
	if err != nil {
		return ComponentHealth{Status: statusDegraded, Message: err.Error()}
	}
	return ComponentHealth{Status: statusHealthy, Message: fmt.Sprintf("%d documents indexed", count)}
}

// checkSSEManager reports the connected event stream clients.
func (s *Server) checkSSEManager() ComponentHealth {
	if s.health.SSE == nil {
		return ComponentHealth{Status: statusDegraded, Message: "not configured"}
	}
	return ComponentHealth{
		Status:  statusHealthy,
		Message: fmt.Sprintf("%d clients connected", s.health.SSE.ClientCount()),
	}
}
