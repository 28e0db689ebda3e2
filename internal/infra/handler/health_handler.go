package handler

import (
	"context"
	"net/http"
	"time"
)

const healthCheckTimeout = 3 * time.Second

// HealthChecker defines dependencies that can be health-checked.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// NamedChecker labels a dependency in the /health report.
type NamedChecker struct {
	Name    string
	Checker HealthChecker
}

// HealthHandler handles /health endpoint.
type HealthHandler struct {
	checks []NamedChecker
}

// NewHealthHandler creates a handler over the given dependencies. Entries with a
// nil Checker are skipped, so an in-memory deployment reports no components.
func NewHealthHandler(checks ...NamedChecker) *HealthHandler {
	h := &HealthHandler{}
	for _, c := range checks {
		if c.Checker == nil {
			continue
		}
		h.checks = append(h.checks, c)
	}
	return h
}

type healthComponent struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type healthResponse struct {
	Status     string            `json:"status"`
	Components []healthComponent `json:"components"`
	CheckedAt  time.Time         `json:"checked_at"`
}

// ServeHTTP responds with dependency status.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status := http.StatusOK
	components := make([]healthComponent, 0, len(h.checks))
	for _, c := range h.checks {
		if err := c.Checker.HealthCheck(ctx); err != nil {
			status = http.StatusServiceUnavailable
			components = append(components, healthComponent{Name: c.Name, Status: "unhealthy", Error: err.Error()})
			continue
		}
		components = append(components, healthComponent{Name: c.Name, Status: "healthy"})
	}

	writeJSON(w, status, healthResponse{
		Status:     statusLabel(status),
		Components: components,
		CheckedAt:  time.Now().UTC(),
	})
}

func statusLabel(code int) string {
	if code == http.StatusOK {
		return "healthy"
	}
	return "unhealthy"
}
