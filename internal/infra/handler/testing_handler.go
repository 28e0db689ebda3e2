package handler

import (
	"context"
	"log/slog"
	"net/http"
)

// Resetter wipes all application state.
type Resetter interface {
	Reset(ctx context.Context) error
}

// TestingHandler exposes the state reset used by end-to-end suites.
type TestingHandler struct {
	resetter Resetter
	guard    func(http.Handler) http.Handler
	logger   *slog.Logger
}

// NewTestingHandler creates a new handler. guard protects the reset route and may be nil.
func NewTestingHandler(resetter Resetter, guard func(http.Handler) http.Handler, logger *slog.Logger) *TestingHandler {
	return &TestingHandler{resetter: resetter, guard: guard, logger: logger}
}

// RegisterRoutes registers testing handlers on the router.
func (h *TestingHandler) RegisterRoutes(r chiRouter) {
	r.Post("/testing/reset", wrap(h.handleReset, h.guard))
}

func (h *TestingHandler) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.resetter.Reset(r.Context()); err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
