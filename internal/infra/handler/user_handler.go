package handler

import (
	"log/slog"
	"net/http"

	domainAccount "github.com/noobLue/fullstack5pw/internal/domain/account"
	usecaseAccount "github.com/noobLue/fullstack5pw/internal/usecase/account"
)

// UserHandler serves account registration.
type UserHandler struct {
	service *usecaseAccount.Service
	logger  *slog.Logger
}

// NewUserHandler creates a new handler.
func NewUserHandler(service *usecaseAccount.Service, logger *slog.Logger) *UserHandler {
	return &UserHandler{service: service, logger: logger}
}

// RegisterRoutes registers user handlers on the router.
func (h *UserHandler) RegisterRoutes(r chiRouter) {
	r.Post("/users", h.handleRegister)
}

type registerRequest struct {
	Username string `json:"username"`
	// User is the field name used by older clients.
	User     string `json:"user"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type accountResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

func toAccountResponse(a *domainAccount.Account) accountResponse {
	return accountResponse{
		ID:       a.ID.String(),
		Username: a.Username,
		Name:     a.Name,
	}
}

func (h *UserHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	username := req.Username
	if username == "" {
		username = req.User
	}

	acc, err := h.service.Register(r.Context(), usecaseAccount.RegisterParams{
		Username: username,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountResponse(acc))
}
