package handler

import (
	"log/slog"
	"net/http"

	domainAccount "github.com/noobLue/fullstack5pw/internal/domain/account"
	usecaseAccount "github.com/noobLue/fullstack5pw/internal/usecase/account"
)

// CookieConfig controls the session cookie written on login.
type CookieConfig struct {
	Name   string
	Secure bool
}

// SessionHandler serves login, logout and the current-caller lookup.
type SessionHandler struct {
	service *usecaseAccount.Service
	cookie  CookieConfig
	logger  *slog.Logger

	// loginLimit wraps POST /login, typically with server.RateLimit.
	loginLimit func(http.Handler) http.Handler
}

// NewSessionHandler creates a new handler. loginLimit may be nil.
func NewSessionHandler(service *usecaseAccount.Service, cookie CookieConfig, loginLimit func(http.Handler) http.Handler, logger *slog.Logger) *SessionHandler {
	if cookie.Name == "" {
		cookie.Name = DefaultSessionCookieName
	}
	return &SessionHandler{
		service:    service,
		cookie:     cookie,
		logger:     logger,
		loginLimit: loginLimit,
	}
}

// RegisterRoutes registers session handlers on the router.
func (h *SessionHandler) RegisterRoutes(r chiRouter) {
	r.Post("/login", wrap(h.handleLogin, h.loginLimit))
	r.Post("/logout", h.handleLogout)
	r.Get("/me", h.handleMe)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

func (h *SessionHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	login, err := h.service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    login.Token,
		Path:     "/",
		MaxAge:   int(h.service.SessionTTL().Seconds()),
		Expires:  login.Session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, loginResponse{
		Token:    login.Token,
		Username: login.Account.Username,
		Name:     login.Account.Name,
	})
}

func (h *SessionHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r, h.cookie.Name)
	h.clearCookie(w)
	if err := h.service.EndSession(r.Context(), token); err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r.Context())
	if caller.IsAnonymous() {
		writeDomainError(w, r, h.logger, domainAccount.ErrUnauthenticated)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(caller.Account()))
}

func (h *SessionHandler) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
