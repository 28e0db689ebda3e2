package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	domainAccount "github.com/noobLue/fullstack5pw/internal/domain/account"
	domainBlog "github.com/noobLue/fullstack5pw/internal/domain/blog"
)

const maxBodyBytes = 1 << 20

var errMalformedBody = errors.New("malformed JSON body")

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

// writeDomainError translates service errors into the HTTP error envelope.
// Unknown errors become an opaque 500 and are logged.
func writeDomainError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, code := classifyError(err)
	if status == http.StatusInternalServerError {
		if logger == nil {
			logger = slog.Default()
		}
		logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, status, code, "internal server error")
		return
	}
	writeError(w, status, code, err.Error())
}

func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, errMalformedBody),
		errors.Is(err, domainAccount.ErrInvalidInput),
		errors.Is(err, domainBlog.ErrInvalidBlog):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, domainAccount.ErrDuplicateUsername):
		return http.StatusConflict, "duplicate_username"
	case errors.Is(err, domainAccount.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, domainAccount.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, domainBlog.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, domainBlog.ErrNotFound),
		errors.Is(err, domainAccount.ErrNotFound),
		errors.Is(err, domainAccount.ErrNoSuchSession):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// decodeBody reads a JSON request body into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errMalformedBody
	}
	return nil
}
