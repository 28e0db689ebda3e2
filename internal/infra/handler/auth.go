package handler

import (
	"context"
	"net/http"
	"strings"

	domainAccount "github.com/noobLue/fullstack5pw/internal/domain/account"
)

// DefaultSessionCookieName is used when RouterConfig leaves the cookie name empty.
const DefaultSessionCookieName = "session_token"

// CallerResolver maps a session token to the requesting account.
type CallerResolver interface {
	ResolveCaller(ctx context.Context, token string) domainAccount.Caller
}

type callerKey struct{}

// WithCaller resolves the session token on every request and stores the
// caller in the request context. Requests without a valid token stay anonymous.
func WithCaller(resolver CallerResolver, cookieName string) func(next http.Handler) http.Handler {
	if cookieName == "" {
		cookieName = DefaultSessionCookieName
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := domainAccount.Anonymous()
			if resolver != nil {
				if token := sessionToken(r, cookieName); token != "" {
					caller = resolver.ResolveCaller(r.Context(), token)
				}
			}
			ctx := context.WithValue(r.Context(), callerKey{}, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func callerFrom(ctx context.Context) domainAccount.Caller {
	if caller, ok := ctx.Value(callerKey{}).(domainAccount.Caller); ok {
		return caller
	}
	return domainAccount.Anonymous()
}

// sessionToken prefers the Authorization bearer token over the cookie.
func sessionToken(r *http.Request, cookieName string) string {
	if auth := strings.TrimSpace(r.Header.Get("Authorization")); auth != "" {
		scheme, token, ok := strings.Cut(auth, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}
