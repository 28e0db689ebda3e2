package telemetry

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/noobLue/fullstack5pw/internal/platform/config"
)

const defaultSentryEnvironment = "production"

// sensitiveHeaders carry session tokens and must never leave the process.
var sensitiveHeaders = []string{"Authorization", "Cookie", "Set-Cookie", "X-Admin-Token"}

// InitSentry initializes Sentry and returns whether it is enabled.
func InitSentry(cfg config.SentryConfig) (bool, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return false, nil
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = defaultSentryEnvironment
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		Release:          strings.TrimSpace(cfg.Release),
		AttachStacktrace: true,
		BeforeSend:       scrubEvent,
	}); err != nil {
		return false, fmt.Errorf("init sentry: %w", err)
	}
	return true, nil
}

func scrubEvent(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	if event == nil || event.Request == nil {
		return event
	}
	for _, h := range sensitiveHeaders {
		for key := range event.Request.Headers {
			if http.CanonicalHeaderKey(key) == h {
				event.Request.Headers[key] = "[redacted]"
			}
		}
	}
	event.Request.Cookies = ""
	return event
}

// Flush waits for buffered events to be delivered.
func Flush(timeout time.Duration) {
	sentry.Flush(timeout)
}

// Recover captures a panic and reports it to Sentry.
func Recover() {
	sentry.Recover()
}
