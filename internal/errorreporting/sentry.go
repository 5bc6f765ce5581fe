// Package errorreporting forwards errors to Sentry, scrubbing the
// secrets this service actually handles before anything leaves the
// process: admin bearer tokens, database DSN credentials and raw
// token-bearing env assignments.
package errorreporting

import (
	"fmt"
	"regexp"
	"time"

	"github.com/getsentry/sentry-go"
)

// Options carries the Sentry settings out of the service config.
type Options struct {
	DSN         string
	Environment string
	Release     string
	SampleRate  float64
}

var scrubPatterns = []*regexp.Regexp{
	// Credentials inside database URLs, e.g. postgres://svc:hunter2@db/hwscope.
	// lib/pq surfaces the full DSN in some connection errors.
	regexp.MustCompile(`(?i)\b(postgres(?:ql)?://)[^@\s/]+@`),
	// Bearer tokens from the admin API.
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._-]{8,}`),
	// Env-style assignments: ADMIN_API_TOKEN=..., SENTRY_DSN=..., etc.
	regexp.MustCompile(`(?i)\b(admin_api_token|sentry_dsn|database_url)\s*[:=]\s*\S+`),
	// Generic key/token/secret pairs in wrapped error text.
	regexp.MustCompile(`(?i)(api[_-]?key|token|secret)["\s:=]+[a-zA-Z0-9._-]{16,}`),
}

var enabled bool

// Init configures the Sentry client. An empty DSN leaves reporting
// off; every Capture call then degrades to a no-op.
func Init(opts Options) error {
	if opts.DSN == "" {
		enabled = false
		return nil
	}

	if opts.Release == "" {
		opts.Release = "dev"
	}
	if opts.SampleRate <= 0 || opts.SampleRate > 1 {
		opts.SampleRate = 1.0
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              opts.DSN,
		Environment:      opts.Environment,
		Release:          opts.Release,
		SampleRate:       opts.SampleRate,
		BeforeSend:       beforeSend,
		AttachStacktrace: true,
	})
	if err != nil {
		return fmt.Errorf("initializing sentry: %w", err)
	}

	enabled = true
	return nil
}

// IsSentryEnabled reports whether Init configured a live client.
func IsSentryEnabled() bool {
	return enabled
}

// beforeSend scrubs secrets from every outgoing event and strips the
// request fields that could carry an admin token.
func beforeSend(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
	for i := range event.Exception {
		event.Exception[i].Value = scrub(event.Exception[i].Value)
	}
	if event.Message != "" {
		event.Message = scrub(event.Message)
	}
	for key, value := range event.Extra {
		if str, ok := value.(string); ok {
			event.Extra[key] = scrub(str)
		}
	}

	if event.Request != nil {
		if event.Request.Headers != nil {
			delete(event.Request.Headers, "Authorization")
			delete(event.Request.Headers, "Cookie")
		}
		// Admin tokens must never ride along in query strings, but a
		// buggy client might put one there anyway.
		event.Request.QueryString = ""
	}

	return event
}

func scrub(text string) string {
	result := text
	for _, pattern := range scrubPatterns {
		result = pattern.ReplaceAllString(result, "[REDACTED]")
	}
	return result
}

// ScrubPII applies the secret scrubbing rules to arbitrary text.
// Callers that hand-build Sentry messages go through this.
func ScrubPII(text string) string {
	return scrub(text)
}

// CaptureError reports err to Sentry. Nil errors are ignored.
func CaptureError(err error) {
	if err == nil || !enabled {
		return
	}
	sentry.CaptureException(err)
}

// CaptureErrorWithContext reports err with tags and extra data. The
// extras pass through beforeSend, so secrets in them get scrubbed.
func CaptureErrorWithContext(err error, tags map[string]string, extras map[string]interface{}) {
	if err == nil || !enabled {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		for k, v := range extras {
			scope.SetExtra(k, v)
		}
		sentry.CaptureException(err)
	})
}

// Flush blocks until buffered events are delivered or the timeout
// elapses.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}
