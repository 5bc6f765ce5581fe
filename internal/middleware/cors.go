package middleware

import (
	"net/http"
	"strings"
)

// The API surface is small and fixed: dashboards GET metrics and the
// admin client POSTs to the cache endpoints. Methods and headers are
// therefore constants; only the origin list comes from configuration.
const (
	corsAllowMethods = "GET, POST, OPTIONS"
	corsAllowHeaders = "Accept, Authorization, Content-Type, If-None-Match"
	// ETag lets dashboards revalidate device payloads, X-Request-ID
	// lets them correlate a failed poll with server logs.
	corsExposeHeaders = "ETag, X-Request-ID"
	corsMaxAge        = "300"
)

// CORS returns a middleware that grants the configured dashboard
// origins access to the API. An entry of "*.example.com" allows any
// subdomain; "*" allows everything.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && originAllowed(origin, allowedOrigins) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", corsAllowMethods)
				w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
				w.Header().Set("Access-Control-Max-Age", corsMaxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			w.Header().Set("Access-Control-Expose-Headers", corsExposeHeaders)
			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(origin string, allowed []string) bool {
	for _, pattern := range allowed {
		switch {
		case pattern == "*":
			return true
		case pattern == origin:
			return true
		case strings.HasPrefix(pattern, "*."):
			// *.veldtlab.dev matches any host under that domain.
			if strings.HasSuffix(origin, pattern[1:]) {
				return true
			}
		}
	}
	return false
}
