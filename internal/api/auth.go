package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/veldtlab/hwscope/internal/apierr"
	"github.com/veldtlab/hwscope/internal/config"
)

// adminOnly gates a subrouter behind the configured Bearer token.
// With no token configured the admin surface is unavailable rather
// than open.
func adminOnly(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.AdminAPIToken == "" {
				apierr.WriteErrorWithContext(w, r, apierr.SystemUnavailable("admin token not configured"))
				return
			}

			auth := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) {
				apierr.WriteErrorWithContext(w, r, apierr.AuthMissing("missing or malformed Authorization header"))
				return
			}

			token := auth[len(prefix):]
			if subtle.ConstantTimeCompare([]byte(token), []byte(cfg.AdminAPIToken)) != 1 {
				apierr.WriteErrorWithContext(w, r, apierr.AuthInvalid("invalid admin token"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
