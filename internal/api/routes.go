package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/veldtlab/hwscope/gpu"
	"github.com/veldtlab/hwscope/internal/api/handlers"
	"github.com/veldtlab/hwscope/internal/config"
	"github.com/veldtlab/hwscope/internal/history"
	"github.com/veldtlab/hwscope/internal/httpcache"
	"github.com/veldtlab/hwscope/internal/middleware"
)

// Deps carries everything the router needs. History is optional and
// may be nil when no database is configured.
type Deps struct {
	Manager *gpu.Manager
	Cache   httpcache.Cache
	History *history.Store
	Config  *config.Config
}

// NewRouter builds the API router with the full middleware chain. It
// also returns the stream hub so the caller can run it for the
// server's lifetime and stop it on shutdown.
func NewRouter(deps Deps) (*mux.Router, *handlers.Hub) {
	r := mux.NewRouter()
	cfg := deps.Config

	r.Use(middleware.RequestID)
	r.Use(middleware.RecoverWithSentry)
	r.Use(middleware.SecurityHeaders)
	r.Use(instrument)

	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	if cfg.EnableRateLimit {
		rl := middleware.NewRateLimiter(middleware.Limits{
			GlobalRate:  cfg.RateLimitGlobal,
			GlobalBurst: cfg.RateLimitGlobalBurst,
			PerIPRate:   cfg.RateLimitPerIP,
			PerIPBurst:  cfg.RateLimitPerIPBurst,
		})
		r.Use(rl.Limit)
	}

	// Health and metrics sit outside /api so probes and scrapers
	// don't depend on the API prefix.
	r.HandleFunc("/healthz", handlers.Health).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Streaming stays off the data subrouter: compression and ETag
	// buffer the response body, which would break the upgrade hijack.
	ws := handlers.NewStreamHandler(deps.Manager, cfg.StreamInterval)
	r.HandleFunc("/api/stream", ws.Handle).Methods("GET")

	// Devices
	devices := handlers.NewDeviceHandler(deps.Manager, deps.Cache)

	// Admin (Bearer token); registered ahead of the data subrouter so
	// /api/admin paths never fall into the /api prefix matcher.
	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(adminOnly(cfg))
	cacheAdmin := handlers.NewCacheAdminHandler(deps.Cache, deps.Manager)
	admin.HandleFunc("/cache/stats", cacheAdmin.GetStats).Methods("GET")
	admin.HandleFunc("/cache/invalidate", cacheAdmin.Invalidate).Methods("POST")
	admin.HandleFunc("/devices/refresh", devices.Refresh).Methods("POST")

	// Read endpoints get response compression and ETags.
	data := r.PathPrefix("/api").Subrouter()
	data.Use(middleware.Compress)
	data.Use(middleware.ETag)

	data.HandleFunc("/devices", devices.List).Methods("GET")
	data.HandleFunc("/devices/{index}", devices.Get).Methods("GET")

	// System identity
	system := handlers.NewSystemHandler(cfg.SystemInfoTTL)
	data.HandleFunc("/system", system.Get).Methods("GET")

	// Status
	status := handlers.NewStatusHandler(deps.Manager, deps.Cache, deps.History != nil)
	data.HandleFunc("/status", status.Get).Methods("GET")

	// History (404s with HISTORY_DISABLED when no store is wired)
	hist := handlers.NewHistoryHandler(deps.History)
	data.HandleFunc("/history/{index}", hist.Get).Methods("GET")

	r.NotFoundHandler = http.HandlerFunc(handlers.NotFound)

	return r, ws.GetHub()
}
