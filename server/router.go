package server

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter builds the full chi mux spec.md §6 describes: permissive CORS
// (matching the original implementation's
// tower_http::cors::CorsLayer::permissive()), the 16 routes, and a
// /metrics endpoint for the prometheus collectors in Metrics.
func NewRouter(a *App) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(zapRequestLogger(a.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/live", a.handleLive)
	r.Get("/health", a.handleHealth)
	r.Get("/info", a.handleInfo)
	r.Get("/crs/{lane}", a.handleCRS)

	r.Post("/query/{lane}", a.handleQuery)
	r.Post("/query/{lane}/binary", a.handleQueryBinary)
	r.Post("/query/{lane}/seeded", a.handleSeededQuery)
	r.Post("/query/{lane}/seeded/binary", a.handleSeededQueryBinary)

	r.Get("/index", a.handleIndexCompressed)
	r.Get("/index/raw", a.handleIndexRaw)
	r.Get("/index/info", a.handleIndexInfo)
	r.Get("/index/subscribe", a.handleIndexSubscribe)
	r.Get("/index/stems", a.handleIndexStems)
	r.Get("/index/deltas", a.handleIndexDeltas)
	r.Get("/index/deltas/info", a.handleIndexDeltasInfo)

	r.With(localOnly).Post("/admin/reload", a.handleAdminReload)

	r.Handle("/metrics", promhttp.Handler())

	return r
}

// localOnly restricts a route to loopback callers, per spec.md §6's
// "POST /admin/reload ... localhost/rate-limited".
func localOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		ip := net.ParseIP(host)
		if ip == nil || !ip.IsLoopback() {
			http.Error(w, "forbidden: admin routes are localhost-only", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func zapRequestLogger(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Infow("http_request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_addr", remoteIP(r),
			)
		})
	}
}

func remoteIP(r *http.Request) string {
	if idx := strings.LastIndex(r.RemoteAddr, ":"); idx != -1 {
		return r.RemoteAddr[:idx]
	}
	return r.RemoteAddr
}
