package http

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/goliatone/go-showcase/internal/auth"
	"github.com/goliatone/go-showcase/internal/logging"
	"github.com/goliatone/go-showcase/pkg/interfaces"
)

//go:embed assets
var assets embed.FS

// RequestObserver records finished requests.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

// HandlerConfig lists the parts assembled into the root handler. API and
// Site are required; the rest are optional.
type HandlerConfig struct {
	API        *API
	Site       *Site
	Auth       *auth.Authenticator
	Metrics    http.Handler
	Observer   RequestObserver
	UploadsDir string
	UploadsURL string
	Health     func(r *http.Request) error
	Logger     interfaces.Logger
}

// NewHandler builds the root handler with the request middleware chain.
func NewHandler(cfg HandlerConfig) (http.Handler, error) {
	mux := http.NewServeMux()
	if err := cfg.API.Register(mux); err != nil {
		return nil, err
	}
	cfg.Site.Register(mux)

	static, err := fs.Sub(assets, "assets")
	if err != nil {
		return nil, err
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	if cfg.UploadsDir != "" {
		prefix := "/" + strings.Trim(cfg.UploadsURL, "/") + "/"
		if prefix == "//" {
			prefix = "/uploads/"
		}
		mux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.UploadsDir))))
	}
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Health != nil {
			if err := cfg.Health(r); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}

	var handler http.Handler = mux
	handler = observeRequests(handler, logger, cfg.Observer)
	if cfg.Auth != nil {
		handler = cfg.Auth.Middleware(handler)
	}
	handler = middleware.Recoverer(handler)
	handler = middleware.RealIP(handler)
	handler = middleware.RequestID(handler)
	return handler, nil
}

// observeRequests logs and measures each request. The route label is the
// matched mux pattern, which the mux records on the request it was given.
func observeRequests(next http.Handler, logger interfaces.Logger, observer RequestObserver) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := logging.ContextWithFields(r.Context(), map[string]any{
			"request_id": middleware.GetReqID(r.Context()),
		})
		r = r.WithContext(ctx)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		if observer != nil {
			observer.ObserveRequest(r.Method, route, status, elapsed)
		}
		log := logging.FromContext(ctx, logger)
		args := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", elapsed.Milliseconds(),
			"remote", r.RemoteAddr,
		}
		if status >= http.StatusInternalServerError {
			log.Error("request completed", args...)
			return
		}
		log.Info("request completed", args...)
	})
}
