// Package locale routes public requests by their leading locale segment.
package locale

import (
	"context"
	"net/http"
	"slices"
	"strings"
)

// HeaderName carries the resolved locale to downstream handlers.
const HeaderName = "x-locale"

// DefaultExcluded lists path prefixes served without a locale segment.
var DefaultExcluded = []string{"/api", "/admin", "/uploads", "/static", "/metrics", "/healthz", "/auth"}

type contextKey struct{}

// WithLocale stores code on ctx.
func WithLocale(ctx context.Context, code string) context.Context {
	return context.WithValue(ctx, contextKey{}, code)
}

// FromContext returns the locale set by the middleware, or "".
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	code, _ := ctx.Value(contextKey{}).(string)
	return code
}

// Config lists the supported locales. The default must be one of them.
type Config struct {
	Locales       []string
	DefaultLocale string
	Excluded      []string
}

// Router strips a supported locale prefix from the path and redirects
// unprefixed public paths to the default locale.
type Router struct {
	locales       []string
	defaultLocale string
	excluded      []string
}

func NewRouter(cfg Config) *Router {
	r := &Router{defaultLocale: strings.ToLower(strings.TrimSpace(cfg.DefaultLocale)), excluded: cfg.Excluded}
	for _, code := range cfg.Locales {
		if code = strings.ToLower(strings.TrimSpace(code)); code != "" && !slices.Contains(r.locales, code) {
			r.locales = append(r.locales, code)
		}
	}
	if len(r.locales) == 0 {
		r.locales = []string{"en", "th"}
	}
	if !slices.Contains(r.locales, r.defaultLocale) {
		r.defaultLocale = r.locales[0]
	}
	if r.excluded == nil {
		r.excluded = DefaultExcluded
	}
	return r
}

func (r *Router) Locales() []string {
	return slices.Clone(r.locales)
}

func (r *Router) DefaultLocale() string {
	return r.defaultLocale
}

// Split returns the locale prefix of path and the remainder. ok is false
// when the first segment is not a supported locale.
func (r *Router) Split(path string) (code, rest string, ok bool) {
	trimmed := strings.TrimPrefix(path, "/")
	segment, remainder, _ := strings.Cut(trimmed, "/")
	segment = strings.ToLower(segment)
	if !slices.Contains(r.locales, segment) {
		return "", path, false
	}
	return segment, "/" + remainder, true
}

// Excluded reports whether path bypasses locale routing.
func (r *Router) Excluded(path string) bool {
	for _, prefix := range r.excluded {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// Middleware applies locale routing in front of next.
func (r *Router) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if r.Excluded(req.URL.Path) {
			next.ServeHTTP(w, req)
			return
		}
		code, rest, ok := r.Split(req.URL.Path)
		if !ok {
			target := "/" + r.defaultLocale
			if req.URL.Path != "/" {
				target += req.URL.Path
			}
			if req.URL.RawQuery != "" {
				target += "?" + req.URL.RawQuery
			}
			http.Redirect(w, req, target, http.StatusTemporaryRedirect)
			return
		}

		routed := req.Clone(WithLocale(req.Context(), code))
		routed.URL.Path = rest
		routed.URL.RawPath = ""
		routed.Header.Set(HeaderName, code)
		w.Header().Set("Content-Language", code)
		next.ServeHTTP(w, routed)
	})
}
