package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-showcase/internal/auth"
	"github.com/goliatone/go-showcase/internal/content"
	"github.com/goliatone/go-showcase/internal/logging"
	"github.com/goliatone/go-showcase/internal/media"
	"github.com/goliatone/go-showcase/internal/pages"
	"github.com/goliatone/go-showcase/internal/products"
	"github.com/goliatone/go-showcase/internal/resolver"
	"github.com/goliatone/go-showcase/internal/technologies"
	"github.com/goliatone/go-showcase/internal/users"
	"github.com/goliatone/go-showcase/internal/widgets"
	"github.com/goliatone/go-showcase/pkg/interfaces"
)

// WidgetCatalog is the registry surface exposed to the admin console.
type WidgetCatalog interface {
	List() []widgets.Definition
	Validate(config map[string]any) error
	Resolve(ctx context.Context, config map[string]any, rc widgets.RenderContext) widgets.Rendered
}

// UploadObserver records accepted uploads by origin.
type UploadObserver interface {
	ObserveUpload(origin string)
}

// API registers the JSON endpoints.
type API struct {
	basePath     string
	auth         *auth.Authenticator
	products     products.Service
	media        media.Service
	technologies technologies.Service
	users        users.Service
	content      content.Service
	pages        pages.Service
	widgets      WidgetCatalog
	resolver     resolver.Resolver
	uploads      UploadObserver
	maxUpload    int64
	logger       interfaces.Logger
}

// APIOption mutates the API configuration.
type APIOption func(*API)

// NewAPI constructs an API instance.
func NewAPI(authenticator *auth.Authenticator, opts ...APIOption) *API {
	api := &API{
		basePath:  "/api",
		auth:      authenticator,
		maxUpload: media.DefaultMaxUploadSize,
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// WithBasePath overrides the base API path (defaults to "/api").
func WithBasePath(path string) APIOption {
	return func(api *API) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

func WithProductService(service products.Service) APIOption {
	return func(api *API) {
		api.products = service
	}
}

func WithMediaService(service media.Service) APIOption {
	return func(api *API) {
		api.media = service
	}
}

func WithTechnologyService(service technologies.Service) APIOption {
	return func(api *API) {
		api.technologies = service
	}
}

func WithUserService(service users.Service) APIOption {
	return func(api *API) {
		api.users = service
	}
}

func WithContentService(service content.Service) APIOption {
	return func(api *API) {
		api.content = service
	}
}

func WithPageService(service pages.Service) APIOption {
	return func(api *API) {
		api.pages = service
	}
}

func WithWidgetCatalog(catalog WidgetCatalog) APIOption {
	return func(api *API) {
		api.widgets = catalog
	}
}

func WithResolver(res resolver.Resolver) APIOption {
	return func(api *API) {
		api.resolver = res
	}
}

func WithUploadObserver(observer UploadObserver) APIOption {
	return func(api *API) {
		api.uploads = observer
	}
}

// WithMaxUploadSize bounds multipart bodies on the upload route.
func WithMaxUploadSize(limit int64) APIOption {
	return func(api *API) {
		if limit > 0 {
			api.maxUpload = limit
		}
	}
}

func WithLogger(logger interfaces.Logger) APIOption {
	return func(api *API) {
		if logger != nil {
			api.logger = logger
		}
	}
}

// Register attaches the API endpoints to mux. Services left unset have
// their routes omitted.
func (api *API) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api == nil {
		return fmt.Errorf("http: api is nil")
	}
	if api.auth == nil {
		return fmt.Errorf("http: authenticator is required")
	}

	base := joinPath(api.basePath, "")

	api.registerAuthRoutes(mux, base)
	if api.products != nil {
		api.registerProductRoutes(mux, base)
	}
	if api.media != nil {
		api.registerMediaRoutes(mux, base)
	}
	if api.technologies != nil {
		api.registerTechnologyRoutes(mux, base)
	}
	if api.users != nil {
		api.registerUserRoutes(mux, base)
	}
	if api.content != nil {
		api.registerContentRoutes(mux, base)
	}
	if api.pages != nil {
		api.registerPageRoutes(mux, base)
	}
	if api.widgets != nil {
		api.registerWidgetRoutes(mux, base)
	}
	return nil
}

// admin wraps h in the admin role guard.
func (api *API) admin(h http.HandlerFunc) http.Handler {
	return api.auth.RequireAdmin()(h)
}

func (api *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError {
		logging.FromContext(r.Context(), api.logger).Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeJSON(w, status, payload)
}
