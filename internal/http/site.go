package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/goliatone/go-showcase/internal/auth"
	"github.com/goliatone/go-showcase/internal/domain"
	"github.com/goliatone/go-showcase/internal/locale"
	"github.com/goliatone/go-showcase/internal/logging"
	"github.com/goliatone/go-showcase/internal/pages"
	"github.com/goliatone/go-showcase/internal/resolver"
	"github.com/goliatone/go-showcase/pkg/interfaces"
)

// PageComposer builds the public pages.
type PageComposer interface {
	Compose(ctx context.Context, req pages.ComposeRequest) (*pages.ComposedPage, error)
	ComposeProduct(ctx context.Context, locale, slug string, viewer domain.Viewer) (*pages.ComposedPage, error)
}

// Site serves the public marketing pages, admin previews and the sign-in
// form.
type Site struct {
	composer PageComposer
	renderer *pages.Renderer
	locales  *locale.Router
	auth     *auth.Authenticator
	logger   interfaces.Logger
}

func NewSite(composer PageComposer, renderer *pages.Renderer, locales *locale.Router, authenticator *auth.Authenticator, logger interfaces.Logger) *Site {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Site{composer: composer, renderer: renderer, locales: locales, auth: authenticator, logger: logger}
}

// Register mounts the site on mux. Public pages sit behind the locale
// router; /admin and /auth are served without a locale prefix.
func (s *Site) Register(mux *http.ServeMux) {
	public := http.NewServeMux()
	public.HandleFunc("GET /{$}", s.handlePage)
	public.HandleFunc("GET /products/{slug}", s.handleProduct)
	public.HandleFunc("GET /{page}", s.handlePage)
	mux.Handle("/", s.locales.Middleware(public))

	// Everything under /admin is guarded, including paths with no route.
	admin := http.NewServeMux()
	admin.HandleFunc("GET /admin", s.handleAdminHome)
	admin.HandleFunc("GET /admin/{$}", s.handleAdminHome)
	admin.HandleFunc("GET /admin/preview/{locale}/{page}", s.handlePreview)
	protected := s.auth.ProtectAdmin(admin)
	mux.Handle("/admin", protected)
	mux.Handle("/admin/", protected)
	mux.HandleFunc("GET "+s.auth.SignInPath(), s.handleSignIn)
}

func (s *Site) handlePage(w http.ResponseWriter, r *http.Request) {
	code := locale.FromContext(r.Context())
	page, err := s.composer.Compose(r.Context(), pages.ComposeRequest{
		Locale: code,
		Slug:   r.PathValue("page"),
		Viewer: auth.ViewerFromContext(r.Context()),
	})
	s.respond(w, r, code, page, err)
}

func (s *Site) handleProduct(w http.ResponseWriter, r *http.Request) {
	code := locale.FromContext(r.Context())
	page, err := s.composer.ComposeProduct(r.Context(), code, r.PathValue("slug"), auth.ViewerFromContext(r.Context()))
	s.respond(w, r, code, page, err)
}

func (s *Site) handlePreview(w http.ResponseWriter, r *http.Request) {
	code := strings.ToLower(r.PathValue("locale"))
	page, err := s.composer.Compose(r.Context(), pages.ComposeRequest{
		Locale:  code,
		Slug:    r.PathValue("page"),
		Preview: true,
		Viewer:  auth.ViewerFromContext(r.Context()),
	})
	s.respond(w, r, code, page, err)
}

func (s *Site) handleAdminHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/admin/preview/"+s.locales.DefaultLocale()+"/home", http.StatusFound)
}

func (s *Site) handleSignIn(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	s.write(w, r, http.StatusOK, func(buf *bytes.Buffer) error {
		return s.renderer.RenderSignIn(buf, pages.SignInView{
			CallbackURL: safeCallback(query.Get("callbackUrl"), "/admin"),
			Error:       strings.TrimSpace(query.Get("error")),
		})
	})
}

func (s *Site) respond(w http.ResponseWriter, r *http.Request, code string, page *pages.ComposedPage, err error) {
	if err != nil {
		if errors.Is(err, pages.ErrPageNotFound) || errors.Is(err, resolver.ErrUnsupportedLocale) {
			s.write(w, r, http.StatusNotFound, func(buf *bytes.Buffer) error {
				return s.renderer.RenderNotFound(buf, code)
			})
			return
		}
		logging.FromContext(r.Context(), s.logger).Error("page composition failed", "path", r.URL.Path, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	s.write(w, r, http.StatusOK, func(buf *bytes.Buffer) error {
		return s.renderer.Render(buf, page)
	})
}

// write renders into a buffer first so template failures never leave a
// half-written document.
func (s *Site) write(w http.ResponseWriter, r *http.Request, status int, render func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		logging.FromContext(r.Context(), s.logger).Error("page render failed", "path", r.URL.Path, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
