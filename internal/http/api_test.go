package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-showcase/internal/auth"
	"github.com/goliatone/go-showcase/internal/content"
	"github.com/goliatone/go-showcase/internal/domain"
	"github.com/goliatone/go-showcase/internal/locale"
	"github.com/goliatone/go-showcase/internal/media"
	"github.com/goliatone/go-showcase/internal/metrics"
	"github.com/goliatone/go-showcase/internal/pages"
	"github.com/goliatone/go-showcase/internal/products"
	"github.com/goliatone/go-showcase/internal/resolver"
	"github.com/goliatone/go-showcase/internal/staticcontent"
	"github.com/goliatone/go-showcase/internal/technologies"
	"github.com/goliatone/go-showcase/internal/users"
	"github.com/goliatone/go-showcase/internal/widgets"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	handler http.Handler
	tokens  *auth.TokenManager
	users   users.Service
	content content.Service
}

func setupTestEnv(t *testing.T) testEnv {
	t.Helper()

	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	authenticator := auth.NewAuthenticator(tokens)

	images := media.NewMemoryRepository()
	productSvc := products.NewService(products.NewMemoryRepository(images), products.WithImageLookup(images))
	mediaSvc := media.NewService(images, media.NewMemoryStore("/uploads"), media.WithReferenceCounter(productSvc))
	contentSvc := content.NewService(content.NewMemoryRepository(), content.WithLocales("en", "th"))
	userSvc := users.NewService(users.NewMemoryRepository(), users.WithHashCost(bcrypt.MinCost))
	techSvc := technologies.NewService(technologies.NewMemoryRepository())

	registry := widgets.NewRegistry()
	widgets.RegisterBuiltins(registry)
	pageSvc := pages.NewService(pages.NewMemoryRepository(), pages.WithWidgetValidator(registry))

	static, err := staticcontent.New(fstest.MapFS{
		"en/home.json": {Data: []byte(`{"HERO_SECTION":{"fields":[{"key":"heading","value":"Static hero"}]}}`)},
	})
	if err != nil {
		t.Fatalf("static: %v", err)
	}
	m := metrics.NewMetrics(nil)
	res := resolver.New(contentSvc, static, resolver.WithLocales("en", "th"), resolver.WithObserver(m))
	composer := pages.NewComposer(res, registry, pages.WithPageFinder(pageSvc), pages.WithProductCatalog(productSvc))
	renderer := pages.NewRenderer(pages.RendererOptions{SiteName: "Showcase", Locales: []string{"en", "th"}})
	router := locale.NewRouter(locale.Config{Locales: []string{"en", "th"}, DefaultLocale: "en"})

	api := NewAPI(authenticator,
		WithProductService(productSvc),
		WithMediaService(mediaSvc),
		WithTechnologyService(techSvc),
		WithUserService(userSvc),
		WithContentService(contentSvc),
		WithPageService(pageSvc),
		WithWidgetCatalog(registry),
		WithResolver(res),
		WithUploadObserver(m),
	)
	handler, err := NewHandler(HandlerConfig{
		API:      api,
		Site:     NewSite(composer, renderer, router, authenticator, nil),
		Auth:     authenticator,
		Metrics:  m.Handler(),
		Observer: m,
	})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	return testEnv{handler: handler, tokens: tokens, users: userSvc, content: contentSvc}
}

func (e testEnv) token(t *testing.T, role domain.Role) string {
	t.Helper()
	token, _, err := e.tokens.Issue("user-"+strings.ToLower(string(role)), "someone@example.com", role)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func (e testEnv) do(t *testing.T, method, target, token string, body any, expected int) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	if rec.Code != expected {
		t.Fatalf("%s %s: expected status %d got %d: %s", method, target, expected, rec.Code, rec.Body.String())
	}
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), target); err != nil {
		t.Fatalf("decode body: %v (%s)", err, rec.Body.String())
	}
}

func TestProductCreateAndDuplicateSlug(t *testing.T) {
	env := setupTestEnv(t)
	admin := env.token(t, domain.RoleAdmin)
	payload := map[string]any{"title": "Demo", "slug": "demo", "description": "x"}

	env.do(t, http.MethodPost, "/api/products", "", payload, http.StatusUnauthorized)
	env.do(t, http.MethodPost, "/api/products", env.token(t, domain.RoleUser), payload, http.StatusForbidden)

	rec := env.do(t, http.MethodPost, "/api/products", admin, payload, http.StatusCreated)
	var created map[string]any
	decodeBody(t, rec, &created)
	if created["slug"] != "demo" || created["status"] != "DRAFT" || created["featureCount"] != float64(0) {
		t.Fatalf("unexpected product %v", created)
	}

	again := map[string]any{"title": "Other", "slug": "demo", "description": "changed"}
	rec = env.do(t, http.MethodPost, "/api/products", admin, again, http.StatusConflict)
	var failure errorResponse
	decodeBody(t, rec, &failure)
	if failure.Error != "Slug already exists" {
		t.Fatalf("unexpected conflict body %+v", failure)
	}

	rec = env.do(t, http.MethodGet, "/api/products/demo", admin, nil, http.StatusOK)
	var fetched map[string]any
	decodeBody(t, rec, &fetched)
	if fetched["title"] != "Demo" || fetched["description"] != "x" {
		t.Fatalf("existing product changed: %v", fetched)
	}
}

func TestAnonymousReadsOnlyPublished(t *testing.T) {
	env := setupTestEnv(t)
	admin := env.token(t, domain.RoleAdmin)
	env.do(t, http.MethodPost, "/api/products", admin, map[string]any{"title": "Draft", "slug": "draft"}, http.StatusCreated)
	env.do(t, http.MethodPost, "/api/products", admin, map[string]any{"title": "Live", "slug": "live"}, http.StatusCreated)
	env.do(t, http.MethodPost, "/api/products/live/publish", admin, nil, http.StatusOK)

	rec := env.do(t, http.MethodGet, "/api/products", "", nil, http.StatusOK)
	var list struct {
		Data []map[string]any `json:"data"`
	}
	decodeBody(t, rec, &list)
	if len(list.Data) != 1 || list.Data[0]["slug"] != "live" {
		t.Fatalf("anonymous list should only show published products, got %v", list.Data)
	}

	env.do(t, http.MethodGet, "/api/products/draft", "", nil, http.StatusUnauthorized)
	env.do(t, http.MethodGet, "/api/products/draft", env.token(t, domain.RoleUser), nil, http.StatusForbidden)
	env.do(t, http.MethodGet, "/api/products/missing", "", nil, http.StatusNotFound)

	rec = env.do(t, http.MethodGet, "/api/products", admin, nil, http.StatusOK)
	decodeBody(t, rec, &list)
	if len(list.Data) != 2 {
		t.Fatalf("admin list should show drafts, got %d", len(list.Data))
	}
}

func TestDeleteReferencedImageConflicts(t *testing.T) {
	env := setupTestEnv(t)
	admin := env.token(t, domain.RoleAdmin)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "cover.png")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	_, _ = part.Write([]byte("\x89PNG\r\n\x1a\nfake"))
	_ = form.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+admin)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload: expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	var image media.Image
	decodeBody(t, rec, &image)

	env.do(t, http.MethodPost, "/api/products", admin, map[string]any{
		"title": "Demo", "slug": "demo", "coverImageId": image.ID.String(),
	}, http.StatusCreated)

	rec = env.do(t, http.MethodDelete, "/api/upload?id="+image.ID.String(), admin, nil, http.StatusConflict)
	var failure errorResponse
	decodeBody(t, rec, &failure)
	if failure.Error != "Image is still being used and cannot be deleted" {
		t.Fatalf("unexpected conflict body %+v", failure)
	}

	rec = env.do(t, http.MethodGet, "/api/images", admin, nil, http.StatusOK)
	var list struct {
		Data []media.Image `json:"data"`
	}
	decodeBody(t, rec, &list)
	if len(list.Data) != 1 || list.Data[0].ID != image.ID {
		t.Fatalf("image record should be intact, got %+v", list.Data)
	}

	env.do(t, http.MethodDelete, "/api/products/demo", admin, nil, http.StatusNoContent)
	env.do(t, http.MethodDelete, "/api/upload?id="+image.ID.String(), admin, nil, http.StatusNoContent)
	env.do(t, http.MethodDelete, "/api/upload?id=not-a-uuid", admin, nil, http.StatusBadRequest)
}

func TestContentPatchResetsToDraft(t *testing.T) {
	env := setupTestEnv(t)
	admin := env.token(t, domain.RoleAdmin)

	rec := env.do(t, http.MethodPost, "/api/content", admin, map[string]any{
		"pageSlug": "home", "sectionType": "HERO_SECTION", "language": "en", "status": "PUBLISHED",
		"fields": []map[string]any{{"key": "heading", "value": "Database hero"}},
	}, http.StatusCreated)
	var record content.Record
	decodeBody(t, rec, &record)
	if record.Status != domain.StatusPublished {
		t.Fatalf("expected published record, got %s", record.Status)
	}

	rec = env.do(t, http.MethodGet, "/api/content/resolve?locale=en&page=home&section=HERO_SECTION", "", nil, http.StatusOK)
	var resolved resolutionResponse
	decodeBody(t, rec, &resolved)
	if resolved.Source != resolver.SourceDatabase {
		t.Fatalf("expected database source, got %s", resolved.Source)
	}

	rec = env.do(t, http.MethodPatch, "/api/content/"+record.ID.String(), admin, map[string]any{
		"fields": []map[string]any{{"key": "heading", "value": "Edited hero"}},
	}, http.StatusOK)
	decodeBody(t, rec, &record)
	if record.Status != domain.StatusDraft {
		t.Fatalf("patch must reset to draft, got %s", record.Status)
	}

	rec = env.do(t, http.MethodGet, "/api/content/resolve?locale=en&page=home&section=HERO_SECTION", "", nil, http.StatusOK)
	decodeBody(t, rec, &resolved)
	if resolved.Source != resolver.SourceStatic {
		t.Fatalf("draft edit should fall back to static, got %s", resolved.Source)
	}
	env.do(t, http.MethodGet, "/api/content/resolve?locale=en&page=home&section=NOPE", "", nil, http.StatusNotFound)
	env.do(t, http.MethodGet, "/api/content/resolve?locale=de&page=home&section=HERO_SECTION", "", nil, http.StatusBadRequest)
}

func TestPageWidgetValidation(t *testing.T) {
	env := setupTestEnv(t)
	admin := env.token(t, domain.RoleAdmin)

	rec := env.do(t, http.MethodPost, "/api/pages", admin, map[string]any{"slug": "x"}, http.StatusBadRequest)
	var failure errorResponse
	decodeBody(t, rec, &failure)
	if failure.Code != "validation_failed" || len(failure.Issues) == 0 {
		t.Fatalf("expected field issues, got %+v", failure)
	}

	rec = env.do(t, http.MethodPost, "/api/pages", admin, map[string]any{
		"title": "Launch",
		"sections": []map[string]any{{
			"sectionType": "HERO_SECTION",
			"widget":      map[string]any{"widgetType": "hero-simple", "align": "diagonal"},
		}},
	}, http.StatusUnprocessableEntity)
	decodeBody(t, rec, &failure)
	if failure.Code != "schema_validation_failed" || len(failure.Issues) == 0 {
		t.Fatalf("expected schema issues, got %+v", failure)
	}

	env.do(t, http.MethodPost, "/api/pages", admin, map[string]any{
		"title": "Launch",
		"sections": []map[string]any{{
			"sectionType": "HERO_SECTION",
			"widget":      map[string]any{"widgetType": "hero-simple", "heading": "Launch"},
		}},
	}, http.StatusCreated)
	env.do(t, http.MethodPost, "/api/pages", admin, map[string]any{"title": "Launch"}, http.StatusConflict)
}

func TestWidgetRoutes(t *testing.T) {
	env := setupTestEnv(t)
	admin := env.token(t, domain.RoleAdmin)

	rec := env.do(t, http.MethodGet, "/api/widgets", admin, nil, http.StatusOK)
	var list struct {
		Data []widgets.Definition `json:"data"`
	}
	decodeBody(t, rec, &list)
	if len(list.Data) != 5 {
		t.Fatalf("expected five built-in widgets, got %d", len(list.Data))
	}

	rec = env.do(t, http.MethodPost, "/api/widgets/preview", admin, map[string]any{
		"config": map[string]any{"widgetType": "mystery"},
	}, http.StatusOK)
	var preview widgetPreviewResponse
	decodeBody(t, rec, &preview)
	if !preview.Placeholder || preview.Code == "" || len(preview.Issues) == 0 {
		t.Fatalf("expected placeholder with issues, got %+v", preview)
	}
}

func TestSignInSessionAndSignOut(t *testing.T) {
	env := setupTestEnv(t)
	if _, err := env.users.EnsureAdmin(context.Background(), "admin@example.com", "correct-horse"); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	env.do(t, http.MethodPost, "/api/auth/signin", "", map[string]any{"email": "admin@example.com", "password": "wrong-password"}, http.StatusUnauthorized)
	rec := env.do(t, http.MethodPost, "/api/auth/signin", "", map[string]any{"email": "ADMIN@example.com", "password": "correct-horse"}, http.StatusOK)
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || !cookies[0].HttpOnly {
		t.Fatalf("expected session cookie, got %+v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("session: expected 200 got %d", rec.Code)
	}
	var session sessionResponse
	decodeBody(t, rec, &session)
	if session.Session == nil || session.Session.Role != domain.RoleSuperAdmin {
		t.Fatalf("unexpected session %+v", session)
	}

	env.do(t, http.MethodGet, "/api/auth/session", "", nil, http.StatusUnauthorized)
	rec = env.do(t, http.MethodPost, "/api/auth/signout", "", nil, http.StatusNoContent)
	if cleared := rec.Result().Cookies(); len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Fatalf("expected expired cookie, got %+v", cleared)
	}
}

func TestSignInFormRedirects(t *testing.T) {
	env := setupTestEnv(t)
	if _, err := env.users.EnsureAdmin(context.Background(), "admin@example.com", "correct-horse"); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	post := func(password, callback string) *httptest.ResponseRecorder {
		form := "email=admin%40example.com&password=" + password + "&callbackUrl=" + callback
		req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", strings.NewReader(form))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)
		return rec
	}

	rec := post("correct-horse", "%2Fadmin%2Fpreview%2Fen%2Fhome")
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin/preview/en/home" {
		t.Fatalf("expected redirect to callback, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	rec = post("correct-horse", "https%3A%2F%2Fevil.example")
	if rec.Header().Get("Location") != "/admin" {
		t.Fatalf("external callbacks must be ignored, got %q", rec.Header().Get("Location"))
	}
	rec = post("nope-nope", "%2Fadmin")
	if rec.Code != http.StatusSeeOther || !strings.HasPrefix(rec.Header().Get("Location"), "/auth/signin?error=") {
		t.Fatalf("expected redirect back to sign in, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestUserRoutes(t *testing.T) {
	env := setupTestEnv(t)
	admin := env.token(t, domain.RoleAdmin)

	rec := env.do(t, http.MethodPost, "/api/users", admin, map[string]any{"email": "editor@example.com", "password": "long-enough"}, http.StatusCreated)
	var user users.User
	decodeBody(t, rec, &user)
	if user.Role != domain.RoleUser {
		t.Fatalf("expected USER role, got %s", user.Role)
	}
	env.do(t, http.MethodPost, "/api/users", admin, map[string]any{"email": "boss@example.com", "password": "long-enough", "role": "SUPER_ADMIN"}, http.StatusForbidden)
	env.do(t, http.MethodPost, "/api/users", admin, map[string]any{"email": "editor@example.com", "password": "long-enough"}, http.StatusConflict)

	rec = env.do(t, http.MethodPut, "/api/users/"+user.ID.String()+"/role", admin, map[string]any{"role": "ADMIN"}, http.StatusOK)
	decodeBody(t, rec, &user)
	if user.Role != domain.RoleAdmin {
		t.Fatalf("expected ADMIN role, got %s", user.Role)
	}
	env.do(t, http.MethodPut, "/api/users/"+user.ID.String()+"/role", admin, map[string]any{"role": "SUPER_ADMIN"}, http.StatusForbidden)

	rec = env.do(t, http.MethodGet, "/api/roles", admin, nil, http.StatusOK)
	var roles struct {
		Data []domain.Role `json:"data"`
	}
	decodeBody(t, rec, &roles)
	if len(roles.Data) != 3 {
		t.Fatalf("expected three roles, got %v", roles.Data)
	}
	env.do(t, http.MethodGet, "/api/users", "", nil, http.StatusUnauthorized)
}

func TestTechnologyRoutes(t *testing.T) {
	env := setupTestEnv(t)
	admin := env.token(t, domain.RoleAdmin)

	rec := env.do(t, http.MethodPost, "/api/technologies", admin, map[string]any{"name": "Go", "category": "backend"}, http.StatusCreated)
	var tech technologies.Technology
	decodeBody(t, rec, &tech)
	env.do(t, http.MethodPost, "/api/technologies", admin, map[string]any{"name": "go", "category": "backend"}, http.StatusConflict)
	env.do(t, http.MethodGet, "/api/technologies/"+tech.ID.String(), "", nil, http.StatusOK)
	env.do(t, http.MethodDelete, "/api/technologies/"+tech.ID.String(), admin, nil, http.StatusNoContent)
	env.do(t, http.MethodGet, "/api/technologies/"+tech.ID.String(), "", nil, http.StatusNotFound)
}
