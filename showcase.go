package showcase

import (
	"context"
	"net/http"

	"github.com/goliatone/go-showcase/internal/content"
	"github.com/goliatone/go-showcase/internal/di"
	"github.com/goliatone/go-showcase/internal/media"
	"github.com/goliatone/go-showcase/internal/migrations"
	"github.com/goliatone/go-showcase/internal/pages"
	"github.com/goliatone/go-showcase/internal/products"
	"github.com/goliatone/go-showcase/internal/resolver"
	"github.com/goliatone/go-showcase/internal/technologies"
	"github.com/goliatone/go-showcase/internal/users"
	"github.com/goliatone/go-showcase/internal/widgets"
	"github.com/uptrace/bun"
)

// ContentService exports the section content contract.
type ContentService = content.Service

// ProductService exports the product catalogue contract.
type ProductService = products.Service

// MediaService exports the image library contract.
type MediaService = media.Service

// TechnologyService exports the technology catalogue contract.
type TechnologyService = technologies.Service

// UserService exports the admin user contract.
type UserService = users.Service

// PageService exports the builder page contract.
type PageService = pages.Service

// Resolver exports the database-then-static content resolver.
type Resolver = resolver.Resolver

// Widget registration types for engineers adding widget kinds in code.
type (
	WidgetRegistration  = widgets.Registration
	WidgetFactory       = widgets.Factory
	WidgetInput         = widgets.Input
	WidgetDefinition    = widgets.Definition
	WidgetRenderContext = widgets.RenderContext
)

// Option customises the DI container.
type Option = di.Option

var (
	WithBunDB          = di.WithBunDB
	WithLoggerProvider = di.WithLoggerProvider
	WithCache          = di.WithCache
	WithObjectStore    = di.WithObjectStore
	WithStaticStore    = di.WithStaticStore
	WithMetrics        = di.WithMetrics
	WithHashCost       = di.WithHashCost
)

// Module represents the top level showcase runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Migrate creates or upgrades the schema and reports the steps it applied.
func Migrate(ctx context.Context, db *bun.DB) ([]string, error) {
	return migrations.Bootstrap(ctx, db)
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Handler returns the HTTP handler serving the site, the admin console and the API.
func (m *Module) Handler() http.Handler {
	return m.container.Handler()
}

// SeedAdmin makes sure a SUPER_ADMIN account exists for email.
func (m *Module) SeedAdmin(ctx context.Context, email, password string) (*users.User, error) {
	return m.container.SeedAdmin(ctx, email, password)
}

// RegisterWidget adds a widget kind next to the built-in ones.
func (m *Module) RegisterWidget(kind string, reg WidgetRegistration) error {
	return m.container.WidgetRegistry().Register(kind, reg)
}

// Widgets lists the registered widget kinds.
func (m *Module) Widgets() []WidgetDefinition {
	return m.container.WidgetRegistry().List()
}

func (m *Module) Content() ContentService { return m.container.ContentService() }

func (m *Module) Products() ProductService { return m.container.ProductService() }

func (m *Module) Media() MediaService { return m.container.MediaService() }

func (m *Module) Technologies() TechnologyService { return m.container.TechnologyService() }

func (m *Module) Users() UserService { return m.container.UserService() }

func (m *Module) Pages() PageService { return m.container.PageService() }

func (m *Module) Resolver() Resolver { return m.container.Resolver() }
