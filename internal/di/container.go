package di

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-showcase/internal/auth"
	"github.com/goliatone/go-showcase/internal/commands"
	"github.com/goliatone/go-showcase/internal/content"
	httpapi "github.com/goliatone/go-showcase/internal/http"
	"github.com/goliatone/go-showcase/internal/locale"
	"github.com/goliatone/go-showcase/internal/logging"
	"github.com/goliatone/go-showcase/internal/logging/gologger"
	"github.com/goliatone/go-showcase/internal/markdown"
	"github.com/goliatone/go-showcase/internal/media"
	"github.com/goliatone/go-showcase/internal/metrics"
	"github.com/goliatone/go-showcase/internal/pages"
	"github.com/goliatone/go-showcase/internal/products"
	"github.com/goliatone/go-showcase/internal/resolver"
	"github.com/goliatone/go-showcase/internal/runtimeconfig"
	"github.com/goliatone/go-showcase/internal/staticcontent"
	"github.com/goliatone/go-showcase/internal/technologies"
	"github.com/goliatone/go-showcase/internal/users"
	"github.com/goliatone/go-showcase/internal/widgets"
	"github.com/goliatone/go-showcase/pkg/interfaces"
	"github.com/uptrace/bun"
)

// Container wires module dependencies. Without a bun database every
// repository is in memory.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	bunDB          *bun.DB
	cacheService   repocache.CacheService
	keySerializer  repocache.KeySerializer
	objectStore    media.ObjectStore
	staticStore    *staticcontent.Store
	metrics        *metrics.Metrics
	markdown       *markdown.Parser
	hashCost       int

	contentRepo    content.Repository
	productRepo    products.Repository
	imageRepo      media.Repository
	technologyRepo technologies.Repository
	userRepo       users.Repository
	pageRepo       pages.Repository

	contentSvc    content.Service
	productSvc    products.Service
	mediaSvc      media.Service
	technologySvc technologies.Service
	userSvc       users.Service
	pageSvc       pages.Service

	registry      *widgets.Registry
	resolver      resolver.Resolver
	composer      *pages.Composer
	renderer      *pages.Renderer
	locales       *locale.Router
	tokens        *auth.TokenManager
	authenticator *auth.Authenticator

	api     *httpapi.API
	site    *httpapi.Site
	handler http.Handler
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB switches repositories to bun.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithLoggerProvider overrides the provider built from the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithCache overrides the default cache service.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithObjectStore overrides the upload directory store.
func WithObjectStore(store media.ObjectStore) Option {
	return func(c *Container) {
		c.objectStore = store
	}
}

// WithStaticStore overrides the static fallback store.
func WithStaticStore(store *staticcontent.Store) Option {
	return func(c *Container) {
		c.staticStore = store
	}
}

// WithMetrics shares a metrics set across containers.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Container) {
		c.metrics = m
	}
}

// WithHashCost sets the bcrypt cost used for new passwords.
func WithHashCost(cost int) Option {
	return func(c *Container) {
		c.hashCost = cost
	}
}

// NewContainer validates cfg and builds every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.bunDB == nil && !strings.EqualFold(strings.TrimSpace(cfg.Database.Driver), "memory") {
		return nil, ErrDatabaseRequired
	}

	steps := []func() error{
		c.configureLogger,
		c.configureCacheDefaults,
		c.configureRepositories,
		c.configureServices,
		c.configureSite,
		c.configureHTTP,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ErrDatabaseRequired is returned when a SQL driver is configured but no
// database was supplied.
var ErrDatabaseRequired = errors.New("di: bun database required for sql drivers")

func (c *Container) configureLogger() error {
	if c.loggerProvider != nil {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
	case "", "none":
		c.loggerProvider = noopProvider{}
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		return fmt.Errorf("%w: %s", runtimeconfig.ErrLoggingProviderUnknown, c.Config.Logging.Provider)
	}
	return nil
}

func (c *Container) configureCacheDefaults() error {
	if !c.Config.Cache.Enabled || c.bunDB == nil {
		return nil
	}
	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.Config.Cache.DefaultTTL > 0 {
			cfg.TTL = c.Config.Cache.DefaultTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err != nil {
			return fmt.Errorf("di: cache service: %w", err)
		}
		c.cacheService = service
	}
	if c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
	return nil
}

func (c *Container) configureRepositories() error {
	if c.bunDB != nil {
		images := media.NewBunRepository(c.bunDB)
		c.imageRepo = images
		c.productRepo = products.NewBunRepository(c.bunDB)
		c.contentRepo = content.NewBunRepository(c.bunDB)
		c.userRepo = users.NewBunRepository(c.bunDB)
		c.pageRepo = pages.NewBunRepository(c.bunDB)
		if c.cacheService != nil {
			c.technologyRepo = technologies.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		} else {
			c.technologyRepo = technologies.NewBunRepository(c.bunDB)
		}
		return nil
	}

	images := media.NewMemoryRepository()
	c.imageRepo = images
	c.productRepo = products.NewMemoryRepository(images)
	c.contentRepo = content.NewMemoryRepository()
	c.userRepo = users.NewMemoryRepository()
	c.pageRepo = pages.NewMemoryRepository()
	c.technologyRepo = technologies.NewMemoryRepository()
	return nil
}

func (c *Container) configureServices() error {
	cfg := c.Config
	locales := cfg.Locales()
	if c.metrics == nil {
		c.metrics = metrics.NewMetrics(nil)
	}
	if c.markdown == nil {
		c.markdown = markdown.NewParser(markdown.Options{})
	}

	c.registry = widgets.NewRegistry(
		widgets.WithLogger(logging.WidgetsLogger(c.loggerProvider)),
		widgets.WithObserver(c.metrics),
		widgets.WithMarkdown(c.markdown),
	)
	widgets.RegisterBuiltins(c.registry)

	c.contentSvc = content.NewService(c.contentRepo,
		content.WithLocales(locales...),
		content.WithLogger(logging.ContentLogger(c.loggerProvider)),
	)
	c.productSvc = products.NewService(c.productRepo,
		products.WithImageLookup(c.imageRepo),
		products.WithDefaultLanguage(cfg.DefaultLocale()),
		products.WithLogger(logging.ProductsLogger(c.loggerProvider)),
	)

	if c.objectStore == nil {
		store, err := media.NewFileStore(cfg.Media.Dir, cfg.Media.PublicPath)
		if err != nil {
			return fmt.Errorf("di: media store: %w", err)
		}
		c.objectStore = store
	}
	c.mediaSvc = media.NewService(c.imageRepo, c.objectStore,
		media.WithReferenceCounter(c.productSvc),
		media.WithMaxUploadSize(cfg.Media.MaxUploadSize),
		media.WithExtensions(cfg.Media.AllowedExtensions...),
		media.WithHTTPClient(&http.Client{Timeout: cfg.Media.RemoteTimeout}),
		media.WithLogger(logging.MediaLogger(c.loggerProvider)),
	)

	c.technologySvc = technologies.NewService(c.technologyRepo,
		technologies.WithLogger(logging.TechnologiesLogger(c.loggerProvider)),
	)

	userOpts := []users.ServiceOption{users.WithLogger(logging.UsersLogger(c.loggerProvider))}
	if c.hashCost > 0 {
		userOpts = append(userOpts, users.WithHashCost(c.hashCost))
	}
	c.userSvc = users.NewService(c.userRepo, userOpts...)

	c.pageSvc = pages.NewService(c.pageRepo,
		pages.WithLocales(locales...),
		pages.WithWidgetValidator(c.registry),
		pages.WithLogger(logging.PagesLogger(c.loggerProvider)),
	)
	return nil
}

func (c *Container) configureSite() error {
	cfg := c.Config
	if c.staticStore == nil {
		store, err := staticcontent.Open(cfg.Static.Dir)
		if err != nil {
			return err
		}
		c.staticStore = store
	}
	c.resolver = resolver.New(c.contentSvc, c.staticStore,
		resolver.WithLocales(cfg.Locales()...),
		resolver.WithObserver(c.metrics),
		resolver.WithLogger(logging.ResolverLogger(c.loggerProvider)),
	)
	c.composer = pages.NewComposer(c.resolver, c.registry,
		pages.WithPageFinder(c.pageSvc),
		pages.WithProductCatalog(c.productSvc),
		pages.WithMarkdown(c.markdown),
		pages.WithComposerLogger(logging.PagesLogger(c.loggerProvider)),
	)
	c.renderer = pages.NewRenderer(pages.RendererOptions{
		SiteName:      cfg.Site.Name,
		Locales:       cfg.Locales(),
		DefaultLocale: cfg.DefaultLocale(),
	})
	c.locales = locale.NewRouter(locale.Config{
		Locales:       cfg.Locales(),
		DefaultLocale: cfg.DefaultLocale(),
	})
	return nil
}

func (c *Container) configureHTTP() error {
	cfg := c.Config
	tokens, err := auth.NewTokenManager(cfg.Auth.Secret, cfg.Auth.SessionTTL)
	if err != nil {
		return err
	}
	c.tokens = tokens
	authLogger := logging.AuthLogger(c.loggerProvider)
	c.authenticator = auth.NewAuthenticator(tokens,
		auth.WithCookie(auth.CookieConfig{Name: cfg.Auth.CookieName, Secure: cfg.Auth.Secure, Path: "/"}),
		auth.WithSignInPath(cfg.Auth.SignInPath),
		auth.WithRoleSource(users.SessionRoles{Service: c.userSvc}),
		auth.WithLogger(authLogger),
	)

	httpLogger := logging.HTTPLogger(c.loggerProvider)
	c.api = httpapi.NewAPI(c.authenticator,
		httpapi.WithProductService(c.productSvc),
		httpapi.WithMediaService(c.mediaSvc),
		httpapi.WithTechnologyService(c.technologySvc),
		httpapi.WithUserService(c.userSvc),
		httpapi.WithContentService(c.contentSvc),
		httpapi.WithPageService(c.pageSvc),
		httpapi.WithWidgetCatalog(c.registry),
		httpapi.WithResolver(c.resolver),
		httpapi.WithUploadObserver(c.metrics),
		httpapi.WithMaxUploadSize(cfg.Media.MaxUploadSize),
		httpapi.WithLogger(httpLogger),
	)
	c.site = httpapi.NewSite(c.composer, c.renderer, c.locales, c.authenticator, httpLogger)

	uploadsDir := ""
	if _, ok := c.objectStore.(*media.FileStore); ok {
		uploadsDir = cfg.Media.Dir
	}
	handler, err := httpapi.NewHandler(httpapi.HandlerConfig{
		API:        c.api,
		Site:       c.site,
		Auth:       c.authenticator,
		Metrics:    c.metrics.Handler(),
		Observer:   c.metrics,
		UploadsDir: uploadsDir,
		UploadsURL: cfg.Media.PublicPath,
		Health:     c.health,
		Logger:     httpLogger,
	})
	if err != nil {
		return err
	}
	c.handler = handler
	return nil
}

func (c *Container) health(r *http.Request) error {
	if c.bunDB == nil {
		return nil
	}
	return c.bunDB.PingContext(r.Context())
}

// SeedAdmin makes sure a SUPER_ADMIN exists for email.
// StaticStore returns the static fallback content store.
func (c *Container) StaticStore() *staticcontent.Store {
	return c.staticStore
}

// RegisterCommands subscribes the command handlers on the global dispatcher.
func (c *Container) RegisterCommands() []commands.Subscription {
	return commands.Register(commands.Dependencies{
		Users:    c.userSvc,
		Content:  c.contentSvc,
		Static:   c.staticStore,
		Logger:   c.loggerProvider,
		Observer: c.metrics,
	})
}

func (c *Container) SeedAdmin(ctx context.Context, email, password string) (*users.User, error) {
	return c.userSvc.EnsureAdmin(ctx, email, password)
}

func (c *Container) Handler() http.Handler { return c.handler }

func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

func (c *Container) BunDB() *bun.DB { return c.bunDB }

func (c *Container) Metrics() *metrics.Metrics { return c.metrics }

func (c *Container) ContentService() content.Service { return c.contentSvc }

func (c *Container) ProductService() products.Service { return c.productSvc }

func (c *Container) MediaService() media.Service { return c.mediaSvc }

func (c *Container) TechnologyService() technologies.Service { return c.technologySvc }

func (c *Container) UserService() users.Service { return c.userSvc }

func (c *Container) PageService() pages.Service { return c.pageSvc }

func (c *Container) WidgetRegistry() *widgets.Registry { return c.registry }

func (c *Container) Resolver() resolver.Resolver { return c.resolver }

func (c *Container) Composer() *pages.Composer { return c.composer }

func (c *Container) TokenManager() *auth.TokenManager { return c.tokens }

type noopProvider struct{}

func (noopProvider) GetLogger(string) interfaces.Logger { return logging.NoOp() }
