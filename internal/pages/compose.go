package pages

import (
	"context"
	"errors"
	"html/template"
	"maps"
	"slices"
	"strings"

	"github.com/goliatone/go-showcase/internal/content"
	"github.com/goliatone/go-showcase/internal/domain"
	"github.com/goliatone/go-showcase/internal/logging"
	"github.com/goliatone/go-showcase/internal/markdown"
	"github.com/goliatone/go-showcase/internal/products"
	"github.com/goliatone/go-showcase/internal/resolver"
	"github.com/goliatone/go-showcase/internal/widgets"
	"github.com/goliatone/go-showcase/pkg/interfaces"
)

// Section content origins reported on composed sections.
const (
	OriginDatabase = string(resolver.SourceDatabase)
	OriginStatic   = string(resolver.SourceStatic)
	OriginDefault  = "default"
	OriginBuilder  = "builder"
)

// ContentResolver is the resolver surface the composer needs.
type ContentResolver interface {
	Resolve(ctx context.Context, req resolver.Request) (*resolver.Resolution, error)
	Locales() []string
}

// WidgetRenderer turns widget configurations into HTML.
type WidgetRenderer interface {
	Resolve(ctx context.Context, config map[string]any, rc widgets.RenderContext) widgets.Rendered
}

// PageFinder loads builder pages.
type PageFinder interface {
	GetBySlug(ctx context.Context, slug, language string, viewer domain.Viewer) (*Page, error)
}

// ProductCatalog feeds the products listing and detail pages.
type ProductCatalog interface {
	Get(ctx context.Context, slug string, viewer domain.Viewer) (*products.Product, error)
	List(ctx context.Context, filter products.Filter, viewer domain.Viewer) ([]*products.Product, error)
}

// ComposeRequest addresses a page. An empty slug means home.
type ComposeRequest struct {
	Locale  string
	Slug    string
	Preview bool
	Viewer  domain.Viewer
}

// ComposedSection is one rendered slot.
type ComposedSection struct {
	SectionType string        `json:"sectionType"`
	Kind        string        `json:"kind"`
	Origin      string        `json:"origin"`
	HTML        template.HTML `json:"html"`
	Placeholder bool          `json:"placeholder,omitempty"`
}

// ComposedPage is a page ready for the document renderer.
type ComposedPage struct {
	Slug        string            `json:"slug"`
	Locale      string            `json:"locale"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Preview     bool              `json:"preview"`
	Builder     bool              `json:"builder"`
	Sections    []ComposedSection `json:"sections"`
}

type ComposerOption func(*Composer)

func WithPageFinder(finder PageFinder) ComposerOption {
	return func(c *Composer) {
		c.pages = finder
	}
}

func WithProductCatalog(catalog ProductCatalog) ComposerOption {
	return func(c *Composer) {
		c.products = catalog
	}
}

func WithMarkdown(parser *markdown.Parser) ComposerOption {
	return func(c *Composer) {
		if parser != nil {
			c.markdown = parser
		}
	}
}

func WithComposerLogger(logger interfaces.Logger) ComposerOption {
	return func(c *Composer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Composer assembles pages from layouts or builder pages.
type Composer struct {
	resolver ContentResolver
	widgets  WidgetRenderer
	pages    PageFinder
	products ProductCatalog
	markdown *markdown.Parser
	logger   interfaces.Logger
}

func NewComposer(res ContentResolver, renderer WidgetRenderer, opts ...ComposerOption) *Composer {
	c := &Composer{
		resolver: res,
		widgets:  renderer,
		markdown: markdown.NewParser(markdown.Options{}),
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose builds the page for req. A builder page (published, or any status
// in an admin preview) wins over the code layout for the same slug.
func (c *Composer) Compose(ctx context.Context, req ComposeRequest) (*ComposedPage, error) {
	locale := strings.ToLower(strings.TrimSpace(req.Locale))
	if !slices.Contains(c.resolver.Locales(), locale) {
		return nil, resolver.ErrUnsupportedLocale
	}
	slugValue := strings.ToLower(strings.Trim(strings.TrimSpace(req.Slug), "/"))
	if slugValue == "" {
		slugValue = "home"
	}
	preview := req.Preview && req.Viewer.IsAdmin()
	req.Locale, req.Slug, req.Preview = locale, slugValue, preview

	if page, ok := c.findBuilderPage(ctx, req); ok {
		specs := make([]SectionSpec, 0, len(page.Sections))
		for _, section := range page.Sections {
			specs = append(specs, SectionSpec{SectionType: section.SectionType, Widget: section.Widget})
		}
		sections, err := c.composeSections(ctx, req, specs, true)
		if err != nil {
			return nil, err
		}
		return &ComposedPage{
			Slug:        slugValue,
			Locale:      locale,
			Title:       page.Title,
			Description: page.Description,
			Preview:     preview,
			Builder:     true,
			Sections:    sections,
		}, nil
	}

	layout, ok := LayoutFor(slugValue)
	if !ok {
		return nil, ErrPageNotFound
	}
	sections, err := c.composeSections(ctx, req, layout.Sections, false)
	if err != nil {
		return nil, err
	}
	return &ComposedPage{
		Slug:     slugValue,
		Locale:   locale,
		Title:    layout.Title(locale),
		Preview:  preview,
		Sections: sections,
	}, nil
}

// ComposeProduct builds a product detail page. Missing or hidden products
// are reported as ErrPageNotFound.
func (c *Composer) ComposeProduct(ctx context.Context, locale, slugValue string, viewer domain.Viewer) (*ComposedPage, error) {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if !slices.Contains(c.resolver.Locales(), locale) {
		return nil, resolver.ErrUnsupportedLocale
	}
	if c.products == nil {
		return nil, ErrPageNotFound
	}
	product, err := c.products.Get(ctx, slugValue, viewer)
	if err != nil {
		if products.IsNotFound(err) || errors.Is(err, domain.ErrUnauthenticated) || errors.Is(err, domain.ErrForbidden) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}
	html, err := renderProductDetail(locale, product, viewer.IsAdmin() && !product.Status.IsPublished())
	if err != nil {
		return nil, err
	}
	return &ComposedPage{
		Slug:        "products/" + product.Slug,
		Locale:      locale,
		Title:       product.Title,
		Description: product.Description,
		Preview:     !product.Status.IsPublished(),
		Sections: []ComposedSection{{
			SectionType: "PRODUCT_DETAIL",
			Kind:        "product",
			Origin:      OriginDatabase,
			HTML:        html,
		}},
	}, nil
}

func (c *Composer) findBuilderPage(ctx context.Context, req ComposeRequest) (*Page, bool) {
	if c.pages == nil {
		return nil, false
	}
	viewer := domain.Anonymous()
	if req.Preview {
		viewer = req.Viewer
	}
	page, err := c.pages.GetBySlug(ctx, req.Slug, req.Locale, viewer)
	if err == nil {
		return page, true
	}
	if !IsNotFound(err) && !errors.Is(err, domain.ErrUnauthenticated) && !errors.Is(err, domain.ErrForbidden) {
		logging.FromContext(ctx, c.logger).Warn("builder page lookup failed, using layout", "slug", req.Slug, "locale", req.Locale, "error", err)
	}
	return nil, false
}

func (c *Composer) composeSections(ctx context.Context, req ComposeRequest, specs []SectionSpec, builder bool) ([]ComposedSection, error) {
	out := make([]ComposedSection, 0, len(specs))
	for _, spec := range specs {
		section, ok, err := c.composeSection(ctx, req, spec, builder)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, section)
		}
	}
	return out, nil
}

func (c *Composer) composeSection(ctx context.Context, req ComposeRequest, spec SectionSpec, builder bool) (ComposedSection, bool, error) {
	body, origin, err := c.sectionContent(ctx, req, spec)
	if err != nil {
		return ComposedSection{}, false, err
	}
	hasWidget := spec.Widget != nil
	if body == nil && !(builder && hasWidget) {
		return ComposedSection{}, false, nil
	}
	if body == nil {
		body = &widgets.Content{}
		origin = OriginBuilder
	}

	section := ComposedSection{SectionType: spec.SectionType, Origin: origin}
	switch {
	case hasWidget:
		config := maps.Clone(spec.Widget)
		config[widgets.ContentKey] = body.Map()
		rendered := c.widgets.Resolve(ctx, config, widgets.RenderContext{Locale: req.Locale, IsPreview: req.Preview})
		section.Kind = rendered.Kind
		section.HTML = rendered.HTML
		section.Placeholder = rendered.Placeholder
	case spec.Source == SourceProducts:
		html, err := c.renderProducts(ctx, req, spec.SectionType, *body)
		if err != nil {
			return ComposedSection{}, false, err
		}
		section.Kind = string(SourceProducts)
		section.HTML = html
	default:
		html, err := renderGenericSection(spec.SectionType, *body, c.markdown, req.Preview)
		if err != nil {
			return ComposedSection{}, false, err
		}
		section.Kind = "section"
		section.HTML = html
	}
	return section, true, nil
}

// sectionContent resolves the content for spec, falling back to its default.
// A nil result means the section has nothing to show.
func (c *Composer) sectionContent(ctx context.Context, req ComposeRequest, spec SectionSpec) (*widgets.Content, string, error) {
	res, err := c.resolver.Resolve(ctx, resolver.Request{
		Locale:  req.Locale,
		Page:    req.Slug,
		Section: spec.SectionType,
		Preview: req.Preview,
		Viewer:  req.Viewer,
	})
	switch {
	case err == nil:
		body := ContentOf(res.Record)
		return &body, string(res.Source), nil
	case errors.Is(err, resolver.ErrNotFound):
		if spec.Default != nil {
			body := *spec.Default
			return &body, OriginDefault, nil
		}
		return nil, "", nil
	default:
		return nil, "", err
	}
}

func (c *Composer) renderProducts(ctx context.Context, req ComposeRequest, sectionType string, body widgets.Content) (template.HTML, error) {
	var items []*products.Product
	if c.products != nil {
		viewer := domain.Anonymous()
		if req.Preview {
			viewer = req.Viewer
		}
		listed, err := c.products.List(ctx, products.Filter{Language: req.Locale}, viewer)
		if err != nil {
			logging.FromContext(ctx, c.logger).Warn("product listing failed", "locale", req.Locale, "error", err)
		}
		items = listed
	}
	return renderProductGrid(req.Locale, sectionType, body, items, req.Preview)
}

// ContentOf converts a stored record into widget content.
func ContentOf(record *content.Record) widgets.Content {
	out := widgets.Content{}
	if record == nil {
		return out
	}
	for _, field := range record.Fields {
		if field == nil {
			continue
		}
		out.Fields = append(out.Fields, widgets.ContentField{Key: field.Key, Type: string(field.Type), Value: field.Value})
	}
	for _, button := range record.Buttons {
		if button == nil {
			continue
		}
		out.Buttons = append(out.Buttons, widgets.ContentButton{Label: button.Label, Text: button.Text, URL: button.URL})
	}
	return out
}
