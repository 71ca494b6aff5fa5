package products

import (
	"context"
	"regexp"
	"strings"
	"time"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-showcase/internal/domain"
	"github.com/goliatone/go-showcase/internal/logging"
	"github.com/goliatone/go-showcase/internal/media"
	"github.com/goliatone/go-showcase/internal/validation"
	"github.com/goliatone/go-showcase/pkg/interfaces"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"
)

const productValidationCode = "PRODUCT_VALIDATION_FAILED"

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Service exposes the product catalogue.
type Service interface {
	Create(ctx context.Context, req SaveRequest) (*Product, error)
	Get(ctx context.Context, slug string, viewer domain.Viewer) (*Product, error)
	GetByID(ctx context.Context, id uuid.UUID, viewer domain.Viewer) (*Product, error)
	List(ctx context.Context, filter Filter, viewer domain.Viewer) ([]*Product, error)
	Update(ctx context.Context, slug string, req SaveRequest) (*Product, error)
	Publish(ctx context.Context, slug string) (*Product, error)
	Delete(ctx context.Context, slug string) error
	CountImageReferences(ctx context.Context, imageID uuid.UUID, url string) (int, error)
}

// SaveRequest is the full product payload used by create and update.
type SaveRequest struct {
	Slug         string          `json:"slug"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Features     []string        `json:"features"`
	Color        string          `json:"color"`
	Icon         string          `json:"icon"`
	CoverImage   string          `json:"coverImage"`
	CoverImageID string          `json:"coverImageId"`
	Gallery      []string        `json:"gallery"`
	Category     string          `json:"category"`
	Tags         []string        `json:"tags"`
	Price        *float64        `json:"price"`
	Language     string          `json:"language"`
	TechStack    *TechStackInput `json:"techStack"`
	Sections     []SectionInput  `json:"sections"`
}

type TechStackInput struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
}

type SectionInput struct {
	Title string `json:"title"`
	Cards []Card `json:"cards"`
}

// ImageLookup resolves library images referenced by URL.
type ImageLookup interface {
	GetByURL(ctx context.Context, url string) (*media.Image, error)
}

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

type IDGenerator func() uuid.UUID

func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithImageLookup lets the service map cover and gallery URLs to library
// images for usage accounting.
func WithImageLookup(lookup ImageLookup) ServiceOption {
	return func(s *service) {
		s.images = lookup
	}
}

// WithDefaultLanguage sets the language used when a payload omits it.
func WithDefaultLanguage(code string) ServiceOption {
	return func(s *service) {
		if code = strings.ToLower(strings.TrimSpace(code)); code != "" {
			s.defaultLanguage = code
		}
	}
}

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	repo            Repository
	images          ImageLookup
	now             func() time.Time
	id              IDGenerator
	defaultLanguage string
	logger          interfaces.Logger
}

func NewService(repo Repository, opts ...ServiceOption) Service {
	s := &service{
		repo:            repo,
		now:             time.Now,
		id:              uuid.New,
		defaultLanguage: "en",
		logger:          logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a new DRAFT product. A slug collision leaves the existing
// product untouched.
func (s *service) Create(ctx context.Context, req SaveRequest) (*Product, error) {
	slugValue, err := s.normalizeSlug(req.Slug, req.Title)
	if err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetBySlug(ctx, slugValue); err == nil {
		return nil, ErrSlugExists
	} else if !IsNotFound(err) {
		return nil, err
	}

	now := s.now()
	product := &Product{
		ID:        s.id(),
		Slug:      slugValue,
		Status:    domain.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.apply(ctx, product, req); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, err
	}
	s.log(ctx).Info("product created", "id", created.ID.String(), "slug", created.Slug)
	return created, nil
}

func (s *service) Get(ctx context.Context, slugValue string, viewer domain.Viewer) (*Product, error) {
	product, err := s.repo.GetBySlug(ctx, strings.TrimSpace(slugValue))
	if err != nil {
		return nil, err
	}
	if err := domain.CheckVisible(product.Status, viewer); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID, viewer domain.Viewer) (*Product, error) {
	if id == uuid.Nil {
		return nil, ErrProductIDRequired
	}
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckVisible(product.Status, viewer); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *service) List(ctx context.Context, filter Filter, viewer domain.Viewer) ([]*Product, error) {
	filter.Language = strings.ToLower(strings.TrimSpace(filter.Language))
	if !viewer.IsAdmin() {
		if filter.Status != "" && !filter.Status.IsPublished() {
			return []*Product{}, nil
		}
		filter.Status = domain.StatusPublished
	}
	return s.repo.List(ctx, filter)
}

// Update replaces the product wholesale and resets it to DRAFT.
func (s *service) Update(ctx context.Context, slugValue string, req SaveRequest) (*Product, error) {
	existing, err := s.repo.GetBySlug(ctx, strings.TrimSpace(slugValue))
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Slug) == "" {
		req.Slug = existing.Slug
	}
	newSlug, err := s.normalizeSlug(req.Slug, req.Title)
	if err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}
	if newSlug != existing.Slug {
		if _, err := s.repo.GetBySlug(ctx, newSlug); err == nil {
			return nil, ErrSlugExists
		} else if !IsNotFound(err) {
			return nil, err
		}
	}

	product := &Product{
		ID:        existing.ID,
		Slug:      newSlug,
		Status:    domain.StatusDraft,
		CreatedAt: existing.CreatedAt,
		UpdatedAt: s.now(),
	}
	if err := s.apply(ctx, product, req); err != nil {
		return nil, err
	}
	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return nil, err
	}
	s.log(ctx).Info("product updated", "id", updated.ID.String(), "slug", updated.Slug)
	return updated, nil
}

func (s *service) Publish(ctx context.Context, slugValue string) (*Product, error) {
	product, err := s.repo.GetBySlug(ctx, strings.TrimSpace(slugValue))
	if err != nil {
		return nil, err
	}
	if product.Status.IsPublished() {
		return product, nil
	}
	now := s.now()
	product.Status = domain.StatusPublished
	product.PublishedAt = &now
	product.UpdatedAt = now
	published, err := s.repo.Update(ctx, product)
	if err != nil {
		return nil, err
	}
	s.log(ctx).Info("product published", "id", published.ID.String(), "slug", published.Slug)
	return published, nil
}

func (s *service) Delete(ctx context.Context, slugValue string) error {
	product, err := s.repo.GetBySlug(ctx, strings.TrimSpace(slugValue))
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, product.ID); err != nil {
		return err
	}
	s.log(ctx).Info("product deleted", "id", product.ID.String(), "slug", product.Slug)
	return nil
}

// CountImageReferences counts products pointing at the image by id or URL.
// Each product counts once.
func (s *service) CountImageReferences(ctx context.Context, imageID uuid.UUID, url string) (int, error) {
	refs, err := s.repo.ListImageReferences(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, ref := range refs {
		if ref.References(imageID, strings.TrimSpace(url)) {
			count++
		}
	}
	return count, nil
}

func (s *service) normalizeSlug(value, title string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		value = strings.TrimSpace(title)
	}
	if value == "" {
		return "", ErrSlugRequired
	}
	normalized, err := slug.Normalize(value)
	if err != nil || normalized == "" {
		return "", ErrSlugInvalid
	}
	if !slug.IsValid(normalized) {
		return "", ErrSlugInvalid
	}
	return normalized, nil
}

func (s *service) validate(req SaveRequest) error {
	err := ozzo.ValidateStruct(&req,
		ozzo.Field(&req.Title, ozzo.Required, ozzo.Length(1, 200)),
		ozzo.Field(&req.Description, ozzo.Length(0, 5000)),
		ozzo.Field(&req.Color, ozzo.Match(hexColor)),
		ozzo.Field(&req.Price, ozzo.By(func(value any) error {
			price, _ := value.(*float64)
			if price != nil && *price < 0 {
				return ozzo.NewError("validation_price", "price must not be negative")
			}
			return nil
		})),
		ozzo.Field(&req.CoverImageID, ozzo.By(func(value any) error {
			raw, _ := value.(string)
			if strings.TrimSpace(raw) == "" {
				return nil
			}
			if _, err := uuid.Parse(strings.TrimSpace(raw)); err != nil {
				return ozzo.NewError("validation_uuid", "must be a valid image id")
			}
			return nil
		})),
		ozzo.Field(&req.Sections, ozzo.Each(ozzo.By(func(value any) error {
			section, _ := value.(SectionInput)
			if strings.TrimSpace(section.Title) == "" && len(section.Cards) == 0 {
				return ozzo.NewError("validation_section", "section needs a title or cards")
			}
			return nil
		}))),
	)
	return validation.WrapInput(err, "products: invalid product", productValidationCode)
}

// apply copies the payload onto product and resolves image references.
func (s *service) apply(ctx context.Context, product *Product, req SaveRequest) error {
	product.Title = strings.TrimSpace(req.Title)
	product.Description = strings.TrimSpace(req.Description)
	product.Features = cleanStrings(req.Features)
	product.Color = strings.TrimSpace(req.Color)
	product.Icon = strings.TrimSpace(req.Icon)
	product.CoverImage = strings.TrimSpace(req.CoverImage)
	product.Gallery = cleanStrings(req.Gallery)
	product.Category = strings.TrimSpace(req.Category)
	product.Tags = cleanStrings(req.Tags)
	product.Price = req.Price
	product.Language = strings.ToLower(strings.TrimSpace(req.Language))
	if product.Language == "" {
		product.Language = s.defaultLanguage
	}
	product.CoverImageID = nil
	if raw := strings.TrimSpace(req.CoverImageID); raw != "" {
		id, _ := uuid.Parse(raw)
		product.CoverImageID = &id
	}

	product.TechStack = nil
	if req.TechStack != nil {
		product.TechStack = &TechStackSection{
			ID:           s.id(),
			ProductID:    product.ID,
			Title:        strings.TrimSpace(req.TechStack.Title),
			Description:  strings.TrimSpace(req.TechStack.Description),
			Technologies: cleanStrings(req.TechStack.Technologies),
		}
	}
	product.Sections = make([]*ProductSection, 0, len(req.Sections))
	for i, section := range req.Sections {
		product.Sections = append(product.Sections, &ProductSection{
			ID:        s.id(),
			ProductID: product.ID,
			Title:     strings.TrimSpace(section.Title),
			Position:  i,
			Cards:     append([]Card{}, section.Cards...),
		})
	}

	ids, err := s.resolveImageIDs(ctx, product)
	if err != nil {
		return err
	}
	product.ImageIDs = ids
	return nil
}

func (s *service) resolveImageIDs(ctx context.Context, product *Product) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	if product.CoverImageID != nil {
		ids = append(ids, *product.CoverImageID)
	}
	if s.images == nil {
		return uniqueIDs(ids), nil
	}
	urls := append([]string{}, product.Gallery...)
	if product.CoverImage != "" && product.CoverImageID == nil {
		urls = append(urls, product.CoverImage)
	}
	for _, url := range urls {
		image, err := s.images.GetByURL(ctx, url)
		if err != nil {
			if media.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		ids = append(ids, image.ID)
	}
	return uniqueIDs(ids), nil
}

func (s *service) log(ctx context.Context) interfaces.Logger {
	return logging.FromContext(ctx, s.logger)
}

func cleanStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
