package pages

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-showcase/internal/domain"
	"github.com/goliatone/go-showcase/internal/logging"
	"github.com/goliatone/go-showcase/internal/validation"
	"github.com/goliatone/go-showcase/pkg/interfaces"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"
)

const pageValidationCode = "PAGE_VALIDATION_FAILED"

// Service manages builder pages.
type Service interface {
	Create(ctx context.Context, req SaveRequest) (*Page, error)
	Get(ctx context.Context, id uuid.UUID, viewer domain.Viewer) (*Page, error)
	GetBySlug(ctx context.Context, slug, language string, viewer domain.Viewer) (*Page, error)
	List(ctx context.Context, filter Filter, viewer domain.Viewer) ([]*Page, error)
	Update(ctx context.Context, id uuid.UUID, req SaveRequest) (*Page, error)
	Publish(ctx context.Context, id uuid.UUID) (*Page, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SaveRequest is the full page payload used by create and update.
type SaveRequest struct {
	Slug        string         `json:"slug"`
	Language    string         `json:"language"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Sections    []SectionInput `json:"sections"`
}

type SectionInput struct {
	SectionType string         `json:"sectionType"`
	Widget      map[string]any `json:"widget,omitempty"`
}

// WidgetValidator checks widget configurations on write.
type WidgetValidator interface {
	Validate(config map[string]any) error
}

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

// WithLocales restricts page languages. The first locale is the default.
func WithLocales(locales ...string) ServiceOption {
	return func(s *service) {
		normalized := make([]string, 0, len(locales))
		for _, code := range locales {
			if code = strings.ToLower(strings.TrimSpace(code)); code != "" {
				normalized = append(normalized, code)
			}
		}
		if len(normalized) > 0 {
			s.locales = normalized
		}
	}
}

func WithWidgetValidator(validator WidgetValidator) ServiceOption {
	return func(s *service) {
		s.widgets = validator
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
	repo    Repository
	widgets WidgetValidator
	locales []string
	now     func() time.Time
	id      IDGenerator
	logger  interfaces.Logger
}

func NewService(repo Repository, opts ...ServiceOption) Service {
	s := &service{
		repo:    repo,
		locales: []string{"en", "th"},
		now:     time.Now,
		id:      uuid.New,
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, req SaveRequest) (*Page, error) {
	page, err := s.build(req)
	if err != nil {
		return nil, err
	}
	now := s.now()
	page.ID = s.id()
	page.Status = domain.StatusDraft
	page.CreatedAt = now
	page.UpdatedAt = now

	created, err := s.repo.Create(ctx, page)
	if err != nil {
		return nil, err
	}
	s.log(ctx).Info("page created", "id", created.ID.String(), "slug", created.Slug, "language", created.Language)
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID, viewer domain.Viewer) (*Page, error) {
	if id == uuid.Nil {
		return nil, ErrPageIDRequired
	}
	page, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckVisible(page.Status, viewer); err != nil {
		return nil, err
	}
	return page, nil
}

func (s *service) GetBySlug(ctx context.Context, slugValue, language string, viewer domain.Viewer) (*Page, error) {
	page, err := s.repo.GetBySlug(ctx, strings.ToLower(strings.TrimSpace(slugValue)), strings.ToLower(strings.TrimSpace(language)))
	if err != nil {
		return nil, err
	}
	if err := domain.CheckVisible(page.Status, viewer); err != nil {
		return nil, err
	}
	return page, nil
}

func (s *service) List(ctx context.Context, filter Filter, viewer domain.Viewer) ([]*Page, error) {
	filter.Language = strings.ToLower(strings.TrimSpace(filter.Language))
	if !viewer.IsAdmin() {
		if filter.Status != "" && !filter.Status.IsPublished() {
			return []*Page{}, nil
		}
		filter.Status = domain.StatusPublished
	}
	return s.repo.List(ctx, filter)
}

// Update replaces the page and its sections and resets it to DRAFT.
func (s *service) Update(ctx context.Context, id uuid.UUID, req SaveRequest) (*Page, error) {
	if id == uuid.Nil {
		return nil, ErrPageIDRequired
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Slug) == "" {
		req.Slug = existing.Slug
	}
	if strings.TrimSpace(req.Language) == "" {
		req.Language = existing.Language
	}
	page, err := s.build(req)
	if err != nil {
		return nil, err
	}
	page.ID = existing.ID
	page.Status = domain.StatusDraft
	page.CreatedAt = existing.CreatedAt
	page.UpdatedAt = s.now()

	updated, err := s.repo.Update(ctx, page)
	if err != nil {
		return nil, err
	}
	s.log(ctx).Info("page updated", "id", updated.ID.String(), "slug", updated.Slug)
	return updated, nil
}

func (s *service) Publish(ctx context.Context, id uuid.UUID) (*Page, error) {
	if id == uuid.Nil {
		return nil, ErrPageIDRequired
	}
	page, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if page.Status.IsPublished() {
		return page, nil
	}
	now := s.now()
	page.Status = domain.StatusPublished
	page.PublishedAt = &now
	page.UpdatedAt = now
	published, err := s.repo.Update(ctx, page)
	if err != nil {
		return nil, err
	}
	s.log(ctx).Info("page published", "id", published.ID.String(), "slug", published.Slug)
	return published, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrPageIDRequired
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log(ctx).Info("page deleted", "id", id.String())
	return nil
}

// build validates req and returns an unsaved page. Field problems are
// reported together; widget schema problems are reported after them.
func (s *service) build(req SaveRequest) (*Page, error) {
	req.Language = strings.ToLower(strings.TrimSpace(req.Language))
	if req.Language == "" {
		req.Language = s.locales[0]
	}
	req.Title = strings.TrimSpace(req.Title)

	slugSource := strings.TrimSpace(req.Slug)
	if slugSource == "" {
		slugSource = req.Title
	}
	slugValue, slugErr := slug.Normalize(slugSource)

	errs := ozzo.Errors{}
	if slugSource == "" {
		errs["slug"] = ozzo.NewError("validation_required", "slug is required")
	} else if slugErr != nil || slugValue == "" || !slug.IsValid(slugValue) {
		errs["slug"] = ozzo.NewError("validation_slug", "slug contains invalid characters")
	}
	if err := ozzo.ValidateStruct(&req,
		ozzo.Field(&req.Title, ozzo.Required, ozzo.Length(1, 200)),
		ozzo.Field(&req.Description, ozzo.Length(0, 1000)),
		ozzo.Field(&req.Language, ozzo.By(func(any) error {
			if !slices.Contains(s.locales, req.Language) {
				return ozzo.NewError("validation_locale", "language is not supported")
			}
			return nil
		})),
	); err != nil {
		if fieldErrs, ok := err.(ozzo.Errors); ok {
			for key, value := range fieldErrs {
				errs[key] = value
			}
		} else {
			return nil, err
		}
	}
	for i, section := range req.Sections {
		if strings.TrimSpace(section.SectionType) == "" {
			errs[fmt.Sprintf("sections.%d.sectionType", i)] = ozzo.NewError("validation_required", "section type is required")
		}
	}
	if len(errs) > 0 {
		return nil, validation.WrapInput(errs, "page payload is invalid", pageValidationCode)
	}

	page := &Page{
		Slug:        slugValue,
		Language:    req.Language,
		Title:       req.Title,
		Description: strings.TrimSpace(req.Description),
		Sections:    make([]*Section, 0, len(req.Sections)),
	}
	for i, input := range req.Sections {
		if input.Widget != nil && s.widgets != nil {
			if err := s.widgets.Validate(input.Widget); err != nil {
				return nil, fmt.Errorf("sections.%d.widget: %w", i, err)
			}
		}
		page.Sections = append(page.Sections, &Section{
			Position:    i,
			SectionType: strings.TrimSpace(input.SectionType),
			Widget:      cloneMap(input.Widget),
		})
	}
	return page, nil
}

func (s *service) log(ctx context.Context) interfaces.Logger {
	return logging.FromContext(ctx, s.logger)
}
