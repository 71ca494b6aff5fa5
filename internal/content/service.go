package content

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-showcase/internal/domain"
	"github.com/goliatone/go-showcase/internal/logging"
	"github.com/goliatone/go-showcase/internal/validation"
	"github.com/goliatone/go-showcase/pkg/interfaces"
	"github.com/google/uuid"
)

const contentValidationCode = "CONTENT_VALIDATION_FAILED"

// Service exposes content record use-cases. Read operations apply the
// visibility rule for the supplied viewer; write operations assume the
// caller was authorized upstream.
type Service interface {
	Get(ctx context.Context, key Key, viewer domain.Viewer) (*Record, error)
	GetByID(ctx context.Context, id uuid.UUID, viewer domain.Viewer) (*Record, error)
	List(ctx context.Context, filter Filter, viewer domain.Viewer) ([]*Record, error)
	Create(ctx context.Context, req CreateRequest) (*Record, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Record, error)
	Publish(ctx context.Context, id uuid.UUID) (*Record, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// FieldInput is a field as supplied by the admin console.
type FieldInput struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// ButtonInput is a button as supplied by the admin console.
type ButtonInput struct {
	Label string `json:"label"`
	Text  string `json:"text"`
	URL   string `json:"url"`
}

// CreateRequest captures a new record. Status defaults to DRAFT.
type CreateRequest struct {
	PageSlug    string        `json:"pageSlug"`
	SectionType string        `json:"sectionType"`
	Language    string        `json:"language"`
	Status      string        `json:"status"`
	Fields      []FieldInput  `json:"fields"`
	Buttons     []ButtonInput `json:"buttons"`
}

// UpdateRequest replaces fields and buttons. Nil key parts keep their value.
type UpdateRequest struct {
	PageSlug    *string       `json:"pageSlug,omitempty"`
	SectionType *string       `json:"sectionType,omitempty"`
	Language    *string       `json:"language,omitempty"`
	Fields      []FieldInput  `json:"fields"`
	Buttons     []ButtonInput `json:"buttons"`
}

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

// WithClock overrides the clock used to stamp records.
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

// WithLocales restricts the languages records may be written in.
func WithLocales(locales ...string) ServiceOption {
	return func(s *service) {
		s.locales = map[string]struct{}{}
		for _, code := range locales {
			code = strings.ToLower(strings.TrimSpace(code))
			if code != "" {
				s.locales[code] = struct{}{}
			}
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
	repo    Repository
	now     func() time.Time
	id      IDGenerator
	locales map[string]struct{}
	logger  interfaces.Logger
}

// NewService constructs a content service backed by repo.
func NewService(repo Repository, opts ...ServiceOption) Service {
	s := &service{
		repo:   repo,
		now:    time.Now,
		id:     uuid.New,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Get(ctx context.Context, key Key, viewer domain.Viewer) (*Record, error) {
	record, err := s.repo.GetByKey(ctx, key.Normalize())
	if err != nil {
		return nil, err
	}
	if err := domain.CheckVisible(record.Status, viewer); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID, viewer domain.Viewer) (*Record, error) {
	if id == uuid.Nil {
		return nil, ErrRecordIDRequired
	}
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckVisible(record.Status, viewer); err != nil {
		return nil, err
	}
	return record, nil
}

// List never exposes drafts to non-admin viewers, whatever the filter asks.
func (s *service) List(ctx context.Context, filter Filter, viewer domain.Viewer) ([]*Record, error) {
	key := Key{Page: filter.Page, Section: filter.Section, Language: filter.Language}.Normalize()
	filter.Page, filter.Section, filter.Language = key.Page, key.Section, key.Language
	if !viewer.IsAdmin() {
		if filter.Status != "" && !filter.Status.IsPublished() {
			return []*Record{}, nil
		}
		filter.Status = domain.StatusPublished
	}
	return s.repo.List(ctx, filter)
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Record, error) {
	key := Key{Page: req.PageSlug, Section: req.SectionType, Language: req.Language}.Normalize()
	status, statusOK := domain.ParseStatus(req.Status)
	if err := s.validate(key, req.Fields, req.Buttons, statusOK); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByKey(ctx, key); err == nil {
		return nil, ErrContentExists
	} else if !IsNotFound(err) {
		return nil, err
	}

	now := s.now()
	record := &Record{
		ID:          s.id(),
		PageSlug:    key.Page,
		SectionType: key.Section,
		Language:    key.Language,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if status.IsPublished() {
		record.PublishedAt = &now
	}
	record.Fields, record.Buttons = s.buildChildren(record.ID, req.Fields, req.Buttons)

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	s.log(ctx).Info("content record created", "id", created.ID.String(), "key", created.Key().String(), "status", string(created.Status))
	return created, nil
}

// Update replaces fields and buttons wholesale and resets the record to
// DRAFT. Concurrent edits resolve last writer wins.
func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Record, error) {
	if id == uuid.Nil {
		return nil, ErrRecordIDRequired
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	key := existing.Key()
	if req.PageSlug != nil {
		key.Page = *req.PageSlug
	}
	if req.SectionType != nil {
		key.Section = *req.SectionType
	}
	if req.Language != nil {
		key.Language = *req.Language
	}
	key = key.Normalize()
	if err := s.validate(key, req.Fields, req.Buttons, true); err != nil {
		return nil, err
	}

	existing.PageSlug = key.Page
	existing.SectionType = key.Section
	existing.Language = key.Language
	existing.Status = domain.StatusDraft
	existing.PublishedAt = nil
	existing.UpdatedAt = s.now()
	existing.Fields, existing.Buttons = s.buildChildren(existing.ID, req.Fields, req.Buttons)

	updated, err := s.repo.Replace(ctx, existing)
	if err != nil {
		return nil, err
	}
	s.log(ctx).Info("content record updated", "id", updated.ID.String(), "key", updated.Key().String())
	return updated, nil
}

// Publish moves a DRAFT record to PUBLISHED. Publishing twice is a no-op.
func (s *service) Publish(ctx context.Context, id uuid.UUID) (*Record, error) {
	if id == uuid.Nil {
		return nil, ErrRecordIDRequired
	}
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Status.IsPublished() {
		return record, nil
	}
	now := s.now()
	record.Status = domain.StatusPublished
	record.PublishedAt = &now
	record.UpdatedAt = now

	published, err := s.repo.Replace(ctx, record)
	if err != nil {
		return nil, err
	}
	s.log(ctx).Info("content record published", "id", published.ID.String(), "key", published.Key().String())
	return published, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrRecordIDRequired
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log(ctx).Info("content record deleted", "id", id.String())
	return nil
}

func (s *service) validate(key Key, fields []FieldInput, buttons []ButtonInput, statusOK bool) error {
	switch {
	case key.Page == "":
		return ErrPageRequired
	case key.Section == "":
		return ErrSectionRequired
	case key.Language == "":
		return ErrLanguageRequired
	}

	errs := ozzo.Errors{}
	if len(s.locales) > 0 {
		if _, ok := s.locales[key.Language]; !ok {
			errs["language"] = ozzo.NewError("validation_unsupported_locale", "unsupported language "+key.Language)
		}
	}
	if !statusOK {
		errs["status"] = ozzo.NewError("validation_status", "status must be DRAFT or PUBLISHED")
	}

	seen := map[string]struct{}{}
	for i, field := range fields {
		fieldKey := strings.TrimSpace(field.Key)
		location := "fields." + strconv.Itoa(i)
		if fieldKey == "" {
			errs[location] = ozzo.NewError("validation_required", "field key is required")
			continue
		}
		if _, dup := seen[fieldKey]; dup {
			errs[location] = ozzo.NewError("validation_duplicate", "duplicate field key "+fieldKey)
			continue
		}
		seen[fieldKey] = struct{}{}
		if _, ok := domain.ParseFieldType(field.Type); !ok {
			errs[location] = ozzo.NewError("validation_field_type", "field type must be SHORT or LONG")
		}
	}
	for i := range buttons {
		button := buttons[i]
		if err := ozzo.ValidateStruct(&button,
			ozzo.Field(&button.Text, ozzo.Required),
			ozzo.Field(&button.URL, ozzo.Required),
		); err != nil {
			errs["buttons."+strconv.Itoa(i)] = err
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return validation.WrapInput(errs, "content: invalid record", contentValidationCode)
}

func (s *service) buildChildren(recordID uuid.UUID, fields []FieldInput, buttons []ButtonInput) ([]*Field, []*Button) {
	outFields := make([]*Field, 0, len(fields))
	for i, input := range fields {
		fieldType, _ := domain.ParseFieldType(input.Type)
		outFields = append(outFields, &Field{
			ID:       s.id(),
			RecordID: recordID,
			Key:      strings.TrimSpace(input.Key),
			Label:    strings.TrimSpace(input.Label),
			Type:     fieldType,
			Value:    input.Value,
			Order:    i,
		})
	}
	outButtons := make([]*Button, 0, len(buttons))
	for i, input := range buttons {
		outButtons = append(outButtons, &Button{
			ID:       s.id(),
			RecordID: recordID,
			Label:    strings.TrimSpace(input.Label),
			Text:     strings.TrimSpace(input.Text),
			URL:      strings.TrimSpace(input.URL),
			Order:    i,
		})
	}
	return outFields, outButtons
}

func (s *service) log(ctx context.Context) interfaces.Logger {
	return logging.FromContext(ctx, s.logger)
}

// IsVisibilityError reports whether err came from the read visibility rule.
func IsVisibilityError(err error) bool {
	return errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrForbidden)
}
