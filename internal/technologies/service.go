package technologies

import (
	"context"
	"strings"
	"time"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-showcase/internal/logging"
	"github.com/goliatone/go-showcase/internal/validation"
	"github.com/goliatone/go-showcase/pkg/interfaces"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"
)

const technologyValidationCode = "TECHNOLOGY_VALIDATION_FAILED"

// Service manages the technology catalogue.
type Service interface {
	Create(ctx context.Context, req SaveRequest) (*Technology, error)
	Get(ctx context.Context, id uuid.UUID) (*Technology, error)
	List(ctx context.Context, category string) ([]*Technology, error)
	Update(ctx context.Context, id uuid.UUID, req SaveRequest) (*Technology, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type SaveRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

type ServiceOption func(*service)

func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
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
	repo   Repository
	now    func() time.Time
	logger interfaces.Logger
}

func NewService(repo Repository, opts ...ServiceOption) Service {
	s := &service{repo: repo, now: time.Now, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, req SaveRequest) (*Technology, error) {
	key, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByNameKey(ctx, key); err == nil {
		return nil, ErrNameExists
	} else if !IsNotFound(err) {
		return nil, err
	}

	now := s.now()
	record := &Technology{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
	apply(record, req, key)
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx, s.logger).Info("technology created", "id", created.ID.String(), "name", created.Name)
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Technology, error) {
	if id == uuid.Nil {
		return nil, ErrIDRequired
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, category string) ([]*Technology, error) {
	return s.repo.List(ctx, strings.TrimSpace(category))
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req SaveRequest) (*Technology, error) {
	if id == uuid.Nil {
		return nil, ErrIDRequired
	}
	key, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if other, err := s.repo.GetByNameKey(ctx, key); err == nil && other.ID != id {
		return nil, ErrNameExists
	} else if err != nil && !IsNotFound(err) {
		return nil, err
	}
	apply(record, req, key)
	record.UpdatedAt = s.now()
	updated, err := s.repo.Update(ctx, record)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx, s.logger).Info("technology updated", "id", updated.ID.String(), "name", updated.Name)
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrIDRequired
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logging.FromContext(ctx, s.logger).Info("technology deleted", "id", id.String())
	return nil
}

func (s *service) validate(req SaveRequest) (string, error) {
	key := nameKey(req.Name)
	if key == "" {
		return "", ErrNameRequired
	}
	err := ozzo.ValidateStruct(&req,
		ozzo.Field(&req.Name, ozzo.Length(1, 80)),
		ozzo.Field(&req.Category, ozzo.Length(0, 80)),
		ozzo.Field(&req.Description, ozzo.Length(0, 1000)),
	)
	if err != nil {
		return "", validation.WrapInput(err, "technologies: invalid technology", technologyValidationCode)
	}
	return key, nil
}

func apply(record *Technology, req SaveRequest, key string) {
	record.Name = strings.Join(strings.Fields(req.Name), " ")
	record.NameKey = key
	if normalized, err := slug.Normalize(record.Name); err == nil && normalized != "" {
		record.Slug = normalized
	} else {
		record.Slug = strings.ReplaceAll(key, " ", "-")
	}
	record.Category = strings.TrimSpace(req.Category)
	record.Icon = strings.TrimSpace(req.Icon)
	record.Color = strings.TrimSpace(req.Color)
	record.Description = strings.TrimSpace(req.Description)
}
