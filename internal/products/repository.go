package products

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-showcase/internal/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var (
	ErrSlugExists        = errors.New("products: slug already exists")
	ErrSlugRequired      = errors.New("products: slug is required")
	ErrSlugInvalid       = errors.New("products: slug contains invalid characters")
	ErrProductIDRequired = errors.New("products: product id required")

	ErrUnauthenticated = domain.ErrUnauthenticated
	ErrForbidden       = domain.ErrForbidden
)

// NotFoundError represents missing records from repository lookups.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// Filter narrows List results. Empty values match everything.
type Filter struct {
	Language string
	Status   domain.Status
	Category string
	Tag      string
}

func (f Filter) matches(p *Product) bool {
	if f.Language != "" && p.Language != f.Language {
		return false
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Tag != "" {
		for _, tag := range p.Tags {
			if tag == f.Tag {
				return true
			}
		}
		return false
	}
	return true
}

// Repository stores products together with their sections. Every write
// adjusts image usage counters for the ImageIDs diff in the same unit of
// work as the product change.
type Repository interface {
	Create(ctx context.Context, product *Product) (*Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	List(ctx context.Context, filter Filter) ([]*Product, error)
	Update(ctx context.Context, product *Product) (*Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListImageReferences(ctx context.Context) ([]ImageReference, error)
}

func NewProductRepository(db *bun.DB) repository.Repository[*Product] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Product]{
		NewRecord: func() *Product { return &Product{} },
		GetID: func(p *Product) uuid.UUID {
			return p.ID
		},
		SetID: func(p *Product, id uuid.UUID) {
			p.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(p *Product) string {
			return p.Slug
		},
	})
}

func sortSections(product *Product) {
	sort.SliceStable(product.Sections, func(i, j int) bool {
		return product.Sections[i].Position < product.Sections[j].Position
	})
}

func sortProducts(records []*Product) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].Slug < records[j].Slug
	})
}
