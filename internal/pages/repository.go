package pages

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
	ErrPageNotFound   = errors.New("pages: page not found")
	ErrSlugExists     = errors.New("pages: slug already exists for language")
	ErrPageIDRequired = errors.New("pages: page id required")

	ErrUnauthenticated = domain.ErrUnauthenticated
	ErrForbidden       = domain.ErrForbidden
)

// NotFoundError represents missing records from repository lookups. It
// also matches ErrPageNotFound.
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

func (e *NotFoundError) Is(target error) bool {
	return target == ErrPageNotFound
}

// IsNotFound reports whether err is a missing page.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPageNotFound)
}

// Filter narrows List results. Empty values match everything.
type Filter struct {
	Language string
	Status   domain.Status
}

func (f Filter) matches(p *Page) bool {
	if f.Language != "" && p.Language != f.Language {
		return false
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	return true
}

// Repository stores builder pages with their sections. (slug, language)
// is unique.
type Repository interface {
	Create(ctx context.Context, page *Page) (*Page, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Page, error)
	GetBySlug(ctx context.Context, slug, language string) (*Page, error)
	List(ctx context.Context, filter Filter) ([]*Page, error)
	Update(ctx context.Context, page *Page) (*Page, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

func NewPageRepository(db *bun.DB) repository.Repository[*Page] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Page]{
		NewRecord: func() *Page { return &Page{} },
		GetID: func(p *Page) uuid.UUID {
			return p.ID
		},
		SetID: func(p *Page, id uuid.UUID) {
			p.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(p *Page) string {
			return p.Slug
		},
	})
}

func sortSections(page *Page) {
	sort.SliceStable(page.Sections, func(i, j int) bool {
		return page.Sections[i].Position < page.Sections[j].Position
	})
}

func sortPages(items []*Page) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Slug != items[j].Slug {
			return items[i].Slug < items[j].Slug
		}
		return items[i].Language < items[j].Language
	})
}

func linkSections(page *Page) {
	for i, section := range page.Sections {
		if section.ID == uuid.Nil {
			section.ID = uuid.New()
		}
		section.PageID = page.ID
		section.Position = i
	}
}
