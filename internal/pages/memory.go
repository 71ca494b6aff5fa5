package pages

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository keeps pages in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	pages map[uuid.UUID]*Page
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{pages: map[uuid.UUID]*Page{}}
}

func (r *MemoryRepository) Create(_ context.Context, page *Page) (*Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.slugTaken(page.Slug, page.Language, uuid.Nil) {
		return nil, ErrSlugExists
	}
	stored := clonePage(page)
	linkSections(stored)
	r.pages[stored.ID] = stored
	return clonePage(stored), nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	page, ok := r.pages[id]
	if !ok {
		return nil, &NotFoundError{Resource: "page", Key: id.String()}
	}
	return clonePage(page), nil
}

func (r *MemoryRepository) GetBySlug(_ context.Context, slug, language string) (*Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, page := range r.pages {
		if page.Slug == slug && page.Language == language {
			return clonePage(page), nil
		}
	}
	return nil, &NotFoundError{Resource: "page", Key: language + "/" + slug}
}

func (r *MemoryRepository) List(_ context.Context, filter Filter) ([]*Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Page, 0, len(r.pages))
	for _, page := range r.pages {
		if filter.matches(page) {
			out = append(out, clonePage(page))
		}
	}
	sortPages(out)
	return out, nil
}

func (r *MemoryRepository) Update(_ context.Context, page *Page) (*Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pages[page.ID]; !ok {
		return nil, &NotFoundError{Resource: "page", Key: page.ID.String()}
	}
	if r.slugTaken(page.Slug, page.Language, page.ID) {
		return nil, ErrSlugExists
	}
	stored := clonePage(page)
	linkSections(stored)
	r.pages[stored.ID] = stored
	return clonePage(stored), nil
}

func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pages[id]; !ok {
		return &NotFoundError{Resource: "page", Key: id.String()}
	}
	delete(r.pages, id)
	return nil
}

func (r *MemoryRepository) slugTaken(slug, language string, except uuid.UUID) bool {
	for id, page := range r.pages {
		if id != except && page.Slug == slug && page.Language == language {
			return true
		}
	}
	return false
}
