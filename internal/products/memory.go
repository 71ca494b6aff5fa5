package products

import (
	"context"
	"sync"

	"github.com/goliatone/go-showcase/internal/media"
	"github.com/google/uuid"
)

// MemoryRepository is an in-memory implementation for scaffolding and tests.
// Usage adjustments run under the repository lock.
type MemoryRepository struct {
	mu       sync.RWMutex
	products map[uuid.UUID]*Product
	slugs    map[string]uuid.UUID
	usage    media.UsageAdjuster
}

// NewMemoryRepository creates an empty repository. usage may be nil.
func NewMemoryRepository(usage media.UsageAdjuster) *MemoryRepository {
	return &MemoryRepository{
		products: make(map[uuid.UUID]*Product),
		slugs:    make(map[string]uuid.UUID),
		usage:    usage,
	}
}

func (m *MemoryRepository) Create(ctx context.Context, product *Product) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.slugs[product.Slug]; exists {
		return nil, ErrSlugExists
	}
	if err := m.adjust(ctx, usageDelta(nil, product.ImageIDs)); err != nil {
		return nil, err
	}
	copied := cloneProduct(product)
	linkChildren(copied)
	sortSections(copied)
	m.products[copied.ID] = copied
	m.slugs[copied.Slug] = copied.ID
	return cloneProduct(copied), nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.products[id]
	if !ok {
		return nil, &NotFoundError{Resource: "product", Key: id.String()}
	}
	return cloneProduct(rec), nil
}

func (m *MemoryRepository) GetBySlug(_ context.Context, slug string) (*Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.slugs[slug]
	if !ok {
		return nil, &NotFoundError{Resource: "product", Key: slug}
	}
	return cloneProduct(m.products[id]), nil
}

func (m *MemoryRepository) List(_ context.Context, filter Filter) ([]*Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Product, 0, len(m.products))
	for _, rec := range m.products {
		if filter.matches(rec) {
			out = append(out, cloneProduct(rec))
		}
	}
	sortProducts(out)
	return out, nil
}

func (m *MemoryRepository) Update(ctx context.Context, product *Product) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.products[product.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "product", Key: product.ID.String()}
	}
	if id, taken := m.slugs[product.Slug]; taken && id != product.ID {
		return nil, ErrSlugExists
	}
	if err := m.adjust(ctx, usageDelta(existing.ImageIDs, product.ImageIDs)); err != nil {
		return nil, err
	}
	delete(m.slugs, existing.Slug)
	copied := cloneProduct(product)
	linkChildren(copied)
	sortSections(copied)
	m.products[copied.ID] = copied
	m.slugs[copied.Slug] = copied.ID
	return cloneProduct(copied), nil
}

func (m *MemoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.products[id]
	if !ok {
		return &NotFoundError{Resource: "product", Key: id.String()}
	}
	if err := m.adjust(ctx, usageDelta(existing.ImageIDs, nil)); err != nil {
		return err
	}
	delete(m.slugs, existing.Slug)
	delete(m.products, id)
	return nil
}

func (m *MemoryRepository) ListImageReferences(_ context.Context) ([]ImageReference, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ImageReference, 0, len(m.products))
	for _, rec := range m.products {
		out = append(out, referenceOf(cloneProduct(rec)))
	}
	return out, nil
}

func (m *MemoryRepository) adjust(ctx context.Context, deltas map[uuid.UUID]int) error {
	if m.usage == nil || len(deltas) == 0 {
		return nil
	}
	return m.usage.AdjustUsage(ctx, deltas)
}

func linkChildren(product *Product) {
	if product.TechStack != nil {
		if product.TechStack.ID == uuid.Nil {
			product.TechStack.ID = uuid.New()
		}
		product.TechStack.ProductID = product.ID
	}
	for _, section := range product.Sections {
		if section.ID == uuid.Nil {
			section.ID = uuid.New()
		}
		section.ProductID = product.ID
	}
}
