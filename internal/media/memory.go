package media

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory implementation for scaffolding and tests.
type MemoryRepository struct {
	mu     sync.RWMutex
	images map[uuid.UUID]*Image
	urls   map[string]uuid.UUID
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		images: make(map[uuid.UUID]*Image),
		urls:   make(map[string]uuid.UUID),
	}
}

func (m *MemoryRepository) Create(_ context.Context, image *Image) (*Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := cloneImage(image)
	m.images[copied.ID] = copied
	m.urls[copied.URL] = copied.ID
	return cloneImage(copied), nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Image, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	img, ok := m.images[id]
	if !ok {
		return nil, &NotFoundError{Resource: "image", Key: id.String()}
	}
	return cloneImage(img), nil
}

func (m *MemoryRepository) GetByURL(_ context.Context, url string) (*Image, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.urls[url]
	if !ok {
		return nil, &NotFoundError{Resource: "image", Key: url}
	}
	return cloneImage(m.images[id]), nil
}

func (m *MemoryRepository) List(_ context.Context) ([]*Image, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Image, 0, len(m.images))
	for _, img := range m.images {
		out = append(out, cloneImage(img))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].URL < out[j].URL
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	img, ok := m.images[id]
	if !ok {
		return &NotFoundError{Resource: "image", Key: id.String()}
	}
	delete(m.urls, img.URL)
	delete(m.images, id)
	return nil
}

func (m *MemoryRepository) AdjustUsage(_ context.Context, deltas map[uuid.UUID]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, delta := range deltas {
		img, ok := m.images[id]
		if !ok || delta == 0 {
			continue
		}
		img.UsageCount += delta
		if img.UsageCount < 0 {
			img.UsageCount = 0
		}
	}
	return nil
}
