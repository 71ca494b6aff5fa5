package technologies

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var (
	ErrNameRequired = errors.New("technologies: name is required")
	ErrNameExists   = errors.New("technologies: a technology with this name already exists")
	ErrIDRequired   = errors.New("technologies: technology id required")
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

// Repository abstracts technology storage.
type Repository interface {
	Create(ctx context.Context, record *Technology) (*Technology, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Technology, error)
	GetByNameKey(ctx context.Context, key string) (*Technology, error)
	List(ctx context.Context, category string) ([]*Technology, error)
	Update(ctx context.Context, record *Technology) (*Technology, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

const technologyNamespace = "technology"

func NewTechnologyRepository(db *bun.DB) repository.Repository[*Technology] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Technology]{
		NewRecord: func() *Technology { return &Technology{} },
		GetID: func(t *Technology) uuid.UUID {
			return t.ID
		},
		SetID: func(t *Technology, id uuid.UUID) {
			t.ID = id
		},
		GetIdentifier: func() string {
			return "name_key"
		},
		GetIdentifierValue: func(t *Technology) string {
			return t.NameKey
		},
	})
}

// BunRepository implements Repository with optional read caching.
type BunRepository struct {
	repo         repository.Repository[*Technology]
	cacheService cache.CacheService
	cachePrefix  string
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

// NewBunRepositoryWithCache wraps the repository with go-repository-cache
// when both cache collaborators are supplied.
func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunRepository {
	base := NewTechnologyRepository(db)
	out := &BunRepository{repo: base}
	if cacheService != nil && serializer != nil {
		out.repo = repositorycache.New(base, cacheService, serializer)
		out.cacheService = cacheService
		out.cachePrefix = technologyNamespace + cache.KeySeparator
	}
	return out
}

func (r *BunRepository) Create(ctx context.Context, record *Technology) (*Technology, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	return created, r.InvalidateCache(ctx)
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*Technology, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "technology", id.String())
	}
	return record, nil
}

func (r *BunRepository) GetByNameKey(ctx context.Context, key string) (*Technology, error) {
	record, err := r.repo.GetByIdentifier(ctx, key)
	if err != nil {
		return nil, mapRepositoryError(err, "technology", key)
	}
	return record, nil
}

func (r *BunRepository) List(ctx context.Context, category string) ([]*Technology, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		if category != "" {
			q = q.Where("?TableAlias.category = ?", category)
		}
		return q.OrderExpr("?TableAlias.category ASC, ?TableAlias.name_key ASC")
	}))
	return records, err
}

func (r *BunRepository) Update(ctx context.Context, record *Technology) (*Technology, error) {
	updated, err := r.repo.Update(ctx, record,
		repository.UpdateByID(record.ID.String()),
		repository.UpdateColumns(
			"name",
			"name_key",
			"slug",
			"category",
			"icon",
			"color",
			"description",
			"updated_at",
		),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "technology", record.ID.String())
	}
	return updated, r.InvalidateCache(ctx)
}

func (r *BunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	if err := r.repo.Delete(ctx, &Technology{ID: id}); err != nil {
		return err
	}
	return r.InvalidateCache(ctx)
}

// InvalidateCache drops cached technology reads.
func (r *BunRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

// MemoryRepository is an in-memory implementation for scaffolding and tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*Technology
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[uuid.UUID]*Technology)}
}

func (m *MemoryRepository) Create(_ context.Context, record *Technology) (*Technology, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.records {
		if existing.NameKey == record.NameKey {
			return nil, ErrNameExists
		}
	}
	copied := cloneTechnology(record)
	m.records[copied.ID] = copied
	return cloneTechnology(copied), nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Technology, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.records[id]
	if !ok {
		return nil, &NotFoundError{Resource: "technology", Key: id.String()}
	}
	return cloneTechnology(record), nil
}

func (m *MemoryRepository) GetByNameKey(_ context.Context, key string) (*Technology, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, record := range m.records {
		if record.NameKey == key {
			return cloneTechnology(record), nil
		}
	}
	return nil, &NotFoundError{Resource: "technology", Key: key}
}

func (m *MemoryRepository) List(_ context.Context, category string) ([]*Technology, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Technology, 0, len(m.records))
	for _, record := range m.records {
		if category != "" && record.Category != category {
			continue
		}
		out = append(out, cloneTechnology(record))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].NameKey < out[j].NameKey
	})
	return out, nil
}

func (m *MemoryRepository) Update(_ context.Context, record *Technology) (*Technology, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[record.ID]; !ok {
		return nil, &NotFoundError{Resource: "technology", Key: record.ID.String()}
	}
	for id, existing := range m.records {
		if id != record.ID && existing.NameKey == record.NameKey {
			return nil, ErrNameExists
		}
	}
	copied := cloneTechnology(record)
	m.records[copied.ID] = copied
	return cloneTechnology(copied), nil
}

func (m *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return &NotFoundError{Resource: "technology", Key: id.String()}
	}
	delete(m.records, id)
	return nil
}

func nameKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{
			Resource: resource,
			Key:      key,
		}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
