package users

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var (
	ErrEmailRequired      = errors.New("users: email is required")
	ErrEmailExists        = errors.New("users: email already registered")
	ErrPasswordTooShort   = errors.New("users: password must be at least 8 characters")
	ErrRoleInvalid        = errors.New("users: unknown role")
	ErrInvalidCredentials = errors.New("users: invalid email or password")
	ErrSelfRoleChange     = errors.New("users: you cannot change your own role")
	ErrSuperAdminRequired = errors.New("users: only a super admin can grant or revoke SUPER_ADMIN")
	ErrSelfDelete         = errors.New("users: you cannot delete your own account")
	ErrUserIDRequired     = errors.New("users: user id required")
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

// Repository abstracts user storage.
type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Update(ctx context.Context, user *User) (*User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

func NewUserRepository(db *bun.DB) repository.Repository[*User] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			u.ID = id
		},
		GetIdentifier: func() string {
			return "email"
		},
		GetIdentifierValue: func(u *User) string {
			return u.Email
		},
	})
}

type BunRepository struct {
	repo repository.Repository[*User]
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{repo: NewUserRepository(db)}
}

func (r *BunRepository) Create(ctx context.Context, user *User) (*User, error) {
	return r.repo.Create(ctx, user)
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "user", id.String())
	}
	return record, nil
}

func (r *BunRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	record, err := r.repo.GetByIdentifier(ctx, email)
	if err != nil {
		return nil, mapRepositoryError(err, "user", email)
	}
	return record, nil
}

func (r *BunRepository) List(ctx context.Context) ([]*User, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.email ASC")
	}))
	return records, err
}

func (r *BunRepository) Update(ctx context.Context, user *User) (*User, error) {
	updated, err := r.repo.Update(ctx, user,
		repository.UpdateByID(user.ID.String()),
		repository.UpdateColumns("email", "name", "password_hash", "role", "updated_at"),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "user", user.ID.String())
	}
	return updated, nil
}

func (r *BunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return r.repo.Delete(ctx, &User{ID: id})
}

// MemoryRepository is an in-memory implementation for scaffolding and tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[uuid.UUID]*User)}
}

func (m *MemoryRepository) Create(_ context.Context, user *User) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Email == user.Email {
			return nil, ErrEmailExists
		}
	}
	copied := cloneUser(user)
	m.users[copied.ID] = copied
	return cloneUser(copied), nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, &NotFoundError{Resource: "user", Key: id.String()}
	}
	return cloneUser(user), nil
}

func (m *MemoryRepository) GetByEmail(_ context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Email == email {
			return cloneUser(user), nil
		}
	}
	return nil, &NotFoundError{Resource: "user", Key: email}
}

func (m *MemoryRepository) List(_ context.Context) ([]*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*User, 0, len(m.users))
	for _, user := range m.users {
		out = append(out, cloneUser(user))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (m *MemoryRepository) Update(_ context.Context, user *User) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.ID]; !ok {
		return nil, &NotFoundError{Resource: "user", Key: user.ID.String()}
	}
	copied := cloneUser(user)
	m.users[copied.ID] = copied
	return cloneUser(copied), nil
}

func (m *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return &NotFoundError{Resource: "user", Key: id.String()}
	}
	delete(m.users, id)
	return nil
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
