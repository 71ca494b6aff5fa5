package users

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-showcase/internal/domain"
	"github.com/goliatone/go-showcase/internal/identity"
	"github.com/goliatone/go-showcase/internal/logging"
	"github.com/goliatone/go-showcase/internal/validation"
	"github.com/goliatone/go-showcase/pkg/interfaces"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const (
	userValidationCode = "USER_VALIDATION_FAILED"
	minPasswordLength  = 8
)

// Service manages admin console accounts and their roles.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*User, error)
	Get(ctx context.Context, id uuid.UUID) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*User, error)
	Delete(ctx context.Context, actor domain.Viewer, id uuid.UUID) error
	Roles() []domain.Role
	SetRole(ctx context.Context, actor domain.Viewer, id uuid.UUID, role string) (*User, error)
	Authenticate(ctx context.Context, email, password string) (*User, error)
	EnsureAdmin(ctx context.Context, email, password string) (*User, error)
}

type CreateRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UpdateRequest changes profile data. Nil fields are left untouched; roles
// change through SetRole only.
type UpdateRequest struct {
	Email    *string `json:"email,omitempty"`
	Name     *string `json:"name,omitempty"`
	Password *string `json:"password,omitempty"`
}

type ServiceOption func(*service)

func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithHashCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithHashCost(cost int) ServiceOption {
	return func(s *service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.cost = cost
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
	cost   int
	logger interfaces.Logger
}

func NewService(repo Repository, opts ...ServiceOption) Service {
	s := &service{
		repo:   repo,
		now:    time.Now,
		cost:   bcrypt.DefaultCost,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*User, error) {
	req.Email = normalizeEmail(req.Email)
	role, ok := domain.ParseRole(req.Role)
	if !ok {
		return nil, ErrRoleInvalid
	}
	if err := validateCredentials(req.Email, req.Password); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailExists
	} else if !IsNotFound(err) {
		return nil, err
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}
	now := s.now()
	user := &User{
		ID:           uuid.New(),
		Email:        req.Email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	s.log(ctx).Info("user created", "id", created.ID.String(), "role", string(created.Role))
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	if id == uuid.Nil {
		return nil, ErrUserIDRequired
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		if email != user.Email {
			if _, err := s.repo.GetByEmail(ctx, email); err == nil {
				return nil, ErrEmailExists
			} else if !IsNotFound(err) {
				return nil, err
			}
			user.Email = email
		}
	}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Password != nil {
		if len(*req.Password) < minPasswordLength {
			return nil, ErrPasswordTooShort
		}
		hash, err := s.hash(*req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	user.UpdatedAt = s.now()
	return s.repo.Update(ctx, user)
}

func (s *service) Delete(ctx context.Context, actor domain.Viewer, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrUserIDRequired
	}
	if actor.UserID == id.String() {
		return ErrSelfDelete
	}
	target, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if target.Role == domain.RoleSuperAdmin && actor.Role != domain.RoleSuperAdmin {
		return ErrSuperAdminRequired
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log(ctx).Info("user deleted", "id", id.String(), "actor", actor.UserID)
	return nil
}

func (s *service) Roles() []domain.Role {
	return domain.Roles()
}

// SetRole changes a user role. Nobody changes their own role and only a
// SUPER_ADMIN grants or revokes SUPER_ADMIN.
func (s *service) SetRole(ctx context.Context, actor domain.Viewer, id uuid.UUID, value string) (*User, error) {
	if id == uuid.Nil {
		return nil, ErrUserIDRequired
	}
	role, ok := domain.ParseRole(value)
	if !ok || strings.TrimSpace(value) == "" {
		return nil, ErrRoleInvalid
	}
	if actor.UserID == id.String() {
		return nil, ErrSelfRoleChange
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	touchesSuper := role == domain.RoleSuperAdmin || user.Role == domain.RoleSuperAdmin
	if touchesSuper && actor.Role != domain.RoleSuperAdmin {
		return nil, ErrSuperAdminRequired
	}
	if user.Role == role {
		return user, nil
	}
	previous := user.Role
	user.Role = role
	user.UpdatedAt = s.now()
	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return nil, err
	}
	s.log(ctx).Info("user role changed", "id", id.String(), "from", string(previous), "to", string(role), "actor", actor.UserID)
	return updated, nil
}

func (s *service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// EnsureAdmin creates a SUPER_ADMIN with a deterministic id when the email is
// unknown, and promotes an existing account otherwise. The password of an
// existing account is left untouched.
func (s *service) EnsureAdmin(ctx context.Context, email, password string) (*User, error) {
	email = normalizeEmail(email)
	existing, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		if existing.Role == domain.RoleSuperAdmin {
			return existing, nil
		}
		existing.Role = domain.RoleSuperAdmin
		existing.UpdatedAt = s.now()
		return s.repo.Update(ctx, existing)
	}
	if !IsNotFound(err) {
		return nil, err
	}
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}
	now := s.now()
	user := &User{
		ID:           identity.UserUUID(email),
		Email:        email,
		Name:         "Administrator",
		PasswordHash: hash,
		Role:         domain.RoleSuperAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	s.log(ctx).Info("seed admin created", "id", created.ID.String())
	return created, nil
}

func (s *service) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", errors.Join(errors.New("users: hash password"), err)
	}
	return string(hash), nil
}

func (s *service) log(ctx context.Context) interfaces.Logger {
	return logging.FromContext(ctx, s.logger)
}

func normalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func validateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	err := ozzo.Validate(email, ozzo.Match(emailPattern).Error("must be a valid email address"))
	if err != nil {
		return validation.WrapInput(ozzo.Errors{"email": err}, "users: invalid email", userValidationCode)
	}
	return nil
}

func validateCredentials(email, password string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}
