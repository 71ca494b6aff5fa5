package commands

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-showcase/internal/logging"
	"github.com/goliatone/go-showcase/internal/users"
	"github.com/goliatone/go-showcase/pkg/interfaces"
)

const seedAdminOperation = "users.seed_admin"

// SeedAdminCommand ensures a SUPER_ADMIN account exists.
type SeedAdminCommand struct {
	Email    string
	Password string
}

func (SeedAdminCommand) Type() string { return "showcase.users.seed_admin" }

func (c SeedAdminCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required),
		validation.Field(&c.Password, validation.Required, validation.Length(8, 0)),
	)
}

// NewSeedAdminHandler binds SeedAdminCommand to the user service.
func NewSeedAdminHandler(service users.Service, logger interfaces.Logger, opts ...HandlerOption[SeedAdminCommand]) *Handler[SeedAdminCommand] {
	if logger == nil {
		logger = logging.NoOp()
	}
	return NewHandler[SeedAdminCommand](func(ctx context.Context, msg SeedAdminCommand) error {
		user, err := service.EnsureAdmin(ctx, strings.TrimSpace(msg.Email), msg.Password)
		if err != nil {
			return err
		}
		logger.Info("admin ready", "email", user.Email, "role", string(user.Role))
		return nil
	}, append([]HandlerOption[SeedAdminCommand]{
		WithLogger[SeedAdminCommand](logger),
		WithOperation[SeedAdminCommand](seedAdminOperation),
	}, opts...)...)
}
