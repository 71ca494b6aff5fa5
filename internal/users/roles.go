package users

import (
	"context"
	"strings"

	"github.com/goliatone/go-showcase/internal/domain"
	"github.com/google/uuid"
)

// SessionRoles reports the stored role of a session's user.
type SessionRoles struct {
	Service Service
}

func (s SessionRoles) CurrentRole(ctx context.Context, userID string) (domain.Role, bool, error) {
	id, err := uuid.Parse(strings.TrimSpace(userID))
	if err != nil {
		return "", false, nil
	}
	user, err := s.Service.Get(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return user.Role, true, nil
}
