package users

import (
	"time"

	"github.com/goliatone/go-showcase/internal/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is an account allowed to sign in to the admin console.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID   `bun:",pk,type:uuid"                                 json:"id"`
	Email        string      `bun:"email,notnull,unique"                          json:"email"`
	Name         string      `bun:"name"                                          json:"name"`
	PasswordHash string      `bun:"password_hash,notnull"                         json:"-"`
	Role         domain.Role `bun:"role,notnull,default:'USER'"                   json:"role"`
	CreatedAt    time.Time   `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt"`
	UpdatedAt    time.Time   `bun:"updated_at,nullzero,default:current_timestamp" json:"updatedAt"`
}

// Viewer returns the read identity carried by a session for this user.
func (u *User) Viewer() domain.Viewer {
	if u == nil {
		return domain.Anonymous()
	}
	return domain.Viewer{UserID: u.ID.String(), Role: u.Role, Authenticated: true}
}

func cloneUser(src *User) *User {
	if src == nil {
		return nil
	}
	copied := *src
	return &copied
}
