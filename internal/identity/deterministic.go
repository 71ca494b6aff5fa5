package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must prefix keys by entity type to prevent cross-entity collisions.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// UserUUID keys seeded users by their lowercased email.
func UserUUID(email string) uuid.UUID {
	return UUID("go-showcase:user:" + strings.ToLower(strings.TrimSpace(email)))
}

// StaticContentUUID identifies records materialized from the static fallback store.
func StaticContentUUID(locale, page, section string) uuid.UUID {
	return UUID("go-showcase:static_content:" +
		strings.ToLower(strings.TrimSpace(locale)) + ":" +
		strings.TrimSpace(page) + ":" +
		strings.TrimSpace(section))
}
