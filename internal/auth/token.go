package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-showcase/internal/domain"
)

var (
	ErrSecretRequired = errors.New("auth: signing secret required")
	ErrInvalidToken   = errors.New("auth: invalid session token")
)

const issuer = "go-showcase"

// Claims carried by a session token. The subject is the user id.
type Claims struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Session is the verified identity attached to a request.
type Session struct {
	UserID    string      `json:"userId"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// Viewer converts the session into the read identity used by services.
func (s *Session) Viewer() domain.Viewer {
	if s == nil {
		return domain.Anonymous()
	}
	return domain.Viewer{UserID: s.UserID, Role: s.Role, Authenticated: true}
}

// TokenManager issues and verifies HS256 session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager returns a manager signing with secret. A non-positive ttl
// falls back to 24 hours.
func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, ErrSecretRequired
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// WithClock replaces the time source. Intended for tests.
func (m *TokenManager) WithClock(clock func() time.Time) *TokenManager {
	if clock != nil {
		m.now = clock
	}
	return m
}

// TTL reports the session lifetime.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token for the given identity.
func (m *TokenManager) Issue(userID, email string, role domain.Role) (string, *Session, error) {
	now := m.now()
	expires := now.Add(m.ttl)
	claims := &Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("auth: sign token: %w", err)
	}
	return token, &Session{UserID: userID, Email: email, Role: role, ExpiresAt: expires}, nil
}

// Parse verifies token and returns its session.
func (m *TokenManager) Parse(token string) (*Session, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithIssuer(issuer))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	role, ok := domain.ParseRole(string(claims.Role))
	if !ok {
		return nil, ErrInvalidToken
	}
	session := &Session{UserID: claims.Subject, Email: claims.Email, Role: role}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}
