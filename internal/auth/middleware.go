package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-showcase/internal/domain"
	"github.com/goliatone/go-showcase/internal/logging"
	"github.com/goliatone/go-showcase/pkg/interfaces"
)

var (
	ErrNoSession      = domain.ErrUnauthenticated
	ErrRoleNotAllowed = domain.ErrForbidden
)

// ErrorHandler renders guard failures.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	Path   string
}

// Option configures an Authenticator.
type Option func(*Authenticator)

func WithCookie(cfg CookieConfig) Option {
	return func(a *Authenticator) {
		if strings.TrimSpace(cfg.Name) != "" {
			a.cookie.Name = strings.TrimSpace(cfg.Name)
		}
		if strings.TrimSpace(cfg.Path) != "" {
			a.cookie.Path = cfg.Path
		}
		a.cookie.Secure = cfg.Secure
	}
}

// WithSignInPath sets where ProtectAdmin sends anonymous visitors.
func WithSignInPath(path string) Option {
	return func(a *Authenticator) {
		if strings.TrimSpace(path) != "" {
			a.signInPath = path
		}
	}
}

func WithErrorHandler(handler ErrorHandler) Option {
	return func(a *Authenticator) {
		if handler != nil {
			a.onError = handler
		}
	}
}

// RoleSource reports the stored role of a user. found is false when the
// account no longer exists.
type RoleSource interface {
	CurrentRole(ctx context.Context, userID string) (role domain.Role, found bool, err error)
}

// WithRoleSource makes Middleware replace the token role with the stored
// one, so demoted or deleted accounts lose access before their token expires.
func WithRoleSource(source RoleSource) Option {
	return func(a *Authenticator) {
		a.roles = source
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(a *Authenticator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// Authenticator resolves sessions and guards routes.
type Authenticator struct {
	tokens     *TokenManager
	cookie     CookieConfig
	signInPath string
	onError    ErrorHandler
	roles      RoleSource
	logger     interfaces.Logger
}

func NewAuthenticator(tokens *TokenManager, opts ...Option) *Authenticator {
	a := &Authenticator{
		tokens:     tokens,
		cookie:     CookieConfig{Name: "showcase_session", Path: "/"},
		signInPath: "/auth/signin",
		onError:    writeGuardError,
		logger:     logging.NoOp(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Middleware attaches the session found in the cookie or bearer header.
// Missing or invalid tokens leave the request anonymous.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := a.tokenFrom(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		logger := logging.FromContext(r.Context(), a.logger)
		session, err := a.tokens.Parse(token)
		if err != nil {
			logger.Debug("session rejected", "error", err)
			next.ServeHTTP(w, r)
			return
		}
		if a.roles != nil {
			role, found, err := a.roles.CurrentRole(r.Context(), session.UserID)
			switch {
			case err != nil:
				logger.Warn("session role lookup failed", "user_id", session.UserID, "error", err)
				next.ServeHTTP(w, r)
				return
			case !found:
				logger.Debug("session user no longer exists", "user_id", session.UserID)
				next.ServeHTTP(w, r)
				return
			}
			session.Role = role
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

// Require rejects requests without a session (401) or whose role is not
// listed (403). No roles means any signed-in user.
func (a *Authenticator) Require(roles ...domain.Role) func(http.Handler) http.Handler {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := SessionFromContext(r.Context())
			if !ok {
				a.onError(w, r, ErrNoSession)
				return
			}
			if len(allowed) > 0 {
				if _, ok := allowed[session.Role]; !ok {
					a.onError(w, r, ErrRoleNotAllowed)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is Require(ADMIN, SUPER_ADMIN).
func (a *Authenticator) RequireAdmin() func(http.Handler) http.Handler {
	return a.Require(domain.RoleAdmin, domain.RoleSuperAdmin)
}

// ProtectAdmin guards browser pages: anonymous visitors go to the sign-in
// page with a callback, signed-in non-admins go home with an error flag.
func (a *Authenticator) ProtectAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFromContext(r.Context())
		if !ok {
			target := a.signInPath + "?callbackUrl=" + url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, target, http.StatusFound)
			return
		}
		if !session.Role.IsAdmin() {
			http.Redirect(w, r, "/?error=unauthorized", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IssueCookie signs a session and writes the cookie.
func (a *Authenticator) IssueCookie(w http.ResponseWriter, userID, email string, role domain.Role) (*Session, string, error) {
	token, session, err := a.tokens.Issue(userID, email, role)
	if err != nil {
		return nil, "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookie.Name,
		Value:    token,
		Path:     a.cookie.Path,
		Expires:  session.ExpiresAt,
		MaxAge:   int(a.tokens.TTL() / time.Second),
		HttpOnly: true,
		Secure:   a.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return session, token, nil
}

// ClearCookie expires the session cookie.
func (a *Authenticator) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookie.Name,
		Value:    "",
		Path:     a.cookie.Path,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   a.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SignInPath reports the configured sign-in page.
func (a *Authenticator) SignInPath() string {
	return a.signInPath
}

func (a *Authenticator) tokenFrom(r *http.Request) string {
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := r.Cookie(a.cookie.Name); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}

func writeGuardError(w http.ResponseWriter, _ *http.Request, err error) {
	status, code, message := http.StatusUnauthorized, "unauthenticated", "Authentication required"
	if errors.Is(err, ErrRoleNotAllowed) {
		status, code, message = http.StatusForbidden, "forbidden", "You do not have permission to perform this action"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": code})
}
