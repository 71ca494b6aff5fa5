package http

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-showcase/internal/auth"
	"github.com/goliatone/go-showcase/internal/logging"
	"github.com/goliatone/go-showcase/internal/users"
)

type signInPayload struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	CallbackURL string `json:"callbackUrl,omitempty"`
}

type sessionResponse struct {
	User    *users.User   `json:"user,omitempty"`
	Session *auth.Session `json:"session"`
	Token   string        `json:"token,omitempty"`
}

func (api *API) registerAuthRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "auth")
	if api.users != nil {
		mux.HandleFunc("POST "+root+"/signin", api.handleSignIn)
	}
	mux.HandleFunc("POST "+root+"/signout", api.handleSignOut)
	mux.HandleFunc("GET "+root+"/session", api.handleSession)
}

// handleSignIn accepts JSON or a form post from the sign-in page. Form
// posts are answered with redirects.
func (api *API) handleSignIn(w http.ResponseWriter, r *http.Request) {
	form := isFormPost(r)
	var payload signInPayload
	if form {
		if err := r.ParseForm(); err != nil {
			api.writeError(w, r, badRequest("Form body is invalid"))
			return
		}
		payload = signInPayload{
			Email:       r.PostFormValue("email"),
			Password:    r.PostFormValue("password"),
			CallbackURL: r.PostFormValue("callbackUrl"),
		}
	} else if err := decodeJSON(r, &payload); err != nil {
		api.writeError(w, r, err)
		return
	}
	callback := safeCallback(payload.CallbackURL, "/admin")

	user, err := api.users.Authenticate(r.Context(), payload.Email, payload.Password)
	if err != nil {
		logging.FromContext(r.Context(), api.logger).Warn("sign in rejected", "email", strings.ToLower(strings.TrimSpace(payload.Email)), "error", err)
		if form {
			target := api.auth.SignInPath() + "?error=" + url.QueryEscape("Invalid email or password") + "&callbackUrl=" + url.QueryEscape(callback)
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
		api.writeError(w, r, err)
		return
	}

	session, token, err := api.auth.IssueCookie(w, user.ID.String(), user.Email, user.Role)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	logging.FromContext(r.Context(), api.logger).Info("signed in", "user_id", session.UserID, "role", string(session.Role))
	if form {
		http.Redirect(w, r, callback, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{User: user, Session: session, Token: token})
}

func (api *API) handleSignOut(w http.ResponseWriter, _ *http.Request) {
	api.auth.ClearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (api *API) handleSession(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		api.writeError(w, r, auth.ErrNoSession)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Session: session})
}

func isFormPost(r *http.Request) bool {
	contentType := strings.ToLower(r.Header.Get("Content-Type"))
	return strings.HasPrefix(contentType, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(contentType, "multipart/form-data")
}
