package http

import (
	"net/http"

	"github.com/goliatone/go-showcase/internal/auth"
	"github.com/goliatone/go-showcase/internal/domain"
	"github.com/goliatone/go-showcase/internal/users"
)

type rolePayload struct {
	Role string `json:"role"`
}

func (api *API) registerUserRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "users")
	mux.Handle("GET "+root, api.admin(api.handleUserList))
	mux.Handle("POST "+root, api.admin(api.handleUserCreate))
	mux.Handle("GET "+root+"/{id}", api.admin(api.handleUserGet))
	mux.Handle("PUT "+root+"/{id}", api.admin(api.handleUserUpdate))
	mux.Handle("DELETE "+root+"/{id}", api.admin(api.handleUserDelete))
	mux.Handle("PUT "+root+"/{id}/role", api.admin(api.handleUserRole))
	mux.Handle("GET "+joinPath(base, "roles"), api.admin(api.handleRoleList))
}

func (api *API) handleUserList(w http.ResponseWriter, r *http.Request) {
	list, err := api.users.List(r.Context())
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeList(w, list)
}

func (api *API) handleUserGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	user, err := api.users.Get(r.Context(), id)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (api *API) handleUserCreate(w http.ResponseWriter, r *http.Request) {
	var payload users.CreateRequest
	if err := decodeJSON(r, &payload); err != nil {
		api.writeError(w, r, err)
		return
	}
	role, ok := domain.ParseRole(payload.Role)
	if !ok {
		api.writeError(w, r, users.ErrRoleInvalid)
		return
	}
	if role == domain.RoleSuperAdmin && auth.ViewerFromContext(r.Context()).Role != domain.RoleSuperAdmin {
		api.writeError(w, r, users.ErrSuperAdminRequired)
		return
	}
	user, err := api.users.Create(r.Context(), payload)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (api *API) handleUserUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	var payload users.UpdateRequest
	if err := decodeJSON(r, &payload); err != nil {
		api.writeError(w, r, err)
		return
	}
	user, err := api.users.Update(r.Context(), id, payload)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (api *API) handleUserDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	if err := api.users.Delete(r.Context(), auth.ViewerFromContext(r.Context()), id); err != nil {
		api.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *API) handleUserRole(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	var payload rolePayload
	if err := decodeJSON(r, &payload); err != nil {
		api.writeError(w, r, err)
		return
	}
	user, err := api.users.SetRole(r.Context(), auth.ViewerFromContext(r.Context()), id, payload.Role)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (api *API) handleRoleList(w http.ResponseWriter, _ *http.Request) {
	writeList(w, api.users.Roles())
}
