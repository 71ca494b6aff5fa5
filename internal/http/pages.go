package http

import (
	"net/http"

	"github.com/goliatone/go-showcase/internal/auth"
	"github.com/goliatone/go-showcase/internal/domain"
	"github.com/goliatone/go-showcase/internal/pages"
)

func (api *API) registerPageRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "pages")
	mux.HandleFunc("GET "+root, api.handlePageList)
	mux.Handle("POST "+root, api.admin(api.handlePageCreate))
	mux.HandleFunc("GET "+root+"/{id}", api.handlePageGet)
	mux.Handle("PUT "+root+"/{id}", api.admin(api.handlePageUpdate))
	mux.Handle("DELETE "+root+"/{id}", api.admin(api.handlePageDelete))
	mux.Handle("POST "+root+"/{id}/publish", api.admin(api.handlePagePublish))
}

func (api *API) handlePageList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := pages.Filter{Language: query.Get("language")}
	if raw := query.Get("status"); raw != "" {
		status, ok := domain.ParseStatus(raw)
		if !ok {
			api.writeError(w, r, badRequest("Status must be DRAFT or PUBLISHED"))
			return
		}
		filter.Status = status
	}
	list, err := api.pages.List(r.Context(), filter, auth.ViewerFromContext(r.Context()))
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeList(w, list)
}

func (api *API) handlePageGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	page, err := api.pages.Get(r.Context(), id, auth.ViewerFromContext(r.Context()))
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (api *API) handlePageCreate(w http.ResponseWriter, r *http.Request) {
	var payload pages.SaveRequest
	if err := decodeJSON(r, &payload); err != nil {
		api.writeError(w, r, err)
		return
	}
	page, err := api.pages.Create(r.Context(), payload)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, page)
}

func (api *API) handlePageUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	var payload pages.SaveRequest
	if err := decodeJSON(r, &payload); err != nil {
		api.writeError(w, r, err)
		return
	}
	page, err := api.pages.Update(r.Context(), id, payload)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (api *API) handlePageDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	if err := api.pages.Delete(r.Context(), id); err != nil {
		api.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *API) handlePagePublish(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	page, err := api.pages.Publish(r.Context(), id)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
