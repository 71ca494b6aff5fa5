package http

import (
	"net/http"

	"github.com/goliatone/go-showcase/internal/technologies"
)

func (api *API) registerTechnologyRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "technologies")
	mux.HandleFunc("GET "+root, api.handleTechnologyList)
	mux.Handle("POST "+root, api.admin(api.handleTechnologyCreate))
	mux.HandleFunc("GET "+root+"/{id}", api.handleTechnologyGet)
	mux.Handle("PUT "+root+"/{id}", api.admin(api.handleTechnologyUpdate))
	mux.Handle("DELETE "+root+"/{id}", api.admin(api.handleTechnologyDelete))
}

func (api *API) handleTechnologyList(w http.ResponseWriter, r *http.Request) {
	list, err := api.technologies.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeList(w, list)
}

func (api *API) handleTechnologyGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	record, err := api.technologies.Get(r.Context(), id)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (api *API) handleTechnologyCreate(w http.ResponseWriter, r *http.Request) {
	var payload technologies.SaveRequest
	if err := decodeJSON(r, &payload); err != nil {
		api.writeError(w, r, err)
		return
	}
	record, err := api.technologies.Create(r.Context(), payload)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (api *API) handleTechnologyUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	var payload technologies.SaveRequest
	if err := decodeJSON(r, &payload); err != nil {
		api.writeError(w, r, err)
		return
	}
	record, err := api.technologies.Update(r.Context(), id, payload)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (api *API) handleTechnologyDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	if err := api.technologies.Delete(r.Context(), id); err != nil {
		api.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
