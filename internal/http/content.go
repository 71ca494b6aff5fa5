package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/goliatone/go-showcase/internal/auth"
	"github.com/goliatone/go-showcase/internal/content"
	"github.com/goliatone/go-showcase/internal/domain"
	"github.com/goliatone/go-showcase/internal/resolver"
)

type resolutionResponse struct {
	Source resolver.Source `json:"source"`
	Record *content.Record `json:"record"`
}

func (api *API) registerContentRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "content")
	mux.HandleFunc("GET "+root, api.handleContentList)
	mux.Handle("POST "+root, api.admin(api.handleContentCreate))
	if api.resolver != nil {
		mux.HandleFunc("GET "+root+"/resolve", api.handleContentResolve)
	}
	mux.HandleFunc("GET "+root+"/{id}", api.handleContentGet)
	mux.Handle("PATCH "+root+"/{id}", api.admin(api.handleContentUpdate))
	mux.Handle("DELETE "+root+"/{id}", api.admin(api.handleContentDelete))
	mux.Handle("POST "+root+"/{id}/publish", api.admin(api.handleContentPublish))
}

func (api *API) handleContentList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := content.Filter{
		Page:     query.Get("page"),
		Section:  query.Get("section"),
		Language: query.Get("language"),
	}
	if raw := query.Get("status"); raw != "" {
		status, ok := domain.ParseStatus(raw)
		if !ok {
			api.writeError(w, r, badRequest("Status must be DRAFT or PUBLISHED"))
			return
		}
		filter.Status = status
	}
	records, err := api.content.List(r.Context(), filter, auth.ViewerFromContext(r.Context()))
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeList(w, records)
}

func (api *API) handleContentGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	record, err := api.content.GetByID(r.Context(), id, auth.ViewerFromContext(r.Context()))
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (api *API) handleContentCreate(w http.ResponseWriter, r *http.Request) {
	var payload content.CreateRequest
	if err := decodeJSON(r, &payload); err != nil {
		api.writeError(w, r, err)
		return
	}
	record, err := api.content.Create(r.Context(), payload)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (api *API) handleContentUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	var payload content.UpdateRequest
	if err := decodeJSON(r, &payload); err != nil {
		api.writeError(w, r, err)
		return
	}
	record, err := api.content.Update(r.Context(), id, payload)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (api *API) handleContentDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	if err := api.content.Delete(r.Context(), id); err != nil {
		api.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *API) handleContentPublish(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	record, err := api.content.Publish(r.Context(), id)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// handleContentResolve runs the database then static lookup for one section.
func (api *API) handleContentResolve(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	preview, _ := strconv.ParseBool(strings.TrimSpace(query.Get("preview")))
	res, err := api.resolver.Resolve(r.Context(), resolver.Request{
		Locale:  query.Get("locale"),
		Page:    query.Get("page"),
		Section: query.Get("section"),
		Preview: preview,
		Viewer:  auth.ViewerFromContext(r.Context()),
	})
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resolutionResponse{Source: res.Source, Record: res.Record})
}
