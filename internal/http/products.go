package http

import (
	"net/http"
	"strings"

	"github.com/goliatone/go-showcase/internal/auth"
	"github.com/goliatone/go-showcase/internal/domain"
	"github.com/goliatone/go-showcase/internal/products"
)

func (api *API) registerProductRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "products")
	mux.HandleFunc("GET "+root, api.handleProductList)
	mux.Handle("POST "+root, api.admin(api.handleProductCreate))
	mux.HandleFunc("GET "+root+"/{slug}", api.handleProductGet)
	mux.Handle("PUT "+root+"/{slug}", api.admin(api.handleProductUpdate))
	mux.Handle("DELETE "+root+"/{slug}", api.admin(api.handleProductDelete))
	mux.Handle("POST "+root+"/{slug}/publish", api.admin(api.handleProductPublish))
}

func (api *API) handleProductList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := products.Filter{
		Language: query.Get("language"),
		Category: strings.TrimSpace(query.Get("category")),
		Tag:      strings.TrimSpace(query.Get("tag")),
	}
	if raw := query.Get("status"); raw != "" {
		status, ok := domain.ParseStatus(raw)
		if !ok {
			api.writeError(w, r, badRequest("Status must be DRAFT or PUBLISHED"))
			return
		}
		filter.Status = status
	}
	list, err := api.products.List(r.Context(), filter, auth.ViewerFromContext(r.Context()))
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	views := make([]products.View, 0, len(list))
	for _, product := range list {
		views = append(views, products.ToView(product))
	}
	writeList(w, views)
}

func (api *API) handleProductGet(w http.ResponseWriter, r *http.Request) {
	product, err := api.products.Get(r.Context(), r.PathValue("slug"), auth.ViewerFromContext(r.Context()))
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products.ToView(product))
}

func (api *API) handleProductCreate(w http.ResponseWriter, r *http.Request) {
	var payload products.SaveRequest
	if err := decodeJSON(r, &payload); err != nil {
		api.writeError(w, r, err)
		return
	}
	product, err := api.products.Create(r.Context(), payload)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, products.ToView(product))
}

func (api *API) handleProductUpdate(w http.ResponseWriter, r *http.Request) {
	var payload products.SaveRequest
	if err := decodeJSON(r, &payload); err != nil {
		api.writeError(w, r, err)
		return
	}
	product, err := api.products.Update(r.Context(), r.PathValue("slug"), payload)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products.ToView(product))
}

func (api *API) handleProductDelete(w http.ResponseWriter, r *http.Request) {
	if err := api.products.Delete(r.Context(), r.PathValue("slug")); err != nil {
		api.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *API) handleProductPublish(w http.ResponseWriter, r *http.Request) {
	product, err := api.products.Publish(r.Context(), r.PathValue("slug"))
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products.ToView(product))
}
