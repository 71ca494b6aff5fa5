package http

import (
	"errors"
	"net/http"

	"github.com/goliatone/go-showcase/internal/media"
)

const multipartOverhead = 1 << 20

type remoteUploadPayload struct {
	URL string `json:"url"`
}

func (api *API) registerMediaRoutes(mux *http.ServeMux, base string) {
	mux.Handle("GET "+joinPath(base, "images"), api.admin(api.handleImageList))
	upload := joinPath(base, "upload")
	mux.Handle("POST "+upload, api.admin(api.handleUpload))
	mux.Handle("POST "+upload+"/remote", api.admin(api.handleRemoteUpload))
	mux.Handle("DELETE "+upload, api.admin(api.handleUploadDelete))
}

func (api *API) handleImageList(w http.ResponseWriter, r *http.Request) {
	images, err := api.media.List(r.Context())
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeList(w, images)
}

func (api *API) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, api.maxUpload+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.writeError(w, r, media.ErrFileTooLarge)
			return
		}
		api.writeError(w, r, badRequest("Multipart body is invalid"))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		api.writeError(w, r, media.ErrFileRequired)
		return
	}
	defer file.Close()

	image, err := api.media.Upload(r.Context(), media.UploadRequest{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	api.observeUpload("upload")
	writeJSON(w, http.StatusCreated, image)
}

func (api *API) handleRemoteUpload(w http.ResponseWriter, r *http.Request) {
	var payload remoteUploadPayload
	if err := decodeJSON(r, &payload); err != nil {
		api.writeError(w, r, err)
		return
	}
	image, err := api.media.Rehost(r.Context(), payload.URL)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	api.observeUpload("remote")
	writeJSON(w, http.StatusCreated, image)
}

func (api *API) handleUploadDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.URL.Query().Get("id"))
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	if err := api.media.Delete(r.Context(), id); err != nil {
		api.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *API) observeUpload(origin string) {
	if api.uploads != nil {
		api.uploads.ObserveUpload(origin)
	}
}
