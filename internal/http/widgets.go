package http

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/goliatone/go-showcase/internal/validation"
	"github.com/goliatone/go-showcase/internal/widgets"
)

type widgetPreviewPayload struct {
	Config map[string]any `json:"config"`
	Locale string         `json:"locale"`
}

type widgetPreviewResponse struct {
	Kind        string                       `json:"kind"`
	HTML        template.HTML                `json:"html"`
	Placeholder bool                         `json:"placeholder"`
	Code        string                       `json:"code,omitempty"`
	Reason      string                       `json:"reason,omitempty"`
	Issues      []validation.ValidationIssue `json:"issues,omitempty"`
}

func (api *API) registerWidgetRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "widgets")
	mux.Handle("GET "+root, api.admin(api.handleWidgetList))
	mux.Handle("POST "+root+"/preview", api.admin(api.handleWidgetPreview))
}

func (api *API) handleWidgetList(w http.ResponseWriter, _ *http.Request) {
	writeList(w, api.widgets.List())
}

// handleWidgetPreview renders a configuration the way a preview page would.
// Invalid configurations still answer 200 with the placeholder and issues.
func (api *API) handleWidgetPreview(w http.ResponseWriter, r *http.Request) {
	var payload widgetPreviewPayload
	if err := decodeJSON(r, &payload); err != nil {
		api.writeError(w, r, err)
		return
	}
	if payload.Config == nil {
		api.writeError(w, r, badRequest("Config is required"))
		return
	}
	locale := strings.ToLower(strings.TrimSpace(payload.Locale))
	if locale == "" && api.resolver != nil {
		locale = api.resolver.DefaultLocale()
	}

	var issues []validation.ValidationIssue
	if err := api.widgets.Validate(payload.Config); err != nil {
		issues = validation.Issues(err)
	}
	rendered := api.widgets.Resolve(r.Context(), payload.Config, widgets.RenderContext{Locale: locale, IsPreview: true})
	writeJSON(w, http.StatusOK, widgetPreviewResponse{
		Kind:        rendered.Kind,
		HTML:        rendered.HTML,
		Placeholder: rendered.Placeholder,
		Code:        rendered.Code,
		Reason:      rendered.Reason,
		Issues:      issues,
	})
}
