package widgets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/goliatone/go-showcase/internal/validation"
)

// TypeKey is the discriminator field every widget configuration carries.
const TypeKey = "widgetType"

// ContentKey holds resolved section content injected by the page composer.
const ContentKey = "content"

var (
	ErrKindRequired       = errors.New("widgets: kind required")
	ErrFactoryRequired    = errors.New("widgets: factory required")
	ErrWidgetTypeRequired = errors.New("widgets: widgetType is required")
	ErrUnknownKind        = errors.New("widgets: unknown widget type")
	ErrInvalidConfig      = errors.New("widgets: invalid configuration")
)

// Factory renders one widget.
type Factory func(ctx context.Context, in Input) (template.HTML, error)

// Registration describes a widget kind.
type Registration struct {
	Name        string
	Description string
	// Schema is a JSON schema document applied to the configuration with
	// defaults merged in. The content key is never validated.
	Schema   map[string]any
	Defaults map[string]any
	Factory  Factory
}

// Definition is the public description of a registered kind.
type Definition struct {
	Kind        string         `json:"kind"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Schema      map[string]any `json:"schema,omitempty"`
	Defaults    map[string]any `json:"defaults,omitempty"`
}

// RenderContext carries request-level rendering switches.
type RenderContext struct {
	Locale    string `json:"locale"`
	IsPreview bool   `json:"isPreview"`
}

// Rendered is the outcome of resolving a configuration. Placeholder output is
// still valid HTML and safe to place on the page.
type Rendered struct {
	Kind        string        `json:"kind"`
	HTML        template.HTML `json:"html"`
	Placeholder bool          `json:"placeholder"`
	Code        string        `json:"code,omitempty"`
	Reason      string        `json:"reason,omitempty"`
}

// ContentField is a resolved field handed to widgets.
type ContentField struct {
	Key   string `json:"key"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// ContentButton is a resolved call to action.
type ContentButton struct {
	Label string `json:"label,omitempty"`
	Text  string `json:"text"`
	URL   string `json:"url"`
}

// Content is the resolved section content a widget may draw from.
type Content struct {
	Fields  []ContentField  `json:"fields"`
	Buttons []ContentButton `json:"buttons"`
}

// Field returns the field with key.
func (c Content) Field(key string) (ContentField, bool) {
	for _, field := range c.Fields {
		if field.Key == key {
			return field, true
		}
	}
	return ContentField{}, false
}

// Map converts the content into the plain form stored under ContentKey.
func (c Content) Map() map[string]any {
	fields := make([]any, 0, len(c.Fields))
	for _, f := range c.Fields {
		fields = append(fields, map[string]any{"key": f.Key, "type": f.Type, "value": f.Value})
	}
	buttons := make([]any, 0, len(c.Buttons))
	for _, b := range c.Buttons {
		buttons = append(buttons, map[string]any{"label": b.Label, "text": b.Text, "url": b.URL})
	}
	return map[string]any{"fields": fields, "buttons": buttons}
}

func decodeContent(raw any) (Content, error) {
	if raw == nil {
		return Content{}, nil
	}
	if typed, ok := raw.(Content); ok {
		return typed, nil
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return Content{}, err
	}
	var out Content
	if err := json.Unmarshal(encoded, &out); err != nil {
		return Content{}, err
	}
	return out, nil
}

// ConfigError reports why a configuration was rejected.
type ConfigError struct {
	Kind   string
	Err    error
	Issues []validation.ValidationIssue
}

func (e *ConfigError) Error() string {
	if len(e.Issues) == 0 {
		return e.Err.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Location, issue.Message))
	}
	return fmt.Sprintf("%s (%s)", e.Err.Error(), strings.Join(parts, "; "))
}

func (e *ConfigError) Unwrap() []error {
	return []error{e.Err, validation.ErrSchemaValidation}
}

func (e *ConfigError) ValidationIssues() []validation.ValidationIssue {
	return append([]validation.ValidationIssue(nil), e.Issues...)
}

// KindOf reads the discriminator of config.
func KindOf(config map[string]any) string {
	if config == nil {
		return ""
	}
	kind, _ := config[TypeKey].(string)
	return canonicalKey(kind)
}

func canonicalKey(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}
