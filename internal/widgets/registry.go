package widgets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"maps"
	"sort"
	"sync"

	"github.com/goliatone/go-showcase/internal/logging"
	"github.com/goliatone/go-showcase/internal/markdown"
	"github.com/goliatone/go-showcase/internal/validation"
	"github.com/goliatone/go-showcase/pkg/interfaces"
)

// Placeholder codes, also used as metric labels.
const (
	CodeMissingType   = "missing_type"
	CodeUnregistered  = "unregistered"
	CodeInvalidConfig = "invalid_config"
	CodeRenderError   = "render_error"
	CodePanic         = "panic"
)

// Observer is told about every resolution; code is empty on success.
type Observer interface {
	ObserveWidget(kind, code string)
}

type Option func(*Registry)

func WithLogger(logger interfaces.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithObserver(observer Observer) Option {
	return func(r *Registry) {
		r.observer = observer
	}
}

// WithMarkdown sets the parser used for LONG content fields.
func WithMarkdown(parser *markdown.Parser) Option {
	return func(r *Registry) {
		r.markdown = parser
	}
}

type entry struct {
	kind   string
	reg    Registration
	schema *validation.Schema
}

// Registry maps widget kinds to factories.
type Registry struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	logger   interfaces.Logger
	observer Observer
	markdown *markdown.Parser
}

// NewRegistry constructs an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[string]*entry),
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register stores reg under kind. A later registration replaces an earlier
// one for the same kind.
func (r *Registry) Register(kind string, reg Registration) error {
	key := canonicalKey(kind)
	if key == "" {
		return ErrKindRequired
	}
	if reg.Factory == nil {
		return ErrFactoryRequired
	}
	schema, err := validation.Compile(reg.Schema)
	if err != nil {
		return fmt.Errorf("widgets: %s: %w", key, err)
	}
	if reg.Name == "" {
		reg.Name = key
	}
	if reg.Defaults != nil {
		defaults, err := normalize(reg.Defaults)
		if err != nil {
			return fmt.Errorf("widgets: %s defaults: %w", key, err)
		}
		reg.Defaults = defaults
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = &entry{kind: key, reg: reg, schema: schema}
	return nil
}

// MustRegister is Register for code-defined kinds.
func (r *Registry) MustRegister(kind string, reg Registration) {
	if err := r.Register(kind, reg); err != nil {
		panic(err)
	}
}

// Lookup returns the definition for kind.
func (r *Registry) Lookup(kind string) (Definition, bool) {
	e, ok := r.entry(canonicalKey(kind))
	if !ok {
		return Definition{}, false
	}
	return e.definition(), true
}

// List returns every definition sorted by kind.
func (r *Registry) List() []Definition {
	r.mu.RLock()
	out := make([]Definition, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.definition())
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

// Validate checks config against its kind's schema.
func (r *Registry) Validate(config map[string]any) error {
	_, err := r.check(config)
	return err
}

// Resolve renders config. It never returns an error and never panics: any
// failure degrades to a placeholder.
func (r *Registry) Resolve(ctx context.Context, config map[string]any, rc RenderContext) (out Rendered) {
	kind := KindOf(config)
	logger := logging.FromContext(ctx, r.logger)
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.Error("widget factory panicked", "kind", kind, "panic", fmt.Sprint(recovered))
			out = placeholder(kind, CodePanic, "widget failed to render", rc)
		}
		if r.observer != nil {
			r.observer.ObserveWidget(labelKind(kind, out), out.Code)
		}
	}()

	e, err := r.check(config)
	if err != nil {
		code := CodeInvalidConfig
		switch {
		case kind == "":
			code = CodeMissingType
		case e == nil:
			code = CodeUnregistered
		}
		logger.Warn("widget rendered as placeholder", "kind", kind, "code", code, "error", err)
		return placeholder(kind, code, err.Error(), rc)
	}

	content, err := decodeContent(config[ContentKey])
	if err != nil {
		logger.Warn("widget content unreadable", "kind", kind, "error", err)
		return placeholder(kind, CodeInvalidConfig, "content is malformed", rc)
	}
	normalized, err := normalize(withoutContent(config))
	if err != nil {
		return placeholder(kind, CodeInvalidConfig, "configuration is malformed", rc)
	}
	in := Input{
		Kind:     e.kind,
		Config:   normalized,
		Defaults: e.reg.Defaults,
		Content:  content,
		Render:   rc,
		markdown: r.markdown,
	}
	html, err := e.reg.Factory(ctx, in)
	if err != nil {
		logger.Warn("widget factory failed", "kind", kind, "error", err)
		return placeholder(kind, CodeRenderError, err.Error(), rc)
	}
	return Rendered{Kind: e.kind, HTML: html}
}

// check returns the entry for config once it passed validation. The entry is
// returned alongside schema failures.
func (r *Registry) check(config map[string]any) (*entry, error) {
	kind := KindOf(config)
	if kind == "" {
		return nil, &ConfigError{Err: ErrWidgetTypeRequired, Issues: []validation.ValidationIssue{{
			Location: "/" + TypeKey, Message: "widget type is required",
		}}}
	}
	e, ok := r.entry(kind)
	if !ok {
		return nil, &ConfigError{Kind: kind, Err: ErrUnknownKind, Issues: []validation.ValidationIssue{{
			Location: "/" + TypeKey, Message: fmt.Sprintf("unknown widget type %q", kind),
		}}}
	}
	merged := maps.Clone(e.reg.Defaults)
	if merged == nil {
		merged = map[string]any{}
	}
	maps.Copy(merged, withoutContent(config))
	if err := e.schema.Validate(merged); err != nil {
		return e, &ConfigError{Kind: kind, Err: ErrInvalidConfig, Issues: validation.Issues(err)}
	}
	return e, nil
}

func (r *Registry) entry(kind string) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[kind]
	return e, ok
}

func (e *entry) definition() Definition {
	return Definition{
		Kind:        e.kind,
		Name:        e.reg.Name,
		Description: e.reg.Description,
		Schema:      e.schema.Raw(),
		Defaults:    maps.Clone(e.reg.Defaults),
	}
}

func withoutContent(config map[string]any) map[string]any {
	out := make(map[string]any, len(config))
	for k, v := range config {
		if k == ContentKey {
			continue
		}
		out[k] = v
	}
	return out
}

// normalize round-trips through encoding/json so factories only see plain
// JSON shapes ([]any, map[string]any, float64).
func normalize(config map[string]any) (map[string]any, error) {
	encoded, err := json.Marshal(config)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(encoded, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func labelKind(kind string, out Rendered) string {
	if out.Code == CodeUnregistered || out.Code == CodeMissingType {
		return "unknown"
	}
	return kind
}

var placeholderTemplate = template.Must(template.New("placeholder").Parse(
	`<div class="widget-placeholder" role="note" data-widget="{{.Kind}}" data-reason="{{.Code}}">` +
		`{{if .Preview}}<strong>Widget unavailable</strong>{{if .Kind}} ({{.Kind}}){{end}}: {{.Reason}}` +
		`{{else}}This section is temporarily unavailable.{{end}}</div>`))

func placeholder(kind, code, reason string, rc RenderContext) Rendered {
	var buf bytes.Buffer
	_ = placeholderTemplate.Execute(&buf, struct {
		Kind, Code, Reason string
		Preview            bool
	}{kind, code, reason, rc.IsPreview})
	return Rendered{
		Kind:        kind,
		HTML:        template.HTML(buf.String()),
		Placeholder: true,
		Code:        code,
		Reason:      reason,
	}
}
