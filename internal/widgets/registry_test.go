package widgets

import (
	"context"
	"errors"
	"html/template"
	"strings"
	"testing"

	"github.com/goliatone/go-showcase/internal/markdown"
	"github.com/goliatone/go-showcase/internal/validation"
)

type recordingObserver struct {
	calls []string
}

func (r *recordingObserver) ObserveWidget(kind, code string) {
	r.calls = append(r.calls, kind+":"+code)
}

func newBuiltinRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	opts = append(opts, WithMarkdown(markdown.NewParser(markdown.Options{})))
	registry := NewRegistry(opts...)
	RegisterBuiltins(registry)
	return registry
}

func TestRegistryCanonicalKeyAndLastWins(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	first := func(context.Context, Input) (template.HTML, error) { return "first", nil }
	second := func(context.Context, Input) (template.HTML, error) { return "second", nil }
	if err := registry.Register(" Newsletter ", Registration{Factory: first}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register("newsletter", Registration{Name: "Newsletter", Factory: second}); err != nil {
		t.Fatalf("register: %v", err)
	}

	defs := registry.List()
	if len(defs) != 1 || defs[0].Kind != "newsletter" || defs[0].Name != "Newsletter" {
		t.Fatalf("unexpected definitions %+v", defs)
	}
	out := registry.Resolve(context.Background(), map[string]any{TypeKey: "NEWSLETTER"}, RenderContext{})
	if out.HTML != "second" || out.Placeholder {
		t.Fatalf("expected last registration to win, got %+v", out)
	}
}

func TestRegistryRejectsInvalidRegistrations(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	factory := func(context.Context, Input) (template.HTML, error) { return "", nil }
	if err := registry.Register("  ", Registration{Factory: factory}); !errors.Is(err, ErrKindRequired) {
		t.Fatalf("expected ErrKindRequired, got %v", err)
	}
	if err := registry.Register("x", Registration{}); !errors.Is(err, ErrFactoryRequired) {
		t.Fatalf("expected ErrFactoryRequired, got %v", err)
	}
	if err := registry.Register("x", Registration{Factory: factory, Schema: map[string]any{"type": 12}}); !errors.Is(err, validation.ErrSchemaInvalid) {
		t.Fatalf("expected ErrSchemaInvalid, got %v", err)
	}
	if len(registry.List()) != 0 {
		t.Fatal("expected invalid registrations to be ignored")
	}
}

func TestResolveUnregisteredKindRendersPlaceholder(t *testing.T) {
	t.Parallel()

	observer := &recordingObserver{}
	registry := newBuiltinRegistry(t, WithObserver(observer))
	out := registry.Resolve(context.Background(), map[string]any{TypeKey: "carousel-3d"}, RenderContext{IsPreview: true})
	if !out.Placeholder || out.Code != CodeUnregistered {
		t.Fatalf("expected unregistered placeholder, got %+v", out)
	}
	if !strings.Contains(string(out.HTML), "widget-placeholder") || !strings.Contains(string(out.HTML), "carousel-3d") {
		t.Fatalf("expected visible placeholder, got %s", out.HTML)
	}
	if len(observer.calls) != 1 || observer.calls[0] != "unknown:"+CodeUnregistered {
		t.Fatalf("unexpected observations %v", observer.calls)
	}

	missing := registry.Resolve(context.Background(), map[string]any{"heading": "x"}, RenderContext{})
	if !missing.Placeholder || missing.Code != CodeMissingType {
		t.Fatalf("expected missing type placeholder, got %+v", missing)
	}
	if strings.Contains(string(missing.HTML), "Widget unavailable") {
		t.Fatalf("expected production placeholder to hide details, got %s", missing.HTML)
	}
}

func TestResolveRecoversFromPanicsAndErrors(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.MustRegister("boom", Registration{Factory: func(context.Context, Input) (template.HTML, error) {
		panic("nil map")
	}})
	registry.MustRegister("fails", Registration{Factory: func(context.Context, Input) (template.HTML, error) {
		return "", errors.New("upstream unavailable")
	}})

	if out := registry.Resolve(context.Background(), map[string]any{TypeKey: "boom"}, RenderContext{}); !out.Placeholder || out.Code != CodePanic {
		t.Fatalf("expected panic placeholder, got %+v", out)
	}
	if out := registry.Resolve(context.Background(), map[string]any{TypeKey: "fails"}, RenderContext{}); !out.Placeholder || out.Code != CodeRenderError {
		t.Fatalf("expected render error placeholder, got %+v", out)
	}
}

func TestValidateUsesKindSchema(t *testing.T) {
	t.Parallel()

	registry := newBuiltinRegistry(t)
	if err := registry.Validate(map[string]any{TypeKey: KindHeroSimple, "heading": "Hi", "align": "left"}); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	err := registry.Validate(map[string]any{TypeKey: KindHeroSimple, "align": "diagonal", "colour": "red"})
	if !errors.Is(err, ErrInvalidConfig) || !errors.Is(err, validation.ErrSchemaValidation) {
		t.Fatalf("expected schema validation error, got %v", err)
	}
	if issues := validation.Issues(err); len(issues) == 0 {
		t.Fatal("expected issues on config error")
	}

	if err := registry.Validate(map[string]any{TypeKey: "nope"}); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if err := registry.Validate(nil); !errors.Is(err, ErrWidgetTypeRequired) {
		t.Fatalf("expected ErrWidgetTypeRequired, got %v", err)
	}

	out := registry.Resolve(context.Background(), map[string]any{TypeKey: KindFAQ, "items": "not a list"}, RenderContext{})
	if !out.Placeholder || out.Code != CodeInvalidConfig {
		t.Fatalf("expected invalid config placeholder, got %+v", out)
	}
}

func TestContentIsNotValidatedAgainstSchema(t *testing.T) {
	t.Parallel()

	registry := newBuiltinRegistry(t)
	config := map[string]any{
		TypeKey:    KindHeroSimple,
		ContentKey: Content{Fields: []ContentField{{Key: "heading", Value: "From content"}}}.Map(),
	}
	if err := registry.Validate(config); err != nil {
		t.Fatalf("expected injected content to be accepted, got %v", err)
	}
	out := registry.Resolve(context.Background(), config, RenderContext{})
	if out.Placeholder || !strings.Contains(string(out.HTML), "From content") {
		t.Fatalf("expected heading from content, got %+v", out)
	}
}
