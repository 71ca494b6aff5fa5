package logging

import (
	"context"
	"testing"

	"github.com/goliatone/go-showcase/pkg/interfaces"
)

type recordingLogger struct {
	fields   []map[string]any
	contexts []context.Context
}

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	r.fields = append(r.fields, copied)
	return r
}

func (r *recordingLogger) WithContext(ctx context.Context) interfaces.Logger {
	r.contexts = append(r.contexts, ctx)
	return r
}

type stubProvider struct {
	requested []string
	logger    interfaces.Logger
}

func (s *stubProvider) GetLogger(name string) interfaces.Logger {
	s.requested = append(s.requested, name)
	return s.logger
}

func TestModuleLoggerFallsBackToNoOp(t *testing.T) {
	logger := ModuleLogger(nil, "showcase.test")
	if _, ok := logger.(noopLogger); !ok {
		t.Fatalf("expected noopLogger fallback, got %T", logger)
	}
	logger = logger.WithContext(context.Background())
	logger.Debug("noop")
}

func TestModuleLoggerAnnotatesModule(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	_ = ResolverLogger(provider)

	if len(provider.requested) != 1 || provider.requested[0] != resolverModule {
		t.Fatalf("expected module %s, got %v", resolverModule, provider.requested)
	}
	if len(rec.fields) != 1 || rec.fields[0]["module"] != resolverModule {
		t.Fatalf("expected module field %s, got %v", resolverModule, rec.fields)
	}
}

func TestModuleLoggerDefaultsToRootModule(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	_ = ModuleLogger(provider, "  ")

	if provider.requested[0] != rootModule {
		t.Fatalf("expected default module %s, got %v", rootModule, provider.requested)
	}
}

func TestFromContextMergesRequestFields(t *testing.T) {
	rec := &recordingLogger{}
	ctx := ContextWithFields(context.Background(), map[string]any{"request_id": "abc"})
	ctx = ContextWithFields(ctx, map[string]any{"path": "/en"})

	_ = FromContext(ctx, rec)

	if len(rec.contexts) != 1 {
		t.Fatalf("expected context to be bound once, got %d", len(rec.contexts))
	}
	if len(rec.fields) != 1 {
		t.Fatalf("expected one WithFields call, got %d", len(rec.fields))
	}
	got := rec.fields[0]
	if got["request_id"] != "abc" || got["path"] != "/en" {
		t.Fatalf("unexpected merged fields %v", got)
	}
}

func TestContextFieldsReturnsCopy(t *testing.T) {
	ctx := ContextWithFields(context.Background(), map[string]any{"a": 1})
	fields := ContextFields(ctx)
	fields["a"] = 2
	if ContextFields(ctx)["a"] != 1 {
		t.Fatal("expected stored fields to be immutable through returned map")
	}
	if ContextFields(context.Background()) != nil {
		t.Fatal("expected nil fields for bare context")
	}
}
