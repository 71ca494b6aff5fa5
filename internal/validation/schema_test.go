package validation

import (
	"errors"
	"testing"
)

func heroSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"headline": map[string]any{"type": "string", "minLength": 1},
			"count":    map[string]any{"type": "integer"},
		},
		"required": []any{"headline"},
	}
}

func TestSchemaValidateAcceptsMatchingPayload(t *testing.T) {
	schema, err := Compile(heroSchema())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if err := schema.Validate(map[string]any{"headline": "Ship faster", "count": 3}); err != nil {
		t.Fatalf("expected payload to validate, got %v", err)
	}
}

func TestSchemaValidateReportsIssues(t *testing.T) {
	schema, err := Compile(heroSchema())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	err = schema.Validate(map[string]any{"count": "three"})
	if !errors.Is(err, ErrSchemaValidation) {
		t.Fatalf("expected ErrSchemaValidation, got %v", err)
	}
	if len(Issues(err)) == 0 {
		t.Fatal("expected validation issues")
	}
}

func TestCompileRejectsInvalidSchema(t *testing.T) {
	_, err := Compile(map[string]any{"type": 42})
	if !errors.Is(err, ErrSchemaInvalid) {
		t.Fatalf("expected ErrSchemaInvalid, got %v", err)
	}
}

func TestEmptySchemaAcceptsEverything(t *testing.T) {
	schema, err := Compile(nil)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if err := schema.Validate(map[string]any{"anything": true}); err != nil {
		t.Fatalf("expected empty schema to accept payload, got %v", err)
	}
}
