package migrations

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-showcase/internal/content"
	"github.com/goliatone/go-showcase/internal/domain"
	"github.com/goliatone/go-showcase/pkg/testsupport"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func TestRegistryRejectsInvalidMigrations(t *testing.T) {
	registry := NewRegistry()
	noop := func(context.Context, bun.IDB) error { return nil }
	if err := registry.Register(Migration{Up: noop}); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
	if err := registry.Register(Migration{Name: "0001"}); !errors.Is(err, ErrUpRequired) {
		t.Fatalf("expected ErrUpRequired, got %v", err)
	}
	if err := registry.Register(Migration{Name: "0001", Up: noop}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register(Migration{Name: "0001", Up: noop}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestBootstrapIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := testsupport.NewBunDB(t)

	applied, err := Bootstrap(ctx, db)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if len(applied) != 2 {
		t.Fatalf("expected two migrations applied, got %v", applied)
	}
	again, err := Bootstrap(ctx, db)
	if err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected nothing pending, got %v", again)
	}

	record := func() *content.Record {
		return &content.Record{
			ID: uuid.New(), PageSlug: "home", SectionType: "HERO_SECTION", Language: "en", Status: domain.StatusDraft,
		}
	}
	if _, err := db.NewInsert().Model(record()).Exec(ctx); err != nil {
		t.Fatalf("insert record: %v", err)
	}
	if _, err := db.NewInsert().Model(record()).Exec(ctx); err == nil {
		t.Fatal("expected unique content key index to reject duplicate")
	}
}
