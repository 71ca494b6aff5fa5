package technologies_test

import (
	"context"
	"errors"
	"testing"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-showcase/internal/technologies"
	"github.com/goliatone/go-showcase/pkg/testsupport"
	"github.com/google/uuid"
)

func TestServiceNameIsCaseInsensitiveUnique(t *testing.T) {
	svc := technologies.NewService(technologies.NewMemoryRepository())
	ctx := context.Background()

	created, err := svc.Create(ctx, technologies.SaveRequest{Name: "  Go  Lang ", Category: "language"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Name != "Go Lang" || created.Slug != "go-lang" {
		t.Fatalf("unexpected normalization %+v", created)
	}
	if _, err := svc.Create(ctx, technologies.SaveRequest{Name: "go lang"}); !errors.Is(err, technologies.ErrNameExists) {
		t.Fatalf("expected ErrNameExists, got %v", err)
	}
	if _, err := svc.Create(ctx, technologies.SaveRequest{Name: " "}); !errors.Is(err, technologies.ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
}

func TestServiceUpdateAndDelete(t *testing.T) {
	svc := technologies.NewService(technologies.NewMemoryRepository())
	ctx := context.Background()
	goTech, err := svc.Create(ctx, technologies.SaveRequest{Name: "Go"})
	if err != nil {
		t.Fatalf("create go: %v", err)
	}
	if _, err := svc.Create(ctx, technologies.SaveRequest{Name: "Rust"}); err != nil {
		t.Fatalf("create rust: %v", err)
	}

	if _, err := svc.Update(ctx, goTech.ID, technologies.SaveRequest{Name: "RUST"}); !errors.Is(err, technologies.ErrNameExists) {
		t.Fatalf("expected rename collision, got %v", err)
	}
	updated, err := svc.Update(ctx, goTech.ID, technologies.SaveRequest{Name: "go", Category: "language"})
	if err != nil {
		t.Fatalf("update same name different case: %v", err)
	}
	if updated.Name != "go" || updated.Category != "language" {
		t.Fatalf("unexpected update %+v", updated)
	}

	languages, err := svc.List(ctx, "language")
	if err != nil || len(languages) != 1 {
		t.Fatalf("expected one language, got %d (%v)", len(languages), err)
	}

	if err := svc.Delete(ctx, goTech.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, goTech.ID); !technologies.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := svc.Delete(ctx, uuid.New()); !technologies.IsNotFound(err) {
		t.Fatalf("expected not found for unknown id, got %v", err)
	}
}

func TestServiceWithCachedBunStorage(t *testing.T) {
	ctx := context.Background()
	db := testsupport.NewBunDB(t, (*technologies.Technology)(nil))

	cacheCfg := repocache.DefaultConfig()
	cacheCfg.TTL = time.Minute
	cacheService, err := repocache.NewCacheService(cacheCfg)
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}
	repo := technologies.NewBunRepositoryWithCache(db, cacheService, repocache.NewDefaultKeySerializer())
	svc := technologies.NewService(repo)

	created, err := svc.Create(ctx, technologies.SaveRequest{Name: "PostgreSQL", Category: "database"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); err != nil {
		t.Fatalf("first get: %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); err != nil {
		t.Fatalf("cached get: %v", err)
	}
	if _, err := svc.Create(ctx, technologies.SaveRequest{Name: "postgresql"}); !errors.Is(err, technologies.ErrNameExists) {
		t.Fatalf("expected ErrNameExists, got %v", err)
	}
	list, err := svc.List(ctx, "")
	if err != nil || len(list) != 1 {
		t.Fatalf("expected one technology, got %d (%v)", len(list), err)
	}
}
