package media_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/goliatone/go-showcase/internal/media"
	"github.com/goliatone/go-showcase/pkg/testsupport"
	"github.com/google/uuid"
)

func TestMediaServiceWithBunStorage(t *testing.T) {
	ctx := context.Background()
	db := testsupport.NewBunDB(t, (*media.Image)(nil))
	repo := media.NewBunRepository(db)
	svc := media.NewService(repo, media.NewMemoryStore("/uploads"))

	img, err := svc.Upload(ctx, media.UploadRequest{Filename: "hero.png", Body: bytes.NewReader(pngHeader)})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	byURL, err := repo.GetByURL(ctx, img.URL)
	if err != nil {
		t.Fatalf("get by url: %v", err)
	}
	if byURL.ID != img.ID {
		t.Fatalf("expected %s, got %s", img.ID, byURL.ID)
	}

	if err := media.AdjustUsage(ctx, db, map[uuid.UUID]int{img.ID: 2}); err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if err := svc.AdjustUsage(ctx, map[uuid.UUID]int{img.ID: -5}); err != nil {
		t.Fatalf("adjust below zero: %v", err)
	}
	stored, err := svc.Get(ctx, img.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.UsageCount != 0 {
		t.Fatalf("expected clamped usage 0, got %d", stored.UsageCount)
	}

	images, err := svc.List(ctx)
	if err != nil || len(images) != 1 {
		t.Fatalf("list: %d %v", len(images), err)
	}

	if err := svc.Delete(ctx, img.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, img.ID); !media.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
