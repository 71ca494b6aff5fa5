package pages_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-showcase/internal/domain"
	"github.com/goliatone/go-showcase/internal/pages"
	"github.com/goliatone/go-showcase/pkg/testsupport"
)

func TestPageServiceWithBunStorage(t *testing.T) {
	ctx := context.Background()
	db := testsupport.NewBunDB(t, (*pages.Page)(nil), (*pages.Section)(nil))
	svc := pages.NewService(pages.NewBunRepository(db))

	created, err := svc.Create(ctx, pages.SaveRequest{
		Title: "Launch",
		Sections: []pages.SectionInput{
			{SectionType: "HERO_SECTION", Widget: map[string]any{"widgetType": "hero-simple", "heading": "Hello"}},
			{SectionType: "SERVICES_SECTION"},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, pages.SaveRequest{Title: "Launch"}); !errors.Is(err, pages.ErrSlugExists) {
		t.Fatalf("expected ErrSlugExists, got %v", err)
	}

	fetched, err := svc.GetBySlug(ctx, "launch", "en", adminViewer())
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if fetched.ID != created.ID || len(fetched.Sections) != 2 {
		t.Fatalf("unexpected page %+v", fetched)
	}
	if fetched.Sections[0].SectionType != "HERO_SECTION" || fetched.Sections[0].Widget["heading"] != "Hello" {
		t.Fatalf("sections not restored in order: %+v", fetched.Sections[0])
	}

	updated, err := svc.Update(ctx, created.ID, pages.SaveRequest{
		Title:    "Launch",
		Sections: []pages.SectionInput{{SectionType: "CTA_SECTION"}},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.Sections) != 1 || updated.Sections[0].SectionType != "CTA_SECTION" {
		t.Fatalf("expected sections replaced, got %+v", updated.Sections)
	}

	if _, err := svc.Publish(ctx, created.ID); err != nil {
		t.Fatalf("publish: %v", err)
	}
	public, err := svc.List(ctx, pages.Filter{Language: "en"}, domain.Anonymous())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(public) != 1 {
		t.Fatalf("expected one published page, got %d", len(public))
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, created.ID, adminViewer()); !pages.IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := svc.Delete(ctx, created.ID); !pages.IsNotFound(err) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}
