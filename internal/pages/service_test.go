package pages

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-showcase/internal/domain"
	"github.com/goliatone/go-showcase/internal/validation"
	"github.com/goliatone/go-showcase/internal/widgets"
	"github.com/google/uuid"
)

func newTestService(t *testing.T, opts ...ServiceOption) Service {
	t.Helper()
	registry := widgets.NewRegistry()
	widgets.RegisterBuiltins(registry)
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	base := []ServiceOption{
		WithClock(func() time.Time { return clock }),
		WithWidgetValidator(registry),
	}
	return NewService(NewMemoryRepository(), append(base, opts...)...)
}

func adminViewer() domain.Viewer {
	return domain.Viewer{UserID: "admin", Role: domain.RoleAdmin, Authenticated: true}
}

func TestServiceCreateDerivesSlugAndOrdersSections(t *testing.T) {
	svc := newTestService(t)
	page, err := svc.Create(context.Background(), SaveRequest{
		Title:    "Spring Launch",
		Language: "EN",
		Sections: []SectionInput{
			{SectionType: "HERO_SECTION", Widget: map[string]any{"widgetType": "hero-simple", "heading": "Hi"}},
			{SectionType: "SERVICES_SECTION"},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if page.Slug != "spring-launch" {
		t.Fatalf("expected derived slug, got %q", page.Slug)
	}
	if page.Language != "en" || page.Status != domain.StatusDraft {
		t.Fatalf("unexpected page %+v", page)
	}
	if len(page.Sections) != 2 || page.Sections[0].Position != 0 || page.Sections[1].SectionType != "SERVICES_SECTION" {
		t.Fatalf("unexpected sections %+v", page.Sections)
	}
	if page.Sections[0].PageID != page.ID {
		t.Fatalf("section not linked to page")
	}
}

func TestServiceCreateValidation(t *testing.T) {
	svc := newTestService(t)
	cases := []struct {
		name   string
		req    SaveRequest
		issue  string
		schema bool
	}{
		{name: "missing title", req: SaveRequest{Slug: "x"}, issue: "title"},
		{name: "unsupported language", req: SaveRequest{Title: "X", Language: "de"}, issue: "language"},
		{name: "blank section type", req: SaveRequest{Title: "X", Sections: []SectionInput{{}}}, issue: "sections.0.sectionType"},
		{name: "unknown widget field", req: SaveRequest{Title: "X", Sections: []SectionInput{{
			SectionType: "HERO_SECTION",
			Widget:      map[string]any{"widgetType": "hero-simple", "colour": "red"},
		}}}, schema: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.req)
			if err == nil {
				t.Fatal("expected error")
			}
			if tc.schema {
				if !errors.Is(err, validation.ErrSchemaValidation) {
					t.Fatalf("expected schema error, got %v", err)
				}
				return
			}
			if !validation.IsInputError(err) {
				t.Fatalf("expected input error, got %v", err)
			}
			found := false
			for _, issue := range validation.InputIssues(err) {
				if issue.Location == tc.issue {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected issue on %s, got %+v", tc.issue, validation.InputIssues(err))
			}
		})
	}
}

func TestServiceSlugUniquePerLanguage(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	if _, err := svc.Create(ctx, SaveRequest{Title: "Launch", Language: "en"}); err != nil {
		t.Fatalf("create en: %v", err)
	}
	if _, err := svc.Create(ctx, SaveRequest{Title: "Launch", Language: "th"}); err != nil {
		t.Fatalf("create th: %v", err)
	}
	if _, err := svc.Create(ctx, SaveRequest{Title: "Launch", Language: "en"}); !errors.Is(err, ErrSlugExists) {
		t.Fatalf("expected ErrSlugExists, got %v", err)
	}
}

func TestServicePublishAndUpdateLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	page, err := svc.Create(ctx, SaveRequest{Title: "Launch"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.GetBySlug(ctx, "launch", "en", domain.Anonymous()); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected draft hidden from anonymous, got %v", err)
	}

	published, err := svc.Publish(ctx, page.ID)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !published.Status.IsPublished() || published.PublishedAt == nil {
		t.Fatalf("expected published page, got %+v", published)
	}
	again, err := svc.Publish(ctx, page.ID)
	if err != nil || !again.Status.IsPublished() {
		t.Fatalf("publish should be idempotent: %v", err)
	}
	if _, err := svc.GetBySlug(ctx, "launch", "en", domain.Anonymous()); err != nil {
		t.Fatalf("expected published page visible, got %v", err)
	}

	updated, err := svc.Update(ctx, page.ID, SaveRequest{Title: "Launch v2"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != domain.StatusDraft {
		t.Fatalf("update must reset to draft, got %s", updated.Status)
	}
	if updated.Slug != "launch" {
		t.Fatalf("update without slug keeps slug, got %q", updated.Slug)
	}

	listed, err := svc.List(ctx, Filter{}, domain.Anonymous())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("anonymous list should hide drafts, got %d", len(listed))
	}
	listed, err = svc.List(ctx, Filter{}, adminViewer())
	if err != nil || len(listed) != 1 {
		t.Fatalf("admin list: %v %d", err, len(listed))
	}
}

func TestServiceDelete(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	page, err := svc.Create(ctx, SaveRequest{Title: "Launch"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, page.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, page.ID, adminViewer()); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := svc.Delete(ctx, uuid.Nil); !errors.Is(err, ErrPageIDRequired) {
		t.Fatalf("expected ErrPageIDRequired, got %v", err)
	}
}
