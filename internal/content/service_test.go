package content_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-showcase/internal/content"
	"github.com/goliatone/go-showcase/internal/domain"
	"github.com/goliatone/go-showcase/internal/validation"
	"github.com/google/uuid"
)

var (
	adminViewer  = domain.Viewer{UserID: "admin", Role: domain.RoleAdmin, Authenticated: true}
	memberViewer = domain.Viewer{UserID: "member", Role: domain.RoleUser, Authenticated: true}
)

func newService(opts ...content.ServiceOption) content.Service {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	base := []content.ServiceOption{
		content.WithClock(func() time.Time { return fixed }),
		content.WithLocales("en", "th"),
	}
	return content.NewService(content.NewMemoryRepository(), append(base, opts...)...)
}

func heroRequest() content.CreateRequest {
	return content.CreateRequest{
		PageSlug:    "home",
		SectionType: "HERO",
		Language:    "en",
		Fields: []content.FieldInput{
			{Key: "title", Label: "Title", Value: "We build software"},
			{Key: "body", Type: "LONG", Value: "**Fast** delivery"},
		},
		Buttons: []content.ButtonInput{
			{Label: "Primary", Text: "Contact us", URL: "/contact"},
		},
	}
}

func TestServiceCreateDefaultsToDraft(t *testing.T) {
	svc := newService()
	record, err := svc.Create(context.Background(), heroRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if record.Status != domain.StatusDraft {
		t.Fatalf("expected DRAFT, got %s", record.Status)
	}
	if len(record.Fields) != 2 || record.Fields[1].Type != domain.FieldLong {
		t.Fatalf("unexpected fields %+v", record.Fields)
	}
	if record.Fields[0].Order != 0 || record.Fields[1].Order != 1 {
		t.Fatalf("expected ordered fields, got %+v", record.Fields)
	}
	if len(record.Buttons) != 1 || record.Buttons[0].URL != "/contact" {
		t.Fatalf("unexpected buttons %+v", record.Buttons)
	}
}

func TestServiceCreateRejectsDuplicateKey(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	if _, err := svc.Create(ctx, heroRequest()); err != nil {
		t.Fatalf("create: %v", err)
	}
	dup := heroRequest()
	dup.PageSlug = " HOME "
	if _, err := svc.Create(ctx, dup); !errors.Is(err, content.ErrContentExists) {
		t.Fatalf("expected ErrContentExists, got %v", err)
	}
}

func TestServiceCreateValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*content.CreateRequest)
		want   error
	}{
		{name: "missing page", mutate: func(r *content.CreateRequest) { r.PageSlug = "" }, want: content.ErrPageRequired},
		{name: "missing section", mutate: func(r *content.CreateRequest) { r.SectionType = " " }, want: content.ErrSectionRequired},
		{name: "missing language", mutate: func(r *content.CreateRequest) { r.Language = "" }, want: content.ErrLanguageRequired},
		{name: "unsupported language", mutate: func(r *content.CreateRequest) { r.Language = "fr" }},
		{name: "duplicate field key", mutate: func(r *content.CreateRequest) {
			r.Fields = append(r.Fields, content.FieldInput{Key: "title"})
		}},
		{name: "bad field type", mutate: func(r *content.CreateRequest) { r.Fields[0].Type = "HTML" }},
		{name: "button without url", mutate: func(r *content.CreateRequest) { r.Buttons[0].URL = "" }},
		{name: "bad status", mutate: func(r *content.CreateRequest) { r.Status = "ARCHIVED" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := heroRequest()
			tc.mutate(&req)
			_, err := newService().Create(context.Background(), req)
			if err == nil {
				t.Fatal("expected error")
			}
			if tc.want != nil {
				if !errors.Is(err, tc.want) {
					t.Fatalf("expected %v, got %v", tc.want, err)
				}
				return
			}
			if !validation.IsInputError(err) {
				t.Fatalf("expected input error, got %v", err)
			}
			if len(validation.InputIssues(err)) == 0 {
				t.Fatalf("expected issues on %v", err)
			}
		})
	}
}

func TestServiceVisibility(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	record, err := svc.Create(ctx, heroRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	key := content.Key{Page: "home", Section: "HERO", Language: "en"}

	if _, err := svc.Get(ctx, key, domain.Anonymous()); !errors.Is(err, content.ErrUnauthenticated) {
		t.Fatalf("anonymous draft read: expected ErrUnauthenticated, got %v", err)
	}
	if _, err := svc.GetByID(ctx, record.ID, memberViewer); !errors.Is(err, content.ErrForbidden) {
		t.Fatalf("member draft read: expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Get(ctx, key, adminViewer); err != nil {
		t.Fatalf("admin draft read: %v", err)
	}

	if _, err := svc.Publish(ctx, record.ID); err != nil {
		t.Fatalf("publish: %v", err)
	}
	got, err := svc.Get(ctx, key, domain.Anonymous())
	if err != nil {
		t.Fatalf("anonymous published read: %v", err)
	}
	if got.PublishedAt == nil {
		t.Fatal("expected PublishedAt to be stamped")
	}
}

func TestServiceListHidesDraftsFromAnonymous(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	draft, err := svc.Create(ctx, heroRequest())
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	req := heroRequest()
	req.SectionType = "FAQ"
	req.Status = "PUBLISHED"
	if _, err := svc.Create(ctx, req); err != nil {
		t.Fatalf("create published: %v", err)
	}

	public, err := svc.List(ctx, content.Filter{Page: "home"}, domain.Anonymous())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(public) != 1 || public[0].SectionType != "FAQ" {
		t.Fatalf("expected only the published record, got %+v", public)
	}

	drafts, err := svc.List(ctx, content.Filter{Status: domain.StatusDraft}, memberViewer)
	if err != nil {
		t.Fatalf("list drafts as member: %v", err)
	}
	if len(drafts) != 0 {
		t.Fatalf("member must not see drafts, got %d", len(drafts))
	}

	all, err := svc.List(ctx, content.Filter{}, adminViewer)
	if err != nil {
		t.Fatalf("list as admin: %v", err)
	}
	if len(all) != 2 || all[1].ID != draft.ID {
		t.Fatalf("expected admin to see both records ordered by section, got %+v", all)
	}
}

func TestServiceUpdateResetsToDraftAndReplacesChildren(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	req := heroRequest()
	req.Status = "PUBLISHED"
	record, err := svc.Create(ctx, req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(ctx, record.ID, content.UpdateRequest{
		Fields: []content.FieldInput{{Key: "title", Value: "New title"}},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != domain.StatusDraft || updated.PublishedAt != nil {
		t.Fatalf("expected update to reset to DRAFT, got %s", updated.Status)
	}
	if len(updated.Fields) != 1 || updated.Fields[0].Value != "New title" {
		t.Fatalf("expected fields replaced wholesale, got %+v", updated.Fields)
	}
	if len(updated.Buttons) != 0 {
		t.Fatalf("expected buttons replaced wholesale, got %+v", updated.Buttons)
	}
}

func TestServiceUpdateKeyCollision(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	if _, err := svc.Create(ctx, heroRequest()); err != nil {
		t.Fatalf("create hero: %v", err)
	}
	req := heroRequest()
	req.SectionType = "FAQ"
	faq, err := svc.Create(ctx, req)
	if err != nil {
		t.Fatalf("create faq: %v", err)
	}
	section := "HERO"
	if _, err := svc.Update(ctx, faq.ID, content.UpdateRequest{SectionType: &section}); !errors.Is(err, content.ErrContentExists) {
		t.Fatalf("expected ErrContentExists, got %v", err)
	}
}

func TestServicePublishIsIdempotent(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	record, err := svc.Create(ctx, heroRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	first, err := svc.Publish(ctx, record.ID)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	second, err := svc.Publish(ctx, record.ID)
	if err != nil {
		t.Fatalf("republish: %v", err)
	}
	if !second.PublishedAt.Equal(*first.PublishedAt) {
		t.Fatalf("expected publish timestamp to be preserved")
	}
}

func TestServiceDelete(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	record, err := svc.Create(ctx, heroRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, record.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetByID(ctx, record.ID, adminViewer); !content.IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := svc.Delete(ctx, uuid.New()); !content.IsNotFound(err) {
		t.Fatalf("expected not found deleting unknown id, got %v", err)
	}
}
