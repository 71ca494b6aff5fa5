package products_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-showcase/internal/domain"
	"github.com/goliatone/go-showcase/internal/media"
	"github.com/goliatone/go-showcase/internal/products"
	"github.com/goliatone/go-showcase/pkg/testsupport"
	"github.com/google/uuid"
)

func TestProductServiceWithBunStorage(t *testing.T) {
	ctx := context.Background()
	db := testsupport.NewBunDB(t,
		(*media.Image)(nil),
		(*products.Product)(nil),
		(*products.TechStackSection)(nil),
		(*products.ProductSection)(nil),
	)
	images := media.NewBunRepository(db)
	svc := products.NewService(products.NewBunRepository(db), products.WithImageLookup(images))

	cover, err := images.Create(ctx, &media.Image{ID: uuid.New(), URL: "/uploads/cover.png", Key: "cover.png"})
	if err != nil {
		t.Fatalf("seed image: %v", err)
	}

	price := 1200.0
	created, err := svc.Create(ctx, products.SaveRequest{
		Title:      "Demo",
		Slug:       "demo",
		Features:   []string{"One", "Two"},
		CoverImage: cover.URL,
		Tags:       []string{"ai"},
		Price:      &price,
		TechStack:  &products.TechStackInput{Title: "Built with", Technologies: []string{"Go"}},
		Sections:   []products.SectionInput{{Title: "Cards", Cards: []products.Card{{Title: "A"}, {Title: "B"}}}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, products.SaveRequest{Title: "Demo", Slug: "demo"}); !errors.Is(err, products.ErrSlugExists) {
		t.Fatalf("expected ErrSlugExists, got %v", err)
	}

	stored, err := svc.Get(ctx, "demo", adminViewer)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.ID != created.ID || len(stored.Features) != 2 || stored.Price == nil || *stored.Price != price {
		t.Fatalf("unexpected stored product %+v", stored)
	}
	if stored.TechStack == nil || stored.TechStack.Technologies[0] != "Go" {
		t.Fatalf("expected tech stack, got %+v", stored.TechStack)
	}
	if len(stored.Sections) != 1 || len(stored.Sections[0].Cards) != 2 {
		t.Fatalf("expected section with cards, got %+v", stored.Sections)
	}

	img, _ := images.GetByID(ctx, cover.ID)
	if img.UsageCount != 1 {
		t.Fatalf("expected usage 1 after create, got %d", img.UsageCount)
	}
	count, err := svc.CountImageReferences(ctx, cover.ID, cover.URL)
	if err != nil || count != 1 {
		t.Fatalf("expected one reference, got %d (%v)", count, err)
	}

	tagged, err := svc.List(ctx, products.Filter{Tag: "ai"}, adminViewer)
	if err != nil || len(tagged) != 1 {
		t.Fatalf("expected tag filter match, got %d (%v)", len(tagged), err)
	}
	public, err := svc.List(ctx, products.Filter{}, domain.Anonymous())
	if err != nil || len(public) != 0 {
		t.Fatalf("expected no public products, got %d (%v)", len(public), err)
	}

	if _, err := svc.Update(ctx, "demo", products.SaveRequest{Title: "Demo"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	img, _ = images.GetByID(ctx, cover.ID)
	if img.UsageCount != 0 {
		t.Fatalf("expected usage 0 after removing the cover, got %d", img.UsageCount)
	}

	if err := svc.Delete(ctx, "demo"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, "demo", adminViewer); !products.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
