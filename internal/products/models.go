package products

import (
	"time"

	"github.com/goliatone/go-showcase/internal/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Product is a showcased offering. ImageIDs caches the library images the
// product references so usage counters can be diffed on write.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID           uuid.UUID     `bun:",pk,type:uuid"                                 json:"id"`
	Slug         string        `bun:"slug,notnull,unique"                           json:"slug"`
	Title        string        `bun:"title,notnull"                                 json:"title"`
	Description  string        `bun:"description"                                   json:"description"`
	Features     []string      `bun:"features,type:jsonb"                           json:"features"`
	Color        string        `bun:"color"                                         json:"color,omitempty"`
	Icon         string        `bun:"icon"                                          json:"icon,omitempty"`
	CoverImage   string        `bun:"cover_image"                                   json:"coverImage,omitempty"`
	CoverImageID *uuid.UUID    `bun:"cover_image_id,type:uuid,nullzero"             json:"coverImageId,omitempty"`
	Gallery      []string      `bun:"gallery,type:jsonb"                            json:"gallery"`
	Category     string        `bun:"category"                                      json:"category,omitempty"`
	Tags         []string      `bun:"tags,type:jsonb"                               json:"tags"`
	Price        *float64      `bun:"price,nullzero"                                json:"price,omitempty"`
	Language     string        `bun:"language,notnull"                              json:"language"`
	Status       domain.Status `bun:"status,notnull,default:'DRAFT'"                json:"status"`
	ImageIDs     []uuid.UUID   `bun:"image_ids,type:jsonb"                          json:"-"`
	PublishedAt  *time.Time    `bun:"published_at,nullzero"                         json:"publishedAt,omitempty"`
	CreatedAt    time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt"`
	UpdatedAt    time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updatedAt"`

	TechStack *TechStackSection `bun:"-" json:"techStack,omitempty"`
	Sections  []*ProductSection `bun:"-" json:"sections"`
}

// TechStackSection lists the technologies behind a product.
type TechStackSection struct {
	bun.BaseModel `bun:"table:product_tech_stacks,alias:pts"`

	ID           uuid.UUID `bun:",pk,type:uuid"                json:"id"`
	ProductID    uuid.UUID `bun:"product_id,notnull,type:uuid" json:"-"`
	Title        string    `bun:"title"                        json:"title"`
	Description  string    `bun:"description"                  json:"description,omitempty"`
	Technologies []string  `bun:"technologies,type:jsonb"      json:"technologies"`
}

// ProductSection is an ordered block of cards on the product detail page.
type ProductSection struct {
	bun.BaseModel `bun:"table:product_sections,alias:ps"`

	ID        uuid.UUID `bun:",pk,type:uuid"                json:"id"`
	ProductID uuid.UUID `bun:"product_id,notnull,type:uuid" json:"-"`
	Title     string    `bun:"title"                        json:"title"`
	Position  int       `bun:"position,notnull,default:0"   json:"position"`
	Cards     []Card    `bun:"cards,type:jsonb"             json:"cards"`
}

// Card is a single tile inside a product section.
type Card struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Color       string `json:"color,omitempty"`
}

// View is the API representation of a product.
type View struct {
	*Product
	FeatureCount int `json:"featureCount"`
}

// ToView decorates product for responses.
func ToView(product *Product) View {
	if product == nil {
		return View{Product: &Product{}}
	}
	return View{Product: product, FeatureCount: len(product.Features)}
}

// ImageReference is the subset of a product needed to count image usage.
type ImageReference struct {
	ProductID    uuid.UUID
	CoverImage   string
	CoverImageID *uuid.UUID
	Gallery      []string
	ImageIDs     []uuid.UUID
}

// References reports whether the product points to the image by id or URL.
func (r ImageReference) References(imageID uuid.UUID, url string) bool {
	if imageID != uuid.Nil {
		if r.CoverImageID != nil && *r.CoverImageID == imageID {
			return true
		}
		for _, id := range r.ImageIDs {
			if id == imageID {
				return true
			}
		}
	}
	if url != "" {
		if r.CoverImage == url {
			return true
		}
		for _, item := range r.Gallery {
			if item == url {
				return true
			}
		}
	}
	return false
}

func referenceOf(p *Product) ImageReference {
	return ImageReference{
		ProductID:    p.ID,
		CoverImage:   p.CoverImage,
		CoverImageID: p.CoverImageID,
		Gallery:      p.Gallery,
		ImageIDs:     p.ImageIDs,
	}
}

// usageDelta returns the counter changes needed to move from before to after.
func usageDelta(before, after []uuid.UUID) map[uuid.UUID]int {
	deltas := map[uuid.UUID]int{}
	for _, id := range uniqueIDs(before) {
		deltas[id]--
	}
	for _, id := range uniqueIDs(after) {
		deltas[id]++
	}
	for id, delta := range deltas {
		if delta == 0 {
			delete(deltas, id)
		}
	}
	return deltas
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func cloneProduct(src *Product) *Product {
	if src == nil {
		return nil
	}
	copied := *src
	copied.Features = append([]string{}, src.Features...)
	copied.Gallery = append([]string{}, src.Gallery...)
	copied.Tags = append([]string{}, src.Tags...)
	copied.ImageIDs = append([]uuid.UUID{}, src.ImageIDs...)
	if src.CoverImageID != nil {
		id := *src.CoverImageID
		copied.CoverImageID = &id
	}
	if src.Price != nil {
		price := *src.Price
		copied.Price = &price
	}
	if src.PublishedAt != nil {
		ts := *src.PublishedAt
		copied.PublishedAt = &ts
	}
	if src.TechStack != nil {
		stack := *src.TechStack
		stack.Technologies = append([]string{}, src.TechStack.Technologies...)
		copied.TechStack = &stack
	}
	copied.Sections = make([]*ProductSection, 0, len(src.Sections))
	for _, section := range src.Sections {
		if section == nil {
			continue
		}
		s := *section
		s.Cards = append([]Card{}, section.Cards...)
		copied.Sections = append(copied.Sections, &s)
	}
	return &copied
}
