package pages

import (
	"time"

	"github.com/goliatone/go-showcase/internal/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Page is a builder page: an admin-authored, data-ordered list of sections
// that replaces the code layout for the same slug and language.
type Page struct {
	bun.BaseModel `bun:"table:builder_pages,alias:bp"`

	ID          uuid.UUID     `bun:",pk,type:uuid"                                 json:"id"`
	Slug        string        `bun:"slug,notnull"                                  json:"slug"`
	Language    string        `bun:"language,notnull"                              json:"language"`
	Title       string        `bun:"title,notnull"                                 json:"title"`
	Description string        `bun:"description"                                   json:"description,omitempty"`
	Status      domain.Status `bun:"status,notnull,default:'DRAFT'"                json:"status"`
	PublishedAt *time.Time    `bun:"published_at,nullzero"                         json:"publishedAt,omitempty"`
	CreatedAt   time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt"`
	UpdatedAt   time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updatedAt"`

	Sections []*Section `bun:"rel:has-many,join:id=page_id" json:"sections"`
}

// Section is one slot of a builder page. Widget holds a widget configuration
// (with a widgetType discriminator) or nil for a plain content section.
type Section struct {
	bun.BaseModel `bun:"table:builder_sections,alias:bs"`

	ID          uuid.UUID      `bun:",pk,type:uuid"              json:"id"`
	PageID      uuid.UUID      `bun:"page_id,notnull,type:uuid"  json:"-"`
	Position    int            `bun:"position,notnull,default:0" json:"position"`
	SectionType string         `bun:"section_type,notnull"       json:"sectionType"`
	Widget      map[string]any `bun:"widget,type:jsonb"          json:"widget,omitempty"`
}

func clonePage(src *Page) *Page {
	if src == nil {
		return nil
	}
	copied := *src
	if src.PublishedAt != nil {
		ts := *src.PublishedAt
		copied.PublishedAt = &ts
	}
	copied.Sections = make([]*Section, 0, len(src.Sections))
	for _, section := range src.Sections {
		if section == nil {
			continue
		}
		s := *section
		s.Widget = cloneMap(section.Widget)
		copied.Sections = append(copied.Sections, &s)
	}
	return &copied
}

func cloneMap(input map[string]any) map[string]any {
	if input == nil {
		return nil
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		switch typed := value.(type) {
		case map[string]any:
			out[key] = cloneMap(typed)
		case []any:
			items := make([]any, len(typed))
			for i, item := range typed {
				if nested, ok := item.(map[string]any); ok {
					items[i] = cloneMap(nested)
					continue
				}
				items[i] = item
			}
			out[key] = items
		default:
			out[key] = value
		}
	}
	return out
}
