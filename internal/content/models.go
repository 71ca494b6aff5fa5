package content

import (
	"strings"
	"time"

	"github.com/goliatone/go-showcase/internal/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Key addresses one section of one page in one language.
type Key struct {
	Page     string `json:"page"`
	Section  string `json:"section"`
	Language string `json:"language"`
}

// Normalize trims the key and lowercases page and language. Section types
// keep their case (HERO, FAQ).
func (k Key) Normalize() Key {
	return Key{
		Page:     strings.ToLower(strings.TrimSpace(k.Page)),
		Section:  strings.TrimSpace(k.Section),
		Language: strings.ToLower(strings.TrimSpace(k.Language)),
	}
}

func (k Key) String() string {
	return k.Language + "/" + k.Page + "/" + k.Section
}

// Record is the editable text of a page section.
type Record struct {
	bun.BaseModel `bun:"table:content_records,alias:cr"`

	ID          uuid.UUID     `bun:",pk,type:uuid"                                 json:"id"`
	PageSlug    string        `bun:"page_slug,notnull"                             json:"pageSlug"`
	SectionType string        `bun:"section_type,notnull"                          json:"sectionType"`
	Language    string        `bun:"language,notnull"                              json:"language"`
	Status      domain.Status `bun:"status,notnull,default:'DRAFT'"                json:"status"`
	PublishedAt *time.Time    `bun:"published_at,nullzero"                         json:"publishedAt,omitempty"`
	CreatedAt   time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt"`
	UpdatedAt   time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updatedAt"`

	Fields  []*Field  `bun:"rel:has-many,join:id=record_id" json:"fields"`
	Buttons []*Button `bun:"rel:has-many,join:id=record_id" json:"buttons"`
}

// Key returns the composite identity of the record.
func (r *Record) Key() Key {
	if r == nil {
		return Key{}
	}
	return Key{Page: r.PageSlug, Section: r.SectionType, Language: r.Language}
}

// Field returns the value of the field with the given key.
func (r *Record) Field(key string) (string, bool) {
	if r == nil {
		return "", false
	}
	for _, field := range r.Fields {
		if field != nil && field.Key == key {
			return field.Value, true
		}
	}
	return "", false
}

// Field is a keyed text value inside a record.
type Field struct {
	bun.BaseModel `bun:"table:content_fields,alias:cf"`

	ID       uuid.UUID        `bun:",pk,type:uuid"                   json:"id"`
	RecordID uuid.UUID        `bun:"record_id,notnull,type:uuid"     json:"-"`
	Key      string           `bun:"field_key,notnull"               json:"key"`
	Label    string           `bun:"label"                           json:"label"`
	Type     domain.FieldType `bun:"field_type,notnull,default:'SHORT'" json:"type"`
	Value    string           `bun:"value"                           json:"value"`
	Order    int              `bun:"sort_order,notnull,default:0"    json:"order"`
}

// Button is a call to action attached to a record.
type Button struct {
	bun.BaseModel `bun:"table:content_buttons,alias:cb"`

	ID       uuid.UUID `bun:",pk,type:uuid"                json:"id"`
	RecordID uuid.UUID `bun:"record_id,notnull,type:uuid"  json:"-"`
	Label    string    `bun:"label"                        json:"label"`
	Text     string    `bun:"text,notnull"                 json:"text"`
	URL      string    `bun:"url,notnull"                  json:"url"`
	Order    int       `bun:"sort_order,notnull,default:0" json:"order"`
}

// Clone returns a deep copy of the record and its children.
func (r *Record) Clone() *Record {
	return cloneRecord(r)
}

func cloneRecord(src *Record) *Record {
	if src == nil {
		return nil
	}
	copied := *src
	if src.PublishedAt != nil {
		ts := *src.PublishedAt
		copied.PublishedAt = &ts
	}
	copied.Fields = make([]*Field, 0, len(src.Fields))
	for _, field := range src.Fields {
		if field == nil {
			continue
		}
		f := *field
		copied.Fields = append(copied.Fields, &f)
	}
	copied.Buttons = make([]*Button, 0, len(src.Buttons))
	for _, button := range src.Buttons {
		if button == nil {
			continue
		}
		b := *button
		copied.Buttons = append(copied.Buttons, &b)
	}
	return &copied
}
