package technologies

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Technology is an entry of the tech stack catalogue.
type Technology struct {
	bun.BaseModel `bun:"table:technologies,alias:tech"`

	ID          uuid.UUID `bun:",pk,type:uuid"                                 json:"id"`
	Name        string    `bun:"name,notnull"                                  json:"name"`
	NameKey     string    `bun:"name_key,notnull,unique"                       json:"-"`
	Slug        string    `bun:"slug,notnull"                                  json:"slug"`
	Category    string    `bun:"category"                                      json:"category,omitempty"`
	Icon        string    `bun:"icon"                                          json:"icon,omitempty"`
	Color       string    `bun:"color"                                         json:"color,omitempty"`
	Description string    `bun:"description"                                   json:"description,omitempty"`
	CreatedAt   time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updatedAt"`
}

func cloneTechnology(src *Technology) *Technology {
	if src == nil {
		return nil
	}
	copied := *src
	return &copied
}
