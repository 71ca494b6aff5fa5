package media

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Image is an uploaded asset referenced by products.
type Image struct {
	bun.BaseModel `bun:"table:images,alias:img"`

	ID          uuid.UUID `bun:",pk,type:uuid"                                 json:"id"`
	URL         string    `bun:"url,notnull,unique"                            json:"url"`
	Key         string    `bun:"storage_key,notnull"                           json:"key"`
	Filename    string    `bun:"filename"                                      json:"filename"`
	ContentType string    `bun:"content_type"                                  json:"contentType"`
	Size        int64     `bun:"size,notnull,default:0"                        json:"size"`
	UsageCount  int       `bun:"usage_count,notnull,default:0"                 json:"usageCount"`
	CreatedAt   time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updatedAt"`
}

func cloneImage(src *Image) *Image {
	if src == nil {
		return nil
	}
	copied := *src
	return &copied
}
