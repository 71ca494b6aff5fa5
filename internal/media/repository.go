package media

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository abstracts storage for image records.
type Repository interface {
	Create(ctx context.Context, image *Image) (*Image, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Image, error)
	GetByURL(ctx context.Context, url string) (*Image, error)
	List(ctx context.Context) ([]*Image, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UsageAdjuster
}

// UsageAdjuster applies signed deltas to image usage counters. Counters
// never drop below zero and unknown ids are ignored.
type UsageAdjuster interface {
	AdjustUsage(ctx context.Context, deltas map[uuid.UUID]int) error
}

func NewImageRepository(db *bun.DB) repository.Repository[*Image] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Image]{
		NewRecord: func() *Image { return &Image{} },
		GetID: func(img *Image) uuid.UUID {
			return img.ID
		},
		SetID: func(img *Image, id uuid.UUID) {
			img.ID = id
		},
		GetIdentifier: func() string {
			return "url"
		},
		GetIdentifierValue: func(img *Image) string {
			return img.URL
		},
	})
}
