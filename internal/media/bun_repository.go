package media

import (
	"context"
	"fmt"
	"sort"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunRepository implements Repository with bun.
type BunRepository struct {
	db   *bun.DB
	repo repository.Repository[*Image]
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db, repo: NewImageRepository(db)}
}

func (r *BunRepository) Create(ctx context.Context, image *Image) (*Image, error) {
	created, err := r.repo.Create(ctx, image)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*Image, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "image", id.String())
	}
	return record, nil
}

func (r *BunRepository) GetByURL(ctx context.Context, url string) (*Image, error) {
	record, err := r.repo.GetByIdentifier(ctx, url)
	if err != nil {
		return nil, mapRepositoryError(err, "image", url)
	}
	return record, nil
}

func (r *BunRepository) List(ctx context.Context) ([]*Image, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.created_at DESC, ?TableAlias.url ASC")
	}))
	return records, err
}

func (r *BunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return r.repo.Delete(ctx, &Image{ID: id})
}

func (r *BunRepository) AdjustUsage(ctx context.Context, deltas map[uuid.UUID]int) error {
	return AdjustUsage(ctx, r.db, deltas)
}

// AdjustUsage applies deltas with db, which may be a transaction owned by
// another repository. Ids are processed in a stable order.
func AdjustUsage(ctx context.Context, db bun.IDB, deltas map[uuid.UUID]int) error {
	ids := make([]uuid.UUID, 0, len(deltas))
	for id, delta := range deltas {
		if id != uuid.Nil && delta != 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	for _, id := range ids {
		delta := deltas[id]
		if _, err := db.NewUpdate().
			Model((*Image)(nil)).
			Set("usage_count = CASE WHEN usage_count + ? < 0 THEN 0 ELSE usage_count + ? END", delta, delta).
			Where("id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("adjust image usage %s: %w", id, err)
		}
	}
	return nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{
			Resource: resource,
			Key:      key,
		}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
