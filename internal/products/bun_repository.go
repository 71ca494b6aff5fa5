package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-showcase/internal/media"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunRepository persists products with bun. Product rows, child sections and
// image usage counters change in one transaction.
type BunRepository struct {
	db   *bun.DB
	repo repository.Repository[*Product]
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db, repo: NewProductRepository(db)}
}

func (r *BunRepository) Create(ctx context.Context, product *Product) (*Product, error) {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*Product)(nil)).
			Where("?TableAlias.slug = ?", product.Slug).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("check product slug: %w", err)
		}
		if exists {
			return ErrSlugExists
		}
		if _, err := tx.NewInsert().Model(product).Exec(ctx); err != nil {
			return fmt.Errorf("insert product: %w", err)
		}
		if err := insertChildren(ctx, tx, product); err != nil {
			return err
		}
		return media.AdjustUsage(ctx, tx, usageDelta(nil, product.ImageIDs))
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, product.ID)
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "product", id.String())
	}
	if err := r.loadChildren(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunRepository) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	record, err := r.repo.GetByIdentifier(ctx, slug)
	if err != nil {
		return nil, mapRepositoryError(err, "product", slug)
	}
	if err := r.loadChildren(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunRepository) List(ctx context.Context, filter Filter) ([]*Product, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		if filter.Language != "" {
			q = q.Where("?TableAlias.language = ?", filter.Language)
		}
		if filter.Status != "" {
			q = q.Where("?TableAlias.status = ?", filter.Status)
		}
		if filter.Category != "" {
			q = q.Where("?TableAlias.category = ?", filter.Category)
		}
		return q.OrderExpr("?TableAlias.created_at DESC, ?TableAlias.slug ASC")
	}))
	if err != nil {
		return nil, err
	}
	out := make([]*Product, 0, len(records))
	for _, record := range records {
		if filter.Tag != "" && !(Filter{Tag: filter.Tag}).matches(record) {
			continue
		}
		if err := r.loadChildren(ctx, record); err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}

func (r *BunRepository) Update(ctx context.Context, product *Product) (*Product, error) {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing := new(Product)
		if err := tx.NewSelect().
			Model(existing).
			Column("id", "slug", "image_ids").
			Where("?TableAlias.id = ?", product.ID).
			Limit(1).
			Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return &NotFoundError{Resource: "product", Key: product.ID.String()}
			}
			return fmt.Errorf("load product: %w", err)
		}

		if existing.Slug != product.Slug {
			taken, err := tx.NewSelect().
				Model((*Product)(nil)).
				Where("?TableAlias.slug = ?", product.Slug).
				Where("?TableAlias.id != ?", product.ID).
				Exists(ctx)
			if err != nil {
				return fmt.Errorf("check product slug: %w", err)
			}
			if taken {
				return ErrSlugExists
			}
		}

		if _, err := tx.NewUpdate().
			Model(product).
			Column(
				"slug",
				"title",
				"description",
				"features",
				"color",
				"icon",
				"cover_image",
				"cover_image_id",
				"gallery",
				"category",
				"tags",
				"price",
				"language",
				"status",
				"image_ids",
				"published_at",
				"updated_at",
			).
			WherePK().
			Exec(ctx); err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		if err := deleteChildren(ctx, tx, product.ID); err != nil {
			return err
		}
		if err := insertChildren(ctx, tx, product); err != nil {
			return err
		}
		return media.AdjustUsage(ctx, tx, usageDelta(existing.ImageIDs, product.ImageIDs))
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, product.ID)
}

func (r *BunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing := new(Product)
		if err := tx.NewSelect().
			Model(existing).
			Column("id", "image_ids").
			Where("?TableAlias.id = ?", id).
			Limit(1).
			Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return &NotFoundError{Resource: "product", Key: id.String()}
			}
			return fmt.Errorf("load product: %w", err)
		}
		if err := deleteChildren(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.NewDelete().
			Model((*Product)(nil)).
			Where("?TableAlias.id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete product: %w", err)
		}
		return media.AdjustUsage(ctx, tx, usageDelta(existing.ImageIDs, nil))
	})
}

func (r *BunRepository) ListImageReferences(ctx context.Context) ([]ImageReference, error) {
	var rows []*Product
	if err := r.db.NewSelect().
		Model(&rows).
		Column("id", "cover_image", "cover_image_id", "gallery", "image_ids").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("list product image references: %w", err)
	}
	out := make([]ImageReference, 0, len(rows))
	for _, row := range rows {
		out = append(out, referenceOf(row))
	}
	return out, nil
}

func (r *BunRepository) loadChildren(ctx context.Context, product *Product) error {
	stacks := []*TechStackSection{}
	if err := r.db.NewSelect().
		Model(&stacks).
		Where("?TableAlias.product_id = ?", product.ID).
		Limit(1).
		Scan(ctx); err != nil {
		return fmt.Errorf("load product tech stack: %w", err)
	}
	product.TechStack = nil
	if len(stacks) > 0 {
		product.TechStack = stacks[0]
	}

	sections := []*ProductSection{}
	if err := r.db.NewSelect().
		Model(&sections).
		Where("?TableAlias.product_id = ?", product.ID).
		OrderExpr("?TableAlias.position ASC").
		Scan(ctx); err != nil {
		return fmt.Errorf("load product sections: %w", err)
	}
	product.Sections = sections
	return nil
}

func insertChildren(ctx context.Context, tx bun.Tx, product *Product) error {
	linkChildren(product)
	if product.TechStack != nil {
		if _, err := tx.NewInsert().Model(product.TechStack).Exec(ctx); err != nil {
			return fmt.Errorf("insert product tech stack: %w", err)
		}
	}
	if len(product.Sections) > 0 {
		if _, err := tx.NewInsert().Model(&product.Sections).Exec(ctx); err != nil {
			return fmt.Errorf("insert product sections: %w", err)
		}
	}
	return nil
}

func deleteChildren(ctx context.Context, tx bun.Tx, productID uuid.UUID) error {
	if _, err := tx.NewDelete().
		Model((*TechStackSection)(nil)).
		Where("?TableAlias.product_id = ?", productID).
		Exec(ctx); err != nil {
		return fmt.Errorf("delete product tech stack: %w", err)
	}
	if _, err := tx.NewDelete().
		Model((*ProductSection)(nil)).
		Where("?TableAlias.product_id = ?", productID).
		Exec(ctx); err != nil {
		return fmt.Errorf("delete product sections: %w", err)
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
