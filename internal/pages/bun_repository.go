package pages

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunRepository persists builder pages with bun. A page and its sections
// change in one transaction.
type BunRepository struct {
	db   *bun.DB
	repo repository.Repository[*Page]
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db, repo: NewPageRepository(db)}
}

func (r *BunRepository) Create(ctx context.Context, page *Page) (*Page, error) {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := checkSlug(ctx, tx, page); err != nil {
			return err
		}
		if _, err := tx.NewInsert().Model(page).Exec(ctx); err != nil {
			return fmt.Errorf("insert page: %w", err)
		}
		return insertSections(ctx, tx, page)
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, page.ID)
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*Page, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "page", id.String())
	}
	if err := r.loadSections(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunRepository) GetBySlug(ctx context.Context, slug, language string) (*Page, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.slug = ?", slug).
			Where("?TableAlias.language = ?", language)
	}), repository.SelectPaginate(1, 0))
	if err != nil {
		return nil, mapRepositoryError(err, "page", language+"/"+slug)
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "page", Key: language + "/" + slug}
	}
	if err := r.loadSections(ctx, records[0]); err != nil {
		return nil, err
	}
	return records[0], nil
}

func (r *BunRepository) List(ctx context.Context, filter Filter) ([]*Page, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		if filter.Language != "" {
			q = q.Where("?TableAlias.language = ?", filter.Language)
		}
		if filter.Status != "" {
			q = q.Where("?TableAlias.status = ?", filter.Status)
		}
		return q.OrderExpr("?TableAlias.slug ASC, ?TableAlias.language ASC")
	}))
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		if err := r.loadSections(ctx, record); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (r *BunRepository) Update(ctx context.Context, page *Page) (*Page, error) {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := checkSlug(ctx, tx, page); err != nil {
			return err
		}
		res, err := tx.NewUpdate().
			Model(page).
			Column("slug", "language", "title", "description", "status", "published_at", "updated_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update page: %w", err)
		}
		if rows, err := res.RowsAffected(); err == nil && rows == 0 {
			return &NotFoundError{Resource: "page", Key: page.ID.String()}
		}
		if _, err := tx.NewDelete().
			Model((*Section)(nil)).
			Where("?TableAlias.page_id = ?", page.ID).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete page sections: %w", err)
		}
		return insertSections(ctx, tx, page)
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, page.ID)
}

func (r *BunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*Section)(nil)).
			Where("?TableAlias.page_id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete page sections: %w", err)
		}
		res, err := tx.NewDelete().
			Model((*Page)(nil)).
			Where("?TableAlias.id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete page: %w", err)
		}
		if rows, err := res.RowsAffected(); err == nil && rows == 0 {
			return &NotFoundError{Resource: "page", Key: id.String()}
		}
		return nil
	})
}

func (r *BunRepository) loadSections(ctx context.Context, page *Page) error {
	sections := []*Section{}
	if err := r.db.NewSelect().
		Model(&sections).
		Where("?TableAlias.page_id = ?", page.ID).
		OrderExpr("?TableAlias.position ASC").
		Scan(ctx); err != nil {
		return fmt.Errorf("load page sections: %w", err)
	}
	page.Sections = sections
	return nil
}

func checkSlug(ctx context.Context, tx bun.Tx, page *Page) error {
	taken, err := tx.NewSelect().
		Model((*Page)(nil)).
		Where("?TableAlias.slug = ?", page.Slug).
		Where("?TableAlias.language = ?", page.Language).
		Where("?TableAlias.id != ?", page.ID).
		Exists(ctx)
	if err != nil {
		return fmt.Errorf("check page slug: %w", err)
	}
	if taken {
		return ErrSlugExists
	}
	return nil
}

func insertSections(ctx context.Context, tx bun.Tx, page *Page) error {
	linkSections(page)
	if len(page.Sections) == 0 {
		return nil
	}
	if _, err := tx.NewInsert().Model(&page.Sections).Exec(ctx); err != nil {
		return fmt.Errorf("insert page sections: %w", err)
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
