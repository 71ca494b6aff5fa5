package content

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunRepository persists records through go-repository-bun and writes
// children inside bun transactions.
type BunRepository struct {
	db   *bun.DB
	repo repository.Repository[*Record]
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{
		db:   db,
		repo: NewRecordRepository(db),
	}
}

func (r *BunRepository) Create(ctx context.Context, record *Record) (*Record, error) {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*Record)(nil)).
			Where("?TableAlias.page_slug = ?", record.PageSlug).
			Where("?TableAlias.section_type = ?", record.SectionType).
			Where("?TableAlias.language = ?", record.Language).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("check content key: %w", err)
		}
		if exists {
			return ErrContentExists
		}
		if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
			return fmt.Errorf("insert content record: %w", err)
		}
		return insertChildren(ctx, tx, record)
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "content", id.String())
	}
	if err := r.loadChildren(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunRepository) GetByKey(ctx context.Context, key Key) (*Record, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("?TableAlias.page_slug = ?", key.Page).
				Where("?TableAlias.section_type = ?", key.Section).
				Where("?TableAlias.language = ?", key.Language)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "content", key.String())
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "content", Key: key.String()}
	}
	if err := r.loadChildren(ctx, records...); err != nil {
		return nil, err
	}
	return records[0], nil
}

func (r *BunRepository) List(ctx context.Context, filter Filter) ([]*Record, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			if filter.Page != "" {
				q = q.Where("?TableAlias.page_slug = ?", filter.Page)
			}
			if filter.Section != "" {
				q = q.Where("?TableAlias.section_type = ?", filter.Section)
			}
			if filter.Language != "" {
				q = q.Where("?TableAlias.language = ?", filter.Language)
			}
			if filter.Status != "" {
				q = q.Where("?TableAlias.status = ?", filter.Status)
			}
			return q.OrderExpr("?TableAlias.page_slug ASC, ?TableAlias.section_type ASC, ?TableAlias.language ASC")
		}),
	)
	if err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, records...); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *BunRepository) Replace(ctx context.Context, record *Record) (*Record, error) {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		taken, err := tx.NewSelect().
			Model((*Record)(nil)).
			Where("?TableAlias.page_slug = ?", record.PageSlug).
			Where("?TableAlias.section_type = ?", record.SectionType).
			Where("?TableAlias.language = ?", record.Language).
			Where("?TableAlias.id != ?", record.ID).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("check content key: %w", err)
		}
		if taken {
			return ErrContentExists
		}

		res, err := tx.NewUpdate().
			Model(record).
			Column("page_slug", "section_type", "language", "status", "published_at", "updated_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update content record: %w", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return &NotFoundError{Resource: "content", Key: record.ID.String()}
		}
		if err := deleteChildren(ctx, tx, record.ID); err != nil {
			return err
		}
		return insertChildren(ctx, tx, record)
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

func (r *BunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := deleteChildren(ctx, tx, id); err != nil {
			return err
		}
		res, err := tx.NewDelete().
			Model((*Record)(nil)).
			Where("?TableAlias.id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete content record: %w", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return &NotFoundError{Resource: "content", Key: id.String()}
		}
		return nil
	})
}

func (r *BunRepository) loadChildren(ctx context.Context, records ...*Record) error {
	if len(records) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(records))
	byID := make(map[uuid.UUID]*Record, len(records))
	for _, record := range records {
		record.Fields = []*Field{}
		record.Buttons = []*Button{}
		ids = append(ids, record.ID)
		byID[record.ID] = record
	}

	var fields []*Field
	if err := r.db.NewSelect().
		Model(&fields).
		Where("?TableAlias.record_id IN (?)", bun.In(ids)).
		OrderExpr("?TableAlias.sort_order ASC").
		Scan(ctx); err != nil {
		return fmt.Errorf("load content fields: %w", err)
	}
	for _, field := range fields {
		if owner := byID[field.RecordID]; owner != nil {
			owner.Fields = append(owner.Fields, field)
		}
	}

	var buttons []*Button
	if err := r.db.NewSelect().
		Model(&buttons).
		Where("?TableAlias.record_id IN (?)", bun.In(ids)).
		OrderExpr("?TableAlias.sort_order ASC").
		Scan(ctx); err != nil {
		return fmt.Errorf("load content buttons: %w", err)
	}
	for _, button := range buttons {
		if owner := byID[button.RecordID]; owner != nil {
			owner.Buttons = append(owner.Buttons, button)
		}
	}
	return nil
}

func insertChildren(ctx context.Context, tx bun.Tx, record *Record) error {
	linkChildren(record)
	if len(record.Fields) > 0 {
		if _, err := tx.NewInsert().Model(&record.Fields).Exec(ctx); err != nil {
			return fmt.Errorf("insert content fields: %w", err)
		}
	}
	if len(record.Buttons) > 0 {
		if _, err := tx.NewInsert().Model(&record.Buttons).Exec(ctx); err != nil {
			return fmt.Errorf("insert content buttons: %w", err)
		}
	}
	return nil
}

func deleteChildren(ctx context.Context, tx bun.Tx, recordID uuid.UUID) error {
	if _, err := tx.NewDelete().
		Model((*Field)(nil)).
		Where("?TableAlias.record_id = ?", recordID).
		Exec(ctx); err != nil {
		return fmt.Errorf("delete content fields: %w", err)
	}
	if _, err := tx.NewDelete().
		Model((*Button)(nil)).
		Where("?TableAlias.record_id = ?", recordID).
		Exec(ctx); err != nil {
		return fmt.Errorf("delete content buttons: %w", err)
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
