package migrations

import (
	"context"
	"fmt"

	"github.com/goliatone/go-showcase/internal/content"
	"github.com/goliatone/go-showcase/internal/media"
	"github.com/goliatone/go-showcase/internal/pages"
	"github.com/goliatone/go-showcase/internal/products"
	"github.com/goliatone/go-showcase/internal/technologies"
	"github.com/goliatone/go-showcase/internal/users"
	"github.com/uptrace/bun"
)

// Models lists every persisted model in creation order.
func Models() []any {
	return []any{
		(*users.User)(nil),
		(*media.Image)(nil),
		(*technologies.Technology)(nil),
		(*content.Record)(nil),
		(*content.Field)(nil),
		(*content.Button)(nil),
		(*products.Product)(nil),
		(*products.TechStackSection)(nil),
		(*products.ProductSection)(nil),
		(*pages.Page)(nil),
		(*pages.Section)(nil),
	}
}

type index struct {
	name    string
	model   any
	columns []string
	unique  bool
}

var indexes = []index{
	{name: "content_records_key_idx", model: (*content.Record)(nil), columns: []string{"page_slug", "section_type", "language"}, unique: true},
	{name: "content_fields_record_idx", model: (*content.Field)(nil), columns: []string{"record_id"}},
	{name: "content_buttons_record_idx", model: (*content.Button)(nil), columns: []string{"record_id"}},
	{name: "product_sections_product_idx", model: (*products.ProductSection)(nil), columns: []string{"product_id"}},
	{name: "product_tech_stacks_product_idx", model: (*products.TechStackSection)(nil), columns: []string{"product_id"}, unique: true},
	{name: "builder_pages_slug_idx", model: (*pages.Page)(nil), columns: []string{"slug", "language"}, unique: true},
	{name: "builder_sections_page_idx", model: (*pages.Section)(nil), columns: []string{"page_id"}},
}

// Default returns the registry holding the showcase schema.
func Default() *Registry {
	r := NewRegistry()
	_ = r.Register(Migration{Name: "0001_create_tables", Up: createTables})
	_ = r.Register(Migration{Name: "0002_create_indexes", Up: createIndexes})
	return r
}

// Bootstrap applies the showcase schema to db.
func Bootstrap(ctx context.Context, db *bun.DB) ([]string, error) {
	return Default().Run(ctx, db)
}

func createTables(ctx context.Context, db bun.IDB) error {
	for _, model := range Models() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table %T: %w", model, err)
		}
	}
	return nil
}

func createIndexes(ctx context.Context, db bun.IDB) error {
	for _, idx := range indexes {
		query := db.NewCreateIndex().Model(idx.model).Index(idx.name).Column(idx.columns...).IfNotExists()
		if idx.unique {
			query = query.Unique()
		}
		if _, err := query.Exec(ctx); err != nil {
			return fmt.Errorf("create index %s: %w", idx.name, err)
		}
	}
	return nil
}
