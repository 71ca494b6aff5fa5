package migrations

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/uptrace/bun"
)

var (
	ErrNameRequired = errors.New("migrations: name is required")
	ErrUpRequired   = errors.New("migrations: up function is required")
	ErrDuplicate    = errors.New("migrations: duplicate migration")
)

// Migration is one named schema step. Steps run in name order.
type Migration struct {
	Name string
	Up   func(ctx context.Context, db bun.IDB) error
}

// Applied records a migration that already ran.
type Applied struct {
	bun.BaseModel `bun:"table:schema_migrations,alias:sm"`

	Name      string    `bun:"name,pk"                                       json:"name"`
	AppliedAt time.Time `bun:"applied_at,nullzero,default:current_timestamp" json:"appliedAt"`
}

// Registry stores schema migrations and runs the pending ones.
type Registry struct {
	mu         sync.RWMutex
	migrations map[string]Migration
}

func NewRegistry() *Registry {
	return &Registry{migrations: map[string]Migration{}}
}

// Register adds a migration step.
func (r *Registry) Register(m Migration) error {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return ErrNameRequired
	}
	if m.Up == nil {
		return ErrUpRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.migrations[m.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, m.Name)
	}
	r.migrations[m.Name] = m
	return nil
}

// Names lists registered migrations in execution order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.migrations))
	for name := range r.migrations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run applies pending migrations, each in its own transaction, and returns
// the names it applied.
func (r *Registry) Run(ctx context.Context, db *bun.DB) ([]string, error) {
	if db == nil {
		return nil, errors.New("migrations: database is required")
	}
	if _, err := db.NewCreateTable().Model((*Applied)(nil)).IfNotExists().Exec(ctx); err != nil {
		return nil, fmt.Errorf("migrations: create ledger: %w", err)
	}
	done := []*Applied{}
	if err := db.NewSelect().Model(&done).Scan(ctx); err != nil {
		return nil, fmt.Errorf("migrations: read ledger: %w", err)
	}
	seen := make(map[string]struct{}, len(done))
	for _, item := range done {
		seen[item.Name] = struct{}{}
	}

	var applied []string
	for _, name := range r.Names() {
		if _, ok := seen[name]; ok {
			continue
		}
		r.mu.RLock()
		m := r.migrations[name]
		r.mu.RUnlock()
		err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if err := m.Up(ctx, tx); err != nil {
				return err
			}
			_, err := tx.NewInsert().Model(&Applied{Name: name, AppliedAt: time.Now().UTC()}).Exec(ctx)
			return err
		})
		if err != nil {
			return applied, fmt.Errorf("migrations: %s: %w", name, err)
		}
		applied = append(applied, name)
	}
	return applied, nil
}
