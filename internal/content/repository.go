package content

import (
	"context"
	"sort"

	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-showcase/internal/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Filter narrows List results. Empty values match everything.
type Filter struct {
	Page     string
	Section  string
	Language string
	Status   domain.Status
}

// Repository abstracts storage for content records and their children.
type Repository interface {
	Create(ctx context.Context, record *Record) (*Record, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	GetByKey(ctx context.Context, key Key) (*Record, error)
	List(ctx context.Context, filter Filter) ([]*Record, error)
	// Replace rewrites the record row and swaps fields and buttons wholesale.
	Replace(ctx context.Context, record *Record) (*Record, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

func NewRecordRepository(db *bun.DB) repository.Repository[*Record] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Record]{
		NewRecord: func() *Record { return &Record{} },
		GetID: func(r *Record) uuid.UUID {
			return r.ID
		},
		SetID: func(r *Record, id uuid.UUID) {
			r.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(r *Record) string {
			if r == nil {
				return ""
			}
			return r.ID.String()
		},
	})
}

func (f Filter) matches(record *Record) bool {
	if record == nil {
		return false
	}
	if f.Page != "" && record.PageSlug != f.Page {
		return false
	}
	if f.Section != "" && record.SectionType != f.Section {
		return false
	}
	if f.Language != "" && record.Language != f.Language {
		return false
	}
	if f.Status != "" && record.Status != f.Status {
		return false
	}
	return true
}

func sortChildren(record *Record) {
	if record == nil {
		return
	}
	sort.SliceStable(record.Fields, func(i, j int) bool {
		return record.Fields[i].Order < record.Fields[j].Order
	})
	sort.SliceStable(record.Buttons, func(i, j int) bool {
		return record.Buttons[i].Order < record.Buttons[j].Order
	})
}

func sortRecords(records []*Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.PageSlug != b.PageSlug {
			return a.PageSlug < b.PageSlug
		}
		if a.SectionType != b.SectionType {
			return a.SectionType < b.SectionType
		}
		return a.Language < b.Language
	})
}
