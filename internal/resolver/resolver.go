// Package resolver answers "which content should this section show" by
// walking an ordered chain of sources: the database first, then the static
// fallback store.
package resolver

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/goliatone/go-showcase/internal/content"
	"github.com/goliatone/go-showcase/internal/domain"
	"github.com/goliatone/go-showcase/internal/logging"
	"github.com/goliatone/go-showcase/pkg/interfaces"
)

var (
	ErrNotFound          = errors.New("resolver: content not found")
	ErrUnsupportedLocale = errors.New("resolver: unsupported locale")
	ErrPageRequired      = errors.New("resolver: page required")
	ErrSectionRequired   = errors.New("resolver: section required")
)

// Source names the layer that produced a record.
type Source string

const (
	SourceDatabase Source = "database"
	SourceStatic   Source = "static"
)

// Resolution is a successful lookup.
type Resolution struct {
	Record *content.Record `json:"record"`
	Source Source          `json:"source"`
}

// Request addresses one section. Preview only widens visibility for admins.
type Request struct {
	Locale  string
	Page    string
	Section string
	Preview bool
	Viewer  domain.Viewer
}

// ContentReader is the database side of the chain.
type ContentReader interface {
	Get(ctx context.Context, key content.Key, viewer domain.Viewer) (*content.Record, error)
}

// StaticStore is the file-backed side of the chain.
type StaticStore interface {
	Lookup(locale, page, section string) (*content.Record, bool)
}

// Observer is told which source answered each resolution.
type Observer interface {
	ObserveResolution(source string)
}

type Resolver interface {
	Resolve(ctx context.Context, req Request) (*Resolution, error)
	Locales() []string
	DefaultLocale() string
}

type Option func(*resolver)

// WithLocales sets the accepted locales. The first one is the default.
func WithLocales(locales ...string) Option {
	return func(r *resolver) {
		normalized := make([]string, 0, len(locales))
		for _, code := range locales {
			code = strings.ToLower(strings.TrimSpace(code))
			if code != "" && !slices.Contains(normalized, code) {
				normalized = append(normalized, code)
			}
		}
		if len(normalized) > 0 {
			r.locales = normalized
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(r *resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithObserver(observer Observer) Option {
	return func(r *resolver) {
		r.observer = observer
	}
}

// lookup is one link of the chain. A nil record with a nil error is a miss.
type lookup struct {
	source Source
	find   func(ctx context.Context, key content.Key, viewer domain.Viewer) (*content.Record, error)
}

type resolver struct {
	chain    []lookup
	locales  []string
	logger   interfaces.Logger
	observer Observer
}

// New builds a resolver over the database reader and the static store.
// Either may be nil, in which case that link is skipped.
func New(db ContentReader, static StaticStore, opts ...Option) Resolver {
	r := &resolver{
		locales: []string{"en", "th"},
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if db != nil {
		r.chain = append(r.chain, lookup{source: SourceDatabase, find: func(ctx context.Context, key content.Key, viewer domain.Viewer) (*content.Record, error) {
			record, err := db.Get(ctx, key, viewer)
			if err == nil {
				return record, nil
			}
			if content.IsNotFound(err) || content.IsVisibilityError(err) {
				return nil, nil
			}
			return nil, err
		}})
	}
	if static != nil {
		r.chain = append(r.chain, lookup{source: SourceStatic, find: func(_ context.Context, key content.Key, _ domain.Viewer) (*content.Record, error) {
			record, ok := static.Lookup(key.Language, key.Page, key.Section)
			if !ok {
				return nil, nil
			}
			return record, nil
		}})
	}
	return r
}

func (r *resolver) Locales() []string {
	return append([]string(nil), r.locales...)
}

func (r *resolver) DefaultLocale() string {
	return r.locales[0]
}

func (r *resolver) Resolve(ctx context.Context, req Request) (*Resolution, error) {
	key := content.Key{Page: req.Page, Section: req.Section, Language: req.Locale}.Normalize()
	if !slices.Contains(r.locales, key.Language) {
		return nil, ErrUnsupportedLocale
	}
	if key.Page == "" {
		return nil, ErrPageRequired
	}
	if key.Section == "" {
		return nil, ErrSectionRequired
	}

	viewer := domain.Anonymous()
	if req.Preview && req.Viewer.IsAdmin() {
		viewer = req.Viewer
	}

	logger := logging.FromContext(ctx, r.logger)
	for _, link := range r.chain {
		record, err := link.find(ctx, key, viewer)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			logger.Warn("content source failed, falling through", "source", link.source, "key", key.String(), "error", err)
			continue
		}
		if record == nil {
			continue
		}
		if r.observer != nil {
			r.observer.ObserveResolution(string(link.source))
		}
		logger.Debug("content resolved", "source", link.source, "key", key.String())
		return &Resolution{Record: record, Source: link.source}, nil
	}
	return nil, ErrNotFound
}
