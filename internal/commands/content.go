package commands

import (
	"context"
	"slices"
	"strings"

	"github.com/goliatone/go-showcase/internal/content"
	"github.com/goliatone/go-showcase/internal/domain"
	"github.com/goliatone/go-showcase/internal/logging"
	"github.com/goliatone/go-showcase/pkg/interfaces"
)

const importStaticOperation = "content.import_static"

// StaticSource lists and reads static fallback sections.
type StaticSource interface {
	Keys() []content.Key
	Lookup(locale, page, section string) (*content.Record, bool)
}

// ImportStaticContentCommand copies static fallback sections into the
// database as published records so they become editable. Sections already
// present in the database are left alone. Result, when set, receives the
// outcome.
type ImportStaticContentCommand struct {
	Locales []string
	DryRun  bool
	Result  *ImportResult
}

// ImportResult reports what an import did.
type ImportResult struct {
	Created []content.Key
	Skipped []content.Key
}

func (ImportStaticContentCommand) Type() string { return "showcase.content.import_static" }

func (ImportStaticContentCommand) Validate() error { return nil }

var importer = domain.Viewer{UserID: "system", Role: domain.RoleSuperAdmin, Authenticated: true}

// NewImportStaticContentHandler binds ImportStaticContentCommand to the
// content service and static store.
func NewImportStaticContentHandler(service content.Service, static StaticSource, logger interfaces.Logger, opts ...HandlerOption[ImportStaticContentCommand]) *Handler[ImportStaticContentCommand] {
	if logger == nil {
		logger = logging.NoOp()
	}
	return NewHandler[ImportStaticContentCommand](func(ctx context.Context, msg ImportStaticContentCommand) error {
		locales := make([]string, 0, len(msg.Locales))
		for _, code := range msg.Locales {
			if code = strings.ToLower(strings.TrimSpace(code)); code != "" {
				locales = append(locales, code)
			}
		}

		result := &ImportResult{}
		for _, key := range static.Keys() {
			if len(locales) > 0 && !slices.Contains(locales, key.Language) {
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := service.Get(ctx, key, importer); err == nil {
				result.Skipped = append(result.Skipped, key)
				continue
			} else if !content.IsNotFound(err) {
				return err
			}
			record, ok := static.Lookup(key.Language, key.Page, key.Section)
			if !ok {
				continue
			}
			if !msg.DryRun {
				if _, err := service.Create(ctx, createRequest(record)); err != nil {
					return err
				}
			}
			result.Created = append(result.Created, key)
		}

		logger.Info("static content imported",
			"created", len(result.Created),
			"skipped", len(result.Skipped),
			"dry_run", msg.DryRun,
		)
		if msg.Result != nil {
			*msg.Result = *result
		}
		return nil
	}, append([]HandlerOption[ImportStaticContentCommand]{
		WithLogger[ImportStaticContentCommand](logger),
		WithOperation[ImportStaticContentCommand](importStaticOperation),
	}, opts...)...)
}

func createRequest(record *content.Record) content.CreateRequest {
	req := content.CreateRequest{
		PageSlug:    record.PageSlug,
		SectionType: record.SectionType,
		Language:    record.Language,
		Status:      string(domain.StatusPublished),
		Fields:      make([]content.FieldInput, 0, len(record.Fields)),
		Buttons:     make([]content.ButtonInput, 0, len(record.Buttons)),
	}
	for _, field := range record.Fields {
		req.Fields = append(req.Fields, content.FieldInput{
			Key:   field.Key,
			Label: field.Label,
			Type:  string(field.Type),
			Value: field.Value,
		})
	}
	for _, button := range record.Buttons {
		req.Buttons = append(req.Buttons, content.ButtonInput{
			Label: button.Label,
			Text:  button.Text,
			URL:   button.URL,
		})
	}
	return req
}
