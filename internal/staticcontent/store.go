// Package staticcontent serves the file-backed fallback content consulted
// when the database has no published row for a page section.
//
// Layout, relative to the store root:
//
//	{locale}/{page}.json            section type -> {fields, buttons}
//	{locale}/{page}/{SECTION}.md    frontmatter {fields, buttons}, body -> LONG field "body"
package staticcontent

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-showcase/internal/content"
	"github.com/goliatone/go-showcase/internal/domain"
	"github.com/goliatone/go-showcase/internal/identity"
	"github.com/goliatone/go-showcase/internal/markdown"
)

// BodyField is the field key that receives the markdown body of a section file.
const BodyField = "body"

var ErrInvalidDocument = errors.New("staticcontent: invalid document")

//go:embed all:bundle
var bundleFS embed.FS

// Bundle returns the embedded default content.
func Bundle() fs.FS {
	sub, err := fs.Sub(bundleFS, "bundle")
	if err != nil {
		panic(err)
	}
	return sub
}

type fieldDoc struct {
	Key   string `json:"key"   yaml:"key"`
	Label string `json:"label" yaml:"label"`
	Type  string `json:"type"  yaml:"type"`
	Value string `json:"value" yaml:"value"`
}

type buttonDoc struct {
	Label string `json:"label" yaml:"label"`
	Text  string `json:"text"  yaml:"text"`
	URL   string `json:"url"   yaml:"url"`
}

type sectionDoc struct {
	Fields  []fieldDoc  `json:"fields"  yaml:"fields"`
	Buttons []buttonDoc `json:"buttons" yaml:"buttons"`
}

// Store is an immutable in-memory index of static section records.
type Store struct {
	mu      sync.RWMutex
	records map[content.Key]*content.Record
}

// New loads every layer in order; a section in a later layer replaces the
// same section from earlier layers.
func New(layers ...fs.FS) (*Store, error) {
	store := &Store{records: map[content.Key]*content.Record{}}
	for _, layer := range layers {
		if layer == nil {
			continue
		}
		records, err := load(layer)
		if err != nil {
			return nil, err
		}
		for key, record := range records {
			store.records[key] = record
		}
	}
	return store, nil
}

// Open loads the embedded bundle, overridden by dir when it is set.
func Open(dir string) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return New(Bundle())
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("staticcontent: open %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("staticcontent: %s is not a directory", dir)
	}
	return New(Bundle(), os.DirFS(dir))
}

// Lookup returns a copy of the static record for the key.
func (s *Store) Lookup(locale, page, section string) (*content.Record, bool) {
	if s == nil {
		return nil, false
	}
	key := content.Key{Page: page, Section: section, Language: locale}.Normalize()
	s.mu.RLock()
	record, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return record.Clone(), true
}

// Keys lists every stored key sorted by language, page and section.
func (s *Store) Keys() []content.Key {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	keys := make([]content.Key, 0, len(s.records))
	for key := range s.records {
		keys = append(keys, key)
	}
	s.mu.RUnlock()
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}

func load(fsys fs.FS) (map[content.Key]*content.Record, error) {
	var jsonFiles, markdownFiles []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		depth := strings.Count(p, "/")
		switch {
		case depth == 1 && path.Ext(p) == ".json":
			jsonFiles = append(jsonFiles, p)
		case depth == 2 && path.Ext(p) == ".md":
			markdownFiles = append(markdownFiles, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("staticcontent: walk: %w", err)
	}

	records := map[content.Key]*content.Record{}
	for _, p := range jsonFiles {
		if err := loadJSON(fsys, p, records); err != nil {
			return nil, err
		}
	}
	// Section files are applied after page files so they can extend them.
	for _, p := range markdownFiles {
		if err := loadMarkdown(fsys, p, records); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func loadJSON(fsys fs.FS, p string, records map[content.Key]*content.Record) error {
	raw, err := fs.ReadFile(fsys, p)
	if err != nil {
		return fmt.Errorf("staticcontent: read %s: %w", p, err)
	}
	var sections map[string]sectionDoc
	if err := json.Unmarshal(raw, &sections); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidDocument, p, err)
	}
	locale := path.Dir(p)
	page := strings.TrimSuffix(path.Base(p), ".json")
	for section, doc := range sections {
		key := content.Key{Page: page, Section: section, Language: locale}.Normalize()
		if key.Section == "" {
			return fmt.Errorf("%w: %s: empty section type", ErrInvalidDocument, p)
		}
		record, err := buildRecord(key, doc)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidDocument, p, err)
		}
		records[key] = record
	}
	return nil
}

func loadMarkdown(fsys fs.FS, p string, records map[content.Key]*content.Record) error {
	raw, err := fs.ReadFile(fsys, p)
	if err != nil {
		return fmt.Errorf("staticcontent: read %s: %w", p, err)
	}
	var doc sectionDoc
	body, err := markdown.ParseFrontMatter(raw, &doc)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidDocument, p, err)
	}
	if len(body) > 0 {
		doc.Fields = append(doc.Fields, fieldDoc{Key: BodyField, Type: string(domain.FieldLong), Value: string(body)})
	}

	parts := strings.Split(p, "/")
	key := content.Key{
		Page:     parts[1],
		Section:  strings.TrimSuffix(parts[2], ".md"),
		Language: parts[0],
	}.Normalize()

	incoming, err := buildRecord(key, doc)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidDocument, p, err)
	}
	existing, ok := records[key]
	if !ok {
		records[key] = incoming
		return nil
	}
	records[key] = merge(existing, incoming)
	return nil
}

// merge overlays incoming fields by key onto base. Buttons are replaced when
// incoming declares any.
func merge(base, incoming *content.Record) *content.Record {
	out := base.Clone()
	index := make(map[string]int, len(out.Fields))
	for i, field := range out.Fields {
		index[field.Key] = i
	}
	for _, field := range incoming.Fields {
		if i, ok := index[field.Key]; ok {
			field.Order = out.Fields[i].Order
			out.Fields[i] = field
			continue
		}
		field.Order = len(out.Fields)
		out.Fields = append(out.Fields, field)
	}
	if len(incoming.Buttons) > 0 {
		out.Buttons = incoming.Buttons
	}
	return out
}

func buildRecord(key content.Key, doc sectionDoc) (*content.Record, error) {
	id := identity.StaticContentUUID(key.Language, key.Page, key.Section)
	record := &content.Record{
		ID:          id,
		PageSlug:    key.Page,
		SectionType: key.Section,
		Language:    key.Language,
		Status:      domain.StatusPublished,
		Fields:      make([]*content.Field, 0, len(doc.Fields)),
		Buttons:     make([]*content.Button, 0, len(doc.Buttons)),
	}
	seen := map[string]struct{}{}
	for i, f := range doc.Fields {
		fieldKey := strings.TrimSpace(f.Key)
		if fieldKey == "" {
			return nil, fmt.Errorf("%s field %d: key required", key, i)
		}
		if _, dup := seen[fieldKey]; dup {
			return nil, fmt.Errorf("%s field %q: duplicate key", key, fieldKey)
		}
		seen[fieldKey] = struct{}{}
		fieldType, ok := domain.ParseFieldType(f.Type)
		if !ok {
			return nil, fmt.Errorf("%s field %q: unknown type %q", key, fieldKey, f.Type)
		}
		record.Fields = append(record.Fields, &content.Field{
			ID:       identity.UUID("go-showcase:static_field:" + key.String() + ":" + fieldKey),
			RecordID: id,
			Key:      fieldKey,
			Label:    f.Label,
			Type:     fieldType,
			Value:    f.Value,
			Order:    i,
		})
	}
	for i, b := range doc.Buttons {
		record.Buttons = append(record.Buttons, &content.Button{
			ID:       identity.UUID(fmt.Sprintf("go-showcase:static_button:%s:%d", key.String(), i)),
			RecordID: id,
			Label:    b.Label,
			Text:     b.Text,
			URL:      b.URL,
			Order:    i,
		})
	}
	return record, nil
}
