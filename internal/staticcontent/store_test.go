package staticcontent

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-showcase/internal/domain"
	"github.com/goliatone/go-showcase/internal/identity"
)

func TestBundleCoversLocales(t *testing.T) {
	store, err := Open("")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for _, locale := range []string{"en", "th"} {
		record, ok := store.Lookup(locale, "home", "HERO_SECTION")
		if !ok {
			t.Fatalf("expected %s home hero in bundle", locale)
		}
		if record.Status != domain.StatusPublished {
			t.Fatalf("expected static records to be published, got %s", record.Status)
		}
		if record.ID != identity.StaticContentUUID(locale, "home", "HERO_SECTION") {
			t.Fatalf("expected deterministic id, got %s", record.ID)
		}
		if _, ok := record.Field("heading"); !ok {
			t.Fatalf("expected heading field for %s", locale)
		}
	}
}

func TestMarkdownSectionBecomesLongBody(t *testing.T) {
	store, err := New(fstest.MapFS{
		"en/about.json":             {Data: []byte(`{"STORY_SECTION":{"fields":[{"key":"title","value":"Old"},{"key":"lead","value":"Kept"}]}}`)},
		"en/about/STORY_SECTION.md": {Data: []byte("---\nfields:\n  - key: title\n    value: Our story\nbuttons:\n  - text: Read more\n    url: /about\n---\n\nWe **build** things.\n")},
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	record, ok := store.Lookup("EN", "About", "STORY_SECTION")
	if !ok {
		t.Fatal("expected story section")
	}
	if title, _ := record.Field("title"); title != "Our story" {
		t.Fatalf("expected markdown frontmatter to override title, got %q", title)
	}
	if lead, _ := record.Field("lead"); lead != "Kept" {
		t.Fatalf("expected json field to survive merge, got %q", lead)
	}
	if len(record.Fields) != 3 || record.Fields[2].Key != BodyField || record.Fields[2].Type != domain.FieldLong {
		t.Fatalf("expected body as trailing LONG field, got %+v", record.Fields)
	}
	if record.Fields[2].Value != "We **build** things." {
		t.Fatalf("unexpected body %q", record.Fields[2].Value)
	}
	if len(record.Buttons) != 1 || record.Buttons[0].URL != "/about" {
		t.Fatalf("unexpected buttons %+v", record.Buttons)
	}
}

func TestLookupReturnsCopies(t *testing.T) {
	store, err := New(fstest.MapFS{
		"en/home.json": {Data: []byte(`{"HERO_SECTION":{"fields":[{"key":"heading","value":"Hi"}]}}`)},
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	first, _ := store.Lookup("en", "home", "HERO_SECTION")
	first.Fields[0].Value = "mutated"
	second, _ := store.Lookup("en", "home", "HERO_SECTION")
	if second.Fields[0].Value != "Hi" {
		t.Fatalf("expected store to be isolated from callers, got %q", second.Fields[0].Value)
	}
	if _, ok := store.Lookup("th", "home", "HERO_SECTION"); ok {
		t.Fatal("expected miss for unknown locale")
	}
}

func TestInvalidDocuments(t *testing.T) {
	cases := map[string]fstest.MapFS{
		"bad json":       {"en/home.json": {Data: []byte(`{`)}},
		"duplicate key":  {"en/home.json": {Data: []byte(`{"HERO":{"fields":[{"key":"a"},{"key":"a"}]}}`)}},
		"bad field type": {"en/home.json": {Data: []byte(`{"HERO":{"fields":[{"key":"a","type":"HUGE"}]}}`)}},
	}
	for name, fsys := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := New(fsys); !errors.Is(err, ErrInvalidDocument) {
				t.Fatalf("expected ErrInvalidDocument, got %v", err)
			}
		})
	}
}

func TestOpenDirectoryOverridesBundle(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "en"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	doc := `{"HERO_SECTION":{"fields":[{"key":"heading","value":"Custom heading"}]}}`
	if err := os.WriteFile(filepath.Join(dir, "en", "home.json"), []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store, err := Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	record, ok := store.Lookup("en", "home", "HERO_SECTION")
	if !ok {
		t.Fatal("expected hero")
	}
	if heading, _ := record.Field("heading"); heading != "Custom heading" {
		t.Fatalf("expected directory override, got %q", heading)
	}
	if _, ok := store.Lookup("th", "home", "HERO_SECTION"); !ok {
		t.Fatal("expected bundle content to remain for other locales")
	}

	if _, err := Open(filepath.Join(dir, "missing")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
