package staticcontent

import (
	"path/filepath"
	"testing"

	"github.com/goliatone/go-showcase/pkg/testsupport"
)

func TestEmbeddedBundleMatchesSourceFiles(t *testing.T) {
	store, err := Open("")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for _, locale := range []string{"en", "th"} {
		for _, page := range []string{"home", "services", "about", "contact", "products"} {
			var sections map[string]sectionDoc
			testsupport.MustLoadGolden(t, filepath.Join("bundle", locale, page+".json"), &sections)
			for section, doc := range sections {
				record, ok := store.Lookup(locale, page, section)
				if !ok {
					t.Fatalf("%s/%s/%s missing from embedded bundle", locale, page, section)
				}
				if len(doc.Fields) > 0 && len(record.Fields) < len(doc.Fields) {
					t.Fatalf("%s/%s/%s lost fields: %d < %d", locale, page, section, len(record.Fields), len(doc.Fields))
				}
				if len(record.Buttons) != len(doc.Buttons) {
					t.Fatalf("%s/%s/%s buttons: expected %d got %d", locale, page, section, len(doc.Buttons), len(record.Buttons))
				}
			}
		}
	}
}
