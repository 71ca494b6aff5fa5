package markdown

import (
	"strings"
	"testing"
)

func TestParserRendersMarkdown(t *testing.T) {
	p := NewParser(Options{})
	out, err := p.Render("# Services\n\nWe build **fast** sites.\n\n- [x] done")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)
	if !strings.Contains(html, `<h1 id="services">Services</h1>`) {
		t.Fatalf("expected heading with id, got %s", html)
	}
	if !strings.Contains(html, "<strong>fast</strong>") {
		t.Fatalf("expected strong text, got %s", html)
	}
	if !strings.Contains(html, `type="checkbox"`) {
		t.Fatalf("expected task list extension, got %s", html)
	}
}

func TestParserEscapesRawHTMLByDefault(t *testing.T) {
	out, err := NewParser(Options{}).Render("hello <script>alert(1)</script>")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(string(out), "<script>") {
		t.Fatalf("expected raw html to be stripped, got %s", out)
	}

	out, err = NewParser(Options{Unsafe: true}).Render("<em>kept</em>")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(out), "<em>kept</em>") {
		t.Fatalf("expected unsafe mode to keep html, got %s", out)
	}
}

func TestRenderBlankValue(t *testing.T) {
	out, err := NewParser(Options{}).Render("   ")
	if err != nil || out != "" {
		t.Fatalf("expected empty output, got %q %v", out, err)
	}
}

func TestParseFrontMatter(t *testing.T) {
	source := []byte("---\ntitle: Hero\nfields:\n  - key: heading\n    value: Hello\n---\n\n# Body\n")
	var meta struct {
		Title  string `yaml:"title"`
		Fields []struct {
			Key   string `yaml:"key"`
			Value string `yaml:"value"`
		} `yaml:"fields"`
	}
	body, err := ParseFrontMatter(source, &meta)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if meta.Title != "Hero" || len(meta.Fields) != 1 || meta.Fields[0].Value != "Hello" {
		t.Fatalf("unexpected meta %+v", meta)
	}
	if string(body) != "# Body" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestParseFrontMatterWithoutHeader(t *testing.T) {
	var meta map[string]any
	body, err := ParseFrontMatter([]byte("plain text"), &meta)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if string(body) != "plain text" {
		t.Fatalf("unexpected body %q", body)
	}
}
