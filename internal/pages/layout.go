package pages

import (
	"sort"
	"strings"

	"github.com/goliatone/go-showcase/internal/widgets"
)

// SectionSource selects what feeds a layout section besides resolved content.
type SectionSource string

const (
	SourceContent  SectionSource = ""
	SourceProducts SectionSource = "products"
)

// SectionSpec is one code-defined slot of a layout.
type SectionSpec struct {
	SectionType string
	// Widget is the base widget configuration, nil for the generic template.
	Widget map[string]any
	// Default is used when neither the database nor the static store has
	// content for the section.
	Default *widgets.Content
	Source  SectionSource
}

// Layout is the fixed section order of a marketing page.
type Layout struct {
	Slug     string
	Titles   map[string]string
	Sections []SectionSpec
}

// Title returns the localized title, falling back to English then the slug.
func (l Layout) Title(locale string) string {
	if title, ok := l.Titles[locale]; ok {
		return title
	}
	if title, ok := l.Titles["en"]; ok {
		return title
	}
	return l.Slug
}

func widget(kind string) map[string]any {
	return map[string]any{widgets.TypeKey: kind}
}

func text(pairs ...string) *widgets.Content {
	c := &widgets.Content{}
	for i := 0; i+1 < len(pairs); i += 2 {
		c.Fields = append(c.Fields, widgets.ContentField{Key: pairs[i], Type: "SHORT", Value: pairs[i+1]})
	}
	return c
}

var layouts = map[string]Layout{
	"home": {
		Slug:   "home",
		Titles: map[string]string{"en": "Home", "th": "หน้าแรก"},
		Sections: []SectionSpec{
			{SectionType: "HERO_SECTION", Widget: widget(widgets.KindHeroAI), Default: text("heading", "Software for growing teams")},
			{SectionType: "SERVICES_SECTION"},
			{SectionType: "TESTIMONIALS_SECTION", Widget: widget(widgets.KindTestimonials)},
			{SectionType: "FAQ_SECTION", Widget: widget(widgets.KindFAQ)},
			{SectionType: "CTA_SECTION", Widget: widget(widgets.KindCTABanner), Default: text("heading", "Let's build something together")},
		},
	},
	"services": {
		Slug:   "services",
		Titles: map[string]string{"en": "Services", "th": "บริการ"},
		Sections: []SectionSpec{
			{SectionType: "HERO_SECTION", Widget: widget(widgets.KindHeroSimple), Default: text("heading", "Services")},
			{SectionType: "SERVICES_SECTION"},
			{SectionType: "CTA_SECTION", Widget: widget(widgets.KindCTABanner)},
		},
	},
	"about": {
		Slug:   "about",
		Titles: map[string]string{"en": "About", "th": "เกี่ยวกับเรา"},
		Sections: []SectionSpec{
			{SectionType: "HERO_SECTION", Widget: widget(widgets.KindHeroSimple), Default: text("heading", "About us")},
			{SectionType: "STORY_SECTION"},
			{SectionType: "VALUES_SECTION"},
		},
	},
	"contact": {
		Slug:   "contact",
		Titles: map[string]string{"en": "Contact", "th": "ติดต่อ"},
		Sections: []SectionSpec{
			{SectionType: "HERO_SECTION", Widget: widget(widgets.KindHeroSimple), Default: text("heading", "Contact")},
			{SectionType: "CONTACT_SECTION", Default: text("title", "Get in touch", "email", "hello@example.com")},
		},
	},
	"products": {
		Slug:   "products",
		Titles: map[string]string{"en": "Products", "th": "ผลิตภัณฑ์"},
		Sections: []SectionSpec{
			{SectionType: "HERO_SECTION", Widget: widget(widgets.KindHeroSimple), Default: text("heading", "Products")},
			{SectionType: "PRODUCTS_SECTION", Source: SourceProducts, Default: text("title", "Products")},
		},
	},
}

// LayoutFor returns the code layout for slug.
func LayoutFor(slug string) (Layout, bool) {
	layout, ok := layouts[strings.ToLower(strings.TrimSpace(slug))]
	return layout, ok
}

// Layouts lists every code layout sorted by slug.
func Layouts() []Layout {
	out := make([]Layout, 0, len(layouts))
	for _, layout := range layouts {
		out = append(out, layout)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}
