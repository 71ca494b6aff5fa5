package pages

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/goliatone/go-showcase/internal/domain"
	"github.com/goliatone/go-showcase/internal/markdown"
	"github.com/goliatone/go-showcase/internal/products"
	"github.com/goliatone/go-showcase/internal/widgets"
)

const titleField = "title"

type renderedField struct {
	Key  string
	HTML template.HTML
}

type genericView struct {
	SectionType string
	Class       string
	Title       string
	Fields      []renderedField
	Buttons     []widgets.ContentButton
	Animate     template.HTMLAttr
}

type productCard struct {
	Title       string
	Description string
	URL         string
	Image       string
	Color       string
	Category    string
	Draft       bool
}

type gridView struct {
	SectionType string
	Title       string
	Empty       string
	Cards       []productCard
	Animate     template.HTMLAttr
}

type detailView struct {
	Product *products.Product
	Price   string
	Draft   bool
	Back    string
}

var sectionTemplates = template.Must(template.New("sections").Parse(`
{{define "buttons"}}{{if .}}<div class="actions">{{range $i, $b := .}}<a class="button{{if eq $i 0}} button-primary{{end}}" href="{{$b.URL}}">{{$b.Text}}</a>{{end}}</div>{{end}}{{end}}

{{define "generic"}}<section class="section section-{{.Class}}" data-section="{{.SectionType}}" {{.Animate}}>
{{with .Title}}<h2>{{.}}</h2>{{end}}
{{range .Fields}}<div class="field field-{{.Key}}">{{.HTML}}</div>
{{end}}{{template "buttons" .Buttons}}
</section>{{end}}

{{define "grid"}}<section class="section section-products" data-section="{{.SectionType}}" {{.Animate}}>
{{with .Title}}<h2>{{.}}</h2>{{end}}
{{if .Cards}}<div class="product-grid">{{range .Cards}}<a class="product-card" href="{{.URL}}"{{with .Color}} style="--accent: {{.}}"{{end}}>
{{with .Image}}<img src="{{.}}" alt="" loading="lazy">{{end}}
<h3>{{.Title}}{{if .Draft}} <span class="badge">Draft</span>{{end}}</h3>
{{with .Category}}<span class="category">{{.}}</span>{{end}}
{{with .Description}}<p>{{.}}</p>{{end}}
</a>{{end}}</div>{{else}}<p class="empty">{{.Empty}}</p>{{end}}
</section>{{end}}

{{define "detail"}}{{with .Product}}<article class="product-detail"{{with .Color}} style="--accent: {{.}}"{{end}}>
<a class="back" href="{{$.Back}}">&larr;</a>
{{with .CoverImage}}<img class="cover" src="{{.}}" alt="">{{end}}
<h1>{{.Title}}{{if $.Draft}} <span class="badge">Draft</span>{{end}}</h1>
{{with .Description}}<p class="lead">{{.}}</p>{{end}}
{{with $.Price}}<p class="price">{{.}}</p>{{end}}
{{if .Features}}<ul class="features">{{range .Features}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{with .TechStack}}<section class="tech-stack">
{{with .Title}}<h2>{{.}}</h2>{{end}}
{{with .Description}}<p>{{.}}</p>{{end}}
<ul>{{range .Technologies}}<li>{{.}}</li>{{end}}</ul>
</section>{{end}}
{{range .Sections}}<section class="product-section">
{{with .Title}}<h2>{{.}}</h2>{{end}}
<div class="cards">{{range .Cards}}<div class="card"{{with .Color}} style="--accent: {{.}}"{{end}}>
<h3>{{.Title}}</h3>{{with .Description}}<p>{{.}}</p>{{end}}
</div>{{end}}</div>
</section>{{end}}
{{if .Gallery}}<div class="gallery">{{range .Gallery}}<img src="{{.}}" alt="" loading="lazy">{{end}}</div>{{end}}
{{with .Tags}}<ul class="tags">{{range .}}<li>{{.}}</li>{{end}}</ul>{{end}}
</article>{{end}}{{end}}
`))

func executeSection(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := sectionTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("pages: render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

func animate(preview bool) template.HTMLAttr {
	if preview {
		return ""
	}
	return `data-animate="fade-up"`
}

func sectionClass(sectionType string) string {
	class := strings.TrimSuffix(strings.ToLower(sectionType), "_section")
	return strings.ReplaceAll(class, "_", "-")
}

// renderGenericSection renders content without a widget: the title field
// as a heading, LONG fields as markdown and SHORT fields as escaped text.
func renderGenericSection(sectionType string, body widgets.Content, parser *markdown.Parser, preview bool) (template.HTML, error) {
	view := genericView{
		SectionType: sectionType,
		Class:       sectionClass(sectionType),
		Buttons:     body.Buttons,
		Animate:     animate(preview),
	}
	for _, field := range body.Fields {
		if field.Key == titleField {
			view.Title = field.Value
			continue
		}
		if strings.TrimSpace(field.Value) == "" {
			continue
		}
		var html template.HTML
		if strings.EqualFold(field.Type, string(domain.FieldLong)) {
			rendered, err := parser.Render(field.Value)
			if err != nil {
				return "", fmt.Errorf("pages: render field %s: %w", field.Key, err)
			}
			html = rendered
		} else {
			html = template.HTML("<p>" + template.HTMLEscapeString(field.Value) + "</p>")
		}
		view.Fields = append(view.Fields, renderedField{Key: field.Key, HTML: html})
	}
	return executeSection("generic", view)
}

func renderProductGrid(locale, sectionType string, body widgets.Content, items []*products.Product, preview bool) (template.HTML, error) {
	view := gridView{
		SectionType: sectionType,
		Animate:     animate(preview),
	}
	if field, ok := body.Field(titleField); ok {
		view.Title = field.Value
	}
	if field, ok := body.Field("empty"); ok {
		view.Empty = field.Value
	}
	if view.Empty == "" {
		view.Empty = "No products yet."
	}
	for _, item := range items {
		if item == nil {
			continue
		}
		view.Cards = append(view.Cards, productCard{
			Title:       item.Title,
			Description: item.Description,
			URL:         "/" + locale + "/products/" + item.Slug,
			Image:       item.CoverImage,
			Color:       item.Color,
			Category:    item.Category,
			Draft:       !item.Status.IsPublished(),
		})
	}
	return executeSection("grid", view)
}

func renderProductDetail(locale string, product *products.Product, draft bool) (template.HTML, error) {
	view := detailView{Product: product, Draft: draft, Back: "/" + locale + "/products"}
	if product.Price != nil {
		view.Price = fmt.Sprintf("%.2f", *product.Price)
	}
	return executeSection("detail", view)
}
