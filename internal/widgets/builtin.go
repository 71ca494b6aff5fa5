package widgets

import (
	"bytes"
	"context"
	"html/template"
)

// Built-in widget kinds.
const (
	KindHeroAI       = "hero-ai"
	KindHeroSimple   = "hero-simple"
	KindTestimonials = "testimonials"
	KindFAQ          = "faq"
	KindCTABanner    = "cta-banner"
)

// RegisterBuiltins adds the site's widget kinds to r.
func RegisterBuiltins(r *Registry) {
	r.MustRegister(KindHeroAI, Registration{
		Name:        "AI hero",
		Description: "Landing hero with a badge, example prompts and calls to action",
		Schema: objectSchema(map[string]any{
			"badge":      stringSchema(80),
			"heading":    stringSchema(200),
			"subheading": stringSchema(500),
			"prompts":    map[string]any{"type": "array", "maxItems": 6, "items": stringSchema(120)},
			"buttons":    buttonsSchema(),
		}),
		Defaults: map[string]any{"prompts": []any{}},
		Factory:  heroAI,
	})
	r.MustRegister(KindHeroSimple, Registration{
		Name:        "Simple hero",
		Description: "Heading and subheading banner",
		Schema: objectSchema(map[string]any{
			"heading":    stringSchema(200),
			"subheading": stringSchema(500),
			"align":      map[string]any{"type": "string", "enum": []any{"left", "center"}},
			"buttons":    buttonsSchema(),
		}),
		Defaults: map[string]any{"align": "center"},
		Factory:  heroSimple,
	})
	r.MustRegister(KindTestimonials, Registration{
		Name:        "Testimonials",
		Description: "Client quotes",
		Schema: objectSchema(map[string]any{
			"title": stringSchema(200),
			"items": map[string]any{
				"type":     "array",
				"maxItems": 12,
				"items": map[string]any{
					"type":                 "object",
					"required":             []any{"quote", "author"},
					"additionalProperties": false,
					"properties": map[string]any{
						"quote":  map[string]any{"type": "string", "minLength": 1},
						"author": map[string]any{"type": "string", "minLength": 1},
						"role":   map[string]any{"type": "string"},
					},
				},
			},
		}),
		Factory: testimonials,
	})
	r.MustRegister(KindFAQ, Registration{
		Name:        "FAQ",
		Description: "Questions and markdown answers",
		Schema: objectSchema(map[string]any{
			"title": stringSchema(200),
			"items": map[string]any{
				"type":     "array",
				"maxItems": 30,
				"items": map[string]any{
					"type":                 "object",
					"required":             []any{"question", "answer"},
					"additionalProperties": false,
					"properties": map[string]any{
						"question": map[string]any{"type": "string", "minLength": 1},
						"answer":   map[string]any{"type": "string", "minLength": 1},
					},
				},
			},
		}),
		Factory: faq,
	})
	r.MustRegister(KindCTABanner, Registration{
		Name:        "Call to action banner",
		Description: "Closing banner with a single prompt",
		Schema: objectSchema(map[string]any{
			"heading": stringSchema(200),
			"text":    stringSchema(500),
			"tone":    map[string]any{"type": "string", "enum": []any{"primary", "dark", "light"}},
			"buttons": buttonsSchema(),
		}),
		Defaults: map[string]any{"tone": "primary"},
		Factory:  ctaBanner,
	})
}

func objectSchema(properties map[string]any) map[string]any {
	properties[TypeKey] = map[string]any{"type": "string", "minLength": 1}
	return map[string]any{
		"type":                 "object",
		"required":             []any{TypeKey},
		"properties":           properties,
		"additionalProperties": false,
	}
}

func stringSchema(maxLength int) map[string]any {
	return map[string]any{"type": "string", "maxLength": maxLength}
}

func buttonsSchema() map[string]any {
	return map[string]any{
		"type":     "array",
		"maxItems": 4,
		"items": map[string]any{
			"type":                 "object",
			"required":             []any{"text", "url"},
			"additionalProperties": false,
			"properties": map[string]any{
				"label": map[string]any{"type": "string"},
				"text":  map[string]any{"type": "string", "minLength": 1},
				"url":   map[string]any{"type": "string", "minLength": 1},
			},
		},
	}
}

var builtinTemplates = template.Must(template.New("widgets").Parse(`
{{define "buttons"}}{{if .}}<div class="actions">{{range $i, $b := .}}<a class="button{{if eq $i 0}} button-primary{{end}}" href="{{$b.URL}}">{{$b.Text}}</a>{{end}}</div>{{end}}{{end}}

{{define "hero-ai"}}<section class="hero hero-ai" data-widget="hero-ai" {{.Animate}}>
{{if .Badge}}<span class="badge">{{.Badge}}</span>{{end}}
<h1>{{.Heading}}</h1>
{{if .Subheading}}<p class="lead">{{.Subheading}}</p>{{end}}
{{if .Prompts}}<ul class="prompts">{{range .Prompts}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{template "buttons" .Buttons}}
</section>{{end}}

{{define "hero-simple"}}<section class="hero hero-simple align-{{.Align}}" data-widget="hero-simple" {{.Animate}}>
<h1>{{.Heading}}</h1>
{{if .Subheading}}<p class="lead">{{.Subheading}}</p>{{end}}
{{template "buttons" .Buttons}}
</section>{{end}}

{{define "testimonials"}}<section class="testimonials" data-widget="testimonials" {{.Animate}}>
{{if .Title}}<h2>{{.Title}}</h2>{{end}}
{{range .Items}}<figure class="testimonial"><blockquote>{{.Quote}}</blockquote><figcaption>{{.Author}}{{if .Role}}, <span class="role">{{.Role}}</span>{{end}}</figcaption></figure>
{{end}}</section>{{end}}

{{define "faq"}}<section class="faq" data-widget="faq" {{.Animate}}>
{{if .Title}}<h2>{{.Title}}</h2>{{end}}
{{range .Items}}<details class="faq-item"><summary>{{.Question}}</summary><div class="answer">{{.Answer}}</div></details>
{{end}}</section>{{end}}

{{define "cta-banner"}}<section class="cta-banner tone-{{.Tone}}" data-widget="cta-banner" {{.Animate}}>
<h2>{{.Heading}}</h2>
{{if .Text}}<p>{{.Text}}</p>{{end}}
{{template "buttons" .Buttons}}
</section>{{end}}
`))

func render(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := builtinTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return template.HTML(bytes.TrimSpace(buf.Bytes())), nil
}

type heroView struct {
	Animate    template.HTMLAttr
	Badge      string
	Heading    string
	Subheading string
	Align      string
	Prompts    []string
	Buttons    []ContentButton
}

func heroAI(_ context.Context, in Input) (template.HTML, error) {
	return render(KindHeroAI, heroView{
		Animate:    in.Animate("fade-up"),
		Badge:      in.Text("badge"),
		Heading:    in.Text("heading"),
		Subheading: in.Text("subheading"),
		Prompts:    in.Strings("prompts"),
		Buttons:    in.Buttons(),
	})
}

func heroSimple(_ context.Context, in Input) (template.HTML, error) {
	return render(KindHeroSimple, heroView{
		Animate:    in.Animate("fade-in"),
		Heading:    in.Text("heading"),
		Subheading: in.Text("subheading"),
		Align:      in.Text("align"),
		Buttons:    in.Buttons(),
	})
}

type quote struct {
	Quote, Author, Role string
}

func testimonials(_ context.Context, in Input) (template.HTML, error) {
	var items []quote
	for _, row := range in.Objects("items") {
		items = append(items, quote{Quote: row["quote"], Author: row["author"], Role: row["role"]})
	}
	if len(items) == 0 {
		for _, row := range in.Numbered("quote", "author", "role") {
			items = append(items, quote{Quote: row["quote"].Value, Author: row["author"].Value, Role: row["role"].Value})
		}
	}
	return render(KindTestimonials, struct {
		Animate template.HTMLAttr
		Title   string
		Items   []quote
	}{in.Animate("stagger"), in.Text("title"), items})
}

type question struct {
	Question string
	Answer   template.HTML
}

func faq(_ context.Context, in Input) (template.HTML, error) {
	var items []question
	for _, row := range in.Objects("items") {
		items = append(items, question{Question: row["question"], Answer: in.Markdown(row["answer"])})
	}
	if len(items) == 0 {
		for _, row := range in.Numbered("question", "answer") {
			answer := row["answer"]
			rendered := template.HTML(template.HTMLEscapeString(answer.Value))
			if answer.Type == "LONG" {
				rendered = in.Markdown(answer.Value)
			}
			items = append(items, question{Question: row["question"].Value, Answer: rendered})
		}
	}
	return render(KindFAQ, struct {
		Animate template.HTMLAttr
		Title   string
		Items   []question
	}{in.Animate("fade-up"), in.Text("title"), items})
}

func ctaBanner(_ context.Context, in Input) (template.HTML, error) {
	return render(KindCTABanner, struct {
		Animate template.HTMLAttr
		Heading string
		Text    string
		Tone    string
		Buttons []ContentButton
	}{in.Animate("zoom-in"), in.Text("heading"), in.Text("text"), in.Text("tone"), in.Buttons()})
}
