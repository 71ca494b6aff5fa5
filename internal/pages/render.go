package pages

import (
	"fmt"
	"html/template"
	"io"
	"strings"
)

// NavItem is a link in the site navigation.
type NavItem struct {
	Label  string
	URL    string
	Active bool
}

// SignInView feeds the admin sign in form.
type SignInView struct {
	CallbackURL string
	Error       string
}

type RendererOptions struct {
	SiteName      string
	Locales       []string
	DefaultLocale string
}

// Renderer writes composed pages as complete HTML documents.
type Renderer struct {
	siteName      string
	locales       []string
	defaultLocale string
	tmpl          *template.Template
}

type documentView struct {
	SiteName    string
	Locale      string
	Title       string
	Description string
	Preview     bool
	Nav         []NavItem
	Switcher    []NavItem
	Sections    []ComposedSection
	SignIn      *SignInView
	NotFound    bool
}

var documentTemplate = template.Must(template.New("document").Parse(`<!doctype html>
<html lang="{{.Locale}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{if .Title}}{{.Title}} | {{end}}{{.SiteName}}</title>
{{with .Description}}<meta name="description" content="{{.}}">{{end}}
<link rel="stylesheet" href="/static/site.css">
</head>
<body>
{{if .Preview}}<div class="preview-banner">Preview</div>{{end}}
<header class="site-header">
<a class="brand" href="/{{.Locale}}">{{.SiteName}}</a>
<nav>{{range .Nav}}<a href="{{.URL}}"{{if .Active}} aria-current="page"{{end}}>{{.Label}}</a>{{end}}</nav>
<div class="locales">{{range .Switcher}}<a href="{{.URL}}" hreflang="{{.Label}}"{{if .Active}} aria-current="true"{{end}}>{{.Label}}</a>{{end}}</div>
</header>
<main>
{{- if .SignIn}}{{with .SignIn}}<section class="signin">
<h1>Sign in</h1>
{{with .Error}}<p class="error">{{.}}</p>{{end}}
<form method="post" action="/api/auth/signin" data-callback="{{.CallbackURL}}">
<input type="hidden" name="callbackUrl" value="{{.CallbackURL}}">
<label>Email <input type="email" name="email" autocomplete="username" required></label>
<label>Password <input type="password" name="password" autocomplete="current-password" required></label>
<button type="submit">Sign in</button>
</form>
</section>{{end}}
{{- else if .NotFound}}<section class="not-found"><h1>Page not found</h1><p><a href="/{{.Locale}}">{{.SiteName}}</a></p></section>
{{- else}}{{range .Sections}}{{.HTML}}
{{end}}{{end}}
</main>
<footer class="site-footer"><p>&copy; {{.SiteName}}</p></footer>
</body>
</html>
`))

var navLabels = map[string][]string{
	"en": {"Home", "Services", "Products", "About", "Contact"},
	"th": {"หน้าแรก", "บริการ", "ผลิตภัณฑ์", "เกี่ยวกับเรา", "ติดต่อ"},
}

var navSlugs = []string{"home", "services", "products", "about", "contact"}

func NewRenderer(opts RendererOptions) *Renderer {
	r := &Renderer{
		siteName:      strings.TrimSpace(opts.SiteName),
		locales:       opts.Locales,
		defaultLocale: opts.DefaultLocale,
		tmpl:          documentTemplate,
	}
	if r.siteName == "" {
		r.siteName = "Showcase"
	}
	if len(r.locales) == 0 {
		r.locales = []string{"en", "th"}
	}
	if r.defaultLocale == "" {
		r.defaultLocale = r.locales[0]
	}
	return r
}

// Render writes page as a full document.
func (r *Renderer) Render(w io.Writer, page *ComposedPage) error {
	if page == nil {
		return fmt.Errorf("pages: nil page")
	}
	view := r.document(page.Locale, page.Slug)
	view.Title = page.Title
	view.Description = page.Description
	view.Preview = page.Preview
	view.Sections = page.Sections
	return r.execute(w, view)
}

func (r *Renderer) RenderSignIn(w io.Writer, signIn SignInView) error {
	view := r.document(r.defaultLocale, "")
	view.Title = "Sign in"
	view.SignIn = &signIn
	return r.execute(w, view)
}

func (r *Renderer) RenderNotFound(w io.Writer, locale string) error {
	view := r.document(locale, "")
	view.Title = "Not found"
	view.NotFound = true
	return r.execute(w, view)
}

func (r *Renderer) execute(w io.Writer, view documentView) error {
	if err := r.tmpl.Execute(w, view); err != nil {
		return fmt.Errorf("pages: render document: %w", err)
	}
	return nil
}

func (r *Renderer) document(locale, slugValue string) documentView {
	if locale == "" {
		locale = r.defaultLocale
	}
	labels, ok := navLabels[locale]
	if !ok {
		labels = navLabels["en"]
	}
	view := documentView{SiteName: r.siteName, Locale: locale}
	for i, slugItem := range navSlugs {
		view.Nav = append(view.Nav, NavItem{
			Label:  labels[i],
			URL:    PagePath(locale, slugItem),
			Active: slugItem == slugValue || strings.HasPrefix(slugValue, slugItem+"/"),
		})
	}
	for _, code := range r.locales {
		view.Switcher = append(view.Switcher, NavItem{
			Label:  code,
			URL:    PagePath(code, slugValue),
			Active: code == locale,
		})
	}
	return view
}

// PagePath returns the public URL of slug in locale.
func PagePath(locale, slugValue string) string {
	slugValue = strings.Trim(slugValue, "/")
	if slugValue == "" || slugValue == "home" {
		return "/" + locale
	}
	return "/" + locale + "/" + slugValue
}
