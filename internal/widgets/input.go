package widgets

import (
	"html/template"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-showcase/internal/markdown"
)

// Input is what a factory receives. Lookups prefer the explicit
// configuration, then resolved content, then registration defaults.
type Input struct {
	Kind     string
	Config   map[string]any
	Defaults map[string]any
	Content  Content
	Render   RenderContext

	markdown *markdown.Parser
}

// Text returns the string value for key.
func (in Input) Text(key string) string {
	if value, ok := in.Config[key].(string); ok && strings.TrimSpace(value) != "" {
		return value
	}
	if field, ok := in.Content.Field(key); ok && strings.TrimSpace(field.Value) != "" {
		return field.Value
	}
	if value, ok := in.Defaults[key].(string); ok {
		return value
	}
	return ""
}

// Rich renders the value for key, as markdown when it came from a LONG field.
func (in Input) Rich(key string) template.HTML {
	if value, ok := in.Config[key].(string); ok && strings.TrimSpace(value) != "" {
		return template.HTML(template.HTMLEscapeString(value))
	}
	if field, ok := in.Content.Field(key); ok && strings.TrimSpace(field.Value) != "" {
		if strings.EqualFold(field.Type, "LONG") {
			return in.Markdown(field.Value)
		}
		return template.HTML(template.HTMLEscapeString(field.Value))
	}
	return template.HTML(template.HTMLEscapeString(in.Text(key)))
}

// Markdown renders value, falling back to escaped text when no parser is set
// or rendering fails.
func (in Input) Markdown(value string) template.HTML {
	if in.markdown != nil {
		if out, err := in.markdown.Render(value); err == nil {
			return out
		}
	}
	return template.HTML(template.HTMLEscapeString(value))
}

// Strings returns a string list from the configuration or defaults.
func (in Input) Strings(key string) []string {
	raw, ok := in.Config[key]
	if !ok {
		raw = in.Defaults[key]
	}
	items, _ := raw.([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

// Objects returns a list of string maps from the configuration.
func (in Input) Objects(key string) []map[string]string {
	items, _ := in.Config[key].([]any)
	out := make([]map[string]string, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		row := make(map[string]string, len(obj))
		for k, v := range obj {
			if s, ok := v.(string); ok {
				row[k] = s
			}
		}
		out = append(out, row)
	}
	return out
}

// Buttons returns configured buttons, else the content buttons.
func (in Input) Buttons() []ContentButton {
	if rows := in.Objects("buttons"); len(rows) > 0 {
		out := make([]ContentButton, 0, len(rows))
		for _, row := range rows {
			out = append(out, ContentButton{Label: row["label"], Text: row["text"], URL: row["url"]})
		}
		return out
	}
	return append([]ContentButton(nil), in.Content.Buttons...)
}

// Numbered groups content fields named {name}_{n} into rows ordered by n.
// A row is kept when its first name is present.
func (in Input) Numbered(names ...string) []map[string]ContentField {
	if len(names) == 0 {
		return nil
	}
	rows := map[int]map[string]ContentField{}
	for _, field := range in.Content.Fields {
		for _, name := range names {
			suffix, ok := strings.CutPrefix(field.Key, name+"_")
			if !ok {
				continue
			}
			n, err := strconv.Atoi(suffix)
			if err != nil {
				continue
			}
			if rows[n] == nil {
				rows[n] = map[string]ContentField{}
			}
			rows[n][name] = field
		}
	}
	indexes := make([]int, 0, len(rows))
	for n, row := range rows {
		if _, ok := row[names[0]]; ok {
			indexes = append(indexes, n)
		}
	}
	sort.Ints(indexes)
	out := make([]map[string]ContentField, 0, len(indexes))
	for _, n := range indexes {
		out = append(out, rows[n])
	}
	return out
}

// Animate returns the animation hook attribute, empty in preview.
func (in Input) Animate(effect string) template.HTMLAttr {
	if in.Render.IsPreview || effect == "" {
		return ""
	}
	return template.HTMLAttr(`data-animate="` + template.HTMLEscapeString(effect) + `"`)
}
