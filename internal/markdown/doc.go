// Package markdown renders LONG content fields to HTML with goldmark and
// splits YAML frontmatter from markdown documents used by the static
// fallback store.
package markdown
