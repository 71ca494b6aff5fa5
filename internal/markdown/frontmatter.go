package markdown

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
)

// ParseFrontMatter decodes the YAML frontmatter of source into meta and
// returns the markdown body without delimiters. Documents without
// frontmatter return the whole source as body.
func ParseFrontMatter(source []byte, meta any) ([]byte, error) {
	body, err := frontmatter.Parse(bytes.NewReader(source), meta)
	if err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	return bytes.TrimSpace(body), nil
}
