package domain

import "strings"

// Status represents the publication lifecycle shared by content records,
// products and builder pages.
type Status string

const (
	// StatusDraft marks records that are only visible to admins.
	StatusDraft Status = "DRAFT"
	// StatusPublished marks records visible to anonymous readers.
	StatusPublished Status = "PUBLISHED"
)

// ParseStatus normalizes a status string. Empty input maps to StatusDraft.
func ParseStatus(value string) (Status, bool) {
	switch Status(strings.ToUpper(strings.TrimSpace(value))) {
	case "", StatusDraft:
		return StatusDraft, true
	case StatusPublished:
		return StatusPublished, true
	default:
		return "", false
	}
}

// IsPublished reports whether the status is visible to anonymous readers.
func (s Status) IsPublished() bool {
	return s == StatusPublished
}

// FieldType discriminates short text fields from long (markdown) fields.
type FieldType string

const (
	FieldShort FieldType = "SHORT"
	FieldLong  FieldType = "LONG"
)

// ParseFieldType normalizes a field type. Empty input maps to FieldShort.
func ParseFieldType(value string) (FieldType, bool) {
	switch FieldType(strings.ToUpper(strings.TrimSpace(value))) {
	case "", FieldShort:
		return FieldShort, true
	case FieldLong:
		return FieldLong, true
	default:
		return "", false
	}
}
