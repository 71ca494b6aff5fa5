package content

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-showcase/internal/domain"
)

var (
	ErrContentExists    = errors.New("content: a record already exists for this page, section and language")
	ErrPageRequired     = errors.New("content: page slug is required")
	ErrSectionRequired  = errors.New("content: section type is required")
	ErrLanguageRequired = errors.New("content: language is required")
	ErrRecordIDRequired = errors.New("content: record id required")

	ErrUnauthenticated = domain.ErrUnauthenticated
	ErrForbidden       = domain.ErrForbidden
)

// NotFoundError represents missing records from repository lookups.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
