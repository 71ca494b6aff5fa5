package media

import (
	"errors"
	"fmt"
)

var (
	ErrFileRequired        = errors.New("media: file is required")
	ErrExtensionNotAllowed = errors.New("media: file extension not allowed")
	ErrFileTooLarge        = errors.New("media: file exceeds the upload size limit")
	ErrImageInUse          = errors.New("media: image is still being used and cannot be deleted")
	ErrImageIDRequired     = errors.New("media: image id required")
	ErrRemoteURLInvalid    = errors.New("media: remote url must be an absolute http(s) url")
	ErrRemoteFetchFailed   = errors.New("media: remote image could not be fetched")
	ErrStoreUnavailable    = errors.New("media: object store not configured")
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
