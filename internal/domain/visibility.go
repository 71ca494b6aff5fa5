package domain

import "errors"

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("admin role required")
)

// CheckVisible reports whether viewer may read a record in the given status.
// Published records are public; anything else needs an admin session.
func CheckVisible(status Status, viewer Viewer) error {
	if status.IsPublished() || viewer.IsAdmin() {
		return nil
	}
	if !viewer.Authenticated {
		return ErrUnauthenticated
	}
	return ErrForbidden
}
