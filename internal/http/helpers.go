package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/goliatone/go-showcase/internal/content"
	"github.com/goliatone/go-showcase/internal/domain"
	"github.com/goliatone/go-showcase/internal/media"
	"github.com/goliatone/go-showcase/internal/pages"
	"github.com/goliatone/go-showcase/internal/products"
	"github.com/goliatone/go-showcase/internal/resolver"
	"github.com/goliatone/go-showcase/internal/technologies"
	"github.com/goliatone/go-showcase/internal/users"
	"github.com/goliatone/go-showcase/internal/validation"
	"github.com/google/uuid"
)

type errorResponse struct {
	Error  string                       `json:"error"`
	Code   string                       `json:"code"`
	Issues []validation.ValidationIssue `json:"issues,omitempty"`
}

type listResponse[T any] struct {
	Data []T `json:"data"`
}

// requestError is a malformed request detected by a handler.
type requestError struct {
	message string
}

func (e *requestError) Error() string {
	return e.message
}

func badRequest(message string) error {
	return &requestError{message: message}
}

func joinPath(base, suffix string) string {
	trimmedBase := strings.TrimSpace(base)
	trimmedSuffix := strings.TrimSpace(suffix)
	if trimmedBase == "" {
		if trimmedSuffix == "" {
			return "/"
		}
		return "/" + strings.Trim(trimmedSuffix, "/")
	}
	baseClean := "/" + strings.Trim(trimmedBase, "/")
	if trimmedSuffix == "" {
		return baseClean
	}
	return baseClean + "/" + strings.Trim(trimmedSuffix, "/")
}

func decodeJSON(r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return badRequest("Request body is required")
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("Request body is required")
		}
		return badRequest("Request body is not valid JSON")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeList[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, listResponse[T]{Data: items})
}

// mapError translates service errors into a status and response body.
// Anything unrecognised is reported as a generic internal error.
func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "Internal server error", Code: "internal_error"}
	}

	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return http.StatusBadRequest, errorResponse{Error: reqErr.message, Code: "bad_request"}
	}

	if validation.IsInputError(err) {
		return http.StatusBadRequest, errorResponse{
			Error:  "Validation failed",
			Code:   "validation_failed",
			Issues: validation.InputIssues(err),
		}
	}

	if errors.Is(err, validation.ErrSchemaValidation) {
		return http.StatusUnprocessableEntity, errorResponse{
			Error:  "Schema validation failed",
			Code:   "schema_validation_failed",
			Issues: validation.Issues(err),
		}
	}

	if errors.Is(err, users.ErrInvalidCredentials) {
		return http.StatusUnauthorized, errorResponse{Error: "Invalid email or password", Code: "invalid_credentials"}
	}
	if errors.Is(err, domain.ErrUnauthenticated) {
		return http.StatusUnauthorized, errorResponse{Error: "Authentication required", Code: "unauthenticated"}
	}
	if errors.Is(err, domain.ErrForbidden) {
		return http.StatusForbidden, errorResponse{Error: "You do not have permission to perform this action", Code: "forbidden"}
	}
	if errors.Is(err, users.ErrSelfRoleChange) ||
		errors.Is(err, users.ErrSuperAdminRequired) ||
		errors.Is(err, users.ErrSelfDelete) {
		return http.StatusForbidden, errorResponse{Error: humanize(err), Code: "forbidden"}
	}

	if isNotFound(err) {
		return http.StatusNotFound, errorResponse{Error: "Not found", Code: "not_found"}
	}

	switch {
	case errors.Is(err, products.ErrSlugExists), errors.Is(err, pages.ErrSlugExists):
		return http.StatusConflict, errorResponse{Error: "Slug already exists", Code: "slug_exists"}
	case errors.Is(err, media.ErrImageInUse):
		return http.StatusConflict, errorResponse{Error: "Image is still being used and cannot be deleted", Code: "image_in_use"}
	case errors.Is(err, content.ErrContentExists),
		errors.Is(err, technologies.ErrNameExists),
		errors.Is(err, users.ErrEmailExists):
		return http.StatusConflict, errorResponse{Error: humanize(err), Code: "conflict"}
	}

	if isBadRequest(err) {
		return http.StatusBadRequest, errorResponse{Error: humanize(err), Code: "bad_request"}
	}

	return http.StatusInternalServerError, errorResponse{Error: "Internal server error", Code: "internal_error"}
}

func isNotFound(err error) bool {
	return content.IsNotFound(err) ||
		products.IsNotFound(err) ||
		media.IsNotFound(err) ||
		technologies.IsNotFound(err) ||
		users.IsNotFound(err) ||
		pages.IsNotFound(err) ||
		errors.Is(err, resolver.ErrNotFound)
}

var badRequestErrors = []error{
	media.ErrFileRequired,
	media.ErrExtensionNotAllowed,
	media.ErrFileTooLarge,
	media.ErrImageIDRequired,
	media.ErrRemoteURLInvalid,
	media.ErrRemoteFetchFailed,
	products.ErrSlugRequired,
	products.ErrSlugInvalid,
	products.ErrProductIDRequired,
	content.ErrPageRequired,
	content.ErrSectionRequired,
	content.ErrLanguageRequired,
	content.ErrRecordIDRequired,
	technologies.ErrNameRequired,
	technologies.ErrIDRequired,
	users.ErrEmailRequired,
	users.ErrPasswordTooShort,
	users.ErrRoleInvalid,
	users.ErrUserIDRequired,
	pages.ErrPageIDRequired,
	resolver.ErrUnsupportedLocale,
	resolver.ErrPageRequired,
	resolver.ErrSectionRequired,
}

func isBadRequest(err error) bool {
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// humanize drops the package prefix of a sentinel message and capitalises
// the remainder.
func humanize(err error) string {
	message := err.Error()
	if prefix, rest, ok := strings.Cut(message, ": "); ok && !strings.ContainsAny(prefix, " .") {
		message = rest
	}
	r, size := utf8.DecodeRuneInString(message)
	if r == utf8.RuneError {
		return message
	}
	return string(unicode.ToUpper(r)) + message[size:]
}

func parseUUID(value string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return uuid.Nil, badRequest("Id is required")
	}
	parsed, err := uuid.Parse(trimmed)
	if err != nil {
		return uuid.Nil, badRequest("Id is not a valid UUID")
	}
	return parsed, nil
}

// safeCallback accepts only local absolute paths.
func safeCallback(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" || !strings.HasPrefix(value, "/") || strings.HasPrefix(value, "//") || strings.Contains(value, "\\") {
		return fallback
	}
	return value
}
