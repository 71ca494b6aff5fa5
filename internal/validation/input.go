package validation

import (
	"errors"
	"sort"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
)

// ErrInvalidInput marks request payloads rejected by field rules.
var ErrInvalidInput = errors.New("invalid input")

// InputError carries field level failures produced by ozzo-validation.
type InputError struct {
	Message string
	Fields  ozzo.Errors
}

func (e *InputError) Error() string {
	if e.Message == "" {
		return ErrInvalidInput.Error()
	}
	return e.Message
}

func (e *InputError) Unwrap() []error {
	return []error{ErrInvalidInput, e.Fields}
}

// WrapInput turns the result of ozzo.ValidateStruct (or a hand built
// ozzo.Errors) into a validation category error with a text code.
func WrapInput(err error, message, code string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	inputErr := &InputError{Message: message}
	var fields ozzo.Errors
	if errors.As(err, &fields) {
		inputErr.Fields = fields
	} else {
		inputErr.Fields = ozzo.Errors{"": err}
	}
	return goerrors.Wrap(inputErr, goerrors.CategoryValidation, message).WithTextCode(code)
}

// InputIssues flattens field errors into sorted issues.
func InputIssues(err error) []ValidationIssue {
	var inputErr *InputError
	if !errors.As(err, &inputErr) || inputErr == nil {
		return nil
	}
	keys := make([]string, 0, len(inputErr.Fields))
	for key := range inputErr.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	issues := make([]ValidationIssue, 0, len(keys))
	for _, key := range keys {
		fieldErr := inputErr.Fields[key]
		if fieldErr == nil {
			continue
		}
		issues = append(issues, ValidationIssue{Location: key, Message: fieldErr.Error()})
	}
	return issues
}

// IsInputError reports whether err was produced by WrapInput.
func IsInputError(err error) bool {
	if err == nil {
		return false
	}
	if goerrors.IsCategory(err, goerrors.CategoryValidation) {
		return true
	}
	return errors.Is(err, ErrInvalidInput)
}
