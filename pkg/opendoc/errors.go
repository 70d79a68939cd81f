package opendoc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/benjaminschreck/go-opendoc/pkg/opendoc/format"
)

var (
	// ErrNoDocument is returned when a writer is asked to save a nil document.
	ErrNoDocument = errors.New("no document defined")

	// ErrSectionNotFound is returned by section lookups that miss.
	ErrSectionNotFound = errors.New("section not found")
)

// StructuralError reports invalid document structure or builder usage:
// illegal nesting, duplicate header/footer slots, builder context
// mismatches, duplicate or undefined bookmarks and re-attached elements.
type StructuralError struct {
	Element string
	Message string
}

func (e *StructuralError) Error() string {
	if e.Element != "" {
		return fmt.Sprintf("structural error in %s: %s", e.Element, e.Message)
	}
	return fmt.Sprintf("structural error: %s", e.Message)
}

// NewStructuralError creates a new structural error
func NewStructuralError(element, message string) error {
	return &StructuralError{
		Element: element,
		Message: message,
	}
}

// ValidationError is an enumerated property value outside its allowed set.
type ValidationError = format.ValueError

// SaveError represents an error while writing a package
type SaveError struct {
	Operation string
	Path      string
	Cause     error
}

func (e *SaveError) Error() string {
	if e.Path != "" && e.Cause != nil {
		return fmt.Sprintf("save error during %s of '%s': %v", e.Operation, e.Path, e.Cause)
	} else if e.Path != "" {
		return fmt.Sprintf("save error during %s of '%s'", e.Operation, e.Path)
	} else if e.Cause != nil {
		return fmt.Sprintf("save error during %s: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("save error during %s", e.Operation)
}

func (e *SaveError) Unwrap() error {
	return e.Cause
}

// NewSaveError creates a new save error
func NewSaveError(operation, path string, cause error) error {
	return &SaveError{
		Operation: operation,
		Path:      path,
		Cause:     cause,
	}
}

// ResourceError reports an image source that cannot be decoded or read.
// It is raised lazily, on first inspection or data access.
type ResourceError struct {
	Source string
	Cause  error
}

func (e *ResourceError) Error() string {
	src := e.Source
	if len(src) > 64 {
		src = src[:61] + "..."
	}
	if e.Cause != nil {
		return fmt.Sprintf("resource error for '%s': %v", src, e.Cause)
	}
	return fmt.Sprintf("resource error for '%s'", src)
}

func (e *ResourceError) Unwrap() error {
	return e.Cause
}

// NewResourceError creates a new resource error
func NewResourceError(source string, cause error) error {
	return &ResourceError{
		Source: source,
		Cause:  cause,
	}
}

// MultiError collects multiple errors
type MultiError struct {
	errors []error
}

// NewMultiError creates a new multi-error collector
func NewMultiError() *MultiError {
	return &MultiError{
		errors: make([]error, 0),
	}
}

// Add adds an error to the collection (ignores nil errors)
func (m *MultiError) Add(err error) {
	if err != nil {
		m.errors = append(m.errors, err)
	}
}

// Len returns the number of errors
func (m *MultiError) Len() int {
	return len(m.errors)
}

// Errors returns a copy of the collected errors.
func (m *MultiError) Errors() []error {
	return append([]error(nil), m.errors...)
}

// Err returns the multi-error or nil if empty
func (m *MultiError) Err() error {
	if len(m.errors) == 0 {
		return nil
	}
	if len(m.errors) == 1 {
		return m.errors[0]
	}
	return m
}

func (m *MultiError) Error() string {
	if len(m.errors) == 0 {
		return "no errors"
	}

	if len(m.errors) == 1 {
		return m.errors[0].Error()
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("%d errors occurred:", len(m.errors)))
	for i, err := range m.errors {
		parts = append(parts, fmt.Sprintf("  [%d] %v", i+1, err))
	}
	return strings.Join(parts, "\n")
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (m *MultiError) Unwrap() []error {
	return m.errors
}

// IsStructuralError checks if an error is a structural error
func IsStructuralError(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}

// IsValidationError checks if an error is a property validation error
func IsValidationError(err error) bool {
	return format.IsValueError(err)
}

// IsSaveError checks if an error is a save error
func IsSaveError(err error) bool {
	var se *SaveError
	return errors.As(err, &se)
}

// IsResourceError checks if an error is a resource error
func IsResourceError(err error) bool {
	var re *ResourceError
	return errors.As(err, &re)
}
