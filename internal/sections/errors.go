package sections

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownType is returned when a type id is not registered.
	ErrUnknownType = errors.New("unknown section type")
	// ErrUnknownVariant is returned when a variant is not a member of the enum or not registered.
	ErrUnknownVariant = errors.New("unknown variant")
	// ErrInactiveVariant is returned when a variant is registered but switched off.
	ErrInactiveVariant = errors.New("variant is inactive")
	// ErrLoadFailure is matched by every *LoadError.
	ErrLoadFailure = errors.New("section implementation failed to load")

	errNoImplementation = errors.New("no implementation registered")
	errNilComponent     = errors.New("loader returned no component")
)

// ValidationError reports malformed descriptor or schema input. Errors holds one
// caller-facing message per problem.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Errors) == 0 {
		return "validation failed"
	}
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// LoadError wraps a failure to obtain the implementation for a (variant, mode) pair.
type LoadError struct {
	Variant Variant
	Mode    Mode
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s/%s: %v", e.Variant, e.Mode, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrLoadFailure) match any load error.
func (e *LoadError) Is(target error) bool {
	return target == ErrLoadFailure
}

// FieldError is one itemized property validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SchemaError is returned when a property bag does not satisfy an editor schema.
type SchemaError struct {
	TypeID string
	Errors []FieldError
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return fmt.Sprintf("invalid properties for %s: %s", e.TypeID, strings.Join(parts, "; "))
}
