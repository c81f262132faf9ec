package material

import "github.com/pkg/errors"

var (
	ErrUnknownKind      = errors.New("unknown element kind")
	ErrFullSurfaceTaken = errors.New("document already has a full-surface element")
)

// FieldError is used to indicate an error with a specific document field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is returned by Validate with one entry per offending field.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

func (err ValidationError) Unwrap() error {
	return err.Err
}
