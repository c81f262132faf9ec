package material

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Use JSON tag names for errors instead of Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var errInvalidDocument = errors.New("document is not valid")

// Validate checks the metadata and the layout invariants before a save.
func (d *Document) Validate() error {
	var fields []FieldError
	if err := validate.Struct(d.Metadata); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			fields = append(fields, FieldError{Field: fe.Field(), Error: fieldMessage(fe)})
		}
	}

	surfaces := 0
	for i, el := range d.elements {
		if el.fullSurface {
			surfaces++
			continue
		}
		if el.Size.Width < MinWidth || el.Size.Height < MinHeight {
			fields = append(fields, FieldError{
				Field: fmt.Sprintf("elements[%d].size", i),
				Error: fmt.Sprintf("must be at least %dx%d", MinWidth, MinHeight),
			})
		}
		if el.Position.X < 0 || el.Position.Y < 0 {
			fields = append(fields, FieldError{
				Field: fmt.Sprintf("elements[%d].position", i),
				Error: "must not be negative",
			})
		}
	}
	if surfaces > 1 {
		fields = append(fields, FieldError{Field: "elements", Error: ErrFullSurfaceTaken.Error()})
	}

	if len(fields) > 0 {
		return NewValidationError(errInvalidDocument, fields...)
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed on %s", fe.Tag())
	}
}
