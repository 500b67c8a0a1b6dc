// Package validation configures struct validation to report fields by their
// JSON names.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"cresshoe/internal/model"

	"github.com/go-playground/validator/v10"
)

// New returns a validator that names fields after their json tag.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct validates s and converts field failures into a *model.ValidationError
// listing each failing field path, e.g. "phone" or "lines[0].quantity".
func Struct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		// Namespace is prefixed with the root type name.
		_, path, found := strings.Cut(fe.Namespace(), ".")
		if !found {
			path = fe.Field()
		}
		fields = append(fields, path)
	}
	return &model.ValidationError{Fields: fields}
}
