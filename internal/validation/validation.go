// Package validation configures the struct validator shared by the stores.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// New returns a validator that reports fields by their JSON names, falling
// back to mapstructure names for config structs.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"json", "mapstructure"} {
			name, _, _ := strings.Cut(fld.Tag.Get(key), ",")
			switch name {
			case "-":
				return ""
			case "":
				continue
			}
			return name
		}
		return fld.Name
	})
	return v
}

// Fields maps each failed field of err to its tag, keyed by the JSON path
// below the top-level struct, e.g. "multipliers.low". It returns nil when err
// carries no validation errors.
func Fields(err error) map[string]validator.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	fields := make(map[string]validator.FieldError, len(verrs))
	for _, fe := range verrs {
		fields[Path(fe)] = fe
	}
	return fields
}

// Path is the JSON path of fe without the top-level struct name.
func Path(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}
