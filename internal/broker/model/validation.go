package model

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/G-Research/genie/internal/common/genieerrors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Unlike "required", rejects strings made only of whitespace.
	if err := v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}); err != nil {
		panic(err)
	}
	return v
}

// validateEntity runs struct validation on e and folds any field failures, together with the extra errors
// supplied by the caller, into a single multierror of *genieerrors.ErrInvalidArgument.
func validateEntity(e Entity, extra ...error) error {
	var result *multierror.Error
	if err := validate.Struct(e); err != nil {
		var fieldErrors validator.ValidationErrors
		if !errors.As(err, &fieldErrors) {
			return errors.WithStack(err)
		}
		for _, fieldError := range fieldErrors {
			result = multierror.Append(result, &genieerrors.ErrInvalidArgument{
				Name:    fieldError.Field(),
				Value:   fieldError.Value(),
				Message: fmt.Sprintf("%s %s must not be blank", e.Kind(), fieldError.Field()),
			})
		}
	}
	for _, err := range extra {
		if err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func invalidStatus(kind Kind, status string) error {
	return &genieerrors.ErrInvalidArgument{
		Name:    "status",
		Value:   status,
		Message: fmt.Sprintf("not a valid %s status", kind),
	}
}
