// Package validation checks request structs against their validate tags
// before any domain logic runs.
package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/estate/backend/internal/domain/shared"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct validates a request struct. Failures come back as INVALID_INPUT
// domain errors naming the first offending field.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return shared.ErrInvalidInput
	}

	first := fieldErrs[0]
	return shared.NewDomainError("INVALID_INPUT",
		fmt.Sprintf("field %s failed validation on %s", first.Field(), first.Tag()))
}
