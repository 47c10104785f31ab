package validator

import (
	"errors"
	"fmt"
	"strings"

	"busly/pkg/logger"
	"busly/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// RiderValidator checks the contact and payment details submitted with a
// commit. Boarding points come from configuration, so the check is a custom
// validation closed over the allowed list rather than a oneof tag.
type RiderValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewRiderValidator(boardingPoints []string, log *logger.Logger) *RiderValidator {
	allowed := make(map[string]struct{}, len(boardingPoints))
	for _, bp := range boardingPoints {
		allowed[bp] = struct{}{}
	}

	v := validator.New()
	err := v.RegisterValidation("boarding_point", func(fl validator.FieldLevel) bool {
		_, ok := allowed[fl.Field().String()]
		return ok
	})
	if err != nil {
		log.Fatal("Failed to register 'boarding_point' validator",
			"error", err,
		)
	}

	return &RiderValidator{
		validate: v,
		logger:   log,
	}
}

func (v *RiderValidator) Validate(rider *model.RiderDetails) error {
	if err := v.validate.Struct(rider); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return nil
}

func (v *RiderValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "boarding_point":
			message = fmt.Sprintf("%s must be a configured boarding point", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
