package validator

import (
	"errors"
	"fmt"
	"strings"

	"parkease/pkg/logger"
	"parkease/pkg/model"

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

type BookingValidator struct {
	validate           *validator.Validate
	logger             *logger.Logger
	maxDurationMinutes int
}

func NewBookingValidator(log *logger.Logger, maxDurationMinutes int) *BookingValidator {
	return &BookingValidator{
		validate:           validator.New(),
		logger:             log,
		maxDurationMinutes: maxDurationMinutes,
	}
}

func (v *BookingValidator) ValidateReserve(req *model.ReserveRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}

	if req.DurationMinutes > v.maxDurationMinutes {
		return ValidationErrors{
			ValidationError{
				Field:   "DurationMinutes",
				Message: fmt.Sprintf("duration_minutes must be at most %d", v.maxDurationMinutes),
			},
		}
	}

	return nil
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
