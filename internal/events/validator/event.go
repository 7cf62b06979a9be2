package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"capirelay/pkg/logger"
	"capirelay/pkg/model"

	"github.com/go-playground/validator/v10"
)

const (
	tagIP  = "ip"
	tagFBP = "fbp"
)

var reFBP = regexp.MustCompile(`^fb\.1\.\d+\.\d+$`)

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

// EventValidator checks the structural contract of a RawEvent and provides the
// single-field format checks used while sanitizing.
type EventValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewEventValidator(log *logger.Logger) *EventValidator {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	if err := v.RegisterValidation(tagFBP, validateFBP); err != nil {
		log.Fatal("Failed to register 'fbp' validator", "error", err)
	}

	log.Debug("Event validator initialized successfully")

	return &EventValidator{
		validate: v,
		logger:   log,
	}
}

func validateFBP(fl validator.FieldLevel) bool {
	return reFBP.MatchString(fl.Field().String())
}

// IsValidIP accepts textual IPv4 and IPv6 addresses. Callers treat "" as absent
// and should not call this for it.
func (v *EventValidator) IsValidIP(address string) bool {
	return v.validate.Var(address, tagIP) == nil
}

// IsValidFBP reports whether value is a browser id cookie of the form fb.1.<digits>.<digits>.
func (v *EventValidator) IsValidFBP(value string) bool {
	return v.validate.Var(value, tagFBP) == nil
}

func (v *EventValidator) Validate(ev *model.RawEvent) error {
	if err := v.validate.Struct(ev); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *EventValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
