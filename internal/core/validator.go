package core

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"seasidebeacon/internal/beaches"
	"seasidebeacon/internal/types"
)

// ValidationError describes a single field-level validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult collects the outcome of a struct validation pass.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []string
}

// IsValid reports whether the validation passed. Warnings alone do not
// make a result invalid.
func (r ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// Validator wraps go-playground/validator and registers domain-specific rules.
type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewValidator creates a new Validator and registers custom validation tags.
func NewValidator(logger *slog.Logger) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// beach_key: the value must name a beach this service covers.
	_ = v.RegisterValidation("beach_key", func(fl validator.FieldLevel) bool {
		key := fl.Field().String()
		if key == "" {
			// Leave presence checks to the required tag.
			return true
		}
		_, err := beaches.Lookup(key)
		return err == nil
	})

	return &Validator{
		validate: v,
		logger:   logger,
	}
}

// ValidateStruct validates s against its struct tags. On failure it returns
// a *types.AppError whose code reflects the first failing rule and whose
// details carry the full list of field errors under "validation_errors".
func (v *Validator) ValidateStruct(s any) error {
	result := v.ValidateStructWithWarnings(s)
	if result.IsValid() {
		return nil
	}

	first := result.Errors[0]
	return types.NewAppErrorWithDetails(
		types.ErrorCode(first.Code),
		first.Message,
		nil,
		map[string]any{"validation_errors": result.Errors},
	)
}

// ValidateStructWithWarnings validates s and returns the full result instead
// of collapsing it into an error.
func (v *Validator) ValidateStructWithWarnings(s any) ValidationResult {
	var result ValidationResult

	err := v.validate.Struct(s)
	if err == nil {
		return result
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		// InvalidValidationError: the caller passed something unvalidatable.
		v.logger.Error("validator received invalid input", "error", err)
		result.Errors = append(result.Errors, ValidationError{
			Field:   "",
			Code:    string(types.ErrCodeInternalUnexpected),
			Message: "request could not be validated",
		})
		return result
	}

	for _, fe := range errs {
		result.Errors = append(result.Errors, ValidationError{
			Field:   strings.ToLower(fe.Field()),
			Code:    tagToErrorCode(fe.Tag()),
			Message: messageForTag(fe),
		})
	}
	return result
}

// tagToErrorCode maps a validator tag to the application error code used in
// API responses.
func tagToErrorCode(tag string) string {
	switch tag {
	case "required":
		return string(types.ErrCodeValidationMissingField)
	case "email":
		return string(types.ErrCodeValidationInvalidEmail)
	case "beach_key":
		return string(types.ErrCodeValidationInvalidBeach)
	default:
		return "validation_" + tag
	}
}

func messageForTag(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "beach_key":
		return fmt.Sprintf("%s must name a supported beach", field)
	default:
		return fmt.Sprintf("%s failed validation rule %q", field, fe.Tag())
	}
}
