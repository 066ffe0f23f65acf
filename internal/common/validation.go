package common

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/joseph-ayodele/free-ocr/constants"
)

// ValidationError is one failed rule on one field.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
}

// ValidationRule checks a single value; nil means the value passes.
type ValidationRule func(fieldName string, value any) *ValidationError

// Validator accumulates rule failures across fields so a request reports all of them at once.
type Validator struct {
	errors []ValidationError
}

func NewValidator() *Validator {
	return &Validator{}
}

// Field applies rules to value in order, keeping every failure.
func (v *Validator) Field(fieldName string, value any, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if fe := rule(fieldName, value); fe != nil {
			v.errors = append(v.errors, *fe)
		}
	}
	return v
}

func (v *Validator) HasErrors() bool { return len(v.errors) > 0 }

func (v *Validator) Errors() []ValidationError { return v.errors }

// ErrorMessage joins all failures with "; ".
func (v *Validator) ErrorMessage() string {
	msgs := make([]string, len(v.errors))
	for i, fe := range v.errors {
		msgs[i] = fe.Error()
	}
	return strings.Join(msgs, "; ")
}

// Required rejects nil, blank strings and empty byte slices.
func Required(fieldName string, value any) *ValidationError {
	missing := value == nil
	switch v := value.(type) {
	case string:
		missing = strings.TrimSpace(v) == ""
	case []byte:
		missing = len(v) == 0
	}
	if missing {
		return &ValidationError{Field: fieldName, Value: value, Message: "is required"}
	}
	return nil
}

// Base64 requires standard base64. Callers strip any data-URL prefix first.
func Base64(fieldName string, value any) *ValidationError {
	str, ok := value.(string)
	if !ok {
		return &ValidationError{Field: fieldName, Message: "must be a string"}
	}
	if _, err := base64.StdEncoding.DecodeString(str); err != nil {
		return &ValidationError{Field: fieldName, Message: "must be valid base64"}
	}
	return nil
}

// KnownMode requires one of the recognized mode tags.
func KnownMode(fieldName string, value any) *ValidationError {
	str, ok := value.(string)
	if !ok {
		return &ValidationError{Field: fieldName, Value: value, Message: "must be a string"}
	}
	if _, err := constants.ParseMode(str); err != nil {
		return &ValidationError{
			Field:   fieldName,
			Value:   value,
			Message: "must be one of " + strings.Join(constants.ModesAsStringSlice(), ", "),
		}
	}
	return nil
}

// ValidateAndReturnError returns an INVALID_INPUT AppError carrying every failure, or nil.
func ValidateAndReturnError(validator *Validator) error {
	if validator.HasErrors() {
		return NewAppError("INVALID_INPUT", validator.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}
