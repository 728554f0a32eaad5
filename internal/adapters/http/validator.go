package http

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct checks payload against its validate tags and returns one
// message per violated field, not just the first.
func ValidateStruct(payload any) map[string]string {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	issues := make(map[string]string)

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			fieldName := strings.ToLower(fieldError.Field())
			switch fieldError.Tag() {
			case "required":
				issues[fieldName] = fmt.Sprintf("The %s field is required.", fieldError.Field())
			case "email":
				issues[fieldName] = fmt.Sprintf("The %s must be a valid email address.", fieldError.Field())
			case "min":
				issues[fieldName] = fmt.Sprintf("The %s must be at least %s characters.", fieldError.Field(), fieldError.Param())
			case "max":
				issues[fieldName] = fmt.Sprintf("The %s may not be longer than %s characters.", fieldError.Field(), fieldError.Param())
			case "oneof":
				issues[fieldName] = fmt.Sprintf("The %s must be one of: %s.", fieldError.Field(), fieldError.Param())
			default:
				issues[fieldName] = fmt.Sprintf("The %s field is invalid.", fieldError.Field())
			}
		}
	}

	return issues
}
