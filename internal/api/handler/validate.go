package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fleetdispatch/fleetdispatch/internal/api/models"
	"github.com/fleetdispatch/fleetdispatch/internal/api/response"
)

// validate is the shared request validator. Struct tags on the API
// models drive the rules.
var validate = validator.New()

// checkRequest validates a decoded request body and writes a 400
// Problem response when it fails. Returns true when the request is valid.
func checkRequest(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	err := validate.Struct(req)
	if err == nil {
		return true
	}

	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		response.BadRequest(w, r, "validation error", nil)
		return false
	}

	fieldErrors := make([]models.FieldError, 0, len(invalid))
	for _, fe := range invalid {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field:   fieldName(fe),
			Message: validationMessage(fe),
			Code:    fe.Tag(),
		})
	}

	response.BadRequest(w, r, "validation error", fieldErrors)
	return false
}

// fieldName lowercases the first letter of the struct field so error
// fields match the JSON casing.
func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}
