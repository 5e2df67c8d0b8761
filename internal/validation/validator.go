// Package validation turns request binding failures into field-level errors.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/pageza/recipe-app/backend/internal/apperr"
)

var setupOnce sync.Once

// Setup makes gin's validator report JSON tag names, so field errors use the
// names clients send.
func Setup() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonName)
	})
}

func jsonName(fld reflect.StructField) string {
	name := fld.Tag.Get("json")
	if name == "" {
		name = fld.Tag.Get("form")
	}
	if name == "" || name == "-" {
		return fld.Name
	}
	if i := strings.IndexByte(name, ','); i >= 0 {
		name = name[:i]
	}
	return name
}

// FromBindError converts the error returned by gin's ShouldBind* into a
// validation error with a field map.
func FromBindError(err error) *apperr.Error {
	var (
		validationErrs validator.ValidationErrors
		typeErr        *json.UnmarshalTypeError
		syntaxErr      *json.SyntaxError
	)

	switch {
	case errors.As(err, &validationErrs):
		fields := make(apperr.Fields, len(validationErrs))
		for _, e := range validationErrs {
			fields[e.Field()] = friendlyMessage(e)
		}
		return apperr.Validation("validation failed", fields)
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = apperr.NonFieldErrors
		}
		return apperr.FieldError(field, fmt.Sprintf("must be of type %s", typeErr.Type))
	case errors.As(err, &syntaxErr):
		return apperr.FieldError(apperr.NonFieldErrors, "malformed JSON body")
	case errors.Is(err, io.EOF):
		return apperr.FieldError(apperr.NonFieldErrors, "request body is required")
	default:
		return apperr.FieldError(apperr.NonFieldErrors, err.Error())
	}
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "url":
		return "must be a valid URL"
	case "gte":
		return "must be greater than or equal to " + e.Param()
	default:
		return "is invalid"
	}
}
