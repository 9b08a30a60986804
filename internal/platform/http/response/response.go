// Package response renders API errors as JSON and converts binding failures into apperr errors.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"recipe_backend/internal/shared/apperr"
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

var registerOnce sync.Once

// RegisterValidator makes gin's validator report JSON field names.
func RegisterValidator() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "" {
				return fld.Name
			}
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// StatusFor maps an error to its HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err with the matching status code and aborts the request.
// Unclassified errors are logged and hidden behind a generic message.
func Error(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err, "method", c.Request.Method, "path", c.FullPath())
		c.AbortWithStatusJSON(status, ErrorBody{Error: "internal server error"})
		return
	}
	c.AbortWithStatusJSON(status, ErrorBody{Error: err.Error(), Details: apperr.Details(err)})
}

// BindPatch binds a PATCH body. An empty body is an empty patch.
func BindPatch(c *gin.Context, obj any) error {
	err := c.ShouldBindJSON(obj)
	if errors.Is(err, io.EOF) {
		return binding.Validator.ValidateStruct(obj)
	}
	return err
}

// BindError converts a ShouldBind* failure into a validation error.
func BindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, e := range verrs {
			fields[e.Field()] = friendlyMessage(e)
		}
		return apperr.Validation("invalid request", fields)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperr.FieldValidation(typeErr.Field, fmt.Sprintf("must be of type %s", typeErr.Type))
	}
	if errors.Is(err, io.EOF) {
		return apperr.Validation("request body is empty", nil)
	}

	var fieldErr *apperr.Error
	if errors.As(err, &fieldErr) {
		return fieldErr
	}
	return apperr.Validation("malformed request body", nil)
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("ensure this field has at least %s characters", e.Param())
		}
		return "ensure this value is greater than or equal to " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("ensure this field has no more than %s characters", e.Param())
		}
		return "ensure this value is less than or equal to " + e.Param()
	case "gte":
		return "ensure this value is greater than or equal to " + e.Param()
	case "url":
		return "enter a valid URL"
	default:
		return "is invalid"
	}
}
