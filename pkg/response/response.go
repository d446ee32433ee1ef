package response

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apperrors "teamline/pkg/errors"
)

// Every endpoint answers with the same flat envelope: {"success": true, ...}
// on the happy path, {"success": false, "message": ...} on failure. Payload
// fields sit next to the success flag rather than under a data key so the
// wire shape matches what the web client already consumes.

func Success(c echo.Context, fields map[string]interface{}) error {
	return write(c, http.StatusOK, fields)
}

func Created(c echo.Context, fields map[string]interface{}) error {
	return write(c, http.StatusCreated, fields)
}

func write(c echo.Context, status int, fields map[string]interface{}) error {
	body := map[string]interface{}{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	return c.JSON(status, body)
}

// Error translates internal failures into the envelope. Raw errors never
// cross the API boundary; anything unrecognized collapses to a 500.
func Error(c echo.Context, err error) error {
	var validationErr validator.ValidationErrors
	if errors.As(err, &validationErr) {
		return fail(c, http.StatusBadRequest, validationMessage(validationErr))
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return fail(c, appErr.Status, appErr.Message)
	}

	return fail(c, http.StatusInternalServerError, "An unexpected error occurred")
}

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

func validationMessage(errs validator.ValidationErrors) string {
	for _, err := range errs {
		field := strings.ToLower(err.Field())
		switch err.Tag() {
		case "required":
			return field + " is required"
		case "max":
			return field + " must be at most " + err.Param()
		case "url":
			return field + " must be a valid URL"
		default:
			return field + " is invalid"
		}
	}
	return "Invalid input data"
}
