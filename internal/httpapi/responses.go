// Package httpapi holds the fiber controllers of the backend services:
// request payload validation, calls into the domain services and the
// mapping from typed failures to HTTP responses.
package httpapi

import (
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// respondError maps a typed failure onto an HTTP response. Validation
// libraries and unknown errors fall back to 400/500 respectively.
func respondError(c *fiber.Ctx, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "an unexpected server error occurred").
			WithCode(goerrors.CodeInternal)
	}

	status := richErr.Code
	if status == 0 {
		status = statusFromCategory(richErr.Category)
	}

	label := richErr.TextCode
	if label == "" {
		label = "ERROR"
	}

	return c.Status(status).JSON(errorBody{
		Error:   label,
		Message: richErr.Message,
	})
}

func statusFromCategory(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return fiber.StatusUnauthorized
	case goerrors.CategoryConflict:
		return fiber.StatusConflict
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return fiber.StatusBadRequest
	case goerrors.CategoryNotFound:
		return fiber.StatusNotFound
	case goerrors.CategoryRateLimit:
		return fiber.StatusLocked
	default:
		return fiber.StatusInternalServerError
	}
}

// respondValidation converts an ozzo validation error into a 400 body.
func respondValidation(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(errorBody{
		Error:   "VALIDATION_FAILED",
		Message: err.Error(),
	})
}
