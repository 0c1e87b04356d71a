package handler

import (
	"errors"

	"go-inventory-tracker/internal/apperr"
	"go-inventory-tracker/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// FormError carries the submitted input so the client can redisplay it.
type FormError struct {
	Err  error
	Form interface{}
}

func (e *FormError) Error() string { return e.Err.Error() }
func (e *FormError) Unwrap() error { return e.Err }

func withForm(err error, form interface{}) error {
	if err == nil {
		return nil
	}
	return &FormError{Err: err, Form: form}
}

var errBadBody = fiber.NewError(fiber.StatusBadRequest, "Invalid request body")

// ErrorHandler renders every error kind as a response. Only unexpected
// errors are logged.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		body := fiber.Map{"error": err.Error()}
		var fe *FormError
		if errors.As(err, &fe) && fe.Form != nil {
			body["form"] = fe.Form
		}

		var (
			fiberErr *fiber.Error
			valErr   *apperr.ValidationError
			stockErr *apperr.InsufficientStockError
		)
		status := fiber.StatusInternalServerError
		switch {
		case errors.As(err, &fiberErr):
			status = fiberErr.Code
		case errors.As(err, &valErr):
			status = fiber.StatusUnprocessableEntity
			body["field"] = valErr.Field
			body["message"] = valErr.Message
		case errors.As(err, &stockErr):
			status = fiber.StatusConflict
			body["available"] = stockErr.Available
			body["requested"] = stockErr.Requested
		case errors.Is(err, apperr.ErrNotFound):
			status = fiber.StatusNotFound
		case errors.Is(err, apperr.ErrInvalidCredentials):
			status = fiber.StatusUnauthorized
		default:
			log.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
			body["error"] = "Internal Server Error"
		}

		return c.Status(status).JSON(body)
	}
}

// parseID treats a malformed id like a missing record.
func parseID(c *fiber.Ctx, entity string) (uuid.UUID, error) {
	raw := c.Params("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.NotFound(entity, raw)
	}
	return id, nil
}
