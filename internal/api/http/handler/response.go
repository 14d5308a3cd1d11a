package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/willsigmon/boppa/internal/schema"
)

const (
	MsgNotFound = "Not found"
	MsgInternal = "An unexpected error occurred while processing your request"
)

// Response is the envelope every API endpoint answers with.
type Response struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    any                 `json:"data,omitempty"`
	Errors  []schema.FieldError `json:"errors,omitempty"`
}

func ok(c fiber.Ctx, data any) error {
	return c.JSON(Response{Success: true, Data: data})
}

func created(c fiber.Ctx, msg string, data any) error {
	return c.Status(fiber.StatusCreated).JSON(Response{Success: true, Message: msg, Data: data})
}

// Fail writes an unsuccessful envelope carrying only msg. Middleware uses it
// so rejections share the API's response shape.
func Fail(c fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(Response{Message: msg})
}

func badRequest(c fiber.Ctx, msg string) error {
	return Fail(c, fiber.StatusBadRequest, msg)
}

func validationFailed(c fiber.Ctx, verr *schema.ValidationError) error {
	return c.Status(fiber.StatusBadRequest).JSON(Response{
		Message: "Validation error",
		Errors:  verr.Fields,
	})
}

func notFound(c fiber.Ctx, msg string) error {
	return Fail(c, fiber.StatusNotFound, msg)
}

func internalError(c fiber.Ctx, msg string) error {
	return Fail(c, fiber.StatusInternalServerError, msg)
}

// NotFound answers API paths that match no route.
func NotFound(c fiber.Ctx) error {
	return notFound(c, MsgNotFound)
}

// ErrorHandler renders errors that escape handlers, such as unmatched routes
// from the router or oversized bodies, in the API envelope.
func ErrorHandler(c fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	msg := MsgInternal

	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
		switch {
		case status == fiber.StatusNotFound:
			msg = MsgNotFound
		case status < fiber.StatusInternalServerError:
			msg = fe.Message
		}
	}

	if status >= fiber.StatusInternalServerError {
		slog.ErrorContext(c.Context(), "unhandled request error",
			"method", c.Method(),
			"path", c.Path(),
			"err", err,
		)
	}

	return Fail(c, status, msg)
}
