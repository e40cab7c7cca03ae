package server

import (
	"log/slog"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// parsePagination reads limit and offset; out-of-range values are clamped.
func parsePagination(c *fiber.Ctx) service.Page {
	return service.Page{
		Limit:  c.QueryInt("limit", service.DefaultPageSize),
		Offset: c.QueryInt("offset", 0),
	}.Normalize()
}

// parseBody decodes the request body into dst.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	return nil
}

// fail writes the error envelope, logging errors that are not the caller's fault.
func fail(c *fiber.Ctx, err error) error {
	appErr, ok := models.AsAppError(err)
	if !ok || appErr.Code == models.CodeInternal {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}
	return models.RespondWithError(c, err)
}

func respondOK(c *fiber.Ctx, data any, message string) error {
	return models.Respond(c, fiber.StatusOK, data, message)
}

func respondCreated(c *fiber.Ctx, data any, message string) error {
	return models.Respond(c, fiber.StatusCreated, data, message)
}
