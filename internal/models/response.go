package models

import (
	"github.com/gofiber/fiber/v2"
)

// Envelope is the shape of every API response.
type Envelope struct {
	Status  int    `json:"status"`
	Data    any    `json:"data"`
	Message string `json:"message"`
	Error   any    `json:"error"`
}

// ErrorDetail is the error member for non-validation failures.
type ErrorDetail struct {
	Code   string `json:"code"`
	Reason string `json:"reason,omitempty"`
}

// Respond writes a successful envelope.
func Respond(c *fiber.Ctx, status int, data any, message string) error {
	return c.Status(status).JSON(Envelope{
		Status:  status,
		Data:    data,
		Message: message,
	})
}

// RespondWithError writes a failure envelope. Non-AppErrors and INTERNAL_ERROR are
// reported without detail.
func RespondWithError(c *fiber.Ctx, err error) error {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = NewInternalError(err)
	}

	status := appErr.Status()
	env := Envelope{Status: status, Message: appErr.Message}

	switch {
	case appErr.Code == CodeInternal:
		env.Message = "Internal server error"
		env.Error = ErrorDetail{Code: CodeInternal}
	case len(appErr.Fields) > 0:
		env.Error = appErr.Fields
	default:
		env.Error = ErrorDetail{Code: appErr.Code, Reason: appErr.Reason}
	}

	return c.Status(status).JSON(env)
}
