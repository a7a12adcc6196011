package rest

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/mindbloging/mindbloging/internal/common"
	"github.com/mindbloging/mindbloging/internal/logging"
)

const (
	msgNoToken       = "No token, authorization denied"
	msgInvalidToken  = "Token is not valid"
	msgServerError   = "Server error"
	msgRouteNotFound = "API route not found"
	msgBadBody       = "Invalid request body"

	msgTooManyRequests = "Too many requests, please try again later"
)

var (
	errNoToken      = common.Detail(common.ErrorUnauthorized, msgNoToken)
	errInvalidToken = common.Detail(common.ErrInvalidToken, msgInvalidToken)
	errBadBody      = common.Detail(common.ErrorValidation, msgBadBody)
)

// ErrorHandler writes every handler error as {"message": ...} with the
// status of the sentinel it wraps. Unknown errors become a 500 whose text is
// logged and never sent.
func ErrorHandler(l logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, msg := statusFor(err)
		if status >= fiber.StatusInternalServerError {
			l.Error(c.UserContext(), "request failed", "method", c.Method(), "path", c.Path(), "error", err)
		}
		return c.Status(status).JSON(messageResponse{Message: msg})
	}
}

func statusFor(err error) (int, string) {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		if fe.Code == fiber.StatusNotFound {
			return fe.Code, msgRouteNotFound
		}
		return fe.Code, fe.Message
	case errors.Is(err, common.ErrorValidation):
		return fiber.StatusBadRequest, common.PublicMessage(err, msgBadBody)
	case errors.Is(err, common.ErrDuplicateIdentity):
		return fiber.StatusBadRequest, common.PublicMessage(err, "User already exists")
	case errors.Is(err, common.ErrInvalidCredentials):
		return fiber.StatusBadRequest, common.PublicMessage(err, "Invalid credentials")
	case errors.Is(err, common.ErrUpstreamIdentity):
		return fiber.StatusBadRequest, common.PublicMessage(err, "Google authentication failed")
	case errors.Is(err, common.ErrorUnauthorized):
		return fiber.StatusUnauthorized, common.PublicMessage(err, msgInvalidToken)
	case errors.Is(err, common.ErrForbidden):
		return fiber.StatusForbidden, common.PublicMessage(err, "Forbidden")
	case errors.Is(err, common.ErrorNotFound):
		return fiber.StatusNotFound, common.PublicMessage(err, "Not found")
	}
	return fiber.StatusInternalServerError, msgServerError
}
