package serverutils

import (
	"errors"
	"log"

	"ai-survey-be/internal/constant"
	"ai-survey-be/internal/repository/contract"
	"ai-survey-be/internal/service/apperror"
	"ai-survey-be/pkg/proxyclient"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware translates domain errors into HTTP responses.
// Anything unrecognized becomes a 500 with a generic message; details stay
// in the logs.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var validationErr *ValidationError
		var proxyErr *proxyclient.ProxyError
		var backendErr *contract.BackendError

		switch {
		case errors.As(err, &validationErr):
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(validationErr.Error()))

		case errors.Is(err, proxyclient.ErrEmptyMessage),
			errors.Is(err, proxyclient.ErrMessageTooLong):
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(err.Error()))

		case errors.Is(err, apperror.ErrDuplicateCompletedSession):
			return ctx.Status(fiber.StatusConflict).JSON(ErrorResponse(err.Error()))

		case errors.Is(err, apperror.ErrSessionNotActive):
			return ctx.Status(fiber.StatusConflict).JSON(ErrorResponse(err.Error()))

		case errors.Is(err, apperror.ErrSessionNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse(err.Error()))

		case errors.Is(err, apperror.ErrSessionExpired):
			return ctx.Status(fiber.StatusGone).JSON(ErrorResponse(constant.MessageSessionExpired))

		case errors.Is(err, proxyclient.ErrRequestTimeout):
			log.Printf("[ERROR] generate request timed out: %v", err)
			return ctx.Status(fiber.StatusGatewayTimeout).JSON(ErrorResponse(constant.MessageGenericError))

		case errors.As(err, &proxyErr):
			log.Printf("[ERROR] generate endpoint failure: %v", proxyErr)
			return ctx.Status(fiber.StatusBadGateway).JSON(ErrorResponse(constant.MessageGenericError))

		case errors.As(err, &backendErr):
			log.Printf("[ERROR] storage backend failure: %v", backendErr)
			return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(constant.MessageGenericError))

		default:
			log.Printf("[ERROR] unhandled: %v", err)
			return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(constant.MessageGenericError))
		}
	}
}
