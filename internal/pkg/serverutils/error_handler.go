package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"cicd-analytics-be/internal/apperrors"
)

// Error type tags surfaced in the error envelope.
const (
	ErrorTypeTranslation   = "translation_error"
	ErrorTypeExecution     = "execution_error"
	ErrorTypeSummarization = "summarization_error"
	ErrorTypeBadRequest    = "bad_request"
	ErrorTypeInternal      = "internal_error"
)

// ErrorHandlerMiddleware converts errors returned by handlers into the
// structured error envelope. Each failure class gets its own status code so
// callers can distinguish them mechanically:
//
//	translation   → 422 (the question could not be turned into a pipeline)
//	execution     → 500 (the database rejected or failed the pipeline)
//	summarization → 502 (the upstream LLM failed while summarizing)
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var translationErr *apperrors.TranslationError
		if errors.As(err, &translationErr) {
			return ctx.Status(fiber.StatusUnprocessableEntity).
				JSON(ErrorResponse(translationErr.Error(), ErrorTypeTranslation))
		}

		var executionErr *apperrors.ExecutionError
		if errors.As(err, &executionErr) {
			return ctx.Status(fiber.StatusInternalServerError).
				JSON(ErrorResponse(executionErr.Error(), ErrorTypeExecution))
		}

		var summarizationErr *apperrors.SummarizationError
		if errors.As(err, &summarizationErr) {
			return ctx.Status(fiber.StatusBadGateway).
				JSON(ErrorResponse(summarizationErr.Error(), ErrorTypeSummarization))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			errorType := ErrorTypeInternal
			if fiberErr.Code < fiber.StatusInternalServerError {
				errorType = ErrorTypeBadRequest
			}
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message, errorType))
		}

		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse(err.Error(), ErrorTypeInternal))
	}
}
