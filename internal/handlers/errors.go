package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/apperrors"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/dto"
	"github.com/gin-gonic/gin"
)

// statusFor maps a service error onto the HTTP status returned to the client.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrCompensationFailure):
		return http.StatusInternalServerError
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrInsufficientBalance),
		errors.Is(err, apperrors.ErrLimitExceeded),
		errors.Is(err, apperrors.ErrAccountInactive),
		errors.Is(err, apperrors.ErrRuleLimitExceeded):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrAccountBlocked):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrNotFound),
		errors.Is(err, apperrors.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrNotCompleted),
		errors.Is(err, apperrors.ErrAlreadyReversed),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code >= http.StatusBadRequest {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// respondError writes the failure body. Client errors carry the error text,
// server errors only fallbackMsg. txn is attached when a ledger row exists.
func respondError(c *gin.Context, logger *slog.Logger, err error, fallbackMsg string, txn *domain.Transaction) {
	status := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		logger.Error(fallbackMsg, slog.String("error", err.Error()))
		msg = fallbackMsg
	} else {
		logger.Warn(fallbackMsg, slog.String("error", err.Error()), slog.Int("status", status))
	}
	c.JSON(status, dto.NewErrorResponse(msg, txn))
}

// respondBindError reports a request that failed binding or validation.
func respondBindError(c *gin.Context, logger *slog.Logger, what string, err error) {
	logger.Warn("Failed to bind request for "+what, slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse("Invalid request format: "+err.Error(), nil))
}
