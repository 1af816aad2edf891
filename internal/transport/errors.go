package transport

import (
	"errors"
	"net/http"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/service"
	"storefront/internal/store"

	"go.uber.org/zap"
)

// statusFor maps service and domain errors onto HTTP statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrAddressNotFound),
		errors.Is(err, domain.ErrReviewNotFound),
		errors.Is(err, domain.ErrLineNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrEmailTaken),
		errors.Is(err, store.ErrDuplicateOrder),
		errors.Is(err, domain.ErrTerminalStatus),
		errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrIncorrectPassword):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrSizeUnavailable),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrInvalidProduct),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidRating),
		errors.Is(err, store.ErrOwnerRequired),
		errors.Is(err, service.ErrInvalidBackup):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondWithServiceError writes err in the shared error format. Validation
// failures list their fields; unexpected errors are logged and hidden.
func respondWithServiceError(w http.ResponseWriter, logger *zap.Logger, err error, action string) {
	if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
		middleware.RespondWithValidationErrors(w, validationErrors)
		return
	}

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", zap.String("action", action), zap.Error(err))
		middleware.RespondWithError(w, status, "failed to "+action)
		return
	}

	logger.Debug("Request rejected", zap.String("action", action), zap.Error(err))
	middleware.RespondWithError(w, status, rootMessage(err))
}

// rootMessage returns the message of the innermost sentinel so responses do
// not leak the "failed to ..." wrapping chain
func rootMessage(err error) string {
	for _, sentinel := range []error{
		domain.ErrProductNotFound, domain.ErrOrderNotFound, domain.ErrUserNotFound,
		domain.ErrAddressNotFound, domain.ErrReviewNotFound, domain.ErrLineNotFound,
		domain.ErrSizeUnavailable, domain.ErrInvalidQuantity, domain.ErrEmptyCart,
		domain.ErrInvalidStatus, domain.ErrInvalidTransition,
		domain.ErrTerminalStatus, domain.ErrInvalidRating,
		store.ErrEmailTaken, store.ErrDuplicateOrder, store.ErrOwnerRequired,
		service.ErrInvalidCredentials, service.ErrInvalidToken, service.ErrIncorrectPassword,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	// invalid products and backups carry a useful reason after the sentinel
	msg := err.Error()
	for _, sentinel := range []error{domain.ErrInvalidProduct, service.ErrInvalidBackup} {
		if i := strings.Index(msg, sentinel.Error()); i >= 0 {
			return msg[i:]
		}
	}
	return msg
}

// decodeRequest decodes and validates a JSON body, writing the error response itself.
// It reports whether the handler should continue.
func decodeRequest(w http.ResponseWriter, r *http.Request, logger *zap.Logger, v interface{}) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		logger.Debug("Request validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
