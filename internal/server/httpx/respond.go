package httpx

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"storefront/internal/dto"
	apperrors "storefront/internal/errors"
)

func WriteJSON(w http.ResponseWriter, logger *zap.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

// WriteErrorResponse renders the common error envelope.
func WriteErrorResponse(w http.ResponseWriter, r *http.Request, logger *zap.Logger, resp dto.ErrorResponse) {
	resp.TraceID = TraceID(r.Context())
	resp.Timestamp = time.Now().UTC()
	WriteJSON(w, logger, resp.Status, resp)
}

// WriteError maps an application error to its HTTP status. Anything that is
// not one of the typed errors is logged and reported as a 500.
func WriteError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	resp := dto.ErrorResponse{Message: err.Error()}

	if ve, ok := apperrors.IsValidationError(err); ok {
		resp.Status, resp.Code, resp.Message, resp.Details = http.StatusBadRequest, "VALIDATION_ERROR", ve.Message, ve.Details
	} else if _, ok := apperrors.IsUnauthorizedError(err); ok {
		resp.Status, resp.Code = http.StatusUnauthorized, "UNAUTHORIZED"
	} else if _, ok := apperrors.IsForbiddenError(err); ok {
		resp.Status, resp.Code = http.StatusForbidden, "FORBIDDEN"
	} else if _, ok := apperrors.IsNotFoundError(err); ok {
		resp.Status, resp.Code = http.StatusNotFound, "NOT_FOUND"
	} else if ce, ok := apperrors.IsConflictError(err); ok {
		resp.Status, resp.Code = http.StatusConflict, ce.Reason
	} else if _, ok := apperrors.IsDeadlockError(err); ok {
		resp.Status, resp.Code = http.StatusConflict, "DEADLOCK"
	} else {
		Logger(r, logger).Error("unexpected error", zap.Error(err))
		resp.Status, resp.Code, resp.Message = http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred"
	}

	WriteErrorResponse(w, r, logger, resp)
}
