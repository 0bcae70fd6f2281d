package handlers

import (
	"fmt"
	"net/http"

	"github.com/photoproos/platform/services"
	"github.com/photoproos/platform/utils"
	"go.uber.org/zap"
)

// errorStatus maps each domain error category onto its HTTP status
var errorStatus = map[services.ErrorType]int{
	services.ErrorTypeNotFound:     http.StatusNotFound,
	services.ErrorTypeValidation:   http.StatusBadRequest,
	services.ErrorTypeUnauthorized: http.StatusUnauthorized,
	services.ErrorTypeForbidden:    http.StatusForbidden,
	services.ErrorTypeRateLimit:    http.StatusTooManyRequests,
	services.ErrorTypeConflict:     http.StatusConflict,
	services.ErrorTypeExternal:     http.StatusBadGateway,
	services.ErrorTypeInternal:     http.StatusInternalServerError,
}

// HandleServiceError writes the envelope for an error returned by a service.
// Internal causes are logged and never echoed to the client.
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	errType := services.TypeOf(err)
	status, known := errorStatus[errType]
	if !known {
		status = http.StatusInternalServerError
	}

	message := err.Error()
	details := services.GetErrorDetails(err)

	switch {
	case !known:
		logger.Error("unclassified service error", zap.Error(err))
		message, details = "An unexpected error occurred", nil
	case errType == services.ErrorTypeInternal:
		logger.Error("internal service error", zap.Error(err))
		message, details = "An internal error occurred", nil
	case errType == services.ErrorTypeExternal:
		logger.Warn("payment processor error", zap.Error(err))
	case errType == services.ErrorTypeRateLimit:
		if secs, ok := details["retry_after_seconds"]; ok {
			w.Header().Set("Retry-After", fmt.Sprint(secs))
		}
	}

	if errType == services.ErrorTypeUnauthorized || errType == services.ErrorTypeForbidden {
		details = nil
	}

	if writeErr := utils.WriteError(w, status, message, details); writeErr != nil {
		logger.Error("failed to write error response", zap.Error(writeErr))
	}
}

// HandleValidationError answers 400 for a request that failed decoding or
// struct validation, listing offending fields when there are any.
func HandleValidationError(w http.ResponseWriter, err error, logger *zap.Logger) {
	message := err.Error()
	var details map[string]interface{}

	if fields := utils.GetValidationFields(err); len(fields) > 0 {
		message = "Validation failed"
		details = make(map[string]interface{}, len(fields))
		for field, rule := range fields {
			details[field] = rule
		}
	}

	if writeErr := utils.WriteBadRequest(w, message, details); writeErr != nil {
		logger.Error("failed to write validation error response", zap.Error(writeErr))
	}
}
