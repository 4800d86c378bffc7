package dto

import "net/http"

// Error code constants
// Format: ERR_<CATEGORY>_<DESCRIPTION>
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidState is used when an operation is invalid for the
	// current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodePrinterOffline is used when the device stayed unavailable
	// past the deferral bound
	ErrCodePrinterOffline = "ERR_PRINTER_OFFLINE"
)

// GetHTTPStatus maps an error code to its HTTP status code
func GetHTTPStatus(code string) int {
	switch code {
	case ErrCodeValidation, ErrCodeBadRequest, ErrCodeInvalidInput,
		"INVALID_INPUT", "INVALID_ORDER", "INVALID_BATCH", "INVALID_POSITION":
		return http.StatusBadRequest
	case ErrCodeNotFound, "NOT_FOUND":
		return http.StatusNotFound
	case ErrCodeInvalidState, "INVALID_STATE", "BATCH_ACTIVE":
		return http.StatusConflict
	case ErrCodePrinterOffline, "PRINTER_OFFLINE":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
