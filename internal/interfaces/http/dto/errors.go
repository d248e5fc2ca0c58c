package dto

import "net/http"

// Error codes surfaced by the API. Domain error codes pass through as-is;
// this table maps them to HTTP status codes.
const (
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeNotFound   = "NOT_FOUND"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,

	// Input errors
	"INVALID_INPUT":          http.StatusBadRequest,
	"INVALID_FLOW":           http.StatusBadRequest,
	"INVALID_REASON":         http.StatusBadRequest,
	"INVALID_REQUEST_NUMBER": http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:        http.StatusNotFound,
	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"DUPLICATE_COMMIT":     http.StatusConflict,

	// Business rule errors
	"INVALID_STATE":     http.StatusUnprocessableEntity,
	"EMPTY_SCOPE":       http.StatusUnprocessableEntity,
	"EMPTY_SHEET":       http.StatusUnprocessableEntity,
	"DUPLICATE_PARTNER": http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status for an error code, defaulting to 500
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
