package dto

import "net/http"

// Domain error codes surfaced by the eligibility API. The registry codes are
// part of the existing wire contract and are kept verbatim.
const (
	// ErrCodeLookupError is used when the registry rejects an eligibility query
	ErrCodeLookupError = "CONSULTAR_AFILIADO_FUAE_ERROR"
	// ErrCodeSessionError is used when a registry session cannot be opened
	ErrCodeSessionError = "GET_SESSION_ERROR"
	// ErrCodeServiceDown is used when the registry is unreachable
	ErrCodeServiceDown = "DISCONECTED_SIS_SERVICE"
	// ErrCodeBadResponse is used when the registry answers with an unusable payload
	ErrCodeBadResponse = "BAD_RESPONSE"
	// ErrCodeInvalidCredentials is used when the registry rejects the service credentials
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	// ErrCodeNotFound is used when a stored record is missing
	ErrCodeNotFound = "NOT_FOUND"
)

// Transport error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeValidation is used when request validation fails
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeRequestTooLarge is used when the request body exceeds the limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// Registry failures. The registry being down or misbehaving is a
	// dependency failure, not a client error.
	ErrCodeLookupError:        http.StatusServiceUnavailable,
	ErrCodeSessionError:       http.StatusServiceUnavailable,
	ErrCodeServiceDown:        http.StatusServiceUnavailable,
	ErrCodeBadResponse:        http.StatusUnprocessableEntity,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeNotFound:           http.StatusNotFound,

	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
