package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	ErrCodeValidation      = "ERR_VALIDATION"
	ErrCodeNoItems         = "ERR_VALIDATION_NO_ITEMS"
	ErrCodeInvalidItem     = "ERR_VALIDATION_ITEM"
	ErrCodeInvalidAmount   = "ERR_VALIDATION_AMOUNT"
	ErrCodeInvalidLocation = "ERR_VALIDATION_LOCATION"
	ErrCodeInvalidExpiry   = "ERR_VALIDATION_EXPIRATION"
	ErrCodeInvalidContract = "ERR_VALIDATION_CONTRACT"
	ErrCodeInvalidRating   = "ERR_VALIDATION_RATING"
	ErrCodeBudgetBelowCost = "ERR_VALIDATION_BUDGET"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the user lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the auth token is invalid
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	// ErrCodeTokenRevoked is used when the auth token was revoked
	ErrCodeTokenRevoked = "ERR_TOKEN_REVOKED"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeFeatureDisabled     = "ERR_FEATURE_DISABLED"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeContractIDTaken     = "ERR_CONTRACT_ID_TAKEN"
	ErrCodeAlreadyRated        = "ERR_ALREADY_RATED"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeNotClaimable is used when a request cannot be claimed by the caller
	ErrCodeNotClaimable = "ERR_NOT_CLAIMABLE"
	// ErrCodeNoMainCharacter is used when the player has no main character
	ErrCodeNoMainCharacter = "ERR_NO_MAIN_CHARACTER"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeRequestTooLarge is used when the body exceeds the limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
	// ErrCodeMethodNotAllowed is used when the route exists under another method
	ErrCodeMethodNotAllowed = "ERR_METHOD_NOT_ALLOWED"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeNoItems:         http.StatusBadRequest,
	ErrCodeInvalidItem:     http.StatusBadRequest,
	ErrCodeInvalidAmount:   http.StatusBadRequest,
	ErrCodeInvalidLocation: http.StatusBadRequest,
	ErrCodeInvalidExpiry:   http.StatusBadRequest,
	ErrCodeInvalidContract: http.StatusBadRequest,
	ErrCodeInvalidRating:   http.StatusBadRequest,
	ErrCodeBudgetBelowCost: http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeTokenRevoked: http.StatusUnauthorized,

	// Resource errors. A disabled feature reads as a missing page.
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeFeatureDisabled:     http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeContractIDTaken:     http.StatusConflict,
	ErrCodeAlreadyRated:        http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:    http.StatusUnprocessableEntity,
	ErrCodeNotClaimable:    http.StatusUnprocessableEntity,
	ErrCodeNoMainCharacter: http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:    http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeInvalidInput:     http.StatusBadRequest,
	ErrCodeInvalidJSON:      http.StatusBadRequest,
	ErrCodeRequestTooLarge:  http.StatusRequestEntityTooLarge,
	ErrCodeMethodNotAllowed: http.StatusMethodNotAllowed,

	// Rate limiting -> 429 Too Many Requests
	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Domain codes are normalized first. Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[NormalizeErrorCode(code)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":               ErrCodeNotFound,
	"FEATURE_DISABLED":        ErrCodeFeatureDisabled,
	"ALREADY_EXISTS":          ErrCodeAlreadyExists,
	"CONCURRENCY_CONFLICT":    ErrCodeConcurrencyConflict,
	"CONTRACT_ID_TAKEN":       ErrCodeContractIDTaken,
	"ALREADY_RATED":           ErrCodeAlreadyRated,
	"INVALID_INPUT":           ErrCodeInvalidInput,
	"INVALID_STATE":           ErrCodeInvalidState,
	"NOT_CLAIMABLE":           ErrCodeNotClaimable,
	"NO_MAIN_CHARACTER":       ErrCodeNoMainCharacter,
	"UNAUTHORIZED":            ErrCodeUnauthorized,
	"FORBIDDEN":               ErrCodeForbidden,
	"NO_ITEMS":                ErrCodeNoItems,
	"INVALID_ITEM":            ErrCodeInvalidItem,
	"INVALID_AMOUNT":          ErrCodeInvalidAmount,
	"INVALID_LOCATION":        ErrCodeInvalidLocation,
	"INVALID_EXPIRATION":      ErrCodeInvalidExpiry,
	"INVALID_CONTRACT_ID":     ErrCodeInvalidContract,
	"INVALID_CONTRACT_ISSUER": ErrCodeInvalidContract,
	"INVALID_RATING":          ErrCodeInvalidRating,
	"INVALID_REQUEST_TYPE":    ErrCodeValidation,
	"INVALID_USER":            ErrCodeValidation,
	"BUDGET_BELOW_PRICE":      ErrCodeBudgetBelowCost,
	"VALIDATION_ERROR":        ErrCodeValidation,
	"INTERNAL_ERROR":          ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to its API form.
// Codes already in API form or unknown pass through unchanged.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
