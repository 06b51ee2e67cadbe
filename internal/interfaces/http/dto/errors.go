package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeStorageUnavailable is used when object storage is not configured or down
	ErrCodeStorageUnavailable = "ERR_STORAGE_UNAVAILABLE"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for request binding failures
	ErrCodeValidation = "ERR_VALIDATION"
)

// Authentication error codes
const (
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeTokenExpired       = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "ERR_TOKEN_INVALID"
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeEmailTaken          = "ERR_EMAIL_TAKEN"
	ErrCodeProductOrdered      = "ERR_PRODUCT_ORDERED"
	ErrCodeCustomerHasOrders   = "ERR_CUSTOMER_HAS_ORDERS"
)

// Checkout and order error codes
const (
	ErrCodeEmptyCart             = "ERR_EMPTY_CART"
	ErrCodeOrderCreationFailed   = "ERR_ORDER_CREATION_FAILED"
	ErrCodeCartAlreadyCheckedOut = "ERR_CART_ALREADY_CHECKED_OUT"
	ErrCodeTotalMismatch         = "ERR_TOTAL_MISMATCH"
	ErrCodeDuplicateRequest      = "ERR_DUPLICATE_REQUEST"
	ErrCodeInvalidStatus         = "ERR_INVALID_STATUS"
	ErrCodeInvalidState          = "ERR_INVALID_STATE"
)

// Input error codes
const (
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodeInvalidQuantity = "ERR_INVALID_QUANTITY"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited     = "ERR_RATE_LIMITED"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:            http.StatusInternalServerError,
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeStorageUnavailable: http.StatusServiceUnavailable,

	ErrCodeValidation: http.StatusBadRequest,

	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeEmailTaken:          http.StatusConflict,
	ErrCodeProductOrdered:      http.StatusConflict,
	ErrCodeCustomerHasOrders:   http.StatusConflict,

	ErrCodeEmptyCart:             http.StatusBadRequest,
	ErrCodeOrderCreationFailed:   http.StatusInternalServerError,
	ErrCodeCartAlreadyCheckedOut: http.StatusConflict,
	ErrCodeTotalMismatch:         http.StatusConflict,
	ErrCodeDuplicateRequest:      http.StatusConflict,
	ErrCodeInvalidStatus:         http.StatusBadRequest,
	ErrCodeInvalidState:          http.StatusUnprocessableEntity,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeInvalidQuantity: http.StatusBadRequest,

	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Field-level domain codes (ERR_INVALID_*) not listed explicitly are client errors.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if isInvalidFieldCode(code) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func isInvalidFieldCode(code string) bool {
	const prefix = "ERR_INVALID_"
	return len(code) > len(prefix) && code[:len(prefix)] == prefix
}

// LegacyErrorCodeMapping maps domain error codes to the HTTP error codes
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":                ErrCodeNotFound,
	"ALREADY_EXISTS":           ErrCodeAlreadyExists,
	"INVALID_INPUT":            ErrCodeInvalidInput,
	"INVALID_STATE":            ErrCodeInvalidState,
	"UNAUTHORIZED":             ErrCodeUnauthorized,
	"FORBIDDEN":                ErrCodeForbidden,
	"CONFLICT":                 ErrCodeConflict,
	"CONCURRENCY_CONFLICT":     ErrCodeConcurrencyConflict,
	"VALIDATION_ERROR":         ErrCodeValidation,
	"BAD_REQUEST":              ErrCodeBadRequest,
	"INTERNAL_ERROR":           ErrCodeInternal,
	"EMPTY_CART":               ErrCodeEmptyCart,
	"ORDER_CREATION_FAILED":    ErrCodeOrderCreationFailed,
	"CART_ALREADY_CHECKED_OUT": ErrCodeCartAlreadyCheckedOut,
	"TOTAL_MISMATCH":           ErrCodeTotalMismatch,
	"DUPLICATE_REQUEST":        ErrCodeDuplicateRequest,
	"EMAIL_TAKEN":              ErrCodeEmailTaken,
	"INVALID_CREDENTIALS":      ErrCodeInvalidCredentials,
	"PRODUCT_ORDERED":          ErrCodeProductOrdered,
	"CUSTOMER_HAS_ORDERS":      ErrCodeCustomerHasOrders,
	"CART_CLOSED":              ErrCodeConflict,
	"INVALID_STATUS":           ErrCodeInvalidStatus,
	"INVALID_QUANTITY":         ErrCodeInvalidQuantity,
	"STORAGE_UNAVAILABLE":      ErrCodeStorageUnavailable,
}

// NormalizeErrorCode converts a domain error code to the ERR_ format.
// Unlisted INVALID_* codes gain the ERR_ prefix; anything else passes through.
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	if len(code) > len("INVALID_") && code[:len("INVALID_")] == "INVALID_" {
		return "ERR_" + code
	}
	return code
}
