package apperrors

import (
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrUnauthorized          ErrorType = "UNAUTHORIZED"
	ErrMalformedSignature    ErrorType = "MALFORMED_SIGNATURE"
	ErrInvalidSignature      ErrorType = "INVALID_SIGNATURE"
	ErrSellerNotOwner        ErrorType = "SELLER_NOT_OWNER"
	ErrNotOwner              ErrorType = "NOT_OWNER"
	ErrNotApproved           ErrorType = "NOT_APPROVED"
	ErrPriceMismatch         ErrorType = "PRICE_MISMATCH"
	ErrInsufficientBalance   ErrorType = "INSUFFICIENT_BALANCE"
	ErrInsufficientAllowance ErrorType = "INSUFFICIENT_ALLOWANCE"
	ErrEmptyBundle           ErrorType = "EMPTY_BUNDLE"
	ErrLengthMismatch        ErrorType = "LENGTH_MISMATCH"
	ErrBundleTooLarge        ErrorType = "BUNDLE_TOO_LARGE"
	ErrInvalidRate           ErrorType = "INVALID_RATE"
	ErrInvalidRequest        ErrorType = "INVALID_REQUEST"
	ErrNotFound              ErrorType = "NOT_FOUND"
	ErrInternal              ErrorType = "INTERNAL_ERROR"
)

// AppError is the standard error struct for the application
type AppError struct {
	Type       ErrorType `json:"code"`
	Message    string    `json:"message"`
	Suggestion string    `json:"suggestion,omitempty"`
	HTTPStatus int       `json:"-"`
	Cause      error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func New(errType ErrorType, msg string, cause error) *AppError {
	return &AppError{
		Type:       errType,
		Message:    msg,
		Cause:      cause,
		HTTPStatus: mapTypeToStatus(errType),
		Suggestion: mapTypeToSuggestion(errType),
	}
}

func NewInvalidRequest(msg string) *AppError {
	return New(ErrInvalidRequest, msg, nil)
}

func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return New(ErrInternal, err.Error(), err)
}

// Is reports whether err is an AppError of the given type.
func Is(err error, t ErrorType) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Type == t
}

func mapTypeToStatus(t ErrorType) int {
	switch t {
	case ErrUnauthorized:
		return http.StatusForbidden
	case ErrMalformedSignature, ErrInvalidSignature:
		return http.StatusUnauthorized
	case ErrSellerNotOwner, ErrNotOwner, ErrNotApproved, ErrPriceMismatch,
		ErrInsufficientBalance, ErrInsufficientAllowance:
		return http.StatusConflict
	case ErrEmptyBundle, ErrLengthMismatch, ErrBundleTooLarge, ErrInvalidRate, ErrInvalidRequest:
		return http.StatusBadRequest
	case ErrNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func mapTypeToSuggestion(t ErrorType) string {
	switch t {
	case ErrMalformedSignature:
		return "Signature must be 65 bytes: r || s || v."
	case ErrInvalidSignature:
		return "Re-sign the trade terms; any changed field invalidates the signature."
	case ErrSellerNotOwner, ErrNotOwner:
		return "Check current asset ownership before settling."
	case ErrNotApproved:
		return "The asset owner must approve the settlement engine as transfer agent."
	case ErrPriceMismatch:
		return "Payment must exactly match the signed price."
	case ErrInsufficientAllowance:
		return "The bidder must approve the engine to move the payment amount."
	case ErrBundleTooLarge:
		return "Split the bundle into batches of 20 items or fewer."
	case ErrInvalidRate:
		return "Royalty rate is in basis points and must be below 10000."
	default:
		return ""
	}
}
