package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies operational errors so callers can branch without
// parsing messages.
type ErrorKind string

// Error kinds surfaced by the booking and payment services
const (
	KindInternal                   ErrorKind = "Internal"
	KindValidation                 ErrorKind = "Validation"
	KindNotFound                   ErrorKind = "NotFound"
	KindForbidden                  ErrorKind = "Forbidden"
	KindInvalidState               ErrorKind = "InvalidState"
	KindBookingNotInPaymentState   ErrorKind = "BookingNotInPaymentState"
	KindScheduleUnavailable        ErrorKind = "ScheduleUnavailable"
	KindVariantNotFound            ErrorKind = "VariantNotFound"
	KindCouponInvalid              ErrorKind = "CouponInvalid"
	KindPaymentProviderUnavailable ErrorKind = "PaymentProviderUnavailable"
	KindSignatureInvalid           ErrorKind = "SignatureInvalid"
	KindConflict                   ErrorKind = "Conflict"
)

// AppError represents an application error
type AppError struct {
	Code    int       `json:"code"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(code int, kind ErrorKind, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// ValidationFailed creates a 400 error for malformed input
func ValidationFailed(message string) *AppError {
	return NewAppError(http.StatusBadRequest, KindValidation, message, nil)
}

// NotFoundError creates a 404 Not Found error
func NotFoundError(message string) *AppError {
	return NewAppError(http.StatusNotFound, KindNotFound, message, nil)
}

// ForbiddenError creates a 403 Forbidden error
func ForbiddenError(message string) *AppError {
	return NewAppError(http.StatusForbidden, KindForbidden, message, nil)
}

// InvalidStateError is returned when an operation is illegal for the current status
func InvalidStateError(message string) *AppError {
	return NewAppError(http.StatusConflict, KindInvalidState, message, nil)
}

// BookingNotInPaymentStateError is returned when an order is requested for a booking that is not awaiting payment
func BookingNotInPaymentStateError(status string) *AppError {
	return NewAppError(http.StatusConflict, KindBookingNotInPaymentState,
		fmt.Sprintf("Booking is not awaiting payment (status %s)", status), nil)
}

// ScheduleUnavailableError is returned when the departure is inactive or sold out
func ScheduleUnavailableError(message string) *AppError {
	return NewAppError(http.StatusConflict, KindScheduleUnavailable, message, nil)
}

// VariantNotFoundError is returned when the package variant does not exist
func VariantNotFoundError() *AppError {
	return NewAppError(http.StatusNotFound, KindVariantNotFound, "Package variant not found", nil)
}

// CouponInvalidError carries the user-facing reason from coupon validation
func CouponInvalidError(reason string) *AppError {
	return NewAppError(http.StatusBadRequest, KindCouponInvalid, reason, nil)
}

// PaymentProviderUnavailableError hides provider details from the caller
func PaymentProviderUnavailableError(err error) *AppError {
	return NewAppError(http.StatusServiceUnavailable, KindPaymentProviderUnavailable,
		"Payment provider is unavailable, please try again later", err)
}

// SignatureInvalidError is returned for webhook deliveries that fail verification
func SignatureInvalidError() *AppError {
	return NewAppError(http.StatusBadRequest, KindSignatureInvalid, "Invalid webhook signature", nil)
}

// ConflictError is returned when a unique business key is already taken
func ConflictError(message string) *AppError {
	return NewAppError(http.StatusConflict, KindConflict, message, nil)
}

// GetAppError returns the AppError if the error is or wraps an AppError
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// KindOf returns the kind of err, or KindInternal for anything unclassified.
func KindOf(err error) ErrorKind {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err is an AppError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// WrapError wraps an error with additional context
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
