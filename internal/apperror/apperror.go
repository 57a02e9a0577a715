// Package apperror defines the closed set of expected business failures returned by the
// marketfresh services. Anything that is not an *Error is an unexpected fault.
package apperror

import "errors"

type Code string

const (
	CartNotFound                Code = "CART_NOT_FOUND"
	CartNotOpen                 Code = "CART_NOT_OPEN"
	CartEmpty                   Code = "CART_EMPTY"
	ProductNotFound             Code = "PRODUCT_NOT_FOUND"
	InsufficientStock           Code = "INSUFFICIENT_STOCK"
	OrderNotFound               Code = "ORDER_NOT_FOUND"
	OrderNotPayable             Code = "ORDER_NOT_PAYABLE"
	PaymentIntentNotFound       Code = "PAYMENT_INTENT_NOT_FOUND"
	PaymentIntentNotConfirmable Code = "PAYMENT_INTENT_NOT_CONFIRMABLE"
)

// Codes lists every business code. Boundaries iterate it to prove their mapping is complete.
func Codes() []Code {
	return []Code{
		CartNotFound,
		CartNotOpen,
		CartEmpty,
		ProductNotFound,
		InsufficientStock,
		OrderNotFound,
		OrderNotPayable,
		PaymentIntentNotFound,
		PaymentIntentNotConfirmable,
	}
}

func (c Code) String() string {
	return string(c)
}

type Error struct {
	Code    Code
	Message string
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

// CodeOf extracts the business code from err, if any.
func CodeOf(err error) (Code, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code, true
	}
	return "", false
}
