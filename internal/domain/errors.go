package domain

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeInvalidInput          ErrorCode = "INVALID_INPUT"
	CodeSeatUnavailable       ErrorCode = "SEAT_UNAVAILABLE"
	CodeSeatConflict          ErrorCode = "SEAT_CONFLICT"
	CodeSeatNotHeld           ErrorCode = "SEAT_NOT_HELD"
	CodeClassMismatch         ErrorCode = "CLASS_MISMATCH"
	CodeBookingNotFound       ErrorCode = "BOOKING_NOT_FOUND"
	CodePaymentNotFound       ErrorCode = "PAYMENT_NOT_FOUND"
	CodeReconciliationFailure ErrorCode = "RECONCILIATION_FAILURE"
	CodeNotFound              ErrorCode = "NOT_FOUND"
)

// Error is the business error returned by every core operation. Two errors
// match under errors.Is when their codes are equal.
type Error struct {
	Code    ErrorCode
	Message string
	SeatNo  string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.SeatNo != "" {
		msg = fmt.Sprintf("%s (seat %s)", msg, e.SeatNo)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrInvalidInput    = &Error{Code: CodeInvalidInput, Message: "invalid input"}
	ErrSeatUnavailable = &Error{Code: CodeSeatUnavailable, Message: "seat is already booked"}
	ErrSeatConflict    = &Error{Code: CodeSeatConflict, Message: "seat is held by another transaction"}
	ErrSeatNotHeld     = &Error{Code: CodeSeatNotHeld, Message: "seat is not held by this transaction"}
	ErrClassMismatch   = &Error{Code: CodeClassMismatch, Message: "seat class does not match"}
	ErrBookingNotFound = &Error{Code: CodeBookingNotFound, Message: "booking not found"}
	ErrPaymentNotFound = &Error{Code: CodePaymentNotFound, Message: "payment not found"}
	ErrReconciliation  = &Error{Code: CodeReconciliationFailure, Message: "booking reconciliation failed"}
	ErrNotFound        = &Error{Code: CodeNotFound, Message: "not found"}
)

func InvalidInput(format string, args ...any) error {
	return &Error{Code: CodeInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func SeatError(code ErrorCode, seatNo, message string) error {
	return &Error{Code: code, Message: message, SeatNo: seatNo}
}

// ReconciliationFailure wraps the cause that stopped a group from being confirmed.
func ReconciliationFailure(cause error) error {
	e := &Error{Code: CodeReconciliationFailure, Message: "booking reconciliation failed", Err: cause}
	var inner *Error
	if errors.As(cause, &inner) {
		e.SeatNo = inner.SeatNo
	}
	return e
}

// CodeOf returns the business code carried by err, or "" for infrastructure errors.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// SeatOf returns the seat number attached to err, if any.
func SeatOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.SeatNo
	}
	return ""
}
