// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package errs

import (
	"errors"
	"fmt"
)

// Code classifies engine failures for callers. Every error surfaced by the
// settlement engine carries exactly one code.
type Code string

const (
	ValidationFailed   Code = "VALIDATION_FAILED"
	SlippageExceeded   Code = "SLIPPAGE_TOLERANCE_EXCEEDED"
	InvalidDecimal     Code = "INVALID_DECIMAL"
	NotFound           Code = "NOT_FOUND"
	Unauthorized       Code = "UNAUTHORIZED"
	PreConditionFailed Code = "PRECONDITION_FAILED"
	Conflict           Code = "CONFLICT"
)

// Error is a typed engine error.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// New builds an Error with the given code.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...any) *Error {
	return New(ValidationFailed, format, args...)
}

func Slippagef(format string, args ...any) *Error {
	return New(SlippageExceeded, format, args...)
}

func Decimalf(format string, args ...any) *Error {
	return New(InvalidDecimal, format, args...)
}

func NotFoundf(format string, args ...any) *Error {
	return New(NotFound, format, args...)
}

func Unauthorizedf(format string, args ...any) *Error {
	return New(Unauthorized, format, args...)
}

func PreConditionf(format string, args ...any) *Error {
	return New(PreConditionFailed, format, args...)
}

// CodeOf extracts the Code from err, or Conflict when err is untyped.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Conflict
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
