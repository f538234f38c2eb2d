package errors

import (
	"errors"
)

// Code classifies an error for callers and for the gRPC edge
type Code string

// Codes used across the totals pipeline
const (
	CodeOK                 Code = "OK"
	CodeCanceled           Code = "CANCELED"
	CodeInvalidArgument    Code = "INVALID_ARGUMENT"
	CodeNotFound           Code = "NOT_FOUND"
	CodeAlreadyExists      Code = "ALREADY_EXISTS"
	CodeFailedPrecondition Code = "FAILED_PRECONDITION"
	CodeInternal           Code = "INTERNAL"
	CodeUnavailable        Code = "UNAVAILABLE"
)

func (c Code) String() string {
	return string(c)
}

// As finds the first *Error in err's chain
func As(err error, target **Error) bool {
	return errors.As(err, target)
}

// GetCode returns the code of the outermost *Error in the chain.
// Nil maps to CodeOK and foreign errors to CodeInternal.
func GetCode(err error) Code {
	if err == nil {
		return CodeOK
	}
	var coded *Error
	if !As(err, &coded) {
		return CodeInternal
	}
	return coded.Code
}

// GetMessage returns the outermost message without the cause chain
func GetMessage(err error) string {
	var coded *Error
	switch {
	case err == nil:
		return ""
	case As(err, &coded):
		return coded.Message
	default:
		return err.Error()
	}
}

// HasCode reports whether err carries code
func HasCode(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

func IsNotFound(err error) bool           { return HasCode(err, CodeNotFound) }
func IsInvalidArgument(err error) bool    { return HasCode(err, CodeInvalidArgument) }
func IsAlreadyExists(err error) bool      { return HasCode(err, CodeAlreadyExists) }
func IsFailedPrecondition(err error) bool { return HasCode(err, CodeFailedPrecondition) }
func IsInternal(err error) bool           { return HasCode(err, CodeInternal) }
func IsUnavailable(err error) bool        { return HasCode(err, CodeUnavailable) }
