package models

import "fmt"

// ErrorValidation reports missing or malformed input.
type ErrorValidation struct {
	Message string
}

func (e ErrorValidation) Error() string { return e.Message }

// ErrorNotFound reports a referenced entity that does not exist.
type ErrorNotFound struct {
	Message string
}

func (e ErrorNotFound) Error() string { return e.Message }

// ErrorConflict reports a uniqueness violation. Details are echoed to the
// client next to the message.
type ErrorConflict struct {
	Message string
	Details map[string]interface{}
}

func (e ErrorConflict) Error() string { return e.Message }

// ErrorUnauthorized reports bad credentials or a bad token.
type ErrorUnauthorized struct {
	Message string
}

func (e ErrorUnauthorized) Error() string { return e.Message }

// ErrorForbidden reports an authenticated caller lacking permission.
type ErrorForbidden struct {
	Message string
}

func (e ErrorForbidden) Error() string { return e.Message }

// ErrorInternalServer wraps an unexpected failure.
type ErrorInternalServer struct {
	Message string
	Err     error
}

func (e ErrorInternalServer) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e ErrorInternalServer) Unwrap() error { return e.Err }

func NotFound(format string, args ...interface{}) error {
	return ErrorNotFound{Message: fmt.Sprintf(format, args...)}
}

func Invalid(format string, args ...interface{}) error {
	return ErrorValidation{Message: fmt.Sprintf(format, args...)}
}
