package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrMissingParameter   = errors.New("missing request parameter")
	ErrMethodNotSupported = errors.New("method not supported")

	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrEntityNotFound    = errors.New("entity not found")

	ErrBadCredentials = errors.New("bad credentials")
	ErrInvalidToken   = errors.New("invalid token")
	ErrMalformedToken = errors.New("malformed token")
	ErrTokenExpired   = errors.New("token is expired")
	ErrTokenNotFound  = errors.New("token not found")
	ErrTokenIssuance  = errors.New("token could not be issued")

	ErrForbidden = errors.New("access denied")
)

// Error carries a message that is safe to show to the client.
// Kind is one of the sentinels above, Cause is optional.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

func New(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind error, message string, cause error) error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func UserNotFound(username string) error {
	return New(ErrUserNotFound, "User not found "+username)
}

func EntityNotFound(format string, args ...any) error {
	return New(ErrEntityNotFound, fmt.Sprintf(format, args...))
}

func InvalidToken() error {
	return New(ErrInvalidToken, "Invalid Token")
}

func MissingParameter(name string) error {
	return New(ErrMissingParameter, fmt.Sprintf("Required request parameter '%s' is not present", name))
}

func MethodNotSupported(method string) error {
	return New(ErrMethodNotSupported, fmt.Sprintf("Request method '%s' not supported", method))
}

func Validation(message string) error {
	return New(ErrValidation, message)
}

func Forbidden() error {
	return New(ErrForbidden, "Access denied")
}
