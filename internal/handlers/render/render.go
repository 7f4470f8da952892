package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nkiryanov/gym/internal/apperrors"
)

var validate = newValidator()

type Struct any

// Every error leaves the server in this shape
type ErrorResponse struct {
	Message string `json:"message"`
}

func JSON(w http.ResponseWriter, data any) {
	jsonWithStatus(w, data, http.StatusOK)
}

func Created(w http.ResponseWriter, data any) {
	jsonWithStatus(w, data, http.StatusCreated)
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Message renders {"message": msg} with the status code
func Message(w http.ResponseWriter, code int, msg string) {
	jsonWithStatus(w, ErrorResponse{Message: msg}, code)
}

// Error translates err into status and message and renders it.
// Returns the status code written
func Error(w http.ResponseWriter, err error) int {
	code, msg := Status(err)
	Message(w, code, msg)
	return code
}

// Status maps application error to HTTP status code and client message.
// Unknown errors are 500 and never expose their text
func Status(err error) (int, string) {
	var code int
	switch {
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrMissingParameter):
		code = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrInvalidToken),
		errors.Is(err, apperrors.ErrMalformedToken),
		errors.Is(err, apperrors.ErrTokenExpired),
		errors.Is(err, apperrors.ErrBadCredentials),
		errors.Is(err, apperrors.ErrTokenNotFound),
		errors.Is(err, apperrors.ErrTokenIssuance):
		code = http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrForbidden):
		code = http.StatusForbidden
	case errors.Is(err, apperrors.ErrUserNotFound), errors.Is(err, apperrors.ErrEntityNotFound):
		code = http.StatusNotFound
	case errors.Is(err, apperrors.ErrMethodNotSupported):
		code = http.StatusMethodNotAllowed
	case errors.Is(err, apperrors.ErrUserAlreadyExists):
		code = http.StatusConflict
	default:
		return http.StatusInternalServerError, "An unexpected error occurred"
	}

	var appErr *apperrors.Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return code, appErr.Message
	}
	return code, http.StatusText(code)
}

// Render json DecodeError
func DecodeError(w http.ResponseWriter, err error) {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		Message(w, http.StatusBadRequest, fmt.Sprintf("Invalid data type for field '%s'", typeErr.Field))
		return
	}
	Message(w, http.StatusBadRequest, "Request body is missing or invalid.")
}

// Render ValidationErrors as one message: "field: reason" sorted by field
func ValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	Message(w, http.StatusBadRequest, validationMessage(errs))
}

func validationMessage(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		var reason string
		switch fe.Tag() {
		case "required":
			reason = "must not be blank"
		case "min":
			reason = fmt.Sprintf("size must be at least %s", fe.Param())
		case "max":
			reason = fmt.Sprintf("size must be at most %s", fe.Param())
		case "datetime":
			reason = "must be a date in format YYYY-MM-DD"
		case "notblank":
			reason = "must not be blank"
		default:
			reason = "invalid value"
		}
		parts = append(parts, fe.Field()+": "+reason)
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}

// BindAndValidate decodes JSON request body into type T and validates it using struct tags.
// Returns the decoded value and writes appropriate error responses for decoding or validation failures.
func BindAndValidate[T Struct](w http.ResponseWriter, r *http.Request) (T, error) {
	var value T

	err := json.NewDecoder(r.Body).Decode(&value)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		DecodeError(w, err)
		return value, err
	}

	err = validate.Struct(value)
	if err != nil {
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) {
			Error(w, err)
			return value, err
		}
		ValidationErrors(w, errs)
		return value, apperrors.Validation(validationMessage(errs))
	}

	return value, nil
}

// jsonWithStatus sends data as json and enforces status code
func jsonWithStatus(w http.ResponseWriter, data any, code int) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)

	if err := enc.Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(buf.Bytes())
}
