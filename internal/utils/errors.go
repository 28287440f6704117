package utils

import (
	"errors"
	"net/http"
)

// ErrorKind classifies failures so the HTTP boundary and the session can
// decide how to surface them.
type ErrorKind string

const (
	KindValidation     ErrorKind = "validation"
	KindExtraction     ErrorKind = "extraction"
	KindRemoteRequest  ErrorKind = "remote_request"
	KindRemoteResponse ErrorKind = "remote_response"
	KindRemoteShape    ErrorKind = "remote_shape"
	KindBadRequest     ErrorKind = "bad_request"
	KindNotFound       ErrorKind = "not_found"
	KindConflict       ErrorKind = "conflict"
	KindUnauthorized   ErrorKind = "unauthorized"
	KindInternal       ErrorKind = "internal"
)

type AppError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newAppError(kind ErrorKind, status int, message string, err error) *AppError {
	return &AppError{Kind: kind, StatusCode: status, Message: message, Err: err}
}

func NewValidationError(message string) *AppError {
	return newAppError(KindValidation, http.StatusBadRequest, message, nil)
}

func NewExtractionError(message string, err error) *AppError {
	return newAppError(KindExtraction, http.StatusUnprocessableEntity, message, err)
}

func NewRemoteRequestError(err error) *AppError {
	return newAppError(KindRemoteRequest, http.StatusBadGateway, "request to generation endpoint failed", err)
}

// NewRemoteResponseError carries the message reported by the remote service.
func NewRemoteResponseError(status int, message string) *AppError {
	e := newAppError(KindRemoteResponse, http.StatusBadGateway, message, nil)
	if status == http.StatusTooManyRequests {
		e.StatusCode = http.StatusTooManyRequests
	}
	return e
}

func NewRemoteShapeError(message string) *AppError {
	return newAppError(KindRemoteShape, http.StatusBadGateway, message, nil)
}

func NewBadRequestError(message string) *AppError {
	return newAppError(KindBadRequest, http.StatusBadRequest, message, nil)
}

func NewNotFoundError(message string) *AppError {
	return newAppError(KindNotFound, http.StatusNotFound, message, nil)
}

func NewConflictError(message string) *AppError {
	return newAppError(KindConflict, http.StatusConflict, message, nil)
}

func NewUnauthorizedError(message string) *AppError {
	return newAppError(KindUnauthorized, http.StatusUnauthorized, message, nil)
}

func NewInternalError(message string) *AppError {
	return newAppError(KindInternal, http.StatusInternalServerError, message, nil)
}

// KindOf reports the kind of the first AppError in err's chain.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// Message returns the user-facing message for err.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
