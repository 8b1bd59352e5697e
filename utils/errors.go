package utils

import (
	"errors"
	"fmt"
)

// Kind classifies an application error so callers can branch on the cause
// without string matching.
type Kind int

const (
	KindInternal Kind = iota
	// KindAuthRequired means no usable access token is available.
	KindAuthRequired
	// KindConnection means the mailbox handshake or authentication failed.
	KindConnection
	// KindFolder means a mailbox folder does not exist or cannot be opened.
	KindFolder
	// KindNotFound means the requested entity does not exist.
	KindNotFound
	// KindParse means a message body could not be parsed. Non-fatal.
	KindParse
	// KindValidation means the request input is malformed.
	KindValidation
	// KindConflict means a unique constraint was violated.
	KindConflict
)

// AppError represents an application error with an HTTP status code.
type AppError struct {
	Kind    Kind
	Code    int    // HTTP status code
	Message string // User-friendly message
	Err     error  // Underlying error
}

// NewAppError creates a new AppError.
func NewAppError(kind Kind, code int, message string, err error) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying error to errors.Is / errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// KindOf reports the Kind of err, or KindInternal for plain errors.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Common error constructors

func AuthRequiredError(message string, err error) *AppError {
	return NewAppError(KindAuthRequired, 401, message, err)
}

func ConnectionError(message string, err error) *AppError {
	return NewAppError(KindConnection, 500, message, err)
}

func FolderError(message string, err error) *AppError {
	return NewAppError(KindFolder, 500, message, err)
}

func NotFoundError(message string, err error) *AppError {
	return NewAppError(KindNotFound, 404, message, err)
}

func ParseError(message string, err error) *AppError {
	return NewAppError(KindParse, 500, message, err)
}

func ValidationError(message string, err error) *AppError {
	return NewAppError(KindValidation, 400, message, err)
}

func ConflictError(message string, err error) *AppError {
	return NewAppError(KindConflict, 409, message, err)
}

func UnauthorizedError(message string, err error) *AppError {
	return NewAppError(KindAuthRequired, 401, message, err)
}

func BadRequestError(message string, err error) *AppError {
	return NewAppError(KindValidation, 400, message, err)
}

func InternalServerError(message string, err error) *AppError {
	return NewAppError(KindInternal, 500, message, err)
}
