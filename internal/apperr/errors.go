package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the failure classes the services can report.
// Handlers translate these into HTTP responses; services never log them away.
var (
	// ErrNotFound means a referenced entity (car, seller) does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredentials is deliberately the same for an unknown username
	// and a wrong password, so login attempts cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrNotOwner means the caller is authenticated but does not own the
	// entity it is trying to mutate.
	ErrNotOwner = errors.New("not owned by current seller")

	// ErrPayloadTooLarge means an uploaded image exceeds the size cap.
	ErrPayloadTooLarge = errors.New("exceeded filesize limit")

	// ErrUnsupportedMedia means the sniffed content of an upload is not an
	// allowed image format.
	ErrUnsupportedMedia = errors.New("invalid file format, allowed formats: JPG, PNG, GIF")
)

// ValidationError carries every violated rule of a request, not just the
// first, so the caller can show all problems at once.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// Validation builds a ValidationError from the collected messages, or returns
// nil when there are none.
func Validation(messages []string) error {
	if len(messages) == 0 {
		return nil
	}
	return &ValidationError{Messages: messages}
}

// IsValidation reports whether err is (or wraps) a ValidationError and
// returns it.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// ConflictError reports a uniqueness violation on a named field.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already taken", e.Field)
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// StorageError wraps a durable-write failure from the blob store. It is fatal
// for the current request but not for the process.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsStorage reports whether err is (or wraps) a StorageError.
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
