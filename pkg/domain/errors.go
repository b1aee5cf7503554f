package domain

import "errors"

// ErrorKind is the closed set of domain error categories. The transport
// matches on it exhaustively; no other error classification exists.
type ErrorKind int

const (
	// KindValidation marks caller-correctable business-rule violations.
	KindValidation ErrorKind = iota + 1
	// KindConflict marks uniqueness violations.
	KindConflict
	// KindNotFound marks references to absent entities.
	KindNotFound
	// KindDatabase marks store unavailability or operational failures.
	KindDatabase
)

// Error is a domain error with a human-readable message.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func NewValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func NewConflictError(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func NewNotFoundError(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func NewDatabaseError(msg string) *Error {
	return &Error{Kind: KindDatabase, Message: msg}
}

// KindOf returns the error's kind, or 0 when err is not a domain error.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}

func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsConflict(err error) bool   { return KindOf(err) == KindConflict }
func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
func IsDatabase(err error) bool   { return KindOf(err) == KindDatabase }
