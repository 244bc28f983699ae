package shared

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so that sentinel comparisons survive
// message customization.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound     = NewDomainError("NOT_FOUND", "Recurso no encontrado")
	ErrInvalidInput = NewDomainError("INVALID_INPUT", "Datos inválidos")
	ErrConflict     = NewDomainError("CONFLICT", "Conflicto con el estado actual")
)

// NotFound returns a NOT_FOUND domain error with a custom message.
func NotFound(message string) *DomainError {
	return NewDomainError(ErrNotFound.Code, message)
}

// PersistenceError wraps a store failure with the context needed to trace it:
// the operation, the owner scope and the target (date or id) involved.
type PersistenceError struct {
	Op      string
	OwnerID uuid.UUID
	Target  string
	Err     error
}

func (e *PersistenceError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("%s (owner %s): %v", e.Op, e.OwnerID, e.Err)
	}
	return fmt.Sprintf("%s (owner %s, target %s): %v", e.Op, e.OwnerID, e.Target, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NewPersistenceError wraps err. A nil err yields nil; errors that are already
// domain or persistence errors are returned unchanged.
func NewPersistenceError(op string, ownerID uuid.UUID, target string, err error) error {
	if err == nil {
		return nil
	}
	if IsValidationError(err) || IsPersistenceError(err) {
		return err
	}
	return &PersistenceError{Op: op, OwnerID: ownerID, Target: target, Err: err}
}

// IsValidationError reports whether err is a caller-correctable domain error.
func IsValidationError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// IsPersistenceError reports whether err originates from the store.
func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
