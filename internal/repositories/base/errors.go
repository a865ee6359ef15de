package base

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// StorageError represents a failed database operation.
type StorageError struct {
	Operation string
	Table     string
	Cause     error
}

func (e *StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Table, e.Cause)
	}
	return fmt.Sprintf("failed to %s %s", e.Operation, e.Table)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// EntityNotFoundError represents a lookup that matched no rows.
type EntityNotFoundError struct {
	Table      string
	Identifier string
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("%s with %s not found", e.Table, e.Identifier)
}

// DuplicateEntityError represents a uniqueness violation.
type DuplicateEntityError struct {
	Table string
	Field string
	Value string
}

func (e *DuplicateEntityError) Error() string {
	return fmt.Sprintf("%s with %s '%s' already exists", e.Table, e.Field, e.Value)
}

// NewEntityNotFoundError creates a new entity not found error
func NewEntityNotFoundError(table, identifier string) *EntityNotFoundError {
	return &EntityNotFoundError{Table: table, Identifier: identifier}
}

// NewDuplicateEntityError creates a new duplicate entity error
func NewDuplicateEntityError(table, field, value string) *DuplicateEntityError {
	return &DuplicateEntityError{Table: table, Field: field, Value: value}
}

// WrapDBError wraps a database error with operation context
func WrapDBError(operation, table string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Operation: operation, Table: table, Cause: err}
}

// HandleDBError maps gorm errors to repository error types
func HandleDBError(operation, table, identifier string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewEntityNotFoundError(table, identifier)
	}
	return WrapDBError(operation, table, err)
}

// IsEntityNotFound checks if error is an entity not found error
func IsEntityNotFound(err error) bool {
	var notFound *EntityNotFoundError
	return errors.As(err, &notFound)
}

// IsDuplicateEntity checks if error is a duplicate entity error
func IsDuplicateEntity(err error) bool {
	var duplicate *DuplicateEntityError
	return errors.As(err, &duplicate)
}

// IsStorageError checks if error is a storage error
func IsStorageError(err error) bool {
	var storage *StorageError
	return errors.As(err, &storage)
}
