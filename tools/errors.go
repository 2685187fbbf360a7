// Package tools provides shared utilities for the Brick server.
package tools

import (
	"errors"
	"fmt"
)

// Error codes for client consumption.
// These codes are stable and can be used for programmatic error handling.
const (
	CodeNotConfigured      = "NOT_CONFIGURED"
	CodeTableNotFound      = "TABLE_NOT_FOUND"
	CodeRowNotFound        = "ROW_NOT_FOUND"
	CodeColumnNotFound     = "COLUMN_NOT_FOUND"
	CodeInvalidIdentifier  = "INVALID_IDENTIFIER"
	CodeInvalidColumnType  = "INVALID_COLUMN_TYPE"
	CodeReservedTable      = "RESERVED_TABLE"
	CodeMissingColumns     = "MISSING_COLUMNS"
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidJSON        = "INVALID_JSON"
	CodeNoPrimaryKey       = "NO_PRIMARY_KEY"
	CodeNotDocumentTable   = "NOT_DOCUMENT_TABLE"
	CodeRemoteDatabase     = "REMOTE_DATABASE"
	CodeTableExists        = "TABLE_EXISTS"
	CodeDestinationExists  = "DESTINATION_EXISTS"
	CodeNotBricked         = "NOT_BRICKED"
	CodeDatabaseNotFound   = "DATABASE_NOT_FOUND"
	CodeInvalidDatabase    = "INVALID_DATABASE"
	CodeEngineFailure      = "ENGINE_FAILURE"
	CodeCopyFailed         = "COPY_FAILED"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeRequestTooLarge    = "REQUEST_TOO_LARGE"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// APIError represents a structured error response for the API.
// Message is serialized as "error", the field the browser client reads.
type APIError struct {
	Message string `json:"error"`
	Code    string `json:"code"`
	Hint    string `json:"hint,omitempty"`
}

// Sentinel errors for common failure conditions.
var (
	ErrNotConfigured      = errors.New("no database configured")
	ErrTableNotFound      = errors.New("table not found")
	ErrRowNotFound        = errors.New("row not found")
	ErrColumnNotFound     = errors.New("column not found in table")
	ErrInvalidIdentifier  = errors.New("invalid identifier")
	ErrEmptyIdentifier    = errors.New("identifier cannot be empty")
	ErrIdentifierTooLong  = errors.New("identifier exceeds maximum length")
	ErrInvalidCharacter   = errors.New("identifier contains invalid characters")
	ErrInvalidColumnType  = errors.New("invalid column type")
	ErrReservedTable      = errors.New("reserved table name")
	ErrMissingColumns     = errors.New("at least one column is required")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInvalidJSON        = errors.New("invalid request body")
	ErrNoPrimaryKey       = errors.New("table has no addressable primary key")
	ErrNotDocumentTable   = errors.New("table is not a document table")
	ErrRemoteDatabase     = errors.New("operation requires a local database file")
	ErrTableExists        = errors.New("table already exists")
	ErrDestinationExists  = errors.New("destination file already exists")
	ErrNotBricked         = errors.New("database is not bricked")
	ErrDatabaseNotFound   = errors.New("database file does not exist")
	ErrInvalidDatabase    = errors.New("failed to open database")
	ErrCopyFailed         = errors.New("copy failed")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// EngineError wraps a failure reported by the database engine.
// The engine's message is kept verbatim; it is not parsed or classified.
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// EngineErr wraps err as an EngineError for the named operation.
// A nil err stays nil.
func EngineErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &EngineError{Op: op, Err: err}
}

// TableNotFoundErr returns an error indicating a table was not found.
func TableNotFoundErr(table string) error {
	return fmt.Errorf("%w: %s", ErrTableNotFound, table)
}

// ColumnNotFoundErr returns an error indicating a column was not found.
func ColumnNotFoundErr(table, column string) error {
	return fmt.Errorf("%w: %s in table %s", ErrColumnNotFound, column, table)
}

// ReservedTableErr returns an error indicating a reserved table name was used.
func ReservedTableErr(table string) error {
	return fmt.Errorf("%w: %s", ErrReservedTable, table)
}

// TableExistsErr returns an error indicating a table name is already taken.
func TableExistsErr(table string) error {
	return fmt.Errorf("%w: %s", ErrTableExists, table)
}

// InvalidTypeErr returns an error indicating an invalid column type was specified.
func InvalidTypeErr(column, typeName string) error {
	return fmt.Errorf("%w: type %q for column %s", ErrInvalidColumnType, typeName, column)
}

// InvalidRequestErr returns an error for invalid request validation.
func InvalidRequestErr(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, msg)
}
