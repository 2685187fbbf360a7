package tools

import (
	"encoding/json"
	"errors"
	"net/http"
)

// RespErr writes a structured error response to the ResponseWriter.
func RespErr(w http.ResponseWriter, err error) {
	status, apiErr := BuildAPIError(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiErr)
}

// RespJSON writes v as a JSON response with the given status code.
func RespJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// BuildAPIError maps an error to an HTTP status code and structured APIError.
// Engine failures keep the engine's message; unknown errors are logged and
// reported with a generic message.
func BuildAPIError(err error) (int, APIError) {
	var maxBytesErr *http.MaxBytesError
	var engineErr *EngineError

	switch {
	case errors.Is(err, ErrNotConfigured):
		return http.StatusBadRequest, APIError{
			Code:    CodeNotConfigured,
			Message: err.Error(),
			Hint:    "Select a database first with POST /api/config or `brick config set <path>`.",
		}
	case errors.Is(err, ErrDatabaseNotFound):
		return http.StatusBadRequest, APIError{
			Code:    CodeDatabaseNotFound,
			Message: err.Error(),
			Hint:    "Check the path. Relative paths are resolved from the server's working directory.",
		}
	case errors.Is(err, ErrInvalidDatabase):
		return http.StatusBadRequest, APIError{
			Code:    CodeInvalidDatabase,
			Message: err.Error(),
			Hint:    "The file exists but could not be opened as a SQLite database.",
		}
	case errors.Is(err, ErrTableNotFound):
		return http.StatusNotFound, APIError{
			Code:    CodeTableNotFound,
			Message: err.Error(),
			Hint:    "Use GET /api/tables to list available tables.",
		}
	case errors.Is(err, ErrRowNotFound):
		return http.StatusNotFound, APIError{
			Code:    CodeRowNotFound,
			Message: err.Error(),
		}
	case errors.Is(err, ErrColumnNotFound):
		return http.StatusBadRequest, APIError{
			Code:    CodeColumnNotFound,
			Message: err.Error(),
			Hint:    "Use GET /api/tables/{name}/schema to see table columns.",
		}
	case errors.Is(err, ErrInvalidIdentifier),
		errors.Is(err, ErrEmptyIdentifier),
		errors.Is(err, ErrIdentifierTooLong),
		errors.Is(err, ErrInvalidCharacter):
		return http.StatusBadRequest, APIError{
			Code:    CodeInvalidIdentifier,
			Message: err.Error(),
			Hint:    "Names must start with a letter or underscore and contain only letters, digits, and underscores.",
		}
	case errors.Is(err, ErrInvalidColumnType):
		return http.StatusBadRequest, APIError{
			Code:    CodeInvalidColumnType,
			Message: err.Error(),
			Hint:    "Use a type name such as TEXT, INTEGER, REAL, BLOB, NUMERIC or VARCHAR(255).",
		}
	case errors.Is(err, ErrReservedTable):
		return http.StatusForbidden, APIError{
			Code:    CodeReservedTable,
			Message: err.Error(),
			Hint:    "Tables prefixed with '_brick_' or 'sqlite_' are reserved.",
		}
	case errors.Is(err, ErrMissingColumns):
		return http.StatusBadRequest, APIError{
			Code:    CodeMissingColumns,
			Message: err.Error(),
		}
	case errors.Is(err, ErrNoPrimaryKey):
		return http.StatusBadRequest, APIError{
			Code:    CodeNoPrimaryKey,
			Message: err.Error(),
			Hint:    "Rows can only be addressed in tables with a single-column primary key, an 'id' column, or a rowid.",
		}
	case errors.Is(err, ErrNotDocumentTable):
		return http.StatusBadRequest, APIError{
			Code:    CodeNotDocumentTable,
			Message: err.Error(),
			Hint:    "Document tables need position, content and is_title columns.",
		}
	case errors.Is(err, ErrRemoteDatabase):
		return http.StatusBadRequest, APIError{
			Code:    CodeRemoteDatabase,
			Message: err.Error(),
			Hint:    "Copy-and-brick only works on local database files. Use mode=overwrite instead.",
		}
	case errors.Is(err, ErrInvalidJSON):
		return http.StatusBadRequest, APIError{
			Code:    CodeInvalidJSON,
			Message: err.Error(),
		}
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, APIError{
			Code:    CodeInvalidRequest,
			Message: err.Error(),
		}
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge, APIError{
			Code:    CodeRequestTooLarge,
			Message: "request body too large",
			Hint:    "Raise BRICK_MAX_REQUEST_BODY if large documents are expected.",
		}
	case errors.Is(err, ErrTableExists):
		return http.StatusConflict, APIError{
			Code:    CodeTableExists,
			Message: err.Error(),
			Hint:    "Pick a different name or drop the existing table first.",
		}
	case errors.Is(err, ErrDestinationExists):
		return http.StatusConflict, APIError{
			Code:    CodeDestinationExists,
			Message: err.Error(),
			Hint:    "Copy-and-brick never overwrites an existing file. Choose another destination path.",
		}
	case errors.Is(err, ErrNotBricked):
		return http.StatusPreconditionFailed, APIError{
			Code:    CodeNotBricked,
			Message: err.Error(),
			Hint:    "Brick the database with POST /api/brick/up before storing preferences.",
		}
	case errors.Is(err, ErrCopyFailed):
		Logger.Error("copy and brick failed", "error", err.Error())
		return http.StatusInternalServerError, APIError{
			Code:    CodeCopyFailed,
			Message: err.Error(),
		}
	case errors.As(err, &engineErr):
		return http.StatusBadRequest, APIError{
			Code:    CodeEngineFailure,
			Message: engineErr.Err.Error(),
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, APIError{
			Code:    CodeServiceUnavailable,
			Message: err.Error(),
		}
	default:
		// Avoid exposing driver or filesystem details for unclassified errors.
		Logger.Error("unhandled error", "error", err.Error())
		return http.StatusInternalServerError, APIError{
			Code:    CodeInternalError,
			Message: "internal server error",
			Hint:    "An unexpected error occurred. Check server logs for details.",
		}
	}
}
