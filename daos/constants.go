// Package daos provides constants used throughout the data access layer.
package daos

// Column types used by the fixed table schemas.
const (
	ColTypeText    = "TEXT"
	ColTypeInteger = "INTEGER"
	ColTypeReal    = "REAL"
	ColTypeBlob    = "BLOB"
)

// Filter operators accepted by CompileFilters.
const (
	OpEq        = "="
	OpNeq       = "<>"
	OpGt        = ">"
	OpGte       = ">="
	OpLt        = "<"
	OpLte       = "<="
	OpLike      = "like"
	OpNotLike   = "not_like"
	OpIn        = "in"
	OpIsNull    = "is_null"
	OpIsNotNull = "is_not_null"
)

// Table creation modes.
const (
	ModeFreeform = "table"
	ModeCalendar = "calendar"
	ModeDocument = "document"
)

// Brick-up modes.
const (
	BrickModeOverwrite = "overwrite"
	BrickModeCopy      = "copy"
)

// ReservedTablePreferences holds per-database preferences once a database is bricked.
const ReservedTablePreferences = "_brick_preferences"

// DefaultDocumentTitle is the title block content when none is supplied.
const DefaultDocumentTitle = "Untitled"

// DefaultBlockType is the block type stored when a block omits one.
const DefaultBlockType = "paragraph"

// Calendar and document columns the engine relies on.
const (
	ColStartAt  = "start_at"
	ColEndAt    = "end_at"
	ColPosition = "position"
	ColContent  = "content"
	ColIsTitle  = "is_title"
	ColType     = "type"
	ColAttrs    = "attrs"
	ColID       = "id"
)

// calendarSchema is the column list of calendar tables.
const calendarSchema = `(
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	start_at TEXT NOT NULL,
	end_at TEXT,
	description TEXT,
	color TEXT
)`

// documentSchema is the column list of document tables. Each row is a block.
const documentSchema = `(
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	position REAL NOT NULL,
	content TEXT NOT NULL DEFAULT '',
	is_title INTEGER NOT NULL DEFAULT 0,
	type TEXT NOT NULL DEFAULT 'paragraph',
	attrs TEXT
)`

// preferencesSchema is the column list of the reserved preferences table.
const preferencesSchema = `(
	key TEXT,
	scope TEXT DEFAULT '',
	value TEXT,
	PRIMARY KEY (key, scope)
)`
