package tools

import (
	"fmt"
	"regexp"
	"strings"
)

// Constants for identifier validation.
const (
	MaxIdentifierLength = 128
	MaxTypeNameLength   = 64
)

// ReservedPrefixes lists table name prefixes that user operations may never
// create, rename into, or drop. Matching is case-insensitive because the
// engine treats table names that way.
var ReservedPrefixes = []string{"_brick_", "sqlite_"}

var (
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	// Type names: one or more words, optionally followed by (n) or (n, m).
	typeNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*( [A-Za-z][A-Za-z0-9_]*)*(\(\s*[+-]?\d+\s*(,\s*[+-]?\d+\s*)?\))?$`)
)

// ValidateIdentifier validates a table or column name.
// Returns nil if valid, or an error describing the problem.
func ValidateIdentifier(name string) error {
	if name == "" {
		return ErrEmptyIdentifier
	}
	if len(name) > MaxIdentifierLength {
		return fmt.Errorf("%w: %d characters (max %d)", ErrIdentifierTooLong, len(name), MaxIdentifierLength)
	}
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidCharacter, name)
	}
	return nil
}

// IsReserved reports whether name starts with a reserved prefix.
func IsReserved(name string) bool {
	lower := strings.ToLower(name)
	for _, prefix := range ReservedPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// ValidateTableName validates a table name supplied for creation or as a
// rename target. Malformed names fail before reserved ones.
func ValidateTableName(name string) error {
	if err := ValidateIdentifier(name); err != nil {
		return fmt.Errorf("invalid table name %q: %w", name, err)
	}
	if IsReserved(name) {
		return ReservedTableErr(name)
	}
	return nil
}

// ValidateColumnName validates a column name.
func ValidateColumnName(name string) error {
	if err := ValidateIdentifier(name); err != nil {
		return fmt.Errorf("invalid column name %q: %w", name, err)
	}
	return nil
}

// ValidateColumnType validates a declared column type such as "TEXT" or
// "VARCHAR(255)". The engine accepts nearly any type name, so only the shape
// is checked.
func ValidateColumnType(column, typeName string) error {
	if len(typeName) > MaxTypeNameLength || !typeNamePattern.MatchString(typeName) {
		return InvalidTypeErr(column, typeName)
	}
	return nil
}

// QuoteIdent quotes an identifier for interpolation into SQL text.
// Embedded double quotes are doubled.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
