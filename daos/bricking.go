package daos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/joe-ervin05/brick/tools"
)

// Preference is one row of the preferences table. Scope "" is global;
// otherwise it is usually a table name.
type Preference struct {
	Key   string `json:"key"`
	Scope string `json:"scope"`
	Value string `json:"value"`
}

// IsBricked reports whether the preferences table exists.
func (dao *Database) IsBricked(ctx context.Context) (bool, error) {
	return tableExists(ctx, dao.Client, ReservedTablePreferences)
}

// BrickUp adds the preferences table to the database in place. Bricking an
// already bricked database is a no-op.
func (dao *Database) BrickUp(ctx context.Context) error {
	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s %s", ReservedTablePreferences, preferencesSchema)
	if _, err := dao.Client.ExecContext(ctx, query); err != nil {
		return tools.EngineErr("brick up", err)
	}
	tools.Logger.Info("bricked database", "path", dao.Path)
	return nil
}

func (dao *Database) requireBricked(ctx context.Context) error {
	bricked, err := dao.IsBricked(ctx)
	if err != nil {
		return err
	}
	if !bricked {
		return tools.ErrNotBricked
	}
	return nil
}

// Preferences returns stored preferences. A non-nil scope restricts the
// result to exactly that scope, including the global scope "".
func (dao *Database) Preferences(ctx context.Context, scope *string) ([]Preference, error) {
	if err := dao.requireBricked(ctx); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT key, scope, value FROM %s", ReservedTablePreferences)
	var args []any
	if scope != nil {
		query += " WHERE scope = ?"
		args = append(args, *scope)
	}
	query += " ORDER BY scope, key"

	rows, err := dao.Client.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, tools.EngineErr("select preferences", err)
	}
	defer rows.Close()

	prefs := make([]Preference, 0)
	for rows.Next() {
		var p Preference
		var key, sc, value *string
		if err := rows.Scan(&key, &sc, &value); err != nil {
			return nil, err
		}
		p.Key, p.Scope, p.Value = deref(key), deref(sc), deref(value)
		prefs = append(prefs, p)
	}
	return prefs, rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// SetPreference upserts the value of (key, scope). Strings are stored as-is;
// any other JSON value is stored as its JSON text.
func (dao *Database) SetPreference(ctx context.Context, key, scope string, value json.RawMessage) error {
	if err := dao.requireBricked(ctx); err != nil {
		return err
	}
	if key == "" {
		return tools.InvalidRequestErr("key is required")
	}
	if len(value) == 0 {
		return tools.InvalidRequestErr("value is required")
	}

	stored, err := preferenceText(value)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("INSERT OR REPLACE INTO %s (key, scope, value) VALUES (?, ?, ?)", ReservedTablePreferences)
	if _, err := dao.Client.ExecContext(ctx, query, key, scope, stored); err != nil {
		return tools.EngineErr("upsert preference", err)
	}
	return nil
}

// preferenceText converts a raw JSON value to its stored text.
func preferenceText(value json.RawMessage) (string, error) {
	value = bytes.TrimSpace(value)
	if len(value) > 0 && value[0] == '"' {
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return "", fmt.Errorf("%w: preference value: %v", tools.ErrInvalidJSON, err)
		}
		return s, nil
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, value); err != nil {
		return "", fmt.Errorf("%w: preference value: %v", tools.ErrInvalidJSON, err)
	}
	return buf.String(), nil
}

// DeletePreference removes (key, scope). Removing an absent pair succeeds.
func (dao *Database) DeletePreference(ctx context.Context, key, scope string) error {
	if err := dao.requireBricked(ctx); err != nil {
		return err
	}
	if key == "" {
		return tools.InvalidRequestErr("key is required")
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE key = ? AND scope = ?", ReservedTablePreferences)
	if _, err := dao.Client.ExecContext(ctx, query, key, scope); err != nil {
		return tools.EngineErr("delete preference", err)
	}
	return nil
}
