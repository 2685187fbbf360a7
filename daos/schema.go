package daos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/joe-ervin05/brick/tools"
)

// rowidKey addresses rows of tables that declare no primary key.
const rowidKey = "rowid"

// Column is one row of PRAGMA table_xinfo. Field names follow the pragma so
// clients can consume the schema as-is.
type Column struct {
	CID     int     `json:"cid"`
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	NotNull int     `json:"notnull"`
	Default *string `json:"dflt_value"`
	PK      int     `json:"pk"` // 1-based position in the primary key, 0 if not part of it
}

// ForeignKey is one row of PRAGMA foreign_key_list.
type ForeignKey struct {
	ID       int     `json:"id"`
	Seq      int     `json:"seq"`
	Table    string  `json:"table"`
	From     string  `json:"from"`
	To       *string `json:"to"`
	OnUpdate string  `json:"on_update"`
	OnDelete string  `json:"on_delete"`
	Match    string  `json:"match"`
}

// TableSchema is the introspected shape of a single table.
type TableSchema struct {
	Name        string       `json:"-"`
	Columns     []Column     `json:"columns"`
	ForeignKeys []ForeignKey `json:"foreignKeys"`
	PrimaryKey  string       `json:"primaryKey,omitempty"`
}

// ColumnSet returns the set of column names.
func (s TableSchema) ColumnSet() map[string]bool {
	set := make(map[string]bool, len(s.Columns))
	for _, col := range s.Columns {
		set[col.Name] = true
	}
	return set
}

// HasColumn reports whether the table has a column named name.
func (s TableSchema) HasColumn(name string) bool {
	for _, col := range s.Columns {
		if col.Name == name {
			return true
		}
	}
	return false
}

// RowKey returns the column used to address single rows:
// the primary key if exactly one column is flagged, else a column named "id",
// else the implicit rowid for tables without any declared key.
// Tables with a composite key and no "id" column cannot be addressed.
func (s TableSchema) RowKey() (string, error) {
	var pks []string
	for _, col := range s.Columns {
		if col.PK > 0 {
			pks = append(pks, col.Name)
		}
	}

	switch {
	case len(pks) == 1:
		return pks[0], nil
	case s.HasColumn(ColID):
		return ColID, nil
	case len(pks) == 0:
		return rowidKey, nil
	default:
		return "", fmt.Errorf("%w: %s", tools.ErrNoPrimaryKey, s.Name)
	}
}

// ListTables returns user table names in name order. Engine-internal and
// reserved tables are excluded.
func (dao *Database) ListTables(ctx context.Context) ([]string, error) {
	rows, err := dao.Client.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite\_%' ESCAPE '\' AND name NOT LIKE '\_brick\_%' ESCAPE '\'
		ORDER BY name`)
	if err != nil {
		return nil, tools.EngineErr("list tables", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func tableExists(ctx context.Context, exec Executor, name string) (bool, error) {
	var found string
	err := exec.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ? COLLATE NOCASE", name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, tools.EngineErr("lookup table", err)
	}
	return true, nil
}

// resolveTable is the gate every operation on an existing table passes
// through: reserved names are refused before the catalog is consulted, and
// the name must belong to an existing table.
func resolveTable(ctx context.Context, exec Executor, name string) error {
	if name == "" {
		return tools.ErrEmptyIdentifier
	}
	if tools.IsReserved(name) {
		return tools.ReservedTableErr(name)
	}
	exists, err := tableExists(ctx, exec, name)
	if err != nil {
		return err
	}
	if !exists {
		return tools.TableNotFoundErr(name)
	}
	return nil
}

// SchemaOf returns the columns, foreign keys and row key of table.
// The catalog is read on every call.
func (dao *Database) SchemaOf(ctx context.Context, table string) (TableSchema, error) {
	return schemaOf(ctx, dao.Client, table)
}

func schemaOf(ctx context.Context, exec Executor, table string) (TableSchema, error) {
	if err := resolveTable(ctx, exec, table); err != nil {
		return TableSchema{}, err
	}

	cols, err := tableColumns(ctx, exec, table)
	if err != nil {
		return TableSchema{}, err
	}
	fks, err := tableForeignKeys(ctx, exec, table)
	if err != nil {
		return TableSchema{}, err
	}

	schema := TableSchema{Name: table, Columns: cols, ForeignKeys: fks}
	if key, err := schema.RowKey(); err == nil {
		schema.PrimaryKey = key
		if key == rowidKey {
			schema.PrimaryKey = ColID
		}
	}
	return schema, nil
}

// tableColumns lists the columns SELECT * would return: generated columns are
// included, hidden virtual table columns are not.
func tableColumns(ctx context.Context, exec Executor, table string) ([]Column, error) {
	rows, err := exec.QueryContext(ctx,
		`SELECT cid, name, type, "notnull", dflt_value, pk FROM pragma_table_xinfo(?) WHERE hidden <> 1 ORDER BY cid`, table)
	if err != nil {
		return nil, tools.EngineErr("table info", err)
	}
	defer rows.Close()

	cols := make([]Column, 0)
	for rows.Next() {
		var col Column
		var dflt sql.NullString
		if err := rows.Scan(&col.CID, &col.Name, &col.Type, &col.NotNull, &dflt, &col.PK); err != nil {
			return nil, err
		}
		if dflt.Valid {
			col.Default = &dflt.String
		}
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

func tableForeignKeys(ctx context.Context, exec Executor, table string) ([]ForeignKey, error) {
	rows, err := exec.QueryContext(ctx,
		`SELECT id, seq, "table", "from", "to", on_update, on_delete, "match" FROM pragma_foreign_key_list(?) ORDER BY id, seq`, table)
	if err != nil {
		return nil, tools.EngineErr("foreign key list", err)
	}
	defer rows.Close()

	fks := make([]ForeignKey, 0)
	for rows.Next() {
		var fk ForeignKey
		var to sql.NullString
		if err := rows.Scan(&fk.ID, &fk.Seq, &fk.Table, &fk.From, &to, &fk.OnUpdate, &fk.OnDelete, &fk.Match); err != nil {
			return nil, err
		}
		if to.Valid {
			fk.To = &to.String
		}
		fks = append(fks, fk)
	}
	return fks, rows.Err()
}
