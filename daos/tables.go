package daos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/joe-ervin05/brick/tools"
)

// ColumnDef describes one column of a freeform table.
type ColumnDef struct {
	Name string `json:"name"`
	Type string `json:"type"`
	PK   bool   `json:"pk,omitempty"`
}

// CreateTableRequest is the body of a create table request. Type selects the
// mode: "table" (or empty) for freeform columns, "calendar" or "document"
// for the fixed schemas. Columns is only read in freeform mode and Title only
// in document mode.
type CreateTableRequest struct {
	Name    string      `json:"name"`
	Type    string      `json:"type,omitempty"`
	Columns []ColumnDef `json:"columns,omitempty"`
	Title   string      `json:"title,omitempty"`
}

// CreateTable creates a table in one of the three modes.
func (dao *Database) CreateTable(ctx context.Context, req CreateTableRequest) error {
	if err := tools.ValidateTableName(req.Name); err != nil {
		return err
	}

	var def string
	switch req.Type {
	case "", ModeFreeform:
		cols, err := freeformColumns(req.Columns)
		if err != nil {
			return err
		}
		def = cols
	case ModeCalendar:
		def = calendarSchema
	case ModeDocument:
		def = documentSchema
	default:
		return tools.InvalidRequestErr(fmt.Sprintf("unknown table type %q", req.Type))
	}

	return dao.withTx(ctx, func(tx *sql.Tx) error {
		exists, err := tableExists(ctx, tx, req.Name)
		if err != nil {
			return err
		}
		if exists {
			return tools.TableExistsErr(req.Name)
		}

		if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s %s", tools.QuoteIdent(req.Name), def)); err != nil {
			return tools.EngineErr("create table", err)
		}

		if req.Type == ModeDocument {
			title := req.Title
			if strings.TrimSpace(title) == "" {
				title = DefaultDocumentTitle
			}
			_, err := tx.ExecContext(ctx, fmt.Sprintf(
				"INSERT INTO %s (position, content, is_title, type) VALUES (?, ?, 1, ?)", tools.QuoteIdent(req.Name)),
				1.0, title, DefaultBlockType)
			if err != nil {
				return tools.EngineErr("insert title block", err)
			}
		}
		return nil
	})
}

// freeformColumns renders the column list of a freeform table. At most one
// column may be the primary key.
func freeformColumns(cols []ColumnDef) (string, error) {
	if len(cols) == 0 {
		return "", tools.ErrMissingColumns
	}

	defs := make([]string, len(cols))
	pks := 0
	for i, col := range cols {
		if err := tools.ValidateColumnName(col.Name); err != nil {
			return "", err
		}
		typ := strings.TrimSpace(col.Type)
		if typ == "" {
			typ = ColTypeText
		}
		if err := tools.ValidateColumnType(col.Name, typ); err != nil {
			return "", err
		}

		defs[i] = tools.QuoteIdent(col.Name) + " " + typ
		if col.PK {
			pks++
			defs[i] += " PRIMARY KEY"
			// AUTOINCREMENT is only legal on INTEGER PRIMARY KEY.
			if strings.EqualFold(typ, ColTypeInteger) {
				defs[i] += " AUTOINCREMENT"
			}
		}
	}
	if pks > 1 {
		return "", tools.InvalidRequestErr("only one column can be the primary key")
	}

	return "(" + strings.Join(defs, ", ") + ")", nil
}

// DropTable drops table. Preferences scoped to it are removed when the
// database is bricked.
func (dao *Database) DropTable(ctx context.Context, table string) error {
	if err := resolveTable(ctx, dao.Client, table); err != nil {
		return err
	}

	if _, err := dao.Client.ExecContext(ctx, "DROP TABLE "+tools.QuoteIdent(table)); err != nil {
		return tools.EngineErr("drop table", err)
	}

	if _, err := dao.Client.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE scope = ?", ReservedTablePreferences), table); err != nil {
		// Unbricked databases have no preferences table.
		tools.Logger.Debug("skipped preference cleanup", "table", table, "error", err.Error())
	}
	return nil
}

// renameTempTable is the intermediate name of case-only renames.
const renameTempTable = "_brick_rename"

// RenameTable renames table to newName and moves preferences scoped to the
// old name. Renaming a table to its own name succeeds without changes.
func (dao *Database) RenameTable(ctx context.Context, table, newName string) error {
	if err := resolveTable(ctx, dao.Client, table); err != nil {
		return err
	}
	if err := tools.ValidateTableName(newName); err != nil {
		return err
	}
	if newName == table {
		return nil
	}

	// The engine looks names up case-insensitively, so a case-only rename
	// collides with the table itself and goes through a temporary name.
	steps := []string{tools.QuoteIdent(newName)}
	if strings.EqualFold(newName, table) {
		steps = []string{tools.QuoteIdent(renameTempTable), tools.QuoteIdent(newName)}
	} else {
		exists, err := tableExists(ctx, dao.Client, newName)
		if err != nil {
			return err
		}
		if exists {
			return tools.TableExistsErr(newName)
		}
	}

	err := dao.withTx(ctx, func(tx *sql.Tx) error {
		from := tools.QuoteIdent(table)
		for _, to := range steps {
			if _, err := tx.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s RENAME TO %s", from, to)); err != nil {
				return tools.EngineErr("rename table", err)
			}
			from = to
		}
		return nil
	})
	if err != nil {
		return err
	}

	if _, err := dao.Client.ExecContext(ctx,
		fmt.Sprintf("UPDATE OR REPLACE %s SET scope = ? WHERE scope = ?", ReservedTablePreferences), newName, table); err != nil {
		tools.Logger.Debug("skipped preference migration", "table", table, "error", err.Error())
	}
	return nil
}
