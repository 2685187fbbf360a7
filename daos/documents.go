package daos

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/joe-ervin05/brick/tools"
)

// Block is one unit of document content as sent by the editor.
// Blocks without an ID are new.
type Block struct {
	ID       *int64         `json:"id,omitempty"`
	Position float64        `json:"position"`
	Content  string         `json:"content"`
	IsTitle  bool           `json:"is_title"`
	Type     string         `json:"type,omitempty"`
	Attrs    map[string]any `json:"attrs,omitempty"`
}

// ensureBlockColumns adds the type and attrs columns to document tables
// created before blocks carried them. It is idempotent.
func ensureBlockColumns(ctx context.Context, exec Executor, table string, schema TableSchema) error {
	alters := []struct {
		name string
		def  string
	}{
		{ColType, "TEXT NOT NULL DEFAULT 'paragraph'"},
		{ColAttrs, "TEXT"},
	}

	for _, col := range alters {
		if schema.HasColumn(col.name) {
			continue
		}
		query := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", tools.QuoteIdent(table), tools.QuoteIdent(col.name), col.def)
		if _, err := exec.ExecContext(ctx, query); err != nil && !strings.Contains(err.Error(), "duplicate column name") {
			return tools.EngineErr("add column "+col.name, err)
		}
	}
	return nil
}

// SyncDocument makes the rows of a document table match blocks exactly and
// returns the stored rows ordered by position.
//
// Rows whose id is absent from blocks are deleted, blocks with a known id
// update their row, and all other blocks are inserted. The reconciliation
// runs in a single transaction.
func (dao *Database) SyncDocument(ctx context.Context, table string, blocks []Block) ([]map[string]any, error) {
	schema, err := dao.SchemaOf(ctx, table)
	if err != nil {
		return nil, err
	}
	for _, col := range []string{ColID, ColPosition, ColContent, ColIsTitle} {
		if !schema.HasColumn(col) {
			return nil, fmt.Errorf("%w: %s has no %s column", tools.ErrNotDocumentTable, table, col)
		}
	}

	if err := ensureBlockColumns(ctx, dao.Client, table, schema); err != nil {
		return nil, err
	}

	quoted := tools.QuoteIdent(table)
	err = dao.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := blockIDs(ctx, tx, quoted)
		if err != nil {
			return err
		}

		incoming := make(map[int64]bool, len(blocks))
		for _, b := range blocks {
			if b.ID != nil {
				incoming[*b.ID] = true
			}
		}

		for id := range existing {
			if incoming[id] {
				continue
			}
			if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", quoted), id); err != nil {
				return tools.EngineErr("delete block", err)
			}
		}

		update := fmt.Sprintf("UPDATE %s SET position = ?, content = ?, is_title = ?, type = ?, attrs = ? WHERE id = ?", quoted)
		insert := fmt.Sprintf("INSERT INTO %s (position, content, is_title, type, attrs) VALUES (?, ?, ?, ?, ?)", quoted)

		for _, b := range blocks {
			typ, attrs, err := blockFields(b)
			if err != nil {
				return err
			}
			isTitle := 0
			if b.IsTitle {
				isTitle = 1
			}

			if b.ID != nil && existing[*b.ID] {
				_, err = tx.ExecContext(ctx, update, b.Position, b.Content, isTitle, typ, attrs, *b.ID)
			} else {
				_, err = tx.ExecContext(ctx, insert, b.Position, b.Content, isTitle, typ, attrs)
			}
			if err != nil {
				return tools.EngineErr("write block", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Re-read so columns added by ensureBlockColumns are selected.
	schema, err = dao.SchemaOf(ctx, table)
	if err != nil {
		return nil, err
	}
	rows, err := dao.QueryMap(ctx, fmt.Sprintf("SELECT %s FROM %s ORDER BY position", selectList(schema), quoted))
	if err != nil {
		return nil, tools.EngineErr("select blocks", err)
	}
	return rows, nil
}

func blockIDs(ctx context.Context, tx *sql.Tx, quotedTable string) (map[int64]bool, error) {
	rows, err := tx.QueryContext(ctx, fmt.Sprintf("SELECT id FROM %s", quotedTable))
	if err != nil {
		return nil, tools.EngineErr("select block ids", err)
	}
	defer rows.Close()

	ids := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// blockFields returns the stored type and attrs of b. Empty attrs are NULL.
func blockFields(b Block) (string, any, error) {
	typ := b.Type
	if typ == "" {
		typ = DefaultBlockType
	}
	if len(b.Attrs) == 0 {
		return typ, nil, nil
	}
	attrs, err := json.Marshal(b.Attrs)
	if err != nil {
		return "", nil, fmt.Errorf("%w: block attrs: %v", tools.ErrInvalidJSON, err)
	}
	return typ, string(attrs), nil
}
