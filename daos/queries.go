package daos

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/joe-ervin05/brick/config"
	"github.com/joe-ervin05/brick/tools"
)

// DateWindow restricts listed rows to those overlapping [Start, End).
// Bounds are ISO-8601 strings compared textually.
type DateWindow struct {
	Start string
	End   string
}

// ListQuery holds the inputs of ListRows. A negative Limit selects the
// configured default; a negative Offset is treated as zero.
type ListQuery struct {
	Limit   int
	Offset  int
	Filters []FilterCondition
	Window  *DateWindow
}

// RowPage is one page of rows plus the size of the whole filtered set.
type RowPage struct {
	Rows   []map[string]any `json:"rows"`
	Total  int64            `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

// selectList returns the column list for reading whole rows of schema.
// Columns are read through unary + so the driver sees no declared type and
// hands back the stored value; go-sqlite3 otherwise converts DATE, DATETIME,
// TIMESTAMP and BOOLEAN columns. Tables keyed by rowid expose it as "id" so
// clients can address rows uniformly.
func selectList(schema TableSchema) string {
	cols := make([]string, 0, len(schema.Columns)+1)
	if key, err := schema.RowKey(); err == nil && key == rowidKey {
		cols = append(cols, `rowid AS "id"`)
	}
	for _, col := range schema.Columns {
		quoted := tools.QuoteIdent(col.Name)
		cols = append(cols, "+"+quoted+" AS "+quoted)
	}
	return strings.Join(cols, ", ")
}

// ListRows returns a page of rows from table.
//
// Filters are compiled against the table's current columns. When a date
// window is given and the table has start_at and end_at columns, only rows
// overlapping the window are returned; total always counts the same filtered
// set regardless of limit and offset.
func (dao *Database) ListRows(ctx context.Context, table string, q ListQuery) (RowPage, error) {
	schema, err := dao.SchemaOf(ctx, table)
	if err != nil {
		return RowPage{}, err
	}

	limit := q.Limit
	if limit < 0 {
		limit = config.Cfg.DefaultLimit
	}
	offset := max(q.Offset, 0)

	where, args := CompileFilters(q.Filters, schema.ColumnSet())
	if w := q.Window; w != nil && w.Start != "" && w.End != "" && schema.HasColumn(ColStartAt) && schema.HasColumn(ColEndAt) {
		window := fmt.Sprintf("%s < ? AND (%s >= ? OR %s IS NULL)",
			tools.QuoteIdent(ColStartAt), tools.QuoteIdent(ColEndAt), tools.QuoteIdent(ColEndAt))
		if where != "" {
			where += " AND "
		}
		where += window
		args = append(args, w.End, w.Start)
	}
	if where != "" {
		where = " WHERE " + where
	}

	from := tools.QuoteIdent(table)

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", from, where)
	if err := dao.Client.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return RowPage{}, tools.EngineErr("count rows", err)
	}

	query := fmt.Sprintf("SELECT %s FROM %s%s LIMIT ? OFFSET ?", selectList(schema), from, where)
	rows, err := dao.QueryMap(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return RowPage{}, tools.EngineErr("select rows", err)
	}

	return RowPage{Rows: rows, Total: total, Limit: limit, Offset: offset}, nil
}

// sortedFields validates field names against schema and returns them sorted
// along with their bound values.
func sortedFields(schema TableSchema, fields map[string]any) ([]string, []any, error) {
	valid := schema.ColumnSet()
	names := make([]string, 0, len(fields))
	for name := range fields {
		if !valid[name] {
			return nil, nil, tools.ColumnNotFoundErr(schema.Name, name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	values := make([]any, len(names))
	for i, name := range names {
		v, err := bindValue(fields[name])
		if err != nil {
			return nil, nil, err
		}
		values[i] = v
	}
	return names, values, nil
}

// bindValue converts a decoded JSON value to a bind parameter. Objects and
// arrays are stored as JSON text.
func bindValue(v any) (any, error) {
	switch val := v.(type) {
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", tools.ErrInvalidJSON, err)
		}
		return string(b), nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i, nil
		}
		if f, err := val.Float64(); err == nil {
			return f, nil
		}
		return val.String(), nil
	default:
		return v, nil
	}
}

// CreateRow inserts fields into table and returns the new row's id.
// An empty field map inserts a row of column defaults.
func (dao *Database) CreateRow(ctx context.Context, table string, fields map[string]any) (int64, error) {
	schema, err := dao.SchemaOf(ctx, table)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", tools.QuoteIdent(table))
	var args []any
	if len(fields) > 0 {
		names, values, err := sortedFields(schema, fields)
		if err != nil {
			return 0, err
		}
		quoted := make([]string, len(names))
		for i, name := range names {
			quoted[i] = tools.QuoteIdent(name)
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
		query = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", tools.QuoteIdent(table), strings.Join(quoted, ", "), placeholders)
		args = values
	}

	res, err := dao.Client.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, tools.EngineErr("insert", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, tools.EngineErr("insert", err)
	}
	return id, nil
}

// GetRow returns the row of table whose row key equals id.
func (dao *Database) GetRow(ctx context.Context, table string, id any) (map[string]any, error) {
	schema, err := dao.SchemaOf(ctx, table)
	if err != nil {
		return nil, err
	}
	key, err := schema.RowKey()
	if err != nil {
		return nil, err
	}
	return dao.getRow(ctx, schema, key, id)
}

func (dao *Database) getRow(ctx context.Context, schema TableSchema, key string, id any) (map[string]any, error) {
	table := schema.Name
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", selectList(schema), tools.QuoteIdent(table), keyExpr(key))
	rows, err := dao.QueryMap(ctx, query, keyArg(key, id))
	if err != nil {
		return nil, tools.EngineErr("select row", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s %v", tools.ErrRowNotFound, table, id)
	}
	return rows[0], nil
}

// keyExpr renders the row key for use in a WHERE clause.
func keyExpr(key string) string {
	if key == rowidKey {
		return rowidKey
	}
	return tools.QuoteIdent(key)
}

// keyArg binds id for comparison with key. Declared key columns compare
// through their own affinity; rowid needs an integer.
func keyArg(key string, id any) any {
	if s, ok := id.(string); ok && key == rowidKey {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	}
	return id
}

// UpdateRow sets fields on the row of table addressed by id and returns the
// row as stored afterwards. A missing row is reported as tools.ErrRowNotFound.
func (dao *Database) UpdateRow(ctx context.Context, table string, id any, fields map[string]any) (map[string]any, error) {
	if len(fields) == 0 {
		return nil, tools.InvalidRequestErr("at least one field is required")
	}

	schema, err := dao.SchemaOf(ctx, table)
	if err != nil {
		return nil, err
	}
	key, err := schema.RowKey()
	if err != nil {
		return nil, err
	}

	names, values, err := sortedFields(schema, fields)
	if err != nil {
		return nil, err
	}
	set := make([]string, len(names))
	for i, name := range names {
		set[i] = tools.QuoteIdent(name) + " = ?"
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", tools.QuoteIdent(table), strings.Join(set, ", "), keyExpr(key))
	if _, err := dao.Client.ExecContext(ctx, query, append(values, keyArg(key, id))...); err != nil {
		return nil, tools.EngineErr("update", err)
	}

	// The key itself may have been changed by this update.
	if newID, ok := fields[key]; ok {
		id, _ = bindValue(newID)
	}
	return dao.getRow(ctx, schema, key, id)
}

// DeleteRow deletes the row of table addressed by id. Deleting a missing row
// succeeds.
func (dao *Database) DeleteRow(ctx context.Context, table string, id any) error {
	schema, err := dao.SchemaOf(ctx, table)
	if err != nil {
		return err
	}
	key, err := schema.RowKey()
	if err != nil {
		return err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", tools.QuoteIdent(table), keyExpr(key))
	if _, err := dao.Client.ExecContext(ctx, query, keyArg(key, id)); err != nil {
		return tools.EngineErr("delete", err)
	}
	return nil
}
