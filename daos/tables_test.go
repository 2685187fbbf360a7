package daos

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joe-ervin05/brick/tools"
)

func TestCreateTableRejectsBadNames(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	mustExec(t, db, "CREATE TABLE y (id INTEGER PRIMARY KEY)")

	tests := []struct {
		name    string
		table   string
		wantErr error
	}{
		{"statement injection", "x; DROP TABLE y", tools.ErrInvalidCharacter},
		{"double quote", `x"y`, tools.ErrInvalidCharacter},
		{"single quote", "x'y", tools.ErrInvalidCharacter},
		{"empty", "", tools.ErrEmptyIdentifier},
		{"brick prefix", "_brick_things", tools.ErrReservedTable},
		{"engine prefix", "sqlite_things", tools.ErrReservedTable},
		{"duplicate", "y", tools.ErrTableExists},
		{"duplicate different case", "Y", tools.ErrTableExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := db.CreateTable(ctx, CreateTableRequest{
				Name:    tt.table,
				Columns: []ColumnDef{{Name: "a"}},
			})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	tables, err := db.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"y"}, tables)
}

func TestCreateFreeformTableValidation(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	tests := []struct {
		name    string
		cols    []ColumnDef
		wantErr error
	}{
		{"no columns", nil, tools.ErrMissingColumns},
		{"bad column name", []ColumnDef{{Name: "a b"}}, tools.ErrInvalidCharacter},
		{"bad column type", []ColumnDef{{Name: "a", Type: "TEXT); DROP TABLE y; --"}}, tools.ErrInvalidColumnType},
		{"two primary keys", []ColumnDef{{Name: "a", Type: "INTEGER", PK: true}, {Name: "b", Type: "INTEGER", PK: true}}, tools.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := db.CreateTable(ctx, CreateTableRequest{Name: "t", Columns: tt.cols})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	err := db.CreateTable(ctx, CreateTableRequest{Name: "t", Type: "spreadsheet"})
	assert.ErrorIs(t, err, tools.ErrInvalidRequest)
}

func TestCreateFreeformTableDefaultsToText(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	require.NoError(t, db.CreateTable(ctx, CreateTableRequest{
		Name:    "t",
		Type:    ModeFreeform,
		Columns: []ColumnDef{{Name: "id", Type: "INTEGER", PK: true}, {Name: "note"}, {Name: "price", Type: "VARCHAR(255)"}},
	}))

	schema, err := db.SchemaOf(ctx, "t")
	require.NoError(t, err)
	require.Len(t, schema.Columns, 3)
	assert.Equal(t, 1, schema.Columns[0].PK)
	assert.Equal(t, "TEXT", schema.Columns[1].Type)
	assert.Equal(t, "VARCHAR(255)", schema.Columns[2].Type)
	assert.Equal(t, "id", schema.PrimaryKey)
}

func TestCreateCalendarIgnoresColumns(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	require.NoError(t, db.CreateTable(ctx, CreateTableRequest{
		Name:    "events",
		Type:    ModeCalendar,
		Columns: []ColumnDef{{Name: "whatever"}},
	}))

	schema, err := db.SchemaOf(ctx, "events")
	require.NoError(t, err)

	names := make([]string, len(schema.Columns))
	for i, c := range schema.Columns {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"id", "title", "start_at", "end_at", "description", "color"}, names)
}

func TestCreateDocumentInsertsTitleBlock(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	require.NoError(t, db.CreateTable(ctx, CreateTableRequest{Name: "notes", Type: ModeDocument, Title: "My Notes"}))
	require.NoError(t, db.CreateTable(ctx, CreateTableRequest{Name: "blank", Type: ModeDocument}))

	page, err := db.ListRows(ctx, "notes", ListQuery{Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "My Notes", page.Rows[0]["content"])
	assert.Equal(t, int64(1), page.Rows[0]["is_title"])
	assert.Equal(t, 1.0, page.Rows[0]["position"])

	page, err = db.ListRows(ctx, "blank", ListQuery{Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, DefaultDocumentTitle, page.Rows[0]["content"])
}

func TestListTablesHidesReserved(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	mustExec(t, db,
		"CREATE TABLE zeta (id INTEGER PRIMARY KEY AUTOINCREMENT)",
		"CREATE TABLE alpha (id INTEGER)",
		"INSERT INTO zeta DEFAULT VALUES",
	)
	require.NoError(t, db.BrickUp(ctx))

	tables, err := db.ListTables(ctx)
	require.NoError(t, err)
	// sqlite_sequence exists because of AUTOINCREMENT.
	assert.Equal(t, []string{"alpha", "zeta"}, tables)
}

func TestDropTable(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	mustExec(t, db, "CREATE TABLE t (id INTEGER PRIMARY KEY)")

	assert.ErrorIs(t, db.DropTable(ctx, "missing"), tools.ErrTableNotFound)
	assert.ErrorIs(t, db.DropTable(ctx, "sqlite_master"), tools.ErrReservedTable)
	assert.ErrorIs(t, db.DropTable(ctx, "_brick_preferences"), tools.ErrReservedTable)

	require.NoError(t, db.DropTable(ctx, "t"))
	tables, err := db.ListTables(ctx)
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestDropTableRemovesScopedPreferences(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	mustExec(t, db, "CREATE TABLE t (id INTEGER PRIMARY KEY)")
	require.NoError(t, db.BrickUp(ctx))
	require.NoError(t, db.SetPreference(ctx, "color", "t", json.RawMessage(`"cyan"`)))
	require.NoError(t, db.SetPreference(ctx, "theme", "", json.RawMessage(`"dark"`)))

	require.NoError(t, db.DropTable(ctx, "t"))

	prefs, err := db.Preferences(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []Preference{{Key: "theme", Scope: "", Value: "dark"}}, prefs)
}

func TestRenameTable(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	mustExec(t, db,
		"CREATE TABLE old (id INTEGER PRIMARY KEY)",
		"CREATE TABLE taken (id INTEGER PRIMARY KEY)",
	)

	assert.ErrorIs(t, db.RenameTable(ctx, "old", "taken"), tools.ErrTableExists)
	assert.ErrorIs(t, db.RenameTable(ctx, "old", "bad name"), tools.ErrInvalidCharacter)
	assert.ErrorIs(t, db.RenameTable(ctx, "old", "_brick_x"), tools.ErrReservedTable)
	assert.ErrorIs(t, db.RenameTable(ctx, "missing", "fresh"), tools.ErrTableNotFound)
	assert.NoError(t, db.RenameTable(ctx, "old", "old"))

	// Unbricked databases rename fine.
	require.NoError(t, db.RenameTable(ctx, "old", "fresh"))
	tables, err := db.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh", "taken"}, tables)
}

func TestRenameTableMigratesPreferences(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	mustExec(t, db, "CREATE TABLE old (id INTEGER PRIMARY KEY)")
	require.NoError(t, db.BrickUp(ctx))
	require.NoError(t, db.SetPreference(ctx, "color", "old", json.RawMessage(`"cyan"`)))

	require.NoError(t, db.RenameTable(ctx, "old", "new"))

	newScope, oldScope := "new", "old"
	prefs, err := db.Preferences(ctx, &newScope)
	require.NoError(t, err)
	assert.Equal(t, []Preference{{Key: "color", Scope: "new", Value: "cyan"}}, prefs)

	prefs, err = db.Preferences(ctx, &oldScope)
	require.NoError(t, err)
	assert.Empty(t, prefs)
}

func TestRenameTableChangesCase(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	mustExec(t, db, "CREATE TABLE Notes (id INTEGER PRIMARY KEY, body TEXT)", "INSERT INTO Notes (body) VALUES ('kept')")
	require.NoError(t, db.BrickUp(ctx))
	require.NoError(t, db.SetPreference(ctx, "color", "Notes", json.RawMessage(`"cyan"`)))

	require.NoError(t, db.RenameTable(ctx, "Notes", "notes"))

	tables, err := db.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"notes"}, tables)

	page, err := db.ListRows(ctx, "notes", ListQuery{Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "kept", page.Rows[0]["body"])

	scope := "notes"
	prefs, err := db.Preferences(ctx, &scope)
	require.NoError(t, err)
	assert.Equal(t, []Preference{{Key: "color", Scope: "notes", Value: "cyan"}}, prefs)
}
