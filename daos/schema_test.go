package daos

import (
	"context"
	"errors"
	"testing"

	"github.com/joe-ervin05/brick/tools"
)

func TestSchemaOf(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	mustExec(t, db, `
	CREATE TABLE [test_makes] (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL DEFAULT 'unknown'
	);
	`, `
	CREATE TABLE [test_cars] (
		id INTEGER PRIMARY KEY,
		make_id INTEGER REFERENCES test_makes(id) ON DELETE CASCADE,
		model TEXT,
		year INTEGER
	);
	`)

	schema, err := db.SchemaOf(ctx, "test_cars")
	if err != nil {
		t.Fatal(err)
	}

	if len(schema.Columns) != 4 {
		t.Error("expected 4 columns but got", schema.Columns)
	}

	if schema.PrimaryKey != "id" {
		t.Error("expected primary key to be id but got", schema.PrimaryKey)
	}

	if len(schema.ForeignKeys) != 1 {
		t.Fatal("expected 1 foreign key but got", len(schema.ForeignKeys))
	}

	fk := schema.ForeignKeys[0]
	if fk.Table != "test_makes" || fk.From != "make_id" || fk.To == nil || *fk.To != "id" {
		t.Errorf("unexpected foreign key %+v", fk)
	}
	if fk.OnDelete != "CASCADE" {
		t.Error("expected ON DELETE CASCADE but got", fk.OnDelete)
	}

	makes, err := db.SchemaOf(ctx, "test_makes")
	if err != nil {
		t.Fatal(err)
	}
	name := makes.Columns[1]
	if name.NotNull != 1 || name.Default == nil || *name.Default != "'unknown'" {
		t.Errorf("unexpected column %+v", name)
	}
}

func TestSchemaOfRowidTable(t *testing.T) {
	db := setupTestDB(t)
	mustExec(t, db, "CREATE TABLE log (msg TEXT)")

	schema, err := db.SchemaOf(context.Background(), "log")
	if err != nil {
		t.Fatal(err)
	}

	// The implicit rowid is listed as id.
	if schema.PrimaryKey != "id" {
		t.Error("expected primary key to be id but got", schema.PrimaryKey)
	}
}

func TestSchemaOfIsCaseInsensitive(t *testing.T) {
	db := setupTestDB(t)
	mustExec(t, db, "CREATE TABLE Cars (id INTEGER PRIMARY KEY)")

	if _, err := db.SchemaOf(context.Background(), "cars"); err != nil {
		t.Error(err)
	}
}

func TestSchemaOfErrors(t *testing.T) {
	db := setupTestDB(t)

	tests := []struct {
		table   string
		wantErr error
	}{
		{"missing", tools.ErrTableNotFound},
		{"", tools.ErrEmptyIdentifier},
		{"sqlite_master", tools.ErrReservedTable},
		{"_brick_preferences", tools.ErrReservedTable},
	}

	for _, tt := range tests {
		_, err := db.SchemaOf(context.Background(), tt.table)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("SchemaOf(%q) error = %v, want %v", tt.table, err, tt.wantErr)
		}
	}
}

func TestListTablesEscapesPrefixes(t *testing.T) {
	db := setupTestDB(t)

	// LIKE would treat _ as a wildcard; these are ordinary user tables.
	mustExec(t, db,
		"CREATE TABLE sqliteish (id INTEGER)",
		"CREATE TABLE xbrickyard (id INTEGER)",
		"CREATE TABLE _brickyard (id INTEGER)",
	)

	tables, err := db.ListTables(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"_brickyard", "sqliteish", "xbrickyard"}
	if len(tables) != len(want) {
		t.Fatalf("ListTables() = %v, want %v", tables, want)
	}
	for i := range want {
		if tables[i] != want[i] {
			t.Errorf("ListTables()[%d] = %q, want %q", i, tables[i], want[i])
		}
	}
}
