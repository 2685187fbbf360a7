package daos

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/joe-ervin05/brick/tools"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// Database is an open handle to the active SQLite or libSQL database.
// Table and column names are never cached; every operation re-reads the
// catalog so out-of-band schema changes are seen immediately.
type Database struct {
	Client *sql.DB // SQL database connection
	Path   string  // Configured path or URL the handle was opened from
}

// Executor is satisfied by *sql.DB and *sql.Tx so query helpers can run
// inside or outside a transaction.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

var remotePrefixes = []string{"libsql://", "http://", "https://", "ws://", "wss://"}

// IsRemote reports whether path names a remote libSQL database rather than a
// local file.
func IsRemote(path string) bool {
	for _, prefix := range remotePrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// localDSN builds the go-sqlite3 DSN for a local file. mode=rw keeps the
// driver from silently creating a new empty database.
func localDSN(path string) string {
	return "file:" + path + "?mode=rw&_busy_timeout=5000&_txlock=immediate"
}

// openDatabase opens and verifies a handle for path.
func openDatabase(ctx context.Context, path string) (*Database, error) {
	driver, dsn := "sqlite3", localDSN(path)
	if IsRemote(path) {
		driver, dsn = "libsql", path
	} else {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", tools.ErrDatabaseNotFound, path)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%w: %s is a directory", tools.ErrInvalidDatabase, path)
		}
	}

	client, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", tools.ErrInvalidDatabase, path, err)
	}

	if err := client.PingContext(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %s: %v", tools.ErrInvalidDatabase, path, err)
	}

	// Ping alone does not read the file header; touching the catalog does.
	var n int
	if err := client.QueryRowContext(ctx, "SELECT count(*) FROM sqlite_master").Scan(&n); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %s: %v", tools.ErrInvalidDatabase, path, err)
	}

	return &Database{Client: client, Path: path}, nil
}

// QueryMap executes a query and returns results as a slice of maps.
func (dao *Database) QueryMap(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	return queryMap(ctx, dao.Client, query, args...)
}

func queryMap(ctx context.Context, exec Executor, query string, args ...any) ([]map[string]any, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	results := make([]map[string]any, 0)

	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// withTx runs fn inside a transaction, committing on success.
func (dao *Database) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := dao.Client.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
