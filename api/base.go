// Package api exposes the database browser over HTTP.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/joe-ervin05/brick/daos"
	"github.com/joe-ervin05/brick/tools"
)

// Run registers all API routes on the provided ServeMux.
//
// Routes:
//   - GET/POST /api/config - Active database path
//   - GET/POST /api/tables - List and create tables
//   - DELETE /api/tables/{name} - Drop a table
//   - PUT /api/tables/{name}/rename - Rename a table
//   - GET /api/tables/{name}/schema - Columns, foreign keys and row key
//   - GET/POST /api/tables/{name} - List and create rows
//   - PUT/DELETE /api/tables/{name}/{id} - Update and delete rows
//   - PUT /api/tables/{name}/sync - Replace the blocks of a document table
//   - GET /api/brick/status, POST /api/brick/up - Bricking
//   - GET/PUT/DELETE /api/brick/preferences - Preferences of a bricked database
//   - GET /health, GET /metrics - Operational endpoints (no auth required)
func Run(app *http.ServeMux, mgr *daos.Manager) {
	// Operational endpoints
	app.HandleFunc("GET /health", handleHealth(mgr))
	app.Handle("GET /metrics", tools.MetricsHandler())

	// Configuration
	app.HandleFunc("GET /api/config", handleGetConfig(mgr))
	app.HandleFunc("POST /api/config", handleSetConfig(mgr))

	// Table lifecycle
	app.HandleFunc("GET /api/tables", handleListTables(mgr))
	app.HandleFunc("POST /api/tables", handleCreateTable(mgr))
	app.HandleFunc("DELETE /api/tables/{name}", handleDropTable(mgr))
	app.HandleFunc("PUT /api/tables/{name}/rename", handleRenameTable(mgr))
	app.HandleFunc("GET /api/tables/{name}/schema", handleGetSchema(mgr))

	// Rows
	app.HandleFunc("GET /api/tables/{name}", handleListRows(mgr))
	app.HandleFunc("POST /api/tables/{name}", handleCreateRow(mgr))
	app.HandleFunc("PUT /api/tables/{name}/{id}", handleUpdateRow(mgr))
	app.HandleFunc("DELETE /api/tables/{name}/{id}", handleDeleteRow(mgr))
	app.HandleFunc("PUT /api/tables/{name}/sync", handleSyncDocument(mgr))

	// Bricking
	app.HandleFunc("GET /api/brick/status", handleBrickStatus(mgr))
	app.HandleFunc("POST /api/brick/up", handleBrickUp(mgr))
	app.HandleFunc("GET /api/brick/preferences", handleGetPreferences(mgr))
	app.HandleFunc("PUT /api/brick/preferences", handleSetPreference(mgr))
	app.HandleFunc("DELETE /api/brick/preferences", handleDeletePreference(mgr))
}

// handleHealth reports liveness. An unconfigured server is healthy; a
// configured database that cannot be reached is not.
func handleHealth(mgr *daos.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if mgr.DBPath() == "" {
			tools.RespJSON(w, http.StatusOK, map[string]any{"status": "healthy", "connected": false})
			return
		}

		db, release, err := mgr.Acquire(r.Context())
		if err != nil {
			tools.RespJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unhealthy", "error": "database connection failed"})
			return
		}
		defer release()

		if err := db.Client.PingContext(r.Context()); err != nil {
			tools.RespJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unhealthy", "error": "database ping failed"})
			return
		}

		tools.RespJSON(w, http.StatusOK, map[string]any{"status": "healthy", "connected": true})
	}
}

func handleGetConfig(mgr *daos.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var path any
		if p := mgr.DBPath(); p != "" {
			path = p
		}
		tools.RespJSON(w, http.StatusOK, map[string]any{"dbPath": path})
	}
}

type setConfigRequest struct {
	DBPath string `json:"dbPath"`
}

// handleSetConfig opens the requested database and, once it is open,
// persists it as the active path.
func handleSetConfig(mgr *daos.Manager) http.HandlerFunc {
	return withBody(func(ctx context.Context, req *http.Request) (any, error) {
		var body setConfigRequest
		if err := decodeJSON(req, &body); err != nil {
			return nil, err
		}
		path := strings.TrimSpace(body.DBPath)
		if err := mgr.Use(ctx, path); err != nil {
			return nil, err
		}
		tools.Logger.Info("active database changed", "path", path)
		return success{Success: true, DBPath: path}, nil
	})
}
