package api

import (
	"context"
	"net/http"

	"github.com/joe-ervin05/brick/daos"
	"github.com/joe-ervin05/brick/tools"
)

func handleListTables(mgr *daos.Manager) http.HandlerFunc {
	return withDB(mgr, func(ctx context.Context, db *daos.Database, req *http.Request) (any, error) {
		return db.ListTables(ctx)
	})
}

func handleCreateTable(mgr *daos.Manager) http.HandlerFunc {
	return withDBStatus(mgr, http.StatusCreated, func(ctx context.Context, db *daos.Database, req *http.Request) (any, error) {
		var body daos.CreateTableRequest
		if err := decodeJSON(req, &body); err != nil {
			return nil, err
		}
		if err := db.CreateTable(ctx, body); err != nil {
			return nil, err
		}
		return success{Success: true, Name: body.Name}, nil
	})
}

func handleDropTable(mgr *daos.Manager) http.HandlerFunc {
	return withDB(mgr, func(ctx context.Context, db *daos.Database, req *http.Request) (any, error) {
		if err := db.DropTable(ctx, req.PathValue("name")); err != nil {
			return nil, err
		}
		return ok, nil
	})
}

type renameRequest struct {
	NewName string `json:"newName"`
}

func handleRenameTable(mgr *daos.Manager) http.HandlerFunc {
	return withDB(mgr, func(ctx context.Context, db *daos.Database, req *http.Request) (any, error) {
		var body renameRequest
		if err := decodeJSON(req, &body); err != nil {
			return nil, err
		}
		if err := db.RenameTable(ctx, req.PathValue("name"), body.NewName); err != nil {
			return nil, err
		}
		return success{Success: true, Name: body.NewName}, nil
	})
}

func handleGetSchema(mgr *daos.Manager) http.HandlerFunc {
	return withDB(mgr, func(ctx context.Context, db *daos.Database, req *http.Request) (any, error) {
		return db.SchemaOf(ctx, req.PathValue("name"))
	})
}

// handleListRows serves a page of rows. Query parameters are lenient:
// malformed limit, offset or filters fall back to their defaults.
func handleListRows(mgr *daos.Manager) http.HandlerFunc {
	return withDB(mgr, func(ctx context.Context, db *daos.Database, req *http.Request) (any, error) {
		params := req.URL.Query()

		q := daos.ListQuery{
			Limit:   queryInt(req, "limit", -1),
			Offset:  queryInt(req, "offset", 0),
			Filters: daos.ParseFilters(params.Get("filters")),
		}
		start, end := params.Get("start_date"), params.Get("end_date")
		if start != "" && end != "" {
			q.Window = &daos.DateWindow{Start: start, End: end}
		}

		return db.ListRows(ctx, req.PathValue("name"), q)
	})
}

func handleCreateRow(mgr *daos.Manager) http.HandlerFunc {
	return withDBStatus(mgr, http.StatusCreated, func(ctx context.Context, db *daos.Database, req *http.Request) (any, error) {
		var fields map[string]any
		if err := decodeOptionalJSON(req, &fields); err != nil {
			return nil, err
		}
		id, err := db.CreateRow(ctx, req.PathValue("name"), fields)
		if err != nil {
			return nil, err
		}
		return success{Success: true, ID: id}, nil
	})
}

func handleUpdateRow(mgr *daos.Manager) http.HandlerFunc {
	return withDB(mgr, func(ctx context.Context, db *daos.Database, req *http.Request) (any, error) {
		var fields map[string]any
		if err := decodeJSON(req, &fields); err != nil {
			return nil, err
		}
		return db.UpdateRow(ctx, req.PathValue("name"), req.PathValue("id"), fields)
	})
}

func handleDeleteRow(mgr *daos.Manager) http.HandlerFunc {
	return withDB(mgr, func(ctx context.Context, db *daos.Database, req *http.Request) (any, error) {
		if err := db.DeleteRow(ctx, req.PathValue("name"), req.PathValue("id")); err != nil {
			return nil, err
		}
		return ok, nil
	})
}

type syncRequest struct {
	Blocks []daos.Block `json:"blocks"`
}

func handleSyncDocument(mgr *daos.Manager) http.HandlerFunc {
	return withDB(mgr, func(ctx context.Context, db *daos.Database, req *http.Request) (any, error) {
		var body syncRequest
		if err := decodeJSON(req, &body); err != nil {
			return nil, err
		}
		// A missing list would delete every block.
		if body.Blocks == nil {
			return nil, tools.InvalidRequestErr("blocks is required")
		}

		rows, err := db.SyncDocument(ctx, req.PathValue("name"), body.Blocks)
		if err != nil {
			return nil, err
		}
		return map[string]any{"rows": rows}, nil
	})
}
