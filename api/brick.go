package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/joe-ervin05/brick/daos"
	"github.com/joe-ervin05/brick/tools"
)

func handleBrickStatus(mgr *daos.Manager) http.HandlerFunc {
	return withDB(mgr, func(ctx context.Context, db *daos.Database, req *http.Request) (any, error) {
		bricked, err := db.IsBricked(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]bool{"bricked": bricked}, nil
	})
}

type brickUpRequest struct {
	Mode     string `json:"mode"`
	DestPath string `json:"destPath"`
}

// handleBrickUp bricks the active database in place, or bricks a copy of it
// and switches to the copy. Copy mode replaces the handle, so it must not run
// while this request holds one.
func handleBrickUp(mgr *daos.Manager) http.HandlerFunc {
	return withBody(func(ctx context.Context, req *http.Request) (any, error) {
		var body brickUpRequest
		if err := decodeJSON(req, &body); err != nil {
			return nil, err
		}

		switch body.Mode {
		case daos.BrickModeCopy:
			if err := mgr.CopyAndBrick(ctx, body.DestPath); err != nil {
				return nil, err
			}
			return success{Success: true, DBPath: body.DestPath}, nil
		case daos.BrickModeOverwrite, "":
			db, release, err := mgr.Acquire(ctx)
			if err != nil {
				return nil, err
			}
			defer release()
			if err := db.BrickUp(ctx); err != nil {
				return nil, err
			}
			return ok, nil
		default:
			return nil, tools.InvalidRequestErr("mode must be overwrite or copy")
		}
	})
}

// handleGetPreferences lists preferences. A scope parameter, even an empty
// one, restricts the result to that scope.
func handleGetPreferences(mgr *daos.Manager) http.HandlerFunc {
	return withDB(mgr, func(ctx context.Context, db *daos.Database, req *http.Request) (any, error) {
		var scope *string
		if params := req.URL.Query(); params.Has("scope") {
			s := params.Get("scope")
			scope = &s
		}

		prefs, err := db.Preferences(ctx, scope)
		if err != nil {
			return nil, err
		}
		return map[string]any{"preferences": prefs}, nil
	})
}

type preferenceRequest struct {
	Key   string          `json:"key"`
	Scope string          `json:"scope"`
	Value json.RawMessage `json:"value"`
}

func handleSetPreference(mgr *daos.Manager) http.HandlerFunc {
	return withDB(mgr, func(ctx context.Context, db *daos.Database, req *http.Request) (any, error) {
		var body preferenceRequest
		if err := decodeJSON(req, &body); err != nil {
			return nil, err
		}
		if err := db.SetPreference(ctx, body.Key, body.Scope, body.Value); err != nil {
			return nil, err
		}
		return ok, nil
	})
}

func handleDeletePreference(mgr *daos.Manager) http.HandlerFunc {
	return withDB(mgr, func(ctx context.Context, db *daos.Database, req *http.Request) (any, error) {
		var body preferenceRequest
		if err := decodeJSON(req, &body); err != nil {
			return nil, err
		}
		if err := db.DeletePreference(ctx, body.Key, body.Scope); err != nil {
			return nil, err
		}
		return ok, nil
	})
}
