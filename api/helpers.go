package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/joe-ervin05/brick/config"
	"github.com/joe-ervin05/brick/daos"
	"github.com/joe-ervin05/brick/tools"
)

// DbHandler is a handler that operates on the active database. The returned
// value is written as the JSON response body.
type DbHandler func(ctx context.Context, db *daos.Database, req *http.Request) (any, error)

// withDB wraps handlers that need the active database. The handle is held for
// the whole request so a concurrent reconnect waits for it.
func withDB(mgr *daos.Manager, handler DbHandler) http.HandlerFunc {
	return withDBStatus(mgr, http.StatusOK, handler)
}

// withDBStatus is withDB with a custom success status.
func withDBStatus(mgr *daos.Manager, status int, handler DbHandler) http.HandlerFunc {
	return func(wr http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		req.Body = http.MaxBytesReader(wr, req.Body, config.Cfg.MaxRequestBody)
		defer req.Body.Close()

		db, release, err := mgr.Acquire(ctx)
		if err != nil {
			tools.RespErr(wr, err)
			return
		}
		defer release()

		data, err := handler(ctx, db, req)
		if err != nil {
			tools.RespErr(wr, err)
			return
		}

		tools.RespJSON(wr, status, data)
	}
}

// withBody wraps handlers that do not need a database handle.
func withBody(handler func(ctx context.Context, req *http.Request) (any, error)) http.HandlerFunc {
	return func(wr http.ResponseWriter, req *http.Request) {
		req.Body = http.MaxBytesReader(wr, req.Body, config.Cfg.MaxRequestBody)
		defer req.Body.Close()

		data, err := handler(req.Context(), req)
		if err != nil {
			tools.RespErr(wr, err)
			return
		}

		tools.RespJSON(wr, http.StatusOK, data)
	}
}

var errEmptyBody = errors.New("request body is required")

// decodeJSON decodes the request body into v. Numbers are kept as
// json.Number so integers survive the trip to the database unchanged.
func decodeJSON(req *http.Request, v any) error {
	dec := json.NewDecoder(req.Body)
	dec.UseNumber()

	if err := dec.Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: %w", tools.ErrInvalidJSON, errEmptyBody)
		}
		return fmt.Errorf("%w: %v", tools.ErrInvalidJSON, err)
	}
	return nil
}

// decodeOptionalJSON is decodeJSON for routes where an empty body stands for
// an empty object. v is left untouched in that case.
func decodeOptionalJSON(req *http.Request, v any) error {
	if err := decodeJSON(req, v); err != nil && !errors.Is(err, errEmptyBody) {
		return err
	}
	return nil
}

// queryInt parses an integer query parameter. Missing, malformed and
// negative values yield def.
func queryInt(req *http.Request, name string, def int) int {
	val := req.URL.Query().Get(name)
	if val == "" {
		return def
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// success is the body of operations that return nothing else.
type success struct {
	Success bool   `json:"success"`
	Name    string `json:"name,omitempty"`
	DBPath  string `json:"dbPath,omitempty"`
	ID      any    `json:"id,omitempty"`
}

var ok = success{Success: true}
