package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/koustreak/tablescope/internal/errs"
	"github.com/koustreak/tablescope/internal/filestore"
	"github.com/koustreak/tablescope/internal/logger"
	"github.com/koustreak/tablescope/internal/schema"
	"github.com/koustreak/tablescope/internal/snapshot"
)

type tablesResponse struct {
	Schema string               `json:"schema"`
	Tables []schema.TableRecord `json:"tables"`
}

type namesResponse struct {
	Schema string   `json:"schema"`
	Kind   string   `json:"kind"`
	Names  []string `json:"names"`
}

type existsResponse struct {
	Schema string `json:"schema"`
	Table  string `json:"table"`
	Exists bool   `json:"exists"`
}

type snapshotItem struct {
	filestore.ObjectInfo
	URL string `json:"url,omitempty"`
}

type snapshotsResponse struct {
	Schema    string         `json:"schema"`
	Snapshots []snapshotItem `json:"snapshots"`
}

type diffResponse struct {
	Schema string        `json:"schema"`
	Since  time.Time     `json:"since"`
	Diff   snapshot.Diff `json:"diff"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// handleHealth pings the database and, when configured, the file store.
func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok", "database": "ok"}
		code := http.StatusOK

		if s.deps.DB != nil {
			if err := s.deps.DB.Ping(r.Context()); err != nil {
				logger.FromContext(r.Context()).ErrorWith("database ping failed", err, nil)
				status["status"], status["database"] = "unavailable", errs.KindOf(err).String()
				code = http.StatusServiceUnavailable
			}
		}
		if s.deps.Store != nil {
			status["filestore"] = "ok"
			if err := s.deps.Store.Ping(r.Context()); err != nil {
				logger.FromContext(r.Context()).ErrorWith("file store ping failed", err, nil)
				status["status"], status["filestore"] = "unavailable", errs.KindOf(err).String()
				code = http.StatusServiceUnavailable
			}
		}

		writeJSON(w, code, status)
	}
}

// handleListTables: GET /schemas/{schema}/tables
func (s *Server) handleListTables() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "schema")

		tables, err := s.deps.Tables.ListTables(r.Context(), name)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tablesResponse{Schema: name, Tables: tables})
	}
}

// handleListTableNames: GET /schemas/{schema}/tables/names?kind=VIEW
func (s *Server) handleListTableNames() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "schema")

		kind := schema.BaseTable
		if raw := r.URL.Query().Get("kind"); raw != "" {
			parsed, err := schema.ParseTableKind(raw)
			if err != nil {
				writeError(w, r, err)
				return
			}
			kind = parsed
		}

		names, err := s.deps.Tables.ListTableNames(r.Context(), name, kind)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, namesResponse{Schema: name, Kind: kind.String(), Names: names})
	}
}

// handleTableExists: GET /schemas/{schema}/tables/exists?table=orders
func (s *Server) handleTableExists() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "schema")
		table := r.URL.Query().Get("table")
		if table == "" {
			writeError(w, r, errs.New(errs.ErrKindInvalidInput, "query parameter table is required"))
			return
		}

		ok, err := s.deps.Tables.TableExists(r.Context(), name, table)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, existsResponse{Schema: name, Table: table, Exists: ok})
	}
}

// handleListSnapshots: GET /schemas/{schema}/snapshots?after=<key>&limit=N
func (s *Server) handleListSnapshots() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "schema")

		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, r, errs.Wrap(errs.ErrKindInvalidInput, "limit must be an integer", err))
				return
			}
			limit = n
		}

		objects, err := snapshot.Since(r.Context(), s.deps.Store, s.deps.Bucket, name, r.URL.Query().Get("after"), limit)
		if err != nil {
			writeError(w, r, err)
			return
		}

		items := make([]snapshotItem, 0, len(objects))
		for _, obj := range objects {
			url, err := s.deps.Store.PresignGetURL(r.Context(), s.deps.Bucket, obj.Key, s.deps.PresignTTL)
			if err != nil {
				writeError(w, r, err)
				return
			}
			items = append(items, snapshotItem{ObjectInfo: obj, URL: url})
		}
		writeJSON(w, http.StatusOK, snapshotsResponse{Schema: name, Snapshots: items})
	}
}

// handleTakeSnapshot: POST /schemas/{schema}/snapshots
func (s *Server) handleTakeSnapshot() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "schema")

		tables, err := s.deps.Tables.ListTables(r.Context(), name)
		if err != nil {
			writeError(w, r, err)
			return
		}

		info, err := snapshot.Save(r.Context(), s.deps.Store, s.deps.Bucket, name, tables)
		if err != nil {
			writeError(w, r, err)
			return
		}

		logger.FromContext(r.Context()).InfoWith("snapshot stored", map[string]interface{}{
			"schema": name,
			"key":    info.Key,
			"tables": len(tables),
		})
		writeJSON(w, http.StatusCreated, info)
	}
}

// handleSnapshotDiff: GET /schemas/{schema}/snapshots/latest/diff
// compares the newest stored snapshot against the live listing.
func (s *Server) handleSnapshotDiff() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "schema")

		prev, err := snapshot.Latest(r.Context(), s.deps.Store, s.deps.Bucket, name)
		if err != nil {
			writeError(w, r, err)
			return
		}
		tables, err := s.deps.Tables.ListTables(r.Context(), name)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, diffResponse{
			Schema: name,
			Since:  prev.TakenAt,
			Diff:   snapshot.Compare(prev.Tables, tables),
		})
	}
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	kind := errs.KindOf(err)

	log := logger.FromContext(r.Context())
	if code >= http.StatusInternalServerError {
		log.ErrorWith("request failed", err, map[string]interface{}{"kind": kind.String()})
	} else {
		log.Debugf("request rejected: %v", err)
	}

	msg := err.Error()
	var e *errs.Error
	if errors.As(err, &e) {
		msg = e.Message
	}
	writeJSON(w, code, errorResponse{Error: msg, Kind: kind.String()})
}

// statusFor maps an error kind onto the closest HTTP status.
func statusFor(err error) int {
	switch errs.KindOf(err) {
	case errs.ErrKindInvalidInput:
		return http.StatusBadRequest
	case errs.ErrKindNotFound:
		return http.StatusNotFound
	case errs.ErrKindPermissionDenied:
		return http.StatusForbidden
	case errs.ErrKindTimeout:
		return http.StatusGatewayTimeout
	case errs.ErrKindConnectionFailed:
		return http.StatusServiceUnavailable
	case errs.ErrKindDecodeFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
