package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/yurifrl/finsight/pkg/analytics"
	"github.com/yurifrl/finsight/pkg/csv"
	"github.com/yurifrl/finsight/pkg/ledger"
	"github.com/yurifrl/finsight/pkg/models"
	"github.com/yurifrl/finsight/pkg/normalize"
	"github.com/yurifrl/finsight/pkg/parser"
	"github.com/yurifrl/finsight/pkg/service"
)

var errSessionNotFound = errors.New("session not found")

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}
	s.respondJSON(w, map[string]any{"status": "ok", "sessions": s.sessions.count()})
}

// ---------------- ingestion ----------------

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("ledger")
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "ledger file required", err)
		return
	}
	defer file.Close()

	id, sess, err := s.sessionFor(r.FormValue("session"))
	if err != nil {
		s.respondError(w, r, http.StatusNotFound, err.Error(), nil)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "failed to read file", err)
		return
	}

	res, err := s.processor.LoadBytes(r.Context(), data, header.Filename)
	if err != nil {
		msg := "failed to process file"
		switch {
		case errors.Is(err, parser.ErrUnknownFileType):
			msg = "unsupported file type"
		case errors.Is(err, parser.ErrEmpty):
			msg = "file has no rows"
		}
		s.respondError(w, r, http.StatusBadRequest, msg, err)
		return
	}

	s.load(sess, res)
	s.logger.Info("ledger uploaded", "session", id, "file", header.Filename, "accepted", res.Accepted, "rejected", len(res.Rejected))
	s.respondLoad(w, id, sess, res)
}

type rowsRequest struct {
	Session string           `json:"session"`
	Rows    []map[string]any `json:"rows"`
}

func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	var req rowsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUploadBytes)).Decode(&req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid json body", err)
		return
	}
	if len(req.Rows) == 0 {
		s.respondError(w, r, http.StatusBadRequest, "rows required", nil)
		return
	}

	id, sess, err := s.sessionFor(req.Session)
	if err != nil {
		s.respondError(w, r, http.StatusNotFound, err.Error(), nil)
		return
	}

	rows := make([]models.RawRow, 0, len(req.Rows))
	for _, row := range req.Rows {
		rows = append(rows, models.RowFromAny(row))
	}
	res := s.processor.LoadRows(r.Context(), models.RowSet{Header: models.HeaderOf(rows), Rows: rows})

	s.load(sess, res)
	s.logger.Info("rows loaded", "session", id, "accepted", res.Accepted, "rejected", len(res.Rejected))
	s.respondLoad(w, id, sess, res)
}

// sessionFor opens a new session for an empty id.
func (s *Server) sessionFor(id string) (string, *session, error) {
	if id == "" {
		id, sess := s.sessions.create()
		return id, sess, nil
	}
	sess, ok := s.sessions.get(id)
	if !ok {
		return "", nil, errSessionNotFound
	}
	return id, sess, nil
}

func (s *Server) load(sess *session, res service.LoadResult) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.store.Load(res.Operations)
}

func (s *Server) respondLoad(w http.ResponseWriter, id string, sess *session, res service.LoadResult) {
	sess.mu.Lock()
	from, to := sess.store.DateRange()
	categories := nonNil(sess.store.Categories())
	sess.mu.Unlock()

	s.respondJSON(w, map[string]any{
		"status":      "success",
		"session":     id,
		"accepted":    res.Accepted,
		"rejected":    res.Rejected,
		"categorized": res.Categorized,
		"categories":  categories,
		"from":        from,
		"to":          to,
	})
}

// ---------------- queries ----------------

type queryHandler func(w http.ResponseWriter, r *http.Request, sess *session, ops []models.Operation)

// query resolves the session and the period filter, then runs next with
// the session locked and the filtered operations sorted by date.
func (s *Server) query(next queryHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
			return
		}
		id := r.URL.Query().Get("session")
		if id == "" {
			s.respondError(w, r, http.StatusBadRequest, "session required", nil)
			return
		}
		sess, ok := s.sessions.get(id)
		if !ok {
			s.respondError(w, r, http.StatusNotFound, errSessionNotFound.Error(), nil)
			return
		}
		filter, err := filterFrom(r)
		if err != nil {
			s.respondError(w, r, http.StatusBadRequest, err.Error(), nil)
			return
		}

		sess.mu.Lock()
		defer sess.mu.Unlock()
		next(w, r, sess, analytics.SortByDate(sess.store.Filter(filter)))
	}
}

func filterFrom(r *http.Request) (ledger.PeriodFilter, error) {
	q := r.URL.Query()
	f := ledger.PeriodFilter{Category: q.Get("category")}
	if v := q.Get("from"); v != "" {
		f.From = normalize.ParseDate(v)
	}
	if v := q.Get("to"); v != "" {
		f.To = normalize.ParseDate(v)
	}
	return f, f.Validate()
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request, _ *session, ops []models.Operation) {
	summary := analytics.SummarizeWith(ops, s.opts)
	s.respondJSON(w, map[string]any{
		"status":    "success",
		"summary":   summary,
		"formatted": s.format.Summary(summary),
	})
}

// handleNotifications advances the session cushion.
func (s *Server) handleNotifications(w http.ResponseWriter, _ *http.Request, sess *session, ops []models.Operation) {
	notes := sess.analytics.Notify(ops)
	details := make([]string, 0, len(notes))
	for _, n := range notes {
		details = append(details, s.format.Detail(n))
	}
	var cushion *float64
	if v, ok := sess.analytics.LastCushion(); ok {
		cushion = &v
	}
	s.respondJSON(w, map[string]any{
		"status":        "success",
		"notifications": nonNil(notes),
		"details":       details,
		"cushion":       cushion,
	})
}

func (s *Server) handleChart(w http.ResponseWriter, _ *http.Request, _ *session, ops []models.Operation) {
	s.respondJSON(w, map[string]any{
		"status": "success",
		"chart":  analytics.Aggregate(ops),
	})
}

func (s *Server) handleOperations(w http.ResponseWriter, _ *http.Request, _ *session, ops []models.Operation) {
	s.respondJSON(w, map[string]any{
		"status":     "success",
		"count":      len(ops),
		"operations": ops,
	})
}

func (s *Server) handleBalance(w http.ResponseWriter, _ *http.Request, _ *session, ops []models.Operation) {
	s.respondJSON(w, map[string]any{
		"status":  "success",
		"balance": analytics.BalanceSeries(ops),
	})
}

// handleCategories lists every category of the session, ignoring the filter.
func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request, sess *session, _ []models.Operation) {
	s.respondJSON(w, map[string]any{
		"status":     "success",
		"categories": nonNil(sess.store.Categories()),
	})
}

func (s *Server) handleTotals(w http.ResponseWriter, _ *http.Request, _ *session, ops []models.Operation) {
	lines := make([]string, 0, len(ops))
	for _, op := range ops {
		lines = append(lines, fmt.Sprintf("%s: %s (+%s, -%s)", op.Date, op.Category, s.format.Number(op.Deposit), s.format.Number(op.Withdrawal)))
	}
	s.respondJSON(w, map[string]any{
		"status": "success",
		"totals": analytics.PeriodTotals(ops),
		"lines":  lines,
	})
}

func (s *Server) handleAnomalies(w http.ResponseWriter, _ *http.Request, _ *session, ops []models.Operation) {
	s.respondJSON(w, map[string]any{
		"status": "success",
		"report": analytics.Anomalies(ops, s.opts),
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, _ *session, ops []models.Operation) {
	out, err := csv.Create(models.OperationCSVHeader, ops, nil)
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to encode csv", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="operations.csv"`)
	if _, err := w.Write(out); err != nil {
		s.logger.Warn("failed to write csv response", "err", err)
	}
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
