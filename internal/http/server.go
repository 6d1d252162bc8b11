package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"semaphore/dashboard/internal/apiclient"
	"semaphore/dashboard/internal/export"
	"semaphore/dashboard/internal/jobs"
	"semaphore/dashboard/internal/report"
)

type Server struct {
	reports  jobs.ReportLoader
	snapshot *jobs.Snapshot
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	now      func() time.Time
}

// NewServer serves reports from loader. gatherer backs /metrics and falls
// back to the default registry when nil.
func NewServer(loader jobs.ReportLoader, snapshot *jobs.Snapshot, gatherer prometheus.Gatherer, logger *slog.Logger) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if logger == nil {
		logger = slog.Default()
	}
	if snapshot == nil {
		snapshot = &jobs.Snapshot{}
	}
	return &Server{
		reports:  loader,
		snapshot: snapshot,
		gatherer: gatherer,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/attendance", func(r chi.Router) {
		r.Get("/summary", s.handleSummary)
		r.Get("/details", s.handleDetails)
		r.Get("/export", s.handleExport)
		r.Get("/snapshot", s.handleSnapshot)
	})

	return r
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"departmentId": rep.DepartmentID,
		"generatedAt":  rep.GeneratedAt,
		"courses":      rep.Courses,
	})
}

func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"departmentId": rep.DepartmentID,
		"generatedAt":  rep.GeneratedAt,
		"details":      rep.Details,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unsupported_format")
		return
	}
	detailed, err := parseBool(r.URL.Query().Get("detailed"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	rep, ok := s.load(w, r)
	if !ok {
		return
	}

	// Rendered into a buffer so an encoding failure can still produce an error response.
	var buf bytes.Buffer
	if err := export.Write(&buf, format, rep.Courses, detailed); err != nil {
		s.logger.Error("export failed", "format", string(format), "error", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(format, detailed, s.now())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	rep, ok := s.snapshot.Get()
	if !ok {
		writeError(w, http.StatusNotFound, "snapshot_unavailable")
		return
	}
	payload := map[string]interface{}{"report": rep}
	if err := s.snapshot.LastError(); err != nil {
		payload["stale"] = true
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) load(w http.ResponseWriter, r *http.Request) (report.Report, bool) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return report.Report{}, false
	}
	rep, err := s.reports.Load(r.Context(), q)
	if err != nil {
		status, code := reportError(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("report load failed", "department_id", q.DepartmentID, "error", err)
		}
		writeError(w, status, code)
		return report.Report{}, false
	}
	return rep, true
}

func parseQuery(r *http.Request) (report.Query, error) {
	values := r.URL.Query()
	q := report.Query{
		DepartmentID: strings.TrimSpace(values.Get("departmentId")),
		SearchTerm:   strings.TrimSpace(values.Get("searchTerm")),
	}
	for _, id := range values["courseId"] {
		if id = strings.TrimSpace(id); id != "" {
			q.CourseIDs = append(q.CourseIDs, id)
		}
	}
	var err error
	if q.PageNumber, err = parseInt(values.Get("pageNumber")); err != nil {
		return report.Query{}, err
	}
	if q.PageSize, err = parseInt(values.Get("pageSize")); err != nil {
		return report.Query{}, err
	}
	return q, nil
}

func reportError(err error) (int, string) {
	switch {
	case errors.Is(err, report.ErrMissingDepartment):
		return http.StatusBadRequest, "missing_department"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, apiclient.ErrTransport):
		return http.StatusGatewayTimeout, "upstream_unavailable"
	case errors.Is(err, apiclient.ErrUnauthorized):
		return http.StatusBadGateway, "upstream_unauthorized"
	case errors.Is(err, report.ErrNoAttendance):
		return http.StatusBadGateway, "attendance_unavailable"
	default:
		return http.StatusBadGateway, "upstream_error"
	}
}

func parseInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func parseBool(raw string) (bool, error) {
	if raw == "" {
		return false, nil
	}
	return strconv.ParseBool(raw)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
