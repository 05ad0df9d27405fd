package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/models"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/reconciler"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/reporter"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/store"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/pkg/errors"
)

// --- helpers ---

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, map[string]string{"detail": detail})
}

// writeFailure answers with the status of the error category. Unsupported
// files and missing columns carry their user-facing message alone; anything
// else is prefixed with the operation that failed.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, prefix string, err error) {
	status := http.StatusInternalServerError
	detail := prefix + err.Error()

	if re, ok := errors.AsReconcilerError(err); ok {
		status = re.HTTPStatus()
		switch re.Code {
		case errors.CodeUnsupportedFile:
			detail = "File must be a CSV"
		case errors.CodeMissingColumn:
			detail = re.Suggestion
		default:
			detail = prefix + re.Message
		}
	}

	log := s.logger.WithError(err).WithField("path", r.URL.Path)
	if status >= http.StatusInternalServerError {
		log.Error("Request failed")
	} else {
		log.Warn("Request rejected")
	}
	s.writeError(w, status, detail)
}

type uploadFunc func(ctx context.Context, filename string, r io.Reader) (*reconciler.UploadResult, error)

// --- uploads ---

func (s *Server) handleUploadTransactions(w http.ResponseWriter, r *http.Request) {
	s.handleUpload(w, r, "transactions", s.svc.UploadTransactions)
}

func (s *Server) handleUploadGLEntries(w http.ResponseWriter, r *http.Request) {
	s.handleUpload(w, r, "general ledger entries", s.svc.UploadGLEntries)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request, noun string, upload uploadFunc) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.config.MaxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "file field is required: "+err.Error())
		return
	}
	defer file.Close()

	result, err := upload(r.Context(), header.Filename, file)
	if err != nil {
		s.writeFailure(w, r, "Error processing file: ", err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"message":      fmt.Sprintf("Successfully uploaded %d %s", result.Count, noun),
		"data_quality": result.Report,
	})
}

// --- runs ---

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.RunReconciliation(r.Context())
	if err != nil {
		s.writeFailure(w, r, "Reconciliation failed: ", err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"message":   fmt.Sprintf("Reconciliation completed. Generated %d results.", summary.ResultCount),
		"timestamp": summary.Timestamp.Format(time.RFC3339Nano),
	})
}

func (s *Server) handleDetectAnomalies(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.RunAnomalyDetection(r.Context())
	if err != nil {
		s.writeFailure(w, r, "Anomaly detection failed: ", err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"message":               fmt.Sprintf("Anomaly detection completed. Found %d anomalies.", summary.Total),
		"statistical_anomalies": summary.Statistical,
		"ml_anomalies":          summary.ML,
		"timestamp":             summary.Timestamp.Format(time.RFC3339Nano),
	})
}

// --- queries ---

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.DashboardStats(r.Context())
	if err != nil {
		s.writeFailure(w, r, "Failed to get dashboard stats: ", err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.ResultFilter{
		Status:    models.ReconciliationStatus(q.Get("status")),
		AccountID: q.Get("account_id"),
	}

	results, err := s.svc.ListReconciliationResults(r.Context(), filter)
	if err != nil {
		s.writeFailure(w, r, "Failed to get reconciliation results: ", err)
		return
	}
	if results == nil {
		results = []models.ReconciliationResult{}
	}
	s.writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleListAnomalies(w http.ResponseWriter, r *http.Request) {
	method := models.DetectionMethod(r.URL.Query().Get("detection_method"))

	findings, err := s.svc.ListAnomalies(r.Context(), method)
	if err != nil {
		s.writeFailure(w, r, "Failed to get anomalies: ", err)
		return
	}
	if findings == nil {
		findings = []models.AnomalyResult{}
	}
	s.writeJSON(w, http.StatusOK, findings)
}

func (s *Server) handleListQuality(w http.ResponseWriter, r *http.Request) {
	reports, err := s.svc.ListQualityReports(r.Context())
	if err != nil {
		s.writeFailure(w, r, "Failed to get data quality reports: ", err)
		return
	}
	if reports == nil {
		reports = []*models.DataQualityReport{}
	}
	s.writeJSON(w, http.StatusOK, reports)
}

// --- export ---

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("format")
	if name == "" {
		name = string(reporter.FormatCSV)
	}
	format, err := reporter.ParseOutputFormat(name)
	if err != nil || !format.IsExport() {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("Unsupported export format: %s", name))
		return
	}

	// buffered so a failure can still be answered with a JSON error
	var buf bytes.Buffer
	if err := s.svc.ExportReconciliation(r.Context(), format, &buf); err != nil {
		s.writeFailure(w, r, "Failed to export reconciliation report: ", err)
		return
	}

	filename := reporter.ExportFilename(format, time.Now())
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.WithError(err).Warn("Failed to write export")
	}
}
