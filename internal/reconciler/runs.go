package reconciler

import (
	"context"
	"time"

	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/matcher"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/pkg/errors"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/pkg/logger"
)

// RunSummary describes a completed reconciliation run
type RunSummary struct {
	ResultCount int                           `json:"result_count"`
	Summary     matcher.ReconciliationSummary `json:"-"`
	Timestamp   time.Time                     `json:"timestamp"`
}

// DetectionSummary describes a completed anomaly detection run
type DetectionSummary struct {
	Total       int       `json:"total"`
	Statistical int       `json:"statistical_anomalies"`
	ML          int       `json:"ml_anomalies"`
	Timestamp   time.Time `json:"timestamp"`
}

// RunReconciliation matches the stored transactions against the stored GL
// entries and replaces the stored results with the new verdicts
func (s *Service) RunReconciliation(ctx context.Context) (*RunSummary, error) {
	s.reconcileMu.Lock()
	defer s.reconcileMu.Unlock()

	tracker := logger.NewProgressTracker("reconciliation", 0, s.logger)

	txns, err := s.store.ListTransactions(ctx)
	if err != nil {
		err = storageFailure(err, "reconciliation")
		tracker.CompleteWithError(err)
		return nil, err
	}
	entries, err := s.store.ListGLEntries(ctx)
	if err != nil {
		err = storageFailure(err, "reconciliation")
		tracker.CompleteWithError(err)
		return nil, err
	}
	tracker.Stage("load", int64(len(txns)+len(entries)))

	if err := ctx.Err(); err != nil {
		err = errors.InternalError(errors.CodeCancelled, "reconciliation", err)
		tracker.CompleteWithError(err)
		return nil, err
	}

	results := s.matcher.Reconcile(txns, entries)
	tracker.Stage("match", int64(len(results)))

	now := s.now()
	for i := range results {
		results[i].ID = s.newID()
		results[i].CreatedAt = now
	}

	if err := s.store.ReplaceReconciliationResults(ctx, results); err != nil {
		err = storageFailure(err, "reconciliation")
		tracker.CompleteWithError(err)
		return nil, err
	}
	tracker.Stage("store", int64(len(results)))
	tracker.Complete()

	summary := matcher.Summarize(results, len(txns), len(entries))
	s.logger.WithFields(logger.Fields{
		"transactions":        summary.TotalTransactions,
		"gl_entries":          summary.TotalGLEntries,
		"matched":             summary.Matched,
		"amount_mismatch":     summary.AmountMismatches,
		"missing_gl":          summary.MissingGL,
		"missing_transaction": summary.MissingTransactions,
	}).Info("Reconciliation completed")

	return &RunSummary{
		ResultCount: len(results),
		Summary:     summary,
		Timestamp:   now,
	}, nil
}

// RunAnomalyDetection scores the stored transactions with both detection
// sub-pipelines and replaces the stored findings, statistical ones first
func (s *Service) RunAnomalyDetection(ctx context.Context) (*DetectionSummary, error) {
	s.detectMu.Lock()
	defer s.detectMu.Unlock()

	tracker := logger.NewProgressTracker("anomaly_detection", 0, s.logger)

	txns, err := s.store.ListTransactions(ctx)
	if err != nil {
		err = storageFailure(err, "anomaly detection")
		tracker.CompleteWithError(err)
		return nil, err
	}
	tracker.Stage("load", int64(len(txns)))

	report, err := s.detector.Detect(ctx, txns)
	if err != nil {
		if ctx.Err() != nil {
			err = errors.InternalError(errors.CodeCancelled, "anomaly detection", err)
		} else {
			err = errors.WrapIfNeeded(err, errors.CategoryDetection, errors.CodeProcessingError, "anomaly detection failed")
		}
		tracker.CompleteWithError(err)
		return nil, err
	}

	findings := report.All()
	tracker.Stage("detect", int64(len(findings)))

	now := s.now()
	for i := range findings {
		findings[i].ID = s.newID()
		findings[i].CreatedAt = now
	}

	if err := s.store.ReplaceAnomalies(ctx, findings); err != nil {
		err = storageFailure(err, "anomaly detection")
		tracker.CompleteWithError(err)
		return nil, err
	}
	tracker.Stage("store", int64(len(findings)))
	tracker.Complete()

	s.logger.WithFields(logger.Fields{
		"transactions": len(txns),
		"statistical":  len(report.Statistical),
		"ml":           len(report.ML),
	}).Info("Anomaly detection completed")

	return &DetectionSummary{
		Total:       len(findings),
		Statistical: len(report.Statistical),
		ML:          len(report.ML),
		Timestamp:   now,
	}, nil
}
