package reconciler

import (
	"context"
	"io"

	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/models"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/reporter"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/store"

	"github.com/shopspring/decimal"
)

// DashboardStats aggregates the stored collections. Accuracy is matched
// over matched plus unmatched verdicts; the quality score is the mean over
// stored reports. Both denominators are floored at one.
func (s *Service) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	txns, err := s.store.CountTransactions(ctx)
	if err != nil {
		return nil, storageFailure(err, "dashboard")
	}
	entries, err := s.store.CountGLEntries(ctx)
	if err != nil {
		return nil, storageFailure(err, "dashboard")
	}
	matched, err := s.store.CountReconciliationResults(ctx, models.StatusMatched)
	if err != nil {
		return nil, storageFailure(err, "dashboard")
	}
	unmatched, err := s.store.CountReconciliationResults(ctx,
		models.StatusMissingGL, models.StatusMissingTransaction, models.StatusAmountMismatch)
	if err != nil {
		return nil, storageFailure(err, "dashboard")
	}
	anomalies, err := s.store.CountAnomalies(ctx)
	if err != nil {
		return nil, storageFailure(err, "dashboard")
	}
	reports, err := s.store.ListQualityReports(ctx)
	if err != nil {
		return nil, storageFailure(err, "dashboard")
	}

	var qualitySum float64
	for _, r := range reports {
		qualitySum += r.QualityScore
	}

	return &models.DashboardStats{
		TotalTransactions:      txns,
		TotalGLEntries:         entries,
		MatchedCount:           matched,
		UnmatchedCount:         unmatched,
		AnomaliesDetected:      anomalies,
		DataQualityScore:       round2(qualitySum / float64(max(len(reports), 1))),
		ReconciliationAccuracy: round2(float64(matched) / float64(max(matched+unmatched, 1)) * 100),
	}, nil
}

// ListReconciliationResults returns the stored verdicts passing filter
func (s *Service) ListReconciliationResults(ctx context.Context, filter store.ResultFilter) ([]models.ReconciliationResult, error) {
	results, err := s.store.ListReconciliationResults(ctx, filter)
	if err != nil {
		return nil, storageFailure(err, "result listing")
	}
	return results, nil
}

// ListAnomalies returns the stored findings, narrowed to one detection
// method when method is not empty
func (s *Service) ListAnomalies(ctx context.Context, method models.DetectionMethod) ([]models.AnomalyResult, error) {
	findings, err := s.store.ListAnomalies(ctx, store.AnomalyFilter{DetectionMethod: method})
	if err != nil {
		return nil, storageFailure(err, "anomaly listing")
	}
	return findings, nil
}

// ListQualityReports returns one stored report per uploaded dataset
func (s *Service) ListQualityReports(ctx context.Context) ([]*models.DataQualityReport, error) {
	reports, err := s.store.ListQualityReports(ctx)
	if err != nil {
		return nil, storageFailure(err, "quality listing")
	}
	return reports, nil
}

// ExportReconciliation writes every stored verdict to w in the given export
// format
func (s *Service) ExportReconciliation(ctx context.Context, format reporter.OutputFormat, w io.Writer) error {
	config := reporter.DefaultReportConfig()
	config.Format = format
	generator, err := reporter.NewSafeReportGenerator(config, s.logger)
	if err != nil {
		return err
	}

	results, err := s.ListReconciliationResults(ctx, store.ResultFilter{})
	if err != nil {
		return err
	}
	return generator.ExportResultsSafely(results, w)
}

// BuildReport gathers the stored state into a report for rendering
func (s *Service) BuildReport(ctx context.Context) (*reporter.Report, error) {
	txns, err := s.store.CountTransactions(ctx)
	if err != nil {
		return nil, storageFailure(err, "report")
	}
	entries, err := s.store.CountGLEntries(ctx)
	if err != nil {
		return nil, storageFailure(err, "report")
	}
	results, err := s.ListReconciliationResults(ctx, store.ResultFilter{})
	if err != nil {
		return nil, err
	}
	findings, err := s.ListAnomalies(ctx, "")
	if err != nil {
		return nil, err
	}
	reports, err := s.ListQualityReports(ctx)
	if err != nil {
		return nil, err
	}

	return &reporter.Report{
		GeneratedAt:       s.now(),
		TotalTransactions: txns,
		TotalGLEntries:    entries,
		Results:           results,
		Anomalies:         findings,
		Quality:           reports,
	}, nil
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
