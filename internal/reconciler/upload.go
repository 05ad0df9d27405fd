package reconciler

import (
	"context"
	"io"

	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/models"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/parsers"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/quality"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/pkg/logger"
)

// UploadResult describes an accepted dataset upload
type UploadResult struct {
	Dataset string                    `json:"dataset"`
	Count   int                       `json:"count"`
	Stats   *parsers.ParseStats       `json:"-"`
	Report  *models.DataQualityReport `json:"data_quality"`
}

// UploadTransactions parses a transaction CSV, scores its quality and
// replaces the stored transactions. A rejected upload leaves the stored
// dataset and its quality report unchanged.
func (s *Service) UploadTransactions(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	if err := parsers.CheckFilename(filename); err != nil {
		return nil, err
	}

	s.transactionsMu.Lock()
	defer s.transactionsMu.Unlock()

	tracker := logger.NewProgressTracker("upload_transactions", 0, s.logger.WithField("file", filename))

	table, err := s.readTable(r, filename, tracker)
	if err != nil {
		return nil, err
	}

	txns, stats, err := s.txParser.Parse(table, filename)
	if err != nil {
		tracker.CompleteWithError(err)
		return nil, err
	}
	tracker.Stage("parse", int64(len(txns)))

	report, err := s.score(table, parsers.DatasetTransactions, tracker)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for _, t := range txns {
		t.CreatedAt = now
	}
	report.CreatedAt = now

	if err := s.store.ReplaceTransactions(ctx, txns); err != nil {
		err = storageFailure(err, "transaction upload")
		tracker.CompleteWithError(err)
		return nil, err
	}
	if err := s.store.UpsertQualityReport(ctx, report); err != nil {
		err = storageFailure(err, "transaction upload")
		tracker.CompleteWithError(err)
		return nil, err
	}
	tracker.Stage("store", int64(len(txns)))
	tracker.Complete()

	s.logger.WithFields(logger.Fields{
		"file":          filename,
		"transactions":  len(txns),
		"skipped_rows":  stats.RowsSkipped,
		"quality_score": report.QualityScore,
	}).Info("Transactions uploaded")

	return &UploadResult{
		Dataset: parsers.DatasetTransactions,
		Count:   len(txns),
		Stats:   stats,
		Report:  report,
	}, nil
}

// UploadGLEntries parses a general ledger CSV, scores its quality and
// replaces the stored GL entries. A rejected upload leaves the stored
// dataset and its quality report unchanged.
func (s *Service) UploadGLEntries(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	if err := parsers.CheckFilename(filename); err != nil {
		return nil, err
	}

	s.ledgerMu.Lock()
	defer s.ledgerMu.Unlock()

	tracker := logger.NewProgressTracker("upload_general_ledger", 0, s.logger.WithField("file", filename))

	table, err := s.readTable(r, filename, tracker)
	if err != nil {
		return nil, err
	}

	entries, stats, err := s.glParser.Parse(table, filename)
	if err != nil {
		tracker.CompleteWithError(err)
		return nil, err
	}
	tracker.Stage("parse", int64(len(entries)))

	report, err := s.score(table, parsers.DatasetGeneralLedger, tracker)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for _, g := range entries {
		g.CreatedAt = now
	}
	report.CreatedAt = now

	if err := s.store.ReplaceGLEntries(ctx, entries); err != nil {
		err = storageFailure(err, "general ledger upload")
		tracker.CompleteWithError(err)
		return nil, err
	}
	if err := s.store.UpsertQualityReport(ctx, report); err != nil {
		err = storageFailure(err, "general ledger upload")
		tracker.CompleteWithError(err)
		return nil, err
	}
	tracker.Stage("store", int64(len(entries)))
	tracker.Complete()

	s.logger.WithFields(logger.Fields{
		"file":          filename,
		"gl_entries":    len(entries),
		"skipped_rows":  stats.RowsSkipped,
		"quality_score": report.QualityScore,
	}).Info("General ledger uploaded")

	return &UploadResult{
		Dataset: parsers.DatasetGeneralLedger,
		Count:   len(entries),
		Stats:   stats,
		Report:  report,
	}, nil
}

func (s *Service) readTable(r io.Reader, filename string, tracker *logger.ProgressTracker) (*quality.Table, error) {
	table, err := s.reader.ReadTable(r, filename)
	if err != nil {
		tracker.CompleteWithError(err)
		return nil, err
	}
	tracker.Stage("read", int64(table.NumRows()))
	return table, nil
}

func (s *Service) score(table *quality.Table, dataset string, tracker *logger.ProgressTracker) (*models.DataQualityReport, error) {
	report, err := s.scorer.Score(table, dataset)
	if err != nil {
		tracker.CompleteWithError(err)
		return nil, err
	}
	tracker.Stage("score", int64(report.TotalRecords))
	return report, nil
}
