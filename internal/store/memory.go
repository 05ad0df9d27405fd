package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/models"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/pkg/errors"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/pkg/logger"
)

// MemoryStore holds every collection in memory behind one RWMutex. Replace
// operations build the new slice first and swap it in under the lock.
type MemoryStore struct {
	mu sync.RWMutex

	transactions []*models.Transaction
	glEntries    []*models.GLEntry
	results      []models.ReconciliationResult
	anomalies    []models.AnomalyResult
	quality      []*models.DataQualityReport
	closed       bool

	logger logger.Logger
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		logger: logger.WithComponent("store").WithField("driver", DriverMemory),
	}
}

func (s *MemoryStore) check(ctx context.Context, collection string) error {
	if err := ctx.Err(); err != nil {
		return errors.StorageError(errors.CodeStoreFailure, collection, err)
	}
	if s.closed {
		return errors.StorageError(errors.CodeStoreClosed, collection, fmt.Errorf("store is closed"))
	}
	return nil
}

// ReplaceTransactions swaps in a new transaction dataset
func (s *MemoryStore) ReplaceTransactions(ctx context.Context, txns []*models.Transaction) error {
	next := make([]*models.Transaction, len(txns))
	for i, t := range txns {
		c := *t
		next[i] = &c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx, CollectionTransactions); err != nil {
		return err
	}
	s.transactions = next
	s.logger.WithField("count", len(next)).Debug("Replaced transactions")
	return nil
}

// ListTransactions returns the stored transactions in upload order
func (s *MemoryStore) ListTransactions(ctx context.Context) ([]*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx, CollectionTransactions); err != nil {
		return nil, err
	}
	out := make([]*models.Transaction, len(s.transactions))
	for i, t := range s.transactions {
		c := *t
		out[i] = &c
	}
	return out, nil
}

// CountTransactions returns the number of stored transactions
func (s *MemoryStore) CountTransactions(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx, CollectionTransactions); err != nil {
		return 0, err
	}
	return len(s.transactions), nil
}

// ReplaceGLEntries swaps in a new general ledger dataset
func (s *MemoryStore) ReplaceGLEntries(ctx context.Context, entries []*models.GLEntry) error {
	next := make([]*models.GLEntry, len(entries))
	for i, g := range entries {
		c := *g
		next[i] = &c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx, CollectionGLEntries); err != nil {
		return err
	}
	s.glEntries = next
	s.logger.WithField("count", len(next)).Debug("Replaced general ledger entries")
	return nil
}

// ListGLEntries returns the stored general ledger entries in upload order
func (s *MemoryStore) ListGLEntries(ctx context.Context) ([]*models.GLEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx, CollectionGLEntries); err != nil {
		return nil, err
	}
	out := make([]*models.GLEntry, len(s.glEntries))
	for i, g := range s.glEntries {
		c := *g
		out[i] = &c
	}
	return out, nil
}

// CountGLEntries returns the number of stored general ledger entries
func (s *MemoryStore) CountGLEntries(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx, CollectionGLEntries); err != nil {
		return 0, err
	}
	return len(s.glEntries), nil
}

// ReplaceReconciliationResults swaps in the results of a reconciliation run
func (s *MemoryStore) ReplaceReconciliationResults(ctx context.Context, results []models.ReconciliationResult) error {
	next := make([]models.ReconciliationResult, len(results))
	copy(next, results)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx, CollectionResults); err != nil {
		return err
	}
	s.results = next
	s.logger.WithField("count", len(next)).Debug("Replaced reconciliation results")
	return nil
}

// ListReconciliationResults returns the results passing filter
func (s *MemoryStore) ListReconciliationResults(ctx context.Context, filter ResultFilter) ([]models.ReconciliationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx, CollectionResults); err != nil {
		return nil, err
	}
	out := make([]models.ReconciliationResult, 0, len(s.results))
	for i := range s.results {
		if filter.Matches(&s.results[i]) {
			out = append(out, s.results[i])
		}
	}
	return out, nil
}

// CountReconciliationResults counts results with any of the given statuses,
// or all results when none are given
func (s *MemoryStore) CountReconciliationResults(ctx context.Context, statuses ...models.ReconciliationStatus) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx, CollectionResults); err != nil {
		return 0, err
	}
	if len(statuses) == 0 {
		return len(s.results), nil
	}
	count := 0
	for _, r := range s.results {
		for _, status := range statuses {
			if r.Status == status {
				count++
				break
			}
		}
	}
	return count, nil
}

// ReplaceAnomalies swaps in the findings of a detection run
func (s *MemoryStore) ReplaceAnomalies(ctx context.Context, anomalies []models.AnomalyResult) error {
	next := make([]models.AnomalyResult, len(anomalies))
	copy(next, anomalies)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx, CollectionAnomalies); err != nil {
		return err
	}
	s.anomalies = next
	s.logger.WithField("count", len(next)).Debug("Replaced anomalies")
	return nil
}

// ListAnomalies returns the findings passing filter
func (s *MemoryStore) ListAnomalies(ctx context.Context, filter AnomalyFilter) ([]models.AnomalyResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx, CollectionAnomalies); err != nil {
		return nil, err
	}
	out := make([]models.AnomalyResult, 0, len(s.anomalies))
	for i := range s.anomalies {
		if filter.Matches(&s.anomalies[i]) {
			out = append(out, s.anomalies[i])
		}
	}
	return out, nil
}

// CountAnomalies returns the number of stored findings
func (s *MemoryStore) CountAnomalies(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx, CollectionAnomalies); err != nil {
		return 0, err
	}
	return len(s.anomalies), nil
}

// UpsertQualityReport stores report, replacing any report with the same
// dataset name in place
func (s *MemoryStore) UpsertQualityReport(ctx context.Context, report *models.DataQualityReport) error {
	c := *report
	c.Issues = append([]string(nil), report.Issues...)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx, CollectionQuality); err != nil {
		return err
	}
	for i, existing := range s.quality {
		if existing.DatasetName == report.DatasetName {
			s.quality[i] = &c
			return nil
		}
	}
	s.quality = append(s.quality, &c)
	return nil
}

// ListQualityReports returns one report per dataset in first-upload order
func (s *MemoryStore) ListQualityReports(ctx context.Context) ([]*models.DataQualityReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx, CollectionQuality); err != nil {
		return nil, err
	}
	out := make([]*models.DataQualityReport, len(s.quality))
	for i, r := range s.quality {
		c := *r
		c.Issues = append([]string(nil), r.Issues...)
		out[i] = &c
	}
	return out, nil
}

// Close marks the store closed. Later calls fail with a storage error.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
