package reconciler

import (
	"context"

	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/models"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/store"
)

// Store defines the persistence the service needs. Replace operations must
// install the complete new set or leave the previous set untouched.
//
//go:generate mockgen -destination=mocks/mock_store.go -package=mocks -source=interface.go Store
type Store interface {
	ReplaceTransactions(ctx context.Context, txns []*models.Transaction) error
	ListTransactions(ctx context.Context) ([]*models.Transaction, error)
	CountTransactions(ctx context.Context) (int, error)

	ReplaceGLEntries(ctx context.Context, entries []*models.GLEntry) error
	ListGLEntries(ctx context.Context) ([]*models.GLEntry, error)
	CountGLEntries(ctx context.Context) (int, error)

	ReplaceReconciliationResults(ctx context.Context, results []models.ReconciliationResult) error
	ListReconciliationResults(ctx context.Context, filter store.ResultFilter) ([]models.ReconciliationResult, error)
	CountReconciliationResults(ctx context.Context, statuses ...models.ReconciliationStatus) (int, error)

	ReplaceAnomalies(ctx context.Context, anomalies []models.AnomalyResult) error
	ListAnomalies(ctx context.Context, filter store.AnomalyFilter) ([]models.AnomalyResult, error)
	CountAnomalies(ctx context.Context) (int, error)

	UpsertQualityReport(ctx context.Context, report *models.DataQualityReport) error
	ListQualityReports(ctx context.Context) ([]*models.DataQualityReport, error)

	Close() error
}

var (
	_ Store = (*store.MemoryStore)(nil)
	_ Store = (*store.SQLiteStore)(nil)
)
