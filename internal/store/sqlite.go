package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/models"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/pkg/errors"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/pkg/logger"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const timeLayout = time.RFC3339Nano

// SQLiteStore keeps the collections in a SQLite database. Amounts are
// stored as decimal text so they round-trip exactly.
type SQLiteStore struct {
	db     *sql.DB
	logger logger.Logger
}

// OpenSQLite opens (or creates) a SQLite database at dsn and ensures all
// tables exist
func OpenSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.StorageError(errors.CodeStoreFailure, "open", fmt.Errorf("open db: %w", err))
	}
	// One connection keeps in-memory databases and write ordering consistent.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.StorageError(errors.CodeStoreFailure, "open", fmt.Errorf("set wal mode: %w", err))
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, errors.StorageError(errors.CodeStoreFailure, "open", fmt.Errorf("create tables: %w", err))
	}

	log := logger.WithComponent("store").WithField("driver", DriverSQLite)
	log.WithField("dsn", dsn).Info("Opened SQLite store")

	return &SQLiteStore{db: db, logger: log}, nil
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS transactions (
			seq INTEGER PRIMARY KEY,
			txn_id TEXT NOT NULL,
			date TEXT NOT NULL,
			amount TEXT NOT NULL,
			account_id TEXT NOT NULL,
			counterparty TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS general_ledger (
			seq INTEGER PRIMARY KEY,
			gl_id TEXT NOT NULL,
			date TEXT NOT NULL,
			debit_amount TEXT NOT NULL,
			credit_amount TEXT NOT NULL,
			account_id TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS reconciliation_results (
			seq INTEGER PRIMARY KEY,
			id TEXT NOT NULL,
			status TEXT NOT NULL,
			transaction_id TEXT,
			gl_id TEXT,
			account_id TEXT NOT NULL,
			date TEXT NOT NULL,
			amount_difference TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_status ON reconciliation_results(status)`,
		`CREATE INDEX IF NOT EXISTS idx_results_account ON reconciliation_results(account_id)`,

		`CREATE TABLE IF NOT EXISTS anomalies (
			seq INTEGER PRIMARY KEY,
			id TEXT NOT NULL,
			transaction_id TEXT NOT NULL,
			anomaly_type TEXT NOT NULL,
			anomaly_score REAL NOT NULL,
			detection_method TEXT NOT NULL,
			is_anomaly INTEGER NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_anomalies_method ON anomalies(detection_method)`,

		`CREATE TABLE IF NOT EXISTS data_quality (
			dataset_name TEXT PRIMARY KEY,
			total_records INTEGER NOT NULL,
			completeness_score REAL NOT NULL,
			consistency_score REAL NOT NULL,
			duplicate_count INTEGER NOT NULL,
			quality_score REAL NOT NULL,
			issues TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", strings.TrimSpace(stmt)[:40], err)
		}
	}

	return nil
}

// replace deletes every row of table and inserts n rows produced by args in
// one SQL transaction
func (s *SQLiteStore) replace(ctx context.Context, table, insert string, n int, args func(i int) []interface{}) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.StorageError(errors.CodeStoreFailure, table, fmt.Errorf("begin tx: %w", err))
	}
	defer sqlTx.Rollback()

	if _, err := sqlTx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return errors.StorageError(errors.CodeStoreFailure, table, fmt.Errorf("clear: %w", err))
	}

	stmt, err := sqlTx.PrepareContext(ctx, insert)
	if err != nil {
		return errors.StorageError(errors.CodeStoreFailure, table, fmt.Errorf("prepare: %w", err))
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return errors.StorageError(errors.CodeStoreFailure, table, fmt.Errorf("insert row %d: %w", i, err))
		}
	}

	if err := sqlTx.Commit(); err != nil {
		return errors.StorageError(errors.CodeStoreFailure, table, fmt.Errorf("commit: %w", err))
	}

	s.logger.WithFields(logger.Fields{
		"collection": table,
		"count":      n,
	}).Debug("Replaced collection")
	return nil
}

func (s *SQLiteStore) count(ctx context.Context, table, where string, args ...interface{}) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, errors.StorageError(errors.CodeStoreFailure, table, fmt.Errorf("count: %w", err))
	}
	return count, nil
}

// ReplaceTransactions swaps in a new transaction dataset
func (s *SQLiteStore) ReplaceTransactions(ctx context.Context, txns []*models.Transaction) error {
	return s.replace(ctx, CollectionTransactions,
		`INSERT INTO transactions (seq, txn_id, date, amount, account_id, counterparty, created_at)
		VALUES (?,?,?,?,?,?,?)`,
		len(txns), func(i int) []interface{} {
			t := txns[i]
			return []interface{}{i, t.TxnID, t.Date, t.Amount.String(), t.AccountID, t.Counterparty, formatTime(t.CreatedAt)}
		})
}

// ListTransactions returns the stored transactions in upload order
func (s *SQLiteStore) ListTransactions(ctx context.Context) ([]*models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT txn_id, date, amount, account_id, counterparty, created_at FROM transactions ORDER BY seq`)
	if err != nil {
		return nil, errors.StorageError(errors.CodeStoreFailure, CollectionTransactions, fmt.Errorf("query: %w", err))
	}
	defer rows.Close()

	var out []*models.Transaction
	for rows.Next() {
		var t models.Transaction
		var amount, createdAt string
		if err := rows.Scan(&t.TxnID, &t.Date, &amount, &t.AccountID, &t.Counterparty, &createdAt); err != nil {
			return nil, errors.StorageError(errors.CodeStoreFailure, CollectionTransactions, fmt.Errorf("scan: %w", err))
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, errors.StorageError(errors.CodeStoreFailure, CollectionTransactions, fmt.Errorf("decode amount: %w", err))
		}
		t.CreatedAt = parseTime(createdAt)
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StorageError(errors.CodeStoreFailure, CollectionTransactions, err)
	}
	return out, nil
}

// CountTransactions returns the number of stored transactions
func (s *SQLiteStore) CountTransactions(ctx context.Context) (int, error) {
	return s.count(ctx, CollectionTransactions, "")
}

// ReplaceGLEntries swaps in a new general ledger dataset
func (s *SQLiteStore) ReplaceGLEntries(ctx context.Context, entries []*models.GLEntry) error {
	return s.replace(ctx, CollectionGLEntries,
		`INSERT INTO general_ledger (seq, gl_id, date, debit_amount, credit_amount, account_id, created_at)
		VALUES (?,?,?,?,?,?,?)`,
		len(entries), func(i int) []interface{} {
			g := entries[i]
			return []interface{}{i, g.GLID, g.Date, g.DebitAmount.String(), g.CreditAmount.String(), g.AccountID, formatTime(g.CreatedAt)}
		})
}

// ListGLEntries returns the stored general ledger entries in upload order
func (s *SQLiteStore) ListGLEntries(ctx context.Context) ([]*models.GLEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT gl_id, date, debit_amount, credit_amount, account_id, created_at FROM general_ledger ORDER BY seq`)
	if err != nil {
		return nil, errors.StorageError(errors.CodeStoreFailure, CollectionGLEntries, fmt.Errorf("query: %w", err))
	}
	defer rows.Close()

	var out []*models.GLEntry
	for rows.Next() {
		var g models.GLEntry
		var debit, credit, createdAt string
		if err := rows.Scan(&g.GLID, &g.Date, &debit, &credit, &g.AccountID, &createdAt); err != nil {
			return nil, errors.StorageError(errors.CodeStoreFailure, CollectionGLEntries, fmt.Errorf("scan: %w", err))
		}
		if g.DebitAmount, err = decimal.NewFromString(debit); err != nil {
			return nil, errors.StorageError(errors.CodeStoreFailure, CollectionGLEntries, fmt.Errorf("decode debit: %w", err))
		}
		if g.CreditAmount, err = decimal.NewFromString(credit); err != nil {
			return nil, errors.StorageError(errors.CodeStoreFailure, CollectionGLEntries, fmt.Errorf("decode credit: %w", err))
		}
		g.CreatedAt = parseTime(createdAt)
		out = append(out, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StorageError(errors.CodeStoreFailure, CollectionGLEntries, err)
	}
	return out, nil
}

// CountGLEntries returns the number of stored general ledger entries
func (s *SQLiteStore) CountGLEntries(ctx context.Context) (int, error) {
	return s.count(ctx, CollectionGLEntries, "")
}

// ReplaceReconciliationResults swaps in the results of a reconciliation run
func (s *SQLiteStore) ReplaceReconciliationResults(ctx context.Context, results []models.ReconciliationResult) error {
	return s.replace(ctx, CollectionResults,
		`INSERT INTO reconciliation_results
		(seq, id, status, transaction_id, gl_id, account_id, date, amount_difference, created_at)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		len(results), func(i int) []interface{} {
			r := &results[i]
			var diff sql.NullString
			if r.AmountDifference != nil {
				diff = sql.NullString{String: r.AmountDifference.String(), Valid: true}
			}
			return []interface{}{i, r.ID, string(r.Status), nullString(r.TransactionID), nullString(r.GLID),
				r.AccountID, r.Date, diff, formatTime(r.CreatedAt)}
		})
}

// ListReconciliationResults returns the results passing filter
func (s *SQLiteStore) ListReconciliationResults(ctx context.Context, filter ResultFilter) ([]models.ReconciliationResult, error) {
	query := `SELECT id, status, transaction_id, gl_id, account_id, date, amount_difference, created_at
		FROM reconciliation_results`
	var where []string
	var args []interface{}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.AccountID != "" {
		where = append(where, "account_id = ?")
		args = append(args, filter.AccountID)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY seq"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.StorageError(errors.CodeStoreFailure, CollectionResults, fmt.Errorf("query: %w", err))
	}
	defer rows.Close()

	out := []models.ReconciliationResult{}
	for rows.Next() {
		var r models.ReconciliationResult
		var status, createdAt string
		var txnID, glID, diff sql.NullString
		if err := rows.Scan(&r.ID, &status, &txnID, &glID, &r.AccountID, &r.Date, &diff, &createdAt); err != nil {
			return nil, errors.StorageError(errors.CodeStoreFailure, CollectionResults, fmt.Errorf("scan: %w", err))
		}
		r.Status = models.ReconciliationStatus(status)
		r.TransactionID = txnID.String
		r.GLID = glID.String
		if diff.Valid {
			d, err := decimal.NewFromString(diff.String)
			if err != nil {
				return nil, errors.StorageError(errors.CodeStoreFailure, CollectionResults, fmt.Errorf("decode difference: %w", err))
			}
			r.AmountDifference = &d
		}
		r.CreatedAt = parseTime(createdAt)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StorageError(errors.CodeStoreFailure, CollectionResults, err)
	}
	return out, nil
}

// CountReconciliationResults counts results with any of the given statuses,
// or all results when none are given
func (s *SQLiteStore) CountReconciliationResults(ctx context.Context, statuses ...models.ReconciliationStatus) (int, error) {
	if len(statuses) == 0 {
		return s.count(ctx, CollectionResults, "")
	}
	placeholders := make([]string, len(statuses))
	args := make([]interface{}, len(statuses))
	for i, status := range statuses {
		placeholders[i] = "?"
		args[i] = string(status)
	}
	return s.count(ctx, CollectionResults, "status IN ("+strings.Join(placeholders, ",")+")", args...)
}

// ReplaceAnomalies swaps in the findings of a detection run
func (s *SQLiteStore) ReplaceAnomalies(ctx context.Context, anomalies []models.AnomalyResult) error {
	return s.replace(ctx, CollectionAnomalies,
		`INSERT INTO anomalies
		(seq, id, transaction_id, anomaly_type, anomaly_score, detection_method, is_anomaly, created_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		len(anomalies), func(i int) []interface{} {
			a := &anomalies[i]
			return []interface{}{i, a.ID, a.TransactionID, string(a.AnomalyType), a.AnomalyScore,
				string(a.DetectionMethod), a.IsAnomaly, formatTime(a.CreatedAt)}
		})
}

// ListAnomalies returns the findings passing filter
func (s *SQLiteStore) ListAnomalies(ctx context.Context, filter AnomalyFilter) ([]models.AnomalyResult, error) {
	query := `SELECT id, transaction_id, anomaly_type, anomaly_score, detection_method, is_anomaly, created_at
		FROM anomalies`
	var args []interface{}
	if filter.DetectionMethod != "" {
		query += " WHERE detection_method = ?"
		args = append(args, string(filter.DetectionMethod))
	}
	query += " ORDER BY seq"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.StorageError(errors.CodeStoreFailure, CollectionAnomalies, fmt.Errorf("query: %w", err))
	}
	defer rows.Close()

	out := []models.AnomalyResult{}
	for rows.Next() {
		var a models.AnomalyResult
		var anomalyType, method, createdAt string
		if err := rows.Scan(&a.ID, &a.TransactionID, &anomalyType, &a.AnomalyScore, &method, &a.IsAnomaly, &createdAt); err != nil {
			return nil, errors.StorageError(errors.CodeStoreFailure, CollectionAnomalies, fmt.Errorf("scan: %w", err))
		}
		a.AnomalyType = models.AnomalyType(anomalyType)
		a.DetectionMethod = models.DetectionMethod(method)
		a.CreatedAt = parseTime(createdAt)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StorageError(errors.CodeStoreFailure, CollectionAnomalies, err)
	}
	return out, nil
}

// CountAnomalies returns the number of stored findings
func (s *SQLiteStore) CountAnomalies(ctx context.Context) (int, error) {
	return s.count(ctx, CollectionAnomalies, "")
}

// UpsertQualityReport stores report, replacing any report with the same
// dataset name in place
func (s *SQLiteStore) UpsertQualityReport(ctx context.Context, report *models.DataQualityReport) error {
	issues, err := json.Marshal(report.Issues)
	if err != nil {
		return errors.StorageError(errors.CodeStoreFailure, CollectionQuality, fmt.Errorf("encode issues: %w", err))
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO data_quality
		(dataset_name, total_records, completeness_score, consistency_score, duplicate_count, quality_score, issues, created_at)
		VALUES (?,?,?,?,?,?,?,?)
		ON CONFLICT(dataset_name) DO UPDATE SET
			total_records = excluded.total_records,
			completeness_score = excluded.completeness_score,
			consistency_score = excluded.consistency_score,
			duplicate_count = excluded.duplicate_count,
			quality_score = excluded.quality_score,
			issues = excluded.issues,
			created_at = excluded.created_at`,
		report.DatasetName, report.TotalRecords, report.CompletenessScore, report.ConsistencyScore,
		report.DuplicateCount, report.QualityScore, string(issues), formatTime(report.CreatedAt),
	)
	if err != nil {
		return errors.StorageError(errors.CodeStoreFailure, CollectionQuality, fmt.Errorf("upsert: %w", err))
	}
	return nil
}

// ListQualityReports returns one report per dataset in first-upload order
func (s *SQLiteStore) ListQualityReports(ctx context.Context) ([]*models.DataQualityReport, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT dataset_name, total_records, completeness_score, consistency_score, duplicate_count,
		quality_score, issues, created_at FROM data_quality ORDER BY rowid`)
	if err != nil {
		return nil, errors.StorageError(errors.CodeStoreFailure, CollectionQuality, fmt.Errorf("query: %w", err))
	}
	defer rows.Close()

	var out []*models.DataQualityReport
	for rows.Next() {
		var r models.DataQualityReport
		var issues, createdAt string
		if err := rows.Scan(&r.DatasetName, &r.TotalRecords, &r.CompletenessScore, &r.ConsistencyScore,
			&r.DuplicateCount, &r.QualityScore, &issues, &createdAt); err != nil {
			return nil, errors.StorageError(errors.CodeStoreFailure, CollectionQuality, fmt.Errorf("scan: %w", err))
		}
		if err := json.Unmarshal([]byte(issues), &r.Issues); err != nil {
			return nil, errors.StorageError(errors.CodeStoreFailure, CollectionQuality, fmt.Errorf("decode issues: %w", err))
		}
		r.CreatedAt = parseTime(createdAt)
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StorageError(errors.CodeStoreFailure, CollectionQuality, err)
	}
	return out, nil
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return errors.StorageError(errors.CodeStoreFailure, "close", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
