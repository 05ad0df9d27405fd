// Package store persists datasets and run results.
//
// Every collection except quality reports is replaced wholesale: a replace
// either installs the complete new set or leaves the previous set untouched.
// Quality reports are upserted by dataset name. Listing returns records in
// the order they were written.
//
// Two implementations are provided. MemoryStore keeps everything in process
// memory and is used by the batch CLI commands and tests. SQLiteStore keeps
// the collections in a SQLite database file through database/sql.
package store

import (
	"fmt"
	"strings"

	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/models"
)

// Driver names accepted by Config
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Collection names used in logs and storage errors
const (
	CollectionTransactions = "transactions"
	CollectionGLEntries    = "general_ledger"
	CollectionResults      = "reconciliation_results"
	CollectionAnomalies    = "anomalies"
	CollectionQuality      = "data_quality"
)

// Config selects and configures a store implementation
type Config struct {
	Driver string `json:"driver" mapstructure:"driver"`
	DSN    string `json:"dsn" mapstructure:"dsn"`
}

// DefaultConfig returns an in-memory store configuration
func DefaultConfig() *Config {
	return &Config{
		Driver: DriverMemory,
	}
}

// Validate checks if the store configuration is valid
func (c *Config) Validate() error {
	switch strings.ToLower(c.Driver) {
	case DriverMemory:
		return nil
	case DriverSQLite:
		if strings.TrimSpace(c.DSN) == "" {
			return fmt.Errorf("sqlite store requires a DSN")
		}
		return nil
	default:
		return fmt.Errorf("unknown store driver %q (expected %s or %s)", c.Driver, DriverMemory, DriverSQLite)
	}
}

// ResultFilter narrows a reconciliation result listing. Empty fields match
// everything.
type ResultFilter struct {
	Status    models.ReconciliationStatus
	AccountID string
}

// Matches reports whether r passes the filter
func (f ResultFilter) Matches(r *models.ReconciliationResult) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.AccountID != "" && r.AccountID != f.AccountID {
		return false
	}
	return true
}

// AnomalyFilter narrows an anomaly listing. An empty method matches
// everything.
type AnomalyFilter struct {
	DetectionMethod models.DetectionMethod
}

// Matches reports whether a passes the filter
func (f AnomalyFilter) Matches(a *models.AnomalyResult) bool {
	return f.DetectionMethod == "" || a.DetectionMethod == f.DetectionMethod
}
