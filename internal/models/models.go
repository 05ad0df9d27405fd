package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ReconciliationStatus is the verdict the matcher assigns to a transaction or GL entry
type ReconciliationStatus string

const (
	// StatusMatched means net GL amount and transaction amount agree within tolerance
	StatusMatched ReconciliationStatus = "matched"
	// StatusAmountMismatch means a same-account, same-date GL entry was paired with a difference
	StatusAmountMismatch ReconciliationStatus = "amount_mismatch"
	// StatusMissingGL means no GL entry could be paired with the transaction
	StatusMissingGL ReconciliationStatus = "missing_gl"
	// StatusMissingTransaction means the GL entry was never claimed by a transaction
	StatusMissingTransaction ReconciliationStatus = "missing_transaction"
)

// String returns the string representation of ReconciliationStatus
func (s ReconciliationStatus) String() string {
	return string(s)
}

// IsValid checks if the status is one of the known verdicts
func (s ReconciliationStatus) IsValid() bool {
	switch s {
	case StatusMatched, StatusAmountMismatch, StatusMissingGL, StatusMissingTransaction:
		return true
	}
	return false
}

// AnomalyType identifies the sub-pipeline and model that produced a finding
type AnomalyType string

const (
	AnomalyTypeStatistical     AnomalyType = "statistical"
	AnomalyTypeIsolationForest AnomalyType = "ml_isolation_forest"
	AnomalyTypeOneClassSVM     AnomalyType = "ml_one_class_svm"
)

// IsValid checks if the anomaly type is known
func (t AnomalyType) IsValid() bool {
	switch t {
	case AnomalyTypeStatistical, AnomalyTypeIsolationForest, AnomalyTypeOneClassSVM:
		return true
	}
	return false
}

// DetectionMethod identifies the scoring method that flagged a transaction
type DetectionMethod string

const (
	MethodZScore          DetectionMethod = "z_score"
	MethodIQR             DetectionMethod = "iqr"
	MethodIsolationForest DetectionMethod = "isolation_forest"
	MethodOneClassSVM     DetectionMethod = "one_class_svm"
)

// IsValid checks if the detection method is known
func (m DetectionMethod) IsValid() bool {
	switch m {
	case MethodZScore, MethodIQR, MethodIsolationForest, MethodOneClassSVM:
		return true
	}
	return false
}

// Transaction represents a row of the transaction ledger
type Transaction struct {
	TxnID        string          `json:"txn_id"`
	Date         string          `json:"date"`
	Amount       decimal.Decimal `json:"amount"`
	AccountID    string          `json:"account_id"`
	Counterparty string          `json:"counterparty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// NewTransaction creates a new Transaction instance
func NewTransaction(txnID, date string, amount decimal.Decimal, accountID, counterparty string) *Transaction {
	return &Transaction{
		TxnID:        txnID,
		Date:         date,
		Amount:       amount,
		AccountID:    accountID,
		Counterparty: counterparty,
	}
}

// Validate performs basic validation on the Transaction
func (t *Transaction) Validate() error {
	if strings.TrimSpace(t.TxnID) == "" {
		return fmt.Errorf("transaction ID cannot be empty")
	}
	if strings.TrimSpace(t.AccountID) == "" {
		return fmt.Errorf("transaction %s has no account ID", t.TxnID)
	}
	return nil
}

// String returns a string representation of the Transaction
func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction{ID: %s, Account: %s, Date: %s, Amount: %s}",
		t.TxnID, t.AccountID, t.Date, t.Amount.String())
}

// MarshalJSON emits the amount as a JSON number
func (t Transaction) MarshalJSON() ([]byte, error) {
	type Alias Transaction
	return json.Marshal(&struct {
		Amount json.RawMessage `json:"amount"`
		Alias
	}{
		Amount: decimalNumber(t.Amount),
		Alias:  Alias(t),
	})
}

// GLEntry represents a row of the general ledger
type GLEntry struct {
	GLID         string          `json:"gl_id"`
	Date         string          `json:"date"`
	DebitAmount  decimal.Decimal `json:"debit_amount"`
	CreditAmount decimal.Decimal `json:"credit_amount"`
	AccountID    string          `json:"account_id"`
	CreatedAt    time.Time       `json:"created_at"`
}

// NewGLEntry creates a new GLEntry instance
func NewGLEntry(glID, date string, debit, credit decimal.Decimal, accountID string) *GLEntry {
	return &GLEntry{
		GLID:         glID,
		Date:         date,
		DebitAmount:  debit,
		CreditAmount: credit,
		AccountID:    accountID,
	}
}

// Net returns the signed amount of the entry, debit minus credit
func (g *GLEntry) Net() decimal.Decimal {
	return g.DebitAmount.Sub(g.CreditAmount)
}

// Validate performs basic validation on the GLEntry
func (g *GLEntry) Validate() error {
	if strings.TrimSpace(g.GLID) == "" {
		return fmt.Errorf("GL entry ID cannot be empty")
	}
	if strings.TrimSpace(g.AccountID) == "" {
		return fmt.Errorf("GL entry %s has no account ID", g.GLID)
	}
	if g.DebitAmount.IsNegative() {
		return fmt.Errorf("GL entry %s has negative debit amount %s", g.GLID, g.DebitAmount)
	}
	if g.CreditAmount.IsNegative() {
		return fmt.Errorf("GL entry %s has negative credit amount %s", g.GLID, g.CreditAmount)
	}
	return nil
}

// String returns a string representation of the GLEntry
func (g *GLEntry) String() string {
	return fmt.Sprintf("GLEntry{ID: %s, Account: %s, Date: %s, Debit: %s, Credit: %s}",
		g.GLID, g.AccountID, g.Date, g.DebitAmount.String(), g.CreditAmount.String())
}

// MarshalJSON emits debit and credit as JSON numbers
func (g GLEntry) MarshalJSON() ([]byte, error) {
	type Alias GLEntry
	return json.Marshal(&struct {
		DebitAmount  json.RawMessage `json:"debit_amount"`
		CreditAmount json.RawMessage `json:"credit_amount"`
		Alias
	}{
		DebitAmount:  decimalNumber(g.DebitAmount),
		CreditAmount: decimalNumber(g.CreditAmount),
		Alias:        Alias(g),
	})
}

// ReconciliationResult is one verdict emitted by a reconciliation run
type ReconciliationResult struct {
	ID               string               `json:"id"`
	Status           ReconciliationStatus `json:"status"`
	TransactionID    string               `json:"transaction_id,omitempty"`
	GLID             string               `json:"gl_id,omitempty"`
	AccountID        string               `json:"account_id"`
	Date             string               `json:"date"`
	AmountDifference *decimal.Decimal     `json:"amount_difference,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
}

// HasTransaction reports whether the verdict references a transaction
func (r *ReconciliationResult) HasTransaction() bool {
	return r.TransactionID != ""
}

// HasGL reports whether the verdict references a GL entry
func (r *ReconciliationResult) HasGL() bool {
	return r.GLID != ""
}

// MarshalJSON emits the amount difference as a JSON number or null
func (r ReconciliationResult) MarshalJSON() ([]byte, error) {
	type Alias ReconciliationResult
	diff := json.RawMessage("null")
	if r.AmountDifference != nil {
		diff = decimalNumber(*r.AmountDifference)
	}
	var txnID, glID *string
	if r.TransactionID != "" {
		txnID = &r.TransactionID
	}
	if r.GLID != "" {
		glID = &r.GLID
	}
	return json.Marshal(&struct {
		TransactionID    *string         `json:"transaction_id"`
		GLID             *string         `json:"gl_id"`
		AmountDifference json.RawMessage `json:"amount_difference"`
		Alias
	}{
		TransactionID:    txnID,
		GLID:             glID,
		AmountDifference: diff,
		Alias:            Alias(r),
	})
}

// AnomalyResult is one finding emitted by an anomaly detection run
type AnomalyResult struct {
	ID              string          `json:"id"`
	TransactionID   string          `json:"transaction_id"`
	AnomalyType     AnomalyType     `json:"anomaly_type"`
	AnomalyScore    float64         `json:"anomaly_score"`
	DetectionMethod DetectionMethod `json:"detection_method"`
	IsAnomaly       bool            `json:"is_anomaly"`
	CreatedAt       time.Time       `json:"created_at"`
}

// NewAnomalyResult creates a flagged finding
func NewAnomalyResult(txnID string, anomalyType AnomalyType, method DetectionMethod, score float64) AnomalyResult {
	return AnomalyResult{
		TransactionID:   txnID,
		AnomalyType:     anomalyType,
		AnomalyScore:    score,
		DetectionMethod: method,
		IsAnomaly:       true,
	}
}

// DataQualityReport summarises completeness and consistency of one dataset
type DataQualityReport struct {
	DatasetName       string    `json:"dataset_name"`
	TotalRecords      int       `json:"total_records"`
	CompletenessScore float64   `json:"completeness_score"`
	ConsistencyScore  float64   `json:"consistency_score"`
	DuplicateCount    int       `json:"duplicate_count"`
	QualityScore      float64   `json:"quality_score"`
	Issues            []string  `json:"issues"`
	CreatedAt         time.Time `json:"created_at"`
}

// DashboardStats aggregates the state of the store for the dashboard
type DashboardStats struct {
	TotalTransactions      int     `json:"total_transactions"`
	TotalGLEntries         int     `json:"total_gl_entries"`
	MatchedCount           int     `json:"matched_count"`
	UnmatchedCount         int     `json:"unmatched_count"`
	AnomaliesDetected      int     `json:"anomalies_detected"`
	DataQualityScore       float64 `json:"data_quality_score"`
	ReconciliationAccuracy float64 `json:"reconciliation_accuracy"`
}

func decimalNumber(d decimal.Decimal) json.RawMessage {
	return json.RawMessage(d.String())
}

// ParseDecimalFromString parses a decimal value from string with validation
func ParseDecimalFromString(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount string cannot be empty")
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal format '%s': %w", s, err)
	}

	return d, nil
}

var timeFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// ParseTimeWithFormats attempts to parse time from string using multiple common formats
func ParseTimeWithFormats(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("time string cannot be empty")
	}

	var lastErr error
	for _, format := range timeFormats {
		t, err := time.Parse(format, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}

	return time.Time{}, fmt.Errorf("unable to parse time '%s': %w", s, lastErr)
}

// ParseCalendarDate parses s and truncates it to midnight UTC
func ParseCalendarDate(s string) (time.Time, error) {
	t, err := ParseTimeWithFormats(s)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}
