package matcher

import (
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/models"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/pkg/logger"

	"github.com/shopspring/decimal"
)

// MatchingEngine is the core engine responsible for transaction matching
type MatchingEngine struct {
	Config *MatchingConfig
	logger logger.Logger
}

// ReconciliationSummary provides aggregate statistics about a run
type ReconciliationSummary struct {
	TotalTransactions   int
	TotalGLEntries      int
	Matched             int
	AmountMismatches    int
	MissingGL           int
	MissingTransactions int
	TotalDifference     decimal.Decimal
}

// NewMatchingEngine creates a new matching engine with the specified configuration
func NewMatchingEngine(config *MatchingConfig) *MatchingEngine {
	if config == nil {
		config = DefaultMatchingConfig()
	}

	return &MatchingEngine{
		Config: config,
		logger: logger.WithComponent("matcher"),
	}
}

// Reconcile pairs transactions with GL entries and returns one verdict per
// transaction followed by one missing_transaction verdict per unclaimed GL
// entry. Both inputs are visited in the order given.
func (me *MatchingEngine) Reconcile(transactions []*models.Transaction, glEntries []*models.GLEntry) []models.ReconciliationResult {
	index := NewGLIndex(glEntries)
	claimed := make([]bool, len(glEntries))
	results := make([]models.ReconciliationResult, 0, len(transactions)+len(glEntries))

	for _, txn := range transactions {
		result, pos := me.matchTransaction(txn, index, claimed)
		if pos >= 0 {
			claimed[pos] = true
		}
		results = append(results, result)
	}

	for pos, entry := range glEntries {
		if claimed[pos] {
			continue
		}
		results = append(results, models.ReconciliationResult{
			Status:    models.StatusMissingTransaction,
			GLID:      entry.GLID,
			AccountID: entry.AccountID,
			Date:      entry.Date,
		})
	}

	stats := index.GetIndexStats()
	me.logger.WithFields(logger.Fields{
		"transactions":  len(transactions),
		"gl_entries":    len(glEntries),
		"gl_groups":     stats.UniqueKeys,
		"largest_group": stats.LargestGroup,
		"results":       len(results),
	}).Debug("Reconciliation matching finished")

	return results
}

// matchTransaction scans the transaction's account/date group and returns
// the verdict plus the claimed GL position, or -1 when nothing was claimed.
func (me *MatchingEngine) matchTransaction(txn *models.Transaction, index *GLIndex, claimed []bool) (models.ReconciliationResult, int) {
	for _, pos := range index.Candidates(txn) {
		if claimed[pos] {
			continue
		}

		entry := index.Entries[pos]
		diff := entry.Net().Sub(txn.Amount)

		if me.Config.IsExact(diff) {
			zero := decimal.Zero
			return models.ReconciliationResult{
				Status:           models.StatusMatched,
				TransactionID:    txn.TxnID,
				GLID:             entry.GLID,
				AccountID:        txn.AccountID,
				Date:             txn.Date,
				AmountDifference: &zero,
			}, pos
		}

		if me.Config.IsMismatch(diff) {
			return models.ReconciliationResult{
				Status:           models.StatusAmountMismatch,
				TransactionID:    txn.TxnID,
				GLID:             entry.GLID,
				AccountID:        txn.AccountID,
				Date:             txn.Date,
				AmountDifference: &diff,
			}, pos
		}
	}

	return models.ReconciliationResult{
		Status:        models.StatusMissingGL,
		TransactionID: txn.TxnID,
		AccountID:     txn.AccountID,
		Date:          txn.Date,
	}, -1
}

// Reconcile runs the matcher with the default tolerances
func Reconcile(transactions []*models.Transaction, glEntries []*models.GLEntry) []models.ReconciliationResult {
	return NewMatchingEngine(nil).Reconcile(transactions, glEntries)
}

// Summarize counts verdicts by status
func Summarize(results []models.ReconciliationResult, totalTransactions, totalGLEntries int) ReconciliationSummary {
	summary := ReconciliationSummary{
		TotalTransactions: totalTransactions,
		TotalGLEntries:    totalGLEntries,
		TotalDifference:   decimal.Zero,
	}

	for _, r := range results {
		switch r.Status {
		case models.StatusMatched:
			summary.Matched++
		case models.StatusAmountMismatch:
			summary.AmountMismatches++
		case models.StatusMissingGL:
			summary.MissingGL++
		case models.StatusMissingTransaction:
			summary.MissingTransactions++
		}
		if r.AmountDifference != nil {
			summary.TotalDifference = summary.TotalDifference.Add(*r.AmountDifference)
		}
	}

	return summary
}

// MatchRate returns matched verdicts as a percentage of all verdicts
func (s ReconciliationSummary) MatchRate() float64 {
	total := s.Matched + s.AmountMismatches + s.MissingGL + s.MissingTransactions
	if total == 0 {
		return 0
	}
	return float64(s.Matched) / float64(total) * 100
}
