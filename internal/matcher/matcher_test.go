package matcher

import (
	"fmt"
	"testing"

	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/models"

	"github.com/shopspring/decimal"
)

func txn(id, account, date, amount string) *models.Transaction {
	return models.NewTransaction(id, date, decimal.RequireFromString(amount), account, "")
}

func gl(id, account, date, debit, credit string) *models.GLEntry {
	return models.NewGLEntry(id, date, decimal.RequireFromString(debit), decimal.RequireFromString(credit), account)
}

func TestReconcile_EndToEndExamples(t *testing.T) {
	tests := []struct {
		name       string
		txns       []*models.Transaction
		gls        []*models.GLEntry
		wantStatus []models.ReconciliationStatus
		wantDiff   []string
	}{
		{
			name:       "exact match",
			txns:       []*models.Transaction{txn("T1", "ACC1", "2024-01-01", "100.00")},
			gls:        []*models.GLEntry{gl("G1", "ACC1", "2024-01-01", "100.00", "0.00")},
			wantStatus: []models.ReconciliationStatus{models.StatusMatched},
			wantDiff:   []string{"0"},
		},
		{
			name:       "difference of 150 exceeds the ceiling",
			txns:       []*models.Transaction{txn("T1", "ACC1", "2024-01-01", "100.00")},
			gls:        []*models.GLEntry{gl("G1", "ACC1", "2024-01-01", "250.00", "0.00")},
			wantStatus: []models.ReconciliationStatus{models.StatusMissingGL, models.StatusMissingTransaction},
			wantDiff:   []string{"", ""},
		},
		{
			name:       "empty ledger",
			txns:       []*models.Transaction{txn("T1", "ACC1", "2024-01-01", "100.00")},
			gls:        nil,
			wantStatus: []models.ReconciliationStatus{models.StatusMissingGL},
			wantDiff:   []string{""},
		},
		{
			name:       "credit entry nets negative",
			txns:       []*models.Transaction{txn("T1", "ACC1", "2024-01-01", "-500.00")},
			gls:        []*models.GLEntry{gl("G1", "ACC1", "2024-01-01", "0.00", "500.00")},
			wantStatus: []models.ReconciliationStatus{models.StatusMatched},
			wantDiff:   []string{"0"},
		},
		{
			name:       "within exact tolerance",
			txns:       []*models.Transaction{txn("T1", "ACC1", "2024-01-01", "100.00")},
			gls:        []*models.GLEntry{gl("G1", "ACC1", "2024-01-01", "100.009", "0")},
			wantStatus: []models.ReconciliationStatus{models.StatusMatched},
			wantDiff:   []string{"0"},
		},
		{
			name:       "different date is not a candidate",
			txns:       []*models.Transaction{txn("T1", "ACC1", "2024-01-01", "100.00")},
			gls:        []*models.GLEntry{gl("G1", "ACC1", "2024-01-02", "100.00", "0")},
			wantStatus: []models.ReconciliationStatus{models.StatusMissingGL, models.StatusMissingTransaction},
			wantDiff:   []string{"", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := Reconcile(tt.txns, tt.gls)

			if len(results) != len(tt.wantStatus) {
				t.Fatalf("expected %d results, got %d: %+v", len(tt.wantStatus), len(results), results)
			}
			for i, r := range results {
				if r.Status != tt.wantStatus[i] {
					t.Errorf("result %d: expected status %s, got %s", i, tt.wantStatus[i], r.Status)
				}
				if tt.wantDiff[i] == "" {
					if r.AmountDifference != nil {
						t.Errorf("result %d: expected no amount difference, got %s", i, r.AmountDifference)
					}
					continue
				}
				if r.AmountDifference == nil {
					t.Fatalf("result %d: expected amount difference %s, got nil", i, tt.wantDiff[i])
				}
				if !r.AmountDifference.Equal(decimal.RequireFromString(tt.wantDiff[i])) {
					t.Errorf("result %d: expected amount difference %s, got %s", i, tt.wantDiff[i], r.AmountDifference)
				}
			}
		})
	}
}

func TestReconcile_MismatchWithinCeiling(t *testing.T) {
	results := Reconcile(
		[]*models.Transaction{txn("T1", "ACC1", "2024-01-01", "100.00")},
		[]*models.GLEntry{gl("G1", "ACC1", "2024-01-01", "150.00", "0.00")},
	)

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.Status != models.StatusAmountMismatch {
		t.Fatalf("expected amount_mismatch, got %s", r.Status)
	}
	if r.GLID != "G1" || r.TransactionID != "T1" {
		t.Errorf("expected pairing T1/G1, got %s/%s", r.TransactionID, r.GLID)
	}
	if !r.AmountDifference.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected difference 50, got %s", r.AmountDifference)
	}
}

func TestReconcile_MismatchBoundary(t *testing.T) {
	tests := []struct {
		name   string
		debit  string
		status models.ReconciliationStatus
	}{
		{"difference 99.99 is a mismatch", "199.99", models.StatusAmountMismatch},
		{"difference 100.00 is not a candidate", "200.00", models.StatusMissingGL},
		{"difference -99.99 is a mismatch", "0.01", models.StatusAmountMismatch},
		{"difference 0.01 is a mismatch", "100.01", models.StatusAmountMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := Reconcile(
				[]*models.Transaction{txn("T1", "ACC1", "2024-01-01", "100.00")},
				[]*models.GLEntry{gl("G1", "ACC1", "2024-01-01", tt.debit, "0")},
			)
			if results[0].Status != tt.status {
				t.Errorf("expected %s, got %s", tt.status, results[0].Status)
			}
		})
	}
}

func TestReconcile_ScanContinuesPastNonCandidates(t *testing.T) {
	results := Reconcile(
		[]*models.Transaction{txn("T1", "ACC1", "2024-01-01", "100.00")},
		[]*models.GLEntry{
			gl("G1", "ACC1", "2024-01-01", "900.00", "0"),
			gl("G2", "ACC1", "2024-01-01", "100.00", "0"),
		},
	)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Status != models.StatusMatched || results[0].GLID != "G2" {
		t.Errorf("expected T1 matched to G2, got %s with %s", results[0].Status, results[0].GLID)
	}
	if results[1].Status != models.StatusMissingTransaction || results[1].GLID != "G1" {
		t.Errorf("expected G1 missing_transaction, got %s with %s", results[1].Status, results[1].GLID)
	}
}

func TestReconcile_MismatchIsTerminal(t *testing.T) {
	// G1 is within the ceiling, so T1 stops there even though G2 would match exactly.
	results := Reconcile(
		[]*models.Transaction{txn("T1", "ACC1", "2024-01-01", "100.00")},
		[]*models.GLEntry{
			gl("G1", "ACC1", "2024-01-01", "120.00", "0"),
			gl("G2", "ACC1", "2024-01-01", "100.00", "0"),
		},
	)

	if results[0].Status != models.StatusAmountMismatch || results[0].GLID != "G1" {
		t.Errorf("expected mismatch against G1, got %s with %s", results[0].Status, results[0].GLID)
	}
	if results[1].Status != models.StatusMissingTransaction || results[1].GLID != "G2" {
		t.Errorf("expected G2 left unclaimed, got %s with %s", results[1].Status, results[1].GLID)
	}
}

func TestReconcile_ClaimedEntriesAreSkipped(t *testing.T) {
	results := Reconcile(
		[]*models.Transaction{
			txn("T1", "ACC1", "2024-01-01", "100.00"),
			txn("T2", "ACC1", "2024-01-01", "100.00"),
		},
		[]*models.GLEntry{gl("G1", "ACC1", "2024-01-01", "100.00", "0")},
	)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Status != models.StatusMatched {
		t.Errorf("expected first transaction matched, got %s", results[0].Status)
	}
	if results[1].Status != models.StatusMissingGL {
		t.Errorf("expected second transaction missing_gl, got %s", results[1].Status)
	}
}

func TestReconcile_DuplicateGLIDsClaimedByPosition(t *testing.T) {
	results := Reconcile(
		[]*models.Transaction{
			txn("T1", "ACC1", "2024-01-01", "10"),
			txn("T2", "ACC1", "2024-01-01", "10"),
		},
		[]*models.GLEntry{
			gl("DUP", "ACC1", "2024-01-01", "10", "0"),
			gl("DUP", "ACC1", "2024-01-01", "10", "0"),
		},
	)

	for i, r := range results {
		if r.Status != models.StatusMatched {
			t.Errorf("result %d: expected matched, got %s", i, r.Status)
		}
	}
	if len(results) != 2 {
		t.Errorf("expected both entries claimed, got %d results", len(results))
	}
}

func TestReconcile_CoverageAndClaimExclusivity(t *testing.T) {
	var txns []*models.Transaction
	var gls []*models.GLEntry
	for i := 0; i < 40; i++ {
		account := fmt.Sprintf("ACC%d", i%3)
		date := fmt.Sprintf("2024-01-%02d", 1+i%5)
		txns = append(txns, txn(fmt.Sprintf("T%d", i), account, date, fmt.Sprintf("%d.00", 100+i*7%60)))
	}
	for i := 0; i < 35; i++ {
		account := fmt.Sprintf("ACC%d", i%4)
		date := fmt.Sprintf("2024-01-%02d", 1+i%6)
		gls = append(gls, gl(fmt.Sprintf("G%d", i), account, date, fmt.Sprintf("%d.00", 100+i*11%90), "0"))
	}

	results := Reconcile(txns, gls)

	seenTxn := make(map[string]int)
	claimedGL := make(map[string]int)
	missingTxn := 0
	for _, r := range results {
		if r.TransactionID != "" {
			seenTxn[r.TransactionID]++
		}
		switch r.Status {
		case models.StatusMatched, models.StatusAmountMismatch:
			claimedGL[r.GLID]++
		case models.StatusMissingTransaction:
			missingTxn++
			if r.TransactionID != "" {
				t.Errorf("missing_transaction result carries transaction %s", r.TransactionID)
			}
		case models.StatusMissingGL:
			if r.GLID != "" {
				t.Errorf("missing_gl result carries GL %s", r.GLID)
			}
		}
	}

	for _, tx := range txns {
		if seenTxn[tx.TxnID] != 1 {
			t.Errorf("transaction %s appears %d times", tx.TxnID, seenTxn[tx.TxnID])
		}
	}
	for id, n := range claimedGL {
		if n != 1 {
			t.Errorf("GL entry %s claimed %d times", id, n)
		}
	}
	if want := len(txns) + len(gls) - len(claimedGL); len(results) != want {
		t.Errorf("expected %d results, got %d", want, len(results))
	}
	if missingTxn != len(gls)-len(claimedGL) {
		t.Errorf("expected %d missing_transaction results, got %d", len(gls)-len(claimedGL), missingTxn)
	}
}

func TestMatchingEngine_CustomTolerances(t *testing.T) {
	config := DefaultMatchingConfig()
	config.MismatchCeiling = decimal.NewFromInt(500)
	engine := NewMatchingEngine(config)

	results := engine.Reconcile(
		[]*models.Transaction{txn("T1", "ACC1", "2024-01-01", "100.00")},
		[]*models.GLEntry{gl("G1", "ACC1", "2024-01-01", "350.00", "0")},
	)

	if results[0].Status != models.StatusAmountMismatch {
		t.Errorf("expected amount_mismatch under raised ceiling, got %s", results[0].Status)
	}
}

func TestMatchingConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*MatchingConfig)
		wantErr bool
	}{
		{"defaults", func(*MatchingConfig) {}, false},
		{"zero tolerance", func(c *MatchingConfig) { c.ExactTolerance = decimal.Zero }, true},
		{"negative ceiling", func(c *MatchingConfig) { c.MismatchCeiling = decimal.NewFromInt(-1) }, true},
		{"ceiling below tolerance", func(c *MatchingConfig) {
			c.ExactTolerance = decimal.NewFromInt(5)
			c.MismatchCeiling = decimal.NewFromInt(1)
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultMatchingConfig()
			tt.modify(config)
			if err := config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMatchingConfig_CloneIsIndependent(t *testing.T) {
	original := DefaultMatchingConfig()
	clone := original.Clone()
	clone.MismatchCeiling = decimal.NewFromInt(1)

	if !original.MismatchCeiling.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected original ceiling unchanged, got %s", original.MismatchCeiling)
	}
}

func TestSummarize(t *testing.T) {
	results := Reconcile(
		[]*models.Transaction{
			txn("T1", "ACC1", "2024-01-01", "100"),
			txn("T2", "ACC1", "2024-01-02", "100"),
			txn("T3", "ACC2", "2024-01-01", "5"),
		},
		[]*models.GLEntry{
			gl("G1", "ACC1", "2024-01-01", "100", "0"),
			gl("G2", "ACC1", "2024-01-02", "130", "0"),
			gl("G3", "ACC3", "2024-01-03", "1", "0"),
		},
	)

	summary := Summarize(results, 3, 3)
	if summary.Matched != 1 || summary.AmountMismatches != 1 || summary.MissingGL != 1 || summary.MissingTransactions != 1 {
		t.Errorf("unexpected summary %+v", summary)
	}
	if !summary.TotalDifference.Equal(decimal.NewFromInt(30)) {
		t.Errorf("expected total difference 30, got %s", summary.TotalDifference)
	}
	if summary.MatchRate() != 25 {
		t.Errorf("expected match rate 25, got %f", summary.MatchRate())
	}
}

func TestGLIndex_CandidatesKeepInputOrder(t *testing.T) {
	index := NewGLIndex([]*models.GLEntry{
		gl("G1", "ACC1", "2024-01-01", "1", "0"),
		gl("G2", "ACC2", "2024-01-01", "1", "0"),
		gl("G3", "ACC1", "2024-01-01", "1", "0"),
	})

	got := index.Candidates(txn("T1", "ACC1", "2024-01-01", "1"))
	if len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("expected positions [0 2], got %v", got)
	}

	stats := index.GetIndexStats()
	if stats.TotalEntries != 3 || stats.UniqueKeys != 2 || stats.LargestGroup != 2 {
		t.Errorf("unexpected stats %+v", stats)
	}
}
