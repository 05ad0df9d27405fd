package anomaly

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/models"

	"github.com/shopspring/decimal"
)

// outlierLedger returns 19 near-identical amounts followed by one extreme
// amount, all on the same date
func outlierLedger() []*models.Transaction {
	txns := make([]*models.Transaction, 0, 20)
	for i := 0; i < 19; i++ {
		amount := decimal.NewFromFloat(100).Add(decimal.NewFromFloat(float64(i) * 0.01))
		txns = append(txns, models.NewTransaction(fmt.Sprintf("T%02d", i+1), "2024-01-01", amount, "ACC1", "Vendor"))
	}
	return append(txns, models.NewTransaction("T20", "2024-01-01", decimal.NewFromInt(100000), "ACC1", "Vendor"))
}

func TestBuildFeatures(t *testing.T) {
	txns := []*models.Transaction{
		models.NewTransaction("T1", "2024-01-01", decimal.NewFromInt(10), "ACC1", ""),
		models.NewTransaction("T2", "2024-01-03T15:30:00Z", decimal.NewFromInt(-5), "ACC1", ""),
	}

	fm := BuildFeatures(txns)
	if fm.DateFallback {
		t.Fatal("DateFallback set for parseable dates")
	}

	want := [][]float64{{10, 0, 0}, {-5, 2, 15}}
	for i := range want {
		for j := range want[i] {
			if fm.Rows[i][j] != want[i][j] {
				t.Errorf("Rows[%d][%d] = %v, want %v", i, j, fm.Rows[i][j], want[i][j])
			}
		}
	}
}

func TestBuildFeatures_FallbackAppliesToEveryRow(t *testing.T) {
	txns := []*models.Transaction{
		models.NewTransaction("T1", "2024-01-03T15:30:00Z", decimal.NewFromInt(10), "ACC1", ""),
		models.NewTransaction("T2", "not a date", decimal.NewFromInt(20), "ACC1", ""),
		models.NewTransaction("T3", "2024-01-05", decimal.NewFromInt(30), "ACC1", ""),
	}

	fm := BuildFeatures(txns)
	if !fm.DateFallback {
		t.Fatal("expected DateFallback for an unparseable date")
	}
	for i, row := range fm.Rows {
		if row[1] != fallbackWeekday || row[2] != fallbackHour {
			t.Errorf("row %d = %v, want fallback weekday and hour", i, row)
		}
	}
	if fm.Rows[2][0] != 30 {
		t.Errorf("amount not preserved: %v", fm.Rows[2][0])
	}
}

func TestDetectML_TooFewTransactions(t *testing.T) {
	txns := outlierLedger()[:9]
	results, err := DetectML(txns)
	if err != nil {
		t.Fatalf("DetectML() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results below the minimum, got %d", len(results))
	}
}

func TestDetectML_FlagsOutlier(t *testing.T) {
	results, err := DetectML(outlierLedger())
	if err != nil {
		t.Fatalf("DetectML() error = %v", err)
	}

	seen := make(map[string]int)
	var outlier *models.AnomalyResult
	for i := range results {
		r := results[i]
		seen[r.TransactionID]++
		if r.AnomalyScore < 0 || math.IsNaN(r.AnomalyScore) {
			t.Errorf("invalid score %v for %s", r.AnomalyScore, r.TransactionID)
		}
		switch r.DetectionMethod {
		case models.MethodIsolationForest:
			if r.AnomalyType != models.AnomalyTypeIsolationForest {
				t.Errorf("method %s paired with type %s", r.DetectionMethod, r.AnomalyType)
			}
		case models.MethodOneClassSVM:
			if r.AnomalyType != models.AnomalyTypeOneClassSVM {
				t.Errorf("method %s paired with type %s", r.DetectionMethod, r.AnomalyType)
			}
		default:
			t.Errorf("unexpected method %s", r.DetectionMethod)
		}
		if r.TransactionID == "T20" {
			outlier = &results[i]
		}
	}

	for id, n := range seen {
		if n > 1 {
			t.Errorf("transaction %s reported %d times by the ML sub-pipeline", id, n)
		}
	}
	if outlier == nil {
		t.Fatal("extreme amount was not flagged")
	}
	if outlier.DetectionMethod != models.MethodIsolationForest {
		t.Errorf("extreme amount flagged by %s, want %s", outlier.DetectionMethod, models.MethodIsolationForest)
	}
}

func TestDetectML_Deterministic(t *testing.T) {
	first, err := DetectML(outlierLedger())
	if err != nil {
		t.Fatal(err)
	}
	second, err := DetectML(outlierLedger())
	if err != nil {
		t.Fatal(err)
	}

	if len(first) != len(second) {
		t.Fatalf("result counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].TransactionID != second[i].TransactionID ||
			first[i].DetectionMethod != second[i].DetectionMethod ||
			first[i].AnomalyScore != second[i].AnomalyScore {
			t.Errorf("result %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestDetectML_ConstantAmounts(t *testing.T) {
	txns := make([]*models.Transaction, 12)
	for i := range txns {
		txns[i] = models.NewTransaction(fmt.Sprintf("T%d", i), "2024-01-01", decimal.NewFromInt(75), "ACC1", "")
	}

	results, err := DetectML(txns)
	if err != nil {
		t.Fatalf("DetectML() error = %v", err)
	}
	for _, r := range results {
		if math.IsNaN(r.AnomalyScore) || math.IsInf(r.AnomalyScore, 0) {
			t.Errorf("non-finite score for %s", r.TransactionID)
		}
	}
}

func TestDetect_SubPipelinesAreIndependent(t *testing.T) {
	report, err := NewDetector(nil).Detect(context.Background(), outlierLedger())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if len(report.Statistical) == 0 || len(report.ML) == 0 {
		t.Fatalf("expected findings from both sub-pipelines, got %d statistical and %d ML",
			len(report.Statistical), len(report.ML))
	}

	all := report.All()
	if len(all) != len(report.Statistical)+len(report.ML) {
		t.Fatalf("All() returned %d results, want %d", len(all), len(report.Statistical)+len(report.ML))
	}
	if all[0].AnomalyType != models.AnomalyTypeStatistical {
		t.Errorf("statistical findings should come first, got %s", all[0].AnomalyType)
	}

	count := 0
	for _, r := range all {
		if r.TransactionID == "T20" {
			count++
		}
	}
	if count != 2 {
		t.Errorf("extreme amount appears %d times, want once per sub-pipeline", count)
	}
}

func TestDetect_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewDetector(nil).Detect(ctx, outlierLedger()); err == nil {
		t.Error("expected error for a cancelled context")
	}
}
