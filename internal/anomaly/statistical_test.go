package anomaly

import (
	"fmt"
	"math"
	"testing"

	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/models"

	"github.com/shopspring/decimal"
)

func txnsFromAmounts(amounts ...float64) []*models.Transaction {
	txns := make([]*models.Transaction, len(amounts))
	for i, a := range amounts {
		txns[i] = models.NewTransaction(fmt.Sprintf("T%d", i+1), "2024-01-01", decimal.NewFromFloat(a), "ACC1", "")
	}
	return txns
}

func TestQuantile(t *testing.T) {
	data := []float64{4, 1, 3, 2}
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{0.25, 1.75},
		{0.5, 2.5},
		{0.75, 3.25},
		{1, 4},
	}

	for _, tt := range tests {
		if got := quantile(data, tt.p); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("quantile(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
	if data[0] != 4 {
		t.Errorf("quantile modified its input")
	}
	if !math.IsNaN(quantile(nil, 0.5)) {
		t.Errorf("quantile of empty slice should be NaN")
	}
}

func TestDetectStatistical_TooFewTransactions(t *testing.T) {
	results := DetectStatistical(txnsFromAmounts(1, 2, 3, 1000))
	if results == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(results) != 0 {
		t.Errorf("expected no results below the minimum, got %d", len(results))
	}
}

func TestDetectStatistical_ZScoreTakesPriority(t *testing.T) {
	amounts := make([]float64, 20)
	for i := range amounts {
		amounts[i] = 100
	}
	amounts[19] = 10000

	results := DetectStatistical(txnsFromAmounts(amounts...))
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d: %+v", len(results), results)
	}

	r := results[0]
	if r.TransactionID != "T20" {
		t.Errorf("TransactionID = %s, want T20", r.TransactionID)
	}
	if r.DetectionMethod != models.MethodZScore {
		t.Errorf("DetectionMethod = %s, want %s", r.DetectionMethod, models.MethodZScore)
	}
	if r.AnomalyType != models.AnomalyTypeStatistical {
		t.Errorf("AnomalyType = %s, want %s", r.AnomalyType, models.AnomalyTypeStatistical)
	}
	// mean 595, population std sqrt(4655475)
	wantZ := 9405 / math.Sqrt(4655475)
	if math.Abs(r.AnomalyScore-wantZ) > 1e-9 {
		t.Errorf("AnomalyScore = %v, want %v", r.AnomalyScore, wantZ)
	}
	if !r.IsAnomaly {
		t.Error("IsAnomaly should be true")
	}
}

func TestDetectStatistical_IQROnly(t *testing.T) {
	// Six values cap the z-score at sqrt(5), so only the fence can flag.
	results := DetectStatistical(txnsFromAmounts(10, 11, 12, 13, 14, 100))
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d: %+v", len(results), results)
	}

	r := results[0]
	if r.TransactionID != "T6" {
		t.Errorf("TransactionID = %s, want T6", r.TransactionID)
	}
	if r.DetectionMethod != models.MethodIQR {
		t.Errorf("DetectionMethod = %s, want %s", r.DetectionMethod, models.MethodIQR)
	}
	if r.AnomalyScore != 87.5 {
		t.Errorf("AnomalyScore = %v, want 87.5", r.AnomalyScore)
	}
}

func TestDetectStatistical_BothTails(t *testing.T) {
	results := DetectStatistical(txnsFromAmounts(-100, 10, 11, 12, 13, 14, 100))
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d: %+v", len(results), results)
	}
	if results[0].TransactionID != "T1" || results[1].TransactionID != "T7" {
		t.Errorf("results out of input order: %s, %s", results[0].TransactionID, results[1].TransactionID)
	}
}

func TestDetectStatistical_ConstantAmounts(t *testing.T) {
	results := DetectStatistical(txnsFromAmounts(50, 50, 50, 50, 50, 50))
	if len(results) != 0 {
		t.Errorf("constant amounts should not be flagged, got %+v", results)
	}
}

func TestDetectStatistical_CustomThreshold(t *testing.T) {
	config := DefaultConfig()
	config.ZScoreThreshold = 2.0

	results := NewDetector(config).DetectStatistical(txnsFromAmounts(10, 11, 12, 13, 14, 100))
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].DetectionMethod != models.MethodZScore {
		t.Errorf("DetectionMethod = %s, want %s", results[0].DetectionMethod, models.MethodZScore)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"zero threshold", func(c *Config) { c.ZScoreThreshold = 0 }, true},
		{"negative multiplier", func(c *Config) { c.IQRMultiplier = -1 }, true},
		{"tiny statistical minimum", func(c *Config) { c.MinStatistical = 1 }, true},
		{"tiny ML minimum", func(c *Config) { c.MinML = 1 }, true},
		{"contamination too high", func(c *Config) { c.Contamination = 0.6 }, true},
		{"zero nu", func(c *Config) { c.Nu = 0 }, true},
		{"no trees", func(c *Config) { c.Trees = 0 }, true},
		{"small max samples", func(c *Config) { c.MaxSamples = 1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Clone(t *testing.T) {
	original := DefaultConfig()
	clone := original.Clone()
	clone.Seed = 7
	if original.Seed != 42 {
		t.Errorf("modifying clone changed original seed to %d", original.Seed)
	}
}
