// Package anomaly flags unusual transactions with two independent
// sub-pipelines.
//
// The statistical sub-pipeline scores amounts by z-score and by the
// interquartile range. The ML sub-pipeline builds [amount, weekday, hour]
// feature vectors, standardises them, and runs an isolation forest followed
// by a one-class support vector machine. Within a sub-pipeline a transaction
// is reported once, by the first method that flags it. Across sub-pipelines
// results are concatenated without deduplication.
package anomaly

import (
	"fmt"
)

// Config holds the thresholds and model parameters for detection
type Config struct {
	// ZScoreThreshold flags amounts whose absolute z-score exceeds it
	ZScoreThreshold float64 `json:"zscore_threshold"`

	// IQRMultiplier widens the interquartile fence
	IQRMultiplier float64 `json:"iqr_multiplier"`

	// MinStatistical is the fewest transactions the statistical methods run on
	MinStatistical int `json:"min_statistical"`

	// MinML is the fewest transactions the ML methods run on
	MinML int `json:"min_ml"`

	// Contamination is the expected outlier share for the isolation forest
	Contamination float64 `json:"contamination"`

	// Nu bounds the outlier share of the one-class SVM
	Nu float64 `json:"nu"`

	// Seed drives tree sampling so runs on identical input agree
	Seed int64 `json:"seed"`

	// Trees is the isolation forest ensemble size
	Trees int `json:"trees"`

	// MaxSamples caps the subsample drawn for each tree
	MaxSamples int `json:"max_samples"`
}

// DefaultConfig returns the standard detection parameters
func DefaultConfig() *Config {
	return &Config{
		ZScoreThreshold: 3.0,
		IQRMultiplier:   1.5,
		MinStatistical:  5,
		MinML:           10,
		Contamination:   0.1,
		Nu:              0.1,
		Seed:            42,
		Trees:           100,
		MaxSamples:      256,
	}
}

// Validate checks that every parameter is usable
func (c *Config) Validate() error {
	if c.ZScoreThreshold <= 0 {
		return fmt.Errorf("z-score threshold must be positive, got %v", c.ZScoreThreshold)
	}
	if c.IQRMultiplier < 0 {
		return fmt.Errorf("IQR multiplier cannot be negative, got %v", c.IQRMultiplier)
	}
	if c.MinStatistical < 2 {
		return fmt.Errorf("minimum statistical sample must be at least 2, got %d", c.MinStatistical)
	}
	if c.MinML < 2 {
		return fmt.Errorf("minimum ML sample must be at least 2, got %d", c.MinML)
	}
	if c.Contamination <= 0 || c.Contamination > 0.5 {
		return fmt.Errorf("contamination must be in (0, 0.5], got %v", c.Contamination)
	}
	if c.Nu <= 0 || c.Nu > 1 {
		return fmt.Errorf("nu must be in (0, 1], got %v", c.Nu)
	}
	if c.Trees <= 0 {
		return fmt.Errorf("tree count must be positive, got %d", c.Trees)
	}
	if c.MaxSamples < 2 {
		return fmt.Errorf("max samples must be at least 2, got %d", c.MaxSamples)
	}
	return nil
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
