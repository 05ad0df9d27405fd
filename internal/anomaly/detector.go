package anomaly

import (
	"context"
	"fmt"
	"math"

	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/models"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/pkg/errors"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// Detector runs the statistical and ML sub-pipelines
type Detector struct {
	config *Config
	logger logger.Logger
}

// Report holds the findings of both sub-pipelines of one run
type Report struct {
	Statistical []models.AnomalyResult
	ML          []models.AnomalyResult
}

// All returns the statistical findings followed by the ML findings
func (r *Report) All() []models.AnomalyResult {
	all := make([]models.AnomalyResult, 0, len(r.Statistical)+len(r.ML))
	all = append(all, r.Statistical...)
	return append(all, r.ML...)
}

// NewDetector creates a new detector with the specified configuration
func NewDetector(config *Config) *Detector {
	if config == nil {
		config = DefaultConfig()
	}
	return &Detector{
		config: config,
		logger: logger.WithComponent("anomaly"),
	}
}

// Config returns the detector configuration
func (d *Detector) Config() *Config {
	return d.config
}

// Detect runs both sub-pipelines concurrently over the same snapshot and
// returns their findings in a fixed order.
func (d *Detector) Detect(ctx context.Context, transactions []*models.Transaction) (*Report, error) {
	report := &Report{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		report.Statistical = d.DetectStatistical(transactions)
		return nil
	})

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		ml, err := d.DetectML(transactions)
		if err != nil {
			return err
		}
		report.ML = ml
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	d.logger.WithFields(logger.Fields{
		"transactions": len(transactions),
		"statistical":  len(report.Statistical),
		"ml":           len(report.ML),
	}).Info("Anomaly detection finished")

	return report, nil
}

// DetectML flags transactions with the isolation forest and then the
// one-class SVM. A transaction flagged by the forest is not repeated by the
// SVM. Fewer than MinML transactions yields no findings.
func (d *Detector) DetectML(transactions []*models.Transaction) ([]models.AnomalyResult, error) {
	if len(transactions) < d.config.MinML {
		d.logger.WithField("transactions", len(transactions)).Debug("Too few transactions for ML detection")
		return []models.AnomalyResult{}, nil
	}

	features := BuildFeatures(transactions)
	if features.DateFallback {
		d.logger.Warn("Dates could not be parsed, using fallback weekday and hour for every transaction")
	}
	if !allFinite(features.Rows) {
		return nil, errors.DetectionError(errors.CodeNumericFailure, string(models.MethodIsolationForest),
			fmt.Errorf("feature matrix contains non-finite values"))
	}

	scaler := &StandardScaler{}
	X := scaler.FitTransform(features.Rows)

	forest := NewIsolationForest(d.config.Trees, d.config.MaxSamples, d.config.Contamination, d.config.Seed)
	if err := forest.Fit(X); err != nil {
		return nil, errors.DetectionError(errors.CodeNumericFailure, string(models.MethodIsolationForest), err)
	}

	results := []models.AnomalyResult{}
	flagged := make(map[string]struct{})

	forestDecision := forest.DecisionFunction(X)
	for i, score := range forestDecision {
		if score >= 0 {
			continue
		}
		id := transactions[i].TxnID
		results = append(results, models.NewAnomalyResult(id, models.AnomalyTypeIsolationForest, models.MethodIsolationForest, math.Abs(score)))
		flagged[id] = struct{}{}
	}
	forestCount := len(results)

	svm := NewOneClassSVM(d.config.Nu)
	if err := svm.Fit(X); err != nil {
		return nil, errors.DetectionError(errors.CodeNumericFailure, string(models.MethodOneClassSVM), err)
	}

	for i, score := range svm.DecisionFunction(X) {
		if score > 0 {
			continue
		}
		id := transactions[i].TxnID
		if _, seen := flagged[id]; seen {
			continue
		}
		results = append(results, models.NewAnomalyResult(id, models.AnomalyTypeOneClassSVM, models.MethodOneClassSVM, math.Abs(score)))
		flagged[id] = struct{}{}
	}

	for _, r := range results {
		if math.IsNaN(r.AnomalyScore) || math.IsInf(r.AnomalyScore, 0) {
			return nil, errors.DetectionError(errors.CodeNumericFailure, string(r.DetectionMethod),
				fmt.Errorf("non-finite score for transaction %s", r.TransactionID))
		}
	}

	d.logger.WithFields(logger.Fields{
		"transactions":     len(transactions),
		"isolation_forest": forestCount,
		"one_class_svm":    len(results) - forestCount,
		"date_fallback":    features.DateFallback,
	}).Debug("ML detection finished")

	return results, nil
}

// DetectStatistical runs the statistical sub-pipeline with the default configuration
func DetectStatistical(transactions []*models.Transaction) []models.AnomalyResult {
	return NewDetector(nil).DetectStatistical(transactions)
}

// DetectML runs the ML sub-pipeline with the default configuration
func DetectML(transactions []*models.Transaction) ([]models.AnomalyResult, error) {
	return NewDetector(nil).DetectML(transactions)
}
