package anomaly

import (
	"math"

	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/models"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/pkg/logger"
)

// DetectStatistical flags transactions by z-score and then by IQR fences.
// A transaction flagged by z-score is not repeated by IQR. Fewer than
// MinStatistical transactions yields no findings.
func (d *Detector) DetectStatistical(transactions []*models.Transaction) []models.AnomalyResult {
	if len(transactions) < d.config.MinStatistical {
		d.logger.WithField("transactions", len(transactions)).Debug("Too few transactions for statistical detection")
		return []models.AnomalyResult{}
	}

	amounts := make([]float64, len(transactions))
	for i, txn := range transactions {
		amounts[i] = txn.Amount.InexactFloat64()
	}

	results := []models.AnomalyResult{}
	flagged := make(map[string]struct{})

	for i, z := range absZScores(amounts) {
		if z > d.config.ZScoreThreshold {
			id := transactions[i].TxnID
			results = append(results, models.NewAnomalyResult(id, models.AnomalyTypeStatistical, models.MethodZScore, z))
			flagged[id] = struct{}{}
		}
	}
	zCount := len(results)

	q1 := quantile(amounts, 0.25)
	q3 := quantile(amounts, 0.75)
	median := quantile(amounts, 0.5)
	iqr := q3 - q1
	lower := q1 - d.config.IQRMultiplier*iqr
	upper := q3 + d.config.IQRMultiplier*iqr

	for i, amount := range amounts {
		if amount >= lower && amount <= upper {
			continue
		}
		id := transactions[i].TxnID
		if _, seen := flagged[id]; seen {
			continue
		}
		results = append(results, models.NewAnomalyResult(id, models.AnomalyTypeStatistical, models.MethodIQR, math.Abs(amount-median)))
		flagged[id] = struct{}{}
	}

	d.logger.WithFields(logger.Fields{
		"transactions": len(transactions),
		"z_score":      zCount,
		"iqr":          len(results) - zCount,
		"q1":           q1,
		"q3":           q3,
	}).Debug("Statistical detection finished")

	return results
}
