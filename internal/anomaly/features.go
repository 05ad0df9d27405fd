package anomaly

import (
	"time"

	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/models"
)

const (
	fallbackWeekday = 0
	fallbackHour    = 12
)

// FeatureMatrix holds one [amount, weekday, hour] row per transaction
type FeatureMatrix struct {
	Rows [][]float64

	// DateFallback is set when any date failed to parse and every row
	// received the fallback weekday and hour
	DateFallback bool
}

// BuildFeatures extracts feature rows in transaction order. Weekday counts
// from Monday as 0. If any date fails to parse, weekday 0 and hour 12 are
// used for every row.
func BuildFeatures(transactions []*models.Transaction) FeatureMatrix {
	times := make([]time.Time, len(transactions))
	fallback := false
	for i, txn := range transactions {
		t, err := models.ParseTimeWithFormats(txn.Date)
		if err != nil {
			fallback = true
			break
		}
		times[i] = t
	}

	rows := make([][]float64, len(transactions))
	for i, txn := range transactions {
		weekday, hour := float64(fallbackWeekday), float64(fallbackHour)
		if !fallback {
			weekday = float64((int(times[i].Weekday()) + 6) % 7)
			hour = float64(times[i].Hour())
		}
		rows[i] = []float64{txn.Amount.InexactFloat64(), weekday, hour}
	}

	return FeatureMatrix{Rows: rows, DateFallback: fallback}
}
