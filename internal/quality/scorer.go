package quality

import (
	"fmt"
	"strings"

	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/models"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/pkg/errors"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/pkg/logger"

	"github.com/shopspring/decimal"
)

// IssueInconsistentDates is reported when any date cell fails to parse
const IssueInconsistentDates = "Inconsistent date formats"

// ScoringConfig holds the column names and penalties used by the scorer
type ScoringConfig struct {
	AmountColumn          string  `json:"amount_column"`
	DateColumn            string  `json:"date_column"`
	NegativeAmountPenalty float64 `json:"negative_amount_penalty"`
	DateFormatPenalty     float64 `json:"date_format_penalty"`
}

// DefaultScoringConfig returns the standard penalties of 10 and 15 points
func DefaultScoringConfig() *ScoringConfig {
	return &ScoringConfig{
		AmountColumn:          "amount",
		DateColumn:            "date",
		NegativeAmountPenalty: 10.0,
		DateFormatPenalty:     15.0,
	}
}

// Validate checks the scoring configuration
func (c *ScoringConfig) Validate() error {
	if strings.TrimSpace(c.AmountColumn) == "" || strings.TrimSpace(c.DateColumn) == "" {
		return fmt.Errorf("amount and date column names are required")
	}
	if c.NegativeAmountPenalty < 0 || c.DateFormatPenalty < 0 {
		return fmt.Errorf("penalties cannot be negative")
	}
	return nil
}

// Scorer computes data quality reports
type Scorer struct {
	config *ScoringConfig
	logger logger.Logger
}

// NewScorer creates a new scorer with the specified configuration
func NewScorer(config *ScoringConfig) *Scorer {
	if config == nil {
		config = DefaultScoringConfig()
	}
	return &Scorer{
		config: config,
		logger: logger.WithComponent("quality"),
	}
}

// Score computes the quality report for a dataset. The table is not
// modified and nothing is persisted.
func (s *Scorer) Score(table *Table, name string) (*models.DataQualityReport, error) {
	if table == nil || table.NumRows() == 0 || table.NumColumns() == 0 {
		return nil, errors.ValidationError(errors.CodeEmptyDataset, name, 0,
			fmt.Errorf("dataset %q has no cells to score", name))
	}

	rows, cols := table.NumRows(), table.NumColumns()
	completeness := float64(countPresent(table)) / float64(rows*cols) * 100

	consistency := 100.0
	issues := []string{}

	if table.HasColumn(s.config.AmountColumn) {
		if negatives := countNegative(table.Column(s.config.AmountColumn)); negatives > 0 {
			issues = append(issues, fmt.Sprintf("%d negative amounts found", negatives))
			consistency -= s.config.NegativeAmountPenalty
		}
	}

	if table.HasColumn(s.config.DateColumn) {
		if bad := firstUnparseableDate(table.Column(s.config.DateColumn)); bad >= 0 {
			issues = append(issues, IssueInconsistentDates)
			consistency -= s.config.DateFormatPenalty
		}
	}

	report := &models.DataQualityReport{
		DatasetName:       name,
		TotalRecords:      rows,
		CompletenessScore: round2(completeness),
		ConsistencyScore:  round2(consistency),
		DuplicateCount:    countDuplicates(table),
		QualityScore:      round2((completeness + consistency) / 2),
		Issues:            issues,
	}

	s.logger.WithFields(logger.Fields{
		"dataset":       name,
		"records":       rows,
		"quality_score": report.QualityScore,
		"duplicates":    report.DuplicateCount,
		"issues":        len(issues),
	}).Info("Data quality scored")

	return report, nil
}

// Score computes a quality report with the default configuration
func Score(table *Table, name string) (*models.DataQualityReport, error) {
	return NewScorer(nil).Score(table, name)
}

func countPresent(table *Table) int {
	present := 0
	for _, row := range table.Rows {
		for _, cell := range row {
			if !IsMissing(cell) {
				present++
			}
		}
	}
	return present
}

// countNegative counts numeric cells below zero, reading amounts the way
// the parsers do. Missing and non-numeric cells are not counted.
func countNegative(values []string) int {
	negatives := 0
	for _, v := range values {
		if IsMissing(v) {
			continue
		}
		d, err := models.ParseDecimalFromString(v)
		if err != nil {
			continue
		}
		if d.IsNegative() {
			negatives++
		}
	}
	return negatives
}

// firstUnparseableDate returns the row of the first present date that does
// not parse, or -1. Missing dates are not failures.
func firstUnparseableDate(values []string) int {
	for i, v := range values {
		if IsMissing(v) {
			continue
		}
		if _, err := models.ParseCalendarDate(v); err != nil {
			return i
		}
	}
	return -1
}

// countDuplicates counts rows equal in every column to some earlier row.
// Missing cells compare equal to each other and numeric cells compare by
// value, so 100 and 100.00 are the same.
func countDuplicates(table *Table) int {
	seen := make(map[string]struct{}, len(table.Rows))
	duplicates := 0
	var b strings.Builder
	for _, row := range table.Rows {
		b.Reset()
		for _, cell := range row {
			b.WriteString(duplicateKey(cell))
			b.WriteString("\x1f")
		}
		key := b.String()
		if _, ok := seen[key]; ok {
			duplicates++
			continue
		}
		seen[key] = struct{}{}
	}
	return duplicates
}

func duplicateKey(cell string) string {
	if IsMissing(cell) {
		return "\x00"
	}
	if d, err := decimal.NewFromString(strings.TrimSpace(cell)); err == nil {
		return "\x01" + d.String()
	}
	return cell
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
