package parsers

import (
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/models"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/quality"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/pkg/errors"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/pkg/logger"

	"github.com/shopspring/decimal"
)

// GLParser converts a general ledger table into records
type GLParser struct {
	config *ParseConfig
	logger logger.Logger
}

// NewGLParser creates a new GLParser with the given configuration
func NewGLParser(config *ParseConfig) *GLParser {
	if config == nil {
		config = DefaultParseConfig()
	}
	return &GLParser{
		config: config,
		logger: logger.WithComponent("gl_parser"),
	}
}

// Parse builds one GLEntry per table row in row order. An empty debit or
// credit cell counts as zero. Negative amounts are rejected.
func (gp *GLParser) Parse(table *quality.Table, source string) ([]*models.GLEntry, *ParseStats, error) {
	stats := &ParseStats{Dataset: GLColumns.Dataset, RowsRead: table.NumRows()}

	if err := RequireColumns(table, GLColumns, source); err != nil {
		gp.logger.WithError(err).WithField("columns", table.Columns).Error("General ledger file is missing columns")
		return nil, stats, err
	}

	entries := make([]*models.GLEntry, 0, table.NumRows())
	for i, row := range table.Rows {
		line := i + 2
		if gp.config.SkipEmptyRows && isEmptyRow(row) {
			gp.logger.WithField("line_number", line).Debug("Skipping empty record")
			stats.RowsSkipped++
			continue
		}

		id := cell(table, i, "gl_id")
		if id == "" {
			return nil, stats, errors.ParseError(errors.CodeInvalidData, source, line, "gl_id", "",
				errors.ValidationError(errors.CodeMissingField, "gl_id", "", nil))
		}

		debit, err := parseSide(table, i, "debit_amount", source, line)
		if err != nil {
			return nil, stats, err
		}
		credit, err := parseSide(table, i, "credit_amount", source, line)
		if err != nil {
			return nil, stats, err
		}

		entries = append(entries, models.NewGLEntry(
			id,
			cell(table, i, "date"),
			debit,
			credit,
			cell(table, i, "account_id"),
		))
	}

	stats.RecordsParsed = len(entries)
	gp.logger.WithFields(logger.Fields{
		"source":  source,
		"records": stats.RecordsParsed,
		"skipped": stats.RowsSkipped,
	}).Info("Parsed general ledger entries")

	return entries, stats, nil
}

func parseSide(table *quality.Table, row int, column, source string, line int) (decimal.Decimal, error) {
	raw := cell(table, row, column)
	if raw == "" {
		return decimal.Zero, nil
	}

	amount, err := models.ParseDecimalFromString(raw)
	if err != nil {
		return decimal.Zero, errors.ParseError(errors.CodeInvalidData, source, line, column, raw,
			errors.ValidationError(errors.CodeInvalidAmount, column, raw, err))
	}
	if amount.IsNegative() {
		return decimal.Zero, errors.ParseError(errors.CodeInvalidData, source, line, column, raw,
			errors.ValidationError(errors.CodeOutOfRange, column, raw, nil)).
			WithSuggestion("Record debits and credits as non-negative amounts in separate columns")
	}
	return amount, nil
}
