package parsers

import (
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/models"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/quality"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/pkg/errors"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/pkg/logger"
)

// TransactionParser converts a transaction ledger table into records
type TransactionParser struct {
	config *ParseConfig
	logger logger.Logger
}

// NewTransactionParser creates a new TransactionParser with the given configuration
func NewTransactionParser(config *ParseConfig) *TransactionParser {
	if config == nil {
		config = DefaultParseConfig()
	}
	return &TransactionParser{
		config: config,
		logger: logger.WithComponent("transaction_parser"),
	}
}

// Parse builds one Transaction per table row in row order. Amounts must be
// numeric and transaction IDs present. Other fields are kept as text and may
// be empty.
func (tp *TransactionParser) Parse(table *quality.Table, source string) ([]*models.Transaction, *ParseStats, error) {
	stats := &ParseStats{Dataset: TransactionColumns.Dataset, RowsRead: table.NumRows()}

	if err := RequireColumns(table, TransactionColumns, source); err != nil {
		tp.logger.WithError(err).WithField("columns", table.Columns).Error("Transaction file is missing columns")
		return nil, stats, err
	}

	transactions := make([]*models.Transaction, 0, table.NumRows())
	for i, row := range table.Rows {
		line := i + 2
		if tp.config.SkipEmptyRows && isEmptyRow(row) {
			tp.logger.WithField("line_number", line).Debug("Skipping empty record")
			stats.RowsSkipped++
			continue
		}

		id := cell(table, i, "txn_id")
		if id == "" {
			return nil, stats, errors.ParseError(errors.CodeInvalidData, source, line, "txn_id", "",
				errors.ValidationError(errors.CodeMissingField, "txn_id", "", nil))
		}

		raw := cell(table, i, "amount")
		amount, err := models.ParseDecimalFromString(raw)
		if err != nil {
			tp.logger.WithFields(logger.Fields{
				"line_number": line,
				"value":       raw,
			}).Warn("Invalid transaction amount")
			return nil, stats, errors.ParseError(errors.CodeInvalidData, source, line, "amount", raw,
				errors.ValidationError(errors.CodeInvalidAmount, "amount", raw, err))
		}

		transactions = append(transactions, models.NewTransaction(
			id,
			cell(table, i, "date"),
			amount,
			cell(table, i, "account_id"),
			cell(table, i, "counterparty"),
		))
	}

	stats.RecordsParsed = len(transactions)
	tp.logger.WithFields(logger.Fields{
		"source":  source,
		"records": stats.RecordsParsed,
		"skipped": stats.RowsSkipped,
	}).Info("Parsed transactions")

	return transactions, stats, nil
}
