// Package parsers turns uploaded CSV files into tables and typed records.
//
// Reading happens in two steps. ReadTable produces a quality.Table that
// keeps every cell as text, which is what the data quality scorer works on.
// TransactionParser and GLParser then convert the table into model records,
// rejecting rows whose amounts cannot be parsed.
//
// Example usage:
//
//	table, err := NewBaseParser(nil).ReadTable(file, "transactions.csv")
//	txns, stats, err := NewTransactionParser(nil).Parse(table, "transactions.csv")
package parsers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/quality"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/pkg/errors"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/pkg/logger"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// BaseParser provides common CSV reading functionality
type BaseParser struct {
	config *ParseConfig
	logger logger.Logger
}

// NewBaseParser creates a new BaseParser with the given configuration
func NewBaseParser(config *ParseConfig) *BaseParser {
	if config == nil {
		config = DefaultParseConfig()
	}

	log := logger.WithComponent("parser")
	log.WithFields(logger.Fields{
		"delimiter":         string(config.Delimiter),
		"validate_encoding": config.ValidateEncoding,
		"max_field_size":    config.MaxFieldSize,
	}).Debug("Created base parser")

	return &BaseParser{
		config: config,
		logger: log,
	}
}

// CheckFilename rejects uploads that are not named as CSV files
func CheckFilename(name string) error {
	if !strings.EqualFold(filepath.Ext(name), ".csv") {
		return errors.FileError(errors.CodeUnsupportedFile, name, nil)
	}
	return nil
}

// ReadTable reads the whole CSV stream into a table. The first record is the
// header. Short rows are padded with missing cells.
func (bp *BaseParser) ReadTable(r io.Reader, source string) (*quality.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.FileError(errors.CodeFileUnreadable, source, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	if bp.config.ValidateEncoding {
		if line := invalidUTF8Line(data); line > 0 {
			bp.logger.WithFields(logger.Fields{
				"source": source,
				"line":   line,
			}).Error("File encoding validation failed")
			return nil, errors.ParseError(errors.CodeEncodingError, source, line, "", "",
				fmt.Errorf("invalid UTF-8 encoding detected"))
		}
	}

	reader := csv.NewReader(bytes.NewReader(data))
	bp.configureReader(reader)

	headers, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			bp.logger.WithField("source", source).Error("File is empty or contains no data")
			return nil, errors.ValidationError(errors.CodeEmptyDataset, source, "", nil).
				WithSuggestion("Ensure the file contains header and data rows")
		}
		return nil, errors.ParseError(errors.CodeInvalidFormat, source, 1, "headers", "", err).
			WithSuggestion("Check the file format and ensure it's a valid CSV")
	}
	headers = cleanHeaders(headers)

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line := 0
			if pe, ok := err.(*csv.ParseError); ok {
				line = pe.Line
			}
			bp.logger.WithError(err).WithField("line_number", line).Warn("Failed to read CSV record")
			return nil, errors.ParseError(errors.CodeInvalidFormat, source, line, "record", "", err)
		}

		if bp.config.MaxFieldSize > 0 {
			for i, field := range record {
				if len(field) > bp.config.MaxFieldSize {
					line, _ := reader.FieldPos(i)
					return nil, errors.ParseError(errors.CodeInvalidData, source, line, columnName(headers, i), truncate(field, 50),
						fmt.Errorf("field size limit exceeded")).
						WithSuggestion(fmt.Sprintf("Reduce field size to under %d bytes", bp.config.MaxFieldSize))
				}
			}
		}

		rows = append(rows, record)
	}

	bp.logger.WithFields(logger.Fields{
		"source":  source,
		"columns": len(headers),
		"rows":    len(rows),
	}).Debug("Read CSV table")

	return quality.NewTable(headers, rows), nil
}

// configureReader sets up the CSV reader with our configuration
func (bp *BaseParser) configureReader(reader *csv.Reader) {
	reader.Comma = bp.config.Delimiter
	reader.Comment = bp.config.Comment
	reader.TrimLeadingSpace = bp.config.TrimLeadingSpace
	reader.FieldsPerRecord = -1 // Variable number of fields
	reader.ReuseRecord = false
}

// invalidUTF8Line returns the 1-based line holding the first invalid byte
// sequence, or 0 when the data is valid
func invalidUTF8Line(data []byte) int {
	if utf8.Valid(data) {
		return 0
	}
	for i, line := range bytes.Split(data, []byte("\n")) {
		if !utf8.Valid(line) {
			return i + 1
		}
	}
	return 0
}

// cleanHeaders removes whitespace from header names
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		cleaned[i] = strings.TrimSpace(header)
	}
	return cleaned
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func columnName(headers []string, i int) string {
	if i < len(headers) {
		return headers[i]
	}
	return fmt.Sprintf("field_%d", i)
}

// RequireColumns returns a parse error naming every required column the
// table lacks
func RequireColumns(table *quality.Table, columns ColumnSet, source string) error {
	var missing []string
	for _, name := range columns.Required {
		if !table.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return errors.ParseError(errors.CodeMissingColumn, source, 1, strings.Join(missing, ", "), "", nil).
		WithSuggestion(fmt.Sprintf("CSV must contain columns: %s", strings.Join(columns.Required, ", ")))
}

// isEmptyRow reports whether every cell of a row counts as missing
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if !quality.IsMissing(cell) {
			return false
		}
	}
	return true
}

// ParseStats holds statistics about a parsing operation
type ParseStats struct {
	Dataset       string
	RowsRead      int
	RecordsParsed int
	RowsSkipped   int
}

// String returns a human-readable summary of parsing statistics
func (ps *ParseStats) String() string {
	return fmt.Sprintf("%s: read %d rows, parsed %d records, skipped %d empty rows",
		ps.Dataset, ps.RowsRead, ps.RecordsParsed, ps.RowsSkipped)
}

// cell returns the trimmed value of a named column, treating missing
// markers as empty
func cell(table *quality.Table, row int, column string) string {
	v := strings.TrimSpace(table.Value(row, column))
	if quality.IsMissing(v) {
		return ""
	}
	return v
}
