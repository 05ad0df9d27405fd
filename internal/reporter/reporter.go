// Package reporter renders reconciliation output.
//
// Reconciliation results can be exported as CSV, as an indented JSON array,
// or as an XLSX workbook with a single "Reconciliation" sheet. The console
// format prints a human-readable run summary for CLI use: results by status,
// anomalies by detection method, and the stored data quality reports.
//
// Example usage:
//
//	config := reporter.DefaultReportConfig()
//	config.Format = reporter.FormatCSV
//	generator, err := reporter.NewReportGenerator(config)
//	if err != nil {
//		return err
//	}
//	err = generator.ExportResults(results, w)
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/models"

	"github.com/xuri/excelize/v2"
)

// OutputFormat represents the supported report output formats
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
	FormatXLSX    OutputFormat = "xlsx"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV, FormatXLSX:
		return true
	default:
		return false
	}
}

// IsExport reports whether the format can carry a results export
func (f OutputFormat) IsExport() bool {
	return f == FormatJSON || f == FormatCSV || f == FormatXLSX
}

// ContentType returns the MIME type served for the format
func (f OutputFormat) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Extension returns the file extension for the format, without the dot
func (f OutputFormat) Extension() string {
	if f == FormatConsole {
		return "txt"
	}
	return string(f)
}

// ParseOutputFormat converts a user supplied name into an OutputFormat
func ParseOutputFormat(s string) (OutputFormat, error) {
	f := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	if !f.IsValid() {
		return "", fmt.Errorf("invalid output format: %q (expected console, json, csv or xlsx)", s)
	}
	return f, nil
}

// ExportFilename returns the download name for a results export created at t
func ExportFilename(format OutputFormat, t time.Time) string {
	return fmt.Sprintf("reconciliation_report_%s.%s", t.Format("20060102_150405"), format.Extension())
}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	// Output format
	Format OutputFormat `json:"format"`

	// CSV options
	CSVDelimiter rune `json:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers"`

	// XLSX options
	SheetName string `json:"sheet_name"`

	// Console options
	MaxListedItems int `json:"max_listed_items"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:         FormatConsole,
		CSVDelimiter:   ',',
		CSVHeaders:     true,
		SheetName:      "Reconciliation",
		MaxListedItems: 20,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}

	if c.CSVDelimiter == 0 || c.CSVDelimiter == '"' || c.CSVDelimiter == '\n' || c.CSVDelimiter == '\r' {
		return fmt.Errorf("invalid CSV delimiter: %q", c.CSVDelimiter)
	}

	if strings.TrimSpace(c.SheetName) == "" {
		return fmt.Errorf("sheet name cannot be empty")
	}

	if c.MaxListedItems < 0 {
		return fmt.Errorf("max listed items cannot be negative, got %d", c.MaxListedItems)
	}

	return nil
}

// Clone returns a copy of the configuration
func (c *ReportConfig) Clone() *ReportConfig {
	clone := *c
	return &clone
}

// ReportGenerator renders results in the configured format
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a new report generator with the specified
// configuration. Zero-valued optional fields take their defaults.
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}
	config = withDefaults(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}

	return &ReportGenerator{
		config: config,
	}, nil
}

func withDefaults(config *ReportConfig) *ReportConfig {
	defaults := DefaultReportConfig()
	c := config.Clone()
	if c.Format == "" {
		c.Format = defaults.Format
	}
	if c.CSVDelimiter == 0 {
		c.CSVDelimiter = defaults.CSVDelimiter
	}
	if c.SheetName == "" {
		c.SheetName = defaults.SheetName
	}
	return c
}

// GetConfiguration returns a copy of the current configuration
func (rg *ReportGenerator) GetConfiguration() *ReportConfig {
	return rg.config.Clone()
}

// resultHeaders is the column order of tabular result exports
var resultHeaders = []string{
	"id",
	"status",
	"transaction_id",
	"gl_id",
	"account_id",
	"date",
	"amount_difference",
	"created_at",
}

// ExportResults writes reconciliation results in the configured export
// format. The console format is not an export format.
func (rg *ReportGenerator) ExportResults(results []models.ReconciliationResult, writer io.Writer) error {
	if writer == nil {
		return fmt.Errorf("writer cannot be nil")
	}

	switch rg.config.Format {
	case FormatJSON:
		return rg.exportJSON(results, writer)
	case FormatCSV:
		return rg.exportCSV(results, writer)
	case FormatXLSX:
		return rg.exportXLSX(results, writer)
	default:
		return fmt.Errorf("unsupported export format: %s", rg.config.Format)
	}
}

func (rg *ReportGenerator) exportJSON(results []models.ReconciliationResult, writer io.Writer) error {
	if results == nil {
		results = []models.ReconciliationResult{}
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}

func (rg *ReportGenerator) exportCSV(results []models.ReconciliationResult, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = rg.config.CSVDelimiter

	if rg.config.CSVHeaders {
		if err := csvWriter.Write(resultHeaders); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}

	for i := range results {
		if err := csvWriter.Write(resultRecord(&results[i])); err != nil {
			return fmt.Errorf("failed to write result %s: %w", results[i].ID, err)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

func resultRecord(r *models.ReconciliationResult) []string {
	diff := ""
	if r.AmountDifference != nil {
		diff = r.AmountDifference.String()
	}
	return []string{
		r.ID,
		string(r.Status),
		r.TransactionID,
		r.GLID,
		r.AccountID,
		r.Date,
		diff,
		formatTimestamp(r.CreatedAt),
	}
}

func (rg *ReportGenerator) exportXLSX(results []models.ReconciliationResult, writer io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := rg.config.SheetName
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(resultHeaders))
	for i, h := range resultHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write sheet header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i := range results {
		r := &results[i]
		var diff interface{}
		if r.AmountDifference != nil {
			diff = r.AmountDifference.InexactFloat64()
		}
		row := []interface{}{
			r.ID,
			string(r.Status),
			r.TransactionID,
			r.GLID,
			r.AccountID,
			r.Date,
			diff,
			formatTimestamp(r.CreatedAt),
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write result %s: %w", r.ID, err)
		}
	}

	return f.Write(writer)
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
