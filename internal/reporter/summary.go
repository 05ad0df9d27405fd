package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/matcher"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/models"
)

// Report bundles everything a CLI run produced
type Report struct {
	GeneratedAt       time.Time
	TotalTransactions int
	TotalGLEntries    int
	Results           []models.ReconciliationResult
	Anomalies         []models.AnomalyResult
	Quality           []*models.DataQualityReport
}

// Summary counts the results by status
func (r *Report) Summary() matcher.ReconciliationSummary {
	return matcher.Summarize(r.Results, r.TotalTransactions, r.TotalGLEntries)
}

// AnomaliesByMethod counts findings per detection method
func (r *Report) AnomaliesByMethod() map[models.DetectionMethod]int {
	counts := make(map[models.DetectionMethod]int)
	for _, a := range r.Anomalies {
		counts[a.DetectionMethod]++
	}
	return counts
}

// GenerateReport writes a full run report. Console prints the summary
// sections, JSON writes one indented document, and the tabular formats
// write the results export.
func (rg *ReportGenerator) GenerateReport(report *Report, writer io.Writer) error {
	if report == nil {
		return fmt.Errorf("report cannot be nil")
	}
	if writer == nil {
		return fmt.Errorf("writer cannot be nil")
	}

	switch rg.config.Format {
	case FormatConsole:
		return rg.generateConsoleReport(report, writer)
	case FormatJSON:
		return rg.generateJSONReport(report, writer)
	case FormatCSV, FormatXLSX:
		return rg.ExportResults(report.Results, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

type jsonSummary struct {
	TotalTransactions   int     `json:"total_transactions"`
	TotalGLEntries      int     `json:"total_gl_entries"`
	Matched             int     `json:"matched"`
	AmountMismatches    int     `json:"amount_mismatch"`
	MissingGL           int     `json:"missing_gl"`
	MissingTransactions int     `json:"missing_transaction"`
	MatchRate           float64 `json:"match_rate"`
}

type jsonReport struct {
	GeneratedAt time.Time                      `json:"generated_at"`
	Summary     jsonSummary                    `json:"summary"`
	Results     []models.ReconciliationResult  `json:"reconciliation_results"`
	Anomalies   []models.AnomalyResult         `json:"anomalies"`
	Quality     []*models.DataQualityReport    `json:"data_quality"`
	ByMethod    map[models.DetectionMethod]int `json:"anomalies_by_method"`
}

func (rg *ReportGenerator) generateJSONReport(report *Report, writer io.Writer) error {
	summary := report.Summary()
	doc := jsonReport{
		GeneratedAt: report.GeneratedAt,
		Summary: jsonSummary{
			TotalTransactions:   summary.TotalTransactions,
			TotalGLEntries:      summary.TotalGLEntries,
			Matched:             summary.Matched,
			AmountMismatches:    summary.AmountMismatches,
			MissingGL:           summary.MissingGL,
			MissingTransactions: summary.MissingTransactions,
			MatchRate:           summary.MatchRate(),
		},
		Results:   report.Results,
		Anomalies: report.Anomalies,
		Quality:   report.Quality,
		ByMethod:  report.AnomaliesByMethod(),
	}
	if doc.Results == nil {
		doc.Results = []models.ReconciliationResult{}
	}
	if doc.Anomalies == nil {
		doc.Anomalies = []models.AnomalyResult{}
	}
	if doc.Quality == nil {
		doc.Quality = []*models.DataQualityReport{}
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}

// generateConsoleReport generates a human-readable console report
func (rg *ReportGenerator) generateConsoleReport(report *Report, writer io.Writer) error {
	fmt.Fprintf(writer, "RECONCILIATION REPORT\n")
	fmt.Fprintf(writer, "Generated: %s\n\n", report.GeneratedAt.Format(time.RFC3339))

	if len(report.Results) > 0 || report.TotalTransactions > 0 || report.TotalGLEntries > 0 {
		fmt.Fprintf(writer, "=== SUMMARY ===\n")
		rg.printSummaryTable(report.Summary(), writer)
		fmt.Fprintf(writer, "\n")
	}

	if unmatched := unmatchedResults(report.Results); len(unmatched) > 0 {
		fmt.Fprintf(writer, "=== EXCEPTIONS ===\n")
		rg.printResultList(unmatched, writer)
		fmt.Fprintf(writer, "\n")
	}

	if len(report.Anomalies) > 0 {
		fmt.Fprintf(writer, "=== ANOMALIES ===\n")
		rg.printAnomalies(report, writer)
		fmt.Fprintf(writer, "\n")
	}

	if len(report.Quality) > 0 {
		fmt.Fprintf(writer, "=== DATA QUALITY ===\n")
		rg.printQuality(report.Quality, writer)
	}

	return nil
}

// Helper methods for console output formatting

func (rg *ReportGenerator) printSummaryTable(summary matcher.ReconciliationSummary, writer io.Writer) {
	total := summary.Matched + summary.AmountMismatches + summary.MissingGL + summary.MissingTransactions

	fmt.Fprintf(writer, "Transactions:        %d\n", summary.TotalTransactions)
	fmt.Fprintf(writer, "GL Entries:          %d\n", summary.TotalGLEntries)
	fmt.Fprintf(writer, "Results:             %d\n", total)
	fmt.Fprintf(writer, "  Matched:           %d (%.1f%%)\n", summary.Matched, calculatePercentage(summary.Matched, total))
	fmt.Fprintf(writer, "  Amount Mismatch:   %d (%.1f%%)\n", summary.AmountMismatches, calculatePercentage(summary.AmountMismatches, total))
	fmt.Fprintf(writer, "  Missing GL:        %d (%.1f%%)\n", summary.MissingGL, calculatePercentage(summary.MissingGL, total))
	fmt.Fprintf(writer, "  Missing Txn:       %d (%.1f%%)\n", summary.MissingTransactions, calculatePercentage(summary.MissingTransactions, total))
	fmt.Fprintf(writer, "Net Difference:      %s\n", summary.TotalDifference.StringFixed(2))
}

func (rg *ReportGenerator) printResultList(results []models.ReconciliationResult, writer io.Writer) {
	fmt.Fprintf(writer, "%-20s %-12s %-12s %-12s %-12s %12s\n",
		"Status", "Transaction", "GL Entry", "Account", "Date", "Difference")

	limit := len(results)
	if rg.config.MaxListedItems > 0 && limit > rg.config.MaxListedItems {
		limit = rg.config.MaxListedItems
	}

	for _, r := range results[:limit] {
		diff := "-"
		if r.AmountDifference != nil {
			diff = r.AmountDifference.StringFixed(2)
		}
		fmt.Fprintf(writer, "%-20s %-12s %-12s %-12s %-12s %12s\n",
			r.Status, orDash(r.TransactionID), orDash(r.GLID), orDash(r.AccountID), orDash(r.Date), diff)
	}

	if limit < len(results) {
		fmt.Fprintf(writer, "... and %d more\n", len(results)-limit)
	}
}

func (rg *ReportGenerator) printAnomalies(report *Report, writer io.Writer) {
	counts := report.AnomaliesByMethod()
	methods := make([]string, 0, len(counts))
	for m := range counts {
		methods = append(methods, string(m))
	}
	sort.Strings(methods)

	fmt.Fprintf(writer, "Total: %d\n", len(report.Anomalies))
	for _, m := range methods {
		fmt.Fprintf(writer, "  %-18s %d\n", m+":", counts[models.DetectionMethod(m)])
	}

	limit := len(report.Anomalies)
	if rg.config.MaxListedItems > 0 && limit > rg.config.MaxListedItems {
		limit = rg.config.MaxListedItems
	}
	for _, a := range report.Anomalies[:limit] {
		fmt.Fprintf(writer, "  %-12s %-20s %-18s %10.4f\n", a.TransactionID, a.AnomalyType, a.DetectionMethod, a.AnomalyScore)
	}
	if limit < len(report.Anomalies) {
		fmt.Fprintf(writer, "  ... and %d more\n", len(report.Anomalies)-limit)
	}
}

func (rg *ReportGenerator) printQuality(reports []*models.DataQualityReport, writer io.Writer) {
	for _, q := range reports {
		fmt.Fprintf(writer, "%s: quality %.2f (completeness %.2f, consistency %.2f), %d records, %d duplicates\n",
			q.DatasetName, q.QualityScore, q.CompletenessScore, q.ConsistencyScore, q.TotalRecords, q.DuplicateCount)
		for _, issue := range q.Issues {
			fmt.Fprintf(writer, "  - %s\n", issue)
		}
	}
}

func unmatchedResults(results []models.ReconciliationResult) []models.ReconciliationResult {
	var out []models.ReconciliationResult
	for _, r := range results {
		if r.Status != models.StatusMatched {
			out = append(out, r)
		}
	}
	return out
}

func calculatePercentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
