package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/models"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/parsers"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/reconciler"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/reporter"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/pkg/errors"

	"github.com/spf13/cobra"
)

// Flags for the quality command
var (
	qualityFile   string
	qualityName   string
	qualityFormat string
	qualityOutput string
)

var qualityCmd = &cobra.Command{
	Use:   "quality",
	Short: "Score the data quality of a CSV file",
	Long: `Quality loads one dataset and reports its completeness, consistency,
duplicate count and overall quality score.

The dataset name selects the expected columns:
  transactions    txn_id, date, amount, account_id, counterparty
  general_ledger  gl_id, date, debit_amount, credit_amount, account_id

Examples:
  reconciler quality --file transactions.csv
  reconciler quality --file general_ledger.csv --name general_ledger --output-format json`,

	PreRunE: validateQualityFlags,
	RunE:    runQuality,
}

func init() {
	rootCmd.AddCommand(qualityCmd)

	qualityCmd.Flags().StringVar(&qualityFile, "file", "", "path to the CSV file (required)")
	qualityCmd.Flags().StringVar(&qualityName, "name", parsers.DatasetTransactions, "dataset name: transactions, general_ledger")
	qualityCmd.Flags().StringVarP(&qualityFormat, "output-format", "f", "console", "output format: console, json")
	qualityCmd.Flags().StringVarP(&qualityOutput, "output-file", "o", "", "output file path (default: stdout)")

	qualityCmd.MarkFlagRequired("file")
}

func validateQualityFlags(cmd *cobra.Command, args []string) error {
	if err := validateFileExists(qualityFile); err != nil {
		return err
	}

	if qualityName != parsers.DatasetTransactions && qualityName != parsers.DatasetGeneralLedger {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "name", qualityName,
			fmt.Errorf("unknown dataset %q", qualityName)).
			WithSuggestion("use --name transactions or --name general_ledger")
	}

	format, err := reporter.ParseOutputFormat(qualityFormat)
	if err != nil || (format != reporter.FormatConsole && format != reporter.FormatJSON) {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "output-format", qualityFormat,
			fmt.Errorf("quality supports console and json output"))
	}

	return validateOutputFile(qualityOutput)
}

func runQuality(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	svc, err := openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	var upload uploadFunc = svc.UploadTransactions
	if qualityName == parsers.DatasetGeneralLedger {
		upload = svc.UploadGLEntries
	}

	result, err := uploadFile(ctx, qualityFile, upload)
	if err != nil {
		return err
	}

	output, err := openOutput(qualityOutput)
	if err != nil {
		return err
	}
	defer output.Close()

	if format, _ := reporter.ParseOutputFormat(qualityFormat); format == reporter.FormatJSON {
		return writeQualityJSON(result, output)
	}
	return writeQualityConsole(result.Report, output)
}

func writeQualityJSON(result *reconciler.UploadResult, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return errors.InternalError(errors.CodeProcessingError, "quality report", err)
	}
	return nil
}

func writeQualityConsole(report *models.DataQualityReport, w io.Writer) error {
	lines := []string{
		"DATA QUALITY REPORT",
		"===================",
		fmt.Sprintf("Dataset:             %s", report.DatasetName),
		fmt.Sprintf("Total records:       %d", report.TotalRecords),
		fmt.Sprintf("Completeness score:  %.2f", report.CompletenessScore),
		fmt.Sprintf("Consistency score:   %.2f", report.ConsistencyScore),
		fmt.Sprintf("Duplicate rows:      %d", report.DuplicateCount),
		fmt.Sprintf("Quality score:       %.2f", report.QualityScore),
	}
	if len(report.Issues) == 0 {
		lines = append(lines, "Issues:              none")
	} else {
		lines = append(lines, "Issues:")
		for _, issue := range report.Issues {
			lines = append(lines, "  - "+issue)
		}
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return errors.InternalError(errors.CodeProcessingError, "quality report", err)
		}
	}
	return nil
}
