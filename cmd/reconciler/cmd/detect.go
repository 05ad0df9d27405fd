package cmd

import (
	"fmt"
	"os"

	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/reporter"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/pkg/errors"

	"github.com/spf13/cobra"
)

// Flags for the detect command
var (
	detectFile   string
	detectFormat string
	detectOutput string
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Flag anomalous transactions",
	Long: `Detect runs the statistical (z-score, IQR) and machine-learning
(isolation forest, one-class SVM) detectors over a transaction CSV and
reports every flagged transaction.

The statistical detectors need at least 5 transactions and the
machine-learning detectors at least 10.

Examples:
  reconciler detect --transactions transactions.csv
  reconciler detect -t transactions.csv --output-format json --output-file anomalies.json`,

	PreRunE: validateDetectFlags,
	RunE:    runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().StringVarP(&detectFile, "transactions", "t", "", "path to the transaction CSV file (required)")
	detectCmd.Flags().StringVarP(&detectFormat, "output-format", "f", "console", "output format: console, json")
	detectCmd.Flags().StringVarP(&detectOutput, "output-file", "o", "", "output file path (default: stdout)")

	detectCmd.MarkFlagRequired("transactions")
}

func validateDetectFlags(cmd *cobra.Command, args []string) error {
	if err := validateFileExists(detectFile); err != nil {
		return err
	}

	format, err := reporter.ParseOutputFormat(detectFormat)
	if err != nil || (format != reporter.FormatConsole && format != reporter.FormatJSON) {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "output-format", detectFormat,
			fmt.Errorf("detect supports console and json output")).
			WithSuggestion("use --output-format console or --output-format json")
	}

	return validateOutputFile(detectOutput)
}

func runDetect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	svc, err := openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	if _, err := uploadFile(ctx, detectFile, svc.UploadTransactions); err != nil {
		return err
	}

	summary, err := svc.RunAnomalyDetection(ctx)
	if err != nil {
		return err
	}

	if err := writeReport(ctx, svc, detectFormat, detectOutput); err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "\nAnomaly detection completed. Found %d anomalies (%d statistical, %d ML).\n",
			summary.Total, summary.Statistical, summary.ML)
	}
	return nil
}
