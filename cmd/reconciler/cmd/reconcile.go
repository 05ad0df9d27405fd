package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/cmd/reconciler/config"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/parsers"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/reconciler"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/reporter"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/pkg/errors"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/pkg/logger"

	"github.com/spf13/cobra"
)

// Flags for the reconcile command
var (
	transactionsFile string
	glFile           string
	outputFormat     string
	outputFile       string
	runDetection     bool
)

// reconcileCmd represents the reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile transactions against general-ledger entries",
	Long: `Reconcile loads a transaction CSV and a general-ledger CSV, matches them
by account, date and amount, and reports every verdict.

This command requires:
- A transaction file with columns txn_id, date, amount, account_id, counterparty
- A general-ledger file with columns gl_id, date, debit_amount, credit_amount, account_id

Examples:
  # Console summary
  reconciler reconcile --transactions transactions.csv --gl general_ledger.csv

  # Spreadsheet export
  reconciler reconcile -t tx.csv -g gl.csv --output-format xlsx --output-file report.xlsx

  # Include anomaly detection in the report
  reconciler reconcile -t tx.csv -g gl.csv --detect-anomalies --output-format json

  # Keep the results in a SQLite database
  reconciler reconcile -t tx.csv -g gl.csv --store sqlite --dsn reconciler.db`,

	PreRunE: validateReconcileFlags,
	RunE:    runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	// Required flags
	reconcileCmd.Flags().StringVarP(&transactionsFile, "transactions", "t", "", "path to the transaction CSV file (required)")
	reconcileCmd.Flags().StringVarP(&glFile, "gl", "g", "", "path to the general-ledger CSV file (required)")

	// Output flags
	reconcileCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json, csv, xlsx")
	reconcileCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")
	reconcileCmd.Flags().BoolVar(&runDetection, "detect-anomalies", false, "run anomaly detection after matching")

	// Mark required flags
	reconcileCmd.MarkFlagRequired("transactions")
	reconcileCmd.MarkFlagRequired("gl")
}

func validateReconcileFlags(cmd *cobra.Command, args []string) error {
	if transactionsFile == "" {
		return errors.ConfigurationError(errors.CodeMissingConfig, "transactions", "", fmt.Errorf("transactions is required"))
	}
	if glFile == "" {
		return errors.ConfigurationError(errors.CodeMissingConfig, "gl", "", fmt.Errorf("gl is required"))
	}

	if err := validateFileExists(transactionsFile); err != nil {
		return err
	}
	if err := validateFileExists(glFile); err != nil {
		return err
	}

	if _, err := config.CreateReportConfig(outputFormat); err != nil {
		return err
	}

	return validateOutputFile(outputFile)
}

// validateFileExists checks that path names a readable CSV file
func validateFileExists(path string) error {
	if path == "" {
		return errors.FileError(errors.CodeFileNotFound, path, fmt.Errorf("path cannot be empty"))
	}

	file, err := parsers.OpenFile(path)
	if err != nil {
		return err
	}
	return file.Close()
}

// validateOutputFile checks that the directory of path exists
func validateOutputFile(path string) error {
	if path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return errors.FileError(errors.CodeFileWrite, path, fmt.Errorf("output directory does not exist: %s", dir))
	}
	return nil
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logger.WithComponent("cli")

	svc, err := openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	if _, err := uploadFile(ctx, transactionsFile, svc.UploadTransactions); err != nil {
		return err
	}
	if _, err := uploadFile(ctx, glFile, svc.UploadGLEntries); err != nil {
		return err
	}

	summary, err := svc.RunReconciliation(ctx)
	if err != nil {
		return err
	}

	if runDetection {
		detection, err := svc.RunAnomalyDetection(ctx)
		if err != nil {
			return err
		}
		log.WithField("anomalies", detection.Total).Debug("Anomaly detection finished")
	}

	if err := writeReport(ctx, svc, outputFormat, outputFile); err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "\nReconciliation completed successfully.\n")
		fmt.Fprintf(os.Stderr, "Generated %d results: %d matched, %d amount mismatches, %d missing GL, %d missing transactions.\n",
			summary.ResultCount, summary.Summary.Matched, summary.Summary.AmountMismatches,
			summary.Summary.MissingGL, summary.Summary.MissingTransactions)
	}

	return nil
}

// openService creates a reconciliation service over the configured store
func openService() (*reconciler.Service, error) {
	st, err := config.OpenStore(settings.Store)
	if err != nil {
		return nil, err
	}

	svc, err := reconciler.NewService(st, settings.Reconciler)
	if err != nil {
		st.Close()
		return nil, err
	}
	return svc, nil
}

type uploadFunc func(ctx context.Context, filename string, r io.Reader) (*reconciler.UploadResult, error)

// uploadFile streams the CSV at path through upload
func uploadFile(ctx context.Context, path string, upload uploadFunc) (*reconciler.UploadResult, error) {
	file, err := parsers.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return upload(ctx, filepath.Base(path), file)
}

// writeReport renders the stored state of svc to path, or stdout when path
// is empty
func writeReport(ctx context.Context, svc *reconciler.Service, format, path string) error {
	reportConfig, err := config.CreateReportConfig(format)
	if err != nil {
		return err
	}

	generator, err := reporter.NewSafeReportGenerator(reportConfig, logger.WithComponent("cli"))
	if err != nil {
		return err
	}

	report, err := svc.BuildReport(ctx)
	if err != nil {
		return err
	}

	output, err := openOutput(path)
	if err != nil {
		return err
	}
	defer output.Close()

	return generator.GenerateReportSafely(report, output)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns the report destination
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}

	file, err := os.Create(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, errors.FileError(errors.CodeFilePermission, path, err)
		}
		return nil, errors.FileError(errors.CodeFileWrite, path, err)
	}
	return file, nil
}
