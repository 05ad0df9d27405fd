package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/cmd/reconciler/config"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/pkg/errors"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const testTransactions = `txn_id,date,amount,account_id,counterparty
T1,2024-01-01,100.00,ACC1,Vendor A
T2,2024-01-02,250.00,ACC1,Vendor B
T3,2024-01-03,-75.00,ACC2,Vendor C
`

const testLedger = `gl_id,date,debit_amount,credit_amount,account_id
G1,2024-01-01,100.00,0.00,ACC1
G2,2024-01-02,245.00,0.00,ACC1
G3,2024-01-05,40.00,0.00,ACC2
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create %s: %v", name, err)
	}
	return path
}

// useDefaultSettings installs the default settings the way resolveSettings
// would for a run without flags
func useDefaultSettings(t *testing.T) {
	t.Helper()
	v := viper.New()
	config.SetDefaults(v)
	resolved, err := config.Load(v)
	if err != nil {
		t.Fatalf("failed to load settings: %v", err)
	}
	settings = resolved
	verbose = false
}

func testCommand() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	return cmd
}

func TestValidateFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	validFile := writeFile(t, tmpDir, "valid.csv", "a,b\n1,2\n")
	textFile := writeFile(t, tmpDir, "notes.txt", "hello")

	tests := []struct {
		name         string
		filePath     string
		expectError  bool
		expectedCode errors.ErrorCode
	}{
		{"valid file", validFile, false, ""},
		{"empty path", "", true, errors.CodeFileNotFound},
		{"non-existent file", filepath.Join(tmpDir, "missing.csv"), true, errors.CodeFileNotFound},
		{"not a csv", textFile, true, errors.CodeUnsupportedFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFileExists(tt.filePath)

			if !tt.expectError {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			re, ok := errors.AsReconcilerError(err)
			if !ok {
				t.Fatalf("expected ReconcilerError, got %v", err)
			}
			if re.Code != tt.expectedCode {
				t.Errorf("expected code %s, got %s", tt.expectedCode, re.Code)
			}
		})
	}
}

func TestValidateReconcileFlags(t *testing.T) {
	tmpDir := t.TempDir()
	txFile := writeFile(t, tmpDir, "transactions.csv", testTransactions)
	glPath := writeFile(t, tmpDir, "general_ledger.csv", testLedger)

	tests := []struct {
		name          string
		transactions  string
		gl            string
		format        string
		output        string
		errorContains string
	}{
		{"valid flags", txFile, glPath, "console", "", ""},
		{"xlsx to file", txFile, glPath, "xlsx", filepath.Join(tmpDir, "report.xlsx"), ""},
		{"missing transactions", "", glPath, "console", "", "transactions is required"},
		{"missing gl", txFile, "", "console", "", "gl is required"},
		{"invalid output format", txFile, glPath, "pdf", "", "invalid output format"},
		{"missing output directory", txFile, glPath, "csv", filepath.Join(tmpDir, "nope", "out.csv"), "output directory does not exist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transactionsFile = tt.transactions
			glFile = tt.gl
			outputFormat = tt.format
			outputFile = tt.output

			err := validateReconcileFlags(testCommand(), nil)

			if tt.errorContains == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error but got none")
			}
			message := err.Error()
			if re, ok := errors.AsReconcilerError(err); ok && re.Cause != nil {
				message += " " + re.Cause.Error()
			}
			if !strings.Contains(message, tt.errorContains) {
				t.Errorf("expected error to contain '%s', got: %s", tt.errorContains, message)
			}
		})
	}
}

func TestReconcileCommandHelp(t *testing.T) {
	cmd := reconcileCmd

	for _, name := range []string{"transactions", "gl", "output-format", "output-file", "detect-anomalies"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("%s flag not found", name)
		}
	}

	var helpOutput bytes.Buffer
	cmd.SetOut(&helpOutput)
	cmd.Help()

	helpText := helpOutput.String()
	for _, section := range []string{"Usage:", "Examples:", "Flags:", "--transactions", "--gl", "--output-format"} {
		if !strings.Contains(helpText, section) {
			t.Errorf("help text should contain '%s'", section)
		}
	}
}

func TestRootRegistersCommands(t *testing.T) {
	want := map[string]bool{"reconcile": false, "detect": false, "quality": false, "serve": false, "version": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %s is not registered", name)
		}
	}

	for _, name := range []string{"config", "verbose", "log-level", "log-format", "store", "dsn"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("persistent flag %s not found", name)
		}
	}
}

func TestRunReconcileJSON(t *testing.T) {
	useDefaultSettings(t)
	tmpDir := t.TempDir()

	transactionsFile = writeFile(t, tmpDir, "transactions.csv", testTransactions)
	glFile = writeFile(t, tmpDir, "general_ledger.csv", testLedger)
	outputFormat = "json"
	outputFile = filepath.Join(tmpDir, "report.json")
	runDetection = false

	if err := runReconcile(testCommand(), nil); err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}

	data, err := os.ReadFile(outputFile)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}

	var report struct {
		Summary struct {
			Matched             int `json:"matched"`
			AmountMismatches    int `json:"amount_mismatch"`
			MissingGL           int `json:"missing_gl"`
			MissingTransactions int `json:"missing_transaction"`
		} `json:"summary"`
		Results []map[string]interface{} `json:"reconciliation_results"`
		Quality []map[string]interface{} `json:"data_quality"`
	}
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}

	if len(report.Results) != 4 {
		t.Errorf("expected 4 results, got %d", len(report.Results))
	}
	if report.Summary.Matched != 1 || report.Summary.AmountMismatches != 1 {
		t.Errorf("unexpected summary %+v", report.Summary)
	}
	// T3 is a credit of 75 on ACC2 while G3 debits 40, so neither pairs
	if report.Summary.MissingGL != 1 || report.Summary.MissingTransactions != 1 {
		t.Errorf("unexpected summary %+v", report.Summary)
	}
	if len(report.Quality) != 2 {
		t.Errorf("expected 2 quality reports, got %d", len(report.Quality))
	}
}

func TestRunReconcileWithSQLiteStore(t *testing.T) {
	useDefaultSettings(t)
	tmpDir := t.TempDir()
	settings.Store.Driver = "sqlite"
	settings.Store.DSN = filepath.Join(tmpDir, "reconciler.db")

	transactionsFile = writeFile(t, tmpDir, "transactions.csv", testTransactions)
	glFile = writeFile(t, tmpDir, "general_ledger.csv", testLedger)
	outputFormat = "csv"
	outputFile = filepath.Join(tmpDir, "report.csv")
	runDetection = true

	if err := runReconcile(testCommand(), nil); err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}

	data, err := os.ReadFile(outputFile)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected header and 4 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "id,status,transaction_id,gl_id") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if _, err := os.Stat(settings.Store.DSN); err != nil {
		t.Errorf("expected database file to exist: %v", err)
	}
}

func TestRunReconcileRejectsBadData(t *testing.T) {
	useDefaultSettings(t)
	tmpDir := t.TempDir()

	transactionsFile = writeFile(t, tmpDir, "transactions.csv", "txn_id,amount\nT1,5\n")
	glFile = writeFile(t, tmpDir, "general_ledger.csv", testLedger)
	outputFormat = "console"
	outputFile = filepath.Join(tmpDir, "report.txt")

	err := runReconcile(testCommand(), nil)
	if !errors.IsCategory(err, errors.CategoryParse) {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func outlierCSV() string {
	var b strings.Builder
	b.WriteString("txn_id,date,amount,account_id,counterparty\n")
	for i := 1; i <= 19; i++ {
		fmt.Fprintf(&b, "T%02d,2024-01-01,%.2f,ACC1,Vendor\n", i, 100+float64(i)*0.01)
	}
	b.WriteString("T20,2024-01-01,100000.00,ACC1,Vendor\n")
	return b.String()
}

func TestRunDetect(t *testing.T) {
	useDefaultSettings(t)
	tmpDir := t.TempDir()

	detectFile = writeFile(t, tmpDir, "transactions.csv", outlierCSV())
	detectFormat = "json"
	detectOutput = filepath.Join(tmpDir, "anomalies.json")

	if err := validateDetectFlags(testCommand(), nil); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	if err := runDetect(testCommand(), nil); err != nil {
		t.Fatalf("detect failed: %v", err)
	}

	data, err := os.ReadFile(detectOutput)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	var report struct {
		Anomalies []struct {
			TransactionID   string `json:"transaction_id"`
			DetectionMethod string `json:"detection_method"`
		} `json:"anomalies"`
	}
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}

	if len(report.Anomalies) == 0 {
		t.Fatal("expected anomalies")
	}
	first := report.Anomalies[0]
	if first.TransactionID != "T20" || first.DetectionMethod != "z_score" {
		t.Errorf("expected T20 flagged by z_score first, got %+v", first)
	}
}

func TestValidateDetectFlagsRejectsExports(t *testing.T) {
	tmpDir := t.TempDir()
	detectFile = writeFile(t, tmpDir, "transactions.csv", testTransactions)
	detectOutput = ""

	for _, format := range []string{"csv", "xlsx", "pdf"} {
		detectFormat = format
		if err := validateDetectFlags(testCommand(), nil); !errors.IsCategory(err, errors.CategoryConfiguration) {
			t.Errorf("format %s: expected configuration error, got %v", format, err)
		}
	}
}

func TestRunQuality(t *testing.T) {
	useDefaultSettings(t)
	tmpDir := t.TempDir()

	tests := []struct {
		name     string
		dataset  string
		content  string
		format   string
		contains []string
	}{
		{
			name:     "transactions console",
			dataset:  "transactions",
			content:  testTransactions,
			format:   "console",
			contains: []string{"DATA QUALITY REPORT", "Dataset:             transactions", "Consistency score:   90.00", "  - 1 negative amounts found"},
		},
		{
			name:     "ledger json",
			dataset:  "general_ledger",
			content:  testLedger,
			format:   "json",
			contains: []string{`"dataset_name": "general_ledger"`, `"quality_score": 100`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qualityFile = writeFile(t, tmpDir, tt.dataset+".csv", tt.content)
			qualityName = tt.dataset
			qualityFormat = tt.format
			qualityOutput = filepath.Join(tmpDir, tt.name+".out")

			if err := validateQualityFlags(testCommand(), nil); err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
			if err := runQuality(testCommand(), nil); err != nil {
				t.Fatalf("quality failed: %v", err)
			}

			data, err := os.ReadFile(qualityOutput)
			if err != nil {
				t.Fatalf("failed to read output: %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(string(data), want) {
					t.Errorf("output should contain %q, got:\n%s", want, data)
				}
			}
		})
	}
}

func TestValidateQualityFlagsRejectsUnknownDataset(t *testing.T) {
	qualityFile = writeFile(t, t.TempDir(), "data.csv", testTransactions)
	qualityName = "bank_statements"
	qualityFormat = "console"
	qualityOutput = ""

	err := validateQualityFlags(testCommand(), nil)
	if !errors.IsCategory(err, errors.CategoryConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, t.TempDir(), ".env", "RECONCILER_DOTENV_PROBE=from-file\n")
	t.Cleanup(func() { os.Unsetenv("RECONCILER_DOTENV_PROBE") })

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("failed to load .env: %v", err)
	}
	if got := os.Getenv("RECONCILER_DOTENV_PROBE"); got != "from-file" {
		t.Errorf("expected variable from .env, got %q", got)
	}

	if err := loadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("a missing .env should be ignored, got %v", err)
	}
}

func TestLoadConfigReadsEnvironment(t *testing.T) {
	t.Setenv("RECONCILER_STORE_DRIVER", "sqlite")
	t.Setenv("RECONCILER_STORE_DSN", "env.db")

	v := viper.New()
	config.SetDefaults(v)
	if err := loadConfig(v, ""); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	resolved, err := config.Load(v)
	if err != nil {
		t.Fatalf("failed to resolve settings: %v", err)
	}
	if resolved.Store.Driver != "sqlite" || resolved.Store.DSN != "env.db" {
		t.Errorf("expected store settings from the environment, got %+v", resolved.Store)
	}
}

func TestLoadConfigRejectsMissingFile(t *testing.T) {
	err := loadConfig(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.IsCategory(err, errors.CategoryConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestCLIErrorHandler(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		contains     []string
	}{
		{
			name:         "nil error",
			err:          nil,
			expectedCode: 0,
		},
		{
			name:         "file error",
			err:          errors.FileError(errors.CodeFileNotFound, "/tmp/tx.csv", os.ErrNotExist),
			expectedCode: 2,
			contains:     []string{"Error: file not found: /tmp/tx.csv", "file_path: /tmp/tx.csv", "Suggestion:", "File error help:"},
		},
		{
			name:         "configuration error",
			err:          errors.ConfigurationError(errors.CodeInvalidConfig, "store.driver", "redis", fmt.Errorf("unknown driver")),
			expectedCode: 4,
			contains:     []string{"Configuration error help:"},
		},
		{
			name:         "storage error",
			err:          errors.StorageError(errors.CodeStoreFailure, "transactions", fmt.Errorf("disk I/O error")),
			expectedCode: 6,
			contains:     []string{"Storage error help:"},
		},
		{
			name:         "generic error",
			err:          fmt.Errorf("unknown flag: --bank-files"),
			expectedCode: 1,
			contains:     []string{"Error: unknown flag: --bank-files", "reconciler --help"},
		},
		{
			name:         "permission error",
			err:          fmt.Errorf("open report.csv: permission denied"),
			expectedCode: 2,
			contains:     []string{"Error: Permission denied"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			handler := &CLIErrorHandler{
				logger: logger.WithComponent("cli"),
				out:    &out,
			}

			code := handler.HandleError(tt.err)
			if code != tt.expectedCode {
				t.Errorf("expected exit code %d, got %d", tt.expectedCode, code)
			}
			for _, want := range tt.contains {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output should contain %q, got:\n%s", want, out.String())
				}
			}
		})
	}
}

func TestVersionString(t *testing.T) {
	SetVersionInfo("1.2.3", "abc123", "2024-06-01")
	t.Cleanup(func() { SetVersionInfo("dev", "unknown", "unknown") })

	if got := getVersionString(); got != "1.2.3" {
		t.Errorf("expected version 1.2.3, got %s", got)
	}

	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	if !strings.Contains(out.String(), "reconciler 1.2.3") {
		t.Errorf("unexpected version output %q", out.String())
	}
}
