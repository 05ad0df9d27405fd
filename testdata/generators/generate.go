// Command generate writes a paired transaction and general-ledger dataset
// for exercising the reconciler by hand:
//
//	go run ./testdata/generators -count 500 -output-dir ./generated
//	reconciler reconcile -t generated/transactions.csv -g generated/general_ledger.csv
//
// Every transaction gets a GL counterpart on the same account and date. A
// share of them are posted with a small amount difference, a share have no
// counterpart, some GL entries have no transaction, and a few transactions
// carry outlier amounts for the anomaly detectors.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
)

// DatasetGenerator generates a reconcilable pair of CSV files
type DatasetGenerator struct {
	Count        int
	Accounts     int
	StartDate    time.Time
	Days         int
	MinAmount    decimal.Decimal
	MaxAmount    decimal.Decimal
	MismatchRate float64
	MissingRate  float64
	OrphanRate   float64
	OutlierRate  float64

	rng *rand.Rand
}

// TransactionRow is one line of transactions.csv
type TransactionRow struct {
	TxnID        string
	Date         string
	Amount       decimal.Decimal
	AccountID    string
	Counterparty string
}

// LedgerRow is one line of general_ledger.csv
type LedgerRow struct {
	GLID      string
	Date      string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	AccountID string
}

var counterparties = []string{
	"Acme Supplies", "Globex Corp", "Initech", "Umbrella Ltd", "Stark Industries",
	"Wayne Enterprises", "Hooli", "Vandelay Imports", "Soylent Foods", "Wonka Industries",
}

func main() {
	var (
		outputDir    = flag.String("output-dir", "generated", "Output directory for generated files")
		count        = flag.Int("count", 200, "Number of transactions to generate")
		accounts     = flag.Int("accounts", 5, "Number of distinct accounts")
		startDate    = flag.String("start-date", "2024-01-01", "First posting date (YYYY-MM-DD)")
		days         = flag.Int("days", 31, "Number of days the postings span")
		minAmount    = flag.Float64("min-amount", 10.00, "Minimum transaction amount")
		maxAmount    = flag.Float64("max-amount", 5000.00, "Maximum transaction amount")
		mismatchRate = flag.Float64("mismatch-rate", 0.1, "Share of GL counterparts posted with a small difference")
		missingRate  = flag.Float64("missing-rate", 0.05, "Share of transactions without a GL counterpart")
		orphanRate   = flag.Float64("orphan-rate", 0.05, "GL entries without a transaction, as a share of count")
		outlierRate  = flag.Float64("outlier-rate", 0.02, "Share of transactions with outlier amounts")
		seed         = flag.Int64("seed", 42, "Random seed for reproducible generation")
	)
	flag.Parse()

	start, err := time.Parse("2006-01-02", *startDate)
	if err != nil {
		log.Fatalf("Invalid start date: %v", err)
	}
	if *count <= 0 || *accounts <= 0 || *days <= 0 {
		log.Fatalf("count, accounts and days must be positive")
	}

	generator := &DatasetGenerator{
		Count:        *count,
		Accounts:     *accounts,
		StartDate:    start,
		Days:         *days,
		MinAmount:    decimal.NewFromFloat(*minAmount),
		MaxAmount:    decimal.NewFromFloat(*maxAmount),
		MismatchRate: *mismatchRate,
		MissingRate:  *missingRate,
		OrphanRate:   *orphanRate,
		OutlierRate:  *outlierRate,
		rng:          rand.New(rand.NewSource(*seed)),
	}

	transactions, ledger := generator.Generate()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}
	txPath := filepath.Join(*outputDir, "transactions.csv")
	glPath := filepath.Join(*outputDir, "general_ledger.csv")

	if err := WriteTransactions(txPath, transactions); err != nil {
		log.Fatalf("Failed to write transactions: %v", err)
	}
	if err := WriteLedger(glPath, ledger); err != nil {
		log.Fatalf("Failed to write general ledger: %v", err)
	}

	fmt.Printf("Generated %d transactions in %s\n", len(transactions), txPath)
	fmt.Printf("Generated %d general ledger entries in %s\n", len(ledger), glPath)
	fmt.Printf("Seed used: %d\n", *seed)
}

// Generate builds both datasets
func (g *DatasetGenerator) Generate() ([]TransactionRow, []LedgerRow) {
	transactions := make([]TransactionRow, 0, g.Count)
	ledger := make([]LedgerRow, 0, g.Count)

	for i := 0; i < g.Count; i++ {
		txn := TransactionRow{
			TxnID:        fmt.Sprintf("TXN%06d", i+1),
			Date:         g.randomDate(),
			Amount:       g.randomAmount(),
			AccountID:    g.randomAccount(),
			Counterparty: counterparties[g.rng.Intn(len(counterparties))],
		}
		if g.rng.Float64() < g.OutlierRate {
			txn.Amount = txn.Amount.Mul(decimal.NewFromInt(50)).Round(2)
		}
		transactions = append(transactions, txn)

		if g.rng.Float64() < g.MissingRate {
			continue
		}

		amount := txn.Amount
		if g.rng.Float64() < g.MismatchRate {
			// stays under the mismatch ceiling of 100
			cents := int64(g.rng.Intn(9900) + 100)
			amount = amount.Add(decimal.New(cents, -2))
		}
		ledger = append(ledger, newLedgerRow(len(ledger)+1, txn.Date, amount, txn.AccountID))
	}

	orphans := int(float64(g.Count) * g.OrphanRate)
	for i := 0; i < orphans; i++ {
		ledger = append(ledger, newLedgerRow(len(ledger)+1, g.randomDate(), g.randomAmount(), g.randomAccount()))
	}

	g.rng.Shuffle(len(ledger), func(i, j int) { ledger[i], ledger[j] = ledger[j], ledger[i] })
	return transactions, ledger
}

// newLedgerRow books a positive amount as a debit and a negative one as a
// credit
func newLedgerRow(n int, date string, amount decimal.Decimal, account string) LedgerRow {
	row := LedgerRow{
		GLID:      fmt.Sprintf("GL%06d", n),
		Date:      date,
		Debit:     decimal.Zero,
		Credit:    decimal.Zero,
		AccountID: account,
	}
	if amount.IsNegative() {
		row.Credit = amount.Neg()
	} else {
		row.Debit = amount
	}
	return row
}

func (g *DatasetGenerator) randomDate() string {
	return g.StartDate.AddDate(0, 0, g.rng.Intn(g.Days)).Format("2006-01-02")
}

func (g *DatasetGenerator) randomAccount() string {
	return fmt.Sprintf("ACC%03d", g.rng.Intn(g.Accounts)+1)
}

func (g *DatasetGenerator) randomAmount() decimal.Decimal {
	amountRange := g.MaxAmount.Sub(g.MinAmount)
	return decimal.NewFromFloat(g.rng.Float64()).Mul(amountRange).Add(g.MinAmount).Round(2)
}

// WriteTransactions writes transactions to a CSV file
func WriteTransactions(filename string, rows []TransactionRow) error {
	records := [][]string{{"txn_id", "date", "amount", "account_id", "counterparty"}}
	for _, r := range rows {
		records = append(records, []string{r.TxnID, r.Date, r.Amount.StringFixed(2), r.AccountID, r.Counterparty})
	}
	return writeCSV(filename, records)
}

// WriteLedger writes general-ledger entries to a CSV file
func WriteLedger(filename string, rows []LedgerRow) error {
	records := [][]string{{"gl_id", "date", "debit_amount", "credit_amount", "account_id"}}
	for _, r := range rows {
		records = append(records, []string{r.GLID, r.Date, r.Debit.StringFixed(2), r.Credit.StringFixed(2), r.AccountID})
	}
	return writeCSV(filename, records)
}

func writeCSV(filename string, records [][]string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(records); err != nil {
		return err
	}
	return file.Close()
}
