package parsers

import (
	"fmt"
)

// Dataset names under which quality reports are stored
const (
	DatasetTransactions  = "transactions"
	DatasetGeneralLedger = "general_ledger"
)

// ParseConfig holds configuration for reading uploaded CSV files
type ParseConfig struct {
	Delimiter        rune `json:"delimiter"`
	Comment          rune `json:"comment"`
	TrimLeadingSpace bool `json:"trim_leading_space"`

	// SkipEmptyRows drops rows whose cells are all missing when building
	// records. The rows stay in the table so quality scoring still sees them.
	SkipEmptyRows bool `json:"skip_empty_rows"`

	MaxFieldSize     int  `json:"max_field_size"`
	ValidateEncoding bool `json:"validate_encoding"`
}

// DefaultParseConfig returns a configuration with sensible defaults
func DefaultParseConfig() *ParseConfig {
	return &ParseConfig{
		Delimiter:        ',',
		Comment:          0,
		TrimLeadingSpace: true,
		SkipEmptyRows:    true,
		MaxFieldSize:     1000000, // 1MB per field
		ValidateEncoding: true,
	}
}

// Validate checks if the parse configuration is valid
func (pc *ParseConfig) Validate() error {
	if pc.Delimiter == 0 || pc.Delimiter == '\r' || pc.Delimiter == '\n' || pc.Delimiter == '"' {
		return fmt.Errorf("invalid delimiter %q", pc.Delimiter)
	}

	if pc.Comment == pc.Delimiter {
		return fmt.Errorf("comment character cannot equal the delimiter")
	}

	if pc.MaxFieldSize < 0 {
		return fmt.Errorf("max field size cannot be negative, got %d", pc.MaxFieldSize)
	}

	return nil
}

// Clone creates a copy of the configuration
func (pc *ParseConfig) Clone() *ParseConfig {
	clone := *pc
	return &clone
}

// ColumnSet names a dataset and the headers its files must carry
type ColumnSet struct {
	Dataset  string
	Required []string
}

var (
	// TransactionColumns are the headers of a transaction ledger file
	TransactionColumns = ColumnSet{
		Dataset:  DatasetTransactions,
		Required: []string{"txn_id", "date", "amount", "account_id", "counterparty"},
	}

	// GLColumns are the headers of a general ledger file
	GLColumns = ColumnSet{
		Dataset:  DatasetGeneralLedger,
		Required: []string{"gl_id", "date", "debit_amount", "credit_amount", "account_id"},
	}
)
