// Package matcher pairs transactions with general-ledger entries.
//
// Matching is greedy and order sensitive. Transactions are visited in input
// order and each one claims the first unclaimed GL entry on the same account
// and date whose net amount lies within the mismatch ceiling:
//
//	config := matcher.DefaultMatchingConfig()
//	engine := matcher.NewMatchingEngine(config)
//	results := engine.Reconcile(transactions, glEntries)
//
// A GL entry is claimed by at most one transaction per run. GL entries left
// unclaimed are reported as missing transactions after all transactions have
// been visited.
package matcher

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MatchingConfig holds the tolerances that classify a same-account,
// same-date pairing.
//
// A pairing whose absolute difference is below ExactTolerance is a match.
// Below MismatchCeiling it is an amount mismatch. Anything else is not a
// candidate and scanning continues.
type MatchingConfig struct {
	// ExactTolerance is the exclusive upper bound for an exact match
	ExactTolerance decimal.Decimal `json:"exact_tolerance"`

	// MismatchCeiling is the exclusive upper bound for an amount mismatch
	MismatchCeiling decimal.Decimal `json:"mismatch_ceiling"`
}

// DefaultMatchingConfig returns the standard tolerances of 0.01 and 100
func DefaultMatchingConfig() *MatchingConfig {
	return &MatchingConfig{
		ExactTolerance:  decimal.RequireFromString("0.01"),
		MismatchCeiling: decimal.NewFromInt(100),
	}
}

// Validate checks that both tolerances are positive and ordered
func (mc *MatchingConfig) Validate() error {
	if !mc.ExactTolerance.IsPositive() {
		return fmt.Errorf("exact tolerance must be positive, got %s", mc.ExactTolerance)
	}
	if !mc.MismatchCeiling.IsPositive() {
		return fmt.Errorf("mismatch ceiling must be positive, got %s", mc.MismatchCeiling)
	}
	if mc.MismatchCeiling.LessThan(mc.ExactTolerance) {
		return fmt.Errorf("mismatch ceiling %s must not be below exact tolerance %s",
			mc.MismatchCeiling, mc.ExactTolerance)
	}
	return nil
}

// Clone creates a deep copy of the configuration
func (mc *MatchingConfig) Clone() *MatchingConfig {
	clone := *mc
	return &clone
}

// IsExact reports whether the difference counts as a match
func (mc *MatchingConfig) IsExact(diff decimal.Decimal) bool {
	return diff.Abs().LessThan(mc.ExactTolerance)
}

// IsMismatch reports whether the difference counts as an amount mismatch.
// Callers check IsExact first.
func (mc *MatchingConfig) IsMismatch(diff decimal.Decimal) bool {
	return diff.Abs().LessThan(mc.MismatchCeiling)
}

// String returns a string representation of the configuration
func (mc *MatchingConfig) String() string {
	return fmt.Sprintf("MatchingConfig{ExactTolerance: %s, MismatchCeiling: %s}",
		mc.ExactTolerance, mc.MismatchCeiling)
}
