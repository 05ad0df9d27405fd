// Package reconciler orchestrates uploads, reconciliation runs, anomaly
// detection runs and dashboard aggregation on top of a Store.
//
// The service owns no data itself. Each operation reads a snapshot from the
// store, runs the relevant engine, and replaces the derived collection in a
// single store call:
//
//	svc, err := reconciler.NewService(store.NewMemoryStore(), reconciler.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	upload, err := svc.UploadTransactions(ctx, "transactions.csv", file)
//	summary, err := svc.RunReconciliation(ctx)
//
// Runs of the same kind are serialised so that two concurrent requests never
// interleave their replace calls. Runs of different kinds may overlap; a
// reconciliation run started while an upload is in flight sees either the
// old or the new dataset, never a mix of the two.
package reconciler

import (
	"fmt"
	"sync"
	"time"

	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/anomaly"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/matcher"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/parsers"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/quality"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/pkg/errors"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/pkg/logger"

	"github.com/google/uuid"
)

// Config holds the engine configurations used by the service
type Config struct {
	Matching *matcher.MatchingConfig `json:"matching"`
	Anomaly  *anomaly.Config         `json:"anomaly"`
	Scoring  *quality.ScoringConfig  `json:"scoring"`
	Parsing  *parsers.ParseConfig    `json:"parsing"`
}

// DefaultConfig returns a default configuration for the reconciliation service
func DefaultConfig() *Config {
	return &Config{
		Matching: matcher.DefaultMatchingConfig(),
		Anomaly:  anomaly.DefaultConfig(),
		Scoring:  quality.DefaultScoringConfig(),
		Parsing:  parsers.DefaultParseConfig(),
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Matching == nil || c.Anomaly == nil || c.Scoring == nil || c.Parsing == nil {
		return fmt.Errorf("matching, anomaly, scoring and parsing configurations are required")
	}
	if err := c.Matching.Validate(); err != nil {
		return fmt.Errorf("invalid matching configuration: %w", err)
	}
	if err := c.Anomaly.Validate(); err != nil {
		return fmt.Errorf("invalid anomaly configuration: %w", err)
	}
	if err := c.Scoring.Validate(); err != nil {
		return fmt.Errorf("invalid scoring configuration: %w", err)
	}
	if err := c.Parsing.Validate(); err != nil {
		return fmt.Errorf("invalid parsing configuration: %w", err)
	}
	return nil
}

// Service runs reconciliation workflows against a Store
type Service struct {
	store    Store
	config   *Config
	reader   *parsers.BaseParser
	txParser *parsers.TransactionParser
	glParser *parsers.GLParser
	matcher  *matcher.MatchingEngine
	detector *anomaly.Detector
	scorer   *quality.Scorer
	logger   logger.Logger

	// now and newID are replaced in tests
	now   func() time.Time
	newID func() string

	transactionsMu sync.Mutex
	ledgerMu       sync.Mutex
	reconcileMu    sync.Mutex
	detectMu       sync.Mutex
}

// NewService creates a new reconciliation service. A nil config uses the
// defaults.
func NewService(st Store, config *Config) (*Service, error) {
	if st == nil {
		return nil, errors.ConfigurationError(errors.CodeMissingConfig, "store", nil,
			fmt.Errorf("store is required"))
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "reconciler", nil, err)
	}

	return &Service{
		store:    st,
		config:   config,
		reader:   parsers.NewBaseParser(config.Parsing),
		txParser: parsers.NewTransactionParser(config.Parsing),
		glParser: parsers.NewGLParser(config.Parsing),
		matcher:  matcher.NewMatchingEngine(config.Matching),
		detector: anomaly.NewDetector(config.Anomaly),
		scorer:   quality.NewScorer(config.Scoring),
		logger:   logger.WithComponent("reconciler"),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}, nil
}

// Config returns the configuration the service was built with
func (s *Service) Config() *Config {
	return s.config
}

// Close releases the underlying store
func (s *Service) Close() error {
	return s.store.Close()
}

// SetClock replaces the timestamp source used to stamp stored records
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// SetIDGenerator replaces the identifier source used for results and findings
func (s *Service) SetIDGenerator(newID func() string) {
	s.newID = newID
}

func storageFailure(err error, operation string) error {
	return errors.WrapIfNeeded(err, errors.CategoryStorage, errors.CodeStoreFailure,
		fmt.Sprintf("store operation failed during %s", operation))
}
