// Package config maps viper settings onto the component configurations
// used by the reconciler CLI.
package config

import (
	"fmt"
	"strings"

	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/reconciler"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/reporter"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/server"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/store"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/pkg/errors"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Settings keys
const (
	KeyExactTolerance  = "matching.exact-tolerance"
	KeyMismatchCeiling = "matching.mismatch-ceiling"

	KeyZScoreThreshold = "anomaly.zscore-threshold"
	KeyIQRMultiplier   = "anomaly.iqr-multiplier"
	KeyMinStatistical  = "anomaly.min-statistical"
	KeyMinML           = "anomaly.min-ml"
	KeyContamination   = "anomaly.contamination"
	KeyNu              = "anomaly.nu"
	KeySeed            = "anomaly.seed"
	KeyTrees           = "anomaly.trees"
	KeyMaxSamples      = "anomaly.max-samples"

	KeyStoreDriver = "store.driver"
	KeyStoreDSN    = "store.dsn"

	KeyServerAddr        = "server.addr"
	KeyServerCORSOrigins = "server.cors-origins"
	KeyServerMaxUpload   = "server.max-upload-bytes"

	KeyLogLevel  = "log.level"
	KeyLogFormat = "log.format"
)

// Settings is the resolved configuration of one CLI invocation
type Settings struct {
	Reconciler *reconciler.Config
	Store      *store.Config
	Server     *server.Config
	LogLevel   string
	LogFormat  string
}

// SetDefaults registers the default value of every key on v
func SetDefaults(v *viper.Viper) {
	rc := reconciler.DefaultConfig()
	v.SetDefault(KeyExactTolerance, rc.Matching.ExactTolerance.String())
	v.SetDefault(KeyMismatchCeiling, rc.Matching.MismatchCeiling.String())

	v.SetDefault(KeyZScoreThreshold, rc.Anomaly.ZScoreThreshold)
	v.SetDefault(KeyIQRMultiplier, rc.Anomaly.IQRMultiplier)
	v.SetDefault(KeyMinStatistical, rc.Anomaly.MinStatistical)
	v.SetDefault(KeyMinML, rc.Anomaly.MinML)
	v.SetDefault(KeyContamination, rc.Anomaly.Contamination)
	v.SetDefault(KeyNu, rc.Anomaly.Nu)
	v.SetDefault(KeySeed, rc.Anomaly.Seed)
	v.SetDefault(KeyTrees, rc.Anomaly.Trees)
	v.SetDefault(KeyMaxSamples, rc.Anomaly.MaxSamples)

	sc := store.DefaultConfig()
	v.SetDefault(KeyStoreDriver, sc.Driver)
	v.SetDefault(KeyStoreDSN, sc.DSN)

	srv := server.DefaultConfig()
	v.SetDefault(KeyServerAddr, srv.Addr)
	v.SetDefault(KeyServerCORSOrigins, srv.CORSOrigins)
	v.SetDefault(KeyServerMaxUpload, srv.MaxUploadBytes)

	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
}

// Load resolves the settings held by v. Every component configuration is
// validated before it is returned.
func Load(v *viper.Viper) (*Settings, error) {
	rc, err := reconcilerConfig(v)
	if err != nil {
		return nil, err
	}

	sc := &store.Config{
		Driver: strings.ToLower(strings.TrimSpace(v.GetString(KeyStoreDriver))),
		DSN:    v.GetString(KeyStoreDSN),
	}
	if err := sc.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, KeyStoreDriver, sc.Driver, err)
	}

	srv := server.DefaultConfig()
	srv.Addr = v.GetString(KeyServerAddr)
	srv.CORSOrigins = splitList(v.GetStringSlice(KeyServerCORSOrigins))
	srv.MaxUploadBytes = v.GetInt64(KeyServerMaxUpload)
	if err := srv.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "server", srv.Addr, err)
	}

	return &Settings{
		Reconciler: rc,
		Store:      sc,
		Server:     srv,
		LogLevel:   v.GetString(KeyLogLevel),
		LogFormat:  v.GetString(KeyLogFormat),
	}, nil
}

func reconcilerConfig(v *viper.Viper) (*reconciler.Config, error) {
	rc := reconciler.DefaultConfig()

	exact, err := decimal.NewFromString(v.GetString(KeyExactTolerance))
	if err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, KeyExactTolerance, v.GetString(KeyExactTolerance), err)
	}
	ceiling, err := decimal.NewFromString(v.GetString(KeyMismatchCeiling))
	if err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, KeyMismatchCeiling, v.GetString(KeyMismatchCeiling), err)
	}
	rc.Matching.ExactTolerance = exact
	rc.Matching.MismatchCeiling = ceiling

	rc.Anomaly.ZScoreThreshold = v.GetFloat64(KeyZScoreThreshold)
	rc.Anomaly.IQRMultiplier = v.GetFloat64(KeyIQRMultiplier)
	rc.Anomaly.MinStatistical = v.GetInt(KeyMinStatistical)
	rc.Anomaly.MinML = v.GetInt(KeyMinML)
	rc.Anomaly.Contamination = v.GetFloat64(KeyContamination)
	rc.Anomaly.Nu = v.GetFloat64(KeyNu)
	rc.Anomaly.Seed = v.GetInt64(KeySeed)
	rc.Anomaly.Trees = v.GetInt(KeyTrees)
	rc.Anomaly.MaxSamples = v.GetInt(KeyMaxSamples)

	if err := rc.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "reconciler", nil, err)
	}
	return rc, nil
}

// splitList accepts both repeated values and a single comma separated value,
// which is how list settings arrive from the environment
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// OpenStore creates the store described by config
func OpenStore(config *store.Config) (reconciler.Store, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, KeyStoreDriver, config.Driver, err)
	}

	switch strings.ToLower(config.Driver) {
	case store.DriverSQLite:
		st, err := store.OpenSQLite(config.DSN)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return store.NewMemoryStore(), nil
	}
}

// CreateReportConfig creates a report configuration for the named output
// format
func CreateReportConfig(format string) (*reporter.ReportConfig, error) {
	parsed, err := reporter.ParseOutputFormat(format)
	if err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "output-format", format, err).
			WithSuggestion("use one of: console, json, csv, xlsx")
	}

	config := reporter.DefaultReportConfig()
	config.Format = parsed
	return config, nil
}

// String renders the settings for verbose output
func (s *Settings) String() string {
	return fmt.Sprintf("store=%s server=%s log=%s/%s exact=%s ceiling=%s",
		s.Store.Driver, s.Server.Addr, s.LogLevel, s.LogFormat,
		s.Reconciler.Matching.ExactTolerance, s.Reconciler.Matching.MismatchCeiling)
}
