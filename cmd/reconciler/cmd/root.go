package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/cmd/reconciler/config"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/pkg/errors"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "RECONCILER"

var (
	cfgFile string
	verbose bool
	version = "dev"
	commit  = "unknown"
	date    = "unknown"

	// configErr holds a failure from initConfig until a command can return it
	configErr error

	// settings is resolved before every command runs
	settings *config.Settings
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "reconciler",
	Short: "Financial reconciliation and anomaly detection engine",
	Long: `Reconciler matches a transaction ledger against general-ledger entries,
flags anomalous transactions and scores the quality of both datasets.

Settings come from flags, an optional config file, a .env file in the
working directory and RECONCILER_* environment variables
(for example RECONCILER_STORE_DRIVER=sqlite).

Examples:
  reconciler reconcile --transactions transactions.csv --gl general_ledger.csv
  reconciler reconcile -t tx.csv -g gl.csv --output-format xlsx --output-file report.xlsx
  reconciler detect --transactions transactions.csv
  reconciler quality --file general_ledger.csv --name general_ledger
  reconciler serve --addr :8000 --store sqlite --dsn reconciler.db
  reconciler version`,
	Version:           getVersionString(),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: resolveSettings,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// Interrupts cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)
	config.SetDefaults(viper.GetViper())

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (optional)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-format", "text", "log format: text, json")
	flags.String("store", "memory", "store driver: memory, sqlite")
	flags.String("dsn", "", "sqlite database path (required with --store sqlite)")

	// Bind flags to viper
	viper.BindPFlag("verbose", flags.Lookup("verbose"))
	viper.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	viper.BindPFlag(config.KeyLogFormat, flags.Lookup("log-format"))
	viper.BindPFlag(config.KeyStoreDriver, flags.Lookup("store"))
	viper.BindPFlag(config.KeyStoreDSN, flags.Lookup("dsn"))
}

// initConfig reads in the .env file, the config file and ENV variables.
func initConfig() {
	configErr = loadConfig(viper.GetViper(), cfgFile)
}

func loadConfig(v *viper.Viper, file string) error {
	if err := loadDotEnv(".env"); err != nil {
		return err
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return errors.ConfigurationError(errors.CodeInvalidConfig, "config", file, err).
				WithSuggestion("check the config file path and syntax")
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return nil
}

// loadDotEnv loads path into the environment when it exists. Variables that
// are already set win.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "env-file", path, err)
	}
	return nil
}

func resolveSettings(cmd *cobra.Command, args []string) error {
	if configErr != nil {
		return configErr
	}

	resolved, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	level := resolved.LogLevel
	if viper.GetBool("verbose") {
		level = string(logger.DebugLevel)
	}
	if err := logger.Configure(level, resolved.LogFormat); err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, config.KeyLogLevel, level, err)
	}

	if viper.GetBool("verbose") {
		if used := viper.ConfigFileUsed(); used != "" {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", used)
		}
		fmt.Fprintf(os.Stderr, "Settings: %s\n", resolved)
	}

	settings = resolved
	return nil
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

func getVersionString() string {
	if version == "dev" {
		return fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	}
	return version
}
