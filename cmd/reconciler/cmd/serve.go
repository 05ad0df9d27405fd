package cmd

import (
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/cmd/reconciler/config"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/server"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/pkg/errors"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the reconciliation HTTP API",
	Long: `Serve exposes uploads, reconciliation and anomaly detection runs, the
dashboard and exports under /api. The process stops gracefully on SIGINT or
SIGTERM.

Examples:
  reconciler serve
  reconciler serve --addr :9000 --cors-origins http://localhost:3000
  RECONCILER_STORE_DRIVER=sqlite RECONCILER_STORE_DSN=reconciler.db reconciler serve`,

	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8000", "listen address")
	serveCmd.Flags().StringSlice("cors-origins", []string{"*"}, "allowed CORS origins")

	viper.BindPFlag(config.KeyServerAddr, serveCmd.Flags().Lookup("addr"))
	viper.BindPFlag(config.KeyServerCORSOrigins, serveCmd.Flags().Lookup("cors-origins"))
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("cli")

	svc, err := openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	srv, err := server.New(svc, settings.Server)
	if err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "server", settings.Server.Addr, err)
	}

	log.WithField("store", settings.Store.Driver).Info("Starting reconciliation API")
	if err := srv.Run(cmd.Context()); err != nil {
		return errors.InternalError(errors.CodeUnexpectedError, "serve", err)
	}
	log.Info("Server stopped")
	return nil
}
