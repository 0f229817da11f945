package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pac-voluntarios/portal/internal/app"
	"github.com/pac-voluntarios/portal/internal/config"
	"github.com/spf13/cobra"
)

func main() {
	var appCfg config.AppConfig

	rootCmd := &cobra.Command{
		Use:   "portal",
		Short: "PAC portal access layer",
		Long: `Session gate and admin step-up service for the PAC volunteer portal.

Requests pass the session gate before reaching the page rendering service;
the /api routes serve login, logout and the administrative password flow.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&appCfg.ConfigPath, "config", "c", "", "config file (default $PORTAL_CONFIG or ./config.yaml)")

	rootCmd.AddCommand(
		serveCmd(&appCfg),
		migrateCmd(&appCfg),
		profileCmd(&appCfg),
		stepUpCmd(&appCfg),
		cacheCmd(&appCfg),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		stop()
		os.Exit(1)
	}
}

func serveCmd(appCfg *config.AppConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunServer(cmd.Context(), *appCfg)
		},
	}
}

func migrateCmd(appCfg *config.AppConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the profiles table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Migrate(cmd.Context(), *appCfg)
		},
	}
}
