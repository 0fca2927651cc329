// Package server provides server-related CLI commands.
package server

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/andrei-cloud/go_paycalc/internal/api"
	"github.com/andrei-cloud/go_paycalc/internal/commands/cli/runner"
	"github.com/andrei-cloud/go_paycalc/internal/config"
	"github.com/andrei-cloud/go_paycalc/internal/server"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the calculator servers",
		Long: `Serve the calculators over TCP (length framed JSON requests) and over HTTP.
The HTTP listener is disabled when --http-addr is empty.`,
		RunE: runServe,
	}

	// Serve command flags that can override config.
	cmd.Flags().String("host", "localhost", "TCP server host")
	cmd.Flags().Int("port", 1500, "TCP server port")
	cmd.Flags().String("http-addr", "localhost:8080", "HTTP listen address")

	return cmd
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg := config.Get()
	registry := runner.Registry()

	srv, err := server.NewServer(cfg.Address(), registry)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}
	if err := srv.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	var httpSrv *api.Server
	if cfg.HTTP.Addr != "" {
		httpSrv = api.NewServer(cfg.HTTP.Addr, registry, log.Logger)
		if err := httpSrv.Start(); err != nil {
			_ = srv.Stop()

			return fmt.Errorf("failed to start http server: %w", err)
		}
	}

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stopChan)

	<-stopChan
	log.Info().Msg("shutting down servers...")

	if httpSrv != nil {
		if err := httpSrv.Stop(); err != nil {
			log.Error().Err(err).Msg("error during http server shutdown")
		}
	}
	if err := srv.Stop(); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	return nil
}
