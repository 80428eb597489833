package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"dailybrief/internal/logger"
	"dailybrief/internal/server"

	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command for starting the HTTP server
func NewServeCmd() *cobra.Command {
	var (
		port   int
		host   string
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP generation endpoint",
		Long: `Start the dailybrief HTTP server.

The server provides:
  • POST /api/generate for a display-ready brief and concepts
  • /api/days routes for stored days and journals (when store.dsn is set)
  • /health and /metrics endpoints

Examples:
  # Start server on default port 8080
  dailybrief serve

  # Start on custom port with a strict method gate
  dailybrief serve --port 3000 --strict-methods`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, port, host, strict)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP server port (default from config: 8080)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP server host (default from config: 0.0.0.0)")
	cmd.Flags().BoolVar(&strict, "strict-methods", false, "Answer non-POST generation requests with 405")

	return cmd
}

func runServe(cmd *cobra.Command, port int, host string, strict bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.Get()

	// Override server config from flags if provided
	serverCfg := cfg.Server
	if port != 0 {
		serverCfg.Port = port
	}
	if host != "" {
		serverCfg.Host = host
	}
	if cmd.Flags().Changed("strict-methods") {
		serverCfg.StrictMethods = strict
	}

	opts := []server.Option{}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	if st != nil {
		defer func() { _ = st.Close() }()
		opts = append(opts, server.WithStore(st))
		log.Info().Str("driver", cfg.Store.Driver).Msg("Day store connected")
	}

	srv := server.New(newOrchestrator(cfg), serverCfg, opts...)

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	go func() {
		log.Info().Msgf("Server listening on http://%s:%d", serverCfg.Host, serverCfg.Port)
		log.Info().Msg("Press Ctrl+C to stop")
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case sig := <-shutdown:
		log.Info().Str("signal", sig.String()).Msg("Server shutdown initiated")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown failed, forcing close")
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		log.Info().Msg("Server stopped successfully")
	}

	return nil
}
