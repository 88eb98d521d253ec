package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"timetracker/api"
	"timetracker/config"
	"timetracker/logger"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serverPort string

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Starts the HTTP API server",
	Long: `Serves the tag, task and event endpoints over HTTP until interrupted.
The listen port defaults to server.port from the configuration (3000).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		port := serverPort
		if port == "" {
			port = config.AppConfig.Server.Port
		}
		if port == "" {
			port = "3000"
		}

		handler := api.NewRouter(service(), store, api.Options{
			RequestTimeout: config.AppConfig.Server.RequestTimeout,
			Compress:       config.AppConfig.Server.Compress,
		})
		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Info("Server Command: Listening on :%s", port)
			errCh <- srv.ListenAndServe()
		}()
		fmt.Printf("timetracker API listening on http://localhost:%s\n", port)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("could not start server: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("Server Command: Shutdown signal received, draining connections")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info("Server Command: Server stopped")
		return nil
	},
}

func init() {
	serverCmd.Flags().StringVarP(&serverPort, "port", "p", "", "Port for the server to listen on (overrides server.port)")
	rootCmd.AddCommand(serverCmd)
}
