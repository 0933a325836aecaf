package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve template metrics and health endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("metrics-addr")
		interval, _ := cmd.Flags().GetDuration("interval")

		metrics.SetVersion(Version)
		collector := metrics.NewCollector(func() (storage.Store, error) {
			store, err := openStore(cmd)
			if err != nil {
				return nil, err
			}
			return store, nil
		}, interval)
		collector.Start()
		defer collector.Stop()

		server := &http.Server{
			Addr:              addr,
			Handler:           metrics.NewMux(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server error: %w", err)
			}
		}()

		logger := log.WithComponent("serve")
		logger.Info().Str("addr", addr).Msg("Serving metrics")
		fmt.Fprintf(cmd.OutOrStdout(), "Serving metrics on %s. Press Ctrl+C to stop.\n", addr)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case <-sigCh:
		case err := <-errCh:
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(ctx)
	},
}

func init() {
	serveCmd.Flags().String("metrics-addr", "127.0.0.1:9090", "Address for /metrics, /health and /ready")
	serveCmd.Flags().Duration("interval", 15*time.Second, "Store collection interval")
}
