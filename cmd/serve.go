package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/landinghub/pagekit/core/extract"
	"github.com/landinghub/pagekit/core/iuhpage"
	"github.com/landinghub/pagekit/core/preview"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the preview service",
	Long: `Serve exposes render, import, validate, pack and unpack over HTTP for the
editor's live preview, together with read access to the template library.
Prometheus metrics are served at /metrics.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "Listen address")
	mustBind("server.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, _ []string) error {
	resolver, err := newResolver()
	if err != nil {
		return err
	}
	store, err := openLibrary()
	if err != nil {
		return err
	}
	defer store.Close()

	srv := preview.NewServer(preview.Options{
		Importer:  extract.New(),
		Packer:    iuhpage.New(resolver, logger),
		Templates: store,
		Logger:    logger,
	})
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Error channel for server failures
	errChan := make(chan error, 1)
	go func() {
		logger.Infof("Preview server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("preview server failed: %w", err)
		}
	}()

	select {
	case <-cmd.Context().Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return err
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("preview server shutdown: %w", err)
	}
	logger.Info("Preview server stopped")
	return nil
}
