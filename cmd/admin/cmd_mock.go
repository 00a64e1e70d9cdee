package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"adminconsole/internal/api/mockapi"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	mockAddr    string
	mockLatency time.Duration
	mockSecret  string
	mockDB      string
)

// mockAPICmd serves the in-memory API for local use
var mockAPICmd = &cobra.Command{
	Use:   "mock-api",
	Short: "Serve a local user-management API",
	Long: `Starts a local API server seeded with one admin account. Users live in
memory unless --db names a SQLite file. Point the console at it with
--api-url or ADMIN_API_URL.

Example:
  admin mock-api --addr 127.0.0.1:8080 --db ~/.adminconsole/mock.db
  ADMIN_API_URL=http://127.0.0.1:8080/api/v1 admin`,
	RunE: runMockAPI,
}

func init() {
	mockAPICmd.Flags().StringVar(&mockAddr, "addr", "127.0.0.1:8080", "Listen address")
	mockAPICmd.Flags().DurationVar(&mockLatency, "latency", 0, "Artificial delay added to every response")
	mockAPICmd.Flags().StringVar(&mockSecret, "secret", "", "Token signing secret (default: built-in)")
	mockAPICmd.Flags().StringVar(&mockDB, "db", "", "SQLite file to keep users in (default: memory)")
}

func runMockAPI(cmd *cobra.Command, args []string) error {
	opts := []mockapi.Option{mockapi.WithLatency(mockLatency)}
	if mockSecret != "" {
		opts = append(opts, mockapi.WithSecret([]byte(mockSecret)))
	}
	if mockDB != "" {
		repo, err := mockapi.OpenSQLite(mockDB)
		if err != nil {
			return err
		}
		opts = append(opts, mockapi.WithRepository(repo))
	}
	srv := mockapi.New(opts...)
	defer srv.Close()

	ln, err := net.Listen("tcp", mockAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", mockAddr, err)
	}

	httpSrv := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := commandContext()
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.Serve(ln) }()

	logger.Info("Mock API listening", zap.String("addr", ln.Addr().String()), zap.Int("users", len(srv.Users())))
	fmt.Fprintf(cmd.OutOrStdout(), "Mock API listening on http://%s%s\n", ln.Addr(), mockapi.BasePath)
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded admin: %s / %s\n", mockapi.AdminEmail, mockapi.AdminPassword)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("mock api: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down mock API")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("mock api shutdown: %w", err)
	}
	return nil
}
