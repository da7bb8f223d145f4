// cmd/licensectl/sandbox.go
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

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/javajoker/license-console/internal/models"
	"github.com/javajoker/license-console/internal/sandbox"
)

var sandboxCmd = &cobra.Command{
	Use:   "sandbox",
	Short: "Serve an in-memory ledger for local runs",
	Long: `Sandbox serves the ledger REST API from memory. Point LEDGER_API_URL at
http://localhost:<port>/api. Install requests and wallet payments are
simulated under /api/sandbox.`,
	Args: cobra.NoArgs,
	RunE: runSandbox,
}

var sandboxSeed int

func init() {
	sandboxCmd.Flags().IntVar(&sandboxSeed, "seed", 1, "number of app install requests to create at start")
	rootCmd.AddCommand(sandboxCmd)
}

func runSandbox(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !debug {
		logrus.SetLevel(logrus.InfoLevel)
	}

	ledger := sandbox.New(cfg.Sandbox)
	for i := 0; i < sandboxSeed; i++ {
		if _, err := ledger.CreateAppInstallRequest(models.NewMetadata("seed", fmt.Sprintf("%d", i+1))); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Sandbox.Port),
		Handler:           ledger.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("addr", srv.Addr+sandbox.BasePath).Info("Sandbox ledger listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
