// cmd/licensectl/watch.go
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/javajoker/license-console/internal/projection"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the ledger and print the app install and license tables",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

var watchLicenses bool

func init() {
	watchCmd.Flags().BoolVar(&watchLicenses, "licenses", false, "print licenses instead of app installs")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	app, err := newConsole()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	me := viewer(ctx, app)
	app.Poller.Start()
	defer app.Poller.Close()

	ticker := time.NewTicker(cfg.Polling.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		fmt.Printf("\n%s\n", time.Now().Format(time.RFC3339))
		if watchLicenses {
			err = printLicenses(projection.LicenseRows(app.Licenses.Licenses(), me, time.Now()))
		} else {
			err = printInstalls(projection.AppInstallRows(app.AppInstalls.Unified(), me))
		}
		if err != nil {
			return err
		}
		if latest, ok := app.Notifications.Latest(); ok {
			fmt.Printf("last: [%s] %s\n", latest.Level, latest.Message)
		}
	}
}
