// cmd/licensectl/main.go
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/javajoker/license-console/internal/config"
	"github.com/javajoker/license-console/internal/console"
	"github.com/javajoker/license-console/internal/services"
)

var rootCmd = &cobra.Command{
	Use:   "licensectl",
	Short: "Operate app installs, licenses and renewals on the ledger",
	Long: `licensectl drives the license workflow of an app provider: accepting
install requests, minting licenses and running renewals against the ledger
backend. Every command re-reads the affected collection after it succeeds.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if debug {
			logrus.SetLevel(logrus.DebugLevel)
		} else {
			logrus.SetLevel(logrus.WarnLevel)
		}
		return nil
	},
}

var (
	ledgerURL   string
	ledgerToken string
	outputJSON  bool
	debug       bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&ledgerURL, "ledger-url", "", "ledger API base URL (default LEDGER_API_URL)")
	rootCmd.PersistentFlags().StringVar(&ledgerToken, "token", "", "bearer token for the ledger API (default LEDGER_API_TOKEN)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "print JSON instead of tables")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if ledgerURL != "" {
		cfg.Ledger.BaseURL = ledgerURL
	}
	if ledgerToken != "" {
		cfg.Ledger.Token = ledgerToken
	}
	return cfg, nil
}

// newConsole builds the stores without a database; notifications go to the log.
func newConsole() (*console.Console, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return console.New(cfg, nil)
}

// check turns a failed result into the command's error.
func check(failure *services.Failure) error {
	if failure == nil {
		return nil
	}
	return fmt.Errorf("%s", failure.Message)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}
