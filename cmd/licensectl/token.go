// cmd/licensectl/token.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javajoker/license-console/internal/utils"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a console API token for an operator",
	Args:  cobra.NoArgs,
	RunE:  runToken,
}

var (
	tokenSubject string
	tokenParty   string
	tokenAdmin   bool
	tokenTTL     int
)

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "operator name (required)")
	tokenCmd.Flags().StringVar(&tokenParty, "party", "", "ledger party the operator acts for (required)")
	tokenCmd.Flags().BoolVar(&tokenAdmin, "admin", false, "grant provider admin actions")
	tokenCmd.Flags().IntVar(&tokenTTL, "ttl", 0, "lifetime in hours (default JWT_ACCESS_TTL)")
	tokenCmd.MarkFlagRequired("subject")
	tokenCmd.MarkFlagRequired("party")

	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ttl := tokenTTL
	if ttl <= 0 {
		ttl = cfg.JWT.AccessTokenTTL
	}

	var roles []string
	if tokenAdmin {
		roles = []string{cfg.JWT.AdminRole}
	}

	utils.SetJWTSecret(cfg.JWT.SecretKey)
	token, err := utils.GenerateJWT(tokenSubject, tokenParty, roles, tokenAdmin, ttl)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}

	fmt.Println(token)
	return nil
}
