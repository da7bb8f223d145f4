// cmd/licensectl/licenses.go
package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/javajoker/license-console/internal/models"
	"github.com/javajoker/license-console/internal/projection"
	"github.com/javajoker/license-console/internal/services"
	"github.com/javajoker/license-console/internal/utils"
)

var licensesCmd = &cobra.Command{
	Use:   "licenses",
	Short: "List licenses with their renewal requests",
	Args:  cobra.NoArgs,
	RunE:  runLicenses,
}

var renewalsCmd = &cobra.Command{
	Use:   "renewals",
	Short: "List license renewal requests",
	Args:  cobra.NoArgs,
	RunE:  runRenewals,
}

var renewCmd = &cobra.Command{
	Use:   "renew <license-contract-id>",
	Short: "Offer a license renewal to the user",
	Long: `Renew creates a renewal request with a payment request for the user's
wallet. Fee and durations default to the configured renewal terms.`,
	Args: cobra.ExactArgs(1),
	RunE: runRenew,
}

var expireCmd = &cobra.Command{
	Use:   "expire <license-contract-id>",
	Short: "Archive a license whose expiry has passed",
	Args:  cobra.ExactArgs(1),
	RunE:  runExpire,
}

var completeCmd = &cobra.Command{
	Use:   "complete <license-contract-id>",
	Short: "Complete a paid renewal and extend the license",
	Args:  cobra.ExactArgs(1),
	RunE:  runComplete,
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw <renewal-contract-id>",
	Short: "Withdraw a license renewal request",
	Args:  cobra.ExactArgs(1),
	RunE:  runWithdraw,
}

var (
	description     string
	renewFee        float64
	renewExtension  string
	renewPayment    string
	renewalContract string
	allocationCID   string
)

func init() {
	renewCmd.Flags().StringVar(&description, "description", "", "renewal description shown to the user (required)")
	renewCmd.Flags().Float64Var(&renewFee, "fee", 0, "license fee in CC (default RENEWAL_FEE_CC)")
	renewCmd.Flags().StringVar(&renewExtension, "extension", "", "license extension as ISO-8601 duration (default RENEWAL_EXTENSION)")
	renewCmd.Flags().StringVar(&renewPayment, "payment-window", "", "payment acceptance window as ISO-8601 duration (default RENEWAL_PAYMENT_ACCEPTANCE)")

	expireCmd.Flags().StringVar(&description, "description", "", "reason recorded on the expiry (required)")

	completeCmd.Flags().StringVar(&renewalContract, "renewal", "", "renewal request contract id (required)")
	completeCmd.Flags().StringVar(&allocationCID, "allocation", "", "allocation contract id (default: the renewal's allocation)")
	completeCmd.MarkFlagRequired("renewal")

	rootCmd.AddCommand(licensesCmd, renewalsCmd, renewCmd, expireCmd, completeCmd, withdrawCmd)
}

func printLicenses(rows []projection.LicenseRow) error {
	if outputJSON {
		return printJSON(rows)
	}

	w := newTable()
	fmt.Fprintln(w, "CONTRACT\tUSER\tNUM\tEXPIRES\tEXPIRED\tPENDING\tACCEPTED\tACTIONS")
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%t\t%d\t%d\t%s\n",
			utils.ShortID(row.ContractID, 16), row.User, row.LicenseNum, row.ExpiresAt.Format(time.RFC3339),
			row.Expired, row.PendingRenewals, row.AcceptedRenewals, formatActions(row.Actions))
	}
	return w.Flush()
}

func printRenewals(rows []projection.RenewalRow) error {
	if outputJSON {
		return printJSON(rows)
	}

	w := newTable()
	fmt.Fprintln(w, "CONTRACT\tLICENSE\tSTATUS\tFEE\tEXTENSION\tPREPARE UNTIL\tSETTLE BEFORE\tDESCRIPTION\tACTIONS")
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%d\t%s\t%.2f\t%s\t%s\t%s\t%s\t%s\n",
			utils.ShortID(row.ContractID, 16), row.LicenseNum, row.Status, row.LicenseFeeAmount, row.LicenseExtensionDuration,
			row.PrepareUntil.Format(time.RFC3339), row.SettleBefore.Format(time.RFC3339), row.Description, formatActions(row.Actions))
	}
	return w.Flush()
}

func runLicenses(cmd *cobra.Command, args []string) error {
	app, err := newConsole()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := check(app.Licenses.FetchAll(ctx).Failure); err != nil {
		return err
	}
	return printLicenses(projection.LicenseRows(app.Licenses.Licenses(), viewer(ctx, app), time.Now()))
}

func runRenewals(cmd *cobra.Command, args []string) error {
	app, err := newConsole()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	result := app.Licenses.FetchRenewalRequests(ctx)
	if err := check(result.Failure); err != nil {
		return err
	}
	return printRenewals(projection.RenewalRows(result.Value, viewer(ctx, app)))
}

func runRenew(cmd *cobra.Command, args []string) error {
	app, err := newConsole()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	var result services.Result[*models.RenewResponse]
	if renewFee == 0 && renewExtension == "" && renewPayment == "" {
		result = app.Licenses.InitiateLicenseRenewal(ctx, args[0], description)
	} else {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		req := models.RenewRequest{
			LicenseFeeCc:              cfg.Renewal.LicenseFeeCc,
			LicenseExtensionDuration:  cfg.Renewal.LicenseExtensionDuration,
			PaymentAcceptanceDuration: cfg.Renewal.PaymentAcceptanceDuration,
			Description:               description,
		}
		if renewFee != 0 {
			req.LicenseFeeCc = renewFee
		}
		if renewExtension != "" {
			req.LicenseExtensionDuration = renewExtension
		}
		if renewPayment != "" {
			req.PaymentAcceptanceDuration = renewPayment
		}
		result = app.Licenses.Renew(ctx, args[0], req)
	}

	if err := check(result.Failure); err != nil {
		return err
	}
	if outputJSON {
		return printJSON(result.Value)
	}

	offer := result.Value.RenewalOffer
	fmt.Printf("Renewal %s offered, payment reference %s, pay before %s\n",
		offer.ContractID, offer.RequestID, offer.PrepareUntil.Format(time.RFC3339))
	return nil
}

func runExpire(cmd *cobra.Command, args []string) error {
	app, err := newConsole()
	if err != nil {
		return err
	}

	result := app.Licenses.InitiateLicenseExpiration(cmd.Context(), args[0], description)
	if err := check(result.Failure); err != nil {
		return err
	}
	fmt.Println(result.Value)
	return nil
}

func runComplete(cmd *cobra.Command, args []string) error {
	app, err := newConsole()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	allocation := allocationCID
	if allocation == "" {
		renewals := app.Licenses.FetchRenewalRequests(ctx)
		if err := check(renewals.Failure); err != nil {
			return err
		}
		for _, r := range renewals.Value {
			if r.ContractID == renewalContract && r.HasAllocation() {
				allocation = *r.AllocationCID
			}
		}
		if allocation == "" {
			return fmt.Errorf("renewal %s has no allocation yet, the user has not paid", renewalContract)
		}
	}

	result := app.Licenses.CompleteRenewal(ctx, args[0], services.CompleteRenewalRequest{
		RenewalRequestContractID: renewalContract,
		AllocationContractID:     allocation,
	})
	if err := check(result.Failure); err != nil {
		return err
	}
	fmt.Printf("Renewal completed, license is now %s\n", result.Value.LicenseID)
	return nil
}

func runWithdraw(cmd *cobra.Command, args []string) error {
	app, err := newConsole()
	if err != nil {
		return err
	}

	if err := check(app.Licenses.Withdraw(cmd.Context(), args[0]).Failure); err != nil {
		return err
	}
	fmt.Printf("Withdrew renewal request %s\n", args[0])
	return nil
}
