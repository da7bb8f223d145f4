// cmd/licensectl/installs.go
package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javajoker/license-console/internal/console"
	"github.com/javajoker/license-console/internal/models"
	"github.com/javajoker/license-console/internal/projection"
	"github.com/javajoker/license-console/internal/services"
	"github.com/javajoker/license-console/internal/utils"
)

var installsCmd = &cobra.Command{
	Use:   "installs",
	Short: "List app install requests and app installs",
	Args:  cobra.NoArgs,
	RunE:  runInstalls,
}

var acceptCmd = &cobra.Command{
	Use:   "accept <request-contract-id>",
	Short: "Accept an app install request",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccept,
}

var rejectCmd = &cobra.Command{
	Use:   "reject <request-contract-id>",
	Short: "Reject an app install request",
	Args:  cobra.ExactArgs(1),
	RunE:  runReject,
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <contract-id>",
	Short: "Cancel an app install request or an app install",
	Long: `Cancel looks the contract up in the unified table and cancels it as a
request or as an install depending on its status.`,
	Args: cobra.ExactArgs(1),
	RunE: runCancel,
}

var createLicenseCmd = &cobra.Command{
	Use:   "create-license <install-contract-id>",
	Short: "Create a license from an app install",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreateLicense,
}

var (
	metaPairs        []string
	installMetaPairs []string
)

func init() {
	for _, cmd := range []*cobra.Command{acceptCmd, rejectCmd, cancelCmd, createLicenseCmd} {
		cmd.Flags().StringArrayVar(&metaPairs, "meta", nil, "metadata entry key=value (repeatable)")
	}
	acceptCmd.Flags().StringArrayVar(&installMetaPairs, "install-meta", nil, "install metadata entry key=value (repeatable)")

	rootCmd.AddCommand(installsCmd, acceptCmd, rejectCmd, cancelCmd, createLicenseCmd)
}

func parseMeta(pairs []string) (models.Metadata, error) {
	meta := models.Metadata{Data: map[string]string{}}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return models.Metadata{}, fmt.Errorf("invalid metadata %q, expected key=value", pair)
		}
		meta.Data[key] = value
	}
	return meta, nil
}

func formatMeta(meta models.Metadata) string {
	keys := make([]string, 0, len(meta.Data))
	for k := range meta.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+meta.Data[k])
	}
	return strings.Join(parts, ",")
}

func formatActions(actions []models.Action) string {
	parts := make([]string, len(actions))
	for i, a := range actions {
		parts[i] = string(a)
	}
	return strings.Join(parts, ",")
}

// viewer asks the ledger who the CLI is acting as. Without an answer the
// tables show the non-admin actions.
func viewer(ctx context.Context, app *console.Console) projection.Viewer {
	user, err := app.Ledger.GetAuthenticatedUser(ctx)
	if err != nil {
		return projection.Viewer{}
	}
	return projection.Viewer{Party: user.Party, IsAdmin: user.IsAdmin}
}

func printInstalls(rows []projection.AppInstallRow) error {
	if outputJSON {
		return printJSON(rows)
	}

	w := newTable()
	fmt.Fprintln(w, "STATUS\tCONTRACT\tUSER\tLICENSES\tMETA\tACTIONS")
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			row.Status, utils.ShortID(row.ContractID, 16), row.User, row.NumLicensesCreated, formatMeta(row.Meta), formatActions(row.Actions))
	}
	return w.Flush()
}

func runInstalls(cmd *cobra.Command, args []string) error {
	app, err := newConsole()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	result := app.AppInstalls.FetchAll(ctx)
	if err := check(result.Failure); err != nil {
		return err
	}
	return printInstalls(projection.AppInstallRows(result.Value, viewer(ctx, app)))
}

func runAccept(cmd *cobra.Command, args []string) error {
	meta, err := parseMeta(metaPairs)
	if err != nil {
		return err
	}
	installMeta, err := parseMeta(installMetaPairs)
	if err != nil {
		return err
	}

	app, err := newConsole()
	if err != nil {
		return err
	}

	result := app.AppInstalls.Accept(cmd.Context(), args[0], services.AcceptAppInstallRequest{
		InstallMeta: installMeta,
		Meta:        meta,
	})
	if err := check(result.Failure); err != nil {
		return err
	}
	fmt.Printf("Accepted %s, install %s\n", args[0], result.Value.ContractID)
	return nil
}

func runReject(cmd *cobra.Command, args []string) error {
	meta, err := parseMeta(metaPairs)
	if err != nil {
		return err
	}

	app, err := newConsole()
	if err != nil {
		return err
	}

	if err := check(app.AppInstalls.Reject(cmd.Context(), args[0], meta).Failure); err != nil {
		return err
	}
	fmt.Printf("Rejected %s\n", args[0])
	return nil
}

func runCancel(cmd *cobra.Command, args []string) error {
	meta, err := parseMeta(metaPairs)
	if err != nil {
		return err
	}

	app, err := newConsole()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := check(app.AppInstalls.FetchAll(ctx).Failure); err != nil {
		return err
	}

	matches := projection.FindUnified(app.AppInstalls.Unified(), args[0])
	if len(matches) == 0 {
		return fmt.Errorf("no app install request or app install with contract id %s", args[0])
	}

	if err := check(app.AppInstalls.Cancel(ctx, matches[0].Status, args[0], meta).Failure); err != nil {
		return err
	}
	fmt.Printf("Canceled %s %s\n", matches[0].Status, args[0])
	return nil
}

func runCreateLicense(cmd *cobra.Command, args []string) error {
	meta, err := parseMeta(metaPairs)
	if err != nil {
		return err
	}

	app, err := newConsole()
	if err != nil {
		return err
	}

	result := app.AppInstalls.CreateLicense(cmd.Context(), args[0], meta)
	if err := check(result.Failure); err != nil {
		return err
	}
	fmt.Printf("Created license %s\n", result.Value.LicenseID)
	return nil
}
