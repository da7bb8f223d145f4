// internal/projection/app_install.go
package projection

import (
	"github.com/javajoker/license-console/internal/models"
)

// Viewer is the party looking at a projection; admin rights widen the row actions.
type Viewer struct {
	Party   string `json:"party"`
	IsAdmin bool   `json:"isAdmin"`
}

// BuildUnified merges requests and installs into one status-tagged list.
// Requests come first, each collection keeps its input order, and no
// deduplication happens across the two collections.
func BuildUnified(requests []models.AppInstallRequest, installs []models.AppInstall) []models.AppInstallUnified {
	unified := make([]models.AppInstallUnified, 0, len(requests)+len(installs))

	for _, r := range requests {
		unified = append(unified, models.AppInstallUnified{
			Status:             models.InstallStatusRequest,
			ContractID:         r.ContractID,
			DSO:                r.DSO,
			Provider:           r.Provider,
			User:               r.User,
			Meta:               r.Meta,
			NumLicensesCreated: 0,
		})
	}

	for _, i := range installs {
		numLicenses := 0
		if i.NumLicensesCreated != nil {
			numLicenses = *i.NumLicensesCreated
		}
		unified = append(unified, models.AppInstallUnified{
			Status:             models.InstallStatusInstall,
			ContractID:         i.ContractID,
			DSO:                i.DSO,
			Provider:           i.Provider,
			User:               i.User,
			Meta:               i.Meta,
			NumLicensesCreated: numLicenses,
		})
	}

	return unified
}

type AppInstallRow struct {
	models.AppInstallUnified
	Actions []models.Action `json:"actions"`
}

// AppInstallActions lists what the viewer may do with a unified row.
func AppInstallActions(row models.AppInstallUnified, viewer Viewer) []models.Action {
	actions := []models.Action{}
	switch row.Status {
	case models.InstallStatusRequest:
		if viewer.IsAdmin {
			actions = append(actions, models.ActionAccept, models.ActionReject)
		}
	case models.InstallStatusInstall:
		if viewer.IsAdmin {
			actions = append(actions, models.ActionCreateLicense)
		}
	}
	return append(actions, models.ActionCancel)
}

func AppInstallRows(unified []models.AppInstallUnified, viewer Viewer) []AppInstallRow {
	rows := make([]AppInstallRow, 0, len(unified))
	for _, u := range unified {
		rows = append(rows, AppInstallRow{AppInstallUnified: u, Actions: AppInstallActions(u, viewer)})
	}
	return rows
}

// FindUnified returns the rows carrying contractID, in projection order.
func FindUnified(unified []models.AppInstallUnified, contractID string) []models.AppInstallUnified {
	var found []models.AppInstallUnified
	for _, u := range unified {
		if u.ContractID == contractID {
			found = append(found, u)
		}
	}
	return found
}
