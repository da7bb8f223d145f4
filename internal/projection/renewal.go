// internal/projection/renewal.go
package projection

import (
	"fmt"

	"github.com/javajoker/license-console/internal/models"
)

// DeriveRenewalStatus computes where a renewal request stands.
// A passed settle deadline wins over an existing allocation.
func DeriveRenewalStatus(r models.LicenseRenewalRequest) models.RenewalStatus {
	switch {
	case r.SettleDeadlinePassed:
		return models.RenewalStatusExpired
	case !r.HasAllocation():
		return models.RenewalStatusAwaitingAcceptance
	default:
		return models.RenewalStatusAwaitingCompletion
	}
}

type RenewalRow struct {
	models.LicenseRenewalRequest
	Status  models.RenewalStatus `json:"status"`
	Actions []models.Action      `json:"actions"`
}

func RenewalRows(renewals []models.LicenseRenewalRequest, viewer Viewer) []RenewalRow {
	rows := make([]RenewalRow, 0, len(renewals))
	for _, r := range renewals {
		rows = append(rows, RenewalRow{
			LicenseRenewalRequest: r,
			Status:                DeriveRenewalStatus(r),
			Actions:               RenewalActions(r, viewer),
		})
	}
	return rows
}

// RenewalActions mirrors the renewal table of the licenses view: users accept
// in their wallet or reject, admins complete paid renewals or withdraw them.
func RenewalActions(r models.LicenseRenewalRequest, viewer Viewer) []models.Action {
	actions := []models.Action{}
	if viewer.IsAdmin {
		if r.HasAllocation() {
			actions = append(actions, models.ActionComplete)
		}
		return append(actions, models.ActionWithdraw)
	}

	if !r.HasAllocation() && !r.PrepareDeadlinePassed {
		actions = append(actions, models.ActionAccept)
	}
	return append(actions, models.ActionReject)
}

// WalletInstruction tells a user how to accept or reject a renewal. Both
// happen on the allocation request in the user's wallet, not through the ledger API.
func WalletInstruction(r models.LicenseRenewalRequest, action models.Action) string {
	switch action {
	case models.ActionAccept:
		return fmt.Sprintf("Please accept the allocation request with reference %s from %s in your wallet.", r.RequestID, r.Provider)
	case models.ActionReject:
		return "Please exercise choice AllocationRequest_Reject on the AllocationRequest on the app-user's participant to reject the LicenseRenewalRequest."
	default:
		return ""
	}
}
