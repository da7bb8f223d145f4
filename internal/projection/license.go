// internal/projection/license.go
package projection

import (
	"time"

	"github.com/javajoker/license-console/internal/models"
)

// IsExpired compares against the caller's clock; the ledger may disagree
// when clocks skew, so expire commands can still be rejected remotely.
func IsExpired(l models.License, now time.Time) bool {
	return !l.ExpiresAt.IsZero() && l.ExpiresAt.Before(now)
}

// RenewalCounts returns the number of renewals without and with a payment allocation.
func RenewalCounts(l models.License) (pending, accepted int) {
	for _, r := range l.RenewalRequests {
		if r.HasAllocation() {
			accepted++
		} else {
			pending++
		}
	}
	return pending, accepted
}

func LicenseActions(l models.License, viewer Viewer, now time.Time) []models.Action {
	actions := []models.Action{}
	if viewer.IsAdmin || len(l.RenewalRequests) > 0 {
		actions = append(actions, models.ActionRenewals)
	}
	if IsExpired(l, now) {
		actions = append(actions, models.ActionExpire)
	}
	return actions
}

type LicenseRow struct {
	models.License
	Expired          bool            `json:"expired"`
	PendingRenewals  int             `json:"pendingRenewals"`
	AcceptedRenewals int             `json:"acceptedRenewals"`
	RenewalRequests  []RenewalRow    `json:"renewalRequests"`
	Actions          []models.Action `json:"actions"`
}

func LicenseRows(licenses []models.License, viewer Viewer, now time.Time) []LicenseRow {
	rows := make([]LicenseRow, 0, len(licenses))
	for _, l := range licenses {
		pending, accepted := RenewalCounts(l)

		rows = append(rows, LicenseRow{
			License:          l,
			Expired:          IsExpired(l, now),
			PendingRenewals:  pending,
			AcceptedRenewals: accepted,
			RenewalRequests:  RenewalRows(l.RenewalRequests, viewer),
			Actions:          LicenseActions(l, viewer, now),
		})
	}
	return rows
}

type renewalKey struct {
	dso, provider, user string
	licenseNum          int
}

// AttachRenewals groups separately fetched renewal requests onto their
// licenses by (dso, provider, user, licenseNum). Licenses are copied; a
// license whose own RenewalRequests is already populated keeps it when no
// fetched renewal matches.
func AttachRenewals(licenses []models.License, renewals []models.LicenseRenewalRequest) []models.License {
	grouped := make(map[renewalKey][]models.LicenseRenewalRequest)
	for _, r := range renewals {
		key := renewalKey{r.DSO, r.Provider, r.User, r.LicenseNum}
		grouped[key] = append(grouped[key], r)
	}

	out := make([]models.License, 0, len(licenses))
	for _, l := range licenses {
		if matched, ok := grouped[renewalKey{l.DSO, l.Provider, l.User, l.LicenseNum}]; ok {
			l.RenewalRequests = matched
		}
		out = append(out, l)
	}
	return out
}
