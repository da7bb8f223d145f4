// internal/projection/license_test.go
package projection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/license-console/internal/models"
)

func strPtr(s string) *string { return &s }

func TestDeriveRenewalStatus(t *testing.T) {
	tests := []struct {
		name     string
		renewal  models.LicenseRenewalRequest
		expected models.RenewalStatus
	}{
		{"no allocation", models.LicenseRenewalRequest{}, models.RenewalStatusAwaitingAcceptance},
		{"empty allocation", models.LicenseRenewalRequest{AllocationCID: strPtr("")}, models.RenewalStatusAwaitingAcceptance},
		{"allocated", models.LicenseRenewalRequest{AllocationCID: strPtr("alloc")}, models.RenewalStatusAwaitingCompletion},
		{"settle passed without allocation", models.LicenseRenewalRequest{SettleDeadlinePassed: true}, models.RenewalStatusExpired},
		{"settle passed with allocation", models.LicenseRenewalRequest{SettleDeadlinePassed: true, AllocationCID: strPtr("alloc")}, models.RenewalStatusExpired},
		{"prepare passed only", models.LicenseRenewalRequest{PrepareDeadlinePassed: true}, models.RenewalStatusAwaitingAcceptance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DeriveRenewalStatus(tt.renewal))
		})
	}
}

func TestRenewalActions(t *testing.T) {
	admin := Viewer{IsAdmin: true}
	user := Viewer{}
	unpaid := models.LicenseRenewalRequest{}
	paid := models.LicenseRenewalRequest{AllocationCID: strPtr("alloc")}
	late := models.LicenseRenewalRequest{PrepareDeadlinePassed: true}

	assert.Equal(t, []models.Action{models.ActionWithdraw}, RenewalActions(unpaid, admin))
	assert.Equal(t, []models.Action{models.ActionComplete, models.ActionWithdraw}, RenewalActions(paid, admin))
	assert.Equal(t, []models.Action{models.ActionAccept, models.ActionReject}, RenewalActions(unpaid, user))
	assert.Equal(t, []models.Action{models.ActionReject}, RenewalActions(paid, user))
	assert.Equal(t, []models.Action{models.ActionReject}, RenewalActions(late, user))
}

func TestIsExpired(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

	assert.True(t, IsExpired(models.License{ExpiresAt: now.Add(-time.Minute)}, now))
	assert.False(t, IsExpired(models.License{ExpiresAt: now.Add(time.Minute)}, now))
	assert.False(t, IsExpired(models.License{ExpiresAt: now}, now))
	assert.False(t, IsExpired(models.License{}, now))
}

func TestLicenseRows(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	licenses := []models.License{
		{
			ContractID: "expired",
			ExpiresAt:  now.Add(-time.Hour),
			RenewalRequests: []models.LicenseRenewalRequest{
				{ContractID: "r1"},
				{ContractID: "r2", AllocationCID: strPtr("a")},
				{ContractID: "r3", AllocationCID: strPtr("b")},
			},
		},
		{ContractID: "active", ExpiresAt: now.Add(time.Hour)},
	}

	rows := LicenseRows(licenses, Viewer{}, now)
	require.Len(t, rows, 2)

	assert.True(t, rows[0].Expired)
	assert.Equal(t, 1, rows[0].PendingRenewals)
	assert.Equal(t, 2, rows[0].AcceptedRenewals)
	assert.Equal(t, []models.Action{models.ActionRenewals, models.ActionExpire}, rows[0].Actions)
	require.Len(t, rows[0].RenewalRequests, 3)
	assert.Equal(t, models.RenewalStatusAwaitingAcceptance, rows[0].RenewalRequests[0].Status)
	assert.Equal(t, models.RenewalStatusAwaitingCompletion, rows[0].RenewalRequests[1].Status)

	assert.False(t, rows[1].Expired)
	assert.Empty(t, rows[1].Actions)

	adminRows := LicenseRows(licenses[1:], Viewer{IsAdmin: true}, now)
	assert.Equal(t, []models.Action{models.ActionRenewals}, adminRows[0].Actions)
}

func TestAttachRenewals(t *testing.T) {
	licenses := []models.License{
		{ContractID: "l1", DSO: "dso", Provider: "p", User: "u", LicenseNum: 1},
		{ContractID: "l2", DSO: "dso", Provider: "p", User: "u", LicenseNum: 2},
		{ContractID: "l3", DSO: "dso", Provider: "p", User: "other", LicenseNum: 1,
			RenewalRequests: []models.LicenseRenewalRequest{{ContractID: "embedded"}}},
	}
	renewals := []models.LicenseRenewalRequest{
		{ContractID: "a", DSO: "dso", Provider: "p", User: "u", LicenseNum: 1},
		{ContractID: "b", DSO: "dso", Provider: "p", User: "u", LicenseNum: 1},
		{ContractID: "c", DSO: "dso", Provider: "p", User: "u", LicenseNum: 2},
		{ContractID: "orphan", DSO: "dso", Provider: "p", User: "u", LicenseNum: 9},
	}

	attached := AttachRenewals(licenses, renewals)

	require.Len(t, attached, 3)
	require.Len(t, attached[0].RenewalRequests, 2)
	assert.Equal(t, "a", attached[0].RenewalRequests[0].ContractID)
	assert.Equal(t, "b", attached[0].RenewalRequests[1].ContractID)
	require.Len(t, attached[1].RenewalRequests, 1)
	assert.Equal(t, "c", attached[1].RenewalRequests[0].ContractID)
	require.Len(t, attached[2].RenewalRequests, 1)
	assert.Equal(t, "embedded", attached[2].RenewalRequests[0].ContractID)
	assert.Empty(t, licenses[0].RenewalRequests)
}

func TestWalletInstruction(t *testing.T) {
	r := models.LicenseRenewalRequest{RequestID: "req-9", Provider: "AppProvider::1"}

	assert.Equal(t, "Please accept the allocation request with reference req-9 from AppProvider::1 in your wallet.", WalletInstruction(r, models.ActionAccept))
	assert.Contains(t, WalletInstruction(r, models.ActionReject), "AllocationRequest_Reject")
	assert.Empty(t, WalletInstruction(r, models.ActionWithdraw))
}
