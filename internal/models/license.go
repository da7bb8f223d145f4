// internal/models/license.go
package models

import (
	"time"
)

type License struct {
	ContractID      string                  `json:"contractId"`
	DSO             string                  `json:"dso"`
	Provider        string                  `json:"provider"`
	User            string                  `json:"user"`
	Params          LicenseParams           `json:"params"`
	ExpiresAt       time.Time               `json:"expiresAt"`
	LicenseNum      int                     `json:"licenseNum"`
	RenewalRequests []LicenseRenewalRequest `json:"renewalRequests,omitempty"`
}

type LicenseRenewalRequest struct {
	ContractID               string    `json:"contractId"`
	RequestID                string    `json:"requestId"`
	RequestedAt              time.Time `json:"requestedAt"`
	DSO                      string    `json:"dso"`
	Provider                 string    `json:"provider"`
	User                     string    `json:"user"`
	LicenseNum               int       `json:"licenseNum"`
	LicenseExtensionDuration string    `json:"licenseExtensionDuration"`
	LicenseFeeAmount         float64   `json:"licenseFeeAmount"`
	PrepareUntil             time.Time `json:"prepareUntil"`
	SettleBefore             time.Time `json:"settleBefore"`
	Description              string    `json:"description"`
	// AllocationCID is nil until the user's wallet has created a payment allocation.
	AllocationCID         *string `json:"allocationCid,omitempty"`
	PrepareDeadlinePassed bool    `json:"prepareDeadlinePassed"`
	SettleDeadlinePassed  bool    `json:"settleDeadlinePassed"`
}

// HasAllocation reports whether a payment allocation references this request.
func (r LicenseRenewalRequest) HasAllocation() bool {
	return r.AllocationCID != nil && *r.AllocationCID != ""
}

type RenewRequest struct {
	LicenseFeeCc              float64 `json:"licenseFeeCc" validate:"required,gt=0"`
	LicenseExtensionDuration  string  `json:"licenseExtensionDuration" validate:"required,iso_duration"`
	PaymentAcceptanceDuration string  `json:"paymentAcceptanceDuration" validate:"required,iso_duration"`
	Description               string  `json:"description" validate:"required,max=500"`
}

// RenewResponse pairs the renewal offer with the payment request the user's wallet must accept.
type RenewResponse struct {
	RenewalOffer   LicenseRenewalRequest `json:"renewalOffer"`
	PaymentRequest JSONB                 `json:"paymentRequest,omitempty"`
}

type LicenseExpireRequest struct {
	Meta Metadata `json:"meta"`
}

type LicenseRenewalComplete struct {
	RenewalRequestContractID string `json:"renewalRequestContractId"`
	AllocationContractID     string `json:"allocationContractId"`
}

type LicenseRenewalCompleteResult struct {
	LicenseID string `json:"licenseId"`
}

// AuthenticatedUser is the identity the ledger API resolves for the current credentials.
type AuthenticatedUser struct {
	Name      string   `json:"name"`
	Party     string   `json:"party"`
	Roles     []string `json:"roles"`
	IsAdmin   bool     `json:"isAdmin"`
	WalletURL string   `json:"walletUrl"`
}
