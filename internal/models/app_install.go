// internal/models/app_install.go
package models

// AppInstallRequest is a pending installation offer from a user to a provider.
type AppInstallRequest struct {
	ContractID string   `json:"contractId"`
	DSO        string   `json:"dso"`
	Provider   string   `json:"provider"`
	User       string   `json:"user"`
	Meta       Metadata `json:"meta"`
}

// AppInstall is an accepted installation that grants license-creation rights.
type AppInstall struct {
	ContractID         string   `json:"contractId"`
	DSO                string   `json:"dso"`
	Provider           string   `json:"provider"`
	User               string   `json:"user"`
	Meta               Metadata `json:"meta"`
	NumLicensesCreated *int     `json:"numLicensesCreated,omitempty"`
}

// AppInstallUnified is one row of the merged request/install view.
type AppInstallUnified struct {
	Status             InstallStatus `json:"status"`
	ContractID         string        `json:"contractId"`
	DSO                string        `json:"dso"`
	Provider           string        `json:"provider"`
	User               string        `json:"user"`
	Meta               Metadata      `json:"meta"`
	NumLicensesCreated int           `json:"numLicensesCreated"`
}

type AppInstallRequestAccept struct {
	InstallMeta Metadata `json:"installMeta"`
	Meta        Metadata `json:"meta"`
}

type AppInstallRequestReject struct {
	Meta Metadata `json:"meta"`
}

type AppInstallRequestCancel struct {
	Meta Metadata `json:"meta"`
}

type AppInstallCancel struct {
	Meta Metadata `json:"meta"`
}

type LicenseParams struct {
	Meta Metadata `json:"meta"`
}

type AppInstallCreateLicenseRequest struct {
	Params LicenseParams `json:"params"`
}

type AppInstallCreateLicenseResult struct {
	InstallID string `json:"installId,omitempty"`
	LicenseID string `json:"licenseId"`
}
