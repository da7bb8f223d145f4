// internal/services/fake_ledger_test.go
package services

import (
	"context"
	"errors"
	"sync"

	"github.com/javajoker/license-console/internal/ledger"
	"github.com/javajoker/license-console/internal/models"
)

var errNetwork = errors.New("dial tcp: connection refused")

// fakeLedger is an in-process ledger.Client whose behaviour tests set per call.
type fakeLedger struct {
	mu sync.Mutex

	requests []models.AppInstallRequest
	installs []models.AppInstall
	licenses []models.License
	renewals []models.LicenseRenewalRequest

	listErr     error
	renewalsErr error
	commandErr  error
	expireText string

	commandIDs []string
	calls      map[string]int

	lastRenew    models.RenewRequest
	lastExpire   models.LicenseExpireRequest
	lastComplete models.LicenseRenewalComplete
}

var _ ledger.Client = (*fakeLedger)(nil)

func newFakeLedger() *fakeLedger {
	return &fakeLedger{calls: make(map[string]int)}
}

func (f *fakeLedger) record(op, commandID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	if commandID != "" {
		f.commandIDs = append(f.commandIDs, commandID)
	}
	if commandID == "" {
		return f.listErr
	}
	return f.commandErr
}

func (f *fakeLedger) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeLedger) GetAuthenticatedUser(ctx context.Context) (*models.AuthenticatedUser, error) {
	return &models.AuthenticatedUser{Name: "app-provider", IsAdmin: true}, nil
}

func (f *fakeLedger) ListAppInstallRequests(ctx context.Context) ([]models.AppInstallRequest, error) {
	if err := f.record("listAppInstallRequests", ""); err != nil {
		return nil, err
	}
	return f.requests, nil
}

func (f *fakeLedger) AcceptAppInstallRequest(ctx context.Context, contractID, commandID string, body models.AppInstallRequestAccept) (*models.AppInstall, error) {
	if err := f.record("acceptAppInstallRequest", commandID); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	var accepted models.AppInstallRequest
	remaining := f.requests[:0]
	for _, r := range f.requests {
		if r.ContractID == contractID {
			accepted = r
			continue
		}
		remaining = append(remaining, r)
	}
	f.requests = remaining
	install := models.AppInstall{ContractID: contractID + "-install", Provider: accepted.Provider, User: accepted.User, Meta: body.InstallMeta}
	f.installs = append(f.installs, install)
	return &install, nil
}

func (f *fakeLedger) RejectAppInstallRequest(ctx context.Context, contractID, commandID string, body models.AppInstallRequestReject) error {
	return f.record("rejectAppInstallRequest", commandID)
}

func (f *fakeLedger) CancelAppInstallRequest(ctx context.Context, contractID, commandID string, body models.AppInstallRequestCancel) error {
	return f.record("cancelAppInstallRequest", commandID)
}

func (f *fakeLedger) ListAppInstalls(ctx context.Context) ([]models.AppInstall, error) {
	if err := f.record("listAppInstalls", ""); err != nil {
		return nil, err
	}
	return f.installs, nil
}

func (f *fakeLedger) CancelAppInstall(ctx context.Context, contractID, commandID string, body models.AppInstallCancel) error {
	return f.record("cancelAppInstall", commandID)
}

func (f *fakeLedger) CreateLicense(ctx context.Context, contractID, commandID string, body models.AppInstallCreateLicenseRequest) (*models.AppInstallCreateLicenseResult, error) {
	if err := f.record("createLicense", commandID); err != nil {
		return nil, err
	}
	return &models.AppInstallCreateLicenseResult{InstallID: contractID, LicenseID: "license-1"}, nil
}

func (f *fakeLedger) ListLicenses(ctx context.Context) ([]models.License, error) {
	if err := f.record("listLicenses", ""); err != nil {
		return nil, err
	}
	return f.licenses, nil
}

func (f *fakeLedger) RenewLicense(ctx context.Context, contractID, commandID string, body models.RenewRequest) (*models.RenewResponse, error) {
	f.mu.Lock()
	f.lastRenew = body
	f.mu.Unlock()
	if err := f.record("renewLicense", commandID); err != nil {
		return nil, err
	}
	return &models.RenewResponse{}, nil
}

func (f *fakeLedger) ExpireLicense(ctx context.Context, contractID, commandID string, body models.LicenseExpireRequest) (string, error) {
	f.mu.Lock()
	f.lastExpire = body
	f.mu.Unlock()
	if err := f.record("expireLicense", commandID); err != nil {
		return "", err
	}
	return f.expireText, nil
}

func (f *fakeLedger) CompleteLicenseRenewal(ctx context.Context, contractID, commandID string, body models.LicenseRenewalComplete) (*models.LicenseRenewalCompleteResult, error) {
	f.mu.Lock()
	f.lastComplete = body
	f.mu.Unlock()
	if err := f.record("completeLicenseRenewal", commandID); err != nil {
		return nil, err
	}
	return &models.LicenseRenewalCompleteResult{LicenseID: contractID + "-renewed"}, nil
}

func (f *fakeLedger) ListLicenseRenewalRequests(ctx context.Context) ([]models.LicenseRenewalRequest, error) {
	if err := f.record("listLicenseRenewalRequests", ""); err != nil {
		return nil, err
	}
	if f.renewalsErr != nil {
		return nil, f.renewalsErr
	}
	return f.renewals, nil
}

func (f *fakeLedger) WithdrawLicenseRenewalRequest(ctx context.Context, contractID, commandID string) error {
	return f.record("withdrawLicenseRenewalRequest", commandID)
}

// recordingNotifier keeps every notification in order.
type recordingNotifier struct {
	mu            sync.Mutex
	notifications []models.Notification
}

func (r *recordingNotifier) Notify(ctx context.Context, n *models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, *n)
}

func (r *recordingNotifier) last() models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notifications) == 0 {
		return models.Notification{}
	}
	return r.notifications[len(r.notifications)-1]
}

func (r *recordingNotifier) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notifications)
}
