// internal/sandbox/ledger.go
package sandbox

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/license-console/internal/config"
	"github.com/javajoker/license-console/internal/models"
	"github.com/javajoker/license-console/internal/utils"
)

// Error is a rejection the sandbox reports with an HTTP status.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(status int, format string, args ...interface{}) *Error {
	return &Error{Status: status, Message: fmt.Sprintf(format, args...)}
}

// Ledger is an in-memory stand-in for the license backend. It keeps the same
// contract lifecycle: requests become installs, installs mint licenses,
// renewals are paid through allocations and completing one replaces the
// license contract.
type Ledger struct {
	cfg config.SandboxConfig

	mu       sync.Mutex
	offset   time.Duration
	commands map[string]struct{}
	requests []models.AppInstallRequest
	installs []models.AppInstall
	licenses []models.License
	renewals []models.LicenseRenewalRequest
}

func New(cfg config.SandboxConfig) *Ledger {
	return &Ledger{
		cfg:      cfg,
		commands: make(map[string]struct{}),
	}
}

// Now is the sandbox clock, which tests may move forward with Advance.
func (l *Ledger) Now() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.now()
}

func (l *Ledger) now() time.Time {
	return time.Now().UTC().Add(l.offset)
}

func (l *Ledger) Advance(d time.Duration) {
	l.mu.Lock()
	l.offset += d
	l.mu.Unlock()
}

func (l *Ledger) User() models.AuthenticatedUser {
	return models.AuthenticatedUser{
		Name:    "sandbox",
		Party:   l.cfg.AdminParty,
		Roles:   []string{"admin"},
		IsAdmin: l.cfg.AdminParty == l.cfg.Provider,
	}
}

// CreateAppInstallRequest plays the user's side of onboarding.
func (l *Ledger) CreateAppInstallRequest(meta models.Metadata) (models.AppInstallRequest, error) {
	cid, err := utils.NewContractID()
	if err != nil {
		return models.AppInstallRequest{}, err
	}

	request := models.AppInstallRequest{
		ContractID: cid,
		DSO:        l.cfg.DSO,
		Provider:   l.cfg.Provider,
		User:       l.cfg.User,
		Meta:       meta,
	}

	l.mu.Lock()
	l.requests = append(l.requests, request)
	l.mu.Unlock()

	logrus.WithField("contract_id", cid).Info("Sandbox app install request created")
	return request, nil
}

// Allocate plays the user's wallet accepting the allocation request of a
// renewal. It fails once the prepare deadline has passed.
func (l *Ledger) Allocate(renewalContractID string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.findRenewal(renewalContractID)
	if i < 0 {
		return "", newError(http.StatusNotFound, "LicenseRenewalRequest %s not found", renewalContractID)
	}
	if l.now().After(l.renewals[i].PrepareUntil) {
		return "", newError(http.StatusConflict, "allocation window for %s has closed", renewalContractID)
	}
	if l.renewals[i].HasAllocation() {
		return *l.renewals[i].AllocationCID, nil
	}

	cid, err := utils.NewContractID()
	if err != nil {
		return "", err
	}
	l.renewals[i].AllocationCID = &cid
	return cid, nil
}

// claim records a command id. The ledger deduplicates submissions by id, so
// a reused id is rejected.
func (l *Ledger) claim(commandID string) error {
	if commandID == "" {
		return newError(http.StatusBadRequest, "commandId is required")
	}
	if _, seen := l.commands[commandID]; seen {
		return newError(http.StatusConflict, "command %s was already submitted", commandID)
	}
	l.commands[commandID] = struct{}{}
	return nil
}

func (l *Ledger) AppInstallRequests() []models.AppInstallRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.AppInstallRequest{}, l.requests...)
}

func (l *Ledger) AppInstalls() []models.AppInstall {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.AppInstall, len(l.installs))
	for i, install := range l.installs {
		out[i] = install
		if install.NumLicensesCreated != nil {
			n := *install.NumLicensesCreated
			out[i].NumLicensesCreated = &n
		}
	}
	return out
}

func (l *Ledger) Licenses() []models.License {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	out := make([]models.License, len(l.licenses))
	for i, license := range l.licenses {
		out[i] = license
		out[i].RenewalRequests = nil
		for _, r := range l.renewals {
			if r.DSO == license.DSO && r.Provider == license.Provider && r.User == license.User && r.LicenseNum == license.LicenseNum {
				out[i].RenewalRequests = append(out[i].RenewalRequests, withDeadlines(r, now))
			}
		}
	}
	return out
}

func (l *Ledger) LicenseRenewalRequests() []models.LicenseRenewalRequest {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	out := make([]models.LicenseRenewalRequest, len(l.renewals))
	for i, r := range l.renewals {
		out[i] = withDeadlines(r, now)
	}
	return out
}

func withDeadlines(r models.LicenseRenewalRequest, now time.Time) models.LicenseRenewalRequest {
	r.PrepareDeadlinePassed = now.After(r.PrepareUntil)
	r.SettleDeadlinePassed = now.After(r.SettleBefore)
	return r
}

func (l *Ledger) AcceptAppInstallRequest(contractID, commandID string, body models.AppInstallRequestAccept) (*models.AppInstall, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.findRequest(contractID)
	if i < 0 {
		return nil, newError(http.StatusNotFound, "AppInstallRequest %s not found", contractID)
	}
	if err := l.claim(commandID); err != nil {
		return nil, err
	}

	cid, err := utils.NewContractID()
	if err != nil {
		return nil, err
	}

	request := l.requests[i]
	zero := 0
	install := models.AppInstall{
		ContractID:         cid,
		DSO:                request.DSO,
		Provider:           request.Provider,
		User:               request.User,
		Meta:               body.InstallMeta,
		NumLicensesCreated: &zero,
	}

	l.requests = append(l.requests[:i], l.requests[i+1:]...)
	l.installs = append(l.installs, install)

	result := install
	n := 0
	result.NumLicensesCreated = &n
	return &result, nil
}

func (l *Ledger) RejectAppInstallRequest(contractID, commandID string) error {
	return l.archiveRequest(contractID, commandID)
}

func (l *Ledger) CancelAppInstallRequest(contractID, commandID string) error {
	return l.archiveRequest(contractID, commandID)
}

func (l *Ledger) archiveRequest(contractID, commandID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.findRequest(contractID)
	if i < 0 {
		return newError(http.StatusNotFound, "AppInstallRequest %s not found", contractID)
	}
	if err := l.claim(commandID); err != nil {
		return err
	}

	l.requests = append(l.requests[:i], l.requests[i+1:]...)
	return nil
}

func (l *Ledger) CancelAppInstall(contractID, commandID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.findInstall(contractID)
	if i < 0 {
		return newError(http.StatusNotFound, "AppInstall %s not found", contractID)
	}
	if err := l.claim(commandID); err != nil {
		return err
	}

	l.installs = append(l.installs[:i], l.installs[i+1:]...)
	return nil
}

// CreateLicense mints the next license of an install. New licenses expire
// immediately and become usable through a renewal.
func (l *Ledger) CreateLicense(contractID, commandID string, body models.AppInstallCreateLicenseRequest) (*models.AppInstallCreateLicenseResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.findInstall(contractID)
	if i < 0 {
		return nil, newError(http.StatusNotFound, "AppInstall %s not found", contractID)
	}
	if err := l.claim(commandID); err != nil {
		return nil, err
	}

	cid, err := utils.NewContractID()
	if err != nil {
		return nil, err
	}

	install := &l.installs[i]
	n := 1
	if install.NumLicensesCreated != nil {
		n = *install.NumLicensesCreated + 1
	}
	install.NumLicensesCreated = &n

	l.licenses = append(l.licenses, models.License{
		ContractID: cid,
		DSO:        install.DSO,
		Provider:   install.Provider,
		User:       install.User,
		Params:     body.Params,
		LicenseNum: n,
		ExpiresAt:  l.now(),
	})

	return &models.AppInstallCreateLicenseResult{
		InstallID: install.ContractID,
		LicenseID: cid,
	}, nil
}

func (l *Ledger) RenewLicense(contractID, commandID string, body models.RenewRequest) (*models.RenewResponse, error) {
	if err := utils.ValidateStruct(body); err != nil {
		return nil, newError(http.StatusBadRequest, "invalid renewal: %v", err)
	}
	payment, err := utils.ParseISODuration(body.PaymentAcceptanceDuration)
	if err != nil {
		return nil, newError(http.StatusBadRequest, "%v", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.findLicense(contractID)
	if i < 0 {
		return nil, newError(http.StatusNotFound, "License %s not found", contractID)
	}
	if err := l.claim(commandID); err != nil {
		return nil, err
	}

	cid, err := utils.NewContractID()
	if err != nil {
		return nil, err
	}

	license := l.licenses[i]
	now := l.now()
	renewal := models.LicenseRenewalRequest{
		ContractID:               cid,
		RequestID:                uuid.New().String(),
		RequestedAt:              now,
		DSO:                      license.DSO,
		Provider:                 license.Provider,
		User:                     license.User,
		LicenseNum:               license.LicenseNum,
		LicenseExtensionDuration: body.LicenseExtensionDuration,
		LicenseFeeAmount:         body.LicenseFeeCc,
		PrepareUntil:             now.Add(payment),
		SettleBefore:             now.Add(2 * payment),
		Description:              body.Description,
	}
	l.renewals = append(l.renewals, renewal)

	return &models.RenewResponse{
		RenewalOffer: renewal,
		PaymentRequest: models.JSONB{
			"reference": renewal.RequestID,
			"amount":    body.LicenseFeeCc,
			"receiver":  license.Provider,
			"sender":    license.User,
		},
	}, nil
}

// ExpireLicense archives a license whose expiry has passed on the sandbox clock.
func (l *Ledger) ExpireLicense(contractID, commandID string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.findLicense(contractID)
	if i < 0 {
		return "", newError(http.StatusNotFound, "License %s not found", contractID)
	}
	if !l.licenses[i].ExpiresAt.Before(l.now()) {
		return "", newError(http.StatusBadRequest, "License %s has not expired yet", contractID)
	}
	if err := l.claim(commandID); err != nil {
		return "", err
	}

	l.licenses = append(l.licenses[:i], l.licenses[i+1:]...)
	return "License expired successfully", nil
}

// CompleteLicenseRenewal settles a paid renewal. A renewal without an
// allocation is reported as not found, which clients read as not yet paid.
func (l *Ledger) CompleteLicenseRenewal(contractID, commandID string, body models.LicenseRenewalComplete) (*models.LicenseRenewalCompleteResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	li := l.findLicense(contractID)
	if li < 0 {
		return nil, newError(http.StatusNotFound, "License %s not found", contractID)
	}
	ri := l.findRenewal(body.RenewalRequestContractID)
	if ri < 0 {
		return nil, newError(http.StatusNotFound, "LicenseRenewalRequest %s not found", body.RenewalRequestContractID)
	}

	renewal := l.renewals[ri]
	if !renewal.HasAllocation() {
		return nil, newError(http.StatusNotFound, "no allocation found for renewal %s", renewal.RequestID)
	}
	if *renewal.AllocationCID != body.AllocationContractID {
		return nil, newError(http.StatusBadRequest, "allocation %s does not belong to renewal %s", body.AllocationContractID, renewal.ContractID)
	}
	if l.now().After(renewal.SettleBefore) {
		return nil, newError(http.StatusConflict, "renewal %s missed its settlement deadline", renewal.ContractID)
	}

	extension, err := utils.ParseISODuration(renewal.LicenseExtensionDuration)
	if err != nil {
		return nil, newError(http.StatusBadRequest, "%v", err)
	}
	if err := l.claim(commandID); err != nil {
		return nil, err
	}

	cid, err := utils.NewContractID()
	if err != nil {
		return nil, err
	}

	license := l.licenses[li]
	base := license.ExpiresAt
	if now := l.now(); base.Before(now) {
		base = now
	}
	license.ContractID = cid
	license.ExpiresAt = base.Add(extension)
	license.RenewalRequests = nil

	l.licenses[li] = license
	l.renewals = append(l.renewals[:ri], l.renewals[ri+1:]...)

	return &models.LicenseRenewalCompleteResult{LicenseID: cid}, nil
}

func (l *Ledger) WithdrawLicenseRenewalRequest(contractID, commandID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.findRenewal(contractID)
	if i < 0 {
		return newError(http.StatusNotFound, "LicenseRenewalRequest %s not found", contractID)
	}
	if err := l.claim(commandID); err != nil {
		return err
	}

	l.renewals = append(l.renewals[:i], l.renewals[i+1:]...)
	return nil
}

func (l *Ledger) findRequest(contractID string) int {
	for i, r := range l.requests {
		if r.ContractID == contractID {
			return i
		}
	}
	return -1
}

func (l *Ledger) findInstall(contractID string) int {
	for i, install := range l.installs {
		if install.ContractID == contractID {
			return i
		}
	}
	return -1
}

func (l *Ledger) findLicense(contractID string) int {
	for i, license := range l.licenses {
		if license.ContractID == contractID {
			return i
		}
	}
	return -1
}

func (l *Ledger) findRenewal(contractID string) int {
	for i, r := range l.renewals {
		if r.ContractID == contractID {
			return i
		}
	}
	return -1
}

// statusOf maps sandbox rejections onto HTTP statuses.
func statusOf(err error) int {
	var sandboxErr *Error
	if errors.As(err, &sandboxErr) {
		return sandboxErr.Status
	}
	return http.StatusInternalServerError
}
