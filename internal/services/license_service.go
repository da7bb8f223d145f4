// internal/services/license_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/javajoker/license-console/internal/config"
	"github.com/javajoker/license-console/internal/i18n"
	"github.com/javajoker/license-console/internal/ledger"
	"github.com/javajoker/license-console/internal/metrics"
	"github.com/javajoker/license-console/internal/models"
	"github.com/javajoker/license-console/internal/projection"
	"github.com/javajoker/license-console/internal/utils"
)

var errEmptyDescription = errors.New("description is required")

// LicenseService holds the licenses and renewal requests projections and runs
// the license lifecycle commands.
type LicenseService struct {
	client   ledger.Client
	runner   *commandRunner
	defaults config.RenewalConfig

	licenseTracker *fetchTracker
	renewalTracker *fetchTracker

	mu         sync.RWMutex
	licenses   []models.License
	renewals   []models.LicenseRenewalRequest
	fetchedAt  time.Time
	renewalsAt time.Time
}

type CompleteRenewalRequest struct {
	RenewalRequestContractID string `json:"renewalRequestContractId" validate:"required"`
	AllocationContractID     string `json:"allocationContractId" validate:"required"`
}

type DescriptionRequest struct {
	Description string `json:"description" validate:"required,max=500"`
}

func NewLicenseService(client ledger.Client, notifier Notifier, defaults config.RenewalConfig, lang string) *LicenseService {
	return &LicenseService{
		client:         client,
		runner:         newCommandRunner(notifier, lang),
		defaults:       defaults,
		licenseTracker: &fetchTracker{collection: "licenses"},
		renewalTracker: &fetchTracker{collection: "license_renewal_requests"},
		licenses:       []models.License{},
		renewals:       []models.LicenseRenewalRequest{},
	}
}

// Licenses returns the current licenses with the latest renewal requests
// attached. Renewals older than the licenses are not attached; each license
// then keeps the renewals the ledger embedded in it.
func (s *LicenseService) Licenses() []models.License {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.renewalsAt.Before(s.fetchedAt) {
		return projection.AttachRenewals(s.licenses, nil)
	}
	return projection.AttachRenewals(s.licenses, s.renewals)
}

func (s *LicenseService) RenewalRequests() []models.LicenseRenewalRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.LicenseRenewalRequest, len(s.renewals))
	copy(out, s.renewals)
	return out
}

// License looks up one license of the current projection.
func (s *LicenseService) License(contractID string) (models.License, bool) {
	for _, l := range s.Licenses() {
		if l.ContractID == contractID {
			return l, true
		}
	}
	return models.License{}, false
}

func (s *LicenseService) FetchedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetchedAt
}

func (s *LicenseService) FetchLicenses(ctx context.Context) Result[[]models.License] {
	licenses, err := s.client.ListLicenses(ctx)
	if failure := s.licenseTracker.observe(ctx, s.runner, i18n.KeyActionFetchLicenses, err); failure != nil {
		return fail[[]models.License](failure)
	}
	if licenses == nil {
		licenses = []models.License{}
	}

	s.mu.Lock()
	s.licenses = licenses
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	metrics.SetProjectionRows("licenses", len(licenses))
	return succeed(s.Licenses())
}

func (s *LicenseService) FetchRenewalRequests(ctx context.Context) Result[[]models.LicenseRenewalRequest] {
	renewals, err := s.client.ListLicenseRenewalRequests(ctx)
	if failure := s.renewalTracker.observe(ctx, s.runner, i18n.KeyActionFetchRenewalRequests, err); failure != nil {
		return fail[[]models.LicenseRenewalRequest](failure)
	}
	if renewals == nil {
		renewals = []models.LicenseRenewalRequest{}
	}

	s.mu.Lock()
	s.renewals = renewals
	s.renewalsAt = time.Now()
	s.mu.Unlock()

	metrics.SetProjectionRows("license_renewal_requests", len(renewals))
	return succeed(s.RenewalRequests())
}

// FetchAll refreshes licenses and renewal requests. Each collection keeps its
// previous state when its own fetch fails.
func (s *LicenseService) FetchAll(ctx context.Context) Result[[]models.License] {
	licenses := s.FetchLicenses(ctx)
	renewals := s.FetchRenewalRequests(ctx)

	if !licenses.OK() {
		return licenses
	}
	if !renewals.OK() {
		return fail[[]models.License](renewals.Failure)
	}
	return succeed(s.Licenses())
}

func (s *LicenseService) refetch(ctx context.Context) {
	s.FetchAll(ctx)
}

func (s *LicenseService) Renew(ctx context.Context, contractID string, req models.RenewRequest) Result[*models.RenewResponse] {
	if err := utils.ValidateStruct(req); err != nil {
		failure := invalidInput(s.runner.lang, s.runner.action(i18n.KeyActionRenewLicense), utils.GetValidationErrors(err), err)
		return reject[*models.RenewResponse](ctx, s.runner, "renewLicense", contractID, failure)
	}

	return execute(ctx, s.runner, command[*models.RenewResponse]{
		operation:  "renewLicense",
		actionKey:  i18n.KeyActionRenewLicense,
		contractID: contractID,
		call: func(ctx context.Context, commandID string) (*models.RenewResponse, error) {
			return s.client.RenewLicense(ctx, contractID, commandID, req)
		},
		refetch: s.refetch,
		success: func(*models.RenewResponse) string {
			return i18n.T(s.runner.lang, i18n.KeyLicenseRenewalInitiated)
		},
	})
}

// Expire asks the ledger to expire a license. The ledger decides whether the
// license is past its expiry; a refusal is reported like any other failure.
func (s *LicenseService) Expire(ctx context.Context, contractID string, meta models.Metadata) Result[string] {
	return execute(ctx, s.runner, command[string]{
		operation:  "expireLicense",
		actionKey:  i18n.KeyActionExpireLicense,
		contractID: contractID,
		call: func(ctx context.Context, commandID string) (string, error) {
			return s.client.ExpireLicense(ctx, contractID, commandID, models.LicenseExpireRequest{Meta: meta})
		},
		refetch: s.refetch,
		success: func(message string) string {
			if message != "" {
				return message
			}
			return i18n.T(s.runner.lang, i18n.KeyLicenseExpired)
		},
	})
}

// CompleteRenewal extends the license once the renewal's allocation is paid.
// A 404 from the ledger means the allocation has not been accepted yet.
func (s *LicenseService) CompleteRenewal(ctx context.Context, licenseContractID string, req CompleteRenewalRequest) Result[*models.LicenseRenewalCompleteResult] {
	if err := utils.ValidateStruct(req); err != nil {
		failure := invalidInput(s.runner.lang, s.runner.action(i18n.KeyActionCompleteRenewal), utils.GetValidationErrors(err), err)
		return reject[*models.LicenseRenewalCompleteResult](ctx, s.runner, "completeLicenseRenewal", licenseContractID, failure)
	}

	return execute(ctx, s.runner, command[*models.LicenseRenewalCompleteResult]{
		operation:  "completeLicenseRenewal",
		actionKey:  i18n.KeyActionCompleteRenewal,
		contractID: licenseContractID,
		call: func(ctx context.Context, commandID string) (*models.LicenseRenewalCompleteResult, error) {
			return s.client.CompleteLicenseRenewal(ctx, licenseContractID, commandID, models.LicenseRenewalComplete{
				RenewalRequestContractID: req.RenewalRequestContractID,
				AllocationContractID:     req.AllocationContractID,
			})
		},
		classify: classifyCompletion,
		refetch:  s.refetch,
		success: func(*models.LicenseRenewalCompleteResult) string {
			return i18n.T(s.runner.lang, i18n.KeyLicenseRenewalCompleted)
		},
	})
}

func (s *LicenseService) Withdraw(ctx context.Context, renewalContractID string) Result[struct{}] {
	return execute(ctx, s.runner, command[struct{}]{
		operation:  "withdrawLicenseRenewalRequest",
		actionKey:  i18n.KeyActionWithdrawRenewalRequest,
		contractID: renewalContractID,
		call: func(ctx context.Context, commandID string) (struct{}, error) {
			return struct{}{}, s.client.WithdrawLicenseRenewalRequest(ctx, renewalContractID, commandID)
		},
		refetch: s.refetch,
		success: func(struct{}) string {
			return i18n.T(s.runner.lang, i18n.KeyRenewalRequestWithdrawn, renewalContractID)
		},
	})
}

// InitiateLicenseRenewal renews with the configured fee and durations.
func (s *LicenseService) InitiateLicenseRenewal(ctx context.Context, contractID, description string) Result[*models.RenewResponse] {
	description = strings.TrimSpace(description)
	if description == "" {
		failure := invalidInput(s.runner.lang, s.runner.action(i18n.KeyActionRenewLicense), nil, errEmptyDescription)
		return reject[*models.RenewResponse](ctx, s.runner, "renewLicense", contractID, failure)
	}

	return s.Renew(ctx, contractID, models.RenewRequest{
		LicenseFeeCc:              s.defaults.LicenseFeeCc,
		LicenseExtensionDuration:  s.defaults.LicenseExtensionDuration,
		PaymentAcceptanceDuration: s.defaults.PaymentAcceptanceDuration,
		Description:               description,
	})
}

// InitiateLicenseExpiration expires with the description recorded in the meta.
func (s *LicenseService) InitiateLicenseExpiration(ctx context.Context, contractID, description string) Result[string] {
	description = strings.TrimSpace(description)
	if description == "" {
		failure := invalidInput(s.runner.lang, s.runner.action(i18n.KeyActionExpireLicense), nil, errEmptyDescription)
		return reject[string](ctx, s.runner, "expireLicense", contractID, failure)
	}

	return s.Expire(ctx, contractID, models.NewMetadata("description", description))
}
