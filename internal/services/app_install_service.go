// internal/services/app_install_service.go
package services

import (
	"context"
	"sync"
	"time"

	"github.com/javajoker/license-console/internal/i18n"
	"github.com/javajoker/license-console/internal/ledger"
	"github.com/javajoker/license-console/internal/metrics"
	"github.com/javajoker/license-console/internal/models"
	"github.com/javajoker/license-console/internal/projection"
)

// AppInstallService holds the unified request/install projection and runs the
// commands that change it. The projection is only ever replaced by a fetch.
type AppInstallService struct {
	client  ledger.Client
	runner  *commandRunner
	tracker *fetchTracker

	mu        sync.RWMutex
	unified   []models.AppInstallUnified
	fetchedAt time.Time
}

type AcceptAppInstallRequest struct {
	InstallMeta models.Metadata `json:"installMeta"`
	Meta        models.Metadata `json:"meta"`
}

type MetaRequest struct {
	Meta models.Metadata `json:"meta"`
}

func NewAppInstallService(client ledger.Client, notifier Notifier, lang string) *AppInstallService {
	return &AppInstallService{
		client:  client,
		runner:  newCommandRunner(notifier, lang),
		tracker: &fetchTracker{collection: "app_installs"},
		unified: []models.AppInstallUnified{},
	}
}

// Unified returns a copy of the current projection.
func (s *AppInstallService) Unified() []models.AppInstallUnified {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.AppInstallUnified, len(s.unified))
	copy(out, s.unified)
	return out
}

func (s *AppInstallService) FetchedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetchedAt
}

// FetchAll lists requests and installs and swaps in the merged projection.
// On failure the previous projection is kept.
func (s *AppInstallService) FetchAll(ctx context.Context) Result[[]models.AppInstallUnified] {
	requests, err := s.client.ListAppInstallRequests(ctx)
	var installs []models.AppInstall
	if err == nil {
		installs, err = s.client.ListAppInstalls(ctx)
	}

	if failure := s.tracker.observe(ctx, s.runner, i18n.KeyActionFetchAppInstalls, err); failure != nil {
		return fail[[]models.AppInstallUnified](failure)
	}

	unified := projection.BuildUnified(requests, installs)

	s.mu.Lock()
	s.unified = unified
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	metrics.SetProjectionRows("app_installs", len(unified))
	return succeed(s.Unified())
}

func (s *AppInstallService) refetch(ctx context.Context) {
	s.FetchAll(ctx)
}

func (s *AppInstallService) Accept(ctx context.Context, contractID string, req AcceptAppInstallRequest) Result[*models.AppInstall] {
	return execute(ctx, s.runner, command[*models.AppInstall]{
		operation:  "acceptAppInstallRequest",
		actionKey:  i18n.KeyActionAcceptRequest,
		contractID: contractID,
		call: func(ctx context.Context, commandID string) (*models.AppInstall, error) {
			return s.client.AcceptAppInstallRequest(ctx, contractID, commandID, models.AppInstallRequestAccept{
				InstallMeta: req.InstallMeta,
				Meta:        req.Meta,
			})
		},
		refetch: s.refetch,
		success: func(*models.AppInstall) string {
			return i18n.T(s.runner.lang, i18n.KeyRequestAccepted, contractID)
		},
	})
}

func (s *AppInstallService) Reject(ctx context.Context, contractID string, meta models.Metadata) Result[struct{}] {
	return execute(ctx, s.runner, command[struct{}]{
		operation:  "rejectAppInstallRequest",
		actionKey:  i18n.KeyActionRejectRequest,
		contractID: contractID,
		call: func(ctx context.Context, commandID string) (struct{}, error) {
			return struct{}{}, s.client.RejectAppInstallRequest(ctx, contractID, commandID, models.AppInstallRequestReject{Meta: meta})
		},
		refetch: s.refetch,
		success: func(struct{}) string {
			return i18n.T(s.runner.lang, i18n.KeyRequestRejected, contractID)
		},
	})
}

func (s *AppInstallService) CancelRequest(ctx context.Context, contractID string, meta models.Metadata) Result[struct{}] {
	return execute(ctx, s.runner, command[struct{}]{
		operation:  "cancelAppInstallRequest",
		actionKey:  i18n.KeyActionCancelRequest,
		contractID: contractID,
		call: func(ctx context.Context, commandID string) (struct{}, error) {
			return struct{}{}, s.client.CancelAppInstallRequest(ctx, contractID, commandID, models.AppInstallRequestCancel{Meta: meta})
		},
		refetch: s.refetch,
		success: func(struct{}) string {
			return i18n.T(s.runner.lang, i18n.KeyRequestCanceled, contractID)
		},
	})
}

func (s *AppInstallService) CancelInstall(ctx context.Context, contractID string, meta models.Metadata) Result[struct{}] {
	return execute(ctx, s.runner, command[struct{}]{
		operation:  "cancelAppInstall",
		actionKey:  i18n.KeyActionCancelInstall,
		contractID: contractID,
		call: func(ctx context.Context, commandID string) (struct{}, error) {
			return struct{}{}, s.client.CancelAppInstall(ctx, contractID, commandID, models.AppInstallCancel{Meta: meta})
		},
		refetch: s.refetch,
		success: func(struct{}) string {
			return i18n.T(s.runner.lang, i18n.KeyInstallCanceled, contractID)
		},
	})
}

// Cancel dispatches to CancelRequest or CancelInstall depending on the row's status.
func (s *AppInstallService) Cancel(ctx context.Context, status models.InstallStatus, contractID string, meta models.Metadata) Result[struct{}] {
	if status == models.InstallStatusRequest {
		return s.CancelRequest(ctx, contractID, meta)
	}
	return s.CancelInstall(ctx, contractID, meta)
}

func (s *AppInstallService) CreateLicense(ctx context.Context, contractID string, meta models.Metadata) Result[*models.AppInstallCreateLicenseResult] {
	return execute(ctx, s.runner, command[*models.AppInstallCreateLicenseResult]{
		operation:  "createLicense",
		actionKey:  i18n.KeyActionCreateLicense,
		contractID: contractID,
		call: func(ctx context.Context, commandID string) (*models.AppInstallCreateLicenseResult, error) {
			return s.client.CreateLicense(ctx, contractID, commandID, models.AppInstallCreateLicenseRequest{
				Params: models.LicenseParams{Meta: meta},
			})
		},
		refetch: s.refetch,
		success: func(result *models.AppInstallCreateLicenseResult) string {
			return i18n.T(s.runner.lang, i18n.KeyLicenseCreated, result.LicenseID)
		},
	})
}
