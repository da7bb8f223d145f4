// internal/services/app_install_service_test.go
package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/javajoker/license-console/internal/ledger"
	"github.com/javajoker/license-console/internal/models"
)

type AppInstallServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	ledger   *fakeLedger
	notifier *recordingNotifier
	service  *AppInstallService
}

func (suite *AppInstallServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.ledger = newFakeLedger()
	suite.notifier = &recordingNotifier{}
	suite.service = NewAppInstallService(suite.ledger, suite.notifier, "en")

	one := 1
	suite.ledger.requests = []models.AppInstallRequest{{ContractID: "req-1", Provider: "p", User: "u"}}
	suite.ledger.installs = []models.AppInstall{{ContractID: "inst-1", Provider: "p", User: "u2", NumLicensesCreated: &one}}
}

func (suite *AppInstallServiceTestSuite) TestFetchAll_ReplacesProjection() {
	result := suite.service.FetchAll(suite.ctx)

	suite.Require().True(result.OK())
	suite.Len(result.Value, 2)
	suite.Equal(models.InstallStatusRequest, result.Value[0].Status)
	suite.Equal(models.InstallStatusInstall, result.Value[1].Status)
	suite.Equal(1, result.Value[1].NumLicensesCreated)
	suite.Equal(result.Value, suite.service.Unified())
	suite.False(suite.service.FetchedAt().IsZero())
}

func (suite *AppInstallServiceTestSuite) TestFetchAll_FailureKeepsPreviousProjection() {
	suite.Require().True(suite.service.FetchAll(suite.ctx).OK())
	suite.Require().Len(suite.service.Unified(), 2)

	suite.ledger.listErr = errNetwork
	result := suite.service.FetchAll(suite.ctx)

	suite.False(result.OK())
	suite.Equal(FailureUnavailable, result.Failure.Kind)
	suite.Equal("Unexpected error for fetching AppInstall data", result.Failure.Message)
	suite.Len(suite.service.Unified(), 2)
}

func (suite *AppInstallServiceTestSuite) TestFetchAll_ReportsOutageOnce() {
	suite.ledger.listErr = errNetwork

	suite.service.FetchAll(suite.ctx)
	suite.service.FetchAll(suite.ctx)
	suite.Equal(1, suite.notifier.len())

	suite.ledger.listErr = nil
	suite.service.FetchAll(suite.ctx)
	suite.ledger.listErr = errNetwork
	suite.service.FetchAll(suite.ctx)
	suite.Equal(2, suite.notifier.len())
}

func (suite *AppInstallServiceTestSuite) TestAccept_RefetchesAndDropsRequest() {
	suite.Require().True(suite.service.FetchAll(suite.ctx).OK())

	result := suite.service.Accept(suite.ctx, "req-1", AcceptAppInstallRequest{InstallMeta: models.NewMetadata("k", "v")})

	suite.Require().True(result.OK())
	suite.Equal(2, suite.ledger.count("listAppInstallRequests"))
	for _, row := range suite.service.Unified() {
		suite.False(row.Status == models.InstallStatusRequest && row.ContractID == "req-1")
	}
	suite.Len(suite.service.Unified(), 2)

	last := suite.notifier.last()
	suite.Equal(models.NotificationLevelSuccess, last.Level)
	suite.Equal("Accepted AppInstallRequest req-1", last.Message)
	suite.Equal("req-1", last.ContractID)
	suite.NotEmpty(last.CommandID)
}

func (suite *AppInstallServiceTestSuite) TestCommandFailure_DoesNotRefetch() {
	suite.ledger.commandErr = &ledger.APIError{Status: http.StatusConflict, Message: "already installed"}

	result := suite.service.Accept(suite.ctx, "req-1", AcceptAppInstallRequest{})

	suite.False(result.OK())
	suite.Equal(FailureConflict, result.Failure.Kind)
	suite.Equal(http.StatusConflict, result.Failure.Status)
	suite.Equal("accepting AppInstallRequest reason: already installed", result.Failure.Message)
	suite.Equal(0, suite.ledger.count("listAppInstallRequests"))

	last := suite.notifier.last()
	suite.Equal(models.NotificationLevelError, last.Level)
	suite.Equal(string(FailureConflict), last.ErrorKind)
}

func (suite *AppInstallServiceTestSuite) TestEveryAttemptGetsFreshCommandID() {
	suite.ledger.commandErr = errNetwork
	suite.service.Reject(suite.ctx, "req-1", models.Metadata{})
	suite.service.Reject(suite.ctx, "req-1", models.Metadata{})

	suite.ledger.commandErr = nil
	suite.service.Reject(suite.ctx, "req-1", models.Metadata{})

	suite.Require().Len(suite.ledger.commandIDs, 3)
	suite.NotEqual(suite.ledger.commandIDs[0], suite.ledger.commandIDs[1])
	suite.NotEqual(suite.ledger.commandIDs[1], suite.ledger.commandIDs[2])
	suite.Equal(3, suite.ledger.count("rejectAppInstallRequest"))
}

func (suite *AppInstallServiceTestSuite) TestCancel_DispatchesByStatus() {
	suite.True(suite.service.Cancel(suite.ctx, models.InstallStatusRequest, "req-1", models.Metadata{}).OK())
	suite.True(suite.service.Cancel(suite.ctx, models.InstallStatusInstall, "inst-1", models.Metadata{}).OK())

	suite.Equal(1, suite.ledger.count("cancelAppInstallRequest"))
	suite.Equal(1, suite.ledger.count("cancelAppInstall"))
	suite.Equal("Canceled AppInstall inst-1", suite.notifier.last().Message)
}

func (suite *AppInstallServiceTestSuite) TestCreateLicense() {
	result := suite.service.CreateLicense(suite.ctx, "inst-1", models.NewMetadata("note", "first"))

	suite.Require().True(result.OK())
	suite.Equal("license-1", result.Value.LicenseID)
	suite.Equal("Created License: license-1", suite.notifier.last().Message)
	suite.Equal(1, suite.ledger.count("listAppInstalls"))
}

func TestAppInstallServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AppInstallServiceTestSuite))
}
