// internal/projection/app_install_test.go
package projection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/license-console/internal/models"
)

func intPtr(v int) *int { return &v }

func TestBuildUnified_RequestsFirstThenInstalls(t *testing.T) {
	requests := []models.AppInstallRequest{
		{ContractID: "r1", Provider: "p", User: "u1"},
		{ContractID: "r2", Provider: "p", User: "u2"},
	}
	installs := []models.AppInstall{
		{ContractID: "i1", Provider: "p", User: "u3", NumLicensesCreated: intPtr(3)},
		{ContractID: "i2", Provider: "p", User: "u4"},
	}

	unified := BuildUnified(requests, installs)

	require.Len(t, unified, len(requests)+len(installs))
	assert.Equal(t, "r1", unified[0].ContractID)
	assert.Equal(t, "r2", unified[1].ContractID)
	assert.Equal(t, "i1", unified[2].ContractID)
	assert.Equal(t, "i2", unified[3].ContractID)

	for _, row := range unified[:2] {
		assert.Equal(t, models.InstallStatusRequest, row.Status)
		assert.Equal(t, 0, row.NumLicensesCreated)
	}
	assert.Equal(t, models.InstallStatusInstall, unified[2].Status)
	assert.Equal(t, 3, unified[2].NumLicensesCreated)
	assert.Equal(t, models.InstallStatusInstall, unified[3].Status)
	assert.Equal(t, 0, unified[3].NumLicensesCreated)
}

func TestBuildUnified_Empty(t *testing.T) {
	unified := BuildUnified(nil, nil)

	assert.NotNil(t, unified)
	assert.Empty(t, unified)
}

func TestBuildUnified_NoDedupAcrossCollections(t *testing.T) {
	unified := BuildUnified(
		[]models.AppInstallRequest{{ContractID: "same"}},
		[]models.AppInstall{{ContractID: "same", NumLicensesCreated: intPtr(1)}},
	)

	found := FindUnified(unified, "same")
	require.Len(t, found, 2)
	assert.Equal(t, models.InstallStatusRequest, found[0].Status)
	assert.Equal(t, models.InstallStatusInstall, found[1].Status)
}

func TestBuildUnified_CopiesMeta(t *testing.T) {
	meta := models.NewMetadata("note", "hello")
	unified := BuildUnified([]models.AppInstallRequest{{ContractID: "r", Meta: meta}}, nil)

	assert.Equal(t, "hello", unified[0].Meta.Data["note"])
}

func TestAppInstallActions(t *testing.T) {
	admin := Viewer{Party: "provider", IsAdmin: true}
	user := Viewer{Party: "user"}
	request := models.AppInstallUnified{Status: models.InstallStatusRequest}
	install := models.AppInstallUnified{Status: models.InstallStatusInstall}

	assert.Equal(t, []models.Action{models.ActionAccept, models.ActionReject, models.ActionCancel}, AppInstallActions(request, admin))
	assert.Equal(t, []models.Action{models.ActionCancel}, AppInstallActions(request, user))
	assert.Equal(t, []models.Action{models.ActionCreateLicense, models.ActionCancel}, AppInstallActions(install, admin))
	assert.Equal(t, []models.Action{models.ActionCancel}, AppInstallActions(install, user))
}

func TestAppInstallRows(t *testing.T) {
	rows := AppInstallRows([]models.AppInstallUnified{{ContractID: "r", Status: models.InstallStatusRequest}}, Viewer{})

	require.Len(t, rows, 1)
	assert.Equal(t, "r", rows[0].ContractID)
	assert.Equal(t, []models.Action{models.ActionCancel}, rows[0].Actions)
}

func TestBuildUnified_Idempotent(t *testing.T) {
	requests := []models.AppInstallRequest{{ContractID: "r1", Meta: models.NewMetadata("a", "b")}}
	installs := []models.AppInstall{{ContractID: "i1", NumLicensesCreated: intPtr(2)}, {ContractID: "i2"}}

	assert.Equal(t, BuildUnified(requests, installs), BuildUnified(requests, installs))
}
