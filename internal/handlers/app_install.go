// internal/handlers/app_install.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/license-console/internal/models"
	"github.com/javajoker/license-console/internal/projection"
	"github.com/javajoker/license-console/internal/services"
	"github.com/javajoker/license-console/internal/utils"
)

type AppInstallHandler struct {
	appInstallService *services.AppInstallService
}

func NewAppInstallHandler(appInstallService *services.AppInstallService) *AppInstallHandler {
	return &AppInstallHandler{
		appInstallService: appInstallService,
	}
}

// GetAppInstalls returns the unified request/install table for the caller.
// With refresh=true the projection is fetched first; a failed fetch still
// serves the previous rows and reports the failure in meta.
func (h *AppInstallHandler) GetAppInstalls(c *gin.Context) {
	var fetchFailure *services.Failure
	if wantsRefresh(c) {
		fetchFailure = h.appInstallService.FetchAll(c.Request.Context()).Failure
	}

	unified := h.appInstallService.Unified()
	if status := strings.ToUpper(c.Query("status")); status != "" {
		filtered := make([]models.AppInstallUnified, 0, len(unified))
		for _, row := range unified {
			if string(row.Status) == status {
				filtered = append(filtered, row)
			}
		}
		unified = filtered
	}

	rows := projection.AppInstallRows(unified, viewerFromContext(c))
	listResponse(c, utils.Paginate(rows, utils.GetPaginationParams(c)), h.appInstallService.FetchedAt(), fetchFailure)
}

// GetAppInstall returns every row carrying the contract id. Requests and
// installs are never deduplicated, so more than one row is possible.
func (h *AppInstallHandler) GetAppInstall(c *gin.Context) {
	contractID := c.Param("contractId")
	rows := projection.AppInstallRows(projection.FindUnified(h.appInstallService.Unified(), contractID), viewerFromContext(c))
	if len(rows) == 0 {
		utils.NotFoundResponse(c, notFoundMessage(c, "AppInstall", contractID))
		return
	}
	utils.SuccessResponse(c, rows)
}

func (h *AppInstallHandler) AcceptRequest(c *gin.Context) {
	var req services.AcceptAppInstallRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	result := h.appInstallService.Accept(c.Request.Context(), c.Param("contractId"), req)
	if !result.OK() {
		respondFailure(c, result.Failure)
		return
	}
	utils.SuccessResponse(c, result.Value)
}

func (h *AppInstallHandler) RejectRequest(c *gin.Context) {
	var req services.MetaRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	result := h.appInstallService.Reject(c.Request.Context(), c.Param("contractId"), req.Meta)
	if !result.OK() {
		respondFailure(c, result.Failure)
		return
	}
	utils.SuccessResponse(c, gin.H{"contractId": c.Param("contractId")})
}

func (h *AppInstallHandler) CancelRequest(c *gin.Context) {
	h.cancel(c, models.InstallStatusRequest)
}

func (h *AppInstallHandler) CancelInstall(c *gin.Context) {
	h.cancel(c, models.InstallStatusInstall)
}

func (h *AppInstallHandler) cancel(c *gin.Context, status models.InstallStatus) {
	var req services.MetaRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	result := h.appInstallService.Cancel(c.Request.Context(), status, c.Param("contractId"), req.Meta)
	if !result.OK() {
		respondFailure(c, result.Failure)
		return
	}
	utils.SuccessResponse(c, gin.H{"contractId": c.Param("contractId")})
}

func (h *AppInstallHandler) CreateLicense(c *gin.Context) {
	var req services.MetaRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	result := h.appInstallService.CreateLicense(c.Request.Context(), c.Param("contractId"), req.Meta)
	if !result.OK() {
		respondFailure(c, result.Failure)
		return
	}
	utils.CreatedResponse(c, result.Value)
}
