// internal/handlers/license.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/license-console/internal/models"
	"github.com/javajoker/license-console/internal/projection"
	"github.com/javajoker/license-console/internal/services"
	"github.com/javajoker/license-console/internal/utils"
)

type LicenseHandler struct {
	licenseService *services.LicenseService
}

func NewLicenseHandler(licenseService *services.LicenseService) *LicenseHandler {
	return &LicenseHandler{
		licenseService: licenseService,
	}
}

type expireLicenseRequest struct {
	Description string           `json:"description" validate:"max=500"`
	Meta        *models.Metadata `json:"meta,omitempty"`
}

func (h *LicenseHandler) refresh(c *gin.Context) *services.Failure {
	if !wantsRefresh(c) {
		return nil
	}
	return h.licenseService.FetchAll(c.Request.Context()).Failure
}

// GetLicenses returns license rows with their renewals, expiry flag and the
// actions the caller may take.
func (h *LicenseHandler) GetLicenses(c *gin.Context) {
	fetchFailure := h.refresh(c)

	licenses := h.licenseService.Licenses()
	if c.Query("expired") != "" {
		wantExpired := c.Query("expired") == "true"
		now := time.Now()
		filtered := make([]models.License, 0, len(licenses))
		for _, l := range licenses {
			if projection.IsExpired(l, now) == wantExpired {
				filtered = append(filtered, l)
			}
		}
		licenses = filtered
	}

	rows := projection.LicenseRows(licenses, viewerFromContext(c), time.Now())
	listResponse(c, utils.Paginate(rows, utils.GetPaginationParams(c)), h.licenseService.FetchedAt(), fetchFailure)
}

func (h *LicenseHandler) GetLicense(c *gin.Context) {
	contractID := c.Param("contractId")
	license, ok := h.licenseService.License(contractID)
	if !ok {
		utils.NotFoundResponse(c, notFoundMessage(c, "License", contractID))
		return
	}

	rows := projection.LicenseRows([]models.License{license}, viewerFromContext(c), time.Now())
	utils.SuccessResponse(c, rows[0])
}

// RenewLicense submits a renewal with explicit fee and durations.
func (h *LicenseHandler) RenewLicense(c *gin.Context) {
	var req models.RenewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	result := h.licenseService.Renew(c.Request.Context(), c.Param("contractId"), req)
	if !result.OK() {
		respondFailure(c, result.Failure)
		return
	}
	utils.CreatedResponse(c, result.Value)
}

// InitiateRenewal starts a renewal from a description only, using the
// configured fee and durations.
func (h *LicenseHandler) InitiateRenewal(c *gin.Context) {
	var req services.DescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	result := h.licenseService.InitiateLicenseRenewal(c.Request.Context(), c.Param("contractId"), req.Description)
	if !result.OK() {
		respondFailure(c, result.Failure)
		return
	}
	utils.CreatedResponse(c, result.Value)
}

// ExpireLicense accepts either a description or a full meta object.
func (h *LicenseHandler) ExpireLicense(c *gin.Context) {
	var req expireLicenseRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	var result services.Result[string]
	if req.Meta != nil {
		result = h.licenseService.Expire(c.Request.Context(), c.Param("contractId"), *req.Meta)
	} else {
		result = h.licenseService.InitiateLicenseExpiration(c.Request.Context(), c.Param("contractId"), req.Description)
	}

	if !result.OK() {
		respondFailure(c, result.Failure)
		return
	}
	utils.SuccessResponse(c, gin.H{"message": result.Value})
}

func (h *LicenseHandler) CompleteRenewal(c *gin.Context) {
	var req services.CompleteRenewalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}

	result := h.licenseService.CompleteRenewal(c.Request.Context(), c.Param("contractId"), req)
	if !result.OK() {
		respondFailure(c, result.Failure)
		return
	}
	utils.SuccessResponse(c, result.Value)
}

func (h *LicenseHandler) GetRenewalRequests(c *gin.Context) {
	fetchFailure := h.refresh(c)

	renewals := h.licenseService.RenewalRequests()
	if status := c.Query("status"); status != "" {
		filtered := make([]models.LicenseRenewalRequest, 0, len(renewals))
		for _, r := range renewals {
			if string(projection.DeriveRenewalStatus(r)) == status {
				filtered = append(filtered, r)
			}
		}
		renewals = filtered
	}

	rows := projection.RenewalRows(renewals, viewerFromContext(c))
	listResponse(c, utils.Paginate(rows, utils.GetPaginationParams(c)), h.licenseService.FetchedAt(), fetchFailure)
}

func (h *LicenseHandler) WithdrawRenewalRequest(c *gin.Context) {
	result := h.licenseService.Withdraw(c.Request.Context(), c.Param("contractId"))
	if !result.OK() {
		respondFailure(c, result.Failure)
		return
	}
	utils.SuccessResponse(c, gin.H{"contractId": c.Param("contractId")})
}

// GetRenewalInstructions explains how a user accepts or rejects a renewal.
// Both happen in the user's wallet, so nothing is sent to the ledger here.
func (h *LicenseHandler) GetRenewalInstructions(c *gin.Context) {
	contractID := c.Param("contractId")

	var renewal *models.LicenseRenewalRequest
	for _, r := range h.licenseService.RenewalRequests() {
		if r.ContractID == contractID {
			r := r
			renewal = &r
			break
		}
	}
	if renewal == nil {
		utils.NotFoundResponse(c, notFoundMessage(c, "LicenseRenewalRequest", contractID))
		return
	}

	action := models.Action(c.DefaultQuery("action", string(models.ActionAccept)))
	instruction := projection.WalletInstruction(*renewal, action)
	if instruction == "" {
		utils.BadRequestResponse(c, "action must be accept or reject", nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"contractId":  contractID,
		"action":      action,
		"status":      projection.DeriveRenewalStatus(*renewal),
		"instruction": instruction,
	})
}
