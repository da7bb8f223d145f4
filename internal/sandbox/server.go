// internal/sandbox/server.go
package sandbox

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/license-console/internal/middleware"
	"github.com/javajoker/license-console/internal/models"
)

// BasePath prefixes every sandbox route, matching the backend's /api mount.
const BasePath = "/api"

// Router serves the ledger REST surface over the in-memory state, plus a
// /api/sandbox group for the actions other parties would take (creating install
// requests and paying renewals).
func (l *Ledger) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())

	api := r.Group(BasePath)

	api.GET("/user", func(c *gin.Context) {
		c.JSON(http.StatusOK, l.User())
	})

	api.GET("/app-install-requests", func(c *gin.Context) {
		c.JSON(http.StatusOK, l.AppInstallRequests())
	})
	api.POST("/app-install-requests/:choice", l.appInstallRequestChoice)

	api.GET("/app-installs", func(c *gin.Context) {
		c.JSON(http.StatusOK, l.AppInstalls())
	})
	api.POST("/app-installs/:choice", l.appInstallChoice)

	api.GET("/licenses", func(c *gin.Context) {
		c.JSON(http.StatusOK, l.Licenses())
	})
	api.POST("/licenses/:choice", l.licenseChoice)

	api.GET("/license-renewal-requests", func(c *gin.Context) {
		c.JSON(http.StatusOK, l.LicenseRenewalRequests())
	})
	api.POST("/license-renewal-requests/:choice", l.renewalChoice)

	sandbox := api.Group("/sandbox")
	{
		sandbox.POST("/app-install-requests", l.createAppInstallRequest)
		sandbox.POST("/license-renewal-requests/:contractId/allocate", l.allocate)
	}

	return r
}

// splitChoice separates "<contractId>:<choice>". Contract ids never contain
// a colon, so the last one delimits the choice.
func splitChoice(c *gin.Context) (string, string, bool) {
	param := c.Param("choice")
	i := strings.LastIndex(param, ":")
	if i <= 0 || i == len(param)-1 {
		return "", "", false
	}
	return param[:i], param[i+1:], true
}

func respondError(c *gin.Context, err error) {
	status := statusOf(err)
	c.JSON(status, gin.H{"status": status, "message": err.Error()})
}

func unknownChoice(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"status": http.StatusNotFound, "message": "unknown choice " + c.Param("choice")})
}

func bindBody(c *gin.Context, target interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(target); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "message": err.Error()})
		return false
	}
	return true
}

func (l *Ledger) appInstallRequestChoice(c *gin.Context) {
	contractID, choice, ok := splitChoice(c)
	if !ok {
		unknownChoice(c)
		return
	}
	commandID := c.Query("commandId")

	switch choice {
	case "accept":
		var body models.AppInstallRequestAccept
		if !bindBody(c, &body) {
			return
		}
		install, err := l.AcceptAppInstallRequest(contractID, commandID, body)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, install)
	case "reject":
		if err := l.RejectAppInstallRequest(contractID, commandID); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	case "cancel":
		if err := l.CancelAppInstallRequest(contractID, commandID); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	default:
		unknownChoice(c)
	}
}

func (l *Ledger) appInstallChoice(c *gin.Context) {
	contractID, choice, ok := splitChoice(c)
	if !ok {
		unknownChoice(c)
		return
	}
	commandID := c.Query("commandId")

	switch choice {
	case "create-license":
		var body models.AppInstallCreateLicenseRequest
		if !bindBody(c, &body) {
			return
		}
		result, err := l.CreateLicense(contractID, commandID, body)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, result)
	case "cancel":
		if err := l.CancelAppInstall(contractID, commandID); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	default:
		unknownChoice(c)
	}
}

func (l *Ledger) licenseChoice(c *gin.Context) {
	contractID, choice, ok := splitChoice(c)
	if !ok {
		unknownChoice(c)
		return
	}
	commandID := c.Query("commandId")

	switch choice {
	case "renew":
		var body models.RenewRequest
		if !bindBody(c, &body) {
			return
		}
		resp, err := l.RenewLicense(contractID, commandID, body)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, resp)
	case "expire":
		var body models.LicenseExpireRequest
		if !bindBody(c, &body) {
			return
		}
		message, err := l.ExpireLicense(contractID, commandID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.String(http.StatusOK, message)
	case "complete-renewal":
		var body models.LicenseRenewalComplete
		if !bindBody(c, &body) {
			return
		}
		result, err := l.CompleteLicenseRenewal(contractID, commandID, body)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	default:
		unknownChoice(c)
	}
}

func (l *Ledger) renewalChoice(c *gin.Context) {
	contractID, choice, ok := splitChoice(c)
	if !ok || choice != "withdraw" {
		unknownChoice(c)
		return
	}

	if err := l.WithdrawLicenseRenewalRequest(contractID, c.Query("commandId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (l *Ledger) createAppInstallRequest(c *gin.Context) {
	var body struct {
		Meta models.Metadata `json:"meta"`
	}
	if !bindBody(c, &body) {
		return
	}

	request, err := l.CreateAppInstallRequest(body.Meta)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, request)
}

func (l *Ledger) allocate(c *gin.Context) {
	allocationCID, err := l.Allocate(c.Param("contractId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"allocationCid": allocationCID})
}
