// internal/handlers/user.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/license-console/internal/i18n"
	"github.com/javajoker/license-console/internal/ledger"
	"github.com/javajoker/license-console/internal/services"
	"github.com/javajoker/license-console/internal/utils"
)

type UserHandler struct {
	client ledger.Client
}

func NewUserHandler(client ledger.Client) *UserHandler {
	return &UserHandler{
		client: client,
	}
}

// GetViewer returns the identity the console derived from the caller's token.
func (h *UserHandler) GetViewer(c *gin.Context) {
	subject, _ := c.Get("subject")
	roles, _ := c.Get("roles")

	viewer := viewerFromContext(c)
	utils.SuccessResponse(c, gin.H{
		"subject": subject,
		"party":   viewer.Party,
		"roles":   roles,
		"isAdmin": viewer.IsAdmin,
	})
}

// GetLedgerUser returns the user the ledger backend authenticates the console as.
func (h *UserHandler) GetLedgerUser(c *gin.Context) {
	user, err := h.client.GetAuthenticatedUser(c.Request.Context())
	if err != nil {
		lang := utils.GetLangFromContext(c)
		respondFailure(c, services.Classify(lang, i18n.T(lang, i18n.KeyActionFetchUser), err))
		return
	}
	utils.SuccessResponse(c, user)
}
