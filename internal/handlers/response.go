// internal/handlers/response.go
package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/license-console/internal/i18n"
	"github.com/javajoker/license-console/internal/projection"
	"github.com/javajoker/license-console/internal/services"
	"github.com/javajoker/license-console/internal/utils"
)

var failureStatus = map[services.FailureKind]struct {
	status int
	code   string
}{
	services.FailureInvalidInput: {http.StatusBadRequest, "BAD_REQUEST"},
	services.FailureUnauthorized: {http.StatusUnauthorized, "UNAUTHORIZED"},
	services.FailureForbidden:    {http.StatusForbidden, "FORBIDDEN"},
	services.FailureNotFound:     {http.StatusNotFound, "NOT_FOUND"},
	services.FailureNotYetPaid:   {http.StatusNotFound, "NOT_YET_PAID"},
	services.FailureConflict:     {http.StatusConflict, "CONFLICT"},
	services.FailureUnavailable:  {http.StatusBadGateway, "LEDGER_UNAVAILABLE"},
}

// respondFailure writes a command failure in the API envelope. The message is
// the same text the notifier recorded.
func respondFailure(c *gin.Context, failure *services.Failure) {
	mapping, ok := failureStatus[failure.Kind]
	if !ok {
		utils.InternalErrorResponse(c, failure.Message)
		return
	}
	utils.ErrorResponse(c, mapping.status, mapping.code, failure.Message, failure.Details)
}

func viewerFromContext(c *gin.Context) projection.Viewer {
	party, _ := utils.GetPartyFromContext(c)
	return projection.Viewer{
		Party:   party,
		IsAdmin: utils.IsAdminFromContext(c),
	}
}

// wantsRefresh reports whether the caller asked for a fetch before reading.
func wantsRefresh(c *gin.Context) bool {
	refresh, _ := strconv.ParseBool(c.Query("refresh"))
	return refresh
}

// listResponse writes one page of a projection together with its freshness.
func listResponse(c *gin.Context, result utils.PaginationResult, fetchedAt time.Time, fetchFailure *services.Failure) {
	freshness := gin.H{}
	if !fetchedAt.IsZero() {
		freshness["fetched_at"] = fetchedAt.UTC()
	}
	if fetchFailure != nil {
		freshness["fetch_error"] = fetchFailure.Message
	}
	utils.PaginatedResponse(c, result, freshness)
}

// bindOptionalJSON binds a request body when one was sent. Choice bodies only
// carry optional metadata, so an empty body is valid.
func bindOptionalJSON(c *gin.Context, target interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(target); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return false
	}
	return true
}

func notFoundMessage(c *gin.Context, resource, contractID string) string {
	return i18n.T(utils.GetLangFromContext(c), i18n.KeyResourceNotFound, resource, contractID)
}
