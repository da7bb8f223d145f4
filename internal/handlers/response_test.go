// internal/handlers/response_test.go
package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/license-console/internal/services"
	"github.com/javajoker/license-console/internal/utils"
)

func TestRespondFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		kind   services.FailureKind
		status int
		code   string
	}{
		{services.FailureInvalidInput, http.StatusBadRequest, "BAD_REQUEST"},
		{services.FailureUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{services.FailureForbidden, http.StatusForbidden, "FORBIDDEN"},
		{services.FailureNotFound, http.StatusNotFound, "NOT_FOUND"},
		{services.FailureNotYetPaid, http.StatusNotFound, "NOT_YET_PAID"},
		{services.FailureConflict, http.StatusConflict, "CONFLICT"},
		{services.FailureUnavailable, http.StatusBadGateway, "LEDGER_UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondFailure(c, &services.Failure{Kind: tt.kind, Message: "boom"})

			assert.Equal(t, tt.status, w.Code)

			var response utils.APIResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.False(t, response.Success)
			assert.Equal(t, tt.code, response.Error.Code)
			assert.Equal(t, "boom", response.Error.Message)
		})
	}
}

func TestBindOptionalJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("empty body", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

		var req services.MetaRequest
		assert.True(t, bindOptionalJSON(c, &req))
		assert.Nil(t, req.Meta.Data)
	})

	t.Run("chunked empty body", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", io.NopCloser(strings.NewReader("")))
		c.Request.ContentLength = -1
		c.Request.Header.Set("Content-Type", "application/json")

		var req services.MetaRequest
		assert.True(t, bindOptionalJSON(c, &req))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Zero(t, w.Body.Len())
	})

	t.Run("metadata", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"meta":{"data":{"reason":"duplicate"}}}`))
		c.Request.Header.Set("Content-Type", "application/json")

		var req services.MetaRequest
		assert.True(t, bindOptionalJSON(c, &req))
		assert.Equal(t, "duplicate", req.Meta.Data["reason"])
	})

	t.Run("malformed", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"meta":`))
		c.Request.Header.Set("Content-Type", "application/json")

		var req services.MetaRequest
		assert.False(t, bindOptionalJSON(c, &req))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestWantsRefresh(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for query, want := range map[string]bool{"": false, "?refresh=true": true, "?refresh=1": true, "?refresh=no": false} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/v1/licenses"+query, nil)
		assert.Equal(t, want, wantsRefresh(c), query)
	}
}
