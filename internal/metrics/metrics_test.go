// internal/metrics/metrics_test.go
package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordCommand(t *testing.T) {
	before := testutil.ToFloat64(commandsTotal.WithLabelValues("acceptAppInstallRequest", "success"))

	RecordCommand("acceptAppInstallRequest", "success", 10*time.Millisecond)

	after := testutil.ToFloat64(commandsTotal.WithLabelValues("acceptAppInstallRequest", "success"))
	assert.Equal(t, before+1, after)
}

func TestRecordFetch(t *testing.T) {
	before := testutil.ToFloat64(fetchesTotal.WithLabelValues("licenses", "failure"))

	RecordFetch("licenses", errors.New("boom"))
	RecordFetch("licenses", nil)

	assert.Equal(t, before+1, testutil.ToFloat64(fetchesTotal.WithLabelValues("licenses", "failure")))
}

func TestSetProjectionRows(t *testing.T) {
	SetProjectionRows("app_installs", 7)

	assert.Equal(t, 7.0, testutil.ToFloat64(projectionRows.WithLabelValues("app_installs")))
}

func TestGinMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinMiddleware())
	router.GET("/v1/things/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.GET("/metrics", gin.WrapH(Handler()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/things/42", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/v1/things/:id", "204")))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "license_console_http_requests_total")
}
