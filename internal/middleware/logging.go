// internal/middleware/logging.go
package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/license-console/internal/models"
)

// AuditLogMiddleware records every mutating request. With a nil db the
// entry is only logged.
func AuditLogMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip logging for GET requests and health checks
		if c.Request.Method == http.MethodGet || c.Request.URL.Path == "/health" {
			c.Next()
			return
		}

		// Read request body
		var requestBody []byte
		if c.Request.Body != nil {
			requestBody, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		subject := c.GetString("subject")

		var requestData map[string]interface{}
		if len(requestBody) > 0 {
			json.Unmarshal(requestBody, &requestData)
		}

		resourceType, resourceID := extractResource(c.Request.URL.Path)
		auditLog := &models.AuditLog{
			Subject:      subject,
			Action:       c.Request.Method + " " + c.Request.URL.Path,
			ResourceType: resourceType,
			ResourceID:   resourceID,
			NewValues:    models.JSONB(requestData),
			Status:       c.Writer.Status(),
			IPAddress:    c.ClientIP(),
			UserAgent:    c.Request.UserAgent(),
		}

		// Save audit log asynchronously
		if db != nil {
			go func() {
				if err := db.Create(auditLog).Error; err != nil {
					logrus.WithError(err).Error("Failed to create audit log")
				}
			}()
		}

		logrus.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration":    duration.Milliseconds(),
			"ip":          c.ClientIP(),
			"subject":     subject,
			"resource":    resourceType,
			"resource_id": resourceID,
		}).Info("Request processed")
	}
}

// extractResource splits /v1/<collection>/<contractId>/... into the
// collection and the contract id.
func extractResource(path string) (string, string) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) > 0 && parts[0] == "v1" {
		parts = parts[1:]
	}
	if len(parts) == 0 || parts[0] == "" {
		return "unknown", ""
	}
	if len(parts) < 2 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

// RequestLogger logs every request through logrus instead of gin's default writer.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logrus.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).Milliseconds(),
		})
		if len(c.Errors) > 0 {
			entry.Warn(c.Errors.String())
			return
		}
		entry.Debug("Request handled")
	}
}
