// internal/router/router.go
package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/javajoker/license-console/internal/config"
	"github.com/javajoker/license-console/internal/handlers"
	"github.com/javajoker/license-console/internal/ledger"
	"github.com/javajoker/license-console/internal/metrics"
	"github.com/javajoker/license-console/internal/middleware"
	"github.com/javajoker/license-console/internal/models"
	"github.com/javajoker/license-console/internal/projection"
	"github.com/javajoker/license-console/internal/services"
	"github.com/javajoker/license-console/internal/utils"
)

const version = "1.0.0"

// Services are the stores the console API reads from and commands through.
type Services struct {
	Ledger        ledger.Client
	AppInstalls   *services.AppInstallService
	Licenses      *services.LicenseService
	Notifications *services.NotificationService
}

func Initialize(db *gorm.DB, cfg *config.Config, svc Services) *gin.Engine {
	// Initialize handlers
	userHandler := handlers.NewUserHandler(svc.Ledger)
	appInstallHandler := handlers.NewAppInstallHandler(svc.AppInstalls)
	licenseHandler := handlers.NewLicenseHandler(svc.Licenses)
	notificationHandler := handlers.NewNotificationHandler(svc.Notifications)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)
	utils.SetAdminRole(cfg.JWT.AdminRole)

	rateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(metrics.GinMiddleware())
	r.Use(cors.New(corsConfig(cfg.Server.CORSOrigins)))
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": version,
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// API v1 routes
	v1 := r.Group("/v1")
	v1.Use(middleware.AuthRequired(), rateLimiter.Middleware(), middleware.AuditLogMiddleware(db))
	{
		v1.GET("/me", userHandler.GetViewer)
		v1.GET("/user", userHandler.GetLedgerUser)
		v1.GET("/stats", statsHandler(svc))

		// Unified request/install table
		v1.GET("/app-installs", appInstallHandler.GetAppInstalls)
		v1.GET("/app-installs/:contractId", appInstallHandler.GetAppInstall)
		v1.POST("/app-installs/:contractId/cancel", appInstallHandler.CancelInstall)
		v1.POST("/app-installs/:contractId/create-license", middleware.AdminRequired(), appInstallHandler.CreateLicense)

		requests := v1.Group("/app-install-requests")
		{
			requests.POST("/:contractId/accept", middleware.AdminRequired(), appInstallHandler.AcceptRequest)
			requests.POST("/:contractId/reject", middleware.AdminRequired(), appInstallHandler.RejectRequest)
			requests.POST("/:contractId/cancel", appInstallHandler.CancelRequest)
		}

		// License routes
		licenses := v1.Group("/licenses")
		{
			licenses.GET("", licenseHandler.GetLicenses)
			licenses.GET("/:contractId", licenseHandler.GetLicense)
			licenses.POST("/:contractId/expire", licenseHandler.ExpireLicense)

			admin := licenses.Group("")
			admin.Use(middleware.AdminRequired())
			{
				admin.POST("/:contractId/renew", licenseHandler.RenewLicense)
				admin.POST("/:contractId/renewals", licenseHandler.InitiateRenewal)
				admin.POST("/:contractId/complete-renewal", licenseHandler.CompleteRenewal)
			}
		}

		renewals := v1.Group("/license-renewal-requests")
		{
			renewals.GET("", licenseHandler.GetRenewalRequests)
			renewals.GET("/:contractId/instructions", licenseHandler.GetRenewalInstructions)
			renewals.POST("/:contractId/withdraw", middleware.AdminRequired(), licenseHandler.WithdrawRenewalRequest)
		}

		notifications := v1.Group("/notifications")
		{
			notifications.GET("", notificationHandler.GetNotifications)
			notifications.GET("/latest", notificationHandler.GetLatestNotification)
		}
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowOrigins = origins
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", "Accept-Language")
	cfg.ExposeHeaders = []string{"X-Total-Count", "X-Page", "X-Per-Page", "X-Total-Pages"}
	cfg.MaxAge = 12 * time.Hour
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	}
	return cfg
}

// statsHandler summarises the projections currently held by the console.
func statsHandler(svc Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()

		installStatus := map[models.InstallStatus]int{}
		for _, row := range svc.AppInstalls.Unified() {
			installStatus[row.Status]++
		}

		licenses := svc.Licenses.Licenses()
		expired := 0
		for _, l := range licenses {
			if projection.IsExpired(l, now) {
				expired++
			}
		}

		renewalStatus := map[models.RenewalStatus]int{}
		for _, r := range svc.Licenses.RenewalRequests() {
			renewalStatus[projection.DeriveRenewalStatus(r)]++
		}

		utils.SuccessResponse(c, gin.H{
			"app_install_requests": installStatus[models.InstallStatusRequest],
			"app_installs":         installStatus[models.InstallStatusInstall],
			"licenses":             len(licenses),
			"expired_licenses":     expired,
			"renewal_requests":     renewalStatus,
			"last_updated":         svc.Licenses.FetchedAt(),
		})
	}
}
