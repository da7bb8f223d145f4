// internal/console/console.go
package console

import (
	"context"

	"gorm.io/gorm"

	"github.com/javajoker/license-console/internal/config"
	"github.com/javajoker/license-console/internal/ledger"
	"github.com/javajoker/license-console/internal/poller"
	"github.com/javajoker/license-console/internal/router"
	"github.com/javajoker/license-console/internal/services"
)

const (
	JobAppInstalls = "app_installs"
	JobLicenses    = "licenses"
)

// Console wires the ledger client, the stores and the refresh loop that
// keeps them current.
type Console struct {
	Ledger        ledger.Client
	Notifications *services.NotificationService
	AppInstalls   *services.AppInstallService
	Licenses      *services.LicenseService
	Poller        *poller.Poller
}

// New builds a console against the configured ledger. db may be nil, in which
// case notifications are kept in memory only.
func New(cfg *config.Config, db *gorm.DB) (*Console, error) {
	client := ledger.NewHTTPClient(ledger.ClientConfig{
		BaseURL:   cfg.Ledger.BaseURL,
		Token:     cfg.Ledger.Token,
		UserAgent: cfg.Ledger.UserAgent,
		Timeout:   cfg.Ledger.TimeoutDuration(),
	})
	return NewWithClient(cfg, db, client)
}

func NewWithClient(cfg *config.Config, db *gorm.DB, client ledger.Client) (*Console, error) {
	lang := cfg.I18n.DefaultLocale
	notifications := services.NewNotificationService(db, 0)

	c := &Console{
		Ledger:        client,
		Notifications: notifications,
		AppInstalls:   services.NewAppInstallService(client, notifications, lang),
		Licenses:      services.NewLicenseService(client, notifications, cfg.Renewal, lang),
		Poller:        poller.New(cfg.Polling),
	}

	if err := c.Poller.Register(JobAppInstalls, func(ctx context.Context) {
		c.AppInstalls.FetchAll(ctx)
	}); err != nil {
		return nil, err
	}
	if err := c.Poller.Register(JobLicenses, func(ctx context.Context) {
		c.Licenses.FetchAll(ctx)
	}); err != nil {
		return nil, err
	}

	return c, nil
}

// Services exposes the stores to the HTTP router.
func (c *Console) Services() router.Services {
	return router.Services{
		Ledger:        c.Ledger,
		AppInstalls:   c.AppInstalls,
		Licenses:      c.Licenses,
		Notifications: c.Notifications,
	}
}
