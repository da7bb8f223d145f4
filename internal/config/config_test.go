// internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Polling.Interval)
	assert.False(t, cfg.Polling.SkipIfRunning)
	assert.Equal(t, 100.0, cfg.Renewal.LicenseFeeCc)
	assert.Equal(t, "P30D", cfg.Renewal.LicenseExtensionDuration)
	assert.Equal(t, "P7D", cfg.Renewal.PaymentAcceptanceDuration)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Database.ConnectTimeout)
	assert.Equal(t, 30*time.Second, cfg.Ledger.TimeoutDuration())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "2s")
	t.Setenv("POLL_SKIP_IF_RUNNING", "TRUE")
	t.Setenv("CORS_ORIGINS", "http://a, http://b ,")
	t.Setenv("RENEWAL_FEE_CC", "12.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.Polling.Interval)
	assert.True(t, cfg.Polling.SkipIfRunning)
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 12.5, cfg.Renewal.LicenseFeeCc)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Environment: "production",
			Ledger:      LedgerConfig{BaseURL: "http://ledger"},
			Polling:     PollingConfig{Interval: time.Second},
			Renewal:     RenewalConfig{LicenseFeeCc: 1},
			JWT:         JWTConfig{SecretKey: "real-secret"},
		}
	}

	assert.NoError(t, base().Validate())

	cfg := base()
	cfg.JWT.SecretKey = defaultJWTSecret
	assert.Error(t, cfg.Validate())

	for _, interval := range []time.Duration{0, -time.Second, 200 * time.Millisecond, 1500 * time.Millisecond} {
		cfg = base()
		cfg.Polling.Interval = interval
		assert.Error(t, cfg.Validate(), interval.String())
	}

	cfg = base()
	cfg.Polling.Interval = 10 * time.Second
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Ledger.BaseURL = ""
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Database.Enabled = true
	assert.Error(t, cfg.Validate())
}
