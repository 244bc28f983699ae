package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var managedEnv = []string{
	"CONTABLE_APP_NAME",
	"CONTABLE_APP_ENV",
	"CONTABLE_APP_PORT",
	"CONTABLE_APP_TIMEZONE",
	"CONTABLE_DATABASE_HOST",
	"CONTABLE_DATABASE_PORT",
	"CONTABLE_DATABASE_PASSWORD",
	"CONTABLE_DATABASE_MAX_OPEN_CONNS",
	"CONTABLE_DATABASE_MAX_IDLE_CONNS",
	"CONTABLE_JWT_SECRET",
	"CONTABLE_SCHEDULER_BILLING_DAY",
	"CONTABLE_SCHEDULER_ENABLED",
	"CONTABLE_REDIS_ENABLED",
}

func withCleanEnv(t *testing.T) {
	t.Helper()
	for _, k := range managedEnv {
		if v, ok := os.LookupEnv(k); ok {
			t.Setenv(k, v)
		}
		os.Unsetenv(k)
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		withCleanEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "estudio-contable", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "3000", cfg.App.Port)
		assert.Equal(t, "America/Argentina/Buenos_Aires", cfg.App.Timezone)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "estudio_contable", cfg.Database.DBName)
		assert.Equal(t, 1, cfg.Scheduler.BillingDay)
		assert.Equal(t, 0, cfg.Scheduler.BillingHour)
		assert.Equal(t, time.Minute, cfg.Scheduler.CheckInterval)
		assert.False(t, cfg.Redis.Enabled)
		assert.NotEmpty(t, cfg.JWT.Secret)
	})

	t.Run("loads values from environment variables with CONTABLE prefix", func(t *testing.T) {
		withCleanEnv(t)
		t.Setenv("CONTABLE_APP_PORT", "9000")
		t.Setenv("CONTABLE_DATABASE_HOST", "db.local")
		t.Setenv("CONTABLE_SCHEDULER_ENABLED", "true")
		t.Setenv("CONTABLE_SCHEDULER_BILLING_DAY", "5")
		t.Setenv("CONTABLE_REDIS_ENABLED", "true")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "db.local", cfg.Database.Host)
		assert.True(t, cfg.Scheduler.Enabled)
		assert.Equal(t, 5, cfg.Scheduler.BillingDay)
		assert.True(t, cfg.Redis.Enabled)
	})

	t.Run("rejects an unknown timezone", func(t *testing.T) {
		withCleanEnv(t)
		t.Setenv("CONTABLE_APP_TIMEZONE", "Mars/Olympus")

		_, err := Load()
		assert.ErrorContains(t, err, "app.timezone")
	})

	t.Run("production requires a strong jwt secret", func(t *testing.T) {
		withCleanEnv(t)
		t.Setenv("CONTABLE_APP_ENV", "production")
		t.Setenv("CONTABLE_DATABASE_PASSWORD", "secret")
		t.Setenv("CONTABLE_JWT_SECRET", "short")

		_, err := Load()
		assert.ErrorContains(t, err, "jwt.secret")
	})
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"idle above open", func(c *Config) { c.Database.MaxIdleConns = 100 }, "max_idle_conns"},
		{"billing day 31", func(c *Config) { c.Scheduler.BillingDay = 31 }, "billing_day"},
		{"billing hour 24", func(c *Config) { c.Scheduler.BillingHour = 24 }, "billing_hour"},
		{"sampling ratio", func(c *Config) { c.Telemetry.SamplingRatio = 2 }, "sampling_ratio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.validate(), tt.errMsg)
		})
	}

	assert.NoError(t, base().validate())
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "h", Port: 5432, User: "u", Password: "p@ss", DBName: "db", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss@h:5432/db?sslmode=disable", d.DSN())
}
