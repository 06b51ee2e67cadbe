package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearShopEnv blanks the variables these tests touch; viper ignores empty values
func clearShopEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SHOP_APP_NAME", "SHOP_APP_ENV", "SHOP_APP_PORT",
		"SHOP_DATABASE_HOST", "SHOP_DATABASE_PORT", "SHOP_DATABASE_USER",
		"SHOP_DATABASE_PASSWORD", "SHOP_DATABASE_NAME", "SHOP_DATABASE_SSLMODE",
		"SHOP_DATABASE_MAX_OPEN_CONNS", "SHOP_DATABASE_MAX_IDLE_CONNS",
		"SHOP_JWT_SECRET", "SHOP_JWT_EXPIRATION", "SHOP_COOKIE_NAME",
		"SHOP_COOKIE_SECURE", "SHOP_COOKIE_SAME_SITE", "SHOP_LOG_LEVEL",
		"SHOP_CHECKOUT_TOTAL_POLICY", "SHOP_CHECKOUT_IDEMPOTENCY_TTL",
		"SHOP_CHECKOUT_SHIPPING_FEE", "SHOP_CHECKOUT_FREE_SHIPPING_OVER", "SHOP_CHECKOUT_TAX_RATE",
		"SHOP_STORAGE_ENABLED", "SHOP_STORAGE_BUCKET",
		"SHOP_ADMIN_EMAIL", "SHOP_ADMIN_PASSWORD",
		"SHOP_TELEMETRY_SAMPLING_RATIO",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearShopEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "storefront-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.True(t, cfg.App.IsDevelopment())
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "storefront", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "auth-token", cfg.Cookie.Name)
		assert.Equal(t, "lax", cfg.Cookie.SameSite)
		assert.Equal(t, 7*24*time.Hour, cfg.JWT.Expiration)
		assert.Equal(t, TotalPolicyTrust, cfg.Checkout.TotalPolicy)
		assert.Equal(t, 24*time.Hour, cfg.Checkout.IdempotencyTTL)
		assert.Equal(t, "30000", cfg.Checkout.ShippingFee.String())
		assert.Equal(t, "500000", cfg.Checkout.FreeShippingOver.String())
		assert.Equal(t, "0.1", cfg.Checkout.TaxRate.String())
		assert.False(t, cfg.Admin.Enabled())
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	})

	t.Run("loads values from environment variables with SHOP prefix", func(t *testing.T) {
		clearShopEnv(t)
		t.Setenv("SHOP_APP_NAME", "test-shop")
		t.Setenv("SHOP_APP_PORT", "9000")
		t.Setenv("SHOP_DATABASE_HOST", "testdb.local")
		t.Setenv("SHOP_DATABASE_PORT", "5433")
		t.Setenv("SHOP_DATABASE_NAME", "testdb")
		t.Setenv("SHOP_DATABASE_MAX_OPEN_CONNS", "50")
		t.Setenv("SHOP_DATABASE_MAX_IDLE_CONNS", "10")
		t.Setenv("SHOP_COOKIE_NAME", "sid")
		t.Setenv("SHOP_CHECKOUT_TOTAL_POLICY", "VERIFY")
		t.Setenv("SHOP_CHECKOUT_TAX_RATE", "0")
		t.Setenv("SHOP_ADMIN_EMAIL", "root@shop.test")
		t.Setenv("SHOP_ADMIN_PASSWORD", "secret123")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-shop", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testdb", cfg.Database.DBName)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, "sid", cfg.Cookie.Name)
		assert.Equal(t, TotalPolicyVerify, cfg.Checkout.TotalPolicy)
		assert.True(t, cfg.Checkout.TaxRate.IsZero())
		assert.True(t, cfg.Admin.Enabled())
		assert.Equal(t, "test-shop", cfg.Telemetry.ServiceName)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearShopEnv(t)
		t.Setenv("SHOP_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("SHOP_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects unknown total policy", func(t *testing.T) {
		clearShopEnv(t)
		t.Setenv("SHOP_CHECKOUT_TOTAL_POLICY", "guess")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "checkout.total_policy")
	})

	t.Run("rejects unparseable checkout pricing", func(t *testing.T) {
		clearShopEnv(t)
		t.Setenv("SHOP_CHECKOUT_SHIPPING_FEE", "thirty")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "checkout.shipping_fee")
	})

	t.Run("rejects negative tax rate", func(t *testing.T) {
		clearShopEnv(t)
		t.Setenv("SHOP_CHECKOUT_TAX_RATE", "-0.1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be negative")
	})

	t.Run("same_site none requires secure cookie", func(t *testing.T) {
		clearShopEnv(t)
		t.Setenv("SHOP_COOKIE_SAME_SITE", "none")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cookie.secure")
	})

	t.Run("storage requires a bucket when enabled", func(t *testing.T) {
		clearShopEnv(t)
		t.Setenv("SHOP_STORAGE_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.bucket")
	})

	t.Run("rejects sampling ratio above one", func(t *testing.T) {
		clearShopEnv(t)
		t.Setenv("SHOP_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func(t *testing.T) {
		clearShopEnv(t)
		t.Setenv("SHOP_APP_ENV", "production")
		t.Setenv("SHOP_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		t.Setenv("SHOP_COOKIE_SECURE", "true")
	}

	t.Run("requires jwt.secret in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("SHOP_JWT_SECRET", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret is required in production")
	})

	t.Run("requires jwt.secret at least 32 characters in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("SHOP_JWT_SECRET", "short-secret")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 32 characters")
	})

	t.Run("requires secure cookie in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("SHOP_COOKIE_SECURE", "false")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cookie.secure must be true")
	})

	t.Run("rejects debug logging in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("SHOP_LOG_LEVEL", "debug")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "log.level")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		setValidProductionBase(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
		assert.False(t, cfg.App.IsDevelopment())
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost:5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "/testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})
}
