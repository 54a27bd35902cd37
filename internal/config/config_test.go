package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:            "5000",
		Env:             "production",
		DBDriver:        "postgres",
		DBPassword:      "secure-password",
		DBSSLMode:       "require",
		SessionSecret:   "secure-secret-at-least-32-chars-long",
		SessionTTLHours: 24,
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = tt.env
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"Valid", func(*Config) {}, true},
		{"Missing Port", func(c *Config) { c.Port = "" }, false},
		{"Missing Secret", func(c *Config) { c.SessionSecret = "" }, false},
		{"Default Secret In Production", func(c *Config) { c.SessionSecret = defaultSessionSecret }, false},
		{"Short Secret In Production", func(c *Config) { c.SessionSecret = "short" }, false},
		{"Short Secret In Development", func(c *Config) { c.Env = "development"; c.SessionSecret = "short" }, true},
		{"Weak DB Password", func(c *Config) { c.DBPassword = "password" }, false},
		{"Unknown Driver", func(c *Config) { c.DBDriver = "mysql" }, false},
		{"SQLite Without Path", func(c *Config) { c.DBDriver = "sqlite" }, false},
		{"SQLite With Path", func(c *Config) { c.DBDriver = "sqlite"; c.SQLitePath = "warbler.db" }, true},
		{"Bad Bcrypt Cost", func(c *Config) { c.BcryptCost = 99 }, false},
		{"Zero TTL", func(c *Config) { c.SessionTTLHours = 0 }, false},
		{"Bad Sample Ratio", func(c *Config) { c.TracingSampleRatio = 1.5 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_DRIVER", "  SQLite ")
	t.Setenv("SQLITE_PATH", "file::memory:")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("BCRYPT_COST", "4")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "file::memory:", c.SQLitePath)
	assert.Equal(t, 4, c.BcryptCost)
	assert.Equal(t, "5000", c.Port)
	assert.Equal(t, 24*7, c.SessionTTLHours)
}
