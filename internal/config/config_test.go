package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseEnv() map[string]string {
	return map[string]string{
		"APP_ENV":              "",
		"APP_PORT":             "",
		"DATABASE_URL":         "postgres://localhost/vendorbook",
		"JWT_SECRET":           "dev-secret",
		"REDIS_URL":            "",
		"SESSION_TTL":          "",
		"DB_MAX_CONNS":         "",
		"DB_MIN_CONNS":         "",
		"CORS_ALLOWED_ORIGINS": "",
		"METRICS_ENABLED":      "",
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadForTests(baseEnv())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, ":8080", cfg.HTTPAddr())
	assert.Equal(t, 36*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 12*time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, int32(20), cfg.DBMaxConns)
	assert.Empty(t, cfg.RedisURL)
	assert.True(t, cfg.MetricsEnabled)
}

func TestLoad_Overrides(t *testing.T) {
	env := baseEnv()
	env["APP_PORT"] = ":9000"
	env["SESSION_TTL"] = "2h"
	env["DB_MAX_CONNS"] = "5"
	env["DB_MIN_CONNS"] = "1"
	env["CORS_ALLOWED_ORIGINS"] = "http://a.test, ,http://b.test"
	env["METRICS_ENABLED"] = "off"
	env["REDIS_URL"] = "redis://localhost:6379/0"

	cfg, err := LoadForTests(env)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTPAddr())
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, int32(5), cfg.DBMaxConns)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(map[string]string)
		wantErr string
	}{
		{name: "missing database", mutate: func(e map[string]string) { e["DATABASE_URL"] = "" }, wantErr: "DATABASE_URL"},
		{name: "missing secret", mutate: func(e map[string]string) { e["JWT_SECRET"] = "" }, wantErr: "JWT_SECRET"},
		{name: "short production secret", mutate: func(e map[string]string) { e["APP_ENV"] = "production" }, wantErr: "32 characters"},
		{name: "min above max", mutate: func(e map[string]string) {
			e["DB_MAX_CONNS"] = "2"
			e["DB_MIN_CONNS"] = "4"
		}, wantErr: "DB_MIN_CONNS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := baseEnv()
			tt.mutate(env)
			_, err := LoadForTests(env)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseDuration_FallsBack(t *testing.T) {
	assert.Equal(t, 5*time.Minute, parseDuration("soon", "5m"))
	assert.Equal(t, time.Second, parseDuration(" 1s ", "5m"))
}
