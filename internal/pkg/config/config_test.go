package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "memory", cfg.StoreBackend)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, []string{"items:read"}, cfg.Auth.SignupDefaultScopes)
	assert.Equal(t, []string{"items:read", "items:write"}, cfg.Auth.SignupAllowedScopes)
	assert.Empty(t, cfg.Auth.AdminUsername)
	assert.Equal(t, int64(3), cfg.RateLimit.IPRequests)
	assert.Equal(t, time.Minute, cfg.RateLimit.IPPeriod)
	assert.Equal(t, 50, cfg.HTTP.MaxPageSize)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, 10000, cfg.Workers.ExportRows)
	assert.Nil(t, cfg.Auth.PreviousKeys())
}

func TestLoadWith_RequiresSecret(t *testing.T) {
	_, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	assert.Error(t, err)
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":           "s3cret",
		"JWT_KEY_ID":           "k2",
		"JWT_PREVIOUS_SECRETS": "k1:old-secret",
		"STORE_BACKEND":        "postgres",
		"CORS_ORIGINS":         "https://a.example,https://b.example",
		"FILES_BACKEND":        "s3",
		"S3_BUCKET":            "uploads",
		"RATE_LIMIT_IP":        "10",
	}))
	require.NoError(t, err)

	assert.Equal(t, "k2", cfg.Auth.JWTKeyID)
	assert.Equal(t, map[string][]byte{"k1": []byte("old-secret")}, cfg.Auth.PreviousKeys())
	assert.Equal(t, "postgres", cfg.StoreBackend)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, "uploads", cfg.Files.S3Bucket)
	assert.Equal(t, int64(10), cfg.RateLimit.IPRequests)
}

func TestLoadWith_RejectsUnknownBackends(t *testing.T) {
	cases := map[string]map[string]string{
		"store":     {"JWT_SECRET": "x", "STORE_BACKEND": "cassandra"},
		"files":     {"JWT_SECRET": "x", "FILES_BACKEND": "ftp"},
		"s3 bucket": {"JWT_SECRET": "x", "FILES_BACKEND": "s3"},
		"page size": {"JWT_SECRET": "x", "MAX_PAGE_SIZE": "0"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadWith(context.Background(), envconfig.MapLookuper(env))
			assert.Error(t, err)
		})
	}
}

func TestLoadWith_AdminNeedsPassword(t *testing.T) {
	_, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":     "s3cret",
		"ADMIN_USERNAME": "root",
	}))
	assert.ErrorContains(t, err, "ADMIN_PASSWORD")
}
