package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, ":8080", cfg.EndpointAddrHTTP)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, uint64(4), cfg.ConfirmationMaxRounds)
	assert.NotEmpty(t, cfg.DatabaseDSN)
	assert.NotEmpty(t, cfg.S3Bucket)
}

func TestLoadConfig_FlagsOverrideDefaults(t *testing.T) {
	origArgs := os.Args
	defer func() { os.Args = origArgs }()
	os.Args = []string{"server", "-a", ":9999", "-w", "8", "-n", "http://algod:4001"}

	cfg := LoadConfig()

	assert.Equal(t, ":9999", cfg.EndpointAddrHTTP)
	assert.Equal(t, uint64(8), cfg.ConfirmationMaxRounds)
	assert.Equal(t, "http://algod:4001", cfg.AlgodAddress)
}

func TestLoadConfig_JsonOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{
		"endpoint_addr_http": ":7070",
		"database_dsn": "postgres://test",
		"secret_key": "json-secret",
		"access_token_validity_duration": "45m",
		"refresh_token_validity_duration": "48h",
		"s3_access_key": "ak",
		"s3_secret_key": "sk",
		"s3_bucket": "deeds",
		"s3_region": "ams3",
		"s3_base_endpoint": "https://ams3.digitaloceanspaces.com",
		"algod_address": "http://json-algod:4001",
		"algod_token": "tok",
		"confirmation_max_rounds": 6,
		"master_key_hex": "00"
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	origArgs := os.Args
	defer func() { os.Args = origArgs }()
	os.Args = []string{"server", "-c", path}

	cfg := LoadConfig()

	assert.Equal(t, ":7070", cfg.EndpointAddrHTTP)
	assert.Equal(t, 45*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, 48*time.Hour, cfg.RefreshTokenValidityDuration)
	assert.Equal(t, "json-secret", cfg.SecretKey)
	assert.Equal(t, uint64(6), cfg.ConfirmationMaxRounds)
	assert.Equal(t, "http://json-algod:4001", cfg.AlgodAddress)
}
