package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig_Defaults(t *testing.T) {
	config, err := ParseConfig([]byte("{}"))
	require.NoError(t, err)

	assert.Equal(t, 8080, config.Port)
	assert.Equal(t, 3001, config.PaymentAppPort)
	assert.Equal(t, "http://localhost:3001", config.PaymentAppURL)
	assert.Equal(t, "USD", config.Currency)
	assert.Equal(t, "KES", config.PaymentCurrency)
	assert.Equal(t, 2*time.Second, config.PaymentDelay)
	assert.Equal(t, 15*time.Minute, config.PaymentRetention)
	assert.Equal(t, int64(10<<20), config.MaxUploadBytes)
	assert.Equal(t, int64(40_000_000), config.MaxUploadPixels)
	assert.Equal(t, 20, config.MaxUploadFiles)
	assert.Equal(t, "sqlite", config.Database.Type)
	assert.Equal(t, ":memory:", config.Database.ConnectionString)
	require.Len(t, config.Commands, 2)
	assert.Equal(t, "PngConverterCommand", config.Commands[0].Name)
	assert.Equal(t, "ThumbnailCommand", config.Commands[1].Name)
}

func TestParseConfig_File(t *testing.T) {
	data := []byte(`
port: 9000
paymentAppUrl: https://pay.example.com/
currency: kes
paymentDelay: 500ms
database:
  type: redis
  connectionString: localhost:6379
commands:
  - name: PngConverterCommand
  - name: ThumbnailCommand
    maxWidth: 200
`)
	config, err := ParseConfig(data)
	require.NoError(t, err)

	assert.Equal(t, 9000, config.Port)
	assert.Equal(t, "https://pay.example.com", config.PaymentAppURL)
	assert.Equal(t, "KES", config.Currency)
	assert.Equal(t, 500*time.Millisecond, config.PaymentDelay)
	assert.Equal(t, "redis", config.Database.Type)
	assert.Equal(t, "pixweb:", config.Database.KeyPrefix)
	require.Len(t, config.Commands, 2)
	assert.Equal(t, 200, config.Commands[1].Params["maxWidth"])
}

func TestParseConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PIXWEB_PORT", "9999")
	t.Setenv("PIXWEB_PAYMENT_DELAY", "3s")
	t.Setenv("PIXWEB_PAYMENT_RETENTION", "1h")
	t.Setenv("PIXWEB_MAX_UPLOAD_PIXELS", "1000000")
	t.Setenv("PIXWEB_DATABASE_TYPE", "redis")
	t.Setenv("PIXWEB_DATABASE_CONNECTION_STRING", "redis://cache:6379/0")

	config, err := ParseConfig([]byte("port: 8081\ncurrency: EUR\n"))
	require.NoError(t, err)

	assert.Equal(t, 9999, config.Port)
	assert.Equal(t, "EUR", config.Currency, "unset variables keep file values")
	assert.Equal(t, 3*time.Second, config.PaymentDelay)
	assert.Equal(t, time.Hour, config.PaymentRetention)
	assert.Equal(t, int64(1_000_000), config.MaxUploadPixels)
	assert.Equal(t, "redis", config.Database.Type)
	assert.Equal(t, "redis://cache:6379/0", config.Database.ConnectionString)
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"malformed yaml", "port: [1"},
		{"port out of range", "port: 70000"},
		{"negative delay", "paymentDelay: -1s"},
		{"negative retention", "paymentRetention: -1m"},
		{"negative pixel limit", "maxUploadPixels: -1"},
		{"negative file limit", "maxUploadFiles: -1"},
		{"unknown database", "database:\n  type: mongo"},
		{"unknown log format", "logFormat: xml"},
		{"duplicate commands", "commands:\n  - name: A\n  - name: A"},
		{"empty command name", "commands:\n  - maxWidth: 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 8082\n"), 0o600))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8082, config.Port)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	assert.NoError(t, config.Validate())
}
