package core

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/jo-hoe/pixweb/internal/backend/commandstructure"
	"github.com/jo-hoe/pixweb/internal/backend/database"
	"gopkg.in/yaml.v3"
)

const envPrefix = "PIXWEB_"

type Database struct {
	Type             string `yaml:"type"`
	ConnectionString string `yaml:"connectionString"`
	// KeyPrefix namespaces keys on shared Redis instances. Ignored by SQLite.
	KeyPrefix string `yaml:"keyPrefix"`
}

type ServiceConfig struct {
	Port           int    `yaml:"port"`
	PaymentAppPort int    `yaml:"paymentAppPort"`
	PaymentAppURL  string `yaml:"paymentAppUrl"`
	Currency       string `yaml:"currency"`
	// PaymentCurrency is used for the payment app's mock catalog.
	PaymentCurrency string        `yaml:"paymentCurrency"`
	PaymentDelay    time.Duration `yaml:"paymentDelay"`
	// PaymentRetention is how long idle and completed checkout sessions are
	// kept in memory.
	PaymentRetention time.Duration `yaml:"paymentRetention"`
	MaxUploadBytes   int64         `yaml:"maxUploadBytes"`
	// MaxUploadPixels bounds width*height of an upload before it is decoded.
	MaxUploadPixels int64  `yaml:"maxUploadPixels"`
	MaxUploadFiles  int    `yaml:"maxUploadFiles"`
	ThumbnailWidth  int    `yaml:"thumbnailWidth"`
	LogLevel        string `yaml:"logLevel"`
	LogFormat       string `yaml:"logFormat"`

	Database Database                         `yaml:"database"`
	Commands []commandstructure.CommandConfig `yaml:"commands"`
}

// envOverrides lists the settings that can be changed per deployment without
// editing the YAML file. Fields are prefilled from the file so unset
// variables keep the file's values.
type envOverrides struct {
	Port              int           `env:"PORT"`
	PaymentAppPort    int           `env:"PAYMENT_APP_PORT"`
	PaymentAppURL     string        `env:"PAYMENT_APP_URL"`
	Currency          string        `env:"CURRENCY"`
	PaymentCurrency   string        `env:"PAYMENT_CURRENCY"`
	PaymentDelay      time.Duration `env:"PAYMENT_DELAY"`
	PaymentRetention  time.Duration `env:"PAYMENT_RETENTION"`
	MaxUploadBytes    int64         `env:"MAX_UPLOAD_BYTES"`
	MaxUploadPixels   int64         `env:"MAX_UPLOAD_PIXELS"`
	MaxUploadFiles    int           `env:"MAX_UPLOAD_FILES"`
	LogLevel          string        `env:"LOG_LEVEL"`
	LogFormat         string        `env:"LOG_FORMAT"`
	DatabaseType      string        `env:"DATABASE_TYPE"`
	DatabaseConn      string        `env:"DATABASE_CONNECTION_STRING"`
	DatabaseKeyPrefix string        `env:"DATABASE_KEY_PREFIX"`
}

// DefaultConfig returns a configuration that runs without a config file:
// in-memory SQLite and the standard preview pipeline.
func DefaultConfig() *ServiceConfig {
	config := &ServiceConfig{}
	config.applyDefaults()
	return config
}

// LoadConfig loads configuration from the specified YAML file, then applies
// PIXWEB_* environment overrides and defaults.
func LoadConfig(configPath string) (*ServiceConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	config, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	return config, nil
}

// ParseConfig parses YAML configuration data.
func ParseConfig(data []byte) (*ServiceConfig, error) {
	var config ServiceConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

func (c *ServiceConfig) applyEnv() error {
	overrides := envOverrides{
		Port:              c.Port,
		PaymentAppPort:    c.PaymentAppPort,
		PaymentAppURL:     c.PaymentAppURL,
		Currency:          c.Currency,
		PaymentCurrency:   c.PaymentCurrency,
		PaymentDelay:      c.PaymentDelay,
		PaymentRetention:  c.PaymentRetention,
		MaxUploadBytes:    c.MaxUploadBytes,
		MaxUploadPixels:   c.MaxUploadPixels,
		MaxUploadFiles:    c.MaxUploadFiles,
		LogLevel:          c.LogLevel,
		LogFormat:         c.LogFormat,
		DatabaseType:      c.Database.Type,
		DatabaseConn:      c.Database.ConnectionString,
		DatabaseKeyPrefix: c.Database.KeyPrefix,
	}
	if err := env.ParseWithOptions(&overrides, env.Options{Prefix: envPrefix}); err != nil {
		return fmt.Errorf("failed to parse environment overrides: %w", err)
	}

	c.Port = overrides.Port
	c.PaymentAppPort = overrides.PaymentAppPort
	c.PaymentAppURL = overrides.PaymentAppURL
	c.Currency = overrides.Currency
	c.PaymentCurrency = overrides.PaymentCurrency
	c.PaymentDelay = overrides.PaymentDelay
	c.PaymentRetention = overrides.PaymentRetention
	c.MaxUploadBytes = overrides.MaxUploadBytes
	c.MaxUploadPixels = overrides.MaxUploadPixels
	c.MaxUploadFiles = overrides.MaxUploadFiles
	c.LogLevel = overrides.LogLevel
	c.LogFormat = overrides.LogFormat
	c.Database.Type = overrides.DatabaseType
	c.Database.ConnectionString = overrides.DatabaseConn
	c.Database.KeyPrefix = overrides.DatabaseKeyPrefix
	return nil
}

func (c *ServiceConfig) applyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.PaymentAppPort == 0 {
		c.PaymentAppPort = 3001
	}
	if c.PaymentAppURL == "" {
		c.PaymentAppURL = fmt.Sprintf("http://localhost:%d", c.PaymentAppPort)
	}
	c.PaymentAppURL = strings.TrimRight(c.PaymentAppURL, "/")
	if c.Currency == "" {
		c.Currency = "USD"
	}
	if c.PaymentCurrency == "" {
		c.PaymentCurrency = "KES"
	}
	c.Currency = strings.ToUpper(c.Currency)
	c.PaymentCurrency = strings.ToUpper(c.PaymentCurrency)
	if c.PaymentDelay == 0 {
		c.PaymentDelay = 2 * time.Second
	}
	if c.PaymentRetention == 0 {
		c.PaymentRetention = 15 * time.Minute
	}
	if c.MaxUploadBytes == 0 {
		c.MaxUploadBytes = 10 << 20
	}
	if c.MaxUploadPixels == 0 {
		c.MaxUploadPixels = 40_000_000
	}
	if c.MaxUploadFiles == 0 {
		c.MaxUploadFiles = 20
	}
	if c.ThumbnailWidth == 0 {
		c.ThumbnailWidth = 480
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	if c.Database.Type == "" {
		c.Database.Type = database.TypeSQLite
	}
	if c.Database.Type == database.TypeSQLite && c.Database.ConnectionString == "" {
		c.Database.ConnectionString = ":memory:"
	}
	if c.Database.Type == database.TypeRedis && c.Database.KeyPrefix == "" {
		c.Database.KeyPrefix = "pixweb:"
	}
	if len(c.Commands) == 0 {
		c.Commands = []commandstructure.CommandConfig{
			{Name: "PngConverterCommand", Params: map[string]any{
				"svgFallbackWidth":  c.ThumbnailWidth,
				"svgFallbackHeight": c.ThumbnailWidth,
			}},
			{Name: "ThumbnailCommand", Params: map[string]any{"maxWidth": c.ThumbnailWidth}},
		}
	}
}

// Validate checks settings that defaults cannot repair.
func (c *ServiceConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	if c.PaymentAppPort < 1 || c.PaymentAppPort > 65535 {
		return fmt.Errorf("paymentAppPort out of range: %d", c.PaymentAppPort)
	}
	if c.PaymentDelay < 0 {
		return fmt.Errorf("paymentDelay must be positive, got %s", c.PaymentDelay)
	}
	if c.PaymentRetention < 0 {
		return fmt.Errorf("paymentRetention must be positive, got %s", c.PaymentRetention)
	}
	if c.MaxUploadBytes < 0 {
		return fmt.Errorf("maxUploadBytes must be positive, got %d", c.MaxUploadBytes)
	}
	if c.MaxUploadPixels < 0 {
		return fmt.Errorf("maxUploadPixels must be positive, got %d", c.MaxUploadPixels)
	}
	if c.MaxUploadFiles < 0 {
		return fmt.Errorf("maxUploadFiles must be positive, got %d", c.MaxUploadFiles)
	}
	if c.ThumbnailWidth < 0 {
		return fmt.Errorf("thumbnailWidth must be positive, got %d", c.ThumbnailWidth)
	}
	switch c.Database.Type {
	case database.TypeSQLite, database.TypeRedis:
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format: %s", c.LogFormat)
	}
	return validateCommands(c.Commands)
}

// validateCommands ensures all command configurations have required fields
func validateCommands(commands []commandstructure.CommandConfig) error {
	seenNames := make(map[string]bool)

	for i, cmd := range commands {
		if cmd.Name == "" {
			return fmt.Errorf("command at index %d has empty name", i)
		}
		if seenNames[cmd.Name] {
			return fmt.Errorf("duplicate command name: %s", cmd.Name)
		}
		seenNames[cmd.Name] = true
	}

	return nil
}
