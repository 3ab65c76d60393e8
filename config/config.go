package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/ini.v1"

	"github.com/jaliph/qrrapido/controller"
	"github.com/jaliph/qrrapido/qr"
	"github.com/jaliph/qrrapido/utils"
)

// DefaultPath is the config file read when no path is given.
const DefaultPath = "config.ini"

// Config holds application configuration
type Config struct {
	// API settings
	APIPort string

	// Log settings
	LogLevel string

	// QR defaults for new sessions
	DefaultSize int
	ColorDark   string
	ColorLight  string

	// Session settings (in minutes)
	SessionExpiryMinutes  int
	SessionCleanupMinutes int

	// Database settings
	HistoryPath   string // empty disables the local history
	MSSQLServer   string // empty disables the MSSQL mirror
	MSSQLDatabase string
	MSSQLUsername string
	MSSQLPassword string

	// Security settings
	CSRFKey       string // 32 bytes; random per process when empty
	SecureCookies bool
}

// LoadConfig loads configuration from defaults, environment variables and the
// ini file at path, in that order of increasing precedence. A missing file is
// not an error.
func LoadConfig(path string) (*Config, error) {
	config := &Config{
		APIPort:  getEnv("API_PORT", ":8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DefaultSize: getEnvInt("QR_DEFAULT_SIZE", int(controller.SizeMedium)),
		ColorDark:   getEnv("QR_COLOR_DARK", qr.DefaultColorDark),
		ColorLight:  getEnv("QR_COLOR_LIGHT", qr.DefaultColorLight),

		SessionExpiryMinutes:  getEnvInt("SESSION_EXPIRY_MINUTES", 60),
		SessionCleanupMinutes: getEnvInt("SESSION_CLEANUP_MINUTES", 5),

		HistoryPath:   getEnv("HISTORY_PATH", "db/history.db"),
		MSSQLServer:   getEnv("MSSQL_SERVER", ""),
		MSSQLDatabase: getEnv("MSSQL_DATABASE", "qrrapido"),
		MSSQLUsername: getEnv("MSSQL_USERNAME", "sa"),
		MSSQLPassword: getEnv("MSSQL_PASSWORD", ""),

		CSRFKey:       getEnv("CSRF_KEY", ""),
		SecureCookies: getEnvBool("SECURE_COOKIES", false),
	}

	if path == "" {
		path = DefaultPath
	}
	if err := loadFromINI(config, path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		utils.L().Debug("No config file, using environment variables or defaults", "path", path)
	}

	config.applyFallbacks()
	return config, nil
}

// loadFromINI loads configuration from an ini file
func loadFromINI(config *Config, path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	// Colors are written as #rrggbb, so only " #" starts an inline comment.
	cfg, err := ini.LoadSources(ini.LoadOptions{SpaceBeforeInlineComment: true}, path)
	if err != nil {
		return err
	}

	// API section
	if port := cfg.Section("api").Key("port").String(); port != "" {
		config.APIPort = port
	}

	// Log section
	if level := cfg.Section("log").Key("level").String(); level != "" {
		config.LogLevel = level
	}

	// QR section
	qrSection := cfg.Section("qr")
	if size, err := qrSection.Key("default_size").Int(); err == nil {
		config.DefaultSize = size
	}
	if dark := qrSection.Key("color_dark").String(); dark != "" {
		config.ColorDark = dark
	}
	if light := qrSection.Key("color_light").String(); light != "" {
		config.ColorLight = light
	}

	// Session section
	sessionSection := cfg.Section("session")
	if expiry, err := sessionSection.Key("expiry_minutes").Int(); err == nil {
		config.SessionExpiryMinutes = expiry
	}
	if cleanup, err := sessionSection.Key("cleanup_minutes").Int(); err == nil {
		config.SessionCleanupMinutes = cleanup
	}

	// Database section
	dbSection := cfg.Section("database")
	if dbSection.HasKey("history_path") {
		config.HistoryPath = dbSection.Key("history_path").String()
	}
	if server := dbSection.Key("mssql_server").String(); server != "" {
		config.MSSQLServer = server
	}
	if database := dbSection.Key("mssql_database").String(); database != "" {
		config.MSSQLDatabase = database
	}
	if username := dbSection.Key("mssql_username").String(); username != "" {
		config.MSSQLUsername = username
	}
	if password := dbSection.Key("mssql_password").String(); password != "" {
		config.MSSQLPassword = password
	}

	// Security section
	securitySection := cfg.Section("security")
	if key := securitySection.Key("csrf_key").String(); key != "" {
		config.CSRFKey = key
	}
	if secure, err := securitySection.Key("secure_cookies").Bool(); err == nil {
		config.SecureCookies = secure
	}

	return nil
}

// applyFallbacks replaces unusable values with defaults, logging a warning for each.
func (c *Config) applyFallbacks() {
	if _, err := controller.ParseSize(c.DefaultSize); err != nil {
		utils.L().Warn("Invalid default size, using 300", "size", c.DefaultSize)
		c.DefaultSize = int(controller.SizeMedium)
	}
	if _, err := qr.ParseColor(c.ColorDark); err != nil {
		utils.L().Warn("Invalid dark color, using default", "color", c.ColorDark)
		c.ColorDark = qr.DefaultColorDark
	}
	if _, err := qr.ParseColor(c.ColorLight); err != nil {
		utils.L().Warn("Invalid light color, using default", "color", c.ColorLight)
		c.ColorLight = qr.DefaultColorLight
	}
	if c.SessionExpiryMinutes <= 0 {
		c.SessionExpiryMinutes = 60
	}
	if c.SessionCleanupMinutes <= 0 {
		c.SessionCleanupMinutes = 5
	}
}

// Validate reports configuration values that cannot be used as given.
func (c *Config) Validate() error {
	var errs []error
	if c.APIPort == "" {
		errs = append(errs, errors.New("api port is empty"))
	}
	if c.CSRFKey != "" && len(c.CSRFKey) != 32 {
		errs = append(errs, fmt.Errorf("csrf key must be 32 bytes, got %d", len(c.CSRFKey)))
	}
	if c.MSSQLServer != "" && c.MSSQLDatabase == "" {
		errs = append(errs, errors.New("mssql database is required when mssql server is set"))
	}
	return errors.Join(errs...)
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
