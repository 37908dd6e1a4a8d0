package app

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/shelfmark/internal/state"
	"github.com/agentstation/shelfmark/pkg/constants"
	"github.com/agentstation/shelfmark/pkg/errors"
	"github.com/agentstation/shelfmark/pkg/settings"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Vault and library access
	VaultDir  string
	StatePath string
	APIKey    string
	Endpoint  string

	// Settings is the snapshot every sync runs with, decoded from the
	// "library" section over the defaults.
	Settings settings.Settings

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (SHELFMARK_*)
// 3. .env files
// 4. Config file (~/.shelfmark.yaml or ./.shelfmark.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	return loadConfig(viper.GetViper(), "")
}

// LoadConfigFile is LoadConfig with an explicit config file.
func LoadConfigFile(path string) (*Config, error) {
	return loadConfig(viper.GetViper(), path)
}

func loadConfig(v *viper.Viper, configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v.SetEnvPrefix(constants.EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	v.SetDefault("vault", ".")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigType("yaml")
		v.SetConfigName(strings.TrimSuffix(constants.DefaultConfigFile, filepath.Ext(constants.DefaultConfigFile)))
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.NewConfigError("config", "failed to read config file", err)
		}
	}

	s := settings.Default()
	if v.IsSet("library") {
		if err := v.UnmarshalKey("library", &s); err != nil {
			return nil, errors.NewConfigError("library", "invalid library settings", err)
		}
	}
	if err := s.Normalize(); err != nil {
		return nil, err
	}

	config := &Config{
		// Global flags (may be overridden by cobra flags later)
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		VaultDir:  v.GetString("vault"),
		StatePath: v.GetString("state_path"),
		APIKey:    v.GetString("api_key"),
		Endpoint:  v.GetString("endpoint"),
		Settings:  s,

		// Logging configuration
		LogLevel:  getEnvOrDefault("LOG_LEVEL", ""),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}
	if config.StatePath == "" {
		config.StatePath = state.DefaultPath(config.VaultDir)
	}

	return config, nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// SetVault points the config at dir and derives the state path from it
// unless one was configured explicitly.
func (c *Config) SetVault(dir string) {
	if dir == "" || dir == c.VaultDir {
		return
	}
	if c.StatePath == state.DefaultPath(c.VaultDir) {
		c.StatePath = state.DefaultPath(dir)
	}
	c.VaultDir = dir
}

// loadEnvFiles loads environment variables from .env files.
func loadEnvFiles() {
	// .env.local overrides .env
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
