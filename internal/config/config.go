package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	appDir    = ".go_paycalc"
	envPrefix = "GOPAYCALC"
)

var (
	configData Config
	v          *viper.Viper
)

// Config holds all configuration settings.
type Config struct {
	// Server configuration (anet TCP endpoint)
	Server struct {
		Host string
		Port int
	}
	// HTTP configuration
	HTTP struct {
		Addr string
	}
	// Logging configuration
	Log struct {
		Level  string
		Format string
	}
	// Calculator defaults
	Calculator struct {
		DecimalizationTable string `mapstructure:"decimalization_table"`
		ValidationData      string `mapstructure:"validation_data"`
	}
}

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"log-level":            "log.level",
	"log-format":           "log.format",
	"host":                 "server.host",
	"port":                 "server.port",
	"http-addr":            "http.addr",
	"decimalization-table": "calculator.decimalization_table",
	"validation-data":      "calculator.validation_data",
}

// Initialize sets up the configuration system. cfgFile overrides the search path; flags
// found in flags override file and environment values.
func Initialize(cfgFile string, flags *pflag.FlagSet) error {
	v = viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config") // name of config file (without extension)
		v.SetConfigType("yaml")   // config file type
		v.AddConfigPath(".")      // optionally look for config in working directory
		v.AddConfigPath(filepath.Join("$HOME", appDir))
		v.AddConfigPath("/etc/go_paycalc/")

		// Create config file if it doesn't exist
		if err := ensureConfig(); err != nil {
			return fmt.Errorf("error creating config file: %w", err)
		}
	}

	setDefaults()

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if flags != nil {
		for flag, key := range flagKeys {
			if f := flags.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return fmt.Errorf("failed to bind flag %s: %w", flag, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// It's okay if we can't find a config file, we'll use defaults
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	configData = Config{}
	if err := v.Unmarshal(&configData); err != nil {
		return fmt.Errorf("unable to decode into config struct: %w", err)
	}

	return nil
}

// setDefaults sets default values for all configuration options.
func setDefaults() {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 1500)

	v.SetDefault("http.addr", "localhost:8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "human")

	v.SetDefault("calculator.decimalization_table", "0123456789012345")
	v.SetDefault("calculator.validation_data", "")
}

const defaultConfig = `# GO PAYCALC Configuration File
server:
  host: localhost
  port: 1500

http:
  addr: localhost:8080

log:
  level: info
  format: human

calculator:
  decimalization_table: "0123456789012345"
  # start,length,pad; empty selects the rightmost 12 PAN digits before the check digit
  validation_data: ""
`

// ensureConfig creates a default config file if none exists.
func ensureConfig() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	dir := filepath.Join(home, appDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	configFile := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err := os.WriteFile(configFile, []byte(defaultConfig), 0o644); err != nil {
			return err
		}
	}

	return nil
}

// Get returns the current configuration.
func Get() *Config {
	return &configData
}

// GetViper returns the viper instance.
func GetViper() *viper.Viper {
	return v
}

// Address returns the TCP listen address host:port.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Debug reports whether debug logging is configured.
func (c *Config) Debug() bool {
	return strings.EqualFold(strings.TrimSpace(c.Log.Level), "debug")
}

// Human reports whether console formatted logging is configured.
func (c *Config) Human() bool {
	return strings.EqualFold(strings.TrimSpace(c.Log.Format), "human")
}
