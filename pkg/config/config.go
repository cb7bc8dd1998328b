/*
Package config manages the TOML config shared by the usersuggest client and dev server.
*/
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/bastiangx/usersuggest/internal/utils"
	"github.com/charmbracelet/log"
)

const appDir = "usersuggest"

// Config holds the entire config structure
type Config struct {
	Client ClientConfig `toml:"client"`
	Server ServerConfig `toml:"server"`
	CLI    CliConfig    `toml:"cli"`
}

// ClientConfig has options for the suggestion widget and its HTTP fetcher.
type ClientConfig struct {
	BaseURL    string   `toml:"base_url"`
	MinPrefix  int      `toml:"min_prefix"`
	Timeout    Duration `toml:"timeout"`
	Accept     string   `toml:"accept"`
	ResultPath string   `toml:"result_path"`
}

// ServerConfig has options for the dev user_suggest endpoint.
type ServerConfig struct {
	Listen    string `toml:"listen"`
	UsersFile string `toml:"users_file"`
	Limit     int    `toml:"limit"`
	MinPrefix int    `toml:"min_prefix"`
}

// CliConfig holds line-mode options.
type CliConfig struct {
	Prompt string `toml:"prompt"`
}

// Duration wraps time.Duration so TOML files can say timeout = "3s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/usersuggest
// 2. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", appDir)
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: ~/.config/usersuggest/config.toml (created if missing)
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}

	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Client: ClientConfig{
			BaseURL:   "http://127.0.0.1:8086/api/v1/",
			MinPrefix: 3,
			Timeout:   Duration{5 * time.Second},
			Accept:    "json",
		},
		Server: ServerConfig{
			Listen:    "127.0.0.1:8086",
			Limit:     10,
			MinPrefix: 3,
		},
		CLI: CliConfig{
			Prompt: "> ",
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file. Keys missing from the file keep their defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	unknown, err := utils.DecodeTOMLFile(configPath, config)
	if err != nil {
		return tryPartialParse(configPath)
	}
	if len(unknown) > 0 {
		log.Warnf("Unknown keys in %s: %v", configPath, unknown)
	}
	return config, nil
}

// tryPartialParse salvages the well-typed keys of a file that failed strict decoding
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	table, err := utils.DecodeTOMLTable(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.Table(table, "client"); ok {
		extractClientConfig(section, &config.Client)
	}
	if section, ok := utils.Table(table, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.Table(table, "cli"); ok {
		if val, ok := utils.TableString(section, "prompt"); ok {
			config.CLI.Prompt = val
		}
	}
	return config, nil
}

func extractClientConfig(data map[string]any, client *ClientConfig) {
	if val, ok := utils.TableString(data, "base_url"); ok {
		client.BaseURL = val
	}
	if val, ok := utils.TableInt(data, "min_prefix"); ok {
		client.MinPrefix = val
	}
	if val, ok := utils.TableDuration(data, "timeout"); ok {
		client.Timeout = Duration{val}
	}
	if val, ok := utils.TableString(data, "accept"); ok {
		client.Accept = val
	}
	if val, ok := utils.TableString(data, "result_path"); ok {
		client.ResultPath = val
	}
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.TableString(data, "listen"); ok {
		server.Listen = val
	}
	if val, ok := utils.TableString(data, "users_file"); ok {
		server.UsersFile = val
	}
	if val, ok := utils.TableInt(data, "limit"); ok {
		server.Limit = val
	}
	if val, ok := utils.TableInt(data, "min_prefix"); ok {
		server.MinPrefix = val
	}
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}
