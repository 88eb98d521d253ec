package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"timetracker/logger"

	"github.com/spf13/viper"
)

type DefaultPaths struct {
	ConfigDir     string
	LogPathApp    string
	LogPathAccess string
	DBPath        string
	LogLevel      string
}

type Configuration struct {
	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	Server struct {
		Port           string        `mapstructure:"port"`
		LogPath        string        `mapstructure:"log_path"`
		AccessLogPath  string        `mapstructure:"access_log_path"`
		RequestTimeout time.Duration `mapstructure:"request_timeout"`
		Compress       bool          `mapstructure:"compress"`
	} `mapstructure:"server"`
	Logging struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"logging"`
}

// Overrides carries command-line flag values; empty fields leave the
// file/env/default value untouched.
type Overrides struct {
	AppLogPath    string
	AccessLogPath string
	LogLevel      string
}

var AppConfig Configuration

func expandTilde(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// ExpandPath resolves a leading "~" against the user's home directory.
// The original path is returned unchanged when expansion fails.
func ExpandPath(path string) string {
	expanded, err := expandTilde(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not expand tilde in '%s': %v. Using original path.\n", path, err)
		return path
	}
	return expanded
}

// normalizeDBPath accepts both plain paths and sqlx-style "sqlite:" URLs
// such as DATABASE_URL=sqlite:./timetracker.db.
func normalizeDBPath(path string) string {
	path = strings.TrimPrefix(path, "sqlite://")
	path = strings.TrimPrefix(path, "sqlite:")
	return ExpandPath(path)
}

func GetDefaultConfigPaths() DefaultPaths {
	var paths DefaultPaths
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not get user config dir: %v. Using current directory.\n", err)
		userConfigDir = "."
	}
	userConfigDir = ExpandPath(userConfigDir)

	paths.ConfigDir = filepath.Join(userConfigDir, "timetracker")
	logDir := filepath.Join(paths.ConfigDir, "logs")

	paths.LogPathApp = filepath.Join(logDir, "app.log")
	paths.LogPathAccess = filepath.Join(logDir, "access.log")
	paths.DBPath = filepath.Join(paths.ConfigDir, "timetracker.db")
	paths.LogLevel = "INFO"
	return paths
}

// Load reads configuration from defaults, the config file and the
// environment, then applies flag overrides. It has no side effects on the
// filesystem or the loggers.
func Load(cfgFile string, overrides Overrides) (Configuration, string, error) {
	var cfg Configuration
	v := viper.New()

	defaults := GetDefaultConfigPaths()
	v.SetDefault("database.path", defaults.DBPath)
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.log_path", defaults.LogPathApp)
	v.SetDefault("server.access_log_path", defaults.LogPathAccess)
	v.SetDefault("server.request_timeout", "15s")
	v.SetDefault("server.compress", true)
	v.SetDefault("logging.level", defaults.LogLevel)

	if cfgFile != "" {
		v.SetConfigFile(ExpandPath(cfgFile))
		v.SetConfigType("yaml")
	} else {
		v.AddConfigPath(defaults.ConfigDir)
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("TIMETRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("database.path", "TIMETRACKER_DATABASE_PATH", "DATABASE_URL"); err != nil {
		return cfg, "", fmt.Errorf("binding database path env: %w", err)
	}

	configUsedMsg := "Using default/environment configuration."
	if readErr := v.ReadInConfig(); readErr == nil {
		configUsedMsg = fmt.Sprintf("Using config file: %s", v.ConfigFileUsed())
	} else if _, ok := readErr.(viper.ConfigFileNotFoundError); ok {
		// Only reachable without --config; an explicit file that is missing
		// surfaces as an *fs.PathError below.
		configUsedMsg = "No config file found. Using defaults/environment variables."
	} else {
		return cfg, "", fmt.Errorf("reading config file %s: %w", v.ConfigFileUsed(), readErr)
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, "", fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if overrides.AppLogPath != "" {
		cfg.Server.LogPath = overrides.AppLogPath
	}
	if overrides.AccessLogPath != "" {
		cfg.Server.AccessLogPath = overrides.AccessLogPath
	}
	if overrides.LogLevel != "" {
		cfg.Logging.Level = overrides.LogLevel
	}
	cfg.Logging.Level = strings.ToUpper(cfg.Logging.Level)
	cfg.Database.Path = normalizeDBPath(cfg.Database.Path)
	cfg.Server.LogPath = ExpandPath(cfg.Server.LogPath)
	cfg.Server.AccessLogPath = ExpandPath(cfg.Server.AccessLogPath)

	if cfg.Server.RequestTimeout <= 0 {
		return cfg, "", fmt.Errorf("server.request_timeout must be positive, got %s", cfg.Server.RequestTimeout)
	}
	return cfg, configUsedMsg, nil
}

// Init loads the configuration into AppConfig and re-initializes the global
// loggers with the final paths and level.
func Init(cfgFile string, overrides Overrides) error {
	cfg, configUsedMsg, err := Load(cfgFile, overrides)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: Error loading configuration: %v\n", err)
		return err
	}
	AppConfig = cfg

	if err := logger.InitGlobalLoggers(AppConfig.Server.LogPath, AppConfig.Server.AccessLogPath, AppConfig.Logging.Level); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: Failed to initialize global loggers with final config: %v\n", err)
		return fmt.Errorf("failed to initialize global loggers with final config: %w", err)
	}

	logger.Info("%s", configUsedMsg)
	if overrides != (Overrides{}) {
		logger.Info("Log path/level flags may have overridden config file/defaults.")
	}
	logger.Debug("Final AppConfig Initialized: %+v", AppConfig)
	return nil
}
