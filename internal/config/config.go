// Package config provides configuration management for oops.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"oops/internal/corrector"
	"oops/internal/history"
	"oops/internal/logger"
	"oops/internal/patterns"
)

// Config holds all configuration for the application
type Config struct {
	Correction CorrectionConfig `mapstructure:"correction" yaml:"correction"`
	Patterns   PatternsConfig   `mapstructure:"patterns" yaml:"patterns"`
	History    HistoryConfig    `mapstructure:"history" yaml:"history"`
	Database   DatabaseConfig   `mapstructure:"database" yaml:"database"`
	Shell      ShellConfig      `mapstructure:"shell" yaml:"shell"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`
}

// CorrectionConfig holds similarity thresholds
type CorrectionConfig struct {
	Threshold         float64  `mapstructure:"threshold" yaml:"threshold"`
	FlagThreshold     float64  `mapstructure:"flag_threshold" yaml:"flag_threshold"`
	ArgumentThreshold float64  `mapstructure:"argument_threshold" yaml:"argument_threshold"`
	LenientThreshold  float64  `mapstructure:"lenient_threshold" yaml:"lenient_threshold"`
	LenientCommands   []string `mapstructure:"lenient_commands" yaml:"lenient_commands"`
	ParallelThreshold int      `mapstructure:"parallel_threshold" yaml:"parallel_threshold"`
	Workers           int      `mapstructure:"workers" yaml:"workers"`
}

// PatternsConfig bounds the learned vocabulary
type PatternsConfig struct {
	MaxArgs         int      `mapstructure:"max_args" yaml:"max_args"`
	MaxFlags        int      `mapstructure:"max_flags" yaml:"max_flags"`
	UsageThreshold  int      `mapstructure:"usage_threshold" yaml:"usage_threshold"`
	IgnoredCommands []string `mapstructure:"ignored_commands" yaml:"ignored_commands"`
}

// HistoryConfig holds history settings
type HistoryConfig struct {
	Enabled    bool `mapstructure:"enabled" yaml:"enabled"`
	MaxEntries int  `mapstructure:"max_entries" yaml:"max_entries"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// ShellConfig holds shell integration settings
type ShellConfig struct {
	Name    string   `mapstructure:"name" yaml:"name"`
	RCFiles []string `mapstructure:"rc_files" yaml:"rc_files"`
	// Alias names the shell function that reruns the last command corrected.
	Alias string `mapstructure:"alias" yaml:"alias"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	File       string `mapstructure:"file" yaml:"file"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`
	Console    bool   `mapstructure:"console" yaml:"console"`
}

// ErrUnknownKey is returned by Set and Value for keys outside the schema.
var ErrUnknownKey = errors.New("unknown configuration key")

var (
	globalConfig *Config
	configPath   string
	v            = viper.New()
)

// Default returns the built-in configuration.
func Default() Config {
	pc := patterns.DefaultConfig()
	return Config{
		Correction: CorrectionConfig{
			Threshold:         corrector.DefaultThreshold,
			FlagThreshold:     corrector.DefaultFlagThreshold,
			ArgumentThreshold: pc.ArgumentThreshold,
			LenientThreshold:  pc.LenientThreshold,
			LenientCommands:   pc.Lenient,
			ParallelThreshold: corrector.DefaultConfig().ParallelThreshold,
		},
		Patterns: PatternsConfig{
			MaxArgs:         pc.MaxArgs,
			MaxFlags:        pc.MaxFlags,
			UsageThreshold:  int(pc.UsageThreshold),
			IgnoredCommands: pc.Ignored,
		},
		History: HistoryConfig{
			Enabled:    true,
			MaxEntries: history.MaxHistorySize,
		},
		Database: DatabaseConfig{
			Path: "~/.oops/oops.db",
		},
		Shell: ShellConfig{
			Alias: "oo",
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       "~/.oops/logs/oops.log",
			MaxSize:    10,
			MaxBackups: 5,
			MaxAge:     30,
		},
	}
}

// Load loads the configuration from file and environment variables,
// writing a default file first if none exists.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	configPath = path

	v = viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix("OOPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := createDefaultConfig(path); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read created config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	expandPaths(&cfg)
	if cfg.Shell.Name == "" {
		cfg.Shell.Name = filepath.Base(os.Getenv("SHELL"))
	}

	globalConfig = &cfg
	return &cfg, nil
}

// Get returns the loaded configuration, loading it on first use. The
// built-in defaults are returned if loading fails.
func Get() *Config {
	if globalConfig == nil {
		cfg, err := Load("")
		if err != nil {
			def := Default()
			expandPaths(&def)
			return &def
		}
		return cfg
	}
	return globalConfig
}

// Path returns the path of the loaded configuration file.
func Path() string {
	if configPath == "" {
		return DefaultPath()
	}
	return configPath
}

// Value returns the effective value of a dotted key.
func Value(key string) (any, error) {
	if !isKnownKey(key) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return v.Get(key), nil
}

// Keys returns every configuration key, sorted.
func Keys() []string {
	keys := v.AllKeys()
	slices.Sort(keys)
	return keys
}

// Set updates one dotted key, writes the file and reloads.
func Set(key string, value any) error {
	if !isKnownKey(key) {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	v.Set(key, value)
	if err := v.WriteConfigAs(Path()); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	_, err := Load(Path())
	return err
}

// ParseValue converts raw to the type of the key's current value, so
// "0.7" sets a threshold and "git,hg" a list.
func ParseValue(key, raw string) (any, error) {
	cur, err := Value(key)
	if err != nil {
		return nil, err
	}
	switch cur.(type) {
	case bool:
		return strconv.ParseBool(raw)
	case int, int64:
		return strconv.Atoi(raw)
	case float64:
		return strconv.ParseFloat(raw, 64)
	case []string, []any:
		var items []string
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return items, nil
	default:
		return raw, nil
	}
}

// EngineConfig maps the configuration onto the correction engine.
func (c *Config) EngineConfig() corrector.Config {
	ec := corrector.DefaultConfig()
	ec.Threshold = c.Correction.Threshold
	ec.FlagThreshold = c.Correction.FlagThreshold
	ec.ParallelThreshold = c.Correction.ParallelThreshold
	if c.Correction.Workers > 0 {
		ec.Workers = c.Correction.Workers
	}
	ec.HistorySize = c.History.MaxEntries
	ec.HistoryEnabled = c.History.Enabled
	ec.Patterns = patterns.Config{
		MaxArgs:           c.Patterns.MaxArgs,
		MaxFlags:          c.Patterns.MaxFlags,
		UsageThreshold:    uint64(max(c.Patterns.UsageThreshold, 0)),
		ArgumentThreshold: c.Correction.ArgumentThreshold,
		LenientThreshold:  c.Correction.LenientThreshold,
		Ignored:           c.Patterns.IgnoredCommands,
		Lenient:           c.Correction.LenientCommands,
	}
	return ec
}

// LoggerConfig maps the logging section onto the logger.
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:      c.Logging.Level,
		File:       c.Logging.File,
		MaxSize:    c.Logging.MaxSize,
		MaxBackups: c.Logging.MaxBackups,
		MaxAge:     c.Logging.MaxAge,
		Console:    c.Logging.Console,
	}
}

func setDefaults(v *viper.Viper) {
	def := Default()

	v.SetDefault("correction.threshold", def.Correction.Threshold)
	v.SetDefault("correction.flag_threshold", def.Correction.FlagThreshold)
	v.SetDefault("correction.argument_threshold", def.Correction.ArgumentThreshold)
	v.SetDefault("correction.lenient_threshold", def.Correction.LenientThreshold)
	v.SetDefault("correction.lenient_commands", def.Correction.LenientCommands)
	v.SetDefault("correction.parallel_threshold", def.Correction.ParallelThreshold)
	v.SetDefault("correction.workers", def.Correction.Workers)

	v.SetDefault("patterns.max_args", def.Patterns.MaxArgs)
	v.SetDefault("patterns.max_flags", def.Patterns.MaxFlags)
	v.SetDefault("patterns.usage_threshold", def.Patterns.UsageThreshold)
	v.SetDefault("patterns.ignored_commands", def.Patterns.IgnoredCommands)

	v.SetDefault("history.enabled", def.History.Enabled)
	v.SetDefault("history.max_entries", def.History.MaxEntries)

	v.SetDefault("database.path", def.Database.Path)

	v.SetDefault("shell.name", def.Shell.Name)
	v.SetDefault("shell.rc_files", []string{})
	v.SetDefault("shell.alias", def.Shell.Alias)

	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.file", def.Logging.File)
	v.SetDefault("logging.max_size", def.Logging.MaxSize)
	v.SetDefault("logging.max_backups", def.Logging.MaxBackups)
	v.SetDefault("logging.max_age", def.Logging.MaxAge)
	v.SetDefault("logging.console", def.Logging.Console)
}

func isKnownKey(key string) bool {
	return slices.Contains(v.AllKeys(), strings.ToLower(key))
}

func createDefaultConfig(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	header := "# oops - shell command correction\n# Default configuration file\n\n"
	return os.WriteFile(path, append([]byte(header), data...), 0644)
}

func expandPaths(cfg *Config) {
	homeDir, _ := os.UserHomeDir()

	if cfg.Database.Path != "" {
		cfg.Database.Path = expandPath(cfg.Database.Path, homeDir)
	}
	if cfg.Logging.File != "" {
		cfg.Logging.File = expandPath(cfg.Logging.File, homeDir)
	}
	for i, f := range cfg.Shell.RCFiles {
		cfg.Shell.RCFiles[i] = expandPath(f, homeDir)
	}
}

// expandPath expands ~ and environment variables in a path
func expandPath(path, homeDir string) string {
	if len(path) > 0 && path[0] == '~' {
		path = filepath.Join(homeDir, path[1:])
	}
	return os.ExpandEnv(path)
}

// DefaultPath returns the default configuration file path.
func DefaultPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "oops", "config.yaml")
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".oops.yaml"
	}
	return filepath.Join(homeDir, ".config", "oops", "config.yaml")
}
