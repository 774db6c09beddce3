package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mirrorkit/mirrorkit/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Upper bounds for the per-operation timeouts. Larger configured values are
// clamped so a slow source can never stall a status query.
const (
	MaxProbeTimeout = 5 * time.Second
	MaxGitTimeout   = 10 * time.Second
	MaxTestTimeout  = 10 * time.Second
)

// User store selection values.
const (
	UserStoreAuto = "auto"
	UserStoreFile = "file"
)

// Settings is the typed view of the configuration keys.
type Settings struct {
	Catalog      string        `mapstructure:"catalog"`
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
	TestTimeout  time.Duration `mapstructure:"test_timeout"`
	GitTimeout   time.Duration `mapstructure:"git_timeout"`
	GitBinary    string        `mapstructure:"git_binary"`
	RewriteFrom  []string      `mapstructure:"rewrite_from"`
	UserStore    string        `mapstructure:"user_store"`
	LogLevel     string        `mapstructure:"log_level"`
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Settings {
	return Settings{
		ProbeTimeout: MaxProbeTimeout,
		TestTimeout:  MaxTestTimeout,
		GitTimeout:   MaxGitTimeout,
		GitBinary:    "git",
		RewriteFrom:  []string{"https://github.com"},
		UserStore:    UserStoreAuto,
		LogLevel:     "warn",
	}
}

// Dir returns the path to the config directory (~/.mirrorkit/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.mirrorkit/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	d := Defaults()
	viper.SetDefault("probe_timeout", d.ProbeTimeout)
	viper.SetDefault("test_timeout", d.TestTimeout)
	viper.SetDefault("git_timeout", d.GitTimeout)
	viper.SetDefault("git_binary", d.GitBinary)
	viper.SetDefault("rewrite_from", d.RewriteFrom)
	viper.SetDefault("user_store", d.UserStore)
	viper.SetDefault("log_level", d.LogLevel)

	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.AutomaticEnv()

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Current returns the loaded settings with timeouts clamped to their bounds.
func Current() (Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return Defaults(), fmt.Errorf("decoding settings: %w", err)
	}
	return s.normalize(), nil
}

func (s Settings) normalize() Settings {
	d := Defaults()
	s.ProbeTimeout = clamp(s.ProbeTimeout, d.ProbeTimeout, MaxProbeTimeout)
	s.GitTimeout = clamp(s.GitTimeout, d.GitTimeout, MaxGitTimeout)
	s.TestTimeout = clamp(s.TestTimeout, d.TestTimeout, MaxTestTimeout)
	if strings.TrimSpace(s.GitBinary) == "" {
		s.GitBinary = d.GitBinary
	}

	var from []string
	for _, u := range s.RewriteFrom {
		for _, part := range strings.Split(u, ",") {
			if part = strings.TrimRight(strings.TrimSpace(part), "/"); part != "" {
				from = append(from, part)
			}
		}
	}
	if len(from) == 0 {
		from = d.RewriteFrom
	}
	s.RewriteFrom = from

	switch s.UserStore {
	case UserStoreAuto, UserStoreFile:
	default:
		s.UserStore = d.UserStore
	}
	if s.LogLevel == "" {
		s.LogLevel = d.LogLevel
	}
	return s
}

func clamp(v, def, max time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	if v > max {
		return max
	}
	return v
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
