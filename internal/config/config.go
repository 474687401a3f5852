package config

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/0xADE/ade-dentry/internal/indexer"
)

// SocketEnv names the variable overriding the daemon socket path
const SocketEnv = "ADE_DENTRY_SOCK"

// envFile is an optional dotenv file read before the environment is processed
const envFile = "~/.config/ade/dentry.env"

var (
	globalConfig *Config
	globalErr    error
	once         sync.Once
)

// Config holds the resolved settings of the daemon and the CLI
type Config struct {
	static env
}

type env struct {
	Home       string `envconfig:"HOME"`
	SystemDir  string `envconfig:"ADE_DENTRY_SYSTEM_DIR" default:"/usr/share/applications"`
	UnixSocket string `envconfig:"ADE_DENTRY_SOCK"`
	Shadow     bool   `envconfig:"ADE_DENTRY_SHADOW" default:"false"`
	Watch      bool   `envconfig:"ADE_DENTRY_WATCH" default:"true"`
	LogLevel   string `envconfig:"ADE_DENTRY_LOG_LEVEL" default:"info"`
}

// Init loads the process-wide configuration once.
// On failure the defaults are installed and the error is returned.
func Init() error {
	once.Do(func() {
		globalConfig, globalErr = Load()
		if globalErr != nil {
			globalConfig = defaults()
		}
	})
	return globalErr
}

// Get returns the process-wide configuration, loading it on first use
func Get() *Config {
	if err := Init(); err != nil {
		log.Warn("config: falling back to defaults", "err", err)
	}
	return globalConfig
}

func defaults() *Config {
	socketPath, _ := DefaultSocketPath()
	return &Config{static: env{
		SystemDir:  indexer.DefaultSystemRoot,
		UnixSocket: socketPath,
		Watch:      true,
		LogLevel:   "info",
	}}
}

// DefaultSocketPath returns the per-user socket path used when
// ADE_DENTRY_SOCK is not set
func DefaultSocketPath() (string, error) {
	currentUser, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("failed to get current user: %w", err)
	}
	return fmt.Sprintf("/tmp/ade-%s/dentryd", currentUser.Uid), nil
}

// Load reads the optional env file and the environment into a new Config
func Load() (*Config, error) {
	if err := loadEnvFile(expandPath(envFile)); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := envconfig.Process("", &cfg.static); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	// Set default socket path if not provided
	if cfg.static.UnixSocket == "" {
		socketPath, err := DefaultSocketPath()
		if err != nil {
			return nil, err
		}
		cfg.static.UnixSocket = socketPath
	}
	cfg.static.UnixSocket = expandPath(cfg.static.UnixSocket)
	cfg.static.SystemDir = expandPath(cfg.static.SystemDir)
	cfg.static.LogLevel = strings.ToLower(cfg.static.LogLevel)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadEnvFile applies a dotenv file without overriding variables already set
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Validate checks the loaded values
func (c *Config) Validate() error {
	return validation.ValidateStruct(&c.static,
		validation.Field(&c.static.SystemDir, validation.Required),
		validation.Field(&c.static.UnixSocket, validation.Required),
		validation.Field(&c.static.LogLevel, validation.In("debug", "info", "warn", "error")),
	)
}

// Home returns the home directory, empty when HOME is unset
func (c *Config) Home() string {
	return c.static.Home
}

// SystemDir returns the system application directory
func (c *Config) SystemDir() string {
	return c.static.SystemDir
}

// UserDir returns the user application directory, empty when there is no home
func (c *Config) UserDir() string {
	return indexer.UserRoot(c.static.Home)
}

// UnixSocket returns the Unix socket path
func (c *Config) UnixSocket() string {
	return c.static.UnixSocket
}

// Shadow reports whether user files override system files with the same name
func (c *Config) Shadow() bool {
	return c.static.Shadow
}

// Watch reports whether the daemon watches the search roots
func (c *Config) Watch() bool {
	return c.static.Watch
}

// LogLevel returns the configured log level
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.static.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// Scanner builds a scanner for the configured roots
func (c *Config) Scanner() *indexer.Scanner {
	s := indexer.NewScanner(c.SystemDir(), c.Home())
	s.Shadow = c.Shadow()
	return s
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
