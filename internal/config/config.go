// Package config loads and saves the gigit repository configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jayteealao/gigit/internal/classify"
	"github.com/jayteealao/gigit/internal/errors"
	"github.com/jayteealao/gigit/internal/tree"
	"github.com/spf13/viper"
)

const (
	// DefaultFile is the configuration file looked up in the working directory.
	DefaultFile = "gigit_config.json"

	// EnvPrefix prefixes environment overrides, e.g. GIGIT_BACKEND_REPO_PATH.
	EnvPrefix = "GIGIT"

	// DefaultDataDir holds the lock and journal files, next to the config file.
	DefaultDataDir = ".gigit"
)

// Config is the persisted repository configuration.
type Config struct {
	BackendRepoPath  string `mapstructure:"backend_repo_path"`
	FrontendRepoPath string `mapstructure:"frontend_repo_path"`

	// Remote is used when a push needs an upstream. Optional; empty means
	// the dispatcher's default remote.
	Remote string `mapstructure:"remote"`

	// Classifier selects the output matcher by version. Optional.
	Classifier string `mapstructure:"classifier"`
}

// NotFoundError reports a missing configuration file.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Configuration file %s not found. Please run 'gigit init' to set up the repository paths.", e.Path)
}

func (e *NotFoundError) Unwrap() error {
	return errors.ErrConfigNotFound
}

// Pair returns the configured trees.
func (c *Config) Pair() tree.Pair {
	return tree.NewPair(c.BackendRepoPath, c.FrontendRepoPath)
}

// Matcher returns the classifier matcher the configuration selects.
func (c *Config) Matcher() (*classify.Matcher, error) {
	if c.Classifier == "" {
		m := classify.Default
		return &m, nil
	}
	m, ok := classify.Lookup(c.Classifier)
	if !ok {
		return nil, fmt.Errorf("%w: unknown classifier %q", errors.ErrConfigInvalid, c.Classifier)
	}
	return &m, nil
}

// Load reads the configuration at path. Environment variables with the
// GIGIT prefix override values from the file.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrConfigInvalid, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrConfigInvalid, err)
	}

	if cfg.BackendRepoPath == "" {
		return nil, fmt.Errorf("%w: backend_repo_path is not set in %s", errors.ErrConfigInvalid, path)
	}
	if cfg.FrontendRepoPath == "" {
		return nil, fmt.Errorf("%w: frontend_repo_path is not set in %s", errors.ErrConfigInvalid, path)
	}
	if _, err := cfg.Matcher(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to path as JSON, replacing any existing file.
func Save(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigType("json")
	v.Set("backend_repo_path", cfg.BackendRepoPath)
	v.Set("frontend_repo_path", cfg.FrontendRepoPath)
	if cfg.Remote != "" {
		v.Set("remote", cfg.Remote)
	}
	if cfg.Classifier != "" {
		v.Set("classifier", cfg.Classifier)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DataDir returns the data directory used alongside the config file at path.
func DataDir(path string) string {
	return filepath.Join(filepath.Dir(path), DefaultDataDir)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	// AutomaticEnv only covers keys viper already knows about.
	for _, key := range []string{"backend_repo_path", "frontend_repo_path", "remote", "classifier"} {
		_ = v.BindEnv(key)
	}
	return v
}
