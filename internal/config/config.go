// Package config provides configuration management for netintent.
//
// The config file describes where intended configuration lives (templates
// and the content repository), which devices exist and how to reach them.
// Secrets are never stored in the file: it names the environment variables
// holding them.
//
// Config file locations (priority order):
//  1. $NETINTENT_CONFIG
//  2. ./netintent.yaml
//  3. $XDG_CONFIG_HOME/netintent/config.yaml
//  4. ~/.config/netintent/config.yaml
//  5. /etc/netintent/config.yaml
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"netintent/internal/codec"
	"netintent/internal/domain"
)

// Defaults
const (
	DefaultBranch         = "main"
	DefaultPrefix         = "netbox-data-source"
	DefaultSourceSystem   = "NetBox"
	DefaultTokenEnv       = "NETINTENT_REPO_TOKEN"
	DefaultTemplatesDir   = "templates"
	DefaultRequestTimeout = 30 * time.Second
	DefaultConnectTimeout = 10 * time.Second
	DefaultCommandTimeout = 30 * time.Second
	DefaultMaxConcurrent  = 5
	DefaultLogLevel       = "info"
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path. Relative file paths in the
// config are taken relative to the config file.
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, path, err
	}

	cfg.Templates.Dir = resolvePath(path, cfg.Templates.Dir)
	cfg.Inventory.Ansible = resolvePath(path, cfg.Inventory.Ansible)
	cfg.Credentials.PrivateKeyPath = resolvePath(path, cfg.Credentials.PrivateKeyPath)
	cfg.Credentials.KnownHosts = resolvePath(path, cfg.Credentials.KnownHosts)
	cfg.Journal.Path = resolvePath(path, cfg.Journal.Path)

	return cfg, path, nil
}

// Parse decodes config YAML and fills in defaults
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// DefaultConfig returns the configuration used when no file is found
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Repository.Branch == "" {
		c.Repository.Branch = DefaultBranch
	}
	if c.Repository.Prefix == "" {
		c.Repository.Prefix = DefaultPrefix
	}
	if c.Repository.SourceSystem == "" {
		c.Repository.SourceSystem = DefaultSourceSystem
	}
	if c.Repository.TokenEnv == "" {
		c.Repository.TokenEnv = DefaultTokenEnv
	}
	if c.Repository.Timeout == 0 {
		c.Repository.Timeout = Duration(DefaultRequestTimeout)
	}
	if c.Templates.Dir == "" {
		c.Templates.Dir = DefaultTemplatesDir
	}
	if c.Execution.ConnectTimeout == 0 {
		c.Execution.ConnectTimeout = Duration(DefaultConnectTimeout)
	}
	if c.Execution.CommandTimeout == 0 {
		c.Execution.CommandTimeout = Duration(DefaultCommandTimeout)
	}
	if c.Execution.MaxConcurrent == 0 {
		c.Execution.MaxConcurrent = DefaultMaxConcurrent
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

// Validate checks field constraints common to every command
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ValidateRepository checks that the content repository is fully configured
func (c *Config) ValidateRepository() error {
	if err := c.Validate(); err != nil {
		return err
	}

	validate := validator.New()
	if err := validate.Var(c.Repository.URL, "required,url"); err != nil {
		return fmt.Errorf("repository.url: %w", err)
	}
	if err := validate.Var(c.Repository.Repo, "required,contains=/"); err != nil {
		return fmt.Errorf("repository.repo must be owner/name: %w", err)
	}
	return nil
}

// RepoToken returns the repository token from the environment
func (c *Config) RepoToken() string {
	return os.Getenv(c.Repository.TokenEnv)
}

// LoadInventory builds the device inventory from the Ansible inventory, if
// configured, and the inline device list
func (c *Config) LoadInventory() (*domain.Inventory, error) {
	var devices []domain.Device

	if c.Inventory.Ansible != "" {
		f, err := os.Open(c.Inventory.Ansible)
		if err != nil {
			return nil, fmt.Errorf("open ansible inventory: %w", err)
		}
		defer f.Close()

		imported, err := codec.NewAnsibleCodec().ParseDevices(f)
		if err != nil {
			return nil, err
		}
		devices = append(devices, imported...)
	}

	imported := make(map[string]int, len(devices))
	for i, d := range devices {
		imported[d.Name] = i
	}

	for _, d := range c.Inventory.Devices {
		if i, ok := imported[d.Name]; ok {
			devices[i] = d
			delete(imported, d.Name)
			continue
		}
		devices = append(devices, d)
	}

	return domain.NewInventory(devices)
}

// Password returns the SSH password from the environment
func (c CredentialsConfig) Password() string {
	if c.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(c.PasswordEnv)
}

// Passphrase returns the private key passphrase from the environment
func (c CredentialsConfig) Passphrase() string {
	if c.PassphraseEnv == "" {
		return ""
	}
	return os.Getenv(c.PassphraseEnv)
}

// PrivateKey reads the private key file, if configured
func (c CredentialsConfig) PrivateKey() ([]byte, error) {
	if c.PrivateKeyPath == "" {
		return nil, nil
	}
	key, err := os.ReadFile(c.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	return key, nil
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Repository: %s (%s@%s), prefix %s\n",
		c.Repository.URL, c.Repository.Repo, c.Repository.Branch, c.Repository.Prefix)
	summary += fmt.Sprintf("Templates: %s, Concurrency: %d\n", c.Templates.Dir, c.Execution.MaxConcurrent)
	summary += fmt.Sprintf("Devices: %d inline", len(c.Inventory.Devices))
	if c.Inventory.Ansible != "" {
		summary += fmt.Sprintf(", ansible inventory %s", c.Inventory.Ansible)
	}
	return summary
}
