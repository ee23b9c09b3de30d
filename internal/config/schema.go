package config

import (
	"time"

	"netintent/internal/domain"
)

// Config is the root configuration structure
type Config struct {
	Version     int               `yaml:"version"`
	Repository  RepositoryConfig  `yaml:"repository"`
	Templates   TemplatesConfig   `yaml:"templates"`
	Inventory   InventoryConfig   `yaml:"inventory"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Execution   ExecutionConfig   `yaml:"execution"`
	Journal     JournalConfig     `yaml:"journal"`
	Log         LogConfig         `yaml:"log"`
}

// RepositoryConfig points at the content repository holding intended configs.
// The token itself is read from the environment variable named by TokenEnv.
type RepositoryConfig struct {
	URL          string   `yaml:"url" validate:"omitempty,url"`
	Repo         string   `yaml:"repo" validate:"omitempty,contains=/"`
	Branch       string   `yaml:"branch" validate:"required"`
	Prefix       string   `yaml:"prefix"`
	SourceSystem string   `yaml:"source_system" validate:"required"`
	TokenEnv     string   `yaml:"token_env"`
	Timeout      Duration `yaml:"timeout"`
}

// TemplatesConfig locates the config templates
type TemplatesConfig struct {
	Dir string `yaml:"dir" validate:"required"`
}

// InventoryConfig lists managed devices. Devices may also be imported from
// an Ansible inventory; inline devices win on name clashes.
type InventoryConfig struct {
	Devices []domain.Device `yaml:"devices,omitempty" validate:"dive"`
	Ansible string          `yaml:"ansible,omitempty"`
}

// CredentialsConfig holds SSH login settings (env var names and paths, not
// values)
type CredentialsConfig struct {
	Username       string `yaml:"username"`
	PasswordEnv    string `yaml:"password_env,omitempty"`
	PrivateKeyPath string `yaml:"private_key_path,omitempty"`
	PassphraseEnv  string `yaml:"passphrase_env,omitempty"`
	KnownHosts     string `yaml:"known_hosts,omitempty"`
}

// ExecutionConfig bounds device command execution
type ExecutionConfig struct {
	ConnectTimeout Duration `yaml:"connect_timeout"`
	CommandTimeout Duration `yaml:"command_timeout"`
	MaxConcurrent  int      `yaml:"max_concurrent" validate:"min=1"`
}

// JournalConfig holds the sync journal settings. An empty path disables it.
type JournalConfig struct {
	Path string `yaml:"path,omitempty"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn warning error"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
