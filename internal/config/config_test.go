package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Repository.Branch != "main" {
		t.Errorf("Branch = %s, want main", cfg.Repository.Branch)
	}
	if cfg.Repository.Prefix != "netbox-data-source" {
		t.Errorf("Prefix = %s", cfg.Repository.Prefix)
	}
	if cfg.Repository.SourceSystem != "NetBox" {
		t.Errorf("SourceSystem = %s", cfg.Repository.SourceSystem)
	}
	if cfg.Repository.TokenEnv != DefaultTokenEnv {
		t.Errorf("TokenEnv = %s", cfg.Repository.TokenEnv)
	}
	if cfg.Repository.Timeout.Duration() != 30*time.Second {
		t.Errorf("Timeout = %s", cfg.Repository.Timeout.Duration())
	}
	if cfg.Execution.ConnectTimeout.Duration() != 10*time.Second {
		t.Errorf("ConnectTimeout = %s", cfg.Execution.ConnectTimeout.Duration())
	}
	if cfg.Execution.MaxConcurrent != 5 {
		t.Errorf("MaxConcurrent = %d", cfg.Execution.MaxConcurrent)
	}
	if cfg.Journal.Path != "" {
		t.Errorf("journal should be disabled by default, got %s", cfg.Journal.Path)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
repository:
  url: https://git.example.net
  repo: netops/intended
  branch: staging
  timeout: 5s
execution:
  command_timeout: 1m
  max_concurrent: 2
inventory:
  devices:
    - name: leaf1
      address: 172.20.20.2
      template: srl.tmpl
      command_prefix: "sr_cli -d -- "
log:
  level: debug
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Repository.Branch != "staging" || cfg.Repository.Prefix != DefaultPrefix {
		t.Errorf("repository = %+v", cfg.Repository)
	}
	if cfg.Repository.Timeout.Duration() != 5*time.Second {
		t.Errorf("Timeout = %s", cfg.Repository.Timeout.Duration())
	}
	if cfg.Execution.CommandTimeout.Duration() != time.Minute {
		t.Errorf("CommandTimeout = %s", cfg.Execution.CommandTimeout.Duration())
	}
	if cfg.Execution.ConnectTimeout.Duration() != DefaultConnectTimeout {
		t.Errorf("ConnectTimeout = %s", cfg.Execution.ConnectTimeout.Duration())
	}
	if len(cfg.Inventory.Devices) != 1 || cfg.Inventory.Devices[0].CommandPrefix != "sr_cli -d -- " {
		t.Errorf("devices = %+v", cfg.Inventory.Devices)
	}
	if err := cfg.ValidateRepository(); err != nil {
		t.Errorf("ValidateRepository() error = %v", err)
	}
}

func TestParseInvalidDuration(t *testing.T) {
	if _, err := Parse([]byte("repository:\n  timeout: soon\n")); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, true},
		{"bad url", func(c *Config) { c.Repository.URL = "not a url" }, true},
		{"repo without owner", func(c *Config) { c.Repository.Repo = "intended" }, true},
		{"negative concurrency", func(c *Config) { c.Execution.MaxConcurrent = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateRepository(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		repo    string
		wantErr bool
	}{
		{"complete", "https://git.example.net", "netops/intended", false},
		{"missing url", "", "netops/intended", true},
		{"missing repo", "https://git.example.net", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Repository.URL = tt.url
			cfg.Repository.Repo = tt.repo
			err := cfg.ValidateRepository()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRepository() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromPathResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "netintent.yaml")
	content := `
templates:
  dir: tmpl
journal:
  path: /var/lib/netintent/journal.db
credentials:
  private_key_path: keys/id_ed25519
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, loadedPath, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if loadedPath != path {
		t.Errorf("path = %s, want %s", loadedPath, path)
	}
	if cfg.Templates.Dir != filepath.Join(dir, "tmpl") {
		t.Errorf("Templates.Dir = %s", cfg.Templates.Dir)
	}
	if cfg.Journal.Path != "/var/lib/netintent/journal.db" {
		t.Errorf("absolute path changed: %s", cfg.Journal.Path)
	}
	if cfg.Credentials.PrivateKeyPath != filepath.Join(dir, "keys", "id_ed25519") {
		t.Errorf("PrivateKeyPath = %s", cfg.Credentials.PrivateKeyPath)
	}
}

func TestLoadFromPathMissing(t *testing.T) {
	if _, _, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFindConfigPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("version: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvConfigPath, path)
	if got := FindConfigPath(); got != path {
		t.Errorf("FindConfigPath() = %s, want %s", got, path)
	}

	xdg := t.TempDir()
	xdgPath := filepath.Join(xdg, ConfigDirName, "config.yaml")
	if err := os.MkdirAll(filepath.Dir(xdgPath), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(xdgPath, []byte("version: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvConfigPath, filepath.Join(dir, "missing.yaml"))
	t.Setenv("XDG_CONFIG_HOME", xdg)
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
	if got := FindConfigPath(); got != xdgPath {
		t.Errorf("FindConfigPath() = %s, want %s", got, xdgPath)
	}
}

func TestSecretsFromEnvironment(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Credentials.PasswordEnv = "TEST_NETINTENT_PASSWORD"
	cfg.Credentials.PassphraseEnv = "TEST_NETINTENT_PASSPHRASE"

	t.Setenv(DefaultTokenEnv, "tok-123")
	t.Setenv("TEST_NETINTENT_PASSWORD", "secret")
	t.Setenv("TEST_NETINTENT_PASSPHRASE", "phrase")

	if got := cfg.RepoToken(); got != "tok-123" {
		t.Errorf("RepoToken() = %q", got)
	}
	if got := cfg.Credentials.Password(); got != "secret" {
		t.Errorf("Password() = %q", got)
	}
	if got := cfg.Credentials.Passphrase(); got != "phrase" {
		t.Errorf("Passphrase() = %q", got)
	}

	key, err := cfg.Credentials.PrivateKey()
	if err != nil || key != nil {
		t.Errorf("PrivateKey() without path = %v, %v", key, err)
	}
}

func TestLoadInventory(t *testing.T) {
	dir := t.TempDir()
	ansible := filepath.Join(dir, "hosts.yaml")
	inv := `
all:
  children:
    leafs:
      vars:
        netintent_template: leaf.tmpl
      hosts:
        leaf1:
          ansible_host: 172.20.20.2
        leaf2:
          ansible_host: 172.20.20.3
`
	if err := os.WriteFile(ansible, []byte(inv), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Parse([]byte(`
inventory:
  ansible: ` + ansible + `
  devices:
    - name: leaf2
      address: 10.9.9.9
      template: override.tmpl
    - name: spine1
      address: 172.20.20.10
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	inventory, err := cfg.LoadInventory()
	if err != nil {
		t.Fatalf("LoadInventory() error = %v", err)
	}

	var names []string
	for _, d := range inventory.Devices() {
		names = append(names, d.Name)
	}
	if strings.Join(names, ",") != "leaf1,leaf2,spine1" {
		t.Errorf("devices = %v", names)
	}

	leaf2, _ := inventory.Lookup("leaf2")
	if leaf2.Address != "10.9.9.9" || leaf2.Template != "override.tmpl" {
		t.Errorf("inline device should override imported one: %+v", leaf2)
	}
	leaf1, _ := inventory.Lookup("leaf1")
	if leaf1.Template != "leaf.tmpl" {
		t.Errorf("leaf1 = %+v", leaf1)
	}
}

func TestLoadInventoryDuplicateInline(t *testing.T) {
	cfg, err := Parse([]byte(`
inventory:
  devices:
    - name: leaf1
    - name: leaf1
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if _, err := cfg.LoadInventory(); err == nil {
		t.Error("expected duplicate device error")
	}
}
