package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadWithFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
site:
  name: FreelanceHub
  origin: https://freelancehub.example/
  logo_url: https://freelancehub.example/logo.svg
source:
  driver: rest
  url: https://abc.supabase.co
  api_key: anon-key
  table: missions
  timeout_seconds: 10
output:
  target: local
  dir: build
  jobs_dir: jobs
build:
  success_page: static/success.html
  skip_invalid: true
server:
  port: 9090
cache:
  ttl_seconds: 60
schedule:
  rebuild_cron: "*/30 * * * *"
logging:
  development: true
  level: debug
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Source.Table != "missions" || !cfg.SourceConfigured() {
		t.Fatalf("expected configured source on table missions: %+v", cfg.Source)
	}
	if got := cfg.SourceTimeout(); got != 10*time.Second {
		t.Fatalf("expected source timeout 10s, got %v", got)
	}
	if got := cfg.CacheTTL(); got != time.Minute {
		t.Fatalf("expected cache ttl 1m, got %v", got)
	}
	if !cfg.Build.SkipInvalid || cfg.Build.SuccessPage != "static/success.html" {
		t.Fatalf("expected build overrides to apply: %+v", cfg.Build)
	}
	if cfg.Schedule.RebuildCron != "*/30 * * * *" {
		t.Fatalf("expected cron override, got %q", cfg.Schedule.RebuildCron)
	}
	if !cfg.Logging.Development || cfg.Logging.Level != "debug" {
		t.Fatalf("expected logging overrides: %+v", cfg.Logging)
	}
	info := cfg.SiteInfo()
	if info.Origin != "https://freelancehub.example" || info.Name != "FreelanceHub" {
		t.Fatalf("unexpected site info: %+v", info)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Source.Driver != DriverREST || cfg.Source.Table != "jobs" {
		t.Fatalf("unexpected source defaults: %+v", cfg.Source)
	}
	if cfg.Output.Target != TargetLocal || cfg.Output.Dir != "dist" || cfg.Output.JobsDir != "jobs" {
		t.Fatalf("unexpected output defaults: %+v", cfg.Output)
	}
	if cfg.SourceTimeout() != 30*time.Second {
		t.Fatalf("expected 30s default timeout, got %v", cfg.SourceTimeout())
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MISSIONS_OUTPUT_DIR", "/tmp/site")
	t.Setenv("SUPABASE_URL", "https://xyz.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon")
	t.Setenv("PORT", "7070")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Output.Dir != "/tmp/site" {
		t.Fatalf("expected env output dir, got %q", cfg.Output.Dir)
	}
	if cfg.Source.URL != "https://xyz.supabase.co" || cfg.Source.APIKey != "anon" {
		t.Fatalf("expected hosted store env fallback, got %+v", cfg.Source)
	}
	if cfg.Server.Port != 7070 {
		t.Fatalf("expected PORT to apply, got %d", cfg.Server.Port)
	}
}

func TestLoadPrefixedEnvWinsOverHostedNames(t *testing.T) {
	t.Setenv("MISSIONS_SOURCE_URL", "https://primary.example")
	t.Setenv("SUPABASE_URL", "https://secondary.example")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Source.URL != "https://primary.example" {
		t.Fatalf("expected prefixed env to win, got %q", cfg.Source.URL)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidateErrors(t *testing.T) {
	t.Parallel()

	base := func() Config {
		return Config{
			Site:   SiteConfig{Name: "Brand", Origin: "https://example.fr"},
			Source: SourceConfig{Driver: DriverREST, TimeoutSeconds: 30},
			Output: OutputConfig{Target: TargetLocal, Dir: "dist", JobsDir: "jobs"},
			Server: ServerConfig{Port: 8080},
		}
	}
	if err := base().Validate(); err != nil {
		t.Fatalf("base config should validate: %v", err)
	}

	cases := map[string]struct {
		mutate func(*Config)
		want   string
	}{
		"missing name":     {func(c *Config) { c.Site.Name = "" }, "site.name"},
		"relative origin":  {func(c *Config) { c.Site.Origin = "example.fr" }, "site.origin"},
		"unknown driver":   {func(c *Config) { c.Source.Driver = "mongo" }, "source.driver"},
		"postgres no dsn":  {func(c *Config) { c.Source.Driver = DriverPostgres }, "source.dsn"},
		"zero timeout":     {func(c *Config) { c.Source.TimeoutSeconds = 0 }, "source.timeout_seconds"},
		"gcs no bucket":    {func(c *Config) { c.Output.Target = TargetGCS }, "output.gcs_bucket"},
		"unknown target":   {func(c *Config) { c.Output.Target = "ftp" }, "output.target"},
		"empty dir":        {func(c *Config) { c.Output.Dir = " " }, "output.dir"},
		"empty jobs dir":   {func(c *Config) { c.Output.JobsDir = "" }, "output.jobs_dir"},
		"bad port":         {func(c *Config) { c.Server.Port = 0 }, "server.port"},
		"negative ttl":     {func(c *Config) { c.Cache.TTLSeconds = -1 }, "cache.ttl_seconds"},
		"topic no project": {func(c *Config) { c.PubSub.TopicName = "builds" }, "pubsub.project_id"},
	}
	for name, tc := range cases {
		cfg := base()
		tc.mutate(&cfg)
		err := cfg.Validate()
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: expected %q in error, got %v", name, tc.want, err)
		}
	}
}

func TestSourceConfigured(t *testing.T) {
	t.Parallel()

	cfg := Config{Source: SourceConfig{Driver: DriverREST, URL: "https://x"}}
	if cfg.SourceConfigured() {
		t.Fatal("expected url without key to be unconfigured")
	}
	cfg.Source.APIKey = "k"
	if !cfg.SourceConfigured() {
		t.Fatal("expected url and key to be configured")
	}
	pg := Config{Source: SourceConfig{Driver: DriverPostgres, DSN: "postgres://u@h/db"}}
	if !pg.SourceConfigured() {
		t.Fatal("expected dsn to configure postgres driver")
	}
}
