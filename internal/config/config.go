// Package config loads and validates site generator configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/JakeFAU/mission-site/internal/logging"
	"github.com/JakeFAU/mission-site/internal/site"
)

// Source drivers.
const (
	DriverREST     = "rest"
	DriverPostgres = "postgres"
)

// Output targets.
const (
	TargetLocal  = "local"
	TargetGCS    = "gcs"
	TargetMemory = "memory"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Site     SiteConfig     `mapstructure:"site"`
	Source   SourceConfig   `mapstructure:"source"`
	Output   OutputConfig   `mapstructure:"output"`
	Build    BuildConfig    `mapstructure:"build"`
	Server   ServerConfig   `mapstructure:"server"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	PubSub   PubSubConfig   `mapstructure:"pubsub"`
	Logging  logging.Config `mapstructure:"logging"`
}

// SiteConfig holds the brand constants embedded in every artifact.
type SiteConfig struct {
	Name    string `mapstructure:"name"`
	Origin  string `mapstructure:"origin"`
	LogoURL string `mapstructure:"logo_url"`
}

// SourceConfig locates the job collection.
type SourceConfig struct {
	Driver         string `mapstructure:"driver"`
	URL            string `mapstructure:"url"`
	APIKey         string `mapstructure:"api_key"`
	Table          string `mapstructure:"table"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	DSN            string `mapstructure:"dsn"`
	MaxConns       int32  `mapstructure:"max_conns"`
}

// OutputConfig controls where build artifacts are written.
type OutputConfig struct {
	Target    string `mapstructure:"target"`
	Dir       string `mapstructure:"dir"`
	JobsDir   string `mapstructure:"jobs_dir"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	Prefix    string `mapstructure:"prefix"`
}

// BuildConfig tunes the build orchestrator.
type BuildConfig struct {
	SuccessPage string `mapstructure:"success_page"`
	SkipInvalid bool   `mapstructure:"skip_invalid"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// CacheConfig configures the interactive job-list cache.
type CacheConfig struct {
	TTLSeconds    int    `mapstructure:"ttl_seconds"`
	RedisAddress  string `mapstructure:"redis_address"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	Key           string `mapstructure:"key"`
}

// ScheduleConfig enables periodic rebuilds while serving.
type ScheduleConfig struct {
	RebuildCron string `mapstructure:"rebuild_cron"`
}

// PubSubConfig holds metadata for build notifications.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MISSIONS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindHostedStoreEnv(v); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := site.Default()
	v.SetDefault("site.name", def.Name)
	v.SetDefault("site.origin", def.Origin)
	v.SetDefault("site.logo_url", def.LogoURL)
	v.SetDefault("source.driver", DriverREST)
	v.SetDefault("source.url", "")
	v.SetDefault("source.api_key", "")
	v.SetDefault("source.table", "jobs")
	v.SetDefault("source.timeout_seconds", 30)
	v.SetDefault("source.dsn", "")
	v.SetDefault("source.max_conns", 4)
	v.SetDefault("output.target", TargetLocal)
	v.SetDefault("output.dir", "dist")
	v.SetDefault("output.jobs_dir", "jobs")
	v.SetDefault("output.gcs_bucket", "")
	v.SetDefault("output.prefix", "")
	v.SetDefault("build.success_page", "public/success.html")
	v.SetDefault("build.skip_invalid", false)
	v.SetDefault("server.port", 8080)
	v.SetDefault("cache.ttl_seconds", 300)
	v.SetDefault("cache.redis_address", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.key", "missions:jobs")
	v.SetDefault("schedule.rebuild_cron", "")
	v.SetDefault("pubsub.project_id", "")
	v.SetDefault("pubsub.topic_name", "")
	v.SetDefault("logging.development", false)
	v.SetDefault("logging.level", "info")
}

// bindHostedStoreEnv accepts the hosted store's conventional variable names
// alongside the prefixed ones.
func bindHostedStoreEnv(v *viper.Viper) error {
	if err := v.BindEnv("source.url", "MISSIONS_SOURCE_URL", "SUPABASE_URL"); err != nil {
		return fmt.Errorf("bind source.url: %w", err)
	}
	if err := v.BindEnv("source.api_key", "MISSIONS_SOURCE_API_KEY", "SUPABASE_ANON_KEY"); err != nil {
		return fmt.Errorf("bind source.api_key: %w", err)
	}
	if err := v.BindEnv("server.port", "MISSIONS_SERVER_PORT", "PORT"); err != nil {
		return fmt.Errorf("bind server.port: %w", err)
	}
	return nil
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Site.Name) == "" {
		return fmt.Errorf("site.name is required")
	}
	if !strings.HasPrefix(c.Site.Origin, "http://") && !strings.HasPrefix(c.Site.Origin, "https://") {
		return fmt.Errorf("site.origin must be an absolute http(s) URL, got %q", c.Site.Origin)
	}
	switch c.Source.Driver {
	case DriverREST:
	case DriverPostgres:
		if c.Source.DSN == "" {
			return fmt.Errorf("source.dsn must be set when source.driver is %q", DriverPostgres)
		}
	default:
		return fmt.Errorf("unknown source.driver %q", c.Source.Driver)
	}
	if c.Source.TimeoutSeconds <= 0 {
		return fmt.Errorf("source.timeout_seconds must be > 0")
	}
	switch c.Output.Target {
	case TargetLocal, TargetMemory:
	case TargetGCS:
		if c.Output.GCSBucket == "" {
			return fmt.Errorf("output.gcs_bucket must be set when output.target is %q", TargetGCS)
		}
	default:
		return fmt.Errorf("unknown output.target %q", c.Output.Target)
	}
	if c.Output.Target == TargetLocal && strings.TrimSpace(c.Output.Dir) == "" {
		return fmt.Errorf("output.dir is required")
	}
	if strings.TrimSpace(c.Output.JobsDir) == "" {
		return fmt.Errorf("output.jobs_dir is required")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("cache.ttl_seconds must be >= 0")
	}
	if c.PubSub.TopicName != "" && c.PubSub.ProjectID == "" {
		return fmt.Errorf("pubsub.project_id must be set when pubsub.topic_name is set")
	}
	return nil
}

// SiteInfo converts the site section into the constants passed to renderers.
func (c Config) SiteInfo() site.Site {
	return site.New(c.Site.Name, c.Site.Origin, c.Site.LogoURL)
}

// SourceConfigured reports whether the REST store has both endpoint and key.
func (c Config) SourceConfigured() bool {
	if c.Source.Driver == DriverPostgres {
		return c.Source.DSN != ""
	}
	return c.Source.URL != "" && c.Source.APIKey != ""
}

// SourceTimeout is the per-request budget for the collection store.
func (c Config) SourceTimeout() time.Duration {
	return time.Duration(c.Source.TimeoutSeconds) * time.Second
}

// CacheTTL is the lifetime of a cached job list on the interactive path.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}
