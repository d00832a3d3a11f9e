// Package config loads server settings from an optional YAML file and FLOG_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

const EnvPrefix = "FLOG"

const (
	SourceLocal  = "local"
	SourceGithub = "github"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Posts    PostsConfig    `mapstructure:"posts"`
	Github   GithubConfig   `mapstructure:"github"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Comments CommentsConfig `mapstructure:"comments"`
	Platform PlatformConfig `mapstructure:"platform"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	Mode            string        `mapstructure:"mode"`
	BaseURL         string        `mapstructure:"base_url"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type PostsConfig struct {
	Source string `mapstructure:"source"`
	Dir    string `mapstructure:"dir"`
}

type GithubConfig struct {
	Owner         string `mapstructure:"owner"`
	Repo          string `mapstructure:"repo"`
	Ref           string `mapstructure:"ref"`
	Dir           string `mapstructure:"dir"`
	Token         string `mapstructure:"token"`
	WebhookSecret string `mapstructure:"webhook_secret"`
}

// AuthConfig holds the admin credentials. Admin routes are disabled while either is empty.
type AuthConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

func (a AuthConfig) Enabled() bool {
	return a.Username != "" && a.Password != ""
}

type SyncConfig struct {
	OnStartup bool          `mapstructure:"on_startup"`
	Schedule  string        `mapstructure:"schedule"`
	Watch     bool          `mapstructure:"watch"`
	Debounce  time.Duration `mapstructure:"debounce"`
}

type CommentsConfig struct {
	RatePerMinute float64 `mapstructure:"rate_per_minute"`
	Burst         int     `mapstructure:"burst"`
}

type PlatformConfig struct {
	Title       string `mapstructure:"title"`
	Description string `mapstructure:"description"`
	Footer      string `mapstructure:"footer"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

var defaults = map[string]any{
	"server.addr":              ":8080",
	"server.mode":              "release",
	"server.base_url":          "",
	"server.shutdown_timeout":  5 * time.Second,
	"database.path":            "./flog.db",
	"posts.source":             SourceLocal,
	"posts.dir":                "./posts",
	"github.owner":             "",
	"github.repo":              "",
	"github.ref":               "main",
	"github.dir":               "posts",
	"github.token":             "",
	"github.webhook_secret":    "",
	"auth.username":            "",
	"auth.password":            "",
	"sync.on_startup":          true,
	"sync.schedule":            "",
	"sync.watch":               false,
	"sync.debounce":            2 * time.Second,
	"comments.rate_per_minute": 5.0,
	"comments.burst":           3,
	"platform.title":           "Flog",
	"platform.description":     "",
	"platform.footer":          "",
	"log.level":                "info",
	"log.format":               "console",
	"log.file":                 "",
	"log.max_size_mb":          50,
	"log.max_backups":          3,
	"log.max_age_days":         28,
}

// Load reads configuration from path, if set, overlaid with FLOG_* environment
// variables such as FLOG_SERVER_ADDR. SQLITE_DB_PATH is honoured for the database path.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("database.path", EnvPrefix+"_DATABASE_PATH", "SQLITE_DB_PATH"); err != nil {
		return nil, fmt.Errorf("failed to bind database path: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Posts.Source {
	case SourceLocal:
		if c.Posts.Dir == "" {
			errs = append(errs, errors.New("posts.dir is required for a local source"))
		}
	case SourceGithub:
		if c.Github.Owner == "" || c.Github.Repo == "" {
			errs = append(errs, errors.New("github.owner and github.repo are required for a github source"))
		}
		if c.Github.Ref == "" {
			errs = append(errs, errors.New("github.ref is required for a github source"))
		}
	default:
		errs = append(errs, fmt.Errorf("posts.source must be %q or %q, got %q", SourceLocal, SourceGithub, c.Posts.Source))
	}

	if c.Sync.Schedule != "" {
		if _, err := cron.ParseStandard(c.Sync.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("sync.schedule: %w", err))
		}
	}
	if c.Sync.Watch && c.Posts.Source != SourceLocal {
		errs = append(errs, errors.New("sync.watch requires a local source"))
	}
	if c.Sync.Debounce < 0 {
		errs = append(errs, errors.New("sync.debounce must not be negative"))
	}

	if c.Comments.RatePerMinute <= 0 || c.Comments.Burst <= 0 {
		errs = append(errs, errors.New("comments.rate_per_minute and comments.burst must be positive"))
	}

	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be console or json, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}
