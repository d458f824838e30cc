// config/config.go
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/dalemusser/libgate/entry"
	"github.com/dalemusser/libgate/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// EnvPrefix prefixes every environment key, e.g. LIBGATE_BASE_URL.
const EnvPrefix = "LIBGATE"

// MessageOverrides replace individual strings of the locale's message set.
// Empty values keep the built-in text.
type MessageOverrides struct {
	InvalidEmail string `mapstructure:"msg_invalid_email" json:"msg_invalid_email,omitempty"`
	ErrorPrefix  string `mapstructure:"msg_error_prefix" json:"msg_error_prefix,omitempty"`
	NotFound     string `mapstructure:"msg_not_found" json:"msg_not_found,omitempty"`
	Failure      string `mapstructure:"msg_failure" json:"msg_failure,omitempty"`
}

// Config holds everything the gate needs to run.
type Config struct {
	// runtime
	Env      string `mapstructure:"env" json:"env"`             // "dev" | "prod"
	LogLevel string `mapstructure:"log_level" json:"log_level"` // debug, info, warn, error …

	// server contract
	BaseURL       string `mapstructure:"base_url" json:"base_url"`
	UserPath      string `mapstructure:"user_path" json:"user_path"`
	LibrarianPath string `mapstructure:"librarian_path" json:"librarian_path"`

	// presentation
	Locale   string           `mapstructure:"locale" json:"locale"`
	Messages MessageOverrides `mapstructure:",squash" json:"messages"`

	// MetricsFile, when set, receives the run's metrics in Prometheus text
	// format on exit.
	MetricsFile string `mapstructure:"metrics_file" json:"metrics_file,omitempty"`
}

// Dump returns the config as indented JSON for debug logging. Nothing in
// Config is secret; base_url userinfo is stripped anyway.
func (c Config) Dump() string {
	cp := c
	if u, err := url.Parse(cp.BaseURL); err == nil && u.User != nil {
		u.User = nil
		cp.BaseURL = u.String()
	}
	b, _ := json.MarshalIndent(cp, "", "  ")
	return string(b)
}

// MessageSet resolves the locale's built-in messages and applies overrides.
func (c Config) MessageSet() entry.Messages {
	return entry.MessagesFor(c.Locale).Merge(entry.Messages{
		InvalidEmail: c.Messages.InvalidEmail,
		ErrorPrefix:  c.Messages.ErrorPrefix,
		NotFound:     c.Messages.NotFound,
		Failure:      c.Messages.Failure,
	})
}

// DefineFlags registers the config flags on fs.
func DefineFlags(fs *pflag.FlagSet) {
	fs.String("env", "dev", `Runtime environment "dev"|"prod"`)
	fs.String("log_level", "info", "Log level")

	fs.String("base_url", "http://localhost:8080", "Base URL of the library server")
	fs.String("user_path", "/user", "Path the patron email form posts to")
	fs.String("librarian_path", "/tables", "Path librarian mode navigates to")

	fs.String("locale", "en", `Message language, BCP 47 tag ("en", "ru", ...)`)
	fs.String("msg_invalid_email", "", "Override: invalid email alert")
	fs.String("msg_error_prefix", "", "Override: prefix for unexpected server text")
	fs.String("msg_not_found", "", "Override: user not found alert")
	fs.String("msg_failure", "", "Override: request failure alert")

	fs.String("metrics_file", "", "Write Prometheus metrics to this file on exit")
}

// Load merges defaults → config.* file(s) → .env/env vars → explicit flags.
// Final precedence (highest wins): flags(explicit) > env > config > defaults.
//
// fs must come from DefineFlags; Load parses args into it.
func Load(logger *zap.Logger, fs *pflag.FlagSet, args []string) (*Config, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// .env never overrides variables already in the environment.
	if err := godotenv.Load(); err == nil {
		logger.Info("loaded .env file")
	}

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for _, k := range allKeys() {
		_ = v.BindEnv(k)
	}

	for _, ext := range [...]string{"yaml", "yml", "json", "toml"} {
		file := "config." + ext
		b, err := os.ReadFile(file)
		if err != nil {
			if !os.IsNotExist(err) {
				logger.Warn("cannot read config file", zap.String("file", file), zap.Error(err))
			}
			continue
		}
		v.SetConfigType(ext)
		if err := v.MergeConfig(bytes.NewReader(b)); err != nil {
			logger.Warn("cannot decode config file", zap.String("file", file), zap.Error(err))
			continue
		}
		logger.Info("loaded config file", zap.String("file", file))
	}

	setDefaults(v)

	fs.VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			_ = v.BindPFlag(f.Name, f)
		}
	})

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Locale = strings.TrimSpace(cfg.Locale)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func allKeys() []string {
	return []string{
		"env", "log_level",
		"base_url", "user_path", "librarian_path",
		"locale",
		"msg_invalid_email", "msg_error_prefix", "msg_not_found", "msg_failure",
		"metrics_file",
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("log_level", "info")

	v.SetDefault("base_url", "http://localhost:8080")
	v.SetDefault("user_path", "/user")
	v.SetDefault("librarian_path", "/tables")

	v.SetDefault("locale", "en")
	v.SetDefault("msg_invalid_email", "")
	v.SetDefault("msg_error_prefix", "")
	v.SetDefault("msg_not_found", "")
	v.SetDefault("msg_failure", "")

	v.SetDefault("metrics_file", "")
}

func validate(cfg Config) error {
	var missing []string
	var invalid []string

	if cfg.Env != "dev" && cfg.Env != "prod" {
		invalid = append(invalid, `env must be "dev" or "prod"`)
	}
	if !logging.IsValidLogLevel(cfg.LogLevel) {
		invalid = append(invalid, "log_level must be one of "+strings.Join(logging.ValidLogLevels, ", "))
	}

	if cfg.BaseURL == "" {
		missing = append(missing, EnvPrefix+"_BASE_URL (or --base_url)")
	} else if u, err := url.Parse(cfg.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		invalid = append(invalid, "base_url must be an absolute http(s) URL")
	}

	if !strings.HasPrefix(cfg.UserPath, "/") {
		invalid = append(invalid, `user_path must start with "/"`)
	}
	if !strings.HasPrefix(cfg.LibrarianPath, "/") {
		invalid = append(invalid, `librarian_path must start with "/"`)
	}

	if len(missing) == 0 && len(invalid) == 0 {
		return nil
	}

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		parts = append(parts, "invalid: "+strings.Join(invalid, ", "))
	}
	return fmt.Errorf("configuration errors: %s", strings.Join(parts, " | "))
}
