package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"semaphore/dashboard/internal/validation"
)

const (
	envPrefix = "DASHBOARD"
	fileName  = "dashboard"
	homeDir   = ".attendance-dashboard"
)

type Config struct {
	APIBaseURL                   string        `validate:"required,url"`
	APITimeout                   time.Duration `validate:"gt=0"`
	APIRefreshPath               string        `validate:"required,startswith=/"`
	ClearSessionOnRefreshFailure bool

	SessionBackend        string `validate:"oneof=memory file redis postgres"`
	SessionFile           string `validate:"required_if=SessionBackend file"`
	SessionRedisURL       string `validate:"required_if=SessionBackend redis"`
	SessionRedisPrefix    string
	SessionDatabaseURL    string `validate:"required_if=SessionBackend postgres"`
	SessionDatabasePrefix string
	SessionAccessTTL      time.Duration
	SessionRefreshTTL     time.Duration
	SessionUserTTL        time.Duration

	SessionPurgeInterval time.Duration `validate:"gt=0"`

	HTTPAddr string `validate:"required"`

	SnapshotDepartmentID string
	SnapshotInterval     time.Duration `validate:"gt=0"`
	SnapshotTimeout      time.Duration `validate:"gt=0"`

	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=text json"`

	TelemetryEnabled bool
}

// Load reads defaults, then the YAML file (configFile, or dashboard.yaml in
// the working directory or ~/.attendance-dashboard), then DASHBOARD_*
// environment variables.
func Load(configFile string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	cfg := Config{
		APIBaseURL:                   strings.TrimRight(v.GetString("api.base_url"), "/"),
		APITimeout:                   getDuration(v, "api.timeout", 30*time.Second),
		APIRefreshPath:               v.GetString("api.refresh_path"),
		ClearSessionOnRefreshFailure: v.GetBool("api.clear_session_on_refresh_failure"),

		SessionBackend:        strings.ToLower(v.GetString("session.backend")),
		SessionFile:           v.GetString("session.file"),
		SessionRedisURL:       v.GetString("session.redis_url"),
		SessionRedisPrefix:    v.GetString("session.redis_prefix"),
		SessionDatabaseURL:    v.GetString("session.database_url"),
		SessionDatabasePrefix: v.GetString("session.database_prefix"),
		SessionAccessTTL:      getDuration(v, "session.access_ttl", 24*time.Hour),
		SessionRefreshTTL:     getDuration(v, "session.refresh_ttl", 30*24*time.Hour),
		SessionUserTTL:        getDuration(v, "session.user_ttl", 7*24*time.Hour),

		SessionPurgeInterval: getDuration(v, "session.purge_interval", time.Hour),

		HTTPAddr: v.GetString("http.addr"),

		SnapshotDepartmentID: v.GetString("snapshot.department_id"),
		SnapshotInterval:     getDuration(v, "snapshot.interval", 5*time.Minute),
		SnapshotTimeout:      getDuration(v, "snapshot.timeout", 30*time.Second),

		LogLevel:  strings.ToLower(v.GetString("log.level")),
		LogFormat: strings.ToLower(v.GetString("log.format")),

		TelemetryEnabled: v.GetBool("telemetry.enabled"),
	}
	if err := validation.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://127.0.0.1:5000/api")
	v.SetDefault("api.refresh_path", "/token/refresh")
	v.SetDefault("api.clear_session_on_refresh_failure", false)
	v.SetDefault("session.backend", "file")
	v.SetDefault("session.file", defaultSessionFile())
	v.SetDefault("session.redis_url", "")
	v.SetDefault("session.redis_prefix", "dashboard:")
	v.SetDefault("session.database_url", "")
	v.SetDefault("session.database_prefix", "dashboard:")
	v.SetDefault("http.addr", ":8090")
	v.SetDefault("snapshot.department_id", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("telemetry.enabled", false)
}

// getDuration accepts a Go duration string under key, or whole seconds under
// key_seconds.
func getDuration(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	if v.IsSet(key) {
		if parsed, err := time.ParseDuration(strings.TrimSpace(v.GetString(key))); err == nil && parsed > 0 {
			return parsed
		}
	}
	if v.IsSet(key + "_seconds") {
		if seconds := v.GetInt(key + "_seconds"); seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(homeDir, "session.json")
	}
	return filepath.Join(home, homeDir, "session.json")
}

func findConfigFile() string {
	home, _ := os.UserHomeDir()
	dirs := []string{"."}
	if home != "" {
		dirs = append(dirs, filepath.Join(home, homeDir))
	}
	for _, dir := range dirs {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, fileName+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}
