package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	"github.com/yearprogress/yearprogress/internal/progress"
)

// Config represents application configuration
type Config struct {
	Progress ProgressConfig `mapstructure:"progress"`
	Events   EventsConfig   `mapstructure:"events"`
	Daemon   DaemonConfig   `mapstructure:"daemon"`
	Server   ServerConfig   `mapstructure:"server"`

	location *time.Location
}

// ProgressConfig selects the timezone and the year being tracked
type ProgressConfig struct {
	Timezone   string `mapstructure:"timezone"`
	TargetYear int    `mapstructure:"target_year"` // 0 = civil year of now
}

// EventsConfig represents event list storage
type EventsConfig struct {
	File         string `mapstructure:"file"`
	SeedDefaults bool   `mapstructure:"seed_defaults"`
}

// DaemonConfig represents watch mode configuration
type DaemonConfig struct {
	Schedule   string `mapstructure:"schedule"` // cron expression, evaluated in the progress timezone
	LogFile    string `mapstructure:"log_file"`
	LogLevel   string `mapstructure:"log_level"`
	SystemTray bool   `mapstructure:"system_tray"` // Show system tray icon (Windows only)
}

// ServerConfig represents the HTTP API
type ServerConfig struct {
	Listen string `mapstructure:"listen"`
}

var envKeyReplacer = strings.NewReplacer(".", "_")

// ScheduleParser accepts standard five-field specs and descriptors like @every
var ScheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Load loads configuration from file. A missing config file is not an error;
// defaults and YEARPROGRESS_* environment variables still apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.yearprogress")
		v.AddConfigPath("/etc/yearprogress")
	}

	v.SetEnvPrefix("YEARPROGRESS")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Default returns the configuration used when nothing is configured
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var config Config
	_ = v.Unmarshal(&config)
	_ = config.Validate()
	return &config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("progress.timezone", progress.DefaultTimezone)
	v.SetDefault("progress.target_year", 0)
	v.SetDefault("events.file", "events.json")
	v.SetDefault("events.seed_defaults", true)
	v.SetDefault("daemon.schedule", "* * * * *")
	v.SetDefault("daemon.log_level", "info")
	v.SetDefault("daemon.system_tray", false)
	v.SetDefault("server.listen", "127.0.0.1:8080")
}

// Validate validates the configuration and resolves the timezone
func (c *Config) Validate() error {
	loc, err := progress.ResolveZone(c.Progress.Timezone)
	if err != nil {
		return fmt.Errorf("progress.timezone: %w", err)
	}
	c.location = loc

	if c.Progress.TargetYear < 0 || c.Progress.TargetYear > 9999 {
		return fmt.Errorf("progress.target_year must be 0 or between 1 and 9999, got %d", c.Progress.TargetYear)
	}

	if c.Events.File == "" {
		return fmt.Errorf("events.file is required")
	}

	if _, err := ScheduleParser.Parse(c.Daemon.Schedule); err != nil {
		return fmt.Errorf("daemon.schedule %q: %w", c.Daemon.Schedule, err)
	}

	if c.Server.Listen == "" {
		return fmt.Errorf("server.listen is required")
	}

	return nil
}

// Location returns the resolved progress timezone
func (c *Config) Location() *time.Location {
	if c.location == nil {
		loc, err := progress.ResolveZone(c.Progress.Timezone)
		if err != nil {
			loc, _ = progress.ResolveZone(progress.DefaultTimezone)
		}
		c.location = loc
	}
	return c.location
}

// ExpandEnvVars expands environment variables in path settings
func (c *Config) ExpandEnvVars() {
	c.Events.File = os.ExpandEnv(c.Events.File)
	c.Daemon.LogFile = os.ExpandEnv(c.Daemon.LogFile)
}
