// Package config loads WorkPilot settings from a YAML file and the
// environment. Environment variables win over the file, which wins over
// the defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config is the complete application configuration.
type Config struct {
	Telegram Telegram `yaml:"telegram"`
	Storage  Storage  `yaml:"storage"`
	Timezone string   `yaml:"timezone"`
	Report   Report   `yaml:"report"`
	Reminder Reminder `yaml:"reminder"`
	Admin    Admin    `yaml:"admin"`
	Export   Export   `yaml:"export"`
	Log      Log      `yaml:"log"`
}

type Telegram struct {
	Token string `yaml:"token"`
}

type Storage struct {
	// Path of the SQLite database. ":memory:" selects the in-memory store.
	Path string `yaml:"path"`
}

// Report configures report detection in plain messages.
type Report struct {
	Keywords  []string `yaml:"keywords"`
	MinLength int      `yaml:"min_length"`
}

// Slot is a named cron expression at which reminders are sent to every group.
type Slot struct {
	Name string `yaml:"name"`
	Cron string `yaml:"cron"`
}

type Reminder struct {
	Slots       []Slot        `yaml:"slots"`
	SendTimeout time.Duration `yaml:"send_timeout"`
}

// Operator is an admin API account.
type Operator struct {
	Name         string `yaml:"name"`
	PasswordHash string `yaml:"password_hash"`
}

type Admin struct {
	// Addr is the listen address; empty disables the admin server.
	Addr      string        `yaml:"addr"`
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
	Operators []Operator    `yaml:"operators"`
}

type S3 struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Prefix    string `yaml:"prefix"`
}

// Export selects where export documents are stored. S3 wins when a bucket
// is configured.
type Export struct {
	Dir string `yaml:"dir"`
	S3  S3     `yaml:"s3"`
}

type Log struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Storage:  Storage{Path: "./data/workpilot.db"},
		Timezone: "Asia/Shanghai",
		Report: Report{
			Keywords:  []string{"周报", "#周报", "本周工作", "weekly report"},
			MinLength: 10,
		},
		Reminder: Reminder{
			Slots: []Slot{
				{Name: "friday-warning", Cron: "0 17 * * 5"},
				{Name: "monday-deadline", Cron: "0 9 * * 1"},
			},
			SendTimeout: 10 * time.Second,
		},
		Admin: Admin{
			TokenTTL: 24 * time.Hour,
		},
		Export: Export{Dir: "./data/groups"},
		Log:    Log{Level: "info"},
	}
}

// Load reads path on top of the defaults and applies environment overrides.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func (c *Config) applyEnv() {
	c.Telegram.Token = getEnv("TELEGRAM_BOT_TOKEN", c.Telegram.Token)
	c.Storage.Path = getEnv("DB_PATH", c.Storage.Path)
	c.Timezone = getEnv("WORKPILOT_TIMEZONE", c.Timezone)
	c.Admin.Addr = getEnv("ADMIN_ADDR", c.Admin.Addr)
	c.Admin.JWTSecret = getEnv("JWT_SECRET", c.Admin.JWTSecret)
	c.Export.Dir = getEnv("EXPORT_DIR", c.Export.Dir)
	c.Export.S3.Bucket = getEnv("S3_BUCKET", c.Export.S3.Bucket)
	c.Export.S3.Region = getEnv("S3_REGION", c.Export.S3.Region)
	c.Export.S3.Endpoint = getEnv("S3_ENDPOINT", c.Export.S3.Endpoint)
	c.Export.S3.AccessKey = getEnv("S3_ACCESS_KEY", c.Export.S3.AccessKey)
	c.Export.S3.SecretKey = getEnv("S3_SECRET_KEY", c.Export.S3.SecretKey)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)

	if v := os.Getenv("REPORT_MIN_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Report.MinLength = n
		}
	}
	if v := os.Getenv("REPORT_KEYWORDS"); v != "" {
		var keywords []string
		for _, kw := range strings.Split(v, ",") {
			if kw = strings.TrimSpace(kw); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		c.Report.Keywords = keywords
	}
}

// Location loads the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Validate checks the settings every command needs. Telegram and admin
// settings are checked by the commands that use them.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if c.Storage.Path == "" {
		errs = append(errs, errors.New("storage.path is required"))
	}
	if len(c.Report.Keywords) == 0 {
		errs = append(errs, errors.New("report.keywords must not be empty"))
	}
	if c.Report.MinLength < 0 {
		errs = append(errs, errors.New("report.min_length must not be negative"))
	}
	for _, slot := range c.Reminder.Slots {
		if _, err := cron.ParseStandard(slot.Cron); err != nil {
			errs = append(errs, fmt.Errorf("reminder slot %q: invalid cron %q: %w", slot.Name, slot.Cron, err))
		}
	}
	if c.Reminder.SendTimeout <= 0 {
		errs = append(errs, errors.New("reminder.send_timeout must be positive"))
	}
	if c.Admin.Addr != "" && c.Admin.JWTSecret == "" {
		errs = append(errs, errors.New("admin.jwt_secret is required when admin.addr is set"))
	}
	return errors.Join(errs...)
}
