package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"ENV"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`

	JWTSecret string `mapstructure:"JWT_SECRET"`

	// SMS delivery. Junebug is the only supported channel; the channel URL
	// already contains the channel id.
	JunebugChannelURL string `mapstructure:"JUNEBUG_CHANNEL_URL"`
	JunebugEventURL   string `mapstructure:"JUNEBUG_EVENT_URL"`
	JunebugAuthToken  string `mapstructure:"JUNEBUG_AUTH_TOKEN"`

	// Email delivery.
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	EmailFrom    string `mapstructure:"EMAIL_FROM"`

	// Ona forms API.
	OnaBaseURL     string `mapstructure:"ONA_BASE_URL"`
	OnaAccessToken string `mapstructure:"ONA_ACCESS_TOKEN"`

	// Jembi case forwarding.
	ForwardToJembi bool   `mapstructure:"FORWARD_TO_JEMBI"`
	JembiURL       string `mapstructure:"JEMBI_URL"`
	JembiUsername  string `mapstructure:"JEMBI_USERNAME"`
	JembiPassword  string `mapstructure:"JEMBI_PASSWORD"`

	// Periodic work.
	FormSyncInterval time.Duration `mapstructure:"FORM_SYNC_INTERVAL"`
	CaseSyncInterval time.Duration `mapstructure:"CASE_SYNC_INTERVAL"`
	DigestDay        string        `mapstructure:"DIGEST_DAY"`
	DigestTime       string        `mapstructure:"DIGEST_TIME"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("EMAIL_FROM", "MalariaConnect <malaria24@example.org>")
	v.SetDefault("ONA_BASE_URL", "https://ona.io/api/v1")
	v.SetDefault("FORWARD_TO_JEMBI", true)
	v.SetDefault("FORM_SYNC_INTERVAL", time.Hour)
	v.SetDefault("CASE_SYNC_INTERVAL", 10*time.Minute)
	v.SetDefault("DIGEST_DAY", "Monday")
	v.SetDefault("DIGEST_TIME", "08:15")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range []string{
		"PORT", "ENV", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
		"JWT_SECRET",
		"JUNEBUG_CHANNEL_URL", "JUNEBUG_EVENT_URL", "JUNEBUG_AUTH_TOKEN",
		"SMTP_HOST", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD", "EMAIL_FROM",
		"ONA_BASE_URL", "ONA_ACCESS_TOKEN",
		"FORWARD_TO_JEMBI", "JEMBI_URL", "JEMBI_USERNAME", "JEMBI_PASSWORD",
		"FORM_SYNC_INTERVAL", "CASE_SYNC_INTERVAL", "DIGEST_DAY", "DIGEST_TIME",
	} {
		v.BindEnv(key)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is safe to run. In production the
// outbound channels and the admin API secret must be fully configured.
func (c *Config) Validate() error {
	if c.Env != "development" && c.Env != "production" {
		return fmt.Errorf("ENV must be \"development\" or \"production\", got %q", c.Env)
	}

	if !c.IsDev() {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.JunebugChannelURL == "" {
			return fmt.Errorf("JUNEBUG_CHANNEL_URL is required in production")
		}
		if c.SMTPHost == "" {
			return fmt.Errorf("SMTP_HOST is required in production")
		}
	}

	if c.ForwardToJembi {
		if c.JembiURL == "" {
			return fmt.Errorf("JEMBI_URL is required when FORWARD_TO_JEMBI is true")
		}
		if c.JembiUsername == "" || c.JembiPassword == "" {
			return fmt.Errorf("JEMBI_USERNAME and JEMBI_PASSWORD are required when FORWARD_TO_JEMBI is true")
		}
	}

	if _, err := ParseWeekday(c.DigestDay); err != nil {
		return err
	}
	if _, _, err := ParseClock(c.DigestTime); err != nil {
		return err
	}

	return nil
}

// ParseWeekday resolves a weekday name such as "Monday" (case-insensitive).
func ParseWeekday(name string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), name) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("DIGEST_DAY %q is not a weekday name", name)
}

// ParseClock parses an "HH:MM" wall-clock time.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("DIGEST_TIME %q is not HH:MM: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}
