package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Port:              "8000",
		Env:               "production",
		DatabaseURL:       "postgres://localhost/malaria",
		JWTSecret:         "secret",
		JunebugChannelURL: "https://junebug.example.org/channels/abc",
		SMTPHost:          "smtp.example.org",
		ForwardToJembi:    true,
		JembiURL:          "https://jembi.example.org/malaria24",
		JembiUsername:     "user",
		JembiPassword:     "pass",
		DigestDay:         "Monday",
		DigestTime:        "08:15",
	}
}

func TestValidate(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_JembiCredentialsRequired(t *testing.T) {
	cfg := validConfig()
	cfg.JembiPassword = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing jembi credentials")
	}
}

func TestValidate_JembiDisabledSkipsCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.ForwardToJembi = false
	cfg.JembiURL = ""
	cfg.JembiUsername = ""
	cfg.JembiPassword = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_ProductionRequiresSecret(t *testing.T) {
	cfg := validConfig()
	cfg.JWTSecret = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing JWT_SECRET in production")
	}
}

func TestValidate_DevelopmentRelaxed(t *testing.T) {
	cfg := validConfig()
	cfg.Env = "development"
	cfg.JWTSecret = ""
	cfg.JunebugChannelURL = ""
	cfg.SMTPHost = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseWeekday(t *testing.T) {
	d, err := ParseWeekday("monday")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != time.Monday {
		t.Errorf("expected Monday, got %s", d)
	}
	if _, err := ParseWeekday("Funday"); err == nil {
		t.Error("expected error for bad weekday")
	}
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("08:15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h != 8 || m != 15 {
		t.Errorf("expected 8:15, got %d:%d", h, m)
	}
	if _, _, err := ParseClock("25:00"); err == nil {
		t.Error("expected error for bad clock time")
	}
}
