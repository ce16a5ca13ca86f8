package config

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(NewViper())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("default config mismatch (-want +got):\n%s", diff)
	}
	if cfg.TokenLifetime() != time.Hour {
		t.Fatalf("expected 1h token lifetime, got %s", cfg.TokenLifetime())
	}
	if cfg.InteractionTimeout() != 5*time.Minute {
		t.Fatalf("expected 5m interaction timeout, got %s", cfg.InteractionTimeout())
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("GNAP_ISSUER", "https://as.test/")
	t.Setenv("GNAP_TOKEN_LIFETIME", "120")
	t.Setenv("GNAP_INTERACTION_TIMEOUT", "30")
	t.Setenv("GNAP_DATABASE_DSN", "postgres://localhost/gnap")

	cfg, err := Load(NewViper())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Issuer != "https://as.test" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Issuer)
	}
	if cfg.TokenLifetimeSeconds != 120 || cfg.InteractionTimeoutSeconds != 30 {
		t.Fatalf("unexpected lifetimes: %d/%d", cfg.TokenLifetimeSeconds, cfg.InteractionTimeoutSeconds)
	}
	if cfg.DatabaseDSN != "postgres://localhost/gnap" {
		t.Fatalf("unexpected dsn %q", cfg.DatabaseDSN)
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"GNAP_TOKEN_LIFETIME":      "0",
		"GNAP_INTERACTION_TIMEOUT": "-1",
		"GNAP_ISSUER":              "not-a-url",
	}
	for env, val := range cases {
		t.Run(env, func(t *testing.T) {
			t.Setenv(env, val)
			_, err := Load(NewViper())
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
