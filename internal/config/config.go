package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "GNAP"

const (
	KeyHTTPAddr           = "http.addr"
	KeyDatabaseDSN        = "database.dsn"
	KeyIssuer             = "issuer"
	KeyTokenLifetime      = "token.lifetime"
	KeyInteractionTimeout = "interaction.timeout"
	KeyCleanupSchedule    = "cleanup.schedule"
	KeyLogLevel           = "log.level"
	KeyLogFormat          = "log.format"
	KeyAppName            = "app.name"
)

const (
	DefaultHTTPAddr           = ":8080"
	DefaultIssuer             = "https://auth.example.com"
	DefaultTokenLifetime      = 3600
	DefaultInteractionTimeout = 300
	DefaultCleanupSchedule    = "@every 1h"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	HTTPAddr    string
	DatabaseDSN string // vacío => storage in-memory

	Issuer string

	TokenLifetimeSeconds      int
	InteractionTimeoutSeconds int

	CleanupSchedule string

	LogLevel  string
	LogFormat string
	AppName   string
}

// NewViper crea una instancia con defaults y lectura de env GNAP_*.
// Los flags de cobra se enlazan encima con BindPFlag.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyHTTPAddr, DefaultHTTPAddr)
	v.SetDefault(KeyDatabaseDSN, "")
	v.SetDefault(KeyIssuer, DefaultIssuer)
	v.SetDefault(KeyTokenLifetime, DefaultTokenLifetime)
	v.SetDefault(KeyInteractionTimeout, DefaultInteractionTimeout)
	v.SetDefault(KeyCleanupSchedule, DefaultCleanupSchedule)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "json")
	v.SetDefault(KeyAppName, "gnap-as")
}

func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = NewViper()
	}

	cfg := Config{
		HTTPAddr:                  strings.TrimSpace(v.GetString(KeyHTTPAddr)),
		DatabaseDSN:               strings.TrimSpace(v.GetString(KeyDatabaseDSN)),
		Issuer:                    strings.TrimRight(strings.TrimSpace(v.GetString(KeyIssuer)), "/"),
		TokenLifetimeSeconds:      v.GetInt(KeyTokenLifetime),
		InteractionTimeoutSeconds: v.GetInt(KeyInteractionTimeout),
		CleanupSchedule:           strings.TrimSpace(v.GetString(KeyCleanupSchedule)),
		LogLevel:                  v.GetString(KeyLogLevel),
		LogFormat:                 v.GetString(KeyLogFormat),
		AppName:                   v.GetString(KeyAppName),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default devuelve la config por defecto (útil en tests y modo dev).
func Default() Config {
	return Config{
		HTTPAddr:                  DefaultHTTPAddr,
		Issuer:                    DefaultIssuer,
		TokenLifetimeSeconds:      DefaultTokenLifetime,
		InteractionTimeoutSeconds: DefaultInteractionTimeout,
		CleanupSchedule:           DefaultCleanupSchedule,
		LogLevel:                  "info",
		LogFormat:                 "json",
		AppName:                   "gnap-as",
	}
}

func (c Config) Validate() error {
	if c.TokenLifetimeSeconds <= 0 {
		return fmt.Errorf("%w: %s must be > 0", ErrInvalidConfig, KeyTokenLifetime)
	}
	if c.InteractionTimeoutSeconds <= 0 {
		return fmt.Errorf("%w: %s must be > 0", ErrInvalidConfig, KeyInteractionTimeout)
	}
	u, err := url.Parse(c.Issuer)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %s must be an absolute url", ErrInvalidConfig, KeyIssuer)
	}
	return nil
}

func (c Config) TokenLifetime() time.Duration {
	return time.Duration(c.TokenLifetimeSeconds) * time.Second
}

func (c Config) InteractionTimeout() time.Duration {
	return time.Duration(c.InteractionTimeoutSeconds) * time.Second
}
