package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Port              int    `env:"PORT" envDefault:"8080"`
	Address           string `env:"ADDRESS" envDefault:"0.0.0.0"`
	DatabaseDriver    string `env:"DATABASE_DRIVER" envDefault:"postgres"`
	DatabaseURL       string `env:"DATABASE_URL,required"`
	MigrateOnStart    bool   `env:"MIGRATE_ON_START" envDefault:"true"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`
	StaticDir         string `env:"STATIC_DIR" envDefault:"/app/static"`
	LogLevel          string `env:"LOG_LEVEL" envDefault:"info"`
	RedisURL          string `env:"REDIS_URL"`
	TrustProxyHeaders bool   `env:"TRUST_PROXY_HEADERS" envDefault:"false"`
	SecureCookies     bool   `env:"SECURE_COOKIES" envDefault:"false"`
	CSRFProtection    bool   `env:"CSRF_PROTECTION" envDefault:"false"`
	LoginRateLimit    int    `env:"LOGIN_RATE_LIMIT" envDefault:"5"`
	ContactRateLimit  int    `env:"CONTACT_RATE_LIMIT" envDefault:"10"`
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.Address, strconv.Itoa(c.Port))
}

func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("DATABASE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.DatabaseDriver)
	}

	if c.AdminPasswordHash == "" {
		log.Warn().Msg("ADMIN_PASSWORD_HASH is empty: admin login will always be rejected")
	} else if !strings.HasPrefix(c.AdminPasswordHash, "$2a$") &&
		!strings.HasPrefix(c.AdminPasswordHash, "$2b$") &&
		!strings.HasPrefix(c.AdminPasswordHash, "$2y$") {
		return fmt.Errorf("ADMIN_PASSWORD_HASH must be a bcrypt hash (generate with: go run scripts/hash-password.go <password>)")
	}

	if c.LoginRateLimit <= 0 {
		return fmt.Errorf("LOGIN_RATE_LIMIT must be positive")
	}
	if c.ContactRateLimit <= 0 {
		return fmt.Errorf("CONTACT_RATE_LIMIT must be positive")
	}

	if c.TrustProxyHeaders {
		log.Info().Msg("TRUST_PROXY_HEADERS enabled: client address taken from X-Forwarded-For / X-Real-IP")
	}
	if !c.SecureCookies {
		log.Warn().Msg("SECURE_COOKIES disabled: session cookie will be sent over plain HTTP")
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
