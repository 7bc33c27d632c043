// Package config loads the service configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration, populated from environment
// variables. It satisfies the getter interface the auth package consumes.
type Config struct {
	Addr            string `env:"DIRECTORY_ADDR" envDefault:":3000"`
	AppHost         string `env:"DIRECTORY_APP_HOST" envDefault:"http://localhost:3000"`
	DSN             string `env:"DIRECTORY_DSN" envDefault:"file:directory.db?cache=shared&_pragma=foreign_keys(1)"`
	SigningKey      string `env:"DIRECTORY_SIGNING_KEY,required"`
	TokenExpiration int    `env:"DIRECTORY_TOKEN_EXPIRATION" envDefault:"720"`
	Issuer          string `env:"DIRECTORY_ISSUER" envDefault:"directory-api"`
	LogLevel        string `env:"DIRECTORY_LOG_LEVEL" envDefault:"info"`
	QueueSize       int    `env:"DIRECTORY_DISPATCH_QUEUE" envDefault:"64"`
	Workers         int    `env:"DIRECTORY_DISPATCH_WORKERS" envDefault:"2"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c *Config) GetSigningKey() string   { return c.SigningKey }
func (c *Config) GetTokenExpiration() int { return c.TokenExpiration }
func (c *Config) GetIssuer() string       { return c.Issuer }
func (c *Config) GetAppHost() string      { return c.AppHost }
func (c *Config) GetDSN() string          { return c.DSN }
