package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

var knownWeakSecrets = []string{
	"change-me", "dev-secret-change-me", "secret", "admin", "password",
}

type Config struct {
	Port                   int    `env:"PORT" envDefault:"8080"`
	DatabaseURL            string `env:"DATABASE_URL,required"`
	TelegramBotToken       string `env:"TELEGRAM_BOT_TOKEN,required"`
	JWTSecret              string `env:"JWT_SECRET,required"`
	JWTTTLSeconds          int    `env:"JWT_TTL_SECONDS" envDefault:"86400"`
	PairingTokenTTLSeconds int    `env:"PAIRING_TOKEN_TTL_SECONDS" envDefault:"600"`
	LogLevel               string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLSeconds) * time.Second
}

func (c *Config) PairingTokenTTL() time.Duration {
	return time.Duration(c.PairingTokenTTLSeconds) * time.Second
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate(isProduction bool) error {
	if isProduction {
		if err := validateSecret("JWT_SECRET", c.JWTSecret); err != nil {
			return err
		}
		if c.PairingTokenTTLSeconds > 1800 {
			log.Warn().Int("seconds", c.PairingTokenTTLSeconds).
				Msg("PAIRING_TOKEN_TTL_SECONDS is unusually long: codes stay guessable for longer")
		}
	}

	return nil
}

func validateSecret(name, value string) error {
	if len(value) < 32 {
		return fmt.Errorf("%s must be at least 32 characters in production (generate with: openssl rand -base64 32)", name)
	}
	for _, weak := range knownWeakSecrets {
		if value == weak {
			return fmt.Errorf("%s is a known weak default; set a strong secret in production", name)
		}
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
