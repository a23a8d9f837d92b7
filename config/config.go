package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port int
	}
	Database struct {
		Driver string
		URL    string
	}
	Auth struct {
		SessionTTL  string
		RememberTTL string
		BcryptCost  int
	}
	Logging struct {
		Dir string
	}
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Default values
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.url", "blog.db")
	viper.SetDefault("auth.sessionttl", "24h")
	viper.SetDefault("auth.rememberttl", "720h")
	viper.SetDefault("auth.bcryptcost", 12)
	viper.SetDefault("logging.dir", "logs")

	if err := viper.ReadInConfig(); err != nil {
		// Running purely on defaults is fine; only a malformed file is fatal.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) GetSessionTTL() time.Duration {
	duration, err := time.ParseDuration(c.Auth.SessionTTL)
	if err != nil {
		return 24 * time.Hour
	}
	return duration
}

func (c *Config) GetRememberTTL() time.Duration {
	duration, err := time.ParseDuration(c.Auth.RememberTTL)
	if err != nil {
		return 30 * 24 * time.Hour
	}
	return duration
}
