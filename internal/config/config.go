package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Chain     ChainConfig     `mapstructure:"chain"`
	Market    MarketConfig    `mapstructure:"market"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type AuthConfig struct {
	AdminKey string `mapstructure:"admin_key"`
}

type ChainConfig struct {
	// ID is bound into every typed-data domain; a signature produced for one
	// chain id never verifies on another.
	ID int64 `mapstructure:"id"`
	// EngineAddress is the verifying-contract component of the domain.
	EngineAddress string `mapstructure:"engine_address"`
}

type MarketConfig struct {
	AdminAddress string `mapstructure:"admin_address"`
	Payee        string `mapstructure:"payee"`
	FeeBps       uint32 `mapstructure:"fee_bps"`
	PaymentToken string `mapstructure:"payment_token"`
}

type RedisConfig struct {
	Addr          string `mapstructure:"addr"`
	Password      string `mapstructure:"password"`
	DB            int    `mapstructure:"db"`
	EventsListKey string `mapstructure:"events_list_key"`
	EventsListMax int    `mapstructure:"events_list_max"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")

	// Environment variables support
	// e.g. MARKETGATE_MARKET_FEE_BPS
	viper.SetEnvPrefix("marketgate")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("auth.admin_key", "")
	viper.SetDefault("chain.id", 1)
	viper.SetDefault("chain.engine_address", "0x0000000000000000000000000000000000000001")
	viper.SetDefault("market.fee_bps", 500)
	viper.SetDefault("redis.events_list_key", "settlement_events")
	viper.SetDefault("redis.events_list_max", 10000)
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")
	viper.SetDefault("rate_limit.rps", 50)
	viper.SetDefault("rate_limit.burst", 100)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found, using defaults and env vars")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
