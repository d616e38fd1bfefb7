package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	TourAPI  TourAPIConfig  `mapstructure:"tourapi"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds the local HTTP API settings
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// TourAPIConfig holds Korea Tourism Organization API configuration
type TourAPIConfig struct {
	BaseURL              string   `mapstructure:"base_url"`
	ServiceKey           string   `mapstructure:"service_key"`
	MobileOS             string   `mapstructure:"mobile_os"`
	MobileApp            string   `mapstructure:"mobile_app"`
	Timeout              int      `mapstructure:"timeout"` // seconds, per attempt
	MaxRetries           int      `mapstructure:"max_retries"`
	MaxRequestsPerSecond int      `mapstructure:"max_requests_per_second"`
	PetBatchSize         int      `mapstructure:"pet_batch_size"`
	Proxies              []string `mapstructure:"proxies"`
	ProbeProxies         bool     `mapstructure:"probe_proxies"` // drop proxies that fail a startup request

	// Circuit breaker
	BreakerFailures int `mapstructure:"breaker_failures"`
	BreakerTimeout  int `mapstructure:"breaker_timeout"` // seconds
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// CacheConfig controls response caching in front of the TourAPI
type CacheConfig struct {
	TTL       int `mapstructure:"ttl"`        // seconds
	AreaTTL   int `mapstructure:"area_ttl"`   // seconds
	CleanupMs int `mapstructure:"cleanup_ms"` // in-process janitor interval
}

// SyncConfig controls the background region crawler
type SyncConfig struct {
	Enabled       bool     `mapstructure:"enabled"`
	Workers       int      `mapstructure:"workers"`
	SaveInterval  int      `mapstructure:"save_interval"`
	Regions       []string `mapstructure:"regions"`
	PageSize      int      `mapstructure:"page_size"`
	ConsumerGroup string   `mapstructure:"consumer_group"`
	MinIdleTime   int      `mapstructure:"min_idle_time"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from an optional YAML file with environment variable overrides
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")

	v.SetDefault("tourapi.base_url", "https://apis.data.go.kr/B551011/KorService2")
	v.SetDefault("tourapi.service_key", "")
	v.SetDefault("tourapi.mobile_os", "ETC")
	v.SetDefault("tourapi.mobile_app", "TourKorea")
	v.SetDefault("tourapi.timeout", 30)
	v.SetDefault("tourapi.max_retries", 3)
	v.SetDefault("tourapi.max_requests_per_second", 20)
	v.SetDefault("tourapi.pet_batch_size", 10)
	v.SetDefault("tourapi.proxies", []string{})
	v.SetDefault("tourapi.probe_proxies", true)
	v.SetDefault("tourapi.breaker_failures", 5)
	v.SetDefault("tourapi.breaker_timeout", 60)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "tourkorea")
	v.SetDefault("database.user", "tourkorea")
	v.SetDefault("database.password", "tourkorea")
	v.SetDefault("database.ssl_mode", "disable")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)

	v.SetDefault("cache.ttl", 600)
	v.SetDefault("cache.area_ttl", 86400)
	v.SetDefault("cache.cleanup_ms", 60000)

	v.SetDefault("sync.enabled", false)
	v.SetDefault("sync.workers", 4)
	v.SetDefault("sync.save_interval", 5)
	v.SetDefault("sync.regions", []string{"1", "6", "39"})
	v.SetDefault("sync.page_size", 50)
	v.SetDefault("sync.consumer_group", "tourkorea_sync")
	v.SetDefault("sync.min_idle_time", 120)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
