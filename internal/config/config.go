package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Storage   StorageConfig   `mapstructure:"storage"`
	State     StateConfig     `mapstructure:"state"`
	Session   SessionConfig   `mapstructure:"session"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Log       LogConfig       `mapstructure:"log"`
	OTC       OTCConfig       `mapstructure:"otc"`
	Recovery  RecoveryConfig  `mapstructure:"recovery"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Events    EventsConfig    `mapstructure:"events"`
	Admin     AdminConfig     `mapstructure:"admin"`
}

type ServerConfig struct {
	Host                    string        `mapstructure:"host"`
	Port                    int           `mapstructure:"port"`
	Mode                    string        `mapstructure:"mode"`
	ReadTimeout             time.Duration `mapstructure:"read_timeout"`
	WriteTimeout            time.Duration `mapstructure:"write_timeout"`
	GracefulShutdownTimeout time.Duration `mapstructure:"graceful_shutdown_timeout"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	DB              string        `mapstructure:"db"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type StorageConfig struct {
	Backend string `mapstructure:"backend"` // "postgres" | "memory"
}

type StateConfig struct {
	Backend string `mapstructure:"backend"` // "redis" | "memory"
}

type SessionConfig struct {
	SigningKey   string        `mapstructure:"signing_key"`
	Issuer       string        `mapstructure:"issuer"`
	TTL          time.Duration `mapstructure:"ttl"`
	CookieName   string        `mapstructure:"cookie_name"`
	CookieDomain string        `mapstructure:"cookie_domain"`
	CookieSecure bool          `mapstructure:"cookie_secure"`
}

type CORSConfig struct {
	AllowedOrigins   []string      `mapstructure:"allowed_origins"`
	AllowedMethods   []string      `mapstructure:"allowed_methods"`
	AllowedHeaders   []string      `mapstructure:"allowed_headers"`
	AllowCredentials bool          `mapstructure:"allow_credentials"`
	MaxAge           time.Duration `mapstructure:"max_age"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type OTCConfig struct {
	InitialUses int `mapstructure:"initial_uses"`
}

type RecoveryConfig struct {
	SealKey string `mapstructure:"seal_key"` // 32 bytes, hex encoded
}

type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Capacity       int           `mapstructure:"capacity"`
	RefillTokens   int           `mapstructure:"refill_tokens"`
	RefillInterval time.Duration `mapstructure:"refill_interval"`
	TTL            time.Duration `mapstructure:"ttl"`
	Prefix         string        `mapstructure:"prefix"`
}

type EventsConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	AMQPURL       string `mapstructure:"amqp_url"`
	DiscountQueue string `mapstructure:"discount_queue"`
	FeedbackQueue string `mapstructure:"feedback_queue"`
}

type AdminConfig struct {
	BootstrapCode  string `mapstructure:"bootstrap_code"`
	InitialCredits int    `mapstructure:"initial_credits"`
}

// ErrSealKeyRequired is returned by Validate when a persistent store is
// configured without a recovery seal key.
var ErrSealKeyRequired = errors.New("recovery.seal_key is required with the postgres storage backend")

// Validate checks settings that cannot be defaulted. Recovery index entries
// sealed under one key are unreadable under another, so a persistent store
// needs a fixed key.
func (c *Config) Validate() error {
	if c.Storage.Backend == "postgres" && strings.TrimSpace(c.Recovery.SealKey) == "" {
		return ErrSealKeyRequired
	}
	return nil
}

// Load reads config.yaml, overlays environment variables, and returns Config.
// A .env file next to the binary is loaded first when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	// Environment variable override: DATABASE_POSTGRES_HOST -> database.postgres.host
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	normalize(cfg)
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.graceful_shutdown_timeout", 15*time.Second)
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.sslmode", "disable")
	v.SetDefault("database.postgres.max_idle_conns", 5)
	v.SetDefault("database.postgres.max_open_conns", 20)
	v.SetDefault("database.postgres.conn_max_lifetime", time.Hour)
	v.SetDefault("database.postgres.auto_migrate", true)
	v.SetDefault("database.redis.port", 6379)
	v.SetDefault("database.redis.pool_size", 10)
	v.SetDefault("storage.backend", "postgres")
	v.SetDefault("state.backend", "memory")
	v.SetDefault("session.signing_key", "")
	v.SetDefault("session.issuer", "touristiq")
	v.SetDefault("recovery.seal_key", "")
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.cookie_name", "session_token")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("otc.initial_uses", 10)
	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.capacity", 10)
	v.SetDefault("ratelimit.refill_tokens", 1)
	v.SetDefault("ratelimit.refill_interval", 30*time.Second)
	v.SetDefault("ratelimit.ttl", 10*time.Minute)
	v.SetDefault("ratelimit.prefix", "rl")
	v.SetDefault("events.discount_queue", "discount.applied")
	v.SetDefault("events.feedback_queue", "feedback.recorded")
	v.SetDefault("admin.initial_credits", 1000)
}

func normalize(cfg *Config) {
	rl := &cfg.RateLimit
	if rl.Capacity < 1 {
		rl.Capacity = 1
	}
	if rl.RefillTokens < 1 {
		rl.RefillTokens = 1
	}
	if rl.RefillInterval <= 0 {
		rl.RefillInterval = time.Second
	}
	if minTTL := 5 * rl.RefillInterval; rl.TTL < minTTL {
		rl.TTL = minTTL
	}
	if cfg.OTC.InitialUses < 0 {
		cfg.OTC.InitialUses = 0
	}
}
