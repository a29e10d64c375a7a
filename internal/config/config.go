package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	ServiceName string
	ServiceID   string
	HTTPPort    int
	LogLevel    string

	StoreDriver    string
	DBHost         string
	DBPort         int
	DBUser         string
	DBPassword     string
	DBName         string
	DBMaxOpenConns int
	SeedProducts   bool

	RedisHost string
	RedisPort int
	CacheTTL  time.Duration

	RabbitMQHost     string
	RabbitMQPort     int
	RabbitMQUser     string
	RabbitMQPassword string

	DiscoveryEnabled bool
	ConsulHost       string
	ConsulPort       int
	// address advertised to Consul; empty means the outbound interface
	ServiceAddress   string

	// used by the gateway when Consul has no healthy instance
	OrderServiceURL string
}

// Load reads the environment for service, falling back to local defaults
func Load(service string, defaultPort int) (*Config, error) {
	l := loader{}

	cfg := &Config{
		ServiceName: service,
		ServiceID:   l.getString("SERVICE_ID", service+"-1"),
		HTTPPort:    l.getInt("HTTP_PORT", defaultPort),
		LogLevel:    l.getString("LOG_LEVEL", "info"),

		StoreDriver:    l.getString("STORE_DRIVER", StoreDriverPostgres),
		DBHost:         l.getString("DB_HOST", "localhost"),
		DBPort:         l.getInt("DB_PORT", 5432),
		DBUser:         l.getString("DB_USER", "minisys"),
		DBPassword:     l.getString("DB_PASSWORD", "minisys123"),
		DBName:         l.getString("DB_NAME", "siwaka_dishes"),
		DBMaxOpenConns: l.getInt("DB_MAX_OPEN_CONNS", 25),
		SeedProducts:   l.getBool("SEED_PRODUCTS", false),

		RedisHost: l.getString("REDIS_HOST", "localhost"),
		RedisPort: l.getInt("REDIS_PORT", 6379),
		CacheTTL:  l.getDuration("CACHE_TTL", 5*time.Minute),

		RabbitMQHost:     l.getString("RABBITMQ_HOST", "localhost"),
		RabbitMQPort:     l.getInt("RABBITMQ_PORT", 5672),
		RabbitMQUser:     l.getString("RABBITMQ_USER", "guest"),
		RabbitMQPassword: l.getString("RABBITMQ_PASSWORD", "guest"),

		DiscoveryEnabled: l.getBool("DISCOVERY_ENABLED", true),
		ConsulHost:       l.getString("CONSUL_HOST", "localhost"),
		ConsulPort:       l.getInt("CONSUL_PORT", 8500),
		ServiceAddress:   l.getString("SERVICE_ADDRESS", ""),

		OrderServiceURL: l.getString("ORDER_SERVICE_URL", "http://order-service:8082"),
	}

	if l.err != nil {
		return nil, l.err
	}
	if cfg.StoreDriver != StoreDriverPostgres && cfg.StoreDriver != StoreDriverMemory {
		return nil, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverMemory, cfg.StoreDriver)
	}

	return cfg, nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// loader keeps the first parse error so Load can report it once
type loader struct {
	err error
}

func (l *loader) getString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func (l *loader) getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		l.fail(fmt.Errorf("%s must be an integer: %w", key, err))
		return def
	}
	return n
}

func (l *loader) getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		l.fail(fmt.Errorf("%s must be a boolean: %w", key, err))
		return def
	}
	return b
}

func (l *loader) getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		l.fail(fmt.Errorf("%s must be a duration: %w", key, err))
		return def
	}
	return d
}

func (l *loader) fail(err error) {
	if l.err == nil {
		l.err = err
	}
}
