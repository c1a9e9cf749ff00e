package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "CRM"

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	Session   SessionConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Bootstrap BootstrapConfig
	Seed      SeedConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env       string `envconfig:"CRM_APP_ENV" default:"dev"`
	Port      string `envconfig:"CRM_PORT" default:"8080"`
	LogLevel  string `envconfig:"CRM_LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"CRM_LOG_FORMAT" default:"json"`
	GinMode   string `envconfig:"CRM_GIN_MODE" default:"debug"`
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, "prod") || strings.EqualFold(a.Env, "production")
}

type DBConfig struct {
	Driver string `envconfig:"CRM_DB_DRIVER" default:"mysql"`
	DSN    string `envconfig:"CRM_DB_DSN"`

	Host     string `envconfig:"CRM_DB_HOST" default:"localhost"`
	Port     string `envconfig:"CRM_DB_PORT"`
	User     string `envconfig:"CRM_DB_USER" default:"crmuser"`
	Password string `envconfig:"CRM_DB_PASSWORD" default:"crmpassword"`
	Name     string `envconfig:"CRM_DB_NAME" default:"crm"`
	SSLMode  string `envconfig:"CRM_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CRM_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CRM_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CRM_DB_CONN_MAX_LIFETIME" default:"1h"`
}

func (d *DBConfig) ensureDSN() error {
	d.Driver = strings.ToLower(strings.TrimSpace(d.Driver))
	if d.DSN != "" {
		return nil
	}

	switch d.Driver {
	case DriverMySQL:
		port := d.Port
		if port == "" {
			port = "3306"
		}
		d.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			d.User, d.Password, d.Host, port, d.Name)
	case DriverPostgres:
		port := d.Port
		if port == "" {
			port = "5432"
		}
		d.DSN = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			d.Host, port, d.User, d.Password, d.Name, d.SSLMode)
	case DriverSQLite:
		d.DSN = "crm.db"
	default:
		return fmt.Errorf("unsupported db driver %q", d.Driver)
	}
	return nil
}

type RedisConfig struct {
	Enabled  bool   `envconfig:"CRM_REDIS_ENABLED" default:"false"`
	Addr     string `envconfig:"CRM_REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"CRM_REDIS_PASSWORD"`
	DB       int    `envconfig:"CRM_REDIS_DB" default:"0"`
	PoolSize int    `envconfig:"CRM_REDIS_POOL_SIZE" default:"10"`
}

type SessionConfig struct {
	Secret string        `envconfig:"CRM_SESSION_SECRET" default:"default-secret-key-change-me"`
	MaxAge time.Duration `envconfig:"CRM_SESSION_MAX_AGE" default:"168h"`
}

type JWTConfig struct {
	Secret string        `envconfig:"CRM_JWT_SECRET" default:"default-jwt-secret-change-me"`
	Issuer string        `envconfig:"CRM_JWT_ISSUER" default:"crm-api"`
	TTL    time.Duration `envconfig:"CRM_JWT_TTL" default:"12h"`
}

type RateLimitConfig struct {
	LoginWindow    time.Duration `envconfig:"CRM_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit   int           `envconfig:"CRM_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	LoginUserLimit int           `envconfig:"CRM_RATE_LIMIT_LOGIN_USER_LIMIT" default:"5"`
}

type BootstrapConfig struct {
	AdminUsername string `envconfig:"CRM_BOOTSTRAP_ADMIN_USERNAME" default:"admin"`
	AdminEmail    string `envconfig:"CRM_BOOTSTRAP_ADMIN_EMAIL" default:"admin@example.com"`
	AdminPassword string `envconfig:"CRM_BOOTSTRAP_ADMIN_PASSWORD"`
}

type SeedConfig struct {
	DefaultPassword string `envconfig:"CRM_SEED_DEFAULT_PASSWORD" default:"Welcome1"`
}
