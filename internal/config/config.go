package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime settings, loaded from the environment.
type Config struct {
	AppEnv string `envconfig:"APP_ENV" default:"production"`
	Port   string `envconfig:"PORT" default:"3000"`

	DatabaseURL string `envconfig:"DATABASE_URL"`
	DBHost      string `envconfig:"DB_HOST" default:"localhost"`
	DBUser      string `envconfig:"DB_USER" default:"postgres"`
	DBPassword  string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName      string `envconfig:"DB_NAME" default:"stock_transfer"`
	DBPort      string `envconfig:"DB_PORT" default:"5432"`

	// JWTSecret is also read directly by pkg/jwt; listed here so a missing
	// value surfaces at boot rather than at the first login.
	JWTSecret string `envconfig:"JWT_SECRET"`

	// One-time permissions expire after one use or this TTL, whichever
	// comes first.
	PermissionTTL time.Duration `envconfig:"PERMISSION_TTL" default:"1h"`
	SweepInterval time.Duration `envconfig:"PERMISSION_SWEEP_INTERVAL" default:"5m"`
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DSN returns the postgres connection string.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return "host=" + c.DBHost + " user=" + c.DBUser + " password=" + c.DBPassword +
		" dbname=" + c.DBName + " port=" + c.DBPort + " sslmode=disable TimeZone=UTC"
}

// IsDevelopment reports whether the app runs with development logging.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}
