package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix scopes every environment variable consumed by the platform.
const EnvPrefix = "medpasal"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "MEDPASAL_DB_DSN"
	EnvDBHost = "MEDPASAL_DB_HOST"
	EnvDBUser = "MEDPASAL_DB_USER"
	EnvDBName = "MEDPASAL_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Esewa        EsewaConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"MEDPASAL_APP_ENV" required:"true"`
	Port         string `envconfig:"MEDPASAL_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MEDPASAL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MEDPASAL_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MEDPASAL_DB_DSN"`
	Driver string `envconfig:"MEDPASAL_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MEDPASAL_DB_HOST"`
	LegacyPort     int    `envconfig:"MEDPASAL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MEDPASAL_DB_USER"`
	LegacyPassword string `envconfig:"MEDPASAL_DB_PASSWORD"`
	LegacyName     string `envconfig:"MEDPASAL_DB_NAME"`
	LegacySSLMode  string `envconfig:"MEDPASAL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MEDPASAL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MEDPASAL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MEDPASAL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MEDPASAL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MEDPASAL_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MEDPASAL_REDIS_ADDR"`
	Password     string        `envconfig:"MEDPASAL_REDIS_PASSWORD"`
	DB           int           `envconfig:"MEDPASAL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MEDPASAL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MEDPASAL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MEDPASAL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MEDPASAL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MEDPASAL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MEDPASAL_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MEDPASAL_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"MEDPASAL_JWT_EXPIRATION_MINUTES" default:"60"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type EsewaConfig struct {
	ProductCode     string        `envconfig:"MEDPASAL_ESEWA_PRODUCT_CODE" default:"EPAYTEST"`
	SecretKey       string        `envconfig:"MEDPASAL_ESEWA_SECRET_KEY"`
	FormURL         string        `envconfig:"MEDPASAL_ESEWA_FORM_URL" default:"https://rc-epay.esewa.com.np/api/epay/main/v2/form"`
	SuccessURL      string        `envconfig:"MEDPASAL_ESEWA_SUCCESS_URL"`
	FailureURL      string        `envconfig:"MEDPASAL_ESEWA_FAILURE_URL"`
	IdempotencyTTL  time.Duration `envconfig:"MEDPASAL_ESEWA_IDEMPOTENCY_TTL" default:"720h"`
	PendingOrderTTL time.Duration `envconfig:"MEDPASAL_ESEWA_PENDING_ORDER_TTL" default:"1h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MEDPASAL_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MEDPASAL_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
