package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix is handed to envconfig; fields carry fully qualified
	// names, so the prefix stays empty.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Environment variable names shared with tests and deploy tooling.
const (
	EnvAppEnv    = "PRICEGRID_APP_ENV"
	EnvPort      = "PRICEGRID_APP_PORT"
	EnvDBDSN     = "PRICEGRID_DB_DSN"
	EnvDBHost    = "PRICEGRID_DB_HOST"
	EnvDBUser    = "PRICEGRID_DB_USER"
	EnvDBName    = "PRICEGRID_DB_NAME"
	EnvRedisURL  = "PRICEGRID_REDIS_URL"
	EnvJWTSecret = "PRICEGRID_JWT_SECRET"
	EnvJWTIssuer = "PRICEGRID_JWT_ISSUER"
	EnvJWTExp    = "PRICEGRID_JWT_EXPIRATION_MINUTES"

	EnvGCPProjectID     = "PRICEGRID_GCP_PROJECT_ID"
	EnvPubSubQuoteTopic = "PRICEGRID_PUBSUB_QUOTE_TOPIC"
	EnvPubSubQuoteSub   = "PRICEGRID_PUBSUB_QUOTE_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Quote        QuoteConfig
	Catalog      CatalogConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
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
	Env          string `envconfig:"PRICEGRID_APP_ENV" required:"true"`
	Port         string `envconfig:"PRICEGRID_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PRICEGRID_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PRICEGRID_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PRICEGRID_DB_DSN"`
	Driver string `envconfig:"PRICEGRID_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PRICEGRID_DB_HOST"`
	LegacyPort     int    `envconfig:"PRICEGRID_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PRICEGRID_DB_USER"`
	LegacyPassword string `envconfig:"PRICEGRID_DB_PASSWORD"`
	LegacyName     string `envconfig:"PRICEGRID_DB_NAME"`
	LegacySSLMode  string `envconfig:"PRICEGRID_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PRICEGRID_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PRICEGRID_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PRICEGRID_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PRICEGRID_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PRICEGRID_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PRICEGRID_REDIS_ADDR"`
	Password     string        `envconfig:"PRICEGRID_REDIS_PASSWORD"`
	DB           int           `envconfig:"PRICEGRID_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PRICEGRID_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PRICEGRID_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PRICEGRID_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PRICEGRID_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PRICEGRID_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PRICEGRID_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PRICEGRID_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"PRICEGRID_JWT_EXPIRATION_MINUTES" required:"true"`
}

// QuoteConfig tunes the quote service behavior.
type QuoteConfig struct {
	CacheTTL       time.Duration `envconfig:"PRICEGRID_QUOTE_CACHE_TTL" default:"30s"`
	PublishTimeout time.Duration `envconfig:"PRICEGRID_QUOTE_PUBLISH_TIMEOUT" default:"5s"`
}

// CatalogConfig tunes pricing-config snapshot caching.
type CatalogConfig struct {
	CacheTTL       time.Duration `envconfig:"PRICEGRID_CATALOG_CACHE_TTL" default:"5m"`
	PublishTimeout time.Duration `envconfig:"PRICEGRID_CATALOG_PUBLISH_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PRICEGRID_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PRICEGRID_AUTO_MIGRATE" default:"false"`
	QuoteEvents bool `envconfig:"PRICEGRID_FEATURE_QUOTE_EVENTS" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"PRICEGRID_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"PRICEGRID_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"PRICEGRID_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	QuoteTopic          string `envconfig:"PRICEGRID_PUBSUB_QUOTE_TOPIC"`
	QuoteSubscription   string `envconfig:"PRICEGRID_PUBSUB_QUOTE_SUBSCRIPTION"`
	CatalogTopic        string `envconfig:"PRICEGRID_PUBSUB_CATALOG_TOPIC"`
	CatalogSubscription string `envconfig:"PRICEGRID_PUBSUB_CATALOG_SUBSCRIPTION"`
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
