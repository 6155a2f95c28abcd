package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Eventing     EventingConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Cron         CronConfig
	Reports      ReportsConfig
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
	Env          string `envconfig:"MERCHANTPULSE_APP_ENV" required:"true"`
	Port         string `envconfig:"MERCHANTPULSE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MERCHANTPULSE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MERCHANTPULSE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"MERCHANTPULSE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"MERCHANTPULSE_DB_DSN"`
	Driver string `envconfig:"MERCHANTPULSE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MERCHANTPULSE_DB_HOST"`
	LegacyPort     int    `envconfig:"MERCHANTPULSE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MERCHANTPULSE_DB_USER"`
	LegacyPassword string `envconfig:"MERCHANTPULSE_DB_PASSWORD"`
	LegacyName     string `envconfig:"MERCHANTPULSE_DB_NAME"`
	LegacySSLMode  string `envconfig:"MERCHANTPULSE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MERCHANTPULSE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MERCHANTPULSE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MERCHANTPULSE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MERCHANTPULSE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MERCHANTPULSE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MERCHANTPULSE_REDIS_ADDR"`
	Password     string        `envconfig:"MERCHANTPULSE_REDIS_PASSWORD"`
	DB           int           `envconfig:"MERCHANTPULSE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MERCHANTPULSE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MERCHANTPULSE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MERCHANTPULSE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MERCHANTPULSE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MERCHANTPULSE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MERCHANTPULSE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MERCHANTPULSE_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	IdempotencyTTL time.Duration `envconfig:"MERCHANTPULSE_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"MERCHANTPULSE_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"MERCHANTPULSE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"MERCHANTPULSE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	IngestionSubscription string `envconfig:"MERCHANTPULSE_PUBSUB_INGESTION_SUBSCRIPTION" required:"true"`
}

type CronConfig struct {
	Interval          time.Duration `envconfig:"MERCHANTPULSE_CRON_INTERVAL" default:"1h"`
	LockTTL           time.Duration `envconfig:"MERCHANTPULSE_CRON_LOCK_TTL" default:"10m"`
	TelemetryMaxAge   time.Duration `envconfig:"MERCHANTPULSE_CRON_TELEMETRY_MAX_AGE" default:"336h"`
	DigestMaxAge      time.Duration `envconfig:"MERCHANTPULSE_CRON_DIGEST_MAX_AGE" default:"24h"`
	FreshnessDisabled bool          `envconfig:"MERCHANTPULSE_CRON_FRESHNESS_DISABLED" default:"false"`
}

type ReportsConfig struct {
	DefaultWindowWeeks int           `envconfig:"MERCHANTPULSE_REPORTS_DEFAULT_WINDOW_WEEKS" default:"4"`
	MaxWindowWeeks     int           `envconfig:"MERCHANTPULSE_REPORTS_MAX_WINDOW_WEEKS" default:"52"`
	DefaultMinDaysLive int           `envconfig:"MERCHANTPULSE_REPORTS_DEFAULT_MIN_DAYS_LIVE" default:"0"`
	SummaryBatchSize   int           `envconfig:"MERCHANTPULSE_REPORTS_SUMMARY_BATCH_SIZE" default:"200"`
	ExportRateLimit    int           `envconfig:"MERCHANTPULSE_REPORTS_EXPORT_RATE_LIMIT" default:"10"`
	ExportRateWindow   time.Duration `envconfig:"MERCHANTPULSE_REPORTS_EXPORT_RATE_WINDOW" default:"1m"`
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
