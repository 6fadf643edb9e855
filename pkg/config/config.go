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
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Orders       OrdersConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Webhooks     WebhooksConfig
	Surface      SurfaceConfig
	Reconcile    ReconcileConfig
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
	Env          string `envconfig:"CRAFTWORKS_APP_ENV" required:"true"`
	Port         string `envconfig:"CRAFTWORKS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CRAFTWORKS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CRAFTWORKS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CRAFTWORKS_DB_DSN"`
	Driver string `envconfig:"CRAFTWORKS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CRAFTWORKS_DB_HOST"`
	LegacyPort     int    `envconfig:"CRAFTWORKS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CRAFTWORKS_DB_USER"`
	LegacyPassword string `envconfig:"CRAFTWORKS_DB_PASSWORD"`
	LegacyName     string `envconfig:"CRAFTWORKS_DB_NAME"`
	LegacySSLMode  string `envconfig:"CRAFTWORKS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CRAFTWORKS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CRAFTWORKS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CRAFTWORKS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CRAFTWORKS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CRAFTWORKS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CRAFTWORKS_REDIS_ADDR"`
	Password     string        `envconfig:"CRAFTWORKS_REDIS_PASSWORD"`
	DB           int           `envconfig:"CRAFTWORKS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CRAFTWORKS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CRAFTWORKS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CRAFTWORKS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CRAFTWORKS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CRAFTWORKS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CRAFTWORKS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CRAFTWORKS_JWT_ISSUER" default:"craftworks"`
	ExpirationMinutes int    `envconfig:"CRAFTWORKS_JWT_EXPIRATION_MINUTES" default:"60"`
}

type OrdersConfig struct {
	MaxQuantity      int `envconfig:"CRAFTWORKS_ORDERS_MAX_QUANTITY" default:"9999"`
	ListDefaultLimit int `envconfig:"CRAFTWORKS_ORDERS_LIST_DEFAULT_LIMIT" default:"10"`
	ListMaxLimit     int `envconfig:"CRAFTWORKS_ORDERS_LIST_MAX_LIMIT" default:"50"`
}

type RateLimitConfig struct {
	Window time.Duration `envconfig:"CRAFTWORKS_RATE_LIMIT_WINDOW" default:"1m"`
	Limit  int64         `envconfig:"CRAFTWORKS_RATE_LIMIT_LIMIT" default:"120"`
}

type FeatureFlagsConfig struct {
	AutoMigrate        bool `envconfig:"CRAFTWORKS_AUTO_MIGRATE" default:"false"`
	ReconcileOnStartup bool `envconfig:"CRAFTWORKS_RECONCILE_ON_STARTUP" default:"true"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"CRAFTWORKS_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"CRAFTWORKS_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"CRAFTWORKS_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	NotificationTopic        string `envconfig:"CRAFTWORKS_PUBSUB_NOTIFICATION_TOPIC" default:"cw-order-events"`
	NotificationSubscription string `envconfig:"CRAFTWORKS_PUBSUB_NOTIFICATION_SUBSCRIPTION" required:"true"`
}

// WebhooksConfig maps ledger actions to mirror webhook URLs. Empty entries
// fall back to Default.
type WebhooksConfig struct {
	Created   string `envconfig:"CRAFTWORKS_WEBHOOK_CREATED"`
	Progress  string `envconfig:"CRAFTWORKS_WEBHOOK_PROGRESS"`
	Completed string `envconfig:"CRAFTWORKS_WEBHOOK_COMPLETED"`
	HandedOff string `envconfig:"CRAFTWORKS_WEBHOOK_HANDED_OFF"`
	Default   string `envconfig:"CRAFTWORKS_WEBHOOK_DEFAULT"`
}

type SurfaceConfig struct {
	BotToken   string        `envconfig:"CRAFTWORKS_SURFACE_BOT_TOKEN"`
	APIBaseURL string        `envconfig:"CRAFTWORKS_SURFACE_API_BASE_URL" default:"https://discord.com/api/v10"`
	Timeout    time.Duration `envconfig:"CRAFTWORKS_SURFACE_TIMEOUT" default:"10s"`
}

type ReconcileConfig struct {
	LockKey string        `envconfig:"CRAFTWORKS_RECONCILE_LOCK_KEY" default:"cw:reconcile:lock"`
	LockTTL time.Duration `envconfig:"CRAFTWORKS_RECONCILE_LOCK_TTL" default:"10m"`
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
