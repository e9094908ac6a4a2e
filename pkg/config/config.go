package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Checkout      CheckoutConfig
	Paystack      PaystackConfig
	Rates         RatesConfig
	Resend        ResendConfig
	Frontend      FrontendConfig
	GCP           GCPConfig
	GCS           GCSConfig
	PubSub        PubSubConfig
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
	Env          string `envconfig:"SXO6_APP_ENV" required:"true"`
	Port         string `envconfig:"SXO6_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SXO6_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SXO6_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SXO6_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SXO6_DB_DSN"`
	Driver string `envconfig:"SXO6_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SXO6_DB_HOST"`
	LegacyPort     int    `envconfig:"SXO6_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SXO6_DB_USER"`
	LegacyPassword string `envconfig:"SXO6_DB_PASSWORD"`
	LegacyName     string `envconfig:"SXO6_DB_NAME"`
	LegacySSLMode  string `envconfig:"SXO6_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SXO6_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SXO6_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SXO6_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SXO6_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SXO6_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SXO6_REDIS_ADDR"`
	Password     string        `envconfig:"SXO6_REDIS_PASSWORD"`
	DB           int           `envconfig:"SXO6_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SXO6_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SXO6_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SXO6_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SXO6_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SXO6_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SXO6_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SXO6_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SXO6_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"SXO6_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int           `envconfig:"SXO6_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int           `envconfig:"SXO6_ARGON_TIME" default:"3"`
	ArgonParallelism int           `envconfig:"SXO6_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int           `envconfig:"SXO6_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int           `envconfig:"SXO6_ARGON_KEY_LEN" default:"32"`
	ResetTokenTTL    time.Duration `envconfig:"SXO6_PASSWORD_RESET_TOKEN_TTL" default:"1h"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SXO6_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"SXO6_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SXO6_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"SXO6_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"SXO6_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"SXO6_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SXO6_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SXO6_AUTO_MIGRATE" default:"false"`
}

// CheckoutConfig carries storefront pricing policy knobs.
type CheckoutConfig struct {
	FreeShippingThresholdUSD string `envconfig:"SXO6_FREE_SHIPPING_THRESHOLD_USD" default:"200.00"`
	FlatShippingUSD          string `envconfig:"SXO6_FLAT_SHIPPING_USD" default:"15.00"`
	ReferencePrefix          string `envconfig:"SXO6_PAYMENT_REFERENCE_PREFIX" default:"SXO6"`
}

type PaystackConfig struct {
	SecretKey string        `envconfig:"SXO6_PAYSTACK_SECRET_KEY" required:"true"`
	BaseURL   string        `envconfig:"SXO6_PAYSTACK_BASE_URL" default:"https://api.paystack.co"`
	Timeout   time.Duration `envconfig:"SXO6_PAYSTACK_TIMEOUT" default:"15s"`
}

type RatesConfig struct {
	BaseURL      string        `envconfig:"SXO6_RATES_BASE_URL" default:"https://api.exchangerate-api.com/v4/latest"`
	CacheTTL     time.Duration `envconfig:"SXO6_RATES_CACHE_TTL" default:"1h"`
	FallbackNGN  string        `envconfig:"SXO6_RATES_FALLBACK_NGN" default:"1550"`
	FetchTimeout time.Duration `envconfig:"SXO6_RATES_FETCH_TIMEOUT" default:"10s"`
}

type ResendConfig struct {
	APIKey      string `envconfig:"SXO6_RESEND_API_KEY"`
	FromAddress string `envconfig:"SXO6_RESEND_FROM" default:"SXO6LUXE <ac@sxo6luxe.com>"`
}

// FrontendConfig locates the storefront, used when emails link back to it.
type FrontendConfig struct {
	BaseURL string `envconfig:"SXO6_FRONTEND_BASE_URL" default:"https://sxo6luxe.com"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SXO6_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"SXO6_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SXO6_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"SXO6_GCS_BUCKET_NAME" required:"true"`
}

type PubSubConfig struct {
	OrderEmailTopic        string `envconfig:"SXO6_PUBSUB_ORDER_EMAIL_TOPIC" default:"sxo6-order-emails"`
	OrderEmailSubscription string `envconfig:"SXO6_PUBSUB_ORDER_EMAIL_SUBSCRIPTION" required:"true"`
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
