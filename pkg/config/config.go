package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvDBDSN  = "MEDISUPPLY_DB_DSN"
	EnvDBHost = "MEDISUPPLY_DB_HOST"
	EnvDBUser = "MEDISUPPLY_DB_USER"
	EnvDBName = "MEDISUPPLY_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Cache        CacheConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Checkout     CheckoutConfig
	VNPay        VNPayConfig
	MoMo         MoMoConfig
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
	Env          string `envconfig:"MEDISUPPLY_APP_ENV" required:"true"`
	Port         string `envconfig:"MEDISUPPLY_APP_PORT" required:"true"`
	Version      string `envconfig:"MEDISUPPLY_APP_VERSION" default:"dev"`
	LogLevel     string `envconfig:"MEDISUPPLY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MEDISUPPLY_LOG_WARN_STACK" default:"false"`
	CORSOrigins  string `envconfig:"MEDISUPPLY_CORS_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

// CORSOriginList splits the comma-separated allowed origins.
func (a AppConfig) CORSOriginList() []string {
	parts := strings.Split(a.CORSOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MEDISUPPLY_DB_DSN"`
	Driver string `envconfig:"MEDISUPPLY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MEDISUPPLY_DB_HOST"`
	LegacyPort     int    `envconfig:"MEDISUPPLY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MEDISUPPLY_DB_USER"`
	LegacyPassword string `envconfig:"MEDISUPPLY_DB_PASSWORD"`
	LegacyName     string `envconfig:"MEDISUPPLY_DB_NAME"`
	LegacySSLMode  string `envconfig:"MEDISUPPLY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MEDISUPPLY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MEDISUPPLY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MEDISUPPLY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MEDISUPPLY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MEDISUPPLY_REDIS_URL"`
	Address      string        `envconfig:"MEDISUPPLY_REDIS_ADDR"`
	Password     string        `envconfig:"MEDISUPPLY_REDIS_PASSWORD"`
	DB           int           `envconfig:"MEDISUPPLY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MEDISUPPLY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MEDISUPPLY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MEDISUPPLY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MEDISUPPLY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MEDISUPPLY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type CacheConfig struct {
	DefaultTTL    time.Duration `envconfig:"MEDISUPPLY_CACHE_DEFAULT_TTL" default:"5m"`
	SweepInterval time.Duration `envconfig:"MEDISUPPLY_CACHE_SWEEP_INTERVAL" default:"1m"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"MEDISUPPLY_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"MEDISUPPLY_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"MEDISUPPLY_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"MEDISUPPLY_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MEDISUPPLY_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MEDISUPPLY_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MEDISUPPLY_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MEDISUPPLY_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MEDISUPPLY_ARGON_KEY_LEN" default:"32"`
}

// CheckoutConfig holds the pricing knobs applied during order creation.
// Monetary values are decimal strings in the store currency.
type CheckoutConfig struct {
	TaxRatePercent        int    `envconfig:"MEDISUPPLY_CHECKOUT_TAX_RATE_PERCENT" default:"10"`
	FlatShippingFee       string `envconfig:"MEDISUPPLY_CHECKOUT_FLAT_SHIPPING_FEE" default:"30000"`
	FreeShippingThreshold string `envconfig:"MEDISUPPLY_CHECKOUT_FREE_SHIPPING_THRESHOLD" default:"500000"`
	DefaultWarehouseCode  string `envconfig:"MEDISUPPLY_CHECKOUT_DEFAULT_WAREHOUSE" default:"MAIN"`
}

type VNPayConfig struct {
	TMNCode    string `envconfig:"MEDISUPPLY_VNPAY_TMN_CODE"`
	HashSecret string `envconfig:"MEDISUPPLY_VNPAY_HASH_SECRET"`
	PayURL     string `envconfig:"MEDISUPPLY_VNPAY_PAY_URL" default:"https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"`
	ReturnURL  string `envconfig:"MEDISUPPLY_VNPAY_RETURN_URL"`
}

type MoMoConfig struct {
	PartnerCode string `envconfig:"MEDISUPPLY_MOMO_PARTNER_CODE"`
	AccessKey   string `envconfig:"MEDISUPPLY_MOMO_ACCESS_KEY"`
	SecretKey   string `envconfig:"MEDISUPPLY_MOMO_SECRET_KEY"`
	Endpoint    string `envconfig:"MEDISUPPLY_MOMO_ENDPOINT" default:"https://test-payment.momo.vn/v2/gateway/api/create"`
	ReturnURL   string `envconfig:"MEDISUPPLY_MOMO_RETURN_URL"`
	NotifyURL   string `envconfig:"MEDISUPPLY_MOMO_NOTIFY_URL"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MEDISUPPLY_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MEDISUPPLY_AUTO_MIGRATE" default:"false"`
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
