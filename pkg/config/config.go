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
	Password     PasswordConfig
	CORS         CORSConfig
	FeatureFlags FeatureFlagsConfig
	Statistics   StatisticsConfig
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
	Env          string `envconfig:"EQUIPTRACK_APP_ENV" required:"true"`
	Port         string `envconfig:"EQUIPTRACK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"EQUIPTRACK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"EQUIPTRACK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"EQUIPTRACK_DB_DSN"`
	Driver string `envconfig:"EQUIPTRACK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"EQUIPTRACK_DB_HOST"`
	LegacyPort     int    `envconfig:"EQUIPTRACK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"EQUIPTRACK_DB_USER"`
	LegacyPassword string `envconfig:"EQUIPTRACK_DB_PASSWORD"`
	LegacyName     string `envconfig:"EQUIPTRACK_DB_NAME"`
	LegacySSLMode  string `envconfig:"EQUIPTRACK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"EQUIPTRACK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"EQUIPTRACK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"EQUIPTRACK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"EQUIPTRACK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"EQUIPTRACK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"EQUIPTRACK_REDIS_ADDR"`
	Password     string        `envconfig:"EQUIPTRACK_REDIS_PASSWORD"`
	DB           int           `envconfig:"EQUIPTRACK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"EQUIPTRACK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"EQUIPTRACK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"EQUIPTRACK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"EQUIPTRACK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"EQUIPTRACK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"EQUIPTRACK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"EQUIPTRACK_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"EQUIPTRACK_JWT_EXPIRATION_MINUTES" default:"720"`
	CookieName        string `envconfig:"EQUIPTRACK_SESSION_COOKIE_NAME" default:"equiptrack_session"`
	CookieSecure      bool   `envconfig:"EQUIPTRACK_SESSION_COOKIE_SECURE" default:"false"`
}

// SessionTTL returns the session lifetime configured in minutes.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"EQUIPTRACK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"EQUIPTRACK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"EQUIPTRACK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"EQUIPTRACK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"EQUIPTRACK_ARGON_KEY_LEN" default:"32"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"EQUIPTRACK_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"EQUIPTRACK_AUTO_MIGRATE" default:"false"`
}

type StatisticsConfig struct {
	// DailyUsableHours is the per-day availability window used for
	// equipment utilization percentages.
	DailyUsableHours  int `envconfig:"EQUIPTRACK_STATS_DAILY_USABLE_HOURS" default:"8"`
	DefaultWindowDays int `envconfig:"EQUIPTRACK_STATS_DEFAULT_WINDOW_DAYS" default:"30"`
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
