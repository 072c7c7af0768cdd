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
	Session      SessionConfig
	Directory    DirectoryConfig
	Resolver     ResolverConfig
	FeatureFlags FeatureFlagsConfig
	CORS         CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Resolver.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"POUSADA_APP_ENV" required:"true"`
	Port         string `envconfig:"POUSADA_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"POUSADA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"POUSADA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"POUSADA_DB_DSN"`
	Driver string `envconfig:"POUSADA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"POUSADA_DB_HOST"`
	LegacyPort     int    `envconfig:"POUSADA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"POUSADA_DB_USER"`
	LegacyPassword string `envconfig:"POUSADA_DB_PASSWORD"`
	LegacyName     string `envconfig:"POUSADA_DB_NAME"`
	LegacySSLMode  string `envconfig:"POUSADA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"POUSADA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"POUSADA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"POUSADA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"POUSADA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"POUSADA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"POUSADA_REDIS_ADDR"`
	Password     string        `envconfig:"POUSADA_REDIS_PASSWORD"`
	DB           int           `envconfig:"POUSADA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"POUSADA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"POUSADA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"POUSADA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"POUSADA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"POUSADA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SessionConfig governs the two storage scopes backing guest state: the
// session scope expires with the tab, the durable scope survives until the
// guest clears it.
type SessionConfig struct {
	SessionTTL time.Duration `envconfig:"POUSADA_SESSION_TTL" default:"4h"`
	DurableTTL time.Duration `envconfig:"POUSADA_DURABLE_TTL" default:"0"`
}

type DirectoryConfig struct {
	RefreshInterval time.Duration `envconfig:"POUSADA_DIRECTORY_REFRESH_INTERVAL" default:"5m"`
}

// ResolverConfig holds the explicit policy decisions of the context resolver.
type ResolverConfig struct {
	// UnknownPartnerPolicy controls what happens when a URL carries a partner
	// identifier that no directory entry matches: "halt" keeps the session
	// unresolved (an explicit bad link is treated as authoritative), while
	// "fallthrough" degrades to the stored delivery flag or partner.
	UnknownPartnerPolicy string `envconfig:"POUSADA_RESOLVER_UNKNOWN_PARTNER_POLICY" default:"halt"`
}

func (r ResolverConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(r.UnknownPartnerPolicy)) {
	case UnknownPartnerHalt, UnknownPartnerFallthrough:
		return nil
	}
	return fmt.Errorf("invalid resolver policy %q", r.UnknownPartnerPolicy)
}

// HaltOnUnknownPartner reports whether an unmatched partner identifier should
// stop resolution for the pass.
func (r ResolverConfig) HaltOnUnknownPartner() bool {
	return !strings.EqualFold(strings.TrimSpace(r.UnknownPartnerPolicy), UnknownPartnerFallthrough)
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"POUSADA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"POUSADA_AUTO_MIGRATE" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"POUSADA_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
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
