package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers.
const (
	StoreMySQL  = "mysql"
	StoreMemory = "memory"
)

// maxTTLMinutes is the largest token lifetime a time.Duration can hold.
const maxTTLMinutes = math.MaxInt64 / int64(time.Minute)

// Config holds all runtime configuration values. It is built once at startup
// and passed by value to the components that need it.
type Config struct {
	AppName    string // reported by the root endpoint
	AppVersion string
	Env        string // application environment (e.g. "dev", "prod")
	Host       string // bind host
	Port       string // HTTP port to listen on
	LogLevel   string

	StoreDriver string // "mysql" or "memory"
	DBUser      string
	DBPass      string // may be empty
	DBHost      string
	DBPort      string
	DBName      string

	JWTSecret    string        // secret used to sign JWTs
	JWTAlgorithm string        // HS256, HS384 or HS512
	AccessTTL    time.Duration // default token lifetime
	BcryptCost   int           // bcrypt cost for password hashing

	RequestTimeout time.Duration // bound for store calls made by a handler

	CORS    CORSConfig
	Cache   CacheConfig
	Redis   RedisConfig
	AMQPURL string // empty disables highscore events
}

// CORSConfig mirrors the allow-lists the mobile client needs.
type CORSConfig struct {
	Origins          []string
	Methods          []string
	Headers          []string
	AllowCredentials bool
}

// Addr returns host:port for the HTTP listener.
func (c Config) Addr() string { return c.Host + ":" + c.Port }

// Load reads configuration values from environment variables. Every problem
// found is reported in the returned error.
func Load() (Config, error) {
	var errs []error
	cfg := Config{
		AppName:    getenv("APP_NAME", "Count Game API"),
		AppVersion: getenv("APP_VERSION", "1.0.0"),
		Env:        getenv("APP_ENV", "dev"),
		Host:       getenv("APP_HOST", "0.0.0.0"),
		Port:       getenv("APP_PORT", "8000"),
		LogLevel:   strings.ToLower(getenv("LOG_LEVEL", "info")),

		StoreDriver: strings.ToLower(getenv("STORE_DRIVER", StoreMySQL)),
		DBUser:      os.Getenv("DB_USER"),
		DBPass:      os.Getenv("DB_PASS"),
		DBHost:      os.Getenv("DB_HOST"),
		DBPort:      getenv("DB_PORT", "3306"),
		DBName:      os.Getenv("DB_NAME"),

		JWTSecret:    os.Getenv("JWT_SECRET"),
		JWTAlgorithm: strings.ToUpper(getenv("JWT_ALGORITHM", "HS256")),

		CORS: CORSConfig{
			Origins: splitList(getenv("CORS_ORIGINS", "*")),
			Methods: splitList(getenv("CORS_ALLOW_METHODS", "*")),
			Headers: splitList(getenv("CORS_ALLOW_HEADERS", "*")),
		},
		Cache:   LoadCacheConfig(),
		Redis:   LoadRedisConfig(),
		AMQPURL: firstNonEmpty(os.Getenv("RABBITMQ_URL"), os.Getenv("AMQP_URL")),
	}

	var err error
	if cfg.CORS.AllowCredentials, err = envBool("CORS_ALLOW_CREDENTIALS", true); err != nil {
		errs = append(errs, err)
	}
	minutes, err := envInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30*24*60)
	if err != nil {
		errs = append(errs, err)
	} else if minutes <= 0 {
		errs = append(errs, fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive (got %d)", minutes))
	} else if int64(minutes) > maxTTLMinutes {
		errs = append(errs, fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be at most %d (got %d)", maxTTLMinutes, minutes))
	} else {
		cfg.AccessTTL = time.Duration(minutes) * time.Minute
	}

	if cfg.BcryptCost, err = envInt("BCRYPT_COST", 12); err != nil {
		errs = append(errs, err)
	} else if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 4 and 31 (got %d)", cfg.BcryptCost))
	}
	if cfg.RequestTimeout, err = envDur("REQUEST_TIMEOUT", 5*time.Second); err != nil {
		errs = append(errs, err)
	}

	if cfg.JWTSecret == "" {
		errs = append(errs, errors.New("missing required env var: JWT_SECRET"))
	}
	switch cfg.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		errs = append(errs, fmt.Errorf("JWT_ALGORITHM must be HS256, HS384 or HS512 (got %q)", cfg.JWTAlgorithm))
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error (got %q)", cfg.LogLevel))
	}
	switch cfg.StoreDriver {
	case StoreMySQL:
		for key, v := range map[string]string{"DB_USER": cfg.DBUser, "DB_HOST": cfg.DBHost, "DB_NAME": cfg.DBName} {
			if v == "" {
				errs = append(errs, fmt.Errorf("missing required env var: %s", key))
			}
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be mysql or memory (got %q)", cfg.StoreDriver))
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("invalid int for %s: %q", key, v)
	}
	return n, nil
}

func envBool(key string, def bool) (bool, error) {
	switch os.Getenv(key) {
	case "":
		return def, nil
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true, nil
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false, nil
	}
	return def, fmt.Errorf("invalid bool for %s: %q", key, os.Getenv(key))
}

func envDur(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("invalid duration for %s: %q", key, v)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
