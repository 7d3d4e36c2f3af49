// Package config loads the server configuration from the environment,
// after merging an optional .env file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

const (
	DriverMySQL  = "mysql"
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	HTTP  HTTPConfig
	Store StoreConfig
	Redis RedisConfig
	Auth  AuthConfig
	Log   LogConfig
}

type HTTPConfig struct {
	Port        int
	GRPCPort    int // 0 disables the gRPC listener
	CORSOrigins []string
}

type StoreConfig struct {
	Driver      string
	User        string
	Password    string
	Host        string
	Database    string
	MongoURI    string
	AutoMigrate bool
}

type RedisConfig struct {
	Addr string // empty disables the count cache
}

type AuthConfig struct {
	Secret       string
	TokenTTL     time.Duration
	CookieSecure bool
}

type LogConfig struct {
	Level string
}

// Load merges envFile into the process environment (a missing file is
// ignored; variables already set win), reads the configuration and
// validates it.
func Load(envFile string) (*Config, error) {
	cfg, err := Read(envFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read is Load without validation. Tools that never serve requests use it
// so they do not need the signing secret.
func Read(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var errs []error
	port, err := envInt("PORT", 5000)
	errs = append(errs, err)
	grpcPort, err := envInt("GRPC_PORT", 0)
	errs = append(errs, err)
	ttl, err := envDuration("TOKEN_TTL", time.Hour)
	errs = append(errs, err)
	secure, err := envBool("COOKIE_SECURE", false)
	errs = append(errs, err)
	autoMigrate, err := envBool("AUTO_MIGRATE", false)
	errs = append(errs, err)
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTP: HTTPConfig{
			Port:        port,
			GRPCPort:    grpcPort,
			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "")),
		},
		Store: StoreConfig{
			Driver:      strings.ToLower(getEnv("STORE_DRIVER", DriverMySQL)),
			User:        getEnv("DB_USER", "root"),
			Password:    getEnv("DB_PASS", ""),
			Host:        getEnv("DB_HOST", "localhost:3306"),
			Database:    getEnv("DB_NAME", "pizzanDB"),
			MongoURI:    getEnv("MONGO_URI", ""),
			AutoMigrate: autoMigrate,
		},
		Redis: RedisConfig{
			Addr: getEnv("REDIS_ADDR", ""),
		},
		Auth: AuthConfig{
			Secret:       getEnv("ACCESS_TOKEN_SECRET", ""),
			TokenTTL:     ttl,
			CookieSecure: secure,
		},
		Log: LogConfig{
			Level: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		},
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Auth.Secret == "" {
		errs = append(errs, errors.New("ACCESS_TOKEN_SECRET is required"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	switch c.Store.Driver {
	case DriverMySQL, DriverMongo, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER %q is not one of mysql, mongo, memory", c.Store.Driver))
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.HTTP.Port))
	}
	if c.HTTP.GRPCPort < 0 || c.HTTP.GRPCPort > 65535 {
		errs = append(errs, fmt.Errorf("GRPC_PORT %d out of range", c.HTTP.GRPCPort))
	}
	return errors.Join(errs...)
}

// MySQLDSN builds the go-sql-driver DSN. parseTime is always on.
func (s StoreConfig) MySQLDSN() string {
	cfg := mysql.NewConfig()
	cfg.User = s.User
	cfg.Passwd = s.Password
	cfg.Net = "tcp"
	cfg.Addr = s.Host
	cfg.DBName = s.Database
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// MongoConnectionURI returns MONGO_URI, or an Atlas SRV URI built from the credentials.
func (s StoreConfig) MongoConnectionURI() string {
	if s.MongoURI != "" {
		return s.MongoURI
	}
	u := url.URL{
		Scheme:   "mongodb+srv",
		User:     url.UserPassword(s.User, s.Password),
		Host:     s.Host,
		Path:     "/",
		RawQuery: "retryWrites=true&w=majority",
	}
	return u.String()
}

func (h HTTPConfig) Addr() string {
	return ":" + strconv.Itoa(h.Port)
}

func (h HTTPConfig) GRPCAddr() string {
	if h.GRPCPort == 0 {
		return ""
	}
	return ":" + strconv.Itoa(h.GRPCPort)
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := getEnv(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envBool(key string, def bool) (bool, error) {
	v := getEnv(key, "")
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := getEnv(key, "")
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
