package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	FormatText = "text"
	FormatJSON = "json"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server   Server
	Database Database
	Logging  Logging
	Auth     Auth
	Storage  Storage
	AWS      struct {
		Profile string
	}
}

type Server struct {
	Host string
	Port int
}

// Addr returns the listen address for the HTTP server.
func (s Server) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

type Database struct {
	Driver   string
	Path     string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSL      bool
}

// DSN renders a PostgreSQL connection URL. It is unused for the sqlite driver.
func (d Database) DSN() string {
	sslMode := "disable"
	if d.SSL {
		sslMode = "require"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + sslMode,
	}
	return u.String()
}

type Logging struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type Auth struct {
	TokenSecret string
	TokenTTL    time.Duration
}

type Storage struct {
	Bucket    string
	KeyPrefix string
	Region    string
	Endpoint  string
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	// existing environment wins over .env entries
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("BUDDY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 3000)

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "data/buddy.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "buddy")
	v.SetDefault("database.ssl", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", FormatText)
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.maxsizemb", 100)
	v.SetDefault("logging.maxbackups", 3)
	v.SetDefault("logging.maxagedays", 28)

	v.SetDefault("auth.tokensecret", "")
	v.SetDefault("auth.tokenttl", 24*time.Hour)

	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "prompts")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("aws.profile", "")
}

// Validate reports the first setting that cannot be used to start the server.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if strings.TrimSpace(c.Database.Path) == "" {
			return errors.New("database path is required for sqlite")
		}
	case DriverPostgres:
		if strings.TrimSpace(c.Database.Host) == "" || strings.TrimSpace(c.Database.Name) == "" {
			return errors.New("database host and name are required for postgres")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	switch c.Logging.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("unsupported log format %q", c.Logging.Format)
	}

	if strings.TrimSpace(c.Auth.TokenSecret) == "" {
		return errors.New("auth token secret is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth token ttl must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}
