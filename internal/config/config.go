package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	Mode            string        `yaml:"mode"` // debug, release, test
	CorsOrigins     []string      `yaml:"corsOrigins"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

type MongoConfig struct {
	URI      string        `yaml:"uri"`
	Host     string        `yaml:"host"`
	Port     string        `yaml:"port"`
	User     string        `yaml:"user"`
	Password string        `yaml:"password"`
	Database string        `yaml:"database"`
	Timeout  time.Duration `yaml:"timeout"`
}

type LoggerConfig struct {
	Mode       string `yaml:"mode"` // development, production
	FileEnable bool   `yaml:"fileEnable"`
	Filename   string `yaml:"filename"`
	MaxSize    int    `yaml:"maxSize"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAge     int    `yaml:"maxAge"`
}

type AuthConfig struct {
	JWTSecret      string        `yaml:"jwtSecret"`
	TokenTTL       time.Duration `yaml:"tokenTTL"`
	BcryptCost     int           `yaml:"bcryptCost"`
	ProtectCatalog bool          `yaml:"protectCatalog"`
}

type MailConfig struct {
	Enabled            bool          `yaml:"enabled"`
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	Username           string        `yaml:"username"`
	Password           string        `yaml:"password"`
	From               string        `yaml:"from"`
	InsecureSkipVerify bool          `yaml:"insecureSkipVerify"`
	Timeout            time.Duration `yaml:"timeout"`
}

type OrdersConfig struct {
	IDRetries         int           `yaml:"idRetries"`
	TrackingRetries   int           `yaml:"trackingRetries"`
	ReconcileSpec     string        `yaml:"reconcileSpec"`
	ReconcileGrace    time.Duration `yaml:"reconcileGrace"`
	ReconcileBatch    int           `yaml:"reconcileBatch"`
	MaxNotifyAttempts int           `yaml:"maxNotifyAttempts"`
	DecrementStock    bool          `yaml:"decrementStock"`
}

type AppConfig struct {
	Storage string       `yaml:"storage"`
	Server  ServerConfig `yaml:"server"`
	Mongo   MongoConfig  `yaml:"mongo"`
	Logger  LoggerConfig `yaml:"logger"`
	Auth    AuthConfig   `yaml:"auth"`
	Mail    MailConfig   `yaml:"mail"`
	Orders  OrdersConfig `yaml:"orders"`
}

func Default() *AppConfig {
	return &AppConfig{
		Storage: StorageMongo,
		Server: ServerConfig{
			Addr:            ":5000",
			Mode:            "debug",
			CorsOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
			ShutdownTimeout: 10 * time.Second,
		},
		Mongo: MongoConfig{
			Host:     "localhost",
			Port:     "27017",
			Database: "merabestie",
			Timeout:  10 * time.Second,
		},
		Logger: LoggerConfig{
			Mode:       "development",
			Filename:   "storefront.log",
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
		},
		Auth: AuthConfig{
			JWTSecret:  "your-secret-key",
			TokenTTL:   30 * 24 * time.Hour,
			BcryptCost: 10,
		},
		Mail: MailConfig{
			Host:               "smtp.gmail.com",
			Port:               587,
			InsecureSkipVerify: true,
			Timeout:            15 * time.Second,
		},
		Orders: OrdersConfig{
			IDRetries:         5,
			TrackingRetries:   3,
			ReconcileSpec:     "@every 1m",
			ReconcileGrace:    2 * time.Minute,
			ReconcileBatch:    50,
			MaxNotifyAttempts: 5,
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. An empty path skips the file.
func Load(path string) (*AppConfig, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type lookupFunc func(key string) (string, bool)

func (c *AppConfig) applyEnv(lookup lookupFunc) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("STORAGE", &c.Storage)
	str("MONGO_URL", &c.Mongo.URI)
	str("MONGO_PUBLIC_URL", &c.Mongo.URI)
	str("MONGO_DBNAME", &c.Mongo.Database)
	str("GIN_MODE", &c.Server.Mode)
	str("JWT_SECRET", &c.Auth.JWTSecret)
	str("SMTP_HOST", &c.Mail.Host)
	str("SMTP_USER", &c.Mail.Username)
	str("SMTP_PASS", &c.Mail.Password)
	str("MAIL_FROM", &c.Mail.From)
	str("LOG_MODE", &c.Logger.Mode)

	if v, ok := lookup("PORT"); ok && v != "" {
		c.Server.Addr = ":" + strings.TrimPrefix(v, ":")
	}
	if v, ok := lookup("SMTP_PORT"); ok && v != "" {
		if port, err := cast.ToIntE(v); err == nil {
			c.Mail.Port = port
		}
	}
	if v, ok := lookup("MAIL_ENABLED"); ok && v != "" {
		if enabled, err := cast.ToBoolE(v); err == nil {
			c.Mail.Enabled = enabled
		}
	}
	if v, ok := lookup("ORDERS_DECREMENT_STOCK"); ok && v != "" {
		if enabled, err := cast.ToBoolE(v); err == nil {
			c.Orders.DecrementStock = enabled
		}
	}
	if v, ok := lookup("RECONCILE_GRACE"); ok && v != "" {
		if d, err := cast.ToDurationE(v); err == nil {
			c.Orders.ReconcileGrace = d
		}
	}
	if c.Mail.From == "" {
		c.Mail.From = c.Mail.Username
	}
}

func (c *AppConfig) Validate() error {
	switch c.Storage {
	case StorageMongo, StorageMemory:
	default:
		return fmt.Errorf("config: unknown storage %q", c.Storage)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("config: auth.jwtSecret is required")
	}
	if c.Server.Mode == "release" && c.Auth.JWTSecret == Default().Auth.JWTSecret {
		return fmt.Errorf("config: auth.jwtSecret must be changed in release mode")
	}
	if c.Orders.IDRetries < 1 {
		return fmt.Errorf("config: orders.idRetries must be positive")
	}
	if c.Orders.TrackingRetries < 0 {
		return fmt.Errorf("config: orders.trackingRetries must not be negative")
	}
	if c.Orders.MaxNotifyAttempts < 1 {
		return fmt.Errorf("config: orders.maxNotifyAttempts must be positive")
	}
	if c.Mail.Enabled && c.Mail.Host == "" {
		return fmt.Errorf("config: mail.host is required when mail is enabled")
	}
	return nil
}

// MongoURI returns the connection string, assembling it from the parts when
// no URI is configured.
func (m MongoConfig) MongoURI() string {
	if m.URI != "" {
		return m.URI
	}
	if m.User != "" && m.Password != "" {
		return fmt.Sprintf("mongodb://%s@%s:%s", url.UserPassword(m.User, m.Password).String(), m.Host, m.Port)
	}
	return fmt.Sprintf("mongodb://%s:%s", m.Host, m.Port)
}
