package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

type RabbitMQConfig struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Exchange string `json:"exchange"`
}

type HTTPConfig struct {
	Port int `json:"port"`
}

type JWTConfig struct {
	Secret string `json:"secret"`
}

// PresenceConfig holds the fallback coordinate reported for drivers that
// have never pushed a location sample.
type PresenceConfig struct {
	DefaultLatitude  float64 `json:"default_latitude"`
	DefaultLongitude float64 `json:"default_longitude"`
}

type Config struct {
	Database DatabaseConfig `json:"database"`
	RabbitMQ RabbitMQConfig `json:"rabbitmq"`
	HTTP     HTTPConfig     `json:"http"`
	JWT      JWTConfig      `json:"jwt"`
	Presence PresenceConfig `json:"presence"`
}

func (c *Config) SetDefaults() {
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.User == "" {
		c.Database.User = "medtransport"
	}
	if c.Database.Name == "" {
		c.Database.Name = "medtransport"
	}
	if c.RabbitMQ.Host == "" {
		c.RabbitMQ.Host = "localhost"
	}
	if c.RabbitMQ.Port == 0 {
		c.RabbitMQ.Port = 5672
	}
	if c.RabbitMQ.User == "" {
		c.RabbitMQ.User = "guest"
	}
	if c.RabbitMQ.Password == "" {
		c.RabbitMQ.Password = "guest"
	}
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "medtransport.events"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.Presence.DefaultLatitude == 0 && c.Presence.DefaultLongitude == 0 {
		// Dispatch HQ, used until a driver reports a real position.
		c.Presence.DefaultLatitude = -6.2088
		c.Presence.DefaultLongitude = 106.8456
	}
}

func (c Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}
	return nil
}

// Load reads the YAML config at path and applies MT_-prefixed environment
// overrides (MT_DATABASE__HOST maps to database.host).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load config file: %w", err)
	}
	if err := k.Load(env.Provider("MT_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "mt_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
