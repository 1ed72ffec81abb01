package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/rl1809/grocery-till/internal/core/domain"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMySQL  = "mysql"
)

type StoreConfig struct {
	Backend string `yaml:"backend"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	PoolSize int    `yaml:"pool_size"`
}

type MySQLConfig struct {
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

type LoggerConfig struct {
	Mode  string `yaml:"mode"` // development or production
	Level string `yaml:"level"`
}

type ProductConfig struct {
	Name  string `yaml:"name"`
	Price string `yaml:"price"`
	Stock int    `yaml:"stock"`
}

type Config struct {
	Store     StoreConfig     `yaml:"store"`
	Redis     RedisConfig     `yaml:"redis"`
	MySQL     MySQLConfig     `yaml:"mysql"`
	Logger    LoggerConfig    `yaml:"logger"`
	Inventory []ProductConfig `yaml:"inventory"`
}

func Default() *Config {
	return &Config{
		Store: StoreConfig{Backend: BackendMemory},
		Redis: RedisConfig{Addr: "localhost:6379", PoolSize: 10},
		MySQL: MySQLConfig{
			DSN:          "root:root@tcp(localhost:3306)/grocery?parseTime=true",
			MaxOpenConns: 5,
			MaxIdleConns: 2,
		},
		Logger: LoggerConfig{Mode: "production", Level: "warn"},
		Inventory: []ProductConfig{
			{Name: "Tomato", Price: "1.20", Stock: 100},
			{Name: "Onion", Price: "0.80", Stock: 50},
			{Name: "Potato", Price: "0.50", Stock: 200},
		},
	}
}

// Load builds the configuration from defaults, the YAML file named by
// GROCERY_CONFIG if set, and environment overrides, in that order.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("GROCERY_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.Parse(data); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse overlays YAML data onto cfg. A non-empty inventory list replaces the
// default one.
func (c *Config) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("GROCERY_STORE"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("MYSQL_DSN"); v != "" {
		c.MySQL.DSN = v
	}
	if v := os.Getenv("GROCERY_LOG_LEVEL"); v != "" {
		c.Logger.Level = v
	}
}

func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendRedis, BackendMySQL:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	if len(c.Inventory) == 0 {
		return errors.New("inventory is empty")
	}

	seen := make(map[string]bool, len(c.Inventory))
	for _, p := range c.Inventory {
		key := domain.ProductKey(p.Name)
		if key == "" {
			return errors.New("inventory product without a name")
		}
		if seen[key] {
			return fmt.Errorf("duplicate product %q", p.Name)
		}
		seen[key] = true

		price, err := decimal.NewFromString(strings.TrimSpace(p.Price))
		if err != nil {
			return fmt.Errorf("product %q: invalid price %q", p.Name, p.Price)
		}
		if price.IsNegative() {
			return fmt.Errorf("product %q: negative price", p.Name)
		}
		if p.Stock < 0 {
			return fmt.Errorf("product %q: negative stock", p.Name)
		}
	}

	return nil
}

// Products converts the inventory section into domain products. Call it on a
// validated config.
func (c *Config) Products() []domain.Product {
	products := make([]domain.Product, 0, len(c.Inventory))
	for _, p := range c.Inventory {
		price, _ := decimal.NewFromString(strings.TrimSpace(p.Price))
		products = append(products, domain.Product{
			Name:      strings.TrimSpace(p.Name),
			UnitPrice: price,
			Stock:     p.Stock,
		})
	}
	return products
}
