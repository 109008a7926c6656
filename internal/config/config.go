package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Env      string          `yaml:"env"`
	HTTP     HTTPConfig      `yaml:"http"`
	Log      LogConfig       `yaml:"log"`
	Redis    RedisConfig     `yaml:"redis"`
	Auth     AuthConfig      `yaml:"auth"`
	Upstream UpstreamConfig  `yaml:"upstream"`
	Gateways []GatewayConfig `yaml:"gateways"`
	Wallet   WalletConfig    `yaml:"wallet"`
}

type HTTPConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// UpstreamConfig points at the platform backend that owns packages, orders,
// payment verification and the wallet ledger.
type UpstreamConfig struct {
	BaseURL      string        `yaml:"base_url"`
	ServiceToken string        `yaml:"service_token"`
	Timeout      time.Duration `yaml:"timeout"`
}

// GatewayConfig describes one payment gateway. Kind selects the checkout
// mechanic (modal widget vs browser redirect); ScriptURL is probed once per
// process to decide gateway readiness.
type GatewayConfig struct {
	Name      string `yaml:"name"`
	Kind      string `yaml:"kind"`
	ScriptURL string `yaml:"script_url"`
}

type WalletConfig struct {
	HistoryLimit int           `yaml:"history_limit"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
}

func Default() Config {
	return Config{
		Env: "dev",
		HTTP: HTTPConfig{
			Addr:         ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  30 * time.Second,
		},
		Log: LogConfig{Level: "debug"},
		Redis: RedisConfig{
			Addr: "localhost:6379",
			DB:   0,
		},
		Auth: AuthConfig{
			JWTSecret: "change-me",
		},
		Upstream: UpstreamConfig{
			BaseURL: "http://localhost:9090",
			Timeout: 15 * time.Second,
		},
		Gateways: []GatewayConfig{
			{
				Name:      "razorpay",
				Kind:      "modal",
				ScriptURL: "https://checkout.razorpay.com/v1/checkout.js",
			},
			{
				Name:      "payu",
				Kind:      "redirect",
				ScriptURL: "https://secure.payu.in/_payment",
			},
		},
		Wallet: WalletConfig{
			HistoryLimit: 20,
			CacheTTL:     30 * time.Second,
		},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromYAML(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadFromYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("unmarshal config yaml: %w", err)
	}

	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Env = v
	}

	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if err := overrideDuration("HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout); err != nil {
		return err
	}
	if err := overrideDuration("HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout); err != nil {
		return err
	}
	if err := overrideDuration("HTTP_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout); err != nil {
		return err
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if err := overrideInt("REDIS_DB", &cfg.Redis.DB); err != nil {
		return err
	}

	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}

	if v := os.Getenv("UPSTREAM_BASE_URL"); v != "" {
		cfg.Upstream.BaseURL = v
	}
	if v := os.Getenv("UPSTREAM_SERVICE_TOKEN"); v != "" {
		cfg.Upstream.ServiceToken = v
	}
	if err := overrideDuration("UPSTREAM_TIMEOUT", &cfg.Upstream.Timeout); err != nil {
		return err
	}

	if err := overrideInt("WALLET_HISTORY_LIMIT", &cfg.Wallet.HistoryLimit); err != nil {
		return err
	}
	if err := overrideDuration("WALLET_CACHE_TTL", &cfg.Wallet.CacheTTL); err != nil {
		return err
	}

	return nil
}

// Validate rejects configurations the service cannot start with. Gateway
// entries must carry a known kind and a probe URL.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Upstream.BaseURL) == "" {
		return fmt.Errorf("upstream base_url is required")
	}
	if len(c.Gateways) == 0 {
		return fmt.Errorf("at least one gateway must be configured")
	}
	seen := make(map[string]struct{}, len(c.Gateways))
	for _, gw := range c.Gateways {
		name := strings.ToLower(strings.TrimSpace(gw.Name))
		if name == "" {
			return fmt.Errorf("gateway name is required")
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("duplicate gateway %q", name)
		}
		seen[name] = struct{}{}
		if gw.Kind != "modal" && gw.Kind != "redirect" {
			return fmt.Errorf("gateway %q has unknown kind %q", name, gw.Kind)
		}
		if strings.TrimSpace(gw.ScriptURL) == "" {
			return fmt.Errorf("gateway %q is missing script_url", name)
		}
	}
	return nil
}

func overrideDuration(key string, target *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("parse %s duration: %w", key, err)
	}
	*target = d
	return nil
}

func overrideInt(key string, target *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("parse %s int: %w", key, err)
	}
	*target = n
	return nil
}
