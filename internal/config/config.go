package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultGatewayURL  = "wss://gateway.trade.example.net/ws"
	defaultTokenDir    = ".trade-bot"
	defaultCategoryTag = "Supply Crate"
)

// Config is the process configuration, read from the environment (with an
// optional .env file). Credentials are required; everything else has
// defaults.
type Config struct {
	Account  string
	Password string

	GatewayURL     string
	ServerListFile string
	TokenDir       string

	// RedisAddr, when set, switches the session gate to the shared Redis
	// adapter.
	RedisAddr string

	CategoryTag string
}

// Load reads the optional .env file and the environment. A missing .env is
// not an error.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		Account:        os.Getenv("BOT_ACCOUNT"),
		Password:       os.Getenv("BOT_PASSWORD"),
		GatewayURL:     getenv("GATEWAY_URL", defaultGatewayURL),
		ServerListFile: os.Getenv("SERVER_LIST_FILE"),
		TokenDir:       getenv("TOKEN_DIR", defaultTokenDir),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		CategoryTag:    getenv("CATEGORY_TAG", defaultCategoryTag),
	}

	if cfg.Account == "" || cfg.Password == "" {
		return Config{}, errors.New("BOT_ACCOUNT and BOT_PASSWORD are required")
	}

	return cfg, nil
}

type serverList struct {
	Servers []string `yaml:"servers"`
}

// Servers resolves the gateway dial list: the override file when configured
// and non-empty, otherwise the single configured URL.
func (c Config) Servers() ([]string, error) {
	if c.ServerListFile == "" {
		return []string{c.GatewayURL}, nil
	}

	data, err := os.ReadFile(c.ServerListFile)
	if err != nil {
		return nil, fmt.Errorf("read server list: %w", err)
	}

	var list serverList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse server list: %w", err)
	}
	if len(list.Servers) == 0 {
		return nil, fmt.Errorf("server list %s names no servers", c.ServerListFile)
	}

	return list.Servers, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
