package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"cerulean_ambassador_bot/internal/dedup"
	"cerulean_ambassador_bot/internal/repository"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configPath   = "./"
	configName   = "config"
	configFormat = "yaml"
	envFile      = ".env"
)

type Config struct {
	Database repository.Config `mapstructure:"database"`
	Server   ServerConfig      `mapstructure:"server"`
	Telegram TelegramConfig    `mapstructure:"telegram"`
	Program  ProgramConfig     `mapstructure:"program"`
	Redis    dedup.Config      `mapstructure:"redis"`

	LogLevel    string `mapstructure:"logLevel"`
	LogEncoding string `mapstructure:"logEncoding"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Path string `mapstructure:"path"`
}

type TelegramConfig struct {
	BotToken    string `mapstructure:"botToken"`
	BotUsername string `mapstructure:"botUsername"`
	WebhookURL  string `mapstructure:"webhookURL"`
	SecretToken string `mapstructure:"secretToken"`
	Debug       bool   `mapstructure:"debug"`
}

type ProgramConfig struct {
	AdminIDs   []int64 `mapstructure:"adminIDs"`
	GroupID    int64   `mapstructure:"groupID"`
	ChannelURL string  `mapstructure:"channelURL"`
	TwitterURL string  `mapstructure:"twitterURL"`
}

// Every key needs a default, otherwise AutomaticEnv never looks it up.
var defaults = map[string]any{
	"database.url":      "",
	"database.host":     "localhost",
	"database.port":     "5432",
	"database.user":     "postgres",
	"database.password": "",
	"database.name":     "ambassador",
	"database.sslmode":  "disable",
	"database.migrate":  true,

	"server.host": "0.0.0.0",
	"server.port": "8080",
	"server.path": "/",

	"telegram.botToken":    "",
	"telegram.botUsername": "ceruleanlabsbot",
	"telegram.webhookURL":  "",
	"telegram.secretToken": "",
	"telegram.debug":       false,

	"program.adminIDs":   []int64{},
	"program.groupID":    0,
	"program.channelURL": "",
	"program.twitterURL": "",

	"redis.addr":     "",
	"redis.password": "",
	"redis.db":       0,
	"redis.ttl":      dedup.DefaultTTL,

	"logLevel":    "info",
	"logEncoding": "json",
}

// Names the bot was deployed with before the APP_ prefix existed.
var legacyEnv = map[string]string{
	"telegram.botToken": "TELEGRAM_TOKEN",
	"database.url":      "DATABASE_URL",
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	v := viper.New()
	v.SetConfigName(configName)
	v.AddConfigPath(configPath)
	v.SetConfigType(configFormat)

	v.AutomaticEnv()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, envName(key), env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return errors.New("telegram.botToken is required")
	}
	if c.Server.Path == "" || !strings.HasPrefix(c.Server.Path, "/") {
		return fmt.Errorf("server.path must start with /, got %q", c.Server.Path)
	}
	if c.Redis.TTL <= 0 {
		c.Redis.TTL = dedup.DefaultTTL
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

func envName(key string) string {
	return "APP_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
