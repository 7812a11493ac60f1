package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	TelegramToken           string `yaml:"telegram_token"`
	ChatID                  int64  `yaml:"chat_id"`
	ProductHuntClientID     string `yaml:"producthunt_client_id"`
	ProductHuntClientSecret string `yaml:"producthunt_client_secret"`
	SummarizerCommand       string `yaml:"summarizer_command"`
	MorningTime             string `yaml:"morning_time"`
	EveningTime             string `yaml:"evening_time"`
	Timezone                string `yaml:"timezone"`
	ItemsPerSource          int    `yaml:"items_per_source"`
	FetchTimeoutSecs        int    `yaml:"fetch_timeout_secs"`
	DBPath                  string `yaml:"db_path"`
	LockPath                string `yaml:"lock_path"`
	LogLevel                string `yaml:"log_level"`
}

func (c *Config) setDefaults() {
	if c.SummarizerCommand == "" {
		c.SummarizerCommand = "claude"
	}
	if c.MorningTime == "" {
		c.MorningTime = "08:00"
	}
	if c.EveningTime == "" {
		c.EveningTime = "20:00"
	}
	if c.Timezone == "" {
		c.Timezone = "Asia/Seoul"
	}
	if c.ItemsPerSource == 0 {
		c.ItemsPerSource = 10
	}
	if c.FetchTimeoutSecs == 0 {
		c.FetchTimeoutSecs = 30
	}
	if c.DBPath == "" {
		c.DBPath = "./digest.db"
	}
	if c.LockPath == "" {
		c.LockPath = "/tmp/digest_bot.lock"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.setDefaults()

	if dbPath := os.Getenv("DIGEST_BOT_DB"); dbPath != "" {
		cfg.DBPath = dbPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("telegram_token is required")
	}
	if c.ChatID == 0 {
		return fmt.Errorf("chat_id is required")
	}

	if err := validateTimeFormat(c.MorningTime); err != nil {
		return fmt.Errorf("morning_time validation failed: %w", err)
	}
	if err := validateTimeFormat(c.EveningTime); err != nil {
		return fmt.Errorf("evening_time validation failed: %w", err)
	}

	if err := c.validateTimezone(); err != nil {
		return fmt.Errorf("timezone validation failed: %w", err)
	}

	if c.ItemsPerSource <= 0 {
		return fmt.Errorf("items_per_source must be positive, got %d", c.ItemsPerSource)
	}

	return nil
}

func validateTimeFormat(value string) error {
	if len(value) != 5 {
		return fmt.Errorf("invalid format, expected HH:MM, got '%s'", value)
	}

	var hour, minute int
	_, err := fmt.Sscanf(value, "%d:%d", &hour, &minute)
	if err != nil {
		return fmt.Errorf("failed to parse time: %w", err)
	}

	if hour < 0 || hour > 23 {
		return fmt.Errorf("hour must be 0-23, got %d", hour)
	}
	if minute < 0 || minute > 59 {
		return fmt.Errorf("minute must be 0-59, got %d", minute)
	}

	return nil
}

func (c *Config) validateTimezone() error {
	_, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone '%s': %w", c.Timezone, err)
	}
	return nil
}
