package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type SlackConfig struct {
	BotToken        string
	SigningSecret   string
	UserToken       string
	UserID          string
	AlertWebhookURL string
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type AppConfig struct {
	Port        string // Optional with default "3000"
	Environment string

	SlackConfig     SlackConfig
	AnthropicConfig AnthropicConfig
}

func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("⚠️ Could not load .env file, continuing with system env vars")
	}

	config := &AppConfig{
		Port:        getEnvWithDefault("PORT", "3000"),
		Environment: getEnvWithDefault("ENVIRONMENT", "dev"),

		SlackConfig: SlackConfig{
			BotToken:        os.Getenv("SLACK_BOT_TOKEN"),
			SigningSecret:   os.Getenv("SLACK_SIGNING_SECRET"),
			UserToken:       os.Getenv("SLACK_USER_TOKEN"),
			UserID:          os.Getenv("SLACK_USER_ID"),
			AlertWebhookURL: os.Getenv("SLACK_ALERT_WEBHOOK_URL"),
		},

		AnthropicConfig: AnthropicConfig{
			APIKey: os.Getenv("ANTHROPIC_API_KEY"),
			Model:  getEnvWithDefault("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		},
	}

	return config, nil
}

// ValidateBot checks the configuration the interactive bot needs.
func (c *AppConfig) ValidateBot() error {
	if c.SlackConfig.BotToken == "" {
		return fmt.Errorf("SLACK_BOT_TOKEN is not set")
	}
	if c.SlackConfig.SigningSecret == "" {
		return fmt.Errorf("SLACK_SIGNING_SECRET is not set")
	}
	return nil
}

// ValidateWorker checks the configuration the summary worker needs. The
// worker polls with the user token and needs the bot token only to
// resolve the mailbox DM.
func (c *AppConfig) ValidateWorker() error {
	if c.SlackConfig.BotToken == "" {
		return fmt.Errorf("SLACK_BOT_TOKEN is not set")
	}
	if c.SlackConfig.UserToken == "" {
		return fmt.Errorf("SLACK_USER_TOKEN is not set")
	}
	if c.SlackConfig.UserID == "" {
		return fmt.Errorf("SLACK_USER_ID is not set")
	}
	if c.AnthropicConfig.APIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is not set")
	}
	return nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
