package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"catchup/alerts"
	"catchup/clients"
	"catchup/clients/anthropic"
	"catchup/clients/slack"
	"catchup/config"
	"catchup/services/mailbox"
	"catchup/services/summarizer"
	"catchup/usecases/worker"
)

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("❌ Fatal error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ValidateWorker(); err != nil {
		return fmt.Errorf("invalid worker config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	botClient := slack.NewClient(cfg.SlackConfig.BotToken)
	userClient := slack.NewClient(cfg.SlackConfig.UserToken)
	if err := checkAuth(ctx, botClient, "bot"); err != nil {
		return err
	}
	if err := checkAuth(ctx, userClient, "user"); err != nil {
		return err
	}

	// The bot token sees the bot<->user DM; the user token cannot open
	// it itself. Resolve the DM once via the bot and seed the polling
	// mailbox with it. Polling and download run on the user token, but
	// replies, status cleanup, and artifact deletion stay on the bot
	// token: the bot authored those messages and owns the files.
	botMailbox := mailbox.NewMailboxService(botClient)
	dmChannelID, err := botMailbox.DMChannel(ctx, cfg.SlackConfig.UserID)
	if err != nil {
		return fmt.Errorf("failed to resolve mailbox DM: %w", err)
	}
	log.Printf("📋 Mailbox DM resolved: %s", dmChannelID)

	userMailbox := mailbox.NewMailboxService(userClient)
	userMailbox.SeedDMChannel(cfg.SlackConfig.UserID, dmChannelID)

	anthropicClient := anthropic.NewClient(cfg.AnthropicConfig.APIKey, cfg.AnthropicConfig.Model)
	summ := summarizer.NewSummarizer(anthropicClient, summarizer.AsyncTruncateLimit)
	notifier := alerts.NewNotifier(cfg.SlackConfig.AlertWebhookURL, cfg.Environment, "catchup-worker")

	summaryWorker := worker.NewSummaryWorker(userMailbox, botMailbox, summ, notifier, cfg.SlackConfig.UserID)
	return summaryWorker.Run(ctx)
}

// checkAuth fails fast on a bad or revoked token.
func checkAuth(ctx context.Context, client clients.SlackClient, label string) error {
	identity, err := client.AuthTest(ctx)
	if err != nil {
		return fmt.Errorf("%s token failed auth check: %w", label, err)
	}
	log.Printf("✅ %s token authenticated as %s (team %s)", label, identity.UserID, identity.TeamID)
	return nil
}
