package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"catchup/clients/slack"
	"catchup/config"
	"catchup/handlers"
	"catchup/services/mailbox"
	"catchup/usecases/catchup"
)

func main() {
	if err := run(); err != nil {
		log.Printf("❌ Fatal error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ValidateBot(); err != nil {
		return fmt.Errorf("invalid bot config: %w", err)
	}

	slackClient := slack.NewClient(cfg.SlackConfig.BotToken)
	mailboxService := mailbox.NewMailboxService(slackClient)
	catchupUseCase := catchup.NewCatchupUseCase(slackClient, mailboxService)

	router := mux.NewRouter()
	webhooksHandler := handlers.NewSlackWebhooksHandler(slackClient, cfg.SlackConfig.SigningSecret, catchupUseCase)
	webhooksHandler.SetupEndpoints(router)

	log.Printf("🚀 Catchup bot listening on http://localhost:%s", cfg.Port)
	return http.ListenAndServe(":"+cfg.Port, router)
}
