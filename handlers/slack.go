package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/slack-go/slack"

	"catchup/clients"
	"catchup/models"
	"catchup/usecases/catchup"
)

const commandTimeout = 5 * time.Minute

type SlackWebhooksHandler struct {
	slackClient    clients.SlackClient
	signingSecret  string
	catchupUseCase *catchup.CatchupUseCase
}

func NewSlackWebhooksHandler(
	slackClient clients.SlackClient,
	signingSecret string,
	catchupUseCase *catchup.CatchupUseCase,
) *SlackWebhooksHandler {
	return &SlackWebhooksHandler{
		slackClient:    slackClient,
		signingSecret:  signingSecret,
		catchupUseCase: catchupUseCase,
	}
}

func (h *SlackWebhooksHandler) HandleSlackCommand(w http.ResponseWriter, r *http.Request) {
	log.Printf("⚡ Slack command received from %s", r.RemoteAddr)
	var buf bytes.Buffer
	tee := io.TeeReader(r.Body, &buf)

	verifier, err := slack.NewSecretsVerifier(r.Header, h.signingSecret)
	if err != nil {
		log.Printf("❌ Invalid secret verifier: %v", err)
		http.Error(w, "invalid secret verifier", http.StatusUnauthorized)
		return
	}

	if _, err := io.Copy(&verifier, tee); err != nil {
		log.Printf("❌ Failed to read request body: %v", err)
		http.Error(w, "failed to read body", http.StatusInternalServerError)
		return
	}

	if err := verifier.Ensure(); err != nil {
		log.Printf("❌ Slack signature verification failed: %v", err)
		http.Error(w, "signature verification failed", http.StatusUnauthorized)
		return
	}

	r.Body = io.NopCloser(&buf)

	command, err := slack.SlashCommandParse(r)
	if err != nil {
		log.Printf("❌ Failed to parse slash command: %v", err)
		http.Error(w, "failed to parse slash command", http.StatusInternalServerError)
		return
	}

	log.Printf("⚡ Parsed slash command: %s from user %s in channel %s", command.Command, command.UserID, command.ChannelID)

	if command.Command != "/catchup" {
		log.Printf("⚠️ Unknown slash command: %s", command.Command)
		w.WriteHeader(http.StatusOK)
		return
	}

	// Ack within Slack's 3 second budget, then run the collection in
	// the background.
	w.WriteHeader(http.StatusOK)

	cmd := models.SlashCommand{
		UserID:    command.UserID,
		ChannelID: command.ChannelID,
		Text:      command.Text,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		if err := h.catchupUseCase.HandleCommand(ctx, cmd); err != nil {
			log.Printf("❌ Failed to handle /catchup command: %v", err)
		}
	}()
}

func (h *SlackWebhooksHandler) HandleSlackEvent(w http.ResponseWriter, r *http.Request) {
	log.Printf("📨 Slack event received from %s", r.RemoteAddr)

	var buf bytes.Buffer
	tee := io.TeeReader(r.Body, &buf)

	verifier, err := slack.NewSecretsVerifier(r.Header, h.signingSecret)
	if err != nil {
		log.Printf("❌ Invalid secret verifier: %v", err)
		http.Error(w, "invalid secret verifier", http.StatusUnauthorized)
		return
	}
	if _, err := io.Copy(&verifier, tee); err != nil {
		log.Printf("❌ Failed to read request body: %v", err)
		http.Error(w, "failed to read body", http.StatusInternalServerError)
		return
	}
	if err := verifier.Ensure(); err != nil {
		log.Printf("❌ Slack signature verification failed: %v", err)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var body map[string]any
	if err := json.Unmarshal(buf.Bytes(), &body); err != nil {
		log.Printf("❌ Failed to parse JSON body: %v", err)
		http.Error(w, "failed to parse body", http.StatusBadRequest)
		return
	}

	if body["type"] == "url_verification" {
		log.Printf("🔐 Slack URL verification challenge received")
		challenge, ok := body["challenge"].(string)
		if !ok {
			log.Printf("❌ Challenge not found in verification request")
			http.Error(w, "challenge not found", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(challenge))
		return
	}

	if body["type"] != "event_callback" {
		log.Printf("📋 Non-event callback received: %v", body["type"])
		w.WriteHeader(http.StatusOK)
		return
	}

	event, ok := body["event"].(map[string]any)
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}
	eventType, _ := event["type"].(string)
	if eventType != "app_mention" {
		log.Printf("📋 Ignoring event type: %s", eventType)
		w.WriteHeader(http.StatusOK)
		return
	}

	channel, _ := event["channel"].(string)
	user, _ := event["user"].(string)
	log.Printf("📨 Bot mentioned by %s in %s", user, channel)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		greeting := "👋 Hi! Use `/catchup` to get a digest of what you missed. Try `/catchup help` for options."
		if _, err := h.slackClient.PostMessage(ctx, channel, greeting); err != nil {
			log.Printf("❌ Failed to post mention greeting: %v", err)
		}
	}()

	w.WriteHeader(http.StatusOK)
}

func (h *SlackWebhooksHandler) SetupEndpoints(router *mux.Router) {
	log.Printf("🚀 Registering Slack commands endpoint on /slack/commands")
	router.HandleFunc("/slack/commands", h.HandleSlackCommand).Methods("POST")

	log.Printf("🚀 Registering Slack events endpoint on /slack/events")
	router.HandleFunc("/slack/events", h.HandleSlackEvent).Methods("POST")
}
