package worker

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"catchup/alerts"
	"catchup/clients"
	"catchup/models"
	"catchup/services/mailbox"
	"catchup/services/summarizer"
	"catchup/utils"
)

const (
	// DefaultPollInterval is how often the worker scans the DM mailbox
	// for new job artifacts.
	DefaultPollInterval = 5 * time.Second
)

// SummaryWorker polls the user's DM for job envelopes, summarizes them
// and replies in the same DM. The two credentials split the work: the
// user token reads the mailbox (polling and download), while replies,
// status cleanup, and artifact deletion go through the bot token — the
// bot authored the status messages and owns the uploaded files, and
// Slack only lets the author delete them.
type SummaryWorker struct {
	pollMailbox  *mailbox.MailboxService
	replyMailbox *mailbox.MailboxService
	summarizer   *summarizer.Summarizer
	notifier     *alerts.Notifier
	userID       string
	pollInterval time.Duration

	mu        sync.Mutex
	processed map[string]bool
}

func NewSummaryWorker(
	pollMailbox *mailbox.MailboxService,
	replyMailbox *mailbox.MailboxService,
	summ *summarizer.Summarizer,
	notifier *alerts.Notifier,
	userID string,
) *SummaryWorker {
	return &SummaryWorker{
		pollMailbox:  pollMailbox,
		replyMailbox: replyMailbox,
		summarizer:   summ,
		notifier:     notifier,
		userID:       userID,
		pollInterval: DefaultPollInterval,
		processed:    make(map[string]bool),
	}
}

// Run drains the backlog accumulated while the worker was down, then
// polls until the context is cancelled.
func (w *SummaryWorker) Run(ctx context.Context) error {
	log.Printf("🚀 Summary worker polling every %s for %s", w.pollInterval, w.userID)
	if err := w.PollOnce(ctx); err != nil {
		log.Printf("⚠️ Startup scan failed: %v", err)
		w.notifier.AlertOnError(err, "mailbox poll")
	}
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("📋 Summary worker stopping: %v", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if err := w.PollOnce(ctx); err != nil {
				log.Printf("⚠️ Poll cycle failed: %v", err)
				w.notifier.AlertOnError(err, "mailbox poll")
			}
		}
	}
}

// PollOnce scans the mailbox once and processes every unseen artifact.
func (w *SummaryWorker) PollOnce(ctx context.Context) error {
	artifacts, err := w.pollMailbox.ListJobArtifacts(ctx, w.userID)
	if err != nil {
		return fmt.Errorf("failed to list job artifacts: %w", err)
	}
	for _, artifact := range artifacts {
		if w.markProcessed(artifact.ID) {
			continue
		}
		if err := w.processArtifact(ctx, artifact); err != nil {
			log.Printf("❌ Failed to process artifact %s (%s): %v", artifact.ID, artifact.Name, err)
			w.notifier.AlertOnError(err, "artifact processing")
		}
	}
	return nil
}

// markProcessed records the artifact id and reports whether it had been
// seen before. Marking happens before summarization so a slow Anthropic
// call can never double-process within one instance.
func (w *SummaryWorker) markProcessed(id string) (seen bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.processed[id] {
		return true
	}
	w.processed[id] = true
	return false
}

func (w *SummaryWorker) processArtifact(ctx context.Context, artifact clients.SlackFile) error {
	log.Printf("📋 Processing job artifact %s (%s)", artifact.ID, artifact.Name)
	path, err := w.pollMailbox.DownloadArtifact(ctx, artifact)
	if err != nil {
		w.replyMailbox.SendDM(ctx, w.userID, "❌ Failed to download job artifact: "+artifact.Name)
		return fmt.Errorf("failed to download artifact %s: %w", artifact.ID, err)
	}
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	if err != nil {
		w.replyMailbox.SendDM(ctx, w.userID, "❌ Failed to download job artifact: "+artifact.Name)
		return fmt.Errorf("failed to read downloaded artifact %s: %w", artifact.ID, err)
	}

	env, err := models.ParseJobEnvelope(data)
	if err != nil {
		// A malformed artifact stays in the DM for manual inspection.
		w.replyMailbox.SendDM(ctx, w.userID, "❌ Failed to parse job artifact: "+artifact.Name)
		return fmt.Errorf("failed to parse job envelope %s: %w", artifact.Name, err)
	}

	w.replaceStatus(ctx, mailbox.StatusSummarizing)

	summary, sumErr := w.summarizer.SummarizeAll(ctx, env.Channels)
	if sumErr != nil {
		// The envelope itself was valid, so the artifact is spent either
		// way: report the failure and clean it up.
		w.replyMailbox.SendDM(ctx, w.userID, fmt.Sprintf("❌ Summarization failed: %v", sumErr))
		w.deleteArtifact(ctx, artifact)
		return fmt.Errorf("failed to summarize envelope %s: %w", artifact.Name, sumErr)
	}

	if _, err := w.replyMailbox.SendDM(ctx, w.userID, utils.ConvertMarkdownToSlack(summary)); err != nil {
		// Without a confirmed reply the artifact must survive for a
		// retry by a future instance.
		return fmt.Errorf("failed to deliver summary for %s: %w", artifact.Name, err)
	}

	w.deleteArtifact(ctx, artifact)
	w.replyMailbox.CleanupStatusMessages(ctx, w.userID, mailbox.StatusMarkers)
	log.Printf("✅ Summary delivered for artifact %s", artifact.ID)
	return nil
}

func (w *SummaryWorker) deleteArtifact(ctx context.Context, artifact clients.SlackFile) {
	if err := w.replyMailbox.DeleteArtifact(ctx, artifact.ID); err != nil {
		log.Printf("⚠️ Failed to delete artifact %s: %v", artifact.ID, err)
	}
}

func (w *SummaryWorker) replaceStatus(ctx context.Context, text string) {
	w.replyMailbox.CleanupStatusMessages(ctx, w.userID, mailbox.StatusMarkers)
	if _, err := w.replyMailbox.SendDM(ctx, w.userID, text); err != nil {
		log.Printf("⚠️ Failed to post status message: %v", err)
	}
}
