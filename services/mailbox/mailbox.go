package mailbox

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"catchup/clients"
	"catchup/models"
)

const (
	// ArtifactPrefix marks mailbox attachments that carry a job
	// envelope; files without it are never treated as jobs.
	ArtifactPrefix = "catchup_data_"
	artifactSuffix = ".json"

	pollPageSize  = 20
	clearPageSize = 100
)

// Status messages posted on the interactive path. The worker removes
// them by marker match once the summary is delivered.
const (
	StatusCollecting   = "⏳ Collecting messages..."
	StatusCollected    = "✅ Messages collected. The worker will post a summary shortly."
	StatusSummarizing  = "⏳ Generating the summary with Claude..."
	StatusUploadFailed = "❌ Failed to upload the collected data."
)

var StatusMarkers = []string{
	"Collecting messages",
	"Messages collected",
	"Generating the summary",
}

// MailboxService treats the one-to-one DM between the bot and a user as
// a one-way file queue: the producer uploads job envelopes into it, the
// consumer polls, downloads, and cleans up. Every operation on the queue
// is a single atomic Slack call, so the two processes need no further
// coordination.
type MailboxService struct {
	slackClient clients.SlackClient
	dmCache     map[string]string // user id -> DM channel id
}

func NewMailboxService(slackClient clients.SlackClient) *MailboxService {
	return &MailboxService{
		slackClient: slackClient,
		dmCache:     make(map[string]string),
	}
}

// DMChannel resolves (and caches) the mailbox conversation for a user.
func (s *MailboxService) DMChannel(ctx context.Context, userID string) (string, error) {
	if channelID, ok := s.dmCache[userID]; ok {
		return channelID, nil
	}
	channelID, err := s.slackClient.OpenConversation(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to open DM with %s: %w", userID, err)
	}
	s.dmCache[userID] = channelID
	return channelID, nil
}

// SeedDMChannel primes the DM cache for credentials that cannot open the
// conversation themselves, such as the worker's polling user token.
func (s *MailboxService) SeedDMChannel(userID, channelID string) {
	s.dmCache[userID] = channelID
}

// SendDM posts a message into the mailbox and returns its timestamp.
func (s *MailboxService) SendDM(ctx context.Context, userID, text string) (string, error) {
	channelID, err := s.DMChannel(ctx, userID)
	if err != nil {
		return "", err
	}
	ts, err := s.slackClient.PostMessage(ctx, channelID, text)
	if err != nil {
		return "", fmt.Errorf("failed to send DM to %s: %w", userID, err)
	}
	return ts, nil
}

// DeleteDM removes one mailbox message, best-effort. An empty timestamp
// is a no-op.
func (s *MailboxService) DeleteDM(ctx context.Context, userID, ts string) {
	if ts == "" {
		return
	}
	channelID, err := s.DMChannel(ctx, userID)
	if err != nil {
		log.Printf("⚠️ Failed to resolve DM for delete: %v", err)
		return
	}
	if err := s.slackClient.DeleteMessage(ctx, channelID, ts); err != nil {
		log.Printf("⚠️ Failed to delete DM message %s: %v", ts, err)
	}
}

// UploadEnvelope serializes the envelope to a temp file and uploads it
// into the mailbox. The artifact name embeds the user id and a unix-time
// suffix for collision avoidance; the temp file is released on every
// exit path.
func (s *MailboxService) UploadEnvelope(ctx context.Context, userID string, env *models.JobEnvelope) (string, error) {
	data, err := env.Marshal()
	if err != nil {
		return "", fmt.Errorf("failed to serialize job envelope: %w", err)
	}
	channelID, err := s.DMChannel(ctx, userID)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp("", "catchup_*.json")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	filename := fmt.Sprintf("%s%s_%d%s", ArtifactPrefix, userID, time.Now().Unix(), artifactSuffix)
	if _, err := s.slackClient.UploadFile(ctx, clients.UploadFileParameters{
		ChannelID: channelID,
		Path:      tmp.Name(),
		Filename:  filename,
		Title:     "Catchup Data (" + filename + ")",
		FileSize:  len(data),
	}); err != nil {
		return "", fmt.Errorf("failed to upload job envelope: %w", err)
	}
	return filename, nil
}

// IsJobArtifact reports whether an attachment name carries the
// recognized job prefix.
func IsJobArtifact(name string) bool {
	return strings.HasPrefix(name, ArtifactPrefix) && strings.HasSuffix(name, artifactSuffix)
}

// ListJobArtifacts returns the job attachments visible in the most
// recent page of the mailbox, in whatever order the history API returns
// them.
func (s *MailboxService) ListJobArtifacts(ctx context.Context, userID string) ([]clients.SlackFile, error) {
	channelID, err := s.DMChannel(ctx, userID)
	if err != nil {
		return nil, err
	}
	page, err := s.slackClient.GetConversationHistory(ctx, clients.HistoryParameters{
		ChannelID: channelID,
		Limit:     pollPageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan mailbox: %w", err)
	}

	var found []clients.SlackFile
	for _, msg := range page.Messages {
		for _, file := range msg.Files {
			if IsJobArtifact(file.Name) {
				found = append(found, file)
			}
		}
	}
	return found, nil
}

// DownloadArtifact fetches an artifact into a scoped temp file and
// returns its path. The caller removes the file when done.
func (s *MailboxService) DownloadArtifact(ctx context.Context, file clients.SlackFile) (string, error) {
	if file.URLPrivateDownload == "" {
		return "", fmt.Errorf("no download URL for file %s", file.ID)
	}
	tmp, err := os.CreateTemp("", "catchup_dl_*.json")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if err := s.slackClient.DownloadFile(ctx, file.URLPrivateDownload, tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to download file %s: %w", file.ID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	return tmp.Name(), nil
}

func (s *MailboxService) DeleteArtifact(ctx context.Context, fileID string) error {
	if err := s.slackClient.DeleteFile(ctx, fileID); err != nil {
		return fmt.Errorf("failed to delete file %s: %w", fileID, err)
	}
	log.Printf("🗑️ Deleted mailbox artifact %s", fileID)
	return nil
}

// CleanupStatusMessages deletes transient status replies matching any of
// the markers from the most recent page of the mailbox.
func (s *MailboxService) CleanupStatusMessages(ctx context.Context, userID string, markers []string) {
	channelID, err := s.DMChannel(ctx, userID)
	if err != nil {
		log.Printf("⚠️ Failed to resolve DM for status cleanup: %v", err)
		return
	}
	page, err := s.slackClient.GetConversationHistory(ctx, clients.HistoryParameters{
		ChannelID: channelID,
		Limit:     pollPageSize,
	})
	if err != nil {
		log.Printf("⚠️ Failed to scan mailbox for status cleanup: %v", err)
		return
	}
	for _, msg := range page.Messages {
		for _, marker := range markers {
			if strings.Contains(msg.Text, marker) {
				s.DeleteDM(ctx, userID, msg.TS)
				break
			}
		}
	}
}

// Clear wipes every message and attachment from the mailbox, paginated.
func (s *MailboxService) Clear(ctx context.Context, userID string) (deletedMessages, deletedFiles int, err error) {
	channelID, err := s.DMChannel(ctx, userID)
	if err != nil {
		return 0, 0, err
	}

	cursor := ""
	for {
		page, err := s.slackClient.GetConversationHistory(ctx, clients.HistoryParameters{
			ChannelID: channelID,
			Limit:     clearPageSize,
			Cursor:    cursor,
		})
		if err != nil {
			return deletedMessages, deletedFiles, fmt.Errorf("failed to page mailbox: %w", err)
		}
		if len(page.Messages) == 0 {
			break
		}
		for _, msg := range page.Messages {
			for _, file := range msg.Files {
				if err := s.slackClient.DeleteFile(ctx, file.ID); err == nil {
					deletedFiles++
				}
			}
			if err := s.slackClient.DeleteMessage(ctx, channelID, msg.TS); err == nil {
				deletedMessages++
			}
		}
		if !page.HasMore || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	log.Printf("🧹 Mailbox cleared for %s: %d message(s), %d file(s)", userID, deletedMessages, deletedFiles)
	return deletedMessages, deletedFiles, nil
}
