package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catchup/clients"
	"catchup/clients/anthropic"
	"catchup/clients/slack"
	"catchup/services/mailbox"
	"catchup/services/summarizer"
)

const envelopeJSON = `{
	"version": "1.0",
	"type": "job",
	"request": {"user_id": "U123", "command_text": "1d", "requested_at": "2025-01-15T10:00:00Z"},
	"channels": [{
		"channel_name": "general",
		"start_time": "2025-01-14 10:00",
		"end_time": "2025-01-15 10:00",
		"total_count": 1,
		"messages": [{"ts": "1726053600.000100", "user": "U1", "user_name": "Jane", "text": "hello", "reply_count": 1, "reaction_count": 0}]
	}]
}`

type workerFixture struct {
	pollMock  *slack.MockSlackClient
	replyMock *slack.MockSlackClient
	worker    *SummaryWorker

	posted       []string
	deletedFiles []string
}

func newWorkerFixture(t *testing.T, artifactBody string) *workerFixture {
	t.Helper()
	f := &workerFixture{
		pollMock:  slack.NewMockSlackClient(),
		replyMock: slack.NewMockSlackClient(),
	}

	f.pollMock.MockGetConversationHistory = func(ctx context.Context, params clients.HistoryParameters) (*clients.HistoryPage, error) {
		return &clients.HistoryPage{Messages: []clients.SlackMessage{
			{TS: "2", Files: []clients.SlackFile{{
				ID:                 "F1",
				Name:               "catchup_data_U123_1726053600.json",
				URLPrivateDownload: "https://files.slack.com/F1",
			}}},
		}}, nil
	}
	f.pollMock.MockDownloadFile = func(ctx context.Context, downloadURL string, w io.Writer) error {
		_, err := w.Write([]byte(artifactBody))
		return err
	}
	// The polling credential is read-only: the user token neither
	// authored the status messages nor owns the uploaded artifacts, so
	// every mailbox write must go through the bot credential.
	f.pollMock.MockPostMessage = func(ctx context.Context, channelID, text string) (string, error) {
		t.Error("mailbox write through the polling credential")
		return "", fmt.Errorf("wrong credential")
	}
	f.pollMock.MockDeleteMessage = func(ctx context.Context, channelID, ts string) error {
		t.Error("message delete through the polling credential")
		return fmt.Errorf("wrong credential")
	}
	f.pollMock.MockDeleteFile = func(ctx context.Context, fileID string) error {
		t.Error("file delete through the polling credential")
		return fmt.Errorf("wrong credential")
	}

	f.replyMock.MockGetConversationHistory = func(ctx context.Context, params clients.HistoryParameters) (*clients.HistoryPage, error) {
		return &clients.HistoryPage{}, nil
	}
	f.replyMock.MockPostMessage = func(ctx context.Context, channelID, text string) (string, error) {
		f.posted = append(f.posted, text)
		return "1700000000.000100", nil
	}
	f.replyMock.MockDeleteFile = func(ctx context.Context, fileID string) error {
		f.deletedFiles = append(f.deletedFiles, fileID)
		return nil
	}

	f.worker = NewSummaryWorker(
		f.pollMailbox(), f.replyMailbox(),
		summarizer.NewSummarizer(anthropic.NewMockSummarizerClient(), summarizer.AsyncTruncateLimit),
		nil, "U123")
	return f
}

func (f *workerFixture) pollMailbox() *mailbox.MailboxService {
	service := mailbox.NewMailboxService(f.pollMock)
	service.SeedDMChannel("U123", "D777")
	return service
}

func (f *workerFixture) replyMailbox() *mailbox.MailboxService {
	service := mailbox.NewMailboxService(f.replyMock)
	service.SeedDMChannel("U123", "D777")
	return service
}

func (f *workerFixture) summaries() []string {
	var out []string
	for _, text := range f.posted {
		if text == mailbox.StatusSummarizing {
			continue
		}
		out = append(out, text)
	}
	return out
}

func TestPollOnce_DeliversSummaryAndDeletesArtifact(t *testing.T) {
	f := newWorkerFixture(t, envelopeJSON)

	require.NoError(t, f.worker.PollOnce(context.Background()))

	summaries := f.summaries()
	require.Len(t, summaries, 1)
	assert.Contains(t, summaries[0], "#general")
	assert.Equal(t, []string{"F1"}, f.deletedFiles)
}

func TestPollOnce_SkipsAlreadyProcessed(t *testing.T) {
	f := newWorkerFixture(t, envelopeJSON)

	require.NoError(t, f.worker.PollOnce(context.Background()))
	require.NoError(t, f.worker.PollOnce(context.Background()))

	// Second poll sees the same file id and must not touch it again.
	assert.Len(t, f.summaries(), 1)
	assert.Equal(t, []string{"F1"}, f.deletedFiles)
}

func TestPollOnce_MalformedEnvelopeNotifiesAndLeavesArtifact(t *testing.T) {
	f := newWorkerFixture(t, `{"version": "1.0", "type": "note"}`)

	require.NoError(t, f.worker.PollOnce(context.Background()))

	// The requester hears about the failure; the artifact stays put for
	// manual inspection.
	require.Len(t, f.posted, 1)
	assert.Equal(t, "❌ Failed to parse job artifact: catchup_data_U123_1726053600.json", f.posted[0])
	assert.Empty(t, f.deletedFiles)
}

func TestPollOnce_DownloadFailureNotifiesAndRetains(t *testing.T) {
	f := newWorkerFixture(t, envelopeJSON)
	f.pollMock.MockDownloadFile = func(ctx context.Context, downloadURL string, w io.Writer) error {
		return fmt.Errorf("connection reset")
	}

	require.NoError(t, f.worker.PollOnce(context.Background()))

	require.Len(t, f.posted, 1)
	assert.Equal(t, "❌ Failed to download job artifact: catchup_data_U123_1726053600.json", f.posted[0])
	assert.Empty(t, f.deletedFiles)
}

func TestPollOnce_SummarizerFailureDeletesArtifact(t *testing.T) {
	f := newWorkerFixture(t, envelopeJSON)
	mockSummarizer := anthropic.NewMockSummarizerClient()
	mockSummarizer.MockCreateSummary = func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		return "", fmt.Errorf("overloaded")
	}
	f.worker = NewSummaryWorker(f.pollMailbox(), f.replyMailbox(),
		summarizer.NewSummarizer(mockSummarizer, summarizer.AsyncTruncateLimit), nil, "U123")

	require.NoError(t, f.worker.PollOnce(context.Background()))

	// The envelope was valid, so the failure is reported and the
	// artifact is spent.
	assert.Equal(t, []string{"F1"}, f.deletedFiles)
	summaries := f.summaries()
	require.Len(t, summaries, 1)
	assert.Contains(t, summaries[0], "❌ Summarization failed")
}

func TestPollOnce_DeliveryFailureRetainsArtifact(t *testing.T) {
	f := newWorkerFixture(t, envelopeJSON)
	f.replyMock.MockPostMessage = func(ctx context.Context, channelID, text string) (string, error) {
		if text == mailbox.StatusSummarizing {
			return "1700000000.000100", nil
		}
		return "", fmt.Errorf("slack unreachable")
	}

	require.NoError(t, f.worker.PollOnce(context.Background()))

	assert.Empty(t, f.deletedFiles)
}

func TestPollOnce_ListFailurePropagates(t *testing.T) {
	f := newWorkerFixture(t, envelopeJSON)
	f.pollMock.MockGetConversationHistory = func(ctx context.Context, params clients.HistoryParameters) (*clients.HistoryPage, error) {
		return nil, fmt.Errorf("ratelimited")
	}

	err := f.worker.PollOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ratelimited")
}

func TestPollOnce_IgnoresUnrelatedFiles(t *testing.T) {
	f := newWorkerFixture(t, envelopeJSON)
	f.pollMock.MockGetConversationHistory = func(ctx context.Context, params clients.HistoryParameters) (*clients.HistoryPage, error) {
		return &clients.HistoryPage{Messages: []clients.SlackMessage{
			{TS: "2", Files: []clients.SlackFile{{ID: "F9", Name: "notes.txt"}}},
		}}, nil
	}

	require.NoError(t, f.worker.PollOnce(context.Background()))
	assert.Empty(t, f.summaries())
	assert.Empty(t, f.deletedFiles)
}

func TestRun_DrainsBacklogBeforeTicker(t *testing.T) {
	f := newWorkerFixture(t, envelopeJSON)
	f.worker.pollInterval = time.Hour

	// With the context already cancelled the loop exits on its first
	// iteration, so any delivered summary must come from the startup
	// scan, not a ticker cycle.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := f.worker.Run(ctx)
	require.True(t, errors.Is(err, context.Canceled))

	require.Len(t, f.summaries(), 1)
	assert.Equal(t, []string{"F1"}, f.deletedFiles)
}
