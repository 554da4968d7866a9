package mailbox

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catchup/clients"
	"catchup/clients/slack"
	"catchup/models"
)

func TestIsJobArtifact(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     bool
	}{
		{name: "valid artifact", filename: "catchup_data_U123_1726053600.json", want: true},
		{name: "wrong prefix", filename: "report_U123.json", want: false},
		{name: "wrong suffix", filename: "catchup_data_U123_1726053600.txt", want: false},
		{name: "vacation photo", filename: "beach.png", want: false},
		{name: "empty", filename: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsJobArtifact(tt.filename))
		})
	}
}

func TestDMChannel_Caches(t *testing.T) {
	mockClient := slack.NewMockSlackClient()
	opens := 0
	mockClient.MockOpenConversation = func(ctx context.Context, userID string) (string, error) {
		opens++
		return "D777", nil
	}

	service := NewMailboxService(mockClient)
	first, err := service.DMChannel(context.Background(), "U123")
	require.NoError(t, err)
	second, err := service.DMChannel(context.Background(), "U123")
	require.NoError(t, err)
	assert.Equal(t, "D777", first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, opens)
}

func TestSeedDMChannel_BypassesOpen(t *testing.T) {
	mockClient := slack.NewMockSlackClient()
	mockClient.MockOpenConversation = func(ctx context.Context, userID string) (string, error) {
		t.Fatal("OpenConversation must not be called after seeding")
		return "", nil
	}

	service := NewMailboxService(mockClient)
	service.SeedDMChannel("U123", "D777")
	channelID, err := service.DMChannel(context.Background(), "U123")
	require.NoError(t, err)
	assert.Equal(t, "D777", channelID)
}

func TestUploadEnvelope(t *testing.T) {
	mockClient := slack.NewMockSlackClient()
	var uploaded clients.UploadFileParameters
	var uploadedBody []byte
	mockClient.MockUploadFile = func(ctx context.Context, params clients.UploadFileParameters) (*clients.SlackFile, error) {
		uploaded = params
		body, err := os.ReadFile(params.Path)
		require.NoError(t, err)
		uploadedBody = body
		return &clients.SlackFile{ID: "F1", Name: params.Filename}, nil
	}

	service := NewMailboxService(mockClient)
	env := models.NewJobEnvelope("U123", "3d", []*models.CollectionResult{
		{ChannelName: "general", Messages: []*models.Message{}},
	})
	filename, err := service.UploadEnvelope(context.Background(), "U123", env)
	require.NoError(t, err)

	assert.True(t, IsJobArtifact(filename))
	assert.True(t, strings.HasPrefix(filename, "catchup_data_U123_"))
	assert.Equal(t, filename, uploaded.Filename)
	assert.Equal(t, len(uploadedBody), uploaded.FileSize)

	// The temp file must be gone after upload.
	_, statErr := os.Stat(uploaded.Path)
	assert.True(t, os.IsNotExist(statErr))

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(uploadedBody, &parsed))
	assert.Equal(t, "job", parsed["type"])
	assert.Equal(t, "1.0", parsed["version"])
}

func TestListJobArtifacts(t *testing.T) {
	mockClient := slack.NewMockSlackClient()
	mockClient.MockGetConversationHistory = func(ctx context.Context, params clients.HistoryParameters) (*clients.HistoryPage, error) {
		return &clients.HistoryPage{Messages: []clients.SlackMessage{
			{TS: "3", Files: []clients.SlackFile{{ID: "F1", Name: "catchup_data_U123_1726053600.json"}}},
			{TS: "2", Files: []clients.SlackFile{{ID: "F2", Name: "notes.txt"}}},
			{TS: "1", Text: "✅ Messages collected."},
		}}, nil
	}

	service := NewMailboxService(mockClient)
	artifacts, err := service.ListJobArtifacts(context.Background(), "U123")
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.Equal(t, "F1", artifacts[0].ID)
}

func TestDownloadArtifact(t *testing.T) {
	mockClient := slack.NewMockSlackClient()
	mockClient.MockDownloadFile = func(ctx context.Context, downloadURL string, w io.Writer) error {
		_, err := w.Write([]byte(`{"version":"1.0","type":"job"}`))
		return err
	}

	service := NewMailboxService(mockClient)
	path, err := service.DownloadArtifact(context.Background(), clients.SlackFile{
		ID:                 "F1",
		URLPrivateDownload: "https://files.slack.com/F1",
	})
	require.NoError(t, err)
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"1.0","type":"job"}`, string(data))
}

func TestDownloadArtifact_NoURL(t *testing.T) {
	service := NewMailboxService(slack.NewMockSlackClient())
	_, err := service.DownloadArtifact(context.Background(), clients.SlackFile{ID: "F1"})
	assert.Error(t, err)
}

func TestCleanupStatusMessages(t *testing.T) {
	mockClient := slack.NewMockSlackClient()
	mockClient.MockGetConversationHistory = func(ctx context.Context, params clients.HistoryParameters) (*clients.HistoryPage, error) {
		return &clients.HistoryPage{Messages: []clients.SlackMessage{
			{TS: "4", Text: StatusCollected},
			{TS: "3", Text: StatusSummarizing},
			{TS: "2", Text: "here is your summary"},
			{TS: "1", Text: "unrelated chat"},
		}}, nil
	}
	var deleted []string
	mockClient.MockDeleteMessage = func(ctx context.Context, channelID, ts string) error {
		deleted = append(deleted, ts)
		return nil
	}

	service := NewMailboxService(mockClient)
	service.CleanupStatusMessages(context.Background(), "U123", StatusMarkers)
	assert.Equal(t, []string{"4", "3"}, deleted)
}

func TestClear(t *testing.T) {
	mockClient := slack.NewMockSlackClient()
	pages := 0
	mockClient.MockGetConversationHistory = func(ctx context.Context, params clients.HistoryParameters) (*clients.HistoryPage, error) {
		pages++
		if params.Cursor == "" {
			return &clients.HistoryPage{
				Messages: []clients.SlackMessage{
					{TS: "3", Files: []clients.SlackFile{{ID: "F1", Name: "catchup_data_U123_1.json"}}},
					{TS: "2", Text: "summary"},
				},
				HasMore:    true,
				NextCursor: "next",
			}, nil
		}
		return &clients.HistoryPage{Messages: []clients.SlackMessage{{TS: "1", Text: "old"}}}, nil
	}
	var deletedFiles, deletedMessages []string
	mockClient.MockDeleteFile = func(ctx context.Context, fileID string) error {
		deletedFiles = append(deletedFiles, fileID)
		return nil
	}
	mockClient.MockDeleteMessage = func(ctx context.Context, channelID, ts string) error {
		deletedMessages = append(deletedMessages, ts)
		return nil
	}

	service := NewMailboxService(mockClient)
	msgs, files, err := service.Clear(context.Background(), "U123")
	require.NoError(t, err)
	assert.Equal(t, 3, msgs)
	assert.Equal(t, 1, files)
	assert.Equal(t, 2, pages)
	assert.Equal(t, []string{"F1"}, deletedFiles)
	assert.Equal(t, []string{"3", "2", "1"}, deletedMessages)
}
