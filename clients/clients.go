package clients

import (
	"context"
	"io"
)

// SlackClient is the subset of the Slack Web API the bot and worker use.
// Implementations map SDK types to the local types in models.go so the
// rest of the codebase never imports the SDK directly.
type SlackClient interface {
	AuthTest(ctx context.Context) (*SlackAuthTestResponse, error)

	GetConversationHistory(ctx context.Context, params HistoryParameters) (*HistoryPage, error)
	GetConversationReplies(ctx context.Context, params RepliesParameters) (*HistoryPage, error)
	GetConversationInfo(ctx context.Context, channelID string) (*SlackChannel, error)
	ListConversations(ctx context.Context, cursor string) ([]SlackChannel, string, error)
	JoinConversation(ctx context.Context, channelID string) error

	GetUserInfo(ctx context.Context, userID string) (*SlackUser, error)
	GetPermalink(ctx context.Context, channelID, ts string) (string, error)

	OpenConversation(ctx context.Context, userID string) (string, error)
	PostMessage(ctx context.Context, channelID, text string) (string, error)
	DeleteMessage(ctx context.Context, channelID, ts string) error

	UploadFile(ctx context.Context, params UploadFileParameters) (*SlackFile, error)
	DownloadFile(ctx context.Context, downloadURL string, w io.Writer) error
	DeleteFile(ctx context.Context, fileID string) error
}

// SummarizerClient is the external summarization dependency: text in,
// text out, or an error.
type SummarizerClient interface {
	CreateSummary(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
