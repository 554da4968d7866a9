package slack

import (
	"context"
	"io"

	"catchup/clients"
)

// MockSlackClient implements clients.SlackClient for testing. Each method
// delegates to its function field when set and falls back to a benign
// default otherwise.
type MockSlackClient struct {
	MockAuthTest func(ctx context.Context) (*clients.SlackAuthTestResponse, error)

	MockGetConversationHistory func(ctx context.Context, params clients.HistoryParameters) (*clients.HistoryPage, error)
	MockGetConversationReplies func(ctx context.Context, params clients.RepliesParameters) (*clients.HistoryPage, error)
	MockGetConversationInfo    func(ctx context.Context, channelID string) (*clients.SlackChannel, error)
	MockListConversations      func(ctx context.Context, cursor string) ([]clients.SlackChannel, string, error)
	MockJoinConversation       func(ctx context.Context, channelID string) error

	MockGetUserInfo  func(ctx context.Context, userID string) (*clients.SlackUser, error)
	MockGetPermalink func(ctx context.Context, channelID, ts string) (string, error)

	MockOpenConversation func(ctx context.Context, userID string) (string, error)
	MockPostMessage      func(ctx context.Context, channelID, text string) (string, error)
	MockDeleteMessage    func(ctx context.Context, channelID, ts string) error

	MockUploadFile   func(ctx context.Context, params clients.UploadFileParameters) (*clients.SlackFile, error)
	MockDownloadFile func(ctx context.Context, downloadURL string, w io.Writer) error
	MockDeleteFile   func(ctx context.Context, fileID string) error
}

func NewMockSlackClient() *MockSlackClient {
	return &MockSlackClient{}
}

func (m *MockSlackClient) AuthTest(ctx context.Context) (*clients.SlackAuthTestResponse, error) {
	if m.MockAuthTest != nil {
		return m.MockAuthTest(ctx)
	}
	return &clients.SlackAuthTestResponse{UserID: "U_BOT", TeamID: "T123456789"}, nil
}

func (m *MockSlackClient) GetConversationHistory(
	ctx context.Context,
	params clients.HistoryParameters,
) (*clients.HistoryPage, error) {
	if m.MockGetConversationHistory != nil {
		return m.MockGetConversationHistory(ctx, params)
	}
	return &clients.HistoryPage{}, nil
}

func (m *MockSlackClient) GetConversationReplies(
	ctx context.Context,
	params clients.RepliesParameters,
) (*clients.HistoryPage, error) {
	if m.MockGetConversationReplies != nil {
		return m.MockGetConversationReplies(ctx, params)
	}
	return &clients.HistoryPage{}, nil
}

func (m *MockSlackClient) GetConversationInfo(ctx context.Context, channelID string) (*clients.SlackChannel, error) {
	if m.MockGetConversationInfo != nil {
		return m.MockGetConversationInfo(ctx, channelID)
	}
	return &clients.SlackChannel{ID: channelID, Name: "general", IsChannel: true}, nil
}

func (m *MockSlackClient) ListConversations(ctx context.Context, cursor string) ([]clients.SlackChannel, string, error) {
	if m.MockListConversations != nil {
		return m.MockListConversations(ctx, cursor)
	}
	return nil, "", nil
}

func (m *MockSlackClient) JoinConversation(ctx context.Context, channelID string) error {
	if m.MockJoinConversation != nil {
		return m.MockJoinConversation(ctx, channelID)
	}
	return nil
}

func (m *MockSlackClient) GetUserInfo(ctx context.Context, userID string) (*clients.SlackUser, error) {
	if m.MockGetUserInfo != nil {
		return m.MockGetUserInfo(ctx, userID)
	}
	return &clients.SlackUser{ID: userID, Name: "testuser", RealName: "Test User"}, nil
}

func (m *MockSlackClient) GetPermalink(ctx context.Context, channelID, ts string) (string, error) {
	if m.MockGetPermalink != nil {
		return m.MockGetPermalink(ctx, channelID, ts)
	}
	return "https://example.slack.com/archives/" + channelID + "/p" + ts, nil
}

func (m *MockSlackClient) OpenConversation(ctx context.Context, userID string) (string, error) {
	if m.MockOpenConversation != nil {
		return m.MockOpenConversation(ctx, userID)
	}
	return "D123456789", nil
}

func (m *MockSlackClient) PostMessage(ctx context.Context, channelID, text string) (string, error) {
	if m.MockPostMessage != nil {
		return m.MockPostMessage(ctx, channelID, text)
	}
	return "1700000000.000100", nil
}

func (m *MockSlackClient) DeleteMessage(ctx context.Context, channelID, ts string) error {
	if m.MockDeleteMessage != nil {
		return m.MockDeleteMessage(ctx, channelID, ts)
	}
	return nil
}

func (m *MockSlackClient) UploadFile(ctx context.Context, params clients.UploadFileParameters) (*clients.SlackFile, error) {
	if m.MockUploadFile != nil {
		return m.MockUploadFile(ctx, params)
	}
	return &clients.SlackFile{ID: "F123456789", Name: params.Filename}, nil
}

func (m *MockSlackClient) DownloadFile(ctx context.Context, downloadURL string, w io.Writer) error {
	if m.MockDownloadFile != nil {
		return m.MockDownloadFile(ctx, downloadURL, w)
	}
	return nil
}

func (m *MockSlackClient) DeleteFile(ctx context.Context, fileID string) error {
	if m.MockDeleteFile != nil {
		return m.MockDeleteFile(ctx, fileID)
	}
	return nil
}
