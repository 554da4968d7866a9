package slack

import (
	"context"
	"errors"
	"io"

	"github.com/slack-go/slack"

	"catchup/clients"
)

// Client implements clients.SlackClient using the slack-go/slack SDK.
type Client struct {
	api *slack.Client
}

// NewClient creates a Slack client with the provided auth token. The bot
// and the worker each construct their own instance with their own
// credential, so their traffic is rate-limited independently.
func NewClient(authToken string) *Client {
	return &Client{api: slack.New(authToken)}
}

// AuthTest verifies the token and returns the identity behind it.
func (c *Client) AuthTest(ctx context.Context) (*clients.SlackAuthTestResponse, error) {
	resp, err := c.api.AuthTestContext(ctx)
	if err != nil {
		return nil, apiError(err)
	}
	return &clients.SlackAuthTestResponse{
		UserID: resp.UserID,
		TeamID: resp.TeamID,
	}, nil
}

func (c *Client) GetConversationHistory(
	ctx context.Context,
	params clients.HistoryParameters,
) (*clients.HistoryPage, error) {
	resp, err := c.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: params.ChannelID,
		Oldest:    params.Oldest,
		Latest:    params.Latest,
		Limit:     params.Limit,
		Cursor:    params.Cursor,
		Inclusive: params.Inclusive,
	})
	if err != nil {
		return nil, apiError(err)
	}
	return &clients.HistoryPage{
		Messages:   convertMessages(resp.Messages),
		HasMore:    resp.HasMore,
		NextCursor: resp.ResponseMetaData.NextCursor,
	}, nil
}

func (c *Client) GetConversationReplies(
	ctx context.Context,
	params clients.RepliesParameters,
) (*clients.HistoryPage, error) {
	msgs, hasMore, nextCursor, err := c.api.GetConversationRepliesContext(ctx, &slack.GetConversationRepliesParameters{
		ChannelID: params.ChannelID,
		Timestamp: params.Timestamp,
		Limit:     params.Limit,
		Cursor:    params.Cursor,
	})
	if err != nil {
		return nil, apiError(err)
	}
	return &clients.HistoryPage{
		Messages:   convertMessages(msgs),
		HasMore:    hasMore,
		NextCursor: nextCursor,
	}, nil
}

func (c *Client) GetConversationInfo(ctx context.Context, channelID string) (*clients.SlackChannel, error) {
	channel, err := c.api.GetConversationInfoContext(ctx, &slack.GetConversationInfoInput{
		ChannelID: channelID,
	})
	if err != nil {
		return nil, apiError(err)
	}
	converted := convertChannel(*channel)
	return &converted, nil
}

// ListConversations returns one page of the workspace conversation list
// plus the cursor for the next page.
func (c *Client) ListConversations(ctx context.Context, cursor string) ([]clients.SlackChannel, string, error) {
	channels, nextCursor, err := c.api.GetConversationsContext(ctx, &slack.GetConversationsParameters{
		Cursor:          cursor,
		Limit:           200,
		Types:           []string{"public_channel", "private_channel"},
		ExcludeArchived: true,
	})
	if err != nil {
		return nil, "", apiError(err)
	}
	converted := make([]clients.SlackChannel, 0, len(channels))
	for _, ch := range channels {
		converted = append(converted, convertChannel(ch))
	}
	return converted, nextCursor, nil
}

func (c *Client) JoinConversation(ctx context.Context, channelID string) error {
	if _, _, _, err := c.api.JoinConversationContext(ctx, channelID); err != nil {
		return apiError(err)
	}
	return nil
}

func (c *Client) GetUserInfo(ctx context.Context, userID string) (*clients.SlackUser, error) {
	user, err := c.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return nil, apiError(err)
	}
	return &clients.SlackUser{
		ID:          user.ID,
		Name:        user.Name,
		RealName:    user.RealName,
		DisplayName: user.Profile.DisplayName,
		IsBot:       user.IsBot,
	}, nil
}

func (c *Client) GetPermalink(ctx context.Context, channelID, ts string) (string, error) {
	permalink, err := c.api.GetPermalinkContext(ctx, &slack.PermalinkParameters{
		Channel: channelID,
		Ts:      ts,
	})
	if err != nil {
		return "", apiError(err)
	}
	return permalink, nil
}

// OpenConversation opens (or resumes) the one-to-one DM with a user and
// returns its channel id.
func (c *Client) OpenConversation(ctx context.Context, userID string) (string, error) {
	channel, _, _, err := c.api.OpenConversationContext(ctx, &slack.OpenConversationParameters{
		Users:    []string{userID},
		ReturnIM: true,
	})
	if err != nil {
		return "", apiError(err)
	}
	return channel.ID, nil
}

func (c *Client) PostMessage(ctx context.Context, channelID, text string) (string, error) {
	_, ts, err := c.api.PostMessageContext(ctx, channelID,
		slack.MsgOptionText(text, false),
		slack.MsgOptionDisableLinkUnfurl(),
		slack.MsgOptionDisableMediaUnfurl(),
	)
	if err != nil {
		return "", apiError(err)
	}
	return ts, nil
}

func (c *Client) DeleteMessage(ctx context.Context, channelID, ts string) error {
	if _, _, err := c.api.DeleteMessageContext(ctx, channelID, ts); err != nil {
		return apiError(err)
	}
	return nil
}

func (c *Client) UploadFile(ctx context.Context, params clients.UploadFileParameters) (*clients.SlackFile, error) {
	summary, err := c.api.UploadFileV2Context(ctx, slack.UploadFileV2Parameters{
		Channel:  params.ChannelID,
		File:     params.Path,
		Filename: params.Filename,
		Title:    params.Title,
		FileSize: params.FileSize,
	})
	if err != nil {
		return nil, apiError(err)
	}
	return &clients.SlackFile{
		ID:    summary.ID,
		Title: summary.Title,
		Name:  params.Filename,
	}, nil
}

func (c *Client) DownloadFile(ctx context.Context, downloadURL string, w io.Writer) error {
	if err := c.api.GetFileContext(ctx, downloadURL, w); err != nil {
		return apiError(err)
	}
	return nil
}

func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	if err := c.api.DeleteFileContext(ctx, fileID); err != nil {
		return apiError(err)
	}
	return nil
}

// apiError normalizes SDK errors to *clients.SlackAPIError carrying the
// raw Slack error code.
func apiError(err error) error {
	var slackErr slack.SlackErrorResponse
	if errors.As(err, &slackErr) {
		return &clients.SlackAPIError{Code: slackErr.Err}
	}
	return &clients.SlackAPIError{Code: err.Error()}
}

func convertMessages(messages []slack.Message) []clients.SlackMessage {
	converted := make([]clients.SlackMessage, 0, len(messages))
	for _, msg := range messages {
		var reactions []clients.SlackReaction
		for _, reaction := range msg.Reactions {
			reactions = append(reactions, clients.SlackReaction{
				Name:  reaction.Name,
				Count: reaction.Count,
			})
		}
		var files []clients.SlackFile
		for _, file := range msg.Files {
			files = append(files, clients.SlackFile{
				ID:                 file.ID,
				Name:               file.Name,
				Title:              file.Title,
				URLPrivateDownload: file.URLPrivateDownload,
			})
		}
		converted = append(converted, clients.SlackMessage{
			TS:         msg.Timestamp,
			ThreadTS:   msg.ThreadTimestamp,
			User:       msg.User,
			Username:   msg.Username,
			BotID:      msg.BotID,
			SubType:    msg.SubType,
			Text:       msg.Text,
			ReplyCount: msg.ReplyCount,
			Reactions:  reactions,
			Files:      files,
		})
	}
	return converted
}

func convertChannel(ch slack.Channel) clients.SlackChannel {
	return clients.SlackChannel{
		ID:        ch.ID,
		Name:      ch.Name,
		IsChannel: ch.IsChannel,
		IsPrivate: ch.IsPrivate,
		IsIM:      ch.IsIM,
		IsMember:  ch.IsMember,
	}
}
