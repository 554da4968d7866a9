package collector

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/samber/mo"

	"catchup/clients"
	"catchup/models"
)

const (
	historyPageSize = 200
	threadPageSize  = 100
	// maxMessagesPerChannel caps one channel collection. The check runs
	// between pages, so the final page can overshoot it.
	maxMessagesPerChannel = 500

	windowTimeFormat = "2006-01-02 15:04"
)

// droppedSubtypes are membership/metadata posts that never carry
// authored content; they are dropped regardless of the bot filter.
var droppedSubtypes = map[string]bool{
	"channel_join":  true,
	"channel_leave": true,
	"channel_topic": true,
}

// MessageCollector performs paginated, filtered retrieval of channel and
// thread history. The identity caches live for the lifetime of one
// collector instance and are never invalidated; callers create one
// collector per command invocation and discard it afterwards.
type MessageCollector struct {
	slackClient  clients.SlackClient
	userCache    map[string]string
	channelCache map[string]string
}

func NewMessageCollector(slackClient clients.SlackClient) *MessageCollector {
	return &MessageCollector{
		slackClient:  slackClient,
		userCache:    make(map[string]string),
		channelCache: make(map[string]string),
	}
}

// CollectChannel gathers the channel's history within [oldest, latest]
// (both bounds inclusive, Slack timestamp strings). On failure the
// returned result carries the user-facing error and no messages, and the
// error return holds the matchable *CollectorError.
func (c *MessageCollector) CollectChannel(
	ctx context.Context,
	channelID, oldest, latest string,
	includeThreads, includeBots bool,
) (*models.CollectionResult, error) {
	channelName := c.getChannelName(ctx, channelID)
	log.Printf("🔍 Collecting messages: channel=%s oldest=%s latest=%s threads=%t bots=%t",
		channelID, oldest, latest, includeThreads, includeBots)

	messages, err := c.collectHistory(ctx, channelID, channelName, oldest, latest, includeThreads, includeBots)
	if isNotInChannel(err) {
		if joinErr := c.autoJoin(ctx, channelID, channelName); joinErr != nil {
			return errorResult(channelName, joinErr), joinErr
		}
		messages, err = c.collectHistory(ctx, channelID, channelName, oldest, latest, includeThreads, includeBots)
	}
	if err != nil {
		collErr := asCollectorError(err)
		return errorResult(channelName, collErr), collErr
	}

	models.SortChronologically(messages)
	log.Printf("✅ Collected %d message(s) from #%s", len(messages), channelName)
	return &models.CollectionResult{
		ChannelName: channelName,
		StartTime:   formatWindowTS(oldest),
		EndTime:     formatWindowTS(latest),
		TotalCount:  len(messages),
		Messages:    messages,
	}, nil
}

// CollectThread gathers the full reply set of one thread, root included.
// The window bounds come from the first and last collected message.
func (c *MessageCollector) CollectThread(
	ctx context.Context,
	channelID, threadTS string,
	includeBots bool,
) (*models.CollectionResult, error) {
	channelName := c.getChannelName(ctx, channelID)
	log.Printf("🔍 Collecting thread: channel=%s ts=%s", channelID, threadTS)

	var messages []*models.Message
	cursor := ""
	for {
		page, err := c.slackClient.GetConversationReplies(ctx, clients.RepliesParameters{
			ChannelID: channelID,
			Timestamp: threadTS,
			Limit:     threadPageSize,
			Cursor:    cursor,
		})
		if err != nil {
			collErr := asThreadError(err)
			return errorResult(channelName, collErr), collErr
		}
		for _, raw := range page.Messages {
			if msg, keep := c.buildMessage(ctx, raw, channelID, channelName, includeBots, false); keep {
				messages = append(messages, msg)
			}
		}
		if !page.HasMore || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	models.SortChronologically(messages)
	start, end := "", ""
	if len(messages) > 0 {
		start = formatWindowTS(messages[0].TS)
		end = formatWindowTS(messages[len(messages)-1].TS)
	}
	return &models.CollectionResult{
		ChannelName: channelName,
		StartTime:   start,
		EndTime:     end,
		TotalCount:  len(messages),
		Messages:    messages,
	}, nil
}

// LookupChannelID resolves a channel display name to its id by paging
// through the workspace conversation list.
func (c *MessageCollector) LookupChannelID(ctx context.Context, name string) mo.Option[string] {
	cursor := ""
	for {
		channels, nextCursor, err := c.slackClient.ListConversations(ctx, cursor)
		if err != nil {
			log.Printf("⚠️ Failed to list conversations: %v", err)
			return mo.None[string]()
		}
		for _, ch := range channels {
			if ch.Name == name {
				c.channelCache[ch.ID] = ch.Name
				return mo.Some(ch.ID)
			}
		}
		if nextCursor == "" {
			return mo.None[string]()
		}
		cursor = nextCursor
	}
}

func (c *MessageCollector) collectHistory(
	ctx context.Context,
	channelID, channelName, oldest, latest string,
	includeThreads, includeBots bool,
) ([]*models.Message, error) {
	var messages []*models.Message
	cursor := ""
	for {
		page, err := c.slackClient.GetConversationHistory(ctx, clients.HistoryParameters{
			ChannelID: channelID,
			Oldest:    oldest,
			Latest:    latest,
			Limit:     historyPageSize,
			Cursor:    cursor,
			Inclusive: true,
		})
		if err != nil {
			return nil, err
		}
		for _, raw := range page.Messages {
			msg, keep := c.buildMessage(ctx, raw, channelID, channelName, includeBots, true)
			if !keep {
				continue
			}
			if includeThreads && raw.ReplyCount > 0 {
				msg.ThreadMessages = c.collectThreadReplies(ctx, channelID, channelName, raw.TS, includeBots)
			}
			messages = append(messages, msg)
		}
		if !page.HasMore || page.NextCursor == "" {
			break
		}
		if len(messages) >= maxMessagesPerChannel {
			log.Printf("⚠️ Channel %s hit the %d message cap, stopping pagination", channelID, maxMessagesPerChannel)
			break
		}
		cursor = page.NextCursor
	}
	return messages, nil
}

// collectThreadReplies expands one thread during channel collection. The
// root is excluded; it is already part of the channel history. Fetch
// failures degrade to whatever was gathered so far instead of failing
// the whole channel.
func (c *MessageCollector) collectThreadReplies(
	ctx context.Context,
	channelID, channelName, threadTS string,
	includeBots bool,
) []*models.Message {
	replies := []*models.Message{}
	cursor := ""
	for {
		page, err := c.slackClient.GetConversationReplies(ctx, clients.RepliesParameters{
			ChannelID: channelID,
			Timestamp: threadTS,
			Limit:     threadPageSize,
			Cursor:    cursor,
		})
		if err != nil {
			log.Printf("⚠️ Failed to fetch thread %s in %s: %v", threadTS, channelID, err)
			return replies
		}
		for _, raw := range page.Messages {
			if raw.TS == threadTS {
				continue
			}
			if msg, keep := c.buildMessage(ctx, raw, channelID, channelName, includeBots, false); keep {
				replies = append(replies, msg)
			}
		}
		if !page.HasMore || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	return replies
}

// buildMessage converts one raw history entry, applying the bot filter
// and, outside threads, the membership-subtype filter.
func (c *MessageCollector) buildMessage(
	ctx context.Context,
	raw clients.SlackMessage,
	channelID, channelName string,
	includeBots, filterSubtypes bool,
) (*models.Message, bool) {
	isBot := raw.BotID != "" || raw.SubType == "bot_message"
	if isBot && !includeBots {
		return nil, false
	}
	if filterSubtypes && droppedSubtypes[raw.SubType] {
		return nil, false
	}

	userID := raw.User
	if userID == "" {
		userID = "unknown"
	}
	var userName string
	if isBot {
		userName = raw.Username
		if userName == "" {
			userName = "Bot"
		}
	} else {
		userName = c.getUserName(ctx, userID)
	}

	reactionCount := 0
	for _, reaction := range raw.Reactions {
		reactionCount += reaction.Count
	}

	return models.NewMessage(models.Message{
		TS:            raw.TS,
		User:          userID,
		UserName:      userName,
		Text:          raw.Text,
		Channel:       channelID,
		ChannelName:   channelName,
		Permalink:     c.permalink(ctx, channelID, raw.TS),
		ReplyCount:    raw.ReplyCount,
		ReactionCount: reactionCount,
		IsBot:         isBot,
	}), true
}

// autoJoin attempts exactly one join of a public channel. Private
// targets surface a membership error instead.
func (c *MessageCollector) autoJoin(ctx context.Context, channelID, channelName string) *CollectorError {
	info, err := c.slackClient.GetConversationInfo(ctx, channelID)
	if err != nil {
		return asCollectorError(err)
	}
	if !info.IsChannel || info.IsPrivate {
		return &CollectorError{Kind: ErrKindNotAMember, Detail: channelName}
	}
	log.Printf("🚪 Not a member of #%s, attempting auto-join", channelName)
	if err := c.slackClient.JoinConversation(ctx, channelID); err != nil {
		return asCollectorError(err)
	}
	return nil
}

// getUserName resolves a user id to the best display name, cached for
// the collector's lifetime. Lookup failures fall back to the raw id.
func (c *MessageCollector) getUserName(ctx context.Context, userID string) string {
	if name, ok := c.userCache[userID]; ok {
		return name
	}
	user, err := c.slackClient.GetUserInfo(ctx, userID)
	if err != nil {
		return userID
	}
	name := user.RealName
	if name == "" {
		name = user.Name
	}
	if name == "" {
		name = userID
	}
	c.userCache[userID] = name
	return name
}

func (c *MessageCollector) getChannelName(ctx context.Context, channelID string) string {
	if name, ok := c.channelCache[channelID]; ok {
		return name
	}
	info, err := c.slackClient.GetConversationInfo(ctx, channelID)
	if err != nil || info.Name == "" {
		return channelID
	}
	c.channelCache[channelID] = info.Name
	return info.Name
}

// permalink is best-effort: a lookup failure yields an empty string, not
// a collection failure.
func (c *MessageCollector) permalink(ctx context.Context, channelID, ts string) string {
	permalink, err := c.slackClient.GetPermalink(ctx, channelID, ts)
	if err != nil {
		return ""
	}
	return permalink
}

func errorResult(channelName string, err *CollectorError) *models.CollectionResult {
	return &models.CollectionResult{
		ChannelName: channelName,
		Error:       err.UserMessage(),
		Messages:    []*models.Message{},
	}
}

func formatWindowTS(ts string) string {
	if ts == "" {
		return ""
	}
	f, err := strconv.ParseFloat(ts, 64)
	if err != nil {
		return ts
	}
	return time.Unix(int64(f), 0).Format(windowTimeFormat)
}
