package models

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Message is a single collected Slack message. ThreadMessages holds the
// expanded replies when thread collection is enabled; replies never nest
// below one level.
type Message struct {
	TS              string     `json:"ts"`
	User            string     `json:"user"`
	UserName        string     `json:"user_name"`
	Text            string     `json:"text"`
	Channel         string     `json:"channel"`
	ChannelName     string     `json:"channel_name"`
	Permalink       string     `json:"permalink"`
	ReplyCount      int        `json:"reply_count"`
	ReactionCount   int        `json:"reaction_count"`
	ImportanceScore int        `json:"importance_score"`
	IsBot           bool       `json:"is_bot"`
	ThreadMessages  []*Message `json:"thread_messages"`
}

// CollectionResult is the outcome of collecting one channel or thread.
// Error and Messages are mutually exclusive: a failed collection carries
// an error and no messages.
type CollectionResult struct {
	ChannelName string     `json:"channel_name"`
	StartTime   string     `json:"start_time"`
	EndTime     string     `json:"end_time"`
	TotalCount  int        `json:"total_count"`
	Error       string     `json:"error,omitempty"`
	Messages    []*Message `json:"messages"`
}

// ComputeImportanceScore derives the ranking score used for truncation
// and prioritization.
func ComputeImportanceScore(replyCount, reactionCount int) int {
	return replyCount*2 + reactionCount
}

// NewMessage builds a Message and derives its importance score. The score
// is never taken from the caller.
func NewMessage(m Message) *Message {
	m.ImportanceScore = ComputeImportanceScore(m.ReplyCount, m.ReactionCount)
	if m.ThreadMessages == nil {
		m.ThreadMessages = []*Message{}
	}
	return &m
}

// TSDecimal parses the message timestamp ("seconds.microseconds") as an
// exact decimal sort key. Malformed timestamps sort first.
func (m *Message) TSDecimal() decimal.Decimal {
	d, err := decimal.NewFromString(m.TS)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// SortChronologically stable-sorts messages ascending by numeric
// timestamp. Pagination order is not globally monotonic across cursor
// pages, so the sort always runs before a CollectionResult is returned.
func SortChronologically(messages []*Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].TSDecimal().LessThan(messages[j].TSDecimal())
	})
}
